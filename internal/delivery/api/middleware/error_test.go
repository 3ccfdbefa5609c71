package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/domain/validation"
	"placemap/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

func handleError(t *testing.T, err error) (int, errorBody) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))).HandleHTTPError(err, c)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec.Code, body
}

func TestHandleHTTPError(t *testing.T) {
	type draft struct {
		Name string `validate:"required"`
	}
	validationErr := validation.New().Struct(draft{})
	require.Error(t, validationErr)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "app error",
			err:      domainerrors.ErrPlaceNotFound,
			wantCode: http.StatusNotFound,
			wantBody: "PLACE_NOT_FOUND",
		},
		{
			name:     "wrapped app error",
			err:      errors.Because(domainerrors.ErrPlaceStoreUnavailable, "create place", io.ErrUnexpectedEOF),
			wantCode: http.StatusServiceUnavailable,
			wantBody: "NETWORK_ERROR",
		},
		{
			name:     "validation errors",
			err:      validationErr,
			wantCode: http.StatusBadRequest,
			wantBody: "VALIDATION_FAILED",
		},
		{
			name:     "echo error",
			err:      echo.ErrNotFound,
			wantCode: http.StatusNotFound,
			wantBody: "HTTP_ERROR",
		},
		{
			name:     "unknown error",
			err:      io.ErrClosedPipe,
			wantCode: http.StatusInternalServerError,
			wantBody: "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := handleError(t, tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantBody, body.Error.Code)
		})
	}
}

func TestHandleHTTPError_ValidationDetails(t *testing.T) {
	type draft struct {
		Name     string `validate:"required"`
		Category string `validate:"required,place_category"`
	}

	_, body := handleError(t, validation.New().Struct(draft{Name: "x", Category: "Bars"}))

	details, ok := body.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "place_category", details["Category"])
	assert.NotContains(t, details, "Name")
}

func TestHandleHTTPError_HidesServerErrorDetails(t *testing.T) {
	_, body := handleError(t, domainerrors.ErrInternalError.WithDetails("connection refused"))
	assert.Nil(t, body.Error.Details)
}
