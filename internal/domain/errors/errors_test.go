package errors

import (
	"net/http"
	"testing"

	"placemap/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestBaseError_IsMatchesDetailedCopy(t *testing.T) {
	detailed := ErrValidationFailed.WithDetails("name is required")

	assert.ErrorIs(t, detailed, ErrValidationFailed)
	assert.NotErrorIs(t, detailed, ErrInvalidCoordinate)
	assert.Equal(t, "name is required", detailed.Details())
	assert.Equal(t, http.StatusBadRequest, detailed.HTTPCode())
}

func TestBecause_ResolvesKindFirst(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := errors.Because(ErrPlaceStoreUnavailable, "create place", cause)

	assert.ErrorIs(t, err, ErrPlaceStoreUnavailable)
	assert.ErrorIs(t, err, cause)

	var appErr AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NETWORK_ERROR", appErr.ErrorCode())
	assert.Equal(t, http.StatusServiceUnavailable, appErr.HTTPCode())
	assert.Contains(t, err.Error(), "create place")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDatabaseExecuteError_Unwrap(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := NewDatabaseExecuteError(cause, "insert place")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "DATABASE_EXECUTE_FAILED", err.ErrorCode())
}
