package handler

import (
	"log/slog"
	"net/http"

	"placemap/internal/delivery/api/response"
	"placemap/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// SelectionHandlerParams holds dependencies for SelectionHandler, injected by Fx.
type SelectionHandlerParams struct {
	fx.In

	Registry usecase.SessionRegistry
	Logger   *slog.Logger
}

// SelectionHandler drives the add-place workflow
type SelectionHandler struct {
	registry usecase.SessionRegistry
	logger   *slog.Logger
}

// NewSelectionHandler is the constructor for SelectionHandler
func NewSelectionHandler(params SelectionHandlerParams) *SelectionHandler {
	return &SelectionHandler{
		registry: params.Registry,
		logger:   params.Logger,
	}
}

// Toggle arms or disarms the add-place mode
func (h *SelectionHandler) Toggle(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	view, err := session.ToggleAddPlace()
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, view)
}

// Click forwards a map click. Clicks outside the armed state leave the selection unchanged.
func (h *SelectionHandler) Click(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	var req PointRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := session.MapClick(req.LatLng())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, view)
}

// SubmitDraft creates a place at the captured point
func (h *SelectionHandler) SubmitDraft(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	var form usecase.DraftForm
	if err := bindAndValidate(c, &form); err != nil {
		return err
	}

	place, err := session.SubmitDraft(c.Request().Context(), &form)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, place)
}

// CancelDraft discards the captured point
func (h *SelectionHandler) CancelDraft(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	view, err := session.CancelDraft()
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, view)
}
