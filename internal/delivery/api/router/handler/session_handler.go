package handler

import (
	"log/slog"
	"net/http"

	"placemap/internal/delivery/api/middleware"
	"placemap/internal/delivery/api/response"
	"placemap/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// SessionHandlerParams holds dependencies for SessionHandler, injected by Fx.
type SessionHandlerParams struct {
	fx.In

	Registry usecase.SessionRegistry
	Logger   *slog.Logger
}

// SessionHandler starts, ends and renders map sessions
type SessionHandler struct {
	registry usecase.SessionRegistry
	logger   *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler
func NewSessionHandler(params SessionHandlerParams) *SessionHandler {
	return &SessionHandler{
		registry: params.Registry,
		logger:   params.Logger,
	}
}

// SignIn creates the session of the current user and loads all places
func (h *SessionHandler) SignIn(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "CONTEXT_ERROR", "User ID not found in context")
	}

	session, err := h.registry.SignIn(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, session.Snapshot())
}

// SignOut tears down the session of the current user
func (h *SessionHandler) SignOut(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "CONTEXT_ERROR", "User ID not found in context")
	}

	return response.Success(c, http.StatusOK, map[string]bool{"signed_out": h.registry.SignOut(userID)})
}

// Snapshot returns everything needed to render the session from scratch
func (h *SessionHandler) Snapshot(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, session.Snapshot())
}
