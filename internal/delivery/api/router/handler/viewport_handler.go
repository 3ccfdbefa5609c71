package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"placemap/internal/delivery/api/response"
	"placemap/internal/domain/entity"
	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/domain/service"
	"placemap/internal/errors"
	"placemap/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// ViewportHandlerParams holds dependencies for ViewportHandler, injected by Fx.
type ViewportHandlerParams struct {
	fx.In

	Registry usecase.SessionRegistry
	Logger   *slog.Logger
}

// ViewportHandler reads and moves the map view
type ViewportHandler struct {
	registry usecase.SessionRegistry
	logger   *slog.Logger
}

// NewViewportHandler is the constructor for ViewportHandler
func NewViewportHandler(params ViewportHandlerParams) *ViewportHandler {
	return &ViewportHandler{
		registry: params.Registry,
		logger:   params.Logger,
	}
}

// LocateRequest carries the outcome of the browser geolocation call:
// either a position or one of "denied", "unavailable" and "timeout".
type LocateRequest struct {
	Position *PointRequest `json:"position" validate:"required_without=Error"`
	Error    string        `json:"error" validate:"omitempty,oneof=denied unavailable timeout"`
}

// MovedRequest is a pan or zoom performed on the rendering surface
type MovedRequest struct {
	Center PointRequest `json:"center"`
	Zoom   int          `json:"zoom" validate:"min=0,max=22"`
}

// View returns the current view target
func (h *ViewportHandler) View(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, session.View())
}

// Locate recenters on the device position. A location failure keeps the
// current view and is reported as a notice.
func (h *ViewportHandler) Locate(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	var req LocateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	target, err := session.Locate(c.Request().Context(), reportedLocator{req: req})
	if err != nil {
		var locErr *service.LocationError
		if !errors.As(err, &locErr) {
			return err
		}

		return response.SuccessWithNotice(c, http.StatusOK, target, &response.Notice{
			Code:    "LOCATION_" + strings.ToUpper(string(locErr.Reason)),
			Message: domainerrors.ErrLocationUnavailable.Message(),
		})
	}

	return response.Success(c, http.StatusOK, target)
}

// Moved records the view after the user panned or zoomed
func (h *ViewportHandler) Moved(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	var req MovedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, session.SurfaceMoved(req.Center.LatLng(), req.Zoom))
}

// reportedLocator replays a position the browser already resolved.
type reportedLocator struct {
	req LocateRequest
}

func (l reportedLocator) CurrentPosition(ctx context.Context) (entity.LatLng, error) {
	if err := ctx.Err(); err != nil {
		return entity.LatLng{}, err
	}
	if l.req.Error != "" || l.req.Position == nil {
		reason := service.LocationFailure(l.req.Error)
		if reason == "" {
			reason = service.LocationUnavailable
		}

		return entity.LatLng{}, &service.LocationError{Reason: reason}
	}

	return l.req.Position.LatLng(), nil
}
