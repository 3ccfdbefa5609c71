// Package handler adapts HTTP requests to the map session of the signed-in user.
package handler

import (
	"net/http"

	"placemap/internal/delivery/api/middleware"
	"placemap/internal/domain/entity"
	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/usecase"

	"github.com/labstack/echo/v4"
)

// PointRequest is a map coordinate sent by the rendering surface.
type PointRequest struct {
	Lat float64 `json:"lat" validate:"finite,min=-90,max=90"`
	Lng float64 `json:"lng" validate:"finite,min=-180,max=180"`
}

func (r PointRequest) LatLng() entity.LatLng {
	return entity.LatLng{Lat: r.Lat, Lng: r.Lng}
}

// sessionOf resolves the session of the authenticated user.
func sessionOf(c echo.Context, registry usecase.SessionRegistry) (usecase.PlaceSession, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User ID not found in context")
	}

	return registry.Get(userID)
}

// bindAndValidate decodes the request body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("invalid request body")
	}

	return c.Validate(req)
}

// HealthCheck reports that the process is serving requests.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
