package handler

import (
	"log/slog"
	"net/http"

	"placemap/internal/delivery/api/response"
	"placemap/internal/domain/entity"
	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// GeocodeHandlerParams holds dependencies for GeocodeHandler, injected by Fx.
type GeocodeHandlerParams struct {
	fx.In

	Registry usecase.SessionRegistry
	Logger   *slog.Logger
}

// GeocodeHandler serves the search box
type GeocodeHandler struct {
	registry usecase.SessionRegistry
	logger   *slog.Logger
}

// NewGeocodeHandler is the constructor for GeocodeHandler
func NewGeocodeHandler(params GeocodeHandlerParams) *GeocodeHandler {
	return &GeocodeHandler{
		registry: params.Registry,
		logger:   params.Logger,
	}
}

// SelectCandidateRequest is a search result picked by the user
type SelectCandidateRequest struct {
	PlaceID     string `json:"place_id"`
	DisplayName string `json:"display_name" validate:"required"`
	Lat         string `json:"lat" validate:"required"`
	Lng         string `json:"lng" validate:"required"`
}

// Search resolves the q parameter. A geocoder failure answers 200 with no
// candidates and a notice. A request replaced by a newer one answers 409.
func (h *GeocodeHandler) Search(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	result, err := session.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}

	if result.Err != nil {
		h.logger.Warn("Geocode search failed", slog.String("query", result.Query), slog.Any("error", result.Err))

		return response.SuccessWithNotice(c, http.StatusOK, result, &response.Notice{
			Code:    domainerrors.ErrGeocodeUnavailable.ErrorCode(),
			Message: domainerrors.ErrGeocodeUnavailable.Message(),
		})
	}

	return response.Success(c, http.StatusOK, result)
}

// Select recenters the map on a candidate
func (h *GeocodeHandler) Select(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	var req SelectCandidateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	target, err := session.SelectCandidate(entity.Candidate{
		PlaceID:     req.PlaceID,
		DisplayName: req.DisplayName,
		Lat:         req.Lat,
		Lng:         req.Lng,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, target)
}
