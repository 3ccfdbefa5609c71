package handler

import (
	"log/slog"
	"net/http"

	"placemap/internal/delivery/api/response"
	"placemap/internal/domain/entity"
	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/errors"
	"placemap/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/fx"
)

const mimeGeoJSON = "application/geo+json"

// PlaceHandlerParams holds dependencies for PlaceHandler, injected by Fx.
type PlaceHandlerParams struct {
	fx.In

	Registry usecase.SessionRegistry
	Logger   *slog.Logger
}

// PlaceHandler lists and deletes places of the current session
type PlaceHandler struct {
	registry usecase.SessionRegistry
	logger   *slog.Logger
}

// NewPlaceHandler is the constructor for PlaceHandler
func NewPlaceHandler(params PlaceHandlerParams) *PlaceHandler {
	return &PlaceHandler{
		registry: params.Registry,
		logger:   params.Logger,
	}
}

// ListMarkers returns every place with the deletable flag of the current user
func (h *PlaceHandler) ListMarkers(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, session.Markers())
}

// ListMarkersGeoJSON returns the markers as a GeoJSON FeatureCollection
func (h *PlaceHandler) ListMarkersGeoJSON(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	data, err := MarkersToGeoJSON(session.Markers()).MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "marshal markers")
	}

	return c.Blob(http.StatusOK, mimeGeoJSON, data)
}

// DeletePlace deletes a place created by the current user
func (h *PlaceHandler) DeletePlace(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("invalid place ID")
	}

	if err := session.DeletePlace(c.Request().Context(), placeID); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]string{"id": placeID.String()})
}

// MarkersToGeoJSON converts markers to point features keyed by place ID.
func MarkersToGeoJSON(markers []entity.Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, marker := range markers {
		if marker.Place == nil {
			continue
		}
		place := marker.Place

		feature := geojson.NewFeature(place.Location.Point())
		feature.ID = place.ID.String()
		feature.Properties["name"] = place.Name
		feature.Properties["description"] = place.Description
		feature.Properties["category"] = string(place.Category)
		feature.Properties["creator_id"] = place.CreatorID.String()
		feature.Properties["deletable"] = marker.Deletable
		fc.Append(feature)
	}

	return fc
}
