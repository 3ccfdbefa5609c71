package usecase

import (
	"context"

	"placemap/internal/domain/entity"
	"placemap/internal/domain/service"
)

// MapViewport owns the center and zoom the rendering surface should show.
type MapViewport interface {
	Target() entity.ViewportTarget

	// UseDeviceLocation asks locator for a one-shot position and recenters on success.
	// Failures return a *service.LocationError and leave the target unchanged.
	UseDeviceLocation(ctx context.Context, locator service.DeviceLocator) (entity.LatLng, error)

	// RecenterTo moves the target. The last caller wins.
	RecenterTo(point entity.LatLng, zoom int)

	// SurfaceMoved records a pan or zoom made on the surface itself without
	// echoing a set-view back to it.
	SurfaceMoved(center entity.LatLng, zoom int)

	// Subscribe registers fn for set-view requests. fn only runs when the target changes.
	Subscribe(fn func(target entity.ViewportTarget)) (unsubscribe func())
}
