package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"placemap/config"
	"placemap/internal/domain/entity"
	"placemap/internal/domain/service"
	"placemap/internal/errors"
	"placemap/internal/usecase"
)

type mapViewport struct {
	mu     sync.Mutex
	target entity.ViewportTarget

	locateZoom    int
	locateTimeout time.Duration
	logger        *slog.Logger

	subscribers listeners[entity.ViewportTarget]
}

// NewMapViewport creates a viewport showing the configured default center.
func NewMapViewport(cfg *config.PlacesConfig, logger *slog.Logger) usecase.MapViewport {
	if cfg == nil {
		cfg = config.DefaultPlacesConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &mapViewport{
		target: entity.ViewportTarget{
			Center: entity.LatLng{Lat: cfg.DefaultCenter.Lat, Lng: cfg.DefaultCenter.Lng},
			Zoom:   cfg.DefaultZoom,
		},
		locateZoom:    cfg.LocateZoom,
		locateTimeout: cfg.LocateTimeout,
		logger:        logger,
	}
}

func (v *mapViewport) Target() entity.ViewportTarget {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.target
}

func (v *mapViewport) UseDeviceLocation(ctx context.Context, locator service.DeviceLocator) (entity.LatLng, error) {
	if locator == nil {
		return entity.LatLng{}, &service.LocationError{Reason: service.LocationUnavailable}
	}

	if v.locateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.locateTimeout)
		defer cancel()
	}

	point, err := locator.CurrentPosition(ctx)
	if err == nil && !point.Valid() {
		err = errors.Errorf("device reported invalid position %v", point)
	}
	if err != nil {
		locErr := classifyLocationError(ctx, err)
		v.logger.WarnContext(ctx, "Device location unavailable",
			slog.String("reason", string(locErr.Reason)),
			slog.Any("error", err),
		)

		return entity.LatLng{}, locErr
	}

	v.RecenterTo(point, v.locateZoom)

	return point, nil
}

func (v *mapViewport) RecenterTo(point entity.LatLng, zoom int) {
	v.mu.Lock()
	next := entity.ViewportTarget{Center: point, Zoom: zoom}
	if next == v.target {
		v.mu.Unlock()

		return
	}
	v.target = next
	v.mu.Unlock()

	v.subscribers.notify(next)
}

func (v *mapViewport) SurfaceMoved(center entity.LatLng, zoom int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.target = entity.ViewportTarget{Center: center, Zoom: zoom}
}

func (v *mapViewport) Subscribe(fn func(entity.ViewportTarget)) func() {
	return v.subscribers.add(fn)
}

func classifyLocationError(ctx context.Context, err error) *service.LocationError {
	var locErr *service.LocationError
	if errors.As(err, &locErr) {
		return locErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &service.LocationError{Reason: service.LocationTimeout, Err: err}
	}

	return &service.LocationError{Reason: service.LocationUnavailable, Err: err}
}
