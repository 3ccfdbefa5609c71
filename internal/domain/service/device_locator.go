package service

import (
	"context"

	"placemap/internal/domain/entity"
)

// LocationFailure classifies why the device position could not be read.
type LocationFailure string

const (
	LocationDenied      LocationFailure = "denied"
	LocationUnavailable LocationFailure = "unavailable"
	LocationTimeout     LocationFailure = "timeout"
)

// LocationError is a non-fatal geolocation failure.
type LocationError struct {
	Reason LocationFailure
	Err    error
}

func (e *LocationError) Error() string {
	if e.Err == nil {
		return "device location " + string(e.Reason)
	}

	return "device location " + string(e.Reason) + ": " + e.Err.Error()
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

// DeviceLocator is the one-shot "get current position" capability of the client device.
type DeviceLocator interface {
	CurrentPosition(ctx context.Context) (entity.LatLng, error)
}
