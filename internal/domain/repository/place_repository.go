// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"placemap/internal/domain/entity"
	"placemap/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for place persistence.
var (
	// ErrPlaceNotFound is returned when no persisted place matches the given ID.
	ErrPlaceNotFound = errors.New("place not found")
)

// PlaceRepository is the record-oriented store behind the place mirror.
type PlaceRepository interface {
	// FindAllPlaces returns every persisted place, oldest first.
	FindAllPlaces(ctx context.Context) ([]*entity.Place, error)

	// CreatePlace inserts a place and returns the stored row.
	// Any ID on the input is ignored; the returned place carries the ID assigned by the store.
	CreatePlace(ctx context.Context, place *entity.Place) (*entity.Place, error)

	// DeletePlace removes the place with the given ID.
	// Returns ErrPlaceNotFound if no row matched.
	DeletePlace(ctx context.Context, id uuid.UUID) error
}
