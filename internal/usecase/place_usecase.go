package usecase

import (
	"context"

	"placemap/internal/domain/entity"

	"github.com/google/uuid"
)

// CreatePlaceInput represents the input for adding a new place
type CreatePlaceInput struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"required,max=2000"`
	Category    string  `json:"category" validate:"required,place_category"`
	Latitude    float64 `json:"lat" validate:"finite,min=-90,max=90"`
	Longitude   float64 `json:"lng" validate:"finite,min=-180,max=180"`
}

// Location returns the input coordinates as a LatLng.
func (in *CreatePlaceInput) Location() entity.LatLng {
	return entity.LatLng{Lat: in.Latitude, Lng: in.Longitude}
}

// PlaceStore is the authoritative place list of one session. It mediates reads
// and writes against the persistence service and keeps a local mirror in sync.
type PlaceStore interface {
	// LoadAll fetches the whole collection and replaces the mirror wholesale.
	LoadAll(ctx context.Context) ([]*entity.Place, error)

	// Create validates input, persists it and adds exactly the stored place to the mirror.
	Create(ctx context.Context, input *CreatePlaceInput, creatorID uuid.UUID) (*entity.Place, error)

	// Delete removes a place created by requesterID from the remote store and the mirror.
	Delete(ctx context.Context, placeID, requesterID uuid.UUID) error

	// Places returns a copy of the mirror in insertion order.
	Places() []*entity.Place

	// Get returns a copy of one mirrored place.
	Get(placeID uuid.UUID) (*entity.Place, bool)

	// Subscribe registers fn for "mirror changed" events. The returned func unsubscribes.
	Subscribe(fn func(places []*entity.Place)) (unsubscribe func())
}
