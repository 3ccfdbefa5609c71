package service

import (
	"context"

	"placemap/internal/domain/entity"
)

// Geocoder resolves free-text queries through an external geocoding service.
type Geocoder interface {
	// Search returns candidates for query in the order the service ranked them.
	Search(ctx context.Context, query string) ([]entity.Candidate, error)
}
