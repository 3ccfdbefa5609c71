package usecase

import (
	"context"

	"placemap/internal/domain/entity"
)

// SearchResult is the delivered outcome of one geocode query.
type SearchResult struct {
	Query      string             `json:"query"`
	Generation uint64             `json:"generation"`
	Candidates []entity.Candidate `json:"candidates"`

	// Err is a non-fatal geocoding failure. Candidates is empty when set.
	Err error `json:"-"`
}

// GeocodeResolver resolves free-text queries to ranked candidate coordinates.
type GeocodeResolver interface {
	// Search debounces query and delivers its candidates. A newer call supersedes
	// older ones, which return domain errors.ErrSearchSuperseded.
	Search(ctx context.Context, query string) (*SearchResult, error)

	// Cancel supersedes every pending search without starting a new one and
	// returns the generation that replaced them.
	Cancel() uint64

	// Select parses the coordinates of a candidate.
	Select(candidate entity.Candidate) (entity.LatLng, error)

	// Subscribe registers fn for every delivered result.
	Subscribe(fn func(result *SearchResult)) (unsubscribe func())
}
