package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"placemap/internal/domain/entity"
	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/domain/service"
	"placemap/internal/errors"
	"placemap/internal/usecase"
	"placemap/internal/util"
)

type geocodeResolver struct {
	geocoder service.Geocoder
	debounce time.Duration
	logger   *slog.Logger

	mu            sync.Mutex
	generation    uint64
	cancelPending context.CancelFunc

	subscribers listeners[*usecase.SearchResult]
}

// NewGeocodeResolver creates a resolver that waits debounce before querying geocoder.
func NewGeocodeResolver(geocoder service.Geocoder, debounce time.Duration, logger *slog.Logger) usecase.GeocodeResolver {
	if logger == nil {
		logger = slog.Default()
	}

	return &geocodeResolver{
		geocoder: geocoder,
		debounce: debounce,
		logger:   logger,
	}
}

// Search starts a new generation. Every older call still waiting on its
// debounce or on the geocoder is cancelled and returns ErrSearchSuperseded.
func (r *geocodeResolver) Search(ctx context.Context, query string) (*usecase.SearchResult, error) {
	trimmed := strings.TrimSpace(query)

	r.mu.Lock()
	r.generation++
	gen := r.generation
	if r.cancelPending != nil {
		r.cancelPending()
		r.cancelPending = nil
	}

	if trimmed == "" {
		r.mu.Unlock()
		result := &usecase.SearchResult{Query: query, Generation: gen, Candidates: []entity.Candidate{}}
		r.subscribers.notify(result)

		return result, nil
	}

	searchCtx, cancel := context.WithCancel(ctx)
	r.cancelPending = cancel
	r.mu.Unlock()
	defer cancel()

	if r.debounce > 0 {
		timer := time.NewTimer(r.debounce)
		select {
		case <-timer.C:
		case <-searchCtx.Done():
			timer.Stop()

			return nil, r.abandoned(ctx, gen)
		}
	}

	candidates, err := r.geocoder.Search(searchCtx, trimmed)
	if !r.isCurrent(gen) {
		r.logger.DebugContext(ctx, "Discarding superseded geocode result",
			slog.String("query", trimmed),
			slog.Uint64("generation", gen),
		)

		return nil, domainerrors.ErrSearchSuperseded
	}
	if err != nil && ctx.Err() != nil {
		return nil, errors.WithStack(ctx.Err())
	}

	result := &usecase.SearchResult{Query: query, Generation: gen, Candidates: candidates}
	if err != nil {
		r.logger.WarnContext(ctx, "Geocode search failed",
			slog.String("query", trimmed),
			slog.Any("error", err),
		)
		result.Candidates = nil
		result.Err = errors.Because(domainerrors.ErrGeocodeUnavailable, "geocode search", err)
	}
	if result.Candidates == nil {
		result.Candidates = []entity.Candidate{}
	}

	r.subscribers.notify(result)

	return result, nil
}

func (r *geocodeResolver) Cancel() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	if r.cancelPending != nil {
		r.cancelPending()
		r.cancelPending = nil
	}

	return r.generation
}

func (r *geocodeResolver) Select(candidate entity.Candidate) (entity.LatLng, error) {
	lat, err := util.ParseCoordinate(candidate.Lat)
	if err != nil {
		return entity.LatLng{}, errors.Because(domainerrors.ErrInvalidCoordinate, "select candidate", err)
	}
	lng, err := util.ParseCoordinate(candidate.Lng)
	if err != nil {
		return entity.LatLng{}, errors.Because(domainerrors.ErrInvalidCoordinate, "select candidate", err)
	}

	point := entity.LatLng{Lat: lat, Lng: lng}
	if !point.Valid() {
		return entity.LatLng{}, errors.Because(domainerrors.ErrInvalidCoordinate, "select candidate",
			errors.Errorf("candidate %q is out of range", candidate.DisplayName))
	}

	return point, nil
}

func (r *geocodeResolver) Subscribe(fn func(*usecase.SearchResult)) func() {
	return r.subscribers.add(fn)
}

// Generation returns the number of searches started so far.
func (r *geocodeResolver) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.generation
}

func (r *geocodeResolver) isCurrent(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.generation == gen
}

func (r *geocodeResolver) abandoned(ctx context.Context, gen uint64) error {
	if r.isCurrent(gen) && ctx.Err() != nil {
		return errors.WithStack(ctx.Err())
	}

	return domainerrors.ErrSearchSuperseded
}
