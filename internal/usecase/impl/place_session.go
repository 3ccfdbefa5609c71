package impl

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"placemap/internal/domain/entity"
	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/domain/service"
	"placemap/internal/usecase"
	"placemap/internal/util"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geo"
)

// PlaceSessionParams holds the collaborators of one user's session.
type PlaceSessionParams struct {
	UserID     uuid.UUID
	Store      usecase.PlaceStore
	Selection  usecase.SelectionController
	Viewport   usecase.MapViewport
	Resolver   usecase.GeocodeResolver
	SearchZoom int
	Logger     *slog.Logger
}

type placeSession struct {
	userID     uuid.UUID
	store      usecase.PlaceStore
	selection  usecase.SelectionController
	viewport   usecase.MapViewport
	resolver   usecase.GeocodeResolver
	searchZoom int
	logger     *slog.Logger

	// ctx is cancelled on Close and aborts pending searches.
	ctx    context.Context
	cancel context.CancelFunc

	// mu serializes user events within the session.
	mu     sync.Mutex
	closed atomic.Bool

	searchMu  sync.Mutex
	searchGen uint64
	search    usecase.SearchView

	subscribers  listeners[usecase.SessionEvent]
	unsubscribes []func()
}

// NewPlaceSession wires the collaborators together and starts forwarding their events.
func NewPlaceSession(params PlaceSessionParams) usecase.PlaceSession {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("userID", params.UserID.String()))

	ctx, cancel := context.WithCancel(context.Background())

	s := &placeSession{
		userID:     params.UserID,
		store:      params.Store,
		selection:  params.Selection,
		viewport:   params.Viewport,
		resolver:   params.Resolver,
		searchZoom: params.SearchZoom,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		search:     usecase.SearchView{Candidates: []entity.Candidate{}},
	}

	s.unsubscribes = append(s.unsubscribes,
		s.store.Subscribe(func(places []*entity.Place) {
			s.emit(usecase.EventMarkers, s.markersOf(places))
		}),
		s.selection.Subscribe(func(state entity.SelectionState, draft *entity.SelectionDraft) {
			s.emit(usecase.EventSelection, usecase.SelectionView{State: state, Draft: draft})
		}),
		s.viewport.Subscribe(func(target entity.ViewportTarget) {
			s.emit(usecase.EventView, target)
		}),
	)

	return s
}

func (s *placeSession) UserID() uuid.UUID {
	return s.userID
}

func (s *placeSession) ToggleAddPlace() (usecase.SelectionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return usecase.SelectionView{}, domainerrors.ErrSessionClosed
	}
	s.selection.ToggleArm()

	return s.selectionView(), nil
}

func (s *placeSession) MapClick(point entity.LatLng) (usecase.SelectionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return usecase.SelectionView{}, domainerrors.ErrSessionClosed
	}
	if !point.Valid() {
		return s.selectionView(), domainerrors.ErrInvalidCoordinate
	}
	if s.selection.MapClick(point) {
		s.logger.Debug("Draft opened",
			slog.String("lat", util.FormatCoordinate(point.Lat)),
			slog.String("lng", util.FormatCoordinate(point.Lng)),
		)
	}

	return s.selectionView(), nil
}

func (s *placeSession) CancelDraft() (usecase.SelectionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return usecase.SelectionView{}, domainerrors.ErrSessionClosed
	}
	s.selection.Cancel()

	return s.selectionView(), nil
}

func (s *placeSession) SubmitDraft(ctx context.Context, form *usecase.DraftForm) (*entity.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, domainerrors.ErrSessionClosed
	}

	draft, ok := s.selection.Draft()
	if !ok {
		return nil, domainerrors.ErrNoDraft
	}
	if form == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("place form is required")
	}

	place, err := s.store.Create(ctx, &usecase.CreatePlaceInput{
		Name:        form.Name,
		Description: form.Description,
		Category:    form.Category,
		Latitude:    draft.Point.Lat,
		Longitude:   draft.Point.Lng,
	}, s.userID)
	if err != nil {
		// The draft stays open so the user can retry or fix the form.
		return nil, err
	}

	s.selection.Complete()
	s.logger.InfoContext(ctx, "Place created", slog.String("placeID", place.ID.String()))

	return place, nil
}

func (s *placeSession) DeletePlace(ctx context.Context, placeID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return domainerrors.ErrSessionClosed
	}

	if err := s.store.Delete(ctx, placeID, s.userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Place deleted", slog.String("placeID", placeID.String()))

	return nil
}

func (s *placeSession) Markers() []entity.Marker {
	return s.markersOf(s.store.Places())
}

// Search runs outside the session lock so that typing never waits on a pending write.
func (s *placeSession) Search(ctx context.Context, query string) (*usecase.SearchResult, error) {
	if s.closed.Load() {
		return nil, domainerrors.ErrSessionClosed
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	release := context.AfterFunc(s.ctx, stop)
	defer release()

	result, err := s.resolver.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	center := s.viewport.Target().Center.Point()
	annotated := *result
	annotated.Candidates = make([]entity.Candidate, len(result.Candidates))
	for i, candidate := range result.Candidates {
		if point, err := s.resolver.Select(candidate); err == nil {
			candidate.DistanceMeters = geo.Distance(center, point.Point())
		}
		annotated.Candidates[i] = candidate
	}

	view := usecase.SearchView{Query: query, Candidates: annotated.Candidates}
	if annotated.Err != nil {
		view.Notice = domainerrors.ErrGeocodeUnavailable.Message()
	}

	s.searchMu.Lock()
	current := annotated.Generation > s.searchGen
	if current {
		s.searchGen = annotated.Generation
		s.search = view
	}
	s.searchMu.Unlock()

	if current {
		s.emit(usecase.EventSearch, view)
	}

	return &annotated, nil
}

// SelectCandidate recenters on the candidate, puts its name in the search box and clears the results.
func (s *placeSession) SelectCandidate(candidate entity.Candidate) (entity.ViewportTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return entity.ViewportTarget{}, domainerrors.ErrSessionClosed
	}

	point, err := s.resolver.Select(candidate)
	if err != nil {
		return s.viewport.Target(), err
	}
	s.viewport.RecenterTo(point, s.searchZoom)

	// A search still waiting on the geocoder must not refill the box afterwards.
	gen := s.resolver.Cancel()

	view := usecase.SearchView{Query: candidate.DisplayName, Candidates: []entity.Candidate{}}
	s.searchMu.Lock()
	if gen > s.searchGen {
		s.searchGen = gen
	}
	s.search = view
	s.searchMu.Unlock()
	s.emit(usecase.EventSearch, view)

	return s.viewport.Target(), nil
}

func (s *placeSession) Locate(ctx context.Context, locator service.DeviceLocator) (entity.ViewportTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return entity.ViewportTarget{}, domainerrors.ErrSessionClosed
	}

	_, err := s.viewport.UseDeviceLocation(ctx, locator)

	return s.viewport.Target(), err
}

func (s *placeSession) SurfaceMoved(center entity.LatLng, zoom int) entity.ViewportTarget {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed.Load() && center.Valid() && zoom >= 0 {
		s.viewport.SurfaceMoved(center, zoom)
	}

	return s.viewport.Target()
}

func (s *placeSession) View() entity.ViewportTarget {
	return s.viewport.Target()
}

func (s *placeSession) Snapshot() *usecase.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchMu.Lock()
	search := s.search
	search.Candidates = append([]entity.Candidate{}, s.search.Candidates...)
	s.searchMu.Unlock()

	return &usecase.SessionSnapshot{
		UserID:    s.userID,
		Selection: s.selectionView(),
		View:      s.viewport.Target(),
		Markers:   s.Markers(),
		Search:    search,
	}
}

func (s *placeSession) Subscribe(fn func(usecase.SessionEvent)) func() {
	return s.subscribers.add(fn)
}

func (s *placeSession) Close() {
	s.mu.Lock()
	if !s.closed.CompareAndSwap(false, true) {
		s.mu.Unlock()

		return
	}
	unsubscribes := s.unsubscribes
	s.unsubscribes = nil
	s.mu.Unlock()

	s.cancel()
	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}

	s.subscribers.notify(usecase.SessionEvent{Kind: usecase.EventClosed})
	s.subscribers.clear()
}

func (s *placeSession) selectionView() usecase.SelectionView {
	view := usecase.SelectionView{State: s.selection.State()}
	if draft, ok := s.selection.Draft(); ok {
		view.Draft = &draft
	}

	return view
}

func (s *placeSession) markersOf(places []*entity.Place) []entity.Marker {
	markers := make([]entity.Marker, 0, len(places))
	for _, place := range places {
		markers = append(markers, entity.Marker{
			Place:     place,
			Deletable: place.CreatedBy(s.userID),
		})
	}

	return markers
}

func (s *placeSession) emit(kind usecase.SessionEventKind, data any) {
	s.subscribers.notify(usecase.SessionEvent{Kind: kind, Data: data})
}
