package impl

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"placemap/internal/domain/entity"
	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/domain/repository"
	"placemap/internal/domain/service"
	"placemap/internal/errors"
	"placemap/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PlaceStoreOptions configures a place store.
type PlaceStoreOptions struct {
	// OptimisticCreate inserts a provisional entry before the remote write returns.
	OptimisticCreate bool

	// OnMutation observes the outcome of every create and delete.
	OnMutation func(op string, err error)
}

type placeStore struct {
	repo      repository.PlaceRepository
	publisher service.EventPublisher
	validate  *validator.Validate
	logger    *slog.Logger
	opts      PlaceStoreOptions

	// opMu serializes mutations so the mirror never interleaves two writes.
	opMu sync.Mutex

	mu    sync.RWMutex
	order []uuid.UUID
	byID  map[uuid.UUID]*entity.Place

	subscribers listeners[[]*entity.Place]
}

// NewPlaceStore creates a place store with an empty mirror.
func NewPlaceStore(
	repo repository.PlaceRepository,
	publisher service.EventPublisher,
	validate *validator.Validate,
	logger *slog.Logger,
	opts PlaceStoreOptions,
) usecase.PlaceStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &placeStore{
		repo:      repo,
		publisher: publisher,
		validate:  validate,
		logger:    logger,
		opts:      opts,
		byID:      make(map[uuid.UUID]*entity.Place),
	}
}

func (s *placeStore) LoadAll(ctx context.Context) ([]*entity.Place, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	places, err := s.repo.FindAllPlaces(ctx)
	if err != nil {
		return nil, remoteFailure("load places", err)
	}

	s.mu.Lock()
	s.order = make([]uuid.UUID, 0, len(places))
	s.byID = make(map[uuid.UUID]*entity.Place, len(places))
	for _, place := range places {
		if place == nil {
			continue
		}
		if _, dup := s.byID[place.ID]; dup {
			s.logger.WarnContext(ctx, "Duplicate place in remote collection", slog.String("placeID", place.ID.String()))

			continue
		}
		s.byID[place.ID] = place.Clone()
		s.order = append(s.order, place.ID)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.subscribers.notify(snapshot)

	return cloneAll(snapshot), nil
}

func (s *placeStore) Create(ctx context.Context, input *usecase.CreatePlaceInput, creatorID uuid.UUID) (place *entity.Place, err error) {
	defer func() { s.observe("create", err) }()

	draft, err := s.validateInput(input, creatorID)
	if err != nil {
		return nil, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	var provisionalID uuid.UUID
	if s.opts.OptimisticCreate {
		provisionalID = uuid.New()
		provisional := draft.Clone()
		provisional.ID = provisionalID
		s.mutate(func() { s.insertLocked(provisional) })
	}

	created, err := s.repo.CreatePlace(ctx, draft)
	if err != nil {
		if s.opts.OptimisticCreate {
			s.mutate(func() { s.removeLocked(provisionalID) })
		}

		return nil, remoteFailure("create place", err)
	}
	if created == nil || created.ID == uuid.Nil {
		if s.opts.OptimisticCreate {
			s.mutate(func() { s.removeLocked(provisionalID) })
		}

		return nil, errors.Because(domainerrors.ErrPlaceStoreUnavailable, "create place",
			errors.New("persistence returned no place id"))
	}

	stored := created.Clone()
	s.mutate(func() {
		if s.opts.OptimisticCreate {
			s.replaceLocked(provisionalID, stored)
		} else {
			s.insertLocked(stored)
		}
	})

	s.publish(ctx, service.PlaceCreated, stored)

	return stored.Clone(), nil
}

func (s *placeStore) Delete(ctx context.Context, placeID, requesterID uuid.UUID) (err error) {
	defer func() { s.observe("delete", err) }()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	place, ok := s.byID[placeID]
	if ok {
		place = place.Clone()
	}
	s.mu.RUnlock()

	if !ok {
		return domainerrors.ErrPlaceNotFound
	}
	if !place.CreatedBy(requesterID) {
		return domainerrors.ErrPlaceUnauthorized
	}

	if err = s.repo.DeletePlace(ctx, placeID); err != nil {
		if !errors.Is(err, repository.ErrPlaceNotFound) {
			return remoteFailure("delete place", err)
		}
		s.logger.InfoContext(ctx, "Place already deleted remotely", slog.String("placeID", placeID.String()))
		err = nil
	}

	s.mutate(func() { s.removeLocked(placeID) })
	s.publish(ctx, service.PlaceDeleted, place)

	return nil
}

func (s *placeStore) Places() []*entity.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneAll(s.snapshotLocked())
}

func (s *placeStore) Get(placeID uuid.UUID) (*entity.Place, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	place, ok := s.byID[placeID]
	if !ok {
		return nil, false
	}

	return place.Clone(), true
}

func (s *placeStore) Subscribe(fn func([]*entity.Place)) func() {
	return s.subscribers.add(func(places []*entity.Place) {
		fn(cloneAll(places))
	})
}

func (s *placeStore) validateInput(input *usecase.CreatePlaceInput, creatorID uuid.UUID) (*entity.Place, error) {
	if input == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("place input is required")
	}

	normalized := *input
	normalized.Name = strings.TrimSpace(normalized.Name)
	normalized.Description = strings.TrimSpace(normalized.Description)
	normalized.Category = strings.TrimSpace(normalized.Category)

	if s.validate != nil {
		if err := s.validate.Struct(&normalized); err != nil {
			return nil, domainerrors.ErrValidationFailed.WithDetails(err.Error())
		}
	}
	if !normalized.Location().Valid() {
		return nil, domainerrors.ErrInvalidCoordinate
	}
	if creatorID == uuid.Nil {
		return nil, domainerrors.ErrPlaceUnauthorized
	}

	return &entity.Place{
		Name:        normalized.Name,
		Description: normalized.Description,
		Category:    entity.Category(normalized.Category),
		Location:    normalized.Location(),
		CreatorID:   creatorID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// mutate applies fn under the mirror lock and notifies subscribers with the result.
func (s *placeStore) mutate(fn func()) {
	s.mu.Lock()
	fn()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.subscribers.notify(snapshot)
}

func (s *placeStore) insertLocked(place *entity.Place) {
	if _, exists := s.byID[place.ID]; exists {
		s.byID[place.ID] = place

		return
	}
	s.byID[place.ID] = place
	s.order = append(s.order, place.ID)
}

func (s *placeStore) replaceLocked(oldID uuid.UUID, place *entity.Place) {
	if _, ok := s.byID[oldID]; !ok {
		s.insertLocked(place)

		return
	}
	delete(s.byID, oldID)
	s.byID[place.ID] = place
	for i, id := range s.order {
		if id == oldID {
			s.order[i] = place.ID

			break
		}
	}
}

func (s *placeStore) removeLocked(placeID uuid.UUID) {
	if _, ok := s.byID[placeID]; !ok {
		return
	}
	delete(s.byID, placeID)
	for i, id := range s.order {
		if id == placeID {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}
}

func (s *placeStore) snapshotLocked() []*entity.Place {
	out := make([]*entity.Place, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}

	return out
}

// publish emits a lifecycle event. Publishing never fails the mutation.
func (s *placeStore) publish(ctx context.Context, eventType service.PlaceEventType, place *entity.Place) {
	if s.publisher == nil {
		return
	}

	event := &service.PlaceEvent{
		Type:       eventType,
		PlaceID:    place.ID.String(),
		CreatorID:  place.CreatorID.String(),
		Category:   place.Category.String(),
		Latitude:   place.Location.Lat,
		Longitude:  place.Location.Lng,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishPlaceEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish place event",
			slog.String("type", string(eventType)),
			slog.String("placeID", event.PlaceID),
			slog.Any("error", err),
		)
	}
}

func (s *placeStore) observe(op string, err error) {
	if s.opts.OnMutation != nil {
		s.opts.OnMutation(op, err)
	}
}

// remoteFailure classifies a repository error. Client errors the repository already
// mapped (validation, conflict) pass through; everything else is a retryable outage.
func remoteFailure(op string, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPCode() < http.StatusInternalServerError {
		return errors.Wrap(err, op)
	}

	return errors.Because(domainerrors.ErrPlaceStoreUnavailable, op, err)
}

func cloneAll(places []*entity.Place) []*entity.Place {
	out := make([]*entity.Place, len(places))
	for i, place := range places {
		out[i] = place.Clone()
	}

	return out
}
