package impl

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"placemap/internal/domain/entity"
	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/domain/repository"
	"placemap/internal/domain/service"
	"placemap/internal/domain/validation"
	mockRepo "placemap/internal/mocks/repository"
	mockService "placemap/internal/mocks/service"
	"placemap/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestPlaceStore(t *testing.T, opts PlaceStoreOptions) (usecase.PlaceStore, *mockRepo.MockPlaceRepository, *mockService.MockEventPublisher) {
	t.Helper()

	repo := mockRepo.NewMockPlaceRepository(t)
	publisher := mockService.NewMockEventPublisher(t)
	store := NewPlaceStore(repo, publisher, validation.New(), discardLogger(), opts)

	return store, repo, publisher
}

func testPlace(creator uuid.UUID, name string) *entity.Place {
	return &entity.Place{
		ID:          uuid.New(),
		Name:        name,
		Description: name + " description",
		Category:    entity.CategoryFood,
		Location:    entity.LatLng{Lat: 32.08, Lng: 34.78},
		CreatorID:   creator,
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func validInput() *usecase.CreatePlaceInput {
	return &usecase.CreatePlaceInput{
		Name:        "Falafel stand",
		Description: "Best falafel on the street",
		Category:    "Food",
		Latitude:    32.0853,
		Longitude:   34.7818,
	}
}

func TestPlaceStore_LoadAll(t *testing.T) {
	store, repo, _ := newTestPlaceStore(t, PlaceStoreOptions{})
	ctx := context.Background()
	creator := uuid.New()

	a := testPlace(creator, "a")
	b := testPlace(creator, "b")
	repo.EXPECT().FindAllPlaces(ctx).Return([]*entity.Place{a, b, a}, nil).Once()

	notified := 0
	store.Subscribe(func([]*entity.Place) { notified++ })

	places, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, places, 2, "duplicate ids are dropped")
	assert.Equal(t, a.ID, places[0].ID)
	assert.Equal(t, b.ID, places[1].ID)
	assert.Equal(t, 1, notified)

	// A second load replaces the mirror wholesale.
	c := testPlace(creator, "c")
	repo.EXPECT().FindAllPlaces(ctx).Return([]*entity.Place{c}, nil).Once()

	_, err = store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, store.Places(), 1)
	_, ok := store.Get(a.ID)
	assert.False(t, ok)
}

func TestPlaceStore_LoadAll_Error(t *testing.T) {
	store, repo, _ := newTestPlaceStore(t, PlaceStoreOptions{})
	ctx := context.Background()

	repo.EXPECT().FindAllPlaces(ctx).Return([]*entity.Place{testPlace(uuid.New(), "a")}, nil).Once()
	_, err := store.LoadAll(ctx)
	require.NoError(t, err)

	repo.EXPECT().FindAllPlaces(ctx).Return(nil, errors.New("connection reset")).Once()
	_, err = store.LoadAll(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrPlaceStoreUnavailable)
	assert.Len(t, store.Places(), 1, "mirror unchanged on failure")
}

func TestPlaceStore_Create_Success(t *testing.T) {
	store, repo, publisher := newTestPlaceStore(t, PlaceStoreOptions{})
	ctx := context.Background()
	creator := uuid.New()

	var stored *entity.Place
	repo.EXPECT().CreatePlace(ctx, mock.AnythingOfType("*entity.Place")).
		RunAndReturn(func(_ context.Context, place *entity.Place) (*entity.Place, error) {
			assert.Equal(t, uuid.Nil, place.ID, "ids are assigned by the persistence layer")
			stored = place.Clone()
			stored.ID = uuid.New()

			return stored, nil
		})
	publisher.EXPECT().PublishPlaceEvent(ctx, mock.MatchedBy(func(event *service.PlaceEvent) bool {
		return event.Type == service.PlaceCreated && event.PlaceID == stored.ID.String()
	})).Return(nil)

	place, err := store.Create(ctx, validInput(), creator)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, place.ID)
	assert.Equal(t, creator, place.CreatorID)
	assert.Equal(t, entity.CategoryFood, place.Category)
	assert.Equal(t, entity.LatLng{Lat: 32.0853, Lng: 34.7818}, place.Location)

	places := store.Places()
	require.Len(t, places, 1)
	assert.Equal(t, stored, places[0])
}

func TestPlaceStore_Create_ValidationError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *usecase.CreatePlaceInput)
		want   error
	}{
		{name: "missing name", mutate: func(in *usecase.CreatePlaceInput) { in.Name = "  " }, want: domainerrors.ErrValidationFailed},
		{name: "missing description", mutate: func(in *usecase.CreatePlaceInput) { in.Description = "" }, want: domainerrors.ErrValidationFailed},
		{name: "missing category", mutate: func(in *usecase.CreatePlaceInput) { in.Category = "" }, want: domainerrors.ErrValidationFailed},
		{name: "unknown category", mutate: func(in *usecase.CreatePlaceInput) { in.Category = "Museums" }, want: domainerrors.ErrValidationFailed},
		{name: "latitude out of range", mutate: func(in *usecase.CreatePlaceInput) { in.Latitude = 90.5 }, want: domainerrors.ErrValidationFailed},
		{name: "nan longitude", mutate: func(in *usecase.CreatePlaceInput) { in.Longitude = math.NaN() }, want: domainerrors.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, _ := newTestPlaceStore(t, PlaceStoreOptions{})
			input := validInput()
			tt.mutate(input)

			place, err := store.Create(context.Background(), input, uuid.New())
			assert.Nil(t, place)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, store.Places())
		})
	}
}

func TestPlaceStore_Create_RemoteFailure(t *testing.T) {
	store, repo, _ := newTestPlaceStore(t, PlaceStoreOptions{})
	ctx := context.Background()

	repo.EXPECT().CreatePlace(ctx, mock.Anything).Return(nil, errors.New("connection refused"))

	notified := 0
	store.Subscribe(func([]*entity.Place) { notified++ })

	place, err := store.Create(ctx, validInput(), uuid.New())
	assert.Nil(t, place)
	assert.ErrorIs(t, err, domainerrors.ErrPlaceStoreUnavailable)
	assert.Empty(t, store.Places())
	assert.Equal(t, 0, notified)
}

func TestPlaceStore_Create_RepositoryErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		repoErr  error
		wantErr  error
		wantCode string
	}{
		{
			name:     "constraint violation stays a validation error",
			repoErr:  domainerrors.ErrValidationFailed.WrapMessage("place violates a table constraint"),
			wantErr:  domainerrors.ErrValidationFailed,
			wantCode: "VALIDATION_FAILED",
		},
		{
			name:     "duplicate id stays a conflict",
			repoErr:  domainerrors.ErrConflict.WrapMessage("place id already exists"),
			wantErr:  domainerrors.ErrConflict,
			wantCode: "CONFLICT",
		},
		{
			name:     "database failure is retryable",
			repoErr:  domainerrors.NewDatabaseExecuteError(errors.New("connection reset"), "failed to create place"),
			wantErr:  domainerrors.ErrPlaceStoreUnavailable,
			wantCode: "NETWORK_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, repo, _ := newTestPlaceStore(t, PlaceStoreOptions{OptimisticCreate: true})
			ctx := context.Background()

			repo.EXPECT().CreatePlace(ctx, mock.Anything).Return(nil, tt.repoErr)

			place, err := store.Create(ctx, validInput(), uuid.New())
			assert.Nil(t, place)
			require.ErrorIs(t, err, tt.wantErr)

			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantCode, appErr.ErrorCode())
			assert.Empty(t, store.Places())
		})
	}
}

func TestPlaceStore_Create_PublishFailureIgnored(t *testing.T) {
	store, repo, publisher := newTestPlaceStore(t, PlaceStoreOptions{})
	ctx := context.Background()
	created := testPlace(uuid.New(), "park")

	repo.EXPECT().CreatePlace(ctx, mock.Anything).Return(created, nil)
	publisher.EXPECT().PublishPlaceEvent(ctx, mock.Anything).Return(errors.New("topic not found"))

	place, err := store.Create(ctx, validInput(), created.CreatorID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, place.ID)
}

func TestPlaceStore_Create_Optimistic(t *testing.T) {
	store, repo, publisher := newTestPlaceStore(t, PlaceStoreOptions{OptimisticCreate: true})
	ctx := context.Background()
	creator := uuid.New()
	created := testPlace(creator, "server row")

	repo.EXPECT().CreatePlace(ctx, mock.Anything).
		RunAndReturn(func(context.Context, *entity.Place) (*entity.Place, error) {
			provisional := store.Places()
			require.Len(t, provisional, 1, "provisional entry is visible during the write")
			assert.NotEqual(t, created.ID, provisional[0].ID)

			return created, nil
		})
	publisher.EXPECT().PublishPlaceEvent(ctx, mock.Anything).Return(nil)

	_, err := store.Create(ctx, validInput(), creator)
	require.NoError(t, err)

	places := store.Places()
	require.Len(t, places, 1)
	assert.Equal(t, created.ID, places[0].ID)
}

func TestPlaceStore_Create_OptimisticRollback(t *testing.T) {
	store, repo, _ := newTestPlaceStore(t, PlaceStoreOptions{OptimisticCreate: true})
	ctx := context.Background()

	var snapshots [][]*entity.Place
	store.Subscribe(func(places []*entity.Place) { snapshots = append(snapshots, places) })

	repo.EXPECT().CreatePlace(ctx, mock.Anything).Return(nil, errors.New("timeout"))

	_, err := store.Create(ctx, validInput(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrPlaceStoreUnavailable)
	assert.Empty(t, store.Places())
	require.Len(t, snapshots, 2)
	assert.Len(t, snapshots[0], 1)
	assert.Empty(t, snapshots[1])
}

func loadedStore(t *testing.T, places ...*entity.Place) (usecase.PlaceStore, *mockRepo.MockPlaceRepository, *mockService.MockEventPublisher) {
	t.Helper()

	store, repo, publisher := newTestPlaceStore(t, PlaceStoreOptions{})
	repo.EXPECT().FindAllPlaces(mock.Anything).Return(places, nil).Once()
	_, err := store.LoadAll(context.Background())
	require.NoError(t, err)

	return store, repo, publisher
}

func TestPlaceStore_Delete_Success(t *testing.T) {
	creator := uuid.New()
	place := testPlace(creator, "a")
	other := testPlace(uuid.New(), "b")
	store, repo, publisher := loadedStore(t, place, other)
	ctx := context.Background()

	repo.EXPECT().DeletePlace(ctx, place.ID).Return(nil)
	publisher.EXPECT().PublishPlaceEvent(ctx, mock.MatchedBy(func(event *service.PlaceEvent) bool {
		return event.Type == service.PlaceDeleted && event.PlaceID == place.ID.String()
	})).Return(nil)

	require.NoError(t, store.Delete(ctx, place.ID, creator))

	places := store.Places()
	require.Len(t, places, 1)
	assert.Equal(t, other.ID, places[0].ID)
}

func TestPlaceStore_Delete_UnauthorizedIsLocal(t *testing.T) {
	place := testPlace(uuid.New(), "a")
	store, _, _ := loadedStore(t, place)

	err := store.Delete(context.Background(), place.ID, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrPlaceUnauthorized)
	assert.Len(t, store.Places(), 1)
}

func TestPlaceStore_Delete_NotFoundIsLocal(t *testing.T) {
	store, _, _ := loadedStore(t)

	err := store.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrPlaceNotFound)
}

func TestPlaceStore_Delete_RemoteFailure(t *testing.T) {
	creator := uuid.New()
	place := testPlace(creator, "a")
	store, repo, _ := loadedStore(t, place)
	ctx := context.Background()

	repo.EXPECT().DeletePlace(ctx, place.ID).Return(errors.New("connection refused"))

	err := store.Delete(ctx, place.ID, creator)
	assert.ErrorIs(t, err, domainerrors.ErrPlaceStoreUnavailable)
	assert.Len(t, store.Places(), 1, "mirror unchanged on failure")
}

func TestPlaceStore_Delete_RemoteAlreadyGone(t *testing.T) {
	creator := uuid.New()
	place := testPlace(creator, "a")
	store, repo, publisher := loadedStore(t, place)
	ctx := context.Background()

	repo.EXPECT().DeletePlace(ctx, place.ID).Return(repository.ErrPlaceNotFound)
	publisher.EXPECT().PublishPlaceEvent(ctx, mock.Anything).Return(nil)

	require.NoError(t, store.Delete(ctx, place.ID, creator))
	assert.Empty(t, store.Places())
}

func TestPlaceStore_ReturnsCopies(t *testing.T) {
	place := testPlace(uuid.New(), "original")
	store, _, _ := loadedStore(t, place)

	place.Name = "mutated by caller"
	got, ok := store.Get(place.ID)
	require.True(t, ok)
	assert.Equal(t, "original", got.Name)

	got.Name = "mutated again"
	assert.Equal(t, "original", store.Places()[0].Name)
}

func TestPlaceStore_OnMutation(t *testing.T) {
	var ops []string
	repo := mockRepo.NewMockPlaceRepository(t)
	store := NewPlaceStore(repo, nil, validation.New(), discardLogger(), PlaceStoreOptions{
		OnMutation: func(op string, err error) {
			if err != nil {
				op += ":error"
			}
			ops = append(ops, op)
		},
	})

	_, _ = store.Create(context.Background(), &usecase.CreatePlaceInput{}, uuid.New())
	_ = store.Delete(context.Background(), uuid.New(), uuid.New())

	assert.Equal(t, []string{"create:error", "delete:error"}, ops)
}
