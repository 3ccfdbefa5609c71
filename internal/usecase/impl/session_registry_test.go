package impl

import (
	"context"
	"errors"
	"testing"

	"placemap/config"
	"placemap/internal/domain/entity"
	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/infra/metrics"
	mockRepo "placemap/internal/mocks/repository"
	mockService "placemap/internal/mocks/service"
	"placemap/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (usecase.SessionRegistry, *mockRepo.MockPlaceRepository, *metrics.Metrics) {
	t.Helper()

	repo := mockRepo.NewMockPlaceRepository(t)
	m := metrics.NewMetrics()
	registry := NewSessionRegistry(SessionRegistryParams{
		Config:    &config.Config{},
		Logger:    discardLogger(),
		PlaceRepo: repo,
		Geocoder:  mockService.NewMockGeocoder(t),
		Publisher: mockService.NewMockEventPublisher(t),
		Metrics:   m,
	})

	return registry, repo, m
}

func TestSessionRegistry_SignInLoadsPlaces(t *testing.T) {
	registry, repo, m := newTestRegistry(t)
	ctx := context.Background()
	userID := uuid.New()
	place := testPlace(userID, "home")

	repo.EXPECT().FindAllPlaces(ctx).Return([]*entity.Place{place}, nil).Once()

	session, err := registry.SignIn(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, session.UserID())

	markers := session.Markers()
	require.Len(t, markers, 1)
	assert.True(t, markers[0].Deletable)

	got, err := registry.Get(userID)
	require.NoError(t, err)
	assert.Same(t, session, got)
	assert.InDelta(t, 1, gaugeValue(t, m, "placemap_active_sessions"), 0)

	registry.SignOut(userID)
	assert.InDelta(t, 0, gaugeValue(t, m, "placemap_active_sessions"), 0)
}

func gaugeValue(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)

	return 0
}

func TestSessionRegistry_SignInLoadFailure(t *testing.T) {
	registry, repo, _ := newTestRegistry(t)
	ctx := context.Background()
	userID := uuid.New()

	repo.EXPECT().FindAllPlaces(ctx).Return(nil, errors.New("connection refused"))

	_, err := registry.SignIn(ctx, userID)
	assert.ErrorIs(t, err, domainerrors.ErrPlaceStoreUnavailable)

	_, err = registry.Get(userID)
	assert.ErrorIs(t, err, domainerrors.ErrSessionNotFound)
}

func TestSessionRegistry_ReSignInReplacesSession(t *testing.T) {
	registry, repo, _ := newTestRegistry(t)
	ctx := context.Background()
	userID := uuid.New()

	repo.EXPECT().FindAllPlaces(ctx).Return(nil, nil).Times(2)

	first, err := registry.SignIn(ctx, userID)
	require.NoError(t, err)
	second, err := registry.SignIn(ctx, userID)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	_, err = first.ToggleAddPlace()
	assert.ErrorIs(t, err, domainerrors.ErrSessionClosed)

	current, err := registry.Get(userID)
	require.NoError(t, err)
	assert.Same(t, second, current)
}

func TestSessionRegistry_SignOut(t *testing.T) {
	registry, repo, _ := newTestRegistry(t)
	ctx := context.Background()
	userID := uuid.New()

	repo.EXPECT().FindAllPlaces(ctx).Return(nil, nil)

	session, err := registry.SignIn(ctx, userID)
	require.NoError(t, err)

	var kinds []usecase.SessionEventKind
	session.Subscribe(func(event usecase.SessionEvent) { kinds = append(kinds, event.Kind) })

	assert.True(t, registry.SignOut(userID))
	assert.False(t, registry.SignOut(userID))
	assert.Equal(t, []usecase.SessionEventKind{usecase.EventClosed}, kinds)

	_, err = registry.Get(userID)
	assert.ErrorIs(t, err, domainerrors.ErrSessionNotFound)
}

func TestSessionRegistry_SignInRequiresUser(t *testing.T) {
	registry, _, _ := newTestRegistry(t)

	_, err := registry.SignIn(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, domainerrors.ErrPlaceUnauthorized)
}

func TestSessionRegistry_DefaultsApplied(t *testing.T) {
	registry, repo, _ := newTestRegistry(t)
	repo.EXPECT().FindAllPlaces(mock.Anything).Return(nil, nil)

	session, err := registry.SignIn(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 10, session.View().Zoom)
}
