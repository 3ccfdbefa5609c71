package impl

import (
	"context"
	"log/slog"

	"placemap/config"
	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/domain/repository"
	"placemap/internal/domain/service"
	"placemap/internal/domain/validation"
	"placemap/internal/infra/metrics"
	"placemap/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/fx"
)

// SessionRegistryParams holds dependencies for the session registry, injected by Fx
type SessionRegistryParams struct {
	fx.In

	Config    *config.Config
	Logger    *slog.Logger
	PlaceRepo repository.PlaceRepository
	Geocoder  service.Geocoder
	Publisher service.EventPublisher
	Metrics   *metrics.Metrics `optional:"true"`
	Lc        fx.Lifecycle     `optional:"true"`
}

type sessionRegistry struct {
	placesCfg   *config.PlacesConfig
	geocoderCfg *config.GeocoderConfig
	logger      *slog.Logger
	placeRepo   repository.PlaceRepository
	geocoder    service.Geocoder
	publisher   service.EventPublisher
	validate    *validator.Validate
	metrics     *metrics.Metrics

	sessions *xsync.MapOf[uuid.UUID, usecase.PlaceSession]
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(params SessionRegistryParams) usecase.SessionRegistry {
	placesCfg := params.Config.Places
	if placesCfg == nil {
		placesCfg = config.DefaultPlacesConfig()
	}
	geocoderCfg := params.Config.Geocoder
	if geocoderCfg == nil {
		geocoderCfg = config.DefaultGeocoderConfig()
	}

	registry := &sessionRegistry{
		placesCfg:   placesCfg,
		geocoderCfg: geocoderCfg,
		logger:      params.Logger,
		placeRepo:   params.PlaceRepo,
		geocoder:    params.Geocoder,
		publisher:   params.Publisher,
		validate:    validation.New(),
		metrics:     params.Metrics,
		sessions:    xsync.NewMapOf[uuid.UUID, usecase.PlaceSession](),
	}

	if params.Lc != nil {
		params.Lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				registry.CloseAll()

				return nil
			},
		})
	}

	return registry
}

func (r *sessionRegistry) SignIn(ctx context.Context, userID uuid.UUID) (usecase.PlaceSession, error) {
	if userID == uuid.Nil {
		return nil, domainerrors.ErrPlaceUnauthorized
	}

	opts := PlaceStoreOptions{OptimisticCreate: r.placesCfg.OptimisticCreate}
	if r.metrics != nil {
		opts.OnMutation = r.metrics.RecordPlaceMutation
	}
	store := NewPlaceStore(r.placeRepo, r.publisher, r.validate, r.logger, opts)
	if _, err := store.LoadAll(ctx); err != nil {
		return nil, err
	}

	session := NewPlaceSession(PlaceSessionParams{
		UserID:     userID,
		Store:      store,
		Selection:  NewSelectionController(),
		Viewport:   NewMapViewport(r.placesCfg, r.logger),
		Resolver:   NewGeocodeResolver(r.geocoder, r.geocoderCfg.Debounce, r.logger),
		SearchZoom: r.placesCfg.SearchZoom,
		Logger:     r.logger,
	})

	if previous, replaced := r.sessions.LoadAndStore(userID, session); replaced {
		previous.Close()
	}
	r.recordActive()

	r.logger.InfoContext(ctx, "Session started",
		slog.String("userID", userID.String()),
		slog.Int("places", len(store.Places())),
	)

	return session, nil
}

func (r *sessionRegistry) SignOut(userID uuid.UUID) bool {
	session, ok := r.sessions.LoadAndDelete(userID)
	if !ok {
		return false
	}
	session.Close()
	r.recordActive()

	r.logger.Info("Session ended", slog.String("userID", userID.String()))

	return true
}

func (r *sessionRegistry) Get(userID uuid.UUID) (usecase.PlaceSession, error) {
	session, ok := r.sessions.Load(userID)
	if !ok {
		return nil, domainerrors.ErrSessionNotFound
	}

	return session, nil
}

// CloseAll ends every session. Used on shutdown.
func (r *sessionRegistry) CloseAll() {
	r.sessions.Range(func(userID uuid.UUID, session usecase.PlaceSession) bool {
		r.sessions.Delete(userID)
		session.Close()

		return true
	})
	r.recordActive()
}

func (r *sessionRegistry) recordActive() {
	if r.metrics != nil {
		r.metrics.SetActiveSessions(r.sessions.Size())
	}
}
