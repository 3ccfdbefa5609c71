// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"placemap/internal/delivery/api/middleware"
	"placemap/internal/delivery/api/router/handler"
	"placemap/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	SessionHandler   *handler.SessionHandler
	SelectionHandler *handler.SelectionHandler
	PlaceHandler     *handler.PlaceHandler
	GeocodeHandler   *handler.GeocodeHandler
	ViewportHandler  *handler.ViewportHandler
	EventHandler     *handler.EventHandler
	AuthMiddleware   *middleware.AuthMiddleware
	Metrics          *metrics.Metrics `optional:"true"`
}

// router holds all the handlers that need to be registered.
type router struct {
	sessionHandler   *handler.SessionHandler
	selectionHandler *handler.SelectionHandler
	placeHandler     *handler.PlaceHandler
	geocodeHandler   *handler.GeocodeHandler
	viewportHandler  *handler.ViewportHandler
	eventHandler     *handler.EventHandler
	authMiddleware   *middleware.AuthMiddleware
	metrics          *metrics.Metrics
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		sessionHandler:   params.SessionHandler,
		selectionHandler: params.SelectionHandler,
		placeHandler:     params.PlaceHandler,
		geocodeHandler:   params.GeocodeHandler,
		viewportHandler:  params.ViewportHandler,
		eventHandler:     params.EventHandler,
		authMiddleware:   params.AuthMiddleware,
		metrics:          params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	if r.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))
	}

	// API v1 routes
	apiV1 := e.Group("/api/v1")
	apiV1.Use(r.authMiddleware.Authenticate) // All API v1 routes require authentication

	sessionGroup := apiV1.Group("/session")
	{
		sessionGroup.POST("", r.sessionHandler.SignIn)
		sessionGroup.GET("", r.sessionHandler.Snapshot)
		sessionGroup.DELETE("", r.sessionHandler.SignOut)
		sessionGroup.GET("/events", r.eventHandler.Stream)

		sessionGroup.POST("/selection/toggle", r.selectionHandler.Toggle)
		sessionGroup.POST("/selection/click", r.selectionHandler.Click)
		sessionGroup.POST("/draft", r.selectionHandler.SubmitDraft)
		sessionGroup.DELETE("/draft", r.selectionHandler.CancelDraft)

		sessionGroup.GET("/viewport", r.viewportHandler.View)
		sessionGroup.POST("/viewport/locate", r.viewportHandler.Locate)
		sessionGroup.POST("/viewport/moved", r.viewportHandler.Moved)
	}

	placesGroup := apiV1.Group("/places")
	{
		placesGroup.GET("", r.placeHandler.ListMarkers)
		placesGroup.DELETE("/:id", r.placeHandler.DeletePlace)
	}
	apiV1.GET("/places.geojson", r.placeHandler.ListMarkersGeoJSON)

	geocodeGroup := apiV1.Group("/geocode")
	{
		geocodeGroup.GET("/search", r.geocodeHandler.Search)
		geocodeGroup.POST("/select", r.geocodeHandler.Select)
	}
}
