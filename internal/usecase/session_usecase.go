// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"placemap/internal/domain/entity"
	"placemap/internal/domain/service"

	"github.com/google/uuid"
)

// DraftForm is the user-entered part of a new place. The location comes from the selection draft.
type DraftForm struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
}

// SessionEventKind names what changed in a session.
type SessionEventKind string

const (
	EventMarkers   SessionEventKind = "markers"
	EventSelection SessionEventKind = "selection"
	EventView      SessionEventKind = "view"
	EventSearch    SessionEventKind = "search"
	EventClosed    SessionEventKind = "closed"
)

// SelectionView is the selection state as shown to the rendering surface.
type SelectionView struct {
	State entity.SelectionState  `json:"state"`
	Draft *entity.SelectionDraft `json:"draft,omitempty"`
}

// SearchView is the search box as shown to the rendering surface.
type SearchView struct {
	Query      string             `json:"query"`
	Candidates []entity.Candidate `json:"candidates"`
	Notice     string             `json:"notice,omitempty"`
}

// SessionEvent is pushed to the rendering surface. Data holds the value matching Kind.
type SessionEvent struct {
	Kind SessionEventKind `json:"type"`
	Data any              `json:"data,omitempty"`
}

// SessionSnapshot is the full state needed to render a session from scratch.
type SessionSnapshot struct {
	UserID    uuid.UUID             `json:"user_id"`
	Selection SelectionView         `json:"selection"`
	View      entity.ViewportTarget `json:"view"`
	Markers   []entity.Marker       `json:"markers"`
	Search    SearchView            `json:"search"`
}

// PlaceSession composes the place store, selection workflow, viewport and
// geocoder of one signed-in user. Events within a session are serialized.
type PlaceSession interface {
	UserID() uuid.UUID

	ToggleAddPlace() (SelectionView, error)
	MapClick(point entity.LatLng) (SelectionView, error)
	CancelDraft() (SelectionView, error)

	// SubmitDraft persists the open draft with form. The draft stays open on failure.
	SubmitDraft(ctx context.Context, form *DraftForm) (*entity.Place, error)

	// DeletePlace deletes a place created by the current user.
	DeletePlace(ctx context.Context, placeID uuid.UUID) error

	// Markers lists every place with its deletable flag for the current user.
	Markers() []entity.Marker

	Search(ctx context.Context, query string) (*SearchResult, error)
	SelectCandidate(candidate entity.Candidate) (entity.ViewportTarget, error)

	// Locate recenters on the device position. A location failure is returned
	// together with the unchanged target.
	Locate(ctx context.Context, locator service.DeviceLocator) (entity.ViewportTarget, error)
	SurfaceMoved(center entity.LatLng, zoom int) entity.ViewportTarget
	View() entity.ViewportTarget

	Snapshot() *SessionSnapshot
	Subscribe(fn func(event SessionEvent)) (unsubscribe func())

	// Close detaches all subscriptions and cancels pending searches.
	Close()
}

// SessionRegistry owns the PlaceSession of every signed-in user.
type SessionRegistry interface {
	// SignIn creates the session of userID and loads its places. A previous
	// session of the same user is closed and replaced.
	SignIn(ctx context.Context, userID uuid.UUID) (PlaceSession, error)

	// SignOut closes the session of userID. Reports whether one existed.
	SignOut(userID uuid.UUID) bool

	Get(userID uuid.UUID) (PlaceSession, error)
}
