// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Place is a user-submitted point of interest shown on the map.
type Place struct {
	ID          uuid.UUID `json:"id"`          // Assigned by the persistence layer on insert.
	Name        string    `json:"name"`        // Short display name.
	Description string    `json:"description"` // Free-text description shown in the marker popup.
	Category    Category  `json:"category"`    // One of the fixed place categories.
	Location    LatLng    `json:"location"`    // Where the marker is drawn.
	CreatorID   uuid.UUID `json:"creator_id"`  // The user who created the place. Immutable.
	CreatedAt   time.Time `json:"created_at"`  // Timestamp of when the place was persisted.
}

// CreatedBy reports whether userID is the creator of the place.
func (p *Place) CreatedBy(userID uuid.UUID) bool {
	return p != nil && userID != uuid.Nil && p.CreatorID == userID
}

// Clone returns a copy of the place that shares no state with p.
func (p *Place) Clone() *Place {
	if p == nil {
		return nil
	}
	cloned := *p

	return &cloned
}

// Marker is a place as presented to a particular viewer.
type Marker struct {
	Place     *Place `json:"place"`
	Deletable bool   `json:"deletable"` // Whether the viewer may delete the place.
}
