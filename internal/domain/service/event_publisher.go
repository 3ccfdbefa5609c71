package service

import (
	"context"
	"time"
)

// PlaceEventType names a place lifecycle transition.
type PlaceEventType string

const (
	PlaceCreated PlaceEventType = "place.created"
	PlaceDeleted PlaceEventType = "place.deleted"
)

// PlaceEvent is published after a place mutation has been committed
type PlaceEvent struct {
	RequestID  string         `json:"request_id,omitempty"` // For distributed tracing
	Type       PlaceEventType `json:"type"`
	PlaceID    string         `json:"place_id"`
	CreatorID  string         `json:"creator_id"`
	Category   string         `json:"category,omitempty"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishPlaceEvent publishes a committed place mutation
	PublishPlaceEvent(ctx context.Context, event *PlaceEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
