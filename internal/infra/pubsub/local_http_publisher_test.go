package pubsub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	deliverycontext "placemap/internal/delivery/context"
	"placemap/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalHTTPPublisher_PublishPlaceEvent(t *testing.T) {
	var received PubSubPushMessage
	var requestIDHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestIDHeader = r.Header.Get("X-Request-Id")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}
		if err := json.Unmarshal(body, &received); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	publisher := NewLocalHTTPPublisher(server.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	actorID := uuid.MustParse("0b8f1f6e-0a3e-4c55-8a4e-6f1e2d3c4b5a")
	ctx := deliverycontext.WithRequestID(context.Background(), "req-123")
	ctx = deliverycontext.WithUserID(ctx, actorID)

	event := &service.PlaceEvent{
		Type:       service.PlaceCreated,
		PlaceID:    "8e3c7a9e-3b0e-4b1e-9d61-0f5b6c1d2e3f",
		CreatorID:  "0b8f1f6e-0a3e-4c55-8a4e-6f1e2d3c4b5a",
		Category:   "Food",
		Latitude:   32.0853,
		Longitude:  34.7818,
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	err := publisher.PublishPlaceEvent(ctx, event)
	require.NoError(t, err)

	assert.Equal(t, "req-123", requestIDHeader)
	assert.Equal(t, "place.created", received.Message.Attributes["type"])
	assert.Equal(t, event.PlaceID, received.Message.Attributes["place_id"])
	assert.Equal(t, "req-123", received.Message.Attributes["request_id"])
	assert.Equal(t, actorID.String(), received.Message.Attributes["actor_id"])

	data, err := base64.StdEncoding.DecodeString(received.Message.Data)
	require.NoError(t, err)

	var decoded service.PlaceEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, event.PlaceID, decoded.PlaceID)
	assert.Equal(t, "req-123", decoded.RequestID)
	assert.InDelta(t, 34.7818, decoded.Longitude, 1e-9)
}

func TestLocalHTTPPublisher_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	publisher := NewLocalHTTPPublisher(server.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := publisher.PublishPlaceEvent(context.Background(), &service.PlaceEvent{
		Type:    service.PlaceDeleted,
		PlaceID: "8e3c7a9e-3b0e-4b1e-9d61-0f5b6c1d2e3f",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
