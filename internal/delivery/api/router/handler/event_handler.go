package handler

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"placemap/config"
	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/errors"
	"placemap/internal/infra/metrics"
	"placemap/internal/usecase"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const (
	bufferSize     = 1024
	outboundBuffer = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
)

const (
	// EventSnapshot is the first message of every stream.
	EventSnapshot usecase.SessionEventKind = "snapshot"
	// EventError reports a rejected inbound message.
	EventError usecase.SessionEventKind = "error"
)

// Inbound message types.
const (
	messageClick  = "click"
	messageMoved  = "moved"
	messageToggle = "toggle"
	messageCancel = "cancel"
	messageSearch = "search"
)

// ClientMessage is an interaction reported by the rendering surface over the stream.
type ClientMessage struct {
	Type   string        `json:"type"`
	Point  *PointRequest `json:"point,omitempty"`
	Center *PointRequest `json:"center,omitempty"`
	Zoom   int           `json:"zoom,omitempty"`
	Query  string        `json:"query,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EventHandlerParams holds dependencies for EventHandler, injected by Fx.
type EventHandlerParams struct {
	fx.In

	Registry usecase.SessionRegistry
	Config   *config.Config
	Metrics  *metrics.Metrics `optional:"true"`
	Logger   *slog.Logger
}

// EventHandler streams session events to the rendering surface and applies its interactions
type EventHandler struct {
	registry usecase.SessionRegistry
	metrics  *metrics.Metrics
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewEventHandler is the constructor for EventHandler
func NewEventHandler(params EventHandlerParams) *EventHandler {
	corsHosts := params.Config.HTTP.CORSHosts

	return &EventHandler{
		registry: params.Registry,
		metrics:  params.Metrics,
		logger:   params.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  bufferSize,
			WriteBufferSize: bufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r.Header.Get("Origin"), corsHosts)
			},
			EnableCompression: true,
		},
	}
}

// Stream upgrades to a websocket, sends a snapshot and then every session event.
func (h *EventHandler) Stream(c echo.Context) error {
	session, err := sessionOf(c, h.registry)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already answered the request.
		h.logger.Warn("Failed to upgrade event stream", slog.Any("error", err))

		return nil
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.IncrementEventStreams()
		defer h.metrics.DecrementEventStreams()
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	queue := newEventQueue(outboundBuffer, func(event usecase.SessionEvent) {
		h.logger.Warn("Dropping session event for slow client",
			slog.String("userID", session.UserID().String()),
			slog.String("type", string(event.Kind)),
		)
	})

	unsubscribe := session.Subscribe(queue.push)
	defer unsubscribe()

	go h.readLoop(ctx, cancel, conn, session, queue.push)

	if err := h.write(conn, usecase.SessionEvent{Kind: EventSnapshot, Data: session.Snapshot()}); err != nil {
		return nil
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeStream(conn, websocket.CloseNormalClosure)

			return nil
		case event := <-queue.events:
			if err := h.write(conn, event); err != nil {
				return nil
			}
		case <-queue.closed:
			for event := range queue.pending() {
				if err := h.write(conn, event); err != nil {
					return nil
				}
			}
			if err := h.write(conn, usecase.SessionEvent{Kind: usecase.EventClosed}); err == nil {
				h.closeStream(conn, websocket.CloseGoingAway)
			}

			return nil
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

func (h *EventHandler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, session usecase.PlaceSession, send func(usecase.SessionEvent)) {
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("Event stream read failed", slog.Any("error", err))
			}

			return
		}

		if err := h.apply(ctx, session, &msg); err != nil {
			send(usecase.SessionEvent{Kind: EventError, Data: toErrorPayload(err)})
		}
	}
}

// apply performs one inbound interaction. State changes reach the client as session events.
func (h *EventHandler) apply(ctx context.Context, session usecase.PlaceSession, msg *ClientMessage) error {
	switch msg.Type {
	case messageClick:
		if msg.Point == nil {
			return domainerrors.ErrInvalidCoordinate
		}
		_, err := session.MapClick(msg.Point.LatLng())

		return err
	case messageMoved:
		if msg.Center == nil {
			return domainerrors.ErrInvalidCoordinate
		}
		session.SurfaceMoved(msg.Center.LatLng(), msg.Zoom)

		return nil
	case messageToggle:
		_, err := session.ToggleAddPlace()

		return err
	case messageCancel:
		_, err := session.CancelDraft()

		return err
	case messageSearch:
		// Searches are debounced, so the read loop must keep going while one waits.
		go func() {
			if _, err := session.Search(ctx, msg.Query); err != nil &&
				!errors.Is(err, domainerrors.ErrSearchSuperseded) && ctx.Err() == nil {
				h.logger.Warn("Stream search failed", slog.Any("error", err))
			}
		}()

		return nil
	default:
		return domainerrors.ErrValidationFailed.WithDetails("unknown message type " + msg.Type)
	}
}

// eventQueue buffers session events for one stream. Ordinary events are dropped
// when the buffer is full; the closing event is never dropped.
type eventQueue struct {
	events chan usecase.SessionEvent
	closed chan struct{}
	once   sync.Once
	onDrop func(usecase.SessionEvent)
}

func newEventQueue(size int, onDrop func(usecase.SessionEvent)) *eventQueue {
	return &eventQueue{
		events: make(chan usecase.SessionEvent, size),
		closed: make(chan struct{}),
		onDrop: onDrop,
	}
}

func (q *eventQueue) push(event usecase.SessionEvent) {
	if event.Kind == usecase.EventClosed {
		q.once.Do(func() { close(q.closed) })

		return
	}

	select {
	case <-q.closed:
		return
	default:
	}

	select {
	case q.events <- event:
	default:
		if q.onDrop != nil {
			q.onDrop(event)
		}
	}
}

// pending yields the events buffered so far without waiting for more.
func (q *eventQueue) pending() iter.Seq[usecase.SessionEvent] {
	return func(yield func(usecase.SessionEvent) bool) {
		for {
			select {
			case event := <-q.events:
				if !yield(event) {
					return
				}
			default:
				return
			}
		}
	}
}

func (h *EventHandler) write(conn *websocket.Conn, event usecase.SessionEvent) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(event); err != nil {
		h.logger.Debug("Event stream write failed", slog.Any("error", err))

		return errors.WithStack(err)
	}

	return nil
}

func (h *EventHandler) closeStream(conn *websocket.Conn, code int) {
	message := websocket.FormatCloseMessage(code, "")
	_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
}

func toErrorPayload(err error) errorPayload {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return errorPayload{Code: appErr.ErrorCode(), Message: appErr.Message()}
	}

	return errorPayload{
		Code:    domainerrors.ErrInternalError.ErrorCode(),
		Message: domainerrors.ErrInternalError.Message(),
	}
}

// originAllowed accepts requests without an Origin header and, when hosts are
// configured, only origins whose host matches one of them.
func originAllowed(origin string, hosts []string) bool {
	if origin == "" || len(hosts) == 0 {
		return true
	}

	origin = strings.ToLower(origin)
	for _, host := range hosts {
		host = strings.ToLower(host)
		if strings.HasSuffix(host, ":443") && strings.HasPrefix(origin, "https://") {
			host = strings.TrimSuffix(host, ":443")
		}
		if strings.HasSuffix(host, ":80") && strings.HasPrefix(origin, "http://") {
			host = strings.TrimSuffix(host, ":80")
		}
		if strings.Contains(origin, host) {
			return true
		}
	}

	return false
}
