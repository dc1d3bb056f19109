package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"

	"inventario/internal/events"
)

// writeWait bounds each write so a client that stops reading is dropped.
const writeWait = 10 * time.Second

// ErrBacklogFull is returned by Publish when the hub is behind and the event was dropped.
var ErrBacklogFull = errors.New("ws: broadcast backlog full, event dropped")

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Hub fans product events out to connected websocket clients.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[Conn]struct{}
	register   chan Conn
	unregister chan Conn
	broadcast  chan []byte
	done       chan struct{}
	writeWait  time.Duration
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[Conn]struct{}),
		register:   make(chan Conn),
		unregister: make(chan Conn),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		writeWait:  writeWait,
		log:        log.With("component", "ws"),
	}
}

// Run serves the hub until ctx is canceled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.Close()
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Debug("ws_client_connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.Close()
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				if err := h.write(c, msg); err != nil {
					h.log.Debug("ws_client_dropped", "error", err)
					c.Close()
					delete(h.clients, c)
				}
			}
		}
	}
}

func (h *Hub) write(c Conn, msg []byte) error {
	if err := c.SetWriteDeadline(time.Now().Add(h.writeWait)); err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, msg)
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *Hub) Register(c Conn) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes and closes a client.
func (h *Hub) Unregister(c Conn) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish implements events.Publisher. It never waits on slow clients: when the
// backlog is full the event is dropped and ErrBacklogFull returned.
func (h *Hub) Publish(ctx context.Context, e events.ProductEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := json.Marshal(e)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
		return nil
	case <-h.done:
		return nil
	default:
		return ErrBacklogFull
	}
}

// Serve is the per-connection loop for the /ws route. It blocks until the client goes away.
func (h *Hub) Serve(c *websocket.Conn) {
	h.Register(c)
	defer h.Unregister(c)
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
