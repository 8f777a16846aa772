// Package dashboard broadcasts live terminal location updates to connected
// websocket clients, for a browser-side map view of a running server.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/h4tr3d/jt808/internal/applog"
)

// LocationEvent is one terminal's location update, broadcast as JSON.
type LocationEvent struct {
	Phone     string    `json:"phone"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     uint16    `json:"speed"`
	Bearing   uint16    `json:"bearing"`
	Timestamp time.Time `json:"timestamp"`
}

type client struct {
	conn     *websocket.Conn
	messages chan []byte
}

// Hub fans location events out to every connected websocket client.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan LocationEvent
	register   chan *client
	unregister chan *client
	log        zerolog.Logger
	mu         sync.RWMutex
}

// NewHub returns a Hub; call Run in its own goroutine to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan LocationEvent, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		log:        applog.Component("dashboard"),
	}
}

// Run drives the hub's event loop until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.messages)
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Error().Err(err).Msg("marshal location event")
				continue
			}
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.messages <- data:
				default:
					h.log.Warn().Msg("client buffer full, dropping location event")
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.messages)
			}
			h.clients = make(map[*client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Broadcast publishes ev to every connected client. Never blocks.
func (h *Hub) Broadcast(ev LocationEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn().Str("phone", ev.Phone).Msg("broadcast channel full, dropping location event")
	}
}

// Handler returns the HTTP handler that upgrades requests to websocket
// connections and streams location events to them.
func (h *Hub) Handler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
			return
		}
		c := &client{conn: conn, messages: make(chan []byte, 256)}
		h.register <- c

		go func() {
			defer func() {
				h.unregister <- c
				_ = c.conn.Close()
			}()
			c.conn.SetReadLimit(1024)
			for {
				if _, _, err := c.conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		go func() {
			for msg := range c.messages {
				_ = c.conn.WriteMessage(websocket.TextMessage, msg)
			}
		}()
	})
}

// ClientCount reports how many websocket clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
