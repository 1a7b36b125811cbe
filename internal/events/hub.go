// Package events streams zone state changes to websocket clients. The hub
// subscribes to the state store's change channel and pushes a full zone
// snapshot whenever a reconciliation pass changed anything; clients never
// see partial diffs, so a dropped frame costs nothing.
package events

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avrhub/avr-hub-go/internal/avr"
)

const (
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
	sendBufferSize = 8
)

// StateMessage is one frame on the stream.
type StateMessage struct {
	Type  string             `json:"type"` // Always "zones"
	Zones []avr.ZoneResource `json:"zones"`
}

// Hub fans zone snapshots out to all connected clients.
type Hub struct {
	ctrl    *avr.Controller
	sources *avr.SourceTable
	store   *avr.StateStore
	logger  *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	stop    chan struct{}
	stopped sync.Once
}

type client struct {
	conn *websocket.Conn
	send chan StateMessage
}

// NewHub creates a hub over the controller's store.
func NewHub(ctrl *avr.Controller, sources *avr.SourceTable, store *avr.StateStore, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		ctrl:    ctrl,
		sources: sources,
		store:   store,
		logger:  logger,
		clients: make(map[*client]struct{}),
		stop:    make(chan struct{}),
	}
}

// Run blocks, forwarding store change notifications to clients until Close.
// Notifications coalesce on the store side; each wakeup sends one snapshot.
func (h *Hub) Run() {
	watch := h.store.Watch()
	defer h.store.Unwatch(watch)

	for {
		select {
		case <-watch:
			h.broadcast(h.snapshot())
		case <-h.stop:
			return
		}
	}
}

// Close stops the run loop and disconnects all clients.
func (h *Hub) Close() {
	h.stopped.Do(func() { close(h.stop) })

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// ClientCount returns the number of connected stream clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Register takes ownership of an upgraded connection: the client gets an
// immediate snapshot, then every subsequent change.
func (h *Hub) Register(conn *websocket.Conn) {
	c := &client{
		conn: conn,
		send: make(chan StateMessage, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	c.send <- h.snapshot()

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

func (h *Hub) snapshot() StateMessage {
	zones := h.ctrl.Zones()
	resources := make([]avr.ZoneResource, 0, len(zones))
	for _, zone := range zones {
		resource, err := avr.BuildZoneResource(h.ctrl, h.sources, zone)
		if err != nil {
			continue
		}
		resources = append(resources, resource)
	}
	return StateMessage{Type: "zones", Zones: resources}
}

func (h *Hub) broadcast(msg StateMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Slow client; the next snapshot supersedes this one anyway.
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				h.unregister(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// readPump drains inbound frames; the stream is one-way but reading is
// required to process control frames and notice disconnects.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.unregister(c)
			return
		}
	}
}
