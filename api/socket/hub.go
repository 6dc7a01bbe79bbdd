// Package socket carries the live subscriptions for chat streams. Each
// websocket connection subscribes to exactly one stream; on every append the
// handlers push the stream's full ordered message snapshot (not a delta) to
// every subscriber, and the consumer replaces its view wholesale.
package socket

import (
	"sync"

	"go.uber.org/zap"
)

// Hub maintains the set of active clients grouped by stream id
type Hub struct {
	// Registered clients per stream
	streams map[string]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex to protect concurrent access to the streams map
	mu sync.RWMutex
}

// NewHub creates a new websocket hub
func NewHub() *Hub {
	return &Hub{
		streams:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub and handles client registration and unregistration
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register subscribes the client to its stream
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister releases the client's subscription. Safe to call more than once;
// only the first call closes the send channel.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.streams[c.StreamID]
	if !ok {
		clients = make(map[*Client]bool)
		h.streams[c.StreamID] = clients
	}
	clients[c] = true

	zap.S().Debugw("subscription opened",
		"stream", c.StreamID,
		"user", c.UserID)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.streams[c.StreamID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.streams, c.StreamID)
	}
	close(c.send)

	zap.S().Debugw("subscription released",
		"stream", c.StreamID,
		"user", c.UserID)
}

// Broadcast delivers a snapshot payload to every subscriber of the stream.
// Slow consumers with a full send buffer are skipped rather than blocking the
// sender; the next snapshot supersedes anything they missed.
func (h *Hub) Broadcast(streamID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.streams[streamID] {
		select {
		case client.send <- payload:
		default:
			zap.S().Warnw("dropping snapshot for slow subscriber",
				"stream", streamID,
				"user", client.UserID)
		}
	}
}

// Subscribers returns the number of active subscriptions for a stream
func (h *Hub) Subscribers(streamID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[streamID])
}
