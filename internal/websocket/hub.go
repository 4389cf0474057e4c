package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Envelope is the frame broadcast to all clients: the topic the event was
// published under plus the event payload itself.
type Envelope struct {
	Topic string `json:"topic"`
	Event any    `json:"event"`
}

// Hub maintains the set of active WebSocket clients and fans out event
// envelopes to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends an envelope to all connected clients. Delivery is best
// effort: a client whose buffer is full misses the message.
func (h *Hub) Broadcast(env Envelope) bool {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("marshal broadcast", "topic", env.Topic, "error", err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop the message rather than block
		}
	}
	return true
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
