package websocket

import (
	"log/slog"

	"github.com/choreboard/backend/internal/event"
)

// Publisher implements event.Publisher over a Hub. Publication is fire and
// forget: a failure is logged and reported as false, never surfaced as an
// error to the caller.
type Publisher struct {
	hub    *Hub
	logger *slog.Logger
}

func NewPublisher(hub *Hub, logger *slog.Logger) *Publisher {
	return &Publisher{hub: hub, logger: logger}
}

func (p *Publisher) Publish(topic string, evt event.Event) bool {
	ok := p.hub.Broadcast(Envelope{Topic: topic, Event: evt})
	if !ok {
		p.logger.Warn("event publish failed", "topic", topic, "event_id", evt.ID)
		return false
	}
	p.logger.Debug("event published", "topic", topic, "event_id", evt.ID, "type", evt.Type)
	return true
}
