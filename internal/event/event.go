// Package event defines the contract between the chore service and its
// event sink. Delivery is best effort: Publish reports failure through its
// return value and never through an error, and callers are free to discard
// the result.
package event

import (
	"time"

	"github.com/choreboard/backend/internal/model"
)

// Topics published by the service.
const (
	TopicChoreCreated      = "chores.created"
	TopicChoreUpdated      = "chores.updated"
	TopicChoreDeleted      = "chores.deleted"
	TopicStatusUpdated     = "chores.status.updated"
	TopicRecurrenceCreated = "chores.recurrence.created"
)

// Event is the payload delivered to subscribers. For status updates,
// PreviousStatus and NewStatus carry the transition; for other event types
// they are empty.
type Event struct {
	ID             string       `json:"id"`
	Type           string       `json:"type"`
	Chore          *model.Chore `json:"chore,omitempty"`
	PreviousStatus model.Status `json:"previous_status,omitempty"`
	NewStatus      model.Status `json:"new_status,omitempty"`
	Service        string       `json:"service"`
	Timestamp      time.Time    `json:"timestamp"`
}

// New creates an Event for the given chore, stamped with the service name
// and the current time.
func New(eventType string, c *model.Chore) Event {
	evt := Event{
		Type:      eventType,
		Chore:     c,
		Service:   "chore-service",
		Timestamp: time.Now().UTC(),
	}
	if c != nil {
		evt.ID = c.ID
	}
	return evt
}

// Publisher delivers events to an external sink. Implementations must not
// block on slow consumers and must report failure via the return value
// only; a false result is logged by the implementation and ignored by
// callers.
type Publisher interface {
	Publish(topic string, evt Event) bool
}
