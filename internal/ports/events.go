package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published on the in-process bus.
const (
	EventClientProfileUpdated = "client_profile_updated"
	EventOrderCompleted       = "order_completed"
)

// Event is a domain event. Payload carries the event-specific value, e.g. a
// domain.ClientProfile for EventClientProfileUpdated.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewEvent creates a domain event with a fresh id and current timestamp.
func NewEvent(eventType string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// EventHandler handles one event type.
type EventHandler func(ctx context.Context, event Event) error

// EventPublisher defines the interface for domain event publishing. Publish
// delivers the event to every handler subscribed to its type.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType string, handler EventHandler)
}
