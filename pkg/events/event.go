package events

import (
	"context"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType is the dotted name, also used as the subject suffix (e.g., "note.created").
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// Publisher delivers events to whoever listens. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// BaseEvent is the wire shape of every event.
type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
