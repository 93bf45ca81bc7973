// Package events carries domain events between modules over an in-process
// bus, keeping the bounded contexts decoupled from one another.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event published on the bus.
type Event interface {
	// EventName identifies the event type; subscriptions key on it.
	EventName() string
	// OccurredAt is the time the event was recorded.
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt is the time the event was recorded.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a new event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler receives published events.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish delivers the event to every subscriber, asynchronously.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and waits for all handlers to finish.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under the name the event reports from
	// EventName.
	Subscribe(eventName string, handler Handler)
}
