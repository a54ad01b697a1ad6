// Package pubsub provides a generic publish/subscribe event system.
package pubsub

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event being published.
type EventType string

const (
	SourceUpdatedEvent EventType = "source-updated"
	CacheClearedEvent  EventType = "cache-cleared"
	LogEntryEvent      EventType = "log-entry"
)

// Event represents a published event with a typed payload.
// ID is unique per published event and is intended for correlating
// a notification with log or trace output.
type Event[T any] struct {
	ID        string
	Type      EventType
	Payload   T
	Timestamp time.Time
}

func newEvent[T any](eventType EventType, payload T) Event[T] {
	return Event[T]{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
