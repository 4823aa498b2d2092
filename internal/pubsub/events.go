// Package pubsub provides a generic publish/subscribe event system used for
// catalog diagnostics and log entries.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	ReplacedEvent EventType = "replaced" // a compound name was overwritten
	RejectedEvent EventType = "rejected" // a definition was refused (conflict, unknown compound, identity collision)
	LoggedEvent   EventType = "logged"   // a log entry was written
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T) int
}
