// Package pubsub provides a generic publish/subscribe event system used to fan
// label state and file-change notifications out to Bubble Tea models.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	RefreshedEvent EventType = "refreshed" // a label was recomputed
	DisposedEvent  EventType = "disposed"  // a label's timers were torn down
	ErrorEvent     EventType = "error"     // a cut-off was rejected
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
	Publish(eventType EventType, payload T)
}
