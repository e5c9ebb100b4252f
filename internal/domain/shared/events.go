package shared

import "time"

// DomainEvent represents something that happened in the domain.
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// EventHandler handles domain events.
type EventHandler func(event DomainEvent) error

// EventDispatcher dispatches domain events to registered handlers.
type EventDispatcher interface {
	Dispatch(event DomainEvent) error
	Register(eventName string, handler EventHandler)
}
