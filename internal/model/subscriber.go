package model

// Subscriber is a live connection that can receive room events.
type Subscriber interface {
	ID() string
	// Deliver enqueues e without blocking. It reports false when the
	// connection can no longer accept events.
	Deliver(e Event) bool
}
