package bus

import "time"

// AnyType subscribes a handler to every event type.
const AnyType = "*"

// Event is an immutable notification carried by a Bus.
type Event struct {
	// Type routes the event to handlers; it must not be empty.
	Type string
	// Source identifies the publisher, for example a decision maker ID.
	Source string
	Time   time.Time
	Data   any
}

// Handler is called once per delivered event. Errors are joined and
// returned from Publish.
type Handler func(Event) error

// Publisher is the side of a Bus that emitters depend on.
type Publisher interface {
	Publish(Event) error
}

// Observer receives delivery statistics. It is only called while registered.
type Observer interface {
	OnDelivered(eventType string, handlers int, err error, took time.Duration)
}

// Metrics is a snapshot of counters kept while at least one observer is
// registered.
type Metrics struct {
	Published  uint64
	Delivered  uint64
	Errors     uint64
	ActiveSubs uint64
}
