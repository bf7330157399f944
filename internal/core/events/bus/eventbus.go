package bus

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyType  = errors.New("bus: event type must not be empty")
	ErrNilHandler = errors.New("bus: handler is nil")
)

// Subscription is a registered handler. Cancel is idempotent.
type Subscription struct {
	id        uuid.UUID
	eventType string
	bus       *Bus
}

func (s *Subscription) ID() uuid.UUID     { return s.id }
func (s *Subscription) EventType() string { return s.eventType }

func (s *Subscription) Active() bool {
	s.bus.mu.RLock()
	defer s.bus.mu.RUnlock()
	_, ok := s.bus.handlers[s.eventType][s.id]
	return ok
}

func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if m, ok := s.bus.handlers[s.eventType]; ok {
		delete(m, s.id)
		if len(m) == 0 {
			delete(s.bus.handlers, s.eventType)
		}
	}
}

// Bus is a thread-safe, synchronous, in-process pub/sub bus. Publish calls
// handlers on the caller's goroutine with no lock held, so handlers may
// subscribe, cancel or publish.
type Bus struct {
	mu        sync.RWMutex
	handlers  map[string]map[uuid.UUID]Handler
	observers map[Observer]struct{}
	metrics   Metrics
}

var _ Publisher = (*Bus)(nil)

func New() *Bus {
	return &Bus{
		handlers:  make(map[string]map[uuid.UUID]Handler),
		observers: make(map[Observer]struct{}),
	}
}

// Subscribe registers h for eventType, or for every type with AnyType.
func (b *Bus) Subscribe(eventType string, h Handler) (*Subscription, error) {
	if eventType == "" {
		return nil, ErrEmptyType
	}
	if h == nil {
		return nil, ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[uuid.UUID]Handler)
	}
	id := uuid.New()
	b.handlers[eventType][id] = h
	return &Subscription{id: id, eventType: eventType, bus: b}, nil
}

// Publish delivers e to the handlers of e.Type and to AnyType handlers.
// A zero Time is set to now.
func (b *Bus) Publish(e Event) error {
	if e.Type == "" {
		return ErrEmptyType
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	start := time.Now()

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[e.Type])+len(b.handlers[AnyType]))
	for _, h := range b.handlers[e.Type] {
		handlers = append(handlers, h)
	}
	if e.Type != AnyType {
		for _, h := range b.handlers[AnyType] {
			handlers = append(handlers, h)
		}
	}
	observers := make([]Observer, 0, len(b.observers))
	for obs := range b.observers {
		observers = append(observers, obs)
	}
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(e); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)

	if len(observers) > 0 {
		took := time.Since(start)
		for _, obs := range observers {
			obs.OnDelivered(e.Type, len(handlers), err, took)
		}
		b.mu.Lock()
		b.metrics.Published++
		b.metrics.Delivered += uint64(len(handlers))
		if err != nil {
			b.metrics.Errors++
		}
		var subs uint64
		for _, m := range b.handlers {
			subs += uint64(len(m))
		}
		b.metrics.ActiveSubs = subs
		b.mu.Unlock()
	}
	return err
}

// PublishAsync publishes on a new goroutine. The returned channel receives
// the result and is then closed.
func (b *Bus) PublishAsync(e Event) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- b.Publish(e)
		close(ch)
	}()
	return ch
}

func (b *Bus) AddObserver(obs Observer) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *Bus) RemoveObserver(obs Observer) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *Bus) Metrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}
