package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeusync/utilityai/internal/core/observability/log"
	"github.com/zeusync/utilityai/internal/core/random"
	"github.com/zeusync/utilityai/pkg/sequence"
)

// CommandStream holds commands ordered by due time. Process is expected to be
// called once per tick from a single goroutine; handles may be paused,
// resumed or deactivated from any goroutine.
type CommandStream struct {
	name          string
	queue         *sequence.SafePriorityQueue[*Handle]
	clock         func() time.Time
	rnd           random.Source
	maxProcessing time.Duration
	log           log.Log

	mu      sync.RWMutex
	handles map[uuid.UUID]*Handle
}

type StreamOption func(*CommandStream)

// WithClock sets the time source of the stream.
func WithClock(clock func() time.Time) StreamOption {
	return func(s *CommandStream) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithRandom sets the source used for delay jitter.
func WithRandom(src random.Source) StreamOption {
	return func(s *CommandStream) {
		if src != nil {
			s.rnd = src
		}
	}
}

// WithMaxProcessingTime bounds the time one Process call may spend. At least
// one due command always runs; the rest wait for the next call.
func WithMaxProcessingTime(d time.Duration) StreamOption {
	return func(s *CommandStream) { s.maxProcessing = nonNegative(d) }
}

func WithLogger(l log.Log) StreamOption {
	return func(s *CommandStream) {
		if l != nil {
			s.log = l
		}
	}
}

func NewCommandStream(name string, opts ...StreamOption) *CommandStream {
	s := &CommandStream{
		name:    name,
		queue:   sequence.NewSafePriorityQueue(func(a, b *Handle) bool { return a.due.Before(b.due) }),
		clock:   time.Now,
		log:     log.NewNop(),
		handles: make(map[uuid.UUID]*Handle),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = random.NewTimeSeeded(name)
	}
	s.log = s.log.With(log.String("stream", name))
	return s
}

func (s *CommandStream) Name() string { return s.name }

// Add registers cmd and schedules it after a random initial delay.
func (s *CommandStream) Add(cmd *DeferredCommand) (*Handle, error) {
	if cmd == nil {
		return nil, ErrNilCommand
	}
	h := &Handle{id: uuid.New(), cmd: cmd, stream: s, active: true}
	h.due = s.clock().Add(s.initialDelay(cmd))
	s.register(h)
	s.enqueue(h)
	return h, nil
}

// Count returns the number of registered commands, paused ones included.
func (s *CommandStream) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handles)
}

// Scheduled returns the number of commands waiting in the queue.
func (s *CommandStream) Scheduled() int {
	return s.queue.Count()
}

// Contains reports whether h is registered on this stream.
func (s *CommandStream) Contains(h *Handle) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.handles[h.id]
	return ok
}

// Clear deactivates every registered command.
func (s *CommandStream) Clear() {
	s.mu.RLock()
	handles := make([]*Handle, 0, len(s.handles))
	for _, h := range s.handles {
		handles = append(handles, h)
	}
	s.mu.RUnlock()
	for _, h := range handles {
		h.SetActive(false)
	}
}

// Process runs every command that is due, rescheduling repeating ones, and
// returns how many ran. Each command runs at most once per call.
func (s *CommandStream) Process() int {
	start := s.clock()
	limit := s.queue.Count()
	ran := 0
	for i := 0; i < limit; i++ {
		if s.maxProcessing > 0 && ran > 0 && s.clock().Sub(start) >= s.maxProcessing {
			break
		}
		h, ok := s.queue.DequeueIf(func(h *Handle) bool { return h.dueBy(start) })
		if !ok {
			break
		}
		if s.execute(h) {
			ran++
		}
	}
	return ran
}

// execute runs a dequeued command and reschedules it. Between the dequeue and
// the lock below the handle may have been paused, resumed or re-activated
// from another goroutine; a handle that is back in the queue already has a
// new due time and is left alone.
func (s *CommandStream) execute(h *Handle) bool {
	h.mu.Lock()
	if !h.active || h.paused || s.queue.Contains(h) {
		h.mu.Unlock()
		return false
	}
	h.running = true
	h.mu.Unlock()

	if err := h.cmd.run(); err != nil {
		s.log.Warn("command failed", log.String("command", h.id.String()), log.Error(err))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = false
	if !h.active {
		return true
	}
	if !h.cmd.Repeating() {
		h.active = false
		h.paused = false
		s.unregister(h)
		return true
	}
	delay := random.Duration(s.rnd, h.cmd.SteadyMin(), h.cmd.SteadyMax())
	if h.paused {
		h.remaining = delay
		return true
	}
	h.due = s.clock().Add(delay)
	s.enqueue(h)
	return true
}

func (s *CommandStream) initialDelay(cmd *DeferredCommand) time.Duration {
	return random.Duration(s.rnd, cmd.InitialMin(), cmd.InitialMax())
}

func (s *CommandStream) enqueue(h *Handle) {
	if err := s.queue.Enqueue(h); err != nil {
		s.log.Error("enqueue failed", log.String("command", h.id.String()), log.Error(err))
	}
}

func (s *CommandStream) register(h *Handle) {
	s.mu.Lock()
	s.handles[h.id] = h
	s.mu.Unlock()
}

func (s *CommandStream) unregister(h *Handle) {
	s.mu.Lock()
	delete(s.handles, h.id)
	s.mu.Unlock()
}
