package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeusync/utilityai/pkg/sequence"
)

// Handle controls a command added to a CommandStream.
type Handle struct {
	qh     sequence.Handle
	id     uuid.UUID
	cmd    *DeferredCommand
	stream *CommandStream

	// mu guards the fields below. due changes only while the handle is out
	// of the queue; the queue comparator reads it under the queue lock.
	mu        sync.Mutex
	due       time.Time
	active    bool
	paused    bool
	running   bool
	remaining time.Duration
}

func (h *Handle) QueueHandle() *sequence.Handle { return &h.qh }

func (h *Handle) ID() uuid.UUID             { return h.id }
func (h *Handle) Command() *DeferredCommand { return h.cmd }

func (h *Handle) IsActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// dueBy reports whether the command is due at t.
func (h *Handle) dueBy(t time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.due.After(t)
}

func (h *Handle) IsPaused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

// Pause takes the command out of the schedule and remembers the time left
// until it was due. A command paused while it runs is not rescheduled.
func (h *Handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.active || h.paused {
		return
	}
	h.paused = true
	if h.running {
		return
	}
	// A command already dequeued for this Process call resumes as due now.
	h.remaining = 0
	if h.stream.queue.Remove(h) {
		h.remaining = max(h.due.Sub(h.stream.clock()), 0)
	}
}

// Resume puts a paused command back, due after the remaining time.
func (h *Handle) Resume() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.active || !h.paused {
		return
	}
	h.paused = false
	if h.running {
		return
	}
	h.due = h.stream.clock().Add(h.remaining)
	h.remaining = 0
	h.stream.enqueue(h)
}

// SetActive(false) removes the command from its stream. SetActive(true)
// re-adds a deactivated command with a fresh initial delay.
func (h *Handle) SetActive(active bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == active {
		return
	}
	h.active = active
	if !active {
		h.paused = false
		h.stream.queue.Remove(h)
		h.stream.unregister(h)
		return
	}
	h.stream.register(h)
	if !h.running {
		h.due = h.stream.clock().Add(h.stream.initialDelay(h.cmd))
		h.stream.enqueue(h)
	}
}

// Remaining returns the time left until the command is due. For a paused
// command it is the time remembered by Pause.
func (h *Handle) Remaining() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.paused {
		return h.remaining
	}
	if !h.stream.queue.Contains(h) {
		return 0
	}
	return max(h.due.Sub(h.stream.clock()), 0)
}
