package ai

import (
	"time"
)

var _ Action[any] = (*Task[any])(nil)

// TaskHooks are the callbacks driving a Task run. A hook ends the run by
// calling EndInSuccess or EndInFailure on the task it receives; until then
// the task stays Running and OnUpdate is called on every Execute.
type TaskHooks[C any] struct {
	// OnStart is called once when a run starts. Nil ends the run in Success.
	OnStart func(t *Task[C], ctx C)
	// OnUpdate is called on every Execute while the task is Running.
	OnUpdate func(t *Task[C], ctx C)
	// OnStop is called once when a run ends.
	OnStop func(t *Task[C], ctx C)
}

// Task is the leaf Action: a run/cooldown state machine around TaskHooks.
//
// Execute follows three rules, in order:
//  1. within the cooldown since the last Success or Failure the task fails
//     fast (status Failure, WasRejected true);
//  2. a Running task is updated;
//  3. otherwise a new run starts.
type Task[C any] struct {
	name     string
	hooks    TaskHooks[C]
	cooldown time.Duration
	clock    Clock

	status    Status
	startedAt time.Time
	endedAt   time.Time
	rejected  bool
}

// NewTask creates an idle task without cooldown.
func NewTask[C any](name string, hooks TaskHooks[C]) (*Task[C], error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Task[C]{name: name, hooks: hooks, clock: time.Now}, nil
}

func (t *Task[C]) Name() string            { return t.name }
func (t *Task[C]) Status() Status          { return t.status }
func (t *Task[C]) Cooldown() time.Duration { return t.cooldown }
func (t *Task[C]) StartedAt() time.Time    { return t.startedAt }

// WasRejected reports whether the last Execute failed because of the
// cooldown rather than because the run failed.
func (t *Task[C]) WasRejected() bool { return t.rejected }

func (t *Task[C]) SetCooldown(d time.Duration) {
	if d < 0 {
		d = 0
	}
	t.cooldown = d
}

// SetClock replaces the time source; nil restores time.Now.
func (t *Task[C]) SetClock(c Clock) {
	if c == nil {
		c = time.Now
	}
	t.clock = c
}

// ElapsedTime is the time since the current or last run started.
func (t *Task[C]) ElapsedTime() time.Duration {
	if t.startedAt.IsZero() {
		return 0
	}
	if t.status == StatusRunning || t.endedAt.IsZero() {
		return t.clock().Sub(t.startedAt)
	}
	return t.endedAt.Sub(t.startedAt)
}

// InCooldown reports whether a new run would be rejected now.
func (t *Task[C]) InCooldown() bool {
	return t.inCooldown(t.clock())
}

func (t *Task[C]) inCooldown(now time.Time) bool {
	if t.cooldown <= 0 || t.endedAt.IsZero() {
		return false
	}
	if t.status != StatusSuccess && t.status != StatusFailure {
		return false
	}
	return now.Sub(t.endedAt) < t.cooldown
}

func (t *Task[C]) Execute(ctx C) {
	now := t.clock()
	if t.inCooldown(now) {
		t.status = StatusFailure
		t.rejected = true
		return
	}
	t.rejected = false

	if t.status == StatusRunning {
		if t.hooks.OnUpdate != nil {
			t.hooks.OnUpdate(t, ctx)
		}
		return
	}

	t.startedAt = now
	t.status = StatusRunning
	if t.hooks.OnStart == nil {
		t.EndInSuccess(ctx)
		return
	}
	t.hooks.OnStart(t, ctx)
}

// EndInSuccess finishes a running task with Success.
func (t *Task[C]) EndInSuccess(ctx C) { t.end(ctx, StatusSuccess) }

// EndInFailure finishes a running task with Failure.
func (t *Task[C]) EndInFailure(ctx C) { t.end(ctx, StatusFailure) }

func (t *Task[C]) end(ctx C, s Status) {
	if t.status != StatusRunning {
		return
	}
	t.status = s
	t.endedAt = t.clock()
	if t.hooks.OnStop != nil {
		t.hooks.OnStop(t, ctx)
	}
}

func (t *Task[C]) Clone() Action[C] {
	return t.clone()
}

func (t *Task[C]) clone() *Task[C] {
	return &Task[C]{
		name:     t.name,
		hooks:    t.hooks,
		cooldown: t.cooldown,
		clock:    t.clock,
	}
}
