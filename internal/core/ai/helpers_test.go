package ai

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type world struct {
	Val1, Val2 float64
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func mustTask(t *testing.T, name string, hooks TaskHooks[world]) *Task[world] {
	t.Helper()
	task, err := NewTask(name, hooks)
	require.NoError(t, err)
	return task
}

func mustConsideration(t *testing.T, name string, input func(world) float64) *InputConsideration[world] {
	t.Helper()
	c, err := NewConsideration(name, input)
	require.NoError(t, err)
	return c
}

// behaviourWith builds a behaviour scored by input with one option bound to action.
func behaviourWith(t *testing.T, name string, input func(world) float64, action Action[world]) *Behaviour[world] {
	t.Helper()
	b, err := NewBehaviour[world](name)
	require.NoError(t, err)
	if input != nil {
		require.NoError(t, b.AddConsideration(mustConsideration(t, name+".score", input)))
	}
	o, err := NewOption[world](name + ".option")
	require.NoError(t, err)
	require.NoError(t, o.SetAction(action))
	require.NoError(t, b.AddOption(o))
	return b
}

func optionWith(t *testing.T, name string, action Action[world]) *Option[world] {
	t.Helper()
	o, err := NewOption[world](name)
	require.NoError(t, err)
	require.NoError(t, o.SetAction(action))
	return o
}

func agentWith(t *testing.T, name string, behaviours ...*Behaviour[world]) *Agent[world] {
	t.Helper()
	a, err := NewAgent[world](name)
	require.NoError(t, err)
	for _, b := range behaviours {
		require.NoError(t, a.AddBehaviour(b))
	}
	return a
}

// runningHooks keep a task Running until it has been updated n times.
func runningHooks(n int, updates *int) TaskHooks[world] {
	return TaskHooks[world]{
		OnStart: func(*Task[world], world) {},
		OnUpdate: func(t *Task[world], ctx world) {
			*updates++
			if *updates >= n {
				t.EndInSuccess(ctx)
			}
		},
	}
}
