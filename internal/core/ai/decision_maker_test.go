package ai

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/utilityai/internal/core/events/bus"
	"github.com/zeusync/utilityai/internal/core/scheduler"
)

func staticContext(w world) ContextProvider[world] {
	return ContextProviderFunc[world](func() (world, bool) { return w, true })
}

func newTestDecisionMaker(t *testing.T, agent *Agent[world], provider ContextProvider[world]) (*DecisionMaker[world], *scheduler.Scheduler, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	sched := scheduler.New(scheduler.Config{Seed: t.Name(), Clock: clock.Now}, nil)
	dm, err := NewDecisionMaker(agent, provider, sched)
	require.NoError(t, err)
	return dm, sched, clock
}

func TestNewDecisionMakerValidation(t *testing.T) {
	sched := scheduler.New(scheduler.Config{}, nil)
	agent := agentWith(t, "a")

	_, err := NewDecisionMaker[world](nil, staticContext(world{}), sched)
	assert.ErrorIs(t, err, ErrNilCollaborator)
	_, err = NewDecisionMaker[world](agent, nil, sched)
	assert.ErrorIs(t, err, ErrNilCollaborator)
	_, err = NewDecisionMaker[world](agent, staticContext(world{}), nil)
	assert.ErrorIs(t, err, ErrNilCollaborator)

	dm, err := NewDecisionMaker[world](agent, staticContext(world{}), sched)
	require.NoError(t, err)
	assert.Equal(t, StateStopped, dm.State())
	assert.NotEmpty(t, dm.ID().String())
	assert.Same(t, agent, dm.Agent())
}

func TestDecisionMakerLifecycle(t *testing.T) {
	agent := agentWith(t, "a", behaviourWith(t, "B", nil, mustTask(t, "x", TaskHooks[world]{})))
	dm, sched, clock := newTestDecisionMaker(t, agent, staticContext(world{}))
	think, update := sched.ThinkStream(), sched.UpdateStream()

	require.NoError(t, dm.Start())
	assert.Equal(t, StateRunning, dm.State())
	assert.Equal(t, 1, think.Count())
	assert.Equal(t, 1, update.Count())

	require.NoError(t, dm.Start(), "start while running is a no-op")
	assert.Equal(t, 1, think.Count())

	dm.Pause()
	assert.Equal(t, StatePaused, dm.State())
	assert.Equal(t, 1, think.Count())
	assert.Equal(t, 1, update.Count())
	assert.Zero(t, think.Scheduled())
	assert.Zero(t, update.Scheduled())

	clock.Advance(time.Hour)
	thought, updated := sched.Tick()
	assert.Zero(t, thought)
	assert.Zero(t, updated)

	dm.Resume()
	assert.Equal(t, StateRunning, dm.State())
	assert.Equal(t, 1, think.Scheduled())
	assert.Equal(t, 1, update.Scheduled())

	clock.Advance(time.Second)
	thought, updated = sched.Tick()
	assert.Equal(t, 1, thought)
	assert.Equal(t, 1, updated)

	dm.Stop()
	assert.Equal(t, StateStopped, dm.State())
	assert.Zero(t, think.Count())
	assert.Zero(t, update.Count())

	dm.Stop()
	dm.Resume()
	dm.Pause()
	assert.Equal(t, StateStopped, dm.State())

	require.NoError(t, dm.Start(), "a stopped decision maker can start again")
	assert.Equal(t, 1, think.Count())
}

func TestDecisionMakerThinkFollowsContext(t *testing.T) {
	var ran []string
	record := func(name string) *Task[world] {
		return mustTask(t, name, TaskHooks[world]{
			OnStop: func(t *Task[world], _ world) { ran = append(ran, t.Name()) },
		})
	}
	agent := agentWith(t, "villager",
		behaviourWith(t, "B1", val1, record("a1")),
		behaviourWith(t, "B2", val2, record("a2")),
	)
	ctx := world{Val1: 1}
	dm, _, _ := newTestDecisionMaker(t, agent, ContextProviderFunc[world](func() (world, bool) { return ctx, true }))

	require.NoError(t, dm.Think())
	ctx = world{Val2: 1}
	require.NoError(t, dm.Think())

	assert.Equal(t, []string{"a1", "a2"}, ran)
	assert.Nil(t, dm.CurrentAction(), "finished actions are cleared")
}

func TestDecisionMakerDoesNotInterruptRunningAction(t *testing.T) {
	var updates int
	long := mustTask(t, "long", runningHooks(2, &updates))
	agent := agentWith(t, "a", behaviourWith(t, "B", nil, long))
	dm, _, _ := newTestDecisionMaker(t, agent, staticContext(world{}))

	require.NoError(t, dm.Think())
	assert.Same(t, long, dm.CurrentAction())

	require.NoError(t, dm.Think())
	assert.Zero(t, updates, "think leaves a running action alone")

	require.NoError(t, dm.Update())
	assert.Equal(t, StatusRunning, long.Status())
	require.NoError(t, dm.Update())
	assert.Equal(t, StatusSuccess, long.Status())
	assert.Nil(t, dm.CurrentAction())

	require.NoError(t, dm.Update(), "update without an action is a no-op")
}

func TestDecisionMakerWithoutContextDoesNothing(t *testing.T) {
	var starts int
	task := mustTask(t, "x", TaskHooks[world]{
		OnStart: func(t *Task[world], ctx world) {
			starts++
			t.EndInSuccess(ctx)
		},
	})
	agent := agentWith(t, "a", behaviourWith(t, "B", nil, task))
	dm, _, _ := newTestDecisionMaker(t, agent, ContextProviderFunc[world](func() (world, bool) { return world{}, false }))

	require.NoError(t, dm.Think())
	require.NoError(t, dm.Update())
	assert.Zero(t, starts)
	assert.Nil(t, dm.CurrentAction())
}

func TestDecisionMakerDetectsCircularTransitions(t *testing.T) {
	ping, err := NewBehaviour[world]("ping")
	require.NoError(t, err)
	pong, err := NewBehaviour[world]("pong")
	require.NoError(t, err)

	toPong, err := NewTransition[world]("to-pong", pong)
	require.NoError(t, err)
	toPing, err := NewTransition[world]("to-ping", ping)
	require.NoError(t, err)

	pingOpt, err := NewOption[world]("ping-opt")
	require.NoError(t, err)
	require.NoError(t, pingOpt.SetAction(toPong))
	require.NoError(t, ping.AddOption(pingOpt))

	pongOpt, err := NewOption[world]("pong-opt")
	require.NoError(t, err)
	require.NoError(t, pongOpt.SetAction(toPing))
	require.NoError(t, pong.AddOption(pongOpt))

	dm, _, _ := newTestDecisionMaker(t, agentWith(t, "loop", ping), staticContext(world{}))

	err = dm.Think()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircularDependency)
	var cycle *CircularDependencyError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, MaxRecursions+1, cycle.Iterations)

	// Breaking the cycle makes the same decision maker usable again.
	done := mustTask(t, "done", TaskHooks[world]{})
	pongOpt.UnsetAction()
	require.NoError(t, pongOpt.SetAction(done))

	require.NoError(t, dm.Think())
	assert.Equal(t, StatusSuccess, done.Status())
}

func TestDecisionMakerSurfacesMissingTarget(t *testing.T) {
	lib := NewLibrary[world]()
	tr, err := NewBehaviourTransition[world]("go", "nowhere", lib.Behaviours)
	require.NoError(t, err)
	agent := agentWith(t, "a", behaviourWith(t, "B", nil, tr))
	dm, _, _ := newTestDecisionMaker(t, agent, staticContext(world{}))

	assert.ErrorIs(t, dm.Think(), ErrTargetNotFound)
	assert.Nil(t, dm.CurrentAction())
}

func TestDecisionMakerDrivenByScheduler(t *testing.T) {
	var updates int
	long := mustTask(t, "long", runningHooks(3, &updates))
	agent := agentWith(t, "a", behaviourWith(t, "B", nil, long))

	clock := newFakeClock()
	sched := scheduler.New(scheduler.Config{Seed: "driven", Clock: clock.Now}, nil)
	dm, err := NewDecisionMaker(agent, staticContext(world{}), sched,
		WithThinkConfig(scheduler.CommandConfig{SteadyMin: time.Second, SteadyMax: time.Second}),
		WithUpdateConfig(scheduler.CommandConfig{InitialMin: 10 * time.Millisecond, InitialMax: 10 * time.Millisecond}),
	)
	require.NoError(t, err)
	require.NoError(t, dm.Start())

	thought, updated := sched.Tick()
	assert.Equal(t, 1, thought)
	assert.Zero(t, updated)
	assert.Equal(t, StatusRunning, long.Status())

	for i := 0; i < 3; i++ {
		clock.Advance(10 * time.Millisecond)
		sched.Tick()
	}
	assert.Equal(t, 3, updates)
	assert.Equal(t, StatusSuccess, long.Status())
	assert.Equal(t, 1, sched.ThinkStream().Count(), "commands keep repeating")
	assert.Equal(t, 1, sched.UpdateStream().Count())
}

func TestDecisionMakerPublishesEvents(t *testing.T) {
	events := bus.New()
	var got []bus.Event
	_, err := events.Subscribe(bus.AnyType, func(e bus.Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	task := mustTask(t, "wave", TaskHooks[world]{})
	agent := agentWith(t, "greeter", behaviourWith(t, "social", nil, task))
	sched := scheduler.New(scheduler.Config{Seed: "events"}, nil)
	dm, err := NewDecisionMaker(agent, staticContext(world{}), sched, WithEvents(events))
	require.NoError(t, err)

	require.NoError(t, dm.Start())
	require.NoError(t, dm.Think())
	dm.Stop()

	require.Len(t, got, 4)
	assert.Equal(t, EventStateChanged, got[0].Type)
	assert.Equal(t, StateChange{From: StateStopped, To: StateRunning}, got[0].Data)
	assert.Equal(t, EventActionSelected, got[1].Type)
	assert.Equal(t, ActionEvent{Agent: "greeter", Behaviour: "social", Action: "wave", Status: StatusIdle}, got[1].Data)
	assert.Equal(t, EventActionFinished, got[2].Type)
	assert.Equal(t, StatusSuccess, got[2].Data.(ActionEvent).Status)
	assert.Equal(t, EventStateChanged, got[3].Type)
	assert.Equal(t, dm.ID().String(), got[3].Source)
}

func TestDecisionMakerSelectedEventCarriesUtility(t *testing.T) {
	events := bus.New()
	var selected []ActionEvent
	_, err := events.Subscribe(EventActionSelected, func(e bus.Event) error {
		selected = append(selected, e.Data.(ActionEvent))
		return nil
	})
	require.NoError(t, err)

	agent := agentWith(t, "villager",
		behaviourWith(t, "rest", val1, mustTask(t, "sleep", TaskHooks[world]{})),
		behaviourWith(t, "eat", val2, mustTask(t, "eat", TaskHooks[world]{})),
	)
	dm, err := NewDecisionMaker(agent, staticContext(world{Val1: 0.2, Val2: 0.9}),
		scheduler.New(scheduler.Config{Seed: "utility"}, nil), WithEvents(events))
	require.NoError(t, err)
	require.NoError(t, dm.Start())
	require.NoError(t, dm.Think())

	require.Len(t, selected, 1)
	assert.Equal(t, "eat", selected[0].Behaviour)
	assert.InDelta(t, agent.LastSelection().Utility.Combined(), selected[0].Utility, 1e-9)
	assert.Positive(t, selected[0].Utility)
}

func TestDecisionMakerEventHandlersMayCallBack(t *testing.T) {
	events := bus.New()
	task := mustTask(t, "x", TaskHooks[world]{})
	agent := agentWith(t, "a", behaviourWith(t, "B", nil, task))
	sched := scheduler.New(scheduler.Config{Seed: "reentrant"}, nil)
	dm, err := NewDecisionMaker(agent, staticContext(world{}), sched, WithEvents(events))
	require.NoError(t, err)

	var seen []State
	_, err = events.Subscribe(EventActionFinished, func(bus.Event) error {
		seen = append(seen, dm.State())
		assert.Nil(t, dm.CurrentAction())
		dm.Pause()
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, dm.Start())
	require.NoError(t, dm.Think())
	assert.Equal(t, []State{StateRunning}, seen)
	assert.Equal(t, StatePaused, dm.State())
}

func TestDecisionMakerPublishesThinkFailures(t *testing.T) {
	events := bus.New()
	var failures []error
	_, err := events.Subscribe(EventThinkFailed, func(e bus.Event) error {
		failures = append(failures, e.Data.(error))
		return nil
	})
	require.NoError(t, err)

	lib := NewLibrary[world]()
	tr, err := NewAgentTransition[world]("go", "ghost", lib.Agents)
	require.NoError(t, err)
	agent := agentWith(t, "a", behaviourWith(t, "B", nil, tr))
	dm, err := NewDecisionMaker(agent, staticContext(world{}), scheduler.New(scheduler.Config{}, nil), WithEvents(events))
	require.NoError(t, err)

	assert.Error(t, dm.Think())
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], ErrTargetNotFound)
}
