package ai

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeusync/utilityai/internal/core/events/bus"
	"github.com/zeusync/utilityai/internal/core/observability/log"
	"github.com/zeusync/utilityai/internal/core/scheduler"
)

// MaxRecursions bounds how many transitions one Think may follow.
const MaxRecursions = 100

// State is the lifecycle state of a DecisionMaker.
type State int

const (
	StateStopped State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	default:
		return "Invalid"
	}
}

var (
	DefaultThinkConfig = scheduler.CommandConfig{
		InitialMin: 0,
		InitialMax: 100 * time.Millisecond,
		SteadyMin:  200 * time.Millisecond,
		SteadyMax:  300 * time.Millisecond,
		Repeating:  true,
	}
	DefaultUpdateConfig = scheduler.CommandConfig{
		InitialMin: 0,
		InitialMax: 50 * time.Millisecond,
		SteadyMin:  50 * time.Millisecond,
		SteadyMax:  60 * time.Millisecond,
		Repeating:  true,
	}
)

// Event types published by a DecisionMaker. Handlers run after the decision
// maker released its locks, so they may call back into it.
const (
	EventStateChanged   = "ai.state.changed"
	EventActionSelected = "ai.action.selected"
	EventActionFinished = "ai.action.finished"
	EventThinkFailed    = "ai.think.failed"
)

// StateChange is the Data of EventStateChanged.
type StateChange struct {
	From, To State
}

// ActionEvent is the Data of EventActionSelected and EventActionFinished.
type ActionEvent struct {
	Agent     string
	Behaviour string
	Action    string
	Status    Status
	// Utility is the combined utility of the chosen behaviour, zero when
	// the agent took its only behaviour without scoring.
	Utility float64
}

type decisionMakerOptions struct {
	logger log.Log
	events bus.Publisher
	think  scheduler.CommandConfig
	update scheduler.CommandConfig
}

type DecisionMakerOption func(*decisionMakerOptions)

func WithLogger(l log.Log) DecisionMakerOption {
	return func(o *decisionMakerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEvents publishes decisions and state changes to p.
func WithEvents(p bus.Publisher) DecisionMakerOption {
	return func(o *decisionMakerOptions) {
		if !isNil(p) {
			o.events = p
		}
	}
}

// WithThinkConfig sets the delays of the think command. It always repeats.
func WithThinkConfig(cfg scheduler.CommandConfig) DecisionMakerOption {
	return func(o *decisionMakerOptions) {
		cfg.Repeating = true
		o.think = cfg
	}
}

// WithUpdateConfig sets the delays of the update command. It always repeats.
func WithUpdateConfig(cfg scheduler.CommandConfig) DecisionMakerOption {
	return func(o *decisionMakerOptions) {
		cfg.Repeating = true
		o.update = cfg
	}
}

// DecisionMaker drives one Agent: Think re-selects an action and Update
// keeps the running one going. Once started, both are registered as
// repeating commands on the scheduler's think and update streams.
type DecisionMaker[C any] struct {
	id       uuid.UUID
	agent    *Agent[C]
	provider ContextProvider[C]
	sched    *scheduler.Scheduler
	opts     decisionMakerOptions
	log      log.Log

	mu           sync.Mutex
	state        State
	pendingState []StateChange
	thinkHandle  *scheduler.Handle
	updateHandle *scheduler.Handle

	execMu     sync.Mutex
	current    Action[C]
	recursions int
	pending    []bus.Event
}

func NewDecisionMaker[C any](agent *Agent[C], provider ContextProvider[C], sched *scheduler.Scheduler, opts ...DecisionMakerOption) (*DecisionMaker[C], error) {
	if agent == nil || isNil(provider) || sched == nil {
		return nil, ErrNilCollaborator
	}
	o := decisionMakerOptions{
		logger: log.NewNop(),
		think:  DefaultThinkConfig,
		update: DefaultUpdateConfig,
	}
	for _, opt := range opts {
		opt(&o)
	}
	id := uuid.New()
	return &DecisionMaker[C]{
		id:       id,
		agent:    agent,
		provider: provider,
		sched:    sched,
		opts:     o,
		log: o.logger.Named("decision_maker").With(
			log.String("id", id.String()),
			log.String("agent", agent.Name()),
		),
	}, nil
}

func (dm *DecisionMaker[C]) ID() uuid.UUID    { return dm.id }
func (dm *DecisionMaker[C]) Agent() *Agent[C] { return dm.agent }

func (dm *DecisionMaker[C]) State() State {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.state
}

// CurrentAction is the action still being executed, or nil.
func (dm *DecisionMaker[C]) CurrentAction() Action[C] {
	dm.execMu.Lock()
	defer dm.execMu.Unlock()
	return dm.current
}

// Start registers the think and update commands. It does nothing unless
// the decision maker is stopped.
func (dm *DecisionMaker[C]) Start() error {
	dm.mu.Lock()
	defer dm.flushState()
	defer dm.mu.Unlock()
	if dm.state != StateStopped {
		return nil
	}

	thinkCmd, err := scheduler.NewDeferredCommand(dm.Think, dm.opts.think)
	if err != nil {
		return err
	}
	updateCmd, err := scheduler.NewDeferredCommand(dm.Update, dm.opts.update)
	if err != nil {
		return err
	}
	th, err := dm.sched.ThinkStream().Add(thinkCmd)
	if err != nil {
		return err
	}
	uh, err := dm.sched.UpdateStream().Add(updateCmd)
	if err != nil {
		th.SetActive(false)
		return err
	}
	dm.thinkHandle, dm.updateHandle = th, uh
	dm.setState(StateRunning)
	return nil
}

// Stop removes both commands. A running action is not interrupted; it just
// stops receiving updates.
func (dm *DecisionMaker[C]) Stop() {
	dm.mu.Lock()
	defer dm.flushState()
	defer dm.mu.Unlock()
	if dm.state == StateStopped {
		return
	}
	dm.thinkHandle.SetActive(false)
	dm.updateHandle.SetActive(false)
	dm.thinkHandle, dm.updateHandle = nil, nil
	dm.setState(StateStopped)
}

// Pause suspends both commands while keeping them registered.
func (dm *DecisionMaker[C]) Pause() {
	dm.mu.Lock()
	defer dm.flushState()
	defer dm.mu.Unlock()
	if dm.state != StateRunning {
		return
	}
	dm.thinkHandle.Pause()
	dm.updateHandle.Pause()
	dm.setState(StatePaused)
}

func (dm *DecisionMaker[C]) Resume() {
	dm.mu.Lock()
	defer dm.flushState()
	defer dm.mu.Unlock()
	if dm.state != StatePaused {
		return
	}
	dm.thinkHandle.Resume()
	dm.updateHandle.Resume()
	dm.setState(StateRunning)
}

func (dm *DecisionMaker[C]) setState(s State) {
	dm.log.Debug("state changed", log.Stringer("from", dm.state), log.Stringer("to", s))
	if dm.opts.events != nil {
		dm.pendingState = append(dm.pendingState, StateChange{From: dm.state, To: s})
	}
	dm.state = s
}

// flushState publishes state changes recorded under mu. It runs after mu is
// released.
func (dm *DecisionMaker[C]) flushState() {
	dm.mu.Lock()
	pending := dm.pendingState
	dm.pendingState = nil
	dm.mu.Unlock()
	events := make([]bus.Event, len(pending))
	for i, change := range pending {
		events[i] = bus.Event{Type: EventStateChanged, Source: dm.id.String(), Data: change}
	}
	dm.emit(events)
}

// Think selects and executes a new action unless the current one is still
// running. Transitions are followed up to MaxRecursions times; beyond that
// a *CircularDependencyError is returned and the decision maker stays usable.
func (dm *DecisionMaker[C]) Think() error {
	dm.execMu.Lock()
	err := dm.think()
	events := dm.takeEvents()
	dm.execMu.Unlock()

	dm.emit(events)
	return err
}

func (dm *DecisionMaker[C]) think() error {
	if dm.current != nil && dm.current.Status() == StatusRunning {
		return nil
	}
	dm.recursions = 0

	ctx, ok := dm.provider.Context()
	if !ok {
		return nil
	}

	action := dm.agent.Select(ctx)
	for {
		redirect, ok := action.(Redirector[C])
		if !ok {
			break
		}
		dm.recursions++
		if dm.recursions > MaxRecursions {
			return dm.fail(&CircularDependencyError{Iterations: dm.recursions})
		}
		next, err := redirect.Select(ctx)
		if err != nil {
			return dm.fail(err)
		}
		action = next
	}

	if action == nil {
		dm.current = nil
		return nil
	}
	if dm.log.Enabled(log.LevelDebug) {
		dm.log.Debug("action selected",
			log.String("behaviour", dm.agent.LastSelected()),
			log.Float64("utility", dm.agent.LastSelection().Utility.Combined()),
			log.String("action", action.Name()),
			log.Int("transitions", dm.recursions),
		)
	}
	dm.record(EventActionSelected, dm.actionEvent(action))
	dm.execute(action, ctx)
	return nil
}

func (dm *DecisionMaker[C]) fail(err error) error {
	dm.current = nil
	dm.log.Warn("think failed", log.Error(err))
	dm.record(EventThinkFailed, err)
	return err
}

// Update continues the current action, if any.
func (dm *DecisionMaker[C]) Update() error {
	dm.execMu.Lock()
	if ctx, ok := dm.provider.Context(); ok && dm.current != nil {
		dm.execute(dm.current, ctx)
	}
	events := dm.takeEvents()
	dm.execMu.Unlock()

	dm.emit(events)
	return nil
}

func (dm *DecisionMaker[C]) execute(action Action[C], ctx C) {
	dm.current = action
	action.Execute(ctx)
	if st := action.Status(); st != StatusRunning {
		dm.log.Debug("action finished", log.String("action", action.Name()), log.Stringer("status", st))
		dm.record(EventActionFinished, dm.actionEvent(action))
		dm.current = nil
	}
}

func (dm *DecisionMaker[C]) actionEvent(action Action[C]) ActionEvent {
	chosen := dm.agent.LastSelection()
	return ActionEvent{
		Agent:     dm.agent.Name(),
		Behaviour: chosen.Name,
		Action:    action.Name(),
		Status:    action.Status(),
		Utility:   chosen.Utility.Combined(),
	}
}

// record queues an event for publication once execMu is released.
func (dm *DecisionMaker[C]) record(eventType string, data any) {
	if dm.opts.events == nil {
		return
	}
	dm.pending = append(dm.pending, bus.Event{Type: eventType, Source: dm.id.String(), Data: data})
}

func (dm *DecisionMaker[C]) takeEvents() []bus.Event {
	events := dm.pending
	dm.pending = nil
	return events
}

func (dm *DecisionMaker[C]) emit(events []bus.Event) {
	for _, e := range events {
		if err := dm.opts.events.Publish(e); err != nil {
			dm.log.Warn("event handler failed", log.String("event", e.Type), log.Error(err))
		}
	}
}
