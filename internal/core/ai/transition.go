package ai

import (
	"fmt"
	"sync"
)

var (
	_ Action[any]     = (*Transition[any])(nil)
	_ Redirector[any] = (*Transition[any])(nil)
)

// Transition is an action that never runs: selecting it redirects the
// decision into another Behaviour or Agent. The target is either a direct
// reference or a name resolved lazily through a registry and cached.
type Transition[C any] struct {
	name       string
	targetName string
	resolve    func() (Selectable[C], bool)

	mu     sync.Mutex
	target Selectable[C]
}

// NewTransition redirects to target directly. A clone of the transition
// resolves to its own clone of target on first use, so cloned agents never
// share a Behaviour or Agent reached through a transition.
func NewTransition[C any](name string, target Selectable[C]) (*Transition[C], error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if isNil(target) {
		return nil, ErrNilCollaborator
	}
	return &Transition[C]{name: name, targetName: target.Name(), target: target}, nil
}

// NewBehaviourTransition redirects to the behaviour named behaviour,
// created from src on first use.
func NewBehaviourTransition[C any](name, behaviour string, src Creator[*Behaviour[C]]) (*Transition[C], error) {
	if src == nil {
		return nil, ErrNilCollaborator
	}
	return newNamedTransition(name, behaviour, func() (Selectable[C], bool) {
		b, ok := src.Create(behaviour)
		if !ok || b == nil {
			return nil, false
		}
		return b, true
	})
}

// NewAgentTransition redirects to the agent named agent, created from src
// on first use.
func NewAgentTransition[C any](name, agent string, src Creator[*Agent[C]]) (*Transition[C], error) {
	if src == nil {
		return nil, ErrNilCollaborator
	}
	return newNamedTransition(name, agent, func() (Selectable[C], bool) {
		a, ok := src.Create(agent)
		if !ok || a == nil {
			return nil, false
		}
		return a, true
	})
}

func newNamedTransition[C any](name, target string, resolve func() (Selectable[C], bool)) (*Transition[C], error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateName(target); err != nil {
		return nil, err
	}
	return &Transition[C]{name: name, targetName: target, resolve: resolve}, nil
}

func (t *Transition[C]) Name() string       { return t.name }
func (t *Transition[C]) TargetName() string { return t.targetName }

// Status is always Idle: a transition never runs itself.
func (t *Transition[C]) Status() Status { return StatusIdle }

// Execute does nothing; callers follow Select instead.
func (t *Transition[C]) Execute(C) {}

// Target resolves and caches the redirect target.
func (t *Transition[C]) Target() (Selectable[C], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.target != nil {
		return t.target, nil
	}
	target, ok := t.resolve()
	if !ok {
		return nil, fmt.Errorf("transition %q -> %q: %w", t.name, t.targetName, ErrTargetNotFound)
	}
	t.target = target
	return target, nil
}

// Select returns whatever the target selects for ctx.
func (t *Transition[C]) Select(ctx C) (Action[C], error) {
	target, err := t.Target()
	if err != nil {
		return nil, err
	}
	return target.Select(ctx), nil
}

// Clone copies the transition without its resolved target. Direct targets
// are cloned lazily, which keeps cycles between behaviours finite.
func (t *Transition[C]) Clone() Action[C] {
	resolve := t.resolve
	if resolve == nil {
		target := t.target
		resolve = func() (Selectable[C], bool) { return cloneSelectable(target), true }
	}
	return &Transition[C]{name: t.name, targetName: t.targetName, resolve: resolve}
}

// cloneSelectable clones the built-in selectables. Other implementations
// are returned as is.
func cloneSelectable[C any](s Selectable[C]) Selectable[C] {
	switch v := s.(type) {
	case *Behaviour[C]:
		return v.Clone()
	case *Agent[C]:
		return v.Clone()
	default:
		return s
	}
}
