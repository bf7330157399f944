package ai

import (
	"github.com/zeusync/utilityai/internal/core/ai/utility"
)

var _ Selectable[any] = (*Agent[any])(nil)

// Agent is the top-level decision unit (a "utility AI"): it scores its
// behaviours, picks one and lets it choose an action.
type Agent[C any] struct {
	name       string
	selector   utility.Selector
	behaviours []*Behaviour[C]

	last Selection
}

// NewAgent creates an agent using MaxUtilitySelector.
func NewAgent[C any](name string) (*Agent[C], error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Agent[C]{name: name, selector: utility.MaxUtilitySelector{}, last: noSelection}, nil
}

func (a *Agent[C]) Name() string               { return a.name }
func (a *Agent[C]) Selector() utility.Selector { return a.selector }

// LastSelected is the name of the behaviour picked by the last Select.
func (a *Agent[C]) LastSelected() string { return a.last.Name }

// LastSelection is the behaviour picked by the last Select with its utility.
func (a *Agent[C]) LastSelection() Selection { return a.last }

func (a *Agent[C]) SetSelector(s utility.Selector) error {
	if s == nil {
		return ErrNilCollaborator
	}
	a.selector = s
	return nil
}

// AddBehaviour appends b, rejecting nil, the same instance and duplicate names.
func (a *Agent[C]) AddBehaviour(b *Behaviour[C]) error {
	if b == nil {
		return ErrNilCollaborator
	}
	for _, existing := range a.behaviours {
		if existing == b {
			return ErrDuplicateItem
		}
		if existing.Name() == b.Name() {
			return ErrDuplicateName
		}
	}
	a.behaviours = append(a.behaviours, b)
	return nil
}

func (a *Agent[C]) Behaviours() []*Behaviour[C] {
	return append([]*Behaviour[C](nil), a.behaviours...)
}

// Behaviour looks up one of the agent's behaviours by name.
func (a *Agent[C]) Behaviour(name string) (*Behaviour[C], bool) {
	for _, b := range a.behaviours {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// Select scores every behaviour, picks one with the selector and returns the
// action it selects. A single behaviour is used without scoring.
func (a *Agent[C]) Select(ctx C) Action[C] {
	switch len(a.behaviours) {
	case 0:
		a.last = noSelection
		return nil
	case 1:
		a.last = Selection{Name: a.behaviours[0].Name()}
		return a.behaviours[0].Select(ctx)
	}

	utils := make([]utility.Utility, len(a.behaviours))
	for i, b := range a.behaviours {
		b.Consider(ctx)
		utils[i] = b.Utility()
	}
	idx := a.selector.Select(utils)
	if idx < 0 || idx >= len(a.behaviours) {
		a.last = noSelection
		return nil
	}
	chosen := a.behaviours[idx]
	a.last = Selection{Name: chosen.Name(), Index: idx, Utility: utils[idx]}
	return chosen.Select(ctx)
}

func (a *Agent[C]) Clone() *Agent[C] {
	c := &Agent[C]{
		name:       a.name,
		selector:   a.selector,
		behaviours: make([]*Behaviour[C], len(a.behaviours)),
		last:       noSelection,
	}
	for i, b := range a.behaviours {
		c.behaviours[i] = b.Clone()
	}
	return c
}
