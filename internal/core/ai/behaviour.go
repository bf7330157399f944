package ai

import (
	"github.com/zeusync/utilityai/internal/core/ai/utility"
)

var _ Selectable[any] = (*Behaviour[any])(nil)

// Behaviour is a named bundle of options. It is scored by its own
// considerations when its parent agent chooses between behaviours.
type Behaviour[C any] struct {
	name           string
	weight         float64
	selector       utility.Selector
	measure        utility.Measure
	considerations []Consideration[C]
	options        []*Option[C]

	util utility.Utility
	last Selection
}

// NewBehaviour creates a behaviour using MaxUtilitySelector and weighted metrics.
func NewBehaviour[C any](name string) (*Behaviour[C], error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Behaviour[C]{
		name:     name,
		weight:   1,
		selector: utility.MaxUtilitySelector{},
		measure:  utility.NewWeightedMetrics(utility.DefaultPNorm),
		last:     noSelection,
	}, nil
}

func (b *Behaviour[C]) Name() string               { return b.name }
func (b *Behaviour[C]) Weight() float64            { return b.weight }
func (b *Behaviour[C]) SetWeight(w float64)        { b.weight = utility.Clamp01(w) }
func (b *Behaviour[C]) Utility() utility.Utility   { return b.util }
func (b *Behaviour[C]) Selector() utility.Selector { return b.selector }

// LastSelected is the name of the option picked by the last Select, or ""
// when it declined.
func (b *Behaviour[C]) LastSelected() string { return b.last.Name }

// LastSelection is the option picked by the last Select with its utility.
func (b *Behaviour[C]) LastSelection() Selection { return b.last }

func (b *Behaviour[C]) SetSelector(s utility.Selector) error {
	if s == nil {
		return ErrNilCollaborator
	}
	b.selector = s
	return nil
}

func (b *Behaviour[C]) SetMeasure(m utility.Measure) error {
	if m == nil {
		return ErrNilCollaborator
	}
	b.measure = m
	return nil
}

func (b *Behaviour[C]) AddConsideration(c Consideration[C]) error {
	var err error
	b.considerations, err = appendConsideration(b.considerations, c)
	return err
}

// AddOption appends o. The same instance or a second option with the same
// name is rejected.
func (b *Behaviour[C]) AddOption(o *Option[C]) error {
	if o == nil {
		return ErrNilCollaborator
	}
	for _, existing := range b.options {
		if existing == o {
			return ErrDuplicateItem
		}
		if existing.Name() == o.Name() {
			return ErrDuplicateName
		}
	}
	b.options = append(b.options, o)
	return nil
}

func (b *Behaviour[C]) Options() []*Option[C] {
	return append([]*Option[C](nil), b.options...)
}

// Consider scores the behaviour itself from its own considerations.
func (b *Behaviour[C]) Consider(ctx C) {
	b.util = utility.New(considerAll(b.considerations, b.measure, ctx), b.weight)
}

// Select returns the action of the winning option. A single option is
// returned without scoring; no options or a declining selector yield nil.
func (b *Behaviour[C]) Select(ctx C) Action[C] {
	switch len(b.options) {
	case 0:
		b.last = noSelection
		return nil
	case 1:
		b.last = Selection{Name: b.options[0].Name()}
		return b.options[0].Action()
	}

	utils := make([]utility.Utility, len(b.options))
	for i, o := range b.options {
		o.Consider(ctx)
		utils[i] = o.Utility()
	}
	idx := b.selector.Select(utils)
	if idx < 0 || idx >= len(b.options) {
		b.last = noSelection
		return nil
	}
	b.last = Selection{Name: b.options[idx].Name(), Index: idx, Utility: utils[idx]}
	return b.options[idx].Action()
}

func (b *Behaviour[C]) Clone() *Behaviour[C] {
	c := &Behaviour[C]{
		name:           b.name,
		weight:         b.weight,
		selector:       b.selector,
		measure:        b.measure,
		considerations: cloneConsiderations(b.considerations),
		options:        make([]*Option[C], len(b.options)),
		last:           noSelection,
	}
	for i, o := range b.options {
		c.options[i] = o.Clone()
	}
	return c
}
