package ai

import (
	"fmt"

	"github.com/zeusync/utilityai/internal/core/ai/utility"
)

// Option binds a scoring subtree to exactly one Action.
type Option[C any] struct {
	name           string
	weight         float64
	measure        utility.Measure
	considerations []Consideration[C]
	action         Action[C]

	constant bool
	value    float64

	util utility.Utility
}

// NewOption creates an option scored by weighted metrics over its considerations.
func NewOption[C any](name string) (*Option[C], error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Option[C]{
		name:    name,
		weight:  1,
		measure: utility.NewWeightedMetrics(utility.DefaultPNorm),
	}, nil
}

// NewConstantUtilityOption creates an option whose utility is always value,
// whatever the context. It is the usual fallback ("idle") choice.
func NewConstantUtilityOption[C any](name string, value float64) (*Option[C], error) {
	o, err := NewOption[C](name)
	if err != nil {
		return nil, err
	}
	o.constant = true
	o.value = utility.Clamp01(value)
	o.util = utility.New(o.value, o.weight)
	return o, nil
}

func (o *Option[C]) Name() string             { return o.name }
func (o *Option[C]) Weight() float64          { return o.weight }
func (o *Option[C]) Utility() utility.Utility { return o.util }
func (o *Option[C]) Measure() utility.Measure { return o.measure }
func (o *Option[C]) Action() Action[C]        { return o.action }

func (o *Option[C]) SetWeight(w float64) {
	o.weight = utility.Clamp01(w)
	o.util = o.util.WithWeight(o.weight)
}

func (o *Option[C]) SetMeasure(m utility.Measure) error {
	if m == nil {
		return ErrNilCollaborator
	}
	o.measure = m
	return nil
}

// AddConsideration appends a consideration, rejecting nil and duplicates.
func (o *Option[C]) AddConsideration(c Consideration[C]) error {
	var err error
	o.considerations, err = appendConsideration(o.considerations, c)
	return err
}

func (o *Option[C]) Considerations() []Consideration[C] {
	return append([]Consideration[C](nil), o.considerations...)
}

// SetAction binds a. An already bound action must be removed with
// UnsetAction first.
func (o *Option[C]) SetAction(a Action[C]) error {
	if isNil(a) {
		return ErrNilCollaborator
	}
	if o.action != nil {
		return fmt.Errorf("option %q: %w", o.name, ErrActionAlreadySet)
	}
	o.action = a
	return nil
}

// SetActionByName binds a fresh clone of the named action from src.
func (o *Option[C]) SetActionByName(name string, src Creator[Action[C]]) error {
	if src == nil {
		return ErrNilCollaborator
	}
	if o.action != nil {
		return fmt.Errorf("option %q: %w", o.name, ErrActionAlreadySet)
	}
	a, ok := src.Create(name)
	if !ok {
		return fmt.Errorf("action %q: %w", name, ErrNotFound)
	}
	return o.SetAction(a)
}

func (o *Option[C]) UnsetAction() { o.action = nil }

// Consider recomputes the option's utility.
func (o *Option[C]) Consider(ctx C) {
	if o.constant {
		o.util = utility.New(o.value, o.weight)
		return
	}
	o.util = utility.New(considerAll(o.considerations, o.measure, ctx), o.weight)
}

func (o *Option[C]) Clone() *Option[C] {
	c := &Option[C]{
		name:           o.name,
		weight:         o.weight,
		measure:        o.measure,
		considerations: cloneConsiderations(o.considerations),
		constant:       o.constant,
		value:          o.value,
	}
	if o.constant {
		c.util = utility.New(c.value, c.weight)
	}
	if o.action != nil {
		c.action = o.action.Clone()
	}
	return c
}
