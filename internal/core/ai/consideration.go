package ai

import (
	"github.com/zeusync/utilityai/internal/core/ai/utility"
)

var (
	_ Consideration[any] = (*InputConsideration[any])(nil)
	_ Consideration[any] = (*CompositeConsideration[any])(nil)
)

// InputConsideration is a leaf consideration: it reads a raw input from the
// context and optionally shapes it with an Evaluator.
type InputConsideration[C any] struct {
	name      string
	weight    float64
	input     func(ctx C) float64
	evaluator Evaluator
	util      utility.Utility
}

// NewConsideration creates a leaf consideration with weight 1.
func NewConsideration[C any](name string, input func(ctx C) float64) (*InputConsideration[C], error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, ErrNilCollaborator
	}
	return &InputConsideration[C]{name: name, weight: 1, input: input}, nil
}

// SetEvaluator sets the curve applied to the raw input; nil removes it.
func (c *InputConsideration[C]) SetEvaluator(e Evaluator) { c.evaluator = e }

func (c *InputConsideration[C]) Name() string             { return c.name }
func (c *InputConsideration[C]) Weight() float64          { return c.weight }
func (c *InputConsideration[C]) SetWeight(w float64)      { c.weight = utility.Clamp01(w) }
func (c *InputConsideration[C]) Utility() utility.Utility { return c.util }

func (c *InputConsideration[C]) Consider(ctx C) {
	x := c.input(ctx)
	if c.evaluator != nil {
		x = c.evaluator.Evaluate(x)
	}
	c.util = utility.New(x, c.weight)
}

func (c *InputConsideration[C]) Clone() Consideration[C] {
	return &InputConsideration[C]{name: c.name, weight: c.weight, input: c.input, evaluator: c.evaluator}
}

// CompositeConsideration aggregates child considerations with a Measure.
type CompositeConsideration[C any] struct {
	name     string
	weight   float64
	measure  utility.Measure
	children []Consideration[C]
	util     utility.Utility
}

// NewCompositeConsideration creates a composite with weight 1. A nil measure
// selects weighted metrics with the default p-norm.
func NewCompositeConsideration[C any](name string, measure utility.Measure) (*CompositeConsideration[C], error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if measure == nil {
		measure = utility.NewWeightedMetrics(utility.DefaultPNorm)
	}
	return &CompositeConsideration[C]{name: name, weight: 1, measure: measure}, nil
}

func (c *CompositeConsideration[C]) Name() string             { return c.name }
func (c *CompositeConsideration[C]) Weight() float64          { return c.weight }
func (c *CompositeConsideration[C]) SetWeight(w float64)      { c.weight = utility.Clamp01(w) }
func (c *CompositeConsideration[C]) Utility() utility.Utility { return c.util }
func (c *CompositeConsideration[C]) Measure() utility.Measure { return c.measure }

func (c *CompositeConsideration[C]) SetMeasure(m utility.Measure) error {
	if m == nil {
		return ErrNilCollaborator
	}
	c.measure = m
	return nil
}

// AddConsideration appends a child. Nil children, the same instance twice
// and two children with one name are rejected.
func (c *CompositeConsideration[C]) AddConsideration(child Consideration[C]) error {
	var err error
	c.children, err = appendConsideration(c.children, child)
	return err
}

// Considerations returns a copy of the children.
func (c *CompositeConsideration[C]) Considerations() []Consideration[C] {
	return append([]Consideration[C](nil), c.children...)
}

func (c *CompositeConsideration[C]) Consider(ctx C) {
	c.util = utility.New(considerAll(c.children, c.measure, ctx), c.weight)
}

func (c *CompositeConsideration[C]) Clone() Consideration[C] {
	return &CompositeConsideration[C]{
		name:     c.name,
		weight:   c.weight,
		measure:  c.measure,
		children: cloneConsiderations(c.children),
	}
}

// considerAll recomputes every consideration and aggregates the results.
func considerAll[C any](list []Consideration[C], measure utility.Measure, ctx C) float64 {
	if len(list) == 0 {
		return 0
	}
	utils := make([]utility.Utility, len(list))
	for i, c := range list {
		c.Consider(ctx)
		utils[i] = c.Utility()
	}
	return measure.Calculate(utils)
}

func appendConsideration[C any](list []Consideration[C], c Consideration[C]) ([]Consideration[C], error) {
	if isNil(c) {
		return list, ErrNilCollaborator
	}
	for _, existing := range list {
		if sameInstance(existing, c) {
			return list, ErrDuplicateItem
		}
		if existing.Name() == c.Name() {
			return list, ErrDuplicateName
		}
	}
	return append(list, c), nil
}

func cloneConsiderations[C any](list []Consideration[C]) []Consideration[C] {
	if len(list) == 0 {
		return nil
	}
	out := make([]Consideration[C], len(list))
	for i, c := range list {
		out[i] = c.Clone()
	}
	return out
}
