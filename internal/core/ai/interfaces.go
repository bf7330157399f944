package ai

import (
	"time"

	"github.com/zeusync/utilityai/internal/core/ai/utility"
)

// Status is the execution state of an Action.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusRunning:
		return "Running"
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	default:
		return "Invalid"
	}
}

// Clock returns the current time. Actions and streams take one so tests can
// drive time explicitly.
type Clock func() time.Time

// Action is an executable unit bound to an Option.
type Action[C any] interface {
	Name() string
	Status() Status
	// Execute starts a new run, continues a running one, or fails fast
	// while the action is cooling down.
	Execute(ctx C)
	// Clone returns a copy with all runtime state reset.
	Clone() Action[C]
}

// Redirector is implemented by actions that forward selection instead of
// running. Select returns the action chosen by the redirect target, which
// may itself be a Redirector.
type Redirector[C any] interface {
	Select(ctx C) (Action[C], error)
}

// Selectable is a node that can pick an action for a context: a Behaviour or
// an Agent.
type Selectable[C any] interface {
	Name() string
	Select(ctx C) Action[C]
}

// Consideration scores a context.
type Consideration[C any] interface {
	Name() string
	Weight() float64
	SetWeight(w float64)
	// Utility returns the result of the last Consider call.
	Utility() utility.Utility
	Consider(ctx C)
	Clone() Consideration[C]
}

// Evaluator maps a raw input to a normalized score in [0,1].
type Evaluator interface {
	Evaluate(x float64) float64
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(x float64) float64

func (f EvaluatorFunc) Evaluate(x float64) float64 { return f(x) }

// ContextProvider supplies the context for a decision. ok is false when no
// context is available yet; callers retry on the next tick.
type ContextProvider[C any] interface {
	Context() (ctx C, ok bool)
}

// ContextProviderFunc adapts a function to ContextProvider.
type ContextProviderFunc[C any] func() (C, bool)

func (f ContextProviderFunc[C]) Context() (C, bool) { return f() }

// Prototype is a named definition that can produce independent copies.
type Prototype[T any] interface {
	Name() string
	Clone() T
}

// Creator produces clones of named prototypes.
type Creator[T any] interface {
	Create(name string) (T, bool)
}
