// Package utility holds the scoring arithmetic of the decision engine:
// normalized utilities, the measures that aggregate them and the selectors
// that pick a winner among them.
package utility

import "math"

// Epsilon is the machine epsilon for float64, estimated at init.
// Combined utilities closer than Epsilon compare equal.
var Epsilon = estimateEpsilon()

func estimateEpsilon() float64 {
	eps := 1.0
	for 1.0+eps/2 != 1.0 {
		eps /= 2
	}
	return eps
}

// Utility pairs a normalized score with a normalized weight.
// Both are clamped to [0,1] on construction.
type Utility struct {
	value  float64
	weight float64
}

// New returns a Utility with value and weight clamped to [0,1].
func New(value, weight float64) Utility {
	return Utility{value: Clamp01(value), weight: Clamp01(weight)}
}

// FromValue returns a fully weighted Utility.
func FromValue(value float64) Utility {
	return New(value, 1)
}

func (u Utility) Value() float64  { return u.value }
func (u Utility) Weight() float64 { return u.weight }

// Combined is value × weight.
func (u Utility) Combined() float64 { return u.value * u.weight }

func (u Utility) WithValue(v float64) Utility  { return New(v, u.weight) }
func (u Utility) WithWeight(w float64) Utility { return New(u.value, w) }

// Compare orders by Combined within Epsilon: -1, 0 or 1.
func (u Utility) Compare(o Utility) int {
	d := u.Combined() - o.Combined()
	switch {
	case math.Abs(d) <= Epsilon:
		return 0
	case d < 0:
		return -1
	default:
		return 1
	}
}

func (u Utility) Equal(o Utility) bool { return u.Compare(o) == 0 }
func (u Utility) Less(o Utility) bool  { return u.Compare(o) < 0 }

// IsZero reports whether the combined value is indistinguishable from 0.
func (u Utility) IsZero() bool { return u.Combined() <= Epsilon }

// Clamp01 clamps v to [0,1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
