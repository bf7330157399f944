package utility

import "math"

// Measure aggregates utilities into a single value in [0,1].
// Implementations are pure and return 0 for empty input.
type Measure interface {
	Calculate(elements []Utility) float64
}

const (
	PNormMin     = 1.0
	PNormMax     = 10000.0
	DefaultPNorm = 2.0
)

var (
	_ Measure = Chebyshev{}
	_ Measure = WeightedMetrics{}
	_ Measure = ConstrainedChebyshev{}
	_ Measure = ConstrainedWeightedMetrics{}
	_ Measure = MultiplicativePseudoMeasure{}
)

func weightSum(elements []Utility) float64 {
	var sum float64
	for _, el := range elements {
		sum += el.Weight()
	}
	return sum
}

// belowBound reports whether any element's combined value is under bound.
func belowBound(elements []Utility, bound float64) bool {
	for _, el := range elements {
		if el.Combined() < bound {
			return true
		}
	}
	return false
}

// Chebyshev returns the largest weight-normalized value.
type Chebyshev struct{}

func (Chebyshev) Calculate(elements []Utility) float64 {
	wsum := weightSum(elements)
	if len(elements) == 0 || wsum == 0 {
		return 0
	}
	best := 0.0
	for _, el := range elements {
		if v := el.Value() * (el.Weight() / wsum); v > best {
			best = v
		}
	}
	return Clamp01(best)
}

// WeightedMetrics is the weighted p-norm (Σ w_i/Σw · v_i^P)^(1/P).
type WeightedMetrics struct {
	P float64
}

// NewWeightedMetrics clamps p to [PNormMin, PNormMax].
func NewWeightedMetrics(p float64) WeightedMetrics {
	return WeightedMetrics{P: clampP(p)}
}

func clampP(p float64) float64 {
	if math.IsNaN(p) || p < PNormMin {
		return PNormMin
	}
	if p > PNormMax {
		return PNormMax
	}
	return p
}

func (m WeightedMetrics) Calculate(elements []Utility) float64 {
	wsum := weightSum(elements)
	if len(elements) == 0 || wsum == 0 {
		return 0
	}
	p := clampP(m.P)
	var sum float64
	for _, el := range elements {
		sum += el.Weight() / wsum * math.Pow(el.Value(), p)
	}
	return Clamp01(math.Pow(sum, 1/p))
}

// ConstrainedChebyshev vetoes the result when any raw combined utility is
// below LowerBound.
type ConstrainedChebyshev struct {
	LowerBound float64
}

func NewConstrainedChebyshev(lowerBound float64) ConstrainedChebyshev {
	return ConstrainedChebyshev{LowerBound: Clamp01(lowerBound)}
}

func (m ConstrainedChebyshev) Calculate(elements []Utility) float64 {
	if belowBound(elements, Clamp01(m.LowerBound)) {
		return 0
	}
	return Chebyshev{}.Calculate(elements)
}

// ConstrainedWeightedMetrics is WeightedMetrics with the same veto as
// ConstrainedChebyshev.
type ConstrainedWeightedMetrics struct {
	P          float64
	LowerBound float64
}

func NewConstrainedWeightedMetrics(p, lowerBound float64) ConstrainedWeightedMetrics {
	return ConstrainedWeightedMetrics{P: clampP(p), LowerBound: Clamp01(lowerBound)}
}

func (m ConstrainedWeightedMetrics) Calculate(elements []Utility) float64 {
	if belowBound(elements, Clamp01(m.LowerBound)) {
		return 0
	}
	return WeightedMetrics{P: m.P}.Calculate(elements)
}

// MultiplicativePseudoMeasure is the product of combined utilities. It is not
// a norm: a single near-zero factor collapses the result.
type MultiplicativePseudoMeasure struct{}

func (MultiplicativePseudoMeasure) Calculate(elements []Utility) float64 {
	if len(elements) == 0 {
		return 0
	}
	product := 1.0
	for _, el := range elements {
		product *= el.Combined()
	}
	return Clamp01(product)
}
