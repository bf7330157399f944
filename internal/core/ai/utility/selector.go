package utility

// NotFound is returned by selectors that decline to choose.
const NotFound = -1

// Selector picks the index of the winning utility, or NotFound.
type Selector interface {
	Select(elements []Utility) int
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(elements []Utility) int

func (f SelectorFunc) Select(elements []Utility) int { return f(elements) }

// MaxUtilitySelector picks the highest combined utility; the first one seen
// wins ties. Empty or all-zero input yields NotFound.
type MaxUtilitySelector struct{}

func (MaxUtilitySelector) Select(elements []Utility) int {
	best := NotFound
	for i, el := range elements {
		if el.IsZero() {
			continue
		}
		if best == NotFound || elements[best].Less(el) {
			best = i
		}
	}
	return best
}

// ThresholdSelector declines when the best combined utility is below
// Threshold and otherwise defers to Next (MaxUtilitySelector when nil).
type ThresholdSelector struct {
	Threshold float64
	Next      Selector
}

func (s ThresholdSelector) Select(elements []Utility) int {
	next := s.Next
	if next == nil {
		next = MaxUtilitySelector{}
	}
	idx := next.Select(elements)
	if idx < 0 || idx >= len(elements) || elements[idx].Combined() < s.Threshold {
		return NotFound
	}
	return idx
}
