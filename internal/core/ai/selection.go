package ai

import (
	"github.com/zeusync/utilityai/internal/core/ai/utility"
)

// Selection records the outcome of the last Select of an Agent or Behaviour.
// Utility is zero when the only candidate was taken without scoring.
type Selection struct {
	Name    string
	Index   int
	Utility utility.Utility
}

var noSelection = Selection{Index: utility.NotFound}

// Selected reports whether a candidate was chosen.
func (s Selection) Selected() bool { return s.Index != utility.NotFound }
