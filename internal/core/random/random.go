// Package random provides the injectable random source used for scheduling jitter.
package random

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Source produces uniformly distributed values.
type Source interface {
	// Uniform returns a value in [min, max). When max <= min it returns min.
	Uniform(min, max float64) float64
}

// Rand is a mutex-guarded PCG source. A zero Rand is not usable; use New.
type Rand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

var _ Source = (*Rand)(nil)

// New returns a source seeded with seed.
func New(seed uint64) *Rand {
	return &Rand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewNamed returns a source whose seed is derived from name, so two streams
// with different names jitter independently but reproducibly.
func NewNamed(name string) *Rand {
	return New(xxhash.Sum64String(name))
}

// NewTimeSeeded returns a source seeded from the wall clock and name.
func NewTimeSeeded(name string) *Rand {
	h := xxhash.New()
	_, _ = h.WriteString(name)
	_, _ = h.WriteString(time.Now().String())
	return New(h.Sum64())
}

func (r *Rand) Uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	r.mu.Lock()
	f := r.rnd.Float64()
	r.mu.Unlock()
	return min + f*(max-min)
}

// Duration draws a duration in [min, max) from src.
func Duration(src Source, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return time.Duration(src.Uniform(float64(min), float64(max)))
}
