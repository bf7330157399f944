package random

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUniformBounds(t *testing.T) {
	r := New(42)
	for i := 0; i < 1000; i++ {
		v := r.Uniform(-2, 3)
		assert.GreaterOrEqual(t, v, -2.0)
		assert.Less(t, v, 3.0)
	}
	assert.Equal(t, 5.0, r.Uniform(5, 1))
	assert.Equal(t, 5.0, r.Uniform(5, 5))
}

func TestNamedSourcesAreReproducible(t *testing.T) {
	a, b := NewNamed("think"), NewNamed("think")
	c := NewNamed("update")
	same, diff := true, false
	for i := 0; i < 10; i++ {
		va, vb, vc := a.Uniform(0, 1), b.Uniform(0, 1), c.Uniform(0, 1)
		same = same && va == vb
		diff = diff || va != vc
	}
	assert.True(t, same)
	assert.True(t, diff)
}

func TestDuration(t *testing.T) {
	r := New(1)
	for i := 0; i < 100; i++ {
		d := Duration(r, 10*time.Millisecond, 20*time.Millisecond)
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.Less(t, d, 20*time.Millisecond)
	}
	assert.Equal(t, time.Second, Duration(r, time.Second, 0))
}
