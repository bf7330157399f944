// Package scheduler runs deferred, optionally repeating commands on streams
// ordered by due time, with randomized initial and steady-state delays.
package scheduler

import (
	"errors"
	"time"
)

var ErrNilCommand = errors.New("scheduler: command function is nil")

// CommandConfig holds the delay bounds of a DeferredCommand.
type CommandConfig struct {
	InitialMin time.Duration
	InitialMax time.Duration
	SteadyMin  time.Duration
	SteadyMax  time.Duration
	Repeating  bool
}

// DeferredCommand is a unit of work run by a CommandStream. The initial
// bounds are used when the command is added, the steady bounds for every
// reschedule of a repeating command. Every max is kept >= its min.
type DeferredCommand struct {
	run        func() error
	initialMin time.Duration
	initialMax time.Duration
	steadyMin  time.Duration
	steadyMax  time.Duration
	repeating  bool
}

func NewDeferredCommand(run func() error, cfg CommandConfig) (*DeferredCommand, error) {
	if run == nil {
		return nil, ErrNilCommand
	}
	c := &DeferredCommand{run: run, repeating: cfg.Repeating}
	c.SetInitialMin(cfg.InitialMin)
	c.SetInitialMax(cfg.InitialMax)
	c.SetSteadyMin(cfg.SteadyMin)
	c.SetSteadyMax(cfg.SteadyMax)
	return c, nil
}

func (c *DeferredCommand) InitialMin() time.Duration { return c.initialMin }
func (c *DeferredCommand) InitialMax() time.Duration { return c.initialMax }
func (c *DeferredCommand) SteadyMin() time.Duration  { return c.steadyMin }
func (c *DeferredCommand) SteadyMax() time.Duration  { return c.steadyMax }
func (c *DeferredCommand) Repeating() bool           { return c.repeating }

func (c *DeferredCommand) SetRepeating(r bool) { c.repeating = r }

func (c *DeferredCommand) SetInitialMin(d time.Duration) {
	c.initialMin = nonNegative(d)
	if c.initialMax < c.initialMin {
		c.initialMax = c.initialMin
	}
}

func (c *DeferredCommand) SetInitialMax(d time.Duration) {
	c.initialMax = max(nonNegative(d), c.initialMin)
}

func (c *DeferredCommand) SetSteadyMin(d time.Duration) {
	c.steadyMin = nonNegative(d)
	if c.steadyMax < c.steadyMin {
		c.steadyMax = c.steadyMin
	}
}

func (c *DeferredCommand) SetSteadyMax(d time.Duration) {
	c.steadyMax = max(nonNegative(d), c.steadyMin)
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
