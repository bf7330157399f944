package scheduler

import (
	"context"
	"time"

	"github.com/zeusync/utilityai/internal/core/observability/log"
	"github.com/zeusync/utilityai/internal/core/random"
	"golang.org/x/sync/errgroup"
)

// Config tunes the two streams of a Scheduler.
type Config struct {
	ThinkBudget  time.Duration
	UpdateBudget time.Duration
	// Seed names the random sources; empty seeds from the clock.
	Seed  string
	Clock func() time.Time
}

// Scheduler owns the think and update streams shared by decision makers.
type Scheduler struct {
	think  *CommandStream
	update *CommandStream
	log    log.Log
}

func New(cfg Config, logger log.Log) *Scheduler {
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.Named("scheduler")
	return &Scheduler{
		think:  NewCommandStream("think", streamOptions(cfg, cfg.ThinkBudget, "think", logger)...),
		update: NewCommandStream("update", streamOptions(cfg, cfg.UpdateBudget, "update", logger)...),
		log:    logger,
	}
}

func streamOptions(cfg Config, budget time.Duration, name string, logger log.Log) []StreamOption {
	opts := []StreamOption{WithMaxProcessingTime(budget), WithLogger(logger), WithClock(cfg.Clock)}
	if cfg.Seed != "" {
		opts = append(opts, WithRandom(random.NewNamed(cfg.Seed+"/"+name)))
	}
	return opts
}

func (s *Scheduler) ThinkStream() *CommandStream  { return s.think }
func (s *Scheduler) UpdateStream() *CommandStream { return s.update }

// Tick processes both streams once on the calling goroutine.
func (s *Scheduler) Tick() (thought, updated int) {
	return s.think.Process(), s.update.Process()
}

// Run processes both streams every interval, each on its own goroutine,
// until ctx is done.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("scheduler started", log.Duration("interval", interval))
	defer s.log.Info("scheduler stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var g errgroup.Group
			g.Go(func() error {
				s.think.Process()
				return nil
			})
			g.Go(func() error {
				s.update.Process()
				return nil
			})
			_ = g.Wait()
		}
	}
}

// Clear deactivates every command on both streams.
func (s *Scheduler) Clear() {
	s.think.Clear()
	s.update.Clear()
}
