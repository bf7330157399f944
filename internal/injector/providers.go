package injector

import (
	"context"

	"github.com/google/wire"
	"github.com/zeusync/utilityai/internal/config"
	"github.com/zeusync/utilityai/internal/core/events/bus"
	"github.com/zeusync/utilityai/internal/core/observability/log"
	"github.com/zeusync/utilityai/internal/core/scheduler"
)

var ProviderSet = wire.NewSet(ProvideLogger, ProvideScheduler, bus.New, NewRuntime)

// Runtime is the process-wide engine state shared by every decision maker.
type Runtime struct {
	Config    *config.Config
	Logger    *log.Logger
	Scheduler *scheduler.Scheduler
	Events    *bus.Bus
}

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	return log.NewWithConfig(cfg.Log.Logger())
}

func ProvideScheduler(cfg *config.Config, logger *log.Logger) *scheduler.Scheduler {
	return scheduler.New(cfg.Scheduler.Scheduler(nil), logger)
}

func NewRuntime(cfg *config.Config, logger *log.Logger, sched *scheduler.Scheduler, events *bus.Bus) *Runtime {
	return &Runtime{Config: cfg, Logger: logger, Scheduler: sched, Events: events}
}

// Run ticks the scheduler at the configured interval until ctx is done.
func (r *Runtime) Run(ctx context.Context) error {
	defer func() { _ = r.Logger.Sync() }()
	return r.Scheduler.Run(ctx, r.Config.Scheduler.Interval.Std())
}
