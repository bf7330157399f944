package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/zeusync/utilityai/internal/config"
	"github.com/zeusync/utilityai/internal/core/ai"
	"github.com/zeusync/utilityai/internal/core/events/bus"
	"github.com/zeusync/utilityai/internal/core/observability/log"
	"github.com/zeusync/utilityai/internal/injector"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		villagers  = flag.Int("villagers", 3, "number of villagers")
		duration   = flag.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
	)
	flag.Parse()

	if err := run(*configPath, *villagers, *duration); err != nil {
		fmt.Fprintln(os.Stderr, "aidemo:", err)
		os.Exit(1)
	}
}

func run(configPath string, villagers int, duration time.Duration) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	rt, err := injector.InitializeRuntime(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	tally := newTally()
	sub, err := rt.Events.Subscribe(ai.EventActionFinished, tally.record)
	if err != nil {
		return err
	}
	defer sub.Cancel()

	village, err := populate(rt, villagers)
	if err != nil {
		return err
	}
	defer village.stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rt.Run(ctx) })
	g.Go(func() error { return village.live(ctx, cfg.Scheduler.Interval.Std()) })
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fields := []log.Field{log.Int("villagers", len(village.residents))}
	for action, n := range tally.snapshot() {
		fields = append(fields, log.Int(action, n))
	}
	rt.Logger.Info("village asleep", fields...)
	return nil
}

// tally counts finished actions by name.
type tally struct {
	mu     sync.Mutex
	counts map[string]int
}

func newTally() *tally { return &tally{counts: make(map[string]int)} }

func (t *tally) record(e bus.Event) error {
	ev, ok := e.Data.(ai.ActionEvent)
	if !ok {
		return fmt.Errorf("unexpected %s payload %T", e.Type, e.Data)
	}
	t.mu.Lock()
	t.counts[ev.Action]++
	t.mu.Unlock()
	return nil
}

func (t *tally) snapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}

type village struct {
	residents []*Villager
	deciders  []*ai.DecisionMaker[*Villager]
}

// populate clones one villager agent per resident and starts its decision maker.
func populate(rt *injector.Runtime, n int) (*village, error) {
	logger := rt.Logger.Named("village")
	lib, err := NewVillageLibrary(logger)
	if err != nil {
		return nil, err
	}

	v := &village{}
	for i := 0; i < n; i++ {
		resident := NewVillager(fmt.Sprintf("villager-%d", i+1))
		agent, ok := lib.Agents.Create("villager")
		if !ok {
			return nil, fmt.Errorf("villager agent: %w", ai.ErrNotFound)
		}
		dm, err := ai.NewDecisionMaker(agent,
			ai.ContextProviderFunc[*Villager](func() (*Villager, bool) { return resident, true }),
			rt.Scheduler,
			ai.WithLogger(logger),
			ai.WithEvents(rt.Events),
			ai.WithThinkConfig(rt.Config.DecisionMaker.Think.Command()),
			ai.WithUpdateConfig(rt.Config.DecisionMaker.Update.Command()),
		)
		if err != nil {
			return nil, err
		}
		if err := dm.Start(); err != nil {
			return nil, err
		}
		v.residents = append(v.residents, resident)
		v.deciders = append(v.deciders, dm)
	}
	return v, nil
}

// live advances every villager's needs until ctx is done.
func (v *village) live(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			for _, r := range v.residents {
				r.Metabolize(now.Sub(last))
			}
			last = now
		}
	}
}

func (v *village) stop() {
	for _, dm := range v.deciders {
		dm.Stop()
	}
}
