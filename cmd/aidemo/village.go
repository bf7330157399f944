package main

import (
	"sync"
	"time"

	"github.com/zeusync/utilityai/internal/core/ai"
	"github.com/zeusync/utilityai/internal/core/ai/utility"
	"github.com/zeusync/utilityai/internal/core/observability/log"
)

// Villager is the decision context of the demo. Needs are in [0, 1].
type Villager struct {
	Name string

	mu     sync.Mutex
	hunger float64
	energy float64
	gold   float64
}

func NewVillager(name string) *Villager {
	return &Villager{Name: name, hunger: 0.2, energy: 0.8}
}

func (v *Villager) Hunger() float64    { return v.read(&v.hunger) }
func (v *Villager) Energy() float64    { return v.read(&v.energy) }
func (v *Villager) Gold() float64      { return v.read(&v.gold) }
func (v *Villager) Tiredness() float64 { return 1 - v.Energy() }

func (v *Villager) read(f *float64) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return *f
}

func (v *Villager) adjust(hunger, energy, gold float64) {
	v.mu.Lock()
	v.hunger = utility.Clamp01(v.hunger + hunger)
	v.energy = utility.Clamp01(v.energy + energy)
	v.gold = utility.Clamp01(v.gold + gold)
	v.mu.Unlock()
}

// Metabolize advances the villager's needs by dt of world time.
func (v *Villager) Metabolize(dt time.Duration) {
	s := dt.Seconds()
	v.adjust(0.04*s, -0.02*s, -0.005*s)
}

// timedTask ends in success after d, applying effect once.
func timedTask(name string, d, cooldown time.Duration, logger log.Log, effect func(v *Villager)) (*ai.Task[*Villager], error) {
	task, err := ai.NewTask(name, ai.TaskHooks[*Villager]{
		OnStart: func(t *ai.Task[*Villager], v *Villager) {
			logger.Info("action started", log.String("villager", v.Name), log.String("action", name))
		},
		OnUpdate: func(t *ai.Task[*Villager], v *Villager) {
			if t.ElapsedTime() < d {
				return
			}
			effect(v)
			t.EndInSuccess(v)
		},
		OnStop: func(t *ai.Task[*Villager], v *Villager) {
			logger.Info("action finished",
				log.String("villager", v.Name),
				log.String("action", name),
				log.Stringer("status", t.Status()),
				log.Float64("hunger", v.Hunger()),
				log.Float64("energy", v.Energy()),
				log.Float64("gold", v.Gold()),
			)
		},
	})
	if err != nil {
		return nil, err
	}
	task.SetCooldown(cooldown)
	return task, nil
}

// NewVillageLibrary registers the prototypes of the villager agent.
func NewVillageLibrary(logger log.Log) (*ai.Library[*Villager], error) {
	lib := ai.NewLibrary[*Villager]()

	eat, err := timedTask("eat", time.Second, 2*time.Second, logger, func(v *Villager) { v.adjust(-0.8, 0, -0.05) })
	if err != nil {
		return nil, err
	}
	sleep, err := timedTask("sleep", 3*time.Second, time.Second, logger, func(v *Villager) { v.adjust(0.1, 0.9, 0) })
	if err != nil {
		return nil, err
	}
	work, err := timedTask("work", 1500*time.Millisecond, 0, logger, func(v *Villager) { v.adjust(0.1, -0.2, 0.2) })
	if err != nil {
		return nil, err
	}
	idle, err := ai.NewTask("idle", ai.TaskHooks[*Villager]{
		OnStop: func(_ *ai.Task[*Villager], v *Villager) {
			logger.Debug("idling", log.String("villager", v.Name))
		},
	})
	if err != nil {
		return nil, err
	}
	for _, a := range []ai.Action[*Villager]{eat, sleep, work, idle} {
		if err := lib.Actions.Add(a); err != nil {
			return nil, err
		}
	}

	hunger, err := ai.NewConsideration("hunger", (*Villager).Hunger)
	if err != nil {
		return nil, err
	}
	tiredness, err := ai.NewConsideration("tiredness", (*Villager).Tiredness)
	if err != nil {
		return nil, err
	}
	// Working pays off while rested and poor.
	ambition, err := ai.NewCompositeConsideration[*Villager]("ambition", utility.MultiplicativePseudoMeasure{})
	if err != nil {
		return nil, err
	}
	rested, err := ai.NewConsideration("rested", (*Villager).Energy)
	if err != nil {
		return nil, err
	}
	poor, err := ai.NewConsideration("poor", func(v *Villager) float64 { return 1 - v.Gold() })
	if err != nil {
		return nil, err
	}
	if err := ambition.AddConsideration(rested); err != nil {
		return nil, err
	}
	if err := ambition.AddConsideration(poor); err != nil {
		return nil, err
	}
	for _, c := range []ai.Consideration[*Villager]{hunger, tiredness, ambition} {
		if err := lib.Considerations.Add(c); err != nil {
			return nil, err
		}
	}

	survive, err := ai.NewBehaviour[*Villager]("survive")
	if err != nil {
		return nil, err
	}
	needs, err := ai.NewCompositeConsideration[*Villager]("needs", utility.NewWeightedMetrics(8))
	if err != nil {
		return nil, err
	}
	if err := addFromLibrary(lib, needs, "hunger", "tiredness"); err != nil {
		return nil, err
	}
	if err := survive.AddConsideration(needs); err != nil {
		return nil, err
	}
	if err := addOption(lib, survive, "eat", "eat", "hunger"); err != nil {
		return nil, err
	}
	if err := addOption(lib, survive, "sleep", "sleep", "tiredness"); err != nil {
		return nil, err
	}
	if err := lib.Behaviours.Add(survive); err != nil {
		return nil, err
	}

	routine, err := ai.NewBehaviour[*Villager]("routine")
	if err != nil {
		return nil, err
	}
	if err := addFromLibrary(lib, routine, "ambition"); err != nil {
		return nil, err
	}
	if err := addOption(lib, routine, "work", "work", "ambition"); err != nil {
		return nil, err
	}
	idleOpt, err := ai.NewConstantUtilityOption[*Villager]("idle", 0.1)
	if err != nil {
		return nil, err
	}
	if err := idleOpt.SetActionByName("idle", lib.Actions); err != nil {
		return nil, err
	}
	if err := routine.AddOption(idleOpt); err != nil {
		return nil, err
	}
	// A very hungry worker drops the routine and re-decides among needs.
	breakOpt, err := ai.NewOption[*Villager]("take-break")
	if err != nil {
		return nil, err
	}
	if err := breakOpt.SetMeasure(utility.NewConstrainedWeightedMetrics(utility.DefaultPNorm, 0.7)); err != nil {
		return nil, err
	}
	if err := addFromLibrary(lib, breakOpt, "hunger"); err != nil {
		return nil, err
	}
	toSurvive, err := ai.NewBehaviourTransition[*Villager]("take-break", "survive", lib.Behaviours)
	if err != nil {
		return nil, err
	}
	if err := breakOpt.SetAction(toSurvive); err != nil {
		return nil, err
	}
	if err := routine.AddOption(breakOpt); err != nil {
		return nil, err
	}
	if err := lib.Behaviours.Add(routine); err != nil {
		return nil, err
	}

	villager, err := ai.NewAgent[*Villager]("villager")
	if err != nil {
		return nil, err
	}
	for _, name := range []string{"survive", "routine"} {
		b, _ := lib.Behaviours.Create(name)
		if err := villager.AddBehaviour(b); err != nil {
			return nil, err
		}
	}
	if err := lib.Agents.Add(villager); err != nil {
		return nil, err
	}
	return lib, nil
}

type considerationHolder interface {
	AddConsideration(ai.Consideration[*Villager]) error
}

func addFromLibrary(lib *ai.Library[*Villager], to considerationHolder, names ...string) error {
	for _, name := range names {
		c, ok := lib.Considerations.Create(name)
		if !ok {
			return ai.ErrNotFound
		}
		if err := to.AddConsideration(c); err != nil {
			return err
		}
	}
	return nil
}

func addOption(lib *ai.Library[*Villager], b *ai.Behaviour[*Villager], name, action string, considerations ...string) error {
	o, err := ai.NewOption[*Villager](name)
	if err != nil {
		return err
	}
	if err := addFromLibrary(lib, o, considerations...); err != nil {
		return err
	}
	if err := o.SetActionByName(action, lib.Actions); err != nil {
		return err
	}
	if err := lib.Options.Add(o); err != nil {
		return err
	}
	return b.AddOption(o.Clone())
}
