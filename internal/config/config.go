// Package config loads the runtime settings of the decision engine from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zeusync/utilityai/internal/core/observability/log"
	"github.com/zeusync/utilityai/internal/core/scheduler"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Log           LogConfig           `yaml:"log"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	DecisionMaker DecisionMakerConfig `yaml:"decision_maker"`
}

type LogConfig struct {
	Level    string   `yaml:"level"`
	Encoding string   `yaml:"encoding"`
	Outputs  []string `yaml:"outputs,omitempty"`
	Sampling bool     `yaml:"sampling"`
}

type SchedulerConfig struct {
	// Interval is the tick period of Scheduler.Run.
	Interval     Duration `yaml:"interval"`
	ThinkBudget  Duration `yaml:"think_budget"`
	UpdateBudget Duration `yaml:"update_budget"`
	// Seed makes scheduling jitter reproducible; empty seeds from the clock.
	Seed string `yaml:"seed"`
}

type DecisionMakerConfig struct {
	Think  CommandConfig `yaml:"think"`
	Update CommandConfig `yaml:"update"`
}

// CommandConfig holds the delay windows of one repeating command.
type CommandConfig struct {
	InitialMin Duration `yaml:"initial_min"`
	InitialMax Duration `yaml:"initial_max"`
	SteadyMin  Duration `yaml:"steady_min"`
	SteadyMax  Duration `yaml:"steady_max"`
}

// Default returns the settings used when a key is absent from the file.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
			Sampling: true,
		},
		Scheduler: SchedulerConfig{
			Interval: Duration(50 * time.Millisecond),
		},
		DecisionMaker: DecisionMakerConfig{
			Think: CommandConfig{
				InitialMax: Duration(100 * time.Millisecond),
				SteadyMin:  Duration(200 * time.Millisecond),
				SteadyMax:  Duration(300 * time.Millisecond),
			},
			Update: CommandConfig{
				InitialMax: Duration(50 * time.Millisecond),
				SteadyMin:  Duration(50 * time.Millisecond),
				SteadyMax:  Duration(60 * time.Millisecond),
			},
		},
	}
}

// Load decodes YAML from r over Default and validates the result.
// An empty document yields the defaults.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.encoding %q", ErrInvalid, c.Log.Encoding)
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("%w: scheduler.interval must be positive", ErrInvalid)
	}
	if c.Scheduler.ThinkBudget < 0 || c.Scheduler.UpdateBudget < 0 {
		return fmt.Errorf("%w: scheduler budgets must not be negative", ErrInvalid)
	}
	if err := c.DecisionMaker.Think.validate("decision_maker.think"); err != nil {
		return err
	}
	return c.DecisionMaker.Update.validate("decision_maker.update")
}

func (c CommandConfig) validate(key string) error {
	if c.InitialMin < 0 || c.InitialMax < 0 || c.SteadyMin < 0 || c.SteadyMax < 0 {
		return fmt.Errorf("%w: %s: delays must not be negative", ErrInvalid, key)
	}
	if c.InitialMax < c.InitialMin {
		return fmt.Errorf("%w: %s: initial_max below initial_min", ErrInvalid, key)
	}
	if c.SteadyMax < c.SteadyMin {
		return fmt.Errorf("%w: %s: steady_max below steady_min", ErrInvalid, key)
	}
	return nil
}

func (c LogConfig) Logger() log.Config {
	return log.Config{
		Level:       log.ParseLevel(c.Level),
		Encoding:    c.Encoding,
		OutputPaths: c.Outputs,
		Sampling:    c.Sampling,
	}
}

// Scheduler converts to scheduler.Config; clock is nil for wall time.
func (c SchedulerConfig) Scheduler(clock func() time.Time) scheduler.Config {
	return scheduler.Config{
		ThinkBudget:  c.ThinkBudget.Std(),
		UpdateBudget: c.UpdateBudget.Std(),
		Seed:         c.Seed,
		Clock:        clock,
	}
}

// Command converts to a repeating scheduler.CommandConfig.
func (c CommandConfig) Command() scheduler.CommandConfig {
	return scheduler.CommandConfig{
		InitialMin: c.InitialMin.Std(),
		InitialMax: c.InitialMax.Std(),
		SteadyMin:  c.SteadyMin.Std(),
		SteadyMax:  c.SteadyMax.Std(),
		Repeating:  true,
	}
}
