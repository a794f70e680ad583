// Package config loads taskkit settings from defaults, .env files, the
// environment and explicit overrides, in that order of precedence.
package config

import (
	"fmt"
	"io"

	"github.com/baxromumarov/taskkit/duration"
	"github.com/baxromumarov/taskkit/logger"
	"github.com/baxromumarov/taskkit/task"
)

// EnvPrefix is the prefix of every environment variable read by [Load].
// A double underscore separates nesting levels, so TASKKIT_TASK__RETRIES
// sets task.retries.
const EnvPrefix = "TASKKIT_"

// Config is the root configuration.
type Config struct {
	Glob GlobConfig `koanf:"glob"`
	Task TaskConfig `koanf:"task"`
	Log  LogConfig  `koanf:"log"`
}

// GlobConfig holds the inputs of a glob walk.
type GlobConfig struct {
	Pattern   string `koanf:"pattern"    validate:"required"`
	Cwd       string `koanf:"cwd"`
	OnlyFiles bool   `koanf:"only_files"`
}

// TaskConfig holds execution policy. Concurrency is parsed by
// task.ParseConcurrency; Timeout bounds every attempt and is disabled when
// empty.
type TaskConfig struct {
	Concurrency string  `koanf:"concurrency" validate:"required,concurrency"`
	Timeout     string  `koanf:"timeout"     validate:"omitempty,duration"`
	Retries     int     `koanf:"retries"     validate:"gte=0"`
	RetryDelay  string  `koanf:"retry_delay" validate:"required,duration"`
	JitterMin   float64 `koanf:"jitter_min"  validate:"gte=0"`
	JitterMax   float64 `koanf:"jitter_max"  validate:"gtefield=JitterMin"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error disabled"`
	JSON  bool   `koanf:"json"`
}

// Default returns the configuration used before any source is applied.
func Default() *Config {
	return &Config{
		Glob: GlobConfig{
			Pattern: "**/*",
		},
		Task: TaskConfig{
			Concurrency: "unbounded",
			Retries:     0,
			RetryDelay:  "100ms",
			JitterMin:   task.DefaultJitter.MinFactor,
			JitterMax:   task.DefaultJitter.MaxFactor,
		},
		Log: LogConfig{
			Level: logger.InfoLevel.String(),
		},
	}
}

// ConcurrencyPolicy returns the parsed concurrency.
func (c TaskConfig) ConcurrencyPolicy() (task.Concurrency, error) {
	return task.ParseConcurrency(c.Concurrency)
}

// RetryOptions returns retry settings with the default jittered backoff.
func (c TaskConfig) RetryOptions() (task.RetryOptions, error) {
	delay, err := duration.Parse(c.RetryDelay)
	if err != nil {
		return task.RetryOptions{}, fmt.Errorf("config: task.retry_delay: %w", err)
	}
	return task.RetryOptions{
		Times: c.Retries,
		Delay: delay,
		Jitter: task.Jitter{
			MinFactor: c.JitterMin,
			MaxFactor: c.JitterMax,
		},
	}, nil
}

// TimeoutOptions returns the per-attempt timeout. The boolean is false
// when no timeout is configured.
func (c TaskConfig) TimeoutOptions(useResult bool) (task.TimeoutOptions, bool, error) {
	if c.Timeout == "" {
		return task.TimeoutOptions{}, false, nil
	}
	d, err := duration.Parse(c.Timeout)
	if err != nil {
		return task.TimeoutOptions{}, false, fmt.Errorf("config: task.timeout: %w", err)
	}
	if d.Std() <= 0 {
		return task.TimeoutOptions{}, false, fmt.Errorf("config: task.timeout must be positive (got %s)", d)
	}
	return task.TimeoutOptions{Timeout: d, UseResult: useResult}, true, nil
}

// LoggerConfig returns a logger configuration writing to out.
func (c LogConfig) LoggerConfig(out io.Writer) (*logger.Config, error) {
	level, err := logger.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log.level: %w", err)
	}
	cfg := logger.DefaultConfig()
	cfg.Level = level
	cfg.JSON = c.JSON
	if out != nil {
		cfg.Output = out
	}
	return cfg, nil
}
