package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/baxromumarov/taskkit/duration"
	"github.com/baxromumarov/taskkit/task"
)

// Option customizes [Load].
type Option func(*loader)

type loader struct {
	envFiles  []string
	environ   func() []string
	overrides map[string]any
}

// WithEnvFiles reads .env files before the process environment. Variables
// already present in the environment win. Missing files are an error.
func WithEnvFiles(files ...string) Option {
	return func(l *loader) {
		l.envFiles = append(l.envFiles, files...)
	}
}

// WithEnviron replaces os.Environ as the source of variables.
func WithEnviron(fn func() []string) Option {
	return func(l *loader) {
		l.environ = fn
	}
}

// WithOverrides applies values keyed by dotted path, such as
// "task.retries", after every other source. Typically these come from
// command line flags the user set explicitly.
func WithOverrides(values map[string]any) Option {
	return func(l *loader) {
		if l.overrides == nil {
			l.overrides = make(map[string]any, len(values))
		}
		for k, v := range values {
			l.overrides[k] = v
		}
	}
}

// Load builds and validates a Config.
func Load(opts ...Option) (*Config, error) {
	l := &loader{environ: os.Environ}
	for _, opt := range opts {
		opt(l)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	environ, err := l.environment()
	if err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnvKey,
		EnvironFunc:   func() []string { return environ },
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	for key, value := range l.overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("config: override %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// environment lists .env file variables followed by the process
// environment, so later entries override earlier ones.
func (l *loader) environment() ([]string, error) {
	var out []string
	if len(l.envFiles) > 0 {
		vars, err := godotenv.Read(l.envFiles...)
		if err != nil {
			return nil, fmt.Errorf("config: read env files: %w", err)
		}
		for k, v := range vars {
			out = append(out, k+"="+v)
		}
	}
	return append(out, l.environ()...), nil
}

// transformEnvKey maps TASKKIT_TASK__RETRY_DELAY to task.retry_delay.
func transformEnvKey(key, value string) (string, any) {
	key = strings.TrimPrefix(key, EnvPrefix)
	if key == "" {
		return "", nil
	}
	return strings.ReplaceAll(strings.ToLower(key), "__", "."), value
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "duration", func(fl validator.FieldLevel) bool {
		_, err := duration.Parse(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "concurrency", func(fl validator.FieldLevel) bool {
		_, err := task.ParseConcurrency(fl.Field().String())
		return err == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("config: register %s validation: %v", tag, err))
	}
}

// Validate checks struct tags and cross-field rules.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: configuration cannot be nil")
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	if _, _, err := cfg.Task.TimeoutOptions(false); err != nil {
		return err
	}
	return nil
}
