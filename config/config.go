// Package config loads fetchsim settings from the environment, optionally
// seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig wraps every parsing and validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full set of settings.
type Config struct {
	// Addr is the listen address of the web UI.
	Addr    string `env:"FETCHSIM_ADDR"    envDefault:":8080"`
	Workers int    `env:"FETCHSIM_WORKERS" envDefault:"4"`
	// Inspect streams inspector records to the web UI and the debug log.
	Inspect bool `env:"FETCHSIM_INSPECT" envDefault:"true"`

	Mock      Mock
	Log       Log
	Telemetry Telemetry
}

// Mock configures the simulated API call.
type Mock struct {
	Delay       time.Duration `env:"FETCHSIM_DELAY"        envDefault:"1s"`
	FailureRate float64       `env:"FETCHSIM_FAILURE_RATE" envDefault:"0.5"`
	Payload     int64         `env:"FETCHSIM_PAYLOAD"      envDefault:"123456"`
	// Seed makes outcomes reproducible. Zero means random.
	Seed uint64 `env:"FETCHSIM_SEED" envDefault:"0"`
}

// Log configures the process-wide logger.
type Log struct {
	JSON  bool       `env:"LOG_JSON"  envDefault:"false"`
	Level slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Telemetry configures OTLP export.
type Telemetry struct {
	Enabled     bool          `env:"OTEL_ENABLED"                envDefault:"false"`
	ServiceName string        `env:"OTEL_SERVICE_NAME"           envDefault:"fetchsim"`
	Endpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Timeout     time.Duration `env:"OTEL_EXPORTER_OTLP_TIMEOUT"  envDefault:"10s"`
}

// Load reads the given .env files (".env" when none are given) into the
// process environment, then parses it. Missing files are skipped and
// variables already set are never overridden.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: loading %s: %w", ErrInvalidConfig, file, err)
		}
	}

	return Parse(nil)
}

// Parse builds a Config from environment, or from the process environment
// when environment is nil.
func Parse(environment map[string]string) (*Config, error) {
	var cfg Config

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("FETCHSIM_ADDR must not be empty")) //nolint:err113
	}

	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("FETCHSIM_WORKERS must be positive, got %d", c.Workers)) //nolint:err113
	}

	if c.Mock.Delay < 0 {
		errs = append(errs, fmt.Errorf("FETCHSIM_DELAY must not be negative, got %s", c.Mock.Delay)) //nolint:err113
	}

	if c.Mock.FailureRate < 0 || c.Mock.FailureRate > 1 {
		errs = append(errs, fmt.Errorf( //nolint:err113
			"FETCHSIM_FAILURE_RATE must be within [0, 1], got %g", c.Mock.FailureRate))
	}

	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		errs = append(errs, errors.New("OTEL_SERVICE_NAME is required when OTEL_ENABLED is set")) //nolint:err113
	}

	if c.Telemetry.Timeout <= 0 {
		errs = append(errs, fmt.Errorf( //nolint:err113
			"OTEL_EXPORTER_OTLP_TIMEOUT must be positive, got %s", c.Telemetry.Timeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}
