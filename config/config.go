// Package config loads process settings from SHIFT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"`
	HTTP        struct {
		Port            string        `env:"PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
		WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
		AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`
	} `envPrefix:"HTTP_"`
	DB struct {
		Path string `env:"PATH" envDefault:"shift-engine.db"`
	} `envPrefix:"DB_"`
	Engine struct {
		Timezone  string `env:"TIMEZONE" envDefault:"UTC"`
		Workers   int    `env:"WORKERS" envDefault:"4"`
		MemoLimit int    `env:"MEMO_LIMIT" envDefault:"100000"`
		// MaxRangeDays caps schedule queries.
		MaxRangeDays int `env:"MAX_RANGE_DAYS" envDefault:"366"`
	} `envPrefix:"ENGINE_"`
	Warmer struct {
		Enabled  bool          `env:"ENABLED" envDefault:"true"`
		Interval time.Duration `env:"INTERVAL" envDefault:"1h"`
		Horizon  int           `env:"HORIZON_DAYS" envDefault:"14"`
	} `envPrefix:"WARMER_"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	return parse(env.Options{Prefix: "SHIFT_"})
}

// LoadFrom reads the configuration from a fixed map (for tests).
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: "SHIFT_", Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Engine.Workers < 1 {
		return fmt.Errorf("SHIFT_ENGINE_WORKERS must be at least 1, got %d", c.Engine.Workers)
	}
	if c.Warmer.Enabled && c.Warmer.Interval <= 0 {
		return fmt.Errorf("SHIFT_WARMER_INTERVAL must be positive, got %s", c.Warmer.Interval)
	}
	return nil
}

// Location resolves Engine.Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return nil, fmt.Errorf("SHIFT_ENGINE_TIMEZONE: %w", err)
	}
	return loc, nil
}

// IsDevelopment reports whether human-readable logs are wanted.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
