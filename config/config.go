// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads the configuration of the simulation server.
//
package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvConfig is the environment variable holding the default configuration
// file path.
//
const EnvConfig = "CEDARSIM_CONFIG"

// Config is the server configuration.
//
type Config struct {
	// Listen is the HTTP listen address.
	Listen    string `yaml:"listen" validate:"required"`
	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" validate:"oneof=text json"`
	// Catalog is an optional gate type catalog file, loaded on top of the
	// built-in gate library.
	Catalog string `yaml:"catalog,omitempty"`
	// StepInterval is the wall-clock period of the background runner.
	StepInterval time.Duration `yaml:"step_interval" validate:"gt=0"`
	StepsPerTick int           `yaml:"steps_per_tick" validate:"min=1,max=100000"`
	// MaxSlotEvents is the per-slot iteration cap of every circuit.
	MaxSlotEvents int `yaml:"max_slot_events" validate:"min=1"`
	// MaxSessions bounds the number of live sessions.
	MaxSessions int `yaml:"max_sessions" validate:"min=1"`
	// CommandRate limits the commands per second accepted by a session.
	// Zero means unlimited.
	CommandRate  float64 `yaml:"command_rate" validate:"gte=0"`
	CommandBurst int     `yaml:"command_burst" validate:"gte=0"`
	// Trace selects the span exporter: none or stdout.
	Trace string `yaml:"trace" validate:"oneof=none stdout"`
	Store Store  `yaml:"store"`
}

// Store configures the snapshot store.
//
type Store struct {
	Path     string `yaml:"path,omitempty" validate:"required_without=InMemory"`
	InMemory bool   `yaml:"in_memory,omitempty"`
}

// Default returns the default configuration.
//
func Default() *Config {
	return &Config{
		Listen:        "localhost:8080",
		LogLevel:      "info",
		LogFormat:     "text",
		StepInterval:  10 * time.Millisecond,
		StepsPerTick:  1,
		MaxSlotEvents: 100000,
		MaxSessions:   64,
		CommandBurst:  100,
		Trace:         "none",
		Store:         Store{Path: "cedarsim.db"},
	}
}

var validate = validator.New()

// Validate checks c.
//
func (c *Config) Validate() error {
	return errors.Wrap(validate.Struct(c), "invalid configuration")
}

// Decode reads a YAML configuration from r. Missing keys keep their default
// value.
//
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the configuration file at path. If path is empty, the
// environment variable CEDARSIM_CONFIG is used instead, and if that is empty
// too, the default configuration is returned.
//
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "loading configuration")
	}
	defer f.Close()
	c, err := Decode(f)
	return c, errors.Wrap(err, path)
}

// Logger returns a logger writing to w with the configured level and
// format.
//
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
