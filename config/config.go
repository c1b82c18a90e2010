// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package config loads the hypervisor configuration from YAML.
package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tochemey/exo/actor"
	gerrors "github.com/tochemey/exo/errors"
	"github.com/tochemey/exo/journal"
	"github.com/tochemey/exo/log"
)

const (
	// MemoryJournal keeps the journal in memory
	MemoryJournal = "memory"
	// BoltJournal persists the journal in a bbolt file
	BoltJournal = "bolt"
)

// Config describes a hypervisor
type Config struct {
	// LogLevel is one of debug, info, warn, error, fatal and panic
	LogLevel string `yaml:"logLevel"`
	// PortCapacity bounds every port buffer. Zero means unbounded.
	PortCapacity int `yaml:"portCapacity"`
	// SpawnRetries is the number of attempts made to build a container
	SpawnRetries int `yaml:"spawnRetries"`
	// SpawnTimeout bounds the time spent building a container
	SpawnTimeout time.Duration `yaml:"spawnTimeout"`
	// Journal configures the execution journal. It is disabled when empty.
	Journal Journal `yaml:"journal"`
}

// Journal configures the execution journal
type Journal struct {
	Kind        string        `yaml:"kind"`
	Path        string        `yaml:"path"`
	OpenRetries int           `yaml:"openRetries"`
	OpenTimeout time.Duration `yaml:"openTimeout"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		LogLevel:     log.InfoLevel.String(),
		SpawnRetries: actor.DefaultSpawnMaxRetries,
		SpawnTimeout: actor.DefaultSpawnTimeout,
	}
}

// Load reads and validates the configuration file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from file %s: %w", path, err)
	}
	return config, nil
}

// Parse decodes YAML data over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %v", gerrors.ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", gerrors.ErrInvalidConfig, err)
	}
	if c.PortCapacity < 0 {
		return fmt.Errorf("%w: port capacity must not be negative", gerrors.ErrInvalidConfig)
	}
	if c.SpawnRetries <= 0 {
		return fmt.Errorf("%w: spawn retries must be positive", gerrors.ErrInvalidConfig)
	}
	if c.SpawnTimeout <= 0 {
		return fmt.Errorf("%w: spawn timeout must be positive", gerrors.ErrInvalidConfig)
	}

	switch c.Journal.Kind {
	case "", MemoryJournal:
	case BoltJournal:
		if c.Journal.Path == "" {
			return fmt.Errorf("%w: bolt journal requires a path", gerrors.ErrInvalidConfig)
		}
		if c.Journal.OpenRetries < 0 {
			return fmt.Errorf("%w: journal open retries must not be negative", gerrors.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown journal kind %q", gerrors.ErrInvalidConfig, c.Journal.Kind)
	}
	return nil
}

// Options returns the hypervisor options described by the configuration.
// A bolt journal is opened here and closed by the hypervisor when it stops.
func (c *Config) Options(ctx context.Context) ([]actor.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	level, _ := log.ParseLevel(c.LogLevel)
	opts := []actor.Option{
		actor.WithLogger(log.NewZap(level, os.Stdout)),
		actor.WithPortCapacity(c.PortCapacity),
		actor.WithSpawnRetries(c.SpawnRetries, c.SpawnTimeout),
	}

	switch c.Journal.Kind {
	case MemoryJournal:
		opts = append(opts, actor.WithJournal(journal.NewMemory()))
	case BoltJournal:
		var journalOpts []journal.Option
		if c.Journal.OpenRetries > 0 {
			journalOpts = append(journalOpts, journal.WithOpenRetries(c.Journal.OpenRetries))
		}
		if c.Journal.OpenTimeout > 0 {
			journalOpts = append(journalOpts, journal.WithOpenTimeout(c.Journal.OpenTimeout))
		}

		bolt, err := journal.NewBolt(ctx, c.Journal.Path, journalOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, actor.WithJournal(bolt))
	}
	return opts, nil
}
