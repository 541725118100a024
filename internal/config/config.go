// Package config loads the packsim run description from YAML.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the top-level packsim.yml.
type Config struct {
	Workers     int              `yaml:"workers,omitempty"` // 0 = GOMAXPROCS
	PinWorkers  bool             `yaml:"pin_workers,omitempty"`
	Seed        int64            `yaml:"seed,omitempty"`
	MetricsAddr string           `yaml:"metrics_addr,omitempty"` // empty disables the exporter
	Producers   []ProducerConfig `yaml:"producers"`
	Solver      SolverConfig     `yaml:"solver"`
	Acquire     RetryConfig      `yaml:"acquire,omitempty"`
}

// ProducerConfig describes the plan of one simulated producer.
type ProducerConfig struct {
	Packs       int           `yaml:"packs"`
	MaxPackSize int           `yaml:"max_pack_size"`
	Delay       time.Duration `yaml:"delay,omitempty"` // between packs
}

// SolverConfig describes the simulated solver factory.
type SolverConfig struct {
	MinCapacity int           `yaml:"min_capacity"`
	MaxCapacity int           `yaml:"max_capacity"`
	ExactBudget bool          `yaml:"exact_budget,omitempty"` // total capacity == total problems
	SolveDelay  time.Duration `yaml:"solve_delay,omitempty"`
}

// RetryConfig bounds solver acquisition retries.
type RetryConfig struct {
	Attempts int           `yaml:"attempts,omitempty"`
	Initial  time.Duration `yaml:"initial,omitempty"`
	Max      time.Duration `yaml:"max,omitempty"`
}

const (
	defaultProducers   = 2
	defaultPacks       = 100
	defaultMaxPackSize = 8
	defaultMinCapacity = 1
	defaultMaxCapacity = 8
	defaultSeed        = 1
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{Seed: defaultSeed}
	c.Producers = make([]ProducerConfig, defaultProducers)
	for i := range c.Producers {
		c.Producers[i] = ProducerConfig{Packs: defaultPacks, MaxPackSize: defaultMaxPackSize}
	}
	c.Solver = SolverConfig{MinCapacity: defaultMinCapacity, MaxCapacity: defaultMaxCapacity, ExactBudget: true}
	return c
}

// Validate checks the configuration and fills defaults for omitted values.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.Errorf("workers must be >= 0 (0 = GOMAXPROCS), got %d", c.Workers)
	}

	for i := range c.Producers {
		p := &c.Producers[i]
		if p.Packs < 0 {
			return errors.Errorf("producers[%d]: packs must be >= 0, got %d", i, p.Packs)
		}
		if p.MaxPackSize == 0 {
			p.MaxPackSize = defaultMaxPackSize
		}
		if p.MaxPackSize < 0 {
			return errors.Errorf("producers[%d]: max_pack_size must be > 0, got %d", i, p.MaxPackSize)
		}
		if p.Delay < 0 {
			return errors.Errorf("producers[%d]: delay must be >= 0, got %s", i, p.Delay)
		}
	}

	s := &c.Solver
	if s.MinCapacity == 0 {
		s.MinCapacity = defaultMinCapacity
	}
	if s.MaxCapacity == 0 {
		s.MaxCapacity = s.MinCapacity
	}
	if s.MinCapacity < 1 {
		return errors.Errorf("solver.min_capacity must be >= 1, got %d", s.MinCapacity)
	}
	if s.MaxCapacity < s.MinCapacity {
		return errors.Errorf("solver.max_capacity (%d) must be >= min_capacity (%d)", s.MaxCapacity, s.MinCapacity)
	}
	if s.SolveDelay < 0 {
		return errors.Errorf("solver.solve_delay must be >= 0, got %s", s.SolveDelay)
	}

	if c.Acquire.Attempts < 0 {
		return errors.Errorf("acquire.attempts must be >= 0, got %d", c.Acquire.Attempts)
	}
	if c.Acquire.Initial < 0 || c.Acquire.Max < 0 {
		return errors.New("acquire: durations must be >= 0")
	}

	return nil
}

// Parse decodes and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &c, nil
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	return Parse(data)
}
