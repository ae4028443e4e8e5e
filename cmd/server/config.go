// Package main provides the Aetheris server CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Stream     StreamConfig     `yaml:"stream"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	OpenFDA    OpenFDAConfig    `yaml:"openfda"`
	Verbose    bool             `yaml:"-"` // set via CLI flag
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	HTTPAddress    string `yaml:"http_address"`    // API listen address (default: :8080)
	MetricsAddress string `yaml:"metrics_address"` // Prometheus listen address (default: :9090)
	RateLimitPerIP int    `yaml:"rate_limit_per_ip"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // memory or sqlite
	Path   string `yaml:"path"`   // sqlite file path
}

// StreamConfig tunes the telemetry sessions.
type StreamConfig struct {
	Interval          string `yaml:"interval"`            // tick cadence, e.g. "1.5s"
	ObserverQueueSize int    `yaml:"observer_queue_size"` // per-observer backlog
	HistoryCapacity   int    `yaml:"history_capacity"`    // readings retained per patient
	SimulatorSeed     int64  `yaml:"simulator_seed"`      // 0 means time-based
}

// IntervalDuration returns the parsed tick cadence. Validate guarantees
// the string parses, so the fallback only covers hand-built configs.
func (c *StreamConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 1500 * time.Millisecond
	}
	return d
}

// ThresholdsConfig points at the optional threshold override file.
type ThresholdsConfig struct {
	File string `yaml:"file"` // yaml profile overrides, hot-reloaded
}

// OpenFDAConfig controls the drug label lookups.
type OpenFDAConfig struct {
	BaseURL string `yaml:"base_url"` // empty disables lookups
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.HTTPAddress == "" {
		c.Server.HTTPAddress = ":8080"
	}
	if c.Server.MetricsAddress == "" {
		c.Server.MetricsAddress = ":9090"
	}
	if c.Server.RateLimitPerIP == 0 {
		c.Server.RateLimitPerIP = 300
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "memory"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "data/aetheris.db"
	}
	if c.Stream.Interval == "" {
		c.Stream.Interval = "1.5s"
	}
	if c.Stream.ObserverQueueSize == 0 {
		c.Stream.ObserverQueueSize = 16
	}
	if c.Stream.HistoryCapacity == 0 {
		c.Stream.HistoryCapacity = 100
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "memory":
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("database.driver must be memory or sqlite, got %q", c.Database.Driver)
	}
	interval, err := time.ParseDuration(c.Stream.Interval)
	if err != nil {
		return fmt.Errorf("stream.interval is not a valid duration: %q", c.Stream.Interval)
	}
	if interval < 100*time.Millisecond {
		return fmt.Errorf("stream.interval must be at least 100ms, got %s", interval)
	}
	if c.Stream.ObserverQueueSize < 1 {
		return fmt.Errorf("stream.observer_queue_size must be positive")
	}
	if c.Stream.HistoryCapacity < 1 {
		return fmt.Errorf("stream.history_capacity must be positive")
	}
	if c.Server.RateLimitPerIP < 1 {
		return fmt.Errorf("server.rate_limit_per_ip must be positive")
	}
	return nil
}
