package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Gansovic/matchday/go/internal/outbox"
	"github.com/Gansovic/matchday/go/internal/season"
)

// Config is the engine's YAML configuration. Durations are strings in Go
// duration syntax ("30s", "10m"); anything omitted falls back to the
// package defaults.
type Config struct {
	Watchdog struct {
		SweepInterval string `yaml:"sweep_interval"`
		StaleAfter    string `yaml:"stale_after"`
	} `yaml:"watchdog"`
	Outbox struct {
		PollInterval string `yaml:"poll_interval"`
		BatchSize    int32  `yaml:"batch_size"`
		MaxRetries   int    `yaml:"max_retries"`
	} `yaml:"outbox"`
	NATS struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		Stream        string `yaml:"stream"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}

func (c *Config) watchdogConfig() (season.WatchdogConfig, error) {
	cfg := season.DefaultWatchdogConfig()
	var err error
	if cfg.SweepInterval, err = overrideDuration(cfg.SweepInterval, c.Watchdog.SweepInterval); err != nil {
		return cfg, fmt.Errorf("watchdog.sweep_interval: %w", err)
	}
	if cfg.StaleAfter, err = overrideDuration(cfg.StaleAfter, c.Watchdog.StaleAfter); err != nil {
		return cfg, fmt.Errorf("watchdog.stale_after: %w", err)
	}
	return cfg, nil
}

func (c *Config) outboxConfig() (outbox.Config, error) {
	cfg := outbox.DefaultConfig()
	var err error
	if cfg.PollInterval, err = overrideDuration(cfg.PollInterval, c.Outbox.PollInterval); err != nil {
		return cfg, fmt.Errorf("outbox.poll_interval: %w", err)
	}
	if c.Outbox.BatchSize > 0 {
		cfg.BatchSize = c.Outbox.BatchSize
	}
	if c.Outbox.MaxRetries > 0 {
		cfg.MaxRetries = c.Outbox.MaxRetries
	}
	return cfg, nil
}

func (c *Config) jetStreamConfig() outbox.JetStreamConfig {
	cfg := outbox.DefaultJetStreamConfig()
	if c.NATS.URL != "" {
		cfg.URL = c.NATS.URL
	}
	if c.NATS.Stream != "" {
		cfg.StreamName = c.NATS.Stream
	}
	if c.NATS.SubjectPrefix != "" {
		cfg.SubjectPrefix = c.NATS.SubjectPrefix
	}
	return cfg
}

func overrideDuration(fallback time.Duration, value string) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
