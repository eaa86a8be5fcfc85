package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the stellenradar pipeline.
type Config struct {
	Adzuna       AdzunaConfig
	SnapshotDir  string        // where dated snapshot files are staged
	DatabasePath string        // SQLite database file
	Schedule     string        // cron spec for the daily pipeline run
	HTTPTimeout  time.Duration // per-request timeout for API calls
}

// AdzunaConfig holds the upstream API credentials and politeness settings.
// Credentials may legitimately be empty for import-only invocations; the
// fetcher rejects them when a fetch is actually attempted.
type AdzunaConfig struct {
	AppID    string
	AppKey   string
	Throttle time.Duration // pause between page requests
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	Adzuna       rawAdzunaConfig `yaml:"adzuna"`
	SnapshotDir  string          `yaml:"snapshot_dir"`
	DatabasePath string          `yaml:"database_path"`
	Schedule     string          `yaml:"schedule"`
	HTTPTimeout  string          `yaml:"http_timeout"`
}

type rawAdzunaConfig struct {
	AppID    string `yaml:"app_id"`
	AppKey   string `yaml:"app_key"`
	Throttle string `yaml:"throttle"`
}

// Load reads and parses the YAML config file at path, expands environment
// variables, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	throttle := 1 * time.Second // default: 1s between pages
	if raw.Adzuna.Throttle != "" {
		throttle, err = time.ParseDuration(raw.Adzuna.Throttle)
		if err != nil {
			return nil, fmt.Errorf("parse adzuna.throttle %q: %w", raw.Adzuna.Throttle, err)
		}
	}

	httpTimeout := 10 * time.Second // default
	if raw.HTTPTimeout != "" {
		httpTimeout, err = time.ParseDuration(raw.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse http_timeout %q: %w", raw.HTTPTimeout, err)
		}
	}

	cfg := &Config{
		Adzuna: AdzunaConfig{
			AppID:    raw.Adzuna.AppID,
			AppKey:   raw.Adzuna.AppKey,
			Throttle: throttle,
		},
		SnapshotDir:  raw.SnapshotDir,
		DatabasePath: raw.DatabasePath,
		Schedule:     raw.Schedule,
		HTTPTimeout:  httpTimeout,
	}

	if cfg.SnapshotDir == "" {
		cfg.SnapshotDir = "snapshots"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "jobs.db"
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "30 22 * * *" // daily at 22:30
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return fmt.Errorf("schedule %q is not a valid cron spec: %w", cfg.Schedule, err)
	}
	if cfg.Adzuna.Throttle < 0 {
		return fmt.Errorf("adzuna.throttle must not be negative, got %v", cfg.Adzuna.Throttle)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %v", cfg.HTTPTimeout)
	}
	return nil
}
