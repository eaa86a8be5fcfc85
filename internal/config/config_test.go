package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
adzuna:
  app_id: my-id
  app_key: my-key
  throttle: 2s
snapshot_dir: /var/lib/stellenradar
database_path: /var/lib/stellenradar/jobs.db
schedule: "0 6 * * *"
http_timeout: 30s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Adzuna.AppID != "my-id" || cfg.Adzuna.AppKey != "my-key" {
		t.Errorf("credentials = %q/%q, want my-id/my-key", cfg.Adzuna.AppID, cfg.Adzuna.AppKey)
	}
	if cfg.Adzuna.Throttle != 2*time.Second {
		t.Errorf("throttle = %v, want 2s", cfg.Adzuna.Throttle)
	}
	if cfg.SnapshotDir != "/var/lib/stellenradar" {
		t.Errorf("snapshot_dir = %q", cfg.SnapshotDir)
	}
	if cfg.Schedule != "0 6 * * *" {
		t.Errorf("schedule = %q", cfg.Schedule)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("http_timeout = %v, want 30s", cfg.HTTPTimeout)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "adzuna:\n  app_id: x\n  app_key: y\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SnapshotDir != "snapshots" {
		t.Errorf("snapshot_dir = %q, want snapshots", cfg.SnapshotDir)
	}
	if cfg.DatabasePath != "jobs.db" {
		t.Errorf("database_path = %q, want jobs.db", cfg.DatabasePath)
	}
	if cfg.Schedule != "30 22 * * *" {
		t.Errorf("schedule = %q, want daily 22:30", cfg.Schedule)
	}
	if cfg.Adzuna.Throttle != time.Second {
		t.Errorf("throttle = %v, want 1s", cfg.Adzuna.Throttle)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("ADZUNA_APP_ID", "env-id")
	t.Setenv("ADZUNA_APP_KEY", "env-key")

	cfg, err := Load(writeConfig(t, `
adzuna:
  app_id: ${ADZUNA_APP_ID}
  app_key: ${ADZUNA_APP_KEY}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Adzuna.AppID != "env-id" || cfg.Adzuna.AppKey != "env-key" {
		t.Errorf("credentials = %q/%q, want env-id/env-key", cfg.Adzuna.AppID, cfg.Adzuna.AppKey)
	}
}

func TestLoadEmptyCredentialsAllowed(t *testing.T) {
	// Import-only invocations need no credentials; the fetcher enforces
	// them when a fetch is attempted.
	if _, err := Load(writeConfig(t, "snapshot_dir: snaps\n")); err != nil {
		t.Fatalf("Load without credentials: %v", err)
	}
}

func TestLoadRejectsBadSchedule(t *testing.T) {
	if _, err := Load(writeConfig(t, "schedule: \"every day at noon\"\n")); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestLoadRejectsBadThrottle(t *testing.T) {
	if _, err := Load(writeConfig(t, "adzuna:\n  throttle: soon\n")); err == nil {
		t.Fatal("expected error for unparseable throttle")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
