package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/api"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/events"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected defaults to load, got error: %v", err)
	}

	if cfg.API.BaseURL != api.DefaultBaseURL {
		t.Errorf("expected default base URL, got '%s'", cfg.API.BaseURL)
	}
	if cfg.API.Timeout() != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.API.Timeout())
	}
	if cfg.Watch.Interval() != 30*time.Second {
		t.Errorf("expected 30s interval, got %s", cfg.Watch.Interval())
	}
	if cfg.Watch.RequestDelay() != 500*time.Millisecond {
		t.Errorf("expected 500ms request delay, got %s", cfg.Watch.RequestDelay())
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Server.Addr)
	}

	kinds, err := cfg.Watch.Kinds()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kinds) != len(events.Kinds) {
		t.Errorf("expected every kind by default, got %v", kinds)
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NEUROINFO_API_TOKEN", "test-token-123")
	t.Setenv("NEUROINFO_WATCH_INTERVAL_SEC", "45")
	t.Setenv("NEUROINFO_WATCH_EVENTS", "stream-online,subathon-goal-update")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.Token != "test-token-123" {
		t.Errorf("expected token 'test-token-123', got '%s'", cfg.API.Token)
	}
	if cfg.Watch.IntervalSec != 45 {
		t.Errorf("expected interval 45, got %d", cfg.Watch.IntervalSec)
	}

	kinds, err := cfg.Watch.Kinds()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kinds) != 2 || kinds[0] != events.StreamOnline || kinds[1] != events.SubathonGoalUpdate {
		t.Errorf("unexpected kinds: %v", kinds)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "watcher.yaml")
	content := `
api:
  base_url: http://localhost:9000/api/v1
  rate_per_second: 0
watch:
  interval_sec: 60
  events:
    - schedule-update
server:
  enabled: true
  addr: 127.0.0.1:9090
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:9000/api/v1" {
		t.Errorf("unexpected base URL: %s", cfg.API.BaseURL)
	}
	if cfg.API.RatePerSecond != 0 {
		t.Errorf("expected unlimited rate, got %d", cfg.API.RatePerSecond)
	}
	if !cfg.Server.Enabled || cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if len(cfg.Watch.Events) != 1 || cfg.Watch.Events[0] != "schedule-update" {
		t.Errorf("unexpected events: %v", cfg.Watch.Events)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("NEUROINFO_NOTIFY_TOPIC=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("NEUROINFO_NOTIFY_TOPIC") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Notify.Topic != "from-dotenv" {
		t.Errorf("expected topic from .env, got '%s'", cfg.Notify.Topic)
	}
}

func TestLoadInvalid(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NEUROINFO_WATCH_EVENTS", "stream-exploded")
	t.Setenv("NEUROINFO_LOGGING_LEVEL", "loud")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verrs *ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs.Fields) != 2 {
		t.Errorf("expected 2 invalid fields, got %+v", verrs.Fields)
	}
}
