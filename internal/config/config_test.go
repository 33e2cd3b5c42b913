package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
storage:
  path: `+filepath.Join(dir, "examwatch.bolt")+`
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Monitor.MaxViolations != 2 {
		t.Errorf("MaxViolations = %d, want 2", cfg.Monitor.MaxViolations)
	}
	if !cfg.Monitor.EnableWarnings {
		t.Error("EnableWarnings should default to true")
	}
	if cfg.Monitor.SettleDelay != "2s" {
		t.Errorf("SettleDelay = %s, want 2s", cfg.Monitor.SettleDelay)
	}
	if cfg.Monitor.VisibilityWindow != "1500ms" {
		t.Errorf("VisibilityWindow = %s, want 1500ms", cfg.Monitor.VisibilityWindow)
	}
	if cfg.Monitor.FocusWindow != "3s" {
		t.Errorf("FocusWindow = %s, want 3s", cfg.Monitor.FocusWindow)
	}
	if cfg.Monitor.JournalCapacity != 50 {
		t.Errorf("JournalCapacity = %d, want 50", cfg.Monitor.JournalCapacity)
	}
	if cfg.Risk.MediumAt != 1 || cfg.Risk.HighAt != 3 {
		t.Errorf("risk thresholds = %d/%d, want 1/3", cfg.Risk.MediumAt, cfg.Risk.HighAt)
	}
	if cfg.Storage.Type != "bolt" {
		t.Errorf("storage type = %s, want bolt", cfg.Storage.Type)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %s/%s, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics should default to disabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
monitor:
  max_violations: 4
  enable_warnings: false
  settle_delay: 500ms
  visibility_window: 2s
  focus_window: 5s
  journal_capacity: 10
risk:
  medium_at: 2
  high_at: 6
storage:
  type: redis
  redis:
    host: redis.internal
    port: 6380
logging:
  level: debug
  format: text
metrics:
  enabled: true
  addr: 0.0.0.0:9200
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Monitor.MaxViolations != 4 || cfg.Monitor.EnableWarnings {
		t.Errorf("monitor overrides not applied: %+v", cfg.Monitor)
	}
	if cfg.Monitor.SettleDelay != "500ms" || cfg.Monitor.VisibilityWindow != "2s" {
		t.Errorf("window overrides not applied: %+v", cfg.Monitor)
	}
	if cfg.Risk.MediumAt != 2 || cfg.Risk.HighAt != 6 {
		t.Errorf("risk overrides not applied: %+v", cfg.Risk)
	}
	if cfg.Storage.Type != "redis" || cfg.Storage.Redis.Host != "redis.internal" || cfg.Storage.Redis.Port != 6380 {
		t.Errorf("storage overrides not applied: %+v", cfg.Storage)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != "0.0.0.0:9200" {
		t.Errorf("metrics overrides not applied: %+v", cfg.Metrics)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{
			"max violations below one",
			`
monitor:
  max_violations: 0
`,
		},
		{
			"risk thresholds unordered",
			`
risk:
  medium_at: 3
  high_at: 3
`,
		},
		{
			"medium threshold below one",
			`
risk:
  medium_at: 0
`,
		},
		{
			"malformed window duration",
			`
monitor:
  visibility_window: soon
`,
		},
		{
			"negative settle delay",
			`
monitor:
  settle_delay: -2s
`,
		},
		{
			"unknown storage type",
			`
storage:
  type: dynamo
`,
		},
		{
			"redis without host",
			`
storage:
  type: redis
  redis:
    host: ""
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.config)
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
