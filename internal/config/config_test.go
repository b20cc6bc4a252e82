package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_WithDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}

	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}

	if cfg.Server.MaxBodySize != 1048576 {
		t.Errorf("Server.MaxBodySize = %d, want 1048576", cfg.Server.MaxBodySize)
	}

	if !cfg.Forward.FallbackEnabled {
		t.Error("Forward.FallbackEnabled should default to true")
	}

	if cfg.Forward.MaxAttempts != 4 {
		t.Errorf("Forward.MaxAttempts = %d, want 4", cfg.Forward.MaxAttempts)
	}

	if cfg.Forward.BaseBackoff != 500*time.Millisecond {
		t.Errorf("Forward.BaseBackoff = %v, want 500ms", cfg.Forward.BaseBackoff)
	}

	if cfg.Forward.MaxBackoff != 8*time.Second {
		t.Errorf("Forward.MaxBackoff = %v, want 8s", cfg.Forward.MaxBackoff)
	}

	if cfg.Forward.IncludeResponseBody {
		t.Error("Forward.IncludeResponseBody should default to false")
	}

	if cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled should default to false")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	if cfg.Targets.StableSet() {
		t.Error("stable target should not be set by default")
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
targets:
  stable_url: https://prod.example.com/hooks/run?sig=abc
  canary_url: unset
forward:
  max_attempts: 2
  fallback_enabled: false
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Targets.StableSet() {
		t.Error("stable target should be set")
	}
	if cfg.Targets.CanarySet() {
		t.Error("canary slot holding the unset sentinel should not count as configured")
	}
	if cfg.Forward.MaxAttempts != 2 {
		t.Errorf("Forward.MaxAttempts = %d, want 2", cfg.Forward.MaxAttempts)
	}
	if cfg.Forward.FallbackEnabled {
		t.Error("Forward.FallbackEnabled should be overridden to false")
	}
	// Untouched keys keep defaults.
	if cfg.Forward.BaseBackoff != 500*time.Millisecond {
		t.Errorf("Forward.BaseBackoff = %v, want default 500ms", cfg.Forward.BaseBackoff)
	}
}

func TestLoad_InvalidTunables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
forward:
  max_attempts: 0
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for max_attempts = 0")
	}
}

func TestTargetSet(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"", false},
		{"unset", false},
		{"UNSET", false},
		{" unset ", false},
		{"https://example.com/run?sig=x", true},
	}

	for _, tt := range tests {
		if got := targetSet(tt.url); got != tt.want {
			t.Errorf("targetSet(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
