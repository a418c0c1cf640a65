package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Pipeline.MaxIterations != 3 {
		t.Errorf("max iterations = %d, want 3", cfg.Pipeline.MaxIterations)
	}
	if cfg.Commands.Test != "pytest -v" {
		t.Errorf("test command = %q", cfg.Commands.Test)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
anthropic:
  model: claude-sonnet-4-20250514
pipeline:
  max_iterations: 7
  test_timeout: 30s
commands:
  test: pytest -x
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Pipeline.MaxIterations != 7 {
		t.Errorf("max iterations = %d, want 7", cfg.Pipeline.MaxIterations)
	}
	if cfg.Pipeline.TestTimeout != 30*time.Second {
		t.Errorf("test timeout = %s, want 30s", cfg.Pipeline.TestTimeout)
	}
	if cfg.Commands.Test != "pytest -x" {
		t.Errorf("test command = %q", cfg.Commands.Test)
	}
	// Unset keys fall back to defaults.
	if cfg.Commands.Lint == "" {
		t.Error("lint command should default")
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadFromPathExpandsAPIKey(t *testing.T) {
	t.Setenv("MEND_TEST_KEY", "sk-test-123")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("anthropic:\n  api_key: ${MEND_TEST_KEY}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-test-123" {
		t.Errorf("api key = %q, want expanded value", cfg.Anthropic.APIKey)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.MaxIterations = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-positive max iterations")
	}

	cfg = Default()
	cfg.Commands.Test = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty test command")
	}
}
