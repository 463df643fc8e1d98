package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	config, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if config.Directory != "." {
		t.Fatalf("expected default directory, got %q", config.Directory)
	}
	if !config.IsRecursive() {
		t.Fatal("expected recursive by default")
	}
	if config.DebounceWindow() != 100*time.Millisecond {
		t.Fatalf("unexpected debounce window %v", config.DebounceWindow())
	}
	if config.RenameWindow() != 100*time.Millisecond {
		t.Fatalf("unexpected rename window %v", config.RenameWindow())
	}
	if config.ListenAddr != DefaultListenAddr {
		t.Fatalf("unexpected listen addr %q", config.ListenAddr)
	}
	if config.LogLevel != "info" {
		t.Fatalf("unexpected log level %q", config.LogLevel)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "editwatch.yaml")
	payload := `directory: /srv/project
recursive: false
include_patterns:
  - "**/*.go"
ignore_patterns:
  - "*.tmp"
debounce_ms: 250
rename_window_ms: 80
listen_addr: "0.0.0.0:9000"
auth_token: sekrit
allowed_origins:
  - https://app.example
log_level: debug
`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if config.Directory != "/srv/project" {
		t.Fatalf("unexpected directory %q", config.Directory)
	}
	if config.IsRecursive() {
		t.Fatal("expected recursive=false")
	}
	if len(config.IncludePatterns) != 1 || config.IncludePatterns[0] != "**/*.go" {
		t.Fatalf("unexpected includes %v", config.IncludePatterns)
	}
	if config.DebounceWindow() != 250*time.Millisecond {
		t.Fatalf("unexpected debounce %v", config.DebounceWindow())
	}
	if config.RenameWindow() != 80*time.Millisecond {
		t.Fatalf("unexpected rename window %v", config.RenameWindow())
	}
	if config.AuthToken != "sekrit" || config.ListenAddr != "0.0.0.0:9000" {
		t.Fatalf("unexpected server settings: %+v", config)
	}
	if config.LogLevel != "debug" {
		t.Fatalf("unexpected log level %q", config.LogLevel)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EDITWATCH_DIRECTORY", "/tmp/watched")
	t.Setenv("EDITWATCH_RECURSIVE", "false")
	t.Setenv("EDITWATCH_DEBOUNCE_MS", "42")
	t.Setenv("EDITWATCH_IGNORE_PATTERNS", "*.log, *.tmp")
	t.Setenv("EDITWATCH_LOG_LEVEL", "error")

	config, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if config.Directory != "/tmp/watched" {
		t.Fatalf("unexpected directory %q", config.Directory)
	}
	if config.IsRecursive() {
		t.Fatal("expected recursive=false from env")
	}
	if config.DebounceMS != 42 {
		t.Fatalf("unexpected debounce %d", config.DebounceMS)
	}
	if len(config.IgnorePatterns) != 2 || config.IgnorePatterns[1] != "*.tmp" {
		t.Fatalf("unexpected ignores %v", config.IgnorePatterns)
	}
	if config.LogLevel != "error" {
		t.Fatalf("unexpected log level %q", config.LogLevel)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "editwatch.yaml")
	if err := os.WriteFile(path, []byte("directory: /from/file\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("EDITWATCH_DIRECTORY", "/from/env")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if config.Directory != "/from/env" {
		t.Fatalf("expected env to win, got %q", config.Directory)
	}
}
