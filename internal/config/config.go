// Package config loads the watcher configuration from a YAML file and
// EDITWATCH_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultListenAddr = "127.0.0.1:8787"
const DefaultDebounceMS = 100
const DefaultRenameWindowMS = 100

// Config is the resolved runtime configuration.
type Config struct {
	Directory       string   `yaml:"directory"`
	Recursive       *bool    `yaml:"recursive"`
	IncludePatterns []string `yaml:"include_patterns"`
	IgnorePatterns  []string `yaml:"ignore_patterns"`
	DebounceMS      int      `yaml:"debounce_ms"`
	RenameWindowMS  int      `yaml:"rename_window_ms"`
	ListenAddr      string   `yaml:"listen_addr"`
	AuthToken       string   `yaml:"auth_token"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	LogLevel        string   `yaml:"log_level"`
}

// Load reads the config file when path is non-empty, applies environment
// overrides, then fills defaults. A missing file at an explicit path is
// an error; an empty path means environment and defaults only.
func Load(path string) (Config, error) {
	var config Config

	if strings.TrimSpace(path) != "" {
		payload, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(payload, &config); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&config)
	applyDefaults(&config)

	return config, nil
}

// IsRecursive reports whether subdirectories are watched. Unset means true.
func (config Config) IsRecursive() bool {
	if config.Recursive == nil {
		return true
	}
	return *config.Recursive
}

// DebounceWindow returns the debounce quiet period as a duration.
func (config Config) DebounceWindow() time.Duration {
	return time.Duration(config.DebounceMS) * time.Millisecond
}

// RenameWindow returns the rename correlation window as a duration.
func (config Config) RenameWindow() time.Duration {
	return time.Duration(config.RenameWindowMS) * time.Millisecond
}

func applyEnv(config *Config) {
	if value := os.Getenv("EDITWATCH_DIRECTORY"); value != "" {
		config.Directory = value
	}
	if value := os.Getenv("EDITWATCH_RECURSIVE"); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			config.Recursive = &parsed
		}
	}
	if value := os.Getenv("EDITWATCH_INCLUDE_PATTERNS"); value != "" {
		config.IncludePatterns = splitList(value)
	}
	if value := os.Getenv("EDITWATCH_IGNORE_PATTERNS"); value != "" {
		config.IgnorePatterns = splitList(value)
	}
	if value := os.Getenv("EDITWATCH_DEBOUNCE_MS"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			config.DebounceMS = parsed
		}
	}
	if value := os.Getenv("EDITWATCH_RENAME_WINDOW_MS"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			config.RenameWindowMS = parsed
		}
	}
	if value := os.Getenv("EDITWATCH_LISTEN_ADDR"); value != "" {
		config.ListenAddr = value
	}
	if value := os.Getenv("EDITWATCH_AUTH_TOKEN"); value != "" {
		config.AuthToken = value
	}
	if value := os.Getenv("EDITWATCH_ALLOWED_ORIGINS"); value != "" {
		config.AllowedOrigins = splitList(value)
	}
	if value := os.Getenv("EDITWATCH_LOG_LEVEL"); value != "" {
		config.LogLevel = value
	}
}

func applyDefaults(config *Config) {
	if config.Directory == "" {
		config.Directory = "."
	}
	if config.DebounceMS <= 0 {
		config.DebounceMS = DefaultDebounceMS
	}
	if config.RenameWindowMS <= 0 {
		config.RenameWindowMS = DefaultRenameWindowMS
	}
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}
