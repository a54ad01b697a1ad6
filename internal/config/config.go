// Package config provides configuration types, defaults, and persistence for prism.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/prism/internal/log"
	"github.com/zjrosen/prism/internal/tracing"
)

// Config holds all configuration options for prism.
type Config struct {
	// SnapshotPath is the chunked source snapshot the registry is fed from.
	SnapshotPath string `mapstructure:"snapshot_path"`

	// AutoReload reloads the snapshot when the file changes (watch command).
	AutoReload bool `mapstructure:"auto_reload"`

	// AutoReloadDebounceMs collapses bursts of file events into one reload.
	AutoReloadDebounceMs int `mapstructure:"auto_reload_debounce_ms"`

	// Tracing configures OpenTelemetry span export.
	Tracing tracing.Config `mapstructure:"tracing"`

	// Flags holds feature flag state (see internal/flags for known names).
	Flags map[string]bool `mapstructure:"flags"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/prism/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "prism", "traces", "traces.jsonl")
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		SnapshotPath:         "snapshot.yaml",
		AutoReload:           true,
		AutoReloadDebounceMs: 500,
		Tracing:              tracing.DefaultConfig(),
		Flags: map[string]bool{
			"mutation-guard": false,
			"auto-reload":    true,
		},
	}
}

// Validate checks configuration invariants that viper cannot express.
func Validate(cfg Config) error {
	if cfg.AutoReloadDebounceMs < 0 {
		return fmt.Errorf("auto_reload_debounce_ms must not be negative, got %d", cfg.AutoReloadDebounceMs)
	}
	switch cfg.Tracing.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("unknown tracing exporter %q", cfg.Tracing.Exporter)
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing sample_rate must be in [0,1], got %v", cfg.Tracing.SampleRate)
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Prism Configuration

# Chunked source snapshot the projection registry is fed from
snapshot_path: snapshot.yaml

# Reload the snapshot automatically when the file changes (watch command)
auto_reload: true
auto_reload_debounce_ms: 500

# OpenTelemetry tracing for projection gets and source updates
tracing:
  enabled: false
  exporter: file          # "none", "file", "stdout", or "otlp"
  # file_path:            # default: ~/.config/prism/traces/traces.jsonl
  # otlp_endpoint: localhost:4317
  sample_rate: 1.0
  service_name: prism

# Feature flags
flags:
  mutation-guard: false   # Fingerprint cached results and panic if a consumer mutates one
  auto-reload: true
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
