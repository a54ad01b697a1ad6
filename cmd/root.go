// Package cmd wires the prism CLI: configuration loading, the
// projection engine assembly, and the individual subcommands.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/prism/internal/config"
	"github.com/zjrosen/prism/internal/log"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Incremental projections over chunked YAML snapshots",
	Long: `Prism computes named projections over a chunk-hashed YAML snapshot,
recomputing a projection only when the chunks it depends on actually
changed. Built-in projections enumerate graph cycles, list entities,
and index the snapshot's chunks.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/prism/config.yaml)")
	rootCmd.PersistentFlags().StringP("snapshot", "s", "",
		"path to the snapshot file (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write a debug log to prism-debug.log")

	_ = viper.BindPFlag("snapshot_path", rootCmd.PersistentFlags().Lookup("snapshot"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("snapshot_path", defaults.SnapshotPath)
	viper.SetDefault("auto_reload", defaults.AutoReload)
	viper.SetDefault("auto_reload_debounce_ms", defaults.AutoReloadDebounceMs)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	viper.SetDefault("flags", defaults.Flags)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .prism/config.yaml (current directory)
		// 2. ~/.config/prism/config.yaml (user config)
		if _, err := os.Stat(".prism/config.yaml"); err == nil {
			viper.SetConfigFile(".prism/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "prism"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .prism/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".prism/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// initLogging turns on the debug log when --debug or PRISM_DEBUG is set.
// Returns a cleanup function, which is a no-op when logging is off.
func initLogging() (func(), error) {
	if !debugFlag && os.Getenv("PRISM_DEBUG") == "" {
		return func() {}, nil
	}

	logPath := os.Getenv("PRISM_LOG")
	if logPath == "" {
		logPath = "prism-debug.log"
	}

	cleanup, err := log.Init(logPath)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "prism starting", "version", version, "logPath", logPath)
	return cleanup, nil
}

// configFilePath returns the config file in use, falling back to the
// default location when none was loaded.
func configFilePath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return ".prism/config.yaml"
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
