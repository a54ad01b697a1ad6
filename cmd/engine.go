package cmd

import (
	"context"
	"fmt"

	"github.com/zjrosen/prism/internal/app"
	"github.com/zjrosen/prism/internal/chunks"
	"github.com/zjrosen/prism/internal/config"
	"github.com/zjrosen/prism/internal/flags"
	"github.com/zjrosen/prism/internal/log"
	"github.com/zjrosen/prism/internal/projection"
	"github.com/zjrosen/prism/internal/tracing"
)

// engine bundles the assembled registry with the subsystems every
// subcommand needs to tear down afterwards.
type engine struct {
	registry *projection.Registry
	tracing  *tracing.Provider
	flags    *flags.Registry
	cleanup  func()
}

// loadEngine validates the config, starts logging and tracing, builds
// the registry with the built-in projections, and feeds it the snapshot
// named by the config. Callers must Close the engine when done.
func loadEngine() (*engine, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup, err := initLogging()
	if err != nil {
		return nil, err
	}

	tracingCfg := cfg.Tracing
	if tracingCfg.Enabled && tracingCfg.Exporter == "file" && tracingCfg.FilePath == "" {
		tracingCfg.FilePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tracingCfg)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	flagRegistry := flags.New(cfg.Flags)
	registry := app.BuildRegistry(projection.Config{
		Flags:  flagRegistry,
		Tracer: provider.Tracer(),
	})

	e := &engine{registry: registry, tracing: provider, flags: flagRegistry, cleanup: cleanup}
	if err := e.reload(); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// autoReload reports whether watch should push snapshot changes into
// the registry. The config setting and the feature flag both gate it:
// either one off means changes are reported but not loaded.
func (e *engine) autoReload() bool {
	return cfg.AutoReload && e.flags.Enabled(flags.FlagAutoReload)
}

// reload re-reads the snapshot file and pushes it into the registry.
func (e *engine) reload() error {
	snapshot, hashes, err := chunks.Load(cfg.SnapshotPath)
	if err != nil {
		return fmt.Errorf("loading snapshot %s: %w", cfg.SnapshotPath, err)
	}
	e.registry.UpdateSource(snapshot, hashes)
	return nil
}

func (e *engine) Close() {
	e.registry.Close()
	if err := e.tracing.Shutdown(context.Background()); err != nil {
		log.ErrorErr(log.CatTrace, "tracing shutdown failed", err)
	}
	e.cleanup()
}
