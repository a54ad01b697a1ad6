package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/prism/internal/app"
	"github.com/zjrosen/prism/internal/config"
	"github.com/zjrosen/prism/internal/graph"
	"github.com/zjrosen/prism/internal/projection"
)

func writeSnapshot(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestLoadEngine_ServesProjectionsFromSnapshot(t *testing.T) {
	cfg = config.Defaults()
	cfg.SnapshotPath = writeSnapshot(t, `
graph:
  a: [b]
  b: [a]
`)

	eng, err := loadEngine()
	require.NoError(t, err)
	defer eng.Close()

	result, ok, err := projection.ValueOf[graph.Result](context.Background(), eng.registry, app.ProjectionCycles)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, result.Count)
}

func TestLoadEngine_MissingSnapshotFails(t *testing.T) {
	cfg = config.Defaults()
	cfg.SnapshotPath = filepath.Join(t.TempDir(), "absent.yaml")

	_, err := loadEngine()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading snapshot")
}

func TestLoadEngine_InvalidConfigFails(t *testing.T) {
	cfg = config.Defaults()
	cfg.AutoReloadDebounceMs = -1

	_, err := loadEngine()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestEngineAutoReload_GatedByConfigAndFlag(t *testing.T) {
	snapshot := writeSnapshot(t, `
graph:
  a: []
`)

	tests := []struct {
		name       string
		autoReload bool
		flagValue  bool
		want       bool
	}{
		{name: "both on", autoReload: true, flagValue: true, want: true},
		{name: "config off", autoReload: false, flagValue: true, want: false},
		{name: "flag off", autoReload: true, flagValue: false, want: false},
		{name: "both off", autoReload: false, flagValue: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg = config.Defaults()
			cfg.SnapshotPath = snapshot
			cfg.AutoReload = tt.autoReload
			cfg.Flags["auto-reload"] = tt.flagValue

			eng, err := loadEngine()
			require.NoError(t, err)
			defer eng.Close()

			assert.Equal(t, tt.want, eng.autoReload())
		})
	}
}

func TestEngineReload_PicksUpChunkChanges(t *testing.T) {
	cfg = config.Defaults()
	cfg.SnapshotPath = writeSnapshot(t, `
graph:
  a: [a]
`)

	eng, err := loadEngine()
	require.NoError(t, err)
	defer eng.Close()

	first, _, err := projection.ValueOf[graph.Result](context.Background(), eng.registry, app.ProjectionCycles)
	require.NoError(t, err)
	require.Equal(t, 1, first.Count)

	require.NoError(t, os.WriteFile(cfg.SnapshotPath, []byte(`
graph:
  a: [a]
  b: [b]
`), 0o600))
	require.NoError(t, eng.reload())

	second, _, err := projection.ValueOf[graph.Result](context.Background(), eng.registry, app.ProjectionCycles)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Count)
}
