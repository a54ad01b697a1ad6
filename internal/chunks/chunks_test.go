package chunks_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/prism/internal/chunks"
	"github.com/zjrosen/prism/internal/projection"
)

const sampleSnapshot = `graph:
  a: [b]
  b: [a]
entities:
  - id: e1
    name: First
settings:
  depth: 3
`

func TestParse_SplitsTopLevelKeysIntoChunks(t *testing.T) {
	snapshot, hashes, err := chunks.Parse([]byte(sampleSnapshot))
	require.NoError(t, err)

	require.Equal(t, []projection.ChunkName{"entities", "graph", "settings"}, snapshot.Names())
	require.Len(t, hashes, 3)
	for name, hash := range hashes {
		require.NotEmpty(t, hash, "chunk %s must have a hash", name)
	}
}

func TestParse_HashesAreContentSensitive(t *testing.T) {
	_, first, err := chunks.Parse([]byte(sampleSnapshot))
	require.NoError(t, err)

	changed := `graph:
  a: [b]
  b: [a, c]
entities:
  - id: e1
    name: First
settings:
  depth: 3
`
	_, second, err := chunks.Parse([]byte(changed))
	require.NoError(t, err)

	require.NotEqual(t, first["graph"], second["graph"], "changed chunk must change hash")
	require.Equal(t, first["entities"], second["entities"], "untouched chunk keeps its hash")
	require.Equal(t, first["settings"], second["settings"], "untouched chunk keeps its hash")
}

func TestParse_FormattingOnlyEditsKeepHashes(t *testing.T) {
	_, first, err := chunks.Parse([]byte("settings: {depth: 3}\n"))
	require.NoError(t, err)

	// Same content, different YAML style: canonical re-marshal evens it out
	_, second, err := chunks.Parse([]byte("settings:\n  depth: 3\n"))
	require.NoError(t, err)

	require.Equal(t, first["settings"], second["settings"])
}

func TestParse_CommentOnlyEditsKeepHashes(t *testing.T) {
	_, first, err := chunks.Parse([]byte("settings:\n  depth: 3\n"))
	require.NoError(t, err)

	commented := `settings:
  # tuning note added later
  depth: 3 # inline remark
`
	_, second, err := chunks.Parse([]byte(commented))
	require.NoError(t, err)

	require.Equal(t, first["settings"], second["settings"])
}

func TestParse_EmptyDocument(t *testing.T) {
	snapshot, hashes, err := chunks.Parse([]byte(""))
	require.NoError(t, err)
	require.Empty(t, snapshot.Names())
	require.Empty(t, hashes)
}

func TestParse_RejectsNonMappingRoot(t *testing.T) {
	_, _, err := chunks.Parse([]byte("- just\n- a\n- list\n"))
	require.ErrorIs(t, err, chunks.ErrNotMapping)
}

func TestSnapshot_Decode(t *testing.T) {
	snapshot, _, err := chunks.Parse([]byte(sampleSnapshot))
	require.NoError(t, err)

	var adj map[string][]string
	require.NoError(t, snapshot.Decode("graph", &adj))
	require.Equal(t, map[string][]string{"a": {"b"}, "b": {"a"}}, adj)
}

func TestSnapshot_DecodeMissingChunk(t *testing.T) {
	snapshot, _, err := chunks.Parse([]byte(sampleSnapshot))
	require.NoError(t, err)

	var out any
	err = snapshot.Decode("nope", &out)
	require.ErrorIs(t, err, chunks.ErrChunkAbsent)
}

func TestSnapshot_Chunk(t *testing.T) {
	snapshot, _, err := chunks.Parse([]byte(sampleSnapshot))
	require.NoError(t, err)

	data, ok := snapshot.Chunk("settings")
	require.True(t, ok)
	require.Contains(t, string(data), "depth: 3")

	_, ok = snapshot.Chunk("nope")
	require.False(t, ok)
}

func TestLoad_ReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSnapshot), 0o644))

	snapshot, hashes, err := chunks.Load(path)
	require.NoError(t, err)
	require.Len(t, snapshot.Names(), 3)
	require.Len(t, hashes, 3)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := chunks.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestHashChunk_DeterministicHexDigest(t *testing.T) {
	first := chunks.HashChunk([]byte("content"))
	second := chunks.HashChunk([]byte("content"))
	require.Equal(t, first, second)
	require.Len(t, first, 64)

	require.NotEqual(t, first, chunks.HashChunk([]byte("different")))
}
