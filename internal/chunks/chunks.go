// Package chunks loads chunked source snapshots from disk. A snapshot
// file is a YAML mapping whose top-level keys are chunk names; each
// chunk is hashed independently so the projection engine can tell which
// parts of the source actually changed between loads.
package chunks

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/prism/internal/log"
	"github.com/zjrosen/prism/internal/projection"
)

var (
	ErrNotMapping  = errors.New("snapshot root must be a YAML mapping")
	ErrChunkAbsent = errors.New("chunk not present in snapshot")
)

// Snapshot is the opaque source value handed to the projection
// registry. Projections read individual chunks through Chunk or Decode;
// the registry itself never looks inside.
type Snapshot struct {
	chunks map[projection.ChunkName][]byte
}

// Chunk returns the raw YAML bytes of a named chunk.
func (s *Snapshot) Chunk(name projection.ChunkName) ([]byte, bool) {
	data, ok := s.chunks[name]
	return data, ok
}

// Names returns every chunk name in the snapshot, sorted.
func (s *Snapshot) Names() []projection.ChunkName {
	names := make([]projection.ChunkName, 0, len(s.chunks))
	for name := range s.chunks {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Decode unmarshals a named chunk into out.
func (s *Snapshot) Decode(name projection.ChunkName, out any) error {
	data, ok := s.chunks[name]
	if !ok {
		return fmt.Errorf("decode chunk %s: %w", name, ErrChunkAbsent)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode chunk %s: %w", name, err)
	}
	return nil
}

// Load reads a snapshot file and returns the snapshot plus a content
// hash per chunk. Each chunk's value is stripped of comments and
// re-marshalled to canonical YAML before hashing, so formatting-only
// and comment-only edits to the file do not change any hash. Identical
// chunk content always yields the identical hash string; that is the
// whole invalidation contract the engine relies on.
func Load(path string) (*Snapshot, map[projection.ChunkName]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the user's snapshot file
	if err != nil {
		return nil, nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return Parse(data)
}

// Parse builds a snapshot from raw YAML bytes.
func Parse(data []byte) (*Snapshot, map[projection.ChunkName]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			// Empty file: a snapshot with zero chunks.
			return &Snapshot{chunks: map[projection.ChunkName][]byte{}}, map[projection.ChunkName]string{}, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, nil, ErrNotMapping
	}

	snapshot := &Snapshot{chunks: make(map[projection.ChunkName][]byte, len(root.Content)/2)}
	hashes := make(map[projection.ChunkName]string, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		name := projection.ChunkName(root.Content[i].Value)

		stripComments(root.Content[i+1])
		canonical, err := yaml.Marshal(root.Content[i+1])
		if err != nil {
			return nil, nil, fmt.Errorf("marshalling chunk %s: %w", name, err)
		}

		snapshot.chunks[name] = canonical
		hashes[name] = HashChunk(canonical)
	}

	log.Debug(log.CatChunks, "snapshot parsed", "chunks", len(hashes))
	return snapshot, hashes, nil
}

// stripComments clears comments recursively. yaml.Marshal of a Node
// emits them, so without this a comment-only edit inside a chunk would
// change the chunk's hash.
func stripComments(n *yaml.Node) {
	n.HeadComment = ""
	n.LineComment = ""
	n.FootComment = ""
	for _, child := range n.Content {
		stripComments(child)
	}
}

// HashChunk returns the content hash for a chunk's canonical bytes.
func HashChunk(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
