// Package app assembles a projection registry with the built-in
// projections over snapshot sources loaded by internal/chunks.
package app

import (
	"fmt"

	"github.com/zjrosen/prism/internal/chunks"
	"github.com/zjrosen/prism/internal/graph"
	"github.com/zjrosen/prism/internal/log"
	"github.com/zjrosen/prism/internal/projection"
)

// The closed set of chunk names shared between the snapshot provider
// and every built-in projection definition.
const (
	ChunkGraph    projection.ChunkName = "graph"
	ChunkEntities projection.ChunkName = "entities"
	ChunkSettings projection.ChunkName = "settings"
)

// Built-in projection ids.
const (
	ProjectionCycles     = "cycles"
	ProjectionEntityList = "entity-list"
	ProjectionChunkIndex = "chunk-index"
)

// Entity is one element of the snapshot's entities chunk.
type Entity struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// BuildRegistry creates a registry and registers the built-in
// projections. The caller feeds it sources via UpdateSource.
func BuildRegistry(cfg projection.Config) *projection.Registry {
	r := projection.New(cfg)
	r.Register(cyclesDefinition())
	r.Register(entityListDefinition())
	r.Register(chunkIndexDefinition())
	return r
}

// cyclesDefinition enumerates the simple cycles of the snapshot's graph
// chunk. A snapshot without a graph chunk projects to an empty result.
func cyclesDefinition() projection.Definition {
	return projection.Definition{
		ID:      ProjectionCycles,
		Depends: []projection.ChunkName{ChunkGraph},
		Compute: func(src any) (any, error) {
			snapshot, err := asSnapshot(src)
			if err != nil {
				return nil, err
			}

			if _, ok := snapshot.Chunk(ChunkGraph); !ok {
				return graph.Result{}, nil
			}

			var adj graph.Adjacency
			if err := snapshot.Decode(ChunkGraph, &adj); err != nil {
				return nil, fmt.Errorf("cycles projection: %w", err)
			}

			result := graph.FindCycles(adj)
			log.Debug(log.CatGraph, "cycles computed", "nodes", len(adj), "cycles", result.Count)
			return result, nil
		},
	}
}

// entityListDefinition decodes the entities chunk.
func entityListDefinition() projection.Definition {
	return projection.Definition{
		ID:      ProjectionEntityList,
		Depends: []projection.ChunkName{ChunkEntities},
		Compute: func(src any) (any, error) {
			snapshot, err := asSnapshot(src)
			if err != nil {
				return nil, err
			}

			if _, ok := snapshot.Chunk(ChunkEntities); !ok {
				return []Entity{}, nil
			}

			var entities []Entity
			if err := snapshot.Decode(ChunkEntities, &entities); err != nil {
				return nil, fmt.Errorf("entity-list projection: %w", err)
			}
			return entities, nil
		},
	}
}

// chunkIndexDefinition lists the chunk names present in the snapshot.
// It declares the whole closed chunk set, so any chunk change
// invalidates it.
func chunkIndexDefinition() projection.Definition {
	return projection.Definition{
		ID:      ProjectionChunkIndex,
		Depends: []projection.ChunkName{ChunkGraph, ChunkEntities, ChunkSettings},
		Compute: func(src any) (any, error) {
			snapshot, err := asSnapshot(src)
			if err != nil {
				return nil, err
			}
			return snapshot.Names(), nil
		},
	}
}

func asSnapshot(src any) (*chunks.Snapshot, error) {
	snapshot, ok := src.(*chunks.Snapshot)
	if !ok {
		return nil, fmt.Errorf("source is %T, expected *chunks.Snapshot", src)
	}
	return snapshot, nil
}
