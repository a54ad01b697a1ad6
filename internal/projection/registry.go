package projection

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/prism/internal/cachemanager"
	"github.com/zjrosen/prism/internal/flags"
	"github.com/zjrosen/prism/internal/log"
	"github.com/zjrosen/prism/internal/pubsub"
)

// Config configures a Registry.
type Config struct {
	// Flags gates development-mode behavior. Nil is valid and disables
	// every flag (the flags registry is nil-safe).
	Flags *flags.Registry

	// Tracer records spans around Get and UpdateSource when set.
	Tracer trace.Tracer
}

// entry is the cached state for one projection.
type entry struct {
	result      any
	depHash     string
	fingerprint uint64
	guarded     bool
}

// Registry holds projection definitions, the current source snapshot,
// and one cache entry per projection. All state transitions happen
// under a single mutex: Get both reads and conditionally writes the
// cache, so the whole read-check-maybe-write sequence is exclusive.
//
// Compute bodies run inline under that mutex. A Compute that calls back
// into the same registry deadlocks; that re-entrancy is unsupported.
type Registry struct {
	mu        sync.Mutex
	defs      map[string]Definition
	entries   cachemanager.CacheManager[string, entry]
	source    any
	hashes    map[ChunkName]string
	hasSource bool

	flags  *flags.Registry
	tracer trace.Tracer
	broker *pubsub.Broker[SourceUpdate]
}

// New creates an empty registry. Construct one per consumer graph and
// pass it explicitly; there is no shared global instance.
func New(cfg Config) *Registry {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	return &Registry{
		defs:    make(map[string]Definition),
		entries: cachemanager.NewInMemoryCacheManager[string, entry]("projection-entries"),
		flags:   cfg.Flags,
		tracer:  tracer,
		broker:  pubsub.NewBroker[SourceUpdate](),
	}
}

// Register stores a definition keyed by id. Registering an id twice is
// last-write-wins and does not touch any existing cache entry: a stale
// result computed by the old definition may be served until its
// dependency hash changes. Re-registration is expected only at startup,
// so this is accepted rather than guarded against.
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defs[def.ID] = def
	log.Debug(log.CatProjection, "projection registered", "id", def.ID, "depends", def.Depends)
}

// UpdateSource replaces the stored source and chunk-hash map. The hash
// map is a full replacement, never merged with the previous one. No
// computation happens here; recomputation is deferred to the next Get
// of each affected projection. A single SourceUpdate event listing all
// registered ids is published so consumers know something may have
// changed.
func (r *Registry) UpdateSource(source any, hashes map[ChunkName]string) {
	_, span := r.startSpan(context.Background(), "prism.projection.update_source",
		attribute.Int("source.chunks", len(hashes)))
	defer span.End()

	r.mu.Lock()
	r.source = source
	r.hashes = make(map[ChunkName]string, len(hashes))
	maps.Copy(r.hashes, hashes)
	r.hasSource = true
	ids := r.idsLocked()
	r.mu.Unlock()

	log.Debug(log.CatProjection, "source updated", "chunks", len(hashes), "projections", len(ids))
	r.broker.Publish(pubsub.SourceUpdatedEvent, SourceUpdate{Projections: ids})
}

// Get returns the current value of the named projection, computing it
// at most once per distinct dependency hash. An unregistered id, or a
// registry that has never seen a source, yields (nil, nil). An error
// from Compute propagates unmodified and leaves the cache entry exactly
// as it was.
func (r *Registry) Get(ctx context.Context, id string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := r.startSpan(ctx, "prism.projection.get",
		attribute.String("projection.id", id))
	defer span.End()

	def, ok := r.defs[id]
	if !ok {
		log.Debug(log.CatProjection, "get for unregistered projection", "id", id)
		span.SetAttributes(attribute.Bool("projection.registered", false))
		return nil, nil
	}
	if !r.hasSource {
		log.Debug(log.CatProjection, "get before any source", "id", id)
		return nil, nil
	}

	depHash := DependencyHash(def.Depends, r.hashes)

	// Served from cache only when the stored dependency hash matches
	// the current one AND a result is actually present. A projection
	// that legitimately computes to nil is indistinguishable from one
	// never computed, so it recomputes on every Get; documented
	// limitation.
	if e, found := r.entries.Get(ctx, id); found && e.depHash == depHash && e.result != nil {
		r.verifyGuard(id, e)
		span.SetAttributes(attribute.Bool("projection.cache_hit", true))
		return e.result, nil
	}

	span.SetAttributes(attribute.Bool("projection.cache_hit", false))
	log.Debug(log.CatProjection, "computing projection", "id", id, "depHash", depHash)

	result, err := def.Compute(r.source)
	if err != nil {
		// Stored fields stay exactly as they were before the call.
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatProjection, "projection compute failed", err, "id", id)
		return nil, err
	}

	e := entry{result: result, depHash: depHash}
	if result != nil && r.flags.Enabled(flags.FlagMutationGuard) {
		e.fingerprint = fingerprint(result)
		e.guarded = true
	}
	r.entries.Set(ctx, id, e)

	return result, nil
}

// verifyGuard re-fingerprints a guarded cached result on a cache hit.
func (r *Registry) verifyGuard(id string, e entry) {
	if !e.guarded || !r.flags.Enabled(flags.FlagMutationGuard) {
		return
	}
	if fingerprint(e.result) != e.fingerprint {
		panic(fmt.Sprintf("projection %q: cached result was mutated after compute", id))
	}
}

// Clear drops the source, the chunk-hash map, and every cache entry,
// but keeps all registrations. The next Get returns nil until a new
// source arrives.
func (r *Registry) Clear(ctx context.Context) {
	r.mu.Lock()
	r.source = nil
	r.hashes = nil
	r.hasSource = false
	_ = r.entries.Flush(ctx)
	ids := r.idsLocked()
	r.mu.Unlock()

	log.Debug(log.CatProjection, "registry cleared", "projections", len(ids))
	r.broker.Publish(pubsub.CacheClearedEvent, SourceUpdate{Projections: ids})
}

// List returns every registered projection id in sorted order,
// independent of whether it has ever been computed.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idsLocked()
}

// Depends returns the declared dependency list of a registered
// projection, or nil for an unknown id. The slice is a copy.
func (r *Registry) Depends(id string) []ChunkName {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.defs[id]
	if !ok {
		return nil
	}
	return append([]ChunkName(nil), def.Depends...)
}

// Subscribe returns a channel of source-update notifications. The
// subscription is cleaned up when ctx is cancelled.
func (r *Registry) Subscribe(ctx context.Context) <-chan pubsub.Event[SourceUpdate] {
	return r.broker.Subscribe(ctx)
}

// Close shuts down the notification broker.
func (r *Registry) Close() {
	r.broker.Close()
}

func (r *Registry) idsLocked() []string {
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// ValueOf wraps Get with a type assertion, the typed access path for
// consumers that know their projection's result type. The boolean is
// false when the projection is unregistered, has no source yet, or
// computed to nil.
func ValueOf[T any](ctx context.Context, r *Registry, id string) (T, bool, error) {
	var zero T

	v, err := r.Get(ctx, id)
	if err != nil {
		return zero, false, err
	}
	if v == nil {
		return zero, false, nil
	}

	t, ok := v.(T)
	if !ok {
		return zero, false, fmt.Errorf("projection %s: result is %T, not %T", id, v, zero)
	}
	return t, true, nil
}
