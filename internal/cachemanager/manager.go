// Package cachemanager provides a generic in-memory cache used by the
// projection registry to hold computed results. Entries never expire on
// their own; invalidation is driven entirely by the caller.
package cachemanager

import (
	"context"
)

type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
