// Package projection implements the incremental projection engine: a
// registry of named, pure computations over a chunked source snapshot,
// memoized by the content hashes of the chunks each computation declares.
//
// The engine never inspects source content and never diffs results. A
// projection's cached value is served as long as the dependency hash
// derived from the current chunk-hash map matches the hash recorded when
// the value was computed; everything else triggers a lazy recompute on
// the next Get.
package projection

// ChunkName identifies a named, independently hashed segment of the
// source. The set of names is closed and shared between the source
// provider and every projection definition.
type ChunkName string

// Definition is a registered projection: a pure computation over the
// source plus the ordered list of chunks it reads. Compute must not
// mutate its input, perform I/O, or call back into the registry that
// hosts it.
type Definition struct {
	ID      string
	Depends []ChunkName
	Compute func(src any) (any, error)
}

// SourceUpdate is the payload published whenever the source snapshot is
// replaced. It lists every registered projection id; it says nothing
// about which of them will actually recompute to a different value, so
// interested consumers call Get to find out.
type SourceUpdate struct {
	Projections []string
}
