package projection

import (
	"strings"
)

// MissingHash is the sentinel substituted for a declared chunk that has
// no hash in the current snapshot. An ordinary string, so a provider
// issuing the literal "missing" as a real hash would collide with it;
// accepted as a low-probability ambiguity.
const MissingHash = "missing"

const hashSeparator = ":"

// DependencyHash derives the cache-validity key for a projection from
// its declared chunks and the current chunk-hash map. Declaration order
// is preserved, not sorted: two projections with the same dependency set
// in different declared order may hash differently, which is accepted.
// Pure and deterministic.
func DependencyHash(depends []ChunkName, hashes map[ChunkName]string) string {
	parts := make([]string, len(depends))
	for i, name := range depends {
		h, ok := hashes[name]
		if !ok {
			h = MissingHash
		}
		parts[i] = h
	}
	return strings.Join(parts, hashSeparator)
}
