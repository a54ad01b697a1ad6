package projection

import (
	"hash/fnv"
	"math"
	"reflect"
	"sort"
)

// The mutation guard is a development aid: when the mutation-guard flag
// is enabled, the registry fingerprints every freshly computed result
// and re-verifies the fingerprint on each cache hit. A consumer that
// mutated a cached value gets an immediate panic naming the projection
// instead of a silently corrupted cache. Disabled, it costs nothing.
//
// The fingerprint is a deterministic FNV-1a digest over a recursive
// reflect walk. Pointers, maps, and slices already visited are recorded
// by visit order and skipped on re-encounter, which makes the walk
// idempotent and safe on graphs with shared or cyclic sub-objects.

type fingerprinter struct {
	visited map[uintptr]int
}

// fingerprint returns a digest of v's reachable state.
func fingerprint(v any) uint64 {
	f := &fingerprinter{visited: make(map[uintptr]int)}
	h := fnv.New64a()
	f.walk(h, reflect.ValueOf(v))
	return h.Sum64()
}

type hash64 interface {
	Write(p []byte) (int, error)
	Sum64() uint64
}

func (f *fingerprinter) walk(h hash64, v reflect.Value) {
	if !v.IsValid() {
		writeByte(h, 0x00)
		return
	}

	writeByte(h, byte(v.Kind()))

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			writeByte(h, 1)
		} else {
			writeByte(h, 0)
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeUint64(h, uint64(v.Int()))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		writeUint64(h, v.Uint())

	case reflect.Float32, reflect.Float64:
		writeUint64(h, math.Float64bits(v.Float()))

	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		writeUint64(h, math.Float64bits(real(c)))
		writeUint64(h, math.Float64bits(imag(c)))

	case reflect.String:
		_, _ = h.Write([]byte(v.String()))

	case reflect.Pointer:
		if v.IsNil() {
			writeByte(h, 0x00)
			return
		}
		if f.skipVisited(h, v.Pointer()) {
			return
		}
		f.walk(h, v.Elem())

	case reflect.Interface:
		if v.IsNil() {
			writeByte(h, 0x00)
			return
		}
		f.walk(h, v.Elem())

	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			_, _ = h.Write([]byte(t.Field(i).Name))
			f.walk(h, v.Field(i))
		}

	case reflect.Slice:
		if v.IsNil() {
			writeByte(h, 0x00)
			return
		}
		if f.skipVisited(h, v.Pointer()) {
			return
		}
		f.walkSeq(h, v)

	case reflect.Array:
		f.walkSeq(h, v)

	case reflect.Map:
		if v.IsNil() {
			writeByte(h, 0x00)
			return
		}
		if f.skipVisited(h, v.Pointer()) {
			return
		}
		f.walkMap(h, v)

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		// Opaque values: the kind byte already written is all we record.

	default:
	}
}

func (f *fingerprinter) walkSeq(h hash64, v reflect.Value) {
	writeUint64(h, uint64(v.Len()))
	for i := 0; i < v.Len(); i++ {
		f.walk(h, v.Index(i))
	}
}

// walkMap digests entries ordered by key fingerprint, so iteration
// order cannot leak into the result. Keys are digested recursively
// rather than formatted, which keeps the walk safe on values reached
// through unexported fields.
//
// The ordering fingerprints use a throwaway visited set per entry. The
// shared set must only ever be populated in sorted order: MapKeys
// iterates in randomized order, and a pointer first seen during an
// unordered key scan would take a visit id that varies between walks.
func (f *fingerprinter) walkMap(h hash64, v reflect.Value) {
	type pair struct {
		keyFP uint64
		valFP uint64
		key   reflect.Value
	}

	isolatedFP := func(entry reflect.Value) uint64 {
		eh := fnv.New64a()
		isolated := &fingerprinter{visited: make(map[uintptr]int)}
		isolated.walk(eh, entry)
		return eh.Sum64()
	}

	pairs := make([]pair, 0, v.Len())
	for _, key := range v.MapKeys() {
		pairs = append(pairs, pair{
			keyFP: isolatedFP(key),
			valFP: isolatedFP(v.MapIndex(key)),
			key:   key,
		})
	}

	// Distinct pointer keys with equal pointee content collide on keyFP;
	// the value fingerprint breaks the tie. Entries identical on both are
	// interchangeable, so their relative order cannot affect the digest.
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].keyFP != pairs[j].keyFP {
			return pairs[i].keyFP < pairs[j].keyFP
		}
		return pairs[i].valFP < pairs[j].valFP
	})

	writeUint64(h, uint64(len(pairs)))
	for _, p := range pairs {
		writeUint64(h, p.keyFP)
		f.walk(h, p.key)
		f.walk(h, v.MapIndex(p.key))
	}
}

// skipVisited records first visits by order and digests re-encounters
// as a stable reference to that order, keeping the walk cycle-safe and
// address-independent.
func (f *fingerprinter) skipVisited(h hash64, addr uintptr) bool {
	if id, ok := f.visited[addr]; ok {
		writeByte(h, 0xFF)
		writeUint64(h, uint64(id))
		return true
	}
	f.visited[addr] = len(f.visited)
	return false
}

func writeByte(h hash64, b byte) {
	_, _ = h.Write([]byte{b})
}

func writeUint64(h hash64, u uint64) {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(u >> (8 * i))
	}
	_, _ = h.Write(buf[:])
}
