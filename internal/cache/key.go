// Package cache implements the reactive keyed store at the heart of the sync
// layer: addressable slots holding cached data plus fetch metadata, with
// stale-while-revalidate freshness, garbage collection of subscriber-less
// slots, generation-tagged fetches, and prefix invalidation.
package cache

import (
	"strings"
)

// Key addresses one cached value as an ordered sequence of scalar segments,
// e.g. Key{"doubts", "refuge", refugeID}. Keys form a prefix hierarchy:
// invalidating a shorter key invalidates every key sharing that prefix.
//
// Two logically different queries must never share a key, and the same
// logical query must always produce the same key for the same parameters;
// the canonical string form below is what guarantees both inside the store.
type Key []string

// escapeSegment protects the canonical form against segments containing the
// separator. Percent first, then slash.
func escapeSegment(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	return strings.ReplaceAll(s, "/", "%2F")
}

// String renders the canonical, collision-free form of the key.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, seg := range k {
		parts[i] = escapeSegment(seg)
	}
	return strings.Join(parts, "/")
}

// HasPrefix reports whether p is a segment-wise prefix of k. Every key is a
// prefix of itself; the empty key is a prefix of everything.
func (k Key) HasPrefix(p Key) bool {
	if len(p) > len(k) {
		return false
	}
	for i := range p {
		if k[i] != p[i] {
			return false
		}
	}
	return true
}

// Equal reports segment-wise equality.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

// Clone returns an independent copy, so callers can hold keys without
// aliasing the store's index.
func (k Key) Clone() Key {
	out := make(Key, len(k))
	copy(out, k)
	return out
}
