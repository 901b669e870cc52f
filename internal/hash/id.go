// Package hash provides a fast path-identifier hash used as a secondary
// lookup key in the reader's object index, and a collision tracker for
// when two distinct paths happen to share a hash.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of an object path string.
func ID(path string) uint64 {
	return xxhash.Sum64String(path)
}
