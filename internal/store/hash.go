package store

import "github.com/cespare/xxhash/v2"

// hashKey returns the fast, non-cryptographic 64-bit hash spec.md §3 uses
// to route a key to a segment ("Wyhash is acceptable"). xxhash is the
// equivalent pick the rest of the retrieved corpus reaches for (pulled in
// transitively by go-redis/v9 in lukluk-rendang's go.mod) and is exposed
// here as a package-level function so Store never depends on xxhash's
// streaming Digest type, only its one-shot Sum64.
func hashKey(key []byte) uint64 {
	return xxhash.Sum64(key)
}
