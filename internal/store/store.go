// Package store implements the segmented concurrent key-value store
// spec.md §3/§4.3 describes: a fixed array of hash-sharded segments, each
// independently locked, holding reference-counted Entry values.
package store

import (
	"fmt"

	"github.com/saqif-community/shardkv/internal/glob"
)

// Store is a fixed array of N segments, N a power of two. A key is
// routed to segment hash(key) & (N-1). Distinct segments are fully
// independent: there is no global lock. Grounded on the teacher's single
// global `map[string]string` + `sync.RWMutex` pair in handler.go,
// generalized from one shard to N.
type Store struct {
	segments []*segment
	mask     uint64
}

// New constructs a Store with the given number of segments, which must be
// a power of two (spec.md §4.3).
func New(numSegments int) (*Store, error) {
	if numSegments <= 0 || numSegments&(numSegments-1) != 0 {
		return nil, fmt.Errorf("store: segment count must be a positive power of two, got %d", numSegments)
	}

	segs := make([]*segment, numSegments)
	for i := range segs {
		segs[i] = newSegment(i)
	}
	return &Store{segments: segs, mask: uint64(numSegments - 1)}, nil
}

func (s *Store) segmentFor(key []byte) *segment {
	idx := hashKey(key) & s.mask
	return s.segments[idx]
}

// Get borrows the Entry stored at key, or returns nil if absent. The
// caller must Release the borrow exactly once.
func (s *Store) Get(key []byte) *Entry {
	return s.segmentFor(key).get(string(key))
}

// Put inserts value at key, deep-copying both the key and the value. If
// key was already present, the previous Entry's map reference is
// released; borrows taken earlier stay valid and keep observing the old
// value.
func (s *Store) Put(key []byte, value EntryValue) {
	s.segmentFor(key).put(string(key), value)
}

// Overwrite mutates the Entry already stored at key in place via
// Entry.Set, without touching the segment's map or refcount. It reports
// whether key was present.
func (s *Store) Overwrite(key []byte, value EntryValue) bool {
	return s.segmentFor(key).overwrite(string(key), value)
}

// Del removes key if present, releasing the map's reference. It reports
// whether a key was removed.
func (s *Store) Del(key []byte) bool {
	return s.segmentFor(key).del(string(key))
}

// Len returns the total number of live keys across every segment.
func (s *Store) Len() int {
	total := 0
	for _, seg := range s.segments {
		total += seg.len()
	}
	return total
}

// NumSegments reports how many segments this Store was constructed with.
func (s *Store) NumSegments() int { return len(s.segments) }

// Scan walks segments starting at the segment/offset encoded in cursor,
// matching up to count keys against pattern (a glob.Match pattern), and
// returns the matched keys plus the cursor to resume from (0 meaning
// "iteration complete"). Per spec.md §4.3, each segment is walked under
// its own exclusive lock only for the duration of that segment's
// snapshot; the lock is released before the next segment is touched, and
// keys may be missed or repeated under concurrent modification but the
// scan always terminates at cursor 0.
func (s *Store) Scan(cursor int64, count int, pattern []byte) (keys [][]byte, nextCursor int64) {
	if count <= 0 {
		count = 10
	}

	segIdx, offset := unpackCursor(cursor)
	if segIdx < 0 || segIdx >= len(s.segments) {
		return nil, 0
	}

	for segIdx < len(s.segments) {
		segKeys, nextOffset := s.segments[segIdx].snapshotKeysFrom(offset, count-len(keys))

		for _, k := range segKeys {
			kb := []byte(k)
			if pattern == nil || glob.Match(pattern, kb) {
				keys = append(keys, kb)
			}
		}

		if nextOffset != 0 {
			return keys, packCursor(segIdx, nextOffset)
		}

		// This segment is exhausted; move to the next one starting at
		// offset 0.
		segIdx++
		offset = 0

		if len(keys) >= count {
			if segIdx >= len(s.segments) {
				return keys, 0
			}
			return keys, packCursor(segIdx, 0)
		}
	}

	return keys, 0
}
