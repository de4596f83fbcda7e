package store

import (
	"sync"
	"sync/atomic"
)

// Entry owns one EntryValue behind a reader-writer lock plus a reference
// count, per spec.md §3/§9. It is created with refcount 1 (the map's own
// reference); every Borrow increments it and every Release decrements it.
// The refcount idiom (atomic.Int64 rather than a mutex-guarded int) is
// grounded on the retrieved corpus's own use of atomic counters for
// in-flight reference tracking (other_examples: mjnovice-aistore
// transport/send.go ref-counts in-flight sends the same way).
type Entry struct {
	mu    sync.RWMutex
	value EntryValue
	refs  atomic.Int64
}

// newEntry wraps a deep copy of v with an initial refcount of 1.
func newEntry(v EntryValue) *Entry {
	e := &Entry{value: v.Clone()}
	e.refs.Store(1)
	return e
}

// Borrow records an additional live reference to e and returns it. The
// caller must call Release exactly once when done.
func (e *Entry) Borrow() *Entry {
	e.refs.Add(1)
	return e
}

// Release drops one reference. It does not reclaim Go memory (the
// garbage collector does that once nothing points at e any more); it
// exists so the refcount invariant in spec.md §8 — "live borrows plus the
// map's reference equals the current refcount" — can be checked and so a
// double-release is caught rather than silently corrupting the count.
func (e *Entry) Release() {
	if e.refs.Add(-1) < 0 {
		panic("store: Entry released more times than it was borrowed")
	}
}

// RefCount reports the current reference count, for tests and invariant
// checks.
func (e *Entry) RefCount() int64 { return e.refs.Load() }

// Read exposes a stable view of e's value to fn under the shared side of
// e's lock. fn must not retain the EntryValue's Binary() slice past
// return — it is the entry's live storage, not a copy.
func (e *Entry) Read(fn func(EntryValue)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.value)
}

// Set replaces e's value with a deep copy of v under the write lock.
func (e *Entry) Set(v EntryValue) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = v.Clone()
}

// Append coerces e's value to binary if necessary (spec.md §3) and
// concatenates suffix, returning the new length in bytes.
func (e *Entry) Append(suffix []byte) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = e.value.AsBinary()
	e.value.binary = append(e.value.binary, suffix...)
	return int64(len(e.value.binary))
}

// AddInt64 adds delta to e's value under the write lock, failing if the
// current value is not an int64 or if the addition would overflow.
// It reports the new value on success.
func (e *Entry) AddInt64(delta int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.value.kind != KindInt64 {
		return 0, errNotInt64
	}

	sum := e.value.i64 + delta
	if overflowsInt64(e.value.i64, delta, sum) {
		return 0, errIntOverflow
	}

	e.value.i64 = sum
	return sum, nil
}

func overflowsInt64(a, b, sum int64) bool {
	// Overflow happened iff a and b share a sign and the sum's sign
	// differs from theirs.
	return (a >= 0) == (b >= 0) && (sum >= 0) != (a >= 0)
}
