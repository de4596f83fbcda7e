package store

import "errors"

// Sentinel errors returned by Entry/Store operations. Callers compare
// with errors.Is, mirroring the taxonomy idiom calvinalkan-agent-task's
// pkg/slotcache/errors.go uses for its own ErrCorrupt/ErrIncompatible/
// ErrBusy sentinels.
var (
	// errNotInt64 is returned by AddInt64 when the stored value is a
	// binary string rather than an integer.
	errNotInt64 = errors.New("cannot perform incr or decr operation on non-integer value")

	// errIntOverflow is returned by AddInt64 when delta would push the
	// stored integer outside the int64 range.
	errIntOverflow = errors.New("operation resulted in integer overflow")
)

// ErrNotInt64 and ErrIntOverflow re-export the sentinels above so callers
// outside this package (internal/command) can match on them with
// errors.Is without reaching into unexported identifiers.
var (
	ErrNotInt64    = errNotInt64
	ErrIntOverflow = errIntOverflow
)
