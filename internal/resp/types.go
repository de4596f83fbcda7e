package resp

// Prefix identifies the first byte of a RESP value on the wire.
type Prefix byte

const (
	SimpleString Prefix = '+'
	Error_       Prefix = '-'
	Integer      Prefix = ':'
	BulkString   Prefix = '$'
	Array        Prefix = '*'
)

const (
	cr = '\r'
	lf = '\n'

	// maxBulkLen is the largest accepted bulk string length, per spec.md
	// §4.1 ("The maximum accepted length is 500 MiB").
	maxBulkLen = 500 * 1024 * 1024

	// maxSimpleStringLen is the default cap on an unframed simple
	// string/error/integer line before it is rejected as InvalidValue.
	maxSimpleStringLen = 1024

	// maxIntDigits bounds integer parsing to spec.md §4.1's 18 digits
	// (see SPEC_FULL.md Open Question 1 — kept as specified, not widened).
	maxIntDigits = 18

	// maxDiscardDepth bounds recursive array discards per spec.md §4.1.
	maxDiscardDepth = 4
)

// NullLength is the canonical "null" length sentinel for bulk strings and
// arrays. Any length less than -1 read off the wire is normalized to this.
const NullLength int64 = -1
