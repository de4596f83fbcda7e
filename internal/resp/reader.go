package resp

import (
	"bufio"
	"io"

	"github.com/saqif-community/shardkv/internal/buffer"
)

// Reader parses RESP values from an arbitrary byte stream. It keeps a
// single-byte peek of the last byte it consumed and validates every CRLF
// boundary strictly: a lone LF without a preceding CR is a protocol error.
//
// Reader is not safe for concurrent use; each connection owns exactly one.
type Reader struct {
	br       *bufio.Reader
	lineBuf  *buffer.Buffer
	lastByte byte
	lastErr  error // auxiliary diagnostic slot, set on every returned error
}

// NewReader wraps r in buffered RESP parsing.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		br:      bufio.NewReader(r),
		lineBuf: buffer.New(64),
	}
}

// LastError returns the most recent error this Reader produced, or nil.
// It exists purely for diagnostics; callers should still act on the error
// value returned from the call that failed.
func (r *Reader) LastError() error { return r.lastErr }

func (r *Reader) fail(err *Error) (*Error, error) {
	r.lastErr = err
	return err, err
}

// readLine reads bytes up to and including a validated CRLF, returning the
// bytes before it (borrowed from the Reader's internal buffer — copy if
// retaining past the next call). maxLen bounds how many bytes may precede
// the CRLF; exceeding it drains to the next CRLF and returns InvalidValue,
// keeping the stream framed.
func (r *Reader) readLine(maxLen int) ([]byte, error) {
	r.lineBuf.Reset()
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			_, e := r.fail(wrapErr(TagRead, err, "failed to read from stream"))
			return nil, e
		}
		r.lastByte = b

		if b == lf {
			buf := r.lineBuf.Bytes()
			if len(buf) == 0 || buf[len(buf)-1] != cr {
				_, e := r.fail(newErr(TagProtocol, "unexpected LF without preceding CR"))
				return nil, e
			}
			return buf[:len(buf)-1], nil
		}

		// lineBuf also holds the CR that precedes the LF, so it may
		// reach maxLen+1 bytes for a line of exactly maxLen bytes.
		if r.lineBuf.Len() > maxLen {
			if err := r.drainToCRLF(); err != nil {
				return nil, err
			}
			_, e := r.fail(newFramedErr(TagInvalidValue, "line exceeds maximum length of %d bytes", maxLen))
			return nil, e
		}

		r.lineBuf.WriteByte(b)
	}
}

// drainToCRLF consumes bytes until a CRLF is seen, ignoring length limits,
// so an over-long line still leaves the stream framed for the next value.
func (r *Reader) drainToCRLF() error {
	prev := r.lastByte
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			_, e := r.fail(wrapErr(TagRead, err, "failed to read from stream"))
			return e
		}
		if b == lf && prev == cr {
			r.lastByte = b
			return nil
		}
		prev = b
	}
}

// PeekTypePrefix looks at the next byte without consuming it, so a
// caller can decide which typed Read method to call. It is not used by
// the dispatcher (which always knows what shape it expects next) but is
// useful for generic value printers such as the CLI client.
func (r *Reader) PeekTypePrefix() (Prefix, error) {
	b, err := r.br.Peek(1)
	if err != nil {
		_, e := r.fail(wrapErr(TagRead, err, "failed to read from stream"))
		return 0, e
	}
	switch Prefix(b[0]) {
	case SimpleString, Error_, Integer, BulkString, Array:
		return Prefix(b[0]), nil
	default:
		_, e := r.fail(newErr(TagProtocol, "unexpected type prefix %q", b[0]))
		return 0, e
	}
}

// ReadTypePrefix reads a single byte and interprets it as a RESP type
// prefix, without consuming anything further.
func (r *Reader) ReadTypePrefix() (Prefix, error) {
	b, err := r.br.ReadByte()
	if err != nil {
		_, e := r.fail(wrapErr(TagRead, err, "failed to read from stream"))
		return 0, e
	}
	r.lastByte = b
	switch Prefix(b) {
	case SimpleString, Error_, Integer, BulkString, Array:
		return Prefix(b), nil
	default:
		_, e := r.fail(newErr(TagProtocol, "unexpected type prefix %q", b))
		return 0, e
	}
}

// parseIntLine parses a RESP integer line (optional leading sign, then
// ASCII digits, no other characters) per spec.md §4.1's rules: at most 18
// digits accepted, leading '+' skipped, leading '-' negates.
func parseIntLine(line []byte) (int64, error) {
	if len(line) == 0 {
		return 0, newErr(TagProtocol, "empty integer")
	}

	i := 0
	negative := false
	switch line[0] {
	case '+':
		i = 1
	case '-':
		negative = true
		i = 1
	}

	digits := line[i:]
	if len(digits) == 0 {
		return 0, newErr(TagProtocol, "integer has no digits")
	}
	if len(digits) > maxIntDigits {
		return 0, newErr(TagInvalidValue, "int is outside of int64 range")
	}

	var v int64
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, newErr(TagProtocol, "non-digit byte %q in integer", c)
		}
		v = v*10 + int64(c-'0')
	}
	if negative {
		v = -v
	}
	return v, nil
}

// ReadArrayHeader reads a '*' prefix, its length, and the terminating
// CRLF. Any length less than -1 is normalized to -1 ("null"/"empty array"
// per spec.md §4.1).
func (r *Reader) ReadArrayHeader() (int64, error) {
	prefix, err := r.ReadTypePrefix()
	if err != nil {
		return 0, err
	}
	if prefix != Array {
		_, e := r.fail(newErr(TagProtocol, "expected array prefix '*', got %q", byte(prefix)))
		return 0, e
	}

	line, err := r.readLine(maxSimpleStringLen)
	if err != nil {
		return 0, err
	}
	n, err := parseIntLine(line)
	if err != nil {
		r.lastErr = err
		return 0, err
	}
	if n < NullLength {
		n = NullLength
	}
	return n, nil
}

// ReadString reads a simple string ('+'...CRLF) or a bulk string
// ('$'...CRLF<bytes>CRLF). A bulk string of length -1 yields (nil, nil);
// a length of 0 yields an empty, non-nil slice.
func (r *Reader) ReadString() ([]byte, error) {
	prefix, err := r.ReadTypePrefix()
	if err != nil {
		return nil, err
	}
	switch prefix {
	case SimpleString:
		line, err := r.readLine(maxSimpleStringLen)
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(line))
		copy(out, line)
		return out, nil
	case BulkString:
		return r.readBulkBody()
	default:
		_, e := r.fail(newErr(TagProtocol, "expected simple or bulk string, got %q", byte(prefix)))
		return nil, e
	}
}

// ReadError reads an '-'-prefixed error line, returning its message
// bytes without the prefix or trailing CRLF.
func (r *Reader) ReadError() ([]byte, error) {
	prefix, err := r.ReadTypePrefix()
	if err != nil {
		return nil, err
	}
	if prefix != Error_ {
		_, e := r.fail(newErr(TagProtocol, "expected error prefix '-', got %q", byte(prefix)))
		return nil, e
	}
	line, err := r.readLine(maxSimpleStringLen)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(line))
	copy(out, line)
	return out, nil
}

// readBulkBody reads the length/body/CRLF of a bulk string, assuming the
// '$' prefix has already been consumed.
func (r *Reader) readBulkBody() ([]byte, error) {
	line, err := r.readLine(maxSimpleStringLen)
	if err != nil {
		return nil, err
	}
	length, err := parseIntLine(line)
	if err != nil {
		r.lastErr = err
		return nil, err
	}

	if length < 0 {
		return nil, nil
	}
	if length > maxBulkLen {
		_, e := r.fail(newErr(TagInvalidValue, "bulk string length %d exceeds maximum of %d bytes", length, maxBulkLen))
		return nil, e
	}

	body := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r.br, body); err != nil {
			_, e := r.fail(wrapErr(TagProtocol, err, "short read of bulk string body"))
			return nil, e
		}
	}

	var crlf [2]byte
	if _, err := io.ReadFull(r.br, crlf[:]); err != nil {
		_, e := r.fail(wrapErr(TagRead, err, "failed to read bulk string trailer"))
		return nil, e
	}
	if crlf[0] != cr || crlf[1] != lf {
		_, e := r.fail(newErr(TagProtocol, "malformed bulk string trailer"))
		return nil, e
	}

	return body, nil
}

// ReadI64 reads an ':'-prefixed integer.
func (r *Reader) ReadI64() (int64, error) {
	prefix, err := r.ReadTypePrefix()
	if err != nil {
		return 0, err
	}
	if prefix != Integer {
		_, e := r.fail(newErr(TagProtocol, "expected integer prefix ':', got %q", byte(prefix)))
		return 0, e
	}
	line, err := r.readLine(maxSimpleStringLen)
	if err != nil {
		return 0, err
	}
	n, err := parseIntLine(line)
	if err != nil {
		// The ':' line (value and CRLF) is already fully consumed;
		// only its digits are invalid, so the stream stays framed.
		err = asFramed(err)
		r.lastErr = err
		return 0, err
	}
	return n, nil
}

// ReadI64String reads an i64 from either its native ':' form or a bulk/
// simple string form containing the decimal digits.
func (r *Reader) ReadI64String() (int64, error) {
	prefix, err := r.ReadTypePrefix()
	if err != nil {
		return 0, err
	}

	var line []byte
	switch prefix {
	case Integer:
		line, err = r.readLine(maxSimpleStringLen)
		if err != nil {
			return 0, err
		}
	case BulkString:
		body, err := r.readBulkBody()
		if err != nil {
			return 0, err
		}
		if body == nil {
			// The null encoding itself was fully consumed by
			// readBulkBody; only the semantic expectation failed.
			_, e := r.fail(newFramedErr(TagInvalidValue, "expected integer, got null"))
			return 0, e
		}
		line = body
	case SimpleString:
		line, err = r.readLine(maxSimpleStringLen)
		if err != nil {
			return 0, err
		}
	default:
		_, e := r.fail(newErr(TagProtocol, "expected integer-bearing value, got %q", byte(prefix)))
		return 0, e
	}

	n, err := parseIntLine(line)
	if err != nil {
		// Whichever branch above produced line, its bytes (and CRLF,
		// for Integer/SimpleString, or length+body+CRLF for
		// BulkString) are already fully consumed — only the digits
		// are invalid, so the stream stays framed.
		err = asFramed(err)
		r.lastErr = err
		return 0, err
	}
	return n, nil
}

// ReadEnum reads one string value and matches it case-insensitively
// against variants, returning the matched canonical variant string.
func (r *Reader) ReadEnum(variants []string) (string, error) {
	raw, err := r.ReadString()
	if err != nil {
		return "", err
	}
	if raw == nil {
		_, e := r.fail(newFramedErr(TagInvalidValue, "expected enum value, got null"))
		return "", e
	}
	for _, v := range variants {
		if equalFold(raw, v) {
			return v, nil
		}
	}
	_, e := r.fail(newFramedErr(TagInvalidValue, "%q does not match any known value", raw))
	return "", e
}

func equalFold(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := range b {
		bc, sc := b[i], s[i]
		if 'A' <= bc && bc <= 'Z' {
			bc += 'a' - 'A'
		}
		if 'A' <= sc && sc <= 'Z' {
			sc += 'a' - 'A'
		}
		if bc != sc {
			return false
		}
	}
	return true
}

// DiscardValue reads and discards one complete value, recursing into
// arrays up to maxDiscardDepth levels deep.
func (r *Reader) DiscardValue() error {
	return r.discardValue(1)
}

// DiscardNValues discards n complete values in sequence.
func (r *Reader) DiscardNValues(n int) error {
	for i := 0; i < n; i++ {
		if err := r.DiscardValue(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) discardValue(depth int) error {
	if depth > maxDiscardDepth {
		_, e := r.fail(newErr(TagRecursionLimit, "array nesting exceeds limit of %d", maxDiscardDepth))
		return e
	}

	prefix, err := r.ReadTypePrefix()
	if err != nil {
		return err
	}

	switch prefix {
	case SimpleString, Error_, Integer:
		_, err := r.readLine(maxSimpleStringLen)
		return err
	case BulkString:
		_, err := r.readBulkBody()
		return err
	case Array:
		if depth > maxDiscardDepth {
			_, e := r.fail(newErr(TagRecursionLimit, "array nesting exceeds limit of %d", maxDiscardDepth))
			return e
		}
		line, err := r.readLine(maxSimpleStringLen)
		if err != nil {
			return err
		}
		n, err := parseIntLine(line)
		if err != nil {
			r.lastErr = err
			return err
		}
		if n < 0 {
			return nil
		}
		for i := int64(0); i < n; i++ {
			if err := r.discardValue(depth + 1); err != nil {
				return err
			}
		}
		return nil
	default:
		_, e := r.fail(newErr(TagProtocol, "unexpected type prefix %q", byte(prefix)))
		return e
	}
}
