package resp

import (
	"errors"
	"fmt"
)

// Tag identifies which branch of §7's error taxonomy an *Error belongs to.
// Callers should switch on Tag (or use errors.Is against the sentinel
// values below) rather than comparing error strings.
type Tag int

const (
	// TagRead wraps an underlying read failure from the byte source.
	TagRead Tag = iota
	// TagWrite wraps an underlying write failure to the byte source.
	TagWrite
	// TagProtocol marks a wire-format violation: bad CRLF, bad prefix,
	// a short bulk string body, and so on. Unless the *Error's Framed
	// field is set, the stream is no longer framed once this is returned.
	TagProtocol
	// TagInvalidValue marks a grammatically valid value rejected on
	// semantic grounds: an integer too large, a null where one is not
	// allowed, an enum string that matches no known variant.
	TagInvalidValue
	// TagRecursionLimit marks a discard that nested arrays more than
	// the configured depth.
	TagRecursionLimit
	// TagInvalidParameters marks a readParameters call whose positional
	// or flag specification was violated by the input.
	TagInvalidParameters
	// TagQuit is not a failure: it signals cooperative session
	// termination requested by the QUIT command.
	TagQuit
	// TagOutOfMemory marks an allocation this package refused to make
	// because the caller asked for more than the configured limit.
	TagOutOfMemory
)

func (t Tag) String() string {
	switch t {
	case TagRead:
		return "ReadError"
	case TagWrite:
		return "WriteError"
	case TagProtocol:
		return "ProtocolError"
	case TagInvalidValue:
		return "InvalidValue"
	case TagRecursionLimit:
		return "RecursionLimitExceeded"
	case TagInvalidParameters:
		return "InvalidParameters"
	case TagQuit:
		return "Quit"
	case TagOutOfMemory:
		return "OutOfMemory"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// Error is the single error type this package returns. Message is the
// short, lower-case, present-tense text spec.md §7 requires in error
// replies; Cause carries the underlying IO error for ReadError/WriteError,
// if any. Framed reports whether the bytes belonging to the value being
// parsed were fully consumed from the stream before the failure was
// detected — i.e. whether the reader's position is still known and the
// next value on the wire can be read as normal. It is false by default:
// only the specific call sites that can prove full consumption set it.
type Error struct {
	Tag     Tag
	Message string
	Cause   error
	Framed  bool
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Tag, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Tag, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, resp.ErrProtocol) (etc.) match any *Error
// sharing that sentinel's Tag, regardless of Message/Cause.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Tag == other.Tag
}

// Sentinel values for use with errors.Is. Their Message field is
// intentionally blank; Is compares only on Tag.
var (
	ErrRead              = &Error{Tag: TagRead}
	ErrWrite             = &Error{Tag: TagWrite}
	ErrProtocol          = &Error{Tag: TagProtocol}
	ErrInvalidValue      = &Error{Tag: TagInvalidValue}
	ErrRecursionLimit    = &Error{Tag: TagRecursionLimit}
	ErrInvalidParameters = &Error{Tag: TagInvalidParameters}
	ErrQuit              = &Error{Tag: TagQuit}
	ErrOutOfMemory       = &Error{Tag: TagOutOfMemory}
)

func newErr(tag Tag, format string, args ...any) *Error {
	return &Error{Tag: tag, Message: fmt.Sprintf(format, args...)}
}

// newFramedErr builds an error for a failure detected only after the
// value's full bytes (length, body, and trailing CRLF as applicable)
// were already consumed from the stream, so the next value can still be
// read normally once this one is reported.
func newFramedErr(tag Tag, format string, args ...any) *Error {
	return &Error{Tag: tag, Message: fmt.Sprintf(format, args...), Framed: true}
}

// asFramed marks err as Framed, for callers that independently know the
// underlying value's bytes were already fully consumed when err (built
// elsewhere, e.g. by parseIntLine, without that context) was produced.
func asFramed(err error) error {
	if e, ok := err.(*Error); ok {
		f := *e
		f.Framed = true
		return &f
	}
	return err
}

func wrapErr(tag Tag, cause error, format string, args ...any) *Error {
	return &Error{Tag: tag, Message: fmt.Sprintf(format, args...), Cause: cause}
}
