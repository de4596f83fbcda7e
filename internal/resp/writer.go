package resp

import (
	"io"
	"strconv"

	"github.com/saqif-community/shardkv/internal/buffer"
)

// Writer emits RESP2 values to an underlying byte sink. It is not safe
// for concurrent use; each connection owns exactly one.
type Writer struct {
	w       io.Writer
	scratch *buffer.Buffer
	lastErr error
	dirty   bool // set once any byte has been written during the current command
}

// NewWriter wraps w for RESP encoding.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, scratch: buffer.New(64)}
}

// LastError returns the most recent write failure, or nil.
func (w *Writer) LastError() error { return w.lastErr }

// Dirty reports whether any output has been produced since the last
// ResetDirty call. Since the dispatcher resets the flag at the start of
// each command, it tells whether the current command has written anything.
func (w *Writer) Dirty() bool { return w.dirty }

// ResetDirty clears the dirty flag; the dispatcher calls this before each
// command.
func (w *Writer) ResetDirty() { w.dirty = false }

func (w *Writer) flush(b []byte) error {
	if _, err := w.w.Write(b); err != nil {
		wrapped := wrapErr(TagWrite, err, "failed to write to stream")
		w.lastErr = wrapped
		return wrapped
	}
	w.dirty = true
	return nil
}

// WriteInteger writes ":<n>\r\n".
func (w *Writer) WriteInteger(n int64) error {
	w.scratch.Reset()
	w.scratch.WriteByte(byte(Integer))
	w.scratch.WriteString(strconv.FormatInt(n, 10))
	w.scratch.WriteString("\r\n")
	return w.flush(w.scratch.Bytes())
}

// WriteArrayHeader writes "*<n>\r\n"; the caller is responsible for then
// writing exactly n values.
func (w *Writer) WriteArrayHeader(n int) error {
	w.scratch.Reset()
	w.scratch.WriteByte(byte(Array))
	w.scratch.WriteString(strconv.Itoa(n))
	w.scratch.WriteString("\r\n")
	return w.flush(w.scratch.Bytes())
}

// WriteBulkString writes "$<len>\r\n<body>\r\n". Body length is capped at
// 500 MiB per spec.md §4.2.
func (w *Writer) WriteBulkString(body []byte) error {
	if len(body) > maxBulkLen {
		e := newErr(TagOutOfMemory, "bulk string of %d bytes exceeds maximum of %d", len(body), maxBulkLen)
		w.lastErr = e
		return e
	}
	w.scratch.Reset()
	w.scratch.WriteByte(byte(BulkString))
	w.scratch.WriteString(strconv.Itoa(len(body)))
	w.scratch.WriteString("\r\n")
	w.scratch.Write(body)
	w.scratch.WriteString("\r\n")
	return w.flush(w.scratch.Bytes())
}

// WriteNull writes "$-1\r\n".
func (w *Writer) WriteNull() error {
	return w.flush([]byte("$-1\r\n"))
}

// WriteSimpleString writes "+<body>\r\n". body must not itself contain CR
// or LF; callers that cannot guarantee this should use WriteBulkString.
func (w *Writer) WriteSimpleString(body []byte) error {
	w.scratch.Reset()
	w.scratch.WriteByte(byte(SimpleString))
	w.scratch.Write(body)
	w.scratch.WriteString("\r\n")
	return w.flush(w.scratch.Bytes())
}

// WriteOK writes "+OK\r\n".
func (w *Writer) WriteOK() error {
	return w.flush([]byte("+OK\r\n"))
}

// WriteError writes "-<message>\r\n".
func (w *Writer) WriteError(message []byte) error {
	w.scratch.Reset()
	w.scratch.WriteByte(byte(Error_))
	w.scratch.Write(message)
	w.scratch.WriteString("\r\n")
	return w.flush(w.scratch.Bytes())
}
