package command

import (
	"bytes"
	"errors"

	"github.com/saqif-community/shardkv/internal/client"
	"github.com/saqif-community/shardkv/internal/logx"
	"github.com/saqif-community/shardkv/internal/resp"
	"github.com/saqif-community/shardkv/internal/store"
)

// Handler implements one command. It must either read exactly
// ctx.argCount arguments through ctx, or call
// ctx.DiscardRemainingArguments before returning. It must write exactly
// one reply through ctx.Writer, except where spec.md documents a
// deliberate no-reply quirk (APPEND with a null value).
type Handler func(ctx *Context) error

var table = map[string]Handler{
	"ping":    handlePing,
	"quit":    handleQuit,
	"get":     handleGet,
	"set":     handleSet,
	"append":  handleAppend,
	"incr":    handleIncr,
	"decr":    handleDecr,
	"incrby":  handleIncrBy,
	"decrby":  handleDecrBy,
	"client":  handleClient,
	"command": handleCommand,
	"scan":    handleScan,
	"echo":    handleEcho,
	"dbsize":  handleDBSize,
	"exists":  handleExists,
	"strlen":  handleStrlen,
	"type":    handleType,
}

// Dispatch reads exactly one command envelope from r and executes it,
// writing its reply through w. It returns true if the connection should
// continue, false if it should be closed (QUIT, or an unframed
// protocol/value error per spec.md §7's propagation policy).
func Dispatch(r *resp.Reader, w *resp.Writer, s *store.Store, reg *client.Registry, c *client.Client, log logx.Logger) bool {
	w.ResetDirty()

	n, err := r.ReadArrayHeader()
	if err != nil {
		return handleFramingError(w, err)
	}
	if n <= 0 {
		w.WriteError([]byte("invalid command envelope"))
		return true
	}

	name, err := r.ReadString()
	if err != nil {
		return handleFramingError(w, err)
	}
	if name == nil {
		w.WriteError([]byte("invalid command name"))
		_ = r.DiscardNValues(int(n - 1))
		return true
	}
	lower := bytes.ToLower(name)

	ctx := NewContext(r, w, s, reg, c, string(lower), int(n-1))

	handler, ok := table[ctx.Name]
	if !ok {
		w.WriteError([]byte("unknown command"))
		if derr := ctx.DiscardRemainingArguments(); derr != nil {
			return handleFramingError(w, derr)
		}
		return true
	}

	if err := handler(ctx); err != nil {
		cont := handleFramingError(w, err)
		if !cont {
			return false
		}
		if derr := ctx.DiscardRemainingArguments(); derr != nil {
			return handleFramingError(w, derr)
		}
		return true
	}

	if rem := ctx.Remaining(); rem > 0 {
		log.Warnf("command %q left %d unread argument(s); draining", ctx.Name, rem)
		if derr := ctx.DiscardRemainingArguments(); derr != nil {
			return handleFramingError(w, derr)
		}
	}

	return !ctx.Quit()
}

// handleFramingError applies spec.md §7's propagation policy: any read or
// write error terminates the session without a reply (peer closure is not
// told apart from other IO failures, and neither this function nor
// Dispatch logs them), and a protocol/value/recursion-limit error
// terminates the session only if it left the stream unframed — i.e. the
// reader's position in the byte stream is no longer known, so no further
// value on the wire can be trusted to start where the dispatcher expects.
// When the failed value's bytes were already fully consumed (Framed),
// the connection stays open: the error reply is written and the caller
// reads the next command as usual.
func handleFramingError(w *resp.Writer, err error) bool {
	var respErr *resp.Error
	if errors.As(err, &respErr) {
		switch respErr.Tag {
		case resp.TagProtocol, resp.TagInvalidValue, resp.TagRecursionLimit:
			w.WriteError([]byte(respErr.Message))
			return respErr.Framed
		}
	}
	return false
}
