package command

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/saqif-community/shardkv/internal/client"
	"github.com/saqif-community/shardkv/internal/resp"
	"github.com/saqif-community/shardkv/internal/store"
)

func handlePing(ctx *Context) error {
	if !ctx.MaxArgNum(1) {
		return nil
	}
	if ctx.Remaining() == 1 {
		msg, err := ctx.ReadString()
		if err != nil {
			return err
		}
		return ctx.Writer.WriteSimpleString(msg)
	}
	return ctx.Writer.WriteSimpleString([]byte("PONG"))
}

func handleQuit(ctx *Context) error {
	if !ctx.ExactArgNum(0) {
		return nil
	}
	ctx.RequestQuit()
	return ctx.Writer.WriteOK()
}

func handleGet(ctx *Context) error {
	if !ctx.ExactArgNum(1) {
		return nil
	}
	key, err := ctx.ReadString()
	if err != nil {
		return err
	}

	entry := ctx.Store.Get(key)
	if entry == nil {
		return ctx.Writer.WriteNull()
	}
	value := cloneEntryValue(entry)
	entry.Release()

	return writeEntryValue(ctx.Writer, value)
}

// cloneEntryValue copies entry's value out from under its lock so the
// caller can write the reply after the lock (and the entry's borrow) has
// been released, per spec.md §9's rule that lock acquisitions must not
// span a socket write.
func cloneEntryValue(entry *store.Entry) store.EntryValue {
	var v store.EntryValue
	entry.Read(func(ev store.EntryValue) { v = ev.Clone() })
	return v
}

func writeEntryValue(w *resp.Writer, v store.EntryValue) error {
	switch v.Kind() {
	case store.KindInt64:
		return w.WriteInteger(v.Int64())
	default:
		return w.WriteBulkString(v.Binary())
	}
}

// handleSet implements spec.md §4.4's SET: extra arguments beyond
// key/value are accepted and ignored, not validated.
func handleSet(ctx *Context) error {
	if !ctx.MinArgNum(2) {
		return nil
	}

	key, err := ctx.ReadString()
	if err != nil {
		return err
	}
	value, err := ctx.ReadString()
	if err != nil {
		return err
	}

	if err := ctx.DiscardRemainingArguments(); err != nil {
		return err
	}

	if value == nil {
		ctx.Store.Del(key)
		return ctx.Writer.WriteOK()
	}

	if !ctx.Store.Overwrite(key, store.NewBinaryValue(value)) {
		ctx.Store.Put(key, store.NewBinaryValue(value))
	}
	return ctx.Writer.WriteOK()
}

// handleAppend reproduces the documented quirk verbatim: a null value
// returns without writing any reply. A pipelining client that expects one
// reply per command falls out of step with the server after such a call.
func handleAppend(ctx *Context) error {
	if !ctx.ExactArgNum(2) {
		return nil
	}

	key, err := ctx.ReadString()
	if err != nil {
		return err
	}
	value, err := ctx.ReadString()
	if err != nil {
		return err
	}

	if value == nil {
		return nil
	}

	if entry := ctx.Store.Get(key); entry != nil {
		n := entry.Append(value)
		entry.Release()
		return ctx.Writer.WriteInteger(n)
	}

	ctx.Store.Put(key, store.NewBinaryValue(value))
	return ctx.Writer.WriteInteger(int64(len(value)))
}

func handleIncr(ctx *Context) error { return incrDecrBy(ctx, 1) }
func handleDecr(ctx *Context) error { return incrDecrBy(ctx, -1) }

func incrDecrBy(ctx *Context, delta int64) error {
	if !ctx.ExactArgNum(1) {
		return nil
	}
	key, err := ctx.ReadString()
	if err != nil {
		return err
	}
	return applyDelta(ctx, key, delta)
}

func handleIncrBy(ctx *Context) error { return incrDecrByKeyAndDelta(ctx, 1) }
func handleDecrBy(ctx *Context) error { return incrDecrByKeyAndDelta(ctx, -1) }

func incrDecrByKeyAndDelta(ctx *Context, sign int64) error {
	if !ctx.ExactArgNum(2) {
		return nil
	}
	key, err := ctx.ReadString()
	if err != nil {
		return err
	}
	delta, err := ctx.ReadI64String()
	if err != nil {
		return err
	}
	return applyDelta(ctx, key, sign*delta)
}

func applyDelta(ctx *Context, key []byte, delta int64) error {
	entry := ctx.Store.Get(key)
	if entry == nil {
		ctx.Store.Put(key, store.NewInt64Value(delta))
		return ctx.Writer.WriteInteger(delta)
	}
	defer entry.Release()

	newValue, err := entry.AddInt64(delta)
	if err != nil {
		return ctx.Writer.WriteError([]byte(err.Error()))
	}
	return ctx.Writer.WriteInteger(newValue)
}

func handleClient(ctx *Context) error {
	if !ctx.MinArgNum(1) {
		return nil
	}
	sub, err := ctx.ReadEnum([]string{"ID", "SETNAME", "GETNAME", "LIST", "INFO"})
	if err != nil {
		if errors.Is(err, resp.ErrInvalidValue) {
			if derr := ctx.DiscardRemainingArguments(); derr != nil {
				return derr
			}
			return ctx.Writer.WriteError([]byte("unknown subcommand, try CLIENT ID|SETNAME|GETNAME|LIST|INFO"))
		}
		return err
	}

	switch sub {
	case "ID":
		if !ctx.ExactArgNum(1) {
			return nil
		}
		return ctx.Writer.WriteInteger(ctx.Client.ID)

	case "SETNAME":
		if !ctx.ExactArgNum(2) {
			return nil
		}
		name, err := ctx.ReadString()
		if err != nil {
			return err
		}
		ctx.Client.SetName(name)
		return ctx.Writer.WriteOK()

	case "GETNAME":
		if !ctx.ExactArgNum(1) {
			return nil
		}
		name := ctx.Client.Name()
		if name == nil {
			return ctx.Writer.WriteBulkString([]byte(""))
		}
		return ctx.Writer.WriteBulkString(name)

	case "INFO":
		if err := ctx.DiscardRemainingArguments(); err != nil {
			return err
		}
		return ctx.Writer.WriteBulkString(clientLine(ctx.Client))

	case "LIST":
		if err := ctx.DiscardRemainingArguments(); err != nil {
			return err
		}
		clients := ctx.Registry.Snapshot()
		var b bytes.Buffer
		for i, c := range clients {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.Write(clientLine(c))
			c.Release()
		}
		return ctx.Writer.WriteBulkString(b.Bytes())
	}
	return nil
}

func clientLine(c *client.Client) []byte {
	var b bytes.Buffer
	b.WriteString("id=")
	b.WriteString(strconv.FormatInt(c.ID, 10))
	b.WriteString(" name=")
	if name := c.Name(); name != nil {
		b.Write(name)
	}
	return b.Bytes()
}

func handleCommand(ctx *Context) error {
	if err := ctx.DiscardRemainingArguments(); err != nil {
		return err
	}
	return ctx.Writer.WriteArrayHeader(0)
}

func handleScan(ctx *Context) error {
	result, err := ctx.ReadParameters(
		[]resp.PositionalField{{Name: "cursor", Type: resp.FieldInt64, Required: true}},
		[]resp.FlagField{
			{Name: "MATCH", Type: resp.FlagString},
			{Name: "COUNT", Type: resp.FlagInt64},
		},
	)
	if err != nil {
		return err
	}

	cursor := result.Positionals["cursor"].Int64

	pattern := []byte("*")
	if pv, ok := result.Flags["MATCH"]; ok && pv.HasValue {
		pattern = pv.Str
	}

	count := int64(10)
	if cv, ok := result.Flags["COUNT"]; ok && cv.HasValue {
		count = cv.Int64
	}

	keys, next := ctx.Store.Scan(cursor, int(count), pattern)

	if err := ctx.Writer.WriteArrayHeader(2); err != nil {
		return err
	}
	if err := ctx.Writer.WriteInteger(next); err != nil {
		return err
	}
	if err := ctx.Writer.WriteArrayHeader(len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := ctx.Writer.WriteBulkString(k); err != nil {
			return err
		}
	}
	return nil
}

func handleEcho(ctx *Context) error {
	if !ctx.ExactArgNum(1) {
		return nil
	}
	msg, err := ctx.ReadString()
	if err != nil {
		return err
	}
	return ctx.Writer.WriteBulkString(msg)
}

func handleDBSize(ctx *Context) error {
	if !ctx.ExactArgNum(0) {
		return nil
	}
	return ctx.Writer.WriteInteger(int64(ctx.Store.Len()))
}

func handleExists(ctx *Context) error {
	if !ctx.MinArgNum(1) {
		return nil
	}
	var count int64
	for ctx.Remaining() > 0 {
		key, err := ctx.ReadString()
		if err != nil {
			return err
		}
		if entry := ctx.Store.Get(key); entry != nil {
			count++
			entry.Release()
		}
	}
	return ctx.Writer.WriteInteger(count)
}

func handleStrlen(ctx *Context) error {
	if !ctx.ExactArgNum(1) {
		return nil
	}
	key, err := ctx.ReadString()
	if err != nil {
		return err
	}
	entry := ctx.Store.Get(key)
	if entry == nil {
		return ctx.Writer.WriteInteger(0)
	}
	defer entry.Release()

	var length int64
	entry.Read(func(v store.EntryValue) { length = v.LengthInBytes() })
	return ctx.Writer.WriteInteger(length)
}

func handleType(ctx *Context) error {
	if !ctx.ExactArgNum(1) {
		return nil
	}
	key, err := ctx.ReadString()
	if err != nil {
		return err
	}
	entry := ctx.Store.Get(key)
	if entry == nil {
		return ctx.Writer.WriteSimpleString([]byte("none"))
	}
	defer entry.Release()

	var kind string
	entry.Read(func(v store.EntryValue) {
		if v.Kind() == store.KindInt64 {
			kind = "int"
		} else {
			kind = "string"
		}
	})
	return ctx.Writer.WriteSimpleString([]byte(kind))
}
