// Package command implements the dispatcher and canonical handler set
// described by spec.md §4.4: it parses each command envelope, routes it
// by lowercased name, enforces argument-count discipline, and drains any
// arguments a handler left unread.
package command

import (
	"github.com/saqif-community/shardkv/internal/client"
	"github.com/saqif-community/shardkv/internal/resp"
	"github.com/saqif-community/shardkv/internal/store"
)

// Context binds everything a handler needs: the framed reader/writer
// pair for this connection, the shared store, the connection's borrowed
// Client identity, the command name being dispatched, and bookkeeping
// for how many of the command's arguments have been consumed so far.
type Context struct {
	Reader   *resp.Reader
	Writer   *resp.Writer
	Store    *store.Store
	Client   *client.Client
	Registry *client.Registry

	Name string // lowercased command name

	argCount int // total arguments following the command name
	read     int // how many have been consumed so far

	quit bool
}

// NewContext builds a Context for dispatching one command. argCount is
// the number of array elements following the command name itself.
func NewContext(r *resp.Reader, w *resp.Writer, s *store.Store, reg *client.Registry, c *client.Client, name string, argCount int) *Context {
	return &Context{Reader: r, Writer: w, Store: s, Registry: reg, Client: c, Name: name, argCount: argCount}
}

// Remaining returns how many of the command's declared arguments have
// not yet been read.
func (c *Context) Remaining() int {
	return c.argCount - c.read
}

// Quit reports whether the handler requested session termination (the
// QUIT command).
func (c *Context) Quit() bool {
	return c.quit
}

// RequestQuit marks this command as a cooperative termination request.
func (c *Context) RequestQuit() {
	c.quit = true
}

func (c *Context) wrongArgNum() {
	msg := append([]byte("wrong number of arguments for '"), c.Name...)
	msg = append(msg, "' command"...)
	c.Writer.WriteError(msg)
	c.DiscardRemainingArguments()
}

// ExactArgNum requires exactly n arguments; on mismatch it writes the
// standard error reply, drains unread arguments, and returns false.
func (c *Context) ExactArgNum(n int) bool {
	if c.argCount != n {
		c.wrongArgNum()
		return false
	}
	return true
}

// MinArgNum requires at least n arguments.
func (c *Context) MinArgNum(n int) bool {
	if c.argCount < n {
		c.wrongArgNum()
		return false
	}
	return true
}

// MaxArgNum requires at most n arguments.
func (c *Context) MaxArgNum(n int) bool {
	if c.argCount > n {
		c.wrongArgNum()
		return false
	}
	return true
}

// ReadString reads one bulk/simple string argument, incrementing the
// consumed-argument count.
func (c *Context) ReadString() ([]byte, error) {
	v, err := c.Reader.ReadString()
	c.read++
	return v, err
}

// ReadI64 reads one native integer argument.
func (c *Context) ReadI64() (int64, error) {
	v, err := c.Reader.ReadI64()
	c.read++
	return v, err
}

// ReadI64String reads one integer argument in either native or string
// form.
func (c *Context) ReadI64String() (int64, error) {
	v, err := c.Reader.ReadI64String()
	c.read++
	return v, err
}

// ReadEnum reads one string argument and matches it case-insensitively
// against variants.
func (c *Context) ReadEnum(variants []string) (string, error) {
	v, err := c.Reader.ReadEnum(variants)
	c.read++
	return v, err
}

// ReadParameters reads the remaining arguments as a positional/flag
// mixture per spec.md §4.1's readParameters algorithm.
func (c *Context) ReadParameters(positionals []resp.PositionalField, flags []resp.FlagField) (*resp.ParamResult, error) {
	result, err := c.Reader.ReadParameters(c.Remaining(), positionals, flags)
	if result != nil {
		c.read += result.Consumed
	}
	return result, err
}

// DiscardRemainingArguments drains whatever of the command's declared
// arguments have not yet been read.
func (c *Context) DiscardRemainingArguments() error {
	n := c.Remaining()
	if n <= 0 {
		return nil
	}
	c.read = c.argCount
	return c.Reader.DiscardNValues(n)
}
