// Package client implements the client identity registry spec.md §3/§4.5
// describes: monotonic client ids, per-client metadata, held by reference
// count between the registry and each active connection.
package client

import (
	"sync"
	"sync/atomic"
	"time"
)

// Client holds the identity spec.md §3 assigns each connection: a
// monotonic id, an optional name, and a creation timestamp in
// milliseconds. It is held by reference count — the Registry holds one,
// each active connection holds one — mirrored here with the same
// atomic.Int64 refcount idiom as store.Entry.
type Client struct {
	ID        int64
	CreatedAt int64 // unix millis

	mu   sync.RWMutex
	name []byte

	refs atomic.Int64
}

// Name returns the client's current name, or nil if unset.
func (c *Client) Name() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.name == nil {
		return nil
	}
	out := make([]byte, len(c.name))
	copy(out, c.name)
	return out
}

// SetName sets or clears (nil/empty) the client's name.
func (c *Client) SetName(name []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(name) == 0 {
		c.name = nil
		return
	}
	c.name = append([]byte(nil), name...)
}

// Borrow records an additional live reference and returns c.
func (c *Client) Borrow() *Client {
	c.refs.Add(1)
	return c
}

// Release drops one reference.
func (c *Client) Release() {
	if c.refs.Add(-1) < 0 {
		panic("client: Client released more times than it was borrowed")
	}
}

// Registry maps client id → *Client under a single reader-writer lock,
// per spec.md §4.5 ("expected contention is low"), plus an atomic
// monotonic id counter.
type Registry struct {
	mu      sync.RWMutex
	clients map[int64]*Client
	nextID  atomic.Int64
}

// NewRegistry constructs an empty Registry. Ids are assigned starting
// from 1.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[int64]*Client)}
}

// RegisterConnection allocates a new Client with the next id, inserts a
// registry-owned reference, and returns an additional retained reference
// for the caller (the connection).
func (r *Registry) RegisterConnection() *Client {
	id := r.nextID.Add(1)
	c := &Client{ID: id, CreatedAt: time.Now().UnixMilli()}
	c.refs.Store(1) // the registry's own reference

	r.mu.Lock()
	r.clients[id] = c
	r.mu.Unlock()

	return c.Borrow()
}

// DropConnection removes id from the registry and releases the
// registry's reference. The caller is still responsible for releasing
// its own connection-held reference separately.
func (r *Registry) DropConnection(id int64) {
	r.mu.Lock()
	c, ok := r.clients[id]
	if ok {
		delete(r.clients, id)
	}
	r.mu.Unlock()

	if ok {
		c.Release()
	}
}

// Lookup returns a borrowed reference to the client with the given id, or
// nil if it is not (or no longer) registered.
func (r *Registry) Lookup(id int64) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	if !ok {
		return nil
	}
	return c.Borrow()
}

// Snapshot returns a borrowed reference to every currently registered
// client, for CLIENT LIST. Callers must Release each one.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c.Borrow())
	}
	return out
}
