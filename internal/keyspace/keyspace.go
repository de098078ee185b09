// Package keyspace implements the mapping from owned keys to value
// views into the arena, described by §3 of SPEC_FULL.md.
package keyspace

import "github.com/nanokv/nanokv/internal/arena"

// view is the (offset, length) pair a key resolves to inside the arena.
type view struct {
	offset int
	length int
}

// Keyspace maps owned byte strings to value views. It is touched only
// from the single event-loop goroutine (§5); there is no locking here
// because there is no concurrent mutator to guard against.
type Keyspace struct {
	arena *arena.Arena
	data  map[string]view
}

// New creates an empty Keyspace backed by the given arena.
func New(a *arena.Arena) *Keyspace {
	return &Keyspace{arena: a, data: make(map[string]view)}
}

// Set copies value's bytes into the arena and binds key to the
// resulting view, overwriting any existing binding for key. The old
// value's arena bytes remain allocated but unreferenced, per §3 — the
// arena has no per-object free.
//
// Set never retains the key or value slices it is given: key is copied
// into a new Go string (keys live in the receive buffer, which is
// overwritten on the connection's next read — §4.4), and value is
// copied into the arena for the same reason.
func (k *Keyspace) Set(key, value []byte) bool {
	off, ok := k.arena.Allocate(value)
	if !ok {
		return false
	}
	k.data[string(key)] = view{offset: off, length: len(value)}
	return true
}

// Get returns the current value bytes for key, or (nil, false) if key
// is not present. The returned slice aliases the arena and must not be
// retained past the next arena Reset (i.e. past the next FLUSHALL).
func (k *Keyspace) Get(key []byte) ([]byte, bool) {
	v, ok := k.data[string(key)]
	if !ok {
		return nil, false
	}
	return k.arena.View(v.offset, v.length), true
}

// Exists reports how many of the given keys are present.
func (k *Keyspace) Exists(keys [][]byte) int {
	n := 0
	for _, key := range keys {
		if _, ok := k.data[string(key)]; ok {
			n++
		}
	}
	return n
}

// Len returns the number of keys currently stored (DBSIZE).
func (k *Keyspace) Len() int {
	return len(k.data)
}

// Clear drops every key and resets the backing arena in one step. This
// is the only place the arena is ever reset, and it is always paired
// with clearing the keyspace first — an arena reset without a matching
// keyspace clear would leave dangling views, which §9 of SPEC_FULL.md
// says must never happen.
func (k *Keyspace) Clear() {
	k.data = make(map[string]view)
	k.arena.Reset()
}
