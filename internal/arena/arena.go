// Package arena implements the fixed-capacity linear allocator that backs
// every stored value in the keyspace.
package arena

import "sync"

// Null is the sentinel address returned by Allocate when the arena has
// no room left for the request. It is never a valid offset.
const Null = -1

// Arena is a contiguous byte region with a bump-pointer cursor. There is
// no per-object free; the only way to reclaim space is Reset, which
// invalidates every address handed out so far.
//
// The event loop is the only writer (see §5 of SPEC_FULL.md: the arena
// is exclusive to the event-loop goroutine); a mutex still guards the
// cursor so the arena-usage poller (pollArenaUsage in cmd/serve.go),
// which runs on its own goroutine, can read Remaining/Used without
// racing it.
type Arena struct {
	region []byte

	mu     sync.RWMutex
	cursor int
}

// New creates an Arena with the given fixed capacity in bytes.
func New(capacity int) *Arena {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena{region: make([]byte, capacity)}
}

// Allocate copies src into a freshly bumped range of the arena and
// returns the offset at which it was written, or Null if the arena does
// not have capacity remaining. On success the cursor advances by
// len(src) and the returned range is disjoint from every previously
// live range.
func (a *Arena) Allocate(src []byte) (offset int, ok bool) {
	n := len(src)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cursor+n > len(a.region) {
		return Null, false
	}
	off := a.cursor
	copy(a.region[off:off+n], src)
	a.cursor += n
	return off, true
}

// View returns the live byte slice for a previously allocated
// (offset, length) pair. The returned slice aliases the arena's backing
// array and must not be retained past the next Reset.
func (a *Arena) View(offset, length int) []byte {
	return a.region[offset : offset+length]
}

// Reset sets the cursor back to zero, invalidating every address handed
// out so far. Callers must ensure no live view (e.g. a keyspace entry)
// still references the arena before calling Reset — see keyspace.Clear
// (run by the FLUSHALL handler), which is the only caller.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cursor = 0
}

// Remaining returns the number of bytes still available for allocation.
func (a *Arena) Remaining() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.region) - a.cursor
}

// Len returns the total fixed capacity of the arena.
func (a *Arena) Len() int {
	return len(a.region)
}

// Used returns the number of bytes currently allocated (the cursor).
func (a *Arena) Used() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cursor
}
