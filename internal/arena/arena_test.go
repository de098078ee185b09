package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanokv/nanokv/internal/arena"
)

func TestAllocate_SequentialOffsetsAreDisjoint(t *testing.T) {
	a := arena.New(64)

	off1, ok := a.Allocate([]byte("hello"))
	require.True(t, ok)
	require.Equal(t, 0, off1)

	off2, ok := a.Allocate([]byte("world!"))
	require.True(t, ok)
	assert.Equal(t, off1+5, off2)

	assert.Equal(t, "hello", string(a.View(off1, 5)))
	assert.Equal(t, "world!", string(a.View(off2, 6)))
}

func TestAllocate_ExhaustionLeavesCursorUnchanged(t *testing.T) {
	a := arena.New(8)

	_, ok := a.Allocate([]byte("12345678"))
	require.True(t, ok)
	require.Equal(t, 0, a.Remaining())

	before := a.Used()
	_, ok = a.Allocate([]byte("x"))
	assert.False(t, ok)
	assert.Equal(t, before, a.Used())
}

func TestAllocate_CapacityBoundary(t *testing.T) {
	const capacity = 16
	a := arena.New(capacity)

	full := make([]byte, capacity)
	_, ok := a.Allocate(full)
	require.True(t, ok, "allocate(capacity) must succeed exactly once")

	_, ok = a.Allocate([]byte{0})
	assert.False(t, ok, "a single further byte must fail once the arena is full")

	a.Reset()
	_, ok = a.Allocate(full)
	assert.True(t, ok, "allocate(capacity) must succeed again after reset")
}

func TestReset_InvalidatesCursorNotBackingArray(t *testing.T) {
	a := arena.New(32)

	off, ok := a.Allocate([]byte("stale"))
	require.True(t, ok)
	require.Equal(t, 0, off)

	a.Reset()
	assert.Equal(t, 32, a.Remaining())

	// A fresh allocation may legally reuse byte 0; the old view is the
	// caller's problem once Reset has been called, per the arena's
	// contract (bulk-clear invalidates all prior addresses).
	newOff, ok := a.Allocate([]byte("fresh"))
	require.True(t, ok)
	assert.Equal(t, 0, newOff)
}

func TestZeroLengthAllocate(t *testing.T) {
	a := arena.New(4)
	off, ok := a.Allocate(nil)
	require.True(t, ok)
	assert.Equal(t, 0, off)
	assert.Equal(t, 4, a.Remaining())
}
