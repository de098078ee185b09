package tcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanokv/nanokv/internal/arena"
	"github.com/nanokv/nanokv/internal/command"
	"github.com/nanokv/nanokv/internal/keyspace"
	"github.com/nanokv/nanokv/redis/parser"
)

func newTestLoop(capacity int) (*eventLoop, *client) {
	ks := keyspace.New(arena.New(capacity))
	d := command.New(ks)
	c := newClient(nil, 1, "127.0.0.1:1", 256)
	l := &eventLoop{
		clients: map[int32]*client{1: c},
		nextKey: 2,
		parser:  parser.New(parser.DefaultLimits),
		handler: d,
	}
	return l, c
}

func TestDispatchPending_PipelinedCommandsShareOneOutputBuffer(t *testing.T) {
	l, c := newTestLoop(1024)

	n := copy(c.buf.FreeSpace(), "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n*2\r\n$3\r\nGET\r\n$1\r\nk\r\n")
	c.buf.CommitRead(n)

	l.dispatchPending(c)

	assert.Equal(t, "+OK\r\n$1\r\nv\r\n", string(c.buf.PendingOutput()))
	assert.Empty(t, c.buf.Unconsumed(), "fully parsed input must be compacted away")
}

func TestDispatchPending_PartialCommandLeftForNextRead(t *testing.T) {
	l, c := newTestLoop(1024)

	n := copy(c.buf.FreeSpace(), "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n")
	c.buf.CommitRead(n)

	l.dispatchPending(c)

	assert.Empty(t, c.buf.PendingOutput())
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n", string(c.buf.Unconsumed()))
}

func TestDispatchPending_EmptyArrayDoesNotPanic(t *testing.T) {
	l, c := newTestLoop(1024)

	n := copy(c.buf.FreeSpace(), "*0\r\n*1\r\n$4\r\nPING\r\n")
	c.buf.CommitRead(n)

	assert.NotPanics(t, func() { l.dispatchPending(c) })

	assert.Equal(t, "-ERR unknown command\r\n+PONG\r\n", string(c.buf.PendingOutput()))
}

func TestDispatchPending_QuitMarksClientClosing(t *testing.T) {
	l, c := newTestLoop(1024)

	n := copy(c.buf.FreeSpace(), "*1\r\n$4\r\nQUIT\r\n")
	c.buf.CommitRead(n)

	l.dispatchPending(c)

	assert.True(t, c.closing)
	assert.Equal(t, "+OK\r\n", string(c.buf.PendingOutput()))
}

func TestDispatchPending_OversizedCommandIsProtocolViolation(t *testing.T) {
	l, c := newTestLoop(1024)

	// Fill the (tiny) receive buffer with a SET whose array header never
	// resolves into a complete command within the buffer's capacity.
	payload := make([]byte, len(c.buf.FreeSpace()))
	for i := range payload {
		payload[i] = 'x'
	}
	copy(payload, "*3\r\n$3\r\nSET\r\n$100\r\n")
	n := copy(c.buf.FreeSpace(), payload)
	c.buf.CommitRead(n)
	require.True(t, c.buf.Full())

	l.dispatchPending(c)

	assert.True(t, c.closing)
	assert.Empty(t, c.buf.PendingOutput())
}
