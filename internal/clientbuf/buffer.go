// Package clientbuf implements the per-connection receive accumulator
// and pending-output buffer described by §3/§4.3 of SPEC_FULL.md.
package clientbuf

// DefaultRXCapacity is RXCAP from §3: the fixed size of the receive
// buffer. A connection that cannot fit a single command in this much
// unconsumed data is protocol-violating and torn down.
const DefaultRXCapacity = 4096

// Buffer holds one connection's receive accumulator (rx) and its
// pending-output accumulator (tx). rx is fixed-size; tx grows as needed
// since a single response is expected to be small relative to socket
// buffers (§4.3).
type Buffer struct {
	rx    []byte
	valid int // lrx: bytes in rx[0:valid] that have been read from the socket

	tx []byte // bytes queued for the next write, not yet flushed
}

// New allocates a Buffer with the given receive-buffer capacity.
func New(rxCapacity int) *Buffer {
	return &Buffer{rx: make([]byte, rxCapacity)}
}

// Unconsumed returns rx[0:valid], the bytes received but not yet parsed
// into a command.
func (b *Buffer) Unconsumed() []byte {
	return b.rx[:b.valid]
}

// FreeSpace returns the tail of rx available for the next read —
// rx[valid:cap(rx)]; it is empty when the buffer is Full. §4.3's
// accept/read drain loop reads into this slice repeatedly until the
// socket reports "would block".
func (b *Buffer) FreeSpace() []byte {
	return b.rx[b.valid:]
}

// CommitRead records that n bytes were just read into the tail returned
// by FreeSpace.
func (b *Buffer) CommitRead(n int) {
	b.valid += n
}

// Full reports whether the receive buffer has no room left for another
// read — the signal (combined with the parser returning "no progress")
// that a single command does not fit in RXCAP and the connection must be
// torn down (§4.3, §7).
func (b *Buffer) Full() bool {
	return b.valid == len(b.rx)
}

// Compact moves the unconsumed tail rx[consumed:valid] down to offset 0,
// discarding the bytes the parser has already turned into commands. It
// must be called every time the parser loop stops making progress,
// before the next socket read, per §4.3.
func (b *Buffer) Compact(consumed int) {
	remaining := b.valid - consumed
	copy(b.rx, b.rx[consumed:b.valid])
	b.valid = remaining
}

// QueueOutput appends bytes to the pending-output buffer. Command
// handlers call this once per dispatched command (§4.4); nothing is
// written to the socket until the event loop flushes tx at the end of
// the readiness cycle.
func (b *Buffer) QueueOutput(p []byte) {
	b.tx = append(b.tx, p...)
}

// PendingOutput returns the bytes queued for the next write.
func (b *Buffer) PendingOutput() []byte {
	return b.tx
}

// SetPendingOutput replaces the pending-output buffer outright. The
// event loop's parse-dispatch loop (§4.3/§4.4) grows a command's reply
// by passing PendingOutput() straight through a chain of
// command.Dispatcher.Dispatch calls as their append target, then writes
// the final grown slice back with SetPendingOutput — one allocation-free
// accumulation across an entire pipelined batch, not one QueueOutput
// call per reply.
func (b *Buffer) SetPendingOutput(p []byte) {
	b.tx = p
}

// HasPendingOutput reports whether any bytes are queued to be written.
func (b *Buffer) HasPendingOutput() bool {
	return len(b.tx) > 0
}

// DiscardFlushed removes the first n bytes of tx after a successful (or
// partially successful) write, keeping whatever the kernel did not yet
// accept queued for the next cycle (SPEC_FULL.md §13: partial writes are
// resumed, not silently dropped).
func (b *Buffer) DiscardFlushed(n int) {
	remaining := copy(b.tx, b.tx[n:])
	b.tx = b.tx[:remaining]
}
