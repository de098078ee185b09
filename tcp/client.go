package tcp

import (
	"fmt"

	"github.com/nanokv/nanokv/internal/clientbuf"
	redisiface "github.com/nanokv/nanokv/interface/redis"
)

// client satisfies redisiface.Connection, the identity the event loop
// logs and labels connections with; see RemoteAddr below.
var _ redisiface.Connection = (*client)(nil)

// client is one accepted connection: its socket, its receive/send
// buffers, and the epoll write-interest bit the event loop is currently
// asking the kernel for. The teacher's Client struct carried a
// net.Conn plus channel-based pub/sub subscriber state; this one
// carries nothing net.Conn can't give for free, because there is no
// per-connection goroutine to park on a channel receive.
type client struct {
	sock *socket
	key  int32 // this connection's slot in the event loop's client table
	addr string

	buf *clientbuf.Buffer

	// writeInterestOn records whether EPOLLOUT is currently registered
	// for this socket, so the event loop only calls epoll.modify when
	// the interest set actually needs to change (§13: EPOLLOUT-resume
	// is the chosen strategy for partial writes).
	writeInterestOn bool

	// closing is set once QUIT has been dispatched or a protocol
	// violation detected: the connection is torn down as soon as any
	// queued output has been flushed.
	closing bool
}

func newClient(sock *socket, key int32, addr string, rxCapacity int) *client {
	return &client{
		sock: sock,
		key:  key,
		addr: addr,
		buf:  clientbuf.New(rxCapacity),
	}
}

// Write implements interface/redis.Connection. It queues p for the next
// flush rather than writing synchronously, so command handlers never
// block the event loop on socket I/O.
func (c *client) Write(p []byte) (int, error) {
	c.buf.QueueOutput(p)
	return len(p), nil
}

// Close implements interface/redis.Connection. The actual fd teardown
// happens in the event loop (it must also deregister the fd from epoll
// and free the client table slot); this just marks intent.
func (c *client) Close() error {
	c.closing = true
	return nil
}

// RemoteAddr implements interface/redis.Connection.
func (c *client) RemoteAddr() string {
	return c.addr
}

func (c *client) String() string {
	return fmt.Sprintf("client{%s}", c.addr)
}
