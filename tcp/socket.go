package tcp

import (
	"net"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// socket is a scoped owner of one OS endpoint descriptor. It guarantees
// the descriptor is released on every exit path (§3: "Connection —
// owned endpoint descriptor ... deregistered and closed on peer close
// or on any unrecoverable I/O error"), the same ownership discipline the
// block-device backend in the retrieval pack applies to its own raw
// file descriptors.
type socket struct {
	fd int
}

// newListenerSocket creates, binds, and starts listening on a
// non-blocking TCP endpoint at addr:port. When reusePort is true,
// SO_REUSEPORT lets several independent process instances share the
// listening port for kernel-level load balancing (§1, §5, §6).
func newListenerSocket(addr string, port int, backlog int, reusePort bool) (*socket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrap(err, "socket: create")
	}
	s := &socket{fd: fd}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "socket: SO_REUSEADDR")
	}
	if reusePort {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
			s.Close()
			return nil, errors.Wrap(err, "socket: SO_REUSEPORT")
		}
	}

	sa, err := sockaddrFor(addr, port)
	if err != nil {
		s.Close()
		return nil, errors.Wrap(err, "socket: resolve bind address")
	}
	if err := unix.Bind(fd, sa); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "socket: bind")
	}
	if err := unix.Listen(fd, backlog); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "socket: listen")
	}

	return s, nil
}

// sockaddrFor resolves a bind host (IPv4 only) and a port into the
// sockaddr unix.Bind expects. An empty host means the wildcard address.
func sockaddrFor(addr string, port int) (unix.Sockaddr, error) {
	var ip net.IP
	if addr != "" {
		resolved, err := net.ResolveIPAddr("ip4", addr)
		if err != nil {
			return nil, err
		}
		ip = resolved.IP
	}

	var bytes4 [4]byte
	if ip != nil {
		copy(bytes4[:], ip.To4())
	}
	return &unix.SockaddrInet4{Port: port, Addr: bytes4}, nil
}

// acceptNonblocking accepts one pending connection, already set
// non-blocking by the kernel via SOCK_NONBLOCK, and wraps it in a
// socket. A nil, nil, unix.EAGAIN return means "no more connections
// pending right now" — the accept-drain loop in server.go stops there.
func (s *socket) acceptNonblocking() (*socket, unix.Sockaddr, error) {
	connFd, sa, err := unix.Accept4(s.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return nil, nil, err
	}
	return &socket{fd: connFd}, sa, nil
}

// readNonblocking reads into buf, returning the same tri-state the
// event loop's drain-to-EAGAIN protocol expects: n>0 data, n==0 peer
// closed, err == unix.EAGAIN meaning "no more data right now".
func (s *socket) readNonblocking(buf []byte) (int, error) {
	return unix.Read(s.fd, buf)
}

// writeNonblocking writes buf, returning the number of bytes the kernel
// actually accepted. A short write (or unix.EAGAIN) means the remainder
// must stay queued — see clientbuf.Buffer.DiscardFlushed.
func (s *socket) writeNonblocking(buf []byte) (int, error) {
	return unix.Write(s.fd, buf)
}

// Close releases the descriptor. Calling Close more than once is a
// caller bug (the fd may have been reused), but Close itself never
// panics: it simply passes the close(2) error through.
func (s *socket) Close() error {
	return unix.Close(s.fd)
}
