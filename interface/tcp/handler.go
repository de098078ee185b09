// Package tcp defines the seam between the transport (accept/read/write
// over epoll, see the top-level tcp package) and command execution
// (internal/command), the same role the teacher's Handler interface
// played for its goroutine-per-connection model.
//
// THE CORE's single-threaded event loop (§4.3) calls HandleCommand
// synchronously, once per fully-parsed command, instead of handing the
// whole net.Conn to a per-connection goroutine the way the teacher's
// Handle(ctx, conn) did — there is exactly one goroutine, and it must
// never block inside a handler.
package tcp

import "github.com/nanokv/nanokv/redis/parser"

// Outcome tells the event loop what to do with the connection after a
// command has been dispatched. It mirrors internal/command.Outcome so
// that package can stay independent of the transport layer.
type Outcome int

const (
	// Continue means the connection stays open.
	Continue Outcome = iota
	// CloseAfterFlush means the reply must be flushed and then the
	// connection torn down (the QUIT command).
	CloseAfterFlush
)

// Handler executes one decoded command and appends its encoded reply to
// out, returning the grown buffer and what the event loop should do
// with the connection next.
type Handler interface {
	HandleCommand(cmd parser.Command, out []byte) ([]byte, Outcome)
}
