package command

import (
	itcp "github.com/nanokv/nanokv/interface/tcp"
	"github.com/nanokv/nanokv/redis/parser"
)

// HandleCommand implements interface/tcp.Handler, adapting Dispatch's own
// Outcome — kept local so dispatch_test.go can assert against it without
// importing the transport package — to the tcp.Outcome the event loop
// actually understands.
func (d *Dispatcher) HandleCommand(cmd parser.Command, out []byte) ([]byte, itcp.Outcome) {
	out, outcome := d.Dispatch(cmd, out)
	if outcome == CloseAfterFlush {
		return out, itcp.CloseAfterFlush
	}
	return out, itcp.Continue
}
