// Package command implements the dispatcher and verb handlers of §4.4:
// it takes a decoded token vector, mutates the keyspace, and appends an
// encoded reply to the connection's pending-output buffer.
package command

import (
	"bytes"

	"github.com/nanokv/nanokv/internal/keyspace"
	"github.com/nanokv/nanokv/redis/parser"
	"github.com/nanokv/nanokv/redis/protocol"
)

// Outcome tells the caller (the tcp event loop, via HandleCommand) what to do with the connection
// after a command has been dispatched and its reply appended to tx.
type Outcome int

const (
	// Continue means the connection stays open.
	Continue Outcome = iota
	// CloseAfterFlush means the connection was asked to QUIT: the reply
	// must still be flushed, then the connection torn down.
	CloseAfterFlush
)

// Dispatcher holds the single keyspace THE CORE's event loop mutates.
// It is not safe for concurrent use — see §5: the keyspace is exclusive
// to the event-loop goroutine.
type Dispatcher struct {
	ks *keyspace.Keyspace
}

// New creates a Dispatcher over the given keyspace.
func New(ks *keyspace.Keyspace) *Dispatcher {
	return &Dispatcher{ks: ks}
}

// Dispatch matches cmd.Args[0] case-insensitively against the recognized
// verbs (§4.4), executes it, and appends the encoded reply to out,
// returning the grown buffer and what the caller should do next.
//
// cmd may be empty: the parser accepts "*0\r\n" as a complete command
// with zero Args, and the event loop dispatches it like any other. An
// empty command has no verb and gets the unknown-command error.
func (d *Dispatcher) Dispatch(cmd parser.Command, out []byte) ([]byte, Outcome) {
	if len(cmd.Args) == 0 {
		return protocol.AppendError(out, "ERR unknown command"), Continue
	}

	verb := upperASCII(cmd.Args[0])

	switch verb {
	case "PING":
		return d.ping(cmd.Args, out), Continue
	case "ECHO":
		return d.echo(cmd.Args, out), Continue
	case "SET":
		return d.set(cmd.Args, out), Continue
	case "GET":
		return d.get(cmd.Args, out), Continue
	case "EXISTS":
		return d.exists(cmd.Args, out), Continue
	case "DBSIZE":
		return protocol.AppendInt(out, int64(d.ks.Len())), Continue
	case "FLUSHALL":
		d.ks.Clear()
		return protocol.AppendSimpleString(out, "OK"), Continue
	case "COMMAND":
		return protocol.AppendArrayHeader(out, 0), Continue
	case "QUIT":
		return protocol.AppendSimpleString(out, "OK"), CloseAfterFlush
	default:
		return protocol.AppendError(out, "ERR unknown command"), Continue
	}
}

func (d *Dispatcher) ping(args [][]byte, out []byte) []byte {
	switch len(args) {
	case 1:
		return protocol.AppendSimpleString(out, "PONG")
	case 2:
		return protocol.AppendBulkString(out, args[1])
	default:
		return wrongNumberOfArgs(out, "ping")
	}
}

func (d *Dispatcher) echo(args [][]byte, out []byte) []byte {
	if len(args) != 2 {
		return wrongNumberOfArgs(out, "echo")
	}
	return protocol.AppendBulkString(out, args[1])
}

func (d *Dispatcher) set(args [][]byte, out []byte) []byte {
	if len(args) != 3 {
		return wrongNumberOfArgs(out, "set")
	}
	if !d.ks.Set(args[1], args[2]) {
		return protocol.AppendError(out, "ERR out of memory")
	}
	return protocol.AppendSimpleString(out, "OK")
}

func (d *Dispatcher) get(args [][]byte, out []byte) []byte {
	if len(args) != 2 {
		return wrongNumberOfArgs(out, "get")
	}
	v, ok := d.ks.Get(args[1])
	if !ok {
		return protocol.AppendNullBulk(out)
	}
	return protocol.AppendBulkString(out, v)
}

func (d *Dispatcher) exists(args [][]byte, out []byte) []byte {
	if len(args) < 2 {
		return wrongNumberOfArgs(out, "exists")
	}
	return protocol.AppendInt(out, int64(d.ks.Exists(args[1:])))
}

func wrongNumberOfArgs(out []byte, verb string) []byte {
	return protocol.AppendError(out, "ERR wrong number of arguments for '"+verb+"' command")
}

// upperASCII uppercases an ASCII command verb without allocating when
// the bytes are already uppercase (the common case: real clients send
// verbs in canonical case).
func upperASCII(b []byte) string {
	for _, c := range b {
		if c >= 'a' && c <= 'z' {
			return string(bytes.ToUpper(b))
		}
	}
	return string(b)
}
