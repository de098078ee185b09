// Package protocol encodes the server-to-client half of the wire format:
// the six RESP reply frames THE CORE emits (§4.4). Each Append* function
// writes directly into the caller's pending-output buffer instead of
// allocating an intermediate []byte per reply, the way the teacher's
// ToBytes() methods did — THE CORE appends one reply per dispatched
// command onto a single per-connection tx accumulator that is flushed
// with one write syscall per readiness cycle (§4.3), so building a
// throwaway slice per reply would be wasted allocation on the hot path.
package protocol

import (
	"bytes"
	"strconv"
)

// CRLF is the line separator of the Redis serialization protocol.
const CRLF = "\r\n"

// nullBulk is the encoding of the null-bulk reply ("$-1\r\n"), used by
// GET on a missing key. THE CORE's parser never accepts this token as
// input (§9) but the server is free to — and does — send it.
const nullBulk = "$-1\r\n"

// AppendSimpleString appends "+<s>\r\n" to buf and returns the result.
func AppendSimpleString(buf []byte, s string) []byte {
	buf = append(buf, '+')
	buf = append(buf, s...)
	return append(buf, CRLF...)
}

// AppendError appends "-<msg>\r\n" to buf and returns the result.
func AppendError(buf []byte, msg string) []byte {
	buf = append(buf, '-')
	buf = append(buf, msg...)
	return append(buf, CRLF...)
}

// AppendInt appends ":<n>\r\n" to buf and returns the result.
func AppendInt(buf []byte, n int64) []byte {
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, n, 10)
	return append(buf, CRLF...)
}

// AppendBulkString appends "$<len(arg)>\r\n<arg>\r\n" to buf and returns
// the result. A nil arg is encoded as the null-bulk reply, matching the
// teacher's BulkReply.ToBytes convention (nil Arg -> "$-1\r\n").
func AppendBulkString(buf []byte, arg []byte) []byte {
	if arg == nil {
		return append(buf, nullBulk...)
	}
	buf = append(buf, '$')
	buf = strconv.AppendInt(buf, int64(len(arg)), 10)
	buf = append(buf, CRLF...)
	buf = append(buf, arg...)
	return append(buf, CRLF...)
}

// AppendNullBulk appends the null-bulk reply ("$-1\r\n") to buf.
func AppendNullBulk(buf []byte) []byte {
	return append(buf, nullBulk...)
}

// AppendArrayHeader appends "*<count>\r\n" to buf; the caller is
// responsible for following it with exactly count encoded values, the
// same contract the teacher's MultiBulkReply.ToBytes implements for a
// flat array of bulk strings.
func AppendArrayHeader(buf []byte, count int) []byte {
	buf = append(buf, '*')
	buf = strconv.AppendInt(buf, int64(count), 10)
	return append(buf, CRLF...)
}

// IsError reports whether an encoded reply is an error frame, mirroring
// the teacher's IsErrorReply helper (kept here so command-dispatch tests
// can assert on "-ERR ..." replies without hardcoding the byte index).
func IsError(reply []byte) bool {
	return len(reply) > 0 && reply[0] == '-'
}

// IsOK reports whether an encoded reply is exactly the "+OK\r\n" status,
// the direct analogue of the teacher's IsOKReply.
func IsOK(reply []byte) bool {
	return bytes.Equal(reply, []byte("+OK"+CRLF))
}
