package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nanokv/nanokv/redis/protocol"
)

func TestAppendSimpleString(t *testing.T) {
	assert.Equal(t, "+OK\r\n", string(protocol.AppendSimpleString(nil, "OK")))
}

func TestAppendError(t *testing.T) {
	got := protocol.AppendError(nil, "ERR unknown command")
	assert.Equal(t, "-ERR unknown command\r\n", string(got))
	assert.True(t, protocol.IsError(got))
}

func TestAppendInt(t *testing.T) {
	assert.Equal(t, ":1000\r\n", string(protocol.AppendInt(nil, 1000)))
	assert.Equal(t, ":-1\r\n", string(protocol.AppendInt(nil, -1)))
}

func TestAppendBulkString(t *testing.T) {
	assert.Equal(t, "$5\r\nhello\r\n", string(protocol.AppendBulkString(nil, []byte("hello"))))
	assert.Equal(t, "$0\r\n\r\n", string(protocol.AppendBulkString(nil, []byte{})))
	assert.Equal(t, "$-1\r\n", string(protocol.AppendBulkString(nil, nil)))
}

func TestAppendNullBulk(t *testing.T) {
	assert.Equal(t, "$-1\r\n", string(protocol.AppendNullBulk(nil)))
}

func TestAppendArrayHeader(t *testing.T) {
	assert.Equal(t, "*0\r\n", string(protocol.AppendArrayHeader(nil, 0)))
	assert.Equal(t, "*2\r\n", string(protocol.AppendArrayHeader(nil, 2)))
}

func TestAppendChaining(t *testing.T) {
	var buf []byte
	buf = protocol.AppendSimpleString(buf, "OK")
	buf = protocol.AppendBulkString(buf, []byte("val"))
	assert.Equal(t, "+OK\r\n$3\r\nval\r\n", string(buf))
}

func TestIsOK(t *testing.T) {
	assert.True(t, protocol.IsOK(protocol.AppendSimpleString(nil, "OK")))
	assert.False(t, protocol.IsOK(protocol.AppendSimpleString(nil, "PONG")))
}
