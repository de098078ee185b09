package tcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/nanokv/nanokv/redis/parser"
)

func TestVerbLabel_UppercasesLowercaseVerbs(t *testing.T) {
	cmd := parser.Command{Args: [][]byte{[]byte("set"), []byte("k"), []byte("v")}}
	assert.Equal(t, "SET", verbLabel(cmd))
}

func TestVerbLabel_LeavesUppercaseVerbsUnchanged(t *testing.T) {
	cmd := parser.Command{Args: [][]byte{[]byte("GET"), []byte("k")}}
	assert.Equal(t, "GET", verbLabel(cmd))
}

func TestVerbLabel_EmptyCommand(t *testing.T) {
	assert.Equal(t, "", verbLabel(parser.Command{}))
}

func TestFormatSockaddr_Inet4(t *testing.T) {
	sa := &unix.SockaddrInet4{Port: 51234, Addr: [4]byte{127, 0, 0, 1}}
	assert.Equal(t, "127.0.0.1:51234", formatSockaddr(sa))
}

func TestFormatSockaddr_UnknownFamily(t *testing.T) {
	assert.Equal(t, "unknown", formatSockaddr(&unix.SockaddrUnix{Name: "/tmp/x.sock"}))
}

func TestOrDefaultInt64(t *testing.T) {
	assert.Equal(t, int64(5), orDefaultInt64(0, 5))
	assert.Equal(t, int64(5), orDefaultInt64(-1, 5))
	assert.Equal(t, int64(3), orDefaultInt64(3, 5))
}
