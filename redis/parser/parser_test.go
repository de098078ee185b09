package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanokv/nanokv/redis/parser"
)

func TestTryParse_FullCommand(t *testing.T) {
	p := parser.New(parser.DefaultLimits)
	buf := []byte("*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$3\r\nval\r\n")

	n, cmd, ok := p.TryParse(buf)
	require.True(t, ok)
	assert.Equal(t, len(buf), n)
	require.Len(t, cmd.Args, 3)
	assert.Equal(t, "SET", string(cmd.Args[0]))
	assert.Equal(t, "key", string(cmd.Args[1]))
	assert.Equal(t, "val", string(cmd.Args[2]))
}

// Invariant 2: every strict prefix of a valid command must return 0 with
// no progress, never a partial/garbage Command.
func TestTryParse_EveryPrefixIsIncomplete(t *testing.T) {
	full := []byte("*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n")
	p := parser.New(parser.DefaultLimits)

	for i := 1; i < len(full); i++ {
		n, cmd, ok := p.TryParse(full[:i])
		assert.Falsef(t, ok, "prefix of length %d must not parse", i)
		assert.Zerof(t, n, "prefix of length %d must report 0 bytes consumed", i)
		assert.Nilf(t, cmd.Args, "prefix of length %d must yield no tokens", i)
	}

	n, _, ok := p.TryParse(full)
	require.True(t, ok)
	assert.Equal(t, len(full), n)
}

func TestTryParse_ViewsAliasInputBuffer(t *testing.T) {
	p := parser.New(parser.DefaultLimits)
	buf := []byte("*1\r\n$5\r\nhello\r\n")

	_, cmd, ok := p.TryParse(buf)
	require.True(t, ok)
	require.Len(t, cmd.Args, 1)

	// Mutating the backing buffer must be visible through the view —
	// proof that no copy was made.
	buf[8] = 'H'
	assert.Equal(t, "Hello", string(cmd.Args[0]))
}

func TestTryParse_Pipelining(t *testing.T) {
	p := parser.New(parser.DefaultLimits)
	buf := []byte("*1\r\n$4\r\nPING\r\n*1\r\n$4\r\nPING\r\n")

	n1, cmd1, ok := p.TryParse(buf)
	require.True(t, ok)
	assert.Equal(t, "PING", string(cmd1.Args[0]))

	n2, cmd2, ok := p.TryParse(buf[n1:])
	require.True(t, ok)
	assert.Equal(t, "PING", string(cmd2.Args[0]))
	assert.Equal(t, len(buf), n1+n2)
}

func TestTryParse_RejectsNonArrayPrefix(t *testing.T) {
	p := parser.New(parser.DefaultLimits)
	n, _, ok := p.TryParse([]byte("+OK\r\n"))
	assert.False(t, ok)
	assert.Zero(t, n)
}

func TestTryParse_RejectsNegativeCount(t *testing.T) {
	p := parser.New(parser.DefaultLimits)
	n, _, ok := p.TryParse([]byte("*-1\r\n"))
	assert.False(t, ok)
	assert.Zero(t, n)
}

func TestTryParse_RejectsNullBulkInput(t *testing.T) {
	p := parser.New(parser.DefaultLimits)
	n, _, ok := p.TryParse([]byte("*1\r\n$-1\r\n"))
	assert.False(t, ok)
	assert.Zero(t, n)
}

func TestTryParse_EmptyArray(t *testing.T) {
	p := parser.New(parser.DefaultLimits)
	n, cmd, ok := p.TryParse([]byte("*0\r\n"))
	require.True(t, ok)
	assert.Equal(t, 4, n)
	assert.Empty(t, cmd.Args)
}

func TestTryParse_RejectsOversizedHeaders(t *testing.T) {
	p := parser.New(parser.Limits{MaxArgs: 2, MaxBulkBytes: 4})

	n, _, ok := p.TryParse([]byte("*3\r\n$1\r\na\r\n$1\r\nb\r\n$1\r\nc\r\n"))
	assert.False(t, ok, "array count above MaxArgs must be rejected")
	assert.Zero(t, n)

	n, _, ok = p.TryParse([]byte("*1\r\n$10\r\n0123456789\r\n"))
	assert.False(t, ok, "bulk length above MaxBulkBytes must be rejected")
	assert.Zero(t, n)
}

func TestTryParse_SplitAcrossTwoReads(t *testing.T) {
	p := parser.New(parser.DefaultLimits)

	first := []byte("*3\r\n$3\r\nSET\r\n")
	n, _, ok := p.TryParse(first)
	assert.False(t, ok)
	assert.Zero(t, n)

	full := append(append([]byte{}, first...), []byte("$1\r\nk\r\n$1\r\nv\r\n")...)
	n, cmd, ok := p.TryParse(full)
	require.True(t, ok)
	assert.Equal(t, len(full), n)
	assert.Equal(t, []string{"SET", "k", "v"}, toStrings(cmd.Args))
}

func toStrings(views [][]byte) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = string(v)
	}
	return out
}
