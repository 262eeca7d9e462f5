package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHexAddr(t *testing.T) {
	for name, tc := range map[string]struct {
		raw  string
		ipv6 bool
		addr string
		port int
	}{
		"ipv4 loopback":  {"0100007F:1F90", false, "127.0.0.1", 8080},
		"ipv4 wildcard":  {"00000000:0050", false, "0.0.0.0", 80},
		"ipv4 lan":       {"0501A8C0:0BB8", false, "192.168.1.5", 3000},
		"ipv6 loopback":  {"00000000000000000000000001000000:0BB8", true, "::1", 3000},
		"ipv6 wildcard":  {"00000000000000000000000000000000:1F90", true, "::", 8080},
		"missing port":   {"0100007F", false, "", 0},
		"malformed port": {"0100007F:ZZZZ", false, "", 0},
	} {
		t.Run(name, func(t *testing.T) {
			addr, port := decodeHexAddr(tc.raw, tc.ipv6)
			assert.Equal(t, tc.addr, addr)
			assert.Equal(t, tc.port, port)
		})
	}
}

func TestParseProcNetTCP(t *testing.T) {
	out := `  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 0100007F:0BB8 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 123456 1 0000000000000000 100 0 0 10 0
   1: 0100007F:0BB9 00000000:0000 01 00000000:00000000 00:00000000 00000000  1000        0 123457 1 0000000000000000 100 0 0 10 0
   2: 0501A8C0:1F90 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 123458 1 0000000000000000 100 0 0 10 0
   3: 00000000:1538 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 123459 1 0000000000000000 100 0 0 10 0
   short line
`
	sockets := make(map[string]tcpSocket)
	parseProcNetTCP(out, false, sockets)
	require.Len(t, sockets, 2)

	// loopback LISTEN socket
	s, ok := sockets["123456"]
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1", s.Address)
	assert.Equal(t, 3000, s.Port)

	// wildcard LISTEN socket
	s, ok = sockets["123459"]
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0", s.Address)
	assert.Equal(t, 5432, s.Port)

	// 123457 is ESTABLISHED, 123458 is bound to a LAN address
	_, ok = sockets["123457"]
	assert.False(t, ok)
	_, ok = sockets["123458"]
	assert.False(t, ok)
}
