package proc

import (
	"bufio"
	"encoding/hex"
	"net"
	"strconv"
	"strings"
)

// tcpListenState is the LISTEN value of the st column in /proc/net/tcp.
const tcpListenState = "0A"

type tcpSocket struct {
	Address string
	Port    int
	Inode   string
}

// parseProcNetTCP scans one /proc/net/tcp or /proc/net/tcp6 table and
// returns the LISTEN sockets bound to a local address, keyed by socket
// inode. Short or malformed lines are skipped.
func parseProcNetTCP(out string, ipv6 bool, into map[string]tcpSocket) {
	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Scan() // header

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}
		if fields[3] != tcpListenState {
			continue
		}
		addr, port := decodeHexAddr(fields[1], ipv6)
		if port == 0 || !isLocalAddress(addr) {
			continue
		}
		into[fields[9]] = tcpSocket{Address: addr, Port: port, Inode: fields[9]}
	}
}

// decodeHexAddr decodes the kernel's HEXIP:HEXPORT notation. IPv4 is a
// single little-endian word; IPv6 is four little-endian 32-bit groups.
func decodeHexAddr(raw string, ipv6 bool) (string, int) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return "", 0
	}
	port, err := strconv.ParseInt(parts[1], 16, 32)
	if err != nil {
		return "", 0
	}

	b, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", int(port)
	}

	if ipv6 {
		if len(b) != 16 {
			return "", int(port)
		}
		ip := make(net.IP, 16)
		for i := 0; i < 4; i++ {
			ip[i*4+0] = b[i*4+3]
			ip[i*4+1] = b[i*4+2]
			ip[i*4+2] = b[i*4+1]
			ip[i*4+3] = b[i*4+0]
		}
		return ip.String(), int(port)
	}

	if len(b) < 4 {
		return "", int(port)
	}
	return strconv.Itoa(int(b[3])) + "." +
		strconv.Itoa(int(b[2])) + "." +
		strconv.Itoa(int(b[1])) + "." +
		strconv.Itoa(int(b[0])), int(port)
}
