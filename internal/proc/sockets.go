// Package proc discovers listening TCP sockets and their owning processes.
// The OS-facing pieces are split per platform; everything here is pure
// parsing shared by both implementations and by tests.
package proc

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// execTimeout bounds every external tool invocation so a wedged lsof or
// netstat stalls one call, not the whole server.
const execTimeout = 3 * time.Second

func runTool(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()
	return exec.CommandContext(ctx, name, args...).Output()
}

// isLocalAddress reports whether a textual address is loopback, wildcard,
// or literal localhost. Anything else is a socket we don't care about.
func isLocalAddress(addr string) bool {
	switch addr {
	case "", "*", "0.0.0.0", "::", "::1", "localhost":
		return true
	}
	return strings.HasPrefix(addr, "127.")
}

// splitHostPort splits on the last separator so IPv6 colons survive.
// Returns ok=false when there is no trailing port.
func splitHostPort(s string, sep byte) (host string, port int, ok bool) {
	i := strings.LastIndexByte(s, sep)
	if i < 0 {
		return "", 0, false
	}
	p, err := strconv.Atoi(s[i+1:])
	if err != nil || p <= 0 {
		return "", 0, false
	}
	return s[:i], p, true
}

// parseLsofListeners parses `lsof -iTCP -sTCP:LISTEN -n -P` output.
// Malformed lines are skipped, never an error.
func parseLsofListeners(out string) []listener {
	var listeners []listener
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		// COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME
		if len(fields) < 9 {
			continue
		}
		pid, err := strconv.Atoi(fields[1])
		if err != nil || pid <= 0 {
			continue
		}
		host, port, ok := splitHostPort(fields[8], ':')
		if !ok {
			continue
		}
		// lsof prints IPv6 hosts in brackets
		host = strings.Trim(host, "[]")
		if !isLocalAddress(host) {
			continue
		}
		listeners = append(listeners, listener{
			PID:     pid,
			Port:    port,
			Command: fields[0],
		})
	}
	return listeners
}

// parseNetstatListeners parses `netstat -anv -p tcp` output, the fallback
// when lsof is unavailable. netstat separates address and port with a dot.
func parseNetstatListeners(out string) []listener {
	var listeners []listener
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "LISTEN") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 9 {
			continue
		}
		host, port, ok := splitHostPort(fields[3], '.')
		if !ok {
			continue
		}
		if !isLocalAddress(host) {
			continue
		}
		pid, err := strconv.Atoi(fields[8])
		if err != nil || pid <= 0 {
			continue
		}
		listeners = append(listeners, listener{PID: pid, Port: port})
	}
	return listeners
}

type listener struct {
	PID     int
	Port    int
	Command string
}

func trimFirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
