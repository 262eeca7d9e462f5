//go:build darwin

package proc

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/wesoudshoorn/locohost/pkg/model"
)

// ListListeningSockets enumerates LISTEN TCP sockets on local addresses
// via lsof, falling back to netstat when lsof is unavailable. Tool failure
// yields an empty result, never an error.
func ListListeningSockets(ctx context.Context) []model.RawSocket {
	// -n / -P skip hostname and port-name resolution, keeping output
	// parseable and fast.
	out, err := runTool(ctx, "lsof", "-iTCP", "-sTCP:LISTEN", "-n", "-P")
	if err == nil {
		return rawSockets(parseLsofListeners(string(out)), nil)
	}

	out, err = runTool(ctx, "netstat", "-anv", "-p", "tcp")
	if err != nil {
		return nil
	}
	listeners := parseNetstatListeners(string(out))

	// netstat has no command column; fill it in with one ps call per pid.
	names := make(map[int]string)
	for _, l := range listeners {
		if _, ok := names[l.PID]; ok {
			continue
		}
		names[l.PID] = commandName(ctx, l.PID)
	}
	return rawSockets(listeners, names)
}

func rawSockets(listeners []listener, names map[int]string) []model.RawSocket {
	raw := make([]model.RawSocket, 0, len(listeners))
	for _, l := range listeners {
		cmd := l.Command
		if cmd == "" && names != nil {
			cmd = names[l.PID]
		}
		raw = append(raw, model.RawSocket{PID: l.PID, Port: l.Port, Command: cmd})
	}
	return raw
}

func commandName(ctx context.Context, pid int) string {
	out, err := runTool(ctx, "ps", "-p", strconv.Itoa(pid), "-o", "comm=")
	if err != nil {
		return ""
	}
	name := trimFirstLine(string(out))
	if name == "" {
		return ""
	}
	// ps prints the full executable path; keep the base name like lsof does.
	return filepath.Base(name)
}
