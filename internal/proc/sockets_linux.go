//go:build linux

package proc

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wesoudshoorn/locohost/pkg/model"
)

// ListListeningSockets enumerates LISTEN TCP sockets on local addresses by
// reading the kernel socket tables and mapping socket inodes back to the
// owning pid through /proc/<pid>/fd. Failure at any point degrades to
// fewer (or zero) results, never an error.
func ListListeningSockets(ctx context.Context) []model.RawSocket {
	sockets := make(map[string]tcpSocket)
	for _, f := range []struct {
		path string
		ipv6 bool
	}{
		{"/proc/net/tcp", false},
		{"/proc/net/tcp6", true},
	} {
		data, err := os.ReadFile(f.path)
		if err != nil {
			continue
		}
		parseProcNetTCP(string(data), f.ipv6, sockets)
	}
	if len(sockets) == 0 {
		return nil
	}

	var raw []model.RawSocket
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		for _, inode := range socketInodes(pid) {
			s, ok := sockets[inode]
			if !ok {
				continue
			}
			raw = append(raw, model.RawSocket{
				PID:     pid,
				Port:    s.Port,
				Command: commandName(pid),
			})
		}
	}
	return raw
}

// socketInodes returns the socket inodes held open by a pid. Processes we
// can't inspect (permissions, already gone) contribute nothing.
func socketInodes(pid int) []string {
	fdDir := filepath.Join("/proc", strconv.Itoa(pid), "fd")
	fds, err := os.ReadDir(fdDir)
	if err != nil {
		return nil
	}

	var inodes []string
	for _, fd := range fds {
		link, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
		if err != nil {
			continue
		}
		if strings.HasPrefix(link, "socket:[") {
			inodes = append(inodes, strings.TrimSuffix(strings.TrimPrefix(link, "socket:["), "]"))
		}
	}
	return inodes
}

func commandName(pid int) string {
	comm, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "comm"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(comm))
}
