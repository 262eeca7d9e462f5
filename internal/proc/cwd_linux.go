//go:build linux

package proc

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
)

// WorkingDir returns a process's current working directory, or "" when it
// cannot be determined. The /proc symlink is authoritative; lsof is the
// fallback for pids whose /proc entry we cannot read.
func WorkingDir(ctx context.Context, pid int) string {
	cwd, err := os.Readlink(filepath.Join("/proc", strconv.Itoa(pid), "cwd"))
	if err == nil {
		return cwd
	}

	out, err := runTool(ctx, "lsof", "-a", "-p", strconv.Itoa(pid), "-d", "cwd", "-F", "n")
	if err != nil {
		return ""
	}
	return parseLsofCwd(string(out))
}
