//go:build darwin

package proc

import (
	"context"
	"strconv"
)

// WorkingDir returns a process's current working directory, or "" when it
// cannot be determined. Field output is tried first; the plain column
// syntax covers lsof builds where -F misbehaves.
func WorkingDir(ctx context.Context, pid int) string {
	out, err := runTool(ctx, "lsof", "-a", "-p", strconv.Itoa(pid), "-d", "cwd", "-F", "n")
	if err == nil {
		if cwd := parseLsofCwd(string(out)); cwd != "" {
			return cwd
		}
	}

	out, err = runTool(ctx, "lsof", "-p", strconv.Itoa(pid), "-d", "cwd")
	if err != nil {
		return ""
	}
	return parseLsofCwdColumns(string(out))
}
