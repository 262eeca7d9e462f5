package proc

import "strings"

// parseLsofCwd parses `lsof -a -p <pid> -d cwd -F n` field output: each
// line is a one-letter field tag followed by its value, and the n field
// carries the directory path.
func parseLsofCwd(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if len(line) > 1 && line[0] == 'n' {
			return strings.TrimSpace(line[1:])
		}
	}
	return ""
}

// parseLsofCwdColumns parses plain `lsof -p <pid> -d cwd` column output,
// the fallback for lsof builds without -F support. The path is the last
// column of the cwd row.
func parseLsofCwdColumns(out string) string {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 9 {
			continue
		}
		if fields[3] == "cwd" {
			return fields[len(fields)-1]
		}
	}
	return ""
}
