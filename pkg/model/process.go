package model

// RawSocket is one LISTEN socket as reported by the OS, before any
// enrichment. The same (PID, Port) pair may appear more than once when a
// process holds multiple descriptors for the same listening socket.
type RawSocket struct {
	PID     int
	Port    int
	Command string
}

// WorkspaceMeta is what the metadata resolver can learn about a process
// from its working directory. Blank fields mean "unknown"; sentinel
// substitution happens later, in the pipeline.
type WorkspaceMeta struct {
	WorkingDir string
	Project    string
	Workspace  string
	Branch     string
}

// ProcessEntry is one logical dev server: a deduplicated (pid, port) pair
// with everything we know about it. Entries live for the duration of one
// enumeration cycle and are never persisted.
type ProcessEntry struct {
	PID              int     `json:"pid"`
	Port             int     `json:"port"`
	Command          string  `json:"command"`
	WorkingDirectory string  `json:"workingDirectory"`
	Project          string  `json:"project"`
	Workspace        string  `json:"workspace"`
	Branch           string  `json:"branch"`
	TrackerID        *string `json:"trackerId"`
	TrackerState     *string `json:"trackerState"`
}
