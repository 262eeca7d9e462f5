package model

// Workspace states as stored by the tracker. Archived workspaces are
// filtered out at query time and never reach a snapshot.
const (
	WorkspaceActive       = "active"
	WorkspaceInitializing = "initializing"
	WorkspaceArchived     = "archived"
)

// WorkspaceRecord is one row from the external workspace tracker,
// keyed by the checkout's directory name.
type WorkspaceRecord struct {
	ID            string
	DirectoryName string
	State         string
}
