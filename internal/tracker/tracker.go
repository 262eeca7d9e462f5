// Package tracker reads workspace id/state records out of the workspace
// tool's SQLite database. The database is optional infrastructure: absence
// or any read failure degrades to "no tracker data" and the rest of the
// system carries on.
package tracker

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wesoudshoorn/locohost/internal/logger"
	"github.com/wesoudshoorn/locohost/pkg/model"
)

// Store reads one snapshot of the tracker database per enumeration cycle.
// It holds no long-lived state: every Snapshot call opens, queries, and
// closes the database.
type Store struct {
	dbPath string
}

func NewStore(dbPath string) *Store {
	if dbPath == "" {
		dbPath = DefaultPath()
	}
	return &Store{dbPath: dbPath}
}

// DefaultPath is the workspace tool's database location by platform
// convention.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Conductor", "conductor.db")
	}
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "conductor", "conductor.db")
}

// Snapshot returns all non-archived workspace records keyed by directory
// name, or nil when the database is absent or unreadable. Callers must
// treat nil as "tracker unavailable", not as an error.
func (s *Store) Snapshot(ctx context.Context) map[string]model.WorkspaceRecord {
	if s.dbPath == "" {
		return nil
	}
	if _, err := os.Stat(s.dbPath); err != nil {
		return nil
	}

	db, err := sql.Open("sqlite3", "file:"+s.dbPath+"?mode=ro")
	if err != nil {
		logger.Debug("tracker: open %s: %v", s.dbPath, err)
		return nil
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT id, directory_name, state FROM workspaces WHERE state != ?`,
		model.WorkspaceArchived)
	if err != nil {
		logger.Debug("tracker: query: %v", err)
		return nil
	}
	defer rows.Close()

	records := make(map[string]model.WorkspaceRecord)
	for rows.Next() {
		var rec model.WorkspaceRecord
		if err := rows.Scan(&rec.ID, &rec.DirectoryName, &rec.State); err != nil {
			logger.Debug("tracker: scan: %v", err)
			return nil
		}
		records[rec.DirectoryName] = rec
	}
	if err := rows.Err(); err != nil {
		logger.Debug("tracker: rows: %v", err)
		return nil
	}
	return records
}
