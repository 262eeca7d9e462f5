// Package pipeline turns raw listening-socket tuples into the deduplicated,
// enriched, port-ordered entry list served by the API.
package pipeline

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/wesoudshoorn/locohost/internal/logger"
	"github.com/wesoudshoorn/locohost/pkg/model"
)

// Sentinel values applied when enrichment comes up empty.
const (
	UnknownProject = "Unknown"
	NoneSentinel   = "-"
)

// maxCommandLen bounds the command name to its display width.
const maxCommandLen = 20

// defaultConcurrency caps how many per-process resolutions run at once.
// Each resolution can shell out, so this also caps spawned subprocesses.
const defaultConcurrency = 8

// SocketLister enumerates LISTEN sockets on local addresses.
type SocketLister interface {
	ListListeningSockets(ctx context.Context) []model.RawSocket
}

// MetadataResolver derives workspace metadata for one pid.
type MetadataResolver interface {
	Resolve(ctx context.Context, pid int) model.WorkspaceMeta
}

// TrackerStore takes one snapshot of the external workspace tracker.
// A nil snapshot means the tracker is unavailable.
type TrackerStore interface {
	Snapshot(ctx context.Context) map[string]model.WorkspaceRecord
}

// ListerFunc adapts a plain function to SocketLister.
type ListerFunc func(ctx context.Context) []model.RawSocket

func (f ListerFunc) ListListeningSockets(ctx context.Context) []model.RawSocket {
	return f(ctx)
}

// Pipeline runs one enumeration cycle per call. It keeps no state between
// cycles: the tracker snapshot is captured fresh each time and entries are
// never cached.
type Pipeline struct {
	lister      SocketLister
	resolver    MetadataResolver
	tracker     TrackerStore
	concurrency int
}

func New(lister SocketLister, resolver MetadataResolver, tracker TrackerStore) *Pipeline {
	return &Pipeline{
		lister:      lister,
		resolver:    resolver,
		tracker:     tracker,
		concurrency: defaultConcurrency,
	}
}

// Enumerate produces the entry list for one cycle, sorted ascending by
// port. It never fails: per-process trouble degrades that entry to
// sentinel defaults, and total enumeration failure yields an empty list.
func (p *Pipeline) Enumerate(ctx context.Context) []model.ProcessEntry {
	var snapshot map[string]model.WorkspaceRecord
	if p.tracker != nil {
		snapshot = p.tracker.Snapshot(ctx)
	}

	raw := p.lister.ListListeningSockets(ctx)
	if len(raw) == 0 {
		logger.Debug("pipeline: socket enumeration returned no listeners")
		return []model.ProcessEntry{}
	}

	// Collapse duplicate descriptors for the same listening socket.
	// First occurrence wins.
	type identity struct{ pid, port int }
	seen := make(map[identity]bool, len(raw))
	unique := raw[:0:0]
	for _, rs := range raw {
		key := identity{rs.PID, rs.Port}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, rs)
	}

	// Per-process resolutions are independent: each slot is written by
	// exactly one goroutine and the snapshot is read-only, so the only
	// synchronization needed is the group wait.
	entries := make([]model.ProcessEntry, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, rs := range unique {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("pipeline: resolving pid %d: %v", rs.PID, r)
					entries[i] = finalize(rs, model.WorkspaceMeta{}, nil)
				}
			}()
			meta := p.resolver.Resolve(gctx, rs.PID)
			entries[i] = finalize(rs, meta, snapshot)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Port < entries[j].Port
	})
	return entries
}

// finalize merges one raw socket with its metadata and the cycle's tracker
// snapshot, then applies the display sentinels.
func finalize(rs model.RawSocket, meta model.WorkspaceMeta, snapshot map[string]model.WorkspaceRecord) model.ProcessEntry {
	entry := model.ProcessEntry{
		PID:              rs.PID,
		Port:             rs.Port,
		Command:          truncate(rs.Command, maxCommandLen),
		WorkingDirectory: meta.WorkingDir,
		Project:          meta.Project,
		Workspace:        meta.Workspace,
		Branch:           meta.Branch,
	}

	// Tracker data only applies to checkouts that matched the workspace
	// path pattern; the record is keyed by the project directory name.
	if meta.Workspace != "" && snapshot != nil {
		if rec, ok := snapshot[meta.Project]; ok {
			id, state := rec.ID, rec.State
			entry.TrackerID = &id
			entry.TrackerState = &state
		}
	}

	if entry.Project == "" {
		entry.Project = UnknownProject
	}
	if entry.Workspace == "" {
		entry.Workspace = NoneSentinel
	}
	if entry.Branch == "" {
		entry.Branch = NoneSentinel
	}
	return entry
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
