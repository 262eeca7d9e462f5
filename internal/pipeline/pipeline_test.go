package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesoudshoorn/locohost/pkg/model"
)

type fakeLister struct {
	sockets []model.RawSocket
}

func (f *fakeLister) ListListeningSockets(_ context.Context) []model.RawSocket {
	return f.sockets
}

type fakeResolver struct {
	meta map[int]model.WorkspaceMeta
}

func (f *fakeResolver) Resolve(_ context.Context, pid int) model.WorkspaceMeta {
	return f.meta[pid]
}

type fakeTracker struct {
	snapshot map[string]model.WorkspaceRecord
}

func (f *fakeTracker) Snapshot(_ context.Context) map[string]model.WorkspaceRecord {
	return f.snapshot
}

func newTestPipeline(sockets []model.RawSocket, meta map[int]model.WorkspaceMeta, snapshot map[string]model.WorkspaceRecord) *Pipeline {
	return New(
		&fakeLister{sockets: sockets},
		&fakeResolver{meta: meta},
		&fakeTracker{snapshot: snapshot},
	)
}

func TestEnumerateDeduplicatesPidPortPairs(t *testing.T) {
	p := newTestPipeline([]model.RawSocket{
		{PID: 100, Port: 3000, Command: "node"},
		{PID: 100, Port: 3000, Command: "node"},
		{PID: 100, Port: 3001, Command: "node"},
		{PID: 200, Port: 3000, Command: "python"},
	}, nil, nil)

	entries := p.Enumerate(context.Background())
	require.Len(t, entries, 3)

	type key struct{ pid, port int }
	seen := make(map[key]int)
	for _, e := range entries {
		seen[key{e.PID, e.Port}]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, "pair %v appeared %d times", k, n)
	}
}

func TestEnumerateSortsByPortAscending(t *testing.T) {
	p := newTestPipeline([]model.RawSocket{
		{PID: 1, Port: 8080},
		{PID: 2, Port: 3000},
		{PID: 3, Port: 5432},
		{PID: 4, Port: 80},
	}, nil, nil)

	entries := p.Enumerate(context.Background())
	require.Len(t, entries, 4)
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Port, entries[i].Port)
	}
}

func TestEnumerateAppliesSentinels(t *testing.T) {
	p := newTestPipeline(
		[]model.RawSocket{{PID: 7, Port: 4000, Command: "ruby"}},
		map[int]model.WorkspaceMeta{7: {}},
		nil,
	)

	entries := p.Enumerate(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, UnknownProject, entries[0].Project)
	assert.Equal(t, NoneSentinel, entries[0].Workspace)
	assert.Equal(t, NoneSentinel, entries[0].Branch)
	assert.Nil(t, entries[0].TrackerID)
	assert.Nil(t, entries[0].TrackerState)
}

func TestEnumerateAttachesTrackerData(t *testing.T) {
	meta := map[int]model.WorkspaceMeta{
		10: {WorkingDir: "/u/conductor/workspaces/ws-1/myapp", Project: "myapp", Workspace: "ws-1", Branch: "main"},
		11: {WorkingDir: "/u/src/other", Project: "other"},
	}
	snapshot := map[string]model.WorkspaceRecord{
		"myapp": {ID: "ws-abc", DirectoryName: "myapp", State: model.WorkspaceActive},
		"other": {ID: "ws-def", DirectoryName: "other", State: model.WorkspaceActive},
	}
	p := newTestPipeline([]model.RawSocket{
		{PID: 10, Port: 3000, Command: "node"},
		{PID: 11, Port: 3001, Command: "node"},
	}, meta, snapshot)

	entries := p.Enumerate(context.Background())
	require.Len(t, entries, 2)

	require.NotNil(t, entries[0].TrackerID)
	assert.Equal(t, "ws-abc", *entries[0].TrackerID)
	require.NotNil(t, entries[0].TrackerState)
	assert.Equal(t, model.WorkspaceActive, *entries[0].TrackerState)

	// pid 11 did not match the workspace path pattern, so tracker data
	// stays null even though a record with its project name exists.
	assert.Nil(t, entries[1].TrackerID)
	assert.Nil(t, entries[1].TrackerState)
}

func TestEnumerateWithoutTrackerStore(t *testing.T) {
	p := New(
		&fakeLister{sockets: []model.RawSocket{{PID: 1, Port: 3000, Command: "node"}}},
		&fakeResolver{meta: map[int]model.WorkspaceMeta{
			1: {WorkingDir: "/u/conductor/workspaces/w/p", Project: "p", Workspace: "w"},
		}},
		nil,
	)

	entries := p.Enumerate(context.Background())
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].TrackerID)
	assert.Nil(t, entries[0].TrackerState)
}

func TestEnumerateEmptyOnNoListeners(t *testing.T) {
	p := newTestPipeline(nil, nil, nil)
	entries := p.Enumerate(context.Background())
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestEnumerateTruncatesCommand(t *testing.T) {
	p := newTestPipeline([]model.RawSocket{
		{PID: 1, Port: 3000, Command: "a-command-name-well-beyond-the-display-width"},
	}, nil, nil)

	entries := p.Enumerate(context.Background())
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Command, maxCommandLen)
}

type panickyResolver struct{}

func (panickyResolver) Resolve(_ context.Context, pid int) model.WorkspaceMeta {
	if pid == 2 {
		panic("resolver blew up")
	}
	return model.WorkspaceMeta{Project: "ok"}
}

func TestEnumerateSurvivesResolverPanic(t *testing.T) {
	p := New(
		&fakeLister{sockets: []model.RawSocket{
			{PID: 1, Port: 3000, Command: "node"},
			{PID: 2, Port: 3001, Command: "node"},
		}},
		panickyResolver{},
		nil,
	)

	entries := p.Enumerate(context.Background())
	require.Len(t, entries, 2)
	assert.Equal(t, "ok", entries[0].Project)
	// the failed process still appears, with defaults
	assert.Equal(t, 2, entries[1].PID)
	assert.Equal(t, UnknownProject, entries[1].Project)
}
