package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kuhul/internal/journal"
	"github.com/roach88/kuhul/internal/state"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleEvents(t *testing.T) []journal.Event {
	t.Helper()
	comp := state.Component{ID: "cmp_1", Type: state.ComponentButton, Props: map[string]any{"text": "OK"}}

	e1, err := journal.NewEvent("evt_1", 1700000000001, "cmd_1", journal.ComponentCreated{Component: comp})
	require.NoError(t, err)
	e2, err := journal.NewEvent("evt_2", 1700000000002, "cmd_2", journal.ThemeChanged{To: state.ThemeDark})
	require.NoError(t, err)
	e3, err := journal.NewEvent("evt_3", 1700000000003, "cmd_3", journal.ExportRequested{Hint: "out.svg"})
	require.NoError(t, err)
	return []journal.Event{e1, e2, e3}
}

func TestOpen_OnDiskIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestReindexAndCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Reindex(ctx, sampleEvents(t)))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestReindex_ReplacesPreviousContents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := sampleEvents(t)

	require.NoError(t, s.Reindex(ctx, events))
	require.NoError(t, s.Reindex(ctx, events[:1]))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestQuery_ReturnsLogOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Reindex(ctx, sampleEvents(t)))

	entries, err := s.Query(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(1), entries[0].Seq)
	assert.Equal(t, "evt_1", entries[0].Event.ID)
	assert.Equal(t, "evt_3", entries[2].Event.ID)
	assert.Equal(t, journal.TypeEvent, entries[0].Event.Type)
}

func TestQuery_FilterByTopic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Reindex(ctx, sampleEvents(t)))

	entries, err := s.Query(ctx, Filter{Topic: "state.changed"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "evt_1", entries[0].Event.ID)
	assert.Equal(t, "evt_2", entries[1].Event.ID)
}

func TestQuery_FilterByCausedBy(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Reindex(ctx, sampleEvents(t)))

	entries, err := s.Query(ctx, Filter{CausedBy: "cmd_2"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "evt_2", entries[0].Event.ID)
}

func TestQuery_Limit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Reindex(ctx, sampleEvents(t)))

	entries, err := s.Query(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestQuery_DataIsCanonical(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Reindex(ctx, sampleEvents(t)))

	entries, err := s.Query(ctx, Filter{CausedBy: "cmd_1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t,
		`{"component":{"id":"cmp_1","props":{"text":"OK"},"type":"button"},"kind":"component.created"}`,
		string(entries[0].Event.Data))
}

func TestQuery_DuplicateEventIDRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := sampleEvents(t)
	events[1].ID = events[0].ID

	err := s.Reindex(ctx, events)
	require.Error(t, err)

	// The failed rebuild must not leave partial contents behind.
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
