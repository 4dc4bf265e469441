package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, Entry{
		Project:  "greenford",
		RunTitle: "baseline",
		Model:    "climate",
		Duration: 1500 * time.Millisecond,
		Outputs:  "greenford_baseline_climate.tif",
	}))
	require.NoError(t, s.Record(ctx, Entry{
		Project:  "greenford",
		RunTitle: "baseline",
		Model:    "pollination",
		Duration: 900 * time.Millisecond,
	}))

	entries, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	models := []string{entries[0].Model, entries[1].Model}
	assert.ElementsMatch(t, []string{"climate", "pollination"}, models)
}

func TestRecordUpsertsByModelKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, Entry{Project: "p", RunTitle: "r", Model: "climate", Duration: time.Second}))
	require.NoError(t, s.Record(ctx, Entry{Project: "p", RunTitle: "r", Model: "climate", Duration: 2 * time.Second}))

	entries, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2*time.Second, entries[0].Duration)
}

func TestListEmpty(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
