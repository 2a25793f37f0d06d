package checkpoint

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/coda/internal/graph"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "coda.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	state := &graph.State{HistoryMessages: []graph.Message{
		{Role: graph.RoleUser, Content: "rename add to sum"},
		{Role: graph.RoleAssistant, Content: "Done."},
	}}

	id := NewThreadID()
	require.NoError(t, s.Save(ctx, id, state))

	loaded, err := s.Load(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.HistoryMessages, 2)
	assert.Equal(t, graph.RoleUser, loaded.HistoryMessages[0].Role)
	assert.Equal(t, "Done.", loaded.HistoryMessages[1].Content)
	assert.Empty(t, loaded.ScratchMessages, "only history is checkpointed")
}

func TestLoadMissingThread(t *testing.T) {
	s := newStore(t)

	loaded, err := s.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSaveOverwritesThread(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	id := NewThreadID()

	require.NoError(t, s.Save(ctx, id, &graph.State{HistoryMessages: []graph.Message{
		{Role: graph.RoleUser, Content: "one"},
	}}))
	require.NoError(t, s.Save(ctx, id, &graph.State{HistoryMessages: []graph.Message{
		{Role: graph.RoleUser, Content: "one"},
		{Role: graph.RoleAssistant, Content: "two"},
	}}))

	loaded, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, loaded.HistoryMessages, 2)
}

func TestListAndDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first := NewThreadID()
	second := NewThreadID()
	require.NoError(t, s.Save(ctx, first, &graph.State{}))
	require.NoError(t, s.Save(ctx, second, &graph.State{HistoryMessages: []graph.Message{
		{Role: graph.RoleUser, Content: "hi"},
	}}))

	threads, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	require.NoError(t, s.Delete(ctx, first))
	threads, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, second, threads[0].ID)
	assert.Equal(t, 1, threads[0].MessageCount)
}

func TestNewThreadID(t *testing.T) {
	a := NewThreadID()
	b := NewThreadID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
