package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStoreAppliesMigrations(t *testing.T) {
	s := newTestStore(t)

	version, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockie.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "req-1", map[string]json.RawMessage{
		"tasks": json.RawMessage(`[{"id":1,"text":"Buy milk"}]`),
	}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path, nil)
	require.NoError(t, err)
	defer s.Close()

	version, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"text":"Buy milk"}]`, string(data["tasks"]))
}

func TestSaveMergesCollections(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, s.Save(ctx, "req-1", map[string]json.RawMessage{
		"tasks":    json.RawMessage(`[{"id":1}]`),
		"projects": json.RawMessage(`[{"id":0,"name":"No Project"}]`),
	}))
	require.NoError(t, s.Save(ctx, "req-2", map[string]json.RawMessage{
		"tasks": json.RawMessage(`[{"id":1},{"id":2}]`),
	}))

	data, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, data, 2)
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, string(data["tasks"]))
	assert.JSONEq(t, `[{"id":0,"name":"No Project"}]`, string(data["projects"]))

	last, err := s.LastSave(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "req-2", last.RequestID)
	assert.Equal(t, []string{"tasks"}, last.Collections)
	assert.False(t, last.SavedAt.IsZero())
}

func TestLastSaveEmpty(t *testing.T) {
	s := newTestStore(t)

	last, err := s.LastSave(context.Background())
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestReplaceTicketSubtasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "", map[string]json.RawMessage{
		api.CollectionDevSubtasks: json.RawMessage(`[
			{"id":1,"ticket_id":7,"title":"old"},
			{"id":2,"ticket_id":8,"title":"keep"}
		]`),
	}))

	require.NoError(t, s.ReplaceTicketSubtasks(ctx, "req-3", "7", []api.Record{
		{"id": 3.0, "title": "new"},
		{"id": 4.0, "title": "newer"},
	}))

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":2,"ticket_id":8,"title":"keep"},
		{"id":3,"ticket_id":7,"title":"new"},
		{"id":4,"ticket_id":7,"title":"newer"}
	]`, string(data[api.CollectionDevSubtasks]))

	last, err := s.LastSave(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-3", last.RequestID)
	assert.Equal(t, []string{api.CollectionDevSubtasks}, last.Collections)
}

func TestReplaceTicketSubtasksWithoutExistingRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceTicketSubtasks(ctx, "", "abc", []api.Record{{"title": "first"}}))

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"ticket_id":"abc","title":"first"}]`, string(data[api.CollectionDevSubtasks]))
}

func TestReplaceTicketSubtasksRequiresTicket(t *testing.T) {
	s := newTestStore(t)
	err := s.ReplaceTicketSubtasks(context.Background(), "", "", nil)
	assert.ErrorIs(t, err, ErrEmptyTicketID)
}
