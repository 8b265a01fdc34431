package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/lockiemedia/lockie/internal/storage"
)

const testKey = "secret-key"

func setupTestServer(t *testing.T) (*Server, *storage.SQLiteStore) {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv, err := New(store, zap.NewNop(), Config{APIKey: testKey})
	require.NoError(t, err)
	return srv, store
}

func do(t *testing.T, srv *Server, method, path, key, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(api.DefaultKeyHeader, key)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	store, err := storage.NewSQLiteStore(":memory:", nil)
	require.NoError(t, err)
	defer store.Close()

	t.Run("requires an api key", func(t *testing.T) {
		_, err := New(store, nil, Config{})
		assert.Error(t, err)
	})

	t.Run("requires a store", func(t *testing.T) {
		_, err := New(nil, nil, Config{APIKey: testKey})
		assert.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		srv, err := New(store, nil, Config{APIKey: testKey})
		require.NoError(t, err)
		assert.Equal(t, ":8080", srv.config.Listen)
		assert.Equal(t, "/api/data", srv.config.DataPath)
		assert.Equal(t, "X-API-Key", srv.config.KeyHeader)
	})
}

func TestHealthIsUnauthenticated(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := do(t, srv, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.LastSave)
}

func TestDataRequiresKey(t *testing.T) {
	srv, _ := setupTestServer(t)

	for _, key := range []string{"", "wrong"} {
		rec := do(t, srv, http.MethodGet, "/api/data", key, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "key %q", key)

		rec = do(t, srv, http.MethodPost, "/api/data", key, `{"tasks":[]}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "key %q", key)
	}
}

func TestSaveThenGet(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/data", testKey,
		`{"tasks":[{"id":1,"text":"Buy milk"}],"userPreferences":{"theme":"dark"},"bogus":[1]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Data saved successfully"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(api.RequestIDHeader))

	rec = do(t, srv, http.MethodPost, "/api/data", testKey, `{"projects":[{"id":0,"name":"No Project"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/data", testKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"tasks":[{"id":1,"text":"Buy milk"}],
		"userPreferences":{"theme":"dark"},
		"projects":[{"id":0,"name":"No Project"}]
	}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/health", "", "")
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.NotNil(t, health.LastSave)
}

func TestSaveRejectsBadShapes(t *testing.T) {
	srv, _ := setupTestServer(t)

	for _, body := range []string{
		`not json`,
		`[1,2,3]`,
		`{"tasks":{"id":1}}`,
		`{"userProfile":[]}`,
		`{"notes":null}`,
	} {
		rec := do(t, srv, http.MethodPost, "/api/data", testKey, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestSaveSubtasks(t *testing.T) {
	srv, store := setupTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/data/dev_tickets/7/subtasks", testKey,
		`{"subtasks":[{"id":1,"title":"write tests"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"ticket_id":7,"title":"write tests"}]`, string(data[api.CollectionDevSubtasks]))
}

func TestClientAgainstServer(t *testing.T) {
	srv, _ := setupTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := api.NewClient(ts.URL, testKey)
	ctx := context.Background()

	snap := api.NewSnapshot()
	snap.Tasks = []api.Task{{ID: "1", Text: "Buy milk", DueDate: "2024-05-02", ProjectID: api.NoProjectID}}
	snap.Projects = []api.Project{{ID: api.NoProjectID, Name: api.NoProjectName}}
	require.NoError(t, client.SaveSnapshot(ctx, snap))
	require.NoError(t, client.SaveTicketSubtasks(ctx, "3", []api.Record{{"id": 1.0, "title": "sub"}}))

	got, err := client.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Tasks, got.Tasks)
	assert.Equal(t, snap.Projects, got.Projects)
	require.Len(t, got.DevSubtasks, 1)
	assert.Equal(t, api.ID("3"), api.IDOf(got.DevSubtasks[0]["ticket_id"]))

	bad := api.NewClient(ts.URL, "wrong")
	_, err = bad.GetSnapshot(ctx)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestGetDataEmpty(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/data", testKey, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}
