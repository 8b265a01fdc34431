package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockServer creates a test HTTP server for mocking API responses.
func mockServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:3000/", "secret")

	assert.Equal(t, "http://localhost:3000", client.baseURL)
	assert.Equal(t, DefaultDataPath, client.dataPath)
	assert.Equal(t, DefaultKeyHeader, client.keyHeader)
	assert.Equal(t, "secret", client.apiKey)

	client = NewClient("http://x", "k", WithDataPath("data"), WithKeyHeader("X-Key"))
	assert.Equal(t, "/data", client.dataPath)
	assert.Equal(t, "X-Key", client.keyHeader)
}

func TestGetSnapshot(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		wantErr    bool
		check      func(t *testing.T, snap *Snapshot, malformed []string)
	}{
		{
			name:       "full snapshot",
			body:       `{"tasks":[{"id":1,"text":"Buy milk","label":"Errands","projectId":0,"completed":false}],"projects":[{"id":0,"name":"No Project"},{"id":"p-2","name":"Home"}],"userPreferences":{"theme":"dark"},"notes":[{"id":7,"title":"n"}]}`,
			statusCode: http.StatusOK,
			check: func(t *testing.T, snap *Snapshot, malformed []string) {
				require.Len(t, snap.Tasks, 1)
				assert.Equal(t, ID("1"), snap.Tasks[0].ID)
				assert.Equal(t, NoProjectID, snap.Tasks[0].ProjectID)
				require.Len(t, snap.Projects, 2)
				assert.Equal(t, ID("p-2"), snap.Projects[1].ID)
				assert.Equal(t, "dark", snap.UserPreferences["theme"])
				require.Len(t, snap.Notes, 1)
				assert.Equal(t, ID("7"), snap.Notes[0].ID())
				assert.Empty(t, malformed)
			},
		},
		{
			name:       "missing collections default to empty",
			body:       `{"tasks":null}`,
			statusCode: http.StatusOK,
			check: func(t *testing.T, snap *Snapshot, malformed []string) {
				assert.NotNil(t, snap.Tasks)
				assert.Empty(t, snap.Tasks)
				assert.NotNil(t, snap.UserProfile)
				assert.NotNil(t, snap.PomodoroSessions)
				assert.Empty(t, malformed)
			},
		},
		{
			name:       "malformed collection is defaulted",
			body:       `{"tasks":{"oops":true},"habits":[{"id":1}]}`,
			statusCode: http.StatusOK,
			check: func(t *testing.T, snap *Snapshot, malformed []string) {
				assert.Empty(t, snap.Tasks)
				assert.Len(t, snap.Habits, 1)
				assert.Equal(t, []string{CollectionTasks}, malformed)
			},
		},
		{
			name:       "unauthorized",
			body:       `{"error":"invalid key"}`,
			statusCode: http.StatusUnauthorized,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mockServer(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, DefaultDataPath, r.URL.Path)
				assert.Equal(t, "test-key", r.Header.Get(DefaultKeyHeader))
				assert.NotEmpty(t, r.Header.Get(RequestIDHeader))

				w.WriteHeader(tt.statusCode)
				io.WriteString(w, tt.body)
			})
			defer server.Close()

			var malformed []string
			client := NewClient(server.URL, "test-key", WithMalformedHandler(func(name string, err error) {
				malformed = append(malformed, name)
			}))

			snap, err := client.GetSnapshot(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsUnauthorized(err))
				return
			}

			require.NoError(t, err)
			tt.check(t, snap, malformed)
		})
	}
}

func TestSaveSnapshot(t *testing.T) {
	t.Run("posts full snapshot", func(t *testing.T) {
		var got map[string]json.RawMessage
		server := mockServer(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode(SaveResponse{Message: "Data saved successfully"})
		})
		defer server.Close()

		snap := NewSnapshot()
		snap.Tasks = append(snap.Tasks, Task{ID: "3", Text: "x", ProjectID: NoProjectID})

		client := NewClient(server.URL, "test-key")
		require.NoError(t, client.SaveSnapshot(context.Background(), snap))

		assert.JSONEq(t, `[{"id":3,"text":"x","completed":false,"projectId":0}]`, string(got[CollectionTasks]))
		assert.Contains(t, got, CollectionPomodoroSessions)
		assert.NotContains(t, got, CollectionDevSubtasks)
	})

	t.Run("non-2xx is a save failure", func(t *testing.T) {
		server := mockServer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		defer server.Close()

		client := NewClient(server.URL, "test-key")
		err := client.SaveSnapshot(context.Background(), NewSnapshot())
		require.Error(t, err)

		apiErr, ok := IsAPIError(err)
		require.True(t, ok)
		assert.True(t, apiErr.IsServerError())
	})
}

func TestSaveTicketSubtasks(t *testing.T) {
	server := mockServer(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/data/dev_tickets/42/subtasks", r.URL.Path)

		var req SubtasksRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Subtasks, 1)

		json.NewEncoder(w).Encode(SaveResponse{Message: "ok"})
	})
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	err := client.SaveTicketSubtasks(context.Background(), "42", []Record{{"id": 1.0, "title": "write tests"}})
	require.NoError(t, err)

	err = client.SaveTicketSubtasks(context.Background(), "", nil)
	assert.Error(t, err)
}
