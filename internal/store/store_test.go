package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/lockiemedia/lockie/internal/events"
	"github.com/lockiemedia/lockie/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeBackend records every call into a log shared with bus subscribers so
// tests can assert ordering between saves and publishes.
type fakeBackend struct {
	mu           sync.Mutex
	snapshot     *api.Snapshot
	loadErr      error
	saveErr      error
	saves        []*api.Snapshot
	subtaskSaves map[api.ID][]api.Record
	log          *[]string
}

func (f *fakeBackend) GetSnapshot(ctx context.Context) (*api.Snapshot, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.snapshot == nil {
		return api.NewSnapshot(), nil
	}
	return f.snapshot.Clone(), nil
}

func (f *fakeBackend) SaveSnapshot(ctx context.Context, snap *api.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, snap)
	if f.log != nil {
		*f.log = append(*f.log, "save")
	}
	return f.saveErr
}

func (f *fakeBackend) SaveTicketSubtasks(ctx context.Context, ticketID api.ID, subtasks []api.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subtaskSaves == nil {
		f.subtaskSaves = make(map[api.ID][]api.Record)
	}
	f.subtaskSaves[ticketID] = subtasks
	if f.log != nil {
		*f.log = append(*f.log, "save-subtasks")
	}
	return f.saveErr
}

type harness struct {
	store    *Store
	backend  *fakeBackend
	notifier *notify.Recorder
	log      []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{notifier: &notify.Recorder{}}
	h.backend = &fakeBackend{log: &h.log}

	bus := events.NewBus()
	bus.SubscribeAll(func(k events.Kind) {
		h.log = append(h.log, k.String())
	})

	h.store = New(h.backend, bus, h.notifier, zap.NewNop())
	return h
}

func (h *harness) count(entry string) int {
	n := 0
	for _, e := range h.log {
		if e == entry {
			n++
		}
	}
	return n
}

func TestNewStoreDefaults(t *testing.T) {
	s := New(&fakeBackend{}, nil, nil, nil)

	assert.Empty(t, s.Tasks())
	assert.Equal(t, []api.Project{{ID: api.NoProjectID, Name: api.NoProjectName}}, s.Projects())
	assert.Empty(t, s.UniqueProjects())
	assert.Empty(t, s.UniqueLabels())
	assert.NotNil(t, s.UserPreferences())
	assert.NotNil(t, s.Bus())
}

func TestReadAccessorsReturnCopies(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.SetTasks(ctx, []api.Task{
		{ID: "1", Text: "Buy milk", SubTasks: []api.SubTask{{ID: "1", Text: "2%"}}},
	}, "test")

	first := h.store.Tasks()
	second := h.store.Tasks()
	assert.Equal(t, first, second)

	first[0].Text = "mutated"
	first[0].SubTasks[0].Text = "mutated"
	assert.Equal(t, "Buy milk", h.store.Tasks()[0].Text)
	assert.Equal(t, "2%", h.store.Tasks()[0].SubTasks[0].Text)

	h.store.SetNotes(ctx, []api.Record{{"id": 1.0, "tags": []any{"a"}}}, "test")
	notes := h.store.Notes()
	notes[0]["tags"].([]any)[0] = "b"
	assert.Equal(t, "a", h.store.Notes()[0]["tags"].([]any)[0])
}

func TestSettersCopyInput(t *testing.T) {
	h := newHarness(t)

	input := []api.Task{{ID: "1", Text: "original"}}
	h.store.SetTasks(context.Background(), input, "test")
	input[0].Text = "changed after set"

	assert.Equal(t, "original", h.store.Tasks()[0].Text)
}

func TestSetProjectsPreservesSentinel(t *testing.T) {
	tests := []struct {
		name  string
		input []api.Project
		want  []api.Project
	}{
		{
			name:  "sentinel missing",
			input: []api.Project{{ID: "1", Name: "Work"}},
			want:  []api.Project{{ID: "0", Name: "No Project"}, {ID: "1", Name: "Work"}},
		},
		{
			name:  "conflicting id 0 is dropped",
			input: []api.Project{{ID: "0", Name: "Impostor"}, {ID: "2", Name: "Home"}, {ID: "0", Name: "Again"}},
			want:  []api.Project{{ID: "0", Name: "No Project"}, {ID: "2", Name: "Home"}},
		},
		{
			name:  "empty list",
			input: nil,
			want:  []api.Project{{ID: "0", Name: "No Project"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.store.SetProjects(context.Background(), tt.input, "test")

			got := h.store.Projects()
			assert.Equal(t, tt.want, got)

			sentinels := 0
			for _, p := range got {
				if p.ID == api.NoProjectID {
					sentinels++
				}
			}
			assert.Equal(t, 1, sentinels)

			require.Len(t, h.backend.saves, 1)
			assert.Equal(t, tt.want, h.backend.saves[0].Projects)
		})
	}
}

func TestUniqueProjectsExcludesSentinel(t *testing.T) {
	h := newHarness(t)

	h.store.SetProjects(context.Background(), []api.Project{
		{ID: "1", Name: "Work", CreatedAt: "2024-01-01"},
		{ID: "2", Name: "Home"},
	}, "test")

	assert.Equal(t, []api.Project{{ID: "1", Name: "Work"}, {ID: "2", Name: "Home"}}, h.store.UniqueProjects())
}

func TestSetTasksPersistsOnceThenPublishesOnce(t *testing.T) {
	h := newHarness(t)

	h.store.SetTasks(context.Background(), []api.Task{{ID: "1", Text: "a"}}, "test")

	assert.Len(t, h.backend.saves, 1)
	assert.Equal(t, 1, h.count("tasksChanged"))
	require.GreaterOrEqual(t, len(h.log), 2)
	assert.Equal(t, []string{"save", "tasksChanged"}, h.log[:2])
}

func TestChangeEventCarriesCopy(t *testing.T) {
	h := newHarness(t)

	var payload []api.Task
	events.Subscribe(h.store.Bus(), events.TasksChanged, func(tasks []api.Task) {
		payload = tasks
	})

	h.store.SetTasks(context.Background(), []api.Task{{ID: "1", Text: "a"}}, "test")
	require.Len(t, payload, 1)

	payload[0].Text = "mutated"
	assert.Equal(t, "a", h.store.Tasks()[0].Text)
}

func TestProjectionEventsOnlyOnChange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.SetTasks(ctx, []api.Task{{ID: "1", Label: "Work"}}, "test")
	assert.Equal(t, 1, h.count("uniqueLabelsChanged"))

	h.store.SetTasks(ctx, []api.Task{{ID: "1", Label: "work "}, {ID: "2", Label: "WORK"}}, "test")
	assert.Equal(t, 1, h.count("uniqueLabelsChanged"), "same labels must not republish")

	h.store.SetTasks(ctx, []api.Task{{ID: "1", Label: "home"}}, "test")
	assert.Equal(t, 2, h.count("uniqueLabelsChanged"))

	assert.Equal(t, 0, h.count("uniqueProjectsChanged"))
	h.store.SetProjects(ctx, []api.Project{{ID: "5", Name: "Garden"}}, "test")
	assert.Equal(t, 1, h.count("uniqueProjectsChanged"))
	h.store.SetProjects(ctx, []api.Project{{ID: "5", Name: "Garden"}}, "test")
	assert.Equal(t, 1, h.count("uniqueProjectsChanged"))
}

func TestSaveFailureKeepsStateAndNotifies(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	backend := &fakeBackend{saveErr: errors.New("connection refused")}
	recorder := &notify.Recorder{}
	s := New(backend, events.NewBus(), recorder, zap.New(core))

	var published int
	events.Subscribe(s.Bus(), events.TasksChanged, func([]api.Task) { published++ })

	s.SetTasks(context.Background(), []api.Task{{ID: "1", Text: "kept"}}, "quick-add")

	assert.Equal(t, "kept", s.Tasks()[0].Text, "no rollback on failed save")
	assert.Equal(t, 1, published)

	all := recorder.All()
	require.Len(t, all, 1)
	assert.Equal(t, notify.LevelWarning, all[0].Level)
	assert.Equal(t, "Could not save", all[0].Title)
	assert.False(t, all[0].Fatal)

	entries := logs.FilterMessage("failed to save data").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "quick-add", entries[0].ContextMap()["source"])
}

func TestSaveUnauthorizedIsFatal(t *testing.T) {
	backend := &fakeBackend{saveErr: &api.APIError{StatusCode: 401, Message: "bad key"}}
	recorder := &notify.Recorder{}
	s := New(backend, nil, recorder, nil)

	s.SetHabits(context.Background(), []api.Record{{"id": 1.0}}, "test")

	all := recorder.All()
	require.Len(t, all, 1)
	assert.True(t, all[0].Fatal)
}

func TestInitialize(t *testing.T) {
	h := newHarness(t)
	h.backend.snapshot = &api.Snapshot{
		Tasks:    []api.Task{{ID: "1", Text: "a", Label: "Errands"}},
		Projects: []api.Project{{ID: "3", Name: "Home"}},
		Notes:    []api.Record{{"id": "n1"}},
	}

	require.NoError(t, h.store.Initialize(context.Background()))

	assert.Equal(t, "storeInitialized", h.log[0])
	for _, name := range []string{
		"tasksChanged", "projectsChanged", "userPreferencesChanged", "userProfileChanged",
		"notebooksChanged", "notesChanged", "timeActivitiesChanged", "timeLogEntriesChanged",
		"devEpicsChanged", "devTicketsChanged", "devSubtasksChanged", "devReleaseVersionsChanged",
		"devTicketHistoryChanged", "devTicketCommentsChanged", "calendarEventsChanged",
		"habitsChanged", "habitCompletionsChanged", "pomodoroSessionsChanged",
	} {
		assert.Equal(t, 1, h.count(name), name)
	}
	assert.Equal(t, 1, h.count("uniqueLabelsChanged"))
	assert.Equal(t, 1, h.count("uniqueProjectsChanged"))
	assert.Equal(t, 0, h.count("save"), "loading must not write back")

	assert.Equal(t, []string{"errands"}, h.store.UniqueLabels())
	assert.Equal(t, []api.Project{{ID: "0", Name: "No Project"}, {ID: "3", Name: "Home"}}, h.store.Projects())
	assert.Empty(t, h.store.Habits())
	assert.NotNil(t, h.store.Habits())
	assert.Empty(t, h.notifier.All())
}

func TestInitializeFailure(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		wantUnauthorized bool
	}{
		{name: "unreachable", err: errors.New("dial tcp: connection refused")},
		{name: "unauthorized", err: &api.APIError{StatusCode: 401}, wantUnauthorized: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.backend.loadErr = tt.err

			err := h.store.Initialize(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInitFailed)
			assert.Equal(t, tt.wantUnauthorized, errors.Is(err, ErrUnauthorized))

			all := h.notifier.All()
			require.Len(t, all, 1)
			assert.True(t, all[0].Fatal)
			assert.Equal(t, notify.LevelError, all[0].Level)

			assert.Empty(t, h.log, "nothing is published on failure")
			assert.Empty(t, h.store.Tasks())
			assert.Len(t, h.store.Projects(), 1)
		})
	}
}

func TestDeleteTimeActivity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.SetTimeActivities(ctx, []api.Record{{"id": 1.0, "name": "Reading"}, {"id": 2.0, "name": "Coding"}}, "test")
	require.Len(t, h.backend.saves, 1)

	assert.False(t, h.store.DeleteTimeActivity(ctx, "99", "test"))
	assert.Len(t, h.backend.saves, 1, "no-op delete must not save")
	assert.Equal(t, 1, h.count("timeActivitiesChanged"))

	assert.True(t, h.store.DeleteTimeActivity(ctx, "1", "test"))
	assert.Len(t, h.backend.saves, 2)
	assert.Equal(t, 2, h.count("timeActivitiesChanged"))

	remaining := h.store.TimeActivities()
	require.Len(t, remaining, 1)
	assert.Equal(t, "Coding", remaining[0]["name"])
}

func TestDeleteOtherRecords(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.SetTimeLogEntries(ctx, []api.Record{{"id": "a"}}, "test")
	h.store.SetCalendarEvents(ctx, []api.Record{{"id": 4.0}}, "test")
	h.store.SetTasks(ctx, []api.Task{{ID: "1"}, {ID: "2"}}, "test")

	assert.True(t, h.store.DeleteTimeLogEntry(ctx, "a", "test"))
	assert.True(t, h.store.DeleteCalendarEvent(ctx, "4", "test"))
	assert.True(t, h.store.DeleteTask(ctx, "2", "test"))
	assert.False(t, h.store.DeleteTask(ctx, "2", "test"))

	assert.Empty(t, h.store.TimeLogEntries())
	assert.Empty(t, h.store.CalendarEvents())
	assert.Len(t, h.store.Tasks(), 1)
}

func TestSubtasksAreClientOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.SetDevSubtasks(ctx, []api.Record{{"id": 1.0, "ticket_id": 7.0}}, "test")
	assert.Empty(t, h.backend.saves)
	assert.Equal(t, 1, h.count("devSubtasksChanged"))

	h.store.SetTasks(ctx, []api.Task{{ID: "1"}}, "test")
	require.Len(t, h.backend.saves, 1)
	assert.Nil(t, h.backend.saves[0].DevSubtasks, "snapshot payload never carries subtasks")
	assert.Len(t, h.store.DevSubtasks(), 1)
}

func TestSetTicketSubtasks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.SetDevSubtasks(ctx, []api.Record{
		{"id": 1.0, "ticket_id": 7.0, "title": "old"},
		{"id": 2.0, "ticket_id": 8.0, "title": "other ticket"},
	}, "test")
	h.log = nil

	h.store.SetTicketSubtasks(ctx, "7", []api.Record{{"id": 3.0, "title": "new"}}, "test")

	assert.Equal(t, []string{"save-subtasks", "devSubtasksChanged"}, h.log)
	assert.Empty(t, h.backend.saves)
	require.Len(t, h.backend.subtaskSaves["7"], 1)

	subtasks := h.store.DevSubtasks()
	require.Len(t, subtasks, 2)
	assert.Equal(t, "other ticket", subtasks[0]["title"])
	assert.Equal(t, "new", subtasks[1]["title"])
	assert.Equal(t, "7", subtasks[1][SubtaskTicketField])
}

func TestAddAndToggleTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.SetTasks(ctx, []api.Task{{ID: "4"}, {ID: "abc"}}, "test")
	assert.Equal(t, api.ID("5"), h.store.NextTaskID())

	added := h.store.AddTask(ctx, api.Task{Text: "Buy milk", DueDate: "2024-05-02"}, "quick-add")
	assert.Equal(t, api.ID("5"), added.ID)
	assert.Equal(t, api.NoProjectID, added.ProjectID)
	assert.Len(t, h.store.Tasks(), 3)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, h.store.ToggleTaskCompleted(ctx, "5", now, "test"))
	task := h.store.Tasks()[2]
	assert.True(t, task.Completed)
	assert.Equal(t, "2024-05-01", task.CompletedDate)

	assert.True(t, h.store.ToggleTaskCompleted(ctx, "5", now, "test"))
	assert.Empty(t, h.store.Tasks()[2].CompletedDate)

	assert.False(t, h.store.ToggleTaskCompleted(ctx, "missing", now, "test"))
}

func TestUserRecords(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.SetUserPreferences(ctx, api.Record{"theme": "dark"}, "test")
	h.store.SetUserProfile(ctx, nil, "test")

	assert.Equal(t, "dark", h.store.UserPreferences()["theme"])
	assert.NotNil(t, h.store.UserProfile())
	assert.Equal(t, 1, h.count("userPreferencesChanged"))
	assert.Equal(t, 1, h.count("userProfileChanged"))
}

func TestUpdateTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.store.SetTasks(ctx, []api.Task{{ID: "1", Text: "a"}}, "test")

	assert.True(t, h.store.UpdateTask(ctx, "1", "test", func(task *api.Task) {
		task.Priority = "high"
		task.Label = "Urgent"
	}))
	assert.Equal(t, "high", h.store.Tasks()[0].Priority)
	assert.Equal(t, []string{"urgent"}, h.store.UniqueLabels())
	assert.Len(t, h.backend.saves, 2)

	assert.False(t, h.store.UpdateTask(ctx, "9", "test", func(task *api.Task) {}))
	assert.Len(t, h.backend.saves, 2)
}
