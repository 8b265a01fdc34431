package events

import "github.com/lockiemedia/lockie/internal/api"

// Kind enumerates the events the store publishes.
type Kind int

const (
	KindStoreInitialized Kind = iota
	KindTasksChanged
	KindProjectsChanged
	KindUserPreferencesChanged
	KindUserProfileChanged
	KindNotebooksChanged
	KindNotesChanged
	KindTimeActivitiesChanged
	KindTimeLogEntriesChanged
	KindDevEpicsChanged
	KindDevTicketsChanged
	KindDevSubtasksChanged
	KindDevReleaseVersionsChanged
	KindDevTicketHistoryChanged
	KindDevTicketCommentsChanged
	KindCalendarEventsChanged
	KindHabitsChanged
	KindHabitCompletionsChanged
	KindPomodoroSessionsChanged
	KindUniqueLabelsChanged
	KindUniqueProjectsChanged
)

var kindNames = map[Kind]string{
	KindStoreInitialized:          "storeInitialized",
	KindTasksChanged:              "tasksChanged",
	KindProjectsChanged:           "projectsChanged",
	KindUserPreferencesChanged:    "userPreferencesChanged",
	KindUserProfileChanged:        "userProfileChanged",
	KindNotebooksChanged:          "notebooksChanged",
	KindNotesChanged:              "notesChanged",
	KindTimeActivitiesChanged:     "timeActivitiesChanged",
	KindTimeLogEntriesChanged:     "timeLogEntriesChanged",
	KindDevEpicsChanged:           "devEpicsChanged",
	KindDevTicketsChanged:         "devTicketsChanged",
	KindDevSubtasksChanged:        "devSubtasksChanged",
	KindDevReleaseVersionsChanged: "devReleaseVersionsChanged",
	KindDevTicketHistoryChanged:   "devTicketHistoryChanged",
	KindDevTicketCommentsChanged:  "devTicketCommentsChanged",
	KindCalendarEventsChanged:     "calendarEventsChanged",
	KindHabitsChanged:             "habitsChanged",
	KindHabitCompletionsChanged:   "habitCompletionsChanged",
	KindPomodoroSessionsChanged:   "pomodoroSessionsChanged",
	KindUniqueLabelsChanged:       "uniqueLabelsChanged",
	KindUniqueProjectsChanged:     "uniqueProjectsChanged",
}

// String returns the event name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Topics published by the store.
var (
	StoreInitialized = Topic[struct{}]{KindStoreInitialized}

	TasksChanged              = Topic[[]api.Task]{KindTasksChanged}
	ProjectsChanged           = Topic[[]api.Project]{KindProjectsChanged}
	UserPreferencesChanged    = Topic[api.Record]{KindUserPreferencesChanged}
	UserProfileChanged        = Topic[api.Record]{KindUserProfileChanged}
	NotebooksChanged          = Topic[[]api.Record]{KindNotebooksChanged}
	NotesChanged              = Topic[[]api.Record]{KindNotesChanged}
	TimeActivitiesChanged     = Topic[[]api.Record]{KindTimeActivitiesChanged}
	TimeLogEntriesChanged     = Topic[[]api.Record]{KindTimeLogEntriesChanged}
	DevEpicsChanged           = Topic[[]api.Record]{KindDevEpicsChanged}
	DevTicketsChanged         = Topic[[]api.Record]{KindDevTicketsChanged}
	DevSubtasksChanged        = Topic[[]api.Record]{KindDevSubtasksChanged}
	DevReleaseVersionsChanged = Topic[[]api.Record]{KindDevReleaseVersionsChanged}
	DevTicketHistoryChanged   = Topic[[]api.Record]{KindDevTicketHistoryChanged}
	DevTicketCommentsChanged  = Topic[[]api.Record]{KindDevTicketCommentsChanged}
	CalendarEventsChanged     = Topic[[]api.Record]{KindCalendarEventsChanged}
	HabitsChanged             = Topic[[]api.Record]{KindHabitsChanged}
	HabitCompletionsChanged   = Topic[[]api.Record]{KindHabitCompletionsChanged}
	PomodoroSessionsChanged   = Topic[[]api.Record]{KindPomodoroSessionsChanged}

	UniqueLabelsChanged   = Topic[[]string]{KindUniqueLabelsChanged}
	UniqueProjectsChanged = Topic[[]api.Project]{KindUniqueProjectsChanged}
)
