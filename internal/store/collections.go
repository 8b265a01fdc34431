package store

import (
	"context"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/lockiemedia/lockie/internal/events"
)

var recordTopics = map[string]events.Topic[[]api.Record]{
	api.CollectionNotebooks:          events.NotebooksChanged,
	api.CollectionNotes:              events.NotesChanged,
	api.CollectionTimeActivities:     events.TimeActivitiesChanged,
	api.CollectionTimeLogEntries:     events.TimeLogEntriesChanged,
	api.CollectionDevEpics:           events.DevEpicsChanged,
	api.CollectionDevTickets:         events.DevTicketsChanged,
	api.CollectionDevSubtasks:        events.DevSubtasksChanged,
	api.CollectionDevReleaseVersions: events.DevReleaseVersionsChanged,
	api.CollectionDevTicketHistory:   events.DevTicketHistoryChanged,
	api.CollectionDevTicketComments:  events.DevTicketCommentsChanged,
	api.CollectionCalendarEvents:     events.CalendarEventsChanged,
	api.CollectionHabits:             events.HabitsChanged,
	api.CollectionHabitCompletions:   events.HabitCompletionsChanged,
	api.CollectionPomodoroSessions:   events.PomodoroSessionsChanged,
}

// recordField returns the snapshot field holding the named record collection.
func recordField(d *api.Snapshot, name string) *[]api.Record {
	switch name {
	case api.CollectionNotebooks:
		return &d.Notebooks
	case api.CollectionNotes:
		return &d.Notes
	case api.CollectionTimeActivities:
		return &d.TimeActivities
	case api.CollectionTimeLogEntries:
		return &d.TimeLogEntries
	case api.CollectionDevEpics:
		return &d.DevEpics
	case api.CollectionDevTickets:
		return &d.DevTickets
	case api.CollectionDevSubtasks:
		return &d.DevSubtasks
	case api.CollectionDevReleaseVersions:
		return &d.DevReleaseVersions
	case api.CollectionDevTicketHistory:
		return &d.DevTicketHistory
	case api.CollectionDevTicketComments:
		return &d.DevTicketComments
	case api.CollectionCalendarEvents:
		return &d.CalendarEvents
	case api.CollectionHabits:
		return &d.Habits
	case api.CollectionHabitCompletions:
		return &d.HabitCompletions
	case api.CollectionPomodoroSessions:
		return &d.PomodoroSessions
	}
	return nil
}

// publish sends the change event of one collection with a fresh copy of it.
func (s *Store) publish(collection string) {
	switch collection {
	case api.CollectionTasks:
		events.Publish(s.bus, events.TasksChanged, s.Tasks())
	case api.CollectionProjects:
		events.Publish(s.bus, events.ProjectsChanged, s.Projects())
	case api.CollectionUserPreferences:
		events.Publish(s.bus, events.UserPreferencesChanged, s.UserPreferences())
	case api.CollectionUserProfile:
		events.Publish(s.bus, events.UserProfileChanged, s.UserProfile())
	default:
		if topic, ok := recordTopics[collection]; ok {
			events.Publish(s.bus, topic, s.records(collection))
		}
	}
}

func (s *Store) records(name string) []api.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return api.CloneRecords(*recordField(s.data, name))
}

func (s *Store) setRecords(ctx context.Context, name string, records []api.Record, source string, persist bool) {
	cp := api.CloneRecords(records)
	s.commit(ctx, name, source, persist, func(d *api.Snapshot) bool {
		*recordField(d, name) = cp
		return true
	})
}

// Tasks returns a copy of the tasks collection.
func (s *Store) Tasks() []api.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return api.CloneTasks(s.data.Tasks)
}

// SetTasks replaces the tasks collection.
func (s *Store) SetTasks(ctx context.Context, tasks []api.Task, source string) {
	cp := api.CloneTasks(tasks)
	s.commit(ctx, api.CollectionTasks, source, true, func(d *api.Snapshot) bool {
		d.Tasks = cp
		return true
	})
}

// Projects returns a copy of the projects collection, sentinel included.
func (s *Store) Projects() []api.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return api.CloneProjects(s.data.Projects)
}

// SetProjects replaces the projects collection. The "No Project" sentinel is
// always kept and any other record claiming its id is dropped.
func (s *Store) SetProjects(ctx context.Context, projects []api.Project, source string) {
	cp := ensureNoProject(projects)
	s.commit(ctx, api.CollectionProjects, source, true, func(d *api.Snapshot) bool {
		d.Projects = cp
		return true
	})
}

// UserPreferences returns a copy of the user preferences.
func (s *Store) UserPreferences() api.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.UserPreferences.Clone()
}

// SetUserPreferences replaces the user preferences.
func (s *Store) SetUserPreferences(ctx context.Context, prefs api.Record, source string) {
	cp := prefs.Clone()
	if cp == nil {
		cp = api.Record{}
	}
	s.commit(ctx, api.CollectionUserPreferences, source, true, func(d *api.Snapshot) bool {
		d.UserPreferences = cp
		return true
	})
}

// UserProfile returns a copy of the user profile.
func (s *Store) UserProfile() api.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.UserProfile.Clone()
}

// SetUserProfile replaces the user profile.
func (s *Store) SetUserProfile(ctx context.Context, profile api.Record, source string) {
	cp := profile.Clone()
	if cp == nil {
		cp = api.Record{}
	}
	s.commit(ctx, api.CollectionUserProfile, source, true, func(d *api.Snapshot) bool {
		d.UserProfile = cp
		return true
	})
}

func (s *Store) Notebooks() []api.Record { return s.records(api.CollectionNotebooks) }

func (s *Store) SetNotebooks(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionNotebooks, v, source, true)
}

func (s *Store) Notes() []api.Record { return s.records(api.CollectionNotes) }

func (s *Store) SetNotes(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionNotes, v, source, true)
}

func (s *Store) TimeActivities() []api.Record { return s.records(api.CollectionTimeActivities) }

func (s *Store) SetTimeActivities(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionTimeActivities, v, source, true)
}

func (s *Store) TimeLogEntries() []api.Record { return s.records(api.CollectionTimeLogEntries) }

func (s *Store) SetTimeLogEntries(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionTimeLogEntries, v, source, true)
}

func (s *Store) DevEpics() []api.Record { return s.records(api.CollectionDevEpics) }

func (s *Store) SetDevEpics(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionDevEpics, v, source, true)
}

func (s *Store) DevTickets() []api.Record { return s.records(api.CollectionDevTickets) }

func (s *Store) SetDevTickets(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionDevTickets, v, source, true)
}

// DevSubtasks returns a copy of every ticket subtask.
func (s *Store) DevSubtasks() []api.Record { return s.records(api.CollectionDevSubtasks) }

// SetDevSubtasks replaces the subtasks held in memory. Subtasks are
// client-only in the snapshot: this never saves, use SetTicketSubtasks to
// persist a ticket's subtasks.
func (s *Store) SetDevSubtasks(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionDevSubtasks, v, source, false)
}

func (s *Store) DevReleaseVersions() []api.Record {
	return s.records(api.CollectionDevReleaseVersions)
}

func (s *Store) SetDevReleaseVersions(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionDevReleaseVersions, v, source, true)
}

func (s *Store) DevTicketHistory() []api.Record { return s.records(api.CollectionDevTicketHistory) }

func (s *Store) SetDevTicketHistory(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionDevTicketHistory, v, source, true)
}

func (s *Store) DevTicketComments() []api.Record {
	return s.records(api.CollectionDevTicketComments)
}

func (s *Store) SetDevTicketComments(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionDevTicketComments, v, source, true)
}

func (s *Store) CalendarEvents() []api.Record { return s.records(api.CollectionCalendarEvents) }

func (s *Store) SetCalendarEvents(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionCalendarEvents, v, source, true)
}

func (s *Store) Habits() []api.Record { return s.records(api.CollectionHabits) }

func (s *Store) SetHabits(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionHabits, v, source, true)
}

func (s *Store) HabitCompletions() []api.Record { return s.records(api.CollectionHabitCompletions) }

func (s *Store) SetHabitCompletions(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionHabitCompletions, v, source, true)
}

func (s *Store) PomodoroSessions() []api.Record { return s.records(api.CollectionPomodoroSessions) }

func (s *Store) SetPomodoroSessions(ctx context.Context, v []api.Record, source string) {
	s.setRecords(ctx, api.CollectionPomodoroSessions, v, source, true)
}
