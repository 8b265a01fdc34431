// Package api provides a client for the LockieMedia data service.
package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Collection names as they appear on the wire.
const (
	CollectionTasks              = "tasks"
	CollectionProjects           = "projects"
	CollectionUserPreferences    = "userPreferences"
	CollectionUserProfile        = "userProfile"
	CollectionNotebooks          = "notebooks"
	CollectionNotes              = "notes"
	CollectionTimeActivities     = "time_activities"
	CollectionTimeLogEntries     = "time_log_entries"
	CollectionDevEpics           = "dev_epics"
	CollectionDevTickets         = "dev_tickets"
	CollectionDevSubtasks        = "dev_subtasks"
	CollectionDevReleaseVersions = "dev_release_versions"
	CollectionDevTicketHistory   = "dev_ticket_history"
	CollectionDevTicketComments  = "dev_ticket_comments"
	CollectionCalendarEvents     = "calendar_events"
	CollectionHabits             = "habits"
	CollectionHabitCompletions   = "habit_completions"
	CollectionPomodoroSessions   = "pomodoro_sessions"
)

// Collections lists every snapshot collection in canonical order.
var Collections = []string{
	CollectionTasks,
	CollectionProjects,
	CollectionUserPreferences,
	CollectionUserProfile,
	CollectionNotebooks,
	CollectionNotes,
	CollectionTimeActivities,
	CollectionTimeLogEntries,
	CollectionDevEpics,
	CollectionDevTickets,
	CollectionDevSubtasks,
	CollectionDevReleaseVersions,
	CollectionDevTicketHistory,
	CollectionDevTicketComments,
	CollectionCalendarEvents,
	CollectionHabits,
	CollectionHabitCompletions,
	CollectionPomodoroSessions,
}

// NoProjectID is the id of the sentinel "No Project" record.
const NoProjectID ID = "0"

// NoProjectName is the display name of the sentinel project.
const NoProjectName = "No Project"

// ID identifies a record within its collection. The service hands out both
// integer and string ids, so ID accepts either and re-encodes integers as
// JSON numbers.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if isInteger(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Int returns the id as an integer, if it is one.
func (id ID) Int() (int64, bool) {
	if !isInteger(string(id)) {
		return 0, false
	}
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
		if s == "" {
			return false
		}
	}
	if len(s) > 1 && s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Task represents a to-do item.
type Task struct {
	ID            ID        `json:"id"`
	Text          string    `json:"text"`
	DueDate       string    `json:"dueDate,omitempty"` // YYYY-MM-DD
	Time          string    `json:"time,omitempty"`    // HH:MM
	Priority      string    `json:"priority,omitempty"`
	Label         string    `json:"label,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Completed     bool      `json:"completed"`
	CompletedDate string    `json:"completedDate,omitempty"`
	ProjectID     ID        `json:"projectId"`
	IsArchived    bool      `json:"isArchived,omitempty"`
	Recurrence    string    `json:"recurrence,omitempty"`
	CreatedAt     string    `json:"createdAt,omitempty"`
	SubTasks      []SubTask `json:"subTasks,omitempty"`
}

// SubTask is an inline checklist item of a task.
type SubTask struct {
	ID        ID     `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	if t.SubTasks != nil {
		t.SubTasks = append([]SubTask(nil), t.SubTasks...)
	}
	return t
}

// IsOverdue returns true if the task is open and due before today.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == "" || t.Completed {
		return false
	}

	dueDate, err := time.ParseInLocation("2006-01-02", t.DueDate, now.Location())
	if err != nil {
		return false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dueDate.Before(today)
}

// DueDisplay returns a human-readable due date string.
func (t *Task) DueDisplay(now time.Time) string {
	if t.DueDate == "" {
		return ""
	}

	dueDate, err := time.ParseInLocation("2006-01-02", t.DueDate, now.Location())
	if err != nil {
		return t.DueDate
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	diff := int(dueDate.Sub(today).Hours() / 24)

	switch {
	case diff < -1:
		return fmt.Sprintf("%d days ago", -diff)
	case diff == -1:
		return "yesterday"
	case diff == 0:
		return "today"
	case diff == 1:
		return "tomorrow"
	case diff < 7:
		return dueDate.Weekday().String()
	default:
		return dueDate.Format("Jan 2")
	}
}

// Project represents a task project.
type Project struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Record is a loosely typed record of a collection the client does not
// interpret (notes, habits, tickets, ...). Values are whatever
// encoding/json produces for arbitrary JSON.
type Record map[string]any

// ID returns the record's id in string form.
func (r Record) ID() ID {
	return IDOf(r["id"])
}

// IDOf converts a decoded JSON id value (number or string) to an ID.
func IDOf(v any) ID {
	switch v := v.(type) {
	case ID:
		return v
	case string:
		return ID(v)
	case float64:
		return ID(strconv.FormatFloat(v, 'f', -1, 64))
	case json.Number:
		return ID(v.String())
	case int:
		return ID(strconv.Itoa(v))
	case int64:
		return ID(strconv.FormatInt(v, 10))
	default:
		return ""
	}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return map[string]any(Record(v).Clone())
	case Record:
		return v.Clone()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Snapshot is the full set of collections held by the data service.
type Snapshot struct {
	Tasks              []Task    `json:"tasks"`
	Projects           []Project `json:"projects"`
	UserPreferences    Record    `json:"userPreferences"`
	UserProfile        Record    `json:"userProfile"`
	Notebooks          []Record  `json:"notebooks"`
	Notes              []Record  `json:"notes"`
	TimeActivities     []Record  `json:"time_activities"`
	TimeLogEntries     []Record  `json:"time_log_entries"`
	DevEpics           []Record  `json:"dev_epics"`
	DevTickets         []Record  `json:"dev_tickets"`
	DevSubtasks        []Record  `json:"dev_subtasks,omitempty"`
	DevReleaseVersions []Record  `json:"dev_release_versions"`
	DevTicketHistory   []Record  `json:"dev_ticket_history"`
	DevTicketComments  []Record  `json:"dev_ticket_comments"`
	CalendarEvents     []Record  `json:"calendar_events"`
	Habits             []Record  `json:"habits"`
	HabitCompletions   []Record  `json:"habit_completions"`
	PomodoroSessions   []Record  `json:"pomodoro_sessions"`
}

// NewSnapshot returns a snapshot with every collection empty but non-nil.
func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.Normalize()
	return s
}

// Normalize replaces missing collections with empty ones.
func (s *Snapshot) Normalize() {
	if s.Tasks == nil {
		s.Tasks = []Task{}
	}
	if s.Projects == nil {
		s.Projects = []Project{}
	}
	if s.UserPreferences == nil {
		s.UserPreferences = Record{}
	}
	if s.UserProfile == nil {
		s.UserProfile = Record{}
	}
	for _, list := range s.recordLists() {
		if *list == nil {
			*list = []Record{}
		}
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Tasks:           CloneTasks(s.Tasks),
		Projects:        CloneProjects(s.Projects),
		UserPreferences: s.UserPreferences.Clone(),
		UserProfile:     s.UserProfile.Clone(),
	}
	src := s.recordLists()
	dst := out.recordLists()
	for i := range src {
		*dst[i] = CloneRecords(*src[i])
	}
	return out
}

func (s *Snapshot) recordLists() []*[]Record {
	return []*[]Record{
		&s.Notebooks,
		&s.Notes,
		&s.TimeActivities,
		&s.TimeLogEntries,
		&s.DevEpics,
		&s.DevTickets,
		&s.DevSubtasks,
		&s.DevReleaseVersions,
		&s.DevTicketHistory,
		&s.DevTicketComments,
		&s.CalendarEvents,
		&s.Habits,
		&s.HabitCompletions,
		&s.PomodoroSessions,
	}
}

// fields maps every wire collection name to the snapshot field backing it.
func (s *Snapshot) fields() map[string]any {
	return map[string]any{
		CollectionTasks:              &s.Tasks,
		CollectionProjects:           &s.Projects,
		CollectionUserPreferences:    &s.UserPreferences,
		CollectionUserProfile:        &s.UserProfile,
		CollectionNotebooks:          &s.Notebooks,
		CollectionNotes:              &s.Notes,
		CollectionTimeActivities:     &s.TimeActivities,
		CollectionTimeLogEntries:     &s.TimeLogEntries,
		CollectionDevEpics:           &s.DevEpics,
		CollectionDevTickets:         &s.DevTickets,
		CollectionDevSubtasks:        &s.DevSubtasks,
		CollectionDevReleaseVersions: &s.DevReleaseVersions,
		CollectionDevTicketHistory:   &s.DevTicketHistory,
		CollectionDevTicketComments:  &s.DevTicketComments,
		CollectionCalendarEvents:     &s.CalendarEvents,
		CollectionHabits:             &s.Habits,
		CollectionHabitCompletions:   &s.HabitCompletions,
		CollectionPomodoroSessions:   &s.PomodoroSessions,
	}
}

// CloneTasks deep-copies a task list. A nil input yields an empty list.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// CloneProjects copies a project list. A nil input yields an empty list.
func CloneProjects(projects []Project) []Project {
	out := make([]Project, len(projects))
	copy(out, projects)
	return out
}

// CloneRecords deep-copies a record list. A nil input yields an empty list.
func CloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
