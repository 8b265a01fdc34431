package store

import (
	"context"
	"strconv"
	"time"

	"github.com/lockiemedia/lockie/internal/api"
	"go.uber.org/zap"
)

// SubtaskTicketField is the subtask field referencing its ticket.
const SubtaskTicketField = "ticket_id"

// DeleteTask removes the task with the given id. It saves and publishes only
// when a task was actually removed and reports whether one was.
func (s *Store) DeleteTask(ctx context.Context, id api.ID, source string) bool {
	return s.commit(ctx, api.CollectionTasks, source, true, func(d *api.Snapshot) bool {
		kept := make([]api.Task, 0, len(d.Tasks))
		for _, t := range d.Tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(d.Tasks) {
			return false
		}
		d.Tasks = kept
		return true
	})
}

// DeleteTimeActivity removes a single time-tracking activity.
func (s *Store) DeleteTimeActivity(ctx context.Context, id api.ID, source string) bool {
	return s.deleteRecord(ctx, api.CollectionTimeActivities, id, source)
}

// DeleteTimeLogEntry removes a single time log entry.
func (s *Store) DeleteTimeLogEntry(ctx context.Context, id api.ID, source string) bool {
	return s.deleteRecord(ctx, api.CollectionTimeLogEntries, id, source)
}

// DeleteCalendarEvent removes a single calendar event.
func (s *Store) DeleteCalendarEvent(ctx context.Context, id api.ID, source string) bool {
	return s.deleteRecord(ctx, api.CollectionCalendarEvents, id, source)
}

func (s *Store) deleteRecord(ctx context.Context, name string, id api.ID, source string) bool {
	return s.commit(ctx, name, source, true, func(d *api.Snapshot) bool {
		list := recordField(d, name)
		kept := make([]api.Record, 0, len(*list))
		for _, r := range *list {
			if r.ID() != id {
				kept = append(kept, r)
			}
		}
		if len(kept) == len(*list) {
			return false
		}
		*list = kept
		return true
	})
}

// NextTaskID returns an integer id one above the largest integer task id.
func (s *Store) NextTaskID() api.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nextTaskID(s.data.Tasks)
}

func nextTaskID(tasks []api.Task) api.ID {
	var highest int64
	for _, t := range tasks {
		if n, ok := t.ID.Int(); ok && n > highest {
			highest = n
		}
	}
	return api.ID(strconv.FormatInt(highest+1, 10))
}

// AddTask appends a task and returns it as stored. A task without an id gets
// the next free integer id; one without a project lands in "No Project".
func (s *Store) AddTask(ctx context.Context, task api.Task, source string) api.Task {
	task = task.Clone()
	if task.ProjectID == "" {
		task.ProjectID = api.NoProjectID
	}

	s.commit(ctx, api.CollectionTasks, source, true, func(d *api.Snapshot) bool {
		if task.ID == "" {
			task.ID = nextTaskID(d.Tasks)
		}
		d.Tasks = append(d.Tasks, task)
		return true
	})

	return task.Clone()
}

// ToggleTaskCompleted flips the completion state of a task. The completion
// date is the day of now.
func (s *Store) ToggleTaskCompleted(ctx context.Context, id api.ID, now time.Time, source string) bool {
	return s.commit(ctx, api.CollectionTasks, source, true, func(d *api.Snapshot) bool {
		for i := range d.Tasks {
			if d.Tasks[i].ID != id {
				continue
			}
			d.Tasks[i].Completed = !d.Tasks[i].Completed
			if d.Tasks[i].Completed {
				d.Tasks[i].CompletedDate = now.Format("2006-01-02")
			} else {
				d.Tasks[i].CompletedDate = ""
			}
			return true
		}
		return false
	})
}

// UpdateTask applies edit to the task with the given id. Saves and publishes
// only when such a task exists.
func (s *Store) UpdateTask(ctx context.Context, id api.ID, source string, edit func(t *api.Task)) bool {
	return s.commit(ctx, api.CollectionTasks, source, true, func(d *api.Snapshot) bool {
		for i := range d.Tasks {
			if d.Tasks[i].ID == id {
				edit(&d.Tasks[i])
				return true
			}
		}
		return false
	})
}

// SetTicketSubtasks replaces the subtasks of one ticket. Subtasks are saved
// through their dedicated endpoint rather than the snapshot; a failed save is
// reported like any other and the local change is kept.
func (s *Store) SetTicketSubtasks(ctx context.Context, ticketID api.ID, subtasks []api.Record, source string) {
	cp := api.CloneRecords(subtasks)
	for _, r := range cp {
		if api.IDOf(r[SubtaskTicketField]) == "" {
			r[SubtaskTicketField] = string(ticketID)
		}
	}

	s.mu.Lock()
	kept := make([]api.Record, 0, len(s.data.DevSubtasks)+len(cp))
	for _, r := range s.data.DevSubtasks {
		if api.IDOf(r[SubtaskTicketField]) != ticketID {
			kept = append(kept, r)
		}
	}
	s.data.DevSubtasks = append(kept, api.CloneRecords(cp)...)
	s.mu.Unlock()

	s.logger.Debug("ticket subtasks updated",
		zap.String("ticket", string(ticketID)),
		zap.Int("count", len(cp)),
		zap.String("source", source),
	)

	if err := s.backend.SaveTicketSubtasks(ctx, ticketID, cp); err != nil {
		s.saveFailed(err, api.CollectionDevSubtasks, source)
	}
	s.publish(api.CollectionDevSubtasks)
}
