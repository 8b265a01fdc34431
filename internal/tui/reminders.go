package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/lockiemedia/lockie/internal/notify"
)

// Day-only tasks are reminded at this hour.
const dayOnlyReminderHour = 9

// checkDueInterval is how often due reminders are checked.
var checkDueInterval = time.Minute

func checkDueCmd() tea.Cmd {
	return tea.Tick(checkDueInterval, func(t time.Time) tea.Msg {
		return checkDueMsg(t)
	})
}

// handleCheckDue returns a command per open task whose due time has just
// passed, batched with the next check. Notifiers may block, so they only
// run inside the returned commands.
func (a *App) handleCheckDue(t time.Time) tea.Cmd {
	var cmds []tea.Cmd
	for _, task := range a.tasks {
		if a.notified[task.ID] || task.Completed || task.IsArchived {
			continue
		}

		dueTime, dayOnly, ok := reminderTime(task, t.Location())
		if !ok || t.Before(dueTime) {
			continue
		}

		// Reminders are meant to be timely. Day-only tasks get a wider window
		// so opening the app shortly after nine still reminds.
		threshold := 5 * time.Minute
		if dayOnly {
			threshold = 60 * time.Minute
		}

		a.notified[task.ID] = true
		if t.Sub(dueTime) > threshold {
			a.logger.Debug("skipping stale reminder", zap.String("task", string(task.ID)))
			continue
		}

		cmds = append(cmds, a.reminderCmd(notify.Notification{
			Level:   notify.LevelInfo,
			Title:   a.projectName(task.ProjectID),
			Message: "Task due: " + task.Text,
		}))
	}

	return tea.Batch(append(cmds, checkDueCmd())...)
}

func (a *App) reminderCmd(n notify.Notification) tea.Cmd {
	reminders := a.reminders
	return func() tea.Msg {
		reminders.Notify(n)
		return nil
	}
}

// reminderTime returns when a task is due. Tasks without a time are due at
// nine in the morning of their due date.
func reminderTime(task api.Task, loc *time.Location) (time.Time, bool, bool) {
	if task.DueDate == "" {
		return time.Time{}, false, false
	}

	if task.Time != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04", task.DueDate+" "+task.Time, loc)
		if err == nil {
			return t, false, true
		}
	}

	day, err := time.ParseInLocation("2006-01-02", task.DueDate, loc)
	if err != nil {
		return time.Time{}, false, false
	}
	return day.Add(dayOnlyReminderHour * time.Hour), true, true
}

func (a *App) projectName(id api.ID) string {
	for _, p := range a.projects {
		if p.ID == id {
			return p.Name
		}
	}
	return "LockieMedia"
}
