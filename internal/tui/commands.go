package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/lockiemedia/lockie/internal/dateparse"
)

// Store writes block on the network, so they run as commands. Failures reach
// the user through the store's notifier; the status line only confirms.

func (a *App) addCmd(task api.Task) tea.Cmd {
	return func() tea.Msg {
		added := a.store.AddTask(context.Background(), task, source)
		msg := "Added: " + added.Text
		if added.DueDate != "" {
			msg += " (due " + added.DueDisplay(a.now()) + ")"
		}
		return statusMsg{msg: msg}
	}
}

func (a *App) toggleCmd(task api.Task) tea.Cmd {
	return func() tea.Msg {
		if !a.store.ToggleTaskCompleted(context.Background(), task.ID, a.now(), source) {
			return statusMsg{msg: "Task no longer exists", isErr: true}
		}
		if task.Completed {
			return statusMsg{msg: "Reopened: " + task.Text}
		}
		return statusMsg{msg: "Completed: " + task.Text}
	}
}

func (a *App) deleteCmd(task api.Task) tea.Cmd {
	return func() tea.Msg {
		if !a.store.DeleteTask(context.Background(), task.ID, source) {
			return statusMsg{msg: "Task no longer exists", isErr: true}
		}
		return statusMsg{msg: "Deleted: " + task.Text}
	}
}

func (a *App) copyCmd(task api.Task) tea.Cmd {
	return func() tea.Msg {
		content := task.Text
		if task.Notes != "" {
			content += "\n" + task.Notes
		}
		if err := a.copy(content); err != nil {
			return statusMsg{msg: "Failed to copy: " + err.Error(), isErr: true}
		}
		return statusMsg{msg: "Copied: " + task.Text}
	}
}

func (a *App) priorityCmd(priority string) func(api.Task) tea.Cmd {
	return func(task api.Task) tea.Cmd {
		return func() tea.Msg {
			a.store.UpdateTask(context.Background(), task.ID, source, func(t *api.Task) {
				t.Priority = priority
			})
			if priority == "" {
				return statusMsg{msg: "Cleared priority"}
			}
			return statusMsg{msg: fmt.Sprintf("Priority %s: %s", priority, task.Text)}
		}
	}
}

// dueCmd sets the due date to today plus days.
func (a *App) dueCmd(days int) func(api.Task) tea.Cmd {
	return func(task api.Task) tea.Cmd {
		return func() tea.Msg {
			now := a.now()
			due := now.AddDate(0, 0, days).Format(dateparse.DateLayout)
			a.store.UpdateTask(context.Background(), task.ID, source, func(t *api.Task) {
				t.DueDate = due
			})
			t := task
			t.DueDate = due
			return statusMsg{msg: "Due " + t.DueDisplay(now) + ": " + task.Text}
		}
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
