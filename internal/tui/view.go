package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/lockiemedia/lockie/internal/dateparse"
	"github.com/lockiemedia/lockie/internal/notify"
	"github.com/lockiemedia/lockie/internal/tui/styles"
)

const sidebarWidth = 24

// View implements tea.Model.
func (a *App) View() string {
	width, height := a.width, a.height
	if width == 0 {
		width, height = 80, 24
	}

	if a.fatal != nil {
		return a.renderFatal(width, height)
	}

	if a.loading {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			a.spinner.View()+" Loading tasks...")
	}

	if a.showHelp {
		return a.renderHelp(width, height)
	}

	bodyHeight := height - 2 // status bar plus margin
	if a.adding {
		bodyHeight -= 4
	}
	bodyHeight = max(bodyHeight, 6)

	sidebar := lipgloss.JoinVertical(lipgloss.Left,
		a.renderProjects(bodyHeight/2-2),
		a.renderLabels(bodyHeight-bodyHeight/2-2),
	)
	tasks := a.renderTasks(width-sidebarWidth-4, bodyHeight-2)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, tasks))
	b.WriteString("\n")
	if a.adding {
		b.WriteString(a.renderAddInput(width))
		b.WriteString("\n")
	}
	b.WriteString(a.renderStatusBar(width))
	return b.String()
}

func (a *App) paneStyle(p Pane) lipgloss.Style {
	if a.focusedPane == p {
		return styles.PaneFocused
	}
	return styles.Pane
}

func (a *App) renderProjects(height int) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Projects"))
	b.WriteString("\n")

	names := []string{"All"}
	active := 0
	for i, p := range a.projects {
		names = append(names, p.Name)
		if p.ID == a.projectFilter {
			active = i + 1
		}
	}

	b.WriteString(a.renderList(names, a.projectCursor, active, a.focusedPane == PaneProjects, height))
	return a.paneStyle(PaneProjects).Width(sidebarWidth).Render(b.String())
}

func (a *App) renderLabels(height int) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Labels"))
	b.WriteString("\n")

	if len(a.labels) == 0 {
		b.WriteString(styles.Subtitle.Render(" none"))
	} else {
		active := -1
		for i, l := range a.labels {
			if l == a.labelFilter {
				active = i
			}
		}
		b.WriteString(a.renderList(a.labels, a.labelCursor, active, a.focusedPane == PaneLabels, height))
	}
	return a.paneStyle(PaneLabels).Width(sidebarWidth).Render(b.String())
}

func (a *App) renderList(items []string, cursor, active int, focused bool, height int) string {
	start, end := window(len(items), cursor, height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		text := truncateString(items[i], sidebarWidth-2)
		switch {
		case focused && i == cursor:
			lines = append(lines, styles.ListSelected.Render(text))
		case i == active:
			lines = append(lines, styles.ListActive.Render(text))
		default:
			lines = append(lines, styles.ListItem.Render(text))
		}
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderTasks(width, height int) string {
	tasks := a.visibleTasks()

	title := "Tasks"
	if a.projectFilter != "" {
		title = a.projectName(a.projectFilter)
	}
	if a.labelFilter != "" {
		title += " #" + a.labelFilter
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	b.WriteString(styles.Subtitle.Render(fmt.Sprintf("  %s", plural(len(tasks), "task"))))
	b.WriteString("\n\n")

	if len(tasks) == 0 {
		b.WriteString(styles.Subtitle.Render("Nothing here. Press a to add a task."))
		return a.paneStyle(PaneTasks).Width(width).Render(b.String())
	}

	now := a.now()
	start, end := window(len(tasks), a.taskCursor, height-2)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		t := tasks[i]

		check := styles.CheckboxUnchecked
		if t.Completed {
			check = styles.CheckboxChecked
		}

		var suffix strings.Builder
		if due := t.DueDisplay(now); due != "" {
			style := styles.TaskDue
			switch {
			case t.IsOverdue(now):
				style = styles.TaskDueOverdue
			case due == "today":
				style = styles.TaskDueToday
			}
			suffix.WriteString(style.Render(due))
		}
		if t.Label != "" {
			suffix.WriteString(styles.TaskLabel.Render("#" + t.Label))
		}

		room := width - 8 - lipgloss.Width(suffix.String())
		text := truncateString(t.Text, room)
		if t.Completed {
			text = styles.TaskCompleted.Render(text)
		}

		line := styles.PriorityStyle(t.Priority).Render(check) + " " + text + suffix.String()
		if a.focusedPane == PaneTasks && i == a.taskCursor {
			lines = append(lines, styles.TaskSelected.Render(line))
		} else {
			lines = append(lines, styles.TaskItem.Render(line))
		}
	}
	b.WriteString(strings.Join(lines, "\n"))

	return a.paneStyle(PaneTasks).Width(width).Render(b.String())
}

func (a *App) renderAddInput(width int) string {
	hint := "Enter: add • Esc: cancel"
	if parsed := dateparse.Parse(a.addInput.Value(), a.now()); parsed.Found() {
		hint = fmt.Sprintf("Due %s (%q) • %s", parsed.Date, parsed.Expression, hint)
	}

	content := a.addInput.View() + "\n" + styles.InputHint.Render(hint)
	return styles.InputFocused.Width(width - 4).Render(content)
}

func (a *App) renderStatusBar(width int) string {
	var content string
	switch {
	case len(a.toasts) > 0:
		t := a.toasts[len(a.toasts)-1]
		text := t.Message
		if t.Title != "" {
			text = t.Title + ": " + text
		}
		style := styles.StatusBarText
		switch t.Level {
		case notify.LevelError:
			style = styles.StatusBarError
		case notify.LevelWarning:
			style = styles.StatusBarWarning
		}
		content = style.Render(truncateString(text, width-2))
	case a.statusMsg != "":
		style := styles.StatusBarSuccess
		if a.statusErr {
			style = styles.StatusBarError
		}
		content = style.Render(truncateString(a.statusMsg, width-2))
	default:
		hints := []struct{ key, desc string }{
			{a.keymap.AddTask.Key, "add"},
			{a.keymap.CompleteTask.Key, "complete"},
			{a.keymap.SwitchPane.Key, "pane"},
			{a.keymap.Help.Key, "help"},
			{a.keymap.Quit.Key, "quit"},
		}
		parts := make([]string, 0, len(hints))
		for _, h := range hints {
			parts = append(parts, styles.StatusBarKey.Render(h.key)+styles.StatusBarText.Render(" "+h.desc))
		}
		content = strings.Join(parts, styles.StatusBarText.Render("  "))
	}

	return styles.StatusBar.Width(width).Render(content)
}

func (a *App) renderHelp(width, height int) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, item := range a.keymap.HelpItems() {
		switch {
		case item[0] == "" && item[1] == "":
			b.WriteString("\n")
		case item[1] == "":
			b.WriteString(styles.Subtitle.Render(item[0]))
			b.WriteString("\n")
		default:
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				styles.StatusBarKey.UnsetBackground().Width(10).Render(item[0]), item[1]))
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		styles.PaneFocused.Render(b.String()))
}

func (a *App) renderFatal(width, height int) string {
	content := styles.DialogTitle.Render(a.fatal.Title) + "\n" +
		a.fatal.Message + "\n\n" +
		styles.Subtitle.Render("Press q to quit")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		styles.Dialog.Width(min(60, width-4)).Render(content))
}

// window returns the slice of a list of n items that keeps cursor visible in
// height rows.
func window(n, cursor, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := clamp(cursor-height/2, 0, n-height)
	return start, start + height
}

// truncateString shortens s to maxLen display columns, ending with an ellipsis.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	if runewidth.StringWidth(s) <= maxLen {
		return s
	}

	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > maxLen-1 { // -1 for ellipsis
			return s[:i] + "…"
		}
		w += rw
	}

	return s
}
