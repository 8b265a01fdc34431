package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/lockiemedia/lockie/internal/dateparse"
	"github.com/lockiemedia/lockie/internal/notify"
)

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.addInput.Width = clamp(msg.Width-10, 20, 80)
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case initDoneMsg:
		return a, a.handleInitDone(msg)

	case tasksChangedMsg:
		a.tasks = msg
		a.clampCursors()
		return a, nil

	case projectsChangedMsg:
		a.projects = msg
		if a.projectFilter != "" && !a.hasProject(a.projectFilter) {
			a.projectFilter = ""
		}
		a.clampCursors()
		return a, nil

	case labelsChangedMsg:
		a.labels = msg
		if a.labelFilter != "" && !a.hasLabel(a.labelFilter) {
			a.labelFilter = ""
		}
		a.clampCursors()
		return a, nil

	case notificationMsg:
		return a, a.handleNotification(notify.Notification(msg))

	case toastExpiredMsg:
		for i, t := range a.toasts {
			if t.id == msg.id {
				a.toasts = append(a.toasts[:i], a.toasts[i+1:]...)
				break
			}
		}
		return a, nil

	case statusMsg:
		a.statusMsg = msg.msg
		a.statusErr = msg.isErr
		return a, nil

	case checkDueMsg:
		return a, a.handleCheckDue(time.Time(msg))

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleInitDone(msg initDoneMsg) tea.Cmd {
	a.loading = false

	if msg.err != nil {
		if a.fatal == nil {
			a.fatal = &notify.Notification{
				Level:   notify.LevelError,
				Title:   "Could not load data",
				Message: msg.err.Error(),
				Fatal:   true,
			}
		}
		return nil
	}

	// The bridge delivers the same data; reading it here keeps the UI usable
	// when no bridge is attached.
	a.tasks = a.store.Tasks()
	a.projects = a.store.UniqueProjects()
	a.labels = a.store.UniqueLabels()
	a.clampCursors()

	a.statusMsg = "Loaded " + plural(len(a.tasks), "task")
	a.statusErr = false
	return nil
}

func (a *App) handleNotification(n notify.Notification) tea.Cmd {
	if n.Fatal {
		a.fatal = &n
		return nil
	}

	a.nextToastID++
	id := a.nextToastID
	a.toasts = append(a.toasts, toast{id: id, Notification: n})

	return tea.Tick(a.toastDuration(), func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	if a.fatal != nil {
		switch msg.String() {
		case a.keymap.Quit.Key, a.keymap.Back.Key, a.keymap.Select.Key:
			return a, tea.Quit
		}
		return a, nil
	}

	if a.adding {
		return a, a.handleAddInput(msg)
	}

	if a.showHelp {
		switch msg.String() {
		case a.keymap.Help.Key, a.keymap.Back.Key, a.keymap.Quit.Key:
			a.showHelp = false
		}
		return a, nil
	}

	action, ok := a.keyState.HandleKey(msg, a.keymap)
	if !ok || action == "" {
		return a, nil
	}

	if a.loading && action != "quit" {
		return a, nil
	}

	switch action {
	case "quit":
		return a, tea.Quit
	case "help":
		a.showHelp = true
	case "up":
		a.moveCursor(-1)
	case "down":
		a.moveCursor(1)
	case "top":
		a.setCursor(0)
	case "bottom":
		a.setCursor(a.paneLen() - 1)
	case "switch_pane":
		a.focusedPane = (a.focusedPane + 1) % 3
	case "select":
		a.selectFilter()
	case "back":
		a.projectFilter = ""
		a.labelFilter = ""
		a.taskCursor = 0
	case "refresh":
		a.loading = true
		a.statusMsg = ""
		return a, tea.Batch(a.spinner.Tick, a.loadCmd())
	case "toggle_completed":
		a.showCompleted = !a.showCompleted
		a.clampCursors()
	case "add":
		a.adding = true
		a.addInput.SetValue("")
		a.addInput.Focus()
		return a, textinput.Blink
	case "complete":
		return a, a.withSelectedTask(a.toggleCmd)
	case "delete":
		return a, a.withSelectedTask(a.deleteCmd)
	case "copy":
		return a, a.withSelectedTask(a.copyCmd)
	case "priority_high":
		return a, a.withSelectedTask(a.priorityCmd("high"))
	case "priority_medium":
		return a, a.withSelectedTask(a.priorityCmd("medium"))
	case "priority_low":
		return a, a.withSelectedTask(a.priorityCmd("low"))
	case "priority_none":
		return a, a.withSelectedTask(a.priorityCmd(""))
	case "due_today":
		return a, a.withSelectedTask(a.dueCmd(0))
	case "due_tomorrow":
		return a, a.withSelectedTask(a.dueCmd(1))
	}

	return a, nil
}

func (a *App) handleAddInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case a.keymap.Back.Key:
		a.adding = false
		a.addInput.Blur()
		return nil
	case a.keymap.Select.Key:
		text := strings.TrimSpace(a.addInput.Value())
		a.adding = false
		a.addInput.Blur()
		if text == "" {
			return nil
		}
		return a.addCmd(a.newTask(text))
	}

	var cmd tea.Cmd
	a.addInput, cmd = a.addInput.Update(msg)
	return cmd
}

// newTask builds a task from quick add text. A recognised date expression
// becomes the due date and is cut from the title.
func (a *App) newTask(text string) api.Task {
	now := a.now()
	parsed := dateparse.Parse(text, now)

	title := parsed.Remaining
	if title == "" {
		title = text
	}

	projectID := a.projectFilter
	if projectID == "" {
		projectID = api.NoProjectID
	}

	return api.Task{
		Text:      title,
		DueDate:   parsed.Date,
		Label:     a.labelFilter,
		ProjectID: projectID,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}
}

// visibleTasks returns the tasks matching the current filters.
func (a *App) visibleTasks() []api.Task {
	out := make([]api.Task, 0, len(a.tasks))
	for _, t := range a.tasks {
		if !a.showCompleted && t.Completed {
			continue
		}
		if a.projectFilter != "" && t.ProjectID != a.projectFilter {
			continue
		}
		if a.labelFilter != "" && strings.ToLower(strings.TrimSpace(t.Label)) != a.labelFilter {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (a *App) selectedTask() (api.Task, bool) {
	tasks := a.visibleTasks()
	if a.taskCursor < 0 || a.taskCursor >= len(tasks) {
		return api.Task{}, false
	}
	return tasks[a.taskCursor], true
}

func (a *App) withSelectedTask(fn func(api.Task) tea.Cmd) tea.Cmd {
	task, ok := a.selectedTask()
	if !ok {
		return nil
	}
	return fn(task)
}

// selectFilter applies the project or label under the cursor. The first
// project entry is "All".
func (a *App) selectFilter() {
	switch a.focusedPane {
	case PaneProjects:
		if a.projectCursor == 0 {
			a.projectFilter = ""
		} else if a.projectCursor-1 < len(a.projects) {
			a.projectFilter = a.projects[a.projectCursor-1].ID
		}
	case PaneLabels:
		if a.labelCursor < len(a.labels) {
			label := a.labels[a.labelCursor]
			if a.labelFilter == label {
				a.labelFilter = ""
			} else {
				a.labelFilter = label
			}
		}
	default:
		return
	}
	a.taskCursor = 0
	a.focusedPane = PaneTasks
}

func (a *App) paneLen() int {
	switch a.focusedPane {
	case PaneProjects:
		return len(a.projects) + 1
	case PaneLabels:
		return len(a.labels)
	default:
		return len(a.visibleTasks())
	}
}

func (a *App) cursor() *int {
	switch a.focusedPane {
	case PaneProjects:
		return &a.projectCursor
	case PaneLabels:
		return &a.labelCursor
	default:
		return &a.taskCursor
	}
}

func (a *App) moveCursor(delta int) {
	a.setCursor(*a.cursor() + delta)
}

func (a *App) setCursor(pos int) {
	*a.cursor() = clamp(pos, 0, max(a.paneLen()-1, 0))
}

func (a *App) clampCursors() {
	a.projectCursor = clamp(a.projectCursor, 0, len(a.projects))
	a.labelCursor = clamp(a.labelCursor, 0, max(len(a.labels)-1, 0))
	a.taskCursor = clamp(a.taskCursor, 0, max(len(a.visibleTasks())-1, 0))
}

func (a *App) hasProject(id api.ID) bool {
	for _, p := range a.projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (a *App) hasLabel(label string) bool {
	for _, l := range a.labels {
		if l == label {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
