package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/lockiemedia/lockie/internal/config"
	"github.com/lockiemedia/lockie/internal/notify"
	"github.com/lockiemedia/lockie/internal/store"
	"github.com/lockiemedia/lockie/internal/tui/styles"
)

// Pane represents which pane is currently focused.
type Pane int

const (
	PaneProjects Pane = iota
	PaneLabels
	PaneTasks
)

// source tags store writes made from the UI in the logs.
const source = "tui"

// toast is a notification shown in the status line until it expires.
type toast struct {
	id int
	notify.Notification
}

// App is the main Bubble Tea model for the application.
type App struct {
	// Dependencies
	store     *store.Store
	config    *config.Config
	logger    *zap.Logger
	reminders notify.Notifier
	now       func() time.Time
	copy      func(string) error

	// Data, as last published by the store
	tasks    []api.Task
	projects []api.Project
	labels   []string

	// Filters
	projectFilter api.ID // empty means all projects
	labelFilter   string
	showCompleted bool

	// Cursors
	focusedPane   Pane
	projectCursor int
	labelCursor   int
	taskCursor    int

	// UI state
	loading   bool
	fatal     *notify.Notification
	statusMsg string
	statusErr bool
	showHelp  bool
	width     int
	height    int

	// Quick add
	adding   bool
	addInput textinput.Model

	// Toasts
	toasts      []toast
	nextToastID int

	// Due reminders already sent
	notified map[api.ID]bool

	// Components
	spinner  spinner.Model
	keyState KeyState
	keymap   Keymap
}

// Option configures an App.
type Option func(*App)

// WithClock overrides the clock (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithClipboard overrides how task text is copied.
func WithClipboard(copyFn func(string) error) Option {
	return func(a *App) { a.copy = copyFn }
}

// WithReminders sets the notifier used for due task reminders.
func WithReminders(n notify.Notifier) Option {
	return func(a *App) { a.reminders = n }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// NewApp creates a new App instance.
func NewApp(s *store.Store, cfg *config.Config, opts ...Option) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	input := textinput.New()
	input.Placeholder = "e.g. Buy milk tomorrow"
	input.CharLimit = 500
	input.Width = 60

	a := &App{
		store:         s,
		config:        cfg,
		logger:        zap.NewNop(),
		reminders:     notify.Nop,
		now:           time.Now,
		copy:          clipboard.WriteAll,
		focusedPane:   PaneTasks,
		showCompleted: cfg.UI.ShowCompleted,
		loading:       true,
		addInput:      input,
		notified:      make(map[api.ID]bool),
		spinner:       sp,
		keymap:        DefaultKeymap(),
	}

	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.Named("tui")

	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		a.loadCmd(),
		checkDueCmd(),
	)
}

// loadCmd runs the initial store load. Data arrives through the bridge; the
// result only ends the loading state or reports a fatal error.
func (a *App) loadCmd() tea.Cmd {
	return func() tea.Msg {
		err := a.store.Initialize(context.Background())
		return initDoneMsg{err: err}
	}
}

func (a *App) toastDuration() time.Duration {
	if d := a.config.UI.ToastDuration; d > 0 {
		return d
	}
	return 4 * time.Second
}
