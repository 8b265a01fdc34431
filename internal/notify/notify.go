// Package notify delivers user-facing notifications.
package notify

import (
	"sync"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a message meant for the user.
type Notification struct {
	Level   Level
	Title   string
	Message string
	// Fatal marks conditions the application cannot recover from.
	Fatal bool
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to the Notifier interface.
type Func func(Notification)

// Notify implements Notifier.
func (f Func) Notify(n Notification) { f(n) }

// Multi fans a notification out to several notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

// Nop discards every notification.
var Nop Notifier = Func(func(Notification) {})

// Desktop sends notifications through the operating system's notification
// daemon. Info notifications are skipped unless IncludeInfo is set.
type Desktop struct {
	AppName     string
	IncludeInfo bool
	Logger      *zap.Logger

	send  func(title, message string) error
	alert func(title, message string) error
}

// NewDesktop creates a desktop notifier.
func NewDesktop(appName string, logger *zap.Logger) *Desktop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Desktop{
		AppName: appName,
		Logger:  logger,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		alert: func(title, message string) error {
			return beeep.Alert(title, message, "")
		},
	}
}

// Notify implements Notifier.
func (d *Desktop) Notify(n Notification) {
	if n.Level == LevelInfo && !d.IncludeInfo {
		return
	}

	title := n.Title
	if title == "" {
		title = d.AppName
	}

	send := d.send
	if n.Fatal {
		send = d.alert
	}
	if err := send(title, n.Message); err != nil {
		d.Logger.Warn("failed to send desktop notification",
			zap.String("title", title),
			zap.Error(err),
		)
	}
}

// Recorder keeps every notification it receives. It is safe for concurrent
// use and mostly useful in tests.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.all...)
}
