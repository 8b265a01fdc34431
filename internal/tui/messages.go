package tui

import (
	"time"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/lockiemedia/lockie/internal/notify"
)

// initDoneMsg reports the end of a store load.
type initDoneMsg struct {
	err error
}

// Store events forwarded by the bridge.
type (
	tasksChangedMsg    []api.Task
	projectsChangedMsg []api.Project
	labelsChangedMsg   []string
)

// notificationMsg carries a notification into the UI.
type notificationMsg notify.Notification

// toastExpiredMsg removes a toast once its time is up.
type toastExpiredMsg struct {
	id int
}

// statusMsg is a transient status line message.
type statusMsg struct {
	msg   string
	isErr bool
}

type checkDueMsg time.Time
