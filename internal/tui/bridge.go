package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/lockiemedia/lockie/internal/events"
	"github.com/lockiemedia/lockie/internal/notify"
)

// Attach forwards the store events the UI renders as tea messages. send is
// usually (*tea.Program).Send. The returned func unsubscribes.
func Attach(bus *events.Bus, send func(tea.Msg)) func() {
	unsubs := []func(){
		events.Subscribe(bus, events.TasksChanged, func(tasks []api.Task) {
			send(tasksChangedMsg(tasks))
		}),
		events.Subscribe(bus, events.UniqueProjectsChanged, func(projects []api.Project) {
			send(projectsChangedMsg(projects))
		}),
		events.Subscribe(bus, events.UniqueLabelsChanged, func(labels []string) {
			send(labelsChangedMsg(labels))
		}),
	}

	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// Relay is a notifier that shows notifications as toasts once the program
// is running. Notifications sent before that are dropped.
type Relay struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// Notify implements notify.Notifier.
func (r *Relay) Notify(n notify.Notification) {
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()

	if send != nil {
		send(notificationMsg(n))
	}
}

// Bind sets where notifications go. A nil send detaches the relay.
func (r *Relay) Bind(send func(tea.Msg)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = send
}
