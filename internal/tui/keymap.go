// Package tui provides the terminal user interface for LockieMedia.
package tui

import tea "github.com/charmbracelet/bubbletea"

// Key represents a key binding.
type Key struct {
	Key  string
	Help string
}

// Keymap contains all key bindings for the application.
type Keymap struct {
	// Navigation
	Up     Key
	Down   Key
	Top    Key
	Bottom Key

	// Actions
	Select        Key
	Back          Key
	Quit          Key
	Help          Key
	Refresh       Key
	ShowCompleted Key

	// Task actions
	AddTask      Key
	DeleteTask   Key
	CopyTask     Key
	CompleteTask Key
	PriorityHigh Key
	PriorityMed  Key
	PriorityLow  Key
	PriorityNone Key
	DueToday     Key
	DueTomorrow  Key

	// Navigation between panes
	SwitchPane Key
}

// DefaultKeymap returns the default Vim-style key bindings.
func DefaultKeymap() Keymap {
	return Keymap{
		Up:     Key{Key: "k", Help: "up"},
		Down:   Key{Key: "j", Help: "down"},
		Top:    Key{Key: "g", Help: "top (gg)"},
		Bottom: Key{Key: "G", Help: "bottom"},

		Select:        Key{Key: "enter", Help: "select"},
		Back:          Key{Key: "esc", Help: "back"},
		Quit:          Key{Key: "q", Help: "quit"},
		Help:          Key{Key: "?", Help: "help"},
		Refresh:       Key{Key: "r", Help: "reload"},
		ShowCompleted: Key{Key: "c", Help: "show/hide completed"},

		AddTask:      Key{Key: "a", Help: "add task"},
		DeleteTask:   Key{Key: "d", Help: "delete (dd)"},
		CopyTask:     Key{Key: "y", Help: "copy (yy)"},
		CompleteTask: Key{Key: "x", Help: "complete/uncomplete"},
		PriorityHigh: Key{Key: "1", Help: "priority high"},
		PriorityMed:  Key{Key: "2", Help: "priority medium"},
		PriorityLow:  Key{Key: "3", Help: "priority low"},
		PriorityNone: Key{Key: "0", Help: "no priority"},
		DueToday:     Key{Key: "<", Help: "due today"},
		DueTomorrow:  Key{Key: ">", Help: "due tomorrow"},

		SwitchPane: Key{Key: "tab", Help: "switch pane"},
	}
}

// KeyState tracks multi-key sequences (like 'gg', 'dd' or 'yy').
type KeyState struct {
	LastKey  string
	WaitingG bool // Waiting for second 'g' in 'gg'
	WaitingD bool // Waiting for second 'd' in 'dd'
	WaitingY bool // Waiting for second 'y' in 'yy'
}

// HandleKey processes a key press and returns the action to take.
// Returns the action name and whether the key was consumed.
func (ks *KeyState) HandleKey(msg tea.KeyMsg, keymap Keymap) (string, bool) {
	key := msg.String()

	if ks.WaitingG {
		ks.WaitingG = false
		if key == keymap.Top.Key {
			return "top", true
		}
	}

	if ks.WaitingD {
		ks.WaitingD = false
		if key == keymap.DeleteTask.Key {
			return "delete", true
		}
	}

	if ks.WaitingY {
		ks.WaitingY = false
		if key == keymap.CopyTask.Key {
			return "copy", true
		}
	}

	switch key {
	case keymap.Top.Key:
		ks.WaitingG = true
		ks.LastKey = key
		return "", true
	case keymap.DeleteTask.Key:
		ks.WaitingD = true
		ks.LastKey = key
		return "", true
	case keymap.CopyTask.Key:
		ks.WaitingY = true
		ks.LastKey = key
		return "", true
	}

	switch key {
	case keymap.Up.Key, "up":
		return "up", true
	case keymap.Down.Key, "down":
		return "down", true
	case keymap.Bottom.Key:
		return "bottom", true
	case keymap.Select.Key:
		return "select", true
	case keymap.Back.Key:
		return "back", true
	case keymap.Quit.Key, "ctrl+c":
		return "quit", true
	case keymap.Help.Key:
		return "help", true
	case keymap.Refresh.Key:
		return "refresh", true
	case keymap.ShowCompleted.Key:
		return "toggle_completed", true
	case keymap.AddTask.Key:
		return "add", true
	case keymap.CompleteTask.Key:
		return "complete", true
	case keymap.PriorityHigh.Key:
		return "priority_high", true
	case keymap.PriorityMed.Key:
		return "priority_medium", true
	case keymap.PriorityLow.Key:
		return "priority_low", true
	case keymap.PriorityNone.Key:
		return "priority_none", true
	case keymap.DueToday.Key:
		return "due_today", true
	case keymap.DueTomorrow.Key:
		return "due_tomorrow", true
	case keymap.SwitchPane.Key:
		return "switch_pane", true
	}

	return "", false
}

// Reset clears any pending multi-key sequences.
func (ks *KeyState) Reset() {
	ks.WaitingG = false
	ks.WaitingD = false
	ks.WaitingY = false
	ks.LastKey = ""
}

// HelpItems returns a slice of key-description pairs for the help view.
func (k Keymap) HelpItems() [][]string {
	return [][]string{
		{"Navigation", ""},
		{k.Up.Key + "/" + k.Down.Key, "Move up/down"},
		{"gg/G", "Go to top/bottom"},
		{k.SwitchPane.Key, "Switch pane"},
		{k.Select.Key, "Filter by project or label"},
		{"", ""},
		{"Task Actions", ""},
		{k.AddTask.Key, "Add task (dates like 'tomorrow' are picked up)"},
		{k.CompleteTask.Key, "Complete/uncomplete task"},
		{"dd", "Delete task"},
		{"yy", "Copy task text"},
		{"1/2/3/0", "Set priority"},
		{k.DueToday.Key + "/" + k.DueTomorrow.Key, "Due today/tomorrow"},
		{"", ""},
		{"General", ""},
		{k.ShowCompleted.Key, "Show/hide completed"},
		{k.Refresh.Key, "Reload data"},
		{k.Help.Key, "Toggle help"},
		{k.Back.Key, "Go back / Cancel"},
		{k.Quit.Key, "Quit"},
	}
}
