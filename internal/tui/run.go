package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lockiemedia/lockie/internal/config"
	"github.com/lockiemedia/lockie/internal/store"
)

// Run starts the UI and blocks until the user quits or ctx is cancelled.
// relay, when set, starts delivering store notifications as toasts.
func Run(ctx context.Context, s *store.Store, cfg *config.Config, relay *Relay, opts ...Option) error {
	app := NewApp(s, cfg, opts...)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	detach := Attach(s.Bus(), p.Send)
	defer detach()

	if relay != nil {
		relay.Bind(p.Send)
		defer relay.Bind(nil)
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
