package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows view until the user quits or ctx is cancelled. b delivers the
// chat core's messages to the program while it runs.
func Run(ctx context.Context, b *Bridge, view ChatView) error {
	p := tea.NewProgram(view, tea.WithAltScreen(), tea.WithContext(ctx))
	b.Attach(p)
	defer b.Detach()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
