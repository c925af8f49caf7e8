package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the explorer until the user quits. surf must be the surface the
// session renders into.
func Run(sess Explorer, surf *Surface, opts Options) error {
	m := New(sess, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	surf.Attach(p)
	defer surf.Attach(nil)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("explorer: %w", err)
	}
	return nil
}
