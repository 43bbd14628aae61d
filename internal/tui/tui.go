package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"invigil/internal/cache"
	"invigil/internal/models"
)

// RunBoard starts the interactive invigilation board for a session.
// timerCache may be nil when restart recovery is disabled.
func RunBoard(session *models.Session, state models.TimerState, timerCache cache.TimerCache) error {
	model := NewBoardModel(session, state, timerCache)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
