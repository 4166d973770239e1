package tui

import (
	"taskflow-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(ss *store.Session) error {
	applyColorProfilePreference()
	applyThemePreference()
	m := newAppModel(ss)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
