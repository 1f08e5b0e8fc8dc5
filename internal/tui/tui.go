package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"courseterm/internal/api"
	"courseterm/internal/logging"
	"courseterm/internal/session"
)

// Run starts the interactive client and owns the terminal until quit.
func Run(ctrl *session.Controller, client *api.Client) error {
	logging.InitForTUI()
	applyColorProfilePreference()
	applyThemePreference()

	m := newAppModel(ctrl, client)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
