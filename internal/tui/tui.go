// Package tui is the interactive admin console: users and tasks listings
// backed by the table-state engine, a selection toolbar with bulk actions,
// a filter modal, and a dashboard. All data comes through the API client;
// the console holds no state of its own beyond the per-screen address.
package tui

import (
	"steward-cli/internal/apiclient"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the console and blocks until the user quits. theme is the
// tui.theme config value (light, dark or auto).
func Run(c *apiclient.Client, theme string) error {
	applyColorProfilePreference()
	applyThemePreference(theme)
	m := newAppModel(c)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
