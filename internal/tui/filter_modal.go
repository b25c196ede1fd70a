package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// filterModal edits the facet filters of one listing screen. Facets are
// staged locally and committed through the staging buffer in one apply, so
// closing with esc leaves the applied state untouched. While open it holds
// a toolbar overlay registration so esc cannot clear the selection.
type filterModal struct {
	screen  screenID
	release func()
	facets  []facetEditor
	focus   int
}

type facetEditor struct {
	columnID string
	pick     picker
}

func newFilterModal(screen screenID, release func(), facets []facetEditor) *filterModal {
	return &filterModal{screen: screen, release: release, facets: facets}
}

// close releases the toolbar overlay registration.
func (f *filterModal) close() {
	if f.release != nil {
		f.release()
	}
}

// handleKey routes one key. applied is true when enter committed the
// facets; closed is true when the modal is finished either way.
func (f *filterModal) handleKey(msg tea.KeyMsg) (applied, closed bool) {
	switch msg.String() {
	case "esc":
		f.close()
		return false, true
	case "enter":
		f.close()
		return true, true
	case "tab":
		f.focus = (f.focus + 1) % len(f.facets)
		return false, false
	case "shift+tab":
		f.focus = (f.focus - 1 + len(f.facets)) % len(f.facets)
		return false, false
	}
	cur := &f.facets[f.focus]
	cur.pick, _, _, _ = cur.pick.update(msg)
	return false, false
}

func (f *filterModal) view(width, height int) string {
	boxW := width - 8
	if boxW > 64 {
		boxW = 64
	}
	if boxW < 30 {
		boxW = 30
	}

	var tabs []string
	active := lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1)
	idle := styleChrome().Padding(0, 1)
	for i, fe := range f.facets {
		label := fe.columnID
		if n := len(fe.pick.selectedIDs()); n > 0 {
			label += " " + lipgloss.NewStyle().Bold(true).Render("•")
		}
		if i == f.focus {
			tabs = append(tabs, active.Render(label))
		} else {
			tabs = append(tabs, idle.Render(label))
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")
	b.WriteString(f.facets[f.focus].pick.view(boxW - 4))
	b.WriteString("\n")
	b.WriteString(styleMuted().Render("tab facet · space toggle · enter apply · esc cancel"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1, 2).
		Width(boxW).
		Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
