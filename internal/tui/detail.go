package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// detailState is the full-screen record view: markdown rendered once on
// open, then scrolled by line.
type detailState struct {
	open   bool
	title  string
	lines  []string
	offset int
}

func (m *appModel) openDetail(title, markdown string) {
	width := m.width - 4
	if width > 96 {
		width = 96
	}
	rendered := renderMarkdown(markdown, width)
	m.detail = detailState{
		open:  true,
		title: title,
		lines: strings.Split(rendered, "\n"),
	}
}

func (m appModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		m.detail = detailState{}
		return m, nil
	case "up", "k":
		if m.detail.offset > 0 {
			m.detail.offset--
		}
	case "down", "j":
		if m.detail.offset < m.detail.maxOffset(m.height) {
			m.detail.offset++
		}
	case "home", "g":
		m.detail.offset = 0
	case "end", "G":
		m.detail.offset = m.detail.maxOffset(m.height)
	}
	return m, nil
}

func (d detailState) maxOffset(height int) int {
	visible := height - 4
	if visible < 1 {
		visible = 1
	}
	off := len(d.lines) - visible
	if off < 0 {
		off = 0
	}
	return off
}

func (m appModel) detailView() string {
	d := m.detail
	visible := m.height - 4
	if visible < 1 {
		visible = 1
	}
	end := d.offset + visible
	if end > len(d.lines) {
		end = len(d.lines)
	}
	start := d.offset
	if start > end {
		start = end
	}

	header := lipgloss.NewStyle().Bold(true).Render(d.title)
	if len(d.lines) > visible {
		header += styleMuted().Render(
			"  (" + scrollPosition(start, len(d.lines)-visible) + ")")
	}
	body := strings.Join(d.lines[start:end], "\n")
	footer := styleMuted().Render("↑/↓ scroll · esc back")
	return header + "\n\n" + body + "\n" + footer
}

func scrollPosition(offset, maxOffset int) string {
	if maxOffset <= 0 {
		return "all"
	}
	switch {
	case offset == 0:
		return "top"
	case offset >= maxOffset:
		return "bottom"
	default:
		return "…"
	}
}
