package tui

import (
	"context"
	"fmt"
	"strings"

	"steward-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m *appModel) fetchDashboard() tea.Cmd {
	m.dashSeq++
	m.dashLoading = true
	seq := m.dashSeq
	c := m.client
	return func() tea.Msg {
		dash, err := c.Dashboard(context.Background())
		return dashboardMsg{seq: seq, dash: dash, err: err}
	}
}

func (m appModel) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "r" {
		cmd := m.fetchDashboard()
		return m, cmd
	}
	return m, nil
}

func (m appModel) dashboardView() string {
	if !m.dashLoaded {
		if m.dashLoading {
			return styleMuted().Render("loading…")
		}
		return styleMuted().Render("no data")
	}

	var statusRows []string
	for _, s := range model.TaskStatuses() {
		statusRows = append(statusRows, distRow(string(s), m.dash.StatusDistribution))
	}
	var prioRows []string
	for _, p := range model.TaskPriorities() {
		prioRows = append(prioRows, distRow(string(p), m.dash.PriorityDistribution))
	}

	var recent []string
	for i, t := range m.dash.RecentTasks {
		if i >= 8 {
			break
		}
		recent = append(recent, fmt.Sprintf("%-14s %s %s",
			t.ID, t.Title, styleMuted().Render("("+string(t.Status)+")")))
	}
	if len(recent) == 0 {
		recent = append(recent, styleMuted().Render("no tasks yet"))
	}

	blocks := []string{
		dashBlock("BY STATUS", statusRows),
		dashBlock("BY PRIORITY", prioRows),
		dashBlock("RECENT TASKS", recent),
	}
	if m.width >= 110 {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			blocks[0], " ", blocks[1], " ", blocks[2])
	}
	return strings.Join(blocks, "\n")
}

func distRow(name string, dist map[string]int) string {
	count := 0
	if dist != nil {
		count = dist[name]
	}
	bar := strings.Repeat("▇", barCells(count, dist))
	return fmt.Sprintf("%-12s %4d %s", name, count, bar)
}

// barCells scales a count against the largest bucket, capped at 16 cells.
func barCells(count int, dist map[string]int) int {
	maxCount := 0
	for _, v := range dist {
		if v > maxCount {
			maxCount = v
		}
	}
	if maxCount == 0 || count <= 0 {
		return 0
	}
	cells := count * 16 / maxCount
	if cells < 1 {
		cells = 1
	}
	return cells
}

func dashBlock(title string, rows []string) string {
	content := lipgloss.NewStyle().Bold(true).Foreground(colorChromeFg).Render(title) +
		"\n" + strings.Join(rows, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Render(content)
}
