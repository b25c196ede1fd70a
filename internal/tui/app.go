package tui

import (
	"time"

	"steward-cli/internal/apiclient"
	"steward-cli/internal/model"
	"steward-cli/internal/tablestate"
	"steward-cli/internal/toolbar"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type screenID int

const (
	screenUsers screenID = iota
	screenTasks
	screenDashboard
)

// appModel is the whole console. Grids are pointers, so their state
// survives the value-receiver Update; plain fields are mutated on the local
// copy and returned.
type appModel struct {
	client *apiclient.Client

	// One in-memory address per listing screen. Screens are routes: both
	// own a status key, with user statuses on one and task statuses on the
	// other, so they cannot share a bag.
	usersAddr *tablestate.Memory
	tasksAddr *tablestate.Memory

	width, height int
	screen        screenID

	users *grid
	tasks *grid

	// Typed page data, parallel to the grids' rows.
	userRows []model.User
	taskRows []model.Task

	userStats model.UserStats
	taskStats model.TaskStats
	// assignees is the user pool for the tasks screen: assignee cells, the
	// assignee facet and the assign picker all read it.
	assignees []model.User

	dash        model.Dashboard
	dashSeq     int
	dashLoading bool
	dashLoaded  bool

	filter  *filterModal
	overlay *actionOverlay
	detail  detailState

	minibuffer    string
	minibufferSeq int
}

func newAppModel(c *apiclient.Client) appModel {
	m := appModel{
		client:    c,
		usersAddr: tablestate.NewMemory(nil),
		tasksAddr: tablestate.NewMemory(nil),
	}
	m.users = newGrid(usersGridSpec(), m.usersAddr)
	m.tasks = newGrid(tasksGridSpec(), m.tasksAddr)
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.fetchUsers(), m.fetchUserStats(), m.fetchAssignees())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case usersPageMsg:
		return m.applyUsersPage(msg)

	case tasksPageMsg:
		return m.applyTasksPage(msg)

	case userStatsMsg:
		if msg.err == nil {
			m.userStats = msg.stats
		}
		return m, nil

	case taskStatsMsg:
		if msg.err == nil {
			m.taskStats = msg.stats
		}
		return m, nil

	case assigneesMsg:
		if msg.err == nil {
			m.assignees = msg.users
		}
		return m, nil

	case dashboardMsg:
		if msg.seq != m.dashSeq {
			// Stale response.
			return m, nil
		}
		m.dashLoading = false
		if msg.err != nil {
			cmd := m.flashText("dashboard: " + msg.err.Error())
			return m, cmd
		}
		m.dash = msg.dash
		m.dashLoaded = true
		return m, nil

	case announcePublishMsg:
		g := m.gridFor(msg.screen)
		if g == nil || !g.bar.Publish(msg.pending) {
			// Superseded while waiting a cycle.
			return m, nil
		}
		scr, seq := msg.screen, msg.pending.Seq
		return m, tea.Tick(toolbar.ClearAnnouncementAfter, func(time.Time) tea.Msg {
			return announceExpireMsg{screen: scr, seq: seq}
		})

	case announceExpireMsg:
		if g := m.gridFor(msg.screen); g != nil {
			g.bar.Expire(msg.seq)
		}
		return m, nil

	case actionDoneMsg:
		return m.applyActionDone(msg)

	case minibufferClearMsg:
		if msg.seq == m.minibufferSeq {
			m.minibuffer = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.detail.open {
		return m.updateDetail(msg)
	}
	if m.overlay != nil {
		return m.updateOverlay(msg)
	}
	if m.filter != nil {
		return m.updateFilter(msg)
	}

	typing := false
	if g := m.currentGrid(); g != nil && g.searching {
		typing = true
	}
	if !typing {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			return m.switchScreen(1)
		case "shift+tab":
			return m.switchScreen(-1)
		}
	}

	switch m.screen {
	case screenUsers:
		return m.updateUsers(msg)
	case screenTasks:
		return m.updateTasks(msg)
	default:
		return m.updateDashboard(msg)
	}
}

func (m appModel) switchScreen(dir int) (tea.Model, tea.Cmd) {
	m.screen = screenID((int(m.screen) + dir + 3) % 3)
	switch m.screen {
	case screenTasks:
		if m.taskRows == nil && !m.tasks.loading {
			return m, tea.Batch(m.fetchTasks(), m.fetchTaskStats())
		}
	case screenDashboard:
		cmd := m.fetchDashboard()
		return m, cmd
	}
	return m, nil
}

func (m appModel) gridFor(s screenID) *grid {
	switch s {
	case screenUsers:
		return m.users
	case screenTasks:
		return m.tasks
	}
	return nil
}

func (m appModel) currentGrid() *grid { return m.gridFor(m.screen) }

func (m appModel) addrFor(s screenID) *tablestate.Memory {
	if s == screenTasks {
		return m.tasksAddr
	}
	return m.usersAddr
}

func (m appModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	applied, closed := m.filter.handleKey(msg)
	if !closed {
		return m, nil
	}
	f := m.filter
	m.filter = nil
	if !applied {
		return m, nil
	}
	g := m.gridFor(f.screen)
	for _, fe := range f.facets {
		g.staging.SetFilter(fe.columnID, fe.pick.selectedIDs())
	}
	g.staging.Apply()
	if f.screen == screenUsers {
		return m, m.fetchUsers()
	}
	return m, m.fetchTasks()
}

func (m appModel) applyActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if g := m.gridFor(msg.screen); g != nil {
		g.store.ClearSelection()
		g.bar.SetSelectionCount(0)
		g.rebuildRows()
	}
	text := msg.text
	if msg.err != nil {
		text = "error: " + msg.err.Error()
	}
	cmds := []tea.Cmd{m.flashText(text)}
	if msg.refetch {
		switch msg.screen {
		case screenUsers:
			cmds = append(cmds, m.fetchUsers(), m.fetchUserStats())
		case screenTasks:
			cmds = append(cmds, m.fetchTasks(), m.fetchTaskStats())
		}
	}
	return m, tea.Batch(cmds...)
}

// flashText shows a transient minibuffer message. The seq makes the timer
// cancelable: a newer flash survives the older clear.
func (m *appModel) flashText(text string) tea.Cmd {
	m.minibuffer = text
	m.minibufferSeq++
	seq := m.minibufferSeq
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return minibufferClearMsg{seq: seq}
	})
}

func (m appModel) copyAddress() (tea.Model, tea.Cmd) {
	enc := m.addrFor(m.screen).Read().Encode()
	if err := copyToClipboard(enc); err != nil {
		cmd := m.flashText("copy failed: " + err.Error())
		return m, cmd
	}
	cmd := m.flashText("address copied")
	return m, cmd
}

// armAnnouncement schedules the publish of a selection announcement one
// cycle after the key that armed it.
func armAnnouncement(screen screenID, p toolbar.Pending) tea.Cmd {
	return func() tea.Msg {
		return announcePublishMsg{screen: screen, pending: p}
	}
}

func (m *appModel) resize() {
	h := m.height - 10
	if h < 3 {
		h = 3
	}
	m.users.setSize(m.width, h)
	m.tasks.setSize(m.width, h)
}

func (m appModel) View() string {
	if m.width == 0 {
		return "loading…"
	}
	if m.detail.open {
		return m.detailView()
	}
	if m.filter != nil {
		return m.filter.view(m.width, m.height)
	}
	if m.overlay != nil {
		return m.overlay.view(m.width, m.height)
	}

	var body string
	switch m.screen {
	case screenUsers:
		body = m.users.view() + "\n" + m.users.footerView(m.usersAddr.Read().Encode())
	case screenTasks:
		body = m.tasks.view() + "\n" + m.tasks.footerView(m.tasksAddr.Read().Encode())
	default:
		body = m.dashboardView()
	}

	return m.tabsView() + "\n\n" + body + "\n" + m.minibufferView()
}

func (m appModel) tabsView() string {
	names := []string{"users", "tasks", "dashboard"}
	active := lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1)
	idle := styleChrome().Padding(0, 1)
	parts := make([]string, 0, len(names)+1)
	parts = append(parts, lipgloss.NewStyle().Bold(true).Render("steward"))
	for i, n := range names {
		if screenID(i) == m.screen {
			parts = append(parts, active.Render(n))
		} else {
			parts = append(parts, idle.Render(n))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// minibufferView shows, in priority order: the transient flash, the live
// selection announcement, the key hints.
func (m appModel) minibufferView() string {
	if m.minibuffer != "" {
		return truncateLine(m.minibuffer, m.width)
	}
	if g := m.currentGrid(); g != nil {
		if a := g.bar.Announcement(); a != "" {
			return truncateLine(a, m.width)
		}
		return styleMuted().Render("tab screens · / search · f filter · s sort · S column · n/p page · space select · enter open · y addr · r refresh · q quit")
	}
	return styleMuted().Render("tab screens · r refresh · q quit")
}

// centerBox places bordered content in the middle of the window.
func centerBox(width, height int, content string) string {
	boxW := width - 8
	if boxW > 64 {
		boxW = 64
	}
	if boxW < 30 {
		boxW = 30
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1, 2).
		Width(boxW).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
