package tui

import (
	"context"
	"fmt"
	"strings"

	"steward-cli/internal/model"
	"steward-cli/internal/screens"
	"steward-cli/internal/tablestate"
	"steward-cli/internal/toolbar"

	tea "github.com/charmbracelet/bubbletea"
)

func usersGridSpec() gridSpec {
	return gridSpec{
		noun:        "users",
		searchCol:   "username",
		placeholder: "search name, username, email",
		columns: []gridColumn{
			{id: "username", title: "USERNAME", weight: 3, sortable: true},
			{id: "firstName", title: "NAME", weight: 4, sortable: true},
			{id: "email", title: "EMAIL", weight: 5, sortable: true},
			{id: "status", title: "STATUS", weight: 2, sortable: true},
			{id: "role", title: "ROLE", weight: 2, sortable: true},
			{id: "createdAt", title: "CREATED", weight: 2, sortable: true},
		},
		actions: []toolbar.Action{
			{ID: "activate", Label: "activate"},
			{ID: "suspend", Label: "suspend"},
			{ID: "invite-reminder", Label: "remind"},
			{ID: "delete", Label: "delete"},
		},
		config: screens.Users(),
	}
}

func userCells(u model.User) []string {
	return []string{
		u.Username,
		u.FullName(),
		u.Email,
		string(u.Status),
		string(u.Role),
		u.CreatedAt.Format("2006-01-02"),
	}
}

func (m appModel) fetchUsers() tea.Cmd {
	seq := m.users.beginQuery()
	q := screens.UserQuery(m.users.store.State())
	c := m.client
	return func() tea.Msg {
		page, err := c.ListUsers(context.Background(), q)
		return usersPageMsg{seq: seq, page: page, err: err}
	}
}

func (m appModel) fetchUserStats() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		stats, err := c.UserStats(context.Background())
		return userStatsMsg{stats: stats, err: err}
	}
}

// fetchAssignees loads the user pool the tasks screen resolves assignee
// ids against. One page at the size cap is plenty for seeded data; an
// unknown id falls back to showing the raw id.
func (m appModel) fetchAssignees() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		page, err := c.ListUsers(context.Background(), model.UserListQuery{Page: 1, PageSize: model.MaxPageSize})
		return assigneesMsg{users: page.Data, err: err}
	}
}

func (m appModel) applyUsersPage(msg usersPageMsg) (tea.Model, tea.Cmd) {
	if m.users.stale(msg.seq) {
		// Stale response.
		return m, nil
	}
	if msg.err != nil {
		m.users.loading = false
		cmd := m.flashText("users: " + msg.err.Error())
		return m, cmd
	}
	m.userRows = msg.page.Data
	ids := make([]string, len(msg.page.Data))
	cells := make([][]string, len(msg.page.Data))
	for i, u := range msg.page.Data {
		ids[i] = u.ID
		cells[i] = userCells(u)
	}
	m.users.setPage(ids, cells, msg.page.Total, msg.page.TotalPages())
	// The page can fall out of range when a filter shrinks the result set;
	// clamp once and refetch. EnsurePageInRange is idempotent, so the
	// corrected fetch cannot loop.
	if m.users.store.EnsurePageInRange(msg.page.TotalPages(), tablestate.ResetLast) {
		return m, m.fetchUsers()
	}
	return m, nil
}

func (m appModel) updateUsers(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ev, cmd := m.users.handleKey(msg)
	switch ev.kind {
	case evRefetch:
		return m, tea.Batch(cmd, m.fetchUsers())
	case evRefresh:
		return m, tea.Batch(cmd, m.fetchUsers(), m.fetchUserStats(), m.fetchAssignees())
	case evSelection:
		if ev.armed {
			return m, tea.Batch(cmd, armAnnouncement(screenUsers, ev.pending))
		}
	case evOpenDetail:
		if u, ok := m.currentUser(); ok {
			m.openDetail(u.Username, userDetailMarkdown(u))
		}
	case evRunAction:
		return m.runUsersAction(ev.action)
	case evOpenFilter:
		m.filter = m.newUsersFilter()
	case evCopyAddress:
		return m.copyAddress()
	}
	return m, cmd
}

func (m appModel) currentUser() (model.User, bool) {
	c := m.users.tbl.Cursor()
	if c < 0 || c >= len(m.userRows) {
		return model.User{}, false
	}
	return m.userRows[c], true
}

func (m appModel) runUsersAction(action string) (tea.Model, tea.Cmd) {
	ids := m.users.store.State().SelectedIDs()
	if len(ids) == 0 {
		return m, nil
	}
	c := m.client
	switch action {
	case "activate", "suspend":
		past := "activated"
		if action == "suspend" {
			past = "suspended"
		}
		verb := action
		return m, func() tea.Msg {
			done := 0
			var firstErr error
			for _, id := range ids {
				var err error
				if verb == "activate" {
					_, err = c.ActivateUser(context.Background(), id)
				} else {
					_, err = c.SuspendUser(context.Background(), id)
				}
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					continue
				}
				done++
			}
			return actionDoneMsg{
				screen:  screenUsers,
				text:    fmt.Sprintf("%s %d users", past, done),
				err:     firstErr,
				refetch: true,
			}
		}
	case "invite-reminder":
		n := len(ids)
		return m, func() tea.Msg {
			return actionDoneMsg{
				screen: screenUsers,
				text:   fmt.Sprintf("invite reminder queued for %d users", n),
			}
		}
	case "delete":
		return m, func() tea.Msg {
			res, err := c.BulkDeleteUsers(context.Background(), ids)
			text := fmt.Sprintf("deleted %d users", res.DeletedCount)
			if res.FailedCount > 0 {
				text += fmt.Sprintf(", %d failed", res.FailedCount)
			}
			return actionDoneMsg{screen: screenUsers, text: text, err: err, refetch: true}
		}
	}
	return m, nil
}

// newUsersFilter builds the status/role facet modal. Status options carry
// counts from the stats endpoint; roles are uncounted.
func (m appModel) newUsersFilter() *filterModal {
	counts := map[model.UserStatus]int{
		model.UserStatusActive:    m.userStats.ActiveUsers,
		model.UserStatusInactive:  m.userStats.InactiveUsers,
		model.UserStatusInvited:   m.userStats.InvitedUsers,
		model.UserStatusSuspended: m.userStats.SuspendedUsers,
	}
	applied := func(col string) map[string]bool {
		sel := map[string]bool{}
		for _, v := range m.users.staging.Filter(col) {
			sel[v] = true
		}
		return sel
	}

	statusSel := applied("status")
	var statusOpts []pickerOption
	for _, s := range model.UserStatuses() {
		statusOpts = append(statusOpts, pickerOption{
			id: string(s), label: string(s), count: counts[s], selected: statusSel[string(s)],
		})
	}
	roleSel := applied("role")
	var roleOpts []pickerOption
	for _, r := range model.UserRoles() {
		roleOpts = append(roleOpts, pickerOption{
			id: string(r), label: string(r), count: -1, selected: roleSel[string(r)],
		})
	}

	return newFilterModal(screenUsers, m.users.bar.RegisterOverlay(), []facetEditor{
		{columnID: "status", pick: newPicker("", true, statusOpts)},
		{columnID: "role", pick: newPicker("", true, roleOpts)},
	})
}

func userDetailMarkdown(u model.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", u.FullName())
	fmt.Fprintf(&b, "- **Username:** %s\n", u.Username)
	fmt.Fprintf(&b, "- **Email:** %s\n", u.Email)
	if u.PhoneNumber != nil && *u.PhoneNumber != "" {
		fmt.Fprintf(&b, "- **Phone:** %s\n", *u.PhoneNumber)
	}
	fmt.Fprintf(&b, "- **Status:** %s\n", u.Status)
	fmt.Fprintf(&b, "- **Role:** %s\n", u.Role)
	fmt.Fprintf(&b, "- **Created:** %s\n", u.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "- **Updated:** %s\n", u.UpdatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "\n`%s`\n", u.ID)
	return b.String()
}
