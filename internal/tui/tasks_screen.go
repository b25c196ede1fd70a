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

func tasksGridSpec() gridSpec {
	return gridSpec{
		noun:        "tasks",
		searchCol:   "title",
		placeholder: "search title",
		columns: []gridColumn{
			{id: "id", title: "ID", weight: 3},
			{id: "title", title: "TITLE", weight: 7, sortable: true},
			{id: "status", title: "STATUS", weight: 3, sortable: true},
			{id: "label", title: "LABEL", weight: 3, sortable: true},
			{id: "priority", title: "PRIORITY", weight: 2, sortable: true},
			{id: "assignee", title: "ASSIGNEE", weight: 3, sortable: true},
			{id: "dueDate", title: "DUE", weight: 2, sortable: true},
		},
		actions: []toolbar.Action{
			{ID: "status", Label: "set status"},
			{ID: "assign", Label: "assign"},
			{ID: "delete", Label: "delete"},
		},
		config: screens.Tasks(),
	}
}

func (m appModel) taskCells(t model.Task) []string {
	assignee := ""
	if t.Assignee != nil {
		assignee = m.assigneeName(*t.Assignee)
	}
	due := ""
	if t.DueDate != nil {
		due = t.DueDate.Format("2006-01-02")
	}
	return []string{
		t.ID,
		t.Title,
		string(t.Status),
		string(t.Label),
		string(t.Priority),
		assignee,
		due,
	}
}

// assigneeName resolves a user id against the assignee pool; unknown ids
// render as-is.
func (m appModel) assigneeName(id string) string {
	for _, u := range m.assignees {
		if u.ID == id {
			return u.Username
		}
	}
	return id
}

func (m appModel) fetchTasks() tea.Cmd {
	seq := m.tasks.beginQuery()
	q := screens.TaskQuery(m.tasks.store.State())
	c := m.client
	return func() tea.Msg {
		page, err := c.ListTasks(context.Background(), q)
		return tasksPageMsg{seq: seq, page: page, err: err}
	}
}

func (m appModel) fetchTaskStats() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		stats, err := c.TaskStats(context.Background())
		return taskStatsMsg{stats: stats, err: err}
	}
}

func (m appModel) applyTasksPage(msg tasksPageMsg) (tea.Model, tea.Cmd) {
	if m.tasks.stale(msg.seq) {
		// Stale response.
		return m, nil
	}
	if msg.err != nil {
		m.tasks.loading = false
		cmd := m.flashText("tasks: " + msg.err.Error())
		return m, cmd
	}
	m.taskRows = msg.page.Data
	ids := make([]string, len(msg.page.Data))
	cells := make([][]string, len(msg.page.Data))
	for i, t := range msg.page.Data {
		ids[i] = t.ID
		cells[i] = m.taskCells(t)
	}
	m.tasks.setPage(ids, cells, msg.page.Total, msg.page.TotalPages())
	if m.tasks.store.EnsurePageInRange(msg.page.TotalPages(), tablestate.ResetLast) {
		return m, m.fetchTasks()
	}
	return m, nil
}

func (m appModel) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ev, cmd := m.tasks.handleKey(msg)
	switch ev.kind {
	case evRefetch:
		return m, tea.Batch(cmd, m.fetchTasks())
	case evRefresh:
		return m, tea.Batch(cmd, m.fetchTasks(), m.fetchTaskStats(), m.fetchAssignees())
	case evSelection:
		if ev.armed {
			return m, tea.Batch(cmd, armAnnouncement(screenTasks, ev.pending))
		}
	case evOpenDetail:
		if t, ok := m.currentTask(); ok {
			m.openDetail(t.ID, m.taskDetailMarkdown(t))
		}
	case evRunAction:
		return m.runTasksAction(ev.action)
	case evOpenFilter:
		m.filter = m.newTasksFilter()
	case evCopyAddress:
		return m.copyAddress()
	}
	return m, cmd
}

func (m appModel) currentTask() (model.Task, bool) {
	c := m.tasks.tbl.Cursor()
	if c < 0 || c >= len(m.taskRows) {
		return model.Task{}, false
	}
	return m.taskRows[c], true
}

// actionOverlay is a toolbar-owned dropdown: pick a status or an assignee,
// apply it to every selected task. It holds an overlay registration so esc
// closes the dropdown without clearing the selection.
type actionOverlay struct {
	action  string
	pick    picker
	release func()
}

func (o *actionOverlay) view(width, height int) string {
	title := "set status"
	if o.action == "assign" {
		title = "assign to"
	}
	var b strings.Builder
	b.WriteString(title + "\n\n")
	b.WriteString(o.pick.view(width - 16))
	b.WriteString("\n")
	b.WriteString(styleMuted().Render("enter choose · esc cancel"))
	return centerBox(width, height, b.String())
}

func (m appModel) runTasksAction(action string) (tea.Model, tea.Cmd) {
	ids := m.tasks.store.State().SelectedIDs()
	if len(ids) == 0 {
		return m, nil
	}
	switch action {
	case "status":
		var opts []pickerOption
		for _, s := range model.TaskStatuses() {
			opts = append(opts, pickerOption{id: string(s), label: string(s), count: -1})
		}
		m.overlay = &actionOverlay{
			action:  "status",
			pick:    newPicker("", false, opts),
			release: m.tasks.bar.RegisterOverlay(),
		}
		return m, nil
	case "assign":
		var opts []pickerOption
		for _, u := range m.assignees {
			opts = append(opts, pickerOption{id: u.ID, label: u.Username + " · " + u.FullName(), count: -1})
		}
		if len(opts) == 0 {
			cmd := m.flashText("no users loaded to assign")
			return m, cmd
		}
		m.overlay = &actionOverlay{
			action:  "assign",
			pick:    newPicker("", false, opts),
			release: m.tasks.bar.RegisterOverlay(),
		}
		return m, nil
	case "delete":
		c := m.client
		return m, func() tea.Msg {
			res, err := c.BulkDeleteTasks(context.Background(), ids)
			text := fmt.Sprintf("deleted %d tasks", res.DeletedCount)
			if res.FailedCount > 0 {
				text += fmt.Sprintf(", %d failed", res.FailedCount)
			}
			return actionDoneMsg{screen: screenTasks, text: text, err: err, refetch: true}
		}
	}
	return m, nil
}

func (m appModel) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	o := m.overlay
	next, done, canceled, chosen := o.pick.update(msg)
	o.pick = next
	if !done {
		return m, nil
	}
	o.release()
	m.overlay = nil
	if canceled || chosen == "" {
		return m, nil
	}

	ids := m.tasks.store.State().SelectedIDs()
	c := m.client
	switch o.action {
	case "status":
		status := model.TaskStatus(chosen)
		return m, func() tea.Msg {
			applied := 0
			var firstErr error
			for _, id := range ids {
				if _, err := c.SetTaskStatus(context.Background(), id, status); err != nil {
					if firstErr == nil {
						firstErr = err
					}
					continue
				}
				applied++
			}
			return actionDoneMsg{
				screen:  screenTasks,
				text:    fmt.Sprintf("set %d tasks to %s", applied, status),
				err:     firstErr,
				refetch: true,
			}
		}
	case "assign":
		name := m.assigneeName(chosen)
		return m, func() tea.Msg {
			applied := 0
			var firstErr error
			for _, id := range ids {
				if _, err := c.AssignTask(context.Background(), id, chosen); err != nil {
					if firstErr == nil {
						firstErr = err
					}
					continue
				}
				applied++
			}
			return actionDoneMsg{
				screen:  screenTasks,
				text:    fmt.Sprintf("assigned %d tasks to %s", applied, name),
				err:     firstErr,
				refetch: true,
			}
		}
	}
	return m, nil
}

// newTasksFilter builds the status/label/priority/assignee facet modal.
// Counts come from the task stats rollup.
func (m appModel) newTasksFilter() *filterModal {
	statusCounts := map[model.TaskStatus]int{
		model.TaskBacklog:    m.taskStats.BacklogTasks,
		model.TaskTodo:       m.taskStats.TodoTasks,
		model.TaskInProgress: m.taskStats.InProgressTasks,
		model.TaskDone:       m.taskStats.DoneTasks,
		model.TaskCanceled:   m.taskStats.CanceledTasks,
	}
	applied := func(col string) map[string]bool {
		sel := map[string]bool{}
		for _, v := range m.tasks.staging.Filter(col) {
			sel[v] = true
		}
		return sel
	}

	sel := applied("status")
	var statusOpts []pickerOption
	for _, s := range model.TaskStatuses() {
		statusOpts = append(statusOpts, pickerOption{
			id: string(s), label: string(s), count: statusCounts[s], selected: sel[string(s)],
		})
	}
	sel = applied("label")
	var labelOpts []pickerOption
	for _, l := range model.TaskLabels() {
		labelOpts = append(labelOpts, pickerOption{
			id: string(l), label: string(l), count: countOr(m.taskStats.TasksByLabel, string(l)), selected: sel[string(l)],
		})
	}
	sel = applied("priority")
	var prioOpts []pickerOption
	for _, p := range model.TaskPriorities() {
		prioOpts = append(prioOpts, pickerOption{
			id: string(p), label: string(p), count: countOr(m.taskStats.TasksByPriority, string(p)), selected: sel[string(p)],
		})
	}
	sel = applied("assignee")
	var assigneeOpts []pickerOption
	for _, u := range m.assignees {
		assigneeOpts = append(assigneeOpts, pickerOption{
			id: u.ID, label: u.Username, count: -1, selected: sel[u.ID],
		})
	}

	return newFilterModal(screenTasks, m.tasks.bar.RegisterOverlay(), []facetEditor{
		{columnID: "status", pick: newPicker("", true, statusOpts)},
		{columnID: "label", pick: newPicker("", true, labelOpts)},
		{columnID: "priority", pick: newPicker("", true, prioOpts)},
		{columnID: "assignee", pick: newPicker("", true, assigneeOpts)},
	})
}

func countOr(m map[string]int, key string) int {
	if m == nil {
		return 0
	}
	return m[key]
}

func (m appModel) taskDetailMarkdown(t model.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Title)
	fmt.Fprintf(&b, "- **Status:** %s\n", t.Status)
	fmt.Fprintf(&b, "- **Label:** %s\n", t.Label)
	fmt.Fprintf(&b, "- **Priority:** %s\n", t.Priority)
	if t.Assignee != nil && *t.Assignee != "" {
		fmt.Fprintf(&b, "- **Assignee:** %s\n", m.assigneeName(*t.Assignee))
	}
	if t.DueDate != nil {
		fmt.Fprintf(&b, "- **Due:** %s\n", t.DueDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "- **Created:** %s\n", t.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "- **Updated:** %s\n", t.UpdatedAt.Format("2006-01-02 15:04"))
	if t.Description != nil && strings.TrimSpace(*t.Description) != "" {
		fmt.Fprintf(&b, "\n## Description\n\n%s\n", *t.Description)
	}
	fmt.Fprintf(&b, "\n`%s`\n", t.ID)
	return b.String()
}
