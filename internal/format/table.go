package format

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"steward-cli/internal/model"
)

// WriteTable renders the payload kinds that have a tabular shape. Anything
// else falls back to pretty JSON so new shapes still print.
func WriteTable(w io.Writer, v any) error {
	switch t := v.(type) {
	case model.Page[model.User]:
		userTable(w, t.Data)
		pageFooter(w, t.Page, t.TotalPages(), t.Total, "users")
	case []model.User:
		userTable(w, t)
	case model.User:
		userTable(w, []model.User{t})
	case model.Page[model.Task]:
		taskTable(w, t.Data)
		pageFooter(w, t.Page, t.TotalPages(), t.Total, "tasks")
	case []model.Task:
		taskTable(w, t)
	case model.Task:
		taskTable(w, []model.Task{t})
	case model.UserStats:
		counts := [][2]string{
			{"total", strconv.Itoa(t.TotalUsers)},
			{"active", strconv.Itoa(t.ActiveUsers)},
			{"inactive", strconv.Itoa(t.InactiveUsers)},
			{"invited", strconv.Itoa(t.InvitedUsers)},
			{"suspended", strconv.Itoa(t.SuspendedUsers)},
		}
		kvTable(w, "USERS", counts)
	case model.TaskStats:
		counts := [][2]string{
			{"total", strconv.Itoa(t.TotalTasks)},
			{"backlog", strconv.Itoa(t.BacklogTasks)},
			{"todo", strconv.Itoa(t.TodoTasks)},
			{"in progress", strconv.Itoa(t.InProgressTasks)},
			{"done", strconv.Itoa(t.DoneTasks)},
			{"canceled", strconv.Itoa(t.CanceledTasks)},
		}
		kvTable(w, "TASKS", counts)
		fmt.Fprintln(w)
		kvTable(w, "PRIORITY", sortedCounts(t.TasksByPriority))
		fmt.Fprintln(w)
		kvTable(w, "LABEL", sortedCounts(t.TasksByLabel))
	case model.Dashboard:
		kvTable(w, "STATUS", sortedCounts(t.StatusDistribution))
		fmt.Fprintln(w)
		kvTable(w, "PRIORITY", sortedCounts(t.PriorityDistribution))
		fmt.Fprintln(w)
		fmt.Fprintln(w, "recent tasks:")
		taskTable(w, t.RecentTasks)
	case model.Profile:
		kvTable(w, "PROFILE", [][2]string{
			{"id", t.ID},
			{"username", t.Username},
			{"name", t.FirstName + " " + t.LastName},
			{"email", t.Email},
			{"role", string(t.Role)},
			{"status", string(t.Status)},
			{"created", humanTime(&t.CreatedAt)},
		})
	case model.Ack:
		fmt.Fprintln(w, t.Message)
	case model.BulkResult:
		fmt.Fprintf(w, "%s (%d deleted, %d failed)\n", t.Message, t.DeletedCount, t.FailedCount)
		for _, id := range t.FailedIDs {
			fmt.Fprintf(w, "  failed: %s\n", id)
		}
	case model.ImportResult:
		fmt.Fprintf(w, "%s (%d imported, %d failed)\n", t.Message, t.ImportedCount, t.FailedCount)
		for _, title := range t.FailedTasks {
			fmt.Fprintf(w, "  failed: %s\n", title)
		}
	case model.InviteResult:
		fmt.Fprintln(w, t.Message)
		for _, email := range t.InvitedUsers {
			fmt.Fprintf(w, "  invited: %s\n", email)
		}
	default:
		return WriteJSON(w, v, true)
	}
	return nil
}

// newTable applies the house style: headers only, no borders, wide padding.
func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

func userTable(w io.Writer, users []model.User) {
	table := newTable(w, []string{"ID", "NAME", "USERNAME", "EMAIL", "PHONE", "STATUS", "ROLE"})
	for _, u := range users {
		table.Append([]string{
			u.ID, u.FullName(), u.Username, u.Email,
			orDash(u.PhoneNumber), string(u.Status), string(u.Role),
		})
	}
	table.Render()
}

func taskTable(w io.Writer, tasks []model.Task) {
	table := newTable(w, []string{"ID", "TITLE", "STATUS", "LABEL", "PRIORITY", "ASSIGNEE", "DUE"})
	for _, t := range tasks {
		assignee := "-"
		if t.Assignee != nil {
			assignee = shortID(*t.Assignee)
		}
		table.Append([]string{
			t.ID, t.Title, string(t.Status), string(t.Label),
			string(t.Priority), assignee, humanTime(t.DueDate),
		})
	}
	table.Render()
}

func kvTable(w io.Writer, header string, rows [][2]string) {
	table := newTable(w, []string{header, "COUNT"})
	for _, r := range rows {
		table.Append([]string{r[0], r[1]})
	}
	table.Render()
}

func pageFooter(w io.Writer, page, totalPages, total int, noun string) {
	if totalPages < 1 {
		totalPages = 1
	}
	fmt.Fprintf(w, "\npage %d of %d (%d %s)\n", page, totalPages, total, noun)
}

func sortedCounts(m map[string]int) [][2]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][2]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, [2]string{k, strconv.Itoa(m[k])})
	}
	return rows
}

// shortID keeps table rows narrow; full ids come from the detail commands.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func orDash(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}

func humanTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
