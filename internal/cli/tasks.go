package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"steward-cli/internal/model"
	"steward-cli/internal/screens"
	"steward-cli/internal/tablestate"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task management commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksGetCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksBulkDeleteCmd(app))
	cmd.AddCommand(newTasksStatusCmd(app))
	cmd.AddCommand(newTasksAssignCmd(app))
	cmd.AddCommand(newTasksImportCmd(app))
	cmd.AddCommand(newTasksExportCmd(app))
	cmd.AddCommand(newTasksStatsCmd(app))
	return cmd
}

func taskQueryFromAddress(at string) (model.TaskListQuery, error) {
	addr, err := tablestate.ParseQuery(at)
	if err != nil {
		return model.TaskListQuery{}, fmt.Errorf("parse --at: %w", err)
	}
	return screens.TaskQuery(tablestate.Decode(addr, screens.Tasks())), nil
}

func newTasksListCmd(app *App) *cobra.Command {
	var at string
	var status, label, priority, assignee, search string
	var page, pageSize int
	var sortBy, sortOrder string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Example: strings.TrimSpace(`
  # Open work, most urgent first
  steward tasks list --status "todo,in progress" --sort-by priority --sort-order asc

  # Replay an address copied from the console
  steward tasks list --at "status=todo&status=in+progress&page=3"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := taskQueryFromAddress(at)
			if err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("status") {
				q.Status = model.SplitList(status)
			}
			if cmd.Flags().Changed("label") {
				q.Label = model.SplitList(label)
			}
			if cmd.Flags().Changed("priority") {
				q.Priority = model.SplitList(priority)
			}
			if cmd.Flags().Changed("assignee") {
				q.Assignee = model.SplitList(assignee)
			}
			if cmd.Flags().Changed("search") {
				q.Search = search
			}
			if cmd.Flags().Changed("page") {
				q.Page = page
			}
			if cmd.Flags().Changed("page-size") {
				q.PageSize = pageSize
			}
			if cmd.Flags().Changed("sort-by") {
				q.SortBy = sortBy
			}
			if cmd.Flags().Changed("sort-order") {
				q.SortOrder = sortOrder
			}

			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.ListTasks(cmd.Context(), q)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Encoded listing address to replay (copied from the console)")
	cmd.Flags().StringVar(&status, "status", "", "Status filter, comma-separated (backlog,todo,in progress,done,canceled)")
	cmd.Flags().StringVar(&label, "label", "", "Label filter, comma-separated (bug,feature,documentation)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority filter, comma-separated (low,medium,high,critical)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee user id filter, comma-separated")
	cmd.Flags().StringVar(&search, "search", "", "Free-text search over id, title, and description")
	cmd.Flags().IntVar(&page, "page", model.DefaultPage, "Page (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", model.DefaultPageSize, "Rows per page (max 100)")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "Sort column (title, status, priority, dueDate, createdAt, ...)")
	cmd.Flags().StringVar(&sortOrder, "sort-order", "", "Sort direction (asc|desc)")
	return cmd
}

func newTasksGetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := c.GetTask(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, t)
		},
	}
	return cmd
}

// taskPatchFlags declares the shared create/update flag set and returns a
// builder that turns the flags the caller actually set into a patch.
func taskPatchFlags(cmd *cobra.Command) func() (model.TaskPatch, error) {
	var title, description, status, label, priority, due, assignee string

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&status, "status", "", "Status (backlog|todo|in progress|done|canceled)")
	cmd.Flags().StringVar(&label, "label", "", "Label (bug|feature|documentation)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (low|medium|high|critical)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (2006-01-02 or RFC 3339)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee user id")

	return func() (model.TaskPatch, error) {
		var p model.TaskPatch
		if cmd.Flags().Changed("title") {
			p.Title = ptr(title)
		}
		if cmd.Flags().Changed("description") {
			p.Description = ptr(description)
		}
		if cmd.Flags().Changed("status") {
			p.Status = ptr(model.TaskStatus(status))
		}
		if cmd.Flags().Changed("label") {
			p.Label = ptr(model.TaskLabel(label))
		}
		if cmd.Flags().Changed("priority") {
			p.Priority = ptr(model.TaskPriority(priority))
		}
		if cmd.Flags().Changed("due") {
			t, err := parseDueDate(due)
			if err != nil {
				return model.TaskPatch{}, err
			}
			p.DueDate = t
		}
		if cmd.Flags().Changed("assignee") {
			p.Assignee = ptr(assignee)
		}
		return p, nil
	}
}

func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("parse --due %q: want 2006-01-02 or RFC 3339", s)
	}
	return &t, nil
}

func newTasksCreateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Example: strings.TrimSpace(`
  steward tasks create --title "Rotate the API keys" --priority high --due 2026-09-01
`),
	}
	patch := taskPatchFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		p, err := patch()
		if err != nil {
			return writeErr(cmd, err)
		}
		c, err := newClient(app)
		if err != nil {
			return writeErr(cmd, err)
		}
		t, err := c.CreateTask(cmd.Context(), p)
		if err != nil {
			return writeErr(cmd, err)
		}
		return writeOut(cmd, app, t)
	}
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task (only the flags you pass change)",
		Args:  cobra.ExactArgs(1),
	}
	patch := taskPatchFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		p, err := patch()
		if err != nil {
			return writeErr(cmd, err)
		}
		c, err := newClient(app)
		if err != nil {
			return writeErr(cmd, err)
		}
		t, err := c.UpdateTask(cmd.Context(), args[0], p)
		if err != nil {
			return writeErr(cmd, err)
		}
		return writeOut(cmd, app, t)
	}
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.DeleteTask(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}
	return cmd
}

func newTasksBulkDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk-delete <task-id>...",
		Short: "Delete several tasks; failures are reported per id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.BulkDeleteTasks(cmd.Context(), args)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}
	return cmd
}

func newTasksStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Set a task's status",
		Example: strings.TrimSpace(`
  steward tasks status TASK-1A2B3C4D "in progress"
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.SetTaskStatus(cmd.Context(), args[0], model.TaskStatus(args[1]))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}
	return cmd
}

func newTasksAssignCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <task-id> <user-id>",
		Short: "Assign a task to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.AssignTask(cmd.Context(), args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}
	return cmd
}

func newTasksImportCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tasks from a JSON array",
		Long: strings.TrimSpace(`
Import tasks from a JSON array of task payloads (the same shape "tasks create"
sends). Invalid entries are counted and reported; the rest import.
`),
		Example: strings.TrimSpace(`
  steward tasks import --file backlog.json
  steward tasks export --status done --format json | steward tasks import --file -
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if file == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(file)
			}
			if err != nil {
				return writeErr(cmd, err)
			}

			var tasks []model.TaskPatch
			if err := json.Unmarshal(raw, &tasks); err != nil {
				return writeErr(cmd, fmt.Errorf("parse import file: %w", err))
			}

			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.ImportTasks(cmd.Context(), tasks)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON file to import, or - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newTasksExportCmd(app *App) *cobra.Command {
	var status, label, priority string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks without pagination",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.ExportTasks(cmd.Context(),
				model.SplitList(status), model.SplitList(label), model.SplitList(priority))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Status filter, comma-separated")
	cmd.Flags().StringVar(&label, "label", "", "Label filter, comma-separated")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority filter, comma-separated")
	return cmd
}

func newTasksStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Task counts by status, priority, and label",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.TaskStats(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}
	return cmd
}
