package cli

import (
	"fmt"
	"strings"

	"steward-cli/internal/model"
	"steward-cli/internal/screens"
	"steward-cli/internal/tablestate"

	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User management commands",
	}
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersGetCmd(app))
	cmd.AddCommand(newUsersCreateCmd(app))
	cmd.AddCommand(newUsersUpdateCmd(app))
	cmd.AddCommand(newUsersDeleteCmd(app))
	cmd.AddCommand(newUsersBulkDeleteCmd(app))
	cmd.AddCommand(newUsersInviteCmd(app))
	cmd.AddCommand(newUsersActivateCmd(app))
	cmd.AddCommand(newUsersSuspendCmd(app))
	cmd.AddCommand(newUsersStatsCmd(app))
	return cmd
}

// userQueryFromAddress replays an encoded listing address through the same
// codec and screen config the console uses, so a copied address means the
// same query here.
func userQueryFromAddress(at string) (model.UserListQuery, error) {
	addr, err := tablestate.ParseQuery(at)
	if err != nil {
		return model.UserListQuery{}, fmt.Errorf("parse --at: %w", err)
	}
	return screens.UserQuery(tablestate.Decode(addr, screens.Users())), nil
}

func newUsersListCmd(app *App) *cobra.Command {
	var at string
	var status, role, search string
	var page, pageSize int
	var sortBy, sortOrder string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Example: strings.TrimSpace(`
  # Filter flags
  steward users list --status active,invited --search smith

  # Replay an address copied from the console; explicit flags still win
  steward users list --at "status=suspended&page=2" --page-size 20
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := userQueryFromAddress(at)
			if err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("status") {
				q.Status = model.SplitList(status)
			}
			if cmd.Flags().Changed("role") {
				q.Role = model.SplitList(role)
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
			out, err := c.ListUsers(cmd.Context(), q)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Encoded listing address to replay (copied from the console)")
	cmd.Flags().StringVar(&status, "status", "", "Status filter, comma-separated (active,inactive,invited,suspended)")
	cmd.Flags().StringVar(&role, "role", "", "Role filter, comma-separated (superadmin,admin,manager,cashier)")
	cmd.Flags().StringVar(&search, "search", "", "Free-text search over name, username, and email")
	cmd.Flags().IntVar(&page, "page", model.DefaultPage, "Page (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", model.DefaultPageSize, "Rows per page (max 100)")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "Sort column (username, email, status, role, createdAt, ...)")
	cmd.Flags().StringVar(&sortOrder, "sort-order", "", "Sort direction (asc|desc)")
	return cmd
}

func newUsersGetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <user-id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			u, err := c.GetUser(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, u)
		},
	}
	return cmd
}

// userPatchFlags declares the shared create/update flag set and returns a
// builder that turns the flags the caller actually set into a patch.
func userPatchFlags(cmd *cobra.Command) func() model.UserPatch {
	var firstName, lastName, username, email, phone, password, status, role string

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&username, "username", "", "Username (unique)")
	cmd.Flags().StringVar(&email, "email", "", "Email (unique)")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&status, "status", "", "Status (active|inactive|invited|suspended)")
	cmd.Flags().StringVar(&role, "role", "", "Role (superadmin|admin|manager|cashier)")

	return func() model.UserPatch {
		var p model.UserPatch
		if cmd.Flags().Changed("first-name") {
			p.FirstName = ptr(firstName)
		}
		if cmd.Flags().Changed("last-name") {
			p.LastName = ptr(lastName)
		}
		if cmd.Flags().Changed("username") {
			p.Username = ptr(username)
		}
		if cmd.Flags().Changed("email") {
			p.Email = ptr(email)
		}
		if cmd.Flags().Changed("phone") {
			p.PhoneNumber = ptr(phone)
		}
		if cmd.Flags().Changed("password") {
			p.Password = ptr(password)
		}
		if cmd.Flags().Changed("status") {
			p.Status = ptr(model.UserStatus(status))
		}
		if cmd.Flags().Changed("role") {
			p.Role = ptr(model.UserRole(role))
		}
		return p
	}
}

func newUsersCreateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Example: strings.TrimSpace(`
  steward users create --username mlara --email mlara@example.com \
    --first-name Maria --last-name Lara --role manager
`),
	}
	patch := userPatchFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := newClient(app)
		if err != nil {
			return writeErr(cmd, err)
		}
		u, err := c.CreateUser(cmd.Context(), patch())
		if err != nil {
			return writeErr(cmd, err)
		}
		return writeOut(cmd, app, u)
	}
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUsersUpdateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Update a user (only the flags you pass change)",
		Args:  cobra.ExactArgs(1),
	}
	patch := userPatchFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := newClient(app)
		if err != nil {
			return writeErr(cmd, err)
		}
		u, err := c.UpdateUser(cmd.Context(), args[0], patch())
		if err != nil {
			return writeErr(cmd, err)
		}
		return writeOut(cmd, app, u)
	}
	return cmd
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.DeleteUser(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}
	return cmd
}

func newUsersBulkDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk-delete <user-id>...",
		Short: "Delete several users; failures are reported per id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.BulkDeleteUsers(cmd.Context(), args)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}
	return cmd
}

func newUsersInviteCmd(app *App) *cobra.Command {
	var email string
	var role string

	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite a user by email",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.InviteUser(cmd.Context(), email, model.UserRole(role))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address to invite")
	cmd.Flags().StringVar(&role, "role", "", "Role for the invited user (default: cashier)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUsersActivateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate <user-id>",
		Short: "Set a user's status to active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.ActivateUser(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}
	return cmd
}

func newUsersSuspendCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suspend <user-id>",
		Short: "Set a user's status to suspended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.SuspendUser(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}
	return cmd
}

func newUsersStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "User counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := c.UserStats(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, out)
		},
	}
	return cmd
}
