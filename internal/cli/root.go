// Package cli wires the cobra command tree. The bare command launches the
// interactive console; subcommands cover every admin operation for scripts
// and agents.
package cli

import (
	"fmt"
	"os"
	"strings"

	"steward-cli/internal/apiclient"
	"steward-cli/internal/config"
	"steward-cli/internal/format"
	"steward-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Server     string
	Format     string
	PrettyJSON bool

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "steward",
		Short:        "Admin console (TUI + CLI) for the steward user/task API",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the API server with demo data
  steward serve --seed

  # Start the interactive console
  steward

  # Scriptable commands
  steward users list --status active,invited --format json
  steward tasks list --at "status=todo&status=in+progress&sortBy=priority&sortOrder=asc"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive console.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		app.cfg = cfg
		if app.Server == "" {
			app.Server = cfg.API.BaseURL
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", "", "API base URL (default: api.base_url from config)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("STEWARD_FORMAT", "table"), "Output format (table|json|edn)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newSeedCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	c, err := newClient(app)
	if err != nil {
		return err
	}
	return tui.Run(c, app.cfg.TUI.Theme)
}

// newClient builds the API client from the resolved server address and the
// token saved by `steward login`.
func newClient(app *App) (*apiclient.Client, error) {
	return apiclient.New(app.Server, app.cfg.API.Token)
}

// ptr lifts a flag value into the patch shapes, which use nil for "leave
// unchanged".
func ptr[T any](v T) *T { return &v }

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
