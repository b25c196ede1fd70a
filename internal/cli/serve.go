package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"steward-cli/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var dbPath string
	var seed bool
	var reset bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin API server",
		Example: strings.TrimSpace(`
  # Serve on the configured address with demo data
  steward serve --seed

  # Fresh database on another port
  steward serve --addr 127.0.0.1:9000 --db ./steward.db --seed --reset
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if addr == "" {
				addr = app.cfg.Server.Addr
			}
			if dbPath == "" {
				dbPath = app.cfg.DB.Path
			}

			st, err := openStore(ctx, dbPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			if seed || reset {
				opts := server.SeedOptions{Reset: reset}
				if seed {
					opts.Users = app.cfg.Seed.Users
					opts.Tasks = app.cfg.Seed.Tasks
				}
				if err := server.Seed(ctx, st, opts); err != nil {
					return writeErr(cmd, err)
				}
			}

			return server.NewServer(st).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (default: server.addr from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: db.path from config)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Seed demo data before serving (no-op when users already exist)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Wipe existing rows before seeding")
	return cmd
}

func newSeedCmd(app *App) *cobra.Command {
	var dbPath string
	var users int
	var tasks int
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with demo users and tasks",
		Example: strings.TrimSpace(`
  # Staple fixtures plus the configured bulk sizes
  steward seed

  # A small, fresh dataset
  steward seed --users 20 --tasks 50 --reset
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = app.cfg.DB.Path
			}
			if users < 0 {
				users = app.cfg.Seed.Users
			}
			if tasks < 0 {
				tasks = app.cfg.Seed.Tasks
			}

			st, err := openStore(cmd.Context(), dbPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			opts := server.SeedOptions{Users: users, Tasks: tasks, Reset: reset}
			if err := server.Seed(cmd.Context(), st, opts); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: db.path from config)")
	cmd.Flags().IntVar(&users, "users", -1, "Bulk users on top of the staples (default: seed.users from config)")
	cmd.Flags().IntVar(&tasks, "tasks", -1, "Bulk tasks on top of the staples (default: seed.tasks from config)")
	cmd.Flags().BoolVar(&reset, "reset", false, "Wipe existing rows before seeding")
	return cmd
}

// openStore creates the database directory if needed, then opens the store.
func openStore(ctx context.Context, path string) (*server.Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return server.Open(ctx, path)
}
