package cli

import (
	"fmt"

	"steward-cli/internal/docs"

	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Built-in guides (for humans and agents)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			human := app.Format == "" || app.Format == "table"

			if len(args) == 0 {
				topics := docs.Topics()
				if human {
					for _, t := range topics {
						fmt.Fprintln(cmd.OutOrStdout(), t)
					}
					return nil
				}
				return writeOut(cmd, app, map[string]any{"topics": topics})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown topic %q (run `steward docs` for the list)", topic))
			}
			if raw || human {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, map[string]any{"topic": topic, "markdown": body})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the raw markdown regardless of --format")
	return cmd
}
