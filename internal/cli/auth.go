package cli

import (
	"net/http"

	"steward-cli/internal/config"
	"steward-cli/internal/model"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			tok, err := c.Login(cmd.Context(), username, password)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.cfg.API.Token = tok.AccessToken
			if err := config.Save(app.cfg); err != nil {
				return writeErr(cmd, err)
			}
			// Login already adopted the token on the client.
			prof, err := c.Profile(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, prof)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the saved access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Server-side logout is best-effort; clearing the local token is
			// what actually ends the session.
			if app.cfg.API.Token != "" {
				if c, err := newClient(app); err == nil {
					_, _ = c.Logout(cmd.Context())
				}
			}
			app.cfg.API.Token = ""
			if err := config.Save(app.cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, model.Ack{Code: http.StatusOK, Message: "logged out", Success: true})
		},
	}
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			prof, err := c.Profile(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, prof)
		},
	}
	return cmd
}
