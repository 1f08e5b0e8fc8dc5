package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctrl.Restore()

			if password == "" {
				// Read the password from stdin so it stays out of shell history.
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return writeErr(cmd, errors.New("no password provided"))
				}
				password = strings.TrimRight(line, "\r\n")
			}

			if err := ctrl.Login(cmd.Context(), email, password); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"status": "logged in"}})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (omit to read from stdin)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (does not log in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctrl.Restore()

			u, err := ctrl.Register(cmd.Context(), username, email, password)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": u})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Display name (3-50 chars)")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (min 8 chars)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctrl.Restore()
			ctrl.Logout()
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"status": "logged out"}})
		},
	}
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			snap := ctrl.Restore()
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"state":         string(snap.State),
				"authenticated": snap.Authenticated(),
			}})
		},
	}
	return cmd
}
