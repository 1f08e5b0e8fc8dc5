package cli

import (
	"github.com/spf13/cobra"
)

func newAccountCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account settings",
	}
	cmd.AddCommand(newAccountEmailCmd(app))
	cmd.AddCommand(newAccountPasswordCmd(app))
	return cmd
}

func newAccountEmailCmd(app *App) *cobra.Command {
	var newEmail, password string

	cmd := &cobra.Command{
		Use:   "email",
		Short: "Change the account email",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := client.UpdateEmail(cmd.Context(), newEmail, password); err != nil {
				return writeErr(cmd, err)
			}
			// The server keys the login on the email, so the next login must use the new one.
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"email": newEmail}})
		},
	}

	cmd.Flags().StringVar(&newEmail, "new", "", "New email address")
	cmd.Flags().StringVar(&password, "password", "", "Current password (confirms identity)")
	_ = cmd.MarkFlagRequired("new")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAccountPasswordCmd(app *App) *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the account password",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := client.UpdatePassword(cmd.Context(), current, next); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"status": "password updated"}})
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password")
	cmd.Flags().StringVar(&next, "new", "", "New password (min 8 chars)")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}
