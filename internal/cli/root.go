package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"courseterm/internal/api"
	"courseterm/internal/config"
	"courseterm/internal/format"
	"courseterm/internal/session"
	"courseterm/internal/tokenstore"
	"courseterm/internal/tui"
)

type App struct {
	BaseURL    string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "courseterm",
		Short:        "CourseWork Lite terminal client (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  courseterm

  # Scriptable commands
  courseterm login --email you@school.edu
  courseterm tasks list --course <course-id>
  courseterm tasks done <task-id>
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", envOr("COURSETERM_BASE_URL", ""), "API base URL (overrides config.yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newCoursesCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newAccountCmd(app))

	return cmd
}

func runTUI(app *App) error {
	ctrl, client, err := bootstrap(app)
	if err != nil {
		return err
	}
	return tui.Run(ctrl, client)
}

// bootstrap wires the shared stack for one invocation: config, token store,
// gateway client and session controller.
func bootstrap(app *App) (*session.Controller, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(app.BaseURL) != "" {
		cfg.BaseURL = strings.TrimRight(strings.TrimSpace(app.BaseURL), "/")
	}
	ctrl, client := session.Bootstrap(cfg.BaseURL, tokenstore.Store{})
	return ctrl, client, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
