package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"courseterm/internal/api"
)

func newCoursesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Course commands",
	}
	cmd.AddCommand(newCoursesListCmd(app))
	cmd.AddCommand(newCoursesCreateCmd(app))
	cmd.AddCommand(newCoursesUpdateCmd(app))
	cmd.AddCommand(newCoursesDeleteCmd(app))
	return cmd
}

func newCoursesListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			courses, err := client.ListCourses(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": courses})
		},
	}
	return cmd
}

func newCoursesCreateCmd(app *App) *cobra.Command {
	var name, code, color string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			course, err := client.CreateCourse(cmd.Context(), api.CourseDraft{
				CourseName: strings.TrimSpace(name),
				CourseCode: strings.TrimSpace(code),
				ColorTag:   strings.TrimSpace(color),
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": course})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Course name")
	cmd.Flags().StringVar(&code, "code", "", "Course code (e.g. CS-101)")
	cmd.Flags().StringVar(&color, "color", "#cccccc", "Colour tag (hex)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCoursesUpdateCmd(app *App) *cobra.Command {
	var name, code, color string

	cmd := &cobra.Command{
		Use:   "update <course-id>",
		Short: "Update a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			course, err := client.UpdateCourse(cmd.Context(), args[0], api.CourseDraft{
				CourseName: strings.TrimSpace(name),
				CourseCode: strings.TrimSpace(code),
				ColorTag:   strings.TrimSpace(color),
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": course})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Course name")
	cmd.Flags().StringVar(&code, "code", "", "Course code")
	cmd.Flags().StringVar(&color, "color", "", "Colour tag (hex)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCoursesDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <course-id>",
		Short: "Delete a course (its tasks go with it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := client.DeleteCourse(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"deleted": args[0]}})
		},
	}
	return cmd
}
