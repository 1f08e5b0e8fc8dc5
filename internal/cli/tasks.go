package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"courseterm/internal/api"
	"courseterm/internal/model"
	"courseterm/internal/view"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksDoneCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var courseID, sortKey string
	var archived, desc bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (filtered and sorted like the dashboard)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// Course narrowing happens server-side; archival filter and
			// ordering are the same derivation the dashboard uses.
			tasks, err := client.ListTasks(cmd.Context(), courseID)
			if err != nil {
				return writeErr(cmd, err)
			}

			spec := model.FilterSpec{
				SelectedCourseID: model.AllCourses,
				ShowArchived:     archived,
				SortKey:          model.SortKey(sortKey),
				SortDirection:    model.SortAscending,
			}
			if desc {
				spec.SortDirection = model.SortDescending
			}
			return writeOut(cmd, app, map[string]any{"data": view.Derive(tasks, spec)})
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Only tasks for this course id")
	cmd.Flags().BoolVar(&archived, "archived", false, "Show completed tasks instead of active ones")
	cmd.Flags().StringVar(&sortKey, "sort", string(model.SortByDueDate), "Sort key (title|dueDate|priority)")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	return cmd
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var title, description, courseID, due, priority string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			dueDate, err := parseDue(due)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := client.CreateTask(cmd.Context(), api.TaskDraft{
				Title:       strings.TrimSpace(title),
				Description: description,
				CourseID:    courseID,
				DueDate:     dueDate,
				Priority:    model.Priority(priority),
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title (min 3 chars)")
	cmd.Flags().StringVar(&description, "description", "", "Task description (markdown)")
	cmd.Flags().StringVar(&courseID, "course", "", "Course id the task belongs to")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&priority, "priority", string(model.PriorityMedium), "Priority (Low|Medium|High)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title, description, courseID, due, priority, status string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			dueDate, err := parseDue(due)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := client.UpdateTask(cmd.Context(), args[0], api.TaskDraft{
				Title:       strings.TrimSpace(title),
				Description: description,
				CourseID:    courseID,
				DueDate:     dueDate,
				Priority:    model.Priority(priority),
				Status:      model.Status(status),
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&courseID, "course", "", "Course id")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&priority, "priority", string(model.PriorityMedium), "Priority (Low|Medium|High)")
	cmd.Flags().StringVar(&status, "status", string(model.StatusActive), "Status (active|complete)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func newTasksDoneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Toggle a task between active and complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := client.ListTasks(cmd.Context(), "")
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, t := range tasks {
				if t.ID == args[0] {
					updated, err := client.ToggleTaskStatus(cmd.Context(), t)
					if err != nil {
						return writeErr(cmd, err)
					}
					return writeOut(cmd, app, map[string]any{"data": updated})
				}
			}
			return writeErr(cmd, fmt.Errorf("task not found: %s", args[0]))
		},
	}
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := bootstrap(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := client.DeleteTask(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"deleted": args[0]}})
		},
	}
	return cmd
}

func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid due date %q (want YYYY-MM-DD or RFC3339)", s)
}
