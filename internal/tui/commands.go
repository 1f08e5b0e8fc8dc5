package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"courseterm/internal/api"
	"courseterm/internal/model"
	"courseterm/internal/session"
)

// API calls run as commands so the update loop never blocks on the network.
// Filtering and sorting happen client-side, so tasks are always fetched
// unscoped here.

func fetchCoursesCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		courses, err := client.ListCourses(context.Background())
		if err != nil {
			return dataErrMsg{err}
		}
		return coursesLoadedMsg(courses)
	}
}

func fetchTasksCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		tasks, err := client.ListTasks(context.Background(), "")
		if err != nil {
			return dataErrMsg{err}
		}
		return tasksLoadedMsg(tasks)
	}
}

func loginCmd(ctrl *session.Controller, email, password string) tea.Cmd {
	return func() tea.Msg {
		return loginResultMsg{err: ctrl.Login(context.Background(), email, password)}
	}
}

func registerCmd(ctrl *session.Controller, username, email, password string) tea.Cmd {
	return func() tea.Msg {
		u, err := ctrl.Register(context.Background(), username, email, password)
		return registerResultMsg{user: u, err: err}
	}
}

func updateEmailCmd(client *api.Client, newEmail, password string) tea.Cmd {
	return func() tea.Msg {
		return accountResultMsg{what: "Email", err: client.UpdateEmail(context.Background(), newEmail, password)}
	}
}

func updatePasswordCmd(client *api.Client, current, next string) tea.Cmd {
	return func() tea.Msg {
		return accountResultMsg{what: "Password", err: client.UpdatePassword(context.Background(), current, next)}
	}
}

func createTaskCmd(client *api.Client, draft api.TaskDraft) tea.Cmd {
	return func() tea.Msg {
		t, err := client.CreateTask(context.Background(), draft)
		if err != nil {
			return actionErrMsg{err}
		}
		return taskSavedMsg{task: t, created: true}
	}
}

func updateTaskCmd(client *api.Client, id string, draft api.TaskDraft) tea.Cmd {
	return func() tea.Msg {
		t, err := client.UpdateTask(context.Background(), id, draft)
		if err != nil {
			return actionErrMsg{err}
		}
		return taskSavedMsg{task: t}
	}
}

func toggleTaskCmd(client *api.Client, t model.Task) tea.Cmd {
	return func() tea.Msg {
		updated, err := client.ToggleTaskStatus(context.Background(), t)
		if err != nil {
			return actionErrMsg{err}
		}
		return taskSavedMsg{task: updated}
	}
}

func deleteTaskCmd(client *api.Client, id string) tea.Cmd {
	return func() tea.Msg {
		if err := client.DeleteTask(context.Background(), id); err != nil {
			return actionErrMsg{err}
		}
		return taskRemovedMsg{id: id}
	}
}

func createCourseCmd(client *api.Client, draft api.CourseDraft) tea.Cmd {
	return func() tea.Msg {
		c, err := client.CreateCourse(context.Background(), draft)
		if err != nil {
			return actionErrMsg{err}
		}
		return courseSavedMsg{course: c, created: true}
	}
}

func updateCourseCmd(client *api.Client, id string, draft api.CourseDraft) tea.Cmd {
	return func() tea.Msg {
		c, err := client.UpdateCourse(context.Background(), id, draft)
		if err != nil {
			return actionErrMsg{err}
		}
		return courseSavedMsg{course: c}
	}
}

func deleteCourseCmd(client *api.Client, id string) tea.Cmd {
	return func() tea.Msg {
		if err := client.DeleteCourse(context.Background(), id); err != nil {
			return actionErrMsg{err}
		}
		return courseRemovedMsg{id: id}
	}
}
