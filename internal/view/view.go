// Package view derives what the task pages render. Everything here is a pure
// function of its inputs: no hidden state, no I/O, directly unit-testable
// without mounting any UI.
package view

import (
	"sort"
	"strings"
	"time"

	"courseterm/internal/model"
)

// UnknownCourseName is rendered when a task references a course that is not
// in the current collection (e.g. deleted concurrently). Referential
// inconsistency is tolerated, never fatal.
const UnknownCourseName = "Unknown Course"

// CourseName resolves a task's course for display.
func CourseName(courses []model.Course, courseID string) string {
	for _, c := range courses {
		if c.ID == courseID {
			return c.CourseName
		}
	}
	return UnknownCourseName
}

// CourseColor resolves a course's colour tag, "" when the course is unknown
// so callers can skip the swatch entirely.
func CourseColor(courses []model.Course, courseID string) string {
	for _, c := range courses {
		if c.ID == courseID {
			return c.ColorTag
		}
	}
	return ""
}

// Derive computes the ordered, filtered task list for a filter spec:
//
//  1. archival filter: ShowArchived selects exactly the complete tasks,
//     otherwise exactly the active ones; the two partitions are disjoint and
//     exhaustive over {active, complete};
//  2. course filter, unless the selection is the "all" sentinel;
//  3. stable sort by the spec's key and direction (ties keep input order).
//
// The input slice is never mutated.
func Derive(tasks []model.Task, spec model.FilterSpec) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if (t.Status == model.StatusComplete) != spec.ShowArchived {
			continue
		}
		if spec.SelectedCourseID != "" && spec.SelectedCourseID != model.AllCourses && t.CourseID != spec.SelectedCourseID {
			continue
		}
		out = append(out, t)
	}

	less := lessFunc(spec.SortKey)
	desc := spec.SortDirection == model.SortDescending
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(key model.SortKey) func(a, b model.Task) bool {
	switch key {
	case model.SortByPriority:
		return func(a, b model.Task) bool { return a.Priority.Ordinal() < b.Priority.Ordinal() }
	case model.SortByDueDate:
		return func(a, b model.Task) bool { return dueOrEpoch(a).Before(dueOrEpoch(b)) }
	default: // title
		return func(a, b model.Task) bool {
			return strings.Compare(a.Title, b.Title) < 0
		}
	}
}

// Tasks without a due date sort as if due at the epoch: first ascending,
// last descending.
func dueOrEpoch(t model.Task) time.Time {
	if t.DueDate == nil {
		return time.Time{}
	}
	return *t.DueDate
}

// ---- Reconciliation ----
//
// Mutations are confirmed by the server and merged back into the locally held
// collections without a refetch. Create appends, Update replaces in place
// (never reorders), Delete removes by id.

func AppendCourse(courses []model.Course, created model.Course) []model.Course {
	return append(courses, created)
}

func AppendTask(tasks []model.Task, created model.Task) []model.Task {
	return append(tasks, created)
}

func ReplaceCourse(courses []model.Course, updated model.Course) []model.Course {
	for i, c := range courses {
		if c.ID == updated.ID {
			courses[i] = updated
			break
		}
	}
	return courses
}

func ReplaceTask(tasks []model.Task, updated model.Task) []model.Task {
	for i, t := range tasks {
		if t.ID == updated.ID {
			tasks[i] = updated
			break
		}
	}
	return tasks
}

func RemoveTask(tasks []model.Task, id string) []model.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// RemoveCourse deletes a course and cascades: every task referencing it goes
// too, and a filter pinned to the deleted course resets to "all".
func RemoveCourse(courses []model.Course, tasks []model.Task, spec model.FilterSpec, id string) ([]model.Course, []model.Task, model.FilterSpec) {
	outCourses := courses[:0]
	for _, c := range courses {
		if c.ID != id {
			outCourses = append(outCourses, c)
		}
	}
	outTasks := tasks[:0]
	for _, t := range tasks {
		if t.CourseID != id {
			outTasks = append(outTasks, t)
		}
	}
	if spec.SelectedCourseID == id {
		spec.SelectedCourseID = model.AllCourses
	}
	return outCourses, outTasks, spec
}

// ---- Reminders ----

// Reminders partitions the active tasks that need attention: Overdue is
// anything already past due, DueSoon is anything due within the next 24h.
type Reminders struct {
	Overdue []model.Task
	DueSoon []model.Task
}

func UpcomingReminders(tasks []model.Task, now time.Time) Reminders {
	var r Reminders
	horizon := now.Add(24 * time.Hour)
	for _, t := range tasks {
		if t.Status != model.StatusActive || t.DueDate == nil {
			continue
		}
		due := *t.DueDate
		switch {
		case due.Before(now):
			r.Overdue = append(r.Overdue, t)
		case !due.After(horizon):
			r.DueSoon = append(r.DueSoon, t)
		}
	}
	return r
}
