package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Ordinal maps a priority to its rank (Low=1, Medium=2, High=3) for sorting.
// Unknown values rank below Low so malformed server data never panics a sort.
func (p Priority) Ordinal() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

type Status string

const (
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
)

// Toggled flips between active and complete.
func (s Status) Toggled() Status {
	if s == StatusComplete {
		return StatusActive
	}
	return StatusComplete
}

type Course struct {
	ID         string `json:"id"`
	CourseName string `json:"courseName"`
	CourseCode string `json:"courseCode,omitempty"`
	ColorTag   string `json:"colorTag"`
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CourseID    string     `json:"courseId"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
}

type SortKey string

const (
	SortByTitle    SortKey = "title"
	SortByDueDate  SortKey = "dueDate"
	SortByPriority SortKey = "priority"
)

type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// AllCourses is the sentinel course filter matching every course.
const AllCourses = "all"

// FilterSpec is the transient, UI-local view specification. It is never persisted.
type FilterSpec struct {
	SelectedCourseID string
	ShowArchived     bool
	SortKey          SortKey
	SortDirection    SortDirection
}

// DefaultFilterSpec matches the dashboard's initial state: all courses, active
// tasks, soonest due date first.
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{
		SelectedCourseID: AllCourses,
		ShowArchived:     false,
		SortKey:          SortByDueDate,
		SortDirection:    SortAscending,
	}
}
