package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"courseterm/internal/model"
)

type taskItem struct {
	task        model.Task
	courseName  string
	courseColor string
}

func (i taskItem) FilterValue() string { return i.task.Title + " " + i.courseName }

// courseSwatch renders the course's colour dot; "" when the course carries no
// colour tag (or is unknown).
func courseSwatch(colorTag string) string {
	colorTag = strings.TrimSpace(colorTag)
	if colorTag == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(colorTag)).Render("●")
}

func (i taskItem) line(now time.Time) string {
	check := "[ ]"
	if i.task.Status == model.StatusComplete {
		check = "[x]"
	}

	due := ""
	if i.task.DueDate != nil {
		due = i.task.DueDate.Local().Format("Jan 02")
		if i.task.Status == model.StatusActive && i.task.DueDate.Before(now) {
			due = styleError().Render(due + "!")
		}
	}

	prio := string(i.task.Priority)
	if i.task.Priority == model.PriorityHigh {
		prio = styleAccent().Render(prio)
	}

	course := styleMuted().Render(i.courseName)
	if sw := courseSwatch(i.courseColor); sw != "" {
		course = sw + " " + course
	}

	parts := []string{check, i.task.Title}
	if due != "" {
		parts = append(parts, due)
	}
	parts = append(parts, prio, course)
	return strings.Join(parts, "  ")
}

type taskDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newTaskDelegate() taskDelegate {
	return taskDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d taskDelegate) Height() int  { return 1 }
func (d taskDelegate) Spacing() int { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	it, ok := item.(taskItem)
	if !ok {
		fmt.Fprint(w, fmt.Sprint(item))
		return
	}

	line := it.line(time.Now())
	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}

	fmt.Fprint(w, style.Render(line))
}
