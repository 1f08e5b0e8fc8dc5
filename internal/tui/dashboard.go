package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"courseterm/internal/api"
	"courseterm/internal/model"
	"courseterm/internal/route"
	"courseterm/internal/view"
)

const splitViewMinWidth = 100

type dashMode int

const (
	dashBrowse dashMode = iota
	dashNewTask
	dashEditTask
	dashNewCourse
	dashEditCourse
)

type dashboard struct {
	list       list.Model
	mode       dashMode
	taskForm   taskForm
	courseForm courseForm
}

func newDashboard() dashboard {
	return dashboard{list: newTaskList()}
}

func newTaskList() list.Model {
	l := list.New([]list.Item{}, newTaskDelegate(), 0, 0)
	// We render our own header + footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("task", "tasks")
	// Bubble list defaults to quitting on ESC; here ESC is "cancel filter".
	l.KeyMap.Quit.SetKeys("ctrl+c")
	return l
}

func (d dashboard) footer() string {
	switch d.mode {
	case dashNewTask, dashEditTask:
		return styleMuted().Render("tab: next field  ctrl+p: priority  enter: save  esc: cancel")
	case dashNewCourse, dashEditCourse:
		return styleMuted().Render("tab: next field  enter: save  esc: cancel")
	default:
		return styleMuted().Render(
			"space: done  n: new task  e: edit  N: new course  D: delete  c: course  s: sort  o: order  v: archived\n" +
				"E: edit course  g: account  L: log out  r: reload  /: filter  q: quit")
	}
}

// syncTaskList re-derives the visible collection and pushes it into the
// bubbles list, keeping the selection on the same task when it survives.
func (m *appModel) syncTaskList() {
	if !m.coursesLoaded || !m.tasksLoaded {
		return
	}

	curID := ""
	if it, ok := m.dash.list.SelectedItem().(taskItem); ok {
		curID = it.task.ID
	}

	derived := view.Derive(m.tasks, m.spec)
	items := make([]list.Item, 0, len(derived))
	for _, t := range derived {
		items = append(items, taskItem{
			task:        t,
			courseName:  view.CourseName(m.courses, t.CourseID),
			courseColor: view.CourseColor(m.courses, t.CourseID),
		})
	}
	m.dash.list.SetItems(items)

	if curID != "" {
		for i, it := range m.dash.list.Items() {
			if ti, ok := it.(taskItem); ok && ti.task.ID == curID {
				m.dash.list.Select(i)
				break
			}
		}
	}
}

func (m appModel) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.dash.mode {
	case dashNewTask, dashEditTask:
		return m.updateTaskForm(msg)
	case dashNewCourse, dashEditCourse:
		return m.updateCourseForm(msg)
	}

	// While the list filter prompt is open, every key belongs to it.
	if m.dash.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.dash.list, cmd = m.dash.list.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "r":
		return m, m.fetchAll()

	case "c", "tab":
		m.spec.SelectedCourseID = m.nextCourseFilter()
		m.syncTaskList()
		return m, nil

	case "s":
		m.spec.SortKey = nextSortKey(m.spec.SortKey)
		m.syncTaskList()
		return m, nil

	case "o":
		if m.spec.SortDirection == model.SortAscending {
			m.spec.SortDirection = model.SortDescending
		} else {
			m.spec.SortDirection = model.SortAscending
		}
		m.syncTaskList()
		return m, nil

	case "v":
		m.spec.ShowArchived = !m.spec.ShowArchived
		m.syncTaskList()
		return m, nil

	case " ", "x":
		if it, ok := m.dash.list.SelectedItem().(taskItem); ok {
			return m, toggleTaskCmd(m.client, it.task)
		}
		return m, nil

	case "D":
		if it, ok := m.dash.list.SelectedItem().(taskItem); ok {
			return m, deleteTaskCmd(m.client, it.task.ID)
		}
		return m, nil

	case "n":
		m.dash.mode = dashNewTask
		m.dash.taskForm = newTaskForm(m.defaultCourseID())
		return m, m.dash.taskForm.focusCmd()

	case "e":
		if it, ok := m.dash.list.SelectedItem().(taskItem); ok {
			m.dash.mode = dashEditTask
			m.dash.taskForm = newTaskFormFromTask(it.task)
			return m, m.dash.taskForm.focusCmd()
		}
		return m, nil

	case "N":
		m.dash.mode = dashNewCourse
		m.dash.courseForm = newCourseForm()
		return m, m.dash.courseForm.focusCmd()

	case "E":
		// Edits the course the filter is pinned to, like ctrl+x deletes it.
		if id := m.spec.SelectedCourseID; id != "" && id != model.AllCourses {
			for _, c := range m.courses {
				if c.ID == id {
					m.dash.mode = dashEditCourse
					m.dash.courseForm = newCourseFormFromCourse(c)
					return m, m.dash.courseForm.focusCmd()
				}
			}
		}
		return m, nil

	case "ctrl+x":
		// Deletes the course the filter is pinned to; its tasks cascade.
		if id := m.spec.SelectedCourseID; id != "" && id != model.AllCourses {
			return m, deleteCourseCmd(m.client, id)
		}
		return m, nil

	case "g":
		return m, m.navigate(route.PathAccount)

	case "L":
		m.ctrl.Logout()
		m.snap = m.ctrl.Snapshot()
		m.dropData()
		return m, m.navigate(route.PathLanding)
	}

	var cmd tea.Cmd
	m.dash.list, cmd = m.dash.list.Update(msg)
	return m, cmd
}

// nextCourseFilter cycles all -> each course -> all.
func (m appModel) nextCourseFilter() string {
	cur := m.spec.SelectedCourseID
	if cur == "" {
		cur = model.AllCourses
	}
	if len(m.courses) == 0 {
		return model.AllCourses
	}
	if cur == model.AllCourses {
		return m.courses[0].ID
	}
	for i, c := range m.courses {
		if c.ID == cur {
			if i+1 < len(m.courses) {
				return m.courses[i+1].ID
			}
			return model.AllCourses
		}
	}
	return model.AllCourses
}

func nextSortKey(k model.SortKey) model.SortKey {
	switch k {
	case model.SortByDueDate:
		return model.SortByPriority
	case model.SortByPriority:
		return model.SortByTitle
	default:
		return model.SortByDueDate
	}
}

func (m appModel) defaultCourseID() string {
	if id := m.spec.SelectedCourseID; id != "" && id != model.AllCourses {
		return id
	}
	if len(m.courses) > 0 {
		return m.courses[0].ID
	}
	return ""
}

func (m appModel) viewDashboard() string {
	if m.dataErr != "" {
		return styleError().Render(m.dataErr) + "\n\n" + styleMuted().Render("r: retry")
	}
	if !m.coursesLoaded || !m.tasksLoaded {
		return styleMuted().Render("Loading courses and tasks…")
	}

	switch m.dash.mode {
	case dashNewTask, dashEditTask:
		return m.dash.taskForm.view()
	case dashNewCourse, dashEditCourse:
		return m.dash.courseForm.view()
	}

	filterLine := m.viewFilterLine()
	reminders := m.viewReminders(time.Now())

	bodyH := m.height - 8
	if bodyH < 8 {
		bodyH = 8
	}

	if m.width < splitViewMinWidth {
		return joinSections(filterLine, reminders, m.dash.list.View())
	}

	leftW := m.width / 2
	rightW := m.width - leftW - 2
	if rightW < 30 {
		rightW = 30
	}

	var detail string
	if it, ok := m.dash.list.SelectedItem().(taskItem); ok {
		detail = m.viewTaskDetail(it, rightW)
	} else {
		detail = styleMuted().Render("No task selected.")
	}
	detail = lipgloss.NewStyle().Width(rightW).Height(bodyH).Render(detail)

	split := lipgloss.JoinHorizontal(lipgloss.Top, m.dash.list.View(), "  ", detail)
	return joinSections(filterLine, reminders, split)
}

func joinSections(sections ...string) string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

func (m appModel) viewFilterLine() string {
	course := "All Courses"
	if id := m.spec.SelectedCourseID; id != "" && id != model.AllCourses {
		course = view.CourseName(m.courses, id)
		if sw := courseSwatch(view.CourseColor(m.courses, id)); sw != "" {
			course = sw + " " + course
		}
	}
	bucket := "active"
	if m.spec.ShowArchived {
		bucket = "archived"
	}
	dir := "asc"
	if m.spec.SortDirection == model.SortDescending {
		dir = "desc"
	}
	return styleMuted().Render(fmt.Sprintf("%s · %s · sort: %s %s", course, bucket, m.spec.SortKey, dir))
}

// viewReminders renders the attention banner: overdue and due-within-24h
// counts over the whole active collection, ignoring the current filter.
func (m appModel) viewReminders(now time.Time) string {
	r := view.UpcomingReminders(m.tasks, now)
	if len(r.Overdue) == 0 && len(r.DueSoon) == 0 {
		return ""
	}
	parts := []string{}
	if n := len(r.Overdue); n > 0 {
		parts = append(parts, styleError().Render(fmt.Sprintf("%d overdue", n)))
	}
	if n := len(r.DueSoon); n > 0 {
		parts = append(parts, styleWarning().Render(fmt.Sprintf("%d due within 24h", n)))
	}
	return strings.Join(parts, styleMuted().Render(" · "))
}

func (m appModel) viewTaskDetail(it taskItem, width int) string {
	t := it.task
	lines := []string{
		styleHeader().Render(t.Title),
		styleMuted().Render(it.courseName),
		"",
		"Priority: " + string(t.Priority),
		"Status:   " + string(t.Status),
	}
	if t.DueDate != nil {
		lines = append(lines, "Due:      "+t.DueDate.Local().Format("Mon 2 Jan 2006 15:04"))
	}
	if desc := strings.TrimSpace(t.Description); desc != "" {
		lines = append(lines, "", renderMarkdown(desc, width))
	}
	return strings.Join(lines, "\n")
}

// ---- New-task modal ----

type taskForm struct {
	// taskID is empty for a create and carries the task being edited
	// otherwise; status rides along so an edit never flips it.
	taskID string
	status model.Status

	title       textinput.Model
	description textinput.Model
	due         textinput.Model
	focus       int
	priority    model.Priority
	courseID    string
	err         string
}

func newTaskForm(courseID string) taskForm {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200

	desc := textinput.New()
	desc.Placeholder = "Description (markdown, optional)"

	due := textinput.New()
	due.Placeholder = "Due date YYYY-MM-DD (optional)"
	due.CharLimit = 25

	return taskForm{
		status:      model.StatusActive,
		title:       title,
		description: desc,
		due:         due,
		priority:    model.PriorityMedium,
		courseID:    courseID,
	}
}

func newTaskFormFromTask(t model.Task) taskForm {
	f := newTaskForm(t.CourseID)
	f.taskID = t.ID
	f.status = t.Status
	f.priority = t.Priority
	f.title.SetValue(t.Title)
	f.description.SetValue(t.Description)
	if t.DueDate != nil {
		f.due.SetValue(t.DueDate.UTC().Format("2006-01-02"))
	}
	return f
}

func (f *taskForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.title, &f.description, &f.due}
}

func (f *taskForm) focusCmd() tea.Cmd {
	return focusInput(f.inputs(), f.focus)
}

func (f *taskForm) update(msg tea.Msg) tea.Cmd {
	return updateInputs(f.inputs(), msg)
}

func (f taskForm) view() string {
	heading := "New task"
	if f.taskID != "" {
		heading = "Edit task"
	}
	lines := []string{
		styleHeader().Render(heading),
		"",
		f.title.View(),
		f.description.View(),
		f.due.View(),
		"",
		"Priority: " + styleAccent().Render(string(f.priority)),
	}
	if f.err != "" {
		lines = append(lines, "", styleError().Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) updateTaskForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.dash.taskForm

	switch msg.String() {
	case "esc":
		m.dash.mode = dashBrowse
		return m, nil

	case "tab", "shift+tab", "up", "down":
		f.focus = cycleFocus(f.focus, len(f.inputs()), msg.String())
		return m, f.focusCmd()

	case "ctrl+p":
		f.priority = nextPriority(f.priority)
		return m, nil

	case "enter":
		dueDate, err := parseDueInput(f.due.Value())
		if err != nil {
			f.err = err.Error()
			return m, nil
		}
		draft := api.TaskDraft{
			Title:       strings.TrimSpace(f.title.Value()),
			Description: f.description.Value(),
			CourseID:    f.courseID,
			DueDate:     dueDate,
			Priority:    f.priority,
			Status:      f.status,
		}
		if err := draft.Validate(); err != nil {
			f.err = err.Error()
			return m, nil
		}
		f.err = ""
		if f.taskID != "" {
			return m, updateTaskCmd(m.client, f.taskID, draft)
		}
		return m, createTaskCmd(m.client, draft)
	}

	cmd := f.update(msg)
	return m, cmd
}

func nextPriority(p model.Priority) model.Priority {
	switch p {
	case model.PriorityLow:
		return model.PriorityMedium
	case model.PriorityMedium:
		return model.PriorityHigh
	default:
		return model.PriorityLow
	}
}

func parseDueInput(s string) (*time.Time, error) {
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
	return nil, fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", s)
}

// ---- New-course modal ----

type courseForm struct {
	courseID string

	name  textinput.Model
	code  textinput.Model
	color textinput.Model
	focus int
	err   string
}

func newCourseForm() courseForm {
	name := textinput.New()
	name.Placeholder = "Course name"
	name.CharLimit = 100

	code := textinput.New()
	code.Placeholder = "Course code (optional)"
	code.CharLimit = 20

	color := textinput.New()
	color.Placeholder = "Color tag, hex (optional)"
	color.CharLimit = 7

	return courseForm{name: name, code: code, color: color}
}

func newCourseFormFromCourse(c model.Course) courseForm {
	f := newCourseForm()
	f.courseID = c.ID
	f.name.SetValue(c.CourseName)
	f.code.SetValue(c.CourseCode)
	f.color.SetValue(c.ColorTag)
	return f
}

func (f *courseForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.name, &f.code, &f.color}
}

func (f *courseForm) focusCmd() tea.Cmd {
	return focusInput(f.inputs(), f.focus)
}

func (f *courseForm) update(msg tea.Msg) tea.Cmd {
	return updateInputs(f.inputs(), msg)
}

func (f courseForm) view() string {
	heading := "New course"
	if f.courseID != "" {
		heading = "Edit course"
	}
	lines := []string{
		styleHeader().Render(heading),
		"",
		f.name.View(),
		f.code.View(),
		f.color.View(),
	}
	if f.err != "" {
		lines = append(lines, "", styleError().Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) updateCourseForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.dash.courseForm

	switch msg.String() {
	case "esc":
		m.dash.mode = dashBrowse
		return m, nil

	case "tab", "shift+tab", "up", "down":
		f.focus = cycleFocus(f.focus, len(f.inputs()), msg.String())
		return m, f.focusCmd()

	case "enter":
		color := strings.TrimSpace(f.color.Value())
		if color == "" {
			color = "#cccccc"
		}
		draft := api.CourseDraft{
			CourseName: strings.TrimSpace(f.name.Value()),
			CourseCode: strings.TrimSpace(f.code.Value()),
			ColorTag:   color,
		}
		if err := draft.Validate(); err != nil {
			f.err = err.Error()
			return m, nil
		}
		f.err = ""
		if f.courseID != "" {
			return m, updateCourseCmd(m.client, f.courseID, draft)
		}
		return m, createCourseCmd(m.client, draft)
	}

	cmd := f.update(msg)
	return m, cmd
}
