package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"courseterm/internal/api"
	"courseterm/internal/model"
	"courseterm/internal/route"
	"courseterm/internal/session"
	"courseterm/internal/view"
)

// Messages flowing through the update loop.
//
// sessionChangedMsg is a bare signal: the handler re-reads the controller, so
// a notification delivered late can never install a stale snapshot.
type (
	sessionChangedMsg struct{}
	coursesLoadedMsg  []model.Course
	tasksLoadedMsg    []model.Task

	// dataErrMsg is a failed page load (the whole dashboard is unusable);
	// actionErrMsg is a failed single mutation (the collections on screen
	// are still valid, only the action needs surfacing).
	dataErrMsg   struct{ err error }
	actionErrMsg struct{ err error }

	loginResultMsg    struct{ err error }
	registerResultMsg struct {
		user api.User
		err  error
	}
	accountResultMsg struct {
		what string
		err  error
	}

	taskSavedMsg struct {
		task    model.Task
		created bool
	}
	taskRemovedMsg struct{ id string }
	courseSavedMsg struct {
		course  model.Course
		created bool
	}
	courseRemovedMsg struct{ id string }
)

type appModel struct {
	ctrl   *session.Controller
	client *api.Client

	width  int
	height int

	// Requested location + the page the guard resolved it to.
	path string
	page route.Page
	snap session.Snapshot

	sessionCh chan struct{}

	courses []model.Course
	tasks   []model.Task
	spec    model.FilterSpec

	coursesLoaded bool
	tasksLoaded   bool
	dataErr       string

	dash dashboard

	login    loginForm
	register registerForm
	account  accountForm

	// Transient one-line feedback shown in the header area.
	status string
}

func newAppModel(ctrl *session.Controller, client *api.Client) appModel {
	// Bridge controller notifications into the program's message loop. The
	// channel is buffered and lossy: the update loop always re-reads the
	// latest snapshot, so dropped intermediates are harmless.
	ch := make(chan struct{}, 16)
	ctrl.Subscribe(func(session.Snapshot) {
		select {
		case ch <- struct{}{}:
		default:
		}
	})

	m := appModel{
		ctrl:      ctrl,
		client:    client,
		sessionCh: ch,
		snap:      ctrl.Snapshot(),
		spec:      model.DefaultFilterSpec(),
		dash:      newDashboard(),
		login:     newLoginForm(),
		register:  newRegisterForm(),
		account:   newAccountForm(),
	}
	m.navigate(route.PathLanding)
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.waitSession(), restoreCmd(m.ctrl))
}

func restoreCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.Restore()
		return sessionChangedMsg{}
	}
}

func (m appModel) waitSession() tea.Cmd {
	ch := m.sessionCh
	return func() tea.Msg {
		<-ch
		return sessionChangedMsg{}
	}
}

// navigate points the app at a location and applies the guard. Redirects are
// followed immediately; entering a page resets its transient state.
func (m *appModel) navigate(path string) tea.Cmd {
	m.path = route.Normalize(path)
	res := route.Resolve(m.path, m.snap)
	if res.RedirectTo != "" {
		m.path = res.RedirectTo
	}
	m.page = res.Page

	switch m.page {
	case route.PageLogin:
		m.login = newLoginForm()
		return m.login.focusCmd()
	case route.PageRegister:
		m.register = newRegisterForm()
		return m.register.focusCmd()
	case route.PageAccount:
		m.account = newAccountForm()
		return m.account.focusCmd()
	case route.PageDashboard:
		if !m.coursesLoaded || !m.tasksLoaded {
			return m.fetchAll()
		}
		m.syncTaskList()
	}
	return nil
}

// fetchAll loads courses and tasks concurrently; the dashboard renders once
// both have landed, and either failure surfaces as the data error banner.
func (m *appModel) fetchAll() tea.Cmd {
	m.coursesLoaded = false
	m.tasksLoaded = false
	m.dataErr = ""
	return tea.Batch(fetchCoursesCmd(m.client), fetchTasksCmd(m.client))
}

func (m *appModel) dropData() {
	m.courses = nil
	m.tasks = nil
	m.coursesLoaded = false
	m.tasksLoaded = false
	m.dataErr = ""
	m.spec = model.DefaultFilterSpec()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case sessionChangedMsg:
		m.snap = m.ctrl.Snapshot()
		if !m.snap.Authenticated() {
			// Logout or forced teardown: another account's data must not leak
			// into the next session.
			m.dropData()
		}
		// Re-run the guard for the current location: a teardown mid-session
		// lands on login, a fresh login lands on dashboard.
		cmd := m.navigate(m.path)
		return m, tea.Batch(cmd, m.waitSession())

	case coursesLoadedMsg:
		m.courses = []model.Course(msg)
		m.coursesLoaded = true
		m.syncTaskList()
		return m, nil

	case tasksLoadedMsg:
		m.tasks = []model.Task(msg)
		m.tasksLoaded = true
		m.syncTaskList()
		return m, nil

	case dataErrMsg:
		// A half-loaded dashboard is worse than none: discard whatever
		// arrived and let "r" refetch both collections.
		m.courses = nil
		m.tasks = nil
		m.coursesLoaded = false
		m.tasksLoaded = false
		m.dataErr = api.Message(msg.err)
		return m, nil

	case actionErrMsg:
		// The collections are still valid; surface the failure where the
		// user is looking and leave the dashboard alone.
		detail := api.Message(msg.err)
		switch m.dash.mode {
		case dashNewTask, dashEditTask:
			m.dash.taskForm.err = detail
		case dashNewCourse, dashEditCourse:
			m.dash.courseForm.err = detail
		default:
			m.status = detail
		}
		return m, nil

	case loginResultMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.err = api.Message(msg.err)
			return m, nil
		}
		// The controller already transitioned; re-read it here rather than
		// waiting for the subscription message, so the guard sees the
		// authenticated state on this very navigation.
		m.snap = m.ctrl.Snapshot()
		m.dropData()
		return m, m.navigate(route.PathDashboard)

	case registerResultMsg:
		m.register.busy = false
		if msg.err != nil {
			m.register.err = api.Message(msg.err)
			return m, nil
		}
		// Registration never logs in; the user authenticates explicitly.
		m.status = fmt.Sprintf("Account %q created. Log in to continue.", msg.user.Username)
		return m, m.navigate(route.PathLogin)

	case accountResultMsg:
		m.account.busy = false
		if msg.err != nil {
			m.account.err = api.Message(msg.err)
			return m, nil
		}
		m.status = msg.what + " updated"
		return m, m.navigate(route.PathDashboard)

	case taskSavedMsg:
		if msg.created {
			m.tasks = view.AppendTask(m.tasks, msg.task)
		} else {
			m.tasks = view.ReplaceTask(m.tasks, msg.task)
		}
		m.dash.mode = dashBrowse
		m.syncTaskList()
		return m, nil

	case taskRemovedMsg:
		m.tasks = view.RemoveTask(m.tasks, msg.id)
		m.syncTaskList()
		return m, nil

	case courseSavedMsg:
		if msg.created {
			m.courses = view.AppendCourse(m.courses, msg.course)
		} else {
			m.courses = view.ReplaceCourse(m.courses, msg.course)
		}
		m.dash.mode = dashBrowse
		m.syncTaskList()
		return m, nil

	case courseRemovedMsg:
		m.courses, m.tasks, m.spec = view.RemoveCourse(m.courses, m.tasks, m.spec, msg.id)
		m.syncTaskList()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActive(msg)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.page {
	case route.PageLanding:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "l", "enter":
			return m, m.navigate(route.PathLogin)
		case "r":
			return m, m.navigate(route.PathRegister)
		}
		return m, nil
	case route.PageLogin:
		return m.updateLogin(msg)
	case route.PageRegister:
		return m.updateRegister(msg)
	case route.PageAccount:
		return m.updateAccount(msg)
	case route.PageDashboard:
		return m.updateDashboard(msg)
	}
	return m, nil
}

// updateActive forwards non-key messages (cursor blink and friends) to the
// component that owns the focus.
func (m appModel) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.page {
	case route.PageLogin:
		cmd = m.login.update(msg)
	case route.PageRegister:
		cmd = m.register.update(msg)
	case route.PageAccount:
		cmd = m.account.update(msg)
	case route.PageDashboard:
		switch m.dash.mode {
		case dashNewTask:
			cmd = m.dash.taskForm.update(msg)
		case dashNewCourse:
			cmd = m.dash.courseForm.update(msg)
		default:
			m.dash.list, cmd = m.dash.list.Update(msg)
		}
	}
	return m, cmd
}

func (m appModel) View() string {
	header := m.viewHeader()

	var body string
	switch m.page {
	case route.PageLoading:
		body = styleMuted().Render("Restoring session…")
	case route.PageLanding:
		body = m.viewLanding()
	case route.PageLogin:
		body = m.login.view()
	case route.PageRegister:
		body = m.register.view()
	case route.PageAccount:
		body = m.account.view()
	case route.PageDashboard:
		body = m.viewDashboard()
	}

	return strings.Join([]string{header, body, m.viewFooter()}, "\n\n")
}

func (m appModel) viewHeader() string {
	loc := m.path
	who := "anonymous"
	if m.snap.Authenticated() {
		who = "signed in"
	}
	h := styleHeader().Render("CourseTerm") + styleMuted().Render(fmt.Sprintf("  %s  (%s)", loc, who))
	if m.status != "" {
		h += "\n" + styleAccent().Render(m.status)
	}
	return h
}

func (m appModel) viewLanding() string {
	lines := []string{
		"Keep your coursework in one place: courses, tasks, deadlines.",
		"",
		styleMuted().Render("l: log in   r: register   q: quit"),
	}
	return strings.Join(lines, "\n")
}

func (m appModel) viewFooter() string {
	switch m.page {
	case route.PageDashboard:
		return m.dash.footer()
	case route.PageLogin, route.PageRegister, route.PageAccount:
		return styleMuted().Render("tab: next field  enter: submit  esc: back  ctrl+c: quit")
	default:
		return styleMuted().Render("ctrl+c: quit")
	}
}

func (m *appModel) resize() {
	h := m.height - 8
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	if m.width >= splitViewMinWidth {
		w = m.width / 2
	}
	m.dash.list.SetSize(w, h)
}
