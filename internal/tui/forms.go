package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"courseterm/internal/api"
	"courseterm/internal/route"
)

// Shared helpers for the small fixed-field forms.

func focusInput(inputs []*textinput.Model, focus int) tea.Cmd {
	var cmd tea.Cmd
	for i, in := range inputs {
		if i == focus {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

func cycleFocus(focus, n int, key string) int {
	if key == "shift+tab" || key == "up" {
		return (focus - 1 + n) % n
	}
	return (focus + 1) % n
}

func updateInputs(inputs []*textinput.Model, msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(inputs))
	for _, in := range inputs {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// ---- Login ----

type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	err      string
	busy     bool
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 100

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 100

	return loginForm{email: email, password: password}
}

func (f *loginForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.email, &f.password}
}

func (f *loginForm) focusCmd() tea.Cmd {
	return focusInput(f.inputs(), f.focus)
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	return updateInputs(f.inputs(), msg)
}

func (f loginForm) view() string {
	lines := []string{
		styleHeader().Render("Log in"),
		"",
		f.email.View(),
		f.password.View(),
	}
	if f.busy {
		lines = append(lines, "", styleMuted().Render("Signing in…"))
	}
	if f.err != "" {
		lines = append(lines, "", styleError().Render(f.err))
	}
	lines = append(lines, "", styleMuted().Render("No account? esc, then r to register."))
	return strings.Join(lines, "\n")
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.login

	switch msg.String() {
	case "esc":
		return m, m.navigate(route.PathLanding)

	case "tab", "shift+tab", "up", "down":
		f.focus = cycleFocus(f.focus, len(f.inputs()), msg.String())
		return m, f.focusCmd()

	case "enter":
		if f.busy {
			return m, nil
		}
		creds := api.Credentials{
			Email:    strings.TrimSpace(f.email.Value()),
			Password: f.password.Value(),
		}
		if err := creds.Validate(); err != nil {
			f.err = err.Error()
			return m, nil
		}
		f.err = ""
		f.busy = true
		return m, loginCmd(m.ctrl, creds.Email, creds.Password)
	}

	cmd := f.update(msg)
	return m, cmd
}

// ---- Register ----

type registerForm struct {
	username textinput.Model
	email    textinput.Model
	password textinput.Model
	focus    int
	err      string
	busy     bool
}

func newRegisterForm() registerForm {
	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 50

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 100

	password := textinput.New()
	password.Placeholder = "Password (min 8 chars)"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 100

	return registerForm{username: username, email: email, password: password}
}

func (f *registerForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.username, &f.email, &f.password}
}

func (f *registerForm) focusCmd() tea.Cmd {
	return focusInput(f.inputs(), f.focus)
}

func (f *registerForm) update(msg tea.Msg) tea.Cmd {
	return updateInputs(f.inputs(), msg)
}

func (f registerForm) view() string {
	lines := []string{
		styleHeader().Render("Create account"),
		"",
		f.username.View(),
		f.email.View(),
		f.password.View(),
	}
	if f.busy {
		lines = append(lines, "", styleMuted().Render("Creating account…"))
	}
	if f.err != "" {
		lines = append(lines, "", styleError().Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.register

	switch msg.String() {
	case "esc":
		return m, m.navigate(route.PathLanding)

	case "tab", "shift+tab", "up", "down":
		f.focus = cycleFocus(f.focus, len(f.inputs()), msg.String())
		return m, f.focusCmd()

	case "enter":
		if f.busy {
			return m, nil
		}
		reg := api.Registration{
			Username: strings.TrimSpace(f.username.Value()),
			Email:    strings.TrimSpace(f.email.Value()),
			Password: f.password.Value(),
		}
		if err := reg.Validate(); err != nil {
			f.err = err.Error()
			return m, nil
		}
		f.err = ""
		f.busy = true
		return m, registerCmd(m.ctrl, reg.Username, reg.Email, reg.Password)
	}

	cmd := f.update(msg)
	return m, cmd
}

// ---- Account settings ----
//
// One page, two sections: the first two inputs change the email, the last
// two change the password. Enter submits the section the cursor is in.

type accountForm struct {
	newEmail      textinput.Model
	emailPassword textinput.Model
	currentPw     textinput.Model
	newPw         textinput.Model
	focus         int
	err           string
	busy          bool
}

func newAccountForm() accountForm {
	newEmail := textinput.New()
	newEmail.Placeholder = "New email"
	newEmail.CharLimit = 100

	emailPassword := textinput.New()
	emailPassword.Placeholder = "Current password (confirms identity)"
	emailPassword.EchoMode = textinput.EchoPassword

	currentPw := textinput.New()
	currentPw.Placeholder = "Current password"
	currentPw.EchoMode = textinput.EchoPassword

	newPw := textinput.New()
	newPw.Placeholder = "New password (min 8 chars)"
	newPw.EchoMode = textinput.EchoPassword

	return accountForm{
		newEmail:      newEmail,
		emailPassword: emailPassword,
		currentPw:     currentPw,
		newPw:         newPw,
	}
}

func (f *accountForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.newEmail, &f.emailPassword, &f.currentPw, &f.newPw}
}

func (f *accountForm) focusCmd() tea.Cmd {
	return focusInput(f.inputs(), f.focus)
}

func (f *accountForm) update(msg tea.Msg) tea.Cmd {
	return updateInputs(f.inputs(), msg)
}

func (f accountForm) view() string {
	lines := []string{
		styleHeader().Render("Account"),
		"",
		styleMuted().Render("Change email"),
		f.newEmail.View(),
		f.emailPassword.View(),
		"",
		styleMuted().Render("Change password"),
		f.currentPw.View(),
		f.newPw.View(),
	}
	if f.busy {
		lines = append(lines, "", styleMuted().Render("Saving…"))
	}
	if f.err != "" {
		lines = append(lines, "", styleError().Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) updateAccount(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.account

	switch msg.String() {
	case "esc":
		return m, m.navigate(route.PathDashboard)

	case "tab", "shift+tab", "up", "down":
		f.focus = cycleFocus(f.focus, len(f.inputs()), msg.String())
		return m, f.focusCmd()

	case "enter":
		if f.busy {
			return m, nil
		}
		if f.focus <= 1 {
			newEmail := strings.TrimSpace(f.newEmail.Value())
			if newEmail == "" {
				f.err = "new email is required"
				return m, nil
			}
			f.err = ""
			f.busy = true
			return m, updateEmailCmd(m.client, newEmail, f.emailPassword.Value())
		}
		if f.newPw.Value() == "" {
			f.err = "new password is required"
			return m, nil
		}
		f.err = ""
		f.busy = true
		return m, updatePasswordCmd(m.client, f.currentPw.Value(), f.newPw.Value())
	}

	cmd := f.update(msg)
	return m, cmd
}
