package tui

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"courseterm/internal/api"
	"courseterm/internal/model"
	"courseterm/internal/route"
	"courseterm/internal/session"
	"courseterm/internal/tokenstore"
)

func newTestApp(t *testing.T, baseURL, token string) (appModel, *session.Controller) {
	t.Helper()
	t.Setenv("COURSETERM_CONFIG_DIR", t.TempDir())
	if token != "" {
		if err := (tokenstore.Store{}).Set(token); err != nil {
			t.Fatalf("seed token: %v", err)
		}
	}
	ctrl, client := session.Bootstrap(baseURL, tokenstore.Store{})
	return newAppModel(ctrl, client), ctrl
}

func apply(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	nm, cmd := m.Update(msg)
	am, ok := nm.(appModel)
	if !ok {
		t.Fatalf("Update returned %T, want appModel", nm)
	}
	return am, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStartsLoadingThenLandsAnonymous(t *testing.T) {
	m, ctrl := newTestApp(t, "http://unused.invalid", "")

	if m.page != route.PageLoading {
		t.Fatalf("before restore: page = %q, want loading", m.page)
	}

	m, _ = apply(t, m, restoreCmd(ctrl)())
	if m.page != route.PageLanding {
		t.Fatalf("after restore: page = %q, want landing", m.page)
	}
	if m.path != route.PathLanding {
		t.Fatalf("after restore: path = %q, want %q", m.path, route.PathLanding)
	}
}

func TestRestoreWithStoredTokenLandsOnDashboard(t *testing.T) {
	m, ctrl := newTestApp(t, "http://unused.invalid", "tok-restored")

	m, cmd := apply(t, m, restoreCmd(ctrl)())
	if m.page != route.PageDashboard {
		t.Fatalf("page = %q, want dashboard", m.page)
	}
	if cmd == nil {
		t.Fatalf("entering the dashboard should kick off the data fetch")
	}
	// Until both collections land the dashboard shows its loading state.
	if !strings.Contains(m.View(), "Loading") {
		t.Fatalf("dashboard should render loading before data arrives:\n%s", m.View())
	}
}

func TestLoginFlowReachesDashboard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "hunter2-long" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"Invalid credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m, ctrl := newTestApp(t, srv.URL, "")
	m, _ = apply(t, m, restoreCmd(ctrl)())

	m, _ = apply(t, m, keyRunes("l"))
	if m.page != route.PageLogin {
		t.Fatalf("page = %q, want login", m.page)
	}

	m.login.email.SetValue("a@b.com")
	m.login.password.SetValue("hunter2-long")
	m, cmd := apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter should submit the form")
	}

	m, _ = apply(t, m, cmd())
	if m.page != route.PageDashboard {
		t.Fatalf("page = %q, want dashboard after login", m.page)
	}
	if !ctrl.Snapshot().Authenticated() {
		t.Fatalf("controller should be authenticated")
	}
}

func TestLoginFailureShowsServerDetailInline(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Invalid credentials"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m, ctrl := newTestApp(t, srv.URL, "")
	m, _ = apply(t, m, restoreCmd(ctrl)())
	m, _ = apply(t, m, keyRunes("l"))

	m.login.email.SetValue("a@b.com")
	m.login.password.SetValue("wrong-password")
	m, cmd := apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = apply(t, m, cmd())

	if m.page != route.PageLogin {
		t.Fatalf("failed login must stay on login, got %q", m.page)
	}
	if m.login.err != "Invalid credentials" {
		t.Fatalf("login error = %q, want the server detail", m.login.err)
	}
	if ctrl.Snapshot().Authenticated() {
		t.Fatalf("failed login must not authenticate")
	}
}

func TestClientSideValidationNeverLeavesTheForm(t *testing.T) {
	m, ctrl := newTestApp(t, "http://unused.invalid", "")
	m, _ = apply(t, m, restoreCmd(ctrl)())
	m, _ = apply(t, m, keyRunes("r"))
	if m.page != route.PageRegister {
		t.Fatalf("page = %q, want register", m.page)
	}

	m.register.username.SetValue("ab") // too short
	m.register.email.SetValue("not-an-email")
	m.register.password.SetValue("short")
	m, cmd := apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("invalid registration must not produce a network command")
	}
	if m.register.err == "" {
		t.Fatalf("expected an inline validation error")
	}
}

func TestRegisterSuccessReturnsToLogin(t *testing.T) {
	m, ctrl := newTestApp(t, "http://unused.invalid", "")
	m, _ = apply(t, m, restoreCmd(ctrl)())
	m, _ = apply(t, m, keyRunes("r"))

	m, _ = apply(t, m, registerResultMsg{user: api.User{Username: "casey"}})
	if m.page != route.PageLogin {
		t.Fatalf("page = %q, want login after registration", m.page)
	}
	if !strings.Contains(m.status, "casey") {
		t.Fatalf("status should mention the new account, got %q", m.status)
	}
	if ctrl.Snapshot().Authenticated() {
		t.Fatalf("registration must not log in")
	}
}

func TestForcedTeardownDropsToLoginAndClearsData(t *testing.T) {
	m, ctrl := newTestApp(t, "http://unused.invalid", "tok-stale")
	m, _ = apply(t, m, restoreCmd(ctrl)())

	due := time.Now().Add(48 * time.Hour)
	m, _ = apply(t, m, coursesLoadedMsg{{ID: "c1", CourseName: "Algebra"}})
	m, _ = apply(t, m, tasksLoadedMsg{{ID: "t1", Title: "Worksheet", CourseID: "c1", DueDate: &due, Status: model.StatusActive, Priority: model.PriorityLow}})
	if m.page != route.PageDashboard || len(m.tasks) != 1 {
		t.Fatalf("setup: page %q, %d tasks", m.page, len(m.tasks))
	}

	// Any request coming back 401 fires this hook via the transport.
	ctrl.ForceTeardown()
	m, _ = apply(t, m, m.waitSession()())

	if m.page != route.PageLogin {
		t.Fatalf("page = %q, want login after teardown", m.page)
	}
	if m.tasks != nil || m.courses != nil {
		t.Fatalf("teardown must drop the loaded collections")
	}
}

func TestDataErrorRendersRetryBanner(t *testing.T) {
	m, ctrl := newTestApp(t, "http://unused.invalid", "tok")
	m, _ = apply(t, m, restoreCmd(ctrl)())

	m, _ = apply(t, m, dataErrMsg{err: errors.New("boom")})
	out := m.View()
	if !strings.Contains(out, "Something went wrong") {
		t.Fatalf("expected the generic failure message, got:\n%s", out)
	}
	if !strings.Contains(out, "r: retry") {
		t.Fatalf("expected the retry hint, got:\n%s", out)
	}
}
