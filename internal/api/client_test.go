package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courseterm/internal/model"
	"courseterm/internal/tokenstore"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, tokenstore.Store{Dir: t.TempDir()}, nil)
}

func TestLoginSendsFormEncodedCredentials(t *testing.T) {
	var gotContentType, gotUsername, gotPassword string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotUsername = r.PostForm.Get("username")
		gotPassword = r.PostForm.Get("password")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok1"})
	}))

	tok, err := c.Login(context.Background(), Credentials{Email: "a@b.com", Password: "secretpw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok != "tok1" {
		t.Fatalf("expected tok1, got %q", tok)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("expected form-encoded body, got %q", gotContentType)
	}
	// The identifier the user typed travels in the `username` field.
	if gotUsername != "a@b.com" || gotPassword != "secretpw" {
		t.Fatalf("unexpected form fields username=%q password=%q", gotUsername, gotPassword)
	}
}

func TestLoginFailureSurfacesServerDetail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	}))

	_, err := c.Login(context.Background(), Credentials{Email: "a@b.com", Password: "wrong-pw"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if Message(err) != "Invalid credentials" {
		t.Fatalf("expected server detail, got %q", Message(err))
	}
}

func TestMessageFallsBackToGenericText(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))

	_, err := c.ListCourses(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if Message(err) != GenericFailureMessage {
		t.Fatalf("expected generic message, got %q", Message(err))
	}
}

func TestRegisterSendsJSONAndReturnsUser(t *testing.T) {
	var got Registration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/register" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON body, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(User{Username: got.Username, Email: got.Email})
	}))

	u, err := c.Register(context.Background(), Registration{
		Username: "ada", Email: "ada@example.edu", Password: "longenough",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got.Username != "ada" || got.Email != "ada@example.edu" || got.Password != "longenough" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if u.Username != "ada" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestRegistrationValidationRejectsBadInputClientSide(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("invalid registration must not reach the server")
	}))

	cases := []Registration{
		{Username: "ab", Email: "ada@example.edu", Password: "longenough"}, // username too short
		{Username: "ada", Email: "not-an-email", Password: "longenough"},
		{Username: "ada", Email: "ada@example.edu", Password: "short"},
	}
	for _, reg := range cases {
		if _, err := c.Register(context.Background(), reg); err == nil {
			t.Fatalf("expected validation error for %+v", reg)
		}
	}
}

func TestListTasksOptionalCourseFilter(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte("[]"))
	}))

	if _, err := c.ListTasks(context.Background(), ""); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotQuery != "" {
		t.Fatalf("expected no query, got %q", gotQuery)
	}

	if _, err := c.ListTasks(context.Background(), "c1"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotQuery != "course_id=c1" {
		t.Fatalf("expected course_id filter, got %q", gotQuery)
	}

	// The sentinel means "all": no server-side narrowing.
	if _, err := c.ListTasks(context.Background(), model.AllCourses); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotQuery != "" {
		t.Fatalf("expected no query for %q, got %q", model.AllCourses, gotQuery)
	}
}

func TestCreateTaskDefaultsAndReturnsServerEntity(t *testing.T) {
	due := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var draft TaskDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			t.Errorf("decode draft: %v", err)
		}
		if draft.Priority != model.PriorityMedium || draft.Status != model.StatusActive {
			t.Errorf("expected defaulted draft, got %+v", draft)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Task{
			ID: "t1", Title: draft.Title, CourseID: draft.CourseID,
			DueDate: draft.DueDate, Priority: draft.Priority, Status: draft.Status,
		})
	}))

	task, err := c.CreateTask(context.Background(), TaskDraft{
		Title: "Read ch. 4", CourseID: "c1", DueDate: &due,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID != "t1" {
		t.Fatalf("expected server-assigned id, got %+v", task)
	}
}

func TestToggleTaskStatusFlipsOnlyStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/tasks/t1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var draft TaskDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			t.Errorf("decode draft: %v", err)
		}
		json.NewEncoder(w).Encode(model.Task{
			ID: "t1", Title: draft.Title, CourseID: draft.CourseID,
			Priority: draft.Priority, Status: draft.Status,
		})
	}))

	got, err := c.ToggleTaskStatus(context.Background(), model.Task{
		ID: "t1", Title: "Essay", CourseID: "c1",
		Priority: model.PriorityHigh, Status: model.StatusActive,
	})
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got.Status != model.StatusComplete {
		t.Fatalf("expected complete, got %q", got.Status)
	}
	if got.Title != "Essay" || got.Priority != model.PriorityHigh {
		t.Fatalf("other fields must be preserved, got %+v", got)
	}
}

func TestAccountUpdatesUsePUTWithSnakeCaseBodies(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody = map[string]string{}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte("{}"))
	}))

	if err := c.UpdateEmail(context.Background(), "new@example.edu", "currentpw"); err != nil {
		t.Fatalf("update email: %v", err)
	}
	if gotPath != "/users/me/email" || gotBody["new_email"] != "new@example.edu" || gotBody["password"] != "currentpw" {
		t.Fatalf("unexpected email change request %s %v", gotPath, gotBody)
	}

	if err := c.UpdatePassword(context.Background(), "currentpw", "nextpassword"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if gotPath != "/users/me/password" || gotBody["current_password"] != "currentpw" || gotBody["new_password"] != "nextpassword" {
		t.Fatalf("unexpected password change request %s %v", gotPath, gotBody)
	}
}
