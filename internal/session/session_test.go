package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"courseterm/internal/api"
	"courseterm/internal/tokenstore"
)

func TestRestoreWithoutTokenYieldsAnonymous(t *testing.T) {
	c := NewController(tokenstore.Store{Dir: t.TempDir()})

	if snap := c.Snapshot(); !snap.Loading || snap.State != StateUnresolved {
		t.Fatalf("expected unresolved loading session at start, got %+v", snap)
	}

	snap := c.Restore()
	if snap.State != StateAnonymous || snap.Loading {
		t.Fatalf("expected resolved anonymous session, got %+v", snap)
	}
}

func TestRestoreWithStoredTokenYieldsAuthenticatedWithoutNetwork(t *testing.T) {
	tokens := tokenstore.Store{Dir: t.TempDir()}
	if err := tokens.Set("persisted"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	// No client attached: any network call would panic, proving restore is offline.
	c := NewController(tokens)
	snap := c.Restore()
	if snap.State != StateAuthenticated || snap.Token != "persisted" || snap.Loading {
		t.Fatalf("expected authenticated session, got %+v", snap)
	}
}

func TestRestoreResolvesLoadingExactlyOnce(t *testing.T) {
	c := NewController(tokenstore.Store{Dir: t.TempDir()})

	var notifications []Snapshot
	c.Subscribe(func(s Snapshot) { notifications = append(notifications, s) })

	c.Restore()
	c.Restore() // second call is a no-op

	if len(notifications) != 1 {
		t.Fatalf("expected exactly one restore notification, got %d", len(notifications))
	}
	if notifications[0].Loading {
		t.Fatalf("loading must be false after resolution")
	}
}

func TestLoginPersistsTokenAndAuthenticates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("username") != "a@b.com" || r.PostForm.Get("password") != "secretpw" {
			t.Errorf("unexpected credentials %v", r.PostForm)
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok1"})
	}))
	defer srv.Close()

	tokens := tokenstore.Store{Dir: t.TempDir()}
	c, _ := Bootstrap(srv.URL, tokens)
	c.Restore()

	if err := c.Login(context.Background(), "a@b.com", "secretpw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if tok, _ := tokens.Get(); tok != "tok1" {
		t.Fatalf("expected tok1 persisted, got %q", tok)
	}
	if snap := c.Snapshot(); snap.State != StateAuthenticated || snap.Token != "tok1" {
		t.Fatalf("expected authenticated session, got %+v", snap)
	}
}

func TestFailedLoginLeavesSessionAndStoreUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	}))
	defer srv.Close()

	tokens := tokenstore.Store{Dir: t.TempDir()}
	c, _ := Bootstrap(srv.URL, tokens)
	c.Restore()

	err := c.Login(context.Background(), "a@b.com", "wrong-pw")
	if err == nil {
		t.Fatalf("expected error")
	}
	if api.Message(err) != "Invalid credentials" {
		t.Fatalf("expected exact server detail, got %q", api.Message(err))
	}
	if snap := c.Snapshot(); snap.State != StateAnonymous {
		t.Fatalf("session must stay anonymous after failed login, got %+v", snap)
	}
	if tok, _ := tokens.Get(); tok != "" {
		t.Fatalf("token store must stay empty, got %q", tok)
	}
}

func TestRegisterDoesNotMutateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"username":"ada","email":"ada@example.edu"}`))
	}))
	defer srv.Close()

	c, _ := Bootstrap(srv.URL, tokenstore.Store{Dir: t.TempDir()})
	c.Restore()

	u, err := c.Register(context.Background(), "ada", "ada@example.edu", "longenough")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Username != "ada" {
		t.Fatalf("unexpected user %+v", u)
	}
	if snap := c.Snapshot(); snap.State != StateAnonymous {
		t.Fatalf("registration must not log the user in, got %+v", snap)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	tokens := tokenstore.Store{Dir: t.TempDir()}
	if err := tokens.Set("tok1"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	c := NewController(tokens)
	c.Restore()

	var count int
	c.Subscribe(func(Snapshot) { count++ })

	c.Logout()
	c.Logout()

	if snap := c.Snapshot(); snap.State != StateAnonymous || snap.Token != "" {
		t.Fatalf("expected anonymous session, got %+v", snap)
	}
	if tok, _ := tokens.Get(); tok != "" {
		t.Fatalf("expected token cleared, got %q", tok)
	}
	if count != 2 {
		t.Fatalf("each logout notifies (idempotent state, repeated events), got %d", count)
	}
}

func TestStaleTokenAnywhereForcesTeardown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer srv.Close()

	tokens := tokenstore.Store{Dir: t.TempDir()}
	if err := tokens.Set("stale"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	c, client := Bootstrap(srv.URL, tokens)
	c.Restore()
	if !c.Snapshot().Authenticated() {
		t.Fatalf("expected restore to trust the stored token")
	}

	// Any request may observe the 401, not just session-initiated ones.
	if _, err := client.ListTasks(context.Background(), ""); !api.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	if snap := c.Snapshot(); snap.State != StateAnonymous {
		t.Fatalf("expected forced teardown to anonymous, got %+v", snap)
	}
	if tok, _ := tokens.Get(); tok != "" {
		t.Fatalf("expected token cleared, got %q", tok)
	}
}

func TestLoginAndRegisterWithoutClientReturnError(t *testing.T) {
	c := NewController(tokenstore.Store{Dir: t.TempDir()})

	if err := c.Login(context.Background(), "a@b.com", "password-1"); !errors.Is(err, ErrNoClient) {
		t.Fatalf("Login without a client: err = %v, want ErrNoClient", err)
	}
	if _, err := c.Register(context.Background(), "casey", "a@b.com", "password-1"); !errors.Is(err, ErrNoClient) {
		t.Fatalf("Register without a client: err = %v, want ErrNoClient", err)
	}
	if snap := c.Snapshot(); snap.State != StateUnresolved {
		t.Fatalf("failed calls must not mutate state, got %+v", snap)
	}
}
