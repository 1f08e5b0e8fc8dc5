// Package session owns the client's authentication state machine.
//
// States: Unresolved -> {Anonymous, Authenticated} on restore,
// Anonymous -> Authenticated on login, Authenticated -> Anonymous on logout
// or forced teardown (401 anywhere). The controller is an explicitly
// constructed object injected into consumers, never ambient global state.
package session

import (
	"context"
	"errors"
	"sync"

	"courseterm/internal/api"
	"courseterm/internal/logging"
	"courseterm/internal/tokenstore"
)

type State string

const (
	StateUnresolved    State = "unresolved"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Snapshot is an immutable view of the session at one instant. Token doubles
// as the user identity: possessing a token is what "logged in" means here,
// no profile fetch is performed.
type Snapshot struct {
	State   State
	Token   string
	Loading bool
}

func (s Snapshot) Authenticated() bool { return s.State == StateAuthenticated }

type Controller struct {
	mu       sync.Mutex
	tokens   tokenstore.Store
	client   *api.Client
	snap     Snapshot
	restored bool
	subs     []func(Snapshot)
}

// NewController returns a controller in the Unresolved state (loading=true).
// Call UseClient before Login/Register, then Restore once at startup.
func NewController(tokens tokenstore.Store) *Controller {
	return &Controller{
		tokens: tokens,
		snap:   Snapshot{State: StateUnresolved, Loading: true},
	}
}

// Bootstrap wires the standard stack: one shared gateway client whose 401
// teardown hook feeds back into the controller.
func Bootstrap(baseURL string, tokens tokenstore.Store) (*Controller, *api.Client) {
	c := NewController(tokens)
	client := api.New(baseURL, tokens, c.ForceTeardown)
	c.UseClient(client)
	return c, client
}

// UseClient attaches the API gateway the controller authenticates through.
func (c *Controller) UseClient(client *api.Client) {
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Subscribe registers fn to run after every state change. The current
// snapshot is not delivered retroactively.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Restore resolves the initial session from the token store: a persisted
// token is trusted at face value (no server verification call, matching the
// original behaviour; the 401 middleware corrects stale tokens on first use).
// Loading flips to false exactly once, here, regardless of branch. Subsequent
// calls are no-ops.
func (c *Controller) Restore() Snapshot {
	c.mu.Lock()
	if c.restored {
		snap := c.snap
		c.mu.Unlock()
		return snap
	}
	c.restored = true

	tok, err := c.tokens.Get()
	if err != nil {
		logging.Logger.WithError(err).Warn("token store read failed during restore; treating as anonymous")
		tok = ""
	}
	if tok != "" {
		c.snap = Snapshot{State: StateAuthenticated, Token: tok}
	} else {
		c.snap = Snapshot{State: StateAnonymous}
	}
	snap := c.snap
	subs := append([]func(Snapshot){}, c.subs...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// ErrNoClient reports a controller used before UseClient attached a gateway.
var ErrNoClient = errors.New("session: no API client attached; call UseClient first")

// Login exchanges credentials for a token, persists it and transitions to
// Authenticated. On failure the error propagates unchanged and no state is
// mutated; the caller surfaces the message (api.Message).
func (c *Controller) Login(ctx context.Context, email, password string) error {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil {
		return ErrNoClient
	}

	tok, err := client.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	if err := c.tokens.Set(tok); err != nil {
		return err
	}
	c.transition(Snapshot{State: StateAuthenticated, Token: tok})
	return nil
}

// Register creates an account. Session state is untouched on success: the
// user still has to log in.
func (c *Controller) Register(ctx context.Context, username, email, password string) (api.User, error) {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil {
		return api.User{}, ErrNoClient
	}

	return client.Register(ctx, api.Registration{
		Username: username,
		Email:    email,
		Password: password,
	})
}

// Logout clears the token store and transitions to Anonymous. Idempotent.
func (c *Controller) Logout() {
	if err := c.tokens.Clear(); err != nil {
		logging.Logger.WithError(err).Warn("token store clear failed during logout")
	}
	c.transition(Snapshot{State: StateAnonymous})
}

// ForceTeardown is the gateway's 401 hook. The transport has already cleared
// the token store; here the in-memory session drops to Anonymous so the
// navigation guard resolves to the login page.
func (c *Controller) ForceTeardown() {
	c.mu.Lock()
	// Teardown also resolves a still-loading session: there is nothing left to wait for.
	c.restored = true
	c.snap = Snapshot{State: StateAnonymous}
	snap := c.snap
	subs := append([]func(Snapshot){}, c.subs...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (c *Controller) transition(next Snapshot) {
	c.mu.Lock()
	c.snap = next
	subs := append([]func(Snapshot){}, c.subs...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}
