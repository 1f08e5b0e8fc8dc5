// Package route maps a requested location to a page, given the current
// session. The resolver is a pure function; the TUI re-runs it whenever the
// requested path or the session snapshot changes and follows any redirect it
// returns. Redirect loops are impossible because every redirect target passes
// the guard for the opposite session state.
package route

import (
	"strings"

	"courseterm/internal/session"
)

type Page string

const (
	// PageLoading renders a neutral placeholder while the session is still
	// unresolved; no redirect decision is made yet.
	PageLoading   Page = "loading"
	PageLanding   Page = "landing"
	PageLogin     Page = "login"
	PageRegister  Page = "register"
	PageDashboard Page = "dashboard"
	PageAccount   Page = "account"
)

const (
	PathLanding   = "/"
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathDashboard = "/dashboard"
	PathAccount   = "/account"
)

// Resolution is the guard's verdict. When RedirectTo is non-empty the caller
// rewrites its location to it and resolves again; Page is then the page the
// redirect target resolves to, so callers may also render it immediately.
type Resolution struct {
	Page       Page
	RedirectTo string
}

var protectedPages = map[string]Page{
	PathDashboard: PageDashboard,
	PathAccount:   PageAccount,
}

var publicOnlyPages = map[string]Page{
	PathLanding:  PageLanding,
	PathLogin:    PageLogin,
	PathRegister: PageRegister,
}

// Normalize strips the hash-fragment prefix and trailing slashes so `#/login`,
// `/login` and `/login/` all name the same page.
func Normalize(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "#")
	if path == "" {
		return PathLanding
	}
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// Resolve applies the guard rules in priority order:
//  1. unresolved session: defer (loading page, no redirect);
//  2. protected page + anonymous: redirect to login;
//  3. public-only page + authenticated: redirect to dashboard;
//  4. otherwise render the mapped page; unknown paths fall back to landing
//     (anonymous) or dashboard (authenticated).
func Resolve(path string, snap session.Snapshot) Resolution {
	path = Normalize(path)

	if snap.Loading {
		return Resolution{Page: PageLoading}
	}

	if page, ok := protectedPages[path]; ok {
		if !snap.Authenticated() {
			return Resolution{Page: PageLogin, RedirectTo: PathLogin}
		}
		return Resolution{Page: page}
	}

	if page, ok := publicOnlyPages[path]; ok {
		if snap.Authenticated() {
			return Resolution{Page: PageDashboard, RedirectTo: PathDashboard}
		}
		return Resolution{Page: page}
	}

	if snap.Authenticated() {
		return Resolution{Page: PageDashboard}
	}
	return Resolution{Page: PageLanding}
}
