package api

import (
	"net/http"

	"courseterm/internal/logging"
	"courseterm/internal/tokenstore"
)

// transport is the cross-cutting middleware around every request the client
// sends. Two behaviours, both unconditional:
//
//   - if the token store holds a token, attach it as Authorization: Bearer;
//   - if any response comes back 401, tear the session down (clear the store,
//     notify the owner). This is the single point of truth for "the session
//     has gone stale".
//
// Login/register simply have no stored token yet, so they flow through the
// same pipeline with no Authorization header.
type transport struct {
	base           http.RoundTripper
	tokens         tokenstore.Store
	onUnauthorized func()
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if tok, err := t.tokens.Get(); err == nil && tok != "" {
		// Clone before mutating: RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+tok)
	} else if err != nil {
		logging.Logger.WithError(err).Warn("token store read failed; sending request unauthenticated")
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		logging.Logger.WithField("url", req.URL.Path).Info("401 response; forcing session teardown")
		if err := t.tokens.Clear(); err != nil {
			logging.Logger.WithError(err).Warn("token store clear failed during teardown")
		}
		if t.onUnauthorized != nil {
			t.onUnauthorized()
		}
	}
	return resp, nil
}
