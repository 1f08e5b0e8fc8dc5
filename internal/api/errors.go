package api

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericFailureMessage is shown when the server gives us nothing better
// (transport failures, empty error bodies).
const GenericFailureMessage = "Something went wrong. Please try again."

// Error is a non-2xx response from the API. Detail carries the server's
// `detail` field when the body had one.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Message returns the user-facing text for any error coming out of the
// client: the server's detail when present, a generic retry message otherwise.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return GenericFailureMessage
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
