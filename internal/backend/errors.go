package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors classify every failure the remote API can produce so
// callers branch on category, not on status codes.
var (
	// ErrUnauthenticated means the request was rejected even after a
	// token refresh. The session is over; callers must force a re-login.
	ErrUnauthenticated = errors.New("backend: unauthenticated")

	// ErrValidation means the server rejected the payload. Retrying the
	// same payload will fail again.
	ErrValidation = errors.New("backend: validation rejected")

	// ErrNotFound means the addressed resource does not exist.
	ErrNotFound = errors.New("backend: not found")

	// ErrServer means the server failed; the request may succeed later.
	ErrServer = errors.New("backend: server error")

	// ErrUnreachable means the request never got an HTTP response at
	// all: DNS, connect or timeout failures.
	ErrUnreachable = errors.New("backend: unreachable")
)

// APIError carries the HTTP detail behind one of the sentinel categories.
// errors.Is matches the category; the detail is for logs.
type APIError struct {
	Kind       error
	StatusCode int
	Method     string
	Path       string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s %s: status %d: %s", e.Kind, e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%v: %s %s: status %d", e.Kind, e.Method, e.Path, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Kind }

// classify maps an HTTP status code to its error category.
func classify(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrUnauthenticated
	case status == 404:
		return ErrNotFound
	case status >= 400 && status < 500:
		return ErrValidation
	default:
		return ErrServer
	}
}
