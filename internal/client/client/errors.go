package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable        = errors.New("server unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnexpectedResponse = errors.New("unexpected server response")
	ErrNoSession          = errors.New("no authenticated session")
)

// APIError is a non-2xx reply. It unwraps to one of the sentinel errors
// above so callers can keep matching with errors.Is.
type APIError struct {
	StatusCode int
	// Message is the backend's {"error": "..."} text, if any.
	Message string

	kind error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v (%d): %s", e.kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v (%d)", e.kind, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.kind }
