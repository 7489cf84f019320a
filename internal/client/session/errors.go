package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrStaleSession     = errors.New("session changed while the profile was loading")
	ErrWeakPassword     = errors.New("password is too weak")
)

// Reason classifies a failed sign-in so the UI can say something useful.
type Reason string

const (
	ReasonNoConnection Reason = "no_connection"
	ReasonRejected     Reason = "rejected"
	ReasonOther        Reason = "other"
)

// LoginError is returned by SignIn and SignUp. It never changes the session.
type LoginError struct {
	Reason Reason
	Err    error
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login failed (%s): %v", e.Reason, e.Err)
}

func (e *LoginError) Unwrap() error { return e.Err }

func classify(err error) Reason {
	switch {
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return ReasonNoConnection
	case errors.Is(err, client.ErrInvalidCredentials), errors.Is(err, client.ErrUnauthorized),
		errors.Is(err, ErrWeakPassword):
		return ReasonRejected
	default:
		return ReasonOther
	}
}
