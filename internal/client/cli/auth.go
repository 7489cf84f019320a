package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/session"
	"github.com/dmitrijs2005/gophchat/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, email and password and creates the
// account. On success the new user is signed in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.session.SignUp(ctx, username, email, string(password)); err != nil {
		a.reportLoginError(err)
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	a.greet()
	a.refresh(ctx)
	return nil
}

// Login prompts for credentials and signs in. A failure leaves the current
// session untouched.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.session.SignIn(ctx, email, string(password)); err != nil {
		a.reportLoginError(err)
		return err
	}

	a.greet()
	a.refresh(ctx)
	return nil
}

func (a *App) reportLoginError(err error) {
	var le *session.LoginError
	if !errors.As(err, &le) {
		fmt.Fprintln(a.out, "Login unsuccessful:", err)
		return
	}
	switch {
	case errors.Is(le, session.ErrWeakPassword):
		fmt.Fprintln(a.out, "Password is too weak:", le.Err)
	case le.Reason == session.ReasonNoConnection:
		fmt.Fprintln(a.out, "Cannot reach the server. Check your connection and try again.")
	case le.Reason == session.ReasonRejected:
		fmt.Fprintln(a.out, "Invalid email or password.")
	default:
		fmt.Fprintln(a.out, "Login unsuccessful:", le.Err)
	}
}

func (a *App) greet() {
	u, ok := a.session.User()
	if !ok {
		return
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", u.Username)
	if u.IsAdmin() {
		fmt.Fprintln(a.out, "You are signed in as an administrator.")
	}
}

// Logout ends the session and discards conversations, staged files and the
// draft.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.stager.Clear()
	a.draft.Clear()
	a.store.Reset()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints the signed-in user and, for JWTs, when the token expires.
func (a *App) WhoAmI(ctx context.Context) error {
	u, ok := a.session.User()
	if !ok {
		fmt.Fprintln(a.out, "Not logged in.")
		return session.ErrNotAuthenticated
	}

	fmt.Fprintf(a.out, "%s <%s>, role: %s\n", u.Username, u.Email, u.Role)
	if exp, ok := a.session.TokenExpiry(); ok {
		fmt.Fprintf(a.out, "Session expires %s (in %s)\n",
			exp.Local().Format(time.DateTime), exp.Sub(a.now()).Round(time.Minute))
	}
	return nil
}
