package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/conversations"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
)

const demoToken = "demo-session"

// demoBackend stands in for the server in -demo mode. Any email with a
// non-empty password signs in.
type demoBackend struct {
	mu   sync.Mutex
	user models.User
}

func newDemoBackend() *demoBackend {
	return &demoBackend{user: models.User{ID: 1, Username: "demo", Email: "demo@example.com", Role: "user"}}
}

func (d *demoBackend) Login(_ context.Context, email, password string) (*client.AuthResponse, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", client.ErrInvalidCredentials)
	}
	name, _, _ := strings.Cut(email, "@")
	return d.signIn(models.User{ID: 1, Username: name, Email: email, Role: "user"}), nil
}

func (d *demoBackend) Register(_ context.Context, username, email, password string) (*client.AuthResponse, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", client.ErrInvalidCredentials)
	}
	return d.signIn(models.User{ID: 1, Username: username, Email: email, Role: "user"}), nil
}

func (d *demoBackend) Profile(_ context.Context, token string) (*models.User, error) {
	if token != demoToken {
		return nil, client.ErrUnauthorized
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u := d.user
	return &u, nil
}

func (d *demoBackend) signIn(u models.User) *client.AuthResponse {
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now

	d.mu.Lock()
	d.user = u
	d.mu.Unlock()

	return &client.AuthResponse{Token: demoToken, User: u}
}

// demoLoader fills the store with the built-in conversations.
type demoLoader struct {
	store *conversations.Store
}

func (l demoLoader) Load(_ context.Context, _ models.User) error {
	l.store.Replace(conversations.Demo(time.Now()))
	return nil
}

// Deliver is a no-op: demo messages live only in the store.
func (l demoLoader) Deliver(context.Context, string, models.Message) error {
	return nil
}
