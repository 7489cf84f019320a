package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
)

// Client is the backend API consumed by the chat client.
type Client interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (*AuthResponse, error)
	// Profile fetches the user owning token. It does not use the TokenSource:
	// it is how a token gets verified in the first place.
	Profile(ctx context.Context, token string) (*models.User, error)
	Rooms(ctx context.Context) ([]Room, error)
	// RoomMessages returns up to limit messages of a room, newest first.
	RoomMessages(ctx context.Context, roomID uint, limit int) ([]RoomMessage, error)
	// SendMessage posts a text message to a room and returns it as stored.
	SendMessage(ctx context.Context, roomID uint, content string) (*RoomMessage, error)
}

// TokenSource yields the bearer token for authenticated endpoints.
// ok is false while there is no authenticated session.
type TokenSource interface {
	BearerToken() (token string, ok bool)
}

// AuthResponse mirrors the backend login/register payload.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Room is a chat room as listed by the backend.
type Room struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoomMessage is a message as stored by the backend.
type RoomMessage struct {
	ID        uint        `json:"id"`
	Content   string      `json:"content"`
	UserID    uint        `json:"user_id"`
	User      models.User `json:"user"`
	RoomID    uint        `json:"room_id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
