// Package models defines the client-side chat data model: users,
// conversations, messages and their attachments.
package models

import "time"

const RoleAdmin = "admin"

// User is the identity returned by the backend profile endpoint.
type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
