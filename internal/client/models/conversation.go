package models

import "time"

// Conversation is a named message thread as shown in the chat list.
type Conversation struct {
	ID                 string
	Name               string
	LastMessagePreview string
	LastMessageTime    time.Time
	UnreadCount        int
	IsOnline           bool
}
