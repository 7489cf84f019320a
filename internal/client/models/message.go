package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/preview"
)

var ErrEmptyMessage = errors.New("message needs text or at least one attachment")

// Sender tells whose side of the transcript a message belongs to.
type Sender int

const (
	SenderOther Sender = iota
	SenderSelf
)

func (s Sender) String() string {
	if s == SenderSelf {
		return "me"
	}
	return "other"
}

// Kind classifies an attachment for display.
type Kind int

const (
	KindFile Kind = iota
	KindImage
	KindVideo
	// KindFolder is display-only; classification never produces it.
	KindFolder
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindFolder:
		return "folder"
	default:
		return "file"
	}
}

// Attachment is the immutable record of a file sent with a message.
type Attachment struct {
	ID   string
	Name string
	// Size is already formatted for humans, e.g. "1.5 KB".
	Size string
	Kind Kind
	// URL is set for images only.
	URL string

	// Preview keeps URL resolvable for as long as the message lives.
	Preview *preview.Handle
}

// Message is one entry of a conversation timeline.
type Message struct {
	ID          string
	Text        string
	CreatedAt   time.Time
	Sender      Sender
	Attachments []Attachment
}

// NewMessage builds a Message, rejecting one with neither text nor attachments.
// An empty attachment list is stored as nil.
func NewMessage(id, text string, createdAt time.Time, sender Sender, attachments []Attachment) (Message, error) {
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return Message{}, ErrEmptyMessage
	}
	if len(attachments) == 0 {
		attachments = nil
	}
	return Message{
		ID:          id,
		Text:        text,
		CreatedAt:   createdAt,
		Sender:      sender,
		Attachments: attachments,
	}, nil
}

// Summary is the one-line preview used for the conversation list.
func (m Message) Summary() string {
	if strings.TrimSpace(m.Text) != "" || len(m.Attachments) == 0 {
		return m.Text
	}
	s := "Attachment: " + m.Attachments[0].Name
	if extra := len(m.Attachments) - 1; extra > 0 {
		s += fmt.Sprintf(" (+%d more)", extra)
	}
	return s
}

// Release gives up the preview handles owned by the message's attachments.
// Called when the message is discarded.
func (m Message) Release() error {
	var errs []error
	for _, a := range m.Attachments {
		if a.Preview == nil {
			continue
		}
		if err := a.Preview.Release(); err != nil {
			errs = append(errs, fmt.Errorf("attachment %s: %w", a.Name, err))
		}
	}
	return errors.Join(errs...)
}
