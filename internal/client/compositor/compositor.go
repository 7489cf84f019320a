// Package compositor turns the draft text and the staged files into a sent
// message.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophchat/internal/client/attachments"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

// ErrNothingToSend means the draft is blank and nothing is staged.
var ErrNothingToSend = errors.New("nothing to send")

// Draft is the text being typed. Safe for concurrent use.
type Draft struct {
	mu   sync.Mutex
	text string
}

func (d *Draft) Set(text string) {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
}

func (d *Draft) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

func (d *Draft) Clear() { d.Set("") }

// ClearIf clears the draft only if it still holds text.
func (d *Draft) ClearIf(text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.text != text {
		return false
	}
	d.text = ""
	return true
}

// Stager is what the compositor needs from the attachment stager.
type Stager interface {
	Snapshot() []attachments.Staged
	Commit(snapshot []attachments.Staged)
}

// Appender receives the composed message.
type Appender interface {
	Append(conversationID string, msg models.Message) error
}

type Compositor struct {
	stager Stager
	store  Appender
	draft  *Draft
	logger logging.Logger

	newID func() (uuid.UUID, error)
	now   func() time.Time

	mu sync.Mutex
}

func New(stager Stager, store Appender, draft *Draft, logger logging.Logger) *Compositor {
	return &Compositor{
		stager: stager,
		store:  store,
		draft:  draft,
		logger: logger,
		newID:  uuid.NewV7,
		now:    time.Now,
	}
}

// Send composes a message from the draft and the staged files and appends it
// to the conversation. On success the sent files leave the stager and the
// draft is cleared; files staged or text typed meanwhile are kept for the
// next message. On any failure nothing is appended and nothing is cleared.
//
// Image attachments get their own preview handle, so the message keeps its
// URL after the stager releases the staging handle.
func (c *Compositor) Send(ctx context.Context, conversationID string) (models.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	draft := c.draft.Text()
	text := draft
	if strings.TrimSpace(text) == "" {
		text = ""
	}

	staged := c.stager.Snapshot()
	if text == "" && len(staged) == 0 {
		return models.Message{}, ErrNothingToSend
	}

	id, err := c.newID()
	if err != nil {
		return models.Message{}, fmt.Errorf("message id: %w", err)
	}

	atts, err := c.snapshot(id.String(), staged)
	if err != nil {
		return models.Message{}, err
	}

	msg, err := models.NewMessage(id.String(), text, c.now(), models.SenderSelf, atts)
	if err == nil {
		err = c.store.Append(conversationID, msg)
	}
	if err != nil {
		c.rollback(ctx, atts)
		return models.Message{}, err
	}

	c.stager.Commit(staged)
	c.draft.ClearIf(draft)

	c.logger.Debug(ctx, "message sent",
		"conversation", conversationID, "message", msg.ID, "attachments", len(atts))
	return msg, nil
}

func (c *Compositor) snapshot(msgID string, staged []attachments.Staged) ([]models.Attachment, error) {
	atts := make([]models.Attachment, 0, len(staged))
	for i, st := range staged {
		a := models.Attachment{
			ID:   fmt.Sprintf("%s-%d", msgID, i),
			Name: st.Source.Name,
			Size: st.Size,
			Kind: st.Kind,
		}
		if st.Kind == models.KindImage && st.Preview() != nil {
			h, err := st.Preview().Retain()
			if err != nil {
				c.rollback(context.Background(), atts)
				return nil, fmt.Errorf("preview for %s: %w", st.Source.Name, err)
			}
			a.URL = h.URL()
			a.Preview = h
		}
		atts = append(atts, a)
	}
	return atts, nil
}

func (c *Compositor) rollback(ctx context.Context, atts []models.Attachment) {
	for _, a := range atts {
		if a.Preview == nil {
			continue
		}
		if err := a.Preview.Release(); err != nil {
			c.logger.Error(ctx, "preview rollback failed", "file", a.Name, "error", err)
		}
	}
}
