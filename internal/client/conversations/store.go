// Package conversations holds the chat list and the per-conversation
// message timelines, and fills them from the backend or the demo data.
package conversations

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotAuthenticated     = errors.New("not authenticated")
)

// Gate answers whether the store may be used right now.
type Gate interface {
	Authenticated() bool
}

// Store is the single source of the visible chat list and transcripts.
// Conversations are kept most recently active first; a timeline is
// append-only and never re-sorted. Safe for concurrent use.
type Store struct {
	gate   Gate
	logger logging.Logger

	mu        sync.Mutex
	order     []string
	convs     map[string]*models.Conversation
	timelines map[string][]models.Message
	active    string
}

func NewStore(gate Gate, logger logging.Logger) *Store {
	return &Store{
		gate:      gate,
		logger:    logger,
		convs:     make(map[string]*models.Conversation),
		timelines: make(map[string][]models.Message),
	}
}

// List returns a copy of the conversations in display order.
func (s *Store) List() ([]models.Conversation, error) {
	if !s.gate.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Conversation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.convs[id])
	}
	return out, nil
}

// Select makes id the active conversation and zeroes its unread counter.
func (s *Store) Select(id string) error {
	if !s.gate.Authenticated() {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[id]
	if !ok {
		return ErrConversationNotFound
	}
	s.active = id
	c.UnreadCount = 0
	return nil
}

// Active returns the selected conversation, if any.
func (s *Store) Active() (models.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[s.active]
	if !ok {
		return models.Conversation{}, false
	}
	return *c, true
}

// Append adds msg to the end of the conversation's timeline, refreshes its
// last-message fields and moves it to the top of the list. Conversations
// other than the active one count the message as unread.
func (s *Store) Append(id string, msg models.Message) error {
	if !s.gate.Authenticated() {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[id]
	if !ok {
		return ErrConversationNotFound
	}

	s.timelines[id] = append(s.timelines[id], msg)
	c.LastMessagePreview = msg.Summary()
	c.LastMessageTime = msg.CreatedAt
	if id != s.active {
		c.UnreadCount++
	}

	if i := slices.Index(s.order, id); i > 0 {
		s.order = slices.Delete(s.order, i, i+1)
		s.order = slices.Insert(s.order, 0, id)
	}
	return nil
}

// Timeline returns a copy of the conversation's messages in arrival order.
func (s *Store) Timeline(id string) ([]models.Message, error) {
	if !s.gate.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.convs[id]; !ok {
		return nil, ErrConversationNotFound
	}
	return slices.Clone(s.timelines[id]), nil
}

// Replace swaps the whole content of the store. convs are taken in display
// order; timelines are keyed by conversation ID. Messages held before are
// released. The active conversation survives if it still exists.
func (s *Store) Replace(convs []models.Conversation, timelines map[string][]models.Message) {
	s.mu.Lock()
	old := s.timelines

	s.order = make([]string, 0, len(convs))
	s.convs = make(map[string]*models.Conversation, len(convs))
	s.timelines = make(map[string][]models.Message, len(convs))
	for _, c := range convs {
		if _, dup := s.convs[c.ID]; dup {
			continue
		}
		s.order = append(s.order, c.ID)
		s.convs[c.ID] = &c
		s.timelines[c.ID] = slices.Clone(timelines[c.ID])
	}
	if _, ok := s.convs[s.active]; !ok {
		s.active = ""
	}
	s.mu.Unlock()

	s.release(old)
}

// Reset empties the store and releases every message it held.
func (s *Store) Reset() {
	s.Replace(nil, nil)
}

func (s *Store) release(timelines map[string][]models.Message) {
	for id, msgs := range timelines {
		for _, m := range msgs {
			if err := m.Release(); err != nil {
				s.logger.Error(context.Background(), "message release failed",
					"conversation", id, "message", m.ID, "error", err)
			}
		}
	}
}
