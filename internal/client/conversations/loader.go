package conversations

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

const (
	DefaultHistoryLimit = 50
	maxParallelFetches  = 4
)

// ErrNotARoom means the conversation has no backend room to deliver to.
var ErrNotARoom = errors.New("conversation is not a backend room")

// Source is the part of the backend API the loader works with.
type Source interface {
	Rooms(ctx context.Context) ([]client.Room, error)
	RoomMessages(ctx context.Context, roomID uint, limit int) ([]client.RoomMessage, error)
	SendMessage(ctx context.Context, roomID uint, content string) (*client.RoomMessage, error)
}

// Loader fills a Store from the backend rooms.
type Loader struct {
	src          Source
	store        *Store
	logger       logging.Logger
	historyLimit int
}

func NewLoader(src Source, store *Store, logger logging.Logger) *Loader {
	return &Loader{src: src, store: store, logger: logger, historyLimit: DefaultHistoryLimit}
}

// Load fetches every room and its latest messages and replaces the store
// content with them. Messages written by self are marked as SenderSelf.
// Nothing in the store changes if any request fails.
func (l *Loader) Load(ctx context.Context, self models.User) error {
	rooms, err := l.src.Rooms(ctx)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}

	timelines := make([][]models.Message, len(rooms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, room := range rooms {
		g.Go(func() error {
			msgs, err := l.src.RoomMessages(gctx, room.ID, l.historyLimit)
			if err != nil {
				return fmt.Errorf("room %d messages: %w", room.ID, err)
			}
			timelines[i] = l.toTimeline(gctx, msgs, self.ID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	convs := make([]models.Conversation, len(rooms))
	byID := make(map[string][]models.Message, len(rooms))
	for i, room := range rooms {
		c := models.Conversation{
			ID:              strconv.FormatUint(uint64(room.ID), 10),
			Name:            room.Name,
			LastMessageTime: room.UpdatedAt,
		}
		if tl := timelines[i]; len(tl) > 0 {
			last := tl[len(tl)-1]
			c.LastMessagePreview = last.Summary()
			c.LastMessageTime = last.CreatedAt
		}
		convs[i] = c
		byID[c.ID] = timelines[i]
	}

	slices.SortStableFunc(convs, func(a, b models.Conversation) int {
		return cmp.Compare(b.LastMessageTime.UnixNano(), a.LastMessageTime.UnixNano())
	})

	l.store.Replace(convs, byID)
	l.logger.Info(ctx, "conversations loaded", "rooms", len(rooms))
	return nil
}

// Deliver posts the text of a message already appended locally to the room
// backing the conversation. The backend stores text only: a message without
// text is not posted and attachments stay local.
func (l *Loader) Deliver(ctx context.Context, conversationID string, msg models.Message) error {
	roomID, err := strconv.ParseUint(conversationID, 10, 0)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrNotARoom, conversationID)
	}
	if msg.Text == "" {
		l.logger.Debug(ctx, "nothing to deliver", "conversation", conversationID, "message", msg.ID)
		return nil
	}

	stored, err := l.src.SendMessage(ctx, uint(roomID), msg.Text)
	if err != nil {
		return fmt.Errorf("deliver to room %d: %w", roomID, err)
	}
	l.logger.Debug(ctx, "message delivered",
		"conversation", conversationID, "message", msg.ID, "stored", stored.ID)
	return nil
}

// toTimeline turns a newest-first backend page into an oldest-first timeline.
func (l *Loader) toTimeline(ctx context.Context, page []client.RoomMessage, selfID uint) []models.Message {
	out := make([]models.Message, 0, len(page))
	for i := len(page) - 1; i >= 0; i-- {
		rm := page[i]

		sender := models.SenderOther
		if rm.UserID == selfID {
			sender = models.SenderSelf
		}

		m, err := models.NewMessage(strconv.FormatUint(uint64(rm.ID), 10), rm.Content, rm.CreatedAt, sender, nil)
		if err != nil {
			l.logger.Debug(ctx, "skipping empty message", "room", rm.RoomID, "message", rm.ID)
			continue
		}
		out = append(out, m)
	}
	return out
}
