package conversations

import (
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
)

// Demo returns a fixed set of conversations and one transcript, with times
// relative to now. Used when the client runs without a backend.
func Demo(now time.Time) ([]models.Conversation, map[string][]models.Message) {
	convs := []models.Conversation{
		{ID: "1", Name: "Sarah Wilson", LastMessagePreview: "Hey, how's the project going?", LastMessageTime: now.Add(-2 * time.Minute), UnreadCount: 2, IsOnline: true},
		{ID: "2", Name: "Design Team", LastMessagePreview: "The mockups look great!", LastMessageTime: now.Add(-15 * time.Minute), UnreadCount: 5},
		{ID: "3", Name: "Alex Chen", LastMessagePreview: "Thanks for the feedback", LastMessageTime: now.Add(-time.Hour), IsOnline: true},
		{ID: "4", Name: "Marketing", LastMessagePreview: "Campaign launch is tomorrow", LastMessageTime: now.Add(-2 * time.Hour)},
		{ID: "5", Name: "David Kim", LastMessagePreview: "Let's schedule a call", LastMessageTime: now.Add(-3 * time.Hour)},
		{ID: "6", Name: "Product Team", LastMessagePreview: "New features are ready", LastMessageTime: now.Add(-24 * time.Hour)},
	}

	at := func(minutesAgo int) time.Time { return now.Add(-time.Duration(minutesAgo) * time.Minute) }

	transcript := []models.Message{
		{ID: "1", Text: "Hey, how's the project going?", CreatedAt: at(8), Sender: models.SenderOther},
		{ID: "2", Text: "It's going well! Just finished the wireframes", CreatedAt: at(6), Sender: models.SenderSelf},
		{
			ID:        "3",
			Text:      "That's great to hear. Can you share them?",
			CreatedAt: at(5),
			Sender:    models.SenderOther,
			Attachments: []models.Attachment{
				{ID: "1", Name: "wireframes.pdf", Size: "2.4 MB", Kind: models.KindFile},
				{ID: "2", Name: "mockup.png", Size: "1.8 MB", Kind: models.KindImage, URL: "/placeholder-kxkes.png"},
			},
		},
		{ID: "4", Text: "Sure, I'll send them over in a few minutes", CreatedAt: at(3), Sender: models.SenderSelf},
		{ID: "5", Text: "Perfect! Looking forward to reviewing them", CreatedAt: at(2), Sender: models.SenderOther},
	}

	return convs, map[string][]models.Message{"1": transcript}
}
