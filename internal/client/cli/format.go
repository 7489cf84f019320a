package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
)

func formatConversation(n int, c models.Conversation, active bool, now time.Time) string {
	var b strings.Builder

	marker := " "
	if active {
		marker = ">"
	}
	fmt.Fprintf(&b, "%s%2d. %s", marker, n, c.Name)
	if c.IsOnline {
		b.WriteString(" *")
	}
	if c.UnreadCount > 0 {
		fmt.Fprintf(&b, " (%d)", c.UnreadCount)
	}
	if !c.LastMessageTime.IsZero() {
		fmt.Fprintf(&b, "  %s", ago(now, c.LastMessageTime))
	}
	if c.LastMessagePreview != "" {
		fmt.Fprintf(&b, "\n      %s", c.LastMessagePreview)
	}
	return b.String()
}

func formatMessage(m models.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s:", m.CreatedAt.Local().Format("15:04"), m.Sender)
	if m.Text != "" {
		b.WriteString(" " + m.Text)
	}
	b.WriteString("\n")
	for _, att := range m.Attachments {
		fmt.Fprintf(&b, "    [%s] %s (%s)", att.Kind, att.Name, att.Size)
		if att.URL != "" {
			b.WriteString(" " + att.URL)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ago renders the short relative times of the chat list: 2m, 3h, 1d.
func ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}
