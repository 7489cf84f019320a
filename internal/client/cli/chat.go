package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophchat/internal/client/attachments"
	"github.com/dmitrijs2005/gophchat/internal/client/compositor"
	"github.com/dmitrijs2005/gophchat/internal/client/conversations"
)

var errNoConversation = errors.New("no conversation selected")

// List prints the conversations, most recent first, numbered from 1.
func (a *App) List(ctx context.Context) error {
	convs, err := a.store.List()
	if err != nil {
		return a.fail(err)
	}
	if len(convs) == 0 {
		fmt.Fprintln(a.out, "No conversations.")
		return nil
	}

	active, _ := a.store.Active()
	now := a.now()
	for i, c := range convs {
		fmt.Fprintln(a.out, formatConversation(i+1, c, c.ID == active.ID, now))
	}
	return nil
}

// Open selects the n-th conversation of the current list and shows it.
func (a *App) Open(ctx context.Context, n string) error {
	convs, err := a.store.List()
	if err != nil {
		return a.fail(err)
	}

	i, err := strconv.Atoi(n)
	if err != nil || i < 1 || i > len(convs) {
		fmt.Fprintf(a.out, "No conversation #%s.\n", n)
		return conversations.ErrConversationNotFound
	}

	if err := a.store.Select(convs[i-1].ID); err != nil {
		return a.fail(err)
	}
	return a.History(ctx)
}

// History prints the transcript of the active conversation.
func (a *App) History(ctx context.Context) error {
	c, ok := a.store.Active()
	if !ok {
		fmt.Fprintln(a.out, "Open a conversation first.")
		return errNoConversation
	}

	msgs, err := a.store.Timeline(c.ID)
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprintf(a.out, "== %s ==\n", c.Name)
	for _, m := range msgs {
		fmt.Fprint(a.out, formatMessage(m))
	}
	return nil
}

// Attach stages the files at paths. Paths that cannot be read are reported
// and skipped; the rest are staged in the given order.
func (a *App) Attach(ctx context.Context, paths []string) error {
	var (
		files []attachments.SourceFile
		errs  []error
	)
	for _, p := range paths {
		f, err := attachments.SourceFileFromPath(p)
		if err != nil {
			fmt.Fprintln(a.out, "Cannot attach:", err)
			errs = append(errs, err)
			continue
		}
		files = append(files, f)
	}

	a.stager.AddFiles(files...)
	for _, f := range files {
		fmt.Fprintf(a.out, "Attached %s (%s)\n", f.Name, attachments.HumanSize(f.Size))
	}
	return errors.Join(errs...)
}

// Detach removes the n-th staged file (numbered from 1).
func (a *App) Detach(ctx context.Context, n string) error {
	i, err := strconv.Atoi(n)
	if err != nil || !a.stager.RemoveFile(i-1) {
		fmt.Fprintf(a.out, "No staged file #%s.\n", n)
		return fmt.Errorf("detach %s: no such file", n)
	}
	fmt.Fprintln(a.out, "Removed.")
	return nil
}

// Staged lists the files waiting to be sent, with preview URLs for images.
func (a *App) Staged(ctx context.Context) error {
	staged := a.stager.Staged()
	if len(staged) == 0 {
		fmt.Fprintln(a.out, "Nothing staged.")
		return nil
	}
	for i, st := range staged {
		line := fmt.Sprintf("%d. [%s] %s (%s)", i+1, st.Kind, st.Source.Name, st.Size)
		if h, ok := a.stager.Preview(i); ok {
			line += " " + h.URL()
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// Draft replaces the draft text. An empty text clears it.
func (a *App) Draft(ctx context.Context, text string) error {
	a.draft.Set(text)
	return nil
}

// Send sends the draft together with the staged files to the active
// conversation, then delivers its text to the backend. A non-empty text
// replaces the draft first.
func (a *App) Send(ctx context.Context, text string) error {
	c, ok := a.store.Active()
	if !ok {
		fmt.Fprintln(a.out, "Open a conversation first.")
		return errNoConversation
	}
	if text != "" {
		a.draft.Set(text)
	}

	msg, err := a.compositor.Send(ctx, c.ID)
	if errors.Is(err, compositor.ErrNothingToSend) {
		fmt.Fprintln(a.out, "Nothing to send.")
		return err
	}
	if err != nil {
		return a.fail(err)
	}

	fmt.Fprint(a.out, formatMessage(msg))

	if err := a.loader.Deliver(ctx, c.ID, msg); err != nil {
		a.logger.Error(ctx, "message delivery failed", "conversation", c.ID, "error", err)
		fmt.Fprintln(a.out, "Not delivered, the message is kept locally:", err)
		return err
	}
	return nil
}

func (a *App) fail(err error) error {
	if errors.Is(err, conversations.ErrNotAuthenticated) {
		fmt.Fprintln(a.out, "Please log in first.")
		return err
	}
	fmt.Fprintln(a.out, "Error:", err)
	return err
}
