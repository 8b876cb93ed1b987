package service

import (
	"context"
	"fmt"

	"fitcabinet/coach-crm/internal/domain"
	"fitcabinet/coach-crm/internal/repository"

	"github.com/charmbracelet/log"
)

// Notifier implements the fan-out: every session or comment creation
// produces at most one notification for the "other side" of the coach /
// client relationship. The mutation handler calls it directly after the
// write, so ordering and the at-most-once guarantee stay auditable.
//
// Fan-out is best-effort: a failed insert is logged and swallowed, it
// never fails the mutation that triggered it.
type Notifier struct {
	notifications repository.NotificationRepository
}

// NewNotifier creates a Notifier over the notification repository.
func NewNotifier(notifications repository.NotificationRepository) *Notifier {
	return &Notifier{notifications: notifications}
}

// SessionCreated notifies the client account linked to the owning card.
// Cards without a linked account produce nothing.
func (n *Notifier) SessionCreated(ctx context.Context, client *domain.Client, session *domain.Session) {
	if client.AccountID == nil {
		return
	}

	n.deliver(ctx, &domain.Notification{
		RecipientID: *client.AccountID,
		Category:    domain.NotifyWorkout,
		Title:       fmt.Sprintf("New event: %s", session.Title),
		Message:     fmt.Sprintf("Your coach scheduled a new task for %s", session.ScheduledAt.Format("02.01 15:04")),
		Entity:      &domain.EntityRef{Kind: domain.EntitySession, ID: session.ID},
	})
}

// CommentAdded resolves the two candidate parties on the session's card
// and notifies whichever one did not write the comment. An author that
// matches neither party is inconsistent data: silent no-op, not an error.
// The entity ref points at the session so the app opens the thread.
func (n *Notifier) CommentAdded(ctx context.Context, client *domain.Client, session *domain.Session, comment *domain.Comment) {
	body := excerpt(comment.Text)
	if body == "" && comment.AttachmentKey != "" {
		body = "Attachment"
	}
	note := &domain.Notification{
		Category: domain.NotifyMessage,
		Message:  fmt.Sprintf("On '%s': %s", session.Title, body),
		Entity:   &domain.EntityRef{Kind: domain.EntitySession, ID: session.ID},
	}

	switch {
	case comment.AuthorID == client.CoachID:
		if client.AccountID == nil {
			return // Nobody to tell
		}
		note.RecipientID = *client.AccountID
		note.Title = "Message from your coach"
	case client.IsLinkedTo(comment.AuthorID):
		note.RecipientID = client.CoachID
		note.Title = fmt.Sprintf("Message from %s", client.Name)
	default:
		return
	}

	n.deliver(ctx, note)
}

func (n *Notifier) deliver(ctx context.Context, note *domain.Notification) {
	if _, err := n.notifications.Create(ctx, note); err != nil {
		log.Warn("notification not delivered",
			"recipient", note.RecipientID.Hex(),
			"category", note.Category,
			"err", err)
	}
}

// excerpt trims chat text for the notification body, same cut the mobile
// push preview uses.
func excerpt(text string) string {
	const max = 50
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
