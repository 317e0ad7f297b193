package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/text-materials-api/internal/models"
)

// outboxNotifier writes notifications to the outbox table. The dispatcher
// delivers them later.
type outboxNotifier struct {
	*deps
	log zerolog.Logger
}

func newOutboxNotifier(d *deps) *outboxNotifier {
	return &outboxNotifier{deps: d, log: d.log.With().Str("service", "notifier").Logger()}
}

func (n *outboxNotifier) NotifyCreated(ctx context.Context, user *models.User, m *models.TextMaterial) error {
	if user == nil {
		return nil
	}
	return n.enqueue(ctx, user, m, models.NotificationCreated, false,
		fmt.Sprintf("Text material %q submitted", m.Title),
		fmt.Sprintf("Hello %s,\n\nyour text material %q was submitted and is waiting for review.", user.Username, m.Title),
		nil)
}

func (n *outboxNotifier) NotifyApproved(ctx context.Context, user *models.User, m *models.TextMaterial) error {
	if user == nil {
		return nil
	}
	return n.enqueue(ctx, user, m, models.NotificationApproved, false,
		fmt.Sprintf("Text material %q approved", m.Title),
		fmt.Sprintf("Hello %s,\n\nyour text material %q was approved and is now public.", user.Username, m.Title),
		nil)
}

func (n *outboxNotifier) NotifyRejected(ctx context.Context, user *models.User, m *models.TextMaterial, reason *string) error {
	if user == nil {
		return nil
	}
	body := fmt.Sprintf("Hello %s,\n\nyour text material %q was rejected.", user.Username, m.Title)
	if reason != nil {
		body += "\n\nReason: " + *reason
	}
	return n.enqueue(ctx, user, m, models.NotificationRejected, false,
		fmt.Sprintf("Text material %q rejected", m.Title), body, nil)
}

func (n *outboxNotifier) NotifyDeleted(ctx context.Context, user *models.User, m *models.TextMaterial) error {
	if user == nil {
		return nil
	}
	return n.enqueue(ctx, user, m, models.NotificationDeleted, false,
		fmt.Sprintf("Text material %q deleted", m.Title),
		fmt.Sprintf("Hello %s,\n\nyour text material %q was deleted by an administrator.", user.Username, m.Title),
		nil)
}

// SendAsDocument queues doc as an attachment. Explicit requests ignore the
// user's notification preference.
func (n *outboxNotifier) SendAsDocument(ctx context.Context, user *models.User, m *models.TextMaterial, doc *models.Document) error {
	if user == nil {
		return nil
	}
	return n.enqueue(ctx, user, m, models.NotificationDocument, true,
		fmt.Sprintf("Text material %q", m.Title),
		fmt.Sprintf("Hello %s,\n\nthe text material %q you requested is attached.", user.Username, m.Title),
		doc)
}

// enqueue writes one outbox row. Users who opted out are skipped unless
// force is set.
func (n *outboxNotifier) enqueue(ctx context.Context, user *models.User, m *models.TextMaterial, kind models.NotificationKind, force bool, subject, body string, doc *models.Document) error {
	if !force && !user.ReceiveNotifications {
		n.log.Debug().Int64("user_id", user.ID).Str("kind", string(kind)).Msg("Notifications disabled, skipping")
		return nil
	}

	materialID := m.ID
	notification := &models.Notification{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		Email:      user.Email,
		Kind:       kind,
		MaterialID: &materialID,
		Subject:    subject,
		Body:       body,
		Status:     models.NotificationPending,
		CreatedAt:  n.now().UTC(),
	}
	if doc != nil {
		notification.AttachmentName = doc.FileName
		notification.AttachmentType = doc.ContentType
		notification.Attachment = doc.Data
	}

	if err := n.repos.Notification.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to queue %s notification: %w", kind, err)
	}
	n.log.Debug().Str("notification_id", notification.ID).Str("kind", string(kind)).Msg("Notification queued")
	return nil
}
