package repository

import (
	"context"

	"github.com/text-materials-api/internal/database"
	"github.com/text-materials-api/internal/models"
)

const notificationColumns = `id, user_id, email, kind, material_id, subject, body,
	attachment_name, attachment_type, attachment, status, attempts, last_error, created_at, sent_at`

// notificationRepo is the concrete implementation of NotificationRepository
type notificationRepo struct {
	db *database.DB
}

// NewNotificationRepo creates a new notification outbox repository
func NewNotificationRepo(db *database.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

// Create inserts a new outbox entry
func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES (:id, :user_id, :email, :kind, :material_id, :subject, :body,
			:attachment_name, :attachment_type, :attachment, :status, :attempts, :last_error, :created_at, :sent_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, n)
	return err
}

// Update saves delivery state
func (r *notificationRepo) Update(ctx context.Context, n *models.Notification) error {
	query := `
		UPDATE notifications SET
			status = :status, attempts = :attempts, last_error = :last_error, sent_at = :sent_at
		WHERE id = :id
	`
	_, err := r.db.NamedExecContext(ctx, query, n)
	return err
}

// GetPending retrieves the oldest pending notifications
func (r *notificationRepo) GetPending(ctx context.Context, limit int) ([]*models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1
	`
	var pending []*models.Notification
	err := r.db.SelectContext(ctx, &pending, query, limit)
	return pending, err
}

// MarkAsSending atomically claims a pending notification for delivery
func (r *notificationRepo) MarkAsSending(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE notifications SET status = 'sending'
		WHERE id = $1 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// ListByUser returns the latest notifications addressed to a user
func (r *notificationRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	var notifications []*models.Notification
	err := r.db.SelectContext(ctx, &notifications, query, userID, limit)
	return notifications, err
}
