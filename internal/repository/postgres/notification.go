package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/repository"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	notification.CreatedAt = time.Now()
	query := `
		INSERT INTO notifications (
			id, recipient_id, type, title, message, is_read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		notification.ID, notification.RecipientID, notification.Type,
		notification.Title, notification.Message, notification.IsRead,
		notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*model.Notification, error) {
	query := `SELECT * FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC`
	var notifications []*model.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, recipientID); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead scopes the update to the recipient so a caller can never touch
// another account's notification; a foreign id simply matches zero rows.
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND recipient_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return result.RowsAffected()
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND NOT is_read`
	result, err := r.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}
