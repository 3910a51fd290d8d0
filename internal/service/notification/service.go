package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/repository"
	apperrors "github.com/healthrec/record-api/pkg/errors"
)

type Service interface {
	List(ctx context.Context, recipientID uuid.UUID) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type service struct {
	repo repository.NotificationRepository
}

func NewService(repo repository.NotificationRepository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, recipientID uuid.UUID) ([]*model.Notification, error) {
	notifications, err := s.repo.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead is idempotent and strictly own-scope: an id belonging to another
// account yields NotFound, not PermissionDenied, so callers cannot probe for
// the existence of foreign notifications.
func (s *service) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	rows, err := s.repo.MarkRead(ctx, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("notification", nil)
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return count, nil
}
