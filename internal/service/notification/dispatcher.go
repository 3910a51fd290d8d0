package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/repository"
)

// Dispatcher is the fire-and-forget handoff between a state transition and
// the notification worker. Enqueue returns as soon as the event is durably
// queued; the Notification row itself is inserted out-of-band, at-least-once.
// Callers invoke it only after the triggering write has committed, and treat
// a failed enqueue as a logged non-event.
type Dispatcher interface {
	Enqueue(ctx context.Context, kind model.NotificationType, recipientID uuid.UUID, title, message string) error
}

type outboxDispatcher struct {
	repo repository.OutboxRepository
}

// NewDispatcher returns a Dispatcher backed by the outbox table.
func NewDispatcher(repo repository.OutboxRepository) Dispatcher {
	return &outboxDispatcher{repo: repo}
}

func (d *outboxDispatcher) Enqueue(ctx context.Context, kind model.NotificationType, recipientID uuid.UUID, title, message string) error {
	payload, err := json.Marshal(model.NotificationPayload{
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	return d.repo.Create(ctx, &model.OutboxEvent{
		EventType: kind,
		Payload:   payload,
	})
}
