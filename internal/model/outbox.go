package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxEvent is the durable handoff between a request-path mutation and the
// dispatch worker. It is written in the same transaction scope as the
// triggering write, so the worker only ever sees committed transitions.
type OutboxEvent struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	EventType    NotificationType `json:"event_type" db:"event_type"`
	Payload      json.RawMessage  `json:"payload" db:"payload"`
	Status       OutboxStatus     `json:"status" db:"status"`
	ErrorMessage *string          `json:"error_message,omitempty" db:"error_message"`
	RetryCount   int              `json:"retry_count" db:"retry_count"`
	RetryAt      *time.Time       `json:"retry_at,omitempty" db:"retry_at"`
	ProcessedAt  *time.Time       `json:"processed_at,omitempty" db:"processed_at"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// NotificationPayload is the wire shape of every outbox event the dispatcher
// understands. Title and Message are rendered at enqueue time so the worker
// stays a dumb inserter.
type NotificationPayload struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
}
