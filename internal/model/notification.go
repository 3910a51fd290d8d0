package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationPatientAssigned NotificationType = "PATIENT_ASSIGNED"
	NotificationNewRecord       NotificationType = "NEW_RECORD"
	NotificationCommentAdded    NotificationType = "COMMENT_ADDED"
)

// Notification rows are written only by the dispatch worker, never directly
// by a request handler. Read state is monotonic: once read, stays read.
type Notification struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	RecipientID uuid.UUID        `json:"recipient_id" db:"recipient_id"`
	Type        NotificationType `json:"type" db:"type"`
	Title       string           `json:"title" db:"title"`
	Message     string           `json:"message" db:"message"`
	IsRead      bool             `json:"is_read" db:"is_read"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

type MarkAllReadResponse struct {
	MarkedRead int64 `json:"marked_read"`
}
