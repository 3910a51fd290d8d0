package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/healthrec/record-api/internal/model"
)

type AccountRepository interface {
	// CreatePatient and CreateDoctor insert the account and its role profile
	// in one transaction.
	CreatePatient(ctx context.Context, account *model.Account, profile *model.PatientProfile) error
	CreateDoctor(ctx context.Context, account *model.Account, profile *model.DoctorProfile) error
	Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error
}

type PatientRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error)
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.PatientProfile, error)
	Update(ctx context.Context, profile *model.PatientProfile) error
	UpdateAssignment(ctx context.Context, patientID uuid.UUID, doctorID *uuid.UUID) error
}

type DoctorRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error)
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.DoctorProfile, error)
	List(ctx context.Context) ([]*model.DoctorProfile, error)
	Update(ctx context.Context, profile *model.DoctorProfile) error
	// ListPatients returns summaries of the patients currently assigned to
	// the doctor, including record count and most recent visit.
	ListPatients(ctx context.Context, doctorID uuid.UUID) ([]*model.PatientSummary, error)
}

type RecordRepository interface {
	Create(ctx context.Context, record *model.HealthRecord) error
	Get(ctx context.Context, id uuid.UUID) (*model.HealthRecord, error)
	Update(ctx context.Context, record *model.HealthRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByPatient returns the patient's records ordered by visit date,
	// newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.HealthRecord, error)
	// ListByAssignedDoctor returns records of every patient currently
	// assigned to the doctor, ordered by visit date, newest first.
	ListByAssignedDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.HealthRecord, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.DoctorComment) error
	// ListByRecord returns the record's comments newest first, excluding
	// private ones unless includePrivate is set.
	ListByRecord(ctx context.Context, recordID uuid.UUID, includePrivate bool) ([]*model.DoctorComment, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*model.Notification, error)
	// MarkRead flips is_read for the notification iff it belongs to the
	// recipient; the returned count is zero when the id does not resolve
	// within the recipient's scope.
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) (int64, error)
	// MarkAllRead flips every unread notification of the recipient and
	// returns how many rows changed.
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
