package model

import (
	"time"

	"github.com/google/uuid"
)

type RecordType string

const (
	RecordTypeCheckup      RecordType = "CHECKUP"
	RecordTypeDiagnosis    RecordType = "DIAGNOSIS"
	RecordTypePrescription RecordType = "PRESCRIPTION"
	RecordTypeLabResult    RecordType = "LAB_RESULT"
	RecordTypeEmergency    RecordType = "EMERGENCY"
)

func (t RecordType) Valid() bool {
	switch t {
	case RecordTypeCheckup, RecordTypeDiagnosis, RecordTypePrescription,
		RecordTypeLabResult, RecordTypeEmergency:
		return true
	}
	return false
}

// HealthRecord is a patient-authored visit entry. PatientID and CreatedBy are
// fixed at creation; CreatedBy is always the owning patient's account.
type HealthRecord struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	PatientID   uuid.UUID  `json:"patient_id" db:"patient_id"`
	RecordType  RecordType `json:"record_type" db:"record_type"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Symptoms    string     `json:"symptoms" db:"symptoms"`
	Diagnosis   string     `json:"diagnosis" db:"diagnosis"`
	Treatment   string     `json:"treatment" db:"treatment"`
	Medications string     `json:"medications" db:"medications"`
	VisitDate   time.Time  `json:"visit_date" db:"visit_date"`
	CreatedBy   uuid.UUID  `json:"created_by" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	Comments []*DoctorComment `json:"doctor_comments,omitempty" db:"-"`
}

type DoctorComment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	RecordID  uuid.UUID `json:"record_id" db:"record_id"`
	DoctorID  uuid.UUID `json:"doctor_id" db:"doctor_id"`
	Comment   string    `json:"comment" db:"comment"`
	IsPrivate bool      `json:"is_private" db:"is_private"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Doctor *DoctorProfile `json:"doctor,omitempty" db:"-"`
}

type CreateRecordRequest struct {
	RecordType  RecordType `json:"record_type" binding:"required,oneof=CHECKUP DIAGNOSIS PRESCRIPTION LAB_RESULT EMERGENCY"`
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	Symptoms    string     `json:"symptoms"`
	Diagnosis   string     `json:"diagnosis"`
	Treatment   string     `json:"treatment"`
	Medications string     `json:"medications"`
	VisitDate   time.Time  `json:"visit_date" binding:"required"`
}

type UpdateRecordRequest struct {
	RecordType  *RecordType `json:"record_type" binding:"omitempty,oneof=CHECKUP DIAGNOSIS PRESCRIPTION LAB_RESULT EMERGENCY"`
	Title       *string     `json:"title" binding:"omitempty,max=200"`
	Description *string     `json:"description"`
	Symptoms    *string     `json:"symptoms"`
	Diagnosis   *string     `json:"diagnosis"`
	Treatment   *string     `json:"treatment"`
	Medications *string     `json:"medications"`
	VisitDate   *time.Time  `json:"visit_date"`
}

type AddCommentRequest struct {
	Comment   string `json:"comment" binding:"required"`
	IsPrivate bool   `json:"is_private"`
}
