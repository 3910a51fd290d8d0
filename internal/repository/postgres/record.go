package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/repository"
	apperrors "github.com/healthrec/record-api/pkg/errors"
)

type recordRepository struct {
	BaseRepository
}

func NewRecordRepository(base BaseRepository) repository.RecordRepository {
	return &recordRepository{base}
}

func (r *recordRepository) Create(ctx context.Context, record *model.HealthRecord) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	query := `
		INSERT INTO health_records (
			id, patient_id, record_type, title, description, symptoms,
			diagnosis, treatment, medications, visit_date, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.PatientID, record.RecordType, record.Title,
		record.Description, record.Symptoms, record.Diagnosis,
		record.Treatment, record.Medications, record.VisitDate,
		record.CreatedBy, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create health record: %w", err)
	}
	return nil
}

func (r *recordRepository) Get(ctx context.Context, id uuid.UUID) (*model.HealthRecord, error) {
	query := `SELECT * FROM health_records WHERE id = $1`
	var record model.HealthRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("health record", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get health record: %w", err)
	}
	return &record, nil
}

// Update persists content fields only; patient_id and created_by are fixed at
// creation.
func (r *recordRepository) Update(ctx context.Context, record *model.HealthRecord) error {
	record.UpdatedAt = time.Now()
	query := `
		UPDATE health_records
		SET record_type = $1, title = $2, description = $3, symptoms = $4,
			diagnosis = $5, treatment = $6, medications = $7, visit_date = $8,
			updated_at = $9
		WHERE id = $10
	`
	_, err := r.db.ExecContext(ctx, query,
		record.RecordType, record.Title, record.Description, record.Symptoms,
		record.Diagnosis, record.Treatment, record.Medications,
		record.VisitDate, record.UpdatedAt, record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update health record: %w", err)
	}
	return nil
}

func (r *recordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM health_records WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete health record: %w", err)
	}
	return nil
}

func (r *recordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.HealthRecord, error) {
	query := `SELECT * FROM health_records WHERE patient_id = $1 ORDER BY visit_date DESC`
	var records []*model.HealthRecord
	if err := r.db.SelectContext(ctx, &records, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list health records: %w", err)
	}
	return records, nil
}

func (r *recordRepository) ListByAssignedDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.HealthRecord, error) {
	query := `
		SELECT hr.*
		FROM health_records hr
		JOIN patient_profiles p ON p.id = hr.patient_id
		WHERE p.assigned_doctor_id = $1
		ORDER BY hr.visit_date DESC
	`
	var records []*model.HealthRecord
	if err := r.db.SelectContext(ctx, &records, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list records for doctor: %w", err)
	}
	return records, nil
}
