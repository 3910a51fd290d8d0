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

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientProfile, error) {
	query := `SELECT * FROM patient_profiles WHERE id = $1`
	var profile model.PatientProfile
	err := r.db.GetContext(ctx, &profile, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient profile: %w", err)
	}
	return &profile, nil
}

func (r *patientRepository) GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.PatientProfile, error) {
	query := `SELECT * FROM patient_profiles WHERE account_id = $1`
	var profile model.PatientProfile
	err := r.db.GetContext(ctx, &profile, query, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient profile by account: %w", err)
	}
	return &profile, nil
}

func (r *patientRepository) Update(ctx context.Context, profile *model.PatientProfile) error {
	profile.UpdatedAt = time.Now()
	query := `
		UPDATE patient_profiles
		SET emergency_contact = $1, blood_type = $2, allergies = $3, updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.EmergencyContact, profile.BloodType, profile.Allergies,
		profile.UpdatedAt, profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient profile: %w", err)
	}
	return nil
}

func (r *patientRepository) UpdateAssignment(ctx context.Context, patientID uuid.UUID, doctorID *uuid.UUID) error {
	query := `UPDATE patient_profiles SET assigned_doctor_id = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, doctorID, time.Now(), patientID)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}
