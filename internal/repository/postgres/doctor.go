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

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	query := `SELECT * FROM doctor_profiles WHERE id = $1`
	var profile model.DoctorProfile
	err := r.db.GetContext(ctx, &profile, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	return &profile, nil
}

func (r *doctorRepository) GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.DoctorProfile, error) {
	query := `SELECT * FROM doctor_profiles WHERE account_id = $1`
	var profile model.DoctorProfile
	err := r.db.GetContext(ctx, &profile, query, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor profile by account: %w", err)
	}
	return &profile, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.DoctorProfile, error) {
	query := `SELECT * FROM doctor_profiles ORDER BY created_at`
	var profiles []*model.DoctorProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return profiles, nil
}

func (r *doctorRepository) Update(ctx context.Context, profile *model.DoctorProfile) error {
	profile.UpdatedAt = time.Now()
	query := `
		UPDATE doctor_profiles
		SET specialization = $1, years_of_experience = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.Specialization, profile.YearsOfExperience,
		profile.UpdatedAt, profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor profile: %w", err)
	}
	return nil
}

func (r *doctorRepository) ListPatients(ctx context.Context, doctorID uuid.UUID) ([]*model.PatientSummary, error) {
	query := `
		SELECT
			p.id,
			TRIM(a.first_name || ' ' || a.last_name) AS name,
			a.email,
			a.phone_number,
			p.blood_type,
			COUNT(hr.id) AS total_records,
			MAX(hr.visit_date) AS last_visit
		FROM patient_profiles p
		JOIN accounts a ON a.id = p.account_id
		LEFT JOIN health_records hr ON hr.patient_id = p.id
		WHERE p.assigned_doctor_id = $1
		GROUP BY p.id, a.first_name, a.last_name, a.email, a.phone_number, p.blood_type
		ORDER BY name
	`
	var summaries []*model.PatientSummary
	if err := r.db.SelectContext(ctx, &summaries, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list assigned patients: %w", err)
	}
	return summaries, nil
}
