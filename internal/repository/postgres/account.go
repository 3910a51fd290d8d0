package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/repository"
	apperrors "github.com/healthrec/record-api/pkg/errors"
)

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

type accountRepository struct {
	BaseRepository
}

func NewAccountRepository(base BaseRepository) repository.AccountRepository {
	return &accountRepository{base}
}

const insertAccount = `
	INSERT INTO accounts (
		id, email, password_hash, first_name, last_name, role,
		phone_number, date_of_birth, is_admin, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

func (r *accountRepository) CreatePatient(ctx context.Context, account *model.Account, profile *model.PatientProfile) error {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	profile.CreatedAt = now
	profile.UpdatedAt = now
	profile.AccountID = account.ID

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, insertAccount,
			account.ID, account.Email, account.PasswordHash,
			account.FirstName, account.LastName, account.Role,
			account.PhoneNumber, account.DateOfBirth, account.IsAdmin,
			account.CreatedAt, account.UpdatedAt,
		); err != nil {
			return err
		}

		query := `
			INSERT INTO patient_profiles (
				id, account_id, emergency_contact, blood_type, allergies,
				assigned_doctor_id, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := tx.ExecContext(ctx, query,
			profile.ID, profile.AccountID, profile.EmergencyContact,
			profile.BloodType, profile.Allergies, profile.AssignedDoctorID,
			profile.CreatedAt, profile.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("email already registered", err)
		}
		return fmt.Errorf("failed to create patient account: %w", err)
	}
	return nil
}

func (r *accountRepository) CreateDoctor(ctx context.Context, account *model.Account, profile *model.DoctorProfile) error {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	profile.CreatedAt = now
	profile.UpdatedAt = now
	profile.AccountID = account.ID

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, insertAccount,
			account.ID, account.Email, account.PasswordHash,
			account.FirstName, account.LastName, account.Role,
			account.PhoneNumber, account.DateOfBirth, account.IsAdmin,
			account.CreatedAt, account.UpdatedAt,
		); err != nil {
			return err
		}

		query := `
			INSERT INTO doctor_profiles (
				id, account_id, specialization, license_number,
				years_of_experience, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.ExecContext(ctx, query,
			profile.ID, profile.AccountID, profile.Specialization,
			profile.LicenseNumber, profile.YearsOfExperience,
			profile.CreatedAt, profile.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("email or license number already registered", err)
		}
		return fmt.Errorf("failed to create doctor account: %w", err)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT * FROM accounts WHERE id = $1`
	var account model.Account
	err := r.db.GetContext(ctx, &account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("account", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT * FROM accounts WHERE email = $1`
	var account model.Account
	err := r.db.GetContext(ctx, &account, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("account", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	account.UpdatedAt = time.Now()
	query := `
		UPDATE accounts
		SET first_name = $1, last_name = $2, phone_number = $3, updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query,
		account.FirstName, account.LastName, account.PhoneNumber,
		account.UpdatedAt, account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}
