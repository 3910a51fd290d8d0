package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// Account is the authentication identity. Exactly one role profile exists for
// it, matching Role, which is immutable after registration.
type Account struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Role         Role       `json:"role" db:"role"`
	PhoneNumber  string     `json:"phone_number" db:"phone_number"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	IsAdmin      bool       `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

func (a *Account) FullName() string {
	if a.FirstName == "" && a.LastName == "" {
		return a.Email
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

type DoctorProfile struct {
	ID                uuid.UUID `json:"id" db:"id"`
	AccountID         uuid.UUID `json:"account_id" db:"account_id"`
	Specialization    string    `json:"specialization" db:"specialization"`
	LicenseNumber     string    `json:"license_number" db:"license_number"`
	YearsOfExperience int       `json:"years_of_experience" db:"years_of_experience"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`

	// Populated on reads that join the owning account.
	Account *Account `json:"account,omitempty" db:"-"`
}

type PatientProfile struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	AccountID        uuid.UUID  `json:"account_id" db:"account_id"`
	EmergencyContact string     `json:"emergency_contact" db:"emergency_contact"`
	BloodType        string     `json:"blood_type" db:"blood_type"`
	Allergies        string     `json:"allergies" db:"allergies"`
	AssignedDoctorID *uuid.UUID `json:"assigned_doctor_id,omitempty" db:"assigned_doctor_id"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`

	Account        *Account       `json:"account,omitempty" db:"-"`
	AssignedDoctor *DoctorProfile `json:"assigned_doctor,omitempty" db:"-"`
}

type RegisterRequest struct {
	Email           string     `json:"email" binding:"required,email"`
	Password        string     `json:"password" binding:"required,min=8"`
	PasswordConfirm string     `json:"password_confirm" binding:"required,eqfield=Password"`
	FirstName       string     `json:"first_name" binding:"required"`
	LastName        string     `json:"last_name" binding:"required"`
	Role            Role       `json:"role" binding:"required,oneof=PATIENT DOCTOR"`
	PhoneNumber     string     `json:"phone_number"`
	DateOfBirth     *time.Time `json:"date_of_birth"`

	// Doctor seed fields, ignored for patients.
	Specialization    string `json:"specialization"`
	LicenseNumber     string `json:"license_number"`
	YearsOfExperience int    `json:"years_of_experience" binding:"min=0"`

	// Patient seed fields, ignored for doctors.
	EmergencyContact string `json:"emergency_contact"`
	BloodType        string `json:"blood_type" binding:"omitempty,bloodtype"`
	Allergies        string `json:"allergies"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	Account *Account       `json:"account"`
	Tokens  *TokenResponse `json:"tokens"`
}

type UpdateProfileRequest struct {
	PhoneNumber *string `json:"phone_number"`

	Specialization    *string `json:"specialization"`
	YearsOfExperience *int    `json:"years_of_experience" binding:"omitempty,min=0"`

	EmergencyContact *string `json:"emergency_contact"`
	BloodType        *string `json:"blood_type" binding:"omitempty,bloodtype"`
	Allergies        *string `json:"allergies"`
}

// ProfileView is a tagged union over the two role profiles. Exactly one of
// Patient/Doctor is set, matching Role.
type ProfileView struct {
	Role    Role            `json:"role"`
	Patient *PatientProfile `json:"patient,omitempty"`
	Doctor  *DoctorProfile  `json:"doctor,omitempty"`
}

// PatientSummary is the per-patient row a doctor sees in their caseload list.
type PatientSummary struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PhoneNumber  string     `json:"phone_number" db:"phone_number"`
	BloodType    string     `json:"blood_type" db:"blood_type"`
	TotalRecords int        `json:"total_records" db:"total_records"`
	LastVisit    *time.Time `json:"last_visit,omitempty" db:"last_visit"`
}

type AssignDoctorRequest struct {
	PatientID uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID  *uuid.UUID `json:"doctor_id"`
}
