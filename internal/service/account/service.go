package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/policy"
	"github.com/healthrec/record-api/internal/repository"
	"github.com/healthrec/record-api/pkg/auth"
	apperrors "github.com/healthrec/record-api/pkg/errors"
	"github.com/healthrec/record-api/pkg/security"
)

type Service interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
	// LoadActor resolves an authenticated account id into the actor the
	// policy predicates operate on, with its role profile attached.
	LoadActor(ctx context.Context, accountID uuid.UUID) (policy.Actor, error)
	GetProfile(ctx context.Context, actor policy.Actor) (*model.ProfileView, error)
	UpdateProfile(ctx context.Context, actor policy.Actor, req *model.UpdateProfileRequest) (*model.ProfileView, error)
}

type service struct {
	accounts repository.AccountRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	hasher   security.PasswordHasher
	jwtSvc   auth.JWTService
}

func NewService(
	accounts repository.AccountRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	hasher security.PasswordHasher,
	jwtSvc auth.JWTService,
) Service {
	return &service{
		accounts: accounts,
		patients: patients,
		doctors:  doctors,
		hasher:   hasher,
		jwtSvc:   jwtSvc,
	}
}

func (s *service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if !req.Role.Valid() {
		return nil, apperrors.Validation("role must be PATIENT or DOCTOR", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation("invalid password", err)
	}

	account := &model.Account{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		PhoneNumber:  req.PhoneNumber,
		DateOfBirth:  req.DateOfBirth,
	}

	switch req.Role {
	case model.RoleDoctor:
		profile := &model.DoctorProfile{
			ID:                uuid.New(),
			Specialization:    req.Specialization,
			LicenseNumber:     req.LicenseNumber,
			YearsOfExperience: req.YearsOfExperience,
		}
		if profile.Specialization == "" {
			profile.Specialization = "General"
		}
		if profile.LicenseNumber == "" {
			profile.LicenseNumber = generateLicenseNumber(account.ID)
		}
		if err := s.accounts.CreateDoctor(ctx, account, profile); err != nil {
			return nil, err
		}
	default:
		profile := &model.PatientProfile{
			ID:               uuid.New(),
			EmergencyContact: req.EmergencyContact,
			BloodType:        req.BloodType,
			Allergies:        req.Allergies,
		}
		if err := s.accounts.CreatePatient(ctx, account, profile); err != nil {
			return nil, err
		}
	}

	tokens, err := s.generateTokens(account)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &model.AuthResponse{Account: account, Tokens: tokens}, nil
}

func (s *service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	account, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same response for unknown email and bad password.
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	tokens, err := s.generateTokens(account)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &model.AuthResponse{Account: account, Tokens: tokens}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid refresh token: %w", err))
	}

	account, err := s.accounts.Get(ctx, claims.AccountID)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("account no longer exists"))
	}

	return s.generateTokens(account)
}

func (s *service) LoadActor(ctx context.Context, accountID uuid.UUID) (policy.Actor, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return policy.Actor{}, err
	}

	actor := policy.Actor{Account: account}
	switch account.Role {
	case model.RolePatient:
		profile, err := s.patients.GetByAccount(ctx, account.ID)
		if err != nil {
			return policy.Actor{}, fmt.Errorf("failed to load patient profile: %w", err)
		}
		actor.Patient = profile
	case model.RoleDoctor:
		profile, err := s.doctors.GetByAccount(ctx, account.ID)
		if err != nil {
			return policy.Actor{}, fmt.Errorf("failed to load doctor profile: %w", err)
		}
		actor.Doctor = profile
	}
	return actor, nil
}

func (s *service) GetProfile(ctx context.Context, actor policy.Actor) (*model.ProfileView, error) {
	return s.profileView(ctx, actor)
}

func (s *service) UpdateProfile(ctx context.Context, actor policy.Actor, req *model.UpdateProfileRequest) (*model.ProfileView, error) {
	if req.PhoneNumber != nil {
		actor.Account.PhoneNumber = *req.PhoneNumber
		if err := s.accounts.Update(ctx, actor.Account); err != nil {
			return nil, err
		}
	}

	switch {
	case actor.IsDoctor():
		if req.Specialization != nil {
			actor.Doctor.Specialization = *req.Specialization
		}
		if req.YearsOfExperience != nil {
			actor.Doctor.YearsOfExperience = *req.YearsOfExperience
		}
		if err := s.doctors.Update(ctx, actor.Doctor); err != nil {
			return nil, err
		}
	case actor.IsPatient():
		if req.EmergencyContact != nil {
			actor.Patient.EmergencyContact = *req.EmergencyContact
		}
		if req.BloodType != nil {
			actor.Patient.BloodType = *req.BloodType
		}
		if req.Allergies != nil {
			actor.Patient.Allergies = *req.Allergies
		}
		if err := s.patients.Update(ctx, actor.Patient); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.PermissionDenied(fmt.Errorf("actor has no role profile"))
	}

	return s.profileView(ctx, actor)
}

// profileView builds the tagged union response, selected by an explicit
// switch on role.
func (s *service) profileView(ctx context.Context, actor policy.Actor) (*model.ProfileView, error) {
	switch {
	case actor.IsDoctor():
		profile := actor.Doctor
		profile.Account = actor.Account
		return &model.ProfileView{Role: model.RoleDoctor, Doctor: profile}, nil
	case actor.IsPatient():
		profile := actor.Patient
		profile.Account = actor.Account
		if profile.AssignedDoctorID != nil {
			doctor, err := s.doctors.Get(ctx, *profile.AssignedDoctorID)
			if err == nil {
				profile.AssignedDoctor = doctor
			}
		}
		return &model.ProfileView{Role: model.RolePatient, Patient: profile}, nil
	default:
		return nil, apperrors.PermissionDenied(fmt.Errorf("actor has no role profile"))
	}
}

func (s *service) generateTokens(account *model.Account) (*model.TokenResponse, error) {
	accessToken, err := s.jwtSvc.GenerateAccessToken(account)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtSvc.GenerateRefreshToken(account)
	if err != nil {
		return nil, err
	}

	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func generateLicenseNumber(accountID uuid.UUID) string {
	return fmt.Sprintf("DOC-%s", accountID.String()[:8])
}
