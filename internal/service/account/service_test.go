package account

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/policy"
	"github.com/healthrec/record-api/pkg/auth"
	apperrors "github.com/healthrec/record-api/pkg/errors"
	"github.com/healthrec/record-api/pkg/security"
)

type fakeStore struct {
	accounts map[uuid.UUID]*model.Account
	patients map[uuid.UUID]*model.PatientProfile
	doctors  map[uuid.UUID]*model.DoctorProfile
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[uuid.UUID]*model.Account),
		patients: make(map[uuid.UUID]*model.PatientProfile),
		doctors:  make(map[uuid.UUID]*model.DoctorProfile),
	}
}

type fakeAccountRepo struct{ store *fakeStore }

func (f *fakeAccountRepo) CreatePatient(_ context.Context, account *model.Account, profile *model.PatientProfile) error {
	for _, a := range f.store.accounts {
		if a.Email == account.Email {
			return apperrors.Conflict("email already registered", nil)
		}
	}
	profile.AccountID = account.ID
	f.store.accounts[account.ID] = account
	f.store.patients[profile.ID] = profile
	return nil
}

func (f *fakeAccountRepo) CreateDoctor(_ context.Context, account *model.Account, profile *model.DoctorProfile) error {
	for _, a := range f.store.accounts {
		if a.Email == account.Email {
			return apperrors.Conflict("email or license number already registered", nil)
		}
	}
	profile.AccountID = account.ID
	f.store.accounts[account.ID] = account
	f.store.doctors[profile.ID] = profile
	return nil
}

func (f *fakeAccountRepo) Get(_ context.Context, id uuid.UUID) (*model.Account, error) {
	a, ok := f.store.accounts[id]
	if !ok {
		return nil, apperrors.NotFound("account", nil)
	}
	return a, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	for _, a := range f.store.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, apperrors.NotFound("account", nil)
}

func (f *fakeAccountRepo) Update(_ context.Context, account *model.Account) error {
	f.store.accounts[account.ID] = account
	return nil
}

type fakePatientRepo struct{ store *fakeStore }

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.PatientProfile, error) {
	p, ok := f.store.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient profile", nil)
	}
	return p, nil
}

func (f *fakePatientRepo) GetByAccount(_ context.Context, accountID uuid.UUID) (*model.PatientProfile, error) {
	for _, p := range f.store.patients {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("patient profile", nil)
}

func (f *fakePatientRepo) Update(_ context.Context, profile *model.PatientProfile) error {
	f.store.patients[profile.ID] = profile
	return nil
}

func (f *fakePatientRepo) UpdateAssignment(_ context.Context, patientID uuid.UUID, doctorID *uuid.UUID) error {
	p, ok := f.store.patients[patientID]
	if !ok {
		return apperrors.NotFound("patient profile", nil)
	}
	p.AssignedDoctorID = doctorID
	return nil
}

type fakeDoctorRepo struct{ store *fakeStore }

func (f *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	d, ok := f.store.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor profile", nil)
	}
	return d, nil
}

func (f *fakeDoctorRepo) GetByAccount(_ context.Context, accountID uuid.UUID) (*model.DoctorProfile, error) {
	for _, d := range f.store.doctors {
		if d.AccountID == accountID {
			return d, nil
		}
	}
	return nil, apperrors.NotFound("doctor profile", nil)
}

func (f *fakeDoctorRepo) List(_ context.Context) ([]*model.DoctorProfile, error) { return nil, nil }

func (f *fakeDoctorRepo) Update(_ context.Context, profile *model.DoctorProfile) error {
	f.store.doctors[profile.ID] = profile
	return nil
}

func (f *fakeDoctorRepo) ListPatients(_ context.Context, _ uuid.UUID) ([]*model.PatientSummary, error) {
	return nil, nil
}

func newTestService(t *testing.T) (Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        "test-secret",
		RefreshSecret: "test-refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
	svc := NewService(
		&fakeAccountRepo{store},
		&fakePatientRepo{store},
		&fakeDoctorRepo{store},
		security.NewBcryptHasher(4),
		jwtSvc,
	)
	return svc, store
}

func patientRegistration(email string) *model.RegisterRequest {
	return &model.RegisterRequest{
		Email:           email,
		Password:        "password123",
		PasswordConfirm: "password123",
		FirstName:       "Alice",
		LastName:        "Smith",
		Role:            model.RolePatient,
		BloodType:       "A+",
	}
}

func TestRegisterPatient(t *testing.T) {
	svc, store := newTestService(t)

	resp, err := svc.Register(context.Background(), patientRegistration("alice@example.com"))
	require.NoError(t, err)
	require.NotNil(t, resp.Tokens)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.Equal(t, model.RolePatient, resp.Account.Role)
	assert.NotEqual(t, "password123", resp.Account.PasswordHash)
	assert.Len(t, store.patients, 1)
	assert.Empty(t, store.doctors)
}

func TestRegisterDoctorDefaults(t *testing.T) {
	svc, store := newTestService(t)

	resp, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:           "bob@example.com",
		Password:        "password123",
		PasswordConfirm: "password123",
		FirstName:       "Bob",
		LastName:        "Jones",
		Role:            model.RoleDoctor,
	})
	require.NoError(t, err)

	require.Len(t, store.doctors, 1)
	for _, d := range store.doctors {
		assert.Equal(t, "General", d.Specialization)
		assert.True(t, strings.HasPrefix(d.LicenseNumber, "DOC-"))
		assert.Equal(t, resp.Account.ID, d.AccountID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, patientRegistration("alice@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, patientRegistration("alice@example.com"))
	assert.True(t, apperrors.IsConflict(err))
}

func TestRegisterInvalidRole(t *testing.T) {
	svc, _ := newTestService(t)

	req := patientRegistration("alice@example.com")
	req.Role = "ADMIN"
	_, err := svc.Register(context.Background(), req)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, patientRegistration("alice@example.com"))
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &model.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)

	// Unknown email and wrong password are indistinguishable.
	_, badEmail := svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	_, badPassword := svc.Login(ctx, &model.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(badEmail))
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(badPassword))
}

func TestRefresh(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, patientRegistration("alice@example.com"))
	require.NoError(t, err)

	tokens, err := svc.Refresh(ctx, resp.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)

	_, err = svc.Refresh(ctx, "not-a-token")
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))

	// An access token is not accepted as a refresh token.
	_, err = svc.Refresh(ctx, resp.Tokens.AccessToken)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
}

func TestLoadActor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, patientRegistration("alice@example.com"))
	require.NoError(t, err)

	actor, err := svc.LoadActor(ctx, resp.Account.ID)
	require.NoError(t, err)
	assert.True(t, actor.IsPatient())
	assert.Equal(t, resp.Account.ID, actor.Patient.AccountID)

	_, err = svc.LoadActor(ctx, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProfileViewTaggedUnion(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	patientResp, err := svc.Register(ctx, patientRegistration("alice@example.com"))
	require.NoError(t, err)
	doctorReq := patientRegistration("bob@example.com")
	doctorReq.Role = model.RoleDoctor
	doctorReq.BloodType = ""
	doctorResp, err := svc.Register(ctx, doctorReq)
	require.NoError(t, err)

	patientActor, err := svc.LoadActor(ctx, patientResp.Account.ID)
	require.NoError(t, err)
	view, err := svc.GetProfile(ctx, patientActor)
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, view.Role)
	require.NotNil(t, view.Patient)
	assert.Nil(t, view.Doctor)

	doctorActor, err := svc.LoadActor(ctx, doctorResp.Account.ID)
	require.NoError(t, err)
	view, err = svc.GetProfile(ctx, doctorActor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, view.Role)
	require.NotNil(t, view.Doctor)
	assert.Nil(t, view.Patient)

	// Assigned doctor is embedded in the patient view.
	for _, p := range store.patients {
		p.AssignedDoctorID = &doctorActor.Doctor.ID
	}
	view, err = svc.GetProfile(ctx, patientActor)
	require.NoError(t, err)
	require.NotNil(t, view.Patient.AssignedDoctor)
	assert.Equal(t, doctorActor.Doctor.ID, view.Patient.AssignedDoctor.ID)
}

func TestUpdateProfilePerRoleFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, patientRegistration("alice@example.com"))
	require.NoError(t, err)
	actor, err := svc.LoadActor(ctx, resp.Account.ID)
	require.NoError(t, err)

	phone := "+15551234567"
	contact := "Bob Smith +15559876543"
	view, err := svc.UpdateProfile(ctx, actor, &model.UpdateProfileRequest{
		PhoneNumber:      &phone,
		EmergencyContact: &contact,
	})
	require.NoError(t, err)
	assert.Equal(t, phone, view.Patient.Account.PhoneNumber)
	assert.Equal(t, contact, view.Patient.EmergencyContact)

	// No role profile, nothing to update.
	_, err = svc.UpdateProfile(ctx, policy.Actor{Account: resp.Account}, &model.UpdateProfileRequest{})
	assert.True(t, apperrors.IsPermissionDenied(err))
}
