package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/policy"
	"github.com/healthrec/record-api/internal/repository"
	"github.com/healthrec/record-api/internal/service/notification"
	apperrors "github.com/healthrec/record-api/pkg/errors"
	"github.com/healthrec/record-api/pkg/logger"
)

const (
	doctorListCacheKey = "doctors:all"
	doctorListCacheTTL = 30 * time.Second
)

type Service interface {
	// AssignDoctor links a patient to a doctor. A doctor actor with no
	// explicit doctorID self-assigns. Replaces any prior assignment and
	// notifies the new doctor iff the assignment actually changed.
	AssignDoctor(ctx context.Context, actor policy.Actor, req *model.AssignDoctorRequest) (*model.PatientProfile, error)
	ListDoctors(ctx context.Context) ([]*model.DoctorProfile, error)
	ListMyPatients(ctx context.Context, actor policy.Actor) ([]*model.PatientSummary, error)
}

type service struct {
	patients   repository.PatientRepository
	doctors    repository.DoctorRepository
	accounts   repository.AccountRepository
	dispatcher notification.Dispatcher
	cache      *gocache.Cache
	logger     *logger.Logger
}

func NewService(
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	accounts repository.AccountRepository,
	dispatcher notification.Dispatcher,
	log *logger.Logger,
) Service {
	return &service{
		patients:   patients,
		doctors:    doctors,
		accounts:   accounts,
		dispatcher: dispatcher,
		cache:      gocache.New(doctorListCacheTTL, 5*time.Minute),
		logger:     log,
	}
}

func (s *service) AssignDoctor(ctx context.Context, actor policy.Actor, req *model.AssignDoctorRequest) (*model.PatientProfile, error) {
	if !policy.CanAssign(actor) {
		return nil, apperrors.PermissionDenied(fmt.Errorf("only doctors or administrators can assign doctors"))
	}

	doctorID := req.DoctorID
	if doctorID == nil {
		if !actor.IsDoctor() {
			return nil, apperrors.Validation("doctor_id is required", nil)
		}
		doctorID = &actor.Doctor.ID
	}

	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	doctor, err := s.doctors.Get(ctx, *doctorID)
	if err != nil {
		return nil, err
	}

	previous := patient.AssignedDoctorID
	if err := s.patients.UpdateAssignment(ctx, patient.ID, &doctor.ID); err != nil {
		return nil, err
	}
	patient.AssignedDoctorID = &doctor.ID
	patient.AssignedDoctor = doctor

	// Notify only on an actual change of doctor, after the assignment write
	// has gone through. A failed enqueue is logged and swallowed.
	if previous == nil || *previous != doctor.ID {
		patientName := s.accountName(ctx, patient.AccountID)
		if err := s.dispatcher.Enqueue(ctx,
			model.NotificationPatientAssigned,
			doctor.AccountID,
			"New Patient Assigned",
			fmt.Sprintf("You have been assigned a new patient: %s", patientName),
		); err != nil {
			s.logger.Error(err, "failed to enqueue assignment notification",
				"patient_id", patient.ID.String())
		}
	}

	return patient, nil
}

func (s *service) ListDoctors(ctx context.Context) ([]*model.DoctorProfile, error) {
	if cached, ok := s.cache.Get(doctorListCacheKey); ok {
		return cached.([]*model.DoctorProfile), nil
	}

	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, doctor := range doctors {
		if account, err := s.accounts.Get(ctx, doctor.AccountID); err == nil {
			doctor.Account = account
		}
	}

	s.cache.Set(doctorListCacheKey, doctors, doctorListCacheTTL)
	return doctors, nil
}

func (s *service) ListMyPatients(ctx context.Context, actor policy.Actor) ([]*model.PatientSummary, error) {
	if !actor.IsDoctor() {
		return nil, apperrors.PermissionDenied(fmt.Errorf("only doctors can list assigned patients"))
	}
	return s.doctors.ListPatients(ctx, actor.Doctor.ID)
}

func (s *service) accountName(ctx context.Context, accountID uuid.UUID) string {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return "a patient"
	}
	return account.FullName()
}
