package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/policy"
	"github.com/healthrec/record-api/internal/repository"
	"github.com/healthrec/record-api/internal/service/notification"
	apperrors "github.com/healthrec/record-api/pkg/errors"
	"github.com/healthrec/record-api/pkg/logger"
)

type Service interface {
	Create(ctx context.Context, actor policy.Actor, req *model.CreateRecordRequest) (*model.HealthRecord, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*model.HealthRecord, error)
	List(ctx context.Context, actor policy.Actor) ([]*model.HealthRecord, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *model.UpdateRecordRequest) (*model.HealthRecord, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
	AddComment(ctx context.Context, actor policy.Actor, recordID uuid.UUID, req *model.AddCommentRequest) (*model.DoctorComment, error)
}

type service struct {
	records    repository.RecordRepository
	comments   repository.CommentRepository
	patients   repository.PatientRepository
	doctors    repository.DoctorRepository
	accounts   repository.AccountRepository
	dispatcher notification.Dispatcher
	logger     *logger.Logger
}

func NewService(
	records repository.RecordRepository,
	comments repository.CommentRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	accounts repository.AccountRepository,
	dispatcher notification.Dispatcher,
	log *logger.Logger,
) Service {
	return &service{
		records:    records,
		comments:   comments,
		patients:   patients,
		doctors:    doctors,
		accounts:   accounts,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Create inserts a record for the acting patient. The owning patient and
// created_by are forced server-side; a client cannot author a record for
// anyone else. Fires a NEW_RECORD event to the assigned doctor, if any.
func (s *service) Create(ctx context.Context, actor policy.Actor, req *model.CreateRecordRequest) (*model.HealthRecord, error) {
	if !actor.IsPatient() {
		return nil, apperrors.PermissionDenied(fmt.Errorf("only patients can create health records"))
	}

	record := &model.HealthRecord{
		ID:          uuid.New(),
		PatientID:   actor.Patient.ID,
		RecordType:  req.RecordType,
		Title:       req.Title,
		Description: req.Description,
		Symptoms:    req.Symptoms,
		Diagnosis:   req.Diagnosis,
		Treatment:   req.Treatment,
		Medications: req.Medications,
		VisitDate:   req.VisitDate,
		CreatedBy:   actor.Account.ID,
	}

	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}

	if actor.Patient.AssignedDoctorID != nil {
		s.notifyAssignedDoctor(ctx, actor, record)
	}

	return record, nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*model.HealthRecord, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patient, err := s.patients.Get(ctx, record.PatientID)
	if err != nil {
		return nil, err
	}

	// Invisible records answer exactly like missing ones.
	if !policy.CanAccessRecord(actor, record, patient) {
		return nil, apperrors.NotFound("health record", nil)
	}

	comments, err := s.comments.ListByRecord(ctx, record.ID, actor.IsDoctor())
	if err != nil {
		return nil, err
	}
	s.attachAuthors(ctx, comments)
	record.Comments = comments

	return record, nil
}

// List returns the actor's visible records: a patient's own, or every record
// of the doctor's currently assigned patients.
func (s *service) List(ctx context.Context, actor policy.Actor) ([]*model.HealthRecord, error) {
	var (
		records []*model.HealthRecord
		err     error
	)
	switch {
	case actor.IsPatient():
		records, err = s.records.ListByPatient(ctx, actor.Patient.ID)
	case actor.IsDoctor():
		records, err = s.records.ListByAssignedDoctor(ctx, actor.Doctor.ID)
	default:
		return []*model.HealthRecord{}, nil
	}
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		comments, err := s.comments.ListByRecord(ctx, record.ID, actor.IsDoctor())
		if err != nil {
			return nil, err
		}
		s.attachAuthors(ctx, comments)
		record.Comments = comments
	}
	return records, nil
}

func (s *service) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *model.UpdateRecordRequest) (*model.HealthRecord, error) {
	record, err := s.mutableRecord(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.RecordType != nil {
		record.RecordType = *req.RecordType
	}
	if req.Title != nil {
		record.Title = *req.Title
	}
	if req.Description != nil {
		record.Description = *req.Description
	}
	if req.Symptoms != nil {
		record.Symptoms = *req.Symptoms
	}
	if req.Diagnosis != nil {
		record.Diagnosis = *req.Diagnosis
	}
	if req.Treatment != nil {
		record.Treatment = *req.Treatment
	}
	if req.Medications != nil {
		record.Medications = *req.Medications
	}
	if req.VisitDate != nil {
		record.VisitDate = *req.VisitDate
	}

	if err := s.records.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	record, err := s.mutableRecord(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.records.Delete(ctx, record.ID)
}

// AddComment creates a doctor comment on the record. The assignment check
// runs against the patient's current assigned doctor at call time; a doctor
// who was reassigned away since their last read is refused here.
func (s *service) AddComment(ctx context.Context, actor policy.Actor, recordID uuid.UUID, req *model.AddCommentRequest) (*model.DoctorComment, error) {
	if !actor.IsDoctor() {
		return nil, apperrors.PermissionDenied(fmt.Errorf("only doctors can add comments"))
	}

	record, err := s.records.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	patient, err := s.patients.Get(ctx, record.PatientID)
	if err != nil {
		return nil, err
	}

	if !policy.CanComment(actor, record, patient) {
		return nil, apperrors.PermissionDenied(fmt.Errorf("doctor is not assigned to the record's patient"))
	}

	comment := &model.DoctorComment{
		ID:        uuid.New(),
		RecordID:  record.ID,
		DoctorID:  actor.Doctor.ID,
		Comment:   req.Comment,
		IsPrivate: req.IsPrivate,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Doctor = actor.Doctor

	return comment, nil
}

// mutableRecord loads a record for update/delete. Mutation is owner-only:
// non-patients are refused outright, and a patient asking for a record they
// do not own gets NotFound rather than confirmation it exists.
func (s *service) mutableRecord(ctx context.Context, actor policy.Actor, id uuid.UUID) (*model.HealthRecord, error) {
	if !actor.IsPatient() {
		return nil, apperrors.PermissionDenied(fmt.Errorf("only patients can modify health records"))
	}

	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateRecord(actor, record) {
		return nil, apperrors.NotFound("health record", nil)
	}
	return record, nil
}

func (s *service) notifyAssignedDoctor(ctx context.Context, actor policy.Actor, record *model.HealthRecord) {
	doctor, err := s.doctors.Get(ctx, *actor.Patient.AssignedDoctorID)
	if err != nil {
		s.logger.Error(err, "failed to resolve assigned doctor for notification",
			"record_id", record.ID.String())
		return
	}

	if err := s.dispatcher.Enqueue(ctx,
		model.NotificationNewRecord,
		doctor.AccountID,
		"New Health Record",
		fmt.Sprintf("%s has created a new health record: %s", actor.Account.FullName(), record.Title),
	); err != nil {
		s.logger.Error(err, "failed to enqueue new record notification",
			"record_id", record.ID.String())
	}
}

func (s *service) attachAuthors(ctx context.Context, comments []*model.DoctorComment) {
	for _, comment := range comments {
		doctor, err := s.doctors.Get(ctx, comment.DoctorID)
		if err != nil {
			continue
		}
		comment.Doctor = doctor
	}
}
