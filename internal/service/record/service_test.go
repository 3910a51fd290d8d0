package record

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/policy"
	apperrors "github.com/healthrec/record-api/pkg/errors"
	"github.com/healthrec/record-api/pkg/logger"
)

type fakeRecordRepo struct {
	records map[uuid.UUID]*model.HealthRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[uuid.UUID]*model.HealthRecord)}
}

func (f *fakeRecordRepo) Create(_ context.Context, record *model.HealthRecord) error {
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	f.records[record.ID] = record
	return nil
}

func (f *fakeRecordRepo) Get(_ context.Context, id uuid.UUID) (*model.HealthRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, apperrors.NotFound("health record", nil)
	}
	copied := *record
	return &copied, nil
}

func (f *fakeRecordRepo) Update(_ context.Context, record *model.HealthRecord) error {
	if _, ok := f.records[record.ID]; !ok {
		return apperrors.NotFound("health record", nil)
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeRecordRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.records[id]; !ok {
		return apperrors.NotFound("health record", nil)
	}
	delete(f.records, id)
	return nil
}

func (f *fakeRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.HealthRecord, error) {
	var out []*model.HealthRecord
	for _, r := range f.records {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) ListByAssignedDoctor(_ context.Context, _ uuid.UUID) ([]*model.HealthRecord, error) {
	return nil, nil
}

type fakeCommentRepo struct {
	comments []*model.DoctorComment
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *model.DoctorComment) error {
	comment.CreatedAt = time.Now()
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeCommentRepo) ListByRecord(_ context.Context, recordID uuid.UUID, includePrivate bool) ([]*model.DoctorComment, error) {
	var out []*model.DoctorComment
	for _, c := range f.comments {
		if c.RecordID != recordID {
			continue
		}
		if c.IsPrivate && !includePrivate {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.PatientProfile
}

func (f *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.PatientProfile, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient profile", nil)
	}
	return p, nil
}

func (f *fakePatientRepo) GetByAccount(_ context.Context, accountID uuid.UUID) (*model.PatientProfile, error) {
	for _, p := range f.patients {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("patient profile", nil)
}

func (f *fakePatientRepo) Update(_ context.Context, _ *model.PatientProfile) error { return nil }

func (f *fakePatientRepo) UpdateAssignment(_ context.Context, patientID uuid.UUID, doctorID *uuid.UUID) error {
	p, ok := f.patients[patientID]
	if !ok {
		return apperrors.NotFound("patient profile", nil)
	}
	p.AssignedDoctorID = doctorID
	return nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.DoctorProfile
}

func (f *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.DoctorProfile, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor profile", nil)
	}
	return d, nil
}

func (f *fakeDoctorRepo) GetByAccount(_ context.Context, _ uuid.UUID) (*model.DoctorProfile, error) {
	return nil, apperrors.NotFound("doctor profile", nil)
}

func (f *fakeDoctorRepo) List(_ context.Context) ([]*model.DoctorProfile, error) { return nil, nil }

func (f *fakeDoctorRepo) Update(_ context.Context, _ *model.DoctorProfile) error { return nil }

func (f *fakeDoctorRepo) ListPatients(_ context.Context, _ uuid.UUID) ([]*model.PatientSummary, error) {
	return nil, nil
}

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*model.Account
}

func (f *fakeAccountRepo) CreatePatient(_ context.Context, _ *model.Account, _ *model.PatientProfile) error {
	return nil
}

func (f *fakeAccountRepo) CreateDoctor(_ context.Context, _ *model.Account, _ *model.DoctorProfile) error {
	return nil
}

func (f *fakeAccountRepo) Get(_ context.Context, id uuid.UUID) (*model.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, apperrors.NotFound("account", nil)
	}
	return a, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, _ string) (*model.Account, error) {
	return nil, apperrors.NotFound("account", nil)
}

func (f *fakeAccountRepo) Update(_ context.Context, _ *model.Account) error { return nil }

type enqueuedEvent struct {
	kind        model.NotificationType
	recipientID uuid.UUID
	title       string
	message     string
}

type fakeDispatcher struct {
	enqueued []enqueuedEvent
}

func (f *fakeDispatcher) Enqueue(_ context.Context, kind model.NotificationType, recipientID uuid.UUID, title, message string) error {
	f.enqueued = append(f.enqueued, enqueuedEvent{kind, recipientID, title, message})
	return nil
}

type fixture struct {
	svc        Service
	records    *fakeRecordRepo
	comments   *fakeCommentRepo
	patients   *fakePatientRepo
	doctors    *fakeDoctorRepo
	dispatcher *fakeDispatcher

	patientActor policy.Actor
	doctorActor  policy.Actor
}

// newFixture seeds a patient and a doctor; assign links the doctor to the
// patient.
func newFixture(t *testing.T, assign bool) *fixture {
	t.Helper()

	patientAccount := &model.Account{ID: uuid.New(), Role: model.RolePatient, FirstName: "Alice", LastName: "Smith"}
	doctorAccount := &model.Account{ID: uuid.New(), Role: model.RoleDoctor, FirstName: "Bob", LastName: "Jones"}

	patientProfile := &model.PatientProfile{ID: uuid.New(), AccountID: patientAccount.ID}
	doctorProfile := &model.DoctorProfile{ID: uuid.New(), AccountID: doctorAccount.ID}
	if assign {
		patientProfile.AssignedDoctorID = &doctorProfile.ID
	}

	records := newFakeRecordRepo()
	comments := &fakeCommentRepo{}
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.PatientProfile{patientProfile.ID: patientProfile}}
	doctors := &fakeDoctorRepo{doctors: map[uuid.UUID]*model.DoctorProfile{doctorProfile.ID: doctorProfile}}
	accounts := &fakeAccountRepo{accounts: map[uuid.UUID]*model.Account{
		patientAccount.ID: patientAccount,
		doctorAccount.ID:  doctorAccount,
	}}
	dispatcher := &fakeDispatcher{}

	svc := NewService(records, comments, patients, doctors, accounts, dispatcher, logger.NewLogger(nil))

	return &fixture{
		svc:          svc,
		records:      records,
		comments:     comments,
		patients:     patients,
		doctors:      doctors,
		dispatcher:   dispatcher,
		patientActor: policy.Actor{Account: patientAccount, Patient: patientProfile},
		doctorActor:  policy.Actor{Account: doctorAccount, Doctor: doctorProfile},
	}
}

func createRequest() *model.CreateRecordRequest {
	return &model.CreateRecordRequest{
		RecordType: model.RecordTypeCheckup,
		Title:      "Annual checkup",
		Symptoms:   "none",
		VisitDate:  time.Now(),
	}
}

func TestCreateRecordNotifiesAssignedDoctor(t *testing.T) {
	f := newFixture(t, true)

	record, err := f.svc.Create(context.Background(), f.patientActor, createRequest())
	require.NoError(t, err)
	assert.Equal(t, f.patientActor.Patient.ID, record.PatientID)
	assert.Equal(t, f.patientActor.Account.ID, record.CreatedBy)

	require.Len(t, f.dispatcher.enqueued, 1)
	event := f.dispatcher.enqueued[0]
	assert.Equal(t, model.NotificationNewRecord, event.kind)
	assert.Equal(t, f.doctorActor.Account.ID, event.recipientID)
	assert.Equal(t, "Alice Smith has created a new health record: Annual checkup", event.message)
}

func TestCreateRecordWithoutAssignedDoctor(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.Create(context.Background(), f.patientActor, createRequest())
	require.NoError(t, err)
	assert.Empty(t, f.dispatcher.enqueued)
}

func TestCreateRecordRefusesDoctor(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.svc.Create(context.Background(), f.doctorActor, createRequest())
	assert.True(t, apperrors.IsPermissionDenied(err))
}

func TestGetRecordVisibility(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	record, err := f.svc.Create(ctx, f.patientActor, createRequest())
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, f.patientActor, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)

	_, err = f.svc.Get(ctx, f.doctorActor, record.ID)
	require.NoError(t, err)

	// A stranger gets NotFound, not Forbidden.
	stranger := policy.Actor{
		Account: &model.Account{ID: uuid.New(), Role: model.RolePatient},
		Patient: &model.PatientProfile{ID: uuid.New()},
	}
	f.patients.patients[stranger.Patient.ID] = stranger.Patient
	_, err = f.svc.Get(ctx, stranger, record.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetRecordFiltersPrivateComments(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	record, err := f.svc.Create(ctx, f.patientActor, createRequest())
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, f.doctorActor, record.ID, &model.AddCommentRequest{Comment: "public note"})
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, f.doctorActor, record.ID, &model.AddCommentRequest{Comment: "private note", IsPrivate: true})
	require.NoError(t, err)

	asPatient, err := f.svc.Get(ctx, f.patientActor, record.ID)
	require.NoError(t, err)
	require.Len(t, asPatient.Comments, 1)
	assert.Equal(t, "public note", asPatient.Comments[0].Comment)

	asDoctor, err := f.svc.Get(ctx, f.doctorActor, record.ID)
	require.NoError(t, err)
	assert.Len(t, asDoctor.Comments, 2)
}

func TestUpdateRecordOwnerOnly(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	record, err := f.svc.Create(ctx, f.patientActor, createRequest())
	require.NoError(t, err)

	title := "Updated title"
	updated, err := f.svc.Update(ctx, f.patientActor, record.ID, &model.UpdateRecordRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Updated title", updated.Title)
	assert.Equal(t, record.RecordType, updated.RecordType)

	// The assigned doctor reads but never writes.
	_, err = f.svc.Update(ctx, f.doctorActor, record.ID, &model.UpdateRecordRequest{Title: &title})
	assert.True(t, apperrors.IsPermissionDenied(err))

	// A foreign patient cannot learn the record exists.
	stranger := policy.Actor{
		Account: &model.Account{ID: uuid.New(), Role: model.RolePatient},
		Patient: &model.PatientProfile{ID: uuid.New()},
	}
	_, err = f.svc.Update(ctx, stranger, record.ID, &model.UpdateRecordRequest{Title: &title})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteRecord(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	record, err := f.svc.Create(ctx, f.patientActor, createRequest())
	require.NoError(t, err)

	assert.True(t, apperrors.IsPermissionDenied(f.svc.Delete(ctx, f.doctorActor, record.ID)))
	require.NoError(t, f.svc.Delete(ctx, f.patientActor, record.ID))

	_, err = f.svc.Get(ctx, f.patientActor, record.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAddCommentRequiresCurrentAssignment(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	record, err := f.svc.Create(ctx, f.patientActor, createRequest())
	require.NoError(t, err)

	comment, err := f.svc.AddComment(ctx, f.doctorActor, record.ID, &model.AddCommentRequest{Comment: "looks fine"})
	require.NoError(t, err)
	assert.Equal(t, f.doctorActor.Doctor.ID, comment.DoctorID)

	// Comment creation itself never enqueues a notification.
	assert.Empty(t, f.dispatcher.enqueued[1:])

	// Reassigned away: the same doctor is refused at call time.
	otherDoctorID := uuid.New()
	f.patientActor.Patient.AssignedDoctorID = &otherDoctorID
	_, err = f.svc.AddComment(ctx, f.doctorActor, record.ID, &model.AddCommentRequest{Comment: "too late"})
	assert.True(t, apperrors.IsPermissionDenied(err))

	// Patients never comment.
	_, err = f.svc.AddComment(ctx, f.patientActor, record.ID, &model.AddCommentRequest{Comment: "my own note"})
	assert.True(t, apperrors.IsPermissionDenied(err))
}

func TestListRecords(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.patientActor, createRequest())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.patientActor, createRequest())
	require.NoError(t, err)

	records, err := f.svc.List(ctx, f.patientActor)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// An actor with no role profile sees an empty list, not an error.
	records, err = f.svc.List(ctx, policy.Actor{})
	require.NoError(t, err)
	assert.Empty(t, records)
}
