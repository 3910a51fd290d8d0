// Package policy holds the pure allow/deny predicates gating record and
// comment access. Predicates take fully loaded entities and never touch the
// store, so every check reflects the assignment state the caller fetched for
// this request; nothing is cached across requests.
package policy

import (
	"github.com/healthrec/record-api/internal/model"
)

// Actor is the authenticated account plus whichever role profile it owns.
// Exactly one of Patient/Doctor is non-nil for a well-formed actor.
type Actor struct {
	Account *model.Account
	Patient *model.PatientProfile
	Doctor  *model.DoctorProfile
}

func (a Actor) IsPatient() bool {
	return a.Account != nil && a.Account.Role == model.RolePatient && a.Patient != nil
}

func (a Actor) IsDoctor() bool {
	return a.Account != nil && a.Account.Role == model.RoleDoctor && a.Doctor != nil
}

func (a Actor) IsAdmin() bool {
	return a.Account != nil && a.Account.IsAdmin
}

// CanAccessRecord reports whether the actor may read the record: the owning
// patient, or the doctor currently assigned to the record's patient. Access
// is broader than mutation on purpose; an assigned doctor reads but never
// writes a patient's record.
func CanAccessRecord(actor Actor, record *model.HealthRecord, patient *model.PatientProfile) bool {
	if record == nil || patient == nil || record.PatientID != patient.ID {
		return false
	}
	if actor.IsPatient() {
		return actor.Patient.ID == patient.ID
	}
	if actor.IsDoctor() {
		return patient.AssignedDoctorID != nil && *patient.AssignedDoctorID == actor.Doctor.ID
	}
	return false
}

// CanMutateRecord reports whether the actor may update or delete the record.
// Only the owning patient ever may, checked against the stored patient
// reference rather than the record's created_by.
func CanMutateRecord(actor Actor, record *model.HealthRecord) bool {
	if record == nil || !actor.IsPatient() {
		return false
	}
	return actor.Patient.ID == record.PatientID
}

// CanComment reports whether the actor may comment on the record: a doctor,
// and specifically the one assigned to the record's patient right now.
func CanComment(actor Actor, record *model.HealthRecord, patient *model.PatientProfile) bool {
	if record == nil || patient == nil || record.PatientID != patient.ID {
		return false
	}
	if !actor.IsDoctor() {
		return false
	}
	return patient.AssignedDoctorID != nil && *patient.AssignedDoctorID == actor.Doctor.ID
}

// CanAssign reports whether the actor may change a patient's doctor
// assignment: any doctor, or an administrator account.
func CanAssign(actor Actor) bool {
	return actor.IsDoctor() || actor.IsAdmin()
}
