package events

import "time"

// Patient lifecycle events. All of them are published through the critical
// path: the transactional queue write must succeed before the caller's
// business transaction may proceed.

// Admission types.
const (
	AdmissionEmergency = "EMERGENCY"
	AdmissionPlanned   = "PLANNED"
	AdmissionTransfer  = "TRANSFER"
)

// Discharge types.
const (
	DischargeNormal               = "NORMAL"
	DischargeAgainstMedicalAdvice = "AGAINST_MEDICAL_ADVICE"
	DischargeTransfer             = "TRANSFER"
	DischargeDeath                = "DEATH"
)

// PatientAdmittedEvent records an admission to a facility.
type PatientAdmittedEvent struct {
	Envelope

	PatientID            string    `json:"patientId,omitempty"`
	FirstName            string    `json:"firstName,omitempty"`
	LastName             string    `json:"lastName,omitempty"`
	DateOfBirth          string    `json:"dateOfBirth,omitempty"`
	AdmissionDate        time.Time `json:"admissionDate,omitzero"`
	DepartmentID         string    `json:"departmentId,omitempty"`
	DepartmentName       string    `json:"departmentName,omitempty"`
	BedNumber            string    `json:"bedNumber,omitempty"`
	AdmissionType        string    `json:"admissionType,omitempty"`
	DiagnosisCodes       []string  `json:"diagnosisCodes,omitempty"`
	AdmittingPhysicianID string    `json:"admittingPhysicianId,omitempty"`
	InsuranceID          string    `json:"insuranceId,omitempty"`
}

func (*PatientAdmittedEvent) Kind() EventType { return PatientAdmitted }

// NewPatientAdmitted builds a fully-typed admission event with a fresh
// envelope.
func NewPatientAdmitted(patientID, firstName, lastName string) *PatientAdmittedEvent {
	return &PatientAdmittedEvent{
		Envelope:  newEnvelope(PatientAdmitted),
		PatientID: patientID,
		FirstName: firstName,
		LastName:  lastName,
	}
}

// PatientTransferredEvent records a move between departments.
type PatientTransferredEvent struct {
	Envelope

	PatientID        string    `json:"patientId,omitempty"`
	FromDepartmentID string    `json:"fromDepartmentId,omitempty"`
	ToDepartmentID   string    `json:"toDepartmentId,omitempty"`
	FromBedNumber    string    `json:"fromBedNumber,omitempty"`
	ToBedNumber      string    `json:"toBedNumber,omitempty"`
	TransferReason   string    `json:"transferReason,omitempty"`
	TransferDate     time.Time `json:"transferDate,omitzero"`
}

func (*PatientTransferredEvent) Kind() EventType { return PatientTransferred }

// NewPatientTransferred builds a transfer event with a fresh envelope.
func NewPatientTransferred(patientID, fromDepartmentID, toDepartmentID string) *PatientTransferredEvent {
	return &PatientTransferredEvent{
		Envelope:         newEnvelope(PatientTransferred),
		PatientID:        patientID,
		FromDepartmentID: fromDepartmentID,
		ToDepartmentID:   toDepartmentID,
	}
}

// PatientDischargedEvent records the end of a stay.
type PatientDischargedEvent struct {
	Envelope

	PatientID              string    `json:"patientId,omitempty"`
	DischargeDate          time.Time `json:"dischargeDate,omitzero"`
	DischargeType          string    `json:"dischargeType,omitempty"`
	DischargeDestination   string    `json:"dischargeDestination,omitempty"`
	FinalDiagnosisCodes    []string  `json:"finalDiagnosisCodes,omitempty"`
	ProcedureCodes         []string  `json:"procedureCodes,omitempty"`
	DischargingPhysicianID string    `json:"dischargingPhysicianId,omitempty"`
	DischargeNotes         string    `json:"dischargeNotes,omitempty"`
}

func (*PatientDischargedEvent) Kind() EventType { return PatientDischarged }

// NewPatientDischarged builds a discharge event with a fresh envelope.
func NewPatientDischarged(patientID, dischargeType string) *PatientDischargedEvent {
	return &PatientDischargedEvent{
		Envelope:      newEnvelope(PatientDischarged),
		PatientID:     patientID,
		DischargeType: dischargeType,
	}
}
