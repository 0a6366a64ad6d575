package events

import "time"

// Clinical events: prescriptions, lab results and imaging results.
// PrescriptionCreated goes through the critical path; result events are
// typically published as non-critical notifications.

// Prescription priorities.
const (
	PrescriptionRoutine = "ROUTINE"
	PrescriptionUrgent  = "URGENT"
	PrescriptionStat    = "STAT"
)

// Imaging report statuses.
const (
	ReportPreliminary = "PRELIMINARY"
	ReportFinal       = "FINAL"
)

// PrescriptionCreatedEvent records a new medication order.
type PrescriptionCreatedEvent struct {
	Envelope

	PrescriptionID         string    `json:"prescriptionId,omitempty"`
	PatientID              string    `json:"patientId,omitempty"`
	PrescribingPhysicianID string    `json:"prescribingPhysicianId,omitempty"`
	MedicationCode         string    `json:"medicationCode,omitempty"`
	MedicationName         string    `json:"medicationName,omitempty"`
	Dosage                 string    `json:"dosage,omitempty"`
	Frequency              string    `json:"frequency,omitempty"`
	Route                  string    `json:"route,omitempty"`
	StartDate              time.Time `json:"startDate,omitzero"`
	EndDate                time.Time `json:"endDate,omitzero"`
	Quantity               int       `json:"quantity,omitempty"`
	Refills                int       `json:"refills,omitempty"`
	Indication             string    `json:"indication,omitempty"`
	Contraindications      []string  `json:"contraindications,omitempty"`
	Priority               string    `json:"priority,omitempty"`
	Notes                  string    `json:"notes,omitempty"`
}

func (*PrescriptionCreatedEvent) Kind() EventType { return PrescriptionCreated }

// NewPrescriptionCreated builds a prescription event with a fresh envelope.
func NewPrescriptionCreated(prescriptionID, patientID, medicationCode string) *PrescriptionCreatedEvent {
	return &PrescriptionCreatedEvent{
		Envelope:       newEnvelope(PrescriptionCreated),
		PrescriptionID: prescriptionID,
		PatientID:      patientID,
		MedicationCode: medicationCode,
	}
}

// LabResultReadyEvent records an available laboratory result.
type LabResultReadyEvent struct {
	Envelope

	LabOrderID     string    `json:"labOrderId,omitempty"`
	PatientID      string    `json:"patientId,omitempty"`
	TestCode       string    `json:"testCode,omitempty"`
	TestName       string    `json:"testName,omitempty"`
	Result         string    `json:"result,omitempty"`
	ResultUnit     string    `json:"resultUnit,omitempty"`
	ReferenceRange string    `json:"referenceRange,omitempty"`
	Abnormal       bool      `json:"abnormal,omitempty"`
	ResultDate     time.Time `json:"resultDate,omitzero"`
	LabID          string    `json:"labId,omitempty"`
	TechnicianID   string    `json:"technicianId,omitempty"`
}

func (*LabResultReadyEvent) Kind() EventType { return LabResultReady }

// NewLabResultReady builds a lab result event with a fresh envelope.
func NewLabResultReady(labOrderID, patientID, testCode string) *LabResultReadyEvent {
	return &LabResultReadyEvent{
		Envelope:   newEnvelope(LabResultReady),
		LabOrderID: labOrderID,
		PatientID:  patientID,
		TestCode:   testCode,
	}
}

// ImageResultReadyEvent records an available imaging study result.
type ImageResultReadyEvent struct {
	Envelope

	ImageOrderID     string    `json:"imageOrderId,omitempty"`
	PatientID        string    `json:"patientId,omitempty"`
	ModalityCode     string    `json:"modalityCode,omitempty"`
	ModalityName     string    `json:"modalityName,omitempty"`
	BodyPartExamined string    `json:"bodyPartExamined,omitempty"`
	StudyDate        time.Time `json:"studyDate,omitzero"`
	ImageCount       int       `json:"imageCount,omitempty"`
	DicomStudyID     string    `json:"dicomStudyId,omitempty"`
	RadiologistID    string    `json:"radiologistId,omitempty"`
	ReportStatus     string    `json:"reportStatus,omitempty"`
	ReportURL        string    `json:"reportUrl,omitempty"`
}

func (*ImageResultReadyEvent) Kind() EventType { return ImageResultReady }

// NewImageResultReady builds an imaging result event with a fresh envelope.
func NewImageResultReady(imageOrderID, patientID, modalityCode string) *ImageResultReadyEvent {
	return &ImageResultReadyEvent{
		Envelope:     newEnvelope(ImageResultReady),
		ImageOrderID: imageOrderID,
		PatientID:    patientID,
		ModalityCode: modalityCode,
	}
}
