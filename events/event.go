package events

import (
	"context"
	"time"
)

// EventType is the discriminator tag carried in the "eventType" field of every
// serialized event. The set of types is closed: routing tables switch over it
// with an explicit default branch.
type EventType string

const (
	// PatientAdmitted - a patient was admitted to a facility.
	PatientAdmitted EventType = "PATIENT_ADMITTED"
	// PatientTransferred - a patient was moved between departments.
	PatientTransferred EventType = "PATIENT_TRANSFERRED"
	// PatientDischarged - a patient left the facility.
	PatientDischarged EventType = "PATIENT_DISCHARGED"
	// PrescriptionCreated - a medication order was written.
	PrescriptionCreated EventType = "PRESCRIPTION_CREATED"
	// LabResultReady - a laboratory result became available.
	LabResultReady EventType = "LAB_RESULT_READY"
	// ImageResultReady - an imaging study result became available.
	ImageResultReady EventType = "IMAGE_RESULT_READY"
)

// Types returns every known event type.
func Types() []EventType {
	return []EventType{
		PatientAdmitted,
		PatientTransferred,
		PatientDischarged,
		PrescriptionCreated,
		LabResultReady,
		ImageResultReady,
	}
}

// Event metadata priorities.
const (
	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)

// Metadata carries cross-cutting audit fields attached to an envelope.
type Metadata struct {
	IPAddress        string         `json:"ipAddress,omitempty"`
	UserAgent        string         `json:"userAgent,omitempty"`
	SessionID        string         `json:"sessionId,omitempty"`
	TenantID         string         `json:"tenantId,omitempty"`
	Environment      string         `json:"environment,omitempty"`
	APIVersion       string         `json:"apiVersion,omitempty"`
	ChangeReason     string         `json:"changeReason,omitempty"`
	Priority         string         `json:"priority,omitempty"`
	CustomProperties map[string]any `json:"customProperties,omitempty"`
}

// NewMetadata returns metadata with the default MEDIUM priority.
func NewMetadata() *Metadata {
	return &Metadata{Priority: PriorityMedium}
}

// SetCustom records an arbitrary key/value pair on the metadata.
func (m *Metadata) SetCustom(key string, value any) {
	if m.CustomProperties == nil {
		m.CustomProperties = make(map[string]any)
	}
	m.CustomProperties[key] = value
}

// Envelope is the common header shared by all event variants. Variants embed
// it so the fields flatten into the JSON object next to the payload fields.
type Envelope struct {
	EventID       string    `json:"eventId,omitempty"`
	EventType     EventType `json:"eventType,omitempty"`
	Timestamp     time.Time `json:"timestamp,omitzero"`
	ActorID       string    `json:"actorId,omitempty"`
	ActorRole     string    `json:"actorRole,omitempty"`
	Source        string    `json:"source,omitempty"`
	HospitalID    string    `json:"hospitalId,omitempty"`
	Version       string    `json:"version,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Metadata      *Metadata `json:"metadata,omitempty"`
}

// Meta exposes the envelope for enrichment by the publisher.
func (e *Envelope) Meta() *Envelope { return e }

// PartitionKey is the durable-log partition key: hospitalId joined with
// eventId when a hospital scope is present, the eventId alone otherwise.
// Because eventId is unique per event, same-patient events may land on
// different partitions; see DESIGN.md for the ordering caveat.
func (e *Envelope) PartitionKey() string {
	if e.HospitalID != "" {
		return e.HospitalID + "-" + e.EventID
	}
	return e.EventID
}

// DomainEvent is implemented by every variant in the closed event set.
// Variants are immutable value records once published; the envelope is only
// written by the publisher while filling defaults.
type DomainEvent interface {
	// Meta returns the shared envelope.
	Meta() *Envelope
	// Kind returns the designated discriminator tag for the variant.
	Kind() EventType
}

// Handler processes one delivered event. Returning an error withholds the
// acknowledgment or offset commit so the broker redelivers; handlers must
// therefore be safe to run more than once per event, using eventId as the
// dedupe key.
type Handler func(ctx context.Context, event DomainEvent) error

func newEnvelope(kind EventType) Envelope {
	return Envelope{
		EventID:   NewEventID(),
		EventType: kind,
		Timestamp: time.Now().UTC(),
		Version:   DefaultVersion,
	}
}
