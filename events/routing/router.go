// Package routing maps event types to their transactional queue and durable
// audit topic. Routing is deterministic and total: every event type resolves
// to exactly one queue and one topic, and unmatched types fall back to the
// default destinations rather than being dropped.
package routing

import "github.com/sih-ehealth/event-backbone/events"

// Transactional queue names, one per clinical action.
const (
	QueuePatientAdmitted     = "patient.admitted"
	QueuePatientTransferred  = "patient.transferred"
	QueuePatientDischarged   = "patient.discharged"
	QueuePrescriptionCreated = "prescription.created"
	QueueLabResultReady      = "lab.result.ready"
	QueueImageResultReady    = "image.result.ready"
	QueueDefault             = "events.default"
)

// Durable audit topics, grouped by domain, plus the longer-retention
// analytics copy fed by a downstream subscriber of the audit topics.
const (
	TopicPatientEvents        = "audit.patient-events"
	TopicClinicalEvents       = "audit.clinical-events"
	TopicAdministrativeEvents = "audit.administrative-events"
	TopicAnalyticsEvents      = "analytics.events"
)

// QueueFor resolves the transactional queue for an event type.
func QueueFor(t events.EventType) string {
	switch t {
	case events.PatientAdmitted:
		return QueuePatientAdmitted
	case events.PatientTransferred:
		return QueuePatientTransferred
	case events.PatientDischarged:
		return QueuePatientDischarged
	case events.PrescriptionCreated:
		return QueuePrescriptionCreated
	case events.LabResultReady:
		return QueueLabResultReady
	case events.ImageResultReady:
		return QueueImageResultReady
	default:
		return QueueDefault
	}
}

// TopicFor resolves the durable audit topic for an event type.
func TopicFor(t events.EventType) string {
	switch t {
	case events.PatientAdmitted, events.PatientTransferred, events.PatientDischarged:
		return TopicPatientEvents
	case events.PrescriptionCreated, events.LabResultReady, events.ImageResultReady:
		return TopicClinicalEvents
	default:
		return TopicAdministrativeEvents
	}
}

// Route resolves both destinations at once.
func Route(t events.EventType) (queue, topic string) {
	return QueueFor(t), TopicFor(t)
}

// Queues returns every transactional queue name, including the default.
func Queues() []string {
	return []string{
		QueuePatientAdmitted,
		QueuePatientTransferred,
		QueuePatientDischarged,
		QueuePrescriptionCreated,
		QueueLabResultReady,
		QueueImageResultReady,
		QueueDefault,
	}
}

// AuditTopics returns the audit topic names, excluding analytics.
func AuditTopics() []string {
	return []string{
		TopicPatientEvents,
		TopicClinicalEvents,
		TopicAdministrativeEvents,
	}
}
