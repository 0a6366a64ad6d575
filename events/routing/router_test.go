package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sih-ehealth/event-backbone/events"
)

func TestQueueForCoversEveryType(t *testing.T) {
	want := map[events.EventType]string{
		events.PatientAdmitted:     QueuePatientAdmitted,
		events.PatientTransferred:  QueuePatientTransferred,
		events.PatientDischarged:   QueuePatientDischarged,
		events.PrescriptionCreated: QueuePrescriptionCreated,
		events.LabResultReady:      QueueLabResultReady,
		events.ImageResultReady:    QueueImageResultReady,
	}
	for _, eventType := range events.Types() {
		assert.Equal(t, want[eventType], QueueFor(eventType))
	}
}

func TestTopicForGroupsByDomain(t *testing.T) {
	assert.Equal(t, TopicPatientEvents, TopicFor(events.PatientAdmitted))
	assert.Equal(t, TopicPatientEvents, TopicFor(events.PatientTransferred))
	assert.Equal(t, TopicPatientEvents, TopicFor(events.PatientDischarged))
	assert.Equal(t, TopicClinicalEvents, TopicFor(events.PrescriptionCreated))
	assert.Equal(t, TopicClinicalEvents, TopicFor(events.LabResultReady))
	assert.Equal(t, TopicClinicalEvents, TopicFor(events.ImageResultReady))
}

func TestUnmatchedTypeFallsBack(t *testing.T) {
	unknown := events.EventType("STAFF_ROTATED")
	assert.Equal(t, QueueDefault, QueueFor(unknown))
	assert.Equal(t, TopicAdministrativeEvents, TopicFor(unknown))

	queue, topic := Route(unknown)
	assert.Equal(t, QueueDefault, queue)
	assert.Equal(t, TopicAdministrativeEvents, topic)
}

func TestDestinationLists(t *testing.T) {
	queues := Queues()
	assert.Len(t, queues, 7)
	assert.Contains(t, queues, QueueDefault)

	topics := AuditTopics()
	assert.Len(t, topics, 3)
	assert.NotContains(t, topics, TopicAnalyticsEvents)
}
