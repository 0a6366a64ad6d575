package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeStampsDiscriminator(t *testing.T) {
	event := &PatientAdmittedEvent{PatientID: "p1"}
	require.Empty(t, event.EventType)

	data, err := Encode(event)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, string(PatientAdmitted), raw["eventType"])
	assert.Equal(t, PatientAdmitted, event.EventType)
}

func TestDecodeRoundTrip(t *testing.T) {
	admitted := NewPatientAdmitted("p1", "Jean", "Martin")
	admitted.HospitalID = "h1"
	admitted.DepartmentID = "cardio"
	admitted.AdmissionType = AdmissionEmergency
	admitted.AdmissionDate = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	admitted.DiagnosisCodes = []string{"I21.0"}

	data, err := Encode(admitted)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	got, ok := decoded.(*PatientAdmittedEvent)
	require.True(t, ok, "expected *PatientAdmittedEvent, got %T", decoded)
	assert.Equal(t, admitted.EventID, got.EventID)
	assert.Equal(t, "p1", got.PatientID)
	assert.Equal(t, "cardio", got.DepartmentID)
	assert.Equal(t, AdmissionEmergency, got.AdmissionType)
	assert.Equal(t, []string{"I21.0"}, got.DiagnosisCodes)
	assert.True(t, admitted.AdmissionDate.Equal(got.AdmissionDate))
}

func TestDecodeSelectsVariantByDiscriminator(t *testing.T) {
	cases := []struct {
		event DomainEvent
		want  any
	}{
		{NewPatientTransferred("p1", "d1", "d2"), &PatientTransferredEvent{}},
		{NewPatientDischarged("p1", DischargeNormal), &PatientDischargedEvent{}},
		{NewPrescriptionCreated("rx1", "p1", "N02BE01"), &PrescriptionCreatedEvent{}},
		{NewLabResultReady("lab1", "p1", "CBC"), &LabResultReadyEvent{}},
		{NewImageResultReady("img1", "p1", "CT"), &ImageResultReadyEvent{}},
	}
	for _, tc := range cases {
		data, err := Encode(tc.event)
		require.NoError(t, err)

		decoded, err := Decode(data)
		require.NoError(t, err)
		assert.IsType(t, tc.want, decoded)
		assert.Equal(t, tc.event.Meta().EventID, decoded.Meta().EventID)
	}
}

func TestDecodeMetadataSurvives(t *testing.T) {
	event := NewLabResultReady("lab1", "p1", "CBC")
	event.Metadata = NewMetadata()
	event.Metadata.SetCustom("traceId", "4bf92f3577b34da6a3ce929d0e0e4736")

	data, err := Encode(event)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	meta := decoded.Meta().Metadata
	require.NotNil(t, meta)
	assert.Equal(t, PriorityMedium, meta.Priority)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", meta.CustomProperties["traceId"])
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"eventType":"PATIENT_CLONED","eventId":"x"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PATIENT_CLONED")
}

func TestDecodeMalformedPayload(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	require.Error(t, err)

	_, err = Decode([]byte(`{"eventId":"x"}`))
	require.Error(t, err, "missing discriminator must not decode")
}
