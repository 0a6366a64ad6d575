package events

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// DefaultVersion is the schema version stamped on events that do not set one.
const DefaultVersion = "1.0"

// NewEventID generates a globally unique event identifier.
func NewEventID() string {
	return uuid.NewString()
}

// Encode serializes an event to its wire form. The eventType discriminator is
// stamped from the variant's tag if the envelope left it empty, so a
// heterogeneous stream always decodes without external metadata.
func Encode(event DomainEvent) ([]byte, error) {
	env := event.Meta()
	if env.EventType == "" {
		env.EventType = event.Kind()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", env.EventType, err)
	}
	return data, nil
}

// Decode deserializes a wire-form event into the variant selected by its
// eventType discriminator. Unknown discriminators are an error: the variant
// set is closed.
func Decode(data []byte) (DomainEvent, error) {
	var probe struct {
		EventType EventType `json:"eventType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to read event discriminator: %w", err)
	}

	var event DomainEvent
	switch probe.EventType {
	case PatientAdmitted:
		event = &PatientAdmittedEvent{}
	case PatientTransferred:
		event = &PatientTransferredEvent{}
	case PatientDischarged:
		event = &PatientDischargedEvent{}
	case PrescriptionCreated:
		event = &PrescriptionCreatedEvent{}
	case LabResultReady:
		event = &LabResultReadyEvent{}
	case ImageResultReady:
		event = &ImageResultReadyEvent{}
	default:
		return nil, fmt.Errorf("unknown event type %q", probe.EventType)
	}

	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s event: %w", probe.EventType, err)
	}
	return event, nil
}
