package publisher

import (
	"fmt"

	"github.com/sih-ehealth/event-backbone/events"
)

// PublicationError reports a failed critical publication. Callers must treat
// it as a rollback signal for the originating business transaction.
type PublicationError struct {
	EventID   string
	EventType events.EventType
	Queue     string
	Err       error
}

func (e *PublicationError) Error() string {
	if e.Queue != "" {
		return fmt.Sprintf("failed to publish %s event %s to queue %s: %v", e.EventType, e.EventID, e.Queue, e.Err)
	}
	return fmt.Sprintf("failed to publish %s event %s: %v", e.EventType, e.EventID, e.Err)
}

func (e *PublicationError) Unwrap() error { return e.Err }
