// Package handlers provides the built-in consumers of the audit channel: a
// trail recorder that keeps an idempotent record of processed events and a
// forwarder that feeds the analytics copy.
package handlers

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sih-ehealth/event-backbone/events"
)

// TrailRecorder accumulates processed events keyed by eventId. Redelivered
// records are recognized and dropped, so the trail stays exactly-once even
// though the channel only guarantees at-least-once delivery.
type TrailRecorder struct {
	logger *zap.Logger

	mu   sync.RWMutex
	seen map[string]events.DomainEvent
	ids  []string
}

// NewTrailRecorder creates an empty recorder.
func NewTrailRecorder(logger *zap.Logger) *TrailRecorder {
	return &TrailRecorder{
		logger: logger.Named("trail_recorder"),
		seen:   make(map[string]events.DomainEvent),
	}
}

// Handle records one event. It satisfies events.Handler and never fails:
// duplicates are silently dropped.
func (r *TrailRecorder) Handle(ctx context.Context, event events.DomainEvent) error {
	env := event.Meta()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[env.EventID]; ok {
		r.logger.Debug("duplicate delivery ignored",
			zap.String("event_id", env.EventID),
			zap.String("event_type", string(env.EventType)))
		return nil
	}
	r.seen[env.EventID] = event
	r.ids = append(r.ids, env.EventID)

	r.logger.Info("event recorded in trail",
		zap.String("event_id", env.EventID),
		zap.String("event_type", string(env.EventType)),
		zap.String("hospital_id", env.HospitalID))
	return nil
}

// Seen reports whether an event with the given id was recorded.
func (r *TrailRecorder) Seen(eventID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.seen[eventID]
	return ok
}

// Events returns the recorded events in arrival order.
func (r *TrailRecorder) Events() []events.DomainEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]events.DomainEvent, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.seen[id])
	}
	return out
}

// Len returns the number of distinct events recorded.
func (r *TrailRecorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}
