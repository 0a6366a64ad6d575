package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/sih-ehealth/event-backbone/events"
	"github.com/sih-ehealth/event-backbone/events/routing"
)

// AnalyticsSender appends a serialized event to an analytics topic under the
// given partition key. The audit Producer satisfies it.
type AnalyticsSender interface {
	Send(ctx context.Context, topic, key string, payload []byte) error
}

// AnalyticsForwarder re-publishes every audit record to the longer-retention
// analytics topic. It is registered as the default handler of the audit
// consumer group so every event type flows through. A forwarding failure is
// returned so the source offset stays uncommitted and the record is retried.
type AnalyticsForwarder struct {
	sender AnalyticsSender
	logger *zap.Logger
}

// NewAnalyticsForwarder creates a forwarder writing through the given sender.
func NewAnalyticsForwarder(sender AnalyticsSender, logger *zap.Logger) *AnalyticsForwarder {
	return &AnalyticsForwarder{
		sender: sender,
		logger: logger.Named("analytics_forwarder"),
	}
}

// Handle forwards one event. It satisfies events.Handler.
func (f *AnalyticsForwarder) Handle(ctx context.Context, event events.DomainEvent) error {
	env := event.Meta()

	payload, err := events.Encode(event)
	if err != nil {
		// Re-encoding a decoded event cannot recover by retrying.
		f.logger.Error("failed to encode event for analytics, dropping",
			zap.String("event_id", env.EventID),
			zap.String("event_type", string(env.EventType)),
			zap.Error(err))
		return nil
	}

	if err := f.sender.Send(ctx, routing.TopicAnalyticsEvents, env.PartitionKey(), payload); err != nil {
		f.logger.Error("failed to forward event to analytics",
			zap.String("event_id", env.EventID),
			zap.String("event_type", string(env.EventType)),
			zap.Error(err))
		return err
	}

	f.logger.Debug("event forwarded to analytics",
		zap.String("event_id", env.EventID),
		zap.String("event_type", string(env.EventType)))
	return nil
}
