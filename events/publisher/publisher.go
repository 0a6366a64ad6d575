// Package publisher orchestrates the dual-channel write per event: a
// synchronous, transaction-gating write to the queue channel followed by a
// best-effort write of the same event to the durable audit log. The dual
// write is a deliberate consistency trade-off: the audit trail may miss an
// event the queue delivered, never the reverse for critical events, because
// the queue write happens first and gates the audit write.
package publisher

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sih-ehealth/event-backbone/events"
	"github.com/sih-ehealth/event-backbone/events/routing"
	"github.com/sih-ehealth/event-backbone/internal/metrics"
)

// QueueSender writes a serialized event to a named transactional queue. Send
// must block until the broker has acknowledged the write.
type QueueSender interface {
	Send(ctx context.Context, queue string, payload []byte) error
}

// AuditSender appends a serialized event to a durable audit topic under the
// given partition key.
type AuditSender interface {
	Send(ctx context.Context, topic, key string, payload []byte) error
}

const auditWriteTimeout = 10 * time.Second

// Publisher fills envelope defaults, resolves destinations and performs the
// dual write. Construct one per process and pass it by handle; it is safe
// for concurrent use.
type Publisher struct {
	queue  QueueSender
	audit  AuditSender
	logger *zap.Logger
	source string

	auditWG sync.WaitGroup
}

// New creates a Publisher. source is the originating service name stamped on
// events that do not set one.
func New(queue QueueSender, audit AuditSender, logger *zap.Logger, source string) *Publisher {
	return &Publisher{
		queue:  queue,
		audit:  audit,
		logger: logger.Named("event_publisher"),
		source: source,
	}
}

// PublishCritical publishes an event requiring all-or-nothing guarantees:
// admissions, transfers, discharges, prescriptions. The queue write is
// synchronous and any failure is returned as a *PublicationError the caller
// must treat as a rollback signal. Only after a successful queue write is the
// event appended to the audit topic, best-effort: an audit failure is logged
// and swallowed, never surfaced.
func (p *Publisher) PublishCritical(ctx context.Context, event events.DomainEvent) error {
	env := p.prepare(ctx, event)

	payload, err := events.Encode(event)
	if err != nil {
		metrics.PublishFailures.WithLabelValues(metrics.ChannelQueue, string(env.EventType)).Inc()
		return &PublicationError{EventID: env.EventID, EventType: env.EventType, Err: err}
	}

	queueName := routing.QueueFor(env.EventType)
	if err := p.queue.Send(ctx, queueName, payload); err != nil {
		metrics.PublishFailures.WithLabelValues(metrics.ChannelQueue, string(env.EventType)).Inc()
		p.logger.Error("critical event publication failed",
			zap.String("event_id", env.EventID),
			zap.String("event_type", string(env.EventType)),
			zap.String("queue", queueName),
			zap.Error(err))
		return &PublicationError{EventID: env.EventID, EventType: env.EventType, Queue: queueName, Err: err}
	}
	metrics.EventsPublished.WithLabelValues(metrics.ChannelQueue, string(env.EventType)).Inc()

	p.logger.Info("critical event published",
		zap.String("event_id", env.EventID),
		zap.String("event_type", string(env.EventType)),
		zap.String("queue", queueName))

	p.dispatchAudit(env, payload)
	return nil
}

// PublishNonCritical publishes a secondary signal: both the queue write and
// the audit write are best-effort. Failures are logged and suppressed, which
// is why there is no error return. As in the critical path, a failed queue
// write skips the audit write.
func (p *Publisher) PublishNonCritical(ctx context.Context, event events.DomainEvent) {
	env := p.prepare(ctx, event)

	payload, err := events.Encode(event)
	if err != nil {
		metrics.PublishFailures.WithLabelValues(metrics.ChannelQueue, string(env.EventType)).Inc()
		p.logger.Error("failed to encode non-critical event",
			zap.String("event_id", env.EventID),
			zap.String("event_type", string(env.EventType)),
			zap.Error(err))
		return
	}

	queueName := routing.QueueFor(env.EventType)
	if err := p.queue.Send(ctx, queueName, payload); err != nil {
		metrics.PublishFailures.WithLabelValues(metrics.ChannelQueue, string(env.EventType)).Inc()
		p.logger.Error("non-critical event publication failed",
			zap.String("event_id", env.EventID),
			zap.String("event_type", string(env.EventType)),
			zap.String("queue", queueName),
			zap.Error(err))
		return
	}
	metrics.EventsPublished.WithLabelValues(metrics.ChannelQueue, string(env.EventType)).Inc()

	p.logger.Info("non-critical event published",
		zap.String("event_id", env.EventID),
		zap.String("event_type", string(env.EventType)),
		zap.String("queue", queueName))

	p.dispatchAudit(env, payload)
}

// Flush waits for in-flight audit writes to settle. Call before shutdown.
func (p *Publisher) Flush() {
	p.auditWG.Wait()
}

// prepare fills envelope defaults exactly once: eventId, eventType and
// timestamp are generated only when unset, so re-publishing an already
// enriched event leaves them unchanged.
func (p *Publisher) prepare(ctx context.Context, event events.DomainEvent) *events.Envelope {
	env := event.Meta()
	if env.EventID == "" {
		env.EventID = events.NewEventID()
	}
	if env.EventType == "" {
		env.EventType = event.Kind()
	}
	if env.Timestamp.IsZero() {
		env.Timestamp = time.Now().UTC()
	}
	if env.Version == "" {
		env.Version = events.DefaultVersion
	}
	if env.Source == "" {
		env.Source = p.source
	}

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		if env.Metadata == nil {
			env.Metadata = events.NewMetadata()
		}
		env.Metadata.SetCustom("traceId", spanCtx.TraceID().String())
	}

	return env
}

// dispatchAudit appends the event to its audit topic without blocking the
// caller. The write is detached from the caller's context so that a request
// rollback cannot cancel a trail entry for an already delivered event.
func (p *Publisher) dispatchAudit(env *events.Envelope, payload []byte) {
	topic := routing.TopicFor(env.EventType)
	key := env.PartitionKey()
	eventID, eventType := env.EventID, env.EventType

	p.auditWG.Add(1)
	go func() {
		defer p.auditWG.Done()

		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()

		if err := p.audit.Send(ctx, topic, key, payload); err != nil {
			metrics.PublishFailures.WithLabelValues(metrics.ChannelAudit, string(eventType)).Inc()
			p.logger.Error("audit trail write failed",
				zap.String("event_id", eventID),
				zap.String("event_type", string(eventType)),
				zap.String("topic", topic),
				zap.Error(err))
			return
		}
		metrics.EventsPublished.WithLabelValues(metrics.ChannelAudit, string(eventType)).Inc()

		p.logger.Debug("event appended to audit trail",
			zap.String("event_id", eventID),
			zap.String("event_type", string(eventType)),
			zap.String("topic", topic),
			zap.String("key", key))
	}()
}
