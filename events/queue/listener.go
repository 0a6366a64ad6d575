package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/sih-ehealth/event-backbone/config"
	"github.com/sih-ehealth/event-backbone/events"
	"github.com/sih-ehealth/event-backbone/events/routing"
	"github.com/sih-ehealth/event-backbone/internal/metrics"
)

const defaultAckWait = 5 * time.Second

// Listener consumes transactional queues with a bounded worker pool and
// explicit acknowledgment. Handlers are registered per event type before
// Start; each distinct queue gets one durable consumer shared by the group,
// so instances of the same service compete for messages.
//
// A handler error withholds the acknowledgment: the broker redelivers the
// message after the ack wait elapses. Messages for different queues are
// processed in parallel; ordering across workers within one queue is not
// guaranteed.
type Listener struct {
	client  *Client
	logger  *zap.Logger
	group   string
	workers int
	ackWait time.Duration

	mu       sync.RWMutex
	handlers map[events.EventType]events.Handler

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewListener creates a listener bound to the given client. The worker count
// is clamped to the supported 3-10 range and the ack wait defaults to 5s.
func NewListener(client *Client, logger *zap.Logger, cfg config.QueueConfig) *Listener {
	ackWait := cfg.AckWait
	if ackWait <= 0 {
		ackWait = defaultAckWait
	}
	group := cfg.Group
	if group == "" {
		group = "hie"
	}
	return &Listener{
		client:   client,
		logger:   logger.Named("queue_listener"),
		group:    group,
		workers:  config.BoundedWorkers(cfg.Workers),
		ackWait:  ackWait,
		handlers: make(map[events.EventType]events.Handler),
	}
}

// Register installs the handler for an event type. Registrations after Start
// are ignored by running workers' queue set but still used for dispatch.
func (l *Listener) Register(eventType events.EventType, handler events.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[eventType] = handler
	l.logger.Info("registered queue handler", zap.String("event_type", string(eventType)))
}

// Start subscribes to the queue of every registered event type and launches
// the worker pool. It returns once the subscriptions are established.
func (l *Listener) Start(ctx context.Context) error {
	queues := l.queues()
	if len(queues) == 0 {
		return errors.New("no handlers registered")
	}

	ctx, l.cancel = context.WithCancel(ctx)

	var subs []*nats.Subscription
	for _, queueName := range queues {
		sub, err := l.client.js.PullSubscribe(queueName, l.durableFor(queueName),
			nats.BindStream(StreamName),
			nats.AckExplicit(),
			nats.AckWait(l.ackWait),
		)
		if err != nil {
			l.cancel()
			l.wg.Wait()
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			return fmt.Errorf("failed to subscribe to queue %s: %w", queueName, err)
		}
		subs = append(subs, sub)

		for i := 0; i < l.workers; i++ {
			l.wg.Add(1)
			go l.consume(ctx, sub, queueName)
		}
		l.logger.Info("listening on queue",
			zap.String("queue", queueName),
			zap.Int("workers", l.workers),
			zap.Duration("ack_wait", l.ackWait))
	}
	return nil
}

// Stop cancels the workers and waits for in-flight processing to finish.
func (l *Listener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
	l.logger.Info("queue listener stopped")
}

func (l *Listener) consume(ctx context.Context, sub *nats.Subscription, queueName string) {
	defer l.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}
		// The context option lets Stop interrupt a blocked fetch immediately.
		msgs, err := sub.Fetch(1, nats.Context(ctx))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, nats.ErrConnectionClosed) {
				return
			}
			l.logger.Error("failed to fetch from queue", zap.String("queue", queueName), zap.Error(err))
			continue
		}
		for _, msg := range msgs {
			l.process(ctx, msg, queueName)
		}
	}
}

func (l *Listener) process(ctx context.Context, msg *nats.Msg, queueName string) {
	event, err := events.Decode(msg.Data)
	if err != nil {
		// Undecodable messages are terminated rather than redelivered forever.
		l.logger.Error("failed to decode queue message, terminating delivery",
			zap.String("queue", queueName), zap.Error(err))
		if termErr := msg.Term(); termErr != nil {
			l.logger.Error("failed to terminate message", zap.String("queue", queueName), zap.Error(termErr))
		}
		return
	}

	env := event.Meta()

	l.mu.RLock()
	handler, ok := l.handlers[env.EventType]
	l.mu.RUnlock()
	if !ok {
		l.logger.Warn("no handler for event type, acknowledging",
			zap.String("event_type", string(env.EventType)),
			zap.String("event_id", env.EventID))
		if ackErr := msg.Ack(); ackErr != nil {
			l.logger.Error("failed to acknowledge message", zap.Error(ackErr))
		}
		return
	}

	if err := handler(ctx, event); err != nil {
		metrics.ConsumeFailures.WithLabelValues(metrics.ChannelQueue, string(env.EventType)).Inc()
		// Withhold the ack: the broker redelivers after the ack wait.
		l.logger.Error("handler failed, withholding ack",
			zap.String("event_type", string(env.EventType)),
			zap.String("event_id", env.EventID),
			zap.String("queue", queueName),
			zap.Error(err))
		return
	}

	if err := msg.Ack(); err != nil {
		l.logger.Error("failed to acknowledge message",
			zap.String("event_id", env.EventID),
			zap.String("queue", queueName),
			zap.Error(err))
		return
	}
	metrics.EventsConsumed.WithLabelValues(metrics.ChannelQueue, string(env.EventType)).Inc()

	l.logger.Debug("queue event processed",
		zap.String("event_type", string(env.EventType)),
		zap.String("event_id", env.EventID),
		zap.String("queue", queueName))
}

// queues returns the distinct queue names of all registered event types,
// sorted so the subscription order is stable.
func (l *Listener) queues() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]struct{}, len(l.handlers))
	var queues []string
	for eventType := range l.handlers {
		q := routing.QueueFor(eventType)
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		queues = append(queues, q)
	}
	sort.Strings(queues)
	return queues
}

// durableFor derives the durable consumer name for a queue. Durable names
// may not contain dots.
func (l *Listener) durableFor(queueName string) string {
	return l.group + "-" + strings.ReplaceAll(queueName, ".", "-")
}
