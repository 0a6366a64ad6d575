package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Shopify/sarama"
	"go.uber.org/zap"

	"github.com/sih-ehealth/event-backbone/events"
	"github.com/sih-ehealth/event-backbone/internal/metrics"
)

// ConsumerConfig holds the settings for one audit consumer group.
type ConsumerConfig struct {
	Brokers []string
	Topics  []string
	GroupID string
}

// ConsumerGroup reads audit topics within an explicit consumer group.
// Offsets start at the earliest retained record so the full history within
// the retention window can be replayed, and they are committed manually only
// after successful processing: a crash before commit redelivers the record,
// so handlers must dedupe on eventId.
type ConsumerGroup struct {
	group   sarama.ConsumerGroup
	logger  *zap.Logger
	topics  []string
	groupID string

	mu       sync.RWMutex
	handlers map[events.EventType]events.Handler
	fallback events.Handler

	ready  chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConsumerGroup creates a consumer group with manual offset management.
func NewConsumerGroup(cfg ConsumerConfig, logger *zap.Logger) (*ConsumerGroup, error) {
	if len(cfg.Topics) == 0 {
		return nil, errors.New("no topics configured for audit consumer")
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Version = sarama.V2_8_0_0
	saramaCfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRange
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaCfg.Consumer.Offsets.AutoCommit.Enable = false

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit consumer group: %w", err)
	}

	return &ConsumerGroup{
		group:    group,
		logger:   logger.Named("audit_consumer"),
		topics:   cfg.Topics,
		groupID:  cfg.GroupID,
		handlers: make(map[events.EventType]events.Handler),
		ready:    make(chan struct{}),
	}, nil
}

// Register installs the handler for one event type.
func (cg *ConsumerGroup) Register(eventType events.EventType, handler events.Handler) {
	cg.mu.Lock()
	defer cg.mu.Unlock()
	cg.handlers[eventType] = handler
	cg.logger.Info("registered audit handler", zap.String("event_type", string(eventType)))
}

// RegisterDefault installs a catch-all handler invoked for event types
// without a dedicated registration. Trail recorders and analytics forwarders
// that want every event use this.
func (cg *ConsumerGroup) RegisterDefault(handler events.Handler) {
	cg.mu.Lock()
	defer cg.mu.Unlock()
	cg.fallback = handler
}

// Start launches the consume loop and blocks until the first session is set
// up. Sessions are recreated on rebalance until the context is canceled.
func (cg *ConsumerGroup) Start(ctx context.Context) error {
	ctx, cg.cancel = context.WithCancel(ctx)

	cg.wg.Add(1)
	go func() {
		defer cg.wg.Done()
		for {
			if err := cg.group.Consume(ctx, cg.topics, cg); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				cg.logger.Error("audit consume session failed", zap.Error(err))
				// Avoid a tight loop on persistent broker errors.
				time.Sleep(time.Second)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	select {
	case <-cg.ready:
		cg.logger.Info("audit consumer group running",
			zap.Strings("topics", cg.topics),
			zap.String("group_id", cg.groupID))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the consume loop and releases the group.
func (cg *ConsumerGroup) Close() error {
	if cg.cancel != nil {
		cg.cancel()
	}
	cg.wg.Wait()
	if err := cg.group.Close(); err != nil {
		return fmt.Errorf("failed to close audit consumer group: %w", err)
	}
	return nil
}

// Setup implements sarama.ConsumerGroupHandler.
func (cg *ConsumerGroup) Setup(session sarama.ConsumerGroupSession) error {
	select {
	case <-cg.ready:
	default:
		close(cg.ready)
	}
	return nil
}

// Cleanup implements sarama.ConsumerGroupHandler.
func (cg *ConsumerGroup) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim processes one partition claim. A record is marked and its
// offset committed only after its handler succeeds; on failure the claim is
// aborted with the offset uncommitted, so the record is redelivered.
func (cg *ConsumerGroup) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := cg.dispatch(session.Context(), message.Topic, message.Value); err != nil {
			return fmt.Errorf("handler failed at %s/%d offset %d: %w",
				message.Topic, message.Partition, message.Offset, err)
		}
		session.MarkMessage(message, "")
		session.Commit()
	}
	return nil
}

// dispatch decodes one record and routes it to the registered handler.
// Undecodable records are logged and skipped: redelivering them can never
// succeed. A missing handler also skips the record.
func (cg *ConsumerGroup) dispatch(ctx context.Context, topic string, value []byte) error {
	event, err := events.Decode(value)
	if err != nil {
		cg.logger.Error("failed to decode audit record, skipping",
			zap.String("topic", topic), zap.Error(err))
		return nil
	}

	env := event.Meta()

	cg.mu.RLock()
	handler, ok := cg.handlers[env.EventType]
	if !ok {
		handler = cg.fallback
	}
	cg.mu.RUnlock()

	if handler == nil {
		cg.logger.Warn("no handler for audit record, skipping",
			zap.String("event_type", string(env.EventType)),
			zap.String("event_id", env.EventID),
			zap.String("topic", topic))
		return nil
	}

	if err := handler(ctx, event); err != nil {
		metrics.ConsumeFailures.WithLabelValues(metrics.ChannelAudit, string(env.EventType)).Inc()
		return err
	}
	metrics.EventsConsumed.WithLabelValues(metrics.ChannelAudit, string(env.EventType)).Inc()

	cg.logger.Debug("audit record processed",
		zap.String("event_type", string(env.EventType)),
		zap.String("event_id", env.EventID),
		zap.String("topic", topic))
	return nil
}
