// Package audit implements the durable-log channel of the backbone on Kafka.
// Every event is appended to a retention-bounded, replayable topic,
// independent of the transactional delivery path. Producers require
// acknowledgment from all replicas with a single in-flight request so
// intra-producer order is preserved; consumers commit offsets manually only
// after successful processing.
package audit

import (
	"context"
	"fmt"

	"github.com/Shopify/sarama"
	"go.uber.org/zap"
)

// Producer appends serialized events to audit topics. One instance is shared
// by all event types within a service; sarama's SyncProducer is safe for
// concurrent use.
type Producer struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

// NewProducer creates a producer with delivery-guarantee settings: all
// replicas must acknowledge, retries are limited to 3, and a single in-flight
// request per connection preserves intra-producer ordering.
func NewProducer(brokers []string, logger *zap.Logger) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_8_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit producer: %w", err)
	}
	return newProducer(producer, logger), nil
}

func newProducer(producer sarama.SyncProducer, logger *zap.Logger) *Producer {
	return &Producer{
		producer: producer,
		logger:   logger.Named("audit_producer"),
	}
}

// Send appends one event to the topic under the given partition key. Records
// sharing a key are delivered in order within their partition.
func (p *Producer) Send(ctx context.Context, topic, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to append to audit topic %s: %w", topic, err)
	}

	p.logger.Debug("record appended to audit topic",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

// Close shuts the underlying producer down.
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close audit producer: %w", err)
	}
	return nil
}
