package audit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/sih-ehealth/event-backbone/events/routing"
)

// Retention windows. Audit topics keep 30 days of history; the analytics
// copy keeps 90 for BI use.
const (
	AuditRetention     = 30 * 24 * time.Hour
	AnalyticsRetention = 90 * 24 * time.Hour
)

const (
	auditPartitions     = 3
	analyticsPartitions = 5
)

// EnsureTopics creates the audit and analytics topics with their retention
// and compression settings. Existing topics are left untouched.
func EnsureTopics(ctx context.Context, brokers []string) error {
	topics := make([]kafkago.TopicConfig, 0, 4)
	for _, topic := range routing.AuditTopics() {
		topics = append(topics, topicConfig(topic, auditPartitions, AuditRetention))
	}
	topics = append(topics, topicConfig(routing.TopicAnalyticsEvents, analyticsPartitions, AnalyticsRetention))

	client := &kafkago.Client{Addr: kafkago.TCP(brokers...)}
	resp, err := client.CreateTopics(ctx, &kafkago.CreateTopicsRequest{Topics: topics})
	if err != nil {
		return fmt.Errorf("failed to create audit topics: %w", err)
	}

	for topic, topicErr := range resp.Errors {
		if topicErr != nil && !errors.Is(topicErr, kafkago.TopicAlreadyExists) {
			return fmt.Errorf("failed to create topic %s: %w", topic, topicErr)
		}
	}
	return nil
}

func topicConfig(name string, partitions int, retention time.Duration) kafkago.TopicConfig {
	return kafkago.TopicConfig{
		Topic:             name,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
		ConfigEntries: []kafkago.ConfigEntry{
			{ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(retention.Milliseconds(), 10)},
			{ConfigName: "compression.type", ConfigValue: "snappy"},
		},
	}
}
