package config

import "time"

// Config is the deployment-time configuration surface of the event backbone.
// Broker endpoints, consumer group identifiers, concurrency bounds and timeouts
// are all accepted as inputs here; none of them affect routing or delivery
// semantics.
type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServiceConfig identifies the clinical service embedding the backbone.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// QueueConfig configures the transactional channel (NATS JetStream).
type QueueConfig struct {
	URL      string        `mapstructure:"url"`
	Group    string        `mapstructure:"group"`
	Workers  int           `mapstructure:"workers"`
	AckWait  time.Duration `mapstructure:"ack_wait"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
}

// KafkaConfig configures the durable audit log channel.
type KafkaConfig struct {
	Brokers          []string `mapstructure:"brokers"`
	GroupID          string   `mapstructure:"group_id"`
	AnalyticsGroupID string   `mapstructure:"analytics_group_id"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Listener worker pools are bounded to 3-10 concurrent workers.
const (
	MinWorkers = 3
	MaxWorkers = 10
)

// BoundedWorkers clamps a configured worker count into the supported range.
func BoundedWorkers(n int) int {
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
