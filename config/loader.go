package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional YAML file and the environment.
// Environment variables use the HIE prefix with dots replaced by underscores,
// e.g. HIE_KAFKA_GROUP_ID overrides kafka.group_id. A local .env file is
// honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("backbone")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, the environment is enough.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Queue.Workers = BoundedWorkers(cfg.Queue.Workers)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "hie-backbone")
	v.SetDefault("service.environment", "development")

	v.SetDefault("queue.url", "nats://localhost:4222")
	v.SetDefault("queue.group", "hie")
	v.SetDefault("queue.workers", 3)
	v.SetDefault("queue.ack_wait", "5s")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "audit-consumer-group")
	v.SetDefault("kafka.analytics_group_id", "analytics-consumer-group")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
