package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and an
// optional .env file, panicking on failure.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load()

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and an optional
// .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // a missing .env file is fine, env vars may be set directly

	return env.Parse(cfg)
}

// FeedSource selects where the engine reads its order events from.
type FeedSource string

const (
	// FeedSourceKafka reads events as JSON messages from a Kafka topic.
	FeedSourceKafka FeedSource = "kafka"
	// FeedSourceFile reads events from an XML order file.
	FeedSourceFile FeedSource = "file"
)

// Config holds the configuration for the engine process.
type Config struct {
	FeedSource FeedSource `env:"FEED_SOURCE" envDefault:"file"`
	FeedFile   string     `env:"FEED_FILE" envDefault:"orders.xml"`

	KafkaConfig          `envPrefix:"KAFKA_"`
	TradePublisherConfig `envPrefix:"TRADES_"`
	RedisConfig          `envPrefix:"REDIS_"`
	SnapshotConfig       `envPrefix:"SNAPSHOT_"`
}

// KafkaConfig holds the configuration for the order feed consumer. The
// reader addresses a single partition directly so it can seek to the
// snapshot offset; there is no consumer group.
type KafkaConfig struct {
	Topic   string   `env:"TOPIC" envDefault:"orders"`
	Brokers []string `env:"BROKER" envDefault:"localhost:9092"`
}

// TradePublisherConfig holds the configuration for the trade event producer.
type TradePublisherConfig struct {
	Topic   string   `env:"TOPIC" envDefault:"trades"`
	Brokers []string `env:"BROKER" envDefault:"localhost:9092"`
}

// RedisConfig holds the configuration for the Redis client backing the
// snapshot store.
type RedisConfig struct {
	Enabled  bool   `env:"ENABLED" envDefault:"false"`
	Addr     string `env:"ADDRESS" envDefault:"localhost:6379"`
	Username string `env:"USERNAME" envDefault:""`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}

// SnapshotConfig controls how often book snapshots are exported.
type SnapshotConfig struct {
	Key         string `env:"KEY" envDefault:"auro:books"`
	Interval    string `env:"INTERVAL" envDefault:"30s"`
	OffsetDelta int64  `env:"OFFSET_DELTA" envDefault:"1000"`
}
