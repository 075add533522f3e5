package matchpublisher

import (
	"context"

	"github.com/segmentio/kafka-go"

	tradev1 "github.com/lomash27/Auro/internal/domain/trade/v1"
	"github.com/lomash27/Auro/pkg/config"
	"github.com/lomash27/Auro/pkg/errors"
	"github.com/lomash27/Auro/pkg/logger"
)

// Publisher writes trade events to a Kafka topic.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      logger.Interface
}

// NewPublisher creates a Kafka publisher for trade events. It implements
// tradev1.Publisher.
func NewPublisher(cfg config.TradePublisherConfig, log logger.Interface) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// PublishTrade publishes one trade event, keyed by instrument so trades for
// a book stay ordered within a partition.
func (p *Publisher) PublishTrade(ctx context.Context, event *tradev1.TradeEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.Instrument),
		Value: tradev1.ToBytes(event),
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(err,
			logger.Field{Key: "tradeID", Value: event.TradeID},
			logger.Field{Key: "instrument", Value: event.Instrument},
		)
		return errors.NewTracer("failed to publish trade event").Wrap(err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
