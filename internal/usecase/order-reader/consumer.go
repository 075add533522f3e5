package orderreader

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	feedv1 "github.com/lomash27/Auro/internal/domain/feed/v1"
	"github.com/lomash27/Auro/pkg/config"
	"github.com/lomash27/Auro/pkg/logger"
)

// Reader consumes order events as JSON messages from a Kafka topic.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      logger.Interface
}

// NewReader creates a Kafka reader for the order topic. It implements
// feedv1.Reader.
func NewReader(cfg config.KafkaConfig, log logger.Interface) *Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		Partition:   0,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return &Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

// SetOffset positions the Kafka reader at the given offset.
func (r *Reader) SetOffset(offset int64) error {
	if err := r.kafkaReader.SetOffset(offset); err != nil {
		r.logError(err, "SetOffset")
		return err
	}
	return nil
}

// ReadEvent reads the next message and decodes it as an order event. The
// message offset becomes the event offset.
func (r *Reader) ReadEvent(ctx context.Context) (*feedv1.Event, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		r.logError(err, "ReadMessage")
		return nil, err
	}

	var event feedv1.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		r.logError(err, "UnmarshalEvent")
		return nil, err
	}
	event.Offset = msg.Offset

	r.logger.Debug("ReadEvent",
		logger.Field{Key: "action", Value: event.Action},
		logger.Field{Key: "book", Value: event.Instrument},
		logger.Field{Key: "side", Value: event.Side},
		logger.Field{Key: "price", Value: event.Price},
		logger.Field{Key: "quantity", Value: event.Quantity},
		logger.Field{Key: "offset", Value: event.Offset},
	)

	return &event, nil
}

// Close properly closes the Kafka reader.
func (r *Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}

func (r *Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "operation", Value: operation},
	)
}
