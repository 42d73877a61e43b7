// Package kafka publishes ingestion events to Kafka for downstream consumers
// (catalog refreshers, audit pipelines).  Events are advisory: publication
// failures never fail the ingestion that produced them.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Chat/internal/ingest"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

// ProducerConfig holds the producer parameters.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

// Producer publishes ingestion events, keyed by source document so events for
// one document stay ordered within a partition.
type Producer struct {
	writer *kafka.Writer
	logger logging.Logger
}

// NewProducer constructs the producer.  The connection is established lazily
// on first write.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New(errors.ErrCodeValidation, "kafka topic is required")
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: writer, logger: logger.Named("kafka")}, nil
}

// PublishIngested emits one ingestion event.
func (p *Producer) PublishIngested(ctx context.Context, ev ingest.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal ingestion event")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Source),
		Value: payload,
		Time:  ev.FinishedAt,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to publish ingestion event")
	}

	p.logger.Debug("ingestion event published", logging.String("source", ev.Source))
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
