package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/webdevsha/permitak/internal/domain/shared"
	"github.com/webdevsha/permitak/internal/infrastructure/config"
	"go.uber.org/zap"
)

// messageWriter is the subset of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes domain events to a single topic
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher for cfg.Topic on cfg.Brokers
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, cfg.Topic, logger), nil
}

func newKafkaPublisher(w messageWriter, topic string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		logger: logger.Named("kafka"),
	}
}

// Publish encodes and writes the events in one batch
func (p *KafkaPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		env, err := NewEnvelope(e)
		if err != nil {
			return err
		}
		msg, err := env.Message()
		if err != nil {
			return fmt.Errorf("encode event %s: %w", env.Type, err)
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("failed to publish events",
			zap.String("topic", p.topic),
			zap.Int("count", len(msgs)),
			zap.Error(err),
		)
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	p.logger.Debug("events published",
		zap.String("topic", p.topic),
		zap.Int("count", len(msgs)),
	)
	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ shared.EventPublisher = (*KafkaPublisher)(nil)
