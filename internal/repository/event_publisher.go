package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	"github.com/noah-isme/beauty-booking-api/pkg/config"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventPublisher writes booking events to Kafka keyed by provider id so a
// provider's events stay ordered within a partition.
type KafkaEventPublisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaEventPublisher builds a publisher. Without brokers it only logs events.
func NewKafkaEventPublisher(cfg config.EventsConfig, logger *zap.Logger) *KafkaEventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &KafkaEventPublisher{topic: cfg.BookingTopic, logger: logger}
	if len(cfg.Brokers) == 0 {
		logger.Warn("event publisher disabled (no kafka brokers configured)")
		return p
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.BookingTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
	return p
}

func newKafkaEventPublisherWithWriter(writer messageWriter, topic string, logger *zap.Logger) *KafkaEventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaEventPublisher{writer: writer, topic: topic, logger: logger}
}

// PublishBookingCreated writes one booking.created message.
func (p *KafkaEventPublisher) PublishBookingCreated(ctx context.Context, event models.BookingCreatedEvent) error {
	if p.writer == nil {
		p.logger.Debug("booking event not published", zap.String("event_id", event.EventID), zap.String("booking_id", event.BookingID))
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.ProviderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write booking event to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaEventPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
