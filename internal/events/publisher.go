// Package events publishes learner domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event topics, prefixed with the configured topic prefix
const (
	TopicEnrollmentCreated = "enrollment.created"
	TopicLessonCompleted   = "lesson.completed"
	TopicQuizAnswered      = "quiz.answered"
)

// Event is the JSON payload written for every topic
type Event struct {
	Type       string         `json:"type"`
	UserID     int            `json:"user_id"`
	EntityID   int            `json:"entity_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	prefix string
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher writing to the given brokers.
// Messages are keyed by user ID so one learner's events stay ordered.
func NewKafkaPublisher(brokers []string, prefix string, logger *zap.Logger) *kafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, prefix, logger)
}

func newKafkaPublisher(writer messageWriter, prefix string, logger *zap.Logger) *kafkaPublisher {
	return &kafkaPublisher{
		writer: writer,
		prefix: prefix,
		logger: logger,
	}
}

func (p *kafkaPublisher) topic(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

// Publish writes an event to its topic
func (p *kafkaPublisher) Publish(ctx context.Context, topic string, event Event) error {
	event.Type = topic
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic(topic),
		Key:   []byte(strconv.Itoa(event.UserID)),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", topic, err)
	}

	p.logger.Debug("Event published", zap.String("topic", topic), zap.Int("user_id", event.UserID), zap.Int("entity_id", event.EntityID))
	return nil
}

// Close flushes pending messages and closes the writer
func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

// Publish discards the event
func (NopPublisher) Publish(ctx context.Context, topic string, event Event) error {
	return nil
}

// Close does nothing
func (NopPublisher) Close() error {
	return nil
}
