package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &mockWriter{}
	p := newKafkaPublisher(w, "roadsafety", zap.NewNop())
	occurred := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), TopicEnrollmentCreated, Event{UserID: 1, EntityID: 5, OccurredAt: occurred})
	require.NoError(t, err)

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "roadsafety.enrollment.created", msg.Topic)
	assert.Equal(t, []byte("1"), msg.Key)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, TopicEnrollmentCreated, decoded.Type)
	assert.Equal(t, 5, decoded.EntityID)
	assert.True(t, occurred.Equal(decoded.OccurredAt))
}

func TestKafkaPublisher_PublishDefaults(t *testing.T) {
	w := &mockWriter{}
	p := newKafkaPublisher(w, "", zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), TopicQuizAnswered, Event{UserID: 2, EntityID: 9, Data: map[string]any{"is_correct": true}}))

	require.Len(t, w.messages, 1)
	assert.Equal(t, TopicQuizAnswered, w.messages[0].Topic)

	var decoded Event
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.False(t, decoded.OccurredAt.IsZero())
	assert.Equal(t, true, decoded.Data["is_correct"])
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &mockWriter{err: errors.New("broker unavailable")}
	p := newKafkaPublisher(w, "roadsafety", zap.NewNop())

	err := p.Publish(context.Background(), TopicLessonCompleted, Event{UserID: 1, EntityID: 7})

	assert.ErrorContains(t, err, "failed to publish lesson.completed event")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &mockWriter{}
	p := newKafkaPublisher(w, "", zap.NewNop())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), TopicLessonCompleted, Event{}))
	assert.NoError(t, p.Close())
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "roadsafety", zap.NewNop())

	writer, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "localhost:9092", writer.Addr.String())
	assert.Equal(t, "roadsafety.quiz.answered", p.topic(TopicQuizAnswered))
}
