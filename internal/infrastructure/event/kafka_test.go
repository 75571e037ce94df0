package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webdevsha/permitak/internal/infrastructure/config"
	"go.uber.org/zap/zaptest"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestNewKafkaPublisher_Validation(t *testing.T) {
	_, err := NewKafkaPublisher(config.KafkaConfig{Topic: "t"}, nil)
	assert.Error(t, err)

	_, err = NewKafkaPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, nil)
	assert.Error(t, err)

	p, err := NewKafkaPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "permitak.payments"}, nil)
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "permitak.payments", zaptest.NewLogger(t))

	e := newTestEvent("payment.approved")
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, e.AggregateID().String(), string(msg.Key))
	assert.Equal(t, "payment.approved", headerValue(msg, HeaderEventType))
	assert.Equal(t, e.EventID().String(), headerValue(msg, HeaderEventID))

	env, err := DecodeEnvelope(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, "payment.approved", env.Type)
	assert.Equal(t, "TestAggregate", env.AggregateType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "test data", payload["data"])
}

func TestKafkaPublisher_NoEvents(t *testing.T) {
	w := &fakeWriter{err: errors.New("should not be called")}
	p := newKafkaPublisher(w, "t", nil)
	assert.NoError(t, p.Publish(context.Background()))
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newKafkaPublisher(w, "permitak.payments", zaptest.NewLogger(t))

	err := p.Publish(context.Background(), newTestEvent("payment.approved"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permitak.payments")
	assert.Contains(t, err.Error(), "leader not available")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "t", nil)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
