package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

// Envelope is the wire form of a published domain event
type Envelope struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// Header keys set on every message
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)

// NewEnvelope wraps a domain event for publication
func NewEnvelope(e shared.DomainEvent) (*Envelope, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", e.EventType(), err)
	}
	return &Envelope{
		ID:            e.EventID().String(),
		Type:          e.EventType(),
		AggregateID:   e.AggregateID().String(),
		AggregateType: e.AggregateType(),
		OccurredAt:    e.OccurredAt().UTC(),
		Payload:       payload,
	}, nil
}

// Message encodes the envelope as a kafka message keyed by aggregate id,
// so all events of one payment land on the same partition in order.
func (env *Envelope) Message() (kafka.Message, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(env.AggregateID),
		Value: data,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(env.Type)},
			{Key: HeaderEventID, Value: []byte(env.ID)},
		},
	}, nil
}

// DecodeEnvelope parses a message value produced by Message
func DecodeEnvelope(value []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}
