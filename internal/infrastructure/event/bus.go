package event

import (
	"context"
	"sync"

	"github.com/webdevsha/permitak/internal/domain/shared"
	"go.uber.org/zap"
)

// Handler reacts to a published event in-process
type Handler func(ctx context.Context, e shared.DomainEvent) error

// Bus dispatches events to local handlers and then forwards them to an
// optional downstream publisher. Publication failures are logged and never
// returned: by the time events are published the ledger write has already
// committed.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	forward  shared.EventPublisher
	logger   *zap.Logger
}

// NewBus creates a bus. forward may be nil.
func NewBus(forward shared.EventPublisher, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[string][]Handler),
		forward:  forward,
		logger:   logger.Named("events"),
	}
}

// Subscribe registers h for the given event types. "*" matches every type.
func (b *Bus) Subscribe(h Handler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], h)
	}
}

// Publish runs local handlers for each event then forwards the batch
func (b *Bus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		for _, h := range b.handlersFor(e.EventType()) {
			if err := b.dispatch(ctx, h, e); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", e.EventType()),
					zap.String("event_id", e.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}

	if b.forward != nil && len(events) > 0 {
		if err := b.forward.Publish(ctx, events...); err != nil {
			b.logger.Warn("event forwarding failed",
				zap.Int("count", len(events)),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (b *Bus) handlersFor(eventType string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Handler, 0, len(b.handlers[eventType])+len(b.handlers["*"]))
	out = append(out, b.handlers[eventType]...)
	out = append(out, b.handlers["*"]...)
	return out
}

func (b *Bus) dispatch(ctx context.Context, h Handler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", e.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return h(ctx, e)
}

// LogHandler writes every event to the logger at info level
func LogHandler(logger *zap.Logger) Handler {
	return func(_ context.Context, e shared.DomainEvent) error {
		logger.Info("domain event",
			zap.String("event_type", e.EventType()),
			zap.String("event_id", e.EventID().String()),
			zap.String("aggregate_type", e.AggregateType()),
			zap.String("aggregate_id", e.AggregateID().String()),
		)
		return nil
	}
}

var _ shared.EventPublisher = (*Bus)(nil)
