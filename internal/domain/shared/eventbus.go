package shared

import "context"

// EventPublisher publishes domain events after the state that raised them
// has been persisted
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}
