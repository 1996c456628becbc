package ports

import (
	"context"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

// EventSink accepts domain events for asynchronous delivery. Enqueue must not
// block the caller.
type EventSink interface {
	Enqueue(event domain.Event)
}

// EventPublisher delivers a serialised event to the outside world.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, key string) error
	Close() error
}
