package messaging

import "context"

const (
	TopicOrdersPlaced    = "orders.placed"
	TopicOrdersConfirmed = "orders.confirmed"
	TopicOrdersFailed    = "orders.failed"
)

// Handler processes one message payload.
type Handler func(ctx context.Context, payload []byte) error

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// Subscriber defines an interface for subscribing to a message topic.
// Consume blocks until ctx is canceled.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler Handler)
}
