// Package memory is an in-process broker on watermill's Go channel pub/sub,
// used when no Kafka brokers are configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/chiragjain10/avrcraft-sub000/internal/messaging"
)

const keyMetadata = "key"

// Broker implements messaging.Publisher and messaging.Subscriber.
type Broker struct {
	pubsub *gochannel.GoChannel
}

var (
	_ messaging.Publisher  = (*Broker)(nil)
	_ messaging.Subscriber = (*Broker)(nil)
)

// NewBroker creates a broker. When persistent is set, subscribers that join
// late receive every message already published on the topic.
func NewBroker(persistent bool) *Broker {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
		Persistent:          persistent,
	}, watermill.NewSlogLogger(slog.Default()))
	return &Broker{pubsub: pubsub}
}

func (b *Broker) PublishEvent(_ context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(keyMetadata, key)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Consume delivers messages to handler until ctx is canceled. Handler errors
// are logged and the message is acknowledged so it is not redelivered.
func (b *Broker) Consume(ctx context.Context, topic string, _ string, handler messaging.Handler) {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		slog.Error("Error subscribing", "topic", topic, "err", err)
		return
	}

	for msg := range messages {
		if err := handler(ctx, msg.Payload); err != nil {
			slog.Error("Error handling message", "topic", topic, "uuid", msg.UUID, "err", err)
		}
		msg.Ack()
	}
	slog.Info("Consumer shutting down", "topic", topic)
}

func (b *Broker) Close() error {
	return b.pubsub.Close()
}
