package realtime

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Subscriber bridges one item's pub/sub channel to a consumer (the SSE
// endpoint). Messages are delivered as raw JSON payloads; consumers forward
// them verbatim so version-based de-duplication stays client-side.
type Subscriber interface {
	// Subscribe returns a channel of raw event payloads for the item.
	// The channel closes when ctx is cancelled.
	Subscribe(ctx context.Context, itemID uuid.UUID) (<-chan []byte, error)
}

type redisSubscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) Subscriber {
	return &redisSubscriber{client: client}
}

func (s *redisSubscriber) Subscribe(ctx context.Context, itemID uuid.UUID) (<-chan []byte, error) {
	pubsub := s.client.Subscribe(ctx, ChannelForItem(itemID))

	// Force the subscription onto the wire before the caller starts
	// streaming, so no event between connect and first read is lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
