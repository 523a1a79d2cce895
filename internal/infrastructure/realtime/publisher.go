package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"auctionhouse-backend/pkg/logger"
)

// Publisher fans item events out over redis pub/sub. Publishing is
// fire-and-forget relative to the write path: a failed publish is logged
// and swallowed, it never rolls back an accepted bid.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

type redisPublisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) Publisher {
	return &redisPublisher{client: client}
}

func (p *redisPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal realtime event: %w", err)
	}

	channel := ChannelForItem(event.AuctionItemID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish realtime event: %w", err)
	}

	logger.Debug("Realtime event published", map[string]interface{}{
		"channel": channel,
		"type":    event.Type,
		"version": event.Version,
	})

	return nil
}
