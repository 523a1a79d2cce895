package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"auctionhouse-backend/internal/shared/utils"
	"auctionhouse-backend/pkg/logger"
)

// Client wraps the asynq producer side. Enqueues happen after the owning
// database transaction commits; a failed enqueue is surfaced to the caller
// to log, never to roll back the commit.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, redisPassword string, redisDB int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		}),
	}
}

func (c *Client) Enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	task, err := utils.MarshalTask(taskType, payload)
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue task %s: %w", taskType, err)
	}

	logger.Debug("Task enqueued", map[string]interface{}{
		"task_id": info.ID,
		"type":    taskType,
		"queue":   info.Queue,
	})

	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
