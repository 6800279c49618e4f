package redis

import (
	"context"
	"fmt"

	"github.com/davidkwan/orggraph/internal/config"
	"github.com/redis/go-redis/v9"
)

// Client represents a Redis client
type Client struct {
	*redis.Client
}

// New creates a new Redis client
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to connect to Redis: %w", err)
	}

	return &Client{Client: rdb}, nil
}

// Health checks the Redis health
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// PublishInvalidation broadcasts a cache-invalidation message on channel so
// that every process sharing this store drops its local graph snapshot.
func (c *Client) PublishInvalidation(ctx context.Context, channel, reason string) error {
	return c.Publish(ctx, channel, reason).Err()
}

// SubscribeInvalidation returns a subscription that receives one message per
// broadcast invalidation. Callers should range over Subscription.Channel()
// for the lifetime of the process and drop their local cache on each message.
func (c *Client) SubscribeInvalidation(ctx context.Context, channel string) *redis.PubSub {
	return c.Subscribe(ctx, channel)
}
