package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds the connectivity check in NewClient.
const pingTimeout = 3 * time.Second

// Client stores live tournament progress and carries progress events over
// pub/sub. It implements repository.ProgressCache.
type Client struct {
	rdb *redis.Client
}

// NewClient connects to the Redis at redisURL and verifies it answers.
func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Underlying returns the raw client; the progress relay subscribes with it.
func (c *Client) Underlying() *redis.Client {
	return c.rdb
}
