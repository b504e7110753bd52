package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrMiss is returned by the strict accessors when a key does not exist.
var ErrMiss = errors.New("cache miss")

// Client wraps redis.Client. Get, Set and Delete fail safe by swallowing
// connectivity errors; Persist and Lookup report them so callers that must
// not degrade silently can react.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client.
func New(addr, password string, db int) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{client: redis.NewClient(opts)}
}

// NewFromRedis wraps an existing redis client.
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{client: rdb}
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("redis client not configured")
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache get failed, treating as miss")
		return nil, nil
	}
	return res, nil
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
	return nil
}

// Delete removes a key, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
	return nil
}

// GetJSON decodes a cached value into dst. It reports false on a miss.
func (c *Client) GetJSON(ctx context.Context, key string, dst any) bool {
	data, _ := c.Get(ctx, key)
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		_ = c.Delete(ctx, key)
		return false
	}
	return true
}

// SetJSON encodes value and stores it with TTL.
func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}

// Persist stores value with TTL and returns any redis error.
func (c *Client) Persist(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return errors.New("redis client not configured")
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// Lookup returns the value for key, ErrMiss if absent, or the redis error.
func (c *Client) Lookup(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("redis client not configured")
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", key, err)
	}
	return res, nil
}

// Remove deletes keys and returns any redis error.
func (c *Client) Remove(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil {
		return errors.New("redis client not configured")
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("remove keys: %w", err)
	}
	return nil
}
