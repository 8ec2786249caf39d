package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListingCache caches public map listings keyed by filter signature.
// Every successful write that can change what the public sees invalidates
// the whole listing namespace.
type ListingCache interface {
	GetListing(ctx context.Context, key string) ([]byte, bool, error)
	SetListing(ctx context.Context, key string, payload []byte) error
	Invalidate(ctx context.Context) error
}

const (
	listingKeyPrefix = "culturemap:objects:public:"
	listingKeyIndex  = "culturemap:objects:public-keys"
)

// RedisListingCache implements ListingCache on top of Redis
type RedisListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisListingCache connects to Redis and returns a listing cache
func NewRedisListingCache(redisURL string, db int, ttl time.Duration) (*RedisListingCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	opts.DB = db

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisListingCache{client: client, ttl: ttl}, nil
}

// GetListing returns the cached payload for a filter signature when present
func (c *RedisListingCache) GetListing(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, listingKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read listing cache: %w", err)
	}
	return payload, true, nil
}

// SetListing stores the payload with the configured TTL and records the key
// in the namespace index so Invalidate can drop it later
func (c *RedisListingCache) SetListing(ctx context.Context, key string, payload []byte) error {
	fullKey := listingKeyPrefix + key

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, fullKey, payload, c.ttl)
	pipe.SAdd(ctx, listingKeyIndex, fullKey)
	pipe.Expire(ctx, listingKeyIndex, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate drops every cached listing in the namespace
func (c *RedisListingCache) Invalidate(ctx context.Context) error {
	keys, err := c.client.SMembers(ctx, listingKeyIndex).Result()
	if err != nil {
		return fmt.Errorf("failed to read listing cache index: %w", err)
	}
	keys = append(keys, listingKeyIndex)
	return c.client.Del(ctx, keys...).Err()
}

// Close releases the underlying Redis connection
func (c *RedisListingCache) Close() error {
	return c.client.Close()
}

// NoopListingCache is used when caching is disabled
type NoopListingCache struct{}

func (NoopListingCache) GetListing(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopListingCache) SetListing(ctx context.Context, key string, payload []byte) error {
	return nil
}

func (NoopListingCache) Invalidate(ctx context.Context) error { return nil }
