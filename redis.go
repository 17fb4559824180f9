package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	summaryTTL      = 5 * time.Minute
	transactionsTTL = 60 * time.Second
)

// initRedis initializes the Redis connection
func initRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(fmt.Sprintf("redis://%s", redisURL))
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// cache is a read-through JSON cache for per-user reads. A nil *cache is valid and
// caches nothing, which is how the service runs without Redis.
type cache struct {
	client *redis.Client
	log    zerolog.Logger
}

func newCache(client *redis.Client, log zerolog.Logger) *cache {
	if client == nil {
		return nil
	}
	return &cache{client: client, log: log}
}

func summaryKey(userID int64) string      { return fmt.Sprintf("analytics:%d", userID) }
func transactionsKey(userID int64) string { return fmt.Sprintf("transactions:%d", userID) }

// get decodes the cached value into dst and reports whether it was there.
func (c *cache) get(ctx context.Context, key string, dst interface{}) bool {
	if c == nil {
		return false
	}
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry unreadable")
		return false
	}
	return true
}

func (c *cache) set(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.SetEx(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// invalidateUser drops everything cached for the user after a write.
func (c *cache) invalidateUser(ctx context.Context, userID int64) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, summaryKey(userID), transactionsKey(userID)).Err(); err != nil {
		c.log.Warn().Err(err).Int64("user_id", userID).Msg("cache invalidation failed")
	}
}
