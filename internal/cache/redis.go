package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jjenkins/revera/internal/obs"
)

const keyPrefix = "catalog:view:"

// ConnectRedis creates a client and verifies it with a ping
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// RedisViewCache stores derived catalog views as ordered listing IDs
type RedisViewCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisViewCache creates a cache whose entries expire after ttl
func NewRedisViewCache(client redis.Cmdable, ttl time.Duration) *RedisViewCache {
	return &RedisViewCache{client: client, ttl: ttl}
}

// Get returns the cached IDs for key. A miss is not an error.
func (c *RedisViewCache) Get(ctx context.Context, key string) ([]string, bool, error) {
	data, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read view cache: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, false, fmt.Errorf("failed to decode view cache entry: %w", err)
	}
	return ids, true, nil
}

// Set stores ids under key
func (c *RedisViewCache) Set(ctx context.Context, key string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode view cache entry: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write view cache: %w", err)
	}
	return nil
}

// Flush deletes every cached view and returns how many keys were removed
func (c *RedisViewCache) Flush(ctx context.Context) (int, error) {
	const scanCount = 100

	var keys []string
	var cursor uint64
	for {
		batch, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", scanCount).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan view cache: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return 0, nil
	}

	pipe := c.client.Pipeline()
	for _, k := range keys {
		pipe.Del(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to delete %d view cache keys: %w", len(keys), err)
	}

	obs.Logger.Info("view_cache_flushed", "keys", len(keys))
	return len(keys), nil
}

func redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return keyPrefix + hex.EncodeToString(sum[:])
}
