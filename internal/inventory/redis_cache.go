package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arimedia/mediaplanner/internal/config"
)

// RedisCache stores combined results in Redis so replicas of the service
// share one cache. Values are JSON-encoded under a fingerprint key with a
// TTL; lookup and store errors degrade to cache misses and dropped writes.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg config.RedisConfig, ttl time.Duration, logger *log.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[CACHE] ", log.LstdFlags)
	}
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.Timeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}, nil
}

func cacheKey(fingerprint string) string {
	return "selection:" + fingerprint
}

func (c *RedisCache) Get(ctx context.Context, fingerprint string) (CombinedResult, bool) {
	raw, err := c.client.Get(ctx, cacheKey(fingerprint)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Printf("redis get %s: %v", fingerprint, err)
		}
		return CombinedResult{}, false
	}
	var result CombinedResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.Printf("redis decode %s: %v", fingerprint, err)
		return CombinedResult{}, false
	}
	return result, true
}

func (c *RedisCache) Put(ctx context.Context, fingerprint string, result CombinedResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		c.logger.Printf("redis encode %s: %v", fingerprint, err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(fingerprint), raw, c.ttl).Err(); err != nil {
		c.logger.Printf("redis set %s: %v", fingerprint, err)
	}
}

// NewCache builds the configured cache backend
func NewCache(ctx context.Context, cfg config.CacheConfig, logger *log.Logger) (Cache, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryCache(), nil
	case "lru":
		return NewLRUCache(cfg.LRUSize)
	case "redis":
		return NewRedisCache(ctx, cfg.Redis, cfg.TTL, logger)
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}
