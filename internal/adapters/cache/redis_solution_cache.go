package cache

import (
	"context"
	"cvrp-route-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const solutionKeyPrefix = "cvrp:solution:"

// RedisSolutionCache stores solved route sets as JSON under a TTL.
type RedisSolutionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSolutionCache(rdb *redis.Client, ttl time.Duration) *RedisSolutionCache {
	return &RedisSolutionCache{rdb: rdb, ttl: ttl}
}

// NewRedisSolutionCacheFromURL parses a redis:// URL and verifies the connection.
func NewRedisSolutionCacheFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisSolutionCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis solution cache: parse url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis solution cache: ping: %w", err)
	}
	return NewRedisSolutionCache(rdb, ttl), nil
}

func (c *RedisSolutionCache) Get(ctx context.Context, key string) (*domain.Solution, bool, error) {
	data, err := c.rdb.Get(ctx, solutionKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached solution %q: %w", key, err)
	}

	var sol domain.Solution
	if err := json.Unmarshal(data, &sol); err != nil {
		return nil, false, fmt.Errorf("decode cached solution %q: %w", key, err)
	}
	return &sol, true, nil
}

func (c *RedisSolutionCache) Put(ctx context.Context, key string, sol *domain.Solution) error {
	if sol == nil {
		return errors.New("put cached solution: solution is nil")
	}
	data, err := json.Marshal(sol)
	if err != nil {
		return fmt.Errorf("encode solution %q: %w", key, err)
	}
	if err := c.rdb.Set(ctx, solutionKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("put cached solution %q: %w", key, err)
	}
	return nil
}

func (c *RedisSolutionCache) Close() error { return c.rdb.Close() }
