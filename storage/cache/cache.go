// Package cache stores built charts in Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/maendeleo/core"
)

const keyPrefix = "chart:term:"

// ChartCache keeps chart configs under a per-term version.
// Invalidating a term bumps its version, so entries built before are never read again and expire.
type ChartCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewChartCache(conf *core.Config) *ChartCache {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	return &ChartCache{client: client, ttl: conf.Redis.TTL}
}

func (c *ChartCache) Ping(ctx context.Context) error {
	return errors.Wrap(c.client.Ping(ctx).Err(), "pinging redis")
}

func (c *ChartCache) Close() error {
	return c.client.Close()
}

func versionKey(termID string) string {
	return keyPrefix + termID + ":version"
}

func entryKey(termID string, version int64, key string) string {
	return fmt.Sprintf("%s%s:%d:%s", keyPrefix, termID, version, key)
}

func (c *ChartCache) Get(ctx context.Context, termID, key string) ([]byte, int64, bool, error) {
	ver, err := c.client.Get(ctx, versionKey(termID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, errors.Wrap(err, "getting term cache version")
	}
	data, err := c.client.Get(ctx, entryKey(termID, ver, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ver, false, nil
	}
	if err != nil {
		return nil, ver, false, errors.Wrap(err, "getting cached chart")
	}
	return data, ver, true, nil
}

// Set stores data under the version Get returned.
func (c *ChartCache) Set(ctx context.Context, termID, key string, version int64, data []byte) error {
	return errors.Wrap(c.client.Set(ctx, entryKey(termID, version, key), data, c.ttl).Err(), "caching chart")
}

// InvalidateTerm drops every chart cached for the term.
func (c *ChartCache) InvalidateTerm(ctx context.Context, termID string) error {
	return errors.Wrap(c.client.Incr(ctx, versionKey(termID)).Err(), "bumping term cache version")
}

// Nop caches nothing. It is used when no Redis server is configured.
type Nop struct{}

func (Nop) Get(context.Context, string, string) ([]byte, int64, bool, error) { return nil, 0, false, nil }
func (Nop) Set(context.Context, string, string, int64, []byte) error { return nil }
func (Nop) InvalidateTerm(context.Context, string) error { return nil }
