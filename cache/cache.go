// Package cache is the TTL-bounded blob store for OHLCV payloads, backed
// by redis. The store is best effort: unavailability degrades to a miss
// and the pipeline refetches.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cexline/spreadscan/config"
	"github.com/cexline/spreadscan/ohlcv"
)

var log = logrus.WithField("prefix", "cache")

// Key builds the cache key for one PE's OHLCV payload.
func Key(peID int64) string {
	return fmt.Sprintf("OHLC:%d", peID)
}

// CompareKey builds the cache key for on-demand compare payloads.
func CompareKey(pair, exchange, interval string) string {
	return fmt.Sprintf("OHLC:%s:%s:%s", pair, exchange, interval)
}

// kv is the minimal client surface the cache needs; carved out so tests
// can run without a redis server.
type kv interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns (nil, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Ping(ctx context.Context) error
}

// Cache stores JSON-serialized candle series under string keys. Consumers
// see an opaque byte payload that round-trips to the original series.
type Cache struct {
	client    kv
	available bool
}

// New connects to redis and health-probes it. An unreachable store is
// logged once and the cache starts in degraded (always-miss) mode.
func New(settings *config.RedisSettings) *Cache {
	c := &Cache{client: &redisKV{
		rdb: redis.NewClient(&redis.Options{
			Addr: settings.Addr(),
			DB:   settings.DB,
		}),
	}}
	c.available = c.healthcheck()
	return c
}

// newWithClient is the test seam.
func newWithClient(client kv) *Cache {
	return &Cache{client: client, available: true}
}

func (c *Cache) healthcheck() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.client.Ping(ctx); err != nil {
		log.WithError(err).Error("Cache store unavailable, degrading to fetch-every-time")
		return false
	}
	return true
}

// Available reports whether the backing store responded to the last probe.
func (c *Cache) Available() bool {
	return c.available
}

// SetSeries writes one candle series with the given TTL. Failures are
// logged and swallowed: caching is best effort.
func (c *Cache) SetSeries(ctx context.Context, key string, series ohlcv.Series, ttl time.Duration) bool {
	if !c.available {
		return false
	}
	payload, err := json.Marshal(series)
	if err != nil {
		log.WithError(err).WithField("key", key).Error("Could not encode series")
		return false
	}
	if err := c.client.Set(ctx, key, payload, ttl); err != nil {
		log.WithError(err).WithField("key", key).Warn("Cache write failed")
		return false
	}
	log.WithFields(logrus.Fields{"key": key, "ttl": ttl}).Debug("Cached series")
	return true
}

// GetSeries reads one candle series. Misses, store errors and undecodable
// payloads all come back as (nil, false).
func (c *Cache) GetSeries(ctx context.Context, key string) (ohlcv.Series, bool) {
	if !c.available {
		return nil, false
	}
	payload, err := c.client.Get(ctx, key)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("Cache read failed")
		return nil, false
	}
	if payload == nil {
		return nil, false
	}
	var series ohlcv.Series
	if err := json.Unmarshal(payload, &series); err != nil {
		log.WithError(err).WithField("key", key).Error("Corrupt cache payload")
		return nil, false
	}
	return series, true
}

// redisKV adapts go-redis to the kv surface.
type redisKV struct {
	rdb *redis.Client
}

func (r *redisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.Wrap(r.rdb.Set(ctx, key, value, ttl).Err(), "redis set")
}

func (r *redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}
	return val, nil
}

func (r *redisKV) Ping(ctx context.Context) error {
	return errors.Wrap(r.rdb.Ping(ctx).Err(), "redis ping")
}
