package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civica/policyrag/core"
)

// keyPrefix namespaces cache entries in a shared redis instance.
const keyPrefix = "policyrag:"

// Redis is a result cache backed by a redis instance. Payloads are JSON
// documents carrying their own expiry alongside the redis key TTL, so a
// stale document surviving a TTL misconfiguration still misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ Store = (*Redis)(nil)

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithRedisTTL sets the entry lifetime. Default is DefaultTTL.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithRedisLogger sets a custom logger.
// Default is slog.Default().
func WithRedisLogger(logger *slog.Logger) RedisOption {
	return func(r *Redis) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRedis creates a redis-backed cache and verifies connectivity.
func NewRedis(ctx context.Context, addr string, opts ...RedisOption) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	r := &Redis{
		client: client,
		ttl:    DefaultTTL,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Get returns cached results for key. Backend errors and expired
// payloads are misses.
func (r *Redis) Get(ctx context.Context, key string) ([]core.RankedResult, bool) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Debug("redis cache read failed", "key", key, "err", err)
		}
		r.misses.Add(1)
		return nil, false
	}

	results, ok := decodePayload(data, r.now())
	if !ok {
		r.client.Del(ctx, keyPrefix+key)
		r.misses.Add(1)
		return nil, false
	}
	r.hits.Add(1)
	return results, true
}

// Set stores results under key. Failures are logged, not surfaced.
func (r *Redis) Set(ctx context.Context, key string, results []core.RankedResult) {
	data, err := encodePayload(results, r.now(), r.ttl)
	if err != nil {
		r.logger.Debug("failed to encode cache payload", "key", key, "err", err)
		return
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, r.ttl).Err(); err != nil {
		r.logger.Debug("redis cache write failed", "key", key, "err", err)
	}
}

// Clear drops every entry under the key prefix.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Stats reports counters since startup. Entries is not tracked for the
// shared instance.
func (r *Redis) Stats() Stats {
	return Stats{
		Backend: "redis",
		Hits:    r.hits.Load(),
		Misses:  r.misses.Load(),
	}
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
