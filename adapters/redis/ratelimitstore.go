// Package redis provides a Redis-backed fixed-window rate limit store so
// several gateway processes can share one set of client windows.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/artpar/paygate/domain/ratelimit"
	"github.com/artpar/paygate/ports"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces window keys.
const DefaultKeyPrefix = "paygate:rl:"

// checkScript is ratelimit.Check executed server-side so the
// read-check-write is atomic per key across processes.
//
// KEYS[1] window key; ARGV: limit, window ms, now ms.
// Returns {allowed, count, reset_ms}.
var checkScript = goredis.NewScript(`
local count = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
local reset = tonumber(redis.call('HGET', KEYS[1], 'reset') or '0')
local limit = tonumber(ARGV[1])
local now = tonumber(ARGV[3])
if now >= reset then
  count = 0
  reset = now + tonumber(ARGV[2])
end
local allowed = 0
if count < limit then
  count = count + 1
  allowed = 1
end
redis.call('HSET', KEYS[1], 'count', count, 'reset', reset)
redis.call('PEXPIREAT', KEYS[1], reset)
return {allowed, count, reset}
`)

// Config configures the Redis connection.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RateLimitStore keeps fixed windows in Redis hashes.
type RateLimitStore struct {
	client *goredis.Client
	prefix string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*RateLimitStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RateLimitStore{client: client, prefix: cfg.KeyPrefix}, nil
}

// Check applies the fixed-window check for key atomically in Redis.
func (s *RateLimitStore) Check(ctx context.Context, key string, cfg ratelimit.Config, now time.Time) (ratelimit.CheckResult, error) {
	window := cfg.Window
	if window <= 0 {
		window = ratelimit.DefaultWindow
	}

	vals, err := checkScript.Run(ctx, s.client, []string{s.prefix + key},
		cfg.Limit, window.Milliseconds(), now.UnixMilli()).Int64Slice()
	if err != nil {
		return ratelimit.CheckResult{}, fmt.Errorf("rate limit check %s: %w", key, err)
	}
	if len(vals) != 3 {
		return ratelimit.CheckResult{}, fmt.Errorf("rate limit check %s: unexpected reply %v", key, vals)
	}

	allowed, count, resetMs := vals[0] == 1, int(vals[1]), vals[2]
	result := ratelimit.CheckResult{
		Allowed: allowed,
		Limit:   cfg.Limit,
		ResetAt: time.UnixMilli(resetMs).UTC(),
	}
	if allowed {
		result.Remaining = cfg.Limit - count
	} else {
		result.Reason = ratelimit.ReasonLimitExceeded
	}
	return result, nil
}

// Close closes the Redis client.
func (s *RateLimitStore) Close() error {
	return s.client.Close()
}

// Ensure interface compliance.
var _ ports.RateLimitStore = (*RateLimitStore)(nil)
