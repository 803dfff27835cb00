// Package memory provides in-memory implementations of the store ports.
package memory

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/artpar/paygate/domain/ratelimit"
	"github.com/artpar/paygate/ports"
)

// rateLimitShard is a single shard of the rate limit store.
type rateLimitShard struct {
	mu    sync.Mutex
	state map[string]ratelimit.WindowState
}

// RateLimitStore is a sharded in-memory fixed-window store.
// Each key hashes to one shard; a check holds only that shard's lock.
type RateLimitStore struct {
	shards  []*rateLimitShard
	clock   ports.Clock
	cleanup *time.Ticker
	done    chan struct{}
	once    sync.Once
}

// RateLimitConfig configures the rate limit store.
type RateLimitConfig struct {
	Shards          int           // Number of shards (default: 32)
	CleanupInterval time.Duration // How often expired windows are dropped (default: 5m)
	Clock           ports.Clock   // Time source for cleanup (default: wall clock)
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// NewRateLimitStore creates a sharded store and starts its cleanup loop.
func NewRateLimitStore(cfg RateLimitConfig) *RateLimitStore {
	if cfg.Shards <= 0 {
		cfg.Shards = 32
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = wallClock{}
	}

	s := &RateLimitStore{
		shards:  make([]*rateLimitShard, cfg.Shards),
		clock:   cfg.Clock,
		cleanup: time.NewTicker(cfg.CleanupInterval),
		done:    make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i] = &rateLimitShard{state: make(map[string]ratelimit.WindowState)}
	}

	go s.cleanupLoop()
	return s
}

func (s *RateLimitStore) shard(key string) *rateLimitShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Check atomically loads the window for key, applies ratelimit.Check and
// stores the result.
func (s *RateLimitStore) Check(ctx context.Context, key string, cfg ratelimit.Config, now time.Time) (ratelimit.CheckResult, error) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	result, next := ratelimit.Check(sh.state[key], cfg, now)
	sh.state[key] = next
	return result, nil
}

// Window returns the stored window for key (for inspection and tests).
func (s *RateLimitStore) Window(key string) (ratelimit.WindowState, bool) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	st, ok := sh.state[key]
	return st, ok
}

func (s *RateLimitStore) cleanupLoop() {
	for {
		select {
		case <-s.cleanup.C:
			s.Sweep(s.clock.Now())
		case <-s.done:
			return
		}
	}
}

// Sweep drops every window that has rolled over by now. A dropped window
// behaves exactly like an expired one on the next check.
func (s *RateLimitStore) Sweep(now time.Time) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, st := range sh.state {
			if ratelimit.Expired(st, now) {
				delete(sh.state, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked windows.
func (s *RateLimitStore) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += len(sh.state)
		sh.mu.Unlock()
	}
	return total
}

// Close stops the cleanup goroutine.
func (s *RateLimitStore) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.cleanup.Stop()
	})
	return nil
}

// Ensure interface compliance.
var _ ports.RateLimitStore = (*RateLimitStore)(nil)
