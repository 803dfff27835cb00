package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/artpar/paygate/domain/ratelimit"
	"github.com/artpar/paygate/ports"
)

// ErrNegativeLimit is returned when an override below zero is requested.
var ErrNegativeLimit = errors.New("rate limit must not be negative")

// RateLimiter resolves each client's limit and delegates window
// accounting to a RateLimitStore. Overrides are the only configuration
// that may change while the gateway runs.
type RateLimiter struct {
	store        ports.RateLimitStore
	defaultLimit int
	window       time.Duration

	mu        sync.RWMutex
	overrides map[string]int
}

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	DefaultLimit int
	Window       time.Duration
}

// NewRateLimiter creates a limiter over store.
func NewRateLimiter(store ports.RateLimitStore, cfg RateLimiterConfig) *RateLimiter {
	if cfg.Window <= 0 {
		cfg.Window = ratelimit.DefaultWindow
	}
	return &RateLimiter{
		store:        store,
		defaultLimit: cfg.DefaultLimit,
		window:       cfg.Window,
		overrides:    make(map[string]int),
	}
}

// Admit counts one request for clientID at now.
func (r *RateLimiter) Admit(ctx context.Context, clientID string, now time.Time) (ratelimit.CheckResult, error) {
	cfg := ratelimit.Config{Limit: r.LimitFor(clientID), Window: r.window}
	return r.store.Check(ctx, clientID, cfg, now)
}

// LimitFor returns the override for clientID, else the default.
func (r *RateLimiter) LimitFor(clientID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.overrides[clientID]; ok {
		return l
	}
	return r.defaultLimit
}

// Override returns the override for clientID, if one is set.
func (r *RateLimiter) Override(clientID string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.overrides[clientID]
	return l, ok
}

// SetOverride sets the per-window limit for clientID. A limit of 0 blocks
// the client entirely. The current window keeps its count.
func (r *RateLimiter) SetOverride(clientID string, limit int) error {
	if limit < 0 {
		return ErrNegativeLimit
	}
	r.mu.Lock()
	r.overrides[clientID] = limit
	r.mu.Unlock()
	return nil
}

// DefaultLimit returns the process-wide limit.
func (r *RateLimiter) DefaultLimit() int {
	return r.defaultLimit
}

// Window returns the window length.
func (r *RateLimiter) Window() time.Duration {
	return r.window
}
