// Package ratelimit provides a pure fixed-window rate limiting algorithm.
// All functions are deterministic - same input always produces same output.
//
// The window is a fixed counter, not a sliding window or token bucket: a
// client may spend its full limit at the end of one window and again at the
// start of the next.
package ratelimit

import "time"

// DefaultWindow is the window length used when none is configured.
const DefaultWindow = 60 * time.Second

// WindowState is the per-client window (value type).
type WindowState struct {
	Count   int       // Requests admitted in the current window
	ResetAt time.Time // When the current window rolls over
}

// Config holds rate limit configuration (value type).
type Config struct {
	Limit  int           // Requests per window
	Window time.Duration // Window length
}

// CheckResult represents the outcome of a rate limit check (value type).
type CheckResult struct {
	Allowed   bool
	Limit     int
	Remaining int       // Requests remaining in window
	ResetAt   time.Time // When the window rolls over
	Reason    string    // If not allowed, why
}

// Reasons for denial
const (
	ReasonLimitExceeded = "rate_limit_exceeded"
)

// Check performs a rate limit check.
// This is a PURE function - no side effects, deterministic.
//
// If now has reached state.ResetAt the counter is reset and the window is
// re-anchored at now. A request is then admitted only while Count < Limit;
// a denied request does not increment the counter.
//
// Returns:
//   - result: whether request is allowed and metadata
//   - newState: updated state (caller must persist)
func Check(state WindowState, cfg Config, now time.Time) (CheckResult, WindowState) {
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}

	if !now.Before(state.ResetAt) {
		state = WindowState{
			Count:   0,
			ResetAt: now.Add(window),
		}
	}

	if state.Count >= cfg.Limit {
		return CheckResult{
			Allowed:   false,
			Limit:     cfg.Limit,
			Remaining: 0,
			ResetAt:   state.ResetAt,
			Reason:    ReasonLimitExceeded,
		}, state
	}

	state.Count++
	return CheckResult{
		Allowed:   true,
		Limit:     cfg.Limit,
		Remaining: cfg.Limit - state.Count,
		ResetAt:   state.ResetAt,
	}, state
}

// CalculateDelay returns how long to wait before retrying.
// This is a PURE function.
func CalculateDelay(result CheckResult, now time.Time) time.Duration {
	if result.Allowed {
		return 0
	}
	delay := result.ResetAt.Sub(now)
	if delay < 0 {
		return 0
	}
	return delay
}

// Expired reports whether a stored window can be discarded at now.
func Expired(state WindowState, now time.Time) bool {
	return !now.Before(state.ResetAt)
}
