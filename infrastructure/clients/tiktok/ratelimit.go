package tiktok

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Values at or above this are read as unix seconds, anything smaller as seconds until reset.
const epochThreshold = 1_000_000_000

type RateLimitInfo struct {
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	Known     bool      `json:"known"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RateLimiter is a process-local soft limiter fed from response headers.
// State changes only through Update.
type RateLimiter struct {
	mu    sync.Mutex
	state RateLimitInfo

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{now: time.Now, sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *RateLimiter) Info() RateLimitInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Update records quota headers from a response. Missing or unparsable headers leave the state untouched.
func (r *RateLimiter) Update(h http.Header, status int, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	touched := false
	if v := h.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.state.Remaining = n
			touched = true
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			r.state.ResetAt = resetTime(n, now)
			touched = true
		}
	}
	if status == http.StatusTooManyRequests {
		r.state.Remaining = 0
		if v := h.Get("Retry-After"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				r.state.ResetAt = now.Add(time.Duration(n) * time.Second)
			}
		}
		touched = true
	}
	if touched {
		r.state.Known = true
		r.state.UpdatedAt = now
	}
}

func resetTime(n int64, now time.Time) time.Time {
	if n >= epochThreshold {
		return time.Unix(n, 0)
	}
	return now.Add(time.Duration(n) * time.Second)
}

// Delay is how long a caller must wait before the next request.
func (r *RateLimiter) Delay(now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.state.Known || r.state.Remaining > 0 {
		return 0
	}
	if d := r.state.ResetAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Wait blocks until the tracked quota resets, or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	d := r.Delay(r.now())
	if d <= 0 {
		return nil
	}
	return r.sleep(ctx, d)
}
