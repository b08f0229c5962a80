// Package ratelimit throttles MCP tool calls with one token bucket per tool.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLimited is matched by every error CheckLimit returns.
var ErrLimited = errors.New("rate limit exceeded")

// Limiter is a per-key token bucket. Each key starts with a full burst and
// refills at rate tokens per second. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   int
	nowFunc func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewLimiter creates a limiter refilling rate tokens per second up to burst.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Allow takes a token for key and reports whether one was available.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(key)
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Tokens reports how many whole tokens key has left.
func (l *Limiter) Tokens(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int(l.refill(key).tokens)
}

// refill tops up key's bucket for the time elapsed. Caller holds the lock.
func (l *Limiter) refill(key string) *bucket {
	now := l.nowFunc()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), last: now}
		l.buckets[key] = b
		return b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(b.tokens+l.rate*elapsed, float64(l.burst))
		b.last = now
	}
	return b
}

// ToolLimiters maps tool names to their limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters returns the default limits for the fibertract MCP tools.
// Ticking and inspection are cheap; snapshot writes and restores touch the
// store and are held tighter.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"fibertract_tick":     NewLimiter(20.0, 50),     // 1200/minute, burst 50
		"fibertract_inspect":  NewLimiter(5.0, 20),      // 300/minute, burst 20
		"fibertract_modulate": NewLimiter(2.0, 10),      // 120/minute, burst 10
		"fibertract_snapshot": NewLimiter(10.0/60.0, 3), // 10/minute, burst 3
		"fibertract_restore":  NewLimiter(5.0/60.0, 2),  // 5/minute, burst 2
		"fibertract_presets":  NewLimiter(1.0, 10),      // 60/minute, burst 10
	}
}

// Set replaces the limiter for tool.
func (tl ToolLimiters) Set(tool string, rate float64, burst int) {
	tl[tool] = NewLimiter(rate, burst)
}

// CheckLimit takes a token for toolName. Tools without a limiter are never
// limited. The returned error matches ErrLimited.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if !limiter.Allow(toolName) {
		return fmt.Errorf("%w for %s, please try again shortly", ErrLimited, toolName)
	}
	return nil
}
