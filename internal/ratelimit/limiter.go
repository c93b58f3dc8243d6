// Package ratelimit throttles MCP tool calls with per-key token buckets.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLimited is returned when a call exceeds its tool's budget.
var ErrLimited = errors.New("rate limit exceeded")

// Limiter is a token bucket per key. Every key starts with a full burst and
// refills at a fixed rate. It is safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	perSecond float64
	burst     float64
	now       func() time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// NewLimiter allows perMinute calls per key with bursts of up to burst.
func NewLimiter(perMinute float64, burst int) *Limiter {
	return &Limiter{
		buckets:   make(map[string]*bucket),
		perSecond: perMinute / 60,
		burst:     float64(burst),
		now:       time.Now,
	}
}

// Allow spends one token for key and reports whether one was available.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, seen: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.seen).Seconds(); elapsed > 0 {
		b.tokens = min(l.burst, b.tokens+elapsed*l.perSecond)
		b.seen = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// ToolLimiters maps MCP tool names to their limiters.
type ToolLimiters map[string]*Limiter

// DefaultToolLimiters returns the limits the MCP server applies. Effect
// queries are cheap but a runaway simulation loop can issue thousands.
func DefaultToolLimiters() ToolLimiters {
	return ToolLimiters{
		"glucosim_scenarios":     NewLimiter(30, 5),
		"glucosim_latest":        NewLimiter(600, 60),
		"glucosim_momentum":      NewLimiter(600, 60),
		"glucosim_counteraction": NewLimiter(300, 30),
	}
}

// Check spends a token from tool's bucket for scenario so that one busy
// scenario cannot starve the others. Tools without a limiter always pass.
func (t ToolLimiters) Check(tool, scenario string) error {
	l, ok := t[tool]
	if !ok {
		return nil
	}
	if !l.Allow(scenario) {
		return fmt.Errorf("%w for %s on %s, retry shortly", ErrLimited, tool, scenario)
	}
	return nil
}
