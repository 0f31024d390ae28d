// Package ratelimit slows down credential guessing with a sliding-window
// failure counter per identifier. Callers track usernames and source IPs as
// separate identifiers, so both single-source brute force and distributed
// credential stuffing hit a wall.
package ratelimit

import (
	"sync"
	"time"

	"github.com/esdeck/esdeck-api/internal/ports"
)

// Config holds the rate-limit thresholds.
type Config struct {
	// MaxAttempts is the number of in-window failures that triggers a block.
	MaxAttempts int
	// Window is how far back failures count toward the threshold.
	Window time.Duration
	// BlockDuration is how long an identifier stays blocked once tripped.
	BlockDuration time.Duration
}

// DefaultConfig mirrors the shipped defaults: 5 failures in 5 minutes blocks
// for 15 minutes.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   5,
		Window:        5 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

type attemptRecord struct {
	attempts     []time.Time
	blockedUntil time.Time
}

// Limiter is an in-memory sliding-window rate limiter. It is safe for
// concurrent use. Records for quiet identifiers are dropped by Cleanup.
type Limiter struct {
	mu      sync.Mutex
	records map[string]*attemptRecord

	cfg Config
	now func() time.Time
}

var _ ports.RateLimiter = (*Limiter)(nil)

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock overrides the limiter's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter. Non-positive config fields fall back to defaults.
func New(cfg Config, opts ...Option) *Limiter {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = def.BlockDuration
	}

	l := &Limiter{
		records: make(map[string]*attemptRecord),
		cfg:     cfg,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordFailure registers a failed attempt for the identifier and reports
// whether this attempt tripped the block threshold. Failures are recorded for
// unknown usernames too; skipping them would let an attacker enumerate
// accounts by observing rate-limit behavior.
func (l *Limiter) RecordFailure(id string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		rec = &attemptRecord{}
		l.records[id] = rec
	}

	rec.attempts = pruneBefore(rec.attempts, now.Add(-l.cfg.Window))
	rec.attempts = append(rec.attempts, now)

	if len(rec.attempts) >= l.cfg.MaxAttempts {
		rec.blockedUntil = now.Add(l.cfg.BlockDuration)
		return true
	}
	return false
}

// IsLimited reports whether the identifier is currently blocked.
func (l *Limiter) IsLimited(id string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	return ok && rec.blockedUntil.After(now)
}

// RecordSuccess clears the identifier's failure history and lifts any block.
// A successful login proves the caller knows the credential; holding a stale
// failure streak against them would turn into a permanent lockout.
func (l *Limiter) RecordSuccess(id string) {
	l.mu.Lock()
	delete(l.records, id)
	l.mu.Unlock()
}

// AttemptCount returns the number of failures inside the current window.
func (l *Limiter) AttemptCount(id string) int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		return 0
	}
	rec.attempts = pruneBefore(rec.attempts, now.Add(-l.cfg.Window))
	return len(rec.attempts)
}

// BlockRemaining returns how much longer the identifier stays blocked.
func (l *Limiter) BlockRemaining(id string) (time.Duration, bool) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok || !rec.blockedUntil.After(now) {
		return 0, false
	}
	return rec.blockedUntil.Sub(now), true
}

// Unblock lifts a block without clearing attempt history. Operator override.
func (l *Limiter) Unblock(id string) {
	l.mu.Lock()
	if rec, ok := l.records[id]; ok {
		rec.blockedUntil = time.Time{}
	}
	l.mu.Unlock()
}

// Cleanup drops identifiers that are neither blocked nor have in-window
// attempts, and reports how many were removed.
func (l *Limiter) Cleanup() int {
	now := l.now()
	cutoff := now.Add(-l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, rec := range l.records {
		rec.attempts = pruneBefore(rec.attempts, cutoff)
		if len(rec.attempts) == 0 && !rec.blockedUntil.After(now) {
			delete(l.records, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked identifiers. Used by tests.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

func pruneBefore(attempts []time.Time, cutoff time.Time) []time.Time {
	kept := attempts[:0]
	for _, at := range attempts {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	return kept
}
