package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/esdeck/esdeck-api/internal/observability/metrics"
	"github.com/esdeck/esdeck-api/internal/observability/statsd"
	"github.com/esdeck/esdeck-api/internal/ports"
)

// DefaultSweepInterval is how often the sweeper removes expired sessions and
// quiet rate-limiter records.
const DefaultSweepInterval = 5 * time.Minute

// SweeperOptions groups dependencies for Sweeper.
type SweeperOptions struct {
	Sessions ports.SessionStore // Required: store to sweep
	Limiter  ports.RateLimiter  // Required: limiter to sweep
	Interval time.Duration      // Optional: defaults to DefaultSweepInterval
	Logger   *slog.Logger       // Optional: structured logger
	Metrics  statsd.Sink        // Optional: metrics sink (StatsD-compatible)
}

// Sweeper periodically removes expired sessions and stale rate-limiter
// records. Sessions already self-expire on access; the sweeper exists so
// abandoned ones do not pile up in memory.
type Sweeper struct {
	sessions ports.SessionStore
	limiter  ports.RateLimiter
	interval time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewSweeper constructs a new Sweeper.
func NewSweeper(opts SweeperOptions) (*Sweeper, error) {
	if opts.Sessions == nil {
		return nil, errors.New("SessionStore is required")
	}
	if opts.Limiter == nil {
		return nil, errors.New("RateLimiter is required")
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{
		sessions: opts.Sessions,
		limiter:  opts.Limiter,
		interval: interval,
		logger:   logger.With("component", "sweeper"),
		metrics:  opts.Metrics,
	}, nil
}

// Run starts the sweep loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting sweeper", "interval", s.interval)

	// Jitter so replicas started together do not sweep in lockstep.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "sweeper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				// Keep running; the next tick gets another chance.
				s.logger.ErrorContext(ctx, "sweep failed", "error", err)
			}
		}
	}
}

// Sweep performs one cleanup pass and emits the removal counts.
func (s *Sweeper) Sweep(ctx context.Context) error {
	sessionsRemoved, err := s.sessions.CleanupExpired(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("cleanup expired sessions: %w", err)
	}

	limiterRemoved := s.limiter.Cleanup()

	metrics.EmitSweep(s.metrics, sessionsRemoved, limiterRemoved)
	if sessionsRemoved > 0 || limiterRemoved > 0 {
		s.logger.InfoContext(ctx, "sweep completed",
			"sessions_removed", sessionsRemoved,
			"limiter_removed", limiterRemoved,
		)
	}
	return nil
}

// waitWithJitter delays up to 10% of the interval before the first tick.
func (s *Sweeper) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// If crypto/rand fails, skip jitter rather than failing startup.
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)))

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}
