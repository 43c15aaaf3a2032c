// Package service implements the per-officer hourly admission check.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/teddybearwork/pickme/internal/ratelimit/metrics"
	"github.com/teddybearwork/pickme/internal/ratelimit/models"
	"github.com/teddybearwork/pickme/internal/ratelimit/ports"
	id "github.com/teddybearwork/pickme/pkg/domain"
)

// WindowStore aliases the ports interface so callers don't import ports
// directly.
type WindowStore = ports.WindowStore

// Limiter enforces a fixed-window hourly query cap per officer. The window is
// the wall-clock hour containing the request: counters roll over on the hour
// boundary rather than sliding.
type Limiter struct {
	store   WindowStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

func New(store WindowStore, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("window store is required")
	}
	l := &Limiter{store: store}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Admit consumes one slot from the officer's hourly budget. When the budget
// is exhausted the overshoot is rolled back so a rejected attempt does not
// consume quota. Store failures fail open: a broken counter backend must not
// take query dispatch down with it.
func (l *Limiter) Admit(ctx context.Context, officerID id.OfficerID, now time.Time, limit int) (*models.Decision, error) {
	bucket := now.Truncate(time.Hour)
	resetAt := bucket.Add(time.Hour)

	count, err := l.store.Increment(ctx, officerID, bucket)
	if err != nil {
		if l.metrics != nil {
			l.metrics.IncrementStoreFailures()
		}
		if l.logger != nil {
			l.logger.WarnContext(ctx, "rate limit store unavailable, failing open",
				"officer_id", officerID.String(), "error", err)
		}
		return &models.Decision{Allowed: true, Remaining: limit, Limit: limit, ResetAt: resetAt}, nil
	}

	if count > limit {
		if rollbackErr := l.store.Decrement(ctx, officerID, bucket); rollbackErr != nil && l.logger != nil {
			l.logger.WarnContext(ctx, "failed to roll back rate counter overshoot",
				"officer_id", officerID.String(), "error", rollbackErr)
		}
		if l.metrics != nil {
			l.metrics.IncrementRejected()
		}
		return &models.Decision{Allowed: false, Remaining: 0, Limit: limit, ResetAt: resetAt}, nil
	}

	if l.metrics != nil {
		l.metrics.IncrementAllowed()
	}
	return &models.Decision{
		Allowed:   true,
		Remaining: limit - count,
		Limit:     limit,
		ResetAt:   resetAt,
	}, nil
}

// Usage reports the officer's consumed slots in the current hour.
func (l *Limiter) Usage(ctx context.Context, officerID id.OfficerID, now time.Time) (int, error) {
	return l.store.Count(ctx, officerID, now.Truncate(time.Hour))
}

// Reset clears the officer's counter for the current hour. Admin use only.
func (l *Limiter) Reset(ctx context.Context, officerID id.OfficerID, now time.Time) error {
	return l.store.Reset(ctx, officerID, now.Truncate(time.Hour))
}
