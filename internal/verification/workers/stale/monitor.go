// Package stale reports pending verification requests that the responder has
// not answered in time. It never changes a request.
package stale

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PendingCounter counts pending requests created before a cutoff.
type PendingCounter interface {
	CountPendingCreatedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Gauge receives the latest stale count.
type Gauge interface {
	SetPendingStale(n int)
}

// Monitor periodically counts stale pending requests.
type Monitor struct {
	requests   PendingCounter
	gauge      Gauge
	staleAfter time.Duration
	interval   time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Monitor)

// WithInterval overrides the scan interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(m *Monitor) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

// WithStaleAfter overrides the age at which a pending request counts as stale.
func WithStaleAfter(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.staleAfter = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

func New(requests PendingCounter, gauge Gauge, opts ...Option) (*Monitor, error) {
	if requests == nil {
		return nil, fmt.Errorf("request store is required")
	}
	m := &Monitor{
		requests:   requests,
		gauge:      gauge,
		staleAfter: time.Hour,
		interval:   time.Minute,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Start scans periodically until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := m.RunOnce(ctx); err != nil {
				m.logger.ErrorContext(ctx, "stale request scan failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce counts stale pending requests, publishes the count and returns it.
func (m *Monitor) RunOnce(ctx context.Context) (int, error) {
	cutoff := m.now().Add(-m.staleAfter)
	n, err := m.requests.CountPendingCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("count stale pending requests: %w", err)
	}
	if m.gauge != nil {
		m.gauge.SetPendingStale(n)
	}
	if n > 0 {
		m.logger.WarnContext(ctx, "pending verification requests awaiting responder",
			"count", n,
			"older_than", m.staleAfter.String(),
		)
	}
	return n, nil
}
