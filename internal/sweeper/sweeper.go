// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

// Package sweeper retires expired content. A single timer-driven loop asks
// the registry to remove everything whose expiry time has passed; the
// registry broadcasts content_expired for each removal and guarantees the
// event fires at most once per entity, however many sweeps or concurrent
// deletions race for it.
package sweeper

import (
	"context"
	"time"

	"github.com/moodshare/moodshare/internal/hub"
	"github.com/moodshare/moodshare/internal/logging"
	"github.com/moodshare/moodshare/internal/metrics"
)

// DefaultInterval is used when the configured sweep interval is not positive.
const DefaultInterval = 30 * time.Second

// Registry is the slice of the content registry the sweeper needs.
type Registry interface {
	SweepExpired(now time.Time) []hub.ContentRef
}

// Sweeper periodically removes expired posts and stories.
type Sweeper struct {
	registry Registry
	interval time.Duration
	now      func() time.Time
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithClock overrides the time source used to judge expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// New creates a sweeper over the registry, ticking at interval.
func New(registry Registry, interval time.Duration, opts ...Option) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Sweeper{
		registry: registry,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve implements suture.Service. It runs one immediate sweep so content
// that expired while the process was down is retired at startup, then sweeps
// on every tick until the context is canceled.
func (s *Sweeper) Serve(ctx context.Context) error {
	logging.Info().Str("component", "sweeper").Dur("interval", s.interval).
		Msg("expiry sweeper started")

	s.Sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("component", "sweeper").Msg("expiry sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs a single sweep pass and returns how many entities it removed.
func (s *Sweeper) Sweep() int {
	start := time.Now()
	removed := s.registry.SweepExpired(s.now())
	metrics.RecordSweep(time.Since(start), len(removed))

	if len(removed) > 0 {
		logging.Debug().Int("removed", len(removed)).Msg("sweep retired expired content")
	}
	return len(removed)
}

// String implements fmt.Stringer for supervisor logging.
func (s *Sweeper) String() string {
	return "expiry-sweeper"
}
