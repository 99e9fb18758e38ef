// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package services

import (
	"context"
	"time"

	"github.com/moodshare/moodshare/internal/logging"
)

// ValueLogGC matches the store's garbage collection hook.
type ValueLogGC interface {
	RunGC() error
}

// BadgerGCService periodically runs the store's value log garbage
// collection. Badger never reclaims value log space on its own; without
// this loop an ephemeral-content workload grows the data directory without
// bound.
type BadgerGCService struct {
	store    ValueLogGC
	interval time.Duration
}

// NewBadgerGCService creates the GC loop. Non-positive intervals get 5m.
func NewBadgerGCService(store ValueLogGC, interval time.Duration) *BadgerGCService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &BadgerGCService{store: store, interval: interval}
}

// Serve implements suture.Service.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.store.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("badger value log GC failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *BadgerGCService) String() string {
	return "badger-gc"
}
