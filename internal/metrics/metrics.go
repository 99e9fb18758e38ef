// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

// Package metrics provides Prometheus instrumentation for the Moodshare
// core: content lifecycle, event fan-out, expiry sweeps, moderation, the
// durable store and the HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Content lifecycle
	ContentCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodshare_content_created_total",
			Help: "Total number of entities created",
		},
		[]string{"kind"}, // posts, stories, reports
	)

	ContentRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodshare_content_removed_total",
			Help: "Total number of entities removed",
		},
		[]string{"kind", "cause"}, // cause: expired, admin, dismissed
	)

	ContentActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodshare_content_active",
			Help: "Current number of live entities held by the registry",
		},
		[]string{"kind"},
	)

	// Event broadcast hub
	SubscribersConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moodshare_subscribers_connected",
			Help: "Current number of connected feed subscribers",
		},
	)

	SubscribersDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodshare_subscribers_dropped_total",
			Help: "Total number of subscribers dropped for not draining their buffer",
		},
	)

	EventsBroadcast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodshare_events_broadcast_total",
			Help: "Total number of events delivered to subscriber buffers",
		},
		[]string{"event"},
	)

	// Expiry sweeper
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moodshare_sweep_duration_seconds",
			Help:    "Duration of expiry sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SweepRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodshare_sweep_removed_total",
			Help: "Total number of entities removed by the expiry sweeper",
		},
	)

	// Durable store
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodshare_store_errors_total",
			Help: "Total number of durable store failures (operation proceeded in memory)",
		},
		[]string{"operation", "kind"}, // operation: upsert, remove, load
	)

	// Moderation
	ReportsThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodshare_reports_throttled_total",
			Help: "Total number of report submissions rejected by the per-reporter throttle",
		},
	)

	// HTTP surface
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodshare_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodshare_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordStoreError counts a durable store failure for the given operation.
func RecordStoreError(operation, kind string) {
	StoreErrors.WithLabelValues(operation, kind).Inc()
}

// RecordSweep records one sweep pass.
func RecordSweep(duration time.Duration, removed int) {
	SweepDuration.Observe(duration.Seconds())
	SweepRemoved.Add(float64(removed))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
