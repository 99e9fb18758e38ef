// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

// Package moderation implements the report queue: users flag posts or
// comments, admins review the queue and either dismiss reports or force
// delete the offending content. Report events travel on the admin-scoped
// feed only; regular subscribers never learn a report exists.
package moderation

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/moodshare/moodshare/internal/hub"
	"github.com/moodshare/moodshare/internal/logging"
	"github.com/moodshare/moodshare/internal/metrics"
	"github.com/moodshare/moodshare/internal/models"
	"github.com/moodshare/moodshare/internal/registry"
	"github.com/moodshare/moodshare/internal/store"
)

// maxReasonLength caps a report reason; longer input is truncated, not
// rejected.
const maxReasonLength = 1000

// DefaultReportsPerMinute is the per-reporter submission budget applied when
// configuration does not set one.
const DefaultReportsPerMinute = 5

var (
	// ErrForbidden indicates the actor lacks moderation rights.
	ErrForbidden = errors.New("forbidden")

	// ErrThrottled indicates the reporter exhausted their submission budget.
	ErrThrottled = errors.New("report rate limit exceeded")

	// ErrNotFound indicates the report id does not resolve.
	ErrNotFound = errors.New("report not found")
)

// Actor is the identity attempting a moderation operation. Admin is
// established by the transport layer (shared-secret header); the queue only
// consults the predicate.
type Actor struct {
	models.Author
	Admin bool
}

// ContentRegistry is the slice of the content registry the queue needs:
// resolving live posts for report validation and removing them on force
// delete.
type ContentRegistry interface {
	GetPost(id string) (models.Post, error)
	RemovePost(id string, cause registry.RemoveCause) bool
}

// AdminBroadcaster delivers events to admin feed subscribers. *hub.Hub
// satisfies it.
type AdminBroadcaster interface {
	BroadcastAdmin(name string, data interface{})
}

// Queue is the moderation report queue. Mutations are serialized under a
// single mutex; persistence is best-effort, matching the content registry.
type Queue struct {
	mu      sync.Mutex
	reports []models.Report // newest-first

	registry ContentRegistry
	store    store.Store
	events   AdminBroadcaster

	isAdmin func(Actor) bool
	now     func() time.Time

	limitMu     sync.Mutex
	limiters    map[string]*rate.Limiter
	reportLimit rate.Limit
	reportBurst int
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// WithAdminCheck replaces the default admin predicate.
func WithAdminCheck(fn func(Actor) bool) Option {
	return func(q *Queue) { q.isAdmin = fn }
}

// WithReportsPerMinute sets the per-reporter submission budget.
func WithReportsPerMinute(n int) Option {
	return func(q *Queue) {
		if n < 1 {
			n = DefaultReportsPerMinute
		}
		q.reportLimit = rate.Limit(float64(n) / 60)
		q.reportBurst = n
	}
}

// New creates a moderation queue over the given registry, store and admin
// feed.
func New(reg ContentRegistry, st store.Store, events AdminBroadcaster, opts ...Option) *Queue {
	q := &Queue{
		registry:    reg,
		store:       st,
		events:      events,
		isAdmin:     func(a Actor) bool { return a.Admin },
		now:         time.Now,
		limiters:    make(map[string]*rate.Limiter),
		reportLimit: rate.Limit(float64(DefaultReportsPerMinute) / 60),
		reportBurst: DefaultReportsPerMinute,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Load seeds the queue from the store. Undecodable entries are skipped with
// a warning.
func (q *Queue) Load() error {
	raw, err := q.store.Load(models.KindReport)
	if err != nil {
		return fmt.Errorf("loading reports: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.reports = q.reports[:0]
	for _, b := range raw {
		var r models.Report
		if err := unmarshalReport(b, &r); err != nil {
			logging.Warn().Err(err).Str("kind", string(models.KindReport)).
				Msg("skipping undecodable stored entity")
			continue
		}
		q.reports = append(q.reports, r)
	}
	sortReportsNewestFirst(q.reports)
	metrics.ContentActive.WithLabelValues(string(models.KindReport)).Set(float64(len(q.reports)))

	logging.Info().Int("reports", len(q.reports)).Msg("moderation queue loaded")
	return nil
}

// Submit files a report against a live post, or against one of its
// comments when commentID is non-empty. The reason is truncated to
// maxReasonLength runes. Submissions are throttled per reporter id.
func (q *Queue) Submit(reporter models.Author, postID, commentID, reason string) (models.Report, error) {
	if reporter.ID == "" {
		return models.Report{}, fmt.Errorf("%w: reporter id is required", registry.ErrValidation)
	}
	if !q.allow(reporter.ID) {
		metrics.ReportsThrottled.Inc()
		return models.Report{}, ErrThrottled
	}

	post, err := q.registry.GetPost(postID)
	if err != nil {
		return models.Report{}, err
	}
	if commentID != "" {
		found := false
		for i := range post.Comments {
			if post.Comments[i].ID == commentID {
				found = true
				break
			}
		}
		if !found {
			return models.Report{}, fmt.Errorf("%w: comment %s on post %s",
				registry.ErrNotFound, commentID, postID)
		}
	}

	if runes := []rune(reason); len(runes) > maxReasonLength {
		reason = string(runes[:maxReasonLength])
	}

	report := models.Report{
		ID:        newReportID(),
		Reporter:  reporter,
		PostID:    postID,
		CommentID: commentID,
		Reason:    reason,
		CreatedAt: q.now(),
	}

	q.mu.Lock()
	q.reports = append([]models.Report{report}, q.reports...)
	q.persistUpsert(report)
	metrics.ContentCreated.WithLabelValues(string(models.KindReport)).Inc()
	metrics.ContentActive.WithLabelValues(string(models.KindReport)).Set(float64(len(q.reports)))
	q.broadcastAdmin(hub.EventReportCreated, report)
	q.mu.Unlock()

	logging.Info().Str("report_id", report.ID).Str("post_id", postID).
		Msg("report submitted")
	return report, nil
}

// List returns the open reports, newest first. Admin only.
func (q *Queue) List(actor Actor) ([]models.Report, error) {
	if !q.isAdmin(actor) {
		return nil, ErrForbidden
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.Report, len(q.reports))
	copy(out, q.reports)
	return out, nil
}

// Dismiss resolves a single report without touching the reported content.
// Admin only.
func (q *Queue) Dismiss(actor Actor, reportID string) error {
	if !q.isAdmin(actor) {
		return ErrForbidden
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	idx := -1
	for i := range q.reports {
		if q.reports[i].ID == reportID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, reportID)
	}

	report := q.reports[idx]
	q.reports = append(q.reports[:idx], q.reports[idx+1:]...)
	q.persistRemove(report.ID)
	metrics.ContentRemoved.WithLabelValues(string(models.KindReport), "dismissed").Inc()
	metrics.ContentActive.WithLabelValues(string(models.KindReport)).Set(float64(len(q.reports)))
	q.broadcastAdmin(hub.EventReportDismissed, report)

	logging.Info().Str("report_id", report.ID).Msg("report dismissed")
	return nil
}

// ForceDelete removes a post and resolves every report that references it.
// The post may already be gone (expired or deleted by another admin); the
// reports are resolved regardless, so the queue never accumulates entries
// pointing at content that no longer exists. Admin only.
//
// It returns whether this call removed the post and how many reports it
// resolved.
func (q *Queue) ForceDelete(actor Actor, postID string) (postRemoved bool, resolved int, err error) {
	if !q.isAdmin(actor) {
		return false, 0, ErrForbidden
	}

	postRemoved = q.registry.RemovePost(postID, registry.CauseAdmin)

	q.mu.Lock()
	kept := q.reports[:0]
	var dropped []models.Report
	for _, r := range q.reports {
		if r.PostID == postID {
			dropped = append(dropped, r)
			continue
		}
		kept = append(kept, r)
	}
	q.reports = kept
	for _, r := range dropped {
		q.persistRemove(r.ID)
		metrics.ContentRemoved.WithLabelValues(string(models.KindReport), "admin").Inc()
		q.broadcastAdmin(hub.EventReportDismissed, r)
	}
	metrics.ContentActive.WithLabelValues(string(models.KindReport)).Set(float64(len(q.reports)))
	q.mu.Unlock()

	logging.Info().Str("post_id", postID).Bool("post_removed", postRemoved).
		Int("reports_resolved", len(dropped)).Msg("force delete")
	return postRemoved, len(dropped), nil
}

// OpenCount returns the number of open reports.
func (q *Queue) OpenCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.reports)
}

// allow consumes one token from the reporter's limiter.
func (q *Queue) allow(reporterID string) bool {
	q.limitMu.Lock()
	defer q.limitMu.Unlock()

	lim, ok := q.limiters[reporterID]
	if !ok {
		lim = rate.NewLimiter(q.reportLimit, q.reportBurst)
		q.limiters[reporterID] = lim
	}
	return lim.Allow()
}

func (q *Queue) persistUpsert(report models.Report) {
	if err := q.store.Upsert(models.KindReport, report.ID, &report); err != nil {
		metrics.RecordStoreError("upsert", string(models.KindReport))
		logging.Warn().Err(err).Str("report_id", report.ID).
			Msg("store upsert failed, continuing in memory")
	}
}

func (q *Queue) persistRemove(id string) {
	if err := q.store.Remove(models.KindReport, id); err != nil {
		metrics.RecordStoreError("remove", string(models.KindReport))
		logging.Warn().Err(err).Str("report_id", id).
			Msg("store remove failed, continuing in memory")
	}
}

func (q *Queue) broadcastAdmin(name string, data interface{}) {
	if q.events == nil {
		return
	}
	q.events.BroadcastAdmin(name, data)
}

func newReportID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func unmarshalReport(b []byte, r *models.Report) error {
	return json.Unmarshal(b, r)
}

func sortReportsNewestFirst(reports []models.Report) {
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
}
