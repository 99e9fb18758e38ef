// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

// Package registry holds the live content state: the in-memory post and
// story collections, their persistence, and the serialized mutation paths
// that drive the event feed.
//
// Concurrency model: one mutex per entity kind. Every mutation of a kind
// runs under that kind's mutex, and its feed broadcast happens inside the
// same critical section, so for a given kind the broadcast order always
// matches the mutation order. Reads take the same mutex briefly and return
// deep copies; callers never observe registry-owned memory.
//
// Persistence is best-effort. The registry is the source of truth while the
// process runs; a store failure is logged and counted but never fails the
// mutation or suppresses its broadcast.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/moodshare/moodshare/internal/hub"
	"github.com/moodshare/moodshare/internal/logging"
	"github.com/moodshare/moodshare/internal/metrics"
	"github.com/moodshare/moodshare/internal/models"
	"github.com/moodshare/moodshare/internal/store"
)

// DefaultStoryTTL is the story lifetime applied when the caller supplies no
// positive lifetime of its own.
const DefaultStoryTTL = 24 * time.Hour

// Broadcaster fans events out to feed subscribers. *hub.Hub satisfies it;
// tests substitute a recorder.
type Broadcaster interface {
	Broadcast(name string, data interface{})
}

// Registry owns the post and story collections.
type Registry struct {
	postsMu   sync.Mutex
	storiesMu sync.Mutex

	// Both slices are ordered newest-first.
	posts   []models.Post
	stories []models.Story

	store  store.Store
	events Broadcaster
	now    func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source. Tests use it to pin expiry math.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New creates a registry backed by st, broadcasting mutations through
// events. A nil events broadcaster disables the feed, which is only useful
// in tests.
func New(st store.Store, events Broadcaster, opts ...Option) *Registry {
	r := &Registry{
		store:  st,
		events: events,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load seeds the in-memory collections from the store. Entities that fail to
// decode are skipped with a warning rather than aborting startup. Expired
// entities are loaded as-is; the first sweep retires them with the usual
// content_expired broadcast.
func (r *Registry) Load() error {
	rawPosts, err := r.store.Load(models.KindPost)
	if err != nil {
		return fmt.Errorf("loading posts: %w", err)
	}
	rawStories, err := r.store.Load(models.KindStory)
	if err != nil {
		return fmt.Errorf("loading stories: %w", err)
	}

	r.postsMu.Lock()
	r.posts = r.posts[:0]
	for _, raw := range rawPosts {
		var p models.Post
		if err := json.Unmarshal(raw, &p); err != nil {
			logging.Warn().Err(err).Str("kind", string(models.KindPost)).
				Msg("skipping undecodable stored entity")
			continue
		}
		r.posts = append(r.posts, p)
	}
	sort.Slice(r.posts, func(i, j int) bool {
		return r.posts[i].CreatedAt.After(r.posts[j].CreatedAt)
	})
	nPosts := len(r.posts)
	metrics.ContentActive.WithLabelValues(string(models.KindPost)).Set(float64(nPosts))
	r.postsMu.Unlock()

	r.storiesMu.Lock()
	r.stories = r.stories[:0]
	for _, raw := range rawStories {
		var s models.Story
		if err := json.Unmarshal(raw, &s); err != nil {
			logging.Warn().Err(err).Str("kind", string(models.KindStory)).
				Msg("skipping undecodable stored entity")
			continue
		}
		r.stories = append(r.stories, s)
	}
	sort.Slice(r.stories, func(i, j int) bool {
		return r.stories[i].CreatedAt.After(r.stories[j].CreatedAt)
	})
	nStories := len(r.stories)
	metrics.ContentActive.WithLabelValues(string(models.KindStory)).Set(float64(nStories))
	r.storiesMu.Unlock()

	logging.Info().Int("posts", nPosts).Int("stories", nStories).
		Msg("content registry loaded")
	return nil
}

// Freeze runs fn while holding both kind mutexes, passing it consistent
// deep copies of the active posts and stories. No mutation of either kind
// can start or broadcast while fn runs; the feed handler uses this to make
// snapshot-then-subscribe atomic.
func (r *Registry) Freeze(fn func(posts []models.Post, stories []models.Story)) {
	// Lock order: posts before stories, everywhere both are held.
	r.postsMu.Lock()
	defer r.postsMu.Unlock()
	r.storiesMu.Lock()
	defer r.storiesMu.Unlock()

	fn(r.activePostsLocked(), r.activeStoriesLocked())
}

// ActivePosts returns the non-expired posts, newest first.
func (r *Registry) ActivePosts() []models.Post {
	r.postsMu.Lock()
	defer r.postsMu.Unlock()
	return r.activePostsLocked()
}

// ActiveStories returns the non-expired stories, newest first.
func (r *Registry) ActiveStories() []models.Story {
	r.storiesMu.Lock()
	defer r.storiesMu.Unlock()
	return r.activeStoriesLocked()
}

func (r *Registry) activePostsLocked() []models.Post {
	now := r.now()
	out := make([]models.Post, 0, len(r.posts))
	for i := range r.posts {
		if r.posts[i].Expired(now) {
			continue
		}
		out = append(out, clonePost(&r.posts[i]))
	}
	return out
}

func (r *Registry) activeStoriesLocked() []models.Story {
	now := r.now()
	out := make([]models.Story, 0, len(r.stories))
	for i := range r.stories {
		if r.stories[i].Expired(now) {
			continue
		}
		out = append(out, r.stories[i])
	}
	return out
}

// clonePost copies a post including its comments slice, so callers can hold
// the result outside the registry lock.
func clonePost(p *models.Post) models.Post {
	out := *p
	out.Comments = make([]models.Comment, len(p.Comments))
	copy(out.Comments, p.Comments)
	return out
}

// newID returns a time-ordered unique id. V7 generation only fails when the
// entropy source does, in which case a V4 is still unique.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// persistUpsert writes an entity to the store. Failures degrade to
// in-memory-only operation.
func (r *Registry) persistUpsert(kind models.Kind, id string, entity interface{}) {
	if err := r.store.Upsert(kind, id, entity); err != nil {
		metrics.RecordStoreError("upsert", string(kind))
		logging.Warn().Err(err).Str("kind", string(kind)).Str("id", id).
			Msg("store upsert failed, continuing in memory")
	}
}

// persistRemove deletes an entity from the store. Failures degrade to
// in-memory-only operation.
func (r *Registry) persistRemove(kind models.Kind, id string) {
	if err := r.store.Remove(kind, id); err != nil {
		metrics.RecordStoreError("remove", string(kind))
		logging.Warn().Err(err).Str("kind", string(kind)).Str("id", id).
			Msg("store remove failed, continuing in memory")
	}
}

// broadcast emits a feed event if a broadcaster is attached. Callers invoke
// it while holding the mutated kind's mutex so broadcast order matches
// mutation order.
func (r *Registry) broadcast(name string, data interface{}) {
	if r.events == nil {
		return
	}
	r.events.Broadcast(name, data)
}

// RemoveCause records why an entity left the registry. It selects the feed
// event and labels the removal metric.
type RemoveCause string

const (
	CauseExpired RemoveCause = "expired"
	CauseAdmin   RemoveCause = "admin"
)

func (c RemoveCause) event() string {
	if c == CauseExpired {
		return hub.EventContentExpired
	}
	return hub.EventContentDeleted
}
