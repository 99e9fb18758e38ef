// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package registry

import (
	"time"

	"github.com/moodshare/moodshare/internal/hub"
	"github.com/moodshare/moodshare/internal/models"
)

// SweepExpired removes every post and story whose expiry time has passed at
// now, broadcasting content_expired for each. Removal goes through the same
// idempotent paths as admin deletion, so an entity deleted concurrently by a
// moderator is skipped silently instead of producing a second event.
// It returns references to the entities this call removed.
func (r *Registry) SweepExpired(now time.Time) []hub.ContentRef {
	var removed []hub.ContentRef

	r.postsMu.Lock()
	var expiredPosts []string
	for i := range r.posts {
		if r.posts[i].Expired(now) {
			expiredPosts = append(expiredPosts, r.posts[i].ID)
		}
	}
	for _, id := range expiredPosts {
		if r.removePostLocked(id, CauseExpired) {
			removed = append(removed, hub.ContentRef{Kind: models.KindPost, ID: id})
		}
	}
	r.postsMu.Unlock()

	r.storiesMu.Lock()
	var expiredStories []string
	for i := range r.stories {
		if r.stories[i].Expired(now) {
			expiredStories = append(expiredStories, r.stories[i].ID)
		}
	}
	for _, id := range expiredStories {
		if r.removeStoryLocked(id, CauseExpired) {
			removed = append(removed, hub.ContentRef{Kind: models.KindStory, ID: id})
		}
	}
	r.storiesMu.Unlock()

	return removed
}
