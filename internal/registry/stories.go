// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package registry

import (
	"fmt"

	"github.com/moodshare/moodshare/internal/hub"
	"github.com/moodshare/moodshare/internal/logging"
	"github.com/moodshare/moodshare/internal/metrics"
	"github.com/moodshare/moodshare/internal/models"
)

// CreateStoryInput carries the attributes for a new story.
type CreateStoryInput struct {
	Text      string
	Emoji     string
	Color     string
	TextColor string
	Lifetime  Lifetime
}

// CreateStory creates a story at the head of the story rail and broadcasts
// new_story. Stories always expire: a non-positive lifetime falls back to
// the 24h default instead of producing permanent content.
func (r *Registry) CreateStory(in CreateStoryInput) (models.Story, error) {
	if in.Text == "" && in.Emoji == "" {
		return models.Story{}, fmt.Errorf("%w: story needs text or an emoji", ErrValidation)
	}

	r.storiesMu.Lock()
	defer r.storiesMu.Unlock()

	now := r.now()
	ttl := in.Lifetime.Total()
	if ttl <= 0 {
		ttl = DefaultStoryTTL
	}

	story := models.Story{
		ID:        newID(),
		Text:      in.Text,
		Emoji:     in.Emoji,
		Color:     in.Color,
		TextColor: in.TextColor,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	r.stories = append([]models.Story{story}, r.stories...)
	r.persistUpsert(models.KindStory, story.ID, &story)
	metrics.ContentCreated.WithLabelValues(string(models.KindStory)).Inc()
	metrics.ContentActive.WithLabelValues(string(models.KindStory)).Set(float64(len(r.stories)))

	r.broadcast(hub.EventNewStory, story)
	logging.Debug().Str("story_id", story.ID).Time("expires_at", story.ExpiresAt).
		Msg("story created")
	return story, nil
}

// RemoveStory removes a story, persists the removal and broadcasts the
// cause's event. Like RemovePost it is idempotent: only the call that
// performs the removal broadcasts.
func (r *Registry) RemoveStory(id string, cause RemoveCause) (removed bool) {
	r.storiesMu.Lock()
	defer r.storiesMu.Unlock()
	return r.removeStoryLocked(id, cause)
}

func (r *Registry) removeStoryLocked(id string, cause RemoveCause) bool {
	idx := -1
	for i := range r.stories {
		if r.stories[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	r.stories = append(r.stories[:idx], r.stories[idx+1:]...)
	r.persistRemove(models.KindStory, id)
	metrics.ContentRemoved.WithLabelValues(string(models.KindStory), string(cause)).Inc()
	metrics.ContentActive.WithLabelValues(string(models.KindStory)).Set(float64(len(r.stories)))
	r.broadcast(cause.event(), hub.ContentRef{Kind: models.KindStory, ID: id})
	logging.Debug().Str("story_id", id).Str("cause", string(cause)).Msg("story removed")
	return true
}
