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

// CreatePostInput carries the attributes for a new post. Text and Emoji are
// the display fields; at least one must be non-empty.
type CreatePostInput struct {
	Text      string
	Emoji     string
	Color     string
	TextColor string
	Ephemeral bool
	Lifetime  Lifetime
}

// CreatePost validates the input, materializes the post at the head of the
// feed and broadcasts new_post. An ephemeral flag with a non-positive
// lifetime produces a permanent post.
func (r *Registry) CreatePost(in CreatePostInput) (models.Post, error) {
	if in.Text == "" && in.Emoji == "" {
		return models.Post{}, fmt.Errorf("%w: post needs text or an emoji", ErrValidation)
	}

	r.postsMu.Lock()
	defer r.postsMu.Unlock()

	now := r.now()
	post := models.Post{
		ID:        newID(),
		Text:      in.Text,
		Emoji:     in.Emoji,
		Color:     in.Color,
		TextColor: in.TextColor,
		Comments:  []models.Comment{},
		CreatedAt: now,
	}
	if total := in.Lifetime.Total(); in.Ephemeral && total > 0 {
		post.Ephemeral = true
		at := now.Add(total)
		post.ExpiresAt = &at
	}

	r.insertPostLocked(post)
	r.broadcast(hub.EventNewPost, clonePost(&post))
	logging.Debug().Str("post_id", post.ID).Bool("ephemeral", post.Ephemeral).
		Msg("post created")
	return clonePost(&post), nil
}

// CreatePinnedInput carries the attributes for an admin announcement post.
type CreatePinnedInput struct {
	Text      string
	Emoji     string
	Color     string
	TextColor string
	Label     string
}

// CreatePinned creates an admin announcement post. Pinned posts never expire
// and carry a banner label.
func (r *Registry) CreatePinned(in CreatePinnedInput) (models.Post, error) {
	if in.Text == "" && in.Emoji == "" {
		return models.Post{}, fmt.Errorf("%w: post needs text or an emoji", ErrValidation)
	}

	r.postsMu.Lock()
	defer r.postsMu.Unlock()

	post := models.Post{
		ID:          newID(),
		Text:        in.Text,
		Emoji:       in.Emoji,
		Color:       in.Color,
		TextColor:   in.TextColor,
		Comments:    []models.Comment{},
		Pinned:      true,
		PinnedLabel: in.Label,
		CreatedAt:   r.now(),
	}

	r.insertPostLocked(post)
	r.broadcast(hub.EventNewPost, clonePost(&post))
	logging.Info().Str("post_id", post.ID).Str("label", in.Label).Msg("pinned post created")
	return clonePost(&post), nil
}

// Repost duplicates a live post onto the head of the feed, stamping the
// copy with its provenance. Likes, comments, pins and expiry do not carry
// over; the repost is a fresh permanent post.
func (r *Registry) Repost(id string, by models.Author) (models.Post, error) {
	r.postsMu.Lock()
	defer r.postsMu.Unlock()

	src := r.findPostLocked(id)
	if src == nil {
		return models.Post{}, fmt.Errorf("%w: post %s", ErrNotFound, id)
	}

	post := models.Post{
		ID:           newID(),
		Text:         src.Text,
		Emoji:        src.Emoji,
		Color:        src.Color,
		TextColor:    src.TextColor,
		Comments:     []models.Comment{},
		RepostedFrom: src.ID,
		RepostedBy:   &by,
		CreatedAt:    r.now(),
	}

	r.insertPostLocked(post)
	r.broadcast(hub.EventNewPost, clonePost(&post))
	return clonePost(&post), nil
}

// EditPostInput holds the patchable post fields. Nil means "leave as is".
type EditPostInput struct {
	Text      *string
	Emoji     *string
	Color     *string
	TextColor *string
}

// EditPost applies a partial update to a live post, stamps EditedAt and
// broadcasts post_update. An edit that would blank both display fields is
// rejected.
func (r *Registry) EditPost(id string, in EditPostInput) (models.Post, error) {
	r.postsMu.Lock()
	defer r.postsMu.Unlock()

	post := r.findPostLocked(id)
	if post == nil {
		return models.Post{}, fmt.Errorf("%w: post %s", ErrNotFound, id)
	}

	text, emoji := post.Text, post.Emoji
	if in.Text != nil {
		text = *in.Text
	}
	if in.Emoji != nil {
		emoji = *in.Emoji
	}
	if text == "" && emoji == "" {
		return models.Post{}, fmt.Errorf("%w: post needs text or an emoji", ErrValidation)
	}

	post.Text, post.Emoji = text, emoji
	if in.Color != nil {
		post.Color = *in.Color
	}
	if in.TextColor != nil {
		post.TextColor = *in.TextColor
	}
	at := r.now()
	post.EditedAt = &at

	r.persistUpsert(models.KindPost, post.ID, post)
	r.broadcast(hub.EventPostUpdate, clonePost(post))
	return clonePost(post), nil
}

// LikePost increments a live post's like counter and broadcasts post_update.
func (r *Registry) LikePost(id string) (models.Post, error) {
	return r.adjustLikes(id, 1)
}

// UnlikePost decrements a live post's like counter, flooring at zero, and
// broadcasts post_update. Unliking at zero is a no-op that still succeeds.
func (r *Registry) UnlikePost(id string) (models.Post, error) {
	return r.adjustLikes(id, -1)
}

func (r *Registry) adjustLikes(id string, delta int) (models.Post, error) {
	r.postsMu.Lock()
	defer r.postsMu.Unlock()

	post := r.findPostLocked(id)
	if post == nil {
		return models.Post{}, fmt.Errorf("%w: post %s", ErrNotFound, id)
	}

	post.Likes += delta
	if post.Likes < 0 {
		post.Likes = 0
	}

	r.persistUpsert(models.KindPost, post.ID, post)
	r.broadcast(hub.EventPostUpdate, clonePost(post))
	return clonePost(post), nil
}

// AddComment appends a comment to a live post and broadcasts post_update
// with the whole updated post.
func (r *Registry) AddComment(postID string, author models.Author, text string) (models.Post, error) {
	if text == "" {
		return models.Post{}, fmt.Errorf("%w: comment text is required", ErrValidation)
	}

	r.postsMu.Lock()
	defer r.postsMu.Unlock()

	post := r.findPostLocked(postID)
	if post == nil {
		return models.Post{}, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}

	post.Comments = append(post.Comments, models.Comment{
		ID:        newID(),
		Author:    author,
		Text:      text,
		CreatedAt: r.now(),
	})

	r.persistUpsert(models.KindPost, post.ID, post)
	r.broadcast(hub.EventPostUpdate, clonePost(post))
	return clonePost(post), nil
}

// LikeComment increments a comment's like counter.
func (r *Registry) LikeComment(postID, commentID string) (models.Post, error) {
	return r.adjustCommentLikes(postID, commentID, 1)
}

// UnlikeComment decrements a comment's like counter, flooring at zero.
func (r *Registry) UnlikeComment(postID, commentID string) (models.Post, error) {
	return r.adjustCommentLikes(postID, commentID, -1)
}

func (r *Registry) adjustCommentLikes(postID, commentID string, delta int) (models.Post, error) {
	r.postsMu.Lock()
	defer r.postsMu.Unlock()

	post := r.findPostLocked(postID)
	if post == nil {
		return models.Post{}, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}

	found := false
	for i := range post.Comments {
		if post.Comments[i].ID != commentID {
			continue
		}
		post.Comments[i].Likes += delta
		if post.Comments[i].Likes < 0 {
			post.Comments[i].Likes = 0
		}
		found = true
		break
	}
	if !found {
		return models.Post{}, fmt.Errorf("%w: comment %s on post %s", ErrNotFound, commentID, postID)
	}

	r.persistUpsert(models.KindPost, post.ID, post)
	r.broadcast(hub.EventPostUpdate, clonePost(post))
	return clonePost(post), nil
}

// GetPost returns a copy of a live post.
func (r *Registry) GetPost(id string) (models.Post, error) {
	r.postsMu.Lock()
	defer r.postsMu.Unlock()

	post := r.findPostLocked(id)
	if post == nil {
		return models.Post{}, fmt.Errorf("%w: post %s", ErrNotFound, id)
	}
	return clonePost(post), nil
}

// RemovePost removes a post, persists the removal and broadcasts the
// cause's event (content_expired or content_deleted). Removing an id that
// is absent or already removed succeeds without any broadcast, so two
// concurrent removals of the same entity never produce a duplicate event.
// The removed flag reports whether this call performed the removal.
func (r *Registry) RemovePost(id string, cause RemoveCause) (removed bool) {
	r.postsMu.Lock()
	defer r.postsMu.Unlock()
	return r.removePostLocked(id, cause)
}

func (r *Registry) removePostLocked(id string, cause RemoveCause) bool {
	idx := -1
	for i := range r.posts {
		if r.posts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	r.posts = append(r.posts[:idx], r.posts[idx+1:]...)
	r.persistRemove(models.KindPost, id)
	metrics.ContentRemoved.WithLabelValues(string(models.KindPost), string(cause)).Inc()
	metrics.ContentActive.WithLabelValues(string(models.KindPost)).Set(float64(len(r.posts)))
	r.broadcast(cause.event(), hub.ContentRef{Kind: models.KindPost, ID: id})
	logging.Debug().Str("post_id", id).Str("cause", string(cause)).Msg("post removed")
	return true
}

// insertPostLocked places a post at the head of the feed and persists it.
// Caller holds postsMu.
func (r *Registry) insertPostLocked(post models.Post) {
	r.posts = append([]models.Post{post}, r.posts...)
	r.persistUpsert(models.KindPost, post.ID, &post)
	metrics.ContentCreated.WithLabelValues(string(models.KindPost)).Inc()
	metrics.ContentActive.WithLabelValues(string(models.KindPost)).Set(float64(len(r.posts)))
}

// findPostLocked returns the live post with the given id, or nil. Expired
// posts that have not been swept yet are invisible here. Caller holds
// postsMu.
func (r *Registry) findPostLocked(id string) *models.Post {
	now := r.now()
	for i := range r.posts {
		if r.posts[i].ID == id && !r.posts[i].Expired(now) {
			return &r.posts[i]
		}
	}
	return nil
}
