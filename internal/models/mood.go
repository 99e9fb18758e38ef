// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

// Package models defines the domain entities shared across Moodshare:
// posts, stories, comments, reports, and the API response envelope.
package models

import "time"

// Kind identifies one of the persisted entity collections.
type Kind string

const (
	KindPost   Kind = "posts"
	KindStory  Kind = "stories"
	KindReport Kind = "reports"
)

// Author identifies the caller that created a comment, report or repost.
// Identity is supplied by the HTTP layer; the core treats it as opaque.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

// Comment is a reply attached to a Post. It is owned by exactly one post and
// is destroyed together with it.
type Comment struct {
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is a mood message on the public feed.
//
// Invariants maintained by the registry:
//   - ExpiresAt is nil unless Ephemeral is true.
//   - A pinned post never expires: Pinned implies ExpiresAt == nil.
//   - Likes never goes below zero.
type Post struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Emoji     string     `json:"emoji"`
	Color     string     `json:"color"`
	TextColor string     `json:"textColor,omitempty"`
	Likes     int        `json:"likes"`
	Comments  []Comment  `json:"comments"`
	Ephemeral bool       `json:"ephemeral"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`

	// Pinned posts are admin announcements, exempt from expiry and from the
	// regular moderation flow. PinnedLabel is the banner text shown above them.
	Pinned      bool   `json:"pinned,omitempty"`
	PinnedLabel string `json:"pinnedLabel,omitempty"`

	// Repost provenance, set when a post was created by duplicating another.
	RepostedFrom string  `json:"repostedFrom,omitempty"`
	RepostedBy   *Author `json:"repostedBy,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
}

// Expired reports whether the post's expiry time has passed at now.
// The comparison is one-directional so that backward clock jumps cannot
// resurrect content that was already seen as expired.
func (p *Post) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// Story is a short-lived mood message. Unlike posts, stories always expire:
// ExpiresAt is mandatory and defaults to creation time + 24h.
type Story struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Emoji     string    `json:"emoji"`
	Color     string    `json:"color"`
	TextColor string    `json:"textColor,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the story's expiry time has passed at now.
func (s *Story) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Report is a moderation flag raised against a post or one of its comments.
// It references the post by id but does not own it: the post may be deleted
// while reports referencing it still exist.
type Report struct {
	ID        string    `json:"id"`
	Reporter  Author    `json:"reporter"`
	PostID    string    `json:"postId"`
	CommentID string    `json:"commentId,omitempty"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}
