// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moodshare/moodshare/internal/hub"
	"github.com/moodshare/moodshare/internal/moderation"
	"github.com/moodshare/moodshare/internal/registry"
)

// Handlers bundles the HTTP handlers with their domain dependencies.
type Handlers struct {
	registry *registry.Registry
	queue    *moderation.Queue
	hub      *hub.Hub
}

// NewHandlers creates the handler set.
func NewHandlers(reg *registry.Registry, queue *moderation.Queue, h *hub.Hub) *Handlers {
	return &Handlers{registry: reg, queue: queue, hub: h}
}

// ListPosts returns the active posts, newest first.
func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.ActivePosts())
}

// CreatePost creates a post from the request payload.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !decodeBody(w, r, &req) || !validatePayload(w, r, &req) {
		return
	}
	if !cleanTexts(w, r, &req.Text, &req.Emoji) {
		return
	}

	post, err := h.registry.CreatePost(registry.CreatePostInput{
		Text:      req.Text,
		Emoji:     req.Emoji,
		Color:     req.Color,
		TextColor: req.TextColor,
		Ephemeral: req.Ephemeral,
		Lifetime:  req.Duration,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

// LikePost increments the post's like counter.
func (h *Handlers) LikePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.registry.LikePost(chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// UnlikePost decrements the post's like counter, never below zero.
func (h *Handlers) UnlikePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.registry.UnlikePost(chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// AddComment appends a comment to the post.
func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeBody(w, r, &req) || !validatePayload(w, r, &req) {
		return
	}
	if !cleanTexts(w, r, &req.Text, &req.Author.Username) {
		return
	}

	post, err := h.registry.AddComment(chi.URLParam(r, "id"), req.Author, req.Text)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

// LikeComment increments a comment's like counter.
func (h *Handlers) LikeComment(w http.ResponseWriter, r *http.Request) {
	post, err := h.registry.LikeComment(chi.URLParam(r, "id"), chi.URLParam(r, "commentID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// UnlikeComment decrements a comment's like counter, never below zero.
func (h *Handlers) UnlikeComment(w http.ResponseWriter, r *http.Request) {
	post, err := h.registry.UnlikeComment(chi.URLParam(r, "id"), chi.URLParam(r, "commentID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// Repost duplicates a live post onto the head of the feed.
func (h *Handlers) Repost(w http.ResponseWriter, r *http.Request) {
	var req repostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !cleanTexts(w, r, &req.By.Username) {
		return
	}

	post, err := h.registry.Repost(chi.URLParam(r, "id"), req.By)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

// ReportPost files a moderation report against the post or one of its
// comments.
func (h *Handlers) ReportPost(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !decodeBody(w, r, &req) || !validatePayload(w, r, &req) {
		return
	}
	if !cleanTexts(w, r, &req.Reason, &req.Reporter.Username) {
		return
	}

	report, err := h.queue.Submit(req.Reporter, chi.URLParam(r, "id"), req.CommentID, req.Reason)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, report)
}
