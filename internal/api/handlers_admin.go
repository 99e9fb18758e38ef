// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moodshare/moodshare/internal/middleware"
	"github.com/moodshare/moodshare/internal/models"
	"github.com/moodshare/moodshare/internal/moderation"
	"github.com/moodshare/moodshare/internal/registry"
)

// actorFromRequest builds the moderation actor for the current request. The
// admin flag comes from the shared-secret gate; identity headers are
// optional and purely informational.
func actorFromRequest(r *http.Request) moderation.Actor {
	return moderation.Actor{
		Author: models.Author{
			ID:       r.Header.Get("X-User-ID"),
			Username: r.Header.Get("X-Username"),
		},
		Admin: middleware.IsAdmin(r.Context()),
	}
}

// ListReports returns the open moderation queue, newest first.
func (h *Handlers) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.queue.List(actorFromRequest(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

// DismissReport resolves one report without touching the content.
func (h *Handlers) DismissReport(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.Dismiss(actorFromRequest(r), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"dismissed": true})
}

// ForceDeletePost deletes a post and resolves every report against it. The
// response reports both outcomes; a post that was already gone still counts
// as success so stale moderation tabs do not error out.
func (h *Handlers) ForceDeletePost(w http.ResponseWriter, r *http.Request) {
	removed, resolved, err := h.queue.ForceDelete(actorFromRequest(r), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"postRemoved":     removed,
		"reportsResolved": resolved,
	})
}

// EditPost applies a partial update to a post.
func (h *Handlers) EditPost(w http.ResponseWriter, r *http.Request) {
	var req editPostRequest
	if !decodeBody(w, r, &req) || !validatePayload(w, r, &req) {
		return
	}
	if !cleanTexts(w, r, req.Text, req.Emoji) {
		return
	}

	post, err := h.registry.EditPost(chi.URLParam(r, "id"), registry.EditPostInput{
		Text:      req.Text,
		Emoji:     req.Emoji,
		Color:     req.Color,
		TextColor: req.TextColor,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// CreatePinnedPost creates an admin announcement post.
func (h *Handlers) CreatePinnedPost(w http.ResponseWriter, r *http.Request) {
	var req pinnedPostRequest
	if !decodeBody(w, r, &req) || !validatePayload(w, r, &req) {
		return
	}
	if !cleanTexts(w, r, &req.Text, &req.Emoji, &req.Label) {
		return
	}

	post, err := h.registry.CreatePinned(registry.CreatePinnedInput{
		Text:      req.Text,
		Emoji:     req.Emoji,
		Color:     req.Color,
		TextColor: req.TextColor,
		Label:     req.Label,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

// DeletePinnedPost removes an announcement post. Unlike ForceDeletePost
// there is no report queue to settle, so an id that does not resolve is a
// plain not-found.
func (h *Handlers) DeletePinnedPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.registry.RemovePost(id, registry.CauseAdmin) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound,
			"post "+id+" not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"removed": true})
}
