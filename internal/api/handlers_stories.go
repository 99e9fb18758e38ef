// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/moodshare/moodshare/internal/registry"
)

// ListStories returns the active stories, newest first.
func (h *Handlers) ListStories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.ActiveStories())
}

// CreateStory creates a story. Stories always expire; a missing or
// non-positive duration gets the 24h default.
func (h *Handlers) CreateStory(w http.ResponseWriter, r *http.Request) {
	var req createStoryRequest
	if !decodeBody(w, r, &req) || !validatePayload(w, r, &req) {
		return
	}
	if !cleanTexts(w, r, &req.Text, &req.Emoji) {
		return
	}

	story, err := h.registry.CreateStory(registry.CreateStoryInput{
		Text:      req.Text,
		Emoji:     req.Emoji,
		Color:     req.Color,
		TextColor: req.TextColor,
		Lifetime:  req.Duration,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, story)
}
