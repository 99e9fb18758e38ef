// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/moodshare/moodshare/internal/models"
	"github.com/moodshare/moodshare/internal/registry"
	"github.com/moodshare/moodshare/internal/validation"
)

// Request payloads. Validation rules live in the `validate` tags; handlers
// run ValidateStruct before touching the registry.

type createPostRequest struct {
	Text      string            `json:"text" validate:"max=500"`
	Emoji     string            `json:"emoji" validate:"max=16"`
	Color     string            `json:"color" validate:"omitempty,hexcolor"`
	TextColor string            `json:"textColor" validate:"omitempty,hexcolor"`
	Ephemeral bool              `json:"ephemeral"`
	Duration  registry.Lifetime `json:"duration"`
}

type createStoryRequest struct {
	Text      string            `json:"text" validate:"max=500"`
	Emoji     string            `json:"emoji" validate:"max=16"`
	Color     string            `json:"color" validate:"omitempty,hexcolor"`
	TextColor string            `json:"textColor" validate:"omitempty,hexcolor"`
	Duration  registry.Lifetime `json:"duration"`
}

type editPostRequest struct {
	Text      *string `json:"text" validate:"omitempty,max=500"`
	Emoji     *string `json:"emoji" validate:"omitempty,max=16"`
	Color     *string `json:"color" validate:"omitempty,hexcolor"`
	TextColor *string `json:"textColor" validate:"omitempty,hexcolor"`
}

type commentRequest struct {
	Author models.Author `json:"author"`
	Text   string        `json:"text" validate:"required,max=500"`
}

type reportRequest struct {
	Reporter  models.Author `json:"reporter"`
	CommentID string        `json:"commentId"`
	Reason    string        `json:"reason" validate:"max=1000"`
}

type repostRequest struct {
	By models.Author `json:"by"`
}

type pinnedPostRequest struct {
	Text      string `json:"text" validate:"max=500"`
	Emoji     string `json:"emoji" validate:"max=16"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
	TextColor string `json:"textColor" validate:"omitempty,hexcolor"`
	Label     string `json:"label" validate:"max=100"`
}

// validatePayload runs struct validation and writes the VALIDATION_ERROR
// response on failure.
func validatePayload(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if verr := validation.ValidateStruct(payload); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// cleanTexts sanitizes each of the given fields in place. On the first
// unsafe field it writes the error response and reports failure.
func cleanTexts(w http.ResponseWriter, r *http.Request, fields ...*string) bool {
	for _, f := range fields {
		if f == nil {
			continue
		}
		clean, err := sanitizeText(*f)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
				"content contains forbidden markup", nil)
			return false
		}
		*f = clean
	}
	return true
}
