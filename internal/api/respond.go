// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

// Package api implements the HTTP surface: the REST endpoints for posts,
// stories and moderation, and the websocket event feed. All responses use
// the APIResponse envelope.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/moodshare/moodshare/internal/logging"
	"github.com/moodshare/moodshare/internal/middleware"
	"github.com/moodshare/moodshare/internal/models"
	"github.com/moodshare/moodshare/internal/moderation"
	"github.com/moodshare/moodshare/internal/registry"
)

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("failed to encode error response")
	}
}

// respondDomainError maps domain errors onto HTTP statuses and envelope
// codes. Unknown errors become opaque 500s; the detail stays in the log.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, registry.ErrValidation):
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, registry.ErrNotFound), errors.Is(err, moderation.ErrNotFound):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, moderation.ErrForbidden):
		respondError(w, r, http.StatusForbidden, models.ErrCodeForbidden, "admin access required", nil)
	case errors.Is(err, moderation.ErrThrottled):
		respondError(w, r, http.StatusTooManyRequests, models.ErrCodeRateLimit,
			"too many reports, slow down", nil)
	default:
		logging.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).Msg("request failed")
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal,
			"internal server error", nil)
	}
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields
// and oversized payloads.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
			"invalid JSON body", nil)
		return false
	}
	return true
}
