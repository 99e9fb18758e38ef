// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package registry

import "errors"

// Sentinel errors returned by registry operations. Callers match them with
// errors.Is; the HTTP layer maps them onto status codes.
var (
	// ErrNotFound indicates the id does not resolve to a live entity.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates the input was rejected before any state change.
	ErrValidation = errors.New("invalid input")
)
