// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnsafeContent is returned when user text trips the injection filter.
var ErrUnsafeContent = errors.New("forbidden content detected")

// forbiddenPattern catches the common markup injection vectors. Matching
// input is rejected outright instead of being cleaned, so clients get an
// explicit error rather than silently mangled content.
var forbiddenPattern = regexp.MustCompile(
	`(?i)(script|javascript:|onerror=|onclick=|onload=|<iframe|<img|<svg|document\.|window\.)`)

// sanitizeText validates user-supplied text and escapes angle brackets in
// what survives. Empty input passes through as empty.
func sanitizeText(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	if forbiddenPattern.MatchString(text) {
		return "", ErrUnsafeContent
	}

	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text, nil
}
