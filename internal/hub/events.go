// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package hub

import "github.com/moodshare/moodshare/internal/models"

// Event names delivered to subscribers. The feed protocol is append-only:
// renaming an event breaks deployed clients.
const (
	EventConnected       = "connected"
	EventInitialSnapshot = "initial_snapshot"
	EventNewPost         = "new_post"
	EventNewStory        = "new_story"
	EventPostUpdate      = "post_update"
	EventContentExpired  = "content_expired"
	EventContentDeleted  = "content_deleted"
	EventReportCreated   = "report_created"
	EventReportDismissed = "report_dismissed"
)

// Event is a single named message on a subscriber's feed.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// Snapshot is the initial_snapshot payload: the active content at the moment
// the subscription was registered.
type Snapshot struct {
	Posts   []models.Post  `json:"posts"`
	Stories []models.Story `json:"stories"`
}

// ContentRef identifies a deleted or expired entity in content_expired and
// content_deleted payloads.
type ContentRef struct {
	Kind models.Kind `json:"kind"`
	ID   string      `json:"id"`
}
