// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"time"
)

var startTime = time.Now()

// Health reports liveness plus a few cheap gauges for probes and humans.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"uptime":      time.Since(startTime).Round(time.Second).String(),
		"subscribers": h.hub.SubscriberCount(),
		"openReports": h.queue.OpenCount(),
	})
}
