// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/moodshare/moodshare/internal/hub"
	"github.com/moodshare/moodshare/internal/logging"
	"github.com/moodshare/moodshare/internal/middleware"
	"github.com/moodshare/moodshare/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware in front of
	// this handler; the upgrader accepts what got through it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Stream upgrades the connection to a websocket event feed. The subscriber
// receives connected, then initial_snapshot, then live events. Subscription
// happens inside a registry freeze so the snapshot and the live stream
// neither overlap nor leave a gap. Requests that passed the admin gate also
// receive the moderation events.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logging.Warn().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("websocket upgrade failed")
		return
	}

	admin := middleware.IsAdmin(r.Context())

	var sub *hub.Subscriber
	h.registry.Freeze(func(posts []models.Post, stories []models.Story) {
		sub = h.hub.Subscribe(admin, hub.Snapshot{Posts: posts, Stories: stories})
	})

	logging.Debug().Uint64("subscriber_id", sub.ID()).Bool("admin", admin).
		Str("remote", r.RemoteAddr).Msg("event stream opened")

	go h.readPump(conn, sub)
	go h.writePump(conn, sub)
}

// readPump consumes client frames solely to service pong deadlines and
// detect disconnects. The feed is one-way; inbound payloads are discarded.
func (h *Handlers) readPump(conn *websocket.Conn, sub *hub.Subscriber) {
	defer func() {
		h.hub.Unsubscribe(sub)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Uint64("subscriber_id", sub.ID()).
					Msg("unexpected websocket close")
			}
			return
		}
	}
}

// writePump forwards hub events to the connection and keeps it alive with
// pings. It exits when the hub closes the subscriber or a write fails.
func (h *Handlers) writePump(conn *websocket.Conn, sub *hub.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.hub.Unsubscribe(sub)
		_ = conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.Events():
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				logging.Debug().Err(err).Uint64("subscriber_id", sub.ID()).
					Msg("event write failed, closing stream")
				return
			}

		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
