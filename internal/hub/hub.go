// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

// Package hub implements the event broadcast hub: it maintains the set of
// live subscribers and fans named events out to all of them in broadcast
// order.
//
// Delivery is at-most-once and best-effort. A subscriber that is not
// connected at broadcast time never receives that event; there is no backlog
// or replay beyond the one-time initial_snapshot delivered at subscribe
// time. A subscriber whose buffer fills is treated as broken and dropped,
// which must never abort delivery to the remaining subscribers.
package hub

import (
	"context"
	"sort"
	"sync"

	"github.com/moodshare/moodshare/internal/logging"
	"github.com/moodshare/moodshare/internal/metrics"
)

// Hub maintains the set of active subscribers and broadcasts events to them.
type Hub struct {
	mu          sync.Mutex
	subscribers map[uint64]*Subscriber
	buffer      int
	closed      bool
}

// New creates a hub. buffer is the per-subscriber broadcast capacity; the
// two handshake events get reserved headroom on top of it.
func New(buffer int) *Hub {
	if buffer < 1 {
		buffer = 256
	}
	return &Hub{
		subscribers: make(map[uint64]*Subscriber),
		buffer:      buffer,
	}
}

// Subscribe registers a new subscriber and preloads its channel with the
// connected acknowledgement followed by the initial snapshot.
//
// Snapshot consistency contract: the caller must invoke Subscribe while
// holding the content mutation serializer (registry.Freeze), with snapshot
// built inside the same critical section. That makes snapshot-then-subscribe
// atomic with respect to mutations: an entity either appears in the snapshot
// (its broadcast ran before registration and is not delivered) or its event
// is delivered live (the mutation started after registration). Without the
// serializer an event broadcast during snapshot construction could be both
// missed by the snapshot and missed by the feed.
func (h *Hub) Subscribe(admin bool, snapshot Snapshot) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := newSubscriber(admin, h.buffer)
	if h.closed {
		close(sub.events)
		return sub
	}

	// The channel is fresh and carries reserved handshake headroom, so
	// these two sends cannot block while h.mu is held.
	sub.events <- Event{Name: EventConnected, Data: map[string]bool{"ok": true}}
	sub.events <- Event{Name: EventInitialSnapshot, Data: snapshot}

	h.subscribers[sub.id] = sub
	metrics.SubscribersConnected.Inc()
	logging.Debug().Uint64("subscriber_id", sub.id).Bool("admin", admin).
		Int("total_subscribers", len(h.subscribers)).Msg("subscriber connected")
	return sub
}

// Unsubscribe deregisters a subscriber and closes its event channel.
// It is idempotent and safe to call for a subscriber already dropped by a
// failed broadcast.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

// removeLocked drops a subscriber. Caller holds h.mu.
func (h *Hub) removeLocked(sub *Subscriber) {
	if _, ok := h.subscribers[sub.id]; !ok {
		return
	}
	delete(h.subscribers, sub.id)
	close(sub.events)
	metrics.SubscribersConnected.Dec()
	logging.Debug().Uint64("subscriber_id", sub.id).
		Int("total_subscribers", len(h.subscribers)).Msg("subscriber disconnected")
}

// Broadcast delivers the event to every currently registered subscriber.
func (h *Hub) Broadcast(name string, data interface{}) {
	h.broadcast(Event{Name: name, Data: data}, false)
}

// BroadcastAdmin delivers the event to admin subscribers only. Used for the
// moderation feed (report_created, report_dismissed).
func (h *Hub) BroadcastAdmin(name string, data interface{}) {
	h.broadcast(Event{Name: name, Data: data}, true)
}

func (h *Hub) broadcast(ev Event, adminOnly bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	// Copy and sort by id so delivery order is deterministic; the map cannot
	// be mutated during iteration anyway because dropped subscribers are
	// collected first.
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		if adminOnly && !sub.admin {
			continue
		}
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })

	var dropped []*Subscriber
	for _, sub := range subs {
		select {
		case sub.events <- ev:
			metrics.EventsBroadcast.WithLabelValues(ev.Name).Inc()
		default:
			// Buffer full: the consumer stopped draining. Dropping it here is
			// the implicit unsubscribe for a broken connection.
			dropped = append(dropped, sub)
		}
	}

	for _, sub := range dropped {
		logging.Warn().Uint64("subscriber_id", sub.id).Str("event", ev.Name).
			Msg("subscriber buffer full, dropping subscriber")
		metrics.SubscribersDropped.Inc()
		h.removeLocked(sub)
	}
}

// SubscriberCount returns the number of registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Serve implements suture.Service. It blocks until the context is canceled,
// then closes every subscriber. It exists so the hub's lifetime can sit
// under the supervision tree next to the sweeper and the HTTP server.
func (h *Hub) Serve(ctx context.Context) error {
	<-ctx.Done()
	h.closeAll()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (h *Hub) String() string {
	return "broadcast-hub"
}

// closeAll drops every subscriber and marks the hub closed; subsequent
// subscribes receive an already-closed channel and broadcasts are no-ops.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.subscribers)
	for _, sub := range h.subscribers {
		close(sub.events)
	}
	h.subscribers = make(map[uint64]*Subscriber)
	metrics.SubscribersConnected.Set(0)
	h.closed = true
	logging.Info().Str("component", "hub").Int("subscribers_closed", n).Msg("hub stopped")
}
