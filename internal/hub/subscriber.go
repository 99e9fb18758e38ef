// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package hub

import "sync/atomic"

// subscriberIDCounter generates unique, monotonically increasing subscriber
// ids. Broadcast iterates subscribers sorted by id so delivery order is
// stable across runs instead of following map iteration order.
var subscriberIDCounter atomic.Uint64

// Subscriber is a registered feed consumer. Events are delivered on a
// buffered channel; the transport layer (websocket, test harness) drains it
// and calls Hub.Unsubscribe when the connection goes away.
type Subscriber struct {
	id     uint64
	admin  bool
	events chan Event
}

// handshakeSlots is the channel headroom reserved for the connected and
// initial_snapshot preloads, on top of the configured broadcast buffer.
// Without it a buffer of 1 would block the second preload send while the
// hub mutex is held, wedging every broadcaster behind it.
const handshakeSlots = 2

func newSubscriber(admin bool, buffer int) *Subscriber {
	return &Subscriber{
		id:     subscriberIDCounter.Add(1),
		admin:  admin,
		events: make(chan Event, buffer+handshakeSlots),
	}
}

// ID returns the subscriber's unique identifier.
func (s *Subscriber) ID() uint64 {
	return s.id
}

// Admin reports whether this subscriber receives admin-scoped events.
// The flag is fixed at subscribe time.
func (s *Subscriber) Admin() bool {
	return s.admin
}

// Events returns the subscriber's event channel. The channel is closed when
// the subscriber is unsubscribed or dropped by the hub.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}
