// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

// Package store provides the durable store behind the content registry and
// the moderation queue.
//
// The store is a plain keyed collection per entity kind with load / upsert /
// remove semantics. It is deliberately not transactional across kinds: the
// in-memory registry is authoritative and the store is treated as
// best-effort persistence — a failed write degrades the process to
// memory-only operation rather than failing the mutation.
package store

import (
	"errors"

	"github.com/moodshare/moodshare/internal/models"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("store: closed")

// Store persists the three entity collections (posts, stories, reports).
//
// Implementations must tolerate Remove on a key that does not exist; removal
// is idempotent at the storage level.
type Store interface {
	// Load returns the raw JSON values of every entity of the given kind.
	// Order is unspecified; callers re-sort after decoding.
	Load(kind models.Kind) ([][]byte, error)

	// Upsert writes the entity under its id, overwriting any previous value.
	Upsert(kind models.Kind, id string, entity interface{}) error

	// Remove deletes the entity with the given id. Removing an absent id is
	// not an error.
	Remove(kind models.Kind, id string) error

	// Close releases the underlying resources.
	Close() error
}
