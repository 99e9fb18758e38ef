// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package store

import (
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/moodshare/moodshare/internal/logging"
	"github.com/moodshare/moodshare/internal/models"
)

// BadgerStore implements Store on BadgerDB. Entities are stored as JSON
// values under "<kind>:<id>" keys so that a whole collection can be loaded
// with a prefix scan.
type BadgerStore struct {
	db     *badger.DB
	closed atomic.Bool
}

// Open opens a BadgerDB-backed store at the given directory. An empty path
// opens an in-memory database, which serves both tests and the degraded
// memory-only mode.
func Open(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	// Badger logs through its own interface; route it to zerolog.
	opts = opts.WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

func key(kind models.Kind, id string) []byte {
	return []byte(string(kind) + ":" + id)
}

// Load returns the raw JSON values of every entity of the given kind.
func (s *BadgerStore) Load(kind models.Kind) ([][]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var out [][]byte
	prefix := []byte(string(kind) + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("copy value: %w", err)
			}
			out = append(out, val)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	return out, nil
}

// Upsert writes the entity under its id, overwriting any previous value.
func (s *BadgerStore) Upsert(kind models.Kind, id string, entity interface{}) error {
	if s.closed.Load() {
		return ErrClosed
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal %s %s: %w", kind, id, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(kind, id), data)
	})
	if err != nil {
		return fmt.Errorf("upsert %s %s: %w", kind, id, err)
	}
	return nil
}

// Remove deletes the entity with the given id. Removing an absent id is a
// no-op: badger's Delete does not report missing keys, which is exactly the
// idempotence the registry relies on.
func (s *BadgerStore) Remove(kind models.Kind, id string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(kind, id))
	})
	if err != nil {
		return fmt.Errorf("remove %s %s: %w", kind, id, err)
	}
	return nil
}

// RunGC runs one round of badger value log garbage collection. Badger
// returns ErrNoRewrite when there was nothing to collect; that is not an
// error for the caller.
func (s *BadgerStore) RunGC() error {
	if s.closed.Load() {
		return ErrClosed
	}
	err := s.db.RunValueLogGC(0.5)
	if err == badger.ErrNoRewrite {
		return nil
	}
	return err
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// badgerLogger adapts badger's logger interface to zerolog. Badger is
// chatty at INFO; its informational output maps to debug level.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Str("component", "badger").Msgf(format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Str("component", "badger").Msgf(format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Debug().Str("component", "badger").Msgf(format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Debug().Str("component", "badger").Msgf(format, args...)
}
