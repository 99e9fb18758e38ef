// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package store

import (
	"io"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/moodshare/moodshare/internal/logging"
	"github.com/moodshare/moodshare/internal/models"
)

//nolint:gochecknoinits // init ensures quiet logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func openTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := Open("")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertAndLoad(t *testing.T) {
	s := openTestStore(t)

	posts := []models.Post{
		{ID: "a", Text: "first", CreatedAt: time.Now()},
		{ID: "b", Text: "second", CreatedAt: time.Now()},
	}
	for i := range posts {
		if err := s.Upsert(models.KindPost, posts[i].ID, &posts[i]); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	raw, err := s.Load(models.KindPost)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("loaded %d posts, want 2", len(raw))
	}

	seen := map[string]bool{}
	for _, data := range raw {
		var p models.Post
		if err := json.Unmarshal(data, &p); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		seen[p.ID] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("loaded ids = %v, want a and b", seen)
	}
}

func TestKindsAreIsolated(t *testing.T) {
	s := openTestStore(t)

	if err := s.Upsert(models.KindPost, "x", &models.Post{ID: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Upsert(models.KindStory, "y", &models.Story{ID: "y"}); err != nil {
		t.Fatal(err)
	}

	stories, err := s.Load(models.KindStory)
	if err != nil {
		t.Fatal(err)
	}
	if len(stories) != 1 {
		t.Errorf("loaded %d stories, want 1 (posts must not leak into the scan)", len(stories))
	}
}

func TestUpsertOverwrites(t *testing.T) {
	s := openTestStore(t)

	if err := s.Upsert(models.KindPost, "p", &models.Post{ID: "p", Likes: 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.Upsert(models.KindPost, "p", &models.Post{ID: "p", Likes: 3}); err != nil {
		t.Fatal(err)
	}

	raw, err := s.Load(models.KindPost)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 1 {
		t.Fatalf("loaded %d posts, want 1", len(raw))
	}
	var p models.Post
	if err := json.Unmarshal(raw[0], &p); err != nil {
		t.Fatal(err)
	}
	if p.Likes != 3 {
		t.Errorf("likes = %d, want overwritten value 3", p.Likes)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	if err := s.Upsert(models.KindPost, "p", &models.Post{ID: "p"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(models.KindPost, "p"); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := s.Remove(models.KindPost, "p"); err != nil {
		t.Fatalf("second remove of same id must not error: %v", err)
	}
	if err := s.Remove(models.KindPost, "never-existed"); err != nil {
		t.Fatalf("remove of unknown id must not error: %v", err)
	}

	raw, err := s.Load(models.KindPost)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 0 {
		t.Errorf("loaded %d posts after remove, want 0", len(raw))
	}
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	s := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if err := s.Upsert(models.KindPost, "p", &models.Post{ID: "p"}); err != ErrClosed {
		t.Errorf("Upsert after close = %v, want ErrClosed", err)
	}
	if _, err := s.Load(models.KindPost); err != ErrClosed {
		t.Errorf("Load after close = %v, want ErrClosed", err)
	}
	if err := s.Remove(models.KindPost, "p"); err != ErrClosed {
		t.Errorf("Remove after close = %v, want ErrClosed", err)
	}
	// Double close is tolerated.
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}
