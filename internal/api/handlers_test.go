// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/moodshare/moodshare/internal/config"
	"github.com/moodshare/moodshare/internal/hub"
	"github.com/moodshare/moodshare/internal/logging"
	"github.com/moodshare/moodshare/internal/middleware"
	"github.com/moodshare/moodshare/internal/models"
	"github.com/moodshare/moodshare/internal/moderation"
	"github.com/moodshare/moodshare/internal/registry"
	"github.com/moodshare/moodshare/internal/store"
)

//nolint:gochecknoinits // init ensures quiet logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

const testAdminSecret = "test-admin-secret"

// newTestServer wires a full API stack over an in-memory store.
func newTestServer(t *testing.T) (*httptest.Server, *registry.Registry, *moderation.Queue) {
	t.Helper()
	s, err := store.Open("")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	eventHub := hub.New(64)
	reg := registry.New(s, eventHub)
	queue := moderation.New(reg, s, eventHub, moderation.WithReportsPerMinute(100))

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:        "127.0.0.1",
			Port:        0,
			Timeout:     5 * time.Second,
			CORSOrigins: []string{"*"},
		},
		Security: config.SecurityConfig{
			AdminSecret:     testAdminSecret,
			RateLimitReqs:   10000,
			RateLimitWindow: time.Minute,
		},
	}

	srv := httptest.NewServer(NewRouter(NewHandlers(reg, queue, eventHub), cfg).Setup())
	t.Cleanup(srv.Close)
	return srv, reg, queue
}

// doJSON sends a request with an optional JSON body and decodes the
// envelope.
func doJSON(t *testing.T, method, url string, body interface{}, headers map[string]string) (int, models.APIResponse) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp.StatusCode, envelope
}

func adminHeaders() map[string]string {
	return map[string]string{middleware.AdminHeader: testAdminSecret}
}

func dataAsPost(t *testing.T, envelope models.APIResponse) models.Post {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var post models.Post
	if err := json.Unmarshal(raw, &post); err != nil {
		t.Fatalf("unmarshal post: %v", err)
	}
	return post
}

func TestCreateAndListPosts(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts",
		map[string]interface{}{"text": "hello world", "emoji": "👋", "color": "#ffaa00"}, nil)
	if status != http.StatusCreated || envelope.Status != "success" {
		t.Fatalf("create = (%d, %+v), want 201 success", status, envelope)
	}
	post := dataAsPost(t, envelope)
	if post.ID == "" || post.Text != "hello world" {
		t.Fatalf("post = %+v, want id and text set", post)
	}

	status, envelope = doJSON(t, http.MethodGet, srv.URL+"/api/v1/posts", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d, want 200", status)
	}
	raw, _ := json.Marshal(envelope.Data)
	var posts []models.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		t.Fatalf("unmarshal posts: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != post.ID {
		t.Errorf("list = %+v, want the created post", posts)
	}
}

func TestCreatePostRejectsUnsafeAndInvalid(t *testing.T) {
	srv, _, _ := newTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
		code string
	}{
		{"script injection", map[string]interface{}{"text": "<script>alert(1)</script>"}, models.ErrCodeValidation},
		{"bad color", map[string]interface{}{"text": "ok", "color": "mauve"}, models.ErrCodeValidation},
		{"no display fields", map[string]interface{}{"color": "#ffffff"}, models.ErrCodeValidation},
		{"unknown field", map[string]interface{}{"text": "ok", "bogus": true}, models.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts", tt.body, nil)
			if status != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", status)
			}
			if envelope.Error == nil || envelope.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", envelope.Error, tt.code)
			}
		})
	}
}

func TestCreatePostEscapesAngleBrackets(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts",
		map[string]interface{}{"text": "a < b"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("status = %d, want 201", status)
	}
	if post := dataAsPost(t, envelope); post.Text != "a &lt; b" {
		t.Errorf("Text = %q, want escaped brackets", post.Text)
	}
}

func TestLikeUnlikeEndpoints(t *testing.T) {
	srv, reg, _ := newTestServer(t)
	post, err := reg.CreatePost(registry.CreatePostInput{Text: "likeable"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	status, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts/"+post.ID+"/like", nil, nil)
	if status != http.StatusOK || dataAsPost(t, envelope).Likes != 1 {
		t.Fatalf("like = (%d, %+v), want 200 with 1 like", status, envelope.Data)
	}

	for i := 0; i < 2; i++ {
		status, envelope = doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts/"+post.ID+"/unlike", nil, nil)
	}
	if status != http.StatusOK || dataAsPost(t, envelope).Likes != 0 {
		t.Fatalf("unlike below zero = (%d, %+v), want 200 with floor at 0", status, envelope.Data)
	}

	status, envelope = doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts/nope/like", nil, nil)
	if status != http.StatusNotFound || envelope.Error == nil || envelope.Error.Code != models.ErrCodeNotFound {
		t.Errorf("like missing post = (%d, %+v), want 404 NOT_FOUND", status, envelope.Error)
	}
}

func TestCommentEndpoints(t *testing.T) {
	srv, reg, _ := newTestServer(t)
	post, err := reg.CreatePost(registry.CreatePostInput{Text: "discuss"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	status, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts/"+post.ID+"/comments",
		map[string]interface{}{"author": map[string]string{"id": "u1", "username": "ann"}, "text": "same"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("comment status = %d, want 201", status)
	}
	updated := dataAsPost(t, envelope)
	if len(updated.Comments) != 1 || updated.Comments[0].Text != "same" {
		t.Fatalf("comments = %+v, want the new comment", updated.Comments)
	}

	commentID := updated.Comments[0].ID
	status, envelope = doJSON(t, http.MethodPost,
		srv.URL+"/api/v1/posts/"+post.ID+"/comments/"+commentID+"/like", nil, nil)
	if status != http.StatusOK || dataAsPost(t, envelope).Comments[0].Likes != 1 {
		t.Errorf("comment like = (%d, %+v), want 200 with 1 like", status, envelope.Data)
	}

	// Empty comment text fails validation.
	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts/"+post.ID+"/comments",
		map[string]interface{}{"author": map[string]string{"id": "u1"}, "text": ""}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("empty comment status = %d, want 400", status)
	}
}

func TestStoriesEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/stories",
		map[string]interface{}{"text": "today", "duration": map[string]int{"hours": 2}}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create story status = %d, want 201", status)
	}
	raw, _ := json.Marshal(envelope.Data)
	var story models.Story
	if err := json.Unmarshal(raw, &story); err != nil {
		t.Fatalf("unmarshal story: %v", err)
	}
	if story.ExpiresAt.IsZero() {
		t.Error("story has no expiry")
	}

	status, envelope = doJSON(t, http.MethodGet, srv.URL+"/api/v1/stories", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("list stories status = %d, want 200", status)
	}
	raw, _ = json.Marshal(envelope.Data)
	var stories []models.Story
	if err := json.Unmarshal(raw, &stories); err != nil {
		t.Fatalf("unmarshal stories: %v", err)
	}
	if len(stories) != 1 || stories[0].ID != story.ID {
		t.Errorf("stories = %+v, want the created story", stories)
	}
}

func TestRepostEndpoint(t *testing.T) {
	srv, reg, _ := newTestServer(t)
	post, err := reg.CreatePost(registry.CreatePostInput{Text: "shareable"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	status, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts/"+post.ID+"/repost",
		map[string]interface{}{"by": map[string]string{"id": "u9", "username": "max"}}, nil)
	if status != http.StatusCreated {
		t.Fatalf("repost status = %d, want 201", status)
	}
	repost := dataAsPost(t, envelope)
	if repost.RepostedFrom != post.ID || repost.RepostedBy == nil {
		t.Errorf("repost = %+v, want provenance", repost)
	}
}

func TestReportAndModerationFlow(t *testing.T) {
	srv, reg, queue := newTestServer(t)
	post, err := reg.CreatePost(registry.CreatePostInput{Text: "borderline"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	// Anyone can report.
	status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts/"+post.ID+"/report",
		map[string]interface{}{"reporter": map[string]string{"id": "r1"}, "reason": "rude"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("report status = %d, want 201", status)
	}

	// The queue is admin-only.
	status, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/admin/reports", nil, nil)
	if status != http.StatusForbidden || envelope.Error == nil || envelope.Error.Code != models.ErrCodeForbidden {
		t.Fatalf("unauthenticated queue read = (%d, %+v), want 403 FORBIDDEN", status, envelope.Error)
	}

	status, envelope = doJSON(t, http.MethodGet, srv.URL+"/api/v1/admin/reports", nil, adminHeaders())
	if status != http.StatusOK {
		t.Fatalf("admin queue read status = %d, want 200", status)
	}
	raw, _ := json.Marshal(envelope.Data)
	var reports []models.Report
	if err := json.Unmarshal(raw, &reports); err != nil {
		t.Fatalf("unmarshal reports: %v", err)
	}
	if len(reports) != 1 || reports[0].PostID != post.ID {
		t.Fatalf("reports = %+v, want the filed report", reports)
	}

	// Force delete removes the post and resolves the report.
	status, envelope = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/admin/posts/"+post.ID, nil, adminHeaders())
	if status != http.StatusOK {
		t.Fatalf("force delete status = %d, want 200", status)
	}
	result, ok := envelope.Data.(map[string]interface{})
	if !ok || result["postRemoved"] != true {
		t.Errorf("force delete data = %+v, want postRemoved true", envelope.Data)
	}
	if queue.OpenCount() != 0 {
		t.Errorf("OpenCount() = %d, want 0 after force delete", queue.OpenCount())
	}

	// Deleting again still succeeds; the post is simply reported as absent.
	status, envelope = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/admin/posts/"+post.ID, nil, adminHeaders())
	if status != http.StatusOK {
		t.Fatalf("repeat force delete status = %d, want 200", status)
	}
	if result, ok := envelope.Data.(map[string]interface{}); !ok || result["postRemoved"] != false {
		t.Errorf("repeat force delete data = %+v, want postRemoved false", envelope.Data)
	}
}

func TestDismissReportEndpoint(t *testing.T) {
	srv, reg, queue := newTestServer(t)
	post, err := reg.CreatePost(registry.CreatePostInput{Text: "actually fine"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	report, err := queue.Submit(models.Author{ID: "r1"}, post.ID, "", "meh")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	status, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/admin/reports/"+report.ID, nil, adminHeaders())
	if status != http.StatusOK {
		t.Fatalf("dismiss status = %d, want 200", status)
	}

	status, envelope := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/admin/reports/"+report.ID, nil, adminHeaders())
	if status != http.StatusNotFound || envelope.Error == nil || envelope.Error.Code != models.ErrCodeNotFound {
		t.Errorf("repeat dismiss = (%d, %+v), want 404 NOT_FOUND", status, envelope.Error)
	}

	if _, err := reg.GetPost(post.ID); err != nil {
		t.Errorf("post gone after dismissal: %v", err)
	}
}

func TestAdminEditAndPinnedEndpoints(t *testing.T) {
	srv, reg, _ := newTestServer(t)
	post, err := reg.CreatePost(registry.CreatePostInput{Text: "typo"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	status, envelope := doJSON(t, http.MethodPut, srv.URL+"/api/v1/admin/posts/"+post.ID,
		map[string]interface{}{"text": "fixed"}, adminHeaders())
	if status != http.StatusOK || dataAsPost(t, envelope).Text != "fixed" {
		t.Fatalf("edit = (%d, %+v), want 200 with updated text", status, envelope.Data)
	}

	// Editing without the admin secret is rejected.
	status, _ = doJSON(t, http.MethodPut, srv.URL+"/api/v1/admin/posts/"+post.ID,
		map[string]interface{}{"text": "sneaky"}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("unauthenticated edit status = %d, want 403", status)
	}

	status, envelope = doJSON(t, http.MethodPost, srv.URL+"/api/v1/admin/posts/pinned",
		map[string]interface{}{"text": "maintenance at noon", "label": "Announcement"}, adminHeaders())
	if status != http.StatusCreated {
		t.Fatalf("pinned create status = %d, want 201", status)
	}
	pinned := dataAsPost(t, envelope)
	if !pinned.Pinned || pinned.PinnedLabel != "Announcement" {
		t.Fatalf("pinned = %+v, want pinned with label", pinned)
	}

	status, envelope = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/admin/posts/pinned/"+pinned.ID, nil, adminHeaders())
	if status != http.StatusOK {
		t.Fatalf("pinned delete status = %d, want 200", status)
	}
	if result, ok := envelope.Data.(map[string]interface{}); !ok || result["removed"] != true {
		t.Errorf("pinned delete data = %+v, want removed true", envelope.Data)
	}

	// A second delete of the same id is a not-found, not a silent success.
	status, envelope = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/admin/posts/pinned/"+pinned.ID, nil, adminHeaders())
	if status != http.StatusNotFound || envelope.Error == nil || envelope.Error.Code != models.ErrCodeNotFound {
		t.Errorf("repeat pinned delete = (%d, %+v), want 404 NOT_FOUND", status, envelope.Error)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	status, envelope := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil, nil)
	if status != http.StatusOK || envelope.Status != "success" {
		t.Fatalf("health = (%d, %+v), want 200 success", status, envelope)
	}
	data, ok := envelope.Data.(map[string]interface{})
	if !ok || data["status"] != "ok" {
		t.Errorf("health data = %+v, want status ok", envelope.Data)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("moodshare_")) {
		t.Error("metrics output missing moodshare_ series")
	}
}
