// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moodshare/moodshare/internal/config"
	"github.com/moodshare/moodshare/internal/middleware"
)

// Router assembles the HTTP routes.
type Router struct {
	handlers *Handlers
	cfg      *config.Config
}

// NewRouter creates a router over the handler set.
func NewRouter(handlers *Handlers, cfg *config.Config) *Router {
	return &Router{handlers: handlers, cfg: cfg}
}

// Setup builds the full route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global stack, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID",
			middleware.AdminHeader, "X-User-ID", "X-Username"},
		MaxAge: 300,
	}))

	// Operational endpoints stay outside the rate limiter so probes and
	// scrapes cannot be starved by feed traffic.
	r.Get("/healthz", rt.handlers.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// The websocket feed holds a connection open for its whole lifetime, so
	// it sits outside the request rate limiter too. Admin detection is
	// optional here: the feed serves both audiences.
	r.Group(func(r chi.Router) {
		r.Use(middleware.MarkAdminIfAuthorized(rt.cfg.Security.AdminSecret))
		r.Get("/api/v1/stream", rt.handlers.Stream)
	})

	// Public API.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rt.cfg.Security.RateLimitReqs, rt.cfg.Security.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)

		r.Get("/posts", rt.handlers.ListPosts)
		r.Post("/posts", rt.handlers.CreatePost)
		r.Post("/posts/{id}/like", rt.handlers.LikePost)
		r.Post("/posts/{id}/unlike", rt.handlers.UnlikePost)
		r.Post("/posts/{id}/comments", rt.handlers.AddComment)
		r.Post("/posts/{id}/report", rt.handlers.ReportPost)
		r.Post("/posts/{id}/repost", rt.handlers.Repost)
		r.Post("/posts/{id}/comments/{commentID}/like", rt.handlers.LikeComment)
		r.Post("/posts/{id}/comments/{commentID}/unlike", rt.handlers.UnlikeComment)

		r.Get("/stories", rt.handlers.ListStories)
		r.Post("/stories", rt.handlers.CreateStory)
	})

	// Moderation API, behind the shared-secret gate.
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rt.cfg.Security.RateLimitReqs, rt.cfg.Security.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.AdminAuth(rt.cfg.Security.AdminSecret))

		r.Get("/reports", rt.handlers.ListReports)
		r.Delete("/reports/{id}", rt.handlers.DismissReport)

		r.Put("/posts/{id}", rt.handlers.EditPost)
		r.Delete("/posts/{id}", rt.handlers.ForceDeletePost)
		r.Post("/posts/pinned", rt.handlers.CreatePinnedPost)
		r.Delete("/posts/pinned/{id}", rt.handlers.DeletePinnedPost)
	})

	return r
}
