// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/moodshare/moodshare/internal/logging"
	"github.com/moodshare/moodshare/internal/models"
)

// AdminHeader carries the shared admin secret.
const AdminHeader = "X-Admin-Secret"

// adminKey marks a request that passed the admin gate.
const adminKey contextKey = "is_admin"

// AdminAuth returns middleware enforcing the shared-secret admin gate.
// Comparison is constant-time. An empty configured secret disables admin
// access entirely rather than granting it to everyone.
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secretMatches(secret, r.Header.Get(AdminHeader)) {
				logging.Warn().Str("path", r.URL.Path).
					Str("request_id", GetRequestID(r.Context())).
					Msg("admin authentication failed")
				writeForbidden(w)
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsAdmin reports whether the request passed the admin gate. Handlers
// outside the admin route group use it for optional admin behavior, such as
// the admin-scoped event feed.
func IsAdmin(ctx context.Context) bool {
	admin, ok := ctx.Value(adminKey).(bool)
	return ok && admin
}

// MarkAdminIfAuthorized flags the request context as admin when the secret
// header matches, without rejecting anything. Used on routes that serve both
// audiences.
func MarkAdminIfAuthorized(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secretMatches(secret, r.Header.Get(AdminHeader)) {
				r = r.WithContext(context.WithValue(r.Context(), adminKey, true))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func secretMatches(secret, presented string) bool {
	if secret == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(presented)) == 1
}

func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    models.ErrCodeForbidden,
			Message: "admin access required",
		},
	})
}
