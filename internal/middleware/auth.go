// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"revista/internal/auth"
	"revista/internal/metrics"
	"revista/internal/models"
	"revista/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"

	userKey contextKey = "user"

	// refreshLeeway refreshes access tokens slightly before they expire.
	refreshLeeway = time.Minute
)

// SessionStore loads and persists admin sessions.
type SessionStore interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
}

// TokenRefresher exchanges a refresh token for a new token pair.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*auth.Session, error)
}

// TokenVerifier turns an access token into the user it identifies.
type TokenVerifier interface {
	Verify(token string) (*models.User, error)
}

// LoadSession retrieves the session, refreshes its access token when it is
// about to expire, verifies it and stores both the session and the user in
// the request context. It does NOT enforce authentication.
func LoadSession(store SessionStore, refresher TokenRefresher, verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			data, err := store.Get(ctx, r)
			if err != nil {
				slog.Warn("session load failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if data == nil {
				next.ServeHTTP(w, r)
				return
			}

			if !time.Now().Add(refreshLeeway).Before(data.ExpiresAt) {
				s, err := refresher.Refresh(ctx, data.RefreshToken)
				if err != nil {
					metrics.AuthRefreshes.WithLabelValues("failed").Inc()
					slog.Info("session refresh failed", "user_id", data.UserID, "error", err)
					next.ServeHTTP(w, r)
					return
				}
				data.AccessToken = s.AccessToken
				data.RefreshToken = s.RefreshToken
				data.ExpiresAt = s.ExpiresAt
				if err := store.Update(ctx, r, data); err != nil {
					slog.Error("session update after refresh failed", "error", err)
				}
				metrics.AuthRefreshes.WithLabelValues("ok").Inc()
			}

			user, err := verifier.Verify(data.AccessToken)
			if err != nil {
				slog.Info("session token rejected", "user_id", data.UserID, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			// The role may have changed in app_metadata since sign-in.
			data.Role = string(user.Role)

			ctx = context.WithValue(ctx, SessionKey, data)
			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}

// BearerAuth authenticates API requests carrying an
// "Authorization: Bearer <access token>" header. Requests without the
// header pass through unchanged; a bad token is rejected with 401.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				jsonError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}
			user, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAuth redirects unauthenticated users to the login page.
// Must be applied after LoadSession in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromCtx(r.Context()) == nil {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireEditor returns 403 unless the user may manage content.
// Must be applied after RequireAuth.
func RequireEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromCtx(r.Context())
		if u == nil || !u.CanEdit() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin returns 403 if the authenticated user is not an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromCtx(r.Context())
		if u == nil || !u.IsAdmin() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects API requests without an authenticated user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromCtx(r.Context()) == nil {
			jsonError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromCtx returns the authenticated user, or nil.
func UserFromCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
