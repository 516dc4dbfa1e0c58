// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"revista/internal/auth"
	"revista/internal/middleware"
	"revista/internal/render"
	"revista/internal/session"
)

// adminHome is where a successful sign-in lands.
const adminHome = "/admin/categories"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer *render.Renderer
	sessions SessionManager
	authn    Authenticator
	verifier TokenVerifier
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions SessionManager, authn Authenticator, verifier TokenVerifier) *Auth {
	return &Auth{
		renderer: renderer,
		sessions: sessions,
		authn:    authn,
		verifier: verifier,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if u := middleware.UserFromCtx(r.Context()); u != nil && u.CanEdit() {
		http.Redirect(w, r, adminHome, http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Sign In",
		Data:  map[string]any{},
	})
}

// LoginSubmit exchanges the submitted credentials for a token pair and
// stores it in a new session.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	fail := func(status int, msg string) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		a.renderer.Page(w, r, "login", &render.PageData{
			Title: "Sign In",
			Data:  map[string]any{"Error": msg, "Email": email},
		})
	}

	if email == "" || password == "" {
		fail(http.StatusBadRequest, "Email and password are required.")
		return
	}

	tokens, err := a.authn.SignInWithPassword(ctx, email, password)
	if err != nil {
		var apiErr *auth.APIError
		if errors.As(err, &apiErr) && apiErr.InvalidCredentials() {
			slog.Info("login rejected", "email", email, "code", apiErr.Code)
			fail(http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		slog.Error("login failed", "error", err)
		fail(http.StatusServiceUnavailable, "Sign-in is unavailable right now. Please try again.")
		return
	}

	user, err := a.verifier.Verify(tokens.AccessToken)
	if err != nil {
		slog.Error("issued access token did not verify", "error", err)
		fail(http.StatusServiceUnavailable, "Sign-in is unavailable right now. Please try again.")
		return
	}
	if !user.CanEdit() {
		if err := a.authn.SignOut(ctx, tokens.AccessToken); err != nil {
			slog.Warn("sign out of non-editor failed", "error", err)
		}
		slog.Info("login refused for role", "user_id", user.ID, "role", user.Role)
		fail(http.StatusForbidden, "This account cannot access the admin.")
		return
	}

	if _, err := a.sessions.Create(ctx, w, &session.Data{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         string(user.Role),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
		CreatedAt:    time.Now(),
	}); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("user signed in", "user_id", user.ID, "role", user.Role)
	http.Redirect(w, r, adminHome, http.StatusSeeOther)
}

// Logout revokes the refresh token upstream, destroys the session and
// redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)
	if sess == nil {
		// The session may exist with an access token too stale to verify.
		sess, _ = a.sessions.Get(ctx, r)
	}
	if sess != nil && sess.AccessToken != "" {
		if err := a.authn.SignOut(ctx, sess.AccessToken); err != nil {
			slog.Warn("upstream sign out failed", "error", err)
		}
	}
	if err := a.sessions.Destroy(ctx, w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
