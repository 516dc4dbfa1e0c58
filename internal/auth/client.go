// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth talks to Supabase Auth (GoTrue) for password sign-in, token
// refresh and sign-out, and verifies the access tokens it issues.
// Credentials never touch the application database.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"resty.dev/v3"
)

// Session is the token pair returned by GoTrue.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the access token expires within leeway of now.
func (s *Session) Expired(now time.Time, leeway time.Duration) bool {
	return !now.Add(leeway).Before(s.ExpiresAt)
}

// APIError is a non-2xx response from GoTrue.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase auth: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase auth: %d: %s", e.Status, e.Message)
}

// InvalidCredentials reports whether the error means the user supplied a
// wrong email/password or an unusable refresh token.
func (e *APIError) InvalidCredentials() bool {
	switch e.Code {
	case "invalid_credentials", "invalid_grant", "refresh_token_not_found", "refresh_token_already_used":
		return true
	}
	return e.Status == http.StatusBadRequest || e.Status == http.StatusUnauthorized
}

// Client calls the Supabase Auth REST API.
type Client struct {
	http *resty.Client
}

// NewClient returns a client for the Supabase project at baseURL using the
// project's anon key.
func NewClient(baseURL, anonKey string) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/auth/v1").
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(250*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("apikey", anonKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// Close releases the underlying HTTP client resources.
func (c *Client) Close() error {
	return c.http.Close()
}

// SignInWithPassword exchanges an email and password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/token")
	if err != nil {
		return nil, fmt.Errorf("supabase sign in: %w", err)
	}
	if resp.IsError() {
		return nil, parseAPIError(resp.StatusCode(), resp.Bytes())
	}
	return parseSession(resp.Bytes(), time.Now())
}

// Refresh exchanges a refresh token for a new session. GoTrue rotates the
// refresh token, so callers must persist the returned pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		Post("/token")
	if err != nil {
		return nil, fmt.Errorf("supabase refresh: %w", err)
	}
	if resp.IsError() {
		return nil, parseAPIError(resp.StatusCode(), resp.Bytes())
	}
	return parseSession(resp.Bytes(), time.Now())
}

// SignOut revokes the refresh tokens of the session that owns accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Post("/logout")
	if err != nil {
		return fmt.Errorf("supabase sign out: %w", err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusUnauthorized {
		return parseAPIError(resp.StatusCode(), resp.Bytes())
	}
	return nil
}

// parseSession reads a GoTrue token response. expires_at is preferred;
// expires_in is used when it is missing.
func parseSession(body []byte, now time.Time) (*Session, error) {
	res := gjson.GetManyBytes(body, "access_token", "refresh_token", "expires_at", "expires_in")
	s := &Session{
		AccessToken:  res[0].String(),
		RefreshToken: res[1].String(),
	}
	if s.AccessToken == "" || s.RefreshToken == "" {
		return nil, fmt.Errorf("supabase auth: token response missing tokens")
	}
	switch {
	case res[2].Exists():
		s.ExpiresAt = time.Unix(res[2].Int(), 0)
	case res[3].Exists():
		s.ExpiresAt = now.Add(time.Duration(res[3].Int()) * time.Second)
	default:
		s.ExpiresAt = now.Add(time.Hour)
	}
	return s, nil
}

// parseAPIError extracts the error code and message from the several error
// shapes GoTrue has used across versions.
func parseAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	if !gjson.ValidBytes(body) {
		e.Message = strings.TrimSpace(string(body))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	for _, path := range []string{"error_code", "code", "error"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != "" {
			e.Code = v.Str
			break
		}
	}
	for _, path := range []string{"msg", "message", "error_description"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.String() != "" {
			e.Message = v.String()
			break
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
