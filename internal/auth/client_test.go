package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeGoTrue serves the token and logout endpoints for a single account.
func fakeGoTrue(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"No API key found in request"}`))
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)

		switch r.URL.Query().Get("grant_type") {
		case "password":
			if body["email"] != "ana@revista.local" || body["password"] != "segredo" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`))
				return
			}
			w.Write([]byte(`{"access_token":"a1","refresh_token":"r1","expires_in":3600,"expires_at":1900000000,"token_type":"bearer"}`))
		case "refresh_token":
			if body["refresh_token"] != "r1" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid Refresh Token"}`))
				return
			}
			w.Write([]byte(`{"access_token":"a2","refresh_token":"r2","expires_in":3600}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("POST /auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSignInWithPassword(t *testing.T) {
	srv := fakeGoTrue(t)
	c := NewClient(srv.URL+"/", "anon")
	defer c.Close()

	s, err := c.SignInWithPassword(context.Background(), "ana@revista.local", "segredo")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if s.AccessToken != "a1" || s.RefreshToken != "r1" {
		t.Errorf("tokens: got %q/%q", s.AccessToken, s.RefreshToken)
	}
	if !s.ExpiresAt.Equal(time.Unix(1900000000, 0)) {
		t.Errorf("expires_at: got %v", s.ExpiresAt)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	srv := fakeGoTrue(t)
	c := NewClient(srv.URL, "anon")
	defer c.Close()

	_, err := c.SignInWithPassword(context.Background(), "ana@revista.local", "errado")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *APIError", err)
	}
	if apiErr.Code != "invalid_credentials" || apiErr.Message != "Invalid login credentials" {
		t.Errorf("api error: got %+v", apiErr)
	}
	if !apiErr.InvalidCredentials() {
		t.Error("expected InvalidCredentials")
	}
}

func TestRefresh(t *testing.T) {
	srv := fakeGoTrue(t)
	c := NewClient(srv.URL, "anon")
	defer c.Close()

	before := time.Now()
	s, err := c.Refresh(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if s.AccessToken != "a2" || s.RefreshToken != "r2" {
		t.Errorf("tokens: got %q/%q", s.AccessToken, s.RefreshToken)
	}
	if s.ExpiresAt.Before(before.Add(59 * time.Minute)) {
		t.Errorf("expires_at from expires_in: got %v", s.ExpiresAt)
	}

	_, err = c.Refresh(context.Background(), "stale")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "invalid_grant" || apiErr.Message != "Invalid Refresh Token" {
		t.Errorf("got %v", err)
	}
}

func TestSignOut(t *testing.T) {
	srv := fakeGoTrue(t)
	c := NewClient(srv.URL, "anon")
	defer c.Close()

	if err := c.SignOut(context.Background(), "a1"); err != nil {
		t.Errorf("SignOut: %v", err)
	}
	// An already-invalid token still counts as signed out.
	if err := c.SignOut(context.Background(), "gone"); err != nil {
		t.Errorf("SignOut with stale token: %v", err)
	}
}

func TestParseAPIErrorNonJSON(t *testing.T) {
	e := parseAPIError(http.StatusBadGateway, []byte("upstream down"))
	if e.Message != "upstream down" || e.Code != "" {
		t.Errorf("got %+v", e)
	}
	e = parseAPIError(http.StatusServiceUnavailable, nil)
	if e.Message != http.StatusText(http.StatusServiceUnavailable) {
		t.Errorf("got %+v", e)
	}
}

func TestParseSessionMissingTokens(t *testing.T) {
	if _, err := parseSession([]byte(`{"access_token":"x"}`), time.Now()); err == nil {
		t.Error("expected error for missing refresh token")
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(30 * time.Second)}
	if !s.Expired(now, time.Minute) {
		t.Error("expected expired within leeway")
	}
	if s.Expired(now, 0) {
		t.Error("expected not yet expired")
	}
}
