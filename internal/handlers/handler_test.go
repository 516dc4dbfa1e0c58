// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides in-memory fakes for the handler dependencies
// and shared helpers for the handler tests.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"revista/internal/auth"
	"revista/internal/i18n"
	"revista/internal/middleware"
	"revista/internal/models"
	"revista/internal/render"
	"revista/internal/session"
	"revista/internal/storage"
)

var errBoom = errors.New("boom")

// --- Categories ---

type fakeCategories struct {
	cats    []models.Category
	listErr error
}

func (f *fakeCategories) List(_ context.Context, _ *uuid.UUID) ([]models.Category, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.cats), nil
}

func (f *fakeCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	for _, c := range f.cats {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	c.ID = uuid.New()
	f.cats = append(f.cats, *c)
	return c, nil
}

func (f *fakeCategories) Update(_ context.Context, c *models.Category) error {
	for i := range f.cats {
		if f.cats[i].ID == c.ID {
			f.cats[i] = *c
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeCategories) Delete(_ context.Context, id uuid.UUID) error {
	var parent *uuid.UUID
	f.cats = slices.DeleteFunc(f.cats, func(c models.Category) bool {
		if c.ID == id {
			parent = c.ParentID
			return true
		}
		return false
	})
	for i := range f.cats {
		if f.cats[i].ParentID != nil && *f.cats[i].ParentID == id {
			f.cats[i].ParentID = parent
		}
	}
	return nil
}

// --- Content ---

type fakeContent struct {
	items []models.Content
	// lastCategoryIDs records the IDs passed to ListPublishedInCategories.
	lastCategoryIDs []uuid.UUID
}

func (f *fakeContent) ListByType(_ context.Context, t models.ContentType, locale string) ([]models.Content, error) {
	var out []models.Content
	for _, c := range f.items {
		if c.Type == t && (locale == "" || c.Locale == locale) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContent) ListPublished(_ context.Context, t models.ContentType, locale string, limit int) ([]models.Content, error) {
	var out []models.Content
	for _, c := range f.items {
		if c.Type == t && c.Locale == locale && c.IsPublished() && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContent) ListPublishedInCategories(_ context.Context, locale string, ids []uuid.UUID) ([]models.Content, error) {
	f.lastCategoryIDs = ids
	var out []models.Content
	for _, c := range f.items {
		if c.IsArticle() && c.Locale == locale && c.IsPublished() && c.CategoryID != nil && slices.Contains(ids, *c.CategoryID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContent) FindByID(_ context.Context, id uuid.UUID) (*models.Content, error) {
	for _, c := range f.items {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeContent) FindPublished(_ context.Context, t models.ContentType, locale, slug string) (*models.Content, error) {
	for _, c := range f.items {
		if c.Type == t && c.Locale == locale && c.Slug == slug && c.IsPublished() {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeContent) SlugTaken(_ context.Context, locale, slug string, exceptID uuid.UUID) (bool, error) {
	for _, c := range f.items {
		if c.Locale == locale && c.Slug == slug && c.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContent) Create(_ context.Context, c *models.Content) (*models.Content, error) {
	c.ID = uuid.New()
	f.items = append(f.items, *c)
	return c, nil
}

func (f *fakeContent) Update(_ context.Context, c *models.Content) error {
	for i := range f.items {
		if f.items[i].ID == c.ID {
			f.items[i] = *c
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeContent) SetCover(_ context.Context, id uuid.UUID, url string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].CoverURL = &url
		}
	}
	return nil
}

func (f *fakeContent) Delete(_ context.Context, id uuid.UUID) error {
	f.items = slices.DeleteFunc(f.items, func(c models.Content) bool { return c.ID == id })
	return nil
}

func (f *fakeContent) CountByCategory(_ context.Context) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int)
	for _, c := range f.items {
		if c.IsArticle() && c.CategoryID != nil {
			counts[*c.CategoryID]++
		}
	}
	return counts, nil
}

// --- XP ledger ---

type fakeXP struct {
	events []models.XPEvent
}

func (f *fakeXP) Award(_ context.Context, userID uuid.UUID, amount int, reason string) (*models.XPEvent, error) {
	ev := models.XPEvent{ID: uuid.New(), UserID: userID, Amount: amount, Reason: reason, CreatedAt: time.Now()}
	f.events = append(f.events, ev)
	return &ev, nil
}

func (f *fakeXP) Total(_ context.Context, userID uuid.UUID) (int, error) {
	total := 0
	for _, ev := range f.events {
		if ev.UserID == userID {
			total += ev.Amount
		}
	}
	return total, nil
}

func (f *fakeXP) Recent(_ context.Context, userID uuid.UUID, limit int) ([]models.XPEvent, error) {
	var out []models.XPEvent
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		if f.events[i].UserID == userID {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

// --- Page cache and invalidation log ---

type fakePageCache struct {
	pages       map[string][]byte
	invalidated int
}

func newFakePageCache() *fakePageCache {
	return &fakePageCache{pages: make(map[string][]byte)}
}

func (f *fakePageCache) Get(_ context.Context, key string) ([]byte, bool) {
	b, ok := f.pages[key]
	return b, ok
}

func (f *fakePageCache) Set(_ context.Context, key string, html []byte) {
	f.pages[key] = html
}

func (f *fakePageCache) InvalidateAll(_ context.Context) {
	f.invalidated++
	clear(f.pages)
}

type cacheLogEntry struct {
	entityType string
	entityID   uuid.UUID
	action     string
}

type fakeCacheLog struct {
	entries []cacheLogEntry
}

func (f *fakeCacheLog) Log(_ context.Context, entityType string, entityID uuid.UUID, action string) {
	f.entries = append(f.entries, cacheLogEntry{entityType, entityID, action})
}

// --- Covers and webhooks ---

type fakeCovers struct {
	uploaded    map[uuid.UUID]string
	deleted     []string
	contentType string
}

func (f *fakeCovers) UploadCover(_ context.Context, id uuid.UUID, contentType string, body io.Reader, _ int64) (string, error) {
	if contentType != "image/png" && contentType != "image/jpeg" {
		return "", storage.ErrUnsupportedType
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	if f.uploaded == nil {
		f.uploaded = make(map[uuid.UUID]string)
	}
	f.contentType = contentType
	url := "https://cdn.example.com/covers/" + id.String() + ".png"
	f.uploaded[id] = url
	return url, nil
}

func (f *fakeCovers) DeleteURL(_ context.Context, rawURL string) error {
	f.deleted = append(f.deleted, rawURL)
	return nil
}

type notification struct {
	event string
	id    uuid.UUID
}

type fakeNotifier struct {
	sent []notification
}

func (f *fakeNotifier) NotifyAsync(event string, c *models.Content) {
	f.sent = append(f.sent, notification{event, c.ID})
}

// --- Sessions and identity ---

type fakeSessions struct {
	created   *session.Data
	stored    *session.Data
	destroyed bool
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	f.created = data
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "sid", Path: "/"})
	return "sid", nil
}

func (f *fakeSessions) Get(_ context.Context, _ *http.Request) (*session.Data, error) {
	return f.stored, nil
}

func (f *fakeSessions) Destroy(_ context.Context, _ http.ResponseWriter, _ *http.Request) error {
	f.destroyed = true
	return nil
}

type fakeAuthn struct {
	tokens    *auth.Session
	err       error
	signedOut []string
}

func (f *fakeAuthn) SignInWithPassword(_ context.Context, _, _ string) (*auth.Session, error) {
	return f.tokens, f.err
}

func (f *fakeAuthn) SignOut(_ context.Context, accessToken string) error {
	f.signedOut = append(f.signedOut, accessToken)
	return nil
}

// fakeVerifier maps access tokens to users.
type fakeVerifier map[string]*models.User

func (f fakeVerifier) Verify(token string) (*models.User, error) {
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

// --- Helpers ---

func testSite(t *testing.T) *Site {
	t.Helper()
	locales, err := i18n.New([]string{"pt", "en", "es"}, "pt")
	if err != nil {
		t.Fatalf("i18n.New: %v", err)
	}
	return &Site{Name: "Revista", Locales: locales}
}

func testRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New(false)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return r
}

func editor() *models.User {
	return &models.User{ID: uuid.New(), Email: "editor@revista.test", Role: models.RoleEditor}
}

// asUser returns r with u attached as the authenticated user.
func asUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), u))
}

// withLocale returns r carrying the locale as the i18n middleware would.
func withLocale(r *http.Request, code string) *http.Request {
	return r.WithContext(i18n.WithLocale(r.Context(), code))
}

func ptr[T any](v T) *T { return &v }
