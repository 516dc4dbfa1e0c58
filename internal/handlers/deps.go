// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"revista/internal/auth"
	"revista/internal/models"
	"revista/internal/session"
)

// The interfaces below are satisfied by the concrete stores and clients
// wired in main. Handlers depend on these so tests can swap in fakes.

// CategoryRepo is the category persistence used by the handlers.
type CategoryRepo interface {
	List(ctx context.Context, blogID *uuid.UUID) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContentRepo is the article and page persistence used by the handlers.
type ContentRepo interface {
	ListByType(ctx context.Context, contentType models.ContentType, locale string) ([]models.Content, error)
	ListPublished(ctx context.Context, contentType models.ContentType, locale string, limit int) ([]models.Content, error)
	ListPublishedInCategories(ctx context.Context, locale string, categoryIDs []uuid.UUID) ([]models.Content, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Content, error)
	FindPublished(ctx context.Context, contentType models.ContentType, locale, slug string) (*models.Content, error)
	SlugTaken(ctx context.Context, locale, slug string, exceptID uuid.UUID) (bool, error)
	Create(ctx context.Context, c *models.Content) (*models.Content, error)
	Update(ctx context.Context, c *models.Content) error
	SetCover(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByCategory(ctx context.Context) (map[uuid.UUID]int, error)
}

// XPRepo is the gamification ledger.
type XPRepo interface {
	Award(ctx context.Context, userID uuid.UUID, amount int, reason string) (*models.XPEvent, error)
	Total(ctx context.Context, userID uuid.UUID) (int, error)
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.XPEvent, error)
}

// PageCache stores rendered public pages.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, html []byte)
	InvalidateAll(ctx context.Context)
}

// CacheLogger records page cache invalidations.
type CacheLogger interface {
	Log(ctx context.Context, entityType string, entityID uuid.UUID, action string)
}

// CoverStorage uploads and removes article cover images.
type CoverStorage interface {
	UploadCover(ctx context.Context, contentID uuid.UUID, contentType string, body io.Reader, size int64) (string, error)
	DeleteURL(ctx context.Context, rawURL string) error
}

// ContentNotifier announces content lifecycle events.
type ContentNotifier interface {
	NotifyAsync(event string, c *models.Content)
}

// SessionManager creates and destroys admin sessions.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Authenticator signs users in and out against the identity provider.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// TokenVerifier turns an access token into the user it identifies.
type TokenVerifier interface {
	Verify(token string) (*models.User, error)
}
