// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"revista/internal/models"
)

// ContentStore handles all content-related database operations.
// It serves both articles and pages through the unified content table.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, type, locale, title, slug, body, excerpt, status,
	category_id, cover_url, author_id, published_at, created_at, updated_at`

func scanContent(scanner interface{ Scan(...any) error }) (*models.Content, error) {
	var c models.Content
	err := scanner.Scan(
		&c.ID, &c.Type, &c.Locale, &c.Title, &c.Slug, &c.Body, &c.Excerpt,
		&c.Status, &c.CategoryID, &c.CoverURL, &c.AuthorID,
		&c.PublishedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ContentStore) list(ctx context.Context, query string, args ...any) ([]models.Content, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListByType returns all content items of the given type, newest first.
// An empty locale lists every locale.
func (s *ContentStore) ListByType(ctx context.Context, contentType models.ContentType, locale string) ([]models.Content, error) {
	items, err := s.list(ctx, `
		SELECT `+contentColumns+`
		FROM content
		WHERE type = $1 AND ($2 = '' OR locale = $2)
		ORDER BY created_at DESC
	`, contentType, locale)
	if err != nil {
		return nil, fmt.Errorf("list content by type: %w", err)
	}
	return items, nil
}

// ListPublished returns published content of the given type and locale,
// most recently published first. A limit of zero or less means no limit.
func (s *ContentStore) ListPublished(ctx context.Context, contentType models.ContentType, locale string, limit int) ([]models.Content, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM content
		WHERE type = $1 AND locale = $2 AND status = 'published'
		ORDER BY published_at DESC NULLS LAST`
	args := []any{contentType, locale}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	items, err := s.list(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list published content: %w", err)
	}
	return items, nil
}

// ListPublishedInCategories returns published articles of a locale filed
// under any of the given categories. Used with category.SubtreeIDs so a
// category page includes its subcategories.
func (s *ContentStore) ListPublishedInCategories(ctx context.Context, locale string, categoryIDs []uuid.UUID) ([]models.Content, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(categoryIDs))
	for i, id := range categoryIDs {
		ids[i] = id.String()
	}
	literal, err := textArrayLiteral(ids)
	if err != nil {
		return nil, fmt.Errorf("list content in categories: %w", err)
	}
	items, err := s.list(ctx, `
		SELECT `+contentColumns+`
		FROM content
		WHERE type = 'article' AND locale = $1 AND status = 'published'
		  AND category_id = ANY($2::uuid[])
		ORDER BY published_at DESC NULLS LAST
	`, locale, literal)
	if err != nil {
		return nil, fmt.Errorf("list content in categories: %w", err)
	}
	return items, nil
}

// FindByID retrieves a content item by its UUID. Returns nil if not found.
func (s *ContentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content WHERE id = $1`, id)
	c, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return c, nil
}

// FindPublished retrieves a published item by type, locale and slug. Used for
// public rendering. Returns nil if not found.
func (s *ContentStore) FindPublished(ctx context.Context, contentType models.ContentType, locale, slug string) (*models.Content, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contentColumns+` FROM content
		WHERE type = $1 AND locale = $2 AND slug = $3 AND status = 'published'
	`, contentType, locale, slug)
	c, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by slug: %w", err)
	}
	return c, nil
}

// SlugTaken reports whether another item in the locale already uses slug.
// Pass uuid.Nil as exceptID when creating.
func (s *ContentStore) SlugTaken(ctx context.Context, locale, slug string, exceptID uuid.UUID) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM content WHERE locale = $1 AND slug = $2 AND id <> $3)
	`, locale, slug, exceptID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check content slug: %w", err)
	}
	return taken, nil
}

// Create inserts a new content item and returns it with the generated ID.
func (s *ContentStore) Create(ctx context.Context, c *models.Content) (*models.Content, error) {
	if c.Status == models.ContentStatusPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO content (type, locale, title, slug, body, excerpt, status,
		                     category_id, cover_url, author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+contentColumns,
		c.Type, c.Locale, c.Title, c.Slug, c.Body, c.Excerpt, c.Status,
		c.CategoryID, c.CoverURL, c.AuthorID, c.PublishedAt,
	)
	result, err := scanContent(row)
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return result, nil
}

// Update modifies an existing content item.
func (s *ContentStore) Update(ctx context.Context, c *models.Content) error {
	// First transition to published stamps the publication time.
	if c.Status == models.ContentStatusPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE content SET
			locale = $1, title = $2, slug = $3, body = $4, excerpt = $5, status = $6,
			category_id = $7, published_at = $8, updated_at = NOW()
		WHERE id = $9
	`, c.Locale, c.Title, c.Slug, c.Body, c.Excerpt, c.Status,
		c.CategoryID, c.PublishedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

// SetCover records the public URL of an uploaded cover image.
func (s *ContentStore) SetCover(ctx context.Context, id uuid.UUID, url string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE content SET cover_url = $1, updated_at = NOW() WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("set content cover: %w", err)
	}
	return nil
}

// Delete removes a content item by ID.
func (s *ContentStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// CountByCategory returns the number of articles filed under each category.
func (s *ContentStore) CountByCategory(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, COUNT(*) FROM content
		WHERE type = 'article' AND category_id IS NOT NULL
		GROUP BY category_id
	`)
	if err != nil {
		return nil, fmt.Errorf("count content by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
