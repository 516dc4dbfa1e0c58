// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentType distinguishes between articles and static pages in the
// unified content table.
type ContentType string

const (
	ContentTypeArticle ContentType = "article"
	ContentTypePage    ContentType = "page"
)

// ContentStatus represents the publishing state of a content item.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// Content represents an article or a static page. Both share the same
// table, differentiated by Type. Slugs are unique per locale.
type Content struct {
	ID          uuid.UUID     `json:"id"`
	Type        ContentType   `json:"type"`
	Locale      string        `json:"locale"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Body        string        `json:"body"` // Markdown source
	Excerpt     *string       `json:"excerpt,omitempty"`
	Status      ContentStatus `json:"status"`
	CategoryID  *uuid.UUID    `json:"category_id,omitempty"`
	CoverURL    *string       `json:"cover_url,omitempty"`
	AuthorID    uuid.UUID     `json:"author_id"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsPublished returns true if the content item is in published status.
func (c *Content) IsPublished() bool {
	return c.Status == ContentStatusPublished
}

// IsArticle returns true for magazine articles (as opposed to static pages).
func (c *Content) IsArticle() bool {
	return c.Type == ContentTypeArticle
}
