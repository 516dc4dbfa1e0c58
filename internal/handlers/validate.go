// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"revista/internal/slug"
)

// Validation limits for content and category fields.
const (
	maxTitleLen        = 300
	maxSlugLen         = 300
	maxBodyLen         = 100_000
	maxExcerptLen      = 1_000
	maxCategoryNameLen = 120
	maxDescriptionLen  = 1_000
)

// hexColor matches #rgb and #rrggbb.
var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// validateContent checks content form inputs and returns the first error found.
func validateContent(title, contentSlug, body, excerpt string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(contentSlug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	if contentSlug != "" && !slug.Valid(contentSlug) {
		return "Slug may only contain lowercase letters, digits and hyphens."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	return ""
}

// validateCategory checks category form inputs and returns the first error found.
func validateCategory(name, categorySlug, color, description string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "Name is too long (max 120 characters)."
	}
	if utf8.RuneCountInString(categorySlug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	if categorySlug != "" && !slug.Valid(categorySlug) {
		return "Slug may only contain lowercase letters, digits and hyphens."
	}
	if color != "" && !hexColor.MatchString(color) {
		return "Color must be a hex value like #1f2937."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 1,000 characters)."
	}
	return ""
}
