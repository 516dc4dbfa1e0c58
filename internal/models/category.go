// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is a node of a blog's taxonomy. Categories nest through ParentID
// and form a forest; the hierarchy itself is derived by the category package.
//
// ID, Name and Slug are always set. Color, ParentID, BlogID, Escopo and
// Description are optional.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Color       string     `json:"color,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id"`
	BlogID      *uuid.UUID `json:"blog_id,omitempty"`
	Escopo      []string   `json:"escopo"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Well-known scope tags stored in Category.Escopo.
const (
	ScopeMenu   = "menu"
	ScopeFooter = "footer"
	ScopeAdmin  = "admin"
)

// IsRoot reports whether the category has no parent reference at all.
// A category whose parent is missing from a given list is still treated
// as a root by the tree builder even though IsRoot returns false.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// HasScope reports whether scope is one of the category's scope tags.
// Comparison ignores case and surrounding whitespace.
func (c *Category) HasScope(scope string) bool {
	scope = strings.ToLower(strings.TrimSpace(scope))
	return slices.ContainsFunc(c.Escopo, func(s string) bool {
		return strings.ToLower(strings.TrimSpace(s)) == scope
	})
}
