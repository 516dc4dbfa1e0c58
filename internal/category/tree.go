// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package category derives the category hierarchy from a flat list of
// records. It builds a name-ordered forest for navigation menus and
// flattens it into depth-annotated entries for indented pickers.
//
// All functions are pure: they never mutate their input, keep no state
// between calls and are safe for concurrent use.
package category

import (
	"slices"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"revista/internal/models"
)

// DefaultLocale is the collation locale used when Build is given none.
var DefaultLocale = language.BrazilianPortuguese

// Node is a category together with its ordered child nodes.
type Node struct {
	models.Category
	Children []*Node `json:"children"`
}

type buildOptions struct {
	locale language.Tag
}

// Option configures Build.
type Option func(*buildOptions)

// WithLocale sets the locale whose collation rules order sibling names.
func WithLocale(tag language.Tag) Option {
	return func(o *buildOptions) {
		o.locale = tag
	}
}

// Build converts a flat list of categories into a forest.
//
// A category becomes a root when its ParentID is nil or refers to an id
// absent from cats. Every other category is attached to its parent. Each
// children list, the root list included, is sorted by name using the
// collation of the configured locale; equal names keep input order.
//
// When the same id appears more than once the last record wins, placed
// where the id first appeared.
//
// Categories caught in a parent cycle (and anything nested below one) can
// never be reached from a root. They are left out of the forest and
// reported through a *CycleError, returned alongside the valid forest.
func Build(cats []models.Category, opts ...Option) ([]*Node, error) {
	o := buildOptions{locale: DefaultLocale}
	for _, opt := range opts {
		opt(&o)
	}

	lookup := make(map[uuid.UUID]*Node, len(cats))
	order := make([]uuid.UUID, 0, len(cats))
	for _, c := range cats {
		if n, ok := lookup[c.ID]; ok {
			n.Category = c
			continue
		}
		lookup[c.ID] = &Node{Category: c}
		order = append(order, c.ID)
	}

	var roots []*Node
	for _, id := range order {
		n := lookup[id]
		if n.ParentID != nil {
			if parent, ok := lookup[*n.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	reached := make(map[uuid.UUID]bool, len(lookup))
	markReached(roots, reached)

	var cycleErr error
	if len(reached) < len(lookup) {
		var stranded []uuid.UUID
		for _, id := range order {
			if !reached[id] {
				stranded = append(stranded, id)
			}
		}
		cycleErr = &CycleError{IDs: stranded}
	}

	col := collate.New(o.locale)
	sortNodes(roots, col)
	return roots, cycleErr
}

// markReached records every node reachable from nodes.
func markReached(nodes []*Node, reached map[uuid.UUID]bool) {
	for _, n := range nodes {
		reached[n.ID] = true
		markReached(n.Children, reached)
	}
}

// sortNodes orders nodes and, recursively, their children by name.
// A collator is not safe for concurrent use, so callers own theirs.
func sortNodes(nodes []*Node, col *collate.Collator) {
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return col.CompareString(a.Name, b.Name)
	})
	for _, n := range nodes {
		sortNodes(n.Children, col)
	}
}

// Count returns the number of nodes in the forest.
func Count(nodes []*Node) int {
	total := 0
	for _, n := range nodes {
		total += 1 + Count(n.Children)
	}
	return total
}
