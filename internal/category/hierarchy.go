// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"revista/internal/models"
)

// FilterScope returns the categories tagged with scope, in input order.
// Children of filtered-out parents become roots once built.
func FilterScope(cats []models.Category, scope string) []models.Category {
	var out []models.Category
	for _, c := range cats {
		if c.HasScope(scope) {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the node with the given id, searching depth-first.
func Find(nodes []*Node, id uuid.UUID) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if found := Find(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// SubtreeIDs returns id followed by the ids of all its descendants in
// pre-order. It returns nil when id is not in the forest.
func SubtreeIDs(nodes []*Node, id uuid.UUID) []uuid.UUID {
	n := Find(nodes, id)
	if n == nil {
		return nil
	}
	ids := []uuid.UUID{n.ID}
	for _, e := range Flatten(n.Children, 0, nil) {
		ids = append(ids, e.ID)
	}
	return ids
}

// Ancestors returns the breadcrumb path from the outermost ancestor down
// to the category with the given id, inclusive. Parents missing from
// cats end the path. The walk stops if it revisits a category.
func Ancestors(cats []models.Category, id uuid.UUID) []models.Category {
	byID := make(map[uuid.UUID]models.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	var path []models.Category
	seen := make(map[uuid.UUID]bool)
	cur, ok := byID[id]
	for ok && !seen[cur.ID] {
		seen[cur.ID] = true
		path = append(path, cur)
		if cur.ParentID == nil {
			break
		}
		cur, ok = byID[*cur.ParentID]
	}
	slices.Reverse(path)
	return path
}

// ValidateParent checks that giving category id the parent parentID keeps
// the hierarchy acyclic. A nil parentID (make it a root) is always valid.
// id may be uuid.Nil for a category that does not exist yet.
func ValidateParent(cats []models.Category, id uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return ErrSelfParent
	}

	parents := make(map[uuid.UUID]*uuid.UUID, len(cats))
	for _, c := range cats {
		parents[c.ID] = c.ParentID
	}
	if _, ok := parents[*parentID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParent, parentID)
	}

	// Walk upward from the proposed parent; meeting id means the parent
	// is currently one of id's descendants.
	seen := make(map[uuid.UUID]bool)
	for cur := parentID; cur != nil; cur = parents[*cur] {
		if *cur == id {
			return ErrDescendantParent
		}
		if seen[*cur] {
			break
		}
		seen[*cur] = true
	}
	return nil
}
