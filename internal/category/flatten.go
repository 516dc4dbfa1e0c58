// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"github.com/google/uuid"

	"revista/internal/models"
)

// Entry is a category annotated with its depth in a flattened forest.
type Entry struct {
	models.Category
	Depth int `json:"depth"`
}

// Flatten walks nodes in pre-order (node, then its children) and returns
// one entry per node. Depth starts at depth for the given nodes and grows
// by one per level below them.
//
// When excludeID is non-nil the matching node and its entire subtree are
// skipped. Pickers pass the category being edited so it can never be
// moved under itself or one of its descendants.
func Flatten(nodes []*Node, depth int, excludeID *uuid.UUID) []Entry {
	var out []Entry
	flattenInto(&out, nodes, depth, excludeID)
	return out
}

func flattenInto(out *[]Entry, nodes []*Node, depth int, excludeID *uuid.UUID) {
	for _, n := range nodes {
		if excludeID != nil && n.ID == *excludeID {
			continue
		}
		*out = append(*out, Entry{Category: n.Category, Depth: depth})
		flattenInto(out, n.Children, depth+1, excludeID)
	}
}
