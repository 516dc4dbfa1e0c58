// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrSelfParent is returned when a category is made its own parent.
	ErrSelfParent = errors.New("category cannot be its own parent")

	// ErrDescendantParent is returned when a category would be moved
	// under one of its own descendants.
	ErrDescendantParent = errors.New("category cannot be moved under its own descendant")

	// ErrUnknownParent is returned when the requested parent does not exist.
	ErrUnknownParent = errors.New("parent category does not exist")
)

// CycleError lists categories that Build left out of the forest because
// their parent chain loops instead of ending at a root.
type CycleError struct {
	IDs []uuid.UUID
}

func (e *CycleError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("category parent cycle: %d unreachable categories (%s)",
		len(e.IDs), strings.Join(ids, ", "))
}

// Contains reports whether id is one of the stranded categories.
func (e *CycleError) Contains(id uuid.UUID) bool {
	for _, v := range e.IDs {
		if v == id {
			return true
		}
	}
	return false
}
