// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/uuid"

	"revista/internal/models"
)

func TestFilterScope(t *testing.T) {
	news := cat("News", nil)
	news.Escopo = []string{models.ScopeMenu}
	politics := cat("Politics", &news)
	politics.Escopo = []string{"admin"}
	elections := cat("Elections", &politics)
	elections.Escopo = []string{"Menu", models.ScopeFooter}

	got := FilterScope([]models.Category{news, politics, elections}, models.ScopeMenu)
	if len(got) != 2 || got[0].ID != news.ID || got[1].ID != elections.ID {
		t.Fatalf("FilterScope: got %v", got)
	}

	// Elections lost its parent, so it surfaces as a root.
	tree, err := Build(got)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if gotNames := names(tree); !slices.Equal(gotNames, []string{"Elections", "News"}) {
		t.Errorf("roots: got %v", gotNames)
	}
}

func TestAncestors(t *testing.T) {
	a := cat("A", nil)
	b := cat("B", &a)
	c := cat("C", &b)
	cats := []models.Category{c, a, b}

	path := Ancestors(cats, c.ID)
	if len(path) != 3 || path[0].ID != a.ID || path[1].ID != b.ID || path[2].ID != c.ID {
		t.Errorf("Ancestors(C): got %v", path)
	}

	if got := Ancestors(cats, uuid.New()); len(got) != 0 {
		t.Errorf("Ancestors(unknown): got %d, want 0", len(got))
	}
}

func TestAncestors_StopsOnCycle(t *testing.T) {
	a := cat("A", nil)
	b := cat("B", &a)
	a.ParentID = &b.ID

	path := Ancestors([]models.Category{a, b}, a.ID)
	if len(path) != 2 {
		t.Errorf("Ancestors(cycle): got %d entries, want 2", len(path))
	}
}

func TestSubtreeIDs(t *testing.T) {
	a := cat("A", nil)
	b := cat("B", &a)
	c := cat("C", &b)
	d := cat("D", nil)
	tree, _ := Build([]models.Category{a, b, c, d})

	got := SubtreeIDs(tree, a.ID)
	want := []uuid.UUID{a.ID, b.ID, c.ID}
	if !slices.Equal(got, want) {
		t.Errorf("SubtreeIDs(A): got %v, want %v", got, want)
	}
	if got := SubtreeIDs(tree, uuid.New()); got != nil {
		t.Errorf("SubtreeIDs(unknown): got %v, want nil", got)
	}
}

func TestValidateParent(t *testing.T) {
	a := cat("A", nil)
	b := cat("B", &a)
	c := cat("C", &b)
	other := cat("Other", nil)
	cats := []models.Category{a, b, c, other}
	unknown := uuid.New()

	tests := []struct {
		name    string
		id      uuid.UUID
		parent  *uuid.UUID
		wantErr error
	}{
		{"make root", c.ID, nil, nil},
		{"move to sibling tree", b.ID, &other.ID, nil},
		{"move leaf up", c.ID, &a.ID, nil},
		{"new category", uuid.Nil, &c.ID, nil},
		{"self", a.ID, &a.ID, ErrSelfParent},
		{"child", a.ID, &b.ID, ErrDescendantParent},
		{"grandchild", a.ID, &c.ID, ErrDescendantParent},
		{"unknown parent", a.ID, &unknown, ErrUnknownParent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParent(cats, tt.id, tt.parent)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("got %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
