// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access for Revista entities. Each store
// wraps a *sql.DB and exposes typed query methods.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"revista/internal/models"
)

// CategoryStore manages categories in the database. It returns flat rows;
// the hierarchy is derived by package category.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// escopo is read back as its text[] literal so the scan path is the same
// for every database/sql driver.
const categoryColumns = `id, name, slug, color, parent_id, blog_id, escopo::text, description, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Color, &c.ParentID, &c.BlogID,
		textArray{&c.Escopo}, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every category of a blog in storage order. A nil blogID
// lists all categories.
func (s *CategoryStore) List(ctx context.Context, blogID *uuid.UUID) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	var args []any
	if blogID != nil {
		query += ` WHERE blog_id = $1`
		args = append(args, *blogID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug within a blog. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, blogID *uuid.UUID, slug string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE slug = $1 AND blog_id IS NOT DISTINCT FROM $2
	`, slug, blogID)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	escopo, err := textArrayLiteral(c.Escopo)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, color, parent_id, blog_id, escopo, description)
		VALUES ($1, $2, $3, $4, $5, $6::text[], $7)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Color, c.ParentID, c.BlogID, escopo, c.Description,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category. Callers validate the new parent
// with category.ValidateParent first.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	escopo, err := textArrayLiteral(c.Escopo)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE categories SET
			name = $1, slug = $2, color = $3, parent_id = $4,
			escopo = $5::text[], description = $6, updated_at = NOW()
		WHERE id = $7
	`, c.Name, c.Slug, c.Color, c.ParentID, escopo, c.Description, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category by ID. Its children move up to the deleted
// category's parent so the rest of the subtree stays intact.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE categories
		SET parent_id = (SELECT parent_id FROM categories WHERE id = $1), updated_at = NOW()
		WHERE parent_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("reparent category children: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	return tx.Commit()
}

// textArray scans the text literal of a Postgres text[] into a []string.
type textArray struct {
	dst *[]string
}

func (a textArray) Scan(src any) error {
	if src == nil {
		*a.dst = nil
		return nil
	}
	var out []string
	if err := pgtype.NewMap().SQLScanner(&out).Scan(src); err != nil {
		return fmt.Errorf("scan text array: %w", err)
	}
	*a.dst = out
	return nil
}

// textArrayLiteral renders vals as a text[] literal for a $n::text[] parameter.
func textArrayLiteral(vals []string) (string, error) {
	if len(vals) == 0 {
		return "{}", nil
	}
	buf, err := pgtype.NewMap().Encode(pgtype.TextArrayOID, pgtype.TextFormatCode, vals, nil)
	if err != nil {
		return "", fmt.Errorf("encode text array: %w", err)
	}
	return string(buf), nil
}
