// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"revista/internal/models"
)

// XPStore is the append-only ledger of experience points per reader.
type XPStore struct {
	db *sql.DB
}

// NewXPStore creates a new XPStore.
func NewXPStore(db *sql.DB) *XPStore {
	return &XPStore{db: db}
}

// Award appends an XP event. Amounts may be negative to correct mistakes;
// validation happens in package gamification.
func (s *XPStore) Award(ctx context.Context, userID uuid.UUID, amount int, reason string) (*models.XPEvent, error) {
	var e models.XPEvent
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO xp_events (user_id, amount, reason)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, amount, reason, created_at
	`, userID, amount, reason).Scan(&e.ID, &e.UserID, &e.Amount, &e.Reason, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("award xp: %w", err)
	}
	return &e, nil
}

// Total returns the summed XP of a user, zero when they have no events.
func (s *XPStore) Total(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM xp_events WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum xp: %w", err)
	}
	return total, nil
}

// Recent returns the latest events of a user, newest first.
func (s *XPStore) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.XPEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount, reason, created_at
		FROM xp_events WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list xp events: %w", err)
	}
	defer rows.Close()

	var events []models.XPEvent
	for rows.Next() {
		var e models.XPEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan xp event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
