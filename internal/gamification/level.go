// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package gamification turns a reader's experience points into a level.
// Level L starts at 100*(L-1)^2 XP, so each level takes a little longer
// than the previous one.
package gamification

import (
	"errors"
	"math"
	"strings"
)

// xpPerLevelUnit scales the quadratic level curve.
const xpPerLevelUnit = 100

// MaxAward bounds a single ledger entry in either direction.
const MaxAward = 10_000

// Balance describes a user's XP total and level progress.
type Balance struct {
	XP          int     `json:"xp"`
	Level       int     `json:"level"`
	LevelFloor  int     `json:"level_floor"`   // XP at which the current level started
	NextLevelAt int     `json:"next_level_at"` // XP required for the next level
	Progress    float64 `json:"progress"`      // 0..1 towards the next level
}

// ThresholdFor returns the total XP needed to reach level.
func ThresholdFor(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return xpPerLevelUnit * n * n
}

// LevelFor returns the level reached with xp points. Negative totals
// count as zero.
func LevelFor(xp int) int {
	if xp <= 0 {
		return 1
	}
	level := int(math.Sqrt(float64(xp)/xpPerLevelUnit)) + 1
	// Guard against float rounding at exact thresholds.
	for ThresholdFor(level+1) <= xp {
		level++
	}
	for level > 1 && ThresholdFor(level) > xp {
		level--
	}
	return level
}

// NewBalance computes the full balance for an XP total.
func NewBalance(xp int) Balance {
	if xp < 0 {
		xp = 0
	}
	level := LevelFor(xp)
	floor := ThresholdFor(level)
	next := ThresholdFor(level + 1)
	return Balance{
		XP:          xp,
		Level:       level,
		LevelFloor:  floor,
		NextLevelAt: next,
		Progress:    float64(xp-floor) / float64(next-floor),
	}
}

var (
	ErrZeroAward     = errors.New("award amount must not be zero")
	ErrAwardTooLarge = errors.New("award amount exceeds the per-entry limit")
	ErrNoReason      = errors.New("award reason is required")
)

// ValidateAward checks a ledger entry before it is stored.
func ValidateAward(amount int, reason string) error {
	if amount == 0 {
		return ErrZeroAward
	}
	if amount > MaxAward || amount < -MaxAward {
		return ErrAwardTooLarge
	}
	if strings.TrimSpace(reason) == "" {
		return ErrNoReason
	}
	return nil
}
