// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Revista magazine.
// Handlers are grouped by concern (public, api, admin, auth) and receive
// their dependencies through the handler struct.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"revista/internal/category"
	"revista/internal/i18n"
	"revista/internal/metrics"
	"revista/internal/models"
)

// Site holds the settings shared by every handler group.
type Site struct {
	Name    string
	Locales *i18n.Locales
	// BlogID scopes the category taxonomy; nil uses every category.
	BlogID *uuid.UUID
}

// buildTree builds the category forest for locale. A parent cycle is not
// fatal: the reachable categories are still returned and the stranded ones
// are logged.
func (s *Site) buildTree(cats []models.Category, locale string) []*category.Node {
	tree, err := category.Build(cats, category.WithLocale(s.Locales.Tag(locale)))
	var cycle *category.CycleError
	if errors.As(err, &cycle) {
		slog.Warn("category hierarchy has a parent cycle", "count", len(cycle.IDs), "ids", cycle.IDs)
	}
	return tree
}

// recordStranded publishes the stranded count of a build over the whole
// taxonomy. Builds over a filtered subset must not call it.
func recordStranded(err error) {
	var cycle *category.CycleError
	if errors.As(err, &cycle) {
		metrics.CategoriesStranded.Set(float64(len(cycle.IDs)))
		return
	}
	metrics.CategoriesStranded.Set(0)
}

// menu loads the navigation forest: categories tagged for the menu scope.
// The returned categories are the public ones, admin scope removed.
func (s *Site) menu(ctx context.Context, repo CategoryRepo, locale string) ([]*category.Node, []models.Category, error) {
	cats, err := repo.List(ctx, s.BlogID)
	if err != nil {
		return nil, nil, err
	}
	return s.buildTree(category.FilterScope(cats, models.ScopeMenu), locale), publicCategories(cats), nil
}

// writeJSON sends data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write json failed", "error", err)
	}
}

// writeJSONError sends {"error": msg}.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
