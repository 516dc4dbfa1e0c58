// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"revista/internal/category"
	"revista/internal/gamification"
	"revista/internal/i18n"
	"revista/internal/middleware"
	"revista/internal/models"
)

// recentEventLimit caps the ledger entries returned with a balance.
const recentEventLimit = 10

// API groups the JSON endpoints used by the site's client-side code and
// by external consumers.
type API struct {
	site       *Site
	categories CategoryRepo
	xp         XPRepo
}

// NewAPI creates a new API handler group.
func NewAPI(site *Site, categories CategoryRepo, xp XPRepo) *API {
	return &API{site: site, categories: categories, xp: xp}
}

type navigationResponse struct {
	Locale     string           `json:"locale"`
	Scope      string           `json:"scope"`
	Categories []*category.Node `json:"categories"`
	// Stranded lists categories hidden because their parents form a loop.
	Stranded []uuid.UUID `json:"stranded,omitempty"`
}

// Navigation returns the category forest for a scope (default "menu") in
// the collation order of the path locale. scope=all returns every public
// category. The admin scope is only served to editors.
func (a *API) Navigation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := i18n.FromContext(ctx)

	scope := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("scope")))
	if scope == "" {
		scope = models.ScopeMenu
	}
	if scope == models.ScopeAdmin {
		if u := middleware.UserFromCtx(ctx); u == nil || !u.CanEdit() {
			writeJSONError(w, http.StatusForbidden, "scope not available")
			return
		}
	}

	cats, err := a.categories.List(ctx, a.site.BlogID)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if scope == "all" {
		cats = publicCategories(cats)
	} else {
		cats = category.FilterScope(cats, scope)
	}

	resp := navigationResponse{Locale: locale, Scope: scope, Categories: []*category.Node{}}
	tree, err := category.Build(cats, category.WithLocale(a.site.Locales.Tag(locale)))
	if tree != nil {
		resp.Categories = tree
	}
	var cycle *category.CycleError
	if errors.As(err, &cycle) {
		resp.Stranded = cycle.IDs
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, resp)
}

// publicCategories drops categories reserved for the admin scope.
func publicCategories(cats []models.Category) []models.Category {
	out := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		if !c.HasScope(models.ScopeAdmin) {
			out = append(out, c)
		}
	}
	return out
}

type balanceResponse struct {
	UserID uuid.UUID `json:"user_id"`
	gamification.Balance
	Recent []models.XPEvent `json:"recent"`
}

// Balance returns the authenticated user's XP total and level.
func (a *API) Balance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := middleware.UserFromCtx(ctx)
	if u == nil {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	total, err := a.xp.Total(ctx, u.ID)
	if err != nil {
		slog.Error("xp total failed", "error", err, "user_id", u.ID)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	recent, err := a.xp.Recent(ctx, u.ID, recentEventLimit)
	if err != nil {
		slog.Error("xp recent failed", "error", err, "user_id", u.ID)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if recent == nil {
		recent = []models.XPEvent{}
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		UserID:  u.ID,
		Balance: gamification.NewBalance(total),
		Recent:  recent,
	})
}

type awardRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Amount int       `json:"amount"`
	Reason string    `json:"reason"`
}

type awardResponse struct {
	Event   *models.XPEvent      `json:"event"`
	Balance gamification.Balance `json:"balance"`
}

// Award appends an entry to a user's XP ledger. Editors only.
func (a *API) Award(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req awardRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == uuid.Nil {
		writeJSONError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if err := gamification.ValidateAward(req.Amount, req.Reason); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ev, err := a.xp.Award(ctx, req.UserID, req.Amount, strings.TrimSpace(req.Reason))
	if err != nil {
		slog.Error("xp award failed", "error", err, "user_id", req.UserID)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	total, err := a.xp.Total(ctx, req.UserID)
	if err != nil {
		slog.Error("xp total failed", "error", err, "user_id", req.UserID)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	actor := "unknown"
	if u := middleware.UserFromCtx(ctx); u != nil {
		actor = u.Email
	}
	slog.Info("xp awarded", "user_id", req.UserID, "amount", req.Amount, "by", actor)
	writeJSON(w, http.StatusCreated, awardResponse{Event: ev, Balance: gamification.NewBalance(total)})
}

type manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	Lang            string `json:"lang"`
	StartURL        string `json:"start_url"`
	Scope           string `json:"scope"`
	Display         string `json:"display"`
	BackgroundColor string `json:"background_color"`
	ThemeColor      string `json:"theme_color"`
	Description     string `json:"description"`
}

// Manifest serves the web app manifest for ?locale=, falling back to the
// negotiated locale.
func (a *API) Manifest(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")
	if !a.site.Locales.Supports(locale) {
		locale = a.site.Locales.Negotiate(r)
	}
	w.Header().Set("Content-Type", "application/manifest+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	json.NewEncoder(w).Encode(manifest{
		Name:            a.site.Name,
		ShortName:       a.site.Name,
		Lang:            locale,
		StartURL:        "/" + locale + "/",
		Scope:           "/",
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#111827",
		Description:     i18n.T(locale, "Latest articles"),
	})
}

// Health returns a simple JSON health check response.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
