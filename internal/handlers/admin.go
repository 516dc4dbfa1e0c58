// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"revista/internal/category"
	"revista/internal/models"
	"revista/internal/render"
	"revista/internal/slug"
	"revista/internal/store"
)

// categoryScopes are the scope tags offered on the category form.
var categoryScopes = []string{models.ScopeMenu, models.ScopeFooter, models.ScopeAdmin}

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	site       *Site
	renderer   *render.Renderer
	categories CategoryRepo
	content    ContentRepo
	pageCache  PageCache
	cacheLog   CacheLogger
	covers     CoverStorage
	notifier   ContentNotifier
}

// NewAdmin creates a new Admin handler group with the given dependencies.
// covers may be nil if S3 is not configured.
func NewAdmin(site *Site, renderer *render.Renderer, categories CategoryRepo, content ContentRepo, pageCache PageCache, cacheLog CacheLogger, covers CoverStorage, notifier ContentNotifier) *Admin {
	return &Admin{
		site:       site,
		renderer:   renderer,
		categories: categories,
		content:    content,
		pageCache:  pageCache,
		cacheLog:   cacheLog,
		covers:     covers,
		notifier:   notifier,
	}
}

// --- Categories ---

// adminTree loads the blog's categories and builds the full forest in the
// default locale. Categories stranded by a parent cycle are returned too
// so the list page can point them out.
func (a *Admin) adminTree(ctx context.Context) ([]models.Category, []*category.Node, []models.Category, error) {
	cats, err := a.categories.List(ctx, a.site.BlogID)
	if err != nil {
		return nil, nil, nil, err
	}
	tree, err := category.Build(cats, category.WithLocale(a.site.Locales.Tag(a.site.Locales.Default())))
	recordStranded(err)
	var stranded []models.Category
	var cycle *category.CycleError
	if errors.As(err, &cycle) {
		for _, c := range cats {
			if cycle.Contains(c.ID) {
				stranded = append(stranded, c)
			}
		}
	}
	return cats, tree, stranded, nil
}

// CategoriesList renders the category tree as an indented table.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, tree, stranded, err := a.adminTree(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	counts, err := a.content.CountByCategory(ctx)
	if err != nil {
		slog.Error("count articles by category failed", "error", err)
		counts = map[uuid.UUID]int{}
	}

	names := make([]string, len(stranded))
	for i, c := range stranded {
		names[i] = c.Name
	}

	a.renderer.Page(w, r, "categories_list", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Data: map[string]any{
			"Entries":    category.Flatten(tree, 0, nil),
			"Counts":     counts,
			"CycleNames": names,
		},
	})
}

// CategoryNew renders the empty category form.
func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	_, tree, _, err := a.adminTree(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderCategoryForm(w, r, http.StatusOK, &models.Category{Escopo: []string{models.ScopeMenu}}, tree, false, "")
}

// CategoryCreate stores a new category.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cats, tree, _, err := a.adminTree(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	c := &models.Category{BlogID: a.site.BlogID}
	if msg := a.applyCategoryForm(r, c, cats); msg != "" {
		a.renderCategoryForm(w, r, http.StatusUnprocessableEntity, c, tree, false, msg)
		return
	}

	created, err := a.categories.Create(ctx, c)
	if err != nil {
		slog.Error("create category failed", "error", err)
		a.renderCategoryForm(w, r, http.StatusInternalServerError, c, tree, false, "Failed to create the category.")
		return
	}

	a.invalidate(ctx, store.EntityCategory, created.ID, "create")
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryEdit renders the edit form. The parent picker leaves out the
// category and its whole subtree.
func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	c, err := a.categories.FindByID(ctx, id)
	if err != nil || c == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	_, tree, _, err := a.adminTree(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderCategoryForm(w, r, http.StatusOK, c, tree, true, "")
}

// CategoryUpdate saves changes to a category. Moving it under itself or
// one of its descendants is rejected.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	c, err := a.categories.FindByID(ctx, id)
	if err != nil || c == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	cats, tree, _, err := a.adminTree(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if msg := a.applyCategoryForm(r, c, cats); msg != "" {
		a.renderCategoryForm(w, r, http.StatusUnprocessableEntity, c, tree, true, msg)
		return
	}
	if err := a.categories.Update(ctx, c); err != nil {
		slog.Error("update category failed", "error", err, "id", id)
		a.renderCategoryForm(w, r, http.StatusInternalServerError, c, tree, true, "Failed to save the category.")
		return
	}

	a.invalidate(ctx, store.EntityCategory, id, "update")
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryDelete removes a category. Its children move up to its parent.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	if err := a.categories.Delete(ctx, id); err != nil {
		slog.Error("delete category failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.invalidate(ctx, store.EntityCategory, id, "delete")
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// applyCategoryForm copies the submitted form onto c and validates it
// against the existing categories. Returns a user-facing error message.
func (a *Admin) applyCategoryForm(r *http.Request, c *models.Category, cats []models.Category) string {
	c.Name = strings.TrimSpace(r.FormValue("name"))
	c.Slug = strings.TrimSpace(r.FormValue("slug"))
	c.Color = strings.TrimSpace(r.FormValue("color"))
	c.Description = strings.TrimSpace(r.FormValue("description"))

	c.Escopo = c.Escopo[:0]
	if err := r.ParseForm(); err == nil {
		for _, s := range r.Form["escopo"] {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" && !c.HasScope(s) {
				c.Escopo = append(c.Escopo, s)
			}
		}
	}

	c.ParentID = nil
	if raw := r.FormValue("parent_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			return "The selected parent is not valid."
		}
		c.ParentID = &pid
	}

	if msg := validateCategory(c.Name, c.Slug, c.Color, c.Description); msg != "" {
		return msg
	}
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
		if c.Slug == "" {
			return "Could not derive a slug from the name; please enter one."
		}
	}
	for _, other := range cats {
		if other.ID != c.ID && other.Slug == c.Slug {
			return "Another category already uses this slug."
		}
	}

	switch err := category.ValidateParent(cats, c.ID, c.ParentID); {
	case err == nil:
	case errors.Is(err, category.ErrSelfParent):
		return "A category cannot be its own parent."
	case errors.Is(err, category.ErrDescendantParent):
		return "A category cannot be moved under one of its subcategories."
	case errors.Is(err, category.ErrUnknownParent):
		return "The selected parent no longer exists."
	default:
		return "The selected parent is not valid."
	}
	return ""
}

func (a *Admin) renderCategoryForm(w http.ResponseWriter, r *http.Request, status int, c *models.Category, tree []*category.Node, editing bool, errMsg string) {
	title, action := "New category", "/admin/categories"
	var exclude *uuid.UUID
	if editing {
		title, action = "Edit category", "/admin/categories/"+c.ID.String()
		id := c.ID
		exclude = &id
	}
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	a.renderer.Page(w, r, "category_form", &render.PageData{
		Title:   title,
		Section: "categories",
		Data: map[string]any{
			"Category": c,
			"Editing":  editing,
			"Action":   action,
			"Parents":  category.Flatten(tree, 0, exclude),
			"Scopes":   categoryScopes,
			"Error":    errMsg,
		},
	})
}

// --- Cache invalidation ---

// invalidate purges every cached page and records why. Navigation appears
// on every page, so any category or content change can affect any page.
func (a *Admin) invalidate(ctx context.Context, entityType string, id uuid.UUID, action string) {
	a.pageCache.InvalidateAll(ctx)
	a.cacheLog.Log(ctx, entityType, id, action)
}
