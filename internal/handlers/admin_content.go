// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"revista/internal/category"
	"revista/internal/imaging"
	"revista/internal/markdown"
	"revista/internal/middleware"
	"revista/internal/models"
	"revista/internal/render"
	"revista/internal/slug"
	"revista/internal/storage"
	"revista/internal/store"
	"revista/internal/webhook"
)

const excerptLength = 200

func sectionFor(t models.ContentType) string {
	if t == models.ContentTypePage {
		return "pages"
	}
	return "articles"
}

// --- Articles ---

func (a *Admin) ArticlesList(w http.ResponseWriter, r *http.Request) {
	a.contentList(w, r, models.ContentTypeArticle)
}

func (a *Admin) ArticleNew(w http.ResponseWriter, r *http.Request) {
	a.contentNew(w, r, models.ContentTypeArticle)
}

func (a *Admin) ArticleCreate(w http.ResponseWriter, r *http.Request) {
	a.contentCreate(w, r, models.ContentTypeArticle)
}

func (a *Admin) ArticleEdit(w http.ResponseWriter, r *http.Request) {
	a.contentEdit(w, r, models.ContentTypeArticle)
}

func (a *Admin) ArticleUpdate(w http.ResponseWriter, r *http.Request) {
	a.contentUpdate(w, r, models.ContentTypeArticle)
}

func (a *Admin) ArticleDelete(w http.ResponseWriter, r *http.Request) {
	a.contentDelete(w, r, models.ContentTypeArticle)
}

// --- Pages ---

func (a *Admin) PagesList(w http.ResponseWriter, r *http.Request) {
	a.contentList(w, r, models.ContentTypePage)
}

func (a *Admin) PageNew(w http.ResponseWriter, r *http.Request) {
	a.contentNew(w, r, models.ContentTypePage)
}

func (a *Admin) PageCreate(w http.ResponseWriter, r *http.Request) {
	a.contentCreate(w, r, models.ContentTypePage)
}

func (a *Admin) PageEdit(w http.ResponseWriter, r *http.Request) {
	a.contentEdit(w, r, models.ContentTypePage)
}

func (a *Admin) PageUpdate(w http.ResponseWriter, r *http.Request) {
	a.contentUpdate(w, r, models.ContentTypePage)
}

func (a *Admin) PageDelete(w http.ResponseWriter, r *http.Request) {
	a.contentDelete(w, r, models.ContentTypePage)
}

// --- Shared content handlers ---

func (a *Admin) contentList(w http.ResponseWriter, r *http.Request, t models.ContentType) {
	locale := r.URL.Query().Get("locale")
	if locale != "" && !a.site.Locales.Supports(locale) {
		locale = ""
	}
	items, err := a.content.ListByType(r.Context(), t, locale)
	if err != nil {
		slog.Error("list content failed", "error", err, "type", t)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	title := "Articles"
	if t == models.ContentTypePage {
		title = "Pages"
	}
	a.renderer.Page(w, r, "content_list", &render.PageData{
		Title:   title,
		Section: sectionFor(t),
		Data: map[string]any{
			"Items":  items,
			"Locale": locale,
		},
	})
}

func (a *Admin) contentNew(w http.ResponseWriter, r *http.Request, t models.ContentType) {
	item := &models.Content{
		Type:   t,
		Locale: a.site.Locales.Default(),
		Status: models.ContentStatusDraft,
	}
	a.renderContentForm(w, r, http.StatusOK, item, false, "")
}

func (a *Admin) contentCreate(w http.ResponseWriter, r *http.Request, t models.ContentType) {
	ctx := r.Context()
	item := &models.Content{Type: t}
	if u := middleware.UserFromCtx(ctx); u != nil {
		item.AuthorID = u.ID
	}
	if msg := a.applyContentForm(r, item); msg != "" {
		a.renderContentForm(w, r, http.StatusUnprocessableEntity, item, false, msg)
		return
	}

	created, err := a.content.Create(ctx, item)
	if err != nil {
		slog.Error("create content failed", "error", err, "type", t)
		a.renderContentForm(w, r, http.StatusInternalServerError, item, false, "Failed to save.")
		return
	}

	a.invalidate(ctx, store.EntityContent, created.ID, "create")
	if created.IsPublished() {
		a.notifier.NotifyAsync(webhook.EventPublished, created)
	}
	http.Redirect(w, r, "/admin/"+sectionFor(t), http.StatusSeeOther)
}

func (a *Admin) contentEdit(w http.ResponseWriter, r *http.Request, t models.ContentType) {
	item, ok := a.loadContent(w, r, t)
	if !ok {
		return
	}
	a.renderContentForm(w, r, http.StatusOK, item, true, "")
}

func (a *Admin) contentUpdate(w http.ResponseWriter, r *http.Request, t models.ContentType) {
	item, ok := a.loadContent(w, r, t)
	if !ok {
		return
	}
	ctx := r.Context()
	wasPublished := item.IsPublished()

	if msg := a.applyContentForm(r, item); msg != "" {
		a.renderContentForm(w, r, http.StatusUnprocessableEntity, item, true, msg)
		return
	}
	if err := a.content.Update(ctx, item); err != nil {
		slog.Error("update content failed", "error", err, "id", item.ID)
		a.renderContentForm(w, r, http.StatusInternalServerError, item, true, "Failed to save.")
		return
	}

	a.invalidate(ctx, store.EntityContent, item.ID, "update")
	switch {
	case item.IsPublished() && !wasPublished:
		a.notifier.NotifyAsync(webhook.EventPublished, item)
	case !item.IsPublished() && wasPublished:
		a.notifier.NotifyAsync(webhook.EventUnpublished, item)
	}
	http.Redirect(w, r, "/admin/"+sectionFor(t), http.StatusSeeOther)
}

func (a *Admin) contentDelete(w http.ResponseWriter, r *http.Request, t models.ContentType) {
	item, ok := a.loadContent(w, r, t)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := a.content.Delete(ctx, item.ID); err != nil {
		slog.Error("delete content failed", "error", err, "id", item.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if item.CoverURL != nil && a.covers != nil {
		if err := a.covers.DeleteURL(ctx, *item.CoverURL); err != nil {
			slog.Warn("delete cover failed", "error", err, "url", *item.CoverURL)
		}
	}

	a.invalidate(ctx, store.EntityContent, item.ID, "delete")
	if item.IsPublished() {
		a.notifier.NotifyAsync(webhook.EventDeleted, item)
	}
	http.Redirect(w, r, "/admin/"+sectionFor(t), http.StatusSeeOther)
}

// ArticleCover uploads a cover image for an article and replaces the
// previous one.
func (a *Admin) ArticleCover(w http.ResponseWriter, r *http.Request) {
	if a.covers == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	item, ok := a.loadContent(w, r, models.ContentTypeArticle)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxCoverSize+(1<<20))
	file, header, err := r.FormFile("cover")
	if err != nil {
		http.Error(w, "Cover image is required and must be at most 5 MB", http.StatusBadRequest)
		return
	}
	defer file.Close()
	if header.Size > storage.MaxCoverSize {
		http.Error(w, "Cover image must be at most 5 MB", http.StatusRequestEntityTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Cover image could not be read", http.StatusBadRequest)
		return
	}
	cover, err := imaging.FitCover(data, imaging.MaxCoverWidth)
	if err != nil {
		http.Error(w, "Cover must be a JPEG, PNG, WebP or GIF image", http.StatusUnsupportedMediaType)
		return
	}
	if cover.Resized {
		slog.Info("cover downscaled", "id", item.ID, "width", cover.Width, "height", cover.Height)
	}

	ctx := r.Context()
	url, err := a.covers.UploadCover(ctx, item.ID, cover.ContentType, bytes.NewReader(cover.Data), int64(len(cover.Data)))
	if errors.Is(err, storage.ErrUnsupportedType) {
		http.Error(w, "Cover must be a JPEG, PNG, WebP or GIF image", http.StatusUnsupportedMediaType)
		return
	}
	if err != nil {
		slog.Error("upload cover failed", "error", err, "id", item.ID)
		http.Error(w, "Upload failed", http.StatusBadGateway)
		return
	}
	if err := a.content.SetCover(ctx, item.ID, url); err != nil {
		slog.Error("set cover failed", "error", err, "id", item.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	// Every upload gets a fresh key, so the previous object is orphaned.
	if item.CoverURL != nil && *item.CoverURL != url {
		if err := a.covers.DeleteURL(ctx, *item.CoverURL); err != nil {
			slog.Warn("delete old cover failed", "error", err, "url", *item.CoverURL)
		}
	}

	a.invalidate(ctx, store.EntityContent, item.ID, "cover")
	http.Redirect(w, r, "/admin/articles/"+item.ID.String(), http.StatusSeeOther)
}

// loadContent resolves the {id} URL parameter to a content item of type t,
// writing the error response itself when it can't.
func (a *Admin) loadContent(w http.ResponseWriter, r *http.Request, t models.ContentType) (*models.Content, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}
	item, err := a.content.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find content failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if item == nil || item.Type != t {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil, false
	}
	return item, true
}

// applyContentForm copies the submitted form onto item and validates it.
// Returns a user-facing error message.
func (a *Admin) applyContentForm(r *http.Request, item *models.Content) string {
	ctx := r.Context()
	item.Title = strings.TrimSpace(r.FormValue("title"))
	item.Slug = strings.TrimSpace(r.FormValue("slug"))
	item.Body = r.FormValue("body")
	item.Locale = strings.TrimSpace(r.FormValue("locale"))
	excerpt := strings.TrimSpace(r.FormValue("excerpt"))

	switch status := models.ContentStatus(r.FormValue("status")); status {
	case models.ContentStatusDraft, models.ContentStatusPublished:
		item.Status = status
	default:
		return "Status must be draft or published."
	}

	if msg := validateContent(item.Title, item.Slug, item.Body, excerpt); msg != "" {
		return msg
	}
	if !a.site.Locales.Supports(item.Locale) {
		return "Unsupported locale."
	}
	if item.Slug == "" {
		item.Slug = slug.Generate(item.Title)
		if item.Slug == "" {
			return "Could not derive a slug from the title; please enter one."
		}
	}

	if excerpt == "" {
		excerpt = markdown.Excerpt(item.Body, excerptLength)
	}
	item.Excerpt = nil
	if excerpt != "" {
		item.Excerpt = &excerpt
	}

	item.CategoryID = nil
	if item.IsArticle() {
		if raw := r.FormValue("category_id"); raw != "" {
			cid, err := uuid.Parse(raw)
			if err != nil {
				return "The selected category is not valid."
			}
			c, err := a.categories.FindByID(ctx, cid)
			if err != nil {
				slog.Error("find category failed", "error", err, "id", cid)
				return "Failed to check the category."
			}
			if c == nil {
				return "The selected category no longer exists."
			}
			item.CategoryID = &cid
		}
	}

	taken, err := a.content.SlugTaken(ctx, item.Locale, item.Slug, item.ID)
	if err != nil {
		slog.Error("check slug failed", "error", err)
		return "Failed to check the slug."
	}
	if taken {
		return "This slug is already used in the selected locale."
	}
	return ""
}

func (a *Admin) renderContentForm(w http.ResponseWriter, r *http.Request, status int, item *models.Content, editing bool, errMsg string) {
	section := sectionFor(item.Type)
	noun := "article"
	if item.Type == models.ContentTypePage {
		noun = "page"
	}
	title, action := "New "+noun, "/admin/"+section
	if editing {
		title, action = "Edit "+noun, "/admin/"+section+"/"+item.ID.String()
	}

	var parents []category.Entry
	if item.IsArticle() {
		_, tree, _, err := a.adminTree(r.Context())
		if err != nil {
			slog.Error("list categories failed", "error", err)
		}
		parents = category.Flatten(tree, 0, nil)
	}

	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	a.renderer.Page(w, r, "content_form", &render.PageData{
		Title:   title,
		Section: section,
		Data: map[string]any{
			"Item":           item,
			"Editing":        editing,
			"Action":         action,
			"Locales":        a.site.Locales.Codes(),
			"Categories":     parents,
			"StorageEnabled": a.covers != nil,
			"Error":          errMsg,
		},
	})
}
