// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"revista/internal/cache"
	"revista/internal/category"
	"revista/internal/i18n"
	"revista/internal/markdown"
	"revista/internal/models"
	"revista/internal/render"
)

// homeArticleLimit caps the article list on the home page.
const homeArticleLimit = 20

// Public groups handlers for the public magazine. It checks the Valkey
// page cache before rendering, and stores rendered results on miss.
type Public struct {
	site       *Site
	renderer   *render.Renderer
	categories CategoryRepo
	content    ContentRepo
	pageCache  PageCache
}

// NewPublic creates a new Public handler group.
func NewPublic(site *Site, renderer *render.Renderer, categories CategoryRepo, content ContentRepo, pageCache PageCache) *Public {
	return &Public{
		site:       site,
		renderer:   renderer,
		categories: categories,
		content:    content,
		pageCache:  pageCache,
	}
}

// RootRedirect sends "/" to the home page of the negotiated locale.
func (p *Public) RootRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/"+p.site.Locales.Negotiate(r)+"/", http.StatusFound)
}

// Home renders the navigation menu and the latest published articles.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	if p.serveCached(w, r) {
		return
	}
	ctx := r.Context()
	locale := i18n.FromContext(ctx)

	menu, _, err := p.site.menu(ctx, p.categories, locale)
	if err != nil {
		p.serverError(w, "load menu failed", err)
		return
	}
	articles, err := p.content.ListPublished(ctx, models.ContentTypeArticle, locale, homeArticleLimit)
	if err != nil {
		p.serverError(w, "list published articles failed", err)
		return
	}

	p.render(w, r, http.StatusOK, "home", p.pageData(r, menu, "", map[string]any{
		"Articles": articles,
	}))
}

// Category renders a category with its breadcrumbs, subcategories and the
// published articles of its whole subtree.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	if p.serveCached(w, r) {
		return
	}
	ctx := r.Context()
	locale := i18n.FromContext(ctx)
	slugParam := chi.URLParam(r, "slug")

	menu, cats, err := p.site.menu(ctx, p.categories, locale)
	if err != nil {
		p.serverError(w, "load menu failed", err)
		return
	}

	var current *models.Category
	for i := range cats {
		if cats[i].Slug == slugParam {
			current = &cats[i]
			break
		}
	}
	if current == nil {
		p.notFound(w, r, menu)
		return
	}

	tree := p.site.buildTree(cats, locale)
	var children []*category.Node
	if n := category.Find(tree, current.ID); n != nil {
		children = n.Children
	}
	ids := category.SubtreeIDs(tree, current.ID)
	if ids == nil {
		// Stranded in a cycle; show only its own articles.
		ids = append(ids, current.ID)
	}
	articles, err := p.content.ListPublishedInCategories(ctx, locale, ids)
	if err != nil {
		p.serverError(w, "list category articles failed", err)
		return
	}

	p.render(w, r, http.StatusOK, "category", p.pageData(r, menu, current.Name, map[string]any{
		"Category":    current,
		"Breadcrumbs": category.Ancestors(cats, current.ID),
		"Children":    children,
		"Articles":    articles,
	}))
}

// Article renders a published article of the current locale.
func (p *Public) Article(w http.ResponseWriter, r *http.Request) {
	p.renderSingle(w, r, models.ContentTypeArticle)
}

// Page renders a published static page of the current locale.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	p.renderSingle(w, r, models.ContentTypePage)
}

// renderSingle renders a single article or page.
func (p *Public) renderSingle(w http.ResponseWriter, r *http.Request, contentType models.ContentType) {
	if p.serveCached(w, r) {
		return
	}
	ctx := r.Context()
	locale := i18n.FromContext(ctx)
	slugParam := chi.URLParam(r, "slug")

	menu, cats, err := p.site.menu(ctx, p.categories, locale)
	if err != nil {
		p.serverError(w, "load menu failed", err)
		return
	}

	item, err := p.content.FindPublished(ctx, contentType, locale, slugParam)
	if err != nil {
		slog.Error("find published content failed", "error", err, "slug", slugParam, "locale", locale)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		p.notFound(w, r, menu)
		return
	}

	body, err := markdown.ToHTML(item.Body)
	if err != nil {
		p.serverError(w, "render markdown failed", err)
		return
	}

	data := map[string]any{
		// Goldmark output is safe: raw HTML in the source is not rendered.
		"Body": template.HTML(body),
	}
	name := "page"
	if item.IsArticle() {
		name = "article"
		data["Article"] = item
		if item.CategoryID != nil {
			data["Breadcrumbs"] = category.Ancestors(cats, *item.CategoryID)
		}
	} else {
		data["Page"] = item
	}
	p.render(w, r, http.StatusOK, name, p.pageData(r, menu, item.Title, data))
}

// pageData fills the fields shared by all public pages.
func (p *Public) pageData(r *http.Request, menu []*category.Node, title string, data map[string]any) *render.PublicData {
	locale := i18n.FromContext(r.Context())
	return &render.PublicData{
		SiteName: p.site.Name,
		Locale:   locale,
		Locales:  p.site.Locales.Codes(),
		Title:    title,
		Path:     strings.TrimPrefix(r.URL.Path, "/"+locale),
		Menu:     menu,
		Data:     data,
	}
}

// serveCached writes the cached page for the request, if any.
func (p *Public) serveCached(w http.ResponseWriter, r *http.Request) bool {
	key := cache.PageKey(i18n.FromContext(r.Context()), r.URL.Path)
	cached, ok := p.pageCache.Get(r.Context(), key)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", "HIT")
	w.Write(cached)
	return true
}

// render executes a public template. Successful pages are cached.
func (p *Public) render(w http.ResponseWriter, r *http.Request, status int, name string, data *render.PublicData) {
	html, err := p.renderer.Public(name, data)
	if err != nil {
		p.serverError(w, "render public page failed", err)
		return
	}
	if status == http.StatusOK {
		p.pageCache.Set(r.Context(), cache.PageKey(data.Locale, r.URL.Path), html)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(html)
}

func (p *Public) notFound(w http.ResponseWriter, r *http.Request, menu []*category.Node) {
	p.render(w, r, http.StatusNotFound, "not_found", p.pageData(r, menu, i18n.T(i18n.FromContext(r.Context()), "Page not found"), nil))
}

func (p *Public) serverError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
