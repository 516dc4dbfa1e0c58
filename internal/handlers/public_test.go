package handlers

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"revista/internal/cache"
	"revista/internal/models"
)

// magazine is a small taxonomy: Tecnologia > Programação, plus a footer
// only category and an admin only one.
type magazine struct {
	tech, prog, about, internal models.Category
	categories                  *fakeCategories
	content                     *fakeContent
	pageCache                   *fakePageCache
}

func newMagazine() *magazine {
	m := &magazine{
		tech:  models.Category{ID: uuid.New(), Name: "Tecnologia", Slug: "tecnologia", Escopo: []string{models.ScopeMenu}},
		about: models.Category{ID: uuid.New(), Name: "Sobre", Slug: "sobre", Escopo: []string{models.ScopeFooter}},
	}
	m.prog = models.Category{ID: uuid.New(), Name: "Programação", Slug: "programacao", ParentID: &m.tech.ID, Escopo: []string{models.ScopeMenu}}
	m.internal = models.Category{ID: uuid.New(), Name: "Rascunhos internos", Slug: "interno", Escopo: []string{models.ScopeAdmin}}
	m.categories = &fakeCategories{cats: []models.Category{m.prog, m.about, m.tech, m.internal}}

	published := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	m.content = &fakeContent{items: []models.Content{
		{ID: uuid.New(), Type: models.ContentTypeArticle, Locale: "pt", Title: "Go 1.25 chegou", Slug: "go-125",
			Body: "# Novidades\n\nMuitas **melhorias**.", Status: models.ContentStatusPublished, CategoryID: &m.prog.ID, PublishedAt: &published},
		{ID: uuid.New(), Type: models.ContentTypeArticle, Locale: "pt", Title: "Rascunho secreto", Slug: "rascunho",
			Body: "ainda não", Status: models.ContentStatusDraft, CategoryID: &m.tech.ID},
		{ID: uuid.New(), Type: models.ContentTypeArticle, Locale: "en", Title: "Go 1.25 is out", Slug: "go-125",
			Body: "English body", Status: models.ContentStatusPublished, CategoryID: &m.prog.ID, PublishedAt: &published},
		{ID: uuid.New(), Type: models.ContentTypePage, Locale: "pt", Title: "Quem somos", Slug: "quem-somos",
			Body: "Somos uma revista.", Status: models.ContentStatusPublished, PublishedAt: &published},
	}}
	m.pageCache = newFakePageCache()
	return m
}

func (m *magazine) router(t *testing.T) http.Handler {
	t.Helper()
	site := testSite(t)
	p := NewPublic(site, testRenderer(t), m.categories, m.content, m.pageCache)
	r := chi.NewRouter()
	r.Get("/", p.RootRedirect)
	r.Route("/{locale}", func(r chi.Router) {
		r.Use(site.Locales.Middleware)
		r.Get("/", p.Home)
		r.Get("/categoria/{slug}", p.Category)
		r.Get("/artigo/{slug}", p.Article)
		r.Get("/{slug}", p.Page)
	})
	return r
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRootRedirectNegotiatesLocale(t *testing.T) {
	h := newMagazine().router(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "es-AR,es;q=0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/es/" {
		t.Errorf("Location = %q, want /es/", loc)
	}
}

func TestHomeShowsMenuAndPublishedArticles(t *testing.T) {
	m := newMagazine()
	rec := get(m.router(t), "/pt/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Tecnologia", "Programação", "Go 1.25 chegou", "14/03/2026"} {
		if !strings.Contains(body, want) {
			t.Errorf("home missing %q", want)
		}
	}
	for _, unwanted := range []string{"Rascunho secreto", "Go 1.25 is out", "Sobre", "Rascunhos internos"} {
		if strings.Contains(body, unwanted) {
			t.Errorf("home should not contain %q", unwanted)
		}
	}
	// Tecnologia nests Programação in the menu.
	if strings.Index(body, "Tecnologia") > strings.Index(body, "Programação") {
		t.Error("child rendered before its parent")
	}
}

func TestHomeIsCached(t *testing.T) {
	m := newMagazine()
	h := m.router(t)

	first := get(h, "/pt/")
	if first.Header().Get("X-Cache") != "" {
		t.Error("first request should not be a cache hit")
	}
	if _, ok := m.pageCache.pages[cache.PageKey("pt", "/pt/")]; !ok {
		t.Fatal("rendered page was not stored in the cache")
	}

	second := get(h, "/pt/")
	if second.Header().Get("X-Cache") != "HIT" {
		t.Error("second request should be served from the cache")
	}
	if second.Body.String() != first.Body.String() {
		t.Error("cached body differs from the rendered one")
	}
}

func TestUnknownLocaleIsNotFound(t *testing.T) {
	rec := get(newMagazine().router(t), "/de/")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCategoryIncludesSubtreeArticles(t *testing.T) {
	m := newMagazine()
	rec := get(m.router(t), "/pt/categoria/tecnologia")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !slices.Contains(m.content.lastCategoryIDs, m.tech.ID) || !slices.Contains(m.content.lastCategoryIDs, m.prog.ID) {
		t.Errorf("queried categories = %v, want the whole Tecnologia subtree", m.content.lastCategoryIDs)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Go 1.25 chegou") {
		t.Error("article filed under a subcategory is missing")
	}
	if !strings.Contains(body, "Subcategorias") {
		t.Error("subcategory section missing")
	}
}

func TestCategoryBreadcrumbs(t *testing.T) {
	m := newMagazine()
	rec := get(m.router(t), "/pt/categoria/programacao")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `› <a href="/pt/categoria/tecnologia">Tecnologia</a>`) {
		t.Error("breadcrumb to the parent category missing")
	}
}

func TestCategoryNotFound(t *testing.T) {
	m := newMagazine()
	h := m.router(t)

	for _, path := range []string{"/pt/categoria/nao-existe", "/pt/categoria/interno"} {
		rec := get(h, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Página não encontrada") {
			t.Errorf("%s: localized not found page expected", path)
		}
	}
	if len(m.pageCache.pages) != 0 {
		t.Error("not found pages must not be cached")
	}
}

func TestCategoryHidesAdminScope(t *testing.T) {
	m := newMagazine()
	secret := models.Category{ID: uuid.New(), Name: "Segredo editorial", Slug: "segredo", ParentID: &m.tech.ID, Escopo: []string{models.ScopeAdmin}}
	archive := models.Category{ID: uuid.New(), Name: "Arquivo", Slug: "arquivo", ParentID: &m.internal.ID, Escopo: []string{models.ScopeFooter}}
	m.categories.cats = append(m.categories.cats, secret, archive)
	published := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	m.content.items = append(m.content.items, models.Content{
		ID: uuid.New(), Type: models.ContentTypeArticle, Locale: "pt", Title: "Pauta da semana", Slug: "pauta",
		Status: models.ContentStatusPublished, CategoryID: &secret.ID, PublishedAt: &published,
	})
	h := m.router(t)

	rec := get(h, "/pt/categoria/tecnologia")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "Segredo editorial") || strings.Contains(body, "/pt/categoria/segredo") {
		t.Error("admin scoped subcategory must not be listed")
	}
	if strings.Contains(body, "Pauta da semana") {
		t.Error("articles of an admin scoped subcategory must not be listed")
	}
	if slices.Contains(m.content.lastCategoryIDs, secret.ID) {
		t.Errorf("subtree ids = %v, admin category included", m.content.lastCategoryIDs)
	}

	if rec := get(h, "/pt/categoria/segredo"); rec.Code != http.StatusNotFound {
		t.Errorf("admin category: status = %d, want 404", rec.Code)
	}

	rec = get(h, "/pt/categoria/arquivo")
	if rec.Code != http.StatusOK {
		t.Fatalf("arquivo: status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Rascunhos internos") {
		t.Error("admin scoped ancestor must not appear in the breadcrumbs")
	}
}

func TestArticleRendersMarkdown(t *testing.T) {
	rec := get(newMagazine().router(t), "/pt/artigo/go-125")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<strong>melhorias</strong>") {
		t.Error("markdown body not rendered as HTML")
	}
	if !strings.Contains(body, `› <a href="/pt/categoria/programacao">Programação</a>`) {
		t.Error("breadcrumb to the article category missing")
	}
}

func TestArticleLocaleAndStatus(t *testing.T) {
	h := newMagazine().router(t)

	if rec := get(h, "/en/artigo/go-125"); !strings.Contains(rec.Body.String(), "English body") {
		t.Error("English article should render under /en/")
	}
	if rec := get(h, "/pt/artigo/rascunho"); rec.Code != http.StatusNotFound {
		t.Errorf("draft article: status = %d, want 404", rec.Code)
	}
}

func TestStaticPage(t *testing.T) {
	h := newMagazine().router(t)

	rec := get(h, "/pt/quem-somos")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Somos uma revista.") {
		t.Error("page body missing")
	}
	// Articles are not served on the page route.
	if rec := get(h, "/pt/go-125"); rec.Code != http.StatusNotFound {
		t.Errorf("article via page route: status = %d, want 404", rec.Code)
	}
}

func TestPublicSurvivesCategoryCycle(t *testing.T) {
	m := newMagazine()
	a := models.Category{ID: uuid.New(), Name: "Loop A", Slug: "loop-a", Escopo: []string{models.ScopeMenu}}
	b := models.Category{ID: uuid.New(), Name: "Loop B", Slug: "loop-b", ParentID: &a.ID, Escopo: []string{models.ScopeMenu}}
	a.ParentID = &b.ID
	m.categories.cats = append(m.categories.cats, a, b)
	h := m.router(t)

	rec := get(h, "/pt/")
	if rec.Code != http.StatusOK {
		t.Fatalf("home status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Loop A") {
		t.Error("categories stranded by a cycle should not appear in the menu")
	}

	rec = get(h, "/pt/categoria/loop-a")
	if rec.Code != http.StatusOK {
		t.Fatalf("stranded category status = %d, want 200", rec.Code)
	}
	if len(m.content.lastCategoryIDs) != 1 || m.content.lastCategoryIDs[0] != a.ID {
		t.Errorf("stranded category queried %v, want only itself", m.content.lastCategoryIDs)
	}
}

func TestPublicListError(t *testing.T) {
	m := newMagazine()
	m.categories.listErr = errBoom
	if rec := get(m.router(t), "/pt/"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
