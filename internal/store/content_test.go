package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"revista/internal/models"
)

var contentRowColumns = []string{
	"id", "type", "locale", "title", "slug", "body", "excerpt", "status",
	"category_id", "cover_url", "author_id", "published_at", "created_at", "updated_at",
}

func contentRow(id, category uuid.UUID, slug string, published *time.Time) []driver.Value {
	now := time.Now()
	var pub driver.Value
	if published != nil {
		pub = *published
	}
	return []driver.Value{
		id.String(), "article", "pt", "Título", slug, "# corpo", nil, "published",
		category.String(), nil, uuid.New().String(), pub, now, now,
	}
}

func TestContentStoreListPublishedInCategories(t *testing.T) {
	db, mock := newMock(t)
	s := NewContentStore(db)

	a, b := uuid.New(), uuid.New()
	id := uuid.New()
	pub := time.Now().Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("category_id = ANY($2::uuid[])")).
		WithArgs("pt", "{"+a.String()+","+b.String()+"}").
		WillReturnRows(sqlmock.NewRows(contentRowColumns).AddRow(contentRow(id, b, "artigo", &pub)...))

	items, err := s.ListPublishedInCategories(context.Background(), "pt", []uuid.UUID{a, b})
	if err != nil {
		t.Fatalf("ListPublishedInCategories: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].CategoryID == nil || *items[0].CategoryID != b {
		t.Errorf("category: got %v, want %s", items[0].CategoryID, b)
	}
	if items[0].Excerpt != nil {
		t.Errorf("excerpt: got %v, want nil", items[0].Excerpt)
	}
	if !items[0].IsPublished() || !items[0].IsArticle() {
		t.Errorf("expected published article, got %s/%s", items[0].Status, items[0].Type)
	}
}

func TestContentStoreListPublishedInNoCategories(t *testing.T) {
	db, _ := newMock(t)
	s := NewContentStore(db)

	items, err := s.ListPublishedInCategories(context.Background(), "pt", nil)
	if err != nil {
		t.Fatalf("ListPublishedInCategories: %v", err)
	}
	if items != nil {
		t.Errorf("expected nil, got %v", items)
	}
}

func TestContentStoreListPublishedLimit(t *testing.T) {
	db, mock := newMock(t)
	s := NewContentStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $3")).
		WithArgs("article", "en", 5).
		WillReturnRows(sqlmock.NewRows(contentRowColumns))

	if _, err := s.ListPublished(context.Background(), models.ContentTypeArticle, "en", 5); err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
}

func TestContentStoreFindPublishedNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := NewContentStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE type = $1 AND locale = $2 AND slug = $3")).
		WithArgs("page", "es", "nada").
		WillReturnRows(sqlmock.NewRows(contentRowColumns))

	c, err := s.FindPublished(context.Background(), models.ContentTypePage, "es", "nada")
	if err != nil {
		t.Fatalf("FindPublished: %v", err)
	}
	if c != nil {
		t.Errorf("expected nil, got %+v", c)
	}
}

func TestContentStoreCreateStampsPublishedAt(t *testing.T) {
	db, mock := newMock(t)
	s := NewContentStore(db)

	id := uuid.New()
	author := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO content")).
		WithArgs("article", "pt", "Título", "titulo", "corpo", nil, "published",
			nil, nil, author.String(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(contentRowColumns).AddRow(contentRow(id, uuid.New(), "titulo", nil)...))

	c := &models.Content{
		Type:     models.ContentTypeArticle,
		Locale:   "pt",
		Title:    "Título",
		Slug:     "titulo",
		Body:     "corpo",
		Status:   models.ContentStatusPublished,
		AuthorID: author,
	}
	if _, err := s.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.PublishedAt == nil {
		t.Error("expected published_at to be stamped on publish")
	}
}

func TestContentStoreCountByCategory(t *testing.T) {
	db, mock := newMock(t)
	s := NewContentStore(db)

	a, b := uuid.New(), uuid.New()
	mock.ExpectQuery(`GROUP BY category_id`).
		WillReturnRows(sqlmock.NewRows([]string{"category_id", "count"}).
			AddRow(a.String(), 3).
			AddRow(b.String(), 1))

	counts, err := s.CountByCategory(context.Background())
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	if counts[a] != 3 || counts[b] != 1 {
		t.Errorf("counts: got %v", counts)
	}
}

func TestContentStoreIntegration(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)
	ctx := context.Background()

	slug := "test-content-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug) })

	created, err := s.Create(ctx, &models.Content{
		Type:     models.ContentTypePage,
		Locale:   "en",
		Title:    "About",
		Slug:     slug,
		Body:     "hello",
		Status:   models.ContentStatusDraft,
		AuthorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.PublishedAt != nil {
		t.Error("expected nil published_at for draft")
	}

	// Drafts are not publicly visible.
	c, err := s.FindPublished(ctx, models.ContentTypePage, "en", slug)
	if err != nil {
		t.Fatalf("FindPublished: %v", err)
	}
	if c != nil {
		t.Error("draft should not be found as published")
	}

	taken, err := s.SlugTaken(ctx, "en", slug, uuid.Nil)
	if err != nil {
		t.Fatalf("SlugTaken: %v", err)
	}
	if !taken {
		t.Error("expected slug to be taken in en")
	}
	taken, err = s.SlugTaken(ctx, "pt", slug, uuid.Nil)
	if err != nil {
		t.Fatalf("SlugTaken: %v", err)
	}
	if taken {
		t.Error("slug should be free in another locale")
	}

	created.Status = models.ContentStatusPublished
	if err := s.Update(ctx, created); err != nil {
		t.Fatalf("Update: %v", err)
	}
	c, err = s.FindPublished(ctx, models.ContentTypePage, "en", slug)
	if err != nil {
		t.Fatalf("FindPublished: %v", err)
	}
	if c == nil || c.PublishedAt == nil {
		t.Fatalf("expected published page with timestamp, got %+v", c)
	}

	if err := s.SetCover(ctx, c.ID, "https://cdn.example/covers/x.jpg"); err != nil {
		t.Fatalf("SetCover: %v", err)
	}
	c, _ = s.FindByID(ctx, c.ID)
	if c.CoverURL == nil || *c.CoverURL != "https://cdn.example/covers/x.jpg" {
		t.Errorf("cover: got %v", c.CoverURL)
	}
}
