package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

type seedCategory struct {
	name, slug, color, parent, escopo string
}

// seedCategories is the starter taxonomy for a fresh development database.
// Parents are listed before their children.
var seedCategories = []seedCategory{
	{"Notícias", "noticias", "#d62828", "", "{menu,footer}"},
	{"Política", "politica", "#003049", "noticias", "{menu}"},
	{"Economia", "economia", "#f77f00", "noticias", "{menu}"},
	{"Cultura", "cultura", "#6a4c93", "", "{menu,footer}"},
	{"Cinema", "cinema", "#8338ec", "cultura", "{menu}"},
	{"Música", "musica", "#3a86ff", "cultura", "{menu}"},
	{"Esportes", "esportes", "#2a9d8f", "", "{menu}"},
	{"Bastidores", "bastidores", "#6c757d", "", "{admin}"},
}

// Seed populates the database with initial development data.
// It creates a default blog with a small category tree and a welcome page
// when no categories exist yet.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var blogID string
	err = tx.QueryRow(`
		INSERT INTO blogs (name, slug) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, "Revista", "revista").Scan(&blogID)
	if err != nil {
		return fmt.Errorf("seed insert blog: %w", err)
	}

	ids := make(map[string]string, len(seedCategories))
	for _, c := range seedCategories {
		var parent any
		if c.parent != "" {
			parent = ids[c.parent]
		}
		var id string
		err := tx.QueryRow(`
			INSERT INTO categories (name, slug, color, parent_id, blog_id, escopo)
			VALUES ($1, $2, $3, $4, $5, $6::text[])
			RETURNING id
		`, c.name, c.slug, c.color, parent, blogID, c.escopo).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert category %s: %w", c.slug, err)
		}
		ids[c.slug] = id
	}

	_, err = tx.Exec(`
		INSERT INTO content (type, locale, title, slug, body, status, author_id, published_at)
		VALUES ('page', 'pt', 'Sobre a Revista', 'sobre', $1, 'published', $2, NOW())
		ON CONFLICT (locale, slug) DO NOTHING
	`, "# Sobre\n\nBem-vindo à revista.", "00000000-0000-0000-0000-000000000000")
	if err != nil {
		return fmt.Errorf("seed insert page: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded", "blog_id", blogID, "categories", len(seedCategories))
	return nil
}
