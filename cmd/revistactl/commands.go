package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"revista/internal/auth"
	"revista/internal/category"
	"revista/internal/config"
	"revista/internal/database"
	"revista/internal/i18n"
	"revista/internal/models"
	"revista/internal/store"
)

func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// MigrateCmd applies pending goose migrations.
type MigrateCmd struct{}

func (cmd *MigrateCmd) Run(cfg *config.Config, out io.Writer) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	v, err := database.Version(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "schema at version %d\n", v)
	return nil
}

// HierarchyFlags select which categories to load and how to sort them.
type HierarchyFlags struct {
	Blog   string `help:"Restrict to one blog (UUID). Defaults to DEFAULT_BLOG_ID."`
	Locale string `help:"Locale whose collation orders siblings. Defaults to DEFAULT_LOCALE."`
}

// load reads the categories and builds the forest. A parent cycle is
// reported on stderr through the logger and is not an error.
func (f HierarchyFlags) load(ctx context.Context, cfg *config.Config) ([]*category.Node, error) {
	blog := f.Blog
	if blog == "" {
		blog = cfg.DefaultBlogID
	}
	var blogID *uuid.UUID
	if blog != "" {
		id, err := uuid.Parse(blog)
		if err != nil {
			return nil, fmt.Errorf("parse blog id: %w", err)
		}
		blogID = &id
	}

	locales, err := i18n.New(cfg.Locales, cfg.DefaultLocale)
	if err != nil {
		return nil, err
	}
	locale := f.Locale
	if locale == "" {
		locale = locales.Default()
	}
	if !locales.Supports(locale) {
		return nil, fmt.Errorf("locale %q is not one of %v", locale, locales.Codes())
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	cats, err := store.NewCategoryStore(db).List(ctx, blogID)
	if err != nil {
		return nil, err
	}
	tree, err := category.Build(cats, category.WithLocale(locales.Tag(locale)))
	var cycle *category.CycleError
	if errors.As(err, &cycle) {
		slog.Warn("categories left out because their parents form a loop", "ids", cycle.IDs)
	}
	return tree, nil
}

// TreeCmd prints the forest with two spaces of indentation per level.
type TreeCmd struct {
	HierarchyFlags
}

func (cmd *TreeCmd) Run(cfg *config.Config, out io.Writer) error {
	tree, err := cmd.load(context.Background(), cfg)
	if err != nil {
		return err
	}
	writeTree(out, category.Flatten(tree, 0, nil))
	return nil
}

func writeTree(w io.Writer, entries []category.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s%s (%s)\n", strings.Repeat("  ", e.Depth), e.Name, e.Slug)
	}
}

// FlatCmd prints the entries a parent picker would offer.
type FlatCmd struct {
	HierarchyFlags
	Exclude string `help:"Leave out this category (UUID) and its subtree."`
}

func (cmd *FlatCmd) Run(cfg *config.Config, out io.Writer) error {
	var exclude *uuid.UUID
	if cmd.Exclude != "" {
		id, err := uuid.Parse(cmd.Exclude)
		if err != nil {
			return fmt.Errorf("parse exclude id: %w", err)
		}
		exclude = &id
	}
	tree, err := cmd.load(context.Background(), cfg)
	if err != nil {
		return err
	}
	writeFlat(out, category.Flatten(tree, 0, exclude))
	return nil
}

func writeFlat(w io.Writer, entries []category.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\n", e.Depth, e.Name, e.ID)
	}
}

// TokenCmd mints a token shaped like the ones Supabase issues.
type TokenCmd struct {
	User  string        `required:"" help:"User ID (UUID) placed in the sub claim."`
	Email string        `help:"Email claim."`
	Role  string        `default:"editor" enum:"admin,editor,user" help:"app_metadata.role claim."`
	TTL   time.Duration `name:"ttl" default:"1h" help:"Token lifetime."`
}

func (cmd *TokenCmd) Run(cfg *config.Config, out io.Writer) error {
	if cfg.SupabaseJWTSecret == "" {
		return errors.New("SUPABASE_JWT_SECRET is not set")
	}
	id, err := uuid.Parse(cmd.User)
	if err != nil {
		return fmt.Errorf("parse user id: %w", err)
	}
	token, err := auth.NewVerifier(cfg.SupabaseJWTSecret).Sign(models.User{
		ID:    id,
		Email: cmd.Email,
		Role:  models.Role(cmd.Role),
	}, cmd.TTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

// CacheLogCmd lists the latest page cache invalidations.
type CacheLogCmd struct {
	Limit int `default:"20" help:"Number of entries to show."`
}

func (cmd *CacheLogCmd) Run(cfg *config.Config, out io.Writer) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := store.NewCacheLogStore(db).Recent(context.Background(), cmd.Limit)
	if err != nil {
		return err
	}
	writeCacheLog(out, entries)
	return nil
}

func writeCacheLog(w io.Writer, entries []store.CacheLogEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tENTITY\tID\tACTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.InvalidatedAt.Format(time.RFC3339), e.EntityType, e.EntityID, e.Action)
	}
	tw.Flush()
}
