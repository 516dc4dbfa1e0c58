// Package main is the entry point for the Revista magazine server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"revista/internal/auth"
	"revista/internal/cache"
	"revista/internal/config"
	"revista/internal/database"
	"revista/internal/handlers"
	"revista/internal/i18n"
	"revista/internal/middleware"
	"revista/internal/render"
	"revista/internal/router"
	"revista/internal/session"
	"revista/internal/storage"
	"revista/internal/store"
	"revista/internal/webhook"
	"revista/web"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	var logHandler slog.Handler
	if cfg.IsDev() {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(logHandler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"locales", cfg.Locales,
	)

	locales, err := i18n.New(cfg.Locales, cfg.DefaultLocale)
	if err != nil {
		slog.Error("invalid locale configuration", "error", err)
		os.Exit(1)
	}

	var blogID *uuid.UUID
	if cfg.DefaultBlogID != "" {
		id, err := uuid.Parse(cfg.DefaultBlogID)
		if err != nil {
			slog.Error("DEFAULT_BLOG_ID is not a UUID", "value", cfg.DefaultBlogID, "error", err)
			os.Exit(1)
		}
		blogID = &id
	}

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (page cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// Supabase Auth: password grant and refresh over HTTP, local JWT checks.
	authClient := auth.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	defer authClient.Close()
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret)

	// S3-compatible object storage is optional; covers are disabled without it.
	var covers handlers.CoverStorage
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3BucketPublic, cfg.S3PublicURL,
	)
	switch {
	case err != nil:
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	case storageClient != nil:
		covers = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3BucketPublic)
	default:
		slog.Warn("s3 storage not configured, cover uploads disabled")
	}

	notifier := webhook.New(cfg.WebhookURL, cfg.WebhookSecret)
	defer notifier.Close()
	if notifier == nil {
		slog.Info("content webhook disabled")
	}

	// Initialize the HTML template renderer. In dev mode the admin loads
	// Tailwind from a CDN; in production it uses the embedded stylesheet.
	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Initialize data stores.
	categoryStore := store.NewCategoryStore(db)
	contentStore := store.NewContentStore(db)
	xpStore := store.NewXPStore(db)
	cacheLogStore := store.NewCacheLogStore(db)

	site := &handlers.Site{Name: cfg.SiteName, Locales: locales, BlogID: blogID}

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to open embedded assets", "error", err)
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		Locales:       locales,
		Static:        static,
		Sessions:      sessionStore,
		Refresher:     authClient,
		Verifier:      verifier,
		Limiter:       limiter,
		SecureCookies: secureCookies,
		Public:        handlers.NewPublic(site, renderer, categoryStore, contentStore, pageCache),
		API:           handlers.NewAPI(site, categoryStore, xpStore),
		Admin:         handlers.NewAdmin(site, renderer, categoryStore, contentStore, pageCache, cacheLogStore, covers, notifier),
		Auth:          handlers.NewAuth(renderer, sessionStore, authClient, verifier),
	})

	// Create the HTTP server with sensible timeouts. Cover uploads are the
	// slowest requests.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
