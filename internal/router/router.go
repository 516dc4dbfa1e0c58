// Package router sets up all HTTP routes and middleware chains for the
// Revista magazine. Routes are grouped into the public site, the JSON API
// and the admin panel, each with its own middleware stack.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"revista/internal/handlers"
	"revista/internal/i18n"
	"revista/internal/metrics"
	"revista/internal/middleware"
)

// Deps carries everything the router wires into routes.
type Deps struct {
	Locales *i18n.Locales
	Static  fs.FS

	Sessions  middleware.SessionStore
	Refresher middleware.TokenRefresher
	Verifier  middleware.TokenVerifier
	Limiter   *middleware.RateLimiter

	// SecureCookies marks the CSRF cookie Secure and enables HSTS.
	SecureCookies bool

	Public *handlers.Public
	API    *handlers.API
	Admin  *handlers.Admin
	Auth   *handlers.Auth
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(metrics.Instrument)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders(d.SecureCookies))

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(d.Static)))
	r.Get("/manifest.webmanifest", d.API.Manifest)
	r.Get("/", d.Public.RootRedirect)

	// JSON API. Clients authenticate with a bearer access token.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.BearerAuth(d.Verifier))
		r.Use(d.Limiter.Middleware)

		r.With(d.Locales.Middleware).Get("/{locale}/navigation", d.API.Navigation)
		r.With(middleware.RequireUser).Get("/gamification/balance", d.API.Balance)
	})

	// Admin routes, session-authenticated and CSRF protected.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookies))
		r.Use(middleware.LoadSession(d.Sessions, d.Refresher, d.Verifier))

		// Auth pages, accessible without a session.
		r.Get("/login", d.Auth.LoginPage)
		r.With(d.Limiter.Middleware).Post("/login", d.Auth.LoginSubmit)
		r.Post("/logout", d.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireEditor)

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
			})

			// Categories
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", d.Admin.CategoriesList)
				r.Get("/new", d.Admin.CategoryNew)
				r.Post("/", d.Admin.CategoryCreate)
				r.Get("/{id}", d.Admin.CategoryEdit)
				r.Post("/{id}", d.Admin.CategoryUpdate)
				// Deleting re-parents the whole subtree.
				r.With(middleware.RequireAdmin).Post("/{id}/delete", d.Admin.CategoryDelete)
			})

			// Articles
			r.Route("/articles", func(r chi.Router) {
				r.Get("/", d.Admin.ArticlesList)
				r.Get("/new", d.Admin.ArticleNew)
				r.Post("/", d.Admin.ArticleCreate)
				r.Get("/{id}", d.Admin.ArticleEdit)
				r.Post("/{id}", d.Admin.ArticleUpdate)
				r.Post("/{id}/delete", d.Admin.ArticleDelete)
				r.Post("/{id}/cover", d.Admin.ArticleCover)
			})

			// Pages
			r.Route("/pages", func(r chi.Router) {
				r.Get("/", d.Admin.PagesList)
				r.Get("/new", d.Admin.PageNew)
				r.Post("/", d.Admin.PageCreate)
				r.Get("/{id}", d.Admin.PageEdit)
				r.Post("/{id}", d.Admin.PageUpdate)
				r.Post("/{id}/delete", d.Admin.PageDelete)
			})

			// Gamification
			r.Post("/gamification/award", d.API.Award)
		})
	})

	// Public site, one tree per locale.
	r.Route("/{locale}", func(r chi.Router) {
		r.Use(d.Locales.Middleware)
		r.Get("/", d.Public.Home)
		r.Get("/categoria/{slug}", d.Public.Category)
		r.Get("/artigo/{slug}", d.Public.Article)
		r.Get("/{slug}", d.Public.Page)
	})

	return r
}
