// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the admin interface
// and the public magazine. Admin pages support full-page and HTMX partial
// rendering, detected via the HX-Request header. Public pages render to a
// byte slice so handlers can store them in the page cache.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"revista/internal/category"
	"revista/internal/i18n"
	"revista/internal/middleware"
	"revista/internal/models"
)

//go:embed templates/admin/*.html templates/public/*.html
var templateFS embed.FS

// PageData holds all data passed to admin templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active sidebar section (e.g., "categories", "articles")
	User      *models.User   // Current user (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms and HTMX headers
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// PublicData holds the data shared by every public page.
type PublicData struct {
	SiteName string
	Locale   string
	Locales  []string
	Title    string
	Path     string // Path without the locale prefix, for language links
	Menu     []*category.Node
	Data     map[string]any
}

// Renderer handles template parsing and execution.
type Renderer struct {
	admin   map[string]*template.Template
	public  map[string]*template.Template
	funcMap template.FuncMap
}

// standaloneTemplates lists admin templates that render as full HTML pages
// without the base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"login": true,
}

// New creates a Renderer by parsing the embedded templates. Each admin page
// is paired with base.html and each public page with layout.html.
// When devMode is true, templates use CDN-hosted assets; when false, they
// reference the embedded stylesheet under /static/.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		admin:  make(map[string]*template.Template),
		public: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"t":    i18n.T,
			"join": strings.Join,

			"activeClass": func(current, target string) string {
				if current == target {
					return "bg-gray-900 text-white"
				}
				return "text-gray-300 hover:bg-gray-700 hover:text-white"
			},
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			"isDev": func() bool {
				return devMode
			},
			// indent prefixes a picker label with non-breaking spaces,
			// four per level of depth.
			"indent": func(depth int, name string) string {
				if depth <= 0 {
					return name
				}
				return strings.Repeat("\u00A0\u00A0\u00A0\u00A0", depth) + name
			},
			// uuidEq compares a *uuid.UUID pointer with a uuid.UUID value.
			"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
				return ptr != nil && *ptr == val
			},
			"date": func(locale string, ts *time.Time) string {
				if ts == nil {
					return ""
				}
				if locale == "en" {
					return ts.Format("January 2, 2006")
				}
				return ts.Format("02/01/2006")
			},
			// dict builds a map from alternating keys and values so nested
			// templates can receive more than one argument.
			"dict": func(kv ...any) (map[string]any, error) {
				if len(kv)%2 != 0 {
					return nil, fmt.Errorf("dict: odd number of arguments")
				}
				m := make(map[string]any, len(kv)/2)
				for i := 0; i < len(kv); i += 2 {
					k, ok := kv[i].(string)
					if !ok {
						return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
					}
					m[k] = kv[i+1]
				}
				return m, nil
			},
		},
	}

	if err := r.parseSet(r.admin, "templates/admin", "base.html", standaloneTemplates); err != nil {
		return nil, err
	}
	if err := r.parseSet(r.public, "templates/public", "layout.html", nil); err != nil {
		return nil, err
	}
	return r, nil
}

// parseSet parses every page in dir together with the layout file, except
// standalone pages which are parsed on their own.
func (r *Renderer) parseSet(set map[string]*template.Template, dir, layout string, standalone map[string]bool) error {
	pages, err := fs.Glob(templateFS, dir+"/*.html")
	if err != nil {
		return fmt.Errorf("glob templates: %w", err)
	}
	for _, page := range pages {
		name := path.Base(page)
		if name == layout {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		if standalone[tmplName] {
			tmpl, err = template.New(name).Funcs(r.funcMap).ParseFS(templateFS, page)
		} else {
			tmpl, err = template.New(layout).Funcs(r.funcMap).ParseFS(templateFS, dir+"/"+layout, page)
		}
		if err != nil {
			return fmt.Errorf("parse template %s: %w", page, err)
		}
		set[tmplName] = tmpl
	}
	return nil
}

// Page renders a full admin page or an HTMX partial, depending on the
// request headers. For HTMX requests, only the "content" block is sent.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.admin[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.User == nil {
		data.User = middleware.UserFromCtx(r.Context())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if isHTMX(r) {
		if err := executeTemplate(w, tmpl, "content", data); err != nil {
			http.Error(w, "template error", http.StatusInternalServerError)
		}
		return
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}
	if err := executeTemplate(w, tmpl, execName, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// Public renders a public page into a buffer. The result is complete HTML
// ready to be written and cached.
func (rn *Renderer) Public(name string, data *PublicData) ([]byte, error) {
	tmpl, ok := rn.public[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := executeTemplate(&buf, tmpl, "layout.html", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// executeTemplate wraps template execution with error handling.
func executeTemplate(w io.Writer, tmpl *template.Template, name string, data any) error {
	return tmpl.ExecuteTemplate(w, name, data)
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
