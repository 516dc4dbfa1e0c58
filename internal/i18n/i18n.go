// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package i18n resolves the request locale and translates interface
// strings. Locales are short codes ("pt", "en", "es") used as the first
// path segment of every public URL.
package i18n

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
)

// CookieName stores the reader's explicit locale choice.
const CookieName = "rv_locale"

type ctxKey struct{}

// Locales is the set of locales the site is published in.
type Locales struct {
	codes   []string
	tags    []language.Tag
	matcher language.Matcher
}

// New builds the locale set. def must be one of codes and becomes the
// fallback for negotiation.
func New(codes []string, def string) (*Locales, error) {
	if len(codes) == 0 {
		return nil, errors.New("i18n: no locales configured")
	}
	def = strings.ToLower(def)
	if !slices.Contains(codes, def) {
		return nil, fmt.Errorf("i18n: default locale %q not in %v", def, codes)
	}

	// The matcher falls back to its first tag, so the default goes first.
	ordered := append([]string{def}, slices.DeleteFunc(slices.Clone(codes), func(c string) bool { return c == def })...)
	tags := make([]language.Tag, len(ordered))
	for i, c := range ordered {
		t, err := language.Parse(c)
		if err != nil {
			return nil, fmt.Errorf("i18n: parse locale %q: %w", c, err)
		}
		tags[i] = t
	}

	return &Locales{codes: ordered, tags: tags, matcher: language.NewMatcher(tags)}, nil
}

// Default returns the fallback locale code.
func (l *Locales) Default() string {
	return l.codes[0]
}

// Codes returns the configured locale codes, default first.
func (l *Locales) Codes() []string {
	return slices.Clone(l.codes)
}

// Supports reports whether code is a configured locale.
func (l *Locales) Supports(code string) bool {
	return slices.Contains(l.codes, code)
}

// Tag returns the language tag of a configured locale code, or the default
// locale's tag.
func (l *Locales) Tag(code string) language.Tag {
	if i := slices.Index(l.codes, code); i >= 0 {
		return l.tags[i]
	}
	return l.tags[0]
}

// Negotiate picks the locale for a request without a locale in its path:
// the rv_locale cookie wins, then Accept-Language, then the default.
func (l *Locales) Negotiate(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && l.Supports(c.Value) {
		return c.Value
	}
	accept, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(accept) == 0 {
		return l.Default()
	}
	_, idx, conf := l.matcher.Match(accept...)
	if conf == language.No {
		return l.Default()
	}
	return l.codes[idx]
}

// Middleware validates the {locale} URL parameter, stores it in the
// request context and remembers it in a cookie. Unknown locales are 404.
func (l *Locales) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "locale")
		if !l.Supports(code) {
			http.NotFound(w, r)
			return
		}
		if c, err := r.Cookie(CookieName); err != nil || c.Value != code {
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    code,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), code)))
	})
}

// WithLocale returns a context carrying the locale code.
func WithLocale(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, ctxKey{}, code)
}

// FromContext returns the request locale, or "" outside localized routes.
func FromContext(ctx context.Context) string {
	code, _ := ctx.Value(ctxKey{}).(string)
	return code
}
