// Package web provides embedded static assets served at /static/.
// In development the admin loads TailwindCSS from a CDN; the public site
// and the production admin use the stylesheet embedded here.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS
