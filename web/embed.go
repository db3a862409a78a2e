package web

import "embed"

// TemplatesFS embeds the layout, partials and pages rendered by the server.
//
//go:embed templates
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/js/images).
//
//go:embed static
var StaticFS embed.FS
