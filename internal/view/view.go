// Package view holds the embedded HTML templates for every screen.
package view

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses the embedded template set. Each screen is a standalone
// template named after its file; shared fragments live in layout.html.
func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "templates/*.html"))
}
