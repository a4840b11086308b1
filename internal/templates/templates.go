// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates holds the embedded server-rendered HTML pages.
package templates

import (
	"embed"
	"html/template"
	"io"
)

//go:embed html/*.html
var files embed.FS

var pages = template.Must(template.ParseFS(files, "html/*.html"))

// Render writes the named page to w. Page names are file names, e.g.
// "login.html".
func Render(w io.Writer, name string, data any) error {
	return pages.ExecuteTemplate(w, name, data)
}
