// Package web embeds the storefront's templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static
var static embed.FS

// TemplatesDir is the directory of page templates inside Templates.
const TemplatesDir = "templates"

// Templates returns the HTML templates.
func Templates() fs.FS {
	return templates
}

// Static returns the assets served under /static/, rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
