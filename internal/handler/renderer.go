package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

const layoutName = "layout.html"

// Renderer manages template parsing and rendering with isolated template sets
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses the layout and partials once, then clones them for each
// page in dir. Files starting with "_" are partials shared by every page.
func NewRenderer(fsys fs.FS, dir string, funcs template.FuncMap, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	shared := []string{path.Join(dir, layoutName)}
	partials, err := fs.Glob(fsys, path.Join(dir, "_*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob partials: %w", err)
	}
	shared = append(shared, partials...)

	baseTmpl, err := template.New("base").Funcs(funcs).ParseFS(fsys, shared...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pages, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}

	templates := make(map[string]*template.Template)
	for _, page := range pages {
		base := path.Base(page)
		if base == layoutName || strings.HasPrefix(base, "_") {
			continue
		}

		pageTmpl, err := baseTmpl.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone template for %s: %w", page, err)
		}

		pageTmpl, err = pageTmpl.ParseFS(fsys, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", page, err)
		}

		templates[strings.TrimSuffix(base, path.Ext(base))] = pageTmpl
	}

	return &Renderer{templates: templates, logger: logger}, nil
}

// Execute returns the template set for a page.
func (r *Renderer) Execute(name string) (*template.Template, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	return tmpl, nil
}

// Render executes a page through the layout into w.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	tmpl, err := r.Execute(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// RenderHTTP renders a page with status 200.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data any) {
	r.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a page with the given status. The page is buffered so a
// template failure still produces a clean 500.
func (r *Renderer) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		r.logger.Error("render error", "template", name, "error", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
