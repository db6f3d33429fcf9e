// Package view renders the menu page and the card grid.
package view

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/poku-e/hanover/internal/catalog"
)

//go:embed templates/*.html
var tmplFS embed.FS

// PageData is everything the full page needs. Items is the projection to
// show; the Catalog itself is never passed in.
type PageData struct {
	Items      []catalog.MenuItem
	Cart       int
	Category   string   // active toggle
	Toggles    []string // "all" followed by the categories
	Categories []string // admin form choices
	Admin      bool
	Alert      string
	Return     string // where cart forms send the visitor back to
	Developer  string
}

type gridData struct {
	Items  []catalog.MenuItem
	Return string
}

// Renderer fully redraws its output on every call; identical input
// yields identical output.
type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(tmplFS, "templates/page.html", "templates/grid.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Must is like New but panics on a template error.
func Must() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Page renders the whole document. Output is buffered so a template error
// never leaves a half-written page.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	if data.Category == "" {
		data.Category = catalog.CategoryAll
	}
	if data.Return == "" {
		data.Return = "/"
	}
	return r.execute(w, "page", data)
}

// Grid renders only the card grid for items; an empty sequence renders a
// single "Nothing Found" placeholder.
func (r *Renderer) Grid(w io.Writer, items []catalog.MenuItem, returnTo string) error {
	if returnTo == "" {
		returnTo = "/"
	}
	return r.execute(w, "grid", gridData{Items: items, Return: returnTo})
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Toggles prefixes categories with the "all" pseudo category.
func Toggles(categories []string) []string {
	out := make([]string, 0, len(categories)+1)
	out = append(out, catalog.CategoryAll)
	return append(out, categories...)
}
