// Package render produces the daily roster pages and their JSON form.
package render

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/hyperjump/dutyroster/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var deptColors = []template.CSS{"#1a56db", "#0e9f6e", "#d03801", "#7e3af2", "#e3a008", "#0694a2", "#e74694", "#3f83f8"}

var categoryColors = map[models.Category]template.CSS{
	models.Morning:   "#fef3c7",
	models.Afternoon: "#ffedd5",
	models.Night:     "#e0e7ff",
	models.Standby:   "#ccfbf1",
	models.Rest:      "#dcfce7",
	models.Leave:     "#fce7f3",
	models.Training:  "#ede9fe",
	models.Other:     "#f1f5f9",
}

// Meta describes where a roster came from.
type Meta struct {
	Source      string    `json:"source,omitempty"`
	SourceID    string    `json:"source_id,omitempty"`
	SnapshotID  string    `json:"snapshot_id,omitempty"`
	MonthKey    string    `json:"month_key,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Renderer renders roster pages.
type Renderer struct {
	title    string
	basePath string
	page     *template.Template
	redirect *template.Template
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithTitle sets the page title.
func WithTitle(title string) RendererOption {
	return func(r *Renderer) {
		if title != "" {
			r.title = title
		}
	}
}

// WithBasePath sets the URL prefix under which the day pages are served.
func WithBasePath(p string) RendererOption {
	return func(r *Renderer) {
		r.basePath = strings.TrimRight(p, "/")
	}
}

// NewRenderer parses the embedded templates.
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{title: "Duty Roster"}
	for _, opt := range opts {
		opt(r)
	}

	funcs := template.FuncMap{
		"categories": models.AllCategories,
		"deptColor": func(i int) template.CSS {
			return deptColors[i%len(deptColors)]
		},
		"categoryColor": func(c models.Category) template.CSS {
			if col, ok := categoryColors[c]; ok {
				return col
			}
			return categoryColors[models.Other]
		},
	}
	page, err := template.New("page.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/page.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	redirect, err := template.New("redirect.html.tmpl").ParseFS(templateFS, "templates/redirect.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse redirect template: %w", err)
	}
	r.page = page
	r.redirect = redirect
	return r, nil
}

// BasePath returns the configured URL prefix.
func (r *Renderer) BasePath() string {
	return r.basePath
}

// Page writes the HTML page for roster. Non-empty categories appear in render
// order and the active category starts expanded.
func (r *Renderer) Page(w io.Writer, roster *models.Roster, meta Meta) error {
	if roster == nil {
		return fmt.Errorf("render page: nil roster")
	}
	data := struct {
		Title  string
		Roster *models.Roster
		Meta   Meta
	}{r.title, roster, meta}
	if err := r.page.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// Redirect writes a page that sends the browser to today's day page, linking
// latest as the fallback.
func (r *Renderer) Redirect(w io.Writer, latest string) error {
	data := struct {
		Title    string
		BasePath string
		Latest   string
	}{r.title, r.basePath, latest}
	if err := r.redirect.Execute(w, data); err != nil {
		return fmt.Errorf("render redirect: %w", err)
	}
	return nil
}

// Document is the JSON form of a published roster.
type Document struct {
	Meta
	Date   string         `json:"date"`
	Roster *models.Roster `json:"roster"`
}

// JSON writes roster and meta as indented JSON.
func (r *Renderer) JSON(w io.Writer, roster *models.Roster, meta Meta) error {
	if roster == nil {
		return fmt.Errorf("render json: nil roster")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{Meta: meta, Date: roster.DateKey(), Roster: roster})
}
