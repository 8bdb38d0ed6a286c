// Package formrows is the top-level entry point: it resolves a layout, a
// theme, and a renderer for one render call, and opens rendered markup as a
// live editor.
package formrows

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formrows/pkg/layout"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/renderers/tui"
	"github.com/goliatone/go-formrows/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrows/pkg/session"
	"github.com/goliatone/go-formrows/pkg/theme"
)

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// Form aliases layout.Form.
type Form = layout.Form

// DefaultRenderer is used when a request names none.
const DefaultRenderer = vanilla.Name

// Generator renders catalog forms through registered renderers.
type Generator struct {
	catalog   *layout.Catalog
	registry  *render.Registry
	selector  gotheme.ThemeSelector
	themeName string
}

// Option configures a Generator.
type Option func(*Generator)

// WithCatalog replaces the built-in layouts.
func WithCatalog(catalog *layout.Catalog) Option {
	return func(g *Generator) {
		if catalog != nil {
			g.catalog = catalog
		}
	}
}

// WithRegistry replaces the built-in renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(g *Generator) {
		if registry != nil {
			g.registry = registry
		}
	}
}

// WithThemeSelector resolves palettes from selector using the named manifest.
func WithThemeSelector(selector gotheme.ThemeSelector, themeName string) Option {
	return func(g *Generator) {
		g.selector = selector
		g.themeName = themeName
	}
}

// New builds a generator with the built-in layouts, both built-in renderers,
// and the default theme.
func New(options ...Option) (*Generator, error) {
	g := &Generator{
		catalog:  layout.DefaultCatalog(),
		selector: theme.DefaultSelector(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}
	if g.registry == nil {
		registry, err := NewRegistry()
		if err != nil {
			return nil, err
		}
		g.registry = registry
	}
	return g, nil
}

// NewRegistry returns a registry holding the vanilla and tui renderers.
func NewRegistry(tuiOptions ...tui.Option) (*render.Registry, error) {
	registry := render.NewRegistry()
	html, err := vanilla.New()
	if err != nil {
		return nil, fmt.Errorf("formrows: vanilla renderer: %w", err)
	}
	terminal, err := tui.New(append([]tui.Option{tui.WithMarkupRenderer(html)}, tuiOptions...)...)
	if err != nil {
		return nil, fmt.Errorf("formrows: tui renderer: %w", err)
	}
	registry.MustRegister(html)
	registry.MustRegister(terminal)
	return registry, nil
}

// Catalog returns the layouts the generator renders.
func (g *Generator) Catalog() *layout.Catalog {
	return g.catalog
}

// Registry returns the renderer registry.
func (g *Generator) Registry() *render.Registry {
	return g.registry
}

// Request names what to render.
type Request struct {
	FormID   string
	Renderer string
	Options  RenderOptions
}

// Generate renders one catalog form. Missing theme palettes are resolved
// from the generator's selector.
func (g *Generator) Generate(ctx context.Context, req Request) ([]byte, error) {
	form, err := g.catalog.Get(req.FormID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Renderer)
	if name == "" {
		name = DefaultRenderer
	}
	renderer, err := g.registry.Get(name)
	if err != nil {
		return nil, err
	}

	options := req.Options
	if options.Theme == nil && g.selector != nil {
		light, dark, err := theme.ResolveAll(g.selector, g.themeName)
		if err != nil {
			return nil, err
		}
		options.Theme, options.DarkTheme = light, dark
	}
	return renderer.Render(ctx, form, options)
}

// GenerateHTML renders a built-in form with the vanilla renderer.
func GenerateHTML(ctx context.Context, formID string, options RenderOptions) ([]byte, error) {
	g, err := New()
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, Request{FormID: formID, Options: options})
}

// Open parses markup rendered for form into a live editor.
func Open(form Form, markup []byte) (*session.Editor, error) {
	return session.NewEditor(form.ID, form, markup)
}

// EmbeddedTemplates exposes the vanilla renderer templates so callers can
// reuse or extend them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet the vanilla pages link to.
//
//	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServerFS(formrows.AssetsFS())))
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
