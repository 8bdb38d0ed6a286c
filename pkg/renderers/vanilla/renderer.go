package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-formrows/pkg/layout"
	"github.com/goliatone/go-formrows/pkg/render"
	rendertemplate "github.com/goliatone/go-formrows/pkg/render/template"
	gotemplate "github.com/goliatone/go-formrows/pkg/render/template/gotemplate"
)

// Name is the registry key of the HTML renderer.
const Name = "vanilla"

// Template engines the renderer can build on.
const (
	EngineBuiltin    = "builtin"
	EngineGoTemplate = "go-template"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	engine           string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide page.tmpl and the components it includes.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithEngine selects the template engine built over the template bundle:
// EngineBuiltin (default) or EngineGoTemplate. WithTemplateRenderer wins
// over it.
func WithEngine(name string) Option {
	return func(cfg *config) {
		cfg.engine = name
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// Renderer produces the edit page: one container per layout container, each
// holding its rows and followed by its add trigger.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		var err error
		if renderer, err = newEngine(cfg); err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
	}
	return &Renderer{templates: renderer}, nil
}

func newEngine(cfg config) (rendertemplate.TemplateRenderer, error) {
	switch cfg.engine {
	case "", EngineBuiltin:
		return gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
	case EngineGoTemplate:
		return gotemplate.NewLibrary(
			gotemplatepkg.WithFS(cfg.templateFS),
			gotemplatepkg.WithExtension(".tmpl"),
		)
	default:
		return nil, fmt.Errorf("unknown template engine %q", cfg.engine)
	}
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, form layout.Form, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	result, err := r.templates.RenderTemplate("page", buildPage(form, options))
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render form %q: %w", form.ID, err)
	}
	return []byte(result), nil
}
