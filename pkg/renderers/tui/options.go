package tui

import (
	"github.com/goliatone/go-formrows/pkg/render"
)

// OutputFormat controls how the edited rows are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits {"container-id": [{"field": "value"}]}.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits the values a browser would submit.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a numbered plain-text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// SubmitTransformer mutates the collected rows before serialization.
type SubmitTransformer func(Values) (Values, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithMarkupRenderer replaces the renderer producing the document the edit
// loop operates on. It must emit the row markup contract.
func WithMarkupRenderer(markup render.Renderer) Option {
	return func(r *Renderer) {
		if markup != nil {
			r.markup = markup
		}
	}
}

// WithSubmitTransformer lets callers mutate collected rows prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithStyles overrides the lipgloss styles of the state view.
func WithStyles(styles Styles) Option {
	return func(r *Renderer) {
		r.styles = styles
	}
}
