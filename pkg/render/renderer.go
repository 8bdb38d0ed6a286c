package render

import (
	"context"

	"github.com/goliatone/go-formrows/pkg/layout"
)

// Renderer turns a form layout into a document (HTML page, terminal session
// transcript, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form layout.Form, options RenderOptions) ([]byte, error)
}
