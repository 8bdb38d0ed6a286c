package render

import (
	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formrows/pkg/theme"
)

// RenderOptions carry per-request data renderers use without mutating the
// layout.
type RenderOptions struct {
	// Action and Method describe where the edit form posts interactions.
	// Method defaults to POST.
	Action string
	Method string
	// Hidden lists hidden inputs emitted inside the edit form, for example a
	// CSRF token.
	Hidden map[string]string
	// Mode is the resolved light/dark preference.
	Mode theme.Mode
	// ThemeToggleAction is the endpoint the theme toggle posts to. Empty
	// omits the toggle.
	ThemeToggleAction string
	// Theme carries the light variant's CSS variables and asset URLs.
	// DarkTheme carries the dark variant's CSS variables, applied under the
	// dark root class.
	Theme     *gotheme.RendererConfig
	DarkTheme *gotheme.RendererConfig
}

// EffectiveMethod returns the upper-cased method, defaulting to POST.
func (o RenderOptions) EffectiveMethod() string {
	switch o.Method {
	case "", "post", "POST":
		return "POST"
	case "get", "GET":
		return "GET"
	}
	return "POST"
}
