package theme

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// DefaultThemeName is the manifest shipped with the editor.
const DefaultThemeName = "formrows"

var (
	// ErrThemeNotFound is returned when a selector has no manifest by name.
	ErrThemeNotFound = errors.New("theme: manifest not found")
	// ErrVariantNotFound is returned when a manifest lacks the requested variant.
	ErrVariantNotFound = errors.New("theme: variant not found")
)

// DefaultManifest returns the built-in manifest. Its light and dark variants
// carry the palette tokens rendered as CSS variables.
func DefaultManifest() *gotheme.Manifest {
	return &gotheme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"radius":      "0.5rem",
			"font-family": "system-ui, sans-serif",
		},
		Assets: gotheme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"stylesheet": "formrows.css",
			},
		},
		Variants: map[string]gotheme.Variant{
			string(ModeLight): {
				Tokens: map[string]string{
					"bg":     "#ffffff",
					"fg":     "#1f2937",
					"muted":  "#6b7280",
					"border": "#d1d5db",
					"accent": "#b45309",
				},
			},
			string(ModeDark): {
				Tokens: map[string]string{
					"bg":     "#111827",
					"fg":     "#f3f4f6",
					"muted":  "#9ca3af",
					"border": "#374151",
					"accent": "#f59e0b",
				},
			},
		},
	}
}

// ManifestSelector resolves go-theme selections from registered manifests.
type ManifestSelector struct {
	mu           sync.RWMutex
	manifests    map[string]*gotheme.Manifest
	defaultTheme string
}

var _ gotheme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests; the first one becomes the default
// unless defaultTheme names another.
func NewManifestSelector(defaultTheme string, manifests ...*gotheme.Manifest) (*ManifestSelector, error) {
	s := &ManifestSelector{
		manifests:    make(map[string]*gotheme.Manifest),
		defaultTheme: strings.TrimSpace(defaultTheme),
	}
	for _, manifest := range manifests {
		if err := s.Register(manifest); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DefaultSelector returns a selector holding DefaultManifest.
func DefaultSelector() *ManifestSelector {
	s, err := NewManifestSelector(DefaultThemeName, DefaultManifest())
	if err != nil {
		panic(err)
	}
	return s
}

// Register adds a manifest keyed by its name.
func (s *ManifestSelector) Register(manifest *gotheme.Manifest) error {
	if manifest == nil {
		return errors.New("theme: manifest is required")
	}
	name := strings.TrimSpace(manifest.Name)
	if name == "" {
		return errors.New("theme: manifest name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.manifests[name]; exists {
		return fmt.Errorf("theme: manifest %q already registered", name)
	}
	s.manifests[name] = manifest
	if s.defaultTheme == "" {
		s.defaultTheme = name
	}
	return nil
}

// Names lists registered manifests.
func (s *ManifestSelector) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves a manifest and variant. An empty name uses the default
// manifest; an empty variant is allowed and applies no overrides.
func (s *ManifestSelector) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}

	variant = strings.TrimSpace(variant)
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q in %q", ErrVariantNotFound, variant, name)
		}
	}
	return &gotheme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// RendererConfig flattens a selection into the configuration renderers use:
// base tokens overlaid with variant tokens, CSS variables derived from them,
// merged template partials, and an asset URL resolver.
func RendererConfig(selection *gotheme.Selection) *gotheme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	variant, hasVariant := manifest.Variants[selection.Variant]

	tokens := mergeStrings(manifest.Tokens, nil)
	partials := mergeStrings(manifest.Templates, nil)
	prefix := manifest.Assets.Prefix
	files := mergeStrings(manifest.Assets.Files, nil)
	if hasVariant {
		tokens = mergeStrings(tokens, variant.Tokens)
		partials = mergeStrings(partials, variant.Templates)
		files = mergeStrings(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &gotheme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if prefix == "" {
				return file
			}
			return path.Join(prefix, file)
		},
	}
}

// Resolve selects the manifest variant matching mode and returns its
// renderer configuration.
func Resolve(selector gotheme.ThemeSelector, themeName string, mode Mode) (*gotheme.RendererConfig, error) {
	if selector == nil {
		return nil, nil
	}
	selection, err := selector.Select(themeName, string(mode))
	if err != nil {
		return nil, fmt.Errorf("theme: select %q/%s: %w", themeName, mode, err)
	}
	return RendererConfig(selection), nil
}

func mergeStrings(base, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overrides))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overrides {
		out[key] = value
	}
	return out
}

// ResolveAll resolves both variants of a manifest. Renderers emit the light
// tokens on the root and the dark tokens under the dark root class, so a mode
// switch only flips the class.
func ResolveAll(selector gotheme.ThemeSelector, themeName string) (light, dark *gotheme.RendererConfig, err error) {
	if light, err = Resolve(selector, themeName, ModeLight); err != nil {
		return nil, nil, err
	}
	if dark, err = Resolve(selector, themeName, ModeDark); err != nil {
		return nil, nil, err
	}
	return light, dark, nil
}
