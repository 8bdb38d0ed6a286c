package gotemplate

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

var (
	filtersOnce sync.Once
	ugcPolicy   = bluemonday.UGCPolicy()
)

// Sanitize strips markup outside the user-generated-content allowlist. Layout
// descriptions pass through it before being emitted raw; row values rely on
// autoescaping.
func Sanitize(raw string) string {
	return ugcPolicy.Sanitize(raw)
}

func registerDefaultFilters() {
	filtersOnce.Do(func() {
		register := func(name string, fn pongo2.FilterFunction) {
			if !pongo2.FilterExists(name) {
				_ = pongo2.RegisterFilter(name, fn)
			}
		}
		register("sanitize", filterSanitize)
		register("css_vars", filterCSSVars)
	})
}

func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		return pongo2.AsSafeValue(""), nil
	}
	return pongo2.AsSafeValue(Sanitize(in.String())), nil
}

// filterCSSVars renders a map of custom properties as "--a: x; --b: y;",
// sorted by name. Keys without the "--" prefix get one.
func filterCSSVars(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	vars, ok := in.Interface().(map[string]any)
	if !ok || len(vars) == 0 {
		return pongo2.AsValue(""), nil
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		prop := name
		if !strings.HasPrefix(prop, "--") {
			prop = "--" + prop
		}
		parts = append(parts, fmt.Sprintf("%s: %v;", prop, vars[name]))
	}
	return pongo2.AsValue(strings.Join(parts, " ")), nil
}
