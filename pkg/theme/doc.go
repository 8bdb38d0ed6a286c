// Package theme holds the persisted light/dark preference and its mapping
// onto go-theme manifests. State is independent of the row editor: Init
// reads the saved preference (falling back to the system preference) and
// Toggle flips and persists it. Stores exist for memory, a YAML file, and
// HTTP cookies.
package theme
