// Package render defines the renderer contract shared by the HTML and
// terminal front ends, a name-keyed registry, and the per-request options
// (form action, hidden fields, theme) passed to renderers.
package render
