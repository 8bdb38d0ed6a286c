package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ErrInvalidPath is returned when a node path cannot be parsed.
var ErrInvalidPath = errors.New("dom: invalid node path")

// Document wraps a parsed HTML tree and tracks the focused element.
type Document struct {
	root   *html.Node
	active *html.Node
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// MustParseString panics on parse failure. Intended for tests and fixtures.
func MustParseString(markup string) *Document {
	doc, err := ParseString(markup)
	if err != nil {
		panic(err)
	}
	return doc
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	if d == nil {
		return nil
	}
	return d.root
}

// GetElementByID returns the first element with the given id.
func (d *Document) GetElementByID(id string) *html.Node {
	if d == nil || id == "" {
		return nil
	}
	return QueryFirst(d.root, ByID(id))
}

// Contains reports whether n is attached to this document.
func (d *Document) Contains(n *html.Node) bool {
	if d == nil || n == nil {
		return false
	}
	for current := n; current != nil; current = current.Parent {
		if current == d.root {
			return true
		}
	}
	return false
}

// Focus marks n as the active element.
func (d *Document) Focus(n *html.Node) {
	if d == nil {
		return
	}
	d.active = n
}

// ActiveElement returns the focused element, or nil when nothing is focused
// or the focused element has since been detached.
func (d *Document) ActiveElement() *html.Node {
	if d == nil || d.active == nil {
		return nil
	}
	if !d.Contains(d.active) {
		return nil
	}
	return d.active
}

// PathOf returns the dot-separated element-child indices leading from the
// document root to n. Paths are positional and only valid until the next
// structural mutation.
func (d *Document) PathOf(n *html.Node) string {
	if d == nil || !IsElement(n) || !d.Contains(n) {
		return ""
	}
	var segments []string
	for current := n; current != nil && current != d.root; current = current.Parent {
		index := 0
		for sibling := PreviousElementSibling(current); sibling != nil; sibling = PreviousElementSibling(sibling) {
			index++
		}
		segments = append(segments, strconv.Itoa(index))
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, ".")
}

// ElementAt resolves a path produced by PathOf.
func (d *Document) ElementAt(path string) (*html.Node, error) {
	if d == nil {
		return nil, ErrInvalidPath
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrInvalidPath
	}
	current := d.root
	for _, segment := range strings.Split(path, ".") {
		index, err := strconv.Atoi(segment)
		if err != nil || index < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
		children := Children(current)
		if index >= len(children) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
		current = children[index]
	}
	return current, nil
}

// Render serializes the document. The active element is written with an
// autofocus attribute; no other element carries one.
func (d *Document) Render(w io.Writer) error {
	if d == nil || d.root == nil {
		return errors.New("dom: document is nil")
	}
	active := d.ActiveElement()
	for _, n := range QueryAll(d.root, func(n *html.Node) bool { return true }) {
		if n == active {
			SetAttr(n, "autofocus", "")
			continue
		}
		RemoveAttr(n, "autofocus")
	}
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("dom: render: %w", err)
	}
	return nil
}

// String renders the document, returning an empty string on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}
