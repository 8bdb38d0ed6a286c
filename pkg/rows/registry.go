package rows

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formrows/pkg/dom"
)

// Standard container ids from the edit-page markup contract.
const (
	IngredientsContainer = "ingredients-container"
	DirectionsContainer  = "directions-container"
	ItemsContainer       = "items-container"
)

// Affordance markers carried by row controls.
const (
	MarkerRemove   = "btn-remove"
	MarkerMoveUp   = "btn-up"
	MarkerMoveDown = "btn-down"
	MarkerNumber   = "direction-number"
)

// Kind describes one row-kind marker. Ordered kinds carry a sequence number
// display and accept move up/down.
type Kind struct {
	Marker       string
	Ordered      bool
	NumberMarker string
}

var (
	IngredientRow = Kind{Marker: "ingredient-row"}
	DirectionRow  = Kind{Marker: "direction-row", Ordered: true, NumberMarker: MarkerNumber}
	ItemRow       = Kind{Marker: "item-row"}
)

// DefaultKinds returns the built-in row kinds.
func DefaultKinds() []Kind {
	return []Kind{IngredientRow, DirectionRow, ItemRow}
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithKinds registers additional row kinds. A kind reusing an existing marker
// replaces it.
func WithKinds(kinds ...Kind) RegistryOption {
	return func(r *Registry) {
		for _, kind := range kinds {
			r.add(kind)
		}
	}
}

// Registry resolves rows and containers from interaction targets. It holds
// the fixed set of recognized row-kind markers.
type Registry struct {
	kinds []Kind
}

// NewRegistry builds a registry seeded with DefaultKinds.
func NewRegistry(options ...RegistryOption) *Registry {
	r := &Registry{}
	for _, kind := range DefaultKinds() {
		r.add(kind)
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Registry) add(kind Kind) {
	kind.Marker = strings.TrimSpace(kind.Marker)
	if kind.Marker == "" {
		return
	}
	if kind.Ordered && kind.NumberMarker == "" {
		kind.NumberMarker = MarkerNumber
	}
	for i, existing := range r.kinds {
		if existing.Marker == kind.Marker {
			r.kinds[i] = kind
			return
		}
	}
	r.kinds = append(r.kinds, kind)
}

// Kinds returns a copy of the recognized kinds.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, len(r.kinds))
	copy(out, r.kinds)
	return out
}

// KindOf returns the kind of a row element.
func (r *Registry) KindOf(n *html.Node) (Kind, bool) {
	if !dom.IsElement(n) {
		return Kind{}, false
	}
	for _, kind := range r.kinds {
		if dom.HasClass(n, kind.Marker) {
			return kind, true
		}
	}
	return Kind{}, false
}

// IsRow reports whether n carries a recognized row marker.
func (r *Registry) IsRow(n *html.Node) bool {
	_, ok := r.KindOf(n)
	return ok
}

// Ordered reports whether the row belongs to an order-sensitive kind.
func (r *Registry) Ordered(row *html.Node) bool {
	kind, ok := r.KindOf(row)
	return ok && kind.Ordered
}

// FindEnclosing returns the nearest ancestor-or-self row of target, or nil
// when the interaction did not originate inside a row.
func (r *Registry) FindEnclosing(target *html.Node) *html.Node {
	return dom.Closest(target, r.IsRow)
}

// FindEnclosingOrdered is FindEnclosing restricted to ordered kinds.
func (r *Registry) FindEnclosingOrdered(target *html.Node) *html.Node {
	return dom.Closest(target, r.Ordered)
}

// ContainerOf returns the structural parent holding row.
func ContainerOf(row *html.Node) *html.Node {
	return dom.ParentElement(row)
}

// Container looks up a container element by id.
func Container(doc *dom.Document, id string) *html.Node {
	return doc.GetElementByID(id)
}

// RowsOf returns the container's recognized rows in current order. Children
// without a row marker are not counted.
func (r *Registry) RowsOf(container *html.Node) []*html.Node {
	var out []*html.Node
	for _, child := range dom.Children(container) {
		if r.IsRow(child) {
			out = append(out, child)
		}
	}
	return out
}

// PositionOf returns the 0-based index of row within its container, or -1.
func (r *Registry) PositionOf(row *html.Node) int {
	for i, candidate := range r.RowsOf(ContainerOf(row)) {
		if candidate == row {
			return i
		}
	}
	return -1
}
