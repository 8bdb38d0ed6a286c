package rows

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formrows/pkg/dom"
)

// Op names a row operation.
type Op string

const (
	OpAdd      Op = "add"
	OpRemove   Op = "remove"
	OpMoveUp   Op = "move-up"
	OpMoveDown Op = "move-down"
)

// Reason explains why an operation was a no-op.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonNotInRow     Reason = "not-in-row"
	ReasonLastRow      Reason = "last-row"
	ReasonFirst        Reason = "already-first"
	ReasonLast         Reason = "already-last"
	ReasonUnordered    Reason = "unordered-row"
	ReasonNoContainer  Reason = "no-container"
	ReasonNoTemplate   Reason = "no-template"
	ReasonNoAffordance Reason = "no-affordance"
)

// Result reports the outcome of an operation. Guarded no-ops are normal
// outcomes: Applied is false and Reason says which guard fired.
type Result struct {
	Op        Op
	Applied   bool
	Reason    Reason
	Container string
	Position  int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRegistry overrides the default row registry.
func WithRegistry(registry *Registry) EngineOption {
	return func(e *Engine) {
		if registry != nil {
			e.registry = registry
		}
	}
}

// Engine applies row operations to a document. It is not safe for concurrent
// use; callers run one operation to completion before starting the next.
type Engine struct {
	doc      *dom.Document
	registry *Registry
}

// NewEngine binds an engine to doc.
func NewEngine(doc *dom.Document, options ...EngineOption) *Engine {
	e := &Engine{doc: doc}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}
	return e
}

// Registry returns the registry used to classify rows.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Document returns the bound document.
func (e *Engine) Document() *dom.Document {
	return e.doc
}

// Remove detaches row unless it is the last recognized row of its container.
func (e *Engine) Remove(row *html.Node) Result {
	result := Result{Op: OpRemove, Position: -1}
	if !e.registry.IsRow(row) {
		result.Reason = ReasonNotInRow
		return result
	}
	container := ContainerOf(row)
	result.Container = containerID(container)
	result.Position = e.registry.PositionOf(row)

	if len(e.registry.RowsOf(container)) <= 1 {
		result.Reason = ReasonLastRow
		return result
	}

	dom.Detach(row)
	e.Renumber(container)
	result.Applied = true
	return result
}

// MoveUp swaps an ordered row with its predecessor.
func (e *Engine) MoveUp(row *html.Node) Result {
	result, container, siblings, index := e.prepareMove(OpMoveUp, row)
	if result.Reason != ReasonNone {
		return result
	}
	if index == 0 {
		result.Reason = ReasonFirst
		return result
	}

	dom.InsertBefore(container, row, siblings[index-1])
	e.Renumber(container)
	result.Applied = true
	result.Position = index - 1
	return result
}

// MoveDown swaps an ordered row with its successor.
func (e *Engine) MoveDown(row *html.Node) Result {
	result, container, siblings, index := e.prepareMove(OpMoveDown, row)
	if result.Reason != ReasonNone {
		return result
	}
	if index == len(siblings)-1 {
		result.Reason = ReasonLast
		return result
	}

	dom.InsertBefore(container, siblings[index+1], row)
	e.Renumber(container)
	result.Applied = true
	result.Position = index + 1
	return result
}

func (e *Engine) prepareMove(op Op, row *html.Node) (Result, *html.Node, []*html.Node, int) {
	result := Result{Op: op, Position: -1}
	if !e.registry.IsRow(row) {
		result.Reason = ReasonNotInRow
		return result, nil, nil, -1
	}
	container := ContainerOf(row)
	result.Container = containerID(container)
	if !e.registry.Ordered(row) {
		result.Reason = ReasonUnordered
		return result, nil, nil, -1
	}

	siblings := e.registry.RowsOf(container)
	index := -1
	for i, candidate := range siblings {
		if candidate == row {
			index = i
			break
		}
	}
	if index < 0 {
		result.Reason = ReasonNotInRow
		return result, nil, nil, -1
	}
	result.Position = index
	return result, container, siblings, index
}

// AddRow appends an empty copy of the container's first row and focuses its
// first typed control.
func (e *Engine) AddRow(containerID string) Result {
	result := Result{Op: OpAdd, Container: containerID, Position: -1}
	container := Container(e.doc, containerID)
	if container == nil {
		result.Reason = ReasonNoContainer
		return result
	}
	existing := e.registry.RowsOf(container)
	if len(existing) == 0 {
		result.Reason = ReasonNoTemplate
		return result
	}

	clone := dom.Clone(existing[0])
	for _, control := range dom.QueryAll(clone, dom.IsValueControl) {
		dom.ClearValue(control)
	}
	container.AppendChild(clone)
	e.Renumber(container)

	if first := dom.QueryFirst(clone, dom.IsFocusable); first != nil {
		e.doc.Focus(first)
	}

	result.Applied = true
	result.Position = len(existing)
	return result
}

// Renumber writes position+1 into the number display of every ordered row.
// It is idempotent and safe to call on unordered containers.
func (e *Engine) Renumber(container *html.Node) {
	for i, row := range e.registry.RowsOf(container) {
		kind, _ := e.registry.KindOf(row)
		if !kind.Ordered || kind.NumberMarker == "" {
			continue
		}
		display := dom.QueryFirst(row, dom.ByClass(kind.NumberMarker))
		if display == nil {
			continue
		}
		dom.SetText(display, strconv.Itoa(i+1))
	}
}

func containerID(container *html.Node) string {
	id, _ := dom.Attr(container, "id")
	return id
}
