package dispatch

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formrows/pkg/dom"
	"github.com/goliatone/go-formrows/pkg/rows"
)

// Standard add trigger ids and the containers they grow.
const (
	TriggerAddIngredient = "add-ingredient"
	TriggerAddDirection  = "add-direction"
	TriggerAddItem       = "add-item"
)

// DefaultTriggers maps the standard add triggers to their containers.
func DefaultTriggers() map[string]string {
	return map[string]string{
		TriggerAddIngredient: rows.IngredientsContainer,
		TriggerAddDirection:  rows.DirectionsContainer,
		TriggerAddItem:       rows.ItemsContainer,
	}
}

// Event describes one dispatched click.
type Event struct {
	Target  *html.Node
	Control *html.Node
	Marker  string
	Result  rows.Result
}

// Observer receives every event after the engine ran.
type Observer func(Event)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver registers an observer. Multiple observers run in order.
func WithObserver(observer Observer) Option {
	return func(d *Dispatcher) {
		if observer != nil {
			d.observers = append(d.observers, observer)
		}
	}
}

type handler func(control *html.Node) rows.Result

type affordance struct {
	marker string
	handle handler
}

// Dispatcher is the single delegated click observer for a document. It
// classifies a click target by affordance marker and re-resolves the acting
// row and container on every event, so rows added later need no wiring.
type Dispatcher struct {
	doc       *dom.Document
	engine    *rows.Engine
	table     []affordance
	triggers  map[string]string
	observers []Observer
}

// New builds a dispatcher for the engine's document.
func New(engine *rows.Engine, options ...Option) *Dispatcher {
	d := &Dispatcher{
		doc:      engine.Document(),
		engine:   engine,
		triggers: make(map[string]string),
	}
	registry := engine.Registry()
	d.table = []affordance{
		{marker: rows.MarkerRemove, handle: func(control *html.Node) rows.Result {
			row := registry.FindEnclosing(control)
			if row == nil {
				return rows.Result{Op: rows.OpRemove, Reason: rows.ReasonNotInRow, Position: -1}
			}
			return engine.Remove(row)
		}},
		{marker: rows.MarkerMoveUp, handle: func(control *html.Node) rows.Result {
			row := registry.FindEnclosingOrdered(control)
			if row == nil {
				return rows.Result{Op: rows.OpMoveUp, Reason: rows.ReasonNotInRow, Position: -1}
			}
			return engine.MoveUp(row)
		}},
		{marker: rows.MarkerMoveDown, handle: func(control *html.Node) rows.Result {
			row := registry.FindEnclosingOrdered(control)
			if row == nil {
				return rows.Result{Op: rows.OpMoveDown, Reason: rows.ReasonNotInRow, Position: -1}
			}
			return engine.MoveDown(row)
		}},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// Document returns the dispatcher's document.
func (d *Dispatcher) Document() *dom.Document {
	return d.doc
}

// Engine returns the underlying row engine.
func (d *Dispatcher) Engine() *rows.Engine {
	return d.engine
}

// BindAdd binds an add trigger to a container. It reports false, binding
// nothing, when the trigger is not present in the document.
func (d *Dispatcher) BindAdd(triggerID, containerID string) bool {
	triggerID = strings.TrimSpace(triggerID)
	containerID = strings.TrimSpace(containerID)
	if triggerID == "" || containerID == "" {
		return false
	}
	if d.doc.GetElementByID(triggerID) == nil {
		return false
	}
	d.triggers[triggerID] = containerID
	return true
}

// BindDefaultAdds binds the standard add triggers present in the document and
// returns how many were bound.
func (d *Dispatcher) BindDefaultAdds() int {
	bound := 0
	for trigger, container := range DefaultTriggers() {
		if d.BindAdd(trigger, container) {
			bound++
		}
	}
	return bound
}

// Triggers returns a copy of the bound trigger table.
func (d *Dispatcher) Triggers() map[string]string {
	out := make(map[string]string, len(d.triggers))
	for trigger, container := range d.triggers {
		out[trigger] = container
	}
	return out
}

// Click interprets a click on target. Clicks outside any affordance are
// ignored and reported with ReasonNoAffordance.
func (d *Dispatcher) Click(target *html.Node) rows.Result {
	event := Event{Target: target}
	event.Result = rows.Result{Reason: rows.ReasonNoAffordance, Position: -1}

	if target != nil && d.doc.Contains(target) {
		d.classify(&event)
	}

	for _, observer := range d.observers {
		observer(event)
	}
	return event.Result
}

func (d *Dispatcher) classify(event *Event) {
	for _, entry := range d.table {
		control := dom.Closest(event.Target, dom.ByClass(entry.marker))
		if control == nil {
			continue
		}
		event.Control = control
		event.Marker = entry.marker
		event.Result = entry.handle(control)
		return
	}

	trigger := dom.Closest(event.Target, func(n *html.Node) bool {
		id, ok := dom.Attr(n, "id")
		if !ok {
			return false
		}
		_, bound := d.triggers[id]
		return bound
	})
	if trigger == nil {
		return
	}
	id, _ := dom.Attr(trigger, "id")
	event.Control = trigger
	event.Marker = id
	event.Result = d.engine.AddRow(d.triggers[id])
}

// ClickPath resolves a node path (see dom.Document.PathOf) and clicks it.
func (d *Dispatcher) ClickPath(path string) (rows.Result, error) {
	target, err := d.doc.ElementAt(path)
	if err != nil {
		return rows.Result{}, fmt.Errorf("dispatch: resolve target: %w", err)
	}
	return d.Click(target), nil
}

// Add clicks the trigger bound to containerID. When several triggers feed
// the container, the lowest trigger id is clicked. A container without a
// bound trigger cannot grow.
func (d *Dispatcher) Add(containerID string) rows.Result {
	ids := make([]string, 0, len(d.triggers))
	for trigger, container := range d.triggers {
		if container == containerID {
			ids = append(ids, trigger)
		}
	}
	if len(ids) > 0 {
		sort.Strings(ids)
		return d.Click(d.doc.GetElementByID(ids[0]))
	}
	return rows.Result{Op: rows.OpAdd, Container: containerID, Reason: rows.ReasonNoAffordance, Position: -1}
}
