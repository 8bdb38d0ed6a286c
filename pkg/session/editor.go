package session

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formrows/pkg/dispatch"
	"github.com/goliatone/go-formrows/pkg/dom"
	"github.com/goliatone/go-formrows/pkg/layout"
	"github.com/goliatone/go-formrows/pkg/rows"
	"github.com/goliatone/go-formrows/pkg/theme"
)

// Form fields carried by served pages.
const (
	// TargetField is the submit name of every affordance button. Its value
	// is the node path of the clicked control.
	TargetField = "target"
	// RevisionField is a hidden input holding the document revision the
	// page was rendered from.
	RevisionField = "revision"
)

// ErrStaleRevision is returned by Interact when the submitted page was
// rendered before the document's last structural change.
var ErrStaleRevision = errors.New("session: stale revision")

// Editor is one live edit document. All methods are safe for concurrent use.
type Editor struct {
	mu sync.Mutex

	id         string
	form       layout.Form
	doc        *dom.Document
	dispatcher *dispatch.Dispatcher
	created    time.Time
	touched    time.Time
	// revision counts applied row operations. Node paths in a served page
	// are only valid for the revision it was rendered from.
	revision uint64
}

// NewEditor parses rendered markup and wires a dispatcher using the form's
// row kinds and add triggers.
func NewEditor(id string, form layout.Form, markup []byte, observers ...dispatch.Observer) (*Editor, error) {
	doc, err := dom.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("session: parse document: %w", err)
	}

	registry := rows.NewRegistry(rows.WithKinds(form.Kinds()...))
	options := make([]dispatch.Option, 0, len(observers))
	for _, observer := range observers {
		options = append(options, dispatch.WithObserver(observer))
	}
	d := dispatch.New(rows.NewEngine(doc, rows.WithRegistry(registry)), options...)
	for trigger, container := range form.Triggers() {
		d.BindAdd(trigger, container)
	}

	now := time.Now()
	return &Editor{
		id:         id,
		form:       form,
		doc:        doc,
		dispatcher: d,
		created:    now,
		touched:    now,
	}, nil
}

// ID returns the editor id.
func (e *Editor) ID() string {
	return e.id
}

// Form returns the layout the editor was created from.
func (e *Editor) Form() layout.Form {
	return e.form
}

// LastActive returns when the editor was last read or mutated.
func (e *Editor) LastActive() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.touched
}

// Revision returns the number of row operations applied so far.
func (e *Editor) Revision() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revision
}

// Interact applies submitted values to the document, then clicks the control
// named by the target path. An empty target only syncs values.
//
// When values carry RevisionField it must equal the current revision;
// otherwise nothing is synced or clicked and ErrStaleRevision is returned.
func (e *Editor) Interact(values url.Values, target string) (rows.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touched = time.Now()

	if submitted, ok := values[RevisionField]; ok {
		revision, err := strconv.ParseUint(firstOf(submitted), 10, 64)
		if err != nil || revision != e.revision {
			return rows.Result{Position: -1}, fmt.Errorf("%w: got %q, current %d", ErrStaleRevision, firstOf(submitted), e.revision)
		}
	}

	e.syncLocked(values)
	if target == "" {
		return rows.Result{Reason: rows.ReasonNoAffordance, Position: -1}, nil
	}
	result, err := e.dispatcher.ClickPath(target)
	if err != nil {
		return result, err
	}
	return e.track(result), nil
}

// track advances the revision when result changed the document structure.
func (e *Editor) track(result rows.Result) rows.Result {
	if result.Applied {
		e.revision++
	}
	return result
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Sync copies submitted values into the document's row controls.
func (e *Editor) Sync(values url.Values) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touched = time.Now()
	e.syncLocked(values)
}

// syncLocked assigns the k-th submitted value of a name to the k-th control
// with that name, in document order. Names absent from values are left
// untouched, as are hidden inputs.
func (e *Editor) syncLocked(values url.Values) {
	if len(values) == 0 {
		return
	}
	seen := make(map[string]int)
	for _, control := range e.editControls() {
		name := dom.ControlName(control)
		submitted, ok := values[name]
		if name == "" || !ok {
			continue
		}
		index := seen[name]
		seen[name] = index + 1
		if index < len(submitted) {
			dom.SetValue(control, submitted[index])
		}
	}
}

func (e *Editor) editControls() []*html.Node {
	var out []*html.Node
	for _, container := range e.form.Containers {
		node := rows.Container(e.doc, container.ID)
		if node == nil {
			continue
		}
		for _, control := range dom.QueryAll(node, dom.IsValueControl) {
			if kind, _ := dom.Attr(control, "type"); kind == "hidden" {
				continue
			}
			out = append(out, control)
		}
	}
	return out
}

// Add grows a container through its bound add trigger.
func (e *Editor) Add(containerID string) rows.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touched = time.Now()
	return e.track(e.dispatcher.Add(containerID))
}

// Rows returns the records of one container.
func (e *Editor) Rows(containerID string) []rows.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rowsLocked(containerID)
}

func (e *Editor) rowsLocked(containerID string) []rows.Row {
	container := rows.Container(e.doc, containerID)
	if container == nil {
		return nil
	}
	return e.dispatcher.Engine().Registry().Snapshot(container)
}

// Snapshot returns the records of every container declared by the form.
func (e *Editor) Snapshot() map[string][]rows.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string][]rows.Row, len(e.form.Containers))
	for _, container := range e.form.Containers {
		out[container.ID] = e.rowsLocked(container.ID)
	}
	return out
}

// Values returns each container's field values row by row, in the shape
// layout.Form.WithRows accepts.
func (e *Editor) Values() map[string][][]string {
	out := make(map[string][][]string)
	for id, records := range e.Snapshot() {
		values := make([][]string, 0, len(records))
		for _, record := range records {
			values = append(values, record.Values())
		}
		out[id] = values
	}
	return out
}

// HTML serializes the document for mode. Affordance buttons and add
// triggers are rewritten as submit buttons carrying their own node path, so
// the page works without scripts. The edit form carries the current revision
// in a hidden RevisionField input.
func (e *Editor) HTML(mode theme.Mode) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touched = time.Now()

	theme.Apply(e.doc, mode)
	e.stampRevisionLocked()
	e.wireControlsLocked()

	var buf bytes.Buffer
	if err := e.doc.Render(&buf); err != nil {
		return nil, fmt.Errorf("session: render %s: %w", e.id, err)
	}
	return buf.Bytes(), nil
}

func (e *Editor) wireControlsLocked() {
	triggers := e.dispatcher.Triggers()
	isControl := func(n *html.Node) bool {
		if n.Data != "button" {
			return false
		}
		if dom.HasClass(n, rows.MarkerRemove) || dom.HasClass(n, rows.MarkerMoveUp) || dom.HasClass(n, rows.MarkerMoveDown) {
			return true
		}
		id, _ := dom.Attr(n, "id")
		_, bound := triggers[id]
		return bound
	}
	for _, button := range dom.QueryAll(e.doc.Root(), isControl) {
		dom.SetAttr(button, "type", "submit")
		dom.SetAttr(button, "name", TargetField)
		dom.SetAttr(button, "value", e.doc.PathOf(button))
	}
}

// stampRevisionLocked writes the revision into the form enclosing the first
// container, appending the hidden input on first use so existing node paths
// keep their indices.
func (e *Editor) stampRevisionLocked() {
	var form *html.Node
	for _, container := range e.form.Containers {
		if node := rows.Container(e.doc, container.ID); node != nil {
			form = dom.Closest(node, dom.ByTag("form"))
			break
		}
	}
	if form == nil {
		return
	}
	value := strconv.FormatUint(e.revision, 10)
	isRevision := func(n *html.Node) bool {
		return n.DataAtom == atom.Input && dom.ControlName(n) == RevisionField
	}
	if input := dom.QueryFirst(form, isRevision); input != nil {
		dom.SetAttr(input, "value", value)
		return
	}
	input := &html.Node{Type: html.ElementNode, Data: "input", DataAtom: atom.Input}
	dom.SetAttr(input, "type", "hidden")
	dom.SetAttr(input, "name", RevisionField)
	dom.SetAttr(input, "value", value)
	form.AppendChild(input)
}

// ErrNoRow is returned when a row index is outside a container.
var ErrNoRow = errors.New("session: row not found")

// ClickRowControl clicks the control carrying marker inside the index-th row
// of a container, the way a pointer click on that control would.
func (e *Editor) ClickRowControl(containerID string, index int, marker string) (rows.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touched = time.Now()

	row, err := e.rowLocked(containerID, index)
	if err != nil {
		return rows.Result{}, err
	}
	control := dom.QueryFirst(row, dom.ByClass(marker))
	if control == nil {
		return rows.Result{Container: containerID, Reason: rows.ReasonNoAffordance, Position: index}, nil
	}
	return e.track(e.dispatcher.Click(control)), nil
}

// SetRowValues writes values into the index-th row's fields in slot order.
// Extra values are ignored; missing ones leave fields untouched.
func (e *Editor) SetRowValues(containerID string, index int, values []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touched = time.Now()

	row, err := e.rowLocked(containerID, index)
	if err != nil {
		return err
	}
	for i, control := range dom.QueryAll(row, dom.IsValueControl) {
		if i >= len(values) {
			break
		}
		dom.SetValue(control, values[i])
	}
	return nil
}

func (e *Editor) rowLocked(containerID string, index int) (*html.Node, error) {
	container := rows.Container(e.doc, containerID)
	if container == nil {
		return nil, fmt.Errorf("%w: container %q", ErrNoRow, containerID)
	}
	rowNodes := e.dispatcher.Engine().Registry().RowsOf(container)
	if index < 0 || index >= len(rowNodes) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrNoRow, containerID, index)
	}
	return rowNodes[index], nil
}
