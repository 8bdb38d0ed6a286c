package rows

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-formrows/pkg/dom"
)

// Control names the kind of widget backing a field slot.
type Control string

const (
	ControlInput    Control = "input"
	ControlTextarea Control = "textarea"
	ControlSelect   Control = "select"
	ControlCheckbox Control = "checkbox"
)

// Field is one value-bearing slot of a row.
type Field struct {
	Name    string  `json:"name"`
	Control Control `json:"control"`
	Value   string  `json:"value"`
}

// Controls flags the affordances present on a row.
type Controls struct {
	Remove   bool `json:"remove,omitempty"`
	MoveUp   bool `json:"move_up,omitempty"`
	MoveDown bool `json:"move_down,omitempty"`
	Number   bool `json:"number,omitempty"`
}

// Row is the abstract record of a row element: its field slots in document
// order plus its control flags. Number is the displayed sequence number and
// is zero for rows without a number display.
type Row struct {
	Kind     string   `json:"kind"`
	Fields   []Field  `json:"fields"`
	Controls Controls `json:"controls"`
	Number   int      `json:"number,omitempty"`
}

// EmptyRowLike returns a row with the template's structure and every field
// value cleared. The template is not modified.
func EmptyRowLike(template Row) Row {
	out := Row{
		Kind:     template.Kind,
		Controls: template.Controls,
	}
	if len(template.Fields) > 0 {
		out.Fields = make([]Field, len(template.Fields))
		for i, field := range template.Fields {
			out.Fields[i] = Field{Name: field.Name, Control: field.Control}
		}
	}
	return out
}

// Values returns the field values in slot order.
func (r Row) Values() []string {
	out := make([]string, len(r.Fields))
	for i, field := range r.Fields {
		out[i] = field.Value
	}
	return out
}

// Value returns the value of the first field with the given name.
func (r Row) Value(name string) string {
	for _, field := range r.Fields {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}

// Record reads a row element into its abstract record.
func (r *Registry) Record(row *html.Node) Row {
	kind, _ := r.KindOf(row)
	record := Row{Kind: kind.Marker}

	for _, control := range dom.QueryAll(row, dom.IsValueControl) {
		record.Fields = append(record.Fields, Field{
			Name:    dom.ControlName(control),
			Control: controlOf(control),
			Value:   dom.Value(control),
		})
	}

	record.Controls = Controls{
		Remove:   dom.QueryFirst(row, dom.ByClass(MarkerRemove)) != nil,
		MoveUp:   dom.QueryFirst(row, dom.ByClass(MarkerMoveUp)) != nil,
		MoveDown: dom.QueryFirst(row, dom.ByClass(MarkerMoveDown)) != nil,
	}
	if kind.NumberMarker != "" {
		if display := dom.QueryFirst(row, dom.ByClass(kind.NumberMarker)); display != nil {
			record.Controls.Number = true
			record.Number, _ = strconv.Atoi(strings.TrimSpace(dom.Text(display)))
		}
	}
	return record
}

// Snapshot reads every row of container into records, in order.
func (r *Registry) Snapshot(container *html.Node) []Row {
	rowNodes := r.RowsOf(container)
	out := make([]Row, 0, len(rowNodes))
	for _, row := range rowNodes {
		out = append(out, r.Record(row))
	}
	return out
}

func controlOf(n *html.Node) Control {
	switch n.Data {
	case "textarea":
		return ControlTextarea
	case "select":
		return ControlSelect
	}
	if kind, _ := dom.Attr(n, "type"); kind == "checkbox" || kind == "radio" {
		return ControlCheckbox
	}
	return ControlInput
}
