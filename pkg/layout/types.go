package layout

import (
	"strings"

	"github.com/goliatone/go-formrows/pkg/rows"
)

// FieldControl selects the widget rendered for a field slot.
type FieldControl string

const (
	ControlInput    FieldControl = "input"
	ControlTextarea FieldControl = "textarea"
)

// Field is one slot in a row.
type Field struct {
	Name        string       `yaml:"name" toml:"name" json:"name" validate:"required"`
	Label       string       `yaml:"label,omitempty" toml:"label,omitempty" json:"label,omitempty"`
	Control     FieldControl `yaml:"control,omitempty" toml:"control,omitempty" json:"control,omitempty" validate:"omitempty,oneof=input textarea"`
	Placeholder string       `yaml:"placeholder,omitempty" toml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Width       string       `yaml:"width,omitempty" toml:"width,omitempty" json:"width,omitempty"`
}

// Container declares one repeating-row group.
type Container struct {
	ID         string     `yaml:"id" toml:"id" json:"id" validate:"required"`
	Label      string     `yaml:"label,omitempty" toml:"label,omitempty" json:"label,omitempty"`
	RowKind    string     `yaml:"row_kind" toml:"row_kind" json:"row_kind" validate:"required"`
	Ordered    bool       `yaml:"ordered,omitempty" toml:"ordered,omitempty" json:"ordered,omitempty"`
	AddTrigger string     `yaml:"add_trigger,omitempty" toml:"add_trigger,omitempty" json:"add_trigger,omitempty"`
	AddLabel   string     `yaml:"add_label,omitempty" toml:"add_label,omitempty" json:"add_label,omitempty"`
	Fields     []Field    `yaml:"fields" toml:"fields" json:"fields" validate:"required,min=1,dive"`
	Rows       [][]string `yaml:"rows,omitempty" toml:"rows,omitempty" json:"rows,omitempty"`
}

// Form groups containers rendered on one edit page.
type Form struct {
	ID          string      `yaml:"id" toml:"id" json:"id" validate:"required"`
	Title       string      `yaml:"title,omitempty" toml:"title,omitempty" json:"title,omitempty"`
	Description string      `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
	Containers  []Container `yaml:"containers" toml:"containers" json:"containers" validate:"required,min=1,dive"`
}

// Kind converts the container declaration into a row kind.
func (c Container) Kind() rows.Kind {
	return rows.Kind{Marker: c.RowKind, Ordered: c.Ordered}
}

// Kinds returns the row kinds declared by the form.
func (f Form) Kinds() []rows.Kind {
	out := make([]rows.Kind, 0, len(f.Containers))
	for _, container := range f.Containers {
		out = append(out, container.Kind())
	}
	return out
}

// Container returns the container with the given id.
func (f Form) Container(id string) (Container, bool) {
	for _, container := range f.Containers {
		if container.ID == id {
			return container, true
		}
	}
	return Container{}, false
}

// Triggers maps each declared add trigger to its container.
func (f Form) Triggers() map[string]string {
	out := make(map[string]string)
	for _, container := range f.Containers {
		if trigger := strings.TrimSpace(container.AddTrigger); trigger != "" {
			out[trigger] = container.ID
		}
	}
	return out
}

// WithRows returns a copy of the form with seeded row values for container id.
// Each inner slice holds field values in declaration order.
func (f Form) WithRows(id string, values [][]string) Form {
	out := f.clone()
	for i := range out.Containers {
		if out.Containers[i].ID != id {
			continue
		}
		out.Containers[i].Rows = cloneRows(values)
	}
	return out
}

func (f Form) clone() Form {
	out := f
	out.Containers = make([]Container, len(f.Containers))
	for i, container := range f.Containers {
		copied := container
		copied.Fields = append([]Field(nil), container.Fields...)
		copied.Rows = cloneRows(container.Rows)
		out.Containers[i] = copied
	}
	return out
}

func cloneRows(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, row := range in {
		out[i] = append([]string(nil), row...)
	}
	return out
}
