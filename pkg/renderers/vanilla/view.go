package vanilla

import (
	"strconv"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formrows/pkg/layout"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/rows"
	"github.com/goliatone/go-formrows/pkg/theme"
)

type pageView struct {
	Form    formView             `json:"form"`
	Action  string               `json:"action"`
	Method  string               `json:"method"`
	Hidden  []render.HiddenField `json:"hidden,omitempty"`
	Markers markersView          `json:"markers"`
	Theme   themeView            `json:"theme"`
}

type markersView struct {
	Remove string `json:"remove"`
	Up     string `json:"up"`
	Down   string `json:"down"`
	Number string `json:"number"`
}

type themeView struct {
	Mode         string            `json:"mode"`
	RootClass    string            `json:"root_class,omitempty"`
	DarkClass    string            `json:"dark_class"`
	Stylesheet   string            `json:"stylesheet,omitempty"`
	Vars         map[string]string `json:"vars,omitempty"`
	DarkVars     map[string]string `json:"dark_vars,omitempty"`
	ToggleAction string            `json:"toggle_action,omitempty"`
	ToggleID     string            `json:"toggle_id"`
	LightIconID  string            `json:"light_icon_id"`
	DarkIconID   string            `json:"dark_icon_id"`
	HiddenClass  string            `json:"hidden_class"`
	LightHidden  bool              `json:"light_hidden"`
	DarkHidden   bool              `json:"dark_hidden"`
}

type formView struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Containers  []containerView `json:"containers"`
}

type containerView struct {
	ID         string    `json:"id"`
	Label      string    `json:"label,omitempty"`
	RowKind    string    `json:"row_kind"`
	Ordered    bool      `json:"ordered"`
	AddTrigger string    `json:"add_trigger,omitempty"`
	AddLabel   string    `json:"add_label,omitempty"`
	Rows       []rowView `json:"rows"`
}

// rowView.Number is preformatted; the template engine sees JSON numbers as
// floats.
type rowView struct {
	Number string      `json:"number"`
	Fields []fieldView `json:"fields"`
}

type fieldView struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Control     string `json:"control"`
	Placeholder string `json:"placeholder,omitempty"`
	Width       string `json:"width,omitempty"`
	Value       string `json:"value"`
}

func buildPage(form layout.Form, options render.RenderOptions) pageView {
	title := form.Title
	if title == "" {
		title = form.ID
	}
	page := pageView{
		Form: formView{
			ID:          form.ID,
			Title:       title,
			Description: form.Description,
		},
		Action: options.Action,
		Method: options.EffectiveMethod(),
		Hidden: render.SortedHiddenFields(options.Hidden),
		Markers: markersView{
			Remove: rows.MarkerRemove,
			Up:     rows.MarkerMoveUp,
			Down:   rows.MarkerMoveDown,
			Number: rows.MarkerNumber,
		},
		Theme: buildTheme(options),
	}
	for _, container := range form.Containers {
		page.Form.Containers = append(page.Form.Containers, buildContainer(container))
	}
	return page
}

// buildContainer seeds one empty row when the layout carries no values, so
// every container starts with the row AddRow clones from.
func buildContainer(container layout.Container) containerView {
	view := containerView{
		ID:         container.ID,
		Label:      container.Label,
		RowKind:    container.RowKind,
		Ordered:    container.Ordered,
		AddTrigger: container.AddTrigger,
		AddLabel:   container.AddLabel,
	}
	seeded := container.Rows
	if len(seeded) == 0 {
		seeded = [][]string{nil}
	}
	for i, values := range seeded {
		row := rowView{Number: strconv.Itoa(i + 1)}
		for j, field := range container.Fields {
			control := string(field.Control)
			if control == "" {
				control = string(layout.ControlInput)
			}
			value := ""
			if j < len(values) {
				value = values[j]
			}
			row.Fields = append(row.Fields, fieldView{
				Name:        field.Name,
				Label:       field.Label,
				Control:     control,
				Placeholder: field.Placeholder,
				Width:       field.Width,
				Value:       value,
			})
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func buildTheme(options render.RenderOptions) themeView {
	mode := options.Mode
	if mode == "" {
		mode = theme.ModeLight
	}
	icons := theme.IconsFor(mode)
	view := themeView{
		Mode:         string(mode),
		RootClass:    mode.RootClass(),
		DarkClass:    theme.DarkClass,
		ToggleAction: options.ThemeToggleAction,
		ToggleID:     theme.ToggleID,
		LightIconID:  theme.LightIconID,
		DarkIconID:   theme.DarkIconID,
		HiddenClass:  theme.HiddenClass,
		LightHidden:  icons.LightHidden,
		DarkHidden:   icons.DarkHidden,
	}
	if cfg := options.Theme; cfg != nil {
		view.Vars = copyVars(cfg)
		if cfg.AssetURL != nil {
			view.Stylesheet = cfg.AssetURL("stylesheet")
		}
	}
	if cfg := options.DarkTheme; cfg != nil {
		view.DarkVars = copyVars(cfg)
	}
	return view
}

func copyVars(cfg *gotheme.RendererConfig) map[string]string {
	if len(cfg.CSSVars) == 0 {
		return nil
	}
	out := make(map[string]string, len(cfg.CSSVars))
	for key, value := range cfg.CSSVars {
		out[key] = value
	}
	return out
}
