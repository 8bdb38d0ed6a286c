package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-formrows/pkg/layout"
	"github.com/goliatone/go-formrows/pkg/render"
	"github.com/goliatone/go-formrows/pkg/renderers/vanilla"
	"github.com/goliatone/go-formrows/pkg/rows"
	"github.com/goliatone/go-formrows/pkg/session"
)

// Name is the registry key of the terminal renderer.
const Name = "tui"

// Values holds the edited rows: container id to rows, each row mapping field
// names to values.
type Values map[string][]map[string]string

// Renderer implements render.Renderer as an interactive terminal edit loop.
// It renders the layout to markup, runs the same row engine the browser
// front end uses, and serializes the rows once the user is done.
type Renderer struct {
	driver            PromptDriver
	markup            render.Renderer
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	styles            Styles
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, vanilla markup,
// JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		styles:       DefaultStyles(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.markup == nil {
		markup, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("tui: configure markup renderer: %w", err)
		}
		r.markup = markup
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render runs the edit loop until the user picks "Done".
func (r *Renderer) Render(ctx context.Context, form layout.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if len(form.Containers) == 0 {
		return nil, ErrNoContainers
	}

	markup, err := r.markup.Render(ctx, form, opts)
	if err != nil {
		return nil, fmt.Errorf("tui: render markup: %w", err)
	}
	editor, err := session.NewEditor(form.ID, form, markup)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}

	if err := r.loop(ctx, form, editor); err != nil {
		return nil, err
	}

	values := collect(form, editor)
	if r.submitTransformer != nil {
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(form, values)
}

type actionKind int

const (
	actionAdd actionKind = iota
	actionEdit
	actionRemove
	actionMoveUp
	actionMoveDown
	actionDone
)

type action struct {
	kind      actionKind
	container string
	label     string
}

func actionsFor(form layout.Form) []action {
	var out []action
	ordered := false
	for _, container := range form.Containers {
		if container.AddTrigger != "" {
			out = append(out, action{kind: actionAdd, container: container.ID, label: "Add row to " + labelOf(container)})
		}
		ordered = ordered || container.Ordered
	}
	out = append(out,
		action{kind: actionEdit, label: "Edit a row"},
		action{kind: actionRemove, label: "Remove a row"},
	)
	if ordered {
		out = append(out,
			action{kind: actionMoveUp, label: "Move a row up"},
			action{kind: actionMoveDown, label: "Move a row down"},
		)
	}
	return append(out, action{kind: actionDone, label: "Done"})
}

func (r *Renderer) loop(ctx context.Context, form layout.Form, editor *session.Editor) error {
	actions := actionsFor(form)
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = a.label
	}

	for {
		if err := r.driver.Info(ctx, r.styles.render(form, editor.Snapshot())); err != nil {
			return err
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: "What next?", Options: labels, PageSize: len(labels)})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(actions) {
			return fmt.Errorf("tui: unknown action %d", idx)
		}
		chosen := actions[idx]
		if chosen.kind == actionDone {
			return nil
		}
		if err := r.apply(ctx, form, editor, chosen); err != nil {
			return err
		}
	}
}

func (r *Renderer) apply(ctx context.Context, form layout.Form, editor *session.Editor, a action) error {
	if a.kind == actionAdd {
		return r.report(ctx, editor.Add(a.container))
	}

	container, err := r.pickContainer(ctx, form, a.kind == actionMoveUp || a.kind == actionMoveDown)
	if err != nil {
		return err
	}
	index, err := r.pickRow(ctx, container, editor)
	if err != nil {
		return err
	}

	var marker string
	switch a.kind {
	case actionEdit:
		return r.editRow(ctx, container, index, editor)
	case actionRemove:
		marker = rows.MarkerRemove
	case actionMoveUp:
		marker = rows.MarkerMoveUp
	case actionMoveDown:
		marker = rows.MarkerMoveDown
	}
	result, err := editor.ClickRowControl(container.ID, index, marker)
	if err != nil {
		return err
	}
	return r.report(ctx, result)
}

func (r *Renderer) pickContainer(ctx context.Context, form layout.Form, orderedOnly bool) (layout.Container, error) {
	var candidates []layout.Container
	for _, container := range form.Containers {
		if orderedOnly && !container.Ordered {
			continue
		}
		candidates = append(candidates, container)
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	options := make([]string, len(candidates))
	for i, container := range candidates {
		options[i] = labelOf(container)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Which list?", Options: options})
	if err != nil {
		return layout.Container{}, err
	}
	if idx < 0 || idx >= len(candidates) {
		return layout.Container{}, fmt.Errorf("tui: unknown list %d", idx)
	}
	return candidates[idx], nil
}

func (r *Renderer) pickRow(ctx context.Context, container layout.Container, editor *session.Editor) (int, error) {
	records := editor.Rows(container.ID)
	if len(records) <= 1 {
		return 0, nil
	}
	options := make([]string, len(records))
	for i, record := range records {
		summary := summarize(record)
		if summary == "" {
			summary = "(empty)"
		}
		options[i] = fmt.Sprintf("%d. %s", i+1, summary)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Which row?", Options: options})
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(records) {
		return 0, fmt.Errorf("tui: unknown row %d", idx)
	}
	return idx, nil
}

func (r *Renderer) editRow(ctx context.Context, container layout.Container, index int, editor *session.Editor) error {
	records := editor.Rows(container.ID)
	if index >= len(records) {
		return fmt.Errorf("tui: %w", session.ErrNoRow)
	}
	current := records[index].Values()

	values := make([]string, len(container.Fields))
	for i, field := range container.Fields {
		message := field.Label
		if message == "" {
			message = field.Name
		}
		value := ""
		if i < len(current) {
			value = current[i]
		}

		var err error
		if field.Control == layout.ControlTextarea {
			value, err = r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: value, Help: field.Placeholder})
		} else {
			value, err = r.driver.Input(ctx, InputConfig{Message: message, Default: value, Help: field.Placeholder})
		}
		if err != nil {
			return err
		}
		values[i] = value
	}
	return editor.SetRowValues(container.ID, index, values)
}

func (r *Renderer) report(ctx context.Context, result rows.Result) error {
	if result.Applied {
		return nil
	}
	return r.driver.Info(ctx, r.styles.Muted.Render(describe(result.Reason)))
}

func describe(reason rows.Reason) string {
	switch reason {
	case rows.ReasonLastRow:
		return "A list keeps at least one row."
	case rows.ReasonFirst:
		return "That row is already first."
	case rows.ReasonLast:
		return "That row is already last."
	case rows.ReasonNoAffordance:
		return "That row has no such control."
	default:
		return fmt.Sprintf("Nothing changed (%s).", reason)
	}
}

func collect(form layout.Form, editor *session.Editor) Values {
	snapshot := editor.Snapshot()
	out := make(Values, len(form.Containers))
	for _, container := range form.Containers {
		records := snapshot[container.ID]
		list := make([]map[string]string, 0, len(records))
		for _, record := range records {
			row := make(map[string]string, len(record.Fields))
			for _, field := range record.Fields {
				row[field.Name] = field.Value
			}
			list = append(list, row)
		}
		out[container.ID] = list
	}
	return out
}

func (r *Renderer) serialize(form layout.Form, values Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		encoded := url.Values{}
		for _, container := range form.Containers {
			for _, row := range values[container.ID] {
				for _, field := range container.Fields {
					encoded.Add(field.Name, row[field.Name])
				}
			}
		}
		return []byte(encoded.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(pretty(form, values)), nil
	default:
		payload, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: marshal values: %w", err)
		}
		return payload, nil
	}
}

func pretty(form layout.Form, values Values) string {
	var b strings.Builder
	b.WriteString(titleOf(form))
	b.WriteString("\n")
	for _, container := range form.Containers {
		fmt.Fprintf(&b, "\n%s\n", labelOf(container))
		for i, row := range values[container.ID] {
			parts := make([]string, 0, len(container.Fields))
			for _, field := range container.Fields {
				parts = append(parts, row[field.Name])
			}
			marker := "-"
			if container.Ordered {
				marker = fmt.Sprintf("%d.", i+1)
			}
			fmt.Fprintf(&b, "  %s %s\n", marker, strings.Join(parts, " | "))
		}
	}
	return b.String()
}
