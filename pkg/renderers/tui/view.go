package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formrows/pkg/layout"
	"github.com/goliatone/go-formrows/pkg/rows"
)

// Styles are the lipgloss styles of the state view printed between prompts.
type Styles struct {
	Title     lipgloss.Style
	Container lipgloss.Style
	Number    lipgloss.Style
	Value     lipgloss.Style
	Muted     lipgloss.Style
	Box       lipgloss.Style
}

// DefaultStyles returns the built-in palette.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true),
		Container: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		Number:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Value:     lipgloss.NewStyle(),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func (s Styles) render(form layout.Form, snapshot map[string][]rows.Row) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(titleOf(form)))
	for _, container := range form.Containers {
		b.WriteString("\n\n")
		b.WriteString(s.Container.Render(labelOf(container)))
		for i, record := range snapshot[container.ID] {
			b.WriteString("\n  ")
			marker := "-"
			if container.Ordered {
				marker = fmt.Sprintf("%d.", i+1)
			}
			b.WriteString(s.Number.Render(marker))
			b.WriteString(" ")
			if summary := summarize(record); summary != "" {
				b.WriteString(s.Value.Render(summary))
			} else {
				b.WriteString(s.Muted.Render("(empty)"))
			}
		}
	}
	return s.Box.Render(b.String())
}

func titleOf(form layout.Form) string {
	if form.Title != "" {
		return form.Title
	}
	return form.ID
}

func labelOf(container layout.Container) string {
	if container.Label != "" {
		return container.Label
	}
	return container.ID
}

// summarize joins a row's non-empty values with " | ".
func summarize(record rows.Row) string {
	parts := make([]string, 0, len(record.Fields))
	for _, value := range record.Values() {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			parts = append(parts, strings.ReplaceAll(trimmed, "\n", " "))
		}
	}
	return strings.Join(parts, " | ")
}
