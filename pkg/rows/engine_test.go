package rows

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formrows/pkg/dom"
)

func directionRow(number int, text string) string {
	return fmt.Sprintf(`<div class="direction-row"><span class="direction-number">%d</span>`+
		`<textarea name="direction">%s</textarea>`+
		`<button type="button" class="btn-up">up</button><button type="button" class="btn-down">down</button>`+
		`<button type="button" class="btn-remove">x</button></div>`, number, text)
}

func ingredientRow(amount, name string) string {
	return fmt.Sprintf(`<div class="ingredient-row"><input name="ingredient_amount" value="%s">`+
		`<input name="ingredient_name" value="%s"><button type="button" class="btn-remove">x</button></div>`, amount, name)
}

func page(containers ...string) *dom.Document {
	return dom.MustParseString("<!DOCTYPE html><html><body>" + strings.Join(containers, "") + "</body></html>")
}

func container(id string, rows ...string) string {
	return fmt.Sprintf(`<div id="%s">%s</div>`, id, strings.Join(rows, "\n"))
}

func directionsPage(steps ...string) *dom.Document {
	var rowsMarkup []string
	for i, step := range steps {
		rowsMarkup = append(rowsMarkup, directionRow(i+1, step))
	}
	return page(container(DirectionsContainer, rowsMarkup...))
}

type numbered struct {
	Number int
	Text   string
}

func directionState(t *testing.T, e *Engine) []numbered {
	t.Helper()
	c := Container(e.Document(), DirectionsContainer)
	var out []numbered
	for _, row := range e.Registry().Snapshot(c) {
		out = append(out, numbered{Number: row.Number, Text: row.Value("direction")})
	}
	return out
}

func rowAt(t *testing.T, e *Engine, containerID string, index int) *html.Node {
	t.Helper()
	rowNodes := e.Registry().RowsOf(Container(e.Document(), containerID))
	if index < 0 || index >= len(rowNodes) {
		t.Fatalf("row %d out of range (have %d)", index, len(rowNodes))
	}
	return rowNodes[index]
}

func assertNumbering(t *testing.T, e *Engine) {
	t.Helper()
	for i, row := range directionState(t, e) {
		if row.Number != i+1 {
			t.Fatalf("row %d displays %d, want %d", i, row.Number, i+1)
		}
	}
}

func TestRemoveKeepsLastRow(t *testing.T) {
	e := NewEngine(directionsPage("a", "b", "c", "d"))

	for i := 0; i < 3; i++ {
		result := e.Remove(rowAt(t, e, DirectionsContainer, 0))
		if !result.Applied {
			t.Fatalf("remove %d should apply: %+v", i, result)
		}
		assertNumbering(t, e)
	}

	result := e.Remove(rowAt(t, e, DirectionsContainer, 0))
	if result.Applied || result.Reason != ReasonLastRow {
		t.Fatalf("expected last-row guard, got %+v", result)
	}
	if got := len(directionState(t, e)); got != 1 {
		t.Fatalf("expected 1 row left, got %d", got)
	}
}

func TestRemoveGuardIgnoresNonRowChildren(t *testing.T) {
	doc := page(`<div id="` + DirectionsContainer + `"><p class="hint">drag me</p>` + directionRow(1, "only") + `</div>`)
	e := NewEngine(doc)

	result := e.Remove(rowAt(t, e, DirectionsContainer, 0))
	if result.Applied {
		t.Fatalf("a non-row sibling must not satisfy the minimum-row guard")
	}
}

func TestUnorderedSingleRowRemoveIsNoop(t *testing.T) {
	e := NewEngine(page(container(IngredientsContainer, ingredientRow("2 cups", "flour"))))

	result := e.Remove(rowAt(t, e, IngredientsContainer, 0))
	if result.Applied || result.Reason != ReasonLastRow {
		t.Fatalf("expected guard, got %+v", result)
	}
	if got := len(e.Registry().RowsOf(Container(e.Document(), IngredientsContainer))); got != 1 {
		t.Fatalf("row count = %d, want 1", got)
	}
}

func TestMoveAtEdgesIsNoop(t *testing.T) {
	e := NewEngine(directionsPage("a", "b", "c"))
	before := directionState(t, e)

	up := e.MoveUp(rowAt(t, e, DirectionsContainer, 0))
	down := e.MoveDown(rowAt(t, e, DirectionsContainer, 2))

	if up.Applied || up.Reason != ReasonFirst {
		t.Fatalf("move up on first row: %+v", up)
	}
	if down.Applied || down.Reason != ReasonLast {
		t.Fatalf("move down on last row: %+v", down)
	}
	if diff := cmp.Diff(before, directionState(t, e)); diff != "" {
		t.Fatalf("state changed at edges (-want +got):\n%s", diff)
	}
}

func TestMoveSwapsWithNeighbour(t *testing.T) {
	e := NewEngine(directionsPage("a", "b", "c"))

	if result := e.MoveDown(rowAt(t, e, DirectionsContainer, 0)); !result.Applied || result.Position != 1 {
		t.Fatalf("move down: %+v", result)
	}
	want := []numbered{{1, "b"}, {2, "a"}, {3, "c"}}
	if diff := cmp.Diff(want, directionState(t, e)); diff != "" {
		t.Fatalf("after move down (-want +got):\n%s", diff)
	}

	if result := e.MoveUp(rowAt(t, e, DirectionsContainer, 2)); !result.Applied || result.Position != 1 {
		t.Fatalf("move up: %+v", result)
	}
	want = []numbered{{1, "b"}, {2, "c"}, {3, "a"}}
	if diff := cmp.Diff(want, directionState(t, e)); diff != "" {
		t.Fatalf("after move up (-want +got):\n%s", diff)
	}
}

func TestMoveRejectsUnorderedRows(t *testing.T) {
	e := NewEngine(page(container(IngredientsContainer, ingredientRow("1", "a"), ingredientRow("2", "b"))))

	result := e.MoveDown(rowAt(t, e, IngredientsContainer, 0))
	if result.Applied || result.Reason != ReasonUnordered {
		t.Fatalf("expected unordered guard, got %+v", result)
	}
}

func TestAddClearsContentAndKeepsStructure(t *testing.T) {
	e := NewEngine(page(container(IngredientsContainer, ingredientRow("2 cups", "flour"))))

	result := e.AddRow(IngredientsContainer)
	if !result.Applied || result.Position != 1 {
		t.Fatalf("add: %+v", result)
	}

	snapshot := e.Registry().Snapshot(Container(e.Document(), IngredientsContainer))
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(snapshot))
	}
	template, added := snapshot[0], snapshot[1]
	if diff := cmp.Diff([]string{"2 cups", "flour"}, template.Values()); diff != "" {
		t.Fatalf("template changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(EmptyRowLike(template), added); diff != "" {
		t.Fatalf("added row should be an empty copy (-want +got):\n%s", diff)
	}
}

func TestAddFocusesFirstControlOfNewRow(t *testing.T) {
	e := NewEngine(page(container(IngredientsContainer, ingredientRow("1", "salt"))))

	e.AddRow(IngredientsContainer)

	active := e.Document().ActiveElement()
	if active == nil {
		t.Fatalf("expected focused element")
	}
	newRow := rowAt(t, e, IngredientsContainer, 1)
	if dom.Closest(active, dom.ByClass(IngredientRow.Marker)) != newRow {
		t.Fatalf("focus is not inside the new row")
	}
	if dom.ControlName(active) != "ingredient_amount" {
		t.Fatalf("focused %q, want first control", dom.ControlName(active))
	}
}

func TestAddWithoutTemplateIsNoop(t *testing.T) {
	e := NewEngine(page(`<div id="` + ItemsContainer + `"></div>`))

	if result := e.AddRow(ItemsContainer); result.Applied || result.Reason != ReasonNoTemplate {
		t.Fatalf("expected no-template guard, got %+v", result)
	}
	if result := e.AddRow("missing-container"); result.Applied || result.Reason != ReasonNoContainer {
		t.Fatalf("expected no-container guard, got %+v", result)
	}
	if e.Document().ActiveElement() != nil {
		t.Fatalf("no-op add must not move focus")
	}
}

func TestRenumberIsIdempotent(t *testing.T) {
	doc := page(container(DirectionsContainer, directionRow(7, "a"), directionRow(7, "b"), directionRow(0, "c")))
	e := NewEngine(doc)
	c := Container(doc, DirectionsContainer)

	e.Renumber(c)
	first := doc.String()
	e.Renumber(c)
	if doc.String() != first {
		t.Fatalf("renumber is not idempotent")
	}
	assertNumbering(t, e)
}

func TestDirectionsScenario(t *testing.T) {
	e := NewEngine(directionsPage("Preheat", "Mix", "Bake"))

	e.MoveUp(rowAt(t, e, DirectionsContainer, 2))
	if diff := cmp.Diff([]numbered{{1, "Preheat"}, {2, "Bake"}, {3, "Mix"}}, directionState(t, e)); diff != "" {
		t.Fatalf("after move up (-want +got):\n%s", diff)
	}

	e.Remove(rowAt(t, e, DirectionsContainer, 0))
	if diff := cmp.Diff([]numbered{{1, "Bake"}, {2, "Mix"}}, directionState(t, e)); diff != "" {
		t.Fatalf("after remove (-want +got):\n%s", diff)
	}

	e.AddRow(DirectionsContainer)
	if diff := cmp.Diff([]numbered{{1, "Bake"}, {2, "Mix"}, {3, ""}}, directionState(t, e)); diff != "" {
		t.Fatalf("after add (-want +got):\n%s", diff)
	}

	for i := 0; i < 2; i++ {
		if result := e.Remove(rowAt(t, e, DirectionsContainer, 0)); !result.Applied {
			t.Fatalf("remove %d: %+v", i, result)
		}
	}
	if result := e.Remove(rowAt(t, e, DirectionsContainer, 0)); result.Applied {
		t.Fatalf("final remove should be guarded")
	}
	if diff := cmp.Diff([]numbered{{1, ""}}, directionState(t, e)); diff != "" {
		t.Fatalf("final state (-want +got):\n%s", diff)
	}
}

func TestRegistryCustomKinds(t *testing.T) {
	registry := NewRegistry(WithKinds(Kind{Marker: "step-row", Ordered: true}))
	doc := page(`<ol id="steps"><li class="step-row"><b class="direction-number">9</b><input name="s" value="x"></li>` +
		`<li class="step-row"><b class="direction-number">9</b><input name="s" value="y"></li></ol>`)
	e := NewEngine(doc, WithRegistry(registry))

	second := e.Registry().RowsOf(Container(doc, "steps"))[1]
	if result := e.MoveUp(second); !result.Applied {
		t.Fatalf("custom ordered kind should move: %+v", result)
	}
	snapshot := registry.Snapshot(Container(doc, "steps"))
	if snapshot[0].Value("s") != "y" || snapshot[0].Number != 1 || snapshot[1].Number != 2 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestFindEnclosing(t *testing.T) {
	doc := directionsPage("a")
	registry := NewRegistry()
	button := dom.QueryFirst(doc.Root(), dom.ByClass(MarkerMoveUp))

	row := registry.FindEnclosing(button)
	if row == nil || !dom.HasClass(row, DirectionRow.Marker) {
		t.Fatalf("expected enclosing direction row")
	}
	if ContainerOf(row) != Container(doc, DirectionsContainer) {
		t.Fatalf("container mismatch")
	}
	if registry.FindEnclosing(doc.Root()) != nil {
		t.Fatalf("document root is not inside a row")
	}
}
