package layout

import (
	"github.com/goliatone/go-formrows/pkg/dispatch"
	"github.com/goliatone/go-formrows/pkg/rows"
)

// Built-in form ids.
const (
	RecipeForm = "recipe"
	TipForm    = "tip"
)

// Recipe returns the recipe edit layout: unordered ingredients and ordered
// directions.
func Recipe() Form {
	return Form{
		ID:    RecipeForm,
		Title: "Recipe",
		Containers: []Container{
			{
				ID:         rows.IngredientsContainer,
				Label:      "Ingredients",
				RowKind:    rows.IngredientRow.Marker,
				AddTrigger: dispatch.TriggerAddIngredient,
				AddLabel:   "Add ingredient",
				Fields: []Field{
					{Name: "ingredient_amount", Label: "Amount", Control: ControlInput, Placeholder: "2 cups", Width: "narrow"},
					{Name: "ingredient_name", Label: "Ingredient", Control: ControlInput, Placeholder: "flour"},
				},
			},
			{
				ID:         rows.DirectionsContainer,
				Label:      "Directions",
				RowKind:    rows.DirectionRow.Marker,
				Ordered:    true,
				AddTrigger: dispatch.TriggerAddDirection,
				AddLabel:   "Add step",
				Fields: []Field{
					{Name: "direction", Label: "Step", Control: ControlTextarea, Placeholder: "Describe this step"},
				},
			},
		},
	}
}

// Tip returns the tip edit layout: an unordered list of items.
func Tip() Form {
	return Form{
		ID:    TipForm,
		Title: "Tip",
		Containers: []Container{
			{
				ID:         rows.ItemsContainer,
				Label:      "Items",
				RowKind:    rows.ItemRow.Marker,
				AddTrigger: dispatch.TriggerAddItem,
				AddLabel:   "Add item",
				Fields: []Field{
					{Name: "item_name", Label: "Name", Control: ControlInput, Placeholder: "Name"},
					{Name: "item_details", Label: "Details", Control: ControlInput, Placeholder: "Details"},
				},
			},
		},
	}
}

// Builtins returns every built-in layout.
func Builtins() []Form {
	return []Form{Recipe(), Tip()}
}
