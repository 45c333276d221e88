package recipe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Exporter publishes a handler's recipes in a foreign format.
type Exporter interface {
	Export(handler string, schema []ExtraSpec, recipes []*Recipe) error
}

// ExportedRecipe is the JSON form of a recipe.
type ExportedRecipe struct {
	ID           ID                 `json:"id"`
	Label        string             `json:"label,omitempty"`
	Shapeless    bool               `json:"shapeless,omitempty"`
	ItemInputs   []string           `json:"item_inputs,omitempty"`
	FluidInputs  []string           `json:"fluid_inputs,omitempty"`
	ItemOutputs  []string           `json:"item_outputs,omitempty"`
	FluidOutputs []string           `json:"fluid_outputs,omitempty"`
	Extras       map[string]float64 `json:"extras,omitempty"`
}

// ExportedHandler is the JSON document written per handler.
type ExportedHandler struct {
	Handler string           `json:"handler"`
	Extras  []ExtraSpec      `json:"extras"`
	Recipes []ExportedRecipe `json:"recipes"`
}

// NewExportedRecipe converts a recipe to its JSON form.
func NewExportedRecipe(r *Recipe) ExportedRecipe {
	out := ExportedRecipe{
		ID:        r.ID,
		Label:     r.Label,
		Shapeless: r.Shapeless,
		Extras:    r.Extras(),
	}
	for _, ing := range r.ItemIngredients {
		out.ItemInputs = append(out.ItemInputs, ing.String())
	}
	for _, ing := range r.FluidIngredients {
		out.FluidInputs = append(out.FluidInputs, ing.String())
	}
	for _, ing := range r.ItemProducts {
		out.ItemOutputs = append(out.ItemOutputs, ing.String())
	}
	for _, ing := range r.FluidProducts {
		out.FluidOutputs = append(out.FluidOutputs, ing.String())
	}
	return out
}

// NewExportedHandler converts a handler's recipes to their JSON form.
func NewExportedHandler(handler string, schema []ExtraSpec, recipes []*Recipe) ExportedHandler {
	doc := ExportedHandler{
		Handler: handler,
		Extras:  schema,
		Recipes: make([]ExportedRecipe, 0, len(recipes)),
	}
	for _, r := range recipes {
		doc.Recipes = append(doc.Recipes, NewExportedRecipe(r))
	}
	return doc
}

// JSONExporter writes <Dir>/<handler>.json per handler.
type JSONExporter struct {
	Dir string
}

func (e JSONExporter) Export(handler string, schema []ExtraSpec, recipes []*Recipe) error {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	data, err := json.MarshalIndent(NewExportedHandler(handler, schema, recipes), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", handler, err)
	}
	path := filepath.Join(e.Dir, handler+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
