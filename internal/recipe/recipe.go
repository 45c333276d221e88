package recipe

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/millwork/internal/ingredient"
)

// ID identifies a recipe within its handler. IDs follow registration order,
// which is also the lookup tie-break order.
type ID int

// Well-known extras. Machine kinds may declare more.
const (
	ExtraTime  = "time"
	ExtraPower = "power"
)

// ExtraSpec declares one named scalar extra of a machine kind.
type ExtraSpec struct {
	Name    string  `json:"name"`
	Default float64 `json:"default"`
	// Factorable extras are divided along with fluid quantities when a
	// fluid-only recipe is reduced.
	Factorable bool `json:"factorable,omitempty"`
}

// DefaultExtras is the schema used when a handler declares none:
// multipliers on the kind's default process time and power.
func DefaultExtras() []ExtraSpec {
	return []ExtraSpec{
		{Name: ExtraTime, Default: 1},
		{Name: ExtraPower, Default: 1},
	}
}

// Definition is an unregistered recipe as produced by the compiler.
type Definition struct {
	// Label names the recipe in logs and rejections. Optional.
	Label        string
	ItemInputs   []ingredient.Item
	FluidInputs  []ingredient.Fluid
	ItemOutputs  []ingredient.Item
	FluidOutputs []ingredient.Fluid
	// Extras by name. Missing names take the schema default; unknown names
	// are ignored.
	Extras map[string]float64
}

// Recipe is a registered, immutable recipe.
type Recipe struct {
	ID               ID
	Label            string
	Handler          string
	Shapeless        bool
	ItemIngredients  []ingredient.Item
	FluidIngredients []ingredient.Fluid
	ItemProducts     []ingredient.Item
	FluidProducts    []ingredient.Fluid

	schema []ExtraSpec
	extras []float64
}

// Extra returns the value of a named extra.
func (r *Recipe) Extra(name string) (float64, bool) {
	for i, spec := range r.schema {
		if spec.Name == name {
			return r.extras[i], true
		}
	}
	return 0, false
}

// Extras returns the extras keyed by name.
func (r *Recipe) Extras() map[string]float64 {
	out := make(map[string]float64, len(r.schema))
	for i, spec := range r.schema {
		out[spec.Name] = r.extras[i]
	}
	return out
}

// BaseProcessTime scales a kind's default process time by the recipe's
// time extra.
func (r *Recipe) BaseProcessTime(defaultTime float64) float64 {
	if m, ok := r.Extra(ExtraTime); ok {
		return defaultTime * m
	}
	return defaultTime
}

// BaseProcessPower scales a kind's default process power by the recipe's
// power extra.
func (r *Recipe) BaseProcessPower(defaultPower float64) float64 {
	if m, ok := r.Extra(ExtraPower); ok {
		return defaultPower * m
	}
	return defaultPower
}

func (r *Recipe) String() string {
	if r.Label != "" {
		return r.Label
	}
	return describe(r.ItemIngredients, r.FluidIngredients, r.ItemProducts, r.FluidProducts)
}

func describe(ii []ingredient.Item, fi []ingredient.Fluid, io []ingredient.Item, fo []ingredient.Fluid) string {
	var in, out []string
	for _, i := range ii {
		in = append(in, describeIngredient(i))
	}
	for _, f := range fi {
		in = append(in, describeIngredient(f))
	}
	for _, i := range io {
		out = append(out, describeIngredient(i))
	}
	for _, f := range fo {
		out = append(out, describeIngredient(f))
	}
	return strings.Join(in, " + ") + " -> " + strings.Join(out, " + ")
}

func describeIngredient(s fmt.Stringer) string {
	if s == nil {
		return "<nil>"
	}
	return s.String()
}

// fixExtras lays out named extras against the schema.
func fixExtras(schema []ExtraSpec, named map[string]float64) []float64 {
	out := make([]float64, len(schema))
	for i, spec := range schema {
		v, ok := named[spec.Name]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			v = spec.Default
		}
		out[i] = v
	}
	return out
}

// Info is the result of a successful lookup: the matched recipe and, for
// every physical slot and tank, which ingredient it satisfied and with
// which variant. Info belongs to the processor that asked for it.
type Info struct {
	Recipe        *Recipe
	ItemOrder     []int
	ItemVariants  []int
	FluidOrder    []int
	FluidVariants []int
}

// ItemIngredient returns the ingredient matched by a physical item slot.
func (i *Info) ItemIngredient(slot int) ingredient.Item {
	return i.Recipe.ItemIngredients[i.ItemOrder[slot]]
}

// FluidIngredient returns the ingredient matched by a physical tank.
func (i *Info) FluidIngredient(tank int) ingredient.Fluid {
	return i.Recipe.FluidIngredients[i.FluidOrder[tank]]
}

// ItemIngredientSize is the quantity the recipe takes from a slot.
func (i *Info) ItemIngredientSize(slot int) int {
	return i.ItemIngredient(slot).MaxStackSize(i.ItemVariants[slot])
}

// FluidIngredientSize is the quantity the recipe takes from a tank.
func (i *Info) FluidIngredientSize(tank int) int {
	return i.FluidIngredient(tank).MaxStackSize(i.FluidVariants[tank])
}
