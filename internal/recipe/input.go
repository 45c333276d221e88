package recipe

import (
	"slices"

	"github.com/roach88/millwork/internal/ingredient"
	"github.com/roach88/millwork/internal/stack"
)

// IsValidItemInput reports whether any recipe accepts s in slot, comparing
// identity only.
func (h *Handler) IsValidItemInput(slot int, s stack.Item) bool {
	if s.IsEmpty() {
		return false
	}
	for _, r := range h.recipes {
		if acceptsItem(r, slot, s) {
			return true
		}
	}
	return false
}

func acceptsItem(r *Recipe, slot int, s stack.Item) bool {
	if r.Shapeless {
		for _, ing := range r.ItemIngredients {
			if ing.Match(s, ingredient.Neutral).Matches {
				return true
			}
		}
		return false
	}
	return slot >= 0 && slot < len(r.ItemIngredients) &&
		r.ItemIngredients[slot].Match(s, ingredient.Neutral).Matches
}

// IsValidFluidInput reports whether any recipe accepts f in tank.
func (h *Handler) IsValidFluidInput(tank int, f stack.Fluid) bool {
	if f.IsEmpty() {
		return false
	}
	if h.built {
		return slices.Contains(h.ValidFluids(tank), f.ID)
	}
	for _, r := range h.recipes {
		if r.Shapeless {
			for _, ing := range r.FluidIngredients {
				if ing.Match(f, ingredient.Neutral).Matches {
					return true
				}
			}
			continue
		}
		if tank >= 0 && tank < len(r.FluidIngredients) && r.FluidIngredients[tank].Match(f, ingredient.Neutral).Matches {
			return true
		}
	}
	return false
}

// IsValidItemInputSmart is the insertion rule for machines that refuse to
// spread one ingredient over several slots. inputs holds every input slot;
// info is the processor's current match, possibly nil.
//
// With every other slot empty, or s stacking onto what slot already holds,
// it degrades to IsValidItemInput. Otherwise only recipes compatible with
// the current inputs are considered, and for shapeless recipes s is refused
// when the ingredient it would satisfy is already satisfied by another slot.
func (h *Handler) IsValidItemInputSmart(slot int, s stack.Item, info *Info, inputs []stack.Item) bool {
	if s.IsEmpty() || slot < 0 || slot >= len(inputs) {
		return false
	}
	others := make([]stack.Item, 0, len(inputs)-1)
	othersEmpty := true
	for i, in := range inputs {
		if i == slot {
			continue
		}
		others = append(others, in)
		if !in.IsEmpty() {
			othersEmpty = false
		}
	}
	if othersEmpty || s.Stackable(inputs[slot]) {
		return h.IsValidItemInput(slot, s)
	}

	if info != nil {
		return acceptsSmart(info.Recipe, slot, s, others)
	}
	for _, r := range h.recipes {
		if compatible(r, inputs) && acceptsSmart(r, slot, s, others) {
			return true
		}
	}
	return false
}

// compatible reports whether every non-empty input could belong to r.
func compatible(r *Recipe, inputs []stack.Item) bool {
	for i, in := range inputs {
		if in.IsEmpty() {
			continue
		}
		if !acceptsItem(r, i, in) {
			return false
		}
	}
	return true
}

func acceptsSmart(r *Recipe, slot int, s stack.Item, others []stack.Item) bool {
	if !r.Shapeless {
		return acceptsItem(r, slot, s)
	}
	for _, ing := range r.ItemIngredients {
		if !ing.Match(s, ingredient.Neutral).Matches {
			continue
		}
		for _, o := range others {
			if !o.IsEmpty() && ing.Match(o, ingredient.Neutral).Matches {
				return false
			}
		}
		return true
	}
	return false
}
