package recipe

import (
	"math"

	"github.com/roach88/millwork/internal/ingredient"
)

// HCF returns the highest common factor of the positive values. Zero and
// negative values are skipped; the HCF of no values is 1.
func HCF(values ...int) int {
	h := 0
	for _, v := range values {
		if v <= 0 {
			continue
		}
		h = gcd(h, v)
	}
	if h == 0 {
		return 1
	}
	return h
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Factor reduces a fluid-only recipe to lowest terms: every fluid quantity
// and every factorable extra is divided by their HCF. Recipes with any item
// ingredient or product, recipes whose HCF is 1, and recipes with a
// factorable extra that is not a positive integer are returned unchanged.
// Factor is idempotent.
func Factor(r *Recipe) *Recipe {
	if len(r.ItemIngredients) > 0 || len(r.ItemProducts) > 0 {
		return r
	}

	var factors []int
	for _, f := range r.FluidIngredients {
		factors = append(factors, f.Factors()...)
	}
	for _, f := range r.FluidProducts {
		factors = append(factors, f.Factors()...)
	}
	for i, spec := range r.schema {
		if !spec.Factorable {
			continue
		}
		v := r.extras[i]
		if v <= 0 || v != math.Trunc(v) || v > math.MaxInt32 {
			return r
		}
		factors = append(factors, int(v))
	}

	hcf := HCF(factors...)
	if hcf <= 1 {
		return r
	}

	out := *r
	out.FluidIngredients = make([]ingredient.Fluid, len(r.FluidIngredients))
	for i, f := range r.FluidIngredients {
		out.FluidIngredients[i] = f.Factored(hcf)
	}
	out.FluidProducts = make([]ingredient.Fluid, len(r.FluidProducts))
	for i, f := range r.FluidProducts {
		out.FluidProducts[i] = f.Factored(hcf)
	}
	out.extras = append([]float64(nil), r.extras...)
	for i, spec := range r.schema {
		if spec.Factorable {
			out.extras[i] /= float64(hcf)
		}
	}
	return &out
}
