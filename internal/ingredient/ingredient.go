// Package ingredient implements the matchers recipes are built from.
//
// An ingredient describes what may occupy one slot or tank position of a
// recipe and how much of it the recipe needs. Ingredients are immutable;
// a recipe handler shares them across every processor of its kind.
package ingredient

import (
	"errors"

	"github.com/roach88/millwork/internal/stack"
)

// ErrUnknownResource is wrapped by Validate when an ingredient names an item,
// fluid or tag the catalog does not know.
var ErrUnknownResource = errors.New("unknown resource")

// Sorption says how a candidate is being compared against an ingredient.
type Sorption int

const (
	// Neutral compares identity only.
	Neutral Sorption = iota
	// Input additionally requires the candidate to carry at least the
	// ingredient's quantity.
	Input
	// Output compares identity only; used for products.
	Output
)

func (s Sorption) String() string {
	switch s {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "neutral"
	}
}

// MatchResult is the outcome of a match. Variant identifies which of the
// ingredient's alternatives or sizes matched; Amount is how much that
// variant consumes.
type MatchResult struct {
	Matches bool
	Variant int
	Amount  int
}

// NoMatch is the failed match result.
var NoMatch = MatchResult{}

func matched(variant, amount int) MatchResult {
	return MatchResult{Matches: true, Variant: variant, Amount: amount}
}

// Item matches item stacks.
type Item interface {
	// Match tests a candidate stack.
	Match(candidate stack.Item, s Sorption) MatchResult
	// Variants is the number of distinct variant indices Match may return.
	Variants() int
	// MaxStackSize is the quantity variant consumes or produces.
	MaxStackSize(variant int) int
	// Stack is a representative stack of variant 0; empty for Empty.
	Stack() stack.Item
	// NextStack is the stack variant consumes or produces.
	NextStack(variant int) stack.Item
	// Resources lists every resource that can satisfy the ingredient, ""
	// for an ingredient that matches an empty slot.
	Resources() []stack.ResourceID
	// Validate checks every named resource against the catalog.
	Validate(cat *stack.Catalog) error
	IsEmpty() bool
	String() string
}

// Fluid matches fluid stacks.
type Fluid interface {
	Match(candidate stack.Fluid, s Sorption) MatchResult
	Variants() int
	MaxStackSize(variant int) int
	Stack() stack.Fluid
	NextStack(variant int) stack.Fluid
	Resources() []stack.ResourceID
	Validate(cat *stack.Catalog) error
	IsEmpty() bool
	String() string
	// Factors lists every quantity the ingredient can take; used when
	// reducing fluid ratios.
	Factors() []int
	// Factored returns a copy with every quantity divided by n.
	Factored(n int) Fluid
}

// sizes is the shared quantity list of a sized ingredient. The first size a
// candidate satisfies is the matched variant.
type sizes []int

func normalizeSizes(in []int) sizes {
	out := make(sizes, 0, len(in))
	for _, n := range in {
		if n > 0 {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		out = append(out, 1)
	}
	return out
}

func (s sizes) at(variant int) int {
	if variant < 0 || variant >= len(s) {
		return 0
	}
	return s[variant]
}

// resolve picks the variant for a candidate holding qty.
func (s sizes) resolve(qty int, sorption Sorption) MatchResult {
	if sorption != Input {
		return matched(0, s[0])
	}
	for i, n := range s {
		if qty >= n {
			return matched(i, n)
		}
	}
	return NoMatch
}

func (s sizes) divided(n int) sizes {
	out := make(sizes, len(s))
	for i, v := range s {
		out[i] = v / n
	}
	return out
}

var (
	_ Item  = (*ExactItem)(nil)
	_ Item  = (*WildcardItem)(nil)
	_ Item  = (*TagItem)(nil)
	_ Item  = (*AnyItem)(nil)
	_ Item  = EmptyItem{}
	_ Fluid = (*ExactFluid)(nil)
	_ Fluid = (*TagFluid)(nil)
	_ Fluid = EmptyFluid{}
)
