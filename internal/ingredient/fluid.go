package ingredient

import (
	"fmt"
	"slices"

	"github.com/roach88/millwork/internal/stack"
)

// ExactFluid matches one fluid.
type ExactFluid struct {
	id    stack.ResourceID
	sizes sizes
}

// NewFluid returns an exact fluid ingredient. With no amounts the
// ingredient takes 1000 millibuckets.
func NewFluid(id stack.ResourceID, amounts ...int) *ExactFluid {
	if len(amounts) == 0 {
		amounts = []int{1000}
	}
	return &ExactFluid{id: id.Normalize(), sizes: normalizeSizes(amounts)}
}

func (e *ExactFluid) Match(c stack.Fluid, s Sorption) MatchResult {
	if c.IsEmpty() || c.ID != e.id {
		return NoMatch
	}
	return e.sizes.resolve(c.Amount, s)
}

func (e *ExactFluid) Variants() int                 { return len(e.sizes) }
func (e *ExactFluid) MaxStackSize(variant int) int  { return e.sizes.at(variant) }
func (e *ExactFluid) Resources() []stack.ResourceID { return []stack.ResourceID{e.id} }
func (e *ExactFluid) IsEmpty() bool                 { return false }
func (e *ExactFluid) Stack() stack.Fluid            { return e.NextStack(0) }
func (e *ExactFluid) Factors() []int                { return slices.Clone([]int(e.sizes)) }

func (e *ExactFluid) NextStack(variant int) stack.Fluid {
	return stack.Fluid{ID: e.id, Amount: e.sizes.at(variant)}
}

func (e *ExactFluid) Factored(n int) Fluid {
	if n <= 1 {
		return e
	}
	return &ExactFluid{id: e.id, sizes: e.sizes.divided(n)}
}

func (e *ExactFluid) Validate(cat *stack.Catalog) error {
	if !cat.KnownFluid(e.id) {
		return fmt.Errorf("%w: fluid %q", ErrUnknownResource, e.id)
	}
	return nil
}

func (e *ExactFluid) String() string {
	return describeFluid(string(e.id), e.sizes)
}

// TagFluid matches any fluid in a tag.
type TagFluid struct {
	tag     string
	members []stack.ResourceID
	sizes   sizes
}

// NewTagFluid returns an ingredient accepting any fluid in tag.
func NewTagFluid(cat *stack.Catalog, tag string, amounts ...int) *TagFluid {
	if len(amounts) == 0 {
		amounts = []int{1000}
	}
	return &TagFluid{tag: tag, members: cat.TagMembers(tag), sizes: normalizeSizes(amounts)}
}

func (g *TagFluid) Match(c stack.Fluid, s Sorption) MatchResult {
	if c.IsEmpty() || !slices.Contains(g.members, c.ID) {
		return NoMatch
	}
	return g.sizes.resolve(c.Amount, s)
}

func (g *TagFluid) Variants() int                 { return len(g.sizes) }
func (g *TagFluid) MaxStackSize(variant int) int  { return g.sizes.at(variant) }
func (g *TagFluid) Resources() []stack.ResourceID { return slices.Clone(g.members) }
func (g *TagFluid) IsEmpty() bool                 { return false }
func (g *TagFluid) Stack() stack.Fluid            { return g.NextStack(0) }
func (g *TagFluid) Factors() []int                { return slices.Clone([]int(g.sizes)) }

func (g *TagFluid) NextStack(variant int) stack.Fluid {
	if len(g.members) == 0 {
		return stack.Fluid{}
	}
	return stack.Fluid{ID: g.members[0], Amount: g.sizes.at(variant)}
}

func (g *TagFluid) Factored(n int) Fluid {
	if n <= 1 {
		return g
	}
	return &TagFluid{tag: g.tag, members: g.members, sizes: g.sizes.divided(n)}
}

func (g *TagFluid) Validate(cat *stack.Catalog) error {
	if !cat.HasTag(g.tag) || len(g.members) == 0 {
		return fmt.Errorf("%w: fluid tag %q", ErrUnknownResource, g.tag)
	}
	for _, m := range g.members {
		if !cat.KnownFluid(m) {
			return fmt.Errorf("%w: fluid %q in tag %q", ErrUnknownResource, m, g.tag)
		}
	}
	return nil
}

func (g *TagFluid) String() string {
	return describeFluid("#"+g.tag, g.sizes)
}

// EmptyFluid matches only an empty tank.
type EmptyFluid struct{}

// NewEmptyFluid returns the empty fluid ingredient.
func NewEmptyFluid() EmptyFluid { return EmptyFluid{} }

func (EmptyFluid) Match(c stack.Fluid, _ Sorption) MatchResult {
	if c.IsEmpty() {
		return matched(0, 0)
	}
	return NoMatch
}

func (EmptyFluid) Variants() int                 { return 1 }
func (EmptyFluid) MaxStackSize(int) int          { return 0 }
func (EmptyFluid) Stack() stack.Fluid            { return stack.Fluid{} }
func (EmptyFluid) NextStack(int) stack.Fluid     { return stack.Fluid{} }
func (EmptyFluid) Resources() []stack.ResourceID { return []stack.ResourceID{""} }
func (EmptyFluid) Validate(*stack.Catalog) error { return nil }
func (EmptyFluid) IsEmpty() bool                 { return true }
func (EmptyFluid) Factors() []int                { return nil }
func (e EmptyFluid) Factored(int) Fluid          { return e }
func (EmptyFluid) String() string                { return "empty" }

func describeFluid(base string, s sizes) string {
	if len(s) == 1 {
		return fmt.Sprintf("%s %dmB", base, s[0])
	}
	return fmt.Sprintf("%s %vmB", base, []int(s))
}
