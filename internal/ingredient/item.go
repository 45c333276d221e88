package ingredient

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/millwork/internal/stack"
)

// ExactItem matches one resource with a specific meta and tag.
type ExactItem struct {
	id    stack.ResourceID
	meta  int
	tag   string
	sizes sizes
}

// NewItem returns an exact item ingredient. With no sizes the ingredient
// takes one item.
func NewItem(id stack.ResourceID, meta int, tag string, counts ...int) *ExactItem {
	return &ExactItem{id: id.Normalize(), meta: meta, tag: tag, sizes: normalizeSizes(counts)}
}

func (e *ExactItem) Match(c stack.Item, s Sorption) MatchResult {
	if c.IsEmpty() || c.ID != e.id || c.Meta != e.meta || c.Tag != e.tag {
		return NoMatch
	}
	return e.sizes.resolve(c.Count, s)
}

func (e *ExactItem) Variants() int                 { return len(e.sizes) }
func (e *ExactItem) MaxStackSize(variant int) int  { return e.sizes.at(variant) }
func (e *ExactItem) Resources() []stack.ResourceID { return []stack.ResourceID{e.id} }
func (e *ExactItem) IsEmpty() bool                 { return false }

func (e *ExactItem) Stack() stack.Item {
	return e.NextStack(0)
}

func (e *ExactItem) NextStack(variant int) stack.Item {
	return stack.Item{ID: e.id, Meta: e.meta, Tag: e.tag, Count: e.sizes.at(variant)}
}

func (e *ExactItem) Validate(cat *stack.Catalog) error {
	if !cat.KnownItem(e.id) {
		return fmt.Errorf("%w: item %q", ErrUnknownResource, e.id)
	}
	return nil
}

func (e *ExactItem) String() string {
	label := string(e.id)
	if e.meta != 0 {
		label = fmt.Sprintf("%s:%d", label, e.meta)
	}
	if e.tag != "" {
		label += "{" + e.tag + "}"
	}
	return describeItem(label, e.sizes)
}

// WildcardItem matches a resource regardless of meta and tag.
type WildcardItem struct {
	id    stack.ResourceID
	sizes sizes
}

// NewWildcardItem returns an ingredient accepting any meta of id.
func NewWildcardItem(id stack.ResourceID, counts ...int) *WildcardItem {
	return &WildcardItem{id: id.Normalize(), sizes: normalizeSizes(counts)}
}

func (w *WildcardItem) Match(c stack.Item, s Sorption) MatchResult {
	if c.IsEmpty() || c.ID != w.id {
		return NoMatch
	}
	return w.sizes.resolve(c.Count, s)
}

func (w *WildcardItem) Variants() int                 { return len(w.sizes) }
func (w *WildcardItem) MaxStackSize(variant int) int  { return w.sizes.at(variant) }
func (w *WildcardItem) Resources() []stack.ResourceID { return []stack.ResourceID{w.id} }
func (w *WildcardItem) IsEmpty() bool                 { return false }
func (w *WildcardItem) Stack() stack.Item             { return w.NextStack(0) }

func (w *WildcardItem) NextStack(variant int) stack.Item {
	return stack.Item{ID: w.id, Count: w.sizes.at(variant)}
}

func (w *WildcardItem) Validate(cat *stack.Catalog) error {
	if !cat.KnownItem(w.id) {
		return fmt.Errorf("%w: item %q", ErrUnknownResource, w.id)
	}
	return nil
}

func (w *WildcardItem) String() string {
	return describeItem(string(w.id)+":*", w.sizes)
}

// TagItem matches any member of a tag. Members are captured when the
// ingredient is built.
type TagItem struct {
	tag     string
	members []stack.ResourceID
	sizes   sizes
}

// NewTagItem returns an ingredient accepting any item in tag.
func NewTagItem(cat *stack.Catalog, tag string, counts ...int) *TagItem {
	return &TagItem{tag: tag, members: cat.TagMembers(tag), sizes: normalizeSizes(counts)}
}

func (g *TagItem) Match(c stack.Item, s Sorption) MatchResult {
	if c.IsEmpty() || !slices.Contains(g.members, c.ID) {
		return NoMatch
	}
	return g.sizes.resolve(c.Count, s)
}

func (g *TagItem) Variants() int                { return len(g.sizes) }
func (g *TagItem) MaxStackSize(variant int) int { return g.sizes.at(variant) }
func (g *TagItem) IsEmpty() bool                { return false }
func (g *TagItem) Stack() stack.Item            { return g.NextStack(0) }

func (g *TagItem) Resources() []stack.ResourceID {
	return append([]stack.ResourceID(nil), g.members...)
}

func (g *TagItem) NextStack(variant int) stack.Item {
	if len(g.members) == 0 {
		return stack.Item{}
	}
	return stack.Item{ID: g.members[0], Count: g.sizes.at(variant)}
}

func (g *TagItem) Validate(cat *stack.Catalog) error {
	if !cat.HasTag(g.tag) || len(g.members) == 0 {
		return fmt.Errorf("%w: tag %q", ErrUnknownResource, g.tag)
	}
	for _, m := range g.members {
		if !cat.KnownItem(m) {
			return fmt.Errorf("%w: item %q in tag %q", ErrUnknownResource, m, g.tag)
		}
	}
	return nil
}

func (g *TagItem) String() string {
	return describeItem("#"+g.tag, g.sizes)
}

// AnyItem matches the first of several alternatives. Variant indices are
// flattened across alternatives: alternative k's variants follow those of
// alternatives 0..k-1.
type AnyItem struct {
	options []Item
	offsets []int
}

// NewAnyItem returns an ingredient accepting any of options.
func NewAnyItem(options ...Item) *AnyItem {
	a := &AnyItem{options: options, offsets: make([]int, len(options))}
	total := 0
	for i, opt := range options {
		a.offsets[i] = total
		total += opt.Variants()
	}
	return a
}

func (a *AnyItem) Match(c stack.Item, s Sorption) MatchResult {
	for i, opt := range a.options {
		if r := opt.Match(c, s); r.Matches {
			return matched(a.offsets[i]+r.Variant, r.Amount)
		}
	}
	return NoMatch
}

func (a *AnyItem) Variants() int {
	if len(a.options) == 0 {
		return 0
	}
	last := len(a.options) - 1
	return a.offsets[last] + a.options[last].Variants()
}

func (a *AnyItem) locate(variant int) (Item, int) {
	for i := len(a.options) - 1; i >= 0; i-- {
		if variant >= a.offsets[i] {
			return a.options[i], variant - a.offsets[i]
		}
	}
	return nil, 0
}

func (a *AnyItem) MaxStackSize(variant int) int {
	opt, v := a.locate(variant)
	if opt == nil {
		return 0
	}
	return opt.MaxStackSize(v)
}

func (a *AnyItem) NextStack(variant int) stack.Item {
	opt, v := a.locate(variant)
	if opt == nil {
		return stack.Item{}
	}
	return opt.NextStack(v)
}

func (a *AnyItem) Stack() stack.Item { return a.NextStack(0) }
func (a *AnyItem) IsEmpty() bool     { return false }

func (a *AnyItem) Resources() []stack.ResourceID {
	var out []stack.ResourceID
	for _, opt := range a.options {
		for _, id := range opt.Resources() {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}

func (a *AnyItem) Validate(cat *stack.Catalog) error {
	if len(a.options) == 0 {
		return fmt.Errorf("%w: empty alternative list", ErrUnknownResource)
	}
	for _, opt := range a.options {
		if err := opt.Validate(cat); err != nil {
			return err
		}
	}
	return nil
}

func (a *AnyItem) String() string {
	parts := make([]string, len(a.options))
	for i, opt := range a.options {
		parts[i] = opt.String()
	}
	return "any(" + strings.Join(parts, " | ") + ")"
}

// EmptyItem matches only an empty slot. It fills unused recipe positions.
type EmptyItem struct{}

// NewEmptyItem returns the empty item ingredient.
func NewEmptyItem() EmptyItem { return EmptyItem{} }

func (EmptyItem) Match(c stack.Item, _ Sorption) MatchResult {
	if c.IsEmpty() {
		return matched(0, 0)
	}
	return NoMatch
}

func (EmptyItem) Variants() int                 { return 1 }
func (EmptyItem) MaxStackSize(int) int          { return 0 }
func (EmptyItem) Stack() stack.Item             { return stack.Item{} }
func (EmptyItem) NextStack(int) stack.Item      { return stack.Item{} }
func (EmptyItem) Resources() []stack.ResourceID { return []stack.ResourceID{""} }
func (EmptyItem) Validate(*stack.Catalog) error { return nil }
func (EmptyItem) IsEmpty() bool                 { return true }
func (EmptyItem) String() string                { return "empty" }

func describeItem(base string, s sizes) string {
	switch {
	case len(s) == 1 && s[0] == 1:
		return base
	case len(s) == 1:
		return fmt.Sprintf("%s x%d", base, s[0])
	default:
		return fmt.Sprintf("%s x%v", base, []int(s))
	}
}
