package stack

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultStackLimit is the largest item count a single slot holds unless a
// machine kind declares otherwise.
const DefaultStackLimit = 64

// ResourceID names an item or a fluid, e.g. "ingotIron" or "water".
type ResourceID string

// Normalize returns the NFC form of the identifier.
func (id ResourceID) Normalize() ResourceID {
	return ResourceID(norm.NFC.String(string(id)))
}

// IsEmpty reports whether the identifier names nothing.
func (id ResourceID) IsEmpty() bool {
	return id == ""
}

func (id ResourceID) String() string {
	return string(id)
}

// Item is a quantity of one item resource. Meta distinguishes damage or
// subtype values; Tag carries auxiliary data that must match exactly.
type Item struct {
	ID    ResourceID `json:"id,omitempty"`
	Meta  int        `json:"meta,omitempty"`
	Tag   string     `json:"tag,omitempty"`
	Count int        `json:"count,omitempty"`
}

// NewItem returns a normalized item stack with meta 0.
func NewItem(id ResourceID, count int) Item {
	return Item{ID: id.Normalize(), Count: count}
}

// IsEmpty reports whether the stack holds nothing.
func (s Item) IsEmpty() bool {
	return s.ID == "" || s.Count <= 0
}

// SameItem reports whether both stacks name the same resource and meta.
// Counts and tags are ignored.
func (s Item) SameItem(o Item) bool {
	return s.ID == o.ID && s.Meta == o.Meta
}

// Stackable reports whether o can merge into s.
func (s Item) Stackable(o Item) bool {
	return s.SameItem(o) && s.Tag == o.Tag
}

// WithCount returns a copy of s holding n items.
func (s Item) WithCount(n int) Item {
	if n <= 0 {
		return Item{}
	}
	s.Count = n
	return s
}

func (s Item) String() string {
	if s.IsEmpty() {
		return "empty"
	}
	var b strings.Builder
	b.WriteString(string(s.ID))
	if s.Meta != 0 {
		fmt.Fprintf(&b, ":%d", s.Meta)
	}
	if s.Tag != "" {
		fmt.Fprintf(&b, "{%s}", s.Tag)
	}
	fmt.Fprintf(&b, "*%d", s.Count)
	return b.String()
}

// Fluid is an amount of one fluid resource, in millibuckets.
type Fluid struct {
	ID     ResourceID `json:"id,omitempty"`
	Amount int        `json:"amount,omitempty"`
}

// NewFluid returns a normalized fluid stack.
func NewFluid(id ResourceID, amount int) Fluid {
	return Fluid{ID: id.Normalize(), Amount: amount}
}

// IsEmpty reports whether the stack holds nothing.
func (f Fluid) IsEmpty() bool {
	return f.ID == "" || f.Amount <= 0
}

// SameFluid reports whether both stacks name the same fluid.
func (f Fluid) SameFluid(o Fluid) bool {
	return f.ID == o.ID
}

// WithAmount returns a copy of f holding n millibuckets.
func (f Fluid) WithAmount(n int) Fluid {
	if n <= 0 {
		return Fluid{}
	}
	f.Amount = n
	return f
}

func (f Fluid) String() string {
	if f.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%s*%d", f.ID, f.Amount)
}

// ItemIDs returns the resource identifier of every stack, "" for empty ones.
func ItemIDs(items []Item) []ResourceID {
	ids := make([]ResourceID, len(items))
	for i, s := range items {
		if !s.IsEmpty() {
			ids[i] = s.ID
		}
	}
	return ids
}

// FluidIDs returns the resource identifier of every stack, "" for empty ones.
func FluidIDs(fluids []Fluid) []ResourceID {
	ids := make([]ResourceID, len(fluids))
	for i, f := range fluids {
		if !f.IsEmpty() {
			ids[i] = f.ID
		}
	}
	return ids
}
