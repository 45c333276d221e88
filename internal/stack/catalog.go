package stack

import "slices"

// Catalog records which items and fluids exist and which tags group them.
//
// A catalog with no declared items accepts every item identifier, and the
// same holds for fluids, so small definition sets can skip the resource
// lists entirely. Tags always have to be declared.
type Catalog struct {
	items  map[ResourceID]struct{}
	fluids map[ResourceID]struct{}
	tags   map[string][]ResourceID
}

// NewCatalog returns an empty, open catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		items:  make(map[ResourceID]struct{}),
		fluids: make(map[ResourceID]struct{}),
		tags:   make(map[string][]ResourceID),
	}
}

// AddItems declares item resources.
func (c *Catalog) AddItems(ids ...ResourceID) {
	for _, id := range ids {
		c.items[id.Normalize()] = struct{}{}
	}
}

// AddFluids declares fluid resources.
func (c *Catalog) AddFluids(ids ...ResourceID) {
	for _, id := range ids {
		c.fluids[id.Normalize()] = struct{}{}
	}
}

// AddTag appends members to a tag, keeping first-declared order and
// skipping duplicates.
func (c *Catalog) AddTag(tag string, members ...ResourceID) {
	list := c.tags[tag]
	for _, m := range members {
		m = m.Normalize()
		if !slices.Contains(list, m) {
			list = append(list, m)
		}
	}
	c.tags[tag] = list
}

// KnownItem reports whether id is a declared item.
func (c *Catalog) KnownItem(id ResourceID) bool {
	if len(c.items) == 0 {
		return id != ""
	}
	_, ok := c.items[id]
	return ok
}

// KnownFluid reports whether id is a declared fluid.
func (c *Catalog) KnownFluid(id ResourceID) bool {
	if len(c.fluids) == 0 {
		return id != ""
	}
	_, ok := c.fluids[id]
	return ok
}

// HasTag reports whether tag has been declared.
func (c *Catalog) HasTag(tag string) bool {
	_, ok := c.tags[tag]
	return ok
}

// TagMembers returns a copy of the members of tag in declared order.
func (c *Catalog) TagMembers(tag string) []ResourceID {
	return slices.Clone(c.tags[tag])
}

// InTag reports whether id belongs to tag.
func (c *Catalog) InTag(tag string, id ResourceID) bool {
	return slices.Contains(c.tags[tag], id)
}

// Tags returns every declared tag name, sorted.
func (c *Catalog) Tags() []string {
	names := make([]string, 0, len(c.tags))
	for name := range c.tags {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
