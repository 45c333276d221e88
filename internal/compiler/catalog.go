package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/millwork/internal/stack"
)

// CompileCatalog reads the top-level resources and tags declarations.
// Both are optional; without resources the catalog accepts any id.
//
//	resources: {
//		items:  ["ingotIron", "ingotSteel"]
//		fluids: ["water"]
//	}
//	tags: ingotAny: ["ingotIron", "ingotCopper"]
func CompileCatalog(root cue.Value) (*stack.Catalog, error) {
	cat := stack.NewCatalog()

	items, err := lookupStrings(root, "resources.items")
	if err != nil {
		return nil, err
	}
	cat.AddItems(toResourceIDs(items)...)

	fluids, err := lookupStrings(root, "resources.fluids")
	if err != nil {
		return nil, err
	}
	cat.AddFluids(toResourceIDs(fluids)...)

	tagsVal := root.LookupPath(cue.ParsePath("tags"))
	if !tagsVal.Exists() {
		return cat, nil
	}
	iter, err := tagsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		members, err := stringList(iter.Value())
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			return nil, &CompileError{
				Field:   "tags." + iter.Label(),
				Message: "tag must list at least one member",
				Pos:     iter.Value().Pos(),
			}
		}
		cat.AddTag(iter.Label(), toResourceIDs(members)...)
	}
	return cat, nil
}

func toResourceIDs(ss []string) []stack.ResourceID {
	out := make([]stack.ResourceID, len(ss))
	for i, s := range ss {
		out[i] = stack.ResourceID(s).Normalize()
	}
	return out
}
