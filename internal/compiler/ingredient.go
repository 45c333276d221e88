package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/millwork/internal/ingredient"
	"github.com/roach88/millwork/internal/stack"
)

// compileItem decodes one item ingredient. Accepted forms:
//
//	"ingotIron*2"                         exact item, shorthand
//	"#ingotAny*2"                         tag, shorthand
//	{item: "dye", meta: 4, nbt: "glossy", count: 1}
//	{wildcard: "wool", counts: [2, 1]}
//	{tag: "ingotAny", count: 2}
//	{any: ["ingotIron", {tag: "ingotAny"}]}
//	{empty: true}
func compileItem(v cue.Value, cat *stack.Catalog, field string) (ingredient.Item, error) {
	if v.IncompleteKind() == cue.StringKind {
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return itemShorthand(s, cat, field, v)
	}

	switch {
	case v.LookupPath(cue.ParsePath("empty")).Exists():
		return ingredient.NewEmptyItem(), nil
	case v.LookupPath(cue.ParsePath("any")).Exists():
		iter, err := v.LookupPath(cue.ParsePath("any")).List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var options []ingredient.Item
		for i := 0; iter.Next(); i++ {
			opt, err := compileItem(iter.Value(), cat, fmt.Sprintf("%s.any[%d]", field, i))
			if err != nil {
				return nil, err
			}
			if opt.IsEmpty() {
				return nil, &CompileError{Field: field, Message: "any-of options cannot be empty", Pos: iter.Value().Pos()}
			}
			options = append(options, opt)
		}
		if len(options) == 0 {
			return nil, &CompileError{Field: field, Message: "any-of needs at least one option", Pos: v.Pos()}
		}
		return ingredient.NewAnyItem(options...), nil
	}

	counts, err := quantities(v, "count", "counts")
	if err != nil {
		return nil, err
	}
	if err := checkPositive(counts, field, v); err != nil {
		return nil, err
	}

	if id, err := lookupString(v, "item"); err != nil {
		return nil, err
	} else if id != "" {
		meta, err := lookupInt(v, "meta", 0)
		if err != nil {
			return nil, err
		}
		nbt, err := lookupString(v, "nbt")
		if err != nil {
			return nil, err
		}
		return ingredient.NewItem(stack.ResourceID(id), meta, nbt, counts...), nil
	}
	if id, err := lookupString(v, "wildcard"); err != nil {
		return nil, err
	} else if id != "" {
		return ingredient.NewWildcardItem(stack.ResourceID(id), counts...), nil
	}
	if tag, err := lookupString(v, "tag"); err != nil {
		return nil, err
	} else if tag != "" {
		return ingredient.NewTagItem(cat, tag, counts...), nil
	}

	return nil, &CompileError{
		Field:   field,
		Message: "item ingredient must declare one of item, wildcard, tag, any or empty",
		Pos:     v.Pos(),
	}
}

func itemShorthand(s string, cat *stack.Catalog, field string, v cue.Value) (ingredient.Item, error) {
	tagged := strings.HasPrefix(s, "#")
	parsed, err := stack.ParseItem(strings.TrimPrefix(s, "#"))
	if err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	if tagged {
		return ingredient.NewTagItem(cat, string(parsed.ID), parsed.Count), nil
	}
	return ingredient.NewItem(parsed.ID, parsed.Meta, "", parsed.Count), nil
}

// compileFluid decodes one fluid ingredient. Accepted forms:
//
//	"water*1000"
//	{fluid: "water", amounts: [1000, 500]}
//	{fluid_tag: "coolant", amount: 250}
//	{empty: true}
func compileFluid(v cue.Value, cat *stack.Catalog, field string) (ingredient.Fluid, error) {
	if v.IncompleteKind() == cue.StringKind {
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		parsed, err := stack.ParseFluid(s)
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		return ingredient.NewFluid(parsed.ID, parsed.Amount), nil
	}

	if v.LookupPath(cue.ParsePath("empty")).Exists() {
		return ingredient.NewEmptyFluid(), nil
	}
	amounts, err := quantities(v, "amount", "amounts")
	if err != nil {
		return nil, err
	}
	if err := checkPositive(amounts, field, v); err != nil {
		return nil, err
	}

	if id, err := lookupString(v, "fluid"); err != nil {
		return nil, err
	} else if id != "" {
		return ingredient.NewFluid(stack.ResourceID(id), amounts...), nil
	}
	if tag, err := lookupString(v, "fluid_tag"); err != nil {
		return nil, err
	} else if tag != "" {
		return ingredient.NewTagFluid(cat, tag, amounts...), nil
	}

	return nil, &CompileError{
		Field:   field,
		Message: "fluid ingredient must declare one of fluid, fluid_tag or empty",
		Pos:     v.Pos(),
	}
}

func checkPositive(ns []int, field string, v cue.Value) error {
	for _, n := range ns {
		if n <= 0 {
			return &CompileError{Field: field, Message: fmt.Sprintf("quantity must be positive, got %d", n), Pos: v.Pos()}
		}
	}
	return nil
}

func compileItems(v cue.Value, path string, cat *stack.Catalog, field string) ([]ingredient.Item, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []ingredient.Item
	for i := 0; iter.Next(); i++ {
		ing, err := compileItem(iter.Value(), cat, fmt.Sprintf("%s.%s[%d]", field, path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, nil
}

func compileFluids(v cue.Value, path string, cat *stack.Catalog, field string) ([]ingredient.Fluid, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []ingredient.Fluid
	for i := 0; iter.Next(); i++ {
		ing, err := compileFluid(iter.Value(), cat, fmt.Sprintf("%s.%s[%d]", field, path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, nil
}
