package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/millwork/internal/processor"
	"github.com/roach88/millwork/internal/recipe"
	"github.com/roach88/millwork/internal/stack"
)

// MachineSpec is a compiled machine declaration: the processor kind, the
// shape of its recipe handler and its recipe definitions.
type MachineSpec struct {
	Name      string
	Kind      processor.Kind
	Shapeless bool
	// Factor and SmartInput override the build-wide defaults when set.
	Factor     *bool
	SmartInput *bool
	// Extras is nil when the machine declares none.
	Extras  []recipe.ExtraSpec
	Recipes []recipe.Definition
	Pos     token.Pos
}

// HandlerConfig derives the recipe handler configuration.
func (m *MachineSpec) HandlerConfig(opts BuildOptions, cat *stack.Catalog) recipe.HandlerConfig {
	factor := opts.Factor
	if m.Factor != nil {
		factor = *m.Factor
	}
	return recipe.HandlerConfig{
		Name:            m.Name,
		ItemInputSize:   m.Kind.ItemInputSize,
		FluidInputSize:  m.Kind.FluidInputSize,
		ItemOutputSize:  m.Kind.ItemOutputSize,
		FluidOutputSize: m.Kind.FluidOutputSize,
		Shapeless:       m.Shapeless,
		Extras:          m.Extras,
		Factor:          factor,
		MaxPermutations: opts.MaxPermutations,
		Catalog:         cat,
		Logger:          opts.Logger,
	}
}

// ProcessorKind returns the kind with build-wide defaults applied.
func (m *MachineSpec) ProcessorKind(opts BuildOptions) processor.Kind {
	k := m.Kind
	k.SmartInput = opts.SmartInput
	if m.SmartInput != nil {
		k.SmartInput = *m.SmartInput
	}
	return k.WithDefaults()
}

// CompileMachine parses a CUE value into a MachineSpec. The value should be
// the machine struct itself, e.g. the value at path "machine.furnace":
//
//	machine: furnace: {
//		items_in: 1
//		items_out: 1
//		process_time: 200
//		process_power: 20
//		recipes: [{item_inputs: ["ingotIron"], item_outputs: ["ingotSteel"]}]
//	}
func CompileMachine(v cue.Value, cat *stack.Catalog) (*MachineSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &MachineSpec{Pos: v.Pos()}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	if !v.LookupPath(cue.ParsePath("process_time")).Exists() {
		return nil, &CompileError{
			Field:   "process_time",
			Message: "process_time is required",
			Pos:     v.Pos(),
		}
	}
	u, err := checkSchema(v)
	if err != nil {
		return nil, err
	}

	if spec.Kind, err = compileKind(u, spec.Name); err != nil {
		return nil, err
	}
	if spec.Shapeless, err = lookupBool(u, "shapeless"); err != nil {
		return nil, err
	}
	if spec.Factor, err = lookupOptionalBool(u, "factor"); err != nil {
		return nil, err
	}
	if spec.SmartInput, err = lookupOptionalBool(u, "smart_input"); err != nil {
		return nil, err
	}
	if spec.Extras, err = compileExtras(u); err != nil {
		return nil, err
	}

	recipesVal := u.LookupPath(cue.ParsePath("recipes"))
	if recipesVal.Exists() {
		iter, err := recipesVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; iter.Next(); i++ {
			def, err := compileRecipe(iter.Value(), cat, fmt.Sprintf("recipes[%d]", i))
			if err != nil {
				return nil, err
			}
			spec.Recipes = append(spec.Recipes, def)
		}
	}

	return spec, nil
}

func compileKind(v cue.Value, name string) (processor.Kind, error) {
	k := processor.Kind{Name: name}
	ints := []struct {
		path string
		dst  *int
	}{
		{"items_in", &k.ItemInputSize},
		{"fluids_in", &k.FluidInputSize},
		{"items_out", &k.ItemOutputSize},
		{"fluids_out", &k.FluidOutputSize},
		{"input_tank_capacity", &k.InputTankCapacity},
		{"output_tank_capacity", &k.OutputTankCapacity},
		{"stack_limit", &k.StackLimit},
	}
	for _, f := range ints {
		n, err := lookupInt(v, f.path, 0)
		if err != nil {
			return k, err
		}
		*f.dst = n
	}
	bools := []struct {
		path string
		dst  *bool
	}{
		{"consumes_inputs", &k.ConsumesInputs},
		{"loses_progress", &k.LosesProgress},
		{"generator", &k.Generator},
		{"configurable", &k.Configurable},
		{"upgradable", &k.Upgradable},
	}
	for _, f := range bools {
		b, err := lookupBool(v, f.path)
		if err != nil {
			return k, err
		}
		*f.dst = b
	}

	var err error
	if k.DefaultProcessTime, err = lookupFloat(v, "process_time", 0); err != nil {
		return k, err
	}
	if k.DefaultProcessPower, err = lookupFloat(v, "process_power", 0); err != nil {
		return k, err
	}
	capacity, err := lookupInt(v, "energy_capacity", 0)
	if err != nil {
		return k, err
	}
	k.EnergyCapacity = int64(capacity)
	return k, nil
}

func compileExtras(v cue.Value) ([]recipe.ExtraSpec, error) {
	f := v.LookupPath(cue.ParsePath("extras"))
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	extras := []recipe.ExtraSpec{}
	for iter.Next() {
		e := iter.Value()
		name, err := lookupString(e, "name")
		if err != nil {
			return nil, err
		}
		def, err := lookupFloat(e, "default", 0)
		if err != nil {
			return nil, err
		}
		factorable, err := lookupBool(e, "factorable")
		if err != nil {
			return nil, err
		}
		extras = append(extras, recipe.ExtraSpec{Name: name, Default: def, Factorable: factorable})
	}
	return extras, nil
}

func compileRecipe(v cue.Value, cat *stack.Catalog, field string) (recipe.Definition, error) {
	var def recipe.Definition
	var err error

	if def.Label, err = lookupString(v, "label"); err != nil {
		return def, err
	}
	if def.ItemInputs, err = compileItems(v, "item_inputs", cat, field); err != nil {
		return def, err
	}
	if def.FluidInputs, err = compileFluids(v, "fluid_inputs", cat, field); err != nil {
		return def, err
	}
	if def.ItemOutputs, err = compileItems(v, "item_outputs", cat, field); err != nil {
		return def, err
	}
	if def.FluidOutputs, err = compileFluids(v, "fluid_outputs", cat, field); err != nil {
		return def, err
	}

	extrasVal := v.LookupPath(cue.ParsePath("extras"))
	if extrasVal.Exists() {
		iter, err := extrasVal.Fields()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.Extras = make(map[string]float64)
		for iter.Next() {
			n, err := iter.Value().Float64()
			if err != nil {
				return def, formatCUEError(err)
			}
			def.Extras[iter.Label()] = n
		}
	}
	return def, nil
}
