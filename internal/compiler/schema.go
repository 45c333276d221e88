package compiler

import (
	"cuelang.org/go/cue"
)

// machineSchema constrains machine declarations before they are decoded.
// Structs stay open so unknown fields are ignored.
const machineSchema = `
#Ingredient: string | {...}

#Recipe: {
	label?: string
	item_inputs?: [...#Ingredient]
	fluid_inputs?: [...#Ingredient]
	item_outputs?: [...#Ingredient]
	fluid_outputs?: [...#Ingredient]
	extras?: [string]: number
	...
}

#Machine: {
	items_in?:   int & >=0
	fluids_in?:  int & >=0
	items_out?:  int & >=0
	fluids_out?: int & >=0

	process_time:    number & >0
	process_power?:  number & >=0
	energy_capacity?: int & >=0

	input_tank_capacity?:  int & >0
	output_tank_capacity?: int & >0
	stack_limit?:          int & >0

	shapeless?:       bool
	factor?:          bool
	smart_input?:     bool
	consumes_inputs?: bool
	loses_progress?:  bool
	generator?:       bool
	configurable?:    bool
	upgradable?:      bool

	extras?: [...{
		name:        string
		default:     number
		factorable?: bool
	}]
	recipes?: [...#Recipe]
	...
}
`

// checkSchema unifies a machine with #Machine and reports the first
// violation with its position.
func checkSchema(v cue.Value) (cue.Value, error) {
	schema := v.Context().CompileString(machineSchema, cue.Filename("millwork/schema.cue"))
	if err := schema.Err(); err != nil {
		return v, formatCUEError(err)
	}
	u := schema.LookupPath(cue.ParsePath("#Machine")).Unify(v)
	if err := u.Validate(); err != nil {
		return v, formatCUEError(err)
	}
	return u, nil
}
