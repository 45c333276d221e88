package compiler

import (
	"fmt"
	"strings"
)

// Validation error codes (E200-E299)
const (
	ErrMachineNameEmpty    = "E201" // machine name is required
	ErrProcessTimeInvalid  = "E202" // process_time must be positive
	ErrNegativeSize        = "E203" // slot or tank count below zero
	ErrDuplicateExtra      = "E204" // extras schema repeats a name
	ErrRecipeArity         = "E205" // recipe sequence length differs from the machine
	ErrNoRecipes           = "E206" // machine declares no recipes
	ErrProcessPowerInvalid = "E207" // process_power must not be negative
	ErrInvalidExtraName    = "E208" // extras schema entry without a name
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Machine string `json:"machine,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	field := e.Field
	if e.Machine != "" {
		field = e.Machine + "." + field
	}
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, field, e.Message)
}

// Validate checks a compiled machine against the structural rules the
// recipe handler relies on. Returns all errors found (does not fail-fast).
func Validate(spec *MachineSpec) []ValidationError {
	var errs []ValidationError
	add := func(code, field, msg string) {
		errs = append(errs, ValidationError{
			Machine: spec.Name,
			Field:   field,
			Message: msg,
			Code:    code,
			Line:    spec.Pos.Line(),
		})
	}

	if strings.TrimSpace(spec.Name) == "" {
		add(ErrMachineNameEmpty, "name", "machine name is required")
	}
	if spec.Kind.DefaultProcessTime <= 0 {
		add(ErrProcessTimeInvalid, "process_time", fmt.Sprintf("must be positive, got %g", spec.Kind.DefaultProcessTime))
	}
	if spec.Kind.DefaultProcessPower < 0 {
		add(ErrProcessPowerInvalid, "process_power", fmt.Sprintf("must not be negative, got %g", spec.Kind.DefaultProcessPower))
	}

	sizes := []struct {
		field string
		n     int
	}{
		{"items_in", spec.Kind.ItemInputSize},
		{"fluids_in", spec.Kind.FluidInputSize},
		{"items_out", spec.Kind.ItemOutputSize},
		{"fluids_out", spec.Kind.FluidOutputSize},
	}
	badSize := false
	for _, s := range sizes {
		if s.n < 0 {
			badSize = true
			add(ErrNegativeSize, s.field, fmt.Sprintf("must not be negative, got %d", s.n))
		}
	}

	seen := make(map[string]bool)
	for i, e := range spec.Extras {
		if strings.TrimSpace(e.Name) == "" {
			add(ErrInvalidExtraName, fmt.Sprintf("extras[%d].name", i), "extra name is required")
			continue
		}
		if seen[e.Name] {
			add(ErrDuplicateExtra, fmt.Sprintf("extras[%d].name", i), fmt.Sprintf("duplicate extra name: %q", e.Name))
		}
		seen[e.Name] = true
	}

	if len(spec.Recipes) == 0 {
		add(ErrNoRecipes, "recipes", "at least one recipe is required")
	}
	// Arity against a negative size would only repeat E203 per recipe.
	for i, def := range spec.Recipes {
		if badSize {
			break
		}
		arity := []struct {
			field     string
			got, want int
		}{
			{"item_inputs", len(def.ItemInputs), spec.Kind.ItemInputSize},
			{"fluid_inputs", len(def.FluidInputs), spec.Kind.FluidInputSize},
			{"item_outputs", len(def.ItemOutputs), spec.Kind.ItemOutputSize},
			{"fluid_outputs", len(def.FluidOutputs), spec.Kind.FluidOutputSize},
		}
		for _, a := range arity {
			if a.got != a.want {
				add(ErrRecipeArity, fmt.Sprintf("recipes[%d].%s", i, a.field),
					fmt.Sprintf("got %d, want %d", a.got, a.want))
			}
		}
	}

	return errs
}
