package processor

import (
	"errors"
	"fmt"

	"github.com/roach88/millwork/internal/recipe"
	"github.com/roach88/millwork/internal/stack"
)

// DefaultTankCapacity is the capacity of a tank whose kind declares none.
const DefaultTankCapacity = 16000

// Kind is the static description shared by every processor of one machine
// type.
type Kind struct {
	Name string `json:"name"`

	ItemInputSize   int `json:"item_inputs"`
	FluidInputSize  int `json:"fluid_inputs"`
	ItemOutputSize  int `json:"item_outputs"`
	FluidOutputSize int `json:"fluid_outputs"`

	InputTankCapacity  int `json:"input_tank_capacity"`
	OutputTankCapacity int `json:"output_tank_capacity"`
	StackLimit         int `json:"stack_limit"`

	DefaultProcessTime  float64 `json:"default_process_time"`
	DefaultProcessPower float64 `json:"default_process_power"`
	EnergyCapacity      int64   `json:"energy_capacity"`

	// ConsumesInputs moves ingredients into staging when a recipe starts
	// rather than when it completes.
	ConsumesInputs bool `json:"consumes_inputs"`
	// LosesProgress makes an idle processor wind its time back.
	LosesProgress bool `json:"loses_progress"`
	// Generator processors add power to their buffer instead of drawing it.
	Generator bool `json:"generator"`
	// SmartInput refuses to spread one ingredient over several slots.
	SmartInput bool `json:"smart_input"`
	// Configurable allows sorption and output settings to change.
	Configurable bool `json:"configurable"`
	// Upgradable enables speed and energy upgrades.
	Upgradable bool `json:"upgradable"`
}

// WithDefaults fills unset capacities and limits.
func (k Kind) WithDefaults() Kind {
	if k.InputTankCapacity <= 0 {
		k.InputTankCapacity = DefaultTankCapacity
	}
	if k.OutputTankCapacity <= 0 {
		k.OutputTankCapacity = DefaultTankCapacity
	}
	if k.StackLimit <= 0 {
		k.StackLimit = stack.DefaultStackLimit
	}
	return k
}

// Validate checks the kind is usable.
func (k Kind) Validate() error {
	var errs []error
	if k.Name == "" {
		errs = append(errs, errors.New("kind name is empty"))
	}
	for _, n := range []int{k.ItemInputSize, k.FluidInputSize, k.ItemOutputSize, k.FluidOutputSize} {
		if n < 0 {
			errs = append(errs, fmt.Errorf("%s: negative slot count %d", k.Name, n))
			break
		}
	}
	if k.DefaultProcessTime <= 0 {
		errs = append(errs, fmt.Errorf("%s: default process time must be positive", k.Name))
	}
	if k.DefaultProcessPower < 0 {
		errs = append(errs, fmt.Errorf("%s: default process power must not be negative", k.Name))
	}
	return errors.Join(errs...)
}

// Matches reports whether a handler's recipe shape fits the kind.
func (k Kind) Matches(cfg recipe.HandlerConfig) error {
	if cfg.ItemInputSize != k.ItemInputSize || cfg.FluidInputSize != k.FluidInputSize ||
		cfg.ItemOutputSize != k.ItemOutputSize || cfg.FluidOutputSize != k.FluidOutputSize {
		return fmt.Errorf("%s: handler %q shape %d/%d/%d/%d does not match kind %d/%d/%d/%d",
			k.Name, cfg.Name,
			cfg.ItemInputSize, cfg.FluidInputSize, cfg.ItemOutputSize, cfg.FluidOutputSize,
			k.ItemInputSize, k.FluidInputSize, k.ItemOutputSize, k.FluidOutputSize)
	}
	return nil
}

func (k Kind) itemSlots() int { return k.ItemInputSize + k.ItemOutputSize }
func (k Kind) tankCount() int { return k.FluidInputSize + k.FluidOutputSize }
