package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/millwork/internal/compiler"
	"github.com/roach88/millwork/internal/recipe"
	"github.com/roach88/millwork/internal/stack"
)

// LookupOptions holds flags for the lookup command.
type LookupOptions struct {
	*RootOptions
	Machine string
	Items   []string // id[:meta][*count], one per input slot
	Fluids  []string // id[*amount], one per input tank
}

// LookupResult is the payload of a successful lookup.
type LookupResult struct {
	Machine      string                `json:"machine"`
	Recipe       recipe.ExportedRecipe `json:"recipe"`
	ProcessTime  float64               `json:"process_time"`
	ProcessPower float64               `json:"process_power"`
	ItemOrder    []int                 `json:"item_order,omitempty"`
	FluidOrder   []int                 `json:"fluid_order,omitempty"`
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LookupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lookup [recipes-dir]",
		Short: "Find the recipe a machine would run for some inputs",
		Long: `Build the recipe registry and look up the first recipe a machine's
inputs satisfy.

Each --item fills the next input slot and each --fluid the next input
tank. Missing slots and tanks are empty. Use "empty" to skip a slot.

Exit codes:
  0 - A recipe matched
  1 - No recipe matched
  2 - Command error (unknown machine, bad stack, etc.)

Examples:
  millwork lookup ./recipes --machine furnace --item ingotIron
  millwork lookup ./recipes -m electrolyzer --fluid water*500
  millwork lookup ./recipes -m alloy --item empty --item ingotCopper:0*3`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Machine, "machine", "m", "", "machine kind (required)")
	cmd.Flags().StringArrayVar(&opts.Items, "item", nil, "input item stack (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Fluids, "fluid", nil, "input fluid stack (repeatable)")
	_ = cmd.MarkFlagRequired("machine")

	return cmd
}

func runLookup(opts *LookupOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	dir := recipesDir(args, cfg)

	bundle, _, err := loadBundle(f, dir)
	if err != nil {
		return err
	}
	res, _ := compiler.Build(cmd.Context(), bundle, buildOptions(cfg, commandLogger(opts.RootOptions, cmd)))

	h, ok := res.Handler(opts.Machine)
	if !ok {
		return f.Fail(ExitCommandError, ErrCodeUnknownKind, fmt.Sprintf("unknown machine %q", opts.Machine), nil)
	}
	hc := h.Config()

	items, err := parseInputs(opts.Items, hc.ItemInputSize, "item", parseItem)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeBadInput, err.Error(), nil)
	}
	fluids, err := parseInputs(opts.Fluids, hc.FluidInputSize, "fluid", parseFluid)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeBadInput, err.Error(), nil)
	}
	f.VerboseLog("Looking up %s with items %v and fluids %v", opts.Machine, items, fluids)

	info := h.Lookup(items, fluids)
	if info == nil {
		return f.Fail(ExitFailure, ErrCodeNoMatch, fmt.Sprintf("no %s recipe matches the inputs", opts.Machine), nil)
	}

	kind, _ := res.Kind(opts.Machine)
	out := LookupResult{
		Machine:      opts.Machine,
		Recipe:       recipe.NewExportedRecipe(info.Recipe),
		ProcessTime:  info.Recipe.BaseProcessTime(kind.DefaultProcessTime),
		ProcessPower: info.Recipe.BaseProcessPower(kind.DefaultProcessPower),
		ItemOrder:    info.ItemOrder,
		FluidOrder:   info.FluidOrder,
	}
	return f.Success(describeLookup(out, info.Recipe), out)
}

func describeLookup(out LookupResult, r *recipe.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: recipe #%d %s\n", out.Machine, r.ID, r)
	if r.Label != "" {
		in := append(append([]string{}, out.Recipe.ItemInputs...), out.Recipe.FluidInputs...)
		res := append(append([]string{}, out.Recipe.ItemOutputs...), out.Recipe.FluidOutputs...)
		fmt.Fprintf(&b, "  %s -> %s\n", strings.Join(in, " + "), strings.Join(res, " + "))
	}
	fmt.Fprintf(&b, "  time %g, power %g", out.ProcessTime, out.ProcessPower)
	return b.String()
}

// parseInputs parses up to size stacks and pads the rest with empty ones.
func parseInputs[S any](raw []string, size int, what string, parse func(string) (S, error)) ([]S, error) {
	if len(raw) > size {
		return nil, fmt.Errorf("%d %s input(s) given, machine has %d", len(raw), what, size)
	}
	out := make([]S, size)
	for i, s := range raw {
		v, err := parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseItem(s string) (stack.Item, error) {
	if strings.TrimSpace(s) == "empty" {
		return stack.Item{}, nil
	}
	return stack.ParseItem(s)
}

func parseFluid(s string) (stack.Fluid, error) {
	if strings.TrimSpace(s) == "empty" {
		return stack.Fluid{}, nil
	}
	return stack.ParseFluid(s)
}
