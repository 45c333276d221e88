package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/millwork/internal/compiler"
)

// ValidationResult is the payload of the validate command.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Machines []string `json:"machines"`
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [recipes-dir]",
		Short: "Compile machines and register their recipes",
		Long: `Compile the CUE machine definitions of a directory, register every
recipe and build the lookup caches.

Reports machines that fail validation and recipes the handlers reject.
The directory defaults to recipes.dir from the configuration.

Exit codes:
  0 - Every machine and recipe accepted
  1 - Something was rejected
  2 - Command error (directory missing, CUE does not build, etc.)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	dir := recipesDir(args, cfg)

	bundle, problems, err := loadBundle(f, dir)
	if err != nil {
		return err
	}
	res, buildErrs := compiler.Build(cmd.Context(), bundle, buildOptions(cfg, commandLogger(opts, cmd)))
	problems = append(problems, buildErrs...)

	out := ValidationResult{
		Valid:    len(problems) == 0,
		Machines: slices.Sorted(maps.Keys(res.Kinds)),
		Accepted: res.Accepted,
		Rejected: res.Rejected,
		Errors:   errorStrings(problems),
	}
	for _, name := range out.Machines {
		if h, ok := res.Handler(name); ok {
			f.VerboseLog("Machine %s: %d recipe(s)", name, len(h.Recipes()))
		}
	}

	if len(problems) > 0 {
		listErrors(f, problems)
		return f.Fail(ExitFailure, ErrCodeRejected,
			fmt.Sprintf("%d problem(s) in %s", len(problems), dir), out)
	}
	return f.Success(
		fmt.Sprintf("✓ %d machine(s), %d recipe(s) valid", len(out.Machines), out.Accepted), out)
}
