package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/millwork/internal/compiler"
	"github.com/roach88/millwork/internal/recipe"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out      string   // output directory, defaults to recipes.export_dir
	Machines []string // machines to export, defaults to recipes.export or all
}

// ExportResult is the payload of the export command.
type ExportResult struct {
	Dir      string   `json:"dir"`
	Files    []string `json:"files"`
	Exported int      `json:"exported"`
	Rejected int      `json:"rejected"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export [recipes-dir]",
		Short: "Write registered recipes as JSON, one file per machine",
		Long: `Build the recipe registry and write <out>/<machine>.json for every
enabled machine.

Machines are chosen with --machine, then recipes.export from the
configuration, then every machine. Rejected recipes are left out of the
files and reported.

Examples:
  millwork export ./recipes
  millwork export ./recipes --out ./jei --machine furnace --machine press`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output directory (default recipes.export_dir)")
	cmd.Flags().StringSliceVarP(&opts.Machines, "machine", "m", nil, "machine to export (repeatable)")

	return cmd
}

func runExport(opts *ExportOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	dir := recipesDir(args, cfg)
	out := opts.Out
	if out == "" {
		out = cfg.Recipes.ExportDir
	}

	bundle, problems, err := loadBundle(f, dir)
	if err != nil {
		return err
	}

	integration := cfg.Recipes.Integration()
	if len(opts.Machines) > 0 {
		integration = make(map[string]bool, len(opts.Machines))
		for _, name := range opts.Machines {
			if _, ok := bundle.Machine(name); !ok {
				return f.Fail(ExitCommandError, ErrCodeUnknownKind, fmt.Sprintf("unknown machine %q", name), nil)
			}
			integration[name] = true
		}
	}
	if len(integration) == 0 {
		for _, m := range bundle.Machines {
			integration[m.Name] = true
		}
	}

	bo := buildOptions(cfg, commandLogger(opts.RootOptions, cmd))
	bo.Integration = integration
	bo.Exporter = recipe.JSONExporter{Dir: out}
	res, buildErrs := compiler.Build(cmd.Context(), bundle, bo)
	problems = append(problems, buildErrs...)
	listErrors(f, problems)

	result := ExportResult{Dir: out, Rejected: res.Rejected}
	for _, h := range res.Registry.Handlers() {
		if integration[h.Name()] {
			result.Files = append(result.Files, filepath.Join(out, h.Name()+".json"))
		}
	}
	result.Exported = res.Registry.ExportAll()
	if result.Exported < len(result.Files) {
		return f.Fail(ExitFailure, ErrCodeExportFailed,
			fmt.Sprintf("exported %d of %d machine(s) to %s", result.Exported, len(result.Files), out), result)
	}

	for _, file := range result.Files {
		f.VerboseLog("Wrote %s", file)
	}
	return f.Success(fmt.Sprintf("✓ Exported %d machine(s) to %s (%d recipe(s) rejected)",
		result.Exported, out, result.Rejected), result)
}
