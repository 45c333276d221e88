package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/millwork/internal/compiler"
	"github.com/roach88/millwork/internal/config"
	"github.com/roach88/millwork/internal/logging"
)

// recipesDir picks the positional directory, falling back to the
// configured one.
func recipesDir(args []string, cfg *config.Config) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Recipes.Dir
}

// buildOptions turns the recipes section of the config into compiler
// options.
func buildOptions(cfg *config.Config, logger *slog.Logger) compiler.BuildOptions {
	return compiler.BuildOptions{
		Factor:          cfg.Recipes.Factor,
		SmartInput:      cfg.Recipes.SmartInput,
		MaxPermutations: cfg.Recipes.MaxPermutations,
		Logger:          logger,
	}
}

// commandLogger returns the logger for one-shot commands: debug on stderr
// with --verbose, warnings only otherwise.
func commandLogger(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	return logging.New(cmd.ErrOrStderr(), "millwork", Version, level)
}

// loadBundle loads a recipe directory. Failures that leave nothing to
// build are printed and returned as command errors. Problems with single
// machines are returned alongside the bundle.
func loadBundle(f *OutputFormatter, dir string) (*compiler.Bundle, []error, error) {
	bundle, errs := compiler.LoadDir(dir, compiler.LoadModeCollectAll)
	if bundle == nil || len(bundle.Machines) == 0 {
		return nil, nil, failLoad(f, errs)
	}
	f.VerboseLog("Found %d CUE file(s) and %d machine(s) in %s", bundle.FileCount, len(bundle.Machines), dir)
	return bundle, errs, nil
}

func failLoad(f *OutputFormatter, errs []error) error {
	if len(errs) == 0 {
		return f.Fail(ExitCommandError, compiler.ErrCodeGeneric, "no machines found", nil)
	}
	var loadErr *compiler.LoadError
	if errors.As(errs[0], &loadErr) {
		return f.Fail(ExitCommandError, loadErr.Code, loadErr.Message, errorStrings(errs))
	}
	return f.Fail(ExitCommandError, compiler.ErrCodeGeneric, errs[0].Error(), errorStrings(errs))
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

// listErrors prints one problem per line in text mode.
func listErrors(f *OutputFormatter, errs []error) {
	if f.JSON() {
		return
	}
	for _, err := range errs {
		fmt.Fprintf(f.Writer, "  %v\n", err)
	}
}
