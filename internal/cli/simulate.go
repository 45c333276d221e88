package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/millwork/internal/harness"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Trace bool // print every trace event
}

// ScenarioResult holds the result of a single scenario run.
type ScenarioResult struct {
	Name        string                            `json:"name"`
	File        string                            `json:"file"`
	Pass        bool                              `json:"pass"`
	Errors      []string                          `json:"errors,omitempty"`
	Rejected    []string                          `json:"rejected,omitempty"`
	Completions int                               `json:"completions"`
	Trace       []harness.TraceEvent              `json:"trace,omitempty"`
	State       map[string]harness.ProcessorState `json:"state,omitempty"`
}

// SimulateResult holds the overall simulate result.
type SimulateResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml|dir>...",
		Short: "Run processor scenarios",
		Long: `Run YAML scenarios against freshly built machines.

Each scenario places processors, links them, drives them through its
steps and checks its expectations and assertions. A directory runs every
.yaml file in it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (missing file, invalid scenario, etc.)

Examples:
  millwork simulate ./scenarios/furnace_steel.yaml
  millwork simulate ./scenarios --trace
  millwork simulate ./scenarios --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "include the full trace")

	return cmd
}

func runSimulate(opts *SimulateOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	files, err := findScenarioFiles(args)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScenario, err.Error(), nil)
	}
	if len(files) == 0 {
		return f.Fail(ExitCommandError, ErrCodeScenario, "no scenarios found", nil)
	}

	result := SimulateResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		f.VerboseLog("Running %s", file)
		sr, err := runScenario(cmd, file, opts.Trace)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeScenario, err.Error(), nil)
		}
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if f.JSON() {
		if err := f.Success("", result); err != nil {
			return err
		}
	} else {
		printScenarios(f, result, opts.Trace)
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("[%s] %d of %d scenario(s) failed", ErrCodeAssertion, result.Failed, result.Total))
	}
	return nil
}

func runScenario(cmd *cobra.Command, file string, trace bool) (ScenarioResult, error) {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{}, fmt.Errorf("%s: %w", file, err)
	}
	res, err := harness.RunContext(cmd.Context(), scenario)
	if err != nil {
		return ScenarioResult{}, fmt.Errorf("%s: %w", scenario.Name, err)
	}

	sr := ScenarioResult{
		Name:        scenario.Name,
		File:        file,
		Pass:        res.Pass,
		Errors:      res.Errors,
		Rejected:    res.Rejected,
		Completions: len(res.Completions("")),
		State:       res.State,
	}
	if trace {
		sr.Trace = res.Trace
	}
	return sr, nil
}

func printScenarios(f *OutputFormatter, result SimulateResult, trace bool) {
	w := f.Writer
	for _, sr := range result.Scenarios {
		mark := "✓"
		if !sr.Pass {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s (%d completion(s))\n", mark, sr.Name, sr.Completions)
		for _, r := range sr.Rejected {
			fmt.Fprintf(w, "    rejected: %s\n", r)
		}
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
		if trace {
			for _, ev := range sr.Trace {
				fmt.Fprintf(w, "    %s\n", formatEvent(ev))
			}
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}

func formatEvent(ev harness.TraceEvent) string {
	if ev.Type == harness.EventCompletion {
		return fmt.Sprintf("[%d] t=%d %s completed %s", ev.Seq, ev.Tick, ev.Processor, ev.Recipe)
	}
	return fmt.Sprintf("[%d] t=%d %s %s %s -> %s", ev.Seq, ev.Tick, ev.Processor, ev.Op, ev.Args, ev.Result)
}

// findScenarioFiles expands directories to their .yaml and .yml files,
// sorted by name. Plain file arguments keep their order.
func findScenarioFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("scenario path not found: %s", arg)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			ext := filepath.Ext(e.Name())
			if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
