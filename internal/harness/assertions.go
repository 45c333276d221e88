package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			switch ev.Type {
			case EventCommand:
				fmt.Fprintf(&buf, "  [%d] t=%d %s %s %s -> %s\n", ev.Seq, ev.Tick, ev.Processor, ev.Op, ev.Args, ev.Result)
			case EventCompletion:
				fmt.Fprintf(&buf, "  [%d] t=%d %s completed %s\n", ev.Seq, ev.Tick, ev.Processor, ev.Recipe)
			}
		}
	}
	return buf.String()
}

// assertCompletionCount counts completions, optionally restricted to one
// processor and one recipe label.
func assertCompletionCount(result *Result, a Assertion) error {
	count := 0
	for _, ev := range result.Completions(a.Processor) {
		if a.Recipe == "" || ev.Recipe == a.Recipe {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertCompletionCount,
			Expected: fmt.Sprintf("%d completions%s", a.Count, describeFilter(a)),
			Actual:   fmt.Sprintf("%d completions", count),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertCompletionOrder checks the recipe labels of every completion, in
// order, optionally for one processor.
func assertCompletionOrder(result *Result, a Assertion) error {
	var got []string
	for _, ev := range result.Completions(a.Processor) {
		got = append(got, ev.Recipe)
	}
	if !slices.Equal(got, a.Recipes) {
		return &AssertionError{
			Type:     AssertCompletionOrder,
			Expected: fmt.Sprintf("recipes %v%s", a.Recipes, describeFilter(a)),
			Actual:   fmt.Sprintf("recipes %v", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertFinalState(result *Result, a Assertion) error {
	if a.State == nil {
		return fmt.Errorf("final_state assertion requires state")
	}
	state, ok := result.State[a.State.Processor]
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("processor %s", a.State.Processor),
			Actual:   "processor not found",
		}
	}
	if diffs := compareState(*a.State, state); len(diffs) > 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("state of %s to match", a.State.Processor),
			Actual:   strings.Join(diffs, "; "),
		}
	}
	return nil
}

func describeFilter(a Assertion) string {
	var parts []string
	if a.Processor != "" {
		parts = append(parts, "processor "+a.Processor)
	}
	if a.Recipe != "" {
		parts = append(parts, "recipe "+a.Recipe)
	}
	if len(parts) == 0 {
		return ""
	}
	return " for " + strings.Join(parts, ", ")
}

// compareState lists every field of e that differs from s.
func compareState(e Expectation, s ProcessorState) []string {
	var diffs []string
	mismatch := func(field string, want, got any) {
		diffs = append(diffs, fmt.Sprintf("%s %s: expected %v, got %v", e.Processor, field, want, got))
	}

	if e.Recipe != nil && *e.Recipe != s.Recipe {
		mismatch("recipe", *e.Recipe, s.Recipe)
	}
	if e.Time != nil && *e.Time != s.Time {
		mismatch("time", *e.Time, s.Time)
	}
	if e.Processing != nil && *e.Processing != s.Processing {
		mismatch("processing", *e.Processing, s.Processing)
	}
	if e.Halted != nil && *e.Halted != s.Halted {
		mismatch("halted", *e.Halted, s.Halted)
	}
	if e.Energy != nil && *e.Energy != s.Energy {
		mismatch("energy", *e.Energy, s.Energy)
	}
	if e.Completions != nil && *e.Completions != s.Completions {
		mismatch("completions", *e.Completions, s.Completions)
	}
	for _, slot := range sortedKeys(e.Items) {
		if got := indexOr(s.Items, slot); got != e.Items[slot] {
			mismatch(fmt.Sprintf("item slot %d", slot), e.Items[slot], got)
		}
	}
	for _, tank := range sortedKeys(e.Tanks) {
		if got := indexOr(s.Tanks, tank); got != e.Tanks[tank] {
			mismatch(fmt.Sprintf("tank %d", tank), e.Tanks[tank], got)
		}
	}
	return diffs
}

func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func indexOr(list []string, i int) string {
	if i < 0 || i >= len(list) {
		return "<no such index>"
	}
	return list[i]
}

// EvaluateAssertions runs every assertion against a result and returns the
// failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertCompletionCount:
			err = assertCompletionCount(result, a)
		case AssertCompletionOrder:
			err = assertCompletionOrder(result, a)
		case AssertFinalState:
			err = assertFinalState(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
