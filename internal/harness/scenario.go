package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/millwork/internal/processor"
	"github.com/roach88/millwork/internal/stack"
)

// Scenario drives a small world of processors through a list of steps and
// checks what it produced.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Machines is the directory of CUE machine definitions to build.
	// Relative paths are resolved against the scenario file.
	Machines string `yaml:"machines"`

	// Factor and SmartInput are applied to every machine of the directory.
	Factor     bool `yaml:"factor,omitempty"`
	SmartInput bool `yaml:"smart_input,omitempty"`

	Processors []ProcessorSpec `yaml:"processors"`
	Links      []LinkSpec      `yaml:"links,omitempty"`

	// Steps run in order. Each step holds exactly one action.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated once every step has run.
	// Supported types: completion_count, completion_order, final_state
	Assertions []Assertion `yaml:"assertions"`
}

// ProcessorSpec places one processor in the world.
type ProcessorSpec struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`
}

// LinkSpec joins the From processor's Side face to the To processor.
type LinkSpec struct {
	From string `yaml:"from"`
	Side string `yaml:"side"`
	To   string `yaml:"to"`
}

// Step is one scenario action.
type Step struct {
	// Tick advances the world this many ticks.
	Tick int `yaml:"tick,omitempty"`

	SetItem  *ItemStep    `yaml:"set_item,omitempty"`
	Insert   *ItemStep    `yaml:"insert,omitempty"`
	Extract  *ItemStep    `yaml:"extract,omitempty"`
	Fill     *FluidStep   `yaml:"fill,omitempty"`
	Drain    *FluidStep   `yaml:"drain,omitempty"`
	Charge   *ChargeStep  `yaml:"charge,omitempty"`
	Upgrades *UpgradeStep `yaml:"upgrades,omitempty"`

	// Halt, Resume and Clear name a processor.
	Halt   string `yaml:"halt,omitempty"`
	Resume string `yaml:"resume,omitempty"`
	Clear  string `yaml:"clear,omitempty"`

	// Expect checks a processor's state at this point.
	Expect *Expectation `yaml:"expect,omitempty"`
}

// ItemStep moves items. SetItem uses Slot; Insert uses Side; Extract uses
// Side, Slot and Count.
type ItemStep struct {
	Processor string `yaml:"processor"`
	Slot      int    `yaml:"slot,omitempty"`
	Side      string `yaml:"side,omitempty"`
	Item      string `yaml:"item,omitempty"`
	Count     int    `yaml:"count,omitempty"`
}

// FluidStep moves fluid. Fill targets Tank directly when set, otherwise it
// goes through Side. Drain uses Side and Amount.
type FluidStep struct {
	Processor string `yaml:"processor"`
	Tank      *int   `yaml:"tank,omitempty"`
	Side      string `yaml:"side,omitempty"`
	Fluid     string `yaml:"fluid,omitempty"`
	Amount    int    `yaml:"amount,omitempty"`
}

// ChargeStep pushes energy into a processor's buffer.
type ChargeStep struct {
	Processor string `yaml:"processor"`
	Amount    int    `yaml:"amount"`
}

// UpgradeStep sets a processor's upgrade counts.
type UpgradeStep struct {
	Processor string `yaml:"processor"`
	Speed     int    `yaml:"speed,omitempty"`
	Energy    int    `yaml:"energy,omitempty"`
}

// Expectation is a partial view of a processor's state. Only the fields
// present are compared. Items and Tanks are keyed by slot and tank index
// and use the "id[:meta]*count" notation, or "empty".
type Expectation struct {
	Processor   string         `yaml:"processor"`
	Recipe      *string        `yaml:"recipe,omitempty"`
	Time        *float64       `yaml:"time,omitempty"`
	Processing  *bool          `yaml:"processing,omitempty"`
	Halted      *bool          `yaml:"halted,omitempty"`
	Energy      *int64         `yaml:"energy,omitempty"`
	Completions *int64         `yaml:"completions,omitempty"`
	Items       map[int]string `yaml:"items,omitempty"`
	Tanks       map[int]string `yaml:"tanks,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "completion_count": completions, optionally per processor and recipe
	// - "completion_order": recipe labels in completion order
	// - "final_state": a processor's state after the last step
	Type string `yaml:"type"`

	Processor string       `yaml:"processor,omitempty"`
	Recipe    string       `yaml:"recipe,omitempty"`
	Count     int          `yaml:"count,omitempty"`
	Recipes   []string     `yaml:"recipes,omitempty"`
	State     *Expectation `yaml:"state,omitempty"`
}

// Assertion type constants.
const (
	AssertCompletionCount = "completion_count"
	AssertCompletionOrder = "completion_order"
	AssertFinalState      = "final_state"
)

// LoadScenario reads and parses a scenario YAML file. The machines
// directory is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving a relative machines path
// against baseDir.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	// Reject unknown fields so typos such as "assertion:" fail loudly.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Machines != "" && !filepath.IsAbs(scenario.Machines) && baseDir != "" {
		scenario.Machines = filepath.Join(baseDir, scenario.Machines)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Machines == "" {
		return fmt.Errorf("machines directory is required")
	}
	if info, err := os.Stat(s.Machines); err != nil || !info.IsDir() {
		return fmt.Errorf("machines directory not found: %s", s.Machines)
	}
	if len(s.Processors) == 0 {
		return fmt.Errorf("processors list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	ids := make(map[string]bool, len(s.Processors))
	for i, p := range s.Processors {
		if p.ID == "" {
			return fmt.Errorf("processors[%d]: id is required", i)
		}
		if p.Kind == "" {
			return fmt.Errorf("processors[%d]: kind is required", i)
		}
		if ids[p.ID] {
			return fmt.Errorf("processors[%d]: duplicate id %q", i, p.ID)
		}
		ids[p.ID] = true
	}

	for i, l := range s.Links {
		if !ids[l.From] || !ids[l.To] {
			return fmt.Errorf("links[%d]: unknown processor in %s -> %s", i, l.From, l.To)
		}
		if _, err := processor.ParseSide(l.Side); err != nil {
			return fmt.Errorf("links[%d]: %w", i, err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(step, ids); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, ids); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step, ids map[string]bool) error {
	var target string
	actions := 0
	count := func(present bool, proc string) {
		if present {
			actions++
			target = proc
		}
	}
	count(step.Tick != 0, "")
	count(step.SetItem != nil, procOf(step.SetItem))
	count(step.Insert != nil, procOf(step.Insert))
	count(step.Extract != nil, procOf(step.Extract))
	count(step.Fill != nil, fluidProcOf(step.Fill))
	count(step.Drain != nil, fluidProcOf(step.Drain))
	count(step.Charge != nil, chargeProcOf(step.Charge))
	count(step.Upgrades != nil, upgradeProcOf(step.Upgrades))
	count(step.Halt != "", step.Halt)
	count(step.Resume != "", step.Resume)
	count(step.Clear != "", step.Clear)
	count(step.Expect != nil, expectProcOf(step.Expect))

	if actions != 1 {
		return fmt.Errorf("exactly one action is required, found %d", actions)
	}
	if step.Tick < 0 {
		return fmt.Errorf("tick must be positive, got %d", step.Tick)
	}
	if step.Tick > 0 {
		return nil
	}
	if !ids[target] {
		return fmt.Errorf("unknown processor %q", target)
	}

	switch {
	case step.SetItem != nil:
		if step.SetItem.Item != "empty" {
			if _, err := stack.ParseItem(step.SetItem.Item); err != nil {
				return err
			}
		}
	case step.Insert != nil:
		if _, err := processor.ParseSide(step.Insert.Side); err != nil {
			return err
		}
		if _, err := stack.ParseItem(step.Insert.Item); err != nil {
			return err
		}
	case step.Extract != nil:
		if _, err := processor.ParseSide(step.Extract.Side); err != nil {
			return err
		}
		if step.Extract.Count <= 0 {
			return fmt.Errorf("extract count must be positive")
		}
	case step.Fill != nil:
		if step.Fill.Tank == nil {
			if _, err := processor.ParseSide(step.Fill.Side); err != nil {
				return err
			}
		}
		if _, err := stack.ParseFluid(step.Fill.Fluid); err != nil {
			return err
		}
	case step.Drain != nil:
		if _, err := processor.ParseSide(step.Drain.Side); err != nil {
			return err
		}
		if step.Drain.Amount <= 0 {
			return fmt.Errorf("drain amount must be positive")
		}
	case step.Charge != nil:
		if step.Charge.Amount <= 0 {
			return fmt.Errorf("charge amount must be positive")
		}
	}
	return nil
}

func validateAssertion(a Assertion, ids map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("type is required")
	}

	switch a.Type {
	case AssertCompletionCount:
		if a.Processor != "" && !ids[a.Processor] {
			return fmt.Errorf("unknown processor %q", a.Processor)
		}
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative for completion_count")
		}
	case AssertCompletionOrder:
		if len(a.Recipes) == 0 {
			return fmt.Errorf("recipes list is required for completion_order")
		}
		if a.Processor != "" && !ids[a.Processor] {
			return fmt.Errorf("unknown processor %q", a.Processor)
		}
	case AssertFinalState:
		if a.State == nil {
			return fmt.Errorf("state is required for final_state")
		}
		if !ids[a.State.Processor] {
			return fmt.Errorf("unknown processor %q", a.State.Processor)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func procOf(s *ItemStep) string {
	if s == nil {
		return ""
	}
	return s.Processor
}

func fluidProcOf(s *FluidStep) string {
	if s == nil {
		return ""
	}
	return s.Processor
}

func chargeProcOf(s *ChargeStep) string {
	if s == nil {
		return ""
	}
	return s.Processor
}

func upgradeProcOf(s *UpgradeStep) string {
	if s == nil {
		return ""
	}
	return s.Processor
}

func expectProcOf(e *Expectation) string {
	if e == nil {
		return ""
	}
	return e.Processor
}
