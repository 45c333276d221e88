package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/roach88/millwork/internal/compiler"
	"github.com/roach88/millwork/internal/engine"
	"github.com/roach88/millwork/internal/processor"
	"github.com/roach88/millwork/internal/stack"
	"github.com/roach88/millwork/internal/store"
	"github.com/roach88/millwork/internal/testutil"
)

// Harness runs one scenario against a fresh world.
type Harness struct {
	world *engine.World
	seq   *testutil.Sequence
	seen  int
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. The world is stepped
// explicitly, never by Run's wall clock pacing, so traces are reproducible.
//
// Execution flow:
// 1. Load and build the machines directory
// 2. Place processors and links
// 3. Execute steps, tracing commands and completions
// 4. Capture final state and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	result := NewResult()

	machines, err := buildMachines(ctx, scenario, logger, result)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	w := engine.New(machines,
		engine.WithStore(st),
		engine.WithLogger(logger),
		engine.WithIDGenerator(testutil.NewSequence("p")),
	)
	defer w.Close()

	h := &Harness{
		world: w,
		seq:   testutil.NewSequence(""),
	}

	if err := h.place(scenario); err != nil {
		return nil, fmt.Errorf("failed to place processors: %w", err)
	}

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for _, s := range w.Status() {
		result.State[s.ID] = h.state(s)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func buildMachines(ctx context.Context, s *Scenario, logger *slog.Logger, result *Result) (*compiler.Result, error) {
	bundle, errs := compiler.LoadDir(s.Machines, compiler.LoadModeCollectAll)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load machines: %w", errors.Join(errs...))
	}
	res, errs := compiler.Build(ctx, bundle, compiler.BuildOptions{
		Factor:     s.Factor,
		SmartInput: s.SmartInput,
		Logger:     logger,
	})
	for _, err := range errs {
		result.Rejected = append(result.Rejected, err.Error())
	}
	return res, nil
}

func (h *Harness) place(s *Scenario) error {
	for _, p := range s.Processors {
		if err := h.world.AddWithID(p.ID, p.Kind); err != nil {
			return err
		}
	}
	for _, l := range s.Links {
		side, err := processor.ParseSide(l.Side)
		if err != nil {
			return err
		}
		if err := h.world.Link(l.From, side, l.To); err != nil {
			return err
		}
	}
	return nil
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	if step.Tick > 0 {
		for range step.Tick {
			if err := h.world.Step(ctx); err != nil {
				return err
			}
		}
		return h.collectCompletions(ctx, result)
	}

	if step.Expect != nil {
		status, err := h.world.ProcessorStatus(step.Expect.Processor)
		if err != nil {
			return err
		}
		for _, msg := range compareState(*step.Expect, h.state(status)) {
			result.AddError(fmt.Sprintf("steps[%d] at tick %d: %s", index, h.world.Tick(), msg))
		}
		return nil
	}

	cmd, args, err := commandFor(step)
	if err != nil {
		return err
	}
	res := h.world.Apply(cmd)

	ev := TraceEvent{
		Seq:       h.seq.Next(),
		Tick:      h.world.Tick(),
		Type:      EventCommand,
		Processor: cmd.Processor,
		Op:        cmd.Op.String(),
		Args:      args,
		Result:    describeResult(cmd.Op, res),
	}
	result.Trace = append(result.Trace, ev)
	if res.Err != nil {
		result.AddError(fmt.Sprintf("steps[%d]: %s on %s: %v", index, ev.Op, cmd.Processor, res.Err))
	}
	return nil
}

// collectCompletions appends completions logged since the last call.
func (h *Harness) collectCompletions(ctx context.Context, result *Result) error {
	recs, err := h.world.Completions(ctx, "", 0)
	if err != nil {
		return err
	}
	for _, rec := range recs[min(h.seen, len(recs)):] {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:       h.seq.Next(),
			Tick:      rec.Tick,
			Type:      EventCompletion,
			Processor: rec.ProcessorID,
			Recipe:    rec.Recipe,
		})
	}
	h.seen = len(recs)
	return nil
}

// commandFor translates an action step to an engine command and a short
// description of its arguments.
func commandFor(step Step) (engine.Command, string, error) {
	switch {
	case step.SetItem != nil:
		item := stack.Item{}
		if step.SetItem.Item != "empty" {
			var err error
			if item, err = stack.ParseItem(step.SetItem.Item); err != nil {
				return engine.Command{}, "", err
			}
		}
		return engine.Command{Op: engine.OpSetItem, Processor: step.SetItem.Processor, Slot: step.SetItem.Slot, Item: item},
			fmt.Sprintf("slot %d %s", step.SetItem.Slot, item), nil

	case step.Insert != nil:
		side, err := processor.ParseSide(step.Insert.Side)
		if err != nil {
			return engine.Command{}, "", err
		}
		item, err := stack.ParseItem(step.Insert.Item)
		if err != nil {
			return engine.Command{}, "", err
		}
		return engine.Command{Op: engine.OpInsertItem, Processor: step.Insert.Processor, Side: side, Item: item},
			fmt.Sprintf("%s %s", side, item), nil

	case step.Extract != nil:
		side, err := processor.ParseSide(step.Extract.Side)
		if err != nil {
			return engine.Command{}, "", err
		}
		return engine.Command{Op: engine.OpExtractItem, Processor: step.Extract.Processor, Side: side, Slot: step.Extract.Slot, Amount: step.Extract.Count},
			fmt.Sprintf("%s slot %d x%d", side, step.Extract.Slot, step.Extract.Count), nil

	case step.Fill != nil:
		fluid, err := stack.ParseFluid(step.Fill.Fluid)
		if err != nil {
			return engine.Command{}, "", err
		}
		if step.Fill.Tank != nil {
			return engine.Command{Op: engine.OpFillTank, Processor: step.Fill.Processor, Slot: *step.Fill.Tank, Fluid: fluid},
				fmt.Sprintf("tank %d %s", *step.Fill.Tank, fluid), nil
		}
		side, err := processor.ParseSide(step.Fill.Side)
		if err != nil {
			return engine.Command{}, "", err
		}
		return engine.Command{Op: engine.OpFill, Processor: step.Fill.Processor, Side: side, Fluid: fluid},
			fmt.Sprintf("%s %s", side, fluid), nil

	case step.Drain != nil:
		side, err := processor.ParseSide(step.Drain.Side)
		if err != nil {
			return engine.Command{}, "", err
		}
		return engine.Command{Op: engine.OpDrain, Processor: step.Drain.Processor, Side: side, Amount: step.Drain.Amount},
			fmt.Sprintf("%s %d", side, step.Drain.Amount), nil

	case step.Charge != nil:
		return engine.Command{Op: engine.OpCharge, Processor: step.Charge.Processor, Amount: step.Charge.Amount},
			strconv.Itoa(step.Charge.Amount), nil

	case step.Upgrades != nil:
		u := processor.Upgrades{Speed: step.Upgrades.Speed, Energy: step.Upgrades.Energy}
		return engine.Command{Op: engine.OpSetUpgrades, Processor: step.Upgrades.Processor, Upgrades: u},
			fmt.Sprintf("speed %d energy %d", u.Speed, u.Energy), nil

	case step.Halt != "":
		return engine.Command{Op: engine.OpHalt, Processor: step.Halt, Halted: true}, "on", nil
	case step.Resume != "":
		return engine.Command{Op: engine.OpHalt, Processor: step.Resume, Halted: false}, "off", nil
	case step.Clear != "":
		return engine.Command{Op: engine.OpClear, Processor: step.Clear}, "", nil
	}
	return engine.Command{}, "", fmt.Errorf("step has no action")
}

func describeResult(op engine.Op, res engine.CommandResult) string {
	if res.Err != nil {
		return "error: " + res.Err.Error()
	}
	switch op {
	case engine.OpInsertItem:
		return "remainder " + res.Item.String()
	case engine.OpExtractItem:
		return "took " + res.Item.String()
	case engine.OpDrain:
		return "took " + res.Fluid.String()
	case engine.OpFill, engine.OpFillTank, engine.OpCharge:
		return "moved " + strconv.Itoa(res.Moved)
	}
	return "ok"
}

func (h *Harness) state(s engine.ProcessorStatus) ProcessorState {
	ps := ProcessorState{
		Kind:        s.Kind,
		Recipe:      s.Recipe,
		Time:        s.Time,
		Processing:  s.IsProcessing,
		Halted:      s.Halted,
		Energy:      s.Energy,
		Completions: s.Completions,
		Items:       []string{},
		Tanks:       make([]string, len(s.Tanks)),
	}
	_ = h.world.Inspect(s.ID, func(p *processor.Processor) {
		for _, item := range p.Items() {
			ps.Items = append(ps.Items, item.String())
		}
	})
	for i, t := range s.Tanks {
		ps.Tanks[i] = stack.Fluid{ID: t.ID, Amount: t.Amount}.String()
	}
	return ps
}
