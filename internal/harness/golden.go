package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/millwork/internal/stack"
)

// TraceSnapshot captures the trace and final state of a scenario run.
// It is serialized with canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	State        map[string]ProcessorState
}

// toCanonicalMap converts the snapshot to the plain values
// stack.MarshalCanonical accepts.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"seq":       ev.Seq,
			"tick":      ev.Tick,
			"type":      ev.Type,
			"processor": ev.Processor,
		}
		if ev.Op != "" {
			m["op"] = ev.Op
		}
		if ev.Args != "" {
			m["args"] = ev.Args
		}
		if ev.Result != "" {
			m["result"] = ev.Result
		}
		if ev.Recipe != "" {
			m["recipe"] = ev.Recipe
		}
		trace[i] = m
	}

	final := make(map[string]any, len(s.State))
	for id, st := range s.State {
		m := map[string]any{
			"kind":        st.Kind,
			"time":        st.Time,
			"processing":  st.Processing,
			"halted":      st.Halted,
			"energy":      st.Energy,
			"completions": st.Completions,
			"items":       st.Items,
			"tanks":       st.Tanks,
		}
		if st.Recipe != "" {
			m["recipe"] = st.Recipe
		}
		final[id] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
		"final":         final,
	}
}

// RunWithGolden executes a scenario and compares its trace and final state
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		State:        result.State,
	}
	data, err := stack.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
