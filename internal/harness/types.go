package harness

// Trace event types.
const (
	EventCommand    = "command"
	EventCompletion = "completion"
)

// TraceEvent is one entry of a scenario trace: a command applied by a step
// or a recipe completion produced by a tick.
type TraceEvent struct {
	Seq       int64  `json:"seq"`
	Tick      int64  `json:"tick"`
	Type      string `json:"type"`
	Processor string `json:"processor"`
	Op        string `json:"op,omitempty"`
	Args      string `json:"args,omitempty"`
	Result    string `json:"result,omitempty"`
	Recipe    string `json:"recipe,omitempty"`
}

// ProcessorState is the observable state of one processor at the end of a
// scenario, in the same notation expectations use.
type ProcessorState struct {
	Kind        string   `json:"kind"`
	Recipe      string   `json:"recipe,omitempty"`
	Time        float64  `json:"time"`
	Processing  bool     `json:"processing"`
	Halted      bool     `json:"halted"`
	Energy      int64    `json:"energy"`
	Completions int64    `json:"completions"`
	Items       []string `json:"items"`
	Tanks       []string `json:"tanks"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds commands and completions in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`

	// State is the final state keyed by processor id.
	State map[string]ProcessorState `json:"state,omitempty"`

	// Rejected lists recipes the machines directory failed to register.
	Rejected []string `json:"rejected,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]ProcessorState),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Completions returns the completion events of the trace, optionally
// restricted to one processor.
func (r *Result) Completions(processor string) []TraceEvent {
	var out []TraceEvent
	for _, ev := range r.Trace {
		if ev.Type == EventCompletion && (processor == "" || ev.Processor == processor) {
			out = append(out, ev)
		}
	}
	return out
}
