package engine

import (
	"github.com/roach88/millwork/internal/processor"
)

// ProcessorStatus is the read-only view served to observers.
type ProcessorStatus struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Recipe      string            `json:"recipe,omitempty"`
	Halted      bool              `json:"halted"`
	Completions int64             `json:"completions"`
	Energy      int64             `json:"energy"`
	Links       map[string]string `json:"links,omitempty"`

	processor.UpdateMessage
}

// Status returns every processor's status in insertion order.
func (w *World) Status() []ProcessorStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]ProcessorStatus, len(w.order))
	for i, n := range w.order {
		out[i] = n.status()
	}
	return out
}

// ProcessorStatus returns one processor's status.
func (w *World) ProcessorStatus(id string) (ProcessorStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, ok := w.nodes[id]
	if !ok {
		return ProcessorStatus{}, unknownProcessor(id)
	}
	return n.status(), nil
}

// Snapshot returns one processor's persistent state.
func (w *World) Snapshot(id string) (processor.Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, ok := w.nodes[id]
	if !ok {
		return processor.Snapshot{}, unknownProcessor(id)
	}
	return n.proc.Snapshot(), nil
}

func (n *node) status() ProcessorStatus {
	s := ProcessorStatus{
		ID:            n.id,
		Kind:          n.kind,
		Halted:        n.proc.IsHalted(),
		Completions:   n.completions,
		Energy:        n.proc.Energy().Available(),
		UpdateMessage: n.proc.UpdateMessage(),
	}
	if r := n.proc.Recipe(); r != nil {
		s.Recipe = r.Label
	}
	for _, side := range processor.Sides {
		if nb := n.links[side]; nb != "" {
			if s.Links == nil {
				s.Links = make(map[string]string)
			}
			s.Links[side.String()] = nb
		}
	}
	return s
}
