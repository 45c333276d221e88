package engine

import "github.com/roach88/millwork/internal/processor"

// Link places neighbor on face side of id, and id on the opposite face of
// neighbor. Re-linking the same pair is a no-op.
func (w *World) Link(id string, side processor.Side, neighbor string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !side.Valid() {
		return invalidLink(id, "invalid face %d", int(side))
	}
	if id == neighbor {
		return invalidLink(id, "cannot link a processor to itself")
	}
	a, ok := w.nodes[id]
	if !ok {
		return unknownProcessor(id)
	}
	b, ok := w.nodes[neighbor]
	if !ok {
		return unknownProcessor(neighbor)
	}
	back := side.Opposite()
	if cur := a.links[side]; cur != "" && cur != neighbor {
		return invalidLink(id, "face %s already linked to %s", side, cur)
	}
	if cur := b.links[back]; cur != "" && cur != id {
		return invalidLink(neighbor, "face %s already linked to %s", back, cur)
	}
	a.links[side] = neighbor
	b.links[back] = id
	return nil
}

// Unlink clears face side of id and the matching face of its neighbour.
func (w *World) Unlink(id string, side processor.Side) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !side.Valid() {
		return invalidLink(id, "invalid face %d", int(side))
	}
	n, ok := w.nodes[id]
	if !ok {
		return unknownProcessor(id)
	}
	w.unlinkLocked(n, side)
	return nil
}

func (w *World) unlinkLocked(n *node, side processor.Side) {
	other, ok := w.nodes[n.links[side]]
	n.links[side] = ""
	if ok && other.links[side.Opposite()] == n.id {
		other.links[side.Opposite()] = ""
	}
}

// Neighbor returns the id linked on a face, or "".
func (w *World) Neighbor(id string, side processor.Side) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, ok := w.nodes[id]
	if !ok || !side.Valid() {
		return ""
	}
	return n.links[side]
}

// neighbors exposes a node's linked processors to the processor package.
type neighbors struct {
	w *World
	n *node
}

var _ processor.Neighbors = neighbors{}

func (nb neighbors) lookup(side processor.Side) (*processor.Processor, bool) {
	if !side.Valid() {
		return nil, false
	}
	other, ok := nb.w.nodes[nb.n.links[side]]
	if !ok {
		return nil, false
	}
	return other.proc, true
}

func (nb neighbors) FluidAcceptor(side processor.Side) (processor.FluidAcceptor, bool) {
	return nb.lookup(side)
}

func (nb neighbors) ItemAcceptor(side processor.Side) (processor.ItemAcceptor, bool) {
	return nb.lookup(side)
}
