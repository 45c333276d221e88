package processor

import "github.com/roach88/millwork/internal/stack"

// FluidAcceptor is the capability a neighbour exposes to receive fluid.
type FluidAcceptor interface {
	Fill(side Side, f stack.Fluid, doFill bool) int
}

// ItemAcceptor is the capability a neighbour exposes to receive items.
type ItemAcceptor interface {
	AcceptItem(side Side, s stack.Item, simulate bool) stack.Item
}

// Neighbors resolves what sits on each face of a processor.
type Neighbors interface {
	FluidAcceptor(side Side) (FluidAcceptor, bool)
	ItemAcceptor(side Side) (ItemAcceptor, bool)
}

var (
	_ FluidAcceptor = (*Processor)(nil)
	_ ItemAcceptor  = (*Processor)(nil)
)

// PushFluids offers every output tank's contents to the neighbour on each
// face whose sorption lets the tank drain. Receivers never push back
// within the same call. It reports whether anything moved.
func (p *Processor) PushFluids(n Neighbors) bool {
	moved := false
	for _, side := range Sides {
		acceptor, ok := n.FluidAcceptor(side)
		if !ok {
			continue
		}
		for i := p.kind.FluidInputSize; i < len(p.tanks); i++ {
			t := p.tanks[i]
			if t.IsEmpty() || !p.TankSorption(side, i).CanDrain() {
				continue
			}
			accepted := acceptor.Fill(side.Opposite(), t.Fluid(), true)
			if accepted > 0 {
				t.Drain(accepted, true)
				moved = true
			}
		}
	}
	if moved {
		p.onOutputChanged()
	}
	return moved
}

// PushItems offers every output slot to the neighbour on each face whose
// sorption lets the slot drain. It reports whether anything moved.
func (p *Processor) PushItems(n Neighbors) bool {
	moved := false
	for _, side := range Sides {
		acceptor, ok := n.ItemAcceptor(side)
		if !ok {
			continue
		}
		for slot := p.kind.ItemInputSize; slot < len(p.items); slot++ {
			cur := p.items[slot]
			if cur.IsEmpty() || !p.ItemSorption(side, slot).CanDrain() {
				continue
			}
			rest := acceptor.AcceptItem(side.Opposite(), cur, false)
			if rest.Count < cur.Count {
				p.items[slot] = rest
				moved = true
			}
		}
	}
	if moved {
		p.onOutputChanged()
	}
	return moved
}
