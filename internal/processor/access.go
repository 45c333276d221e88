package processor

import (
	"fmt"
	"slices"

	"github.com/roach88/millwork/internal/stack"
)

// onInputChanged re-matches and re-checks activity.
func (p *Processor) onInputChanged() {
	p.refreshRecipe()
	p.refreshActivity()
}

// onOutputChanged only re-checks activity.
func (p *Processor) onOutputChanged() {
	p.refreshActivity()
}

func (p *Processor) onSlotChanged(slot int) {
	if p.isInputSlot(slot) {
		p.onInputChanged()
	} else {
		p.onOutputChanged()
	}
}

func (p *Processor) onTankChanged(tank int) {
	if p.isInputTank(tank) {
		p.onInputChanged()
	} else {
		p.onOutputChanged()
	}
}

func (p *Processor) checkSlot(slot int) error {
	if slot < 0 || slot >= len(p.items) {
		return fmt.Errorf("%s: slot %d out of range [0,%d)", p.kind.Name, slot, len(p.items))
	}
	return nil
}

func (p *Processor) checkTank(tank int) error {
	if tank < 0 || tank >= len(p.tanks) {
		return fmt.Errorf("%s: tank %d out of range [0,%d)", p.kind.Name, tank, len(p.tanks))
	}
	return nil
}

// Item returns the contents of a slot; inputs come first, then outputs.
func (p *Processor) Item(slot int) stack.Item {
	if p.checkSlot(slot) != nil {
		return stack.Item{}
	}
	return p.items[slot]
}

// Items returns a copy of every slot.
func (p *Processor) Items() []stack.Item {
	return slices.Clone(p.items)
}

// ConsumedItems returns a copy of the item staging buffer.
func (p *Processor) ConsumedItems() []stack.Item {
	return slices.Clone(p.consumedItems)
}

// SetItem replaces a slot's contents directly, bypassing sorption and
// validity checks.
func (p *Processor) SetItem(slot int, s stack.Item) error {
	if err := p.checkSlot(slot); err != nil {
		return err
	}
	if s.IsEmpty() {
		s = stack.Item{}
	}
	p.items[slot] = s
	p.onSlotChanged(slot)
	return nil
}

// TakeItem removes up to n items from a slot directly and returns them.
func (p *Processor) TakeItem(slot, n int) stack.Item {
	if p.checkSlot(slot) != nil || n <= 0 {
		return stack.Item{}
	}
	cur := p.items[slot]
	if cur.IsEmpty() {
		return stack.Item{}
	}
	taken := min(n, cur.Count)
	p.items[slot] = cur.WithCount(cur.Count - taken)
	p.onSlotChanged(slot)
	return cur.WithCount(taken)
}

// IsItemValidForSlot reports whether s may be inserted into an input slot.
func (p *Processor) IsItemValidForSlot(slot int, s stack.Item) bool {
	if s.IsEmpty() || !p.isInputSlot(slot) {
		return false
	}
	if p.kind.SmartInput {
		return p.handler.IsValidItemInputSmart(slot, s, p.info, p.items[:p.kind.ItemInputSize])
	}
	return p.handler.IsValidItemInput(slot, s)
}

// ItemSorption returns a slot's sorption on a face.
func (p *Processor) ItemSorption(side Side, slot int) Sorption {
	return p.itemConnections.get(side, slot)
}

// InsertItem inserts into an input slot through a face and returns the
// remainder.
func (p *Processor) InsertItem(side Side, slot int, s stack.Item, simulate bool) stack.Item {
	if s.IsEmpty() || !p.isInputSlot(slot) || !p.ItemSorption(side, slot).CanFill() ||
		!p.IsItemValidForSlot(slot, s) {
		return s
	}
	cur := p.items[slot]
	var n int
	switch {
	case cur.IsEmpty():
		n = min(s.Count, p.stackLimit())
	case cur.Stackable(s):
		n = min(s.Count, p.stackLimit()-cur.Count)
	}
	if n <= 0 {
		return s
	}
	if !simulate {
		if cur.IsEmpty() {
			p.items[slot] = s.WithCount(n)
		} else {
			p.items[slot] = cur.WithCount(cur.Count + n)
		}
		p.onInputChanged()
	}
	return s.WithCount(s.Count - n)
}

// AcceptItem offers s to every input slot in order and returns what no
// slot took.
func (p *Processor) AcceptItem(side Side, s stack.Item, simulate bool) stack.Item {
	rest := s
	for slot := range p.kind.ItemInputSize {
		if rest.IsEmpty() {
			break
		}
		rest = p.InsertItem(side, slot, rest, simulate)
	}
	return rest
}

// ExtractItem takes up to n items from a slot through a face.
func (p *Processor) ExtractItem(side Side, slot, n int, simulate bool) stack.Item {
	if p.checkSlot(slot) != nil || n <= 0 || !p.ItemSorption(side, slot).CanDrain() {
		return stack.Item{}
	}
	cur := p.items[slot]
	if cur.IsEmpty() {
		return stack.Item{}
	}
	taken := min(n, cur.Count)
	if !simulate {
		p.items[slot] = cur.WithCount(cur.Count - taken)
		p.onSlotChanged(slot)
	}
	return cur.WithCount(taken)
}

// Tank returns a summary of a tank.
func (p *Processor) Tank(tank int) TankInfo {
	if p.checkTank(tank) != nil {
		return TankInfo{}
	}
	return p.tanks[tank].Info()
}

// Tanks returns a summary of every tank, inputs first.
func (p *Processor) Tanks() []TankInfo {
	out := make([]TankInfo, len(p.tanks))
	for i, t := range p.tanks {
		out[i] = t.Info()
	}
	return out
}

// ConsumedFluids returns the fluid staging buffer.
func (p *Processor) ConsumedFluids() []stack.Fluid {
	out := make([]stack.Fluid, len(p.consumedTanks))
	for i, t := range p.consumedTanks {
		out[i] = t.Fluid()
	}
	return out
}

// TankSorption returns a tank's sorption on a face.
func (p *Processor) TankSorption(side Side, tank int) Sorption {
	return p.fluidConnections.get(side, tank)
}

// isNextToFill prevents one fluid from spreading over several input tanks
// when inputs are separated.
func (p *Processor) isNextToFill(side Side, tank int, f stack.Fluid) bool {
	if !p.inputTanksSeparated {
		return true
	}
	for i, t := range p.tanks {
		if i != tank && p.TankSorption(side, i).CanFill() && !t.IsEmpty() && t.Fluid().SameFluid(f) {
			return false
		}
	}
	return true
}

// Fill puts f into the first tank, in declared order, that accepts it
// through side, and returns the amount accepted.
func (p *Processor) Fill(side Side, f stack.Fluid, doFill bool) int {
	if f.IsEmpty() {
		return 0
	}
	for i, t := range p.tanks {
		if !p.TankSorption(side, i).CanFill() || !t.CanFillType(f) || !p.isNextToFill(side, i, f) ||
			t.IsFull() || (!t.IsEmpty() && !t.Fluid().SameFluid(f)) {
			continue
		}
		n := t.Fill(f, doFill)
		if doFill && n > 0 {
			p.onTankChanged(i)
		}
		return n
	}
	return 0
}

// FillTank fills a specific tank directly, bypassing sorption.
func (p *Processor) FillTank(tank int, f stack.Fluid) (int, error) {
	if err := p.checkTank(tank); err != nil {
		return 0, err
	}
	t := p.tanks[tank]
	if !t.CanFillType(f) {
		return 0, nil
	}
	n := t.Fill(f, true)
	if n > 0 {
		p.onTankChanged(tank)
	}
	return n, nil
}

// Drain takes up to n from the first tank that gives through side.
func (p *Processor) Drain(side Side, n int, doDrain bool) stack.Fluid {
	for i, t := range p.tanks {
		if !p.TankSorption(side, i).CanDrain() || t.IsEmpty() {
			continue
		}
		out := t.Drain(n, doDrain)
		if doDrain && !out.IsEmpty() {
			p.onTankChanged(i)
		}
		return out
	}
	return stack.Fluid{}
}

// DrainFluid takes up to f.Amount of f's fluid from the first tank holding
// it that gives through side.
func (p *Processor) DrainFluid(side Side, f stack.Fluid, doDrain bool) stack.Fluid {
	if f.IsEmpty() {
		return stack.Fluid{}
	}
	for i, t := range p.tanks {
		if !p.TankSorption(side, i).CanDrain() || t.IsEmpty() || !t.Fluid().SameFluid(f) {
			continue
		}
		out := t.Drain(f.Amount, doDrain)
		if doDrain && !out.IsEmpty() {
			p.onTankChanged(i)
		}
		return out
	}
	return stack.Fluid{}
}

// ClearTank empties one tank.
func (p *Processor) ClearTank(tank int) error {
	if err := p.checkTank(tank); err != nil {
		return err
	}
	p.tanks[tank].Clear()
	p.onTankChanged(tank)
	return nil
}

// ClearAll empties every slot, tank and staging buffer and resets progress.
func (p *Processor) ClearAll() {
	for i := range p.items {
		p.items[i] = stack.Item{}
	}
	for i := range p.consumedItems {
		p.consumedItems[i] = stack.Item{}
	}
	for _, t := range p.tanks {
		t.Clear()
	}
	for _, t := range p.consumedTanks {
		t.Clear()
	}
	p.currentTime = 0
	p.resetTime = 0
	p.refreshAll()
}
