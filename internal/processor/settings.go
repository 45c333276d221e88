package processor

import "fmt"

func (p *Processor) requireConfigurable() error {
	if !p.kind.Configurable {
		return fmt.Errorf("%s: connections are not configurable", p.kind.Name)
	}
	return nil
}

// SetItemSorption sets a slot's sorption on a face.
func (p *Processor) SetItemSorption(side Side, slot int, s Sorption) error {
	if err := p.requireConfigurable(); err != nil {
		return err
	}
	if !side.Valid() {
		return fmt.Errorf("invalid side %d", side)
	}
	if err := p.checkSlot(slot); err != nil {
		return err
	}
	p.itemConnections[side][slot] = s
	return nil
}

// SetTankSorption sets a tank's sorption on a face.
func (p *Processor) SetTankSorption(side Side, tank int, s Sorption) error {
	if err := p.requireConfigurable(); err != nil {
		return err
	}
	if !side.Valid() {
		return fmt.Errorf("invalid side %d", side)
	}
	if err := p.checkTank(tank); err != nil {
		return err
	}
	p.fluidConnections[side][tank] = s
	return nil
}

// ToggleItemSorption steps a slot's sorption on a face forward, or
// backward when reverse is set, and returns the new value.
func (p *Processor) ToggleItemSorption(side Side, slot int, reverse bool) (Sorption, error) {
	cycle := outputCycle
	if p.isInputSlot(slot) {
		cycle = inputCycle
	}
	next := p.ItemSorption(side, slot).next(cycle, reverse)
	if err := p.SetItemSorption(side, slot, next); err != nil {
		return SorptionNone, err
	}
	return next, nil
}

// ToggleTankSorption is ToggleItemSorption for tanks.
func (p *Processor) ToggleTankSorption(side Side, tank int, reverse bool) (Sorption, error) {
	cycle := outputCycle
	if p.isInputTank(tank) {
		cycle = inputCycle
	}
	next := p.TankSorption(side, tank).next(cycle, reverse)
	if err := p.SetTankSorption(side, tank, next); err != nil {
		return SorptionNone, err
	}
	return next, nil
}

// ItemOutputSetting returns a slot's output setting.
func (p *Processor) ItemOutputSetting(slot int) OutputSetting {
	if p.checkSlot(slot) != nil {
		return OutputDefault
	}
	return p.itemSettings[slot]
}

// SetItemOutputSetting changes an output slot's setting and re-checks
// activity.
func (p *Processor) SetItemOutputSetting(slot int, o OutputSetting) error {
	if err := p.checkSlot(slot); err != nil {
		return err
	}
	if p.isInputSlot(slot) {
		return fmt.Errorf("%s: slot %d is an input", p.kind.Name, slot)
	}
	p.itemSettings[slot] = o
	p.onOutputChanged()
	return nil
}

// TankOutputSetting returns a tank's output setting.
func (p *Processor) TankOutputSetting(tank int) OutputSetting {
	if p.checkTank(tank) != nil {
		return OutputDefault
	}
	return p.tankSettings[tank]
}

// SetTankOutputSetting changes an output tank's setting and re-checks
// activity.
func (p *Processor) SetTankOutputSetting(tank int, o OutputSetting) error {
	if err := p.checkTank(tank); err != nil {
		return err
	}
	if p.isInputTank(tank) {
		return fmt.Errorf("%s: tank %d is an input", p.kind.Name, tank)
	}
	p.tankSettings[tank] = o
	p.onOutputChanged()
	return nil
}

// VoidUnusableFluidInput reports whether an input tank is cleared when a
// completion leaves the processor unable to continue.
func (p *Processor) VoidUnusableFluidInput(tank int) bool {
	return p.isInputTank(tank) && p.voidUnusable[tank]
}

// SetVoidUnusableFluidInput sets the flag for an input tank.
func (p *Processor) SetVoidUnusableFluidInput(tank int, v bool) error {
	if !p.isInputTank(tank) {
		return fmt.Errorf("%s: tank %d is not an input", p.kind.Name, tank)
	}
	p.voidUnusable[tank] = v
	return nil
}

// InputTanksSeparated reports whether one fluid may occupy only one input
// tank.
func (p *Processor) InputTanksSeparated() bool { return p.inputTanksSeparated }

// SetInputTanksSeparated sets the flag.
func (p *Processor) SetInputTanksSeparated(v bool) {
	p.inputTanksSeparated = v
}
