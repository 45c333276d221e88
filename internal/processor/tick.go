package processor

import (
	"github.com/roach88/millwork/internal/stack"
)

// Tick advances the processor by one tick and returns the number of cycles
// completed.
func (p *Processor) Tick() int {
	p.isProcessing = p.shouldProcess()
	if p.isProcessing {
		return p.process()
	}
	if p.currentTime > 0 {
		if p.kind.LosesProgress && !p.halted {
			p.loseProgress()
		} else if !p.canProcessInputs {
			p.currentTime = 0
			p.resetTime = 0
		}
	}
	return 0
}

// readyToProcess: a recipe fits, and consume-up-front kinds have staged it.
func (p *Processor) readyToProcess() bool {
	return p.canProcessInputs && (!p.kind.ConsumesInputs || p.hasConsumed)
}

func (p *Processor) shouldProcess() bool {
	return p.readyToProcess() && !p.halted && p.hasSufficientEnergy()
}

func (p *Processor) hasSufficientEnergy() bool {
	power := p.ProcessPower()
	if power <= 0 {
		return true
	}
	if p.kind.Generator {
		return p.energy.Capacity()-p.energy.Available() >= power
	}
	return p.energy.Available() >= power
}

func (p *Processor) process() int {
	if p.kind.Generator {
		p.energy.Receive(p.ProcessPower())
	} else {
		p.energy.Draw(p.ProcessPower())
	}
	p.currentTime += p.SpeedMultiplier()

	completed := 0
	for p.currentTime >= p.baseProcessTime {
		if p.finishProcess() {
			completed++
		}
	}
	return completed
}

// finishProcess closes one cycle. Surplus time carries into the next cycle
// when the processor can continue.
func (p *Processor) finishProcess() bool {
	oldBase := p.baseProcessTime
	r := p.Recipe()
	produced := p.produceProducts()

	p.refreshRecipe()
	carry := max(0, p.currentTime-oldBase)
	p.currentTime = carry
	p.resetTime = carry
	p.refreshActivity()

	if !p.canProcessInputs {
		p.currentTime = 0
		p.resetTime = 0
		for i := range p.kind.FluidInputSize {
			if p.voidUnusable[i] {
				p.tanks[i].Clear()
			}
		}
	}

	if produced && r != nil {
		p.logger.Debug("process completed", "recipe_id", r.ID, "recipe", r.String())
		if p.onComplete != nil {
			p.onComplete(Completion{Recipe: r})
		}
	}
	return produced
}

// loseProgress winds time back by 1.5 ticks' worth of speed.
func (p *Processor) loseProgress() {
	t := p.currentTime - 1.5*p.SpeedMultiplier()
	p.currentTime = min(max(t, 0), p.baseProcessTime)
	p.resetTime = min(p.resetTime, p.currentTime)
}

// refreshAll recomputes every derived flag from scratch.
func (p *Processor) refreshAll() {
	p.hasConsumed = p.kind.ConsumesInputs && p.stagingNonEmpty()
	p.refreshRecipe()
	p.refreshActivity()
	p.isProcessing = p.shouldProcess()
}

func (p *Processor) stagingNonEmpty() bool {
	for _, s := range p.consumedItems {
		if !s.IsEmpty() {
			return true
		}
	}
	for _, t := range p.consumedTanks {
		if !t.IsEmpty() {
			return true
		}
	}
	return false
}

// refreshRecipe re-matches against staging when inputs are consumed and
// against live inputs otherwise, then stages the match for
// consume-up-front kinds.
func (p *Processor) refreshRecipe() {
	items, fluids := p.recipeInputs()
	p.info = p.handler.Lookup(items, fluids)
	if p.kind.ConsumesInputs {
		p.consumeInputs()
	}
}

func (p *Processor) recipeInputs() ([]stack.Item, []stack.Fluid) {
	if p.hasConsumed {
		fluids := make([]stack.Fluid, len(p.consumedTanks))
		for i, t := range p.consumedTanks {
			fluids[i] = t.Fluid()
		}
		return append([]stack.Item(nil), p.consumedItems...), fluids
	}
	fluids := make([]stack.Fluid, p.kind.FluidInputSize)
	for i := range fluids {
		fluids[i] = p.tanks[i].Fluid()
	}
	return append([]stack.Item(nil), p.items[:p.kind.ItemInputSize]...), fluids
}

// refreshActivity re-checks whether the current match can run.
func (p *Processor) refreshActivity() {
	p.canProcessInputs = p.computeCanProcessInputs()
}

func (p *Processor) computeCanProcessInputs() bool {
	valid := p.setRecipeStats()
	if p.hasConsumed && !valid {
		for i := range p.consumedItems {
			p.consumedItems[i] = stack.Item{}
		}
		for _, t := range p.consumedTanks {
			t.Clear()
		}
		p.hasConsumed = false
	}
	can := valid && p.canProduceProducts()
	if !can {
		p.currentTime = max(0, min(p.currentTime, p.baseProcessTime-1))
	}
	return can
}

// setRecipeStats loads base time and power from the current recipe, or the
// kind's defaults when there is none. It reports whether a recipe is set.
func (p *Processor) setRecipeStats() bool {
	r := p.Recipe()
	if r == nil {
		p.baseProcessTime = p.kind.DefaultProcessTime
		p.baseProcessPower = p.kind.DefaultProcessPower
	} else {
		p.baseProcessTime = r.BaseProcessTime(p.kind.DefaultProcessTime)
		p.baseProcessPower = r.BaseProcessPower(p.kind.DefaultProcessPower)
	}
	// A cycle must take time or the completion loop never ends.
	p.baseProcessTime = max(p.baseProcessTime, 1)
	p.baseProcessPower = max(p.baseProcessPower, 0)
	if p.ownBuffer != nil {
		p.ownBuffer.SetCapacity(max(p.kind.EnergyCapacity, p.ProcessEnergy()))
	}
	return r != nil
}

// consumeInputs removes the matched quantities from the inputs. For
// consume-up-front kinds they move into staging.
func (p *Processor) consumeInputs() {
	if p.hasConsumed || p.info == nil {
		return
	}
	staging := p.kind.ConsumesInputs
	if staging {
		for i := range p.consumedItems {
			p.consumedItems[i] = stack.Item{}
		}
		for _, t := range p.consumedTanks {
			t.Clear()
		}
	}

	for i := range p.kind.ItemInputSize {
		size := p.info.ItemIngredientSize(i)
		if size <= 0 {
			continue
		}
		cur := p.items[i]
		take := min(size, cur.Count)
		if staging {
			p.consumedItems[i] = cur.WithCount(take)
		}
		p.items[i] = cur.WithCount(cur.Count - take)
	}
	for i := range p.kind.FluidInputSize {
		size := p.info.FluidIngredientSize(i)
		if size <= 0 {
			continue
		}
		tank := p.tanks[i]
		taken := tank.Drain(size, true)
		if staging {
			p.consumedTanks[i].SetFluid(taken)
		}
	}
	if staging {
		p.hasConsumed = true
	}
}

// canProduceProducts checks every product fits its output. Outputs set to
// void are emptied as a side effect.
func (p *Processor) canProduceProducts() bool {
	r := p.Recipe()
	if r == nil {
		return false
	}
	for i, prod := range r.ItemProducts {
		slot := p.kind.ItemInputSize + i
		setting := p.itemSettings[slot]
		if setting == OutputVoid {
			p.items[slot] = stack.Item{}
			continue
		}
		size := prod.MaxStackSize(0)
		if size <= 0 {
			continue
		}
		next := prod.Stack()
		if next.IsEmpty() {
			return false
		}
		cur := p.items[slot]
		if cur.IsEmpty() {
			continue
		}
		if !cur.SameItem(next) {
			return false
		}
		if setting == OutputDefault && cur.Count+size > p.stackLimit() {
			return false
		}
	}
	for i, prod := range r.FluidProducts {
		t := p.kind.FluidInputSize + i
		tank := p.tanks[t]
		setting := p.tankSettings[t]
		if setting == OutputVoid {
			tank.Clear()
			continue
		}
		size := prod.MaxStackSize(0)
		if size <= 0 {
			continue
		}
		next := prod.Stack()
		if next.IsEmpty() {
			return false
		}
		if tank.IsEmpty() {
			continue
		}
		if !tank.Fluid().SameFluid(next) {
			return false
		}
		if setting == OutputDefault && tank.Amount()+size > tank.Capacity() {
			return false
		}
	}
	return true
}

// produceProducts empties staging and adds the recipe's products to the
// outputs. Kinds that consume at completion consume here. It reports
// whether anything was produced.
func (p *Processor) produceProducts() bool {
	for i := range p.consumedItems {
		p.consumedItems[i] = stack.Item{}
	}
	for _, t := range p.consumedTanks {
		t.Clear()
	}
	if p.info == nil || (p.kind.ConsumesInputs && !p.hasConsumed) {
		return false
	}
	if !p.kind.ConsumesInputs {
		p.consumeInputs()
	}
	r := p.info.Recipe

	for i, prod := range r.ItemProducts {
		slot := p.kind.ItemInputSize + i
		if p.itemSettings[slot] == OutputVoid {
			p.items[slot] = stack.Item{}
			continue
		}
		if prod.MaxStackSize(0) <= 0 {
			continue
		}
		next := prod.NextStack(0)
		cur := p.items[slot]
		switch {
		case cur.IsEmpty():
			p.items[slot] = next.WithCount(min(next.Count, p.stackLimit()))
		case cur.SameItem(next):
			p.items[slot] = cur.WithCount(min(p.stackLimit(), cur.Count+next.Count))
		}
	}
	for i, prod := range r.FluidProducts {
		t := p.kind.FluidInputSize + i
		tank := p.tanks[t]
		if p.tankSettings[t] == OutputVoid {
			tank.Clear()
			continue
		}
		if prod.MaxStackSize(0) <= 0 {
			continue
		}
		next := prod.NextStack(0)
		switch {
		case tank.IsEmpty():
			tank.SetFluid(next)
		case tank.Fluid().SameFluid(next):
			tank.ChangeAmount(next.Amount)
		}
	}
	p.hasConsumed = false
	return true
}
