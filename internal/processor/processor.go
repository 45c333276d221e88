package processor

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/roach88/millwork/internal/recipe"
	"github.com/roach88/millwork/internal/stack"
)

// Completion describes one finished processing cycle.
type Completion struct {
	Recipe *recipe.Recipe
}

// Option configures a Processor.
type Option func(*Processor)

// WithEnergy supplies an external energy storage. Without it the processor
// owns a Buffer sized to its current recipe.
func WithEnergy(e EnergyStorage) Option {
	return func(p *Processor) {
		p.energy = e
		p.ownBuffer = nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = l
	}
}

// WithUpgrades installs upgrades. Ignored for non-upgradable kinds.
func WithUpgrades(u Upgrades) Option {
	return func(p *Processor) {
		p.upgrades = u
	}
}

// WithCompletionHook registers a callback run after every completed cycle.
func WithCompletionHook(fn func(Completion)) Option {
	return func(p *Processor) {
		p.onComplete = fn
	}
}

// Processor is one machine instance.
type Processor struct {
	kind    Kind
	handler *recipe.Handler
	logger  *slog.Logger

	// items holds inputs followed by outputs; tanks likewise.
	items []stack.Item
	tanks []*Tank

	// Staging buffers for consume-up-front kinds, one per input.
	consumedItems []stack.Item
	consumedTanks []*Tank

	itemSettings        []OutputSetting
	tankSettings        []OutputSetting
	voidUnusable        []bool
	inputTanksSeparated bool
	itemConnections     connections
	fluidConnections    connections

	info *recipe.Info

	baseProcessTime  float64
	baseProcessPower float64
	currentTime      float64
	resetTime        float64
	isProcessing     bool
	canProcessInputs bool
	hasConsumed      bool
	halted           bool

	upgrades   Upgrades
	energy     EnergyStorage
	ownBuffer  *Buffer
	onComplete func(Completion)
}

// New creates an idle processor of kind matched by handler.
func New(kind Kind, handler *recipe.Handler, opts ...Option) (*Processor, error) {
	kind = kind.WithDefaults()
	if err := kind.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kind: %w", err)
	}
	if handler == nil {
		return nil, fmt.Errorf("%s: nil recipe handler", kind.Name)
	}
	if err := kind.Matches(handler.Config()); err != nil {
		return nil, err
	}

	buf := NewBuffer(kind.EnergyCapacity)
	p := &Processor{
		kind:             kind,
		handler:          handler,
		logger:           slog.Default(),
		items:            make([]stack.Item, kind.itemSlots()),
		consumedItems:    make([]stack.Item, kind.ItemInputSize),
		itemSettings:     make([]OutputSetting, kind.itemSlots()),
		tankSettings:     make([]OutputSetting, kind.tankCount()),
		voidUnusable:     make([]bool, kind.tankCount()),
		itemConnections:  newConnections(kind.ItemInputSize, kind.ItemOutputSize),
		fluidConnections: newConnections(kind.FluidInputSize, kind.FluidOutputSize),
		baseProcessTime:  kind.DefaultProcessTime,
		baseProcessPower: kind.DefaultProcessPower,
		energy:           buf,
		ownBuffer:        buf,
	}
	for i := range kind.tankCount() {
		capacity := kind.OutputTankCapacity
		if i < kind.FluidInputSize {
			capacity = kind.InputTankCapacity
		}
		p.tanks = append(p.tanks, NewTank(capacity, nil))
	}
	for range kind.FluidInputSize {
		p.consumedTanks = append(p.consumedTanks, NewTank(kind.InputTankCapacity, nil))
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("kind", kind.Name)
	p.applyValidFluids()
	p.refreshAll()
	return p, nil
}

// Kind returns the processor's kind.
func (p *Processor) Kind() Kind { return p.kind }

// Handler returns the recipe handler the processor matches against.
func (p *Processor) Handler() *recipe.Handler { return p.handler }

// SetHandler swaps the recipe handler after a reload and re-matches.
func (p *Processor) SetHandler(h *recipe.Handler) error {
	if err := p.kind.Matches(h.Config()); err != nil {
		return err
	}
	p.handler = h
	p.applyValidFluids()
	p.refreshAll()
	return nil
}

func (p *Processor) applyValidFluids() {
	for i := range p.kind.FluidInputSize {
		p.tanks[i].SetAllowed(p.handler.ValidFluids(i))
	}
}

// Info returns the current match, nil when the inputs match nothing.
func (p *Processor) Info() *recipe.Info { return p.info }

// Recipe returns the current recipe, nil when none.
func (p *Processor) Recipe() *recipe.Recipe {
	if p.info == nil {
		return nil
	}
	return p.info.Recipe
}

func (p *Processor) CurrentTime() float64      { return p.currentTime }
func (p *Processor) ResetTime() float64        { return p.resetTime }
func (p *Processor) BaseProcessTime() float64  { return p.baseProcessTime }
func (p *Processor) BaseProcessPower() float64 { return p.baseProcessPower }
func (p *Processor) IsProcessing() bool        { return p.isProcessing }
func (p *Processor) CanProcessInputs() bool    { return p.canProcessInputs }
func (p *Processor) HasConsumed() bool         { return p.hasConsumed }
func (p *Processor) IsHalted() bool            { return p.halted }
func (p *Processor) Energy() EnergyStorage     { return p.energy }
func (p *Processor) Upgrades() Upgrades        { return p.upgrades }

// SetHalted sets the halt flag. Halting stops processing on the next tick
// without discarding progress or staged inputs.
func (p *Processor) SetHalted(h bool) {
	p.halted = h
}

// SetUpgrades changes the installed upgrades and re-checks activity.
func (p *Processor) SetUpgrades(u Upgrades) {
	p.upgrades = u
	p.refreshActivity()
}

// SpeedMultiplier is the time added per processing tick.
func (p *Processor) SpeedMultiplier() float64 {
	if !p.kind.Upgradable {
		return 1
	}
	return p.upgrades.SpeedMultiplier()
}

// PowerMultiplier scales the recipe's base power.
func (p *Processor) PowerMultiplier() float64 {
	if !p.kind.Upgradable {
		return 1
	}
	return p.upgrades.PowerMultiplier()
}

// ProcessTime is the number of ticks one cycle takes, at least 1.
func (p *Processor) ProcessTime() int64 {
	return max(1, int64(math.Ceil(p.baseProcessTime/p.SpeedMultiplier())))
}

// ProcessPower is the energy drawn (or generated) per processing tick.
func (p *Processor) ProcessPower() int64 {
	return int64(math.Ceil(p.baseProcessPower * p.PowerMultiplier()))
}

// ProcessEnergy is the energy one cycle costs.
func (p *Processor) ProcessEnergy() int64 {
	return p.ProcessTime() * p.ProcessPower()
}

func (p *Processor) stackLimit() int {
	return p.kind.StackLimit
}

func (p *Processor) isInputSlot(slot int) bool {
	return slot >= 0 && slot < p.kind.ItemInputSize
}

func (p *Processor) isInputTank(tank int) bool {
	return tank >= 0 && tank < p.kind.FluidInputSize
}
