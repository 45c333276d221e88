package processor

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/millwork/internal/ingredient"
	"github.com/roach88/millwork/internal/recipe"
	"github.com/roach88/millwork/internal/stack"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func item(id stack.ResourceID, counts ...int) ingredient.Item {
	return ingredient.NewItem(id, 0, "", counts...)
}

func fluid(id stack.ResourceID, amounts ...int) ingredient.Fluid {
	return ingredient.NewFluid(id, amounts...)
}

// newHandler builds a handler shaped like kind, registers defs and builds
// the cache.
func newHandler(t *testing.T, kind Kind, shapeless, factor bool, defs ...recipe.Definition) *recipe.Handler {
	t.Helper()
	h := recipe.NewHandler(recipe.HandlerConfig{
		Name:            kind.Name,
		ItemInputSize:   kind.ItemInputSize,
		FluidInputSize:  kind.FluidInputSize,
		ItemOutputSize:  kind.ItemOutputSize,
		FluidOutputSize: kind.FluidOutputSize,
		Shapeless:       shapeless,
		Factor:          factor,
		Logger:          quietLogger(),
	})
	for _, def := range defs {
		_, err := h.Register(def)
		require.NoError(t, err)
	}
	h.BuildCache()
	return h
}

func newProcessor(t *testing.T, kind Kind, h *recipe.Handler, opts ...Option) *Processor {
	t.Helper()
	p, err := New(kind, h, append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	return p
}

func furnaceKind(power float64) Kind {
	return Kind{
		Name:                "furnace",
		ItemInputSize:       1,
		ItemOutputSize:      1,
		DefaultProcessTime:  200,
		DefaultProcessPower: power,
	}
}

func steelRecipe() recipe.Definition {
	return recipe.Definition{
		Label:       "steel",
		ItemInputs:  []ingredient.Item{item("ingotIron")},
		ItemOutputs: []ingredient.Item{item("ingotSteel")},
	}
}

func newFurnace(t *testing.T, power float64, opts ...Option) *Processor {
	t.Helper()
	kind := furnaceKind(power)
	return newProcessor(t, kind, newHandler(t, kind, false, false, steelRecipe()), opts...)
}

func tickN(p *Processor, n int) int {
	done := 0
	for range n {
		done += p.Tick()
	}
	return done
}

func TestNewRejectsMismatchedHandler(t *testing.T) {
	kind := furnaceKind(0)
	h := recipe.NewHandler(recipe.HandlerConfig{Name: "furnace", ItemInputSize: 2, ItemOutputSize: 1, Logger: quietLogger()})

	_, err := New(kind, h)
	require.Error(t, err)
	assert.ErrorContains(t, err, "does not match kind")

	_, err = New(Kind{Name: "broken"}, h)
	assert.ErrorContains(t, err, "default process time must be positive")
}

func TestIronToSteelTakes200Ticks(t *testing.T) {
	p := newFurnace(t, 40)
	assert.Equal(t, int64(8000), p.Energy().Capacity())
	require.Equal(t, int64(8000), p.Energy().Receive(8000))

	rest := p.InsertItem(Up, 0, stack.NewItem("ingotIron", 1), false)
	assert.True(t, rest.IsEmpty())
	require.NotNil(t, p.Recipe())
	assert.Equal(t, "steel", p.Recipe().Label)
	assert.True(t, p.CanProcessInputs())
	assert.Equal(t, float64(200), p.BaseProcessTime())
	assert.Equal(t, int64(200), p.ProcessTime())
	assert.Equal(t, int64(40), p.ProcessPower())

	assert.Equal(t, 0, tickN(p, 199))
	assert.Equal(t, float64(199), p.CurrentTime())
	assert.True(t, p.IsProcessing())
	assert.True(t, p.Item(1).IsEmpty())

	assert.Equal(t, 1, p.Tick())
	assert.True(t, p.Item(0).IsEmpty())
	assert.Equal(t, stack.NewItem("ingotSteel", 1), p.Item(1))
	assert.Equal(t, float64(0), p.CurrentTime())
	assert.Nil(t, p.Recipe())
	assert.False(t, p.CanProcessInputs())
	assert.Equal(t, int64(0), p.Energy().Available())
}

func TestTwoIronToOneSteel(t *testing.T) {
	kind := furnaceKind(0)
	h := newHandler(t, kind, false, false, recipe.Definition{
		Label:       "steel",
		ItemInputs:  []ingredient.Item{item("ingotIron", 2)},
		ItemOutputs: []ingredient.Item{item("ingotSteel", 1)},
	})
	p := newProcessor(t, kind, h)

	require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 1)))
	assert.Nil(t, p.Recipe(), "one ingot is not enough")
	assert.Equal(t, 0, tickN(p, 200))

	require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 2)))
	require.NotNil(t, p.Recipe())
	assert.Equal(t, 0, tickN(p, 199))
	assert.Equal(t, float64(199), p.CurrentTime())

	assert.Equal(t, 1, p.Tick())
	assert.True(t, p.Item(0).IsEmpty())
	assert.Equal(t, stack.NewItem("ingotSteel", 1), p.Item(1))
	assert.Equal(t, float64(0), p.CurrentTime())
}

func TestProcessingConservesMassAcrossCycles(t *testing.T) {
	p := newFurnace(t, 0)
	require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 3)))

	assert.Equal(t, 3, tickN(p, 650))
	assert.True(t, p.Item(0).IsEmpty())
	assert.Equal(t, 3, p.Item(1).Count)
	assert.Equal(t, float64(0), p.CurrentTime())
}

func TestInsufficientEnergyStalls(t *testing.T) {
	p := newFurnace(t, 40)
	require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 1)))

	assert.Equal(t, 0, tickN(p, 10))
	assert.False(t, p.IsProcessing())
	assert.True(t, p.CanProcessInputs())
	assert.Equal(t, float64(0), p.CurrentTime())
}

func TestShapelessRecipeAcceptsAnyOrder(t *testing.T) {
	kind := Kind{Name: "alloy_furnace", ItemInputSize: 2, ItemOutputSize: 1, DefaultProcessTime: 10}
	h := newHandler(t, kind, true, false, recipe.Definition{
		ItemInputs:  []ingredient.Item{item("A"), item("B")},
		ItemOutputs: []ingredient.Item{item("AB")},
	})

	for _, order := range [][2]stack.ResourceID{{"A", "B"}, {"B", "A"}} {
		p := newProcessor(t, kind, h)
		require.NoError(t, p.SetItem(0, stack.NewItem(order[0], 1)))
		require.NoError(t, p.SetItem(1, stack.NewItem(order[1], 1)))
		require.NotNil(t, p.Recipe(), "order %v", order)

		assert.Equal(t, 1, tickN(p, 10))
		assert.Equal(t, stack.NewItem("AB", 1), p.Item(2))
	}
}

func TestFactoredFluidRecipe(t *testing.T) {
	kind := Kind{Name: "salt_mixer", FluidInputSize: 2, FluidOutputSize: 1, DefaultProcessTime: 1}
	h := newHandler(t, kind, false, true, recipe.Definition{
		FluidInputs:  []ingredient.Fluid{fluid("water", 1000), fluid("ethanol", 1000)},
		FluidOutputs: []ingredient.Fluid{fluid("mix", 2000)},
	})
	p := newProcessor(t, kind, h)

	n, err := p.FillTank(0, stack.NewFluid("water", 1000))
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
	n, err = p.FillTank(1, stack.NewFluid("ethanol", 1000))
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
	require.NotNil(t, p.Recipe())

	assert.Equal(t, 5, tickN(p, 5))
	assert.Equal(t, 995, p.Tank(0).Amount)
	assert.Equal(t, 995, p.Tank(1).Amount)
	assert.Equal(t, TankInfo{ID: "mix", Amount: 10, Capacity: DefaultTankCapacity}, p.Tank(2))
}

func TestValidFluidsRestrictInputTanks(t *testing.T) {
	kind := Kind{Name: "salt_mixer", FluidInputSize: 2, FluidOutputSize: 1, DefaultProcessTime: 1}
	h := newHandler(t, kind, false, false, recipe.Definition{
		FluidInputs:  []ingredient.Fluid{fluid("water"), fluid("ethanol")},
		FluidOutputs: []ingredient.Fluid{fluid("mix")},
	})
	p := newProcessor(t, kind, h)

	n, err := p.FillTank(0, stack.NewFluid("lava", 1000))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1000, p.Fill(Up, stack.NewFluid("ethanol", 1000), true))
	assert.Equal(t, TankInfo{ID: "ethanol", Amount: 1000, Capacity: DefaultTankCapacity}, p.Tank(1))
}

func TestBlockedOutputHoldsTime(t *testing.T) {
	tests := []struct {
		name   string
		output stack.Item
	}{
		{"foreign item", stack.NewItem("cobblestone", 1)},
		{"full stack", stack.NewItem("ingotSteel", 64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFurnace(t, 0)
			require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 1)))
			tickN(p, 199)

			require.NoError(t, p.SetItem(1, tt.output))
			assert.False(t, p.CanProcessInputs())
			assert.Equal(t, float64(199), p.CurrentTime())
			assert.NotNil(t, p.Recipe())

			assert.Equal(t, 0, p.Tick())
			assert.False(t, p.IsProcessing())
			assert.Equal(t, float64(0), p.CurrentTime())
			assert.Equal(t, tt.output, p.Item(1))
			assert.Equal(t, 1, p.Item(0).Count)
		})
	}
}

func TestOutputSettings(t *testing.T) {
	t.Run("void excess tops up a full stack", func(t *testing.T) {
		p := newFurnace(t, 0)
		require.NoError(t, p.SetItemOutputSetting(1, OutputVoidExcess))
		require.NoError(t, p.SetItem(1, stack.NewItem("ingotSteel", 64)))
		require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 1)))
		assert.True(t, p.CanProcessInputs())

		assert.Equal(t, 1, tickN(p, 200))
		assert.Equal(t, 64, p.Item(1).Count)
		assert.True(t, p.Item(0).IsEmpty())
	})

	t.Run("void excess still refuses a foreign item", func(t *testing.T) {
		p := newFurnace(t, 0)
		require.NoError(t, p.SetItemOutputSetting(1, OutputVoidExcess))
		require.NoError(t, p.SetItem(1, stack.NewItem("cobblestone", 1)))
		require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 1)))
		assert.False(t, p.CanProcessInputs())
	})

	t.Run("void discards contents and products", func(t *testing.T) {
		p := newFurnace(t, 0)
		require.NoError(t, p.SetItem(1, stack.NewItem("cobblestone", 1)))
		require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 1)))
		assert.False(t, p.CanProcessInputs())

		require.NoError(t, p.SetItemOutputSetting(1, OutputVoid))
		assert.True(t, p.CanProcessInputs())
		assert.True(t, p.Item(1).IsEmpty())

		assert.Equal(t, 1, tickN(p, 200))
		assert.True(t, p.Item(1).IsEmpty())
		assert.True(t, p.Item(0).IsEmpty())
	})

	t.Run("inputs have no output setting", func(t *testing.T) {
		p := newFurnace(t, 0)
		assert.Error(t, p.SetItemOutputSetting(0, OutputVoid))
		assert.Error(t, p.SetItemOutputSetting(5, OutputVoid))
	})
}

func TestLosesProgressWhileIdle(t *testing.T) {
	kind := Kind{Name: "decay", ItemInputSize: 1, ItemOutputSize: 1, DefaultProcessTime: 100, LosesProgress: true}
	p := newProcessor(t, kind, newHandler(t, kind, false, false, steelRecipe()))
	require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 1)))
	tickN(p, 50)
	assert.Equal(t, float64(50), p.CurrentTime())

	p.TakeItem(0, 1)
	assert.False(t, p.CanProcessInputs())
	assert.Equal(t, float64(50), p.CurrentTime())

	p.Tick()
	assert.Equal(t, 48.5, p.CurrentTime())
	p.Tick()
	assert.Equal(t, float64(47), p.CurrentTime())
	assert.LessOrEqual(t, p.ResetTime(), p.CurrentTime())

	tickN(p, 100)
	assert.Equal(t, float64(0), p.CurrentTime())
}

func TestHaltingKeepsProgress(t *testing.T) {
	kind := Kind{Name: "decay", ItemInputSize: 1, ItemOutputSize: 1, DefaultProcessTime: 100, LosesProgress: true}
	p := newProcessor(t, kind, newHandler(t, kind, false, false, steelRecipe()))
	require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 1)))
	tickN(p, 30)

	p.SetHalted(true)
	tickN(p, 10)
	assert.False(t, p.IsProcessing())
	assert.True(t, p.IsHalted())
	assert.Equal(t, float64(30), p.CurrentTime())

	p.SetHalted(false)
	assert.Equal(t, 1, tickN(p, 70))
	assert.Equal(t, stack.NewItem("ingotSteel", 1), p.Item(1))
}

func TestConsumeUpFrontStagesInputs(t *testing.T) {
	kind := Kind{Name: "crusher", ItemInputSize: 1, ItemOutputSize: 1, DefaultProcessTime: 10, ConsumesInputs: true}
	h := newHandler(t, kind, false, false, recipe.Definition{
		ItemInputs:  []ingredient.Item{item("ingotIron", 2)},
		ItemOutputs: []ingredient.Item{item("dustIron")},
	})
	p := newProcessor(t, kind, h)

	rest := p.InsertItem(Up, 0, stack.NewItem("ingotIron", 5), false)
	assert.True(t, rest.IsEmpty())
	assert.True(t, p.HasConsumed())
	assert.Equal(t, stack.NewItem("ingotIron", 2), p.ConsumedItems()[0])
	assert.Equal(t, 3, p.Item(0).Count)

	// Removing the live inputs does not cancel the staged cycle.
	p.TakeItem(0, 3)
	assert.True(t, p.CanProcessInputs())
	assert.Equal(t, 1, tickN(p, 10))
	assert.Equal(t, stack.NewItem("dustIron", 1), p.Item(1))
	assert.False(t, p.HasConsumed())
	assert.True(t, p.ConsumedItems()[0].IsEmpty())
	assert.Nil(t, p.Recipe())
}

func TestVoidUnusableFluidInput(t *testing.T) {
	kind := Kind{Name: "salt_mixer", FluidInputSize: 2, FluidOutputSize: 1, DefaultProcessTime: 1}
	h := newHandler(t, kind, false, false, recipe.Definition{
		FluidInputs:  []ingredient.Fluid{fluid("water", 100), fluid("ethanol", 100)},
		FluidOutputs: []ingredient.Fluid{fluid("mix", 200)},
	})
	p := newProcessor(t, kind, h)
	require.NoError(t, p.SetVoidUnusableFluidInput(1, true))
	assert.Error(t, p.SetVoidUnusableFluidInput(2, true))

	_, err := p.FillTank(0, stack.NewFluid("water", 100))
	require.NoError(t, err)
	_, err = p.FillTank(1, stack.NewFluid("ethanol", 150))
	require.NoError(t, err)

	assert.Equal(t, 1, p.Tick())
	assert.Empty(t, p.Tank(0).ID)
	assert.Zero(t, p.Tank(1).Amount)
	assert.Equal(t, 200, p.Tank(2).Amount)
}

func TestFillOrderAndSeparatedInputs(t *testing.T) {
	kind := Kind{Name: "mixer", FluidInputSize: 2, FluidOutputSize: 1, InputTankCapacity: 1000, DefaultProcessTime: 1}
	h := recipe.NewHandler(recipe.HandlerConfig{Name: "mixer", FluidInputSize: 2, FluidOutputSize: 1, Logger: quietLogger()})

	t.Run("spills into the next tank", func(t *testing.T) {
		p := newProcessor(t, kind, h)
		assert.Equal(t, 1000, p.Fill(Up, stack.NewFluid("water", 1500), true))
		assert.Equal(t, 500, p.Fill(Up, stack.NewFluid("water", 500), true))
		assert.Equal(t, 500, p.Tank(1).Amount)
	})

	t.Run("separated inputs refuse a second tank", func(t *testing.T) {
		p := newProcessor(t, kind, h)
		p.SetInputTanksSeparated(true)
		assert.Equal(t, 1000, p.Fill(Up, stack.NewFluid("water", 1000), true))
		assert.Zero(t, p.Fill(Up, stack.NewFluid("water", 500), true))
		assert.Equal(t, 300, p.Fill(Up, stack.NewFluid("ethanol", 300), true))
		assert.Equal(t, stack.ResourceID("ethanol"), p.Tank(1).ID)
	})

	t.Run("simulated fill changes nothing", func(t *testing.T) {
		p := newProcessor(t, kind, h)
		assert.Equal(t, 700, p.Fill(Up, stack.NewFluid("water", 700), false))
		assert.Zero(t, p.Tank(0).Amount)
	})

	t.Run("outputs only drain", func(t *testing.T) {
		p := newProcessor(t, kind, h)
		_, err := p.FillTank(2, stack.NewFluid("mix", 400))
		require.NoError(t, err)
		assert.Equal(t, stack.NewFluid("mix", 150), p.Drain(Down, 150, true))
		assert.Equal(t, 250, p.Tank(2).Amount)
		assert.True(t, p.DrainFluid(Down, stack.NewFluid("water", 10), true).IsEmpty())
	})
}

func TestGeneratorFillsBuffer(t *testing.T) {
	kind := Kind{Name: "fission", ItemInputSize: 1, DefaultProcessTime: 5, DefaultProcessPower: 10, EnergyCapacity: 100, Generator: true}
	h := newHandler(t, kind, false, false, recipe.Definition{ItemInputs: []ingredient.Item{item("fuel")}})
	p := newProcessor(t, kind, h)
	require.NoError(t, p.SetItem(0, stack.NewItem("fuel", 1)))

	assert.Equal(t, 1, tickN(p, 5))
	assert.Equal(t, int64(50), p.Energy().Available())
	assert.True(t, p.Item(0).IsEmpty())
}

func TestUpgradesScaleSpeedAndPower(t *testing.T) {
	kind := Kind{Name: "furnace", ItemInputSize: 1, ItemOutputSize: 1, DefaultProcessTime: 10, DefaultProcessPower: 10, Upgradable: true}
	p := newProcessor(t, kind, newHandler(t, kind, false, false, steelRecipe()), WithUpgrades(Upgrades{Speed: 1, Energy: 1}))
	require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 1)))

	assert.Equal(t, float64(2), p.SpeedMultiplier())
	assert.Equal(t, float64(2), p.PowerMultiplier())
	assert.Equal(t, int64(5), p.ProcessTime())
	assert.Equal(t, int64(20), p.ProcessPower())
	assert.Equal(t, int64(100), p.Energy().Capacity())

	p.Energy().Receive(100)
	assert.Equal(t, 1, tickN(p, 5))
	assert.Equal(t, int64(0), p.Energy().Available())

	fixed := newFurnace(t, 10, WithUpgrades(Upgrades{Speed: 3}))
	assert.Equal(t, float64(1), fixed.SpeedMultiplier())
}

func TestExternalEnergyStorage(t *testing.T) {
	buf := NewBuffer(1000)
	buf.SetStored(1000)
	kind := Kind{Name: "furnace", ItemInputSize: 1, ItemOutputSize: 1, DefaultProcessTime: 10, DefaultProcessPower: 5}
	p := newProcessor(t, kind, newHandler(t, kind, false, false, steelRecipe()), WithEnergy(buf))
	require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 1)))

	assert.Equal(t, 1, tickN(p, 10))
	assert.Equal(t, int64(950), buf.Available())
	assert.Equal(t, int64(1000), buf.Capacity())
}

func TestCompletionHook(t *testing.T) {
	var got []Completion
	p := newFurnace(t, 0, WithCompletionHook(func(c Completion) { got = append(got, c) }))
	require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 2)))

	tickN(p, 400)
	require.Len(t, got, 2)
	assert.Equal(t, "steel", got[0].Recipe.Label)
}

func TestClearAllResetsEverything(t *testing.T) {
	kind := Kind{Name: "crusher", ItemInputSize: 1, ItemOutputSize: 1, DefaultProcessTime: 10, ConsumesInputs: true}
	p := newProcessor(t, kind, newHandler(t, kind, false, false, steelRecipe()))
	require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 4)))
	tickN(p, 5)
	require.True(t, p.HasConsumed())

	p.ClearAll()
	assert.False(t, p.HasConsumed())
	assert.Nil(t, p.Recipe())
	assert.Equal(t, float64(0), p.CurrentTime())
	for _, s := range append(p.Items(), p.ConsumedItems()...) {
		assert.True(t, s.IsEmpty())
	}
}

func TestSetHandlerRematches(t *testing.T) {
	kind := furnaceKind(0)
	p := newProcessor(t, kind, newHandler(t, kind, false, false))
	require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 1)))
	assert.Nil(t, p.Recipe())

	require.NoError(t, p.SetHandler(newHandler(t, kind, false, false, steelRecipe())))
	assert.NotNil(t, p.Recipe())
	assert.True(t, p.CanProcessInputs())
}

func TestTimeStaysWithinBounds(t *testing.T) {
	p := newFurnace(t, 0)
	require.NoError(t, p.SetItem(0, stack.NewItem("ingotIron", 64)))
	for i := range 1000 {
		p.Tick()
		if i%7 == 0 {
			require.NoError(t, p.SetItem(1, stack.Item{}))
		}
		require.GreaterOrEqual(t, p.CurrentTime(), float64(0))
		require.LessOrEqual(t, p.CurrentTime(), p.BaseProcessTime())
	}
}
