package recipe

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/millwork/internal/ingredient"
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

func newAlloyHandler(t *testing.T, shapeless bool) *Handler {
	t.Helper()
	return NewHandler(HandlerConfig{
		Name:           "alloy_furnace",
		ItemInputSize:  2,
		ItemOutputSize: 1,
		Shapeless:      shapeless,
		Logger:         quietLogger(),
	})
}

func TestRegisterRejectsArityMismatch(t *testing.T) {
	h := newAlloyHandler(t, false)

	_, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("ingotIron")},
		ItemOutputs: []ingredient.Item{item("ingotSteel")},
	})
	require.Error(t, err)
	assert.True(t, IsRejected(err))
	assert.Equal(t, ErrCodeArityMismatch, RejectCodeOf(err))
	assert.ErrorContains(t, err, "item inputs: got 1, want 2")
	assert.Empty(t, h.Recipes())
}

func TestRegisterAllContinuesPastRejections(t *testing.T) {
	h := newAlloyHandler(t, false)

	accepted, errs := h.RegisterAll([]Definition{
		{ItemInputs: []ingredient.Item{item("a")}, ItemOutputs: []ingredient.Item{item("x")}},
		{ItemInputs: []ingredient.Item{item("a"), item("b")}, ItemOutputs: []ingredient.Item{item("x")}},
		{ItemInputs: []ingredient.Item{item("a"), nil}, ItemOutputs: []ingredient.Item{item("x")}},
		{ItemInputs: []ingredient.Item{item("c"), item("d")}, ItemOutputs: []ingredient.Item{item("y")}},
	})
	assert.Equal(t, 2, accepted)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrCodeArityMismatch, RejectCodeOf(errs[0]))
	assert.Equal(t, ErrCodeInvalidIngredient, RejectCodeOf(errs[1]))

	recipes := h.Recipes()
	require.Len(t, recipes, 2)
	assert.Equal(t, ID(0), recipes[0].ID)
	assert.Equal(t, ID(1), recipes[1].ID)
}

func TestRegisterRejectsUnknownResource(t *testing.T) {
	cat := stack.NewCatalog()
	cat.AddItems("ingotIron", "ingotSteel")
	h := NewHandler(HandlerConfig{
		Name: "furnace", ItemInputSize: 1, ItemOutputSize: 1,
		Catalog: cat, Logger: quietLogger(),
	})

	_, err := h.Register(Definition{
		Label:       "gold smelting",
		ItemInputs:  []ingredient.Item{item("oreGold")},
		ItemOutputs: []ingredient.Item{item("ingotGold")},
	})
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnknownResource, RejectCodeOf(err))
	assert.ErrorContains(t, err, "recipe=gold smelting")

	_, err = h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("ingotIron")},
		ItemOutputs: []ingredient.Item{item("ingotSteel")},
	})
	assert.NoError(t, err)
}

func TestRegisterRejectsExcessiveExpansion(t *testing.T) {
	cat := stack.NewCatalog()
	cat.AddTag("many", "a", "b", "c", "d")
	h := NewHandler(HandlerConfig{
		Name: "press", ItemInputSize: 2, ItemOutputSize: 1,
		MaxInstantiations: 10, Catalog: cat, Logger: quietLogger(),
	})
	_, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{ingredient.NewTagItem(cat, "many"), ingredient.NewTagItem(cat, "many")},
		ItemOutputs: []ingredient.Item{item("plate")},
	})
	assert.Equal(t, ErrCodePermutationLimit, RejectCodeOf(err))
}

func TestExtrasFixedAgainstSchema(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Name: "decay", ItemInputSize: 1, ItemOutputSize: 1,
		Extras: []ExtraSpec{
			{Name: ExtraTime, Default: 1200},
			{Name: ExtraPower, Default: 0},
			{Name: "radiation", Default: 0},
		},
		Logger: quietLogger(),
	})
	id, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("thorium")},
		ItemOutputs: []ingredient.Item{item("lead")},
		Extras:      map[string]float64{ExtraPower: 25, "bogus": 3},
	})
	require.NoError(t, err)

	r, ok := h.Recipe(id)
	require.True(t, ok)
	assert.Equal(t, map[string]float64{ExtraTime: 1200, ExtraPower: 25, "radiation": 0}, r.Extras())
	_, ok = r.Extra("bogus")
	assert.False(t, ok)
}

func TestBaseProcessTimeScalesDefault(t *testing.T) {
	h := newAlloyHandler(t, false)
	id, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("a"), item("b")},
		ItemOutputs: []ingredient.Item{item("c")},
		Extras:      map[string]float64{ExtraTime: 1.5, ExtraPower: 2},
	})
	require.NoError(t, err)
	r, _ := h.Recipe(id)
	assert.InDelta(t, 300.0, r.BaseProcessTime(200), 1e-9)
	assert.InDelta(t, 80.0, r.BaseProcessPower(40), 1e-9)
}

func TestLookupShaped(t *testing.T) {
	h := newAlloyHandler(t, false)
	_, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("ingotIron", 2), item("dustCoal")},
		ItemOutputs: []ingredient.Item{item("ingotSteel")},
	})
	require.NoError(t, err)
	h.BuildCache()

	info := h.Lookup([]stack.Item{stack.NewItem("ingotIron", 5), stack.NewItem("dustCoal", 1)}, nil)
	require.NotNil(t, info)
	assert.Equal(t, []int{0, 1}, info.ItemOrder)
	assert.Equal(t, 2, info.ItemIngredientSize(0))
	assert.Equal(t, 1, info.ItemIngredientSize(1))

	assert.Nil(t, h.Lookup([]stack.Item{stack.NewItem("dustCoal", 1), stack.NewItem("ingotIron", 5)}, nil),
		"shaped recipes are order sensitive")
	assert.Nil(t, h.Lookup([]stack.Item{stack.NewItem("ingotIron", 1), stack.NewItem("dustCoal", 1)}, nil),
		"insufficient quantity")
	assert.Nil(t, h.Lookup([]stack.Item{stack.NewItem("ingotIron", 5)}, nil), "wrong arity")
}

func TestLookupShapelessPermutationInvariant(t *testing.T) {
	h := newAlloyHandler(t, true)
	_, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("a"), item("b", 2)},
		ItemOutputs: []ingredient.Item{item("ab")},
	})
	require.NoError(t, err)
	h.BuildCache()

	ab := h.Lookup([]stack.Item{stack.NewItem("a", 1), stack.NewItem("b", 2)}, nil)
	ba := h.Lookup([]stack.Item{stack.NewItem("b", 2), stack.NewItem("a", 1)}, nil)
	require.NotNil(t, ab)
	require.NotNil(t, ba)
	assert.Same(t, ab.Recipe, ba.Recipe)

	assert.Equal(t, []int{0, 1}, ab.ItemOrder)
	assert.Equal(t, []int{1, 0}, ba.ItemOrder)
	assert.Equal(t, 2, ba.ItemIngredientSize(0))
	assert.Equal(t, 1, ba.ItemIngredientSize(1))

	assert.Nil(t, h.Lookup([]stack.Item{stack.NewItem("a", 1), stack.NewItem("a", 1)}, nil))
}

func TestLookupShapelessFirstFitExclusivity(t *testing.T) {
	cat := stack.NewCatalog()
	cat.AddTag("metal", "a", "b")
	h := NewHandler(HandlerConfig{
		Name: "mixer", ItemInputSize: 2, ItemOutputSize: 1, Shapeless: true,
		Catalog: cat, Logger: quietLogger(),
	})
	_, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{ingredient.NewTagItem(cat, "metal"), item("a")},
		ItemOutputs: []ingredient.Item{item("alloy")},
	})
	require.NoError(t, err)
	h.BuildCache()

	// "b" can only satisfy the tag; "a" then claims the exact ingredient.
	assert.NotNil(t, h.Lookup([]stack.Item{stack.NewItem("b", 1), stack.NewItem("a", 1)}, nil))
	// "a" claims the tag first and "b" has nothing left: no backtracking.
	assert.Nil(t, h.Lookup([]stack.Item{stack.NewItem("a", 1), stack.NewItem("b", 1)}, nil))
}

func TestLookupFirstRegisteredWins(t *testing.T) {
	h := newAlloyHandler(t, false)
	first, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("a"), item("b")},
		ItemOutputs: []ingredient.Item{item("x")},
	})
	require.NoError(t, err)
	_, err = h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("a"), item("b")},
		ItemOutputs: []ingredient.Item{item("y")},
	})
	require.NoError(t, err)
	h.BuildCache()

	for range 5 {
		info := h.Lookup([]stack.Item{stack.NewItem("a", 1), stack.NewItem("b", 1)}, nil)
		require.NotNil(t, info)
		assert.Equal(t, first, info.Recipe.ID)
	}
}

func TestLookupBeforeBuildScansRecipes(t *testing.T) {
	h := newAlloyHandler(t, false)
	_, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("a"), ingredient.NewEmptyItem()},
		ItemOutputs: []ingredient.Item{item("x")},
	})
	require.NoError(t, err)
	assert.False(t, h.Built())

	info := h.Lookup([]stack.Item{stack.NewItem("a", 1), {}}, nil)
	require.NotNil(t, info)
	assert.Equal(t, 0, info.ItemIngredientSize(1))

	h.BuildCache()
	assert.True(t, h.Built())
	assert.NotNil(t, h.Lookup([]stack.Item{stack.NewItem("a", 1), {}}, nil))
	assert.Nil(t, h.Lookup([]stack.Item{stack.NewItem("a", 1), stack.NewItem("b", 1)}, nil))
}

func TestLookupFluids(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Name: "salt_mixer", FluidInputSize: 2, FluidOutputSize: 1, Shapeless: true,
		Logger: quietLogger(),
	})
	_, err := h.Register(Definition{
		FluidInputs:  []ingredient.Fluid{fluid("water", 1000), fluid("ethanol", 500)},
		FluidOutputs: []ingredient.Fluid{fluid("mix", 1500)},
	})
	require.NoError(t, err)
	h.BuildCache()

	info := h.Lookup(nil, []stack.Fluid{stack.NewFluid("ethanol", 600), stack.NewFluid("water", 1000)})
	require.NotNil(t, info)
	assert.Equal(t, 500, info.FluidIngredientSize(0))
	assert.Equal(t, 1000, info.FluidIngredientSize(1))

	assert.Nil(t, h.Lookup(nil, []stack.Fluid{stack.NewFluid("ethanol", 400), stack.NewFluid("water", 1000)}))
}

func TestMultisetIndexForLargeShapelessRecipes(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Name: "assembler", ItemInputSize: 4, ItemOutputSize: 1, Shapeless: true,
		MaxPermutations: 6, Logger: quietLogger(),
	})
	_, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("a"), item("b"), item("c"), item("d")},
		ItemOutputs: []ingredient.Item{item("abcd")},
	})
	require.NoError(t, err)
	h.BuildCache()
	assert.Empty(t, h.cache)
	assert.Len(t, h.multiset, 1)

	info := h.Lookup([]stack.Item{
		stack.NewItem("d", 1), stack.NewItem("b", 1), stack.NewItem("a", 1), stack.NewItem("c", 1),
	}, nil)
	require.NotNil(t, info)
	assert.Equal(t, []int{3, 1, 0, 2}, info.ItemOrder)
}

func TestValidFluids(t *testing.T) {
	shaped := NewHandler(HandlerConfig{
		Name: "infuser", FluidInputSize: 2, FluidOutputSize: 1, Logger: quietLogger(),
	})
	_, err := shaped.Register(Definition{
		FluidInputs:  []ingredient.Fluid{fluid("water"), fluid("oxygen")},
		FluidOutputs: []ingredient.Fluid{fluid("steam")},
	})
	require.NoError(t, err)
	_, err = shaped.Register(Definition{
		FluidInputs:  []ingredient.Fluid{fluid("lava"), ingredient.NewEmptyFluid()},
		FluidOutputs: []ingredient.Fluid{fluid("obsidian")},
	})
	require.NoError(t, err)

	assert.Nil(t, shaped.ValidFluids(0), "unrestricted before build")
	assert.True(t, shaped.IsValidFluidInput(1, stack.NewFluid("oxygen", 1)))

	shaped.BuildCache()
	assert.Equal(t, []stack.ResourceID{"water", "lava"}, shaped.ValidFluids(0))
	assert.Equal(t, []stack.ResourceID{"oxygen"}, shaped.ValidFluids(1))
	assert.True(t, shaped.IsValidFluidInput(0, stack.NewFluid("lava", 1)))
	assert.False(t, shaped.IsValidFluidInput(1, stack.NewFluid("lava", 1)))
	assert.False(t, shaped.IsValidFluidInput(0, stack.Fluid{}))

	shapeless := NewHandler(HandlerConfig{
		Name: "mixer", FluidInputSize: 2, FluidOutputSize: 1, Shapeless: true, Logger: quietLogger(),
	})
	_, err = shapeless.Register(Definition{
		FluidInputs:  []ingredient.Fluid{fluid("water"), fluid("oxygen")},
		FluidOutputs: []ingredient.Fluid{fluid("steam")},
	})
	require.NoError(t, err)
	shapeless.BuildCache()
	assert.Equal(t, []stack.ResourceID{"water", "oxygen"}, shapeless.ValidFluids(0))
	assert.Equal(t, []stack.ResourceID{"water", "oxygen"}, shapeless.ValidFluids(1))
}

func TestResetClearsHandler(t *testing.T) {
	h := newAlloyHandler(t, false)
	_, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("a"), item("b")},
		ItemOutputs: []ingredient.Item{item("x")},
	})
	require.NoError(t, err)
	h.BuildCache()

	h.Reset()
	assert.Empty(t, h.Recipes())
	assert.False(t, h.Built())
	assert.Nil(t, h.Lookup([]stack.Item{stack.NewItem("a", 1), stack.NewItem("b", 1)}, nil))
}

func TestRecipeString(t *testing.T) {
	h := newAlloyHandler(t, false)
	id, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("ingotIron", 2), ingredient.NewEmptyItem()},
		ItemOutputs: []ingredient.Item{item("ingotSteel")},
	})
	require.NoError(t, err)
	r, _ := h.Recipe(id)
	assert.Equal(t, "ingotIron x2 + empty -> ingotSteel", r.String())

	_, ok := h.Recipe(99)
	assert.False(t, ok)
}
