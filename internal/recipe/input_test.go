package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/millwork/internal/ingredient"
	"github.com/roach88/millwork/internal/stack"
)

func newSmartHandler(t *testing.T, shapeless bool) *Handler {
	t.Helper()
	h := newAlloyHandler(t, shapeless)
	_, err := h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("ingotIron", 2), item("dustCoal")},
		ItemOutputs: []ingredient.Item{item("ingotSteel")},
	})
	require.NoError(t, err)
	_, err = h.Register(Definition{
		ItemInputs:  []ingredient.Item{item("ingotCopper", 3), item("ingotTin")},
		ItemOutputs: []ingredient.Item{item("ingotBronze", 4)},
	})
	require.NoError(t, err)
	h.BuildCache()
	return h
}

func TestIsValidItemInputShaped(t *testing.T) {
	h := newSmartHandler(t, false)
	assert.True(t, h.IsValidItemInput(0, stack.NewItem("ingotIron", 1)), "quantity ignored")
	assert.False(t, h.IsValidItemInput(1, stack.NewItem("ingotIron", 1)), "wrong position")
	assert.True(t, h.IsValidItemInput(1, stack.NewItem("ingotTin", 1)))
	assert.False(t, h.IsValidItemInput(0, stack.Item{}))
}

func TestIsValidItemInputShapeless(t *testing.T) {
	h := newSmartHandler(t, true)
	assert.True(t, h.IsValidItemInput(1, stack.NewItem("ingotIron", 1)))
	assert.False(t, h.IsValidItemInput(0, stack.NewItem("ingotGold", 1)))
}

func TestSmartInputDegradesWhenOthersEmpty(t *testing.T) {
	h := newSmartHandler(t, true)
	inputs := []stack.Item{{}, {}}
	assert.True(t, h.IsValidItemInputSmart(0, stack.NewItem("ingotIron", 1), nil, inputs))
	assert.True(t, h.IsValidItemInputSmart(1, stack.NewItem("ingotIron", 1), nil, inputs))
}

func TestSmartInputRefusesDuplicateIngredient(t *testing.T) {
	h := newSmartHandler(t, true)
	inputs := []stack.Item{stack.NewItem("ingotIron", 1), {}}

	assert.False(t, h.IsValidItemInputSmart(1, stack.NewItem("ingotIron", 1), nil, inputs),
		"iron already occupies another slot")
	assert.True(t, h.IsValidItemInputSmart(1, stack.NewItem("dustCoal", 1), nil, inputs))
	assert.False(t, h.IsValidItemInputSmart(1, stack.NewItem("ingotTin", 1), nil, inputs),
		"no recipe combines iron and tin")
	assert.True(t, h.IsValidItemInputSmart(0, stack.NewItem("ingotIron", 5), nil, inputs),
		"stacking onto the same slot")
}

func TestSmartInputUsesCurrentRecipe(t *testing.T) {
	h := newSmartHandler(t, true)
	inputs := []stack.Item{stack.NewItem("ingotCopper", 3), stack.NewItem("ingotTin", 1)}
	info := h.Lookup(inputs, nil)
	require.NotNil(t, info)

	partial := []stack.Item{stack.NewItem("ingotCopper", 3), {}}
	assert.True(t, h.IsValidItemInputSmart(1, stack.NewItem("ingotTin", 1), info, partial))
	assert.False(t, h.IsValidItemInputSmart(1, stack.NewItem("dustCoal", 1), info, partial))
}

func TestSmartInputShaped(t *testing.T) {
	h := newSmartHandler(t, false)
	inputs := []stack.Item{stack.NewItem("ingotIron", 2), {}}
	assert.True(t, h.IsValidItemInputSmart(1, stack.NewItem("dustCoal", 1), nil, inputs))
	assert.False(t, h.IsValidItemInputSmart(1, stack.NewItem("ingotTin", 1), nil, inputs))
	assert.False(t, h.IsValidItemInputSmart(5, stack.NewItem("ingotTin", 1), nil, inputs))
}
