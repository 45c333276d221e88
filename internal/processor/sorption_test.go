package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/millwork/internal/stack"
)

func TestSideOpposite(t *testing.T) {
	pairs := map[Side]Side{Down: Up, North: South, West: East}
	for a, b := range pairs {
		assert.Equal(t, b, a.Opposite())
		assert.Equal(t, a, b.Opposite())
	}

	s, err := ParseSide("North")
	require.NoError(t, err)
	assert.Equal(t, North, s)
	_, err = ParseSide("sideways")
	assert.Error(t, err)
}

func TestSorptionToggle(t *testing.T) {
	kind := furnaceKind(0)
	kind.Configurable = true
	p := newProcessor(t, kind, newHandler(t, kind, false, false, steelRecipe()))

	var seen []Sorption
	for range 3 {
		s, err := p.ToggleItemSorption(Up, 0, false)
		require.NoError(t, err)
		seen = append(seen, s)
	}
	assert.Equal(t, []Sorption{SorptionBoth, SorptionNone, SorptionIn}, seen)

	s, err := p.ToggleItemSorption(Up, 1, true)
	require.NoError(t, err)
	assert.Equal(t, SorptionNone, s)
	assert.Equal(t, SorptionOut, p.ItemSorption(Down, 1))
}

func TestSorptionGatesInsertion(t *testing.T) {
	kind := furnaceKind(0)
	kind.Configurable = true
	p := newProcessor(t, kind, newHandler(t, kind, false, false, steelRecipe()))
	require.NoError(t, p.SetItemSorption(North, 0, SorptionNone))

	iron := stack.NewItem("ingotIron", 3)
	assert.Equal(t, iron, p.InsertItem(North, 0, iron, false))
	assert.True(t, p.AcceptItem(South, iron, false).IsEmpty())
	assert.Equal(t, 3, p.Item(0).Count)

	assert.True(t, p.ExtractItem(Up, 0, 1, false).IsEmpty())
	require.NoError(t, p.SetItemSorption(Up, 0, SorptionBoth))
	assert.Equal(t, 1, p.ExtractItem(Up, 0, 1, false).Count)
}

func TestSorptionRequiresConfigurableKind(t *testing.T) {
	p := newFurnace(t, 0)
	_, err := p.ToggleItemSorption(Up, 0, false)
	assert.ErrorContains(t, err, "not configurable")
	assert.Error(t, p.SetTankSorption(Up, 0, SorptionIn))
}

func TestOutputSettingOrdinals(t *testing.T) {
	assert.Equal(t, OutputVoidExcess, OutputSettingFromOrdinal(1))
	assert.Equal(t, OutputVoid, OutputSettingFromOrdinal(2))
	assert.Equal(t, OutputDefault, OutputSettingFromOrdinal(9))
	assert.Equal(t, OutputDefault, OutputVoid.Next())

	o, err := ParseOutputSetting("void_excess")
	require.NoError(t, err)
	assert.Equal(t, OutputVoidExcess, o)
}
