package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashMaterialsDeterministic(t *testing.T) {
	items := []ResourceID{"ingotIron", ""}
	fluids := []ResourceID{"water"}
	assert.Equal(t, HashMaterials(items, fluids), HashMaterials(items, fluids))
}

func TestHashMaterialsIsOrdered(t *testing.T) {
	ab := HashMaterials([]ResourceID{"a", "b"}, nil)
	ba := HashMaterials([]ResourceID{"b", "a"}, nil)
	assert.NotEqual(t, ab, ba)
}

func TestHashMaterialsSeparatesItemsAndFluids(t *testing.T) {
	asItem := HashMaterials([]ResourceID{"water"}, nil)
	asFluid := HashMaterials(nil, []ResourceID{"water"})
	assert.NotEqual(t, asItem, asFluid)
}

func TestHashMaterialsEmptyPositionsMatter(t *testing.T) {
	one := HashMaterials([]ResourceID{"a"}, nil)
	padded := HashMaterials([]ResourceID{"a", ""}, nil)
	assert.NotEqual(t, one, padded)
}

func TestHashMultisetIgnoresOrder(t *testing.T) {
	ab := HashMultiset([]ResourceID{"a", "b"}, []ResourceID{"x", "y"})
	ba := HashMultiset([]ResourceID{"b", "a"}, []ResourceID{"y", "x"})
	assert.Equal(t, ab, ba)
	assert.NotEqual(t, ab, HashMaterials([]ResourceID{"a", "b"}, []ResourceID{"x", "y"}), "domains differ")
}

func TestHashMultisetDoesNotMutateInput(t *testing.T) {
	items := []ResourceID{"b", "a"}
	HashMultiset(items, nil)
	assert.Equal(t, []ResourceID{"b", "a"}, items)
}

func TestHashStacksIgnoresQuantities(t *testing.T) {
	a := HashStacks([]Item{NewItem("ingotIron", 2)}, []Fluid{NewFluid("water", 10)})
	b := HashStacks([]Item{NewItem("ingotIron", 64)}, []Fluid{NewFluid("water", 16000)})
	assert.Equal(t, a, b)

	empty := HashStacks([]Item{{ID: "ingotIron"}}, nil)
	assert.Equal(t, HashMaterials([]ResourceID{""}, nil), empty, "zero-count stack hashes as empty")
}
