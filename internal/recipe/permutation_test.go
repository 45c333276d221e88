package recipe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermutations(t *testing.T) {
	in := []string{"a", "b", "c"}
	perms := Permutations(in)
	assert.Len(t, perms, 6)

	seen := make(map[string]bool)
	for _, p := range perms {
		seen[fmt.Sprint(p)] = true
	}
	assert.Len(t, seen, 6, "all orderings distinct")
	assert.Equal(t, []string{"a", "b", "c"}, perms[0], "first is the input order")
	assert.Equal(t, []string{"a", "b", "c"}, in, "input unchanged")
}

func TestPermutationsSmall(t *testing.T) {
	assert.Equal(t, [][]int{{}}, Permutations([]int{}))
	assert.Equal(t, [][]int{{7}}, Permutations([]int{7}))
	assert.Len(t, Permutations([]int{1, 2, 3, 4, 5}), 120)
}

func TestCartesianProduct(t *testing.T) {
	got := CartesianProduct([][]string{{"a", "b"}, {"x"}, {"1", "2"}})
	assert.Equal(t, [][]string{
		{"a", "x", "1"}, {"a", "x", "2"},
		{"b", "x", "1"}, {"b", "x", "2"},
	}, got)

	assert.Equal(t, [][]string{{}}, CartesianProduct[string](nil))
	assert.Empty(t, CartesianProduct([][]string{{"a"}, {}}))
}

func TestPermutationCountSaturates(t *testing.T) {
	assert.Equal(t, 1, permutationCount(0, 100))
	assert.Equal(t, 24, permutationCount(4, 100))
	assert.Equal(t, 101, permutationCount(10, 100))
}
