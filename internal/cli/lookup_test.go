package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/millwork/internal/stack"
)

func TestLookupItemRecipe(t *testing.T) {
	dir := writeMachines(t, nil)

	out, err := execute(t, "lookup", filepath.Join(dir, "machines"), "--machine", "furnace", "--item", "ingotIron*4")
	require.NoError(t, err)
	assert.Contains(t, out, "furnace: recipe #0 steel")
	assert.Contains(t, out, "ingotIron -> ingotSteel")
	assert.Contains(t, out, "time 20, power 10")
}

func TestLookupFluidRecipeJSON(t *testing.T) {
	dir := writeMachines(t, nil)

	out, err := execute(t, "--format", "json", "lookup", filepath.Join(dir, "machines"), "-m", "electrolyzer", "--fluid", "water*1000")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   LookupResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "electrolyzer", resp.Data.Machine)
	assert.Equal(t, "split", resp.Data.Recipe.Label)
	assert.Equal(t, float64(10), resp.Data.ProcessTime)
	assert.Equal(t, []int{0}, resp.Data.FluidOrder)
}

func TestLookupNoMatch(t *testing.T) {
	dir := writeMachines(t, nil)

	tests := []struct {
		name string
		args []string
	}{
		{"wrong_item", []string{"-m", "furnace", "--item", "ingotSteel"}},
		{"empty_inputs", []string{"-m", "furnace"}},
		{"too_little_fluid", []string{"-m", "electrolyzer", "--fluid", "water*100"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"lookup", filepath.Join(dir, "machines")}, tt.args...)
			out, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, ErrCodeNoMatch)
		})
	}
}

func TestLookupCommandErrors(t *testing.T) {
	dir := writeMachines(t, nil)

	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"unknown_machine", []string{"-m", "smelter"}, ErrCodeUnknownKind},
		{"too_many_items", []string{"-m", "furnace", "--item", "ingotIron", "--item", "ingotIron"}, ErrCodeBadInput},
		{"bad_count", []string{"-m", "furnace", "--item", "ingotIron*x"}, ErrCodeBadInput},
		{"fluid_on_item_machine", []string{"-m", "furnace", "--fluid", "water"}, ErrCodeBadInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"lookup", filepath.Join(dir, "machines")}, tt.args...)
			out, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, tt.wantCode)
		})
	}
}

func TestLookupRequiresMachine(t *testing.T) {
	dir := writeMachines(t, nil)

	_, err := execute(t, "lookup", filepath.Join(dir, "machines"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "machine")
}

func TestParseInputs(t *testing.T) {
	items, err := parseInputs([]string{"empty", "ingotIron:2*3"}, 3, "item", parseItem)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, items[0].IsEmpty())
	assert.Equal(t, stack.Item{ID: "ingotIron", Meta: 2, Count: 3}, items[1])
	assert.True(t, items[2].IsEmpty())

	fluids, err := parseInputs([]string{"water"}, 1, "fluid", parseFluid)
	require.NoError(t, err)
	assert.Equal(t, 1000, fluids[0].Amount)

	_, err = parseInputs([]string{"a", "b"}, 1, "item", parseItem)
	assert.ErrorContains(t, err, "2 item input(s) given, machine has 1")
}
