package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/millwork/internal/compiler"
	"github.com/roach88/millwork/internal/testutil"
)

func TestValidateValidMachines(t *testing.T) {
	dir := writeMachines(t, nil)

	out, err := execute(t, "validate", filepath.Join(dir, "machines"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 machine(s), 2 recipe(s) valid")
}

func TestValidateValidMachinesJSON(t *testing.T) {
	dir := writeMachines(t, nil)

	out, err := execute(t, "--format", "json", "validate", filepath.Join(dir, "machines"))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"electrolyzer", "furnace"}, resp.Data.Machines)
	assert.Equal(t, 2, resp.Data.Accepted)
	assert.Zero(t, resp.Data.Rejected)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := execute(t, "validate", "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), compiler.ErrCodeNotFound)
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, err := execute(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), compiler.ErrCodeNoFiles)
}

func TestValidateBrokenCUE(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{"bad.cue": "package m\nmachine: {"})

	_, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))
}

func TestValidateRejectedRecipe(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"machines.cue": `package m
resources: items: ["a", "b"]
machine: mill: {
	items_in: 1
	items_out: 1
	process_time: 5
	recipes: [
		{label: "ok", item_inputs: ["a"], item_outputs: ["b"]},
		{label: "bad", item_inputs: ["missing"], item_outputs: ["b"]},
	]
}
`,
	})

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeRejected)
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "1 problem(s)")
}

func TestValidateRejectedRecipeJSON(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{
		"machines.cue": `package m
resources: items: ["a", "b"]
machine: mill: {
	items_in: 1
	items_out: 1
	process_time: 5
	recipes: [{label: "bad", item_inputs: ["missing"], item_outputs: ["b"]}]
}
`,
	})

	out, err := execute(t, "--format", "json", "validate", dir)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRejected, resp.Error.Code)

	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, details["valid"])
	assert.Equal(t, float64(1), details["rejected"])
}
