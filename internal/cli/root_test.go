package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/millwork/internal/testutil"
)

const machinesCUE = `package machines

resources: {
	items: ["ingotIron", "ingotSteel", "plateSteel"]
	fluids: ["water", "hydrogen", "oxygen"]
}

machine: furnace: {
	items_in:        1
	items_out:       1
	process_time:    20
	process_power:   10
	energy_capacity: 1000
	recipes: [
		{label: "steel", item_inputs: ["ingotIron"], item_outputs: ["ingotSteel"]},
	]
}

machine: electrolyzer: {
	fluids_in:    1
	fluids_out:   2
	process_time: 10
	recipes: [
		{label: "split", fluid_inputs: ["water*500"], fluid_outputs: ["hydrogen*250", "oxygen*250"]},
	]
}
`

// writeMachines writes the shared machine definitions to a fresh
// directory, plus any extra files.
func writeMachines(t *testing.T, extra map[string]string) string {
	t.Helper()
	files := map[string]string{"machines/machines.cue": machinesCUE}
	for k, v := range extra {
		files[k] = v
	}
	return testutil.WriteFiles(t, t.TempDir(), files)
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--env-dir", ""}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "millwork", cmd.Use)
	assert.Contains(t, cmd.Long, "CUE")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "export", "lookup", "simulate", "serve"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "validate", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidConfigFile(t *testing.T) {
	dir := writeMachines(t, map[string]string{"millwork.yaml": "engine:\n  tick_rate: 0\n"})

	_, err := execute(t, "--config", dir+"/millwork.yaml", "validate", dir+"/machines")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.False(t, IsReported(err))
	assert.Contains(t, err.Error(), "tick_rate")
}

func TestConfigSuppliesRecipesDir(t *testing.T) {
	dir := writeMachines(t, nil)
	t.Setenv("MILLWORK_RECIPES_DIR", dir+"/machines")

	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "2 machine(s)")
}

func TestLookupCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	lookupCmd, _, err := cmd.Find([]string{"lookup"})
	require.NoError(t, err)

	machineFlag := lookupCmd.Flags().Lookup("machine")
	require.NotNil(t, machineFlag)
	assert.Equal(t, "m", machineFlag.Shorthand)
	require.NotNil(t, lookupCmd.Flags().Lookup("item"))
	require.NotNil(t, lookupCmd.Flags().Lookup("fluid"))
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	for _, name := range []string{"addr", "db", "place"} {
		flag := serveCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Contains(t, []string{"", "[]"}, flag.DefValue, name)
	}
}
