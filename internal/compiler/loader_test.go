package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const furnaceCUE = `
package test

resources: {
	items: ["ingotIron", "ingotSteel", "ingotCopper", "dustCopper"]
	fluids: ["water"]
}

machine: furnace: {
	items_in: 1
	items_out: 1
	process_time: 200
	recipes: [
		{item_inputs: ["ingotIron"], item_outputs: ["ingotSteel"]},
		{item_inputs: ["dustCopper"], item_outputs: ["ingotCopper"]},
	]
}
`

const crusherCUE = `
package test

machine: crusher: {
	items_in: 1
	items_out: 1
	process_time: 100
	consumes_inputs: true
	recipes: [{item_inputs: ["ingotCopper"], item_outputs: ["dustCopper"]}]
}
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"furnace.cue": furnaceCUE,
		"crusher.cue": crusherCUE,
	})

	bundle, errs := LoadDir(dir, LoadModeCollectAll)
	require.Empty(t, errs)
	assert.Equal(t, 2, bundle.FileCount)
	require.Len(t, bundle.Machines, 2)

	crusher, ok := bundle.Machine("crusher")
	require.True(t, ok)
	assert.True(t, crusher.Kind.ConsumesInputs)
	_, ok = bundle.Machine("missing")
	assert.False(t, ok)

	assert.True(t, bundle.Catalog.KnownItem("ingotSteel"))
	assert.False(t, bundle.Catalog.KnownItem("unobtainium"))
	assert.True(t, bundle.Catalog.KnownFluid("water"))
}

func TestLoadDirErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, errs := LoadDir(filepath.Join(t.TempDir(), "nope"), LoadModeFailFast)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), ErrCodeNotFound)
	})

	t.Run("no cue files", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"notes.txt": "not cue"})
		_, errs := LoadDir(dir, LoadModeFailFast)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), ErrCodeNoFiles)
	})

	t.Run("syntax error", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"bad.cue": "package test\nmachine: {"})
		_, errs := LoadDir(dir, LoadModeFailFast)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), ErrCodeLoadFailed)
	})
}

func TestCompileModes(t *testing.T) {
	src := `
		machine: a: {items_in: 1, items_out: 1}
		machine: b: {items_in: 1, items_out: 1, process_time: 5, recipes: [{item_inputs: [{count: 1}], item_outputs: ["x"]}]}
		machine: c: {items_in: 1, items_out: 1, process_time: 5, recipes: [{item_inputs: ["y"], item_outputs: ["x"]}]}
	`
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())

	bundle, errs := Compile(v, LoadModeCollectAll)
	require.Len(t, errs, 2)
	require.Len(t, bundle.Machines, 1)
	assert.Equal(t, "c", bundle.Machines[0].Name)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeProcessTime, loadErr.Code)
	require.ErrorAs(t, errs[1], &loadErr)
	assert.Equal(t, ErrCodeIngredient, loadErr.Code)
	assert.Contains(t, loadErr.Message, "machine.b")

	_, errs = Compile(v, LoadModeFailFast)
	assert.Len(t, errs, 1)
}

func TestCompileWithoutMachines(t *testing.T) {
	v := cuecontext.New().CompileString(`resources: items: ["a"]`)
	_, errs := Compile(v, LoadModeCollectAll)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no machines found")
}

func TestCompileCatalogRejectsEmptyTag(t *testing.T) {
	v := cuecontext.New().CompileString(`tags: nothing: []`)
	_, err := CompileCatalog(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tags.nothing")
}

func TestFindCUEFilesRecurses(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"root.cue":       "package test",
		"notcue.txt":     "not a cue file",
		"sub/nested.cue": "package test",
	})
	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
