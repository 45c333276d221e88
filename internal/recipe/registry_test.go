package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/millwork/internal/ingredient"
	"github.com/roach88/millwork/internal/stack"
)

type recordingExporter struct {
	calls []string
	fail  map[string]bool
}

func (e *recordingExporter) Export(handler string, _ []ExtraSpec, _ []*Recipe) error {
	e.calls = append(e.calls, handler)
	if e.fail[handler] {
		return errors.New("foreign format unavailable")
	}
	return nil
}

func newTestRegistry(t *testing.T, cfg Config) *Registry {
	t.Helper()
	cfg.Logger = quietLogger()
	reg := NewRegistry(cfg)
	for _, name := range []string{"furnace", "crusher", "press"} {
		h := NewHandler(HandlerConfig{Name: name, ItemInputSize: 1, ItemOutputSize: 1, Logger: quietLogger()})
		_, err := h.Register(Definition{
			ItemInputs:  []ingredient.Item{item("ore")},
			ItemOutputs: []ingredient.Item{item(stack.ResourceID(name + "_out"))},
		})
		require.NoError(t, err)
		require.NoError(t, reg.Add(h))
	}
	return reg
}

func TestRegistryAddRejectsDuplicates(t *testing.T) {
	reg := NewRegistry(Config{Logger: quietLogger()})
	require.NoError(t, reg.Add(NewHandler(HandlerConfig{Name: "furnace"})))
	assert.Error(t, reg.Add(NewHandler(HandlerConfig{Name: "furnace"})))

	_, ok := reg.Handler("furnace")
	assert.True(t, ok)
	_, ok = reg.Handler("missing")
	assert.False(t, ok)
}

func TestRegistryBuildAll(t *testing.T) {
	reg := newTestRegistry(t, Config{})
	require.NoError(t, reg.BuildAll(context.Background()))

	names := []string{}
	for _, h := range reg.Handlers() {
		assert.True(t, h.Built())
		names = append(names, h.Name())
		info := h.Lookup([]stack.Item{stack.NewItem("ore", 1)}, nil)
		require.NotNil(t, info)
		assert.Equal(t, stack.ResourceID(h.Name()+"_out"), info.Recipe.ItemProducts[0].Stack().ID)
	}
	assert.Equal(t, []string{"furnace", "crusher", "press"}, names, "insertion order")
}

func TestRegistryBuildAllCancelled(t *testing.T) {
	reg := newTestRegistry(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := reg.BuildAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistryExportOnlyEnabledKinds(t *testing.T) {
	exp := &recordingExporter{fail: map[string]bool{"press": true}}
	reg := newTestRegistry(t, Config{
		Integration: map[string]bool{"furnace": true, "crusher": false, "press": true},
		Exporter:    exp,
	})

	n := reg.ExportAll()
	assert.Equal(t, 1, n, "failing export is swallowed")
	assert.Equal(t, []string{"furnace", "press"}, exp.calls)
}

func TestRegistryExportWithoutExporter(t *testing.T) {
	reg := newTestRegistry(t, Config{Integration: map[string]bool{"furnace": true}})
	assert.Equal(t, 0, reg.ExportAll())
}

func TestJSONExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")
	reg := newTestRegistry(t, Config{
		Integration: map[string]bool{"furnace": true},
		Exporter:    JSONExporter{Dir: dir},
	})
	require.Equal(t, 1, reg.ExportAll())

	data, err := os.ReadFile(filepath.Join(dir, "furnace.json"))
	require.NoError(t, err)

	var doc ExportedHandler
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "furnace", doc.Handler)
	require.Len(t, doc.Recipes, 1)
	assert.Equal(t, []string{"ore"}, doc.Recipes[0].ItemInputs)
	assert.Equal(t, []string{"furnace_out"}, doc.Recipes[0].ItemOutputs)
	assert.Equal(t, map[string]float64{"time": 1, "power": 1}, doc.Recipes[0].Extras)
	assert.Len(t, doc.Extras, 2)
}
