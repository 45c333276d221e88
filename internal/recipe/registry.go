package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Config is handed to a Registry at construction.
type Config struct {
	// Integration enables recipe export per machine kind. Kinds absent from
	// the map are not exported.
	Integration map[string]bool

	// Exporter receives enabled kinds' recipes. Nil disables export.
	Exporter Exporter

	Logger *slog.Logger
}

// Registry groups the handlers of every machine kind, in insertion order.
type Registry struct {
	cfg      Config
	logger   *slog.Logger
	handlers []*Handler
	byName   map[string]*Handler
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		cfg:    cfg,
		logger: logger,
		byName: make(map[string]*Handler),
	}
}

// Add registers a handler. Names must be unique.
func (r *Registry) Add(h *Handler) error {
	if _, exists := r.byName[h.Name()]; exists {
		return fmt.Errorf("duplicate handler %q", h.Name())
	}
	r.handlers = append(r.handlers, h)
	r.byName[h.Name()] = h
	return nil
}

// Handler returns the handler for a machine kind.
func (r *Registry) Handler(name string) (*Handler, bool) {
	h, ok := r.byName[name]
	return h, ok
}

// Handlers returns every handler in insertion order.
func (r *Registry) Handlers() []*Handler {
	return slices.Clone(r.handlers)
}

// BuildAll builds every handler's cache concurrently. Handlers share no
// state, so each build runs in its own goroutine.
func (r *Registry) BuildAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, h := range r.handlers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("build %s: %w", h.Name(), err)
			}
			h.BuildCache()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	r.logger.Info("recipe registry built", "handlers", len(r.handlers))
	return nil
}

// ExportAll hands the recipes of every enabled kind to the exporter.
// Export failures are logged and counted, never returned: foreign formats
// must not affect the core. It returns the number of kinds exported.
func (r *Registry) ExportAll() int {
	if r.cfg.Exporter == nil {
		return 0
	}
	exported := 0
	for _, h := range r.handlers {
		if !r.cfg.Integration[h.Name()] {
			continue
		}
		if err := r.cfg.Exporter.Export(h.Name(), h.Config().Extras, h.Recipes()); err != nil {
			exportFailures.WithLabelValues(h.Name()).Inc()
			r.logger.Warn("recipe export failed", "handler", h.Name(), "error", err)
			continue
		}
		exported++
	}
	return exported
}
