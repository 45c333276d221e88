package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/millwork/internal/processor"
	"github.com/roach88/millwork/internal/recipe"
	"github.com/roach88/millwork/internal/stack"
)

// BuildOptions are the settings applied to every machine of a bundle.
type BuildOptions struct {
	Factor          bool
	SmartInput      bool
	MaxPermutations int
	Integration     map[string]bool
	Exporter        recipe.Exporter
	Logger          *slog.Logger
}

// Result is a built registry and the processor kinds it serves.
type Result struct {
	Registry *recipe.Registry
	Kinds    map[string]processor.Kind
	Catalog  *stack.Catalog
	Accepted int
	Rejected int
}

// Kind returns the processor kind for a machine name.
func (r *Result) Kind(name string) (processor.Kind, bool) {
	k, ok := r.Kinds[name]
	return k, ok
}

// Handler returns the recipe handler for a machine name.
func (r *Result) Handler(name string) (*recipe.Handler, bool) {
	return r.Registry.Handler(name)
}

// Build registers every machine of a bundle and builds the recipe caches.
// Machines failing validation are skipped; rejected recipes are skipped.
// Every problem is returned, the registry is usable regardless.
func Build(ctx context.Context, b *Bundle, opts BuildOptions) (*Result, []error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Logger = logger

	res := &Result{
		Registry: recipe.NewRegistry(recipe.Config{
			Integration: opts.Integration,
			Exporter:    opts.Exporter,
			Logger:      logger,
		}),
		Kinds:   make(map[string]processor.Kind),
		Catalog: b.Catalog,
	}

	var errs []error
	for _, spec := range b.Machines {
		if verrs := Validate(spec); len(verrs) > 0 {
			for _, verr := range verrs {
				errs = append(errs, verr)
			}
			logger.Warn("machine skipped", "machine", spec.Name, "errors", len(verrs))
			continue
		}

		h := recipe.NewHandler(spec.HandlerConfig(opts, b.Catalog))
		accepted, rejected := h.RegisterAll(spec.Recipes)
		res.Accepted += accepted
		res.Rejected += len(rejected)
		errs = append(errs, rejected...)

		if err := res.Registry.Add(h); err != nil {
			errs = append(errs, fmt.Errorf("machine %s: %w", spec.Name, err))
			continue
		}
		res.Kinds[spec.Name] = spec.ProcessorKind(opts)
	}

	if err := res.Registry.BuildAll(ctx); err != nil {
		errs = append(errs, fmt.Errorf("building recipe caches: %w", err))
	}
	logger.Info("recipes loaded",
		"machines", len(res.Kinds),
		"accepted", res.Accepted,
		"rejected", res.Rejected)
	return res, errs
}
