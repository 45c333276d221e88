package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/millwork/internal/compiler"
	"github.com/roach88/millwork/internal/engine"
	"github.com/roach88/millwork/internal/logging"
	"github.com/roach88/millwork/internal/recipe"
	"github.com/roach88/millwork/internal/server"
	"github.com/roach88/millwork/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr  string   // overrides http.addr
	DB    string   // overrides store.path
	Place []string // id=kind processors to add when missing
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve [recipes-dir]",
		Short: "Run the world and its status API",
		Long: `Build the recipe registry, restore the world from the store and tick
it at engine.tick_rate while serving the HTTP status API.

The world is saved every engine.autosave_ticks ticks and on shutdown
(SIGINT or SIGTERM).

Examples:
  millwork serve
  millwork serve ./recipes --addr :9090 --db ./world.db
  millwork serve --place furnace-1=furnace --place press-1=press`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default http.addr)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database path (default store.path)")
	cmd.Flags().StringArrayVar(&opts.Place, "place", nil, "processor to add as id=kind (repeatable)")

	return cmd
}

func runServe(opts *ServeOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.HTTP.Addr = opts.Addr
	}
	if opts.DB != "" {
		cfg.Store.Path = opts.DB
	}
	placements, err := parsePlacements(opts.Place)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeBadInput, err.Error(), nil)
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	logger := logging.New(cmd.ErrOrStderr(), "millwork", Version, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := recipesDir(args, cfg)
	bundle, problems, err := loadBundle(f, dir)
	if err != nil {
		return err
	}
	bo := buildOptions(cfg, logger)
	bo.Integration = cfg.Recipes.Integration()
	bo.Exporter = recipe.JSONExporter{Dir: cfg.Recipes.ExportDir}
	res, buildErrs := compiler.Build(ctx, bundle, bo)
	for _, p := range append(problems, buildErrs...) {
		logger.Warn("recipe problem", "error", p)
	}
	if n := res.Registry.ExportAll(); n > 0 {
		logger.Info("recipes exported", "machines", n, "dir", cfg.Recipes.ExportDir)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	w := engine.New(res,
		engine.WithStore(st),
		engine.WithLogger(logger),
		engine.WithTickRate(cfg.Engine.TickRate),
		engine.WithAutosave(cfg.Engine.AutosaveTicks),
	)
	defer w.Close()

	if err := w.Load(ctx); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("load world: %v", err), nil)
	}
	for _, p := range placements {
		if slices.Contains(w.IDs(), p.id) {
			continue
		}
		if err := w.AddWithID(p.id, p.kind); err != nil {
			return f.Fail(ExitCommandError, ErrCodeUnknownKind, err.Error(), nil)
		}
		logger.Info("processor placed", "id", p.id, "kind", p.kind)
	}

	srv := server.New(w, server.WithLogger(logger))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(gctx) })
	g.Go(func() error { return srv.Listen(gctx, cfg.HTTP.Addr) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "serve", err)
	}
	logger.Info("shutdown complete", "tick", w.Tick())
	return nil
}

type placement struct{ id, kind string }

func parsePlacements(raw []string) ([]placement, error) {
	out := make([]placement, 0, len(raw))
	for _, s := range raw {
		id, kind, ok := strings.Cut(s, "=")
		id, kind = strings.TrimSpace(id), strings.TrimSpace(kind)
		if !ok || id == "" || kind == "" {
			return nil, fmt.Errorf("placement %q: want id=kind", s)
		}
		out = append(out, placement{id: id, kind: kind})
	}
	return out, nil
}
