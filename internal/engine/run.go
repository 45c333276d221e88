package engine

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// Run ticks the world at the configured rate until ctx is cancelled, then
// saves it if a store is attached. Only one Run may be active at a time.
func (w *World) Run(ctx context.Context) error {
	// Taken under mu so a concurrent Reload either finishes first or
	// sees the world running.
	w.mu.Lock()
	started := w.running.CompareAndSwap(false, true)
	w.mu.Unlock()
	if !started {
		return errors.New("world is already running")
	}
	defer w.running.Store(false)

	limiter := rate.NewLimiter(rate.Limit(w.tickRate), 1)
	w.logger.Info("world starting",
		"tick", w.clock.Current(),
		"tick_rate", w.tickRate,
		"processors", len(w.IDs()),
	)

	for {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		if err := w.Step(ctx); err != nil {
			// Log and continue: one failed autosave must not stop the world
			w.logger.Error("tick failed", "tick", w.clock.Current(), "error", err)
		}
	}

	w.logger.Info("world stopping", "tick", w.clock.Current())
	if w.store != nil {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := w.Save(saveCtx); err != nil {
			return errors.Join(ctx.Err(), err)
		}
	}
	return ctx.Err()
}

// RunTicks steps the world n times without pacing.
func (w *World) RunTicks(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}
