package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/millwork/internal/processor"
	"github.com/roach88/millwork/internal/store"
)

var errNoStore = errors.New("world has no store")

// Save writes every processor's state, the link set and the clock.
func (w *World) Save(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saveLocked(ctx)
}

func (w *World) saveLocked(ctx context.Context) error {
	if w.store == nil {
		return errNoStore
	}
	tick := w.clock.Current()

	recs := make([]store.ProcessorRecord, 0, len(w.order))
	var links []store.Link
	for _, n := range w.order {
		state, err := n.proc.MarshalState()
		if err != nil {
			return fmt.Errorf("save %s: %w", n.id, err)
		}
		recs = append(recs, store.ProcessorRecord{
			ID:    n.id,
			Kind:  n.kind,
			Seq:   n.seq,
			State: state,
			Tick:  tick,
		})
		for _, side := range processor.Sides {
			if nb := n.links[side]; nb != "" {
				links = append(links, store.Link{ProcessorID: n.id, Side: int(side), NeighborID: nb})
			}
		}
	}

	if err := w.store.SaveProcessors(ctx, recs); err != nil {
		return err
	}
	if err := w.store.ReplaceLinks(ctx, links); err != nil {
		return err
	}
	if err := w.store.SaveClock(ctx, tick); err != nil {
		return err
	}
	w.logger.Debug("world saved", "tick", tick, "processors", len(recs))
	return nil
}

// Load restores processors, links and the clock from the store into an
// empty world.
func (w *World) Load(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.store == nil {
		return errNoStore
	}
	if len(w.order) > 0 {
		return fmt.Errorf("load: world already has %d processors", len(w.order))
	}

	tick, err := w.store.LoadClock(ctx)
	if err != nil {
		return err
	}
	recs, err := w.store.LoadProcessors(ctx)
	if err != nil {
		return err
	}
	links, err := w.store.LoadLinks(ctx)
	if err != nil {
		return err
	}

	loaded := make([]*node, 0, len(recs))
	for _, rec := range recs {
		n, err := w.newNode(rec.ID, rec.Kind, rec.Seq)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		if err := n.proc.RestoreState(rec.State); err != nil {
			return fmt.Errorf("load %s: %w", rec.ID, err)
		}
		loaded = append(loaded, n)
	}
	for _, n := range loaded {
		w.insert(n)
	}
	for _, l := range links {
		n, ok := w.nodes[l.ProcessorID]
		side := processor.Side(l.Side)
		if !ok || !side.Valid() {
			continue
		}
		if _, ok := w.nodes[l.NeighborID]; ok {
			n.links[side] = l.NeighborID
		}
	}
	w.clock.Set(tick)

	w.logger.Info("world loaded", "tick", tick, "processors", len(loaded), "links", len(links))
	return nil
}
