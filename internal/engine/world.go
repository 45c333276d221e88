package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/millwork/internal/processor"
	"github.com/roach88/millwork/internal/recipe"
	"github.com/roach88/millwork/internal/store"
)

// Machines resolves machine kinds and their recipe handlers by name.
// Implemented by compiler.Result.
type Machines interface {
	Kind(name string) (processor.Kind, bool)
	Handler(name string) (*recipe.Handler, bool)
}

// DefaultTickRate is the number of ticks per second Run aims for.
const DefaultTickRate = 20.0

// historyLimit bounds the in-memory completion log kept without a store.
const historyLimit = 1024

// Option configures a World.
type Option func(*World)

// WithStore persists the world: autosaves, completion log, Load.
func WithStore(s *store.Store) Option {
	return func(w *World) { w.store = s }
}

// WithIDGenerator sets the generator used by Add.
func WithIDGenerator(g IDGenerator) Option {
	return func(w *World) { w.ids = g }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *World) { w.logger = l }
}

// WithTickRate sets Run's pace in ticks per second.
func WithTickRate(perSecond float64) Option {
	return func(w *World) {
		if perSecond > 0 {
			w.tickRate = perSecond
		}
	}
}

// WithAutosave saves the world every n ticks. Zero disables autosave.
func WithAutosave(n int64) Option {
	return func(w *World) { w.autosave = max(n, 0) }
}

// WithClock resumes from an existing clock.
func WithClock(c *Clock) Option {
	return func(w *World) { w.clock = c }
}

type node struct {
	id          string
	kind        string
	seq         int64
	proc        *processor.Processor
	links       [6]string
	completions int64
}

// World owns a set of processors and advances them together.
//
// Processors tick in insertion order. Mutations from other goroutines go
// through Submit and are applied at the start of the next tick, so a
// running world has a single writer.
type World struct {
	mu       sync.Mutex
	machines Machines
	store    *store.Store
	clock    *Clock
	queue    *commandQueue
	ids      IDGenerator
	logger   *slog.Logger
	tickRate float64
	autosave int64

	nodes   map[string]*node
	order   []*node
	nextSeq int64
	pending []store.CompletionRecord
	history []store.CompletionRecord
	running atomic.Bool
}

// New creates an empty world whose processors draw kinds and recipes from m.
func New(m Machines, opts ...Option) *World {
	w := &World{
		machines: m,
		clock:    NewClock(),
		queue:    newCommandQueue(),
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
		tickRate: DefaultTickRate,
		nodes:    make(map[string]*node),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Tick returns the number of ticks run so far.
func (w *World) Tick() int64 { return w.clock.Current() }

// Running reports whether Run is active.
func (w *World) Running() bool { return w.running.Load() }

// Add inserts a processor of the named kind under a generated id.
func (w *World) Add(kind string, opts ...processor.Option) (string, error) {
	id := w.ids.Generate()
	if err := w.AddWithID(id, kind, opts...); err != nil {
		return "", err
	}
	return id, nil
}

// AddWithID inserts a processor under a caller-chosen id.
func (w *World) AddWithID(id, kind string, opts ...processor.Option) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.nodes[id]; exists {
		return &RuntimeError{Code: ErrCodeDuplicateProcessor, Message: "processor already exists", Processor: id}
	}
	n, err := w.newNode(id, kind, w.nextSeq+1, opts...)
	if err != nil {
		return err
	}
	w.insert(n)
	w.logger.Info("processor added", "processor", id, "kind", kind)
	return nil
}

func (w *World) newNode(id, kind string, seq int64, opts ...processor.Option) (*node, error) {
	k, ok := w.machines.Kind(kind)
	if !ok {
		return nil, unknownKind(id, kind)
	}
	h, ok := w.machines.Handler(kind)
	if !ok {
		return nil, unknownKind(id, kind)
	}

	n := &node{id: id, kind: kind, seq: seq}
	base := []processor.Option{
		processor.WithLogger(w.logger.With("processor", id)),
		processor.WithCompletionHook(func(c processor.Completion) { w.recordCompletion(n, c) }),
	}
	p, err := processor.New(k, h, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create processor %s: %w", id, err)
	}
	n.proc = p
	return n, nil
}

func (w *World) insert(n *node) {
	w.nodes[n.id] = n
	w.order = append(w.order, n)
	w.nextSeq = max(w.nextSeq, n.seq)
	processorsGauge.Set(float64(len(w.order)))
}

// Remove deletes a processor and every link touching it.
func (w *World) Remove(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, ok := w.nodes[id]
	if !ok {
		return unknownProcessor(id)
	}
	for _, side := range processor.Sides {
		w.unlinkLocked(n, side)
	}
	delete(w.nodes, id)
	for i, o := range w.order {
		if o == n {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	processorsGauge.Set(float64(len(w.order)))

	if w.store != nil {
		if err := w.store.DeleteProcessor(ctx, id); err != nil {
			return err
		}
	}
	w.logger.Info("processor removed", "processor", id)
	return nil
}

// IDs returns processor ids in insertion order.
func (w *World) IDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := make([]string, len(w.order))
	for i, n := range w.order {
		ids[i] = n.id
	}
	return ids
}

// Inspect runs fn with exclusive access to one processor. fn must not
// retain p.
func (w *World) Inspect(id string, fn func(p *processor.Processor)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, ok := w.nodes[id]
	if !ok {
		return unknownProcessor(id)
	}
	fn(n.proc)
	return nil
}

// Submit queues a command for the next tick. It returns false once the
// world has been closed.
func (w *World) Submit(c Command) bool {
	return w.queue.Enqueue(c)
}

// Apply runs a command immediately.
func (w *World) Apply(c Command) CommandResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.apply(c)
}

// Close rejects further submitted commands.
func (w *World) Close() {
	w.queue.Close()
}

func (w *World) apply(c Command) CommandResult {
	n, ok := w.nodes[c.Processor]
	if !ok {
		return CommandResult{Err: unknownProcessor(c.Processor)}
	}
	p := n.proc
	commandsTotal.WithLabelValues(c.Op.String()).Inc()

	switch c.Op {
	case OpSetItem:
		return CommandResult{Err: p.SetItem(c.Slot, c.Item)}
	case OpInsertItem:
		return CommandResult{Item: p.AcceptItem(c.Side, c.Item, false)}
	case OpExtractItem:
		return CommandResult{Item: p.ExtractItem(c.Side, c.Slot, c.Amount, false)}
	case OpFill:
		return CommandResult{Moved: p.Fill(c.Side, c.Fluid, true)}
	case OpFillTank:
		moved, err := p.FillTank(c.Slot, c.Fluid)
		return CommandResult{Moved: moved, Err: err}
	case OpDrain:
		return CommandResult{Fluid: p.Drain(c.Side, c.Amount, true)}
	case OpHalt:
		p.SetHalted(c.Halted)
	case OpSetUpgrades:
		p.SetUpgrades(c.Upgrades)
	case OpClear:
		p.ClearAll()
	case OpCharge:
		return CommandResult{Moved: int(p.Energy().Receive(int64(c.Amount)))}
	default:
		return CommandResult{Err: fmt.Errorf("unknown command op %d", c.Op)}
	}
	return CommandResult{}
}

func (w *World) applyQueued() {
	for _, c := range w.queue.Drain() {
		res := w.apply(c)
		if res.Err != nil {
			w.logger.Warn("command failed",
				"op", c.Op.String(),
				"processor", c.Processor,
				"error", res.Err,
			)
		}
		if c.Reply != nil {
			select {
			case c.Reply <- res:
			default:
			}
		}
	}
}

func (w *World) recordCompletion(n *node, c processor.Completion) {
	n.completions++
	rec := store.CompletionRecord{ProcessorID: n.id, Tick: w.clock.Current()}
	if c.Recipe != nil {
		rec.RecipeID = int(c.Recipe.ID)
		rec.Recipe = c.Recipe.Label
	}
	w.pending = append(w.pending, rec)
	completionsTotal.WithLabelValues(n.kind).Inc()
}

// Step applies queued commands, then ticks every processor once in
// insertion order. Each processor pushes its outputs to linked neighbours
// right after its own tick.
func (w *World) Step(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stepLocked(ctx)
}

func (w *World) stepLocked(ctx context.Context) error {
	timer := newTickTimer()
	defer timer.observe()

	w.applyQueued()
	tick := w.clock.Next()

	for _, n := range w.order {
		n.proc.Tick()
		nb := neighbors{w: w, n: n}
		n.proc.PushFluids(nb)
		n.proc.PushItems(nb)
	}
	ticksTotal.Inc()

	if err := w.flushCompletions(ctx); err != nil {
		return err
	}
	if w.store != nil && w.clock.Every(w.autosave) {
		if err := w.saveLocked(ctx); err != nil {
			return fmt.Errorf("autosave at tick %d: %w", tick, err)
		}
	}
	return nil
}

func (w *World) flushCompletions(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	pending := w.pending
	w.pending = nil

	if w.store == nil {
		w.history = append(w.history, pending...)
		if over := len(w.history) - historyLimit; over > 0 {
			w.history = append([]store.CompletionRecord(nil), w.history[over:]...)
		}
		return nil
	}
	for _, rec := range pending {
		if _, err := w.store.RecordCompletion(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Completions returns the completion log for one processor, or all when
// id is empty, oldest first. A positive limit keeps the most recent.
func (w *World) Completions(ctx context.Context, id string, limit int) ([]store.CompletionRecord, error) {
	return w.QueryCompletions(ctx, store.CompletionQuery{ProcessorID: id, Limit: max(limit, 0)})
}

// QueryCompletions returns the completions matching q, oldest first.
// Without a store only the in-memory history is searched.
func (w *World) QueryCompletions(ctx context.Context, q store.CompletionQuery) ([]store.CompletionRecord, error) {
	if w.store != nil {
		return w.store.QueryCompletions(ctx, q)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var out []store.CompletionRecord
	for _, rec := range w.history {
		if q.Matches(rec) {
			out = append(out, rec)
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out, nil
}

// Reload swaps the machine set. Every processor must still find its kind,
// with the same shape. Only allowed while Run is not active.
func (w *World) Reload(m Machines) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running.Load() {
		return &RuntimeError{Code: ErrCodeReloadWhileRunning, Message: "stop the world before reloading recipes"}
	}

	handlers := make([]*recipe.Handler, len(w.order))
	for i, n := range w.order {
		h, ok := m.Handler(n.kind)
		if !ok {
			return unknownKind(n.id, n.kind)
		}
		if err := n.proc.Kind().Matches(h.Config()); err != nil {
			return fmt.Errorf("reload %s: %w", n.id, err)
		}
		handlers[i] = h
	}
	for i, n := range w.order {
		if err := n.proc.SetHandler(handlers[i]); err != nil {
			return fmt.Errorf("reload %s: %w", n.id, err)
		}
	}
	w.machines = m
	w.logger.Info("recipes reloaded", "processors", len(w.order))
	return nil
}
