package recipe

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/millwork/internal/ingredient"
	"github.com/roach88/millwork/internal/stack"
)

const (
	// DefaultMaxPermutations bounds the orderings a shapeless recipe may
	// insert into the cache (7!). Larger recipes are indexed by multiset.
	DefaultMaxPermutations = 5040

	// DefaultMaxInstantiations bounds the resource combinations a single
	// recipe may expand to in the cache.
	DefaultMaxInstantiations = 1 << 16
)

// HandlerConfig declares a machine kind's recipe shape.
type HandlerConfig struct {
	Name            string
	ItemInputSize   int
	FluidInputSize  int
	ItemOutputSize  int
	FluidOutputSize int
	Shapeless       bool

	// Extras is the ordered extras schema. Nil means DefaultExtras.
	Extras []ExtraSpec

	// Factor reduces fluid-only recipes to lowest terms at registration.
	Factor bool

	MaxPermutations   int
	MaxInstantiations int

	// Catalog resolves resources; nil accepts any identifier.
	Catalog *stack.Catalog
	Logger  *slog.Logger
}

// Handler registers the recipes of one machine kind and matches inputs
// against them.
type Handler struct {
	cfg    HandlerConfig
	logger *slog.Logger

	recipes     []*Recipe
	cache       map[uint64][]*Recipe
	multiset    map[uint64][]*Recipe
	validFluids [][]stack.ResourceID
	built       bool
}

// NewHandler creates an empty handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Extras == nil {
		cfg.Extras = DefaultExtras()
	}
	if cfg.MaxPermutations <= 0 {
		cfg.MaxPermutations = DefaultMaxPermutations
	}
	if cfg.MaxInstantiations <= 0 {
		cfg.MaxInstantiations = DefaultMaxInstantiations
	}
	if cfg.Catalog == nil {
		cfg.Catalog = stack.NewCatalog()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:    cfg,
		logger: logger.With("handler", cfg.Name),
	}
}

// Name returns the machine kind this handler serves.
func (h *Handler) Name() string { return h.cfg.Name }

// Config returns the handler's configuration with defaults applied.
func (h *Handler) Config() HandlerConfig { return h.cfg }

// Built reports whether the cache reflects every registered recipe.
func (h *Handler) Built() bool { return h.built }

// Recipes returns the registered recipes in registration order.
func (h *Handler) Recipes() []*Recipe {
	return slices.Clone(h.recipes)
}

// Recipe returns a recipe by ID.
func (h *Handler) Recipe(id ID) (*Recipe, bool) {
	if id < 0 || int(id) >= len(h.recipes) {
		return nil, false
	}
	return h.recipes[id], true
}

// Reset drops every recipe and the cache, ready for a reload.
func (h *Handler) Reset() {
	h.recipes = nil
	h.cache = nil
	h.multiset = nil
	h.validFluids = nil
	h.built = false
}

// Register validates a definition and appends it. Invalid definitions are
// logged, counted and returned as *RejectedError; the handler is unchanged.
// Registering invalidates the cache until the next BuildCache.
func (h *Handler) Register(def Definition) (ID, error) {
	label := def.Label
	if label == "" {
		label = describe(def.ItemInputs, def.FluidInputs, def.ItemOutputs, def.FluidOutputs)
	}

	if err := h.checkArity(def); err != nil {
		return -1, h.reject(ErrCodeArityMismatch, label, err)
	}
	if err := checkNotNil(def); err != nil {
		return -1, h.reject(ErrCodeInvalidIngredient, label, err)
	}
	if err := h.checkResources(def); err != nil {
		return -1, h.reject(ErrCodeUnknownResource, label, err)
	}

	r := &Recipe{
		ID:               ID(len(h.recipes)),
		Label:            def.Label,
		Handler:          h.cfg.Name,
		Shapeless:        h.cfg.Shapeless,
		ItemIngredients:  slices.Clone(def.ItemInputs),
		FluidIngredients: slices.Clone(def.FluidInputs),
		ItemProducts:     slices.Clone(def.ItemOutputs),
		FluidProducts:    slices.Clone(def.FluidOutputs),
		schema:           h.cfg.Extras,
		extras:           fixExtras(h.cfg.Extras, def.Extras),
	}
	if h.cfg.Factor {
		r = Factor(r)
	}
	if n := h.instantiations(r); n > h.cfg.MaxInstantiations {
		return -1, h.reject(ErrCodePermutationLimit, label,
			fmt.Errorf("expands to more than %d cache entries", h.cfg.MaxInstantiations))
	}

	h.recipes = append(h.recipes, r)
	h.built = false
	recipesRegistered.WithLabelValues(h.cfg.Name).Inc()
	h.logger.Debug("recipe registered", "recipe_id", r.ID, "recipe", r.String())
	return r.ID, nil
}

// RegisterAll registers a batch, continuing past rejections. It returns
// the number accepted and every rejection.
func (h *Handler) RegisterAll(defs []Definition) (int, []error) {
	var errs []error
	accepted := 0
	for _, def := range defs {
		if _, err := h.Register(def); err != nil {
			errs = append(errs, err)
			continue
		}
		accepted++
	}
	return accepted, errs
}

func (h *Handler) reject(code RejectCode, label string, cause error) error {
	recipesRejected.WithLabelValues(h.cfg.Name, string(code)).Inc()
	h.logger.Warn("recipe rejected", "code", code, "recipe", label, "error", cause)
	return &RejectedError{Code: code, Handler: h.cfg.Name, Recipe: label, Message: cause.Error()}
}

func (h *Handler) checkArity(def Definition) error {
	checks := []struct {
		what      string
		got, want int
	}{
		{"item inputs", len(def.ItemInputs), h.cfg.ItemInputSize},
		{"fluid inputs", len(def.FluidInputs), h.cfg.FluidInputSize},
		{"item outputs", len(def.ItemOutputs), h.cfg.ItemOutputSize},
		{"fluid outputs", len(def.FluidOutputs), h.cfg.FluidOutputSize},
	}
	for _, c := range checks {
		if c.got != c.want {
			return fmt.Errorf("%s: got %d, want %d", c.what, c.got, c.want)
		}
	}
	return nil
}

func checkNotNil(def Definition) error {
	for i, ing := range def.ItemInputs {
		if ing == nil {
			return fmt.Errorf("item input %d is nil", i)
		}
	}
	for i, ing := range def.FluidInputs {
		if ing == nil {
			return fmt.Errorf("fluid input %d is nil", i)
		}
	}
	for i, ing := range def.ItemOutputs {
		if ing == nil || ing.Variants() == 0 {
			return fmt.Errorf("item output %d is unusable", i)
		}
	}
	for i, ing := range def.FluidOutputs {
		if ing == nil || ing.Variants() == 0 {
			return fmt.Errorf("fluid output %d is unusable", i)
		}
	}
	return nil
}

func (h *Handler) checkResources(def Definition) error {
	cat := h.cfg.Catalog
	for _, ing := range append(slices.Clone(def.ItemInputs), def.ItemOutputs...) {
		if err := ing.Validate(cat); err != nil {
			return err
		}
	}
	for _, ing := range append(slices.Clone(def.FluidInputs), def.FluidOutputs...) {
		if err := ing.Validate(cat); err != nil {
			return err
		}
	}
	return nil
}

// instantiations estimates the cache entries a recipe expands to,
// saturating just above the configured bound.
func (h *Handler) instantiations(r *Recipe) int {
	limit := h.cfg.MaxInstantiations
	total := 1
	mul := func(n int) {
		if total > limit {
			return
		}
		total *= n
		if total > limit {
			total = limit + 1
		}
	}
	for _, ing := range r.ItemIngredients {
		mul(len(ing.Resources()))
	}
	for _, ing := range r.FluidIngredients {
		mul(len(ing.Resources()))
	}
	if r.Shapeless && !h.exceedsPermutations(len(r.ItemIngredients), len(r.FluidIngredients)) {
		mul(permutationCount(len(r.ItemIngredients), limit))
		mul(permutationCount(len(r.FluidIngredients), limit))
	}
	return total
}

func (h *Handler) exceedsPermutations(items, fluids int) bool {
	limit := h.cfg.MaxPermutations
	return permutationCount(items, limit)*permutationCount(fluids, limit) > limit
}

// BuildCache indexes every registered recipe by material hash. Shaped
// recipes insert each combination of their ingredients' resources;
// shapeless recipes insert every item ordering times every fluid ordering
// of each combination, or a single multiset key when that exceeds
// MaxPermutations.
func (h *Handler) BuildCache() {
	start := time.Now()
	cache := make(map[uint64][]*Recipe)
	multiset := make(map[uint64][]*Recipe)

	for _, r := range h.recipes {
		itemSets := make([][]stack.ResourceID, len(r.ItemIngredients))
		for i, ing := range r.ItemIngredients {
			itemSets[i] = ing.Resources()
		}
		fluidSets := make([][]stack.ResourceID, len(r.FluidIngredients))
		for i, ing := range r.FluidIngredients {
			fluidSets[i] = ing.Resources()
		}

		for _, items := range CartesianProduct(itemSets) {
			for _, fluids := range CartesianProduct(fluidSets) {
				switch {
				case !r.Shapeless:
					addToBucket(cache, stack.HashMaterials(items, fluids), r)
				case h.exceedsPermutations(len(items), len(fluids)):
					addToBucket(multiset, stack.HashMultiset(items, fluids), r)
				default:
					for _, ip := range Permutations(items) {
						for _, fp := range Permutations(fluids) {
							addToBucket(cache, stack.HashMaterials(ip, fp), r)
						}
					}
				}
			}
		}
	}

	h.cache = cache
	h.multiset = multiset
	h.validFluids = h.computeValidFluids()
	h.built = true

	elapsed := time.Since(start)
	cacheKeys.WithLabelValues(h.cfg.Name).Set(float64(len(cache) + len(multiset)))
	cacheBuildDuration.WithLabelValues(h.cfg.Name).Observe(elapsed.Seconds())
	h.logger.Info("recipe cache built",
		"recipes", len(h.recipes),
		"keys", len(cache),
		"multiset_keys", len(multiset),
		"duration", elapsed)
}

func addToBucket(m map[uint64][]*Recipe, key uint64, r *Recipe) {
	if !slices.Contains(m[key], r) {
		m[key] = append(m[key], r)
	}
}

func (h *Handler) computeValidFluids() [][]stack.ResourceID {
	out := make([][]stack.ResourceID, h.cfg.FluidInputSize)
	for i := range out {
		out[i] = []stack.ResourceID{}
	}
	for _, r := range h.recipes {
		for pos, ing := range r.FluidIngredients {
			for _, id := range ing.Resources() {
				if id == "" {
					continue
				}
				for tank := range out {
					if (r.Shapeless || tank == pos) && !slices.Contains(out[tank], id) {
						out[tank] = append(out[tank], id)
					}
				}
			}
		}
	}
	return out
}

// ValidFluids lists the fluids any recipe accepts in a tank, in first-seen
// order. It returns nil until the cache is built, meaning unrestricted.
func (h *Handler) ValidFluids(tank int) []stack.ResourceID {
	if !h.built || tank < 0 || tank >= len(h.validFluids) {
		return nil
	}
	return slices.Clone(h.validFluids[tank])
}

// Lookup finds the first registered recipe the inputs satisfy. Slice
// lengths must equal the handler's input sizes. Returns nil when nothing
// matches.
func (h *Handler) Lookup(items []stack.Item, fluids []stack.Fluid) *Info {
	if len(items) != h.cfg.ItemInputSize || len(fluids) != h.cfg.FluidInputSize {
		return nil
	}
	for _, r := range h.candidates(items, fluids) {
		if info := match(r, items, fluids); info != nil {
			cacheHits.WithLabelValues(h.cfg.Name).Inc()
			return info
		}
	}
	cacheMisses.WithLabelValues(h.cfg.Name).Inc()
	return nil
}

// candidates returns the recipes worth verifying, in registration order.
// Before the cache is built every recipe is a candidate.
func (h *Handler) candidates(items []stack.Item, fluids []stack.Fluid) []*Recipe {
	if !h.built {
		return h.recipes
	}
	bucket := h.cache[stack.HashStacks(items, fluids)]
	if len(h.multiset) == 0 {
		return bucket
	}
	extra := h.multiset[stack.HashStacksMultiset(items, fluids)]
	if len(extra) == 0 {
		return bucket
	}
	merged := slices.Clone(bucket)
	for _, r := range extra {
		if !slices.Contains(merged, r) {
			merged = append(merged, r)
		}
	}
	slices.SortFunc(merged, func(a, b *Recipe) int { return int(a.ID - b.ID) })
	return merged
}

func match(r *Recipe, items []stack.Item, fluids []stack.Fluid) *Info {
	info := &Info{
		Recipe:        r,
		ItemOrder:     make([]int, len(items)),
		ItemVariants:  make([]int, len(items)),
		FluidOrder:    make([]int, len(fluids)),
		FluidVariants: make([]int, len(fluids)),
	}
	if r.Shapeless {
		if !matchShapeless(r.ItemIngredients, items, info.ItemOrder, info.ItemVariants) ||
			!matchShapeless(r.FluidIngredients, fluids, info.FluidOrder, info.FluidVariants) {
			return nil
		}
		return info
	}
	if !matchShaped(r.ItemIngredients, items, info.ItemOrder, info.ItemVariants) ||
		!matchShaped(r.FluidIngredients, fluids, info.FluidOrder, info.FluidVariants) {
		return nil
	}
	return info
}

type matcher[S any] interface {
	Match(candidate S, s ingredient.Sorption) ingredient.MatchResult
}

// matchShaped pairs slot i with ingredient i.
func matchShaped[S any, M matcher[S]](ings []M, stacks []S, order, variants []int) bool {
	if len(ings) != len(stacks) {
		return false
	}
	for i, ing := range ings {
		res := ing.Match(stacks[i], ingredient.Input)
		if !res.Matches {
			return false
		}
		order[i] = i
		variants[i] = res.Variant
	}
	return true
}

// matchShapeless gives each slot, in order, the first unclaimed ingredient
// it satisfies. There is no backtracking.
func matchShapeless[S any, M matcher[S]](ings []M, stacks []S, order, variants []int) bool {
	if len(ings) != len(stacks) {
		return false
	}
	claimed := make([]bool, len(ings))
	for i, s := range stacks {
		found := false
		for j, ing := range ings {
			if claimed[j] {
				continue
			}
			if res := ing.Match(s, ingredient.Input); res.Matches {
				claimed[j] = true
				order[i] = j
				variants[i] = res.Variant
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
