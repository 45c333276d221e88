package processor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/roach88/millwork/internal/stack"
)

// Snapshot is the persisted form of a processor.
type Snapshot struct {
	Time             float64 `json:"time"`
	ResetTime        float64 `json:"resetTime"`
	IsProcessing     bool    `json:"isProcessing"`
	CanProcessInputs bool    `json:"canProcessInputs"`
	HasConsumed      bool    `json:"hasConsumed"`
	Halted           bool    `json:"halted,omitempty"`

	Items         []stack.Item  `json:"items"`
	ConsumedItems []stack.Item  `json:"consumedItems"`
	Tanks         []stack.Fluid `json:"tanks"`
	ConsumedTanks []stack.Fluid `json:"consumedTanks"`

	ItemOutputSettings     []int  `json:"itemOutputSettings"`
	TankOutputSettings     []int  `json:"tankOutputSettings"`
	VoidUnusableFluidInput []bool `json:"voidUnusableFluidInput"`
	InputTanksSeparated    bool   `json:"inputTanksSeparated"`

	ItemSorptions  [6][]int `json:"itemSorptions"`
	FluidSorptions [6][]int `json:"fluidSorptions"`

	Upgrades Upgrades `json:"upgrades"`
	Energy   int64    `json:"energy"`
}

// Snapshot captures the processor's persistent state.
func (p *Processor) Snapshot() Snapshot {
	s := Snapshot{
		Time:                   p.currentTime,
		ResetTime:              p.resetTime,
		IsProcessing:           p.isProcessing,
		CanProcessInputs:       p.canProcessInputs,
		HasConsumed:            p.hasConsumed,
		Halted:                 p.halted,
		Items:                  p.Items(),
		ConsumedItems:          p.ConsumedItems(),
		ConsumedTanks:          p.ConsumedFluids(),
		VoidUnusableFluidInput: append([]bool(nil), p.voidUnusable...),
		InputTanksSeparated:    p.inputTanksSeparated,
		Upgrades:               p.upgrades,
		Energy:                 p.energy.Available(),
	}
	for _, t := range p.tanks {
		s.Tanks = append(s.Tanks, t.Fluid())
	}
	for _, o := range p.itemSettings {
		s.ItemOutputSettings = append(s.ItemOutputSettings, int(o))
	}
	for _, o := range p.tankSettings {
		s.TankOutputSettings = append(s.TankOutputSettings, int(o))
	}
	for side := range Sides {
		for _, v := range p.itemConnections[side] {
			s.ItemSorptions[side] = append(s.ItemSorptions[side], int(v))
		}
		for _, v := range p.fluidConnections[side] {
			s.FluidSorptions[side] = append(s.FluidSorptions[side], int(v))
		}
	}
	return s
}

// MarshalState encodes the snapshot as JSON.
func (p *Processor) MarshalState() ([]byte, error) {
	data, err := json.Marshal(p.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("marshal %s state: %w", p.kind.Name, err)
	}
	return data, nil
}

// RestoreState loads a snapshot. Decoding is tolerant: missing fields keep
// their defaults, out-of-range entries are ignored, unknown output ordinals
// fall back to default, and the legacy per-tank boolean
// "voidExcessFluidOutput<i>" overrides the tank output setting when present.
// Staging buffers are read only when "hasConsumed" is present. The match is
// recomputed without consuming anything.
func (p *Processor) RestoreState(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("invalid processor state: malformed JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return errors.New("invalid processor state: not an object")
	}

	p.currentTime = max(doc.Get("time").Float(), 0)
	p.resetTime = max(doc.Get("resetTime").Float(), 0)
	p.isProcessing = doc.Get("isProcessing").Bool()
	p.canProcessInputs = doc.Get("canProcessInputs").Bool()
	p.halted = doc.Get("halted").Bool()
	p.inputTanksSeparated = doc.Get("inputTanksSeparated").Bool()

	readItems(doc.Get("items"), p.items)
	for i, f := range readFluids(doc.Get("tanks"), len(p.tanks)) {
		p.tanks[i].SetFluid(f)
	}

	hasConsumed := doc.Get("hasConsumed")
	if hasConsumed.Exists() {
		p.hasConsumed = hasConsumed.Bool() && p.kind.ConsumesInputs
		readItems(doc.Get("consumedItems"), p.consumedItems)
		for i, f := range readFluids(doc.Get("consumedTanks"), len(p.consumedTanks)) {
			p.consumedTanks[i].SetFluid(f)
		}
	}

	doc.Get("itemOutputSettings").ForEach(func(k, v gjson.Result) bool {
		if i := int(k.Int()); i < len(p.itemSettings) {
			p.itemSettings[i] = OutputSettingFromOrdinal(v.Int())
		}
		return true
	})
	doc.Get("tankOutputSettings").ForEach(func(k, v gjson.Result) bool {
		if i := int(k.Int()); i < len(p.tankSettings) {
			p.tankSettings[i] = OutputSettingFromOrdinal(v.Int())
		}
		return true
	})
	for i := range p.tankSettings {
		legacy := doc.Get("voidExcessFluidOutput" + strconv.Itoa(i))
		if !legacy.Exists() {
			continue
		}
		if legacy.Bool() {
			p.tankSettings[i] = OutputVoidExcess
		} else {
			p.tankSettings[i] = OutputDefault
		}
	}
	doc.Get("voidUnusableFluidInput").ForEach(func(k, v gjson.Result) bool {
		if i := int(k.Int()); i < len(p.voidUnusable) {
			p.voidUnusable[i] = v.Bool()
		}
		return true
	})

	if p.kind.Configurable {
		readConnections(doc.Get("itemSorptions"), p.itemConnections)
		readConnections(doc.Get("fluidSorptions"), p.fluidConnections)
	}

	if u := doc.Get("upgrades"); u.Exists() {
		p.upgrades = Upgrades{Speed: int(u.Get("speed").Int()), Energy: int(u.Get("energy").Int())}
	}

	items, fluids := p.recipeInputs()
	p.info = p.handler.Lookup(items, fluids)
	p.setRecipeStats()
	p.currentTime = min(p.currentTime, p.baseProcessTime)
	p.resetTime = min(p.resetTime, p.currentTime)

	if e := doc.Get("energy"); e.Exists() && p.ownBuffer != nil {
		p.ownBuffer.SetStored(e.Int())
	}
	return nil
}

func readItems(arr gjson.Result, dst []stack.Item) {
	arr.ForEach(func(k, v gjson.Result) bool {
		i := int(k.Int())
		if i >= len(dst) {
			return false
		}
		s := stack.Item{
			ID:    stack.ResourceID(v.Get("id").String()).Normalize(),
			Meta:  int(v.Get("meta").Int()),
			Tag:   v.Get("tag").String(),
			Count: int(v.Get("count").Int()),
		}
		if s.IsEmpty() {
			s = stack.Item{}
		}
		dst[i] = s
		return true
	})
}

// readFluids returns nil when arr is absent so tanks keep their contents.
func readFluids(arr gjson.Result, n int) []stack.Fluid {
	if !arr.Exists() {
		return nil
	}
	out := make([]stack.Fluid, n)
	arr.ForEach(func(k, v gjson.Result) bool {
		i := int(k.Int())
		if i >= n {
			return false
		}
		f := stack.Fluid{
			ID:     stack.ResourceID(v.Get("id").String()).Normalize(),
			Amount: int(v.Get("amount").Int()),
		}
		if !f.IsEmpty() {
			out[i] = f
		}
		return true
	})
	return out
}

func readConnections(arr gjson.Result, dst connections) {
	arr.ForEach(func(k, side gjson.Result) bool {
		s := int(k.Int())
		if s >= len(dst) {
			return false
		}
		side.ForEach(func(k, v gjson.Result) bool {
			i := int(k.Int())
			if i >= len(dst[s]) {
				return false
			}
			if n := v.Int(); n >= int64(SorptionNone) && n <= int64(SorptionBoth) {
				dst[s][i] = Sorption(n)
			}
			return true
		})
		return true
	})
}
