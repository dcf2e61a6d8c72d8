package engine

import (
	"sort"
	"strings"

	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/pkg/models"
)

// Candidate is one structurally valid item combination.
type Candidate struct {
	Items []models.ClothingItem
	slots []Slot
}

// IDs returns the item ids in slot order.
func (c Candidate) IDs() []string {
	return models.ItemIDs(c.Items)
}

// Key identifies the candidate by its item set, independent of order.
func (c Candidate) Key() string {
	ids := c.IDs()
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

func (c Candidate) has(slot Slot) bool {
	for _, s := range c.slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Generator enumerates slot-valid combinations from an active catalog.
type Generator struct {
	cfg config.GeneratorConfig
}

func NewGenerator(cfg config.GeneratorConfig) *Generator {
	return &Generator{cfg: cfg}
}

type slotted struct {
	item models.ClothingItem
	slot Slot
}

// Generate returns candidates of the form (top+bottom | dress) + optional layer
// + optional shoes + up to MaxAccessories accessories. Output order is deterministic.
func (g *Generator) Generate(items []models.ClothingItem, season models.Season, occasion models.Occasion) []Candidate {
	pools := g.buildPools(items, season, occasion)

	var bases [][]slotted
	for _, top := range pools[SlotBaseTop] {
		for _, bottom := range pools[SlotBottom] {
			bases = append(bases, []slotted{top, bottom})
		}
	}
	for _, dress := range pools[SlotDress] {
		bases = append(bases, []slotted{dress})
	}
	if len(bases) == 0 {
		return nil
	}

	layers := optional(pools[SlotLayer])
	shoes := optional(pools[SlotShoes])
	accessories := combinations(pools[SlotAccessory], g.cfg.MaxAccessories)

	// mixed radix: base is the most significant digit so sampling spreads across bases
	radix := []int{len(bases), len(layers), len(shoes), len(accessories)}
	total := 1
	for _, r := range radix {
		total *= r
	}

	indices := sampleIndices(total, g.cfg.MaxCandidates)
	candidates := make([]Candidate, 0, len(indices))
	for _, idx := range indices {
		accIdx := idx % radix[3]
		idx /= radix[3]
		shoeIdx := idx % radix[2]
		idx /= radix[2]
		layerIdx := idx % radix[1]
		baseIdx := idx / radix[1]

		parts := make([]slotted, 0, 6)
		parts = append(parts, bases[baseIdx]...)
		parts = append(parts, layers[layerIdx]...)
		parts = append(parts, shoes[shoeIdx]...)
		parts = append(parts, accessories[accIdx]...)
		if len(parts) < 2 {
			continue
		}

		c := Candidate{
			Items: make([]models.ClothingItem, len(parts)),
			slots: make([]Slot, len(parts)),
		}
		for i, p := range parts {
			c.Items[i] = p.item
			c.slots[i] = p.slot
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// buildPools partitions active items by slot and caps each pool, keeping the
// best fitting items first.
func (g *Generator) buildPools(items []models.ClothingItem, season models.Season, occasion models.Occasion) map[Slot][]slotted {
	seen := make(map[string]struct{}, len(items))
	pools := make(map[Slot][]slotted)
	for _, item := range items {
		if item.Archived {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}

		slot := SlotOf(item)
		if slot == SlotNone {
			continue
		}
		pools[slot] = append(pools[slot], slotted{item: item, slot: slot})
	}

	for slot, pool := range pools {
		sort.SliceStable(pool, func(i, j int) bool {
			a, b := pool[i].item, pool[j].item
			fa := SeasonFit(a, season) * OccasionFit(a, occasion)
			fb := SeasonFit(b, season) * OccasionFit(b, occasion)
			if fa != fb {
				return fa > fb
			}
			if a.Favorite != b.Favorite {
				return a.Favorite
			}
			if a.WearCount != b.WearCount {
				return a.WearCount < b.WearCount
			}
			return a.ID < b.ID
		})
		if g.cfg.MaxPerSlot > 0 && len(pool) > g.cfg.MaxPerSlot {
			pools[slot] = pool[:g.cfg.MaxPerSlot]
		}
	}
	return pools
}

// optional prepends the empty choice to a pool.
func optional(pool []slotted) [][]slotted {
	opts := make([][]slotted, 0, len(pool)+1)
	opts = append(opts, nil)
	for _, p := range pool {
		opts = append(opts, []slotted{p})
	}
	return opts
}

// combinations returns every subset of pool with size 0..k, smallest first.
func combinations(pool []slotted, k int) [][]slotted {
	out := [][]slotted{nil}
	k = min(max(k, 0), len(pool))
	var walk func(start int, cur []slotted)
	walk = func(start int, cur []slotted) {
		if len(cur) == k {
			return
		}
		for i := start; i < len(pool); i++ {
			next := append(append([]slotted(nil), cur...), pool[i])
			out = append(out, next)
			walk(i+1, next)
		}
	}
	walk(0, nil)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) < len(out[j]) })
	return out
}

// sampleIndices returns 0..total-1, or an evenly strided subset of size limit.
func sampleIndices(total, limit int) []int {
	if limit <= 0 || total <= limit {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	indices := make([]int, limit)
	for i := range indices {
		indices[i] = int(int64(i) * int64(total) / int64(limit))
	}
	return indices
}
