package engine

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/temcen/wardrobe/pkg/models"
)

const defaultOutfitName = "New Outfit"

var adjectivesByFabric = map[models.Fabric][]string{
	models.FabricDenim:    {"Relaxed", "Easy", "Weekend"},
	models.FabricSilk:     {"Polished", "Luxe", "Silky"},
	models.FabricSatin:    {"Polished", "Glossy", "Evening"},
	models.FabricWool:     {"Cozy", "Warm", "Tailored"},
	models.FabricCashmere: {"Cozy", "Soft", "Luxe"},
	models.FabricFleece:   {"Snug", "Cozy", "Lazy"},
	models.FabricLinen:    {"Breezy", "Airy", "Sunlit"},
	models.FabricLeather:  {"Edgy", "Sleek", "Bold"},
}

var defaultAdjectives = []string{"Effortless", "Classic", "Everyday", "Smart", "Fresh"}

var (
	dressNouns   = []string{"Dress Look", "Dress Moment", "One-Piece"}
	layeredNouns = []string{"Layers", "Layered Look", "Stack"}
	baseNouns    = []string{"Combo", "Ensemble", "Look", "Pairing"}
	neutralWords = []string{"Neutral", "Monochrome", "Tonal"}
)

// NameGenerator builds "{Adjective} {Color} {Noun}" names from an item set.
// Word choice is random; inject a seeded source for reproducible names.
type NameGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewNameGenerator(rng *rand.Rand) *NameGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &NameGenerator{rng: rng}
}

func (g *NameGenerator) Generate(items []models.ClothingItem) string {
	if len(items) == 0 {
		return defaultOutfitName
	}

	slots := make([]Slot, len(items))
	for i, item := range items {
		slots[i] = SlotOf(item)
	}

	adjectives := defaultAdjectives
	if pool, ok := adjectivesByFabric[dominantFabric(items, slots)]; ok {
		adjectives = pool
	}

	nouns := baseNouns
	for _, s := range slots {
		if s == SlotDress {
			nouns = dressNouns
			break
		}
		if s == SlotLayer {
			nouns = layeredNouns
		}
	}

	g.mu.Lock()
	adjective := adjectives[g.rng.Intn(len(adjectives))]
	color := colorWord(items, g.rng)
	noun := nouns[g.rng.Intn(len(nouns))]
	g.mu.Unlock()

	return cases.Title(language.English).String(strings.Join([]string{adjective, color, noun}, " "))
}

// dominantFabric is the most common garment fabric, first seen wins ties.
func dominantFabric(items []models.ClothingItem, slots []Slot) models.Fabric {
	counts := make(map[models.Fabric]int)
	var best models.Fabric
	for i, item := range items {
		if !slots[i].isGarment() {
			continue
		}
		counts[item.FabricType]++
		if best == "" || counts[item.FabricType] > counts[best] {
			best = item.FabricType
		}
	}
	return best
}

// colorWord prefers the most common chromatic family and the color name of
// its first item. All-neutral outfits get a neutral word.
func colorWord(items []models.ClothingItem, rng *rand.Rand) string {
	counts := make(map[ColorFamily]int)
	best := FamilyNeutral
	var named string
	for _, item := range items {
		family := ClassifyColor(item.Color)
		if family == FamilyNeutral {
			continue
		}
		counts[family]++
		if best == FamilyNeutral || counts[family] > counts[best] {
			best = family
		}
	}
	if best == FamilyNeutral {
		return neutralWords[rng.Intn(len(neutralWords))]
	}
	for _, item := range items {
		if ClassifyColor(item.Color) == best && strings.TrimSpace(item.ColorName) != "" {
			named = item.ColorName
			break
		}
	}
	if named == "" {
		named = best.String()
	}
	return named
}
