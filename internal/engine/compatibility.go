package engine

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/temcen/wardrobe/pkg/models"
)

// ColorFamily is a coarse hue bucket. Neutrals pair with everything.
type ColorFamily int

const (
	FamilyNeutral ColorFamily = iota
	FamilyRed
	FamilyOrange
	FamilyYellow
	FamilyGreen
	FamilyBlue
	FamilyPurple
	FamilyPink
)

// wheelSize is the number of chromatic families arranged on the hue wheel.
const wheelSize = 7

func (f ColorFamily) String() string {
	switch f {
	case FamilyRed:
		return "red"
	case FamilyOrange:
		return "orange"
	case FamilyYellow:
		return "yellow"
	case FamilyGreen:
		return "green"
	case FamilyBlue:
		return "blue"
	case FamilyPurple:
		return "purple"
	case FamilyPink:
		return "pink"
	default:
		return "neutral"
	}
}

const (
	harmonySameFamily    = 1.0
	harmonyNeutral       = 0.9
	harmonyAdjacent      = 0.75
	harmonyTwoStep       = 0.5
	harmonyComplementary = 0.3
)

// ClassifyColor buckets a hex color. Unparseable colors are treated as neutral.
func ClassifyColor(hex string) ColorFamily {
	c, err := colorful.Hex(normalizeHex(hex))
	if err != nil {
		return FamilyNeutral
	}

	h, s, l := c.Hsl()
	if s < 0.18 || l < 0.12 || l > 0.93 {
		return FamilyNeutral
	}
	// browns, tans, camels and creams read as neutrals
	if (h >= 15 && h < 50 && (l < 0.35 || s < 0.35)) || (l > 0.85 && s < 0.6) {
		return FamilyNeutral
	}

	switch {
	case h < 15 || h >= 345:
		if l > 0.75 {
			return FamilyPink
		}
		return FamilyRed
	case h < 45:
		return FamilyOrange
	case h < 70:
		return FamilyYellow
	case h < 170:
		return FamilyGreen
	case h < 260:
		return FamilyBlue
	case h < 320:
		return FamilyPurple
	default:
		return FamilyPink
	}
}

func normalizeHex(hex string) string {
	hex = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(hex)), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return "#" + hex
}

func familyDistance(a, b ColorFamily) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	if wheelSize-d < d {
		return wheelSize - d
	}
	return d
}

// FamilyHarmony scores two color families. It is symmetric.
func FamilyHarmony(a, b ColorFamily) float64 {
	if a == FamilyNeutral || b == FamilyNeutral {
		return harmonyNeutral
	}
	switch familyDistance(a, b) {
	case 0:
		return harmonySameFamily
	case 1:
		return harmonyAdjacent
	case 2:
		return harmonyTwoStep
	default:
		return harmonyComplementary
	}
}

// ColorHarmony scores two hex colors.
func ColorHarmony(a, b string) float64 {
	return FamilyHarmony(ClassifyColor(a), ClassifyColor(b))
}

func itemFamilies(item models.ClothingItem) []ColorFamily {
	families := []ColorFamily{ClassifyColor(item.Color)}
	if item.SecondaryColor != "" {
		families = append(families, ClassifyColor(item.SecondaryColor))
	}
	return families
}

// ItemHarmony averages harmony over every primary/secondary color combination of two items.
func ItemHarmony(a, b models.ClothingItem) float64 {
	fa, fb := itemFamilies(a), itemFamilies(b)
	total := 0.0
	for _, x := range fa {
		for _, y := range fb {
			total += FamilyHarmony(x, y)
		}
	}
	return total / float64(len(fa)*len(fb))
}

type fabricPair struct {
	a, b models.Fabric
}

func pairOf(a, b models.Fabric) fabricPair {
	if a > b {
		a, b = b, a
	}
	return fabricPair{a: a, b: b}
}

const (
	defaultFabricScore = 0.8
	cottonFabricScore  = 0.9
	summerHeavyFactor  = 0.7
)

// fabricRules are advisory pair scores; nothing here is a hard veto.
var fabricRules = map[fabricPair]float64{
	pairOf(models.FabricDenim, models.FabricDenim):         0.6,
	pairOf(models.FabricWool, models.FabricWool):           0.6,
	pairOf(models.FabricFleece, models.FabricFleece):       0.5,
	pairOf(models.FabricLeather, models.FabricLeather):     0.5,
	pairOf(models.FabricSilk, models.FabricFleece):         0.4,
	pairOf(models.FabricSatin, models.FabricFleece):        0.4,
	pairOf(models.FabricLinen, models.FabricFleece):        0.4,
	pairOf(models.FabricLinen, models.FabricWool):          0.5,
	pairOf(models.FabricNylon, models.FabricSilk):          0.5,
	pairOf(models.FabricNylon, models.FabricSatin):         0.5,
	pairOf(models.FabricSatin, models.FabricDenim):         0.6,
	pairOf(models.FabricSilk, models.FabricDenim):          0.7,
	pairOf(models.FabricCotton, models.FabricDenim):        1.0,
	pairOf(models.FabricCashmere, models.FabricSilk):       0.9,
	pairOf(models.FabricWool, models.FabricCashmere):       0.8,
	pairOf(models.FabricLinen, models.FabricLinen):         0.9,
	pairOf(models.FabricLeather, models.FabricDenim):       0.9,
	pairOf(models.FabricPolyester, models.FabricPolyester): 0.6,
}

// FabricCompatibility scores a fabric pair for the given season ("" = any season).
func FabricCompatibility(a, b models.Fabric, season models.Season) float64 {
	score, ok := fabricRules[pairOf(a, b)]
	if !ok {
		score = defaultFabricScore
		if a == models.FabricCotton || b == models.FabricCotton {
			score = cottonFabricScore
		}
	}
	if season == models.SeasonSummer && a.IsHeavy() && b.IsHeavy() {
		score *= summerHeavyFactor
	}
	return score
}

const (
	fitNoFilter = 1.0
	fitTagged   = 1.0
	fitNeutral  = 0.8
	fitMismatch = 0.4
)

// SeasonFit never returns zero: a mismatched season only lowers the score.
func SeasonFit(item models.ClothingItem, season models.Season) float64 {
	if season == "" {
		return fitNoFilter
	}
	if len(item.Seasons) == 0 {
		return fitNeutral
	}
	for _, s := range item.Seasons {
		if s == season {
			return fitTagged
		}
	}
	return fitMismatch
}

// OccasionFit follows the same policy as SeasonFit.
func OccasionFit(item models.ClothingItem, occasion models.Occasion) float64 {
	if occasion == "" {
		return fitNoFilter
	}
	if len(item.Occasions) == 0 {
		return fitNeutral
	}
	for _, o := range item.Occasions {
		if o == occasion {
			return fitTagged
		}
	}
	return fitMismatch
}
