package engine

import (
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/pkg/models"
)

const (
	ReasonColor    = "Matching color family"
	ReasonFabric   = "Fabrics pair well"
	ReasonNovelty  = "Features pieces you rarely wear"
	ReasonLovedFit = "Similar to outfits you loved"
)

var (
	seasonReasons   = map[models.Season]string{}
	occasionReasons = map[models.Occasion]string{}
)

func init() {
	title := cases.Title(language.English)
	for _, s := range []models.Season{models.SeasonSpring, models.SeasonSummer, models.SeasonFall, models.SeasonWinter} {
		seasonReasons[s] = "Great for " + title.String(string(s))
	}
	for _, o := range []models.Occasion{
		models.OccasionCasual, models.OccasionWork, models.OccasionFormal,
		models.OccasionParty, models.OccasionDate, models.OccasionAthletic,
	} {
		occasionReasons[o] = "Perfect for " + title.String(string(o))
	}
}

// SubScores are the individual components, each in [0,1].
type SubScores struct {
	Color         float64 `json:"color"`
	MinHarmony    float64 `json:"min_harmony"`
	Fabric        float64 `json:"fabric"`
	Season        float64 `json:"season"`
	Occasion      float64 `json:"occasion"`
	Novelty       float64 `json:"novelty"`
	Completeness  float64 `json:"completeness"`
	RatingBonus   float64 `json:"rating_bonus"`
	RatingPenalty float64 `json:"rating_penalty"`
}

// Scored is a candidate with its score and explanation.
type Scored struct {
	Candidate
	Value    float64
	Reasons  []string
	Pattern  string
	Sub      SubScores
	Excluded bool
}

// ScoreContext carries the per-request inputs of the scorer.
type ScoreContext struct {
	Season       models.Season
	Occasion     models.Occasion
	RatedOutfits []models.RatedOutfit
	Flagged      FlagSet
	// KnownIDs restricts rating history to items still in the catalog. Nil disables the filter.
	KnownIDs map[string]struct{}
}

type Scorer struct {
	weights    config.ScoreWeights
	thresholds config.ReasonThresholds
}

func NewScorer(weights config.ScoreWeights, thresholds config.ReasonThresholds) *Scorer {
	return &Scorer{weights: weights, thresholds: thresholds}
}

// Score is pure: identical inputs give identical output. A candidate whose
// pattern is flagged comes back Excluded with a zero value.
func (s *Scorer) Score(c Candidate, sc *ScoreContext) Scored {
	result := Scored{Candidate: c, Pattern: CanonicalPattern(c.Items)}
	if sc.Flagged.Contains(result.Pattern) {
		result.Excluded = true
		return result
	}

	sub := SubScores{}
	var garmentPairs int
	sub.Color, sub.MinHarmony = colorScore(c.Items)
	sub.Fabric, garmentPairs = fabricScore(c, sc.Season)
	sub.Season, sub.Occasion, sub.Novelty = itemAverages(c.Items, sc.Season, sc.Occasion)
	sub.Completeness = completeness(c)
	sub.RatingBonus, sub.RatingPenalty = ratingBias(c.IDs(), sc.RatedOutfits, sc.KnownIDs)

	w := s.weights
	value := w.Color*sub.Color +
		w.Fabric*sub.Fabric +
		w.Season*sub.Season +
		w.Occasion*sub.Occasion +
		w.Novelty*sub.Novelty +
		w.Completeness*sub.Completeness +
		w.RatingBonus*sub.RatingBonus -
		w.RatingPenalty*sub.RatingPenalty
	if sub.MinHarmony < s.thresholds.Clash {
		value -= w.ClashPenalty
	}
	result.Value = math.Max(0, value)
	result.Sub = sub
	result.Reasons = s.reasons(sub, garmentPairs, sc)
	return result
}

func (s *Scorer) reasons(sub SubScores, garmentPairs int, sc *ScoreContext) []string {
	t := s.thresholds
	reasons := make([]string, 0, 4)
	if sub.Color >= t.Color {
		reasons = append(reasons, ReasonColor)
	}
	if garmentPairs > 0 && sub.Fabric >= t.Fabric {
		reasons = append(reasons, ReasonFabric)
	}
	if sc.Season != "" && sub.Season >= t.Season {
		if r, ok := seasonReasons[sc.Season]; ok {
			reasons = append(reasons, r)
		}
	}
	if sc.Occasion != "" && sub.Occasion >= t.Occasion {
		if r, ok := occasionReasons[sc.Occasion]; ok {
			reasons = append(reasons, r)
		}
	}
	if sub.Novelty >= t.Novelty {
		reasons = append(reasons, ReasonNovelty)
	}
	if sub.RatingBonus >= t.Rating && sub.RatingBonus > 0 {
		reasons = append(reasons, ReasonLovedFit)
	}
	return reasons
}

// colorScore blends the mean pairwise harmony with the worst pair so a single
// clash drags the whole outfit down.
func colorScore(items []models.ClothingItem) (score, worst float64) {
	var harmonies []float64
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			harmonies = append(harmonies, ItemHarmony(items[i], items[j]))
		}
	}
	if len(harmonies) == 0 {
		return 1, 1
	}
	worst = floats.Min(harmonies)
	return 0.5*stat.Mean(harmonies, nil) + 0.5*worst, worst
}

func fabricScore(c Candidate, season models.Season) (float64, int) {
	var scores []float64
	for i := 0; i < len(c.Items); i++ {
		if !c.slots[i].isGarment() {
			continue
		}
		for j := i + 1; j < len(c.Items); j++ {
			if !c.slots[j].isGarment() {
				continue
			}
			scores = append(scores, FabricCompatibility(c.Items[i].FabricType, c.Items[j].FabricType, season))
		}
	}
	if len(scores) == 0 {
		return defaultFabricScore, 0
	}
	return stat.Mean(scores, nil), len(scores)
}

func itemAverages(items []models.ClothingItem, season models.Season, occasion models.Occasion) (seasonFit, occasionFit, novelty float64) {
	n := len(items)
	seasons := make([]float64, n)
	occasions := make([]float64, n)
	novelties := make([]float64, n)
	for i, item := range items {
		seasons[i] = SeasonFit(item, season)
		occasions[i] = OccasionFit(item, occasion)
		novelties[i] = 1 / (1 + float64(max(item.WearCount, 0)))
	}
	return stat.Mean(seasons, nil), stat.Mean(occasions, nil), stat.Mean(novelties, nil)
}

func completeness(c Candidate) float64 {
	score := 0.0
	if c.has(SlotShoes) {
		score += 0.5
	}
	if c.has(SlotLayer) {
		score += 0.25
	}
	if c.has(SlotAccessory) {
		score += 0.25
	}
	return score
}

// ratingBias compares the candidate against each rated outfit by Jaccard
// similarity. Ratings above 3 pull toward similar outfits, below 3 push away.
func ratingBias(ids []string, rated []models.RatedOutfit, known map[string]struct{}) (bonus, penalty float64) {
	candidate := toSet(ids)
	for _, r := range rated {
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		hist := make(map[string]struct{}, len(r.ItemIDs))
		for _, id := range r.ItemIDs {
			if known != nil {
				if _, ok := known[id]; !ok {
					continue
				}
			}
			hist[id] = struct{}{}
		}
		if len(hist) == 0 {
			continue
		}

		weight := float64(r.Rating-3) / 2
		sim := jaccard(candidate, hist)
		switch {
		case weight > 0:
			bonus = math.Max(bonus, weight*sim)
		case weight < 0:
			penalty = math.Max(penalty, -weight*sim)
		}
	}
	return bonus, penalty
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func intersection(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for id := range a {
		if _, ok := b[id]; ok {
			n++
		}
	}
	return n
}

func jaccard(a, b map[string]struct{}) float64 {
	inter := intersection(a, b)
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
