package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/pkg/models"
)

func newTestScorer() *Scorer {
	cfg := config.DefaultEngineConfig()
	return NewScorer(cfg.Weights, cfg.Thresholds)
}

func TestScorer_Deterministic(t *testing.T) {
	s := newTestScorer()
	catalog := basicCatalog()
	c := candidateOf(catalog...)
	sc := &ScoreContext{
		Season:       models.SeasonFall,
		Occasion:     models.OccasionCasual,
		RatedOutfits: []models.RatedOutfit{{ItemIDs: []string{"tshirt", "jeans"}, Rating: 4}},
		Flagged:      NewFlagSet([]models.FlaggedPattern{{Pattern: "dress+heels"}}),
	}

	first := s.Score(c, sc)
	second := s.Score(c, sc)

	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, first.Reasons, second.Reasons)
	assert.Greater(t, first.Value, 0.0)
}

func TestScorer_FlaggedPatternIsExcluded(t *testing.T) {
	s := newTestScorer()
	catalog := basicCatalog()
	sc := &ScoreContext{Flagged: NewFlagSet([]models.FlaggedPattern{{Pattern: "tshirt+jeans"}})}

	flagged := s.Score(candidateOf(catalog[1], catalog[0]), sc)
	assert.True(t, flagged.Excluded)
	assert.Zero(t, flagged.Value)

	larger := s.Score(candidateOf(catalog[0], catalog[1], catalog[3]), sc)
	assert.False(t, larger.Excluded)
}

func TestScorer_Reasons(t *testing.T) {
	s := newTestScorer()
	catalog := basicCatalog()
	for i := range catalog {
		catalog[i].Seasons = []models.Season{models.SeasonFall}
		catalog[i].Occasions = []models.Occasion{models.OccasionWork}
	}
	c := candidateOf(catalog[0], catalog[1], catalog[3])

	t.Run("with filters", func(t *testing.T) {
		result := s.Score(c, &ScoreContext{Season: models.SeasonFall, Occasion: models.OccasionWork})
		assert.Equal(t, []string{
			ReasonColor,
			ReasonFabric,
			"Great for Fall",
			"Perfect for Work",
			ReasonNovelty,
		}, result.Reasons)
	})

	t.Run("without filters", func(t *testing.T) {
		result := s.Score(c, &ScoreContext{})
		assert.NotContains(t, result.Reasons, "Great for Fall")
		assert.Contains(t, result.Reasons, ReasonColor)
	})

	t.Run("season mismatch", func(t *testing.T) {
		result := s.Score(c, &ScoreContext{Season: models.SeasonSummer})
		assert.NotContains(t, result.Reasons, "Great for Summer")
		assert.InDelta(t, 0.4, result.Sub.Season, 1e-9)
	})

	t.Run("worn pieces", func(t *testing.T) {
		worn := make([]models.ClothingItem, len(c.Items))
		copy(worn, c.Items)
		for i := range worn {
			worn[i].WearCount = 9
		}
		result := s.Score(candidateOf(worn...), &ScoreContext{})
		assert.NotContains(t, result.Reasons, ReasonNovelty)
		assert.InDelta(t, 0.1, result.Sub.Novelty, 1e-9)
	})
}

func TestScorer_RatingBiasIsMonotonic(t *testing.T) {
	s := newTestScorer()
	loved := []models.ClothingItem{
		item("tee-a", models.CategoryTops, "tshirt", "#FFFFFF", models.FabricCotton),
		item("jeans-a", models.CategoryBottoms, "jeans", "#1E3A8A", models.FabricDenim),
	}
	hated := []models.ClothingItem{
		item("tee-b", models.CategoryTops, "tshirt", "#FFFFFF", models.FabricCotton),
		item("jeans-b", models.CategoryBottoms, "jeans", "#1E3A8A", models.FabricDenim),
	}
	sc := &ScoreContext{RatedOutfits: []models.RatedOutfit{
		{ItemIDs: []string{"tee-a", "jeans-a"}, Rating: 5},
		{ItemIDs: []string{"tee-b", "jeans-b"}, Rating: 1},
	}}

	lovedScore := s.Score(candidateOf(loved...), sc)
	hatedScore := s.Score(candidateOf(hated...), sc)
	neutralScore := s.Score(candidateOf(loved...), &ScoreContext{})

	assert.Greater(t, lovedScore.Value, neutralScore.Value)
	assert.Greater(t, neutralScore.Value, hatedScore.Value)
	assert.InDelta(t, 1.0, lovedScore.Sub.RatingBonus, 1e-9)
	assert.InDelta(t, 1.0, hatedScore.Sub.RatingPenalty, 1e-9)
	assert.Contains(t, lovedScore.Reasons, ReasonLovedFit)
	assert.NotContains(t, hatedScore.Reasons, ReasonLovedFit)

	// partial overlap with the 5-star outfit still beats partial overlap with the 1-star one
	mixedLoved := s.Score(candidateOf(loved[0], hated[1]), &ScoreContext{RatedOutfits: sc.RatedOutfits[:1]})
	mixedHated := s.Score(candidateOf(loved[0], hated[1]), &ScoreContext{RatedOutfits: sc.RatedOutfits[1:]})
	assert.GreaterOrEqual(t, mixedLoved.Value, mixedHated.Value)
}

func TestScorer_RatingIgnoresDeletedItems(t *testing.T) {
	s := newTestScorer()
	catalog := basicCatalog()
	c := candidateOf(catalog[0], catalog[1])
	known := map[string]struct{}{"tshirt": {}, "jeans": {}}

	ghost := s.Score(c, &ScoreContext{
		RatedOutfits: []models.RatedOutfit{{ItemIDs: []string{"deleted-1", "deleted-2"}, Rating: 5}},
		KnownIDs:     known,
	})
	assert.Zero(t, ghost.Sub.RatingBonus)

	partial := s.Score(c, &ScoreContext{
		RatedOutfits: []models.RatedOutfit{{ItemIDs: []string{"tshirt", "jeans", "deleted-1"}, Rating: 5}},
		KnownIDs:     known,
	})
	assert.InDelta(t, 1.0, partial.Sub.RatingBonus, 1e-9)
}

func TestScorer_ColorClash(t *testing.T) {
	s := newTestScorer()
	red := item("red-top", models.CategoryTops, "tee", "#FF0000", models.FabricCotton)
	green := item("green-pants", models.CategoryBottoms, "pants", "#00FF00", models.FabricCotton)
	black := item("black-pants", models.CategoryBottoms, "pants", "#000000", models.FabricCotton)

	clash := s.Score(candidateOf(red, green), &ScoreContext{})
	calm := s.Score(candidateOf(red, black), &ScoreContext{})

	assert.InDelta(t, 0.3, clash.Sub.MinHarmony, 1e-9)
	assert.NotContains(t, clash.Reasons, ReasonColor)
	assert.Less(t, clash.Value, calm.Value)
}

func TestScorer_NeverNegative(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.Weights.RatingPenalty = 10
	s := NewScorer(cfg.Weights, cfg.Thresholds)
	catalog := basicCatalog()

	result := s.Score(candidateOf(catalog[0], catalog[1]), &ScoreContext{
		RatedOutfits: []models.RatedOutfit{{ItemIDs: []string{"tshirt", "jeans"}, Rating: 1}},
	})
	require.False(t, result.Excluded)
	assert.Equal(t, 0.0, result.Value)
}

func TestScorer_FabricIgnoresShoesAndAccessories(t *testing.T) {
	s := newTestScorer()
	dress := item("dress", models.CategoryDresses, "slip dress", "#000000", models.FabricSilk)
	boots := item("boots", models.CategoryShoes, "boots", "#000000", models.FabricFleece)

	result := s.Score(candidateOf(dress, boots), &ScoreContext{})
	assert.Equal(t, defaultFabricScore, result.Sub.Fabric)
	assert.NotContains(t, result.Reasons, ReasonFabric)
}
