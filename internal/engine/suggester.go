package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/pkg/models"
)

// SuggestOptions are the per-request inputs of Suggest.
type SuggestOptions struct {
	Season       models.Season
	Occasion     models.Occasion
	MaxResults   int
	RatedOutfits []models.RatedOutfit
}

// SuggestStats describes one Suggest run.
type SuggestStats struct {
	Generated int
	Excluded  int
	Returned  int
}

// Suggester wires generator, scorer and ranker into one pure pipeline.
// It performs no I/O; callers load the catalog and feedback first.
type Suggester struct {
	generator *Generator
	scorer    *Scorer
	ranker    *Ranker
	logger    *logrus.Logger
}

func NewSuggester(cfg config.EngineConfig, logger *logrus.Logger) *Suggester {
	return &Suggester{
		generator: NewGenerator(cfg.Generator),
		scorer:    NewScorer(cfg.Weights, cfg.Thresholds),
		ranker:    NewRanker(cfg.Ranking, logger),
		logger:    logger,
	}
}

// Suggest returns ranked outfit suggestions for the given catalog.
func (s *Suggester) Suggest(items []models.ClothingItem, opts SuggestOptions, flagged FlagSet) []models.SuggestionResult {
	results, _ := s.SuggestWithStats(items, opts, flagged)
	return results
}

func (s *Suggester) SuggestWithStats(items []models.ClothingItem, opts SuggestOptions, flagged FlagSet) ([]models.SuggestionResult, SuggestStats) {
	candidates := s.generator.Generate(items, opts.Season, opts.Occasion)
	stats := SuggestStats{Generated: len(candidates)}

	known := make(map[string]struct{}, len(items))
	for _, item := range items {
		if !item.Archived {
			known[item.ID] = struct{}{}
		}
	}
	sc := &ScoreContext{
		Season:       opts.Season,
		Occasion:     opts.Occasion,
		RatedOutfits: opts.RatedOutfits,
		Flagged:      flagged,
		KnownIDs:     known,
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		result := s.scorer.Score(c, sc)
		if result.Excluded {
			stats.Excluded++
			continue
		}
		scored = append(scored, result)
	}

	ranked := s.ranker.Rank(scored, opts.MaxResults)
	results := make([]models.SuggestionResult, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, models.SuggestionResult{
			Items:   append([]models.ClothingItem(nil), r.Items...),
			Score:   r.Value,
			Reasons: append([]string{}, r.Reasons...),
			Pattern: r.Pattern,
		})
	}
	stats.Returned = len(results)

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"catalog_size": len(items),
			"generated":    stats.Generated,
			"excluded":     stats.Excluded,
			"returned":     stats.Returned,
		}).Debug("Generated outfit suggestions")
	}
	return results, stats
}
