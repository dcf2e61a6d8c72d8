package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/internal/engine"
	"github.com/temcen/wardrobe/pkg/models"
)

// SuggestionService loads one owner's catalog, outfit history and flagged patterns,
// then runs the engine over that snapshot. Flags added while a run is in progress
// apply to the next run.
type SuggestionService struct {
	catalog   CatalogAccessor
	history   OutfitHistory
	feedback  FeedbackReader
	suggester *engine.Suggester
	repeats   *engine.RepeatDetector
	names     *engine.NameGenerator
	metrics   *MetricsCollector
	logger    *logrus.Logger
}

func NewSuggestionService(
	catalog CatalogAccessor,
	history OutfitHistory,
	feedback FeedbackReader,
	names *engine.NameGenerator,
	cfg config.EngineConfig,
	metrics *MetricsCollector,
	logger *logrus.Logger,
) *SuggestionService {
	if names == nil {
		names = engine.NewNameGenerator(nil)
	}
	return &SuggestionService{
		catalog:   catalog,
		history:   history,
		feedback:  feedback,
		suggester: engine.NewSuggester(cfg, logger),
		repeats:   engine.NewRepeatDetector(cfg.Repeat, nil),
		names:     names,
		metrics:   metrics,
		logger:    logger,
	}
}

// Suggest returns ranked suggestions. An empty catalog yields an empty list, not an error.
func (s *SuggestionService) Suggest(ctx context.Context, ownerID uuid.UUID, req models.SuggestionRequest) (*models.SuggestionResponse, error) {
	start := time.Now()

	items, err := s.catalog.ListActiveItems(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var rated []models.RatedOutfit
	if history, err := s.history.ListOutfits(ctx, ownerID); err != nil {
		s.logger.WithError(err).WithField("owner_id", ownerID).Warn("Failed to load outfit history, ignoring ratings")
	} else {
		rated = models.RatedOutfits(history)
	}

	flagged := s.feedback.Snapshot(ctx, ownerID)

	results, stats := s.suggester.SuggestWithStats(items, engine.SuggestOptions{
		Season:       req.Season,
		Occasion:     req.Occasion,
		MaxResults:   req.MaxResults,
		RatedOutfits: rated,
	}, flagged)

	if req.WithNames {
		for i := range results {
			results[i].Name = s.names.Generate(results[i].Items)
		}
	}

	elapsed := time.Since(start)
	s.metrics.RecordSuggestion(elapsed, stats)
	s.logger.WithFields(logrus.Fields{
		"owner_id":  ownerID,
		"season":    req.Season,
		"occasion":  req.Occasion,
		"generated": stats.Generated,
		"excluded":  stats.Excluded,
		"returned":  stats.Returned,
		"duration":  elapsed,
	}).Info("Suggestions generated")

	return &models.SuggestionResponse{
		OwnerID:     ownerID,
		Suggestions: results,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// CheckRepeat compares an item set with the owner's worn outfits.
func (s *SuggestionService) CheckRepeat(ctx context.Context, ownerID uuid.UUID, itemIDs []string) (models.RepeatResult, error) {
	items, known, err := s.resolveItems(ctx, ownerID, itemIDs)
	if err != nil {
		return models.RepeatResult{}, err
	}

	history, err := s.history.ListOutfits(ctx, ownerID)
	if err != nil {
		return models.RepeatResult{}, fmt.Errorf("failed to load outfit history: %w", err)
	}

	return s.repeats.DetectIDs(models.ItemIDs(items), history, known), nil
}

// NameOutfit generates a display name for an item set.
func (s *SuggestionService) NameOutfit(ctx context.Context, ownerID uuid.UUID, itemIDs []string) (string, error) {
	items, _, err := s.resolveItems(ctx, ownerID, itemIDs)
	if err != nil {
		return "", err
	}
	return s.names.Generate(items), nil
}

// ResolveItems returns the active items for ids, in the given order.
func (s *SuggestionService) ResolveItems(ctx context.Context, ownerID uuid.UUID, itemIDs []string) ([]models.ClothingItem, error) {
	items, _, err := s.resolveItems(ctx, ownerID, itemIDs)
	return items, err
}

func (s *SuggestionService) resolveItems(ctx context.Context, ownerID uuid.UUID, itemIDs []string) ([]models.ClothingItem, map[string]struct{}, error) {
	catalog, err := s.catalog.ListActiveItems(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	byID := make(map[string]models.ClothingItem, len(catalog))
	known := make(map[string]struct{}, len(catalog))
	for _, item := range catalog {
		byID[item.ID] = item
		known[item.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(itemIDs))
	items := make([]models.ClothingItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		item, ok := byID[id]
		if !ok {
			return nil, nil, fmt.Errorf("item %s: %w", id, models.ErrNotFound)
		}
		items = append(items, item)
	}
	return items, known, nil
}
