package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/engine"
	"github.com/temcen/wardrobe/internal/messaging"
	"github.com/temcen/wardrobe/internal/repository"
	"github.com/temcen/wardrobe/pkg/models"
)

// OutfitService manages saved outfits: save, wear, rate, rename, delete.
type OutfitService struct {
	store     repository.Store
	names     *engine.NameGenerator
	publisher messaging.Publisher
	metrics   *MetricsCollector
	logger    *logrus.Logger
	now       func() time.Time
}

func NewOutfitService(store repository.Store, names *engine.NameGenerator, publisher messaging.Publisher, metrics *MetricsCollector, logger *logrus.Logger) *OutfitService {
	if names == nil {
		names = engine.NewNameGenerator(nil)
	}
	return &OutfitService{
		store:     store,
		names:     names,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *OutfitService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Outfit, error) {
	outfits, err := s.store.ListOutfits(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outfits: %w", err)
	}
	return outfits, nil
}

func (s *OutfitService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Outfit, error) {
	return s.store.GetOutfit(ctx, ownerID, id)
}

// Save stores a new outfit. Without a name one is generated; a supplied name is locked.
func (s *OutfitService) Save(ctx context.Context, ownerID uuid.UUID, req *models.SaveOutfitRequest) (*models.Outfit, error) {
	items, err := s.activeItems(ctx, ownerID, req.ItemIDs)
	if err != nil {
		return nil, err
	}

	outfit := &models.Outfit{
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(req.Name),
		ItemIDs:   models.ItemIDs(items),
		Occasions: req.Occasions,
		Seasons:   req.Seasons,
		Suggested: req.Suggested,
		CreatedAt: s.now().UTC(),
	}
	if outfit.Name == "" {
		outfit.Name = s.names.Generate(items)
	} else {
		outfit.NameLocked = true
	}

	if err := s.store.SaveOutfit(ctx, outfit); err != nil {
		return nil, fmt.Errorf("failed to save outfit: %w", err)
	}

	s.emit(ctx, messaging.EventOutfitSaved, outfit, nil)
	return outfit, nil
}

// LogWorn appends a worn date (today when nil) and bumps each item's wear count.
func (s *OutfitService) LogWorn(ctx context.Context, ownerID, id uuid.UUID, date *time.Time) (*models.Outfit, error) {
	worn := s.now().UTC()
	if date != nil {
		worn = date.UTC()
	}

	outfit, err := s.store.AppendWornDate(ctx, ownerID, id, worn)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, messaging.EventOutfitWorn, outfit, map[string]any{"worn_at": worn})
	return outfit, nil
}

func (s *OutfitService) Rate(ctx context.Context, ownerID, id uuid.UUID, rating int) (*models.Outfit, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: got %d", models.ErrInvalidRating, rating)
	}

	outfit, err := s.store.SetOutfitRating(ctx, ownerID, id, rating)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, messaging.EventOutfitRated, outfit, map[string]any{"rating": rating})
	return outfit, nil
}

// Rename sets a user-chosen name, which generated names never overwrite.
func (s *OutfitService) Rename(ctx context.Context, ownerID, id uuid.UUID, name string) (*models.Outfit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrInvalidName
	}

	outfit, err := s.store.RenameOutfit(ctx, ownerID, id, name)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, messaging.EventOutfitRenamed, outfit, nil)
	return outfit, nil
}

func (s *OutfitService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.store.DeleteOutfit(ctx, ownerID, id); err != nil {
		return err
	}
	s.emit(ctx, messaging.EventOutfitDeleted, &models.Outfit{ID: id, OwnerID: ownerID}, nil)
	return nil
}

func (s *OutfitService) activeItems(ctx context.Context, ownerID uuid.UUID, ids []string) ([]models.ClothingItem, error) {
	if len(ids) == 0 {
		return nil, models.ErrEmptyOutfit
	}

	catalog, err := s.store.ListItems(ctx, ownerID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	byID := make(map[string]models.ClothingItem, len(catalog))
	for _, item := range catalog {
		byID[item.ID] = item
	}

	seen := make(map[string]struct{}, len(ids))
	items := make([]models.ClothingItem, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("item %s: %w", id, models.ErrNotFound)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *OutfitService) emit(ctx context.Context, eventType messaging.EventType, outfit *models.Outfit, payload map[string]any) {
	s.metrics.RecordOutfitAction(string(eventType))

	if s.publisher == nil {
		return
	}
	id := outfit.ID
	event := messaging.OutfitEvent{
		Type:     eventType,
		OwnerID:  outfit.OwnerID,
		OutfitID: &id,
		ItemIDs:  outfit.ItemIDs,
		Payload:  payload,
	}
	if err := s.publisher.PublishOutfitEvent(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Warn("Failed to publish outfit event")
	}
}
