package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/temcen/wardrobe/internal/engine"
	"github.com/temcen/wardrobe/internal/repository"
	"github.com/temcen/wardrobe/pkg/models"
)

// CatalogAccessor lists the owner's non-archived items.
type CatalogAccessor interface {
	ListActiveItems(ctx context.Context, ownerID uuid.UUID) ([]models.ClothingItem, error)
}

// FlagPersistence stores flagged outfit patterns.
type FlagPersistence interface {
	LoadFlaggedPatterns(ctx context.Context, ownerID uuid.UUID) ([]models.FlaggedPattern, error)
	SaveFlaggedPattern(ctx context.Context, ownerID uuid.UUID, flag models.FlaggedPattern) error
}

// OutfitHistory lists saved outfits, including worn dates and ratings.
type OutfitHistory interface {
	ListOutfits(ctx context.Context, ownerID uuid.UUID) ([]models.Outfit, error)
}

// FeedbackReader is the read side of FeedbackStore used by the suggestion path.
type FeedbackReader interface {
	Snapshot(ctx context.Context, ownerID uuid.UUID) engine.FlagSet
}

type storeCatalog struct {
	store repository.Store
}

// CatalogFromStore exposes a repository as a CatalogAccessor.
func CatalogFromStore(store repository.Store) CatalogAccessor {
	return storeCatalog{store: store}
}

func (c storeCatalog) ListActiveItems(ctx context.Context, ownerID uuid.UUID) ([]models.ClothingItem, error) {
	return c.store.ListItems(ctx, ownerID, false)
}
