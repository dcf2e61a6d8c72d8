package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/temcen/wardrobe/pkg/models"
)

// Store persists one owner-scoped wardrobe: items, outfits and flagged patterns.
// Both the Postgres and the local SQLite backends implement it.
type Store interface {
	ListItems(ctx context.Context, ownerID uuid.UUID, includeArchived bool) ([]models.ClothingItem, error)
	GetItem(ctx context.Context, ownerID uuid.UUID, id string) (*models.ClothingItem, error)
	UpsertItem(ctx context.Context, item *models.ClothingItem) error
	ArchiveItem(ctx context.Context, ownerID uuid.UUID, id string) error

	ListOutfits(ctx context.Context, ownerID uuid.UUID) ([]models.Outfit, error)
	GetOutfit(ctx context.Context, ownerID, id uuid.UUID) (*models.Outfit, error)
	SaveOutfit(ctx context.Context, outfit *models.Outfit) error
	// AppendWornDate appends worn to the outfit's dates and bumps the wear count
	// of its items in one transaction.
	AppendWornDate(ctx context.Context, ownerID, id uuid.UUID, worn time.Time) (*models.Outfit, error)
	SetOutfitRating(ctx context.Context, ownerID, id uuid.UUID, rating int) (*models.Outfit, error)
	// RenameOutfit sets a user-chosen name and locks it.
	RenameOutfit(ctx context.Context, ownerID, id uuid.UUID, name string) (*models.Outfit, error)
	DeleteOutfit(ctx context.Context, ownerID, id uuid.UUID) error

	LoadFlaggedPatterns(ctx context.Context, ownerID uuid.UUID) ([]models.FlaggedPattern, error)
	SaveFlaggedPattern(ctx context.Context, ownerID uuid.UUID, flag models.FlaggedPattern) error

	Close() error
}

func seasonsToStrings(in []models.Season) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func occasionsToStrings(in []models.Occasion) []string {
	out := make([]string, len(in))
	for i, o := range in {
		out[i] = string(o)
	}
	return out
}

func stringsToSeasons(in []string) []models.Season {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Season, len(in))
	for i, s := range in {
		out[i] = models.Season(s)
	}
	return out
}

func stringsToOccasions(in []string) []models.Occasion {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Occasion, len(in))
	for i, o := range in {
		out[i] = models.Occasion(o)
	}
	return out
}
