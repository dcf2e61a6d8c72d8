package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/wardrobe/pkg/models"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	store, err := NewSQLiteStore(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Items(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()
	owner := uuid.New()
	price := 89.0

	blazer := &models.ClothingItem{
		ID: "blazer", OwnerID: owner, Category: models.CategoryBlazers, SubCategory: "blazer",
		Color: "#000000", ColorName: "black", FabricType: models.FabricWool, IsOpen: true,
		Seasons: []models.Season{models.SeasonFall}, PurchasePrice: &price,
	}
	jeans := &models.ClothingItem{
		ID: "jeans", OwnerID: owner, Category: models.CategoryBottoms, SubCategory: "jeans",
		Color: "#1E3A8A", FabricType: models.FabricDenim, WearCount: 4,
	}
	require.NoError(t, store.UpsertItem(ctx, blazer))
	require.NoError(t, store.UpsertItem(ctx, jeans))

	items, err := store.ListItems(ctx, owner, false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "blazer", items[0].ID)
	assert.True(t, items[0].IsOpen)
	assert.Equal(t, []models.Season{models.SeasonFall}, items[0].Seasons)
	require.NotNil(t, items[0].PurchasePrice)
	assert.Equal(t, 89.0, *items[0].PurchasePrice)
	assert.Nil(t, items[1].PurchasePrice)

	t.Run("upsert overwrites", func(t *testing.T) {
		jeans.Favorite = true
		require.NoError(t, store.UpsertItem(ctx, jeans))
		got, err := store.GetItem(ctx, owner, "jeans")
		require.NoError(t, err)
		assert.True(t, got.Favorite)
	})

	t.Run("wear count", func(t *testing.T) {
		outfit := &models.Outfit{OwnerID: owner, ItemIDs: []string{"jeans", "blazer"}}
		require.NoError(t, store.SaveOutfit(ctx, outfit))
		_, err := store.AppendWornDate(ctx, owner, outfit.ID, time.Now())
		require.NoError(t, err)

		got, err := store.GetItem(ctx, owner, "jeans")
		require.NoError(t, err)
		assert.Equal(t, 5, got.WearCount)
	})

	t.Run("archive hides from active list", func(t *testing.T) {
		require.NoError(t, store.ArchiveItem(ctx, owner, "blazer"))

		active, err := store.ListItems(ctx, owner, false)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "jeans", active[0].ID)

		all, err := store.ListItems(ctx, owner, true)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		assert.ErrorIs(t, store.ArchiveItem(ctx, owner, "ghost"), models.ErrNotFound)
	})

	t.Run("owners are isolated", func(t *testing.T) {
		items, err := store.ListItems(ctx, uuid.New(), true)
		require.NoError(t, err)
		assert.Empty(t, items)

		_, err = store.GetItem(ctx, uuid.New(), "jeans")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestSQLiteStore_Outfits(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	outfit := &models.Outfit{
		OwnerID:   owner,
		Name:      "Monday Basics",
		ItemIDs:   []string{"tshirt", "jeans"},
		Occasions: []models.Occasion{models.OccasionCasual},
		Suggested: true,
	}
	require.NoError(t, store.SaveOutfit(ctx, outfit))
	require.NotEqual(t, uuid.Nil, outfit.ID)

	got, err := store.GetOutfit(ctx, owner, outfit.ID)
	require.NoError(t, err)
	assert.Equal(t, outfit.ItemIDs, got.ItemIDs)
	assert.Equal(t, outfit.Occasions, got.Occasions)
	assert.True(t, got.Suggested)
	assert.Nil(t, got.WornDates)

	worn := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got.WornDates = append(got.WornDates, worn)
	got.Rating = 4
	require.NoError(t, store.SaveOutfit(ctx, got))

	outfits, err := store.ListOutfits(ctx, owner)
	require.NoError(t, err)
	require.Len(t, outfits, 1)
	assert.Equal(t, 4, outfits[0].Rating)
	require.Len(t, outfits[0].WornDates, 1)
	assert.True(t, worn.Equal(outfits[0].WornDates[0]))

	require.NoError(t, store.DeleteOutfit(ctx, owner, outfit.ID))
	_, err = store.GetOutfit(ctx, owner, outfit.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, store.DeleteOutfit(ctx, owner, outfit.ID), models.ErrNotFound)
}

func TestSQLiteStore_OutfitUpdatesKeepWornDates(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()
	owner := uuid.New()

	require.NoError(t, store.UpsertItem(ctx, &models.ClothingItem{
		ID: "tshirt", OwnerID: owner, Category: models.CategoryTops, Color: "#FFFFFF", FabricType: models.FabricCotton,
	}))
	outfit := &models.Outfit{OwnerID: owner, Name: "Basics", ItemIDs: []string{"tshirt"}}
	require.NoError(t, store.SaveOutfit(ctx, outfit))

	const wears = 8
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	for i := 0; i < wears; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_, err := store.AppendWornDate(ctx, owner, outfit.ID, base.AddDate(0, 0, day))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rated, err := store.SetOutfitRating(ctx, owner, outfit.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, rated.Rating)
	assert.Len(t, rated.WornDates, wears)

	renamed, err := store.RenameOutfit(ctx, owner, outfit.ID, "Favourite")
	require.NoError(t, err)
	assert.Equal(t, "Favourite", renamed.Name)
	assert.True(t, renamed.NameLocked)
	assert.Equal(t, 5, renamed.Rating)
	assert.Len(t, renamed.WornDates, wears)

	tshirt, err := store.GetItem(ctx, owner, "tshirt")
	require.NoError(t, err)
	assert.Equal(t, wears, tshirt.WearCount)

	t.Run("missing outfit", func(t *testing.T) {
		_, err := store.AppendWornDate(ctx, owner, uuid.New(), base)
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = store.SetOutfitRating(ctx, owner, uuid.New(), 3)
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = store.RenameOutfit(ctx, uuid.New(), outfit.ID, "x")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestSQLiteStore_FlaggedPatternsAreIdempotent(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()
	owner := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, store.SaveFlaggedPattern(ctx, owner, models.FlaggedPattern{Pattern: "jeans+tshirt", Reason: "first", FlaggedAt: now}))
	require.NoError(t, store.SaveFlaggedPattern(ctx, owner, models.FlaggedPattern{Pattern: "jeans+tshirt", Reason: "too casual for me", FlaggedAt: now}))
	require.NoError(t, store.SaveFlaggedPattern(ctx, owner, models.FlaggedPattern{Pattern: "dress+sneakers", FlaggedAt: now}))

	flags, err := store.LoadFlaggedPatterns(ctx, owner)
	require.NoError(t, err)
	require.Len(t, flags, 2)
	assert.Equal(t, "dress+sneakers", flags[0].Pattern)
	assert.Equal(t, "jeans+tshirt", flags[1].Pattern)
	assert.Equal(t, "too casual for me", flags[1].Reason)
	assert.Equal(t, now.UnixMilli(), flags[1].FlaggedAt.UnixMilli())

	other, err := store.LoadFlaggedPatterns(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteStore_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wardrobe.db")
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	owner := uuid.New()

	store, err := NewSQLiteStore(path, logger)
	require.NoError(t, err)
	require.NoError(t, store.UpsertItem(context.Background(), &models.ClothingItem{
		ID: "tshirt", OwnerID: owner, Category: models.CategoryTops, Color: "#FFFFFF", FabricType: models.FabricCotton,
	}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path, logger)
	require.NoError(t, err)
	defer reopened.Close()

	items, err := reopened.ListItems(context.Background(), owner, false)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
