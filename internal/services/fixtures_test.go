package services

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/internal/engine"
	"github.com/temcen/wardrobe/internal/messaging"
	"github.com/temcen/wardrobe/internal/repository"
	"github.com/temcen/wardrobe/internal/validation"
	"github.com/temcen/wardrobe/pkg/models"
)

type MockFlagPersistence struct {
	mock.Mock
}

func (m *MockFlagPersistence) LoadFlaggedPatterns(ctx context.Context, ownerID uuid.UUID) ([]models.FlaggedPattern, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FlaggedPattern), args.Error(1)
}

func (m *MockFlagPersistence) SaveFlaggedPattern(ctx context.Context, ownerID uuid.UUID, flag models.FlaggedPattern) error {
	args := m.Called(ctx, ownerID, flag)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOutfitEvent(ctx context.Context, event messaging.OutfitEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ListActiveItems(ctx context.Context, ownerID uuid.UUID) ([]models.ClothingItem, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ClothingItem), args.Error(1)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) ListOutfits(ctx context.Context, ownerID uuid.UUID) ([]models.Outfit, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Outfit), args.Error(1)
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newTestStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(":memory:", newTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seededNames() *engine.NameGenerator {
	return engine.NewNameGenerator(rand.New(rand.NewSource(7)))
}

func basicWardrobe() []models.ClothingItem {
	return []models.ClothingItem{
		{ID: "tshirt", Category: models.CategoryTops, SubCategory: "tshirt", Color: "#FFFFFF", FabricType: models.FabricCotton},
		{ID: "jeans", Category: models.CategoryBottoms, SubCategory: "jeans", Color: "#1E3A8A", FabricType: models.FabricDenim},
		{ID: "blazer", Category: models.CategoryBlazers, SubCategory: "blazer", Color: "#000000", FabricType: models.FabricWool, IsOpen: true},
		{ID: "sneakers", Category: models.CategoryShoes, SubCategory: "sneakers", Color: "#FFFFFF", FabricType: models.FabricLeather},
	}
}

// wardrobeFixture is a fully wired service set over an in-memory store.
type wardrobeFixture struct {
	owner       uuid.UUID
	store       *repository.SQLiteStore
	feedback    *FeedbackStore
	catalog     *CatalogService
	outfits     *OutfitService
	suggestions *SuggestionService
}

func newWardrobeFixture(t *testing.T) *wardrobeFixture {
	t.Helper()
	logger := newTestLogger()
	store := newTestStore(t)

	schemas, err := validation.NewDefaultSchemaValidator()
	require.NoError(t, err)

	names := seededNames()
	f := &wardrobeFixture{
		owner:    uuid.New(),
		store:    store,
		feedback: NewFeedbackStore(store, nil, nil, nil, 0, logger),
		catalog:  NewCatalogService(store, schemas, nil, logger),
		outfits:  NewOutfitService(store, names, nil, nil, logger),
	}
	f.suggestions = NewSuggestionService(f.catalog, store, f.feedback, names, config.DefaultEngineConfig(), nil, logger)

	for _, item := range basicWardrobe() {
		item := item
		require.NoError(t, f.catalog.Upsert(context.Background(), f.owner, &item))
	}
	return f
}
