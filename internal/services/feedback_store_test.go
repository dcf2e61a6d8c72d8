package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/wardrobe/internal/messaging"
	"github.com/temcen/wardrobe/pkg/models"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestFeedbackStore_FlagOutfitCanonicalizes(t *testing.T) {
	flags := new(MockFlagPersistence)
	publisher := new(MockPublisher)
	owner := uuid.New()

	flags.On("SaveFlaggedPattern", mock.Anything, owner, mock.MatchedBy(func(f models.FlaggedPattern) bool {
		return f.Pattern == "jeans+tshirt" && f.Reason == "too casual" && !f.FlaggedAt.IsZero()
	})).Return(nil).Once()
	publisher.On("PublishOutfitEvent", mock.Anything, mock.MatchedBy(func(e messaging.OutfitEvent) bool {
		return e.Type == messaging.EventPatternFlagged && e.Pattern == "jeans+tshirt" && e.OwnerID == owner
	})).Return(nil).Once()

	store := NewFeedbackStore(flags, nil, publisher, nil, 0, newTestLogger())
	pattern, err := store.FlagOutfit(context.Background(), owner, "TShirt + Jeans", "too casual")
	require.NoError(t, err)
	assert.Equal(t, "jeans+tshirt", pattern)

	flags.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestFeedbackStore_FlagOutfitErrors(t *testing.T) {
	owner := uuid.New()

	t.Run("empty pattern", func(t *testing.T) {
		flags := new(MockFlagPersistence)
		store := NewFeedbackStore(flags, nil, nil, nil, 0, newTestLogger())

		_, err := store.FlagOutfit(context.Background(), owner, " + ", "")
		assert.ErrorIs(t, err, models.ErrInvalidPattern)
		flags.AssertNotCalled(t, "SaveFlaggedPattern", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("write failure is returned", func(t *testing.T) {
		boom := errors.New("disk full")
		flags := new(MockFlagPersistence)
		flags.On("SaveFlaggedPattern", mock.Anything, owner, mock.Anything).Return(boom)
		store := NewFeedbackStore(flags, nil, nil, nil, 0, newTestLogger())

		_, err := store.FlagOutfit(context.Background(), owner, "jeans+tshirt", "")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("publish failure is not", func(t *testing.T) {
		flags := new(MockFlagPersistence)
		flags.On("SaveFlaggedPattern", mock.Anything, owner, mock.Anything).Return(nil)
		publisher := new(MockPublisher)
		publisher.On("PublishOutfitEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))
		store := NewFeedbackStore(flags, nil, publisher, nil, 0, newTestLogger())

		_, err := store.FlagOutfit(context.Background(), owner, "jeans+tshirt", "")
		assert.NoError(t, err)
	})
}

func TestFeedbackStore_FlagItems(t *testing.T) {
	owner := uuid.New()
	flags := new(MockFlagPersistence)
	flags.On("SaveFlaggedPattern", mock.Anything, owner, mock.MatchedBy(func(f models.FlaggedPattern) bool {
		return f.Pattern == "jeans+tshirt"
	})).Return(nil)
	store := NewFeedbackStore(flags, nil, nil, nil, 0, newTestLogger())

	items := basicWardrobe()[:2]
	pattern, err := store.FlagItems(context.Background(), owner, items, "")
	require.NoError(t, err)
	assert.Equal(t, "jeans+tshirt", pattern)
}

func TestFeedbackStore_SnapshotReadFailureIsEmpty(t *testing.T) {
	owner := uuid.New()
	flags := new(MockFlagPersistence)
	flags.On("LoadFlaggedPatterns", mock.Anything, owner).Return(nil, errors.New("connection refused"))
	store := NewFeedbackStore(flags, nil, nil, nil, 0, newTestLogger())

	snapshot := store.Snapshot(context.Background(), owner)
	assert.NotNil(t, snapshot)
	assert.Empty(t, snapshot)

	_, err := store.List(context.Background(), owner)
	assert.Error(t, err)
}

func TestFeedbackStore_SnapshotCache(t *testing.T) {
	mr, client := newRedis(t)
	owner := uuid.New()
	stored := []models.FlaggedPattern{{Pattern: "jeans+tshirt", FlaggedAt: time.Now().UTC()}}

	flags := new(MockFlagPersistence)
	flags.On("LoadFlaggedPatterns", mock.Anything, owner).Return(stored, nil).Once()
	store := NewFeedbackStore(flags, client, nil, nil, time.Minute, newTestLogger())

	first := store.Snapshot(context.Background(), owner)
	assert.True(t, first.Contains("jeans+tshirt"))
	assert.True(t, mr.Exists(feedbackCacheKey(owner, 0)))
	assert.Equal(t, time.Minute, mr.TTL(feedbackCacheKey(owner, 0)))

	second := store.Snapshot(context.Background(), owner)
	assert.True(t, second.Contains("jeans+tshirt"))
	flags.AssertNumberOfCalls(t, "LoadFlaggedPatterns", 1)

	t.Run("flagging moves to a new cache version", func(t *testing.T) {
		updated := append(stored, models.FlaggedPattern{Pattern: "blazer+jeans"})
		flags.On("SaveFlaggedPattern", mock.Anything, owner, mock.Anything).Return(nil).Once()
		flags.On("LoadFlaggedPatterns", mock.Anything, owner).Return(updated, nil).Once()

		_, err := store.FlagOutfit(context.Background(), owner, "jeans+blazer", "")
		require.NoError(t, err)
		version, err := mr.Get(feedbackVersionKey(owner))
		require.NoError(t, err)
		assert.Equal(t, "1", version)
		assert.False(t, mr.Exists(feedbackCacheKey(owner, 1)))

		third := store.Snapshot(context.Background(), owner)
		assert.True(t, third.Contains("blazer+jeans"))
		flags.AssertNumberOfCalls(t, "LoadFlaggedPatterns", 2)
	})
}

func TestFeedbackStore_RedisDownFallsBackToStore(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()

	owner := uuid.New()
	flags := new(MockFlagPersistence)
	flags.On("LoadFlaggedPatterns", mock.Anything, owner).Return([]models.FlaggedPattern{{Pattern: "jeans+tshirt"}}, nil)
	store := NewFeedbackStore(flags, client, nil, nil, 0, newTestLogger())

	snapshot := store.Snapshot(context.Background(), owner)
	assert.True(t, snapshot.Contains("jeans+tshirt"))
}

// flagDuringLoad saves a new flag after the stored list has been read but
// before the caller sees it.
type flagDuringLoad struct {
	FlagPersistence
	feedback *FeedbackStore
	pattern  string
	fired    bool
}

func (f *flagDuringLoad) LoadFlaggedPatterns(ctx context.Context, ownerID uuid.UUID) ([]models.FlaggedPattern, error) {
	flags, err := f.FlagPersistence.LoadFlaggedPatterns(ctx, ownerID)
	if err == nil && !f.fired {
		f.fired = true
		if _, flagErr := f.feedback.FlagOutfit(ctx, ownerID, f.pattern, "mid-run"); flagErr != nil {
			return nil, flagErr
		}
	}
	return flags, err
}

func TestFeedbackStore_FlagDuringSnapshotAppliesNextCall(t *testing.T) {
	_, client := newRedis(t)
	owner := uuid.New()
	ctx := context.Background()

	persistence := &flagDuringLoad{FlagPersistence: newTestStore(t), pattern: "tshirt+jeans"}
	store := NewFeedbackStore(persistence, client, nil, nil, time.Hour, newTestLogger())
	persistence.feedback = store

	during := store.Snapshot(ctx, owner)
	assert.False(t, during.Contains("jeans+tshirt"))

	for i := 0; i < 3; i++ {
		next := store.Snapshot(ctx, owner)
		assert.True(t, next.Contains("jeans+tshirt"), "snapshot %d", i)
	}
}
