package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/engine"
	"github.com/temcen/wardrobe/internal/messaging"
	"github.com/temcen/wardrobe/pkg/models"
)

const defaultFeedbackTTL = 10 * time.Minute

// FeedbackStore owns flagged patterns. Reads go through an optional Redis cache
// keyed by a per-owner version; writes go to the persistent store first, then
// bump the version so snapshots cached under an older one are never read again.
type FeedbackStore struct {
	flags     FlagPersistence
	redis     *redis.Client
	publisher messaging.Publisher
	metrics   *MetricsCollector
	ttl       time.Duration
	logger    *logrus.Logger
	now       func() time.Time
}

func NewFeedbackStore(flags FlagPersistence, redisClient *redis.Client, publisher messaging.Publisher, metrics *MetricsCollector, ttl time.Duration, logger *logrus.Logger) *FeedbackStore {
	if ttl <= 0 {
		ttl = defaultFeedbackTTL
	}
	return &FeedbackStore{
		flags:     flags,
		redis:     redisClient,
		publisher: publisher,
		metrics:   metrics,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
}

func feedbackVersionKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("feedback:flags:%s:version", ownerID)
}

func feedbackCacheKey(ownerID uuid.UUID, version int64) string {
	return fmt.Sprintf("feedback:flags:%s:v%d", ownerID, version)
}

// FlagOutfit canonicalizes pattern and records it so that no future suggestion
// with the same canonical pattern is returned. Flagging twice is a no-op apart
// from refreshing the reason. The canonical pattern is returned.
func (fs *FeedbackStore) FlagOutfit(ctx context.Context, ownerID uuid.UUID, pattern, reason string) (string, error) {
	canonical, err := engine.CanonicalizePattern(pattern)
	if err != nil {
		return "", err
	}

	flag := models.FlaggedPattern{
		Pattern:   canonical,
		Reason:    reason,
		FlaggedAt: fs.now().UTC(),
	}
	if err := fs.flags.SaveFlaggedPattern(ctx, ownerID, flag); err != nil {
		return "", fmt.Errorf("failed to save flagged pattern: %w", err)
	}

	fs.bumpVersion(ctx, ownerID)
	fs.metrics.RecordFlag()

	if fs.publisher != nil {
		event := messaging.OutfitEvent{
			Type:    messaging.EventPatternFlagged,
			OwnerID: ownerID,
			Pattern: canonical,
			Payload: map[string]any{"reason": reason},
		}
		if err := fs.publisher.PublishOutfitEvent(ctx, event); err != nil {
			fs.logger.WithError(err).Warn("Failed to publish flag event")
		}
	}

	fs.logger.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"pattern":  canonical,
	}).Info("Outfit pattern flagged")
	return canonical, nil
}

// FlagItems flags the canonical pattern of a concrete item set and returns it.
func (fs *FeedbackStore) FlagItems(ctx context.Context, ownerID uuid.UUID, items []models.ClothingItem, reason string) (string, error) {
	return fs.FlagOutfit(ctx, ownerID, engine.CanonicalPattern(items), reason)
}

// List returns the owner's flagged patterns straight from the store.
func (fs *FeedbackStore) List(ctx context.Context, ownerID uuid.UUID) ([]models.FlaggedPattern, error) {
	flags, err := fs.flags.LoadFlaggedPatterns(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flagged patterns: %w", err)
	}
	return flags, nil
}

// Snapshot returns the flagged patterns in effect for one suggestion run.
// A read failure is logged and yields an empty set. A flag saved while the
// store is being read bumps the version first, so the list loaded here is
// cached under a version that later calls no longer consult.
func (fs *FeedbackStore) Snapshot(ctx context.Context, ownerID uuid.UUID) engine.FlagSet {
	version, cacheable := fs.currentVersion(ctx, ownerID)
	if cacheable {
		if cached, ok := fs.getCached(ctx, ownerID, version); ok {
			return engine.NewFlagSet(cached)
		}
	}

	flags, err := fs.flags.LoadFlaggedPatterns(ctx, ownerID)
	if err != nil {
		fs.logger.WithError(err).WithField("owner_id", ownerID).Warn("Failed to load flagged patterns, continuing without feedback")
		return engine.FlagSet{}
	}

	if cacheable {
		fs.setCached(ctx, ownerID, version, flags)
	}
	return engine.NewFlagSet(flags)
}

func (fs *FeedbackStore) currentVersion(ctx context.Context, ownerID uuid.UUID) (int64, bool) {
	if fs.redis == nil {
		return 0, false
	}

	version, err := fs.redis.Get(ctx, feedbackVersionKey(ownerID)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		fs.logger.WithError(err).Warn("Failed to read feedback cache version")
		return 0, false
	}
	return version, true
}

func (fs *FeedbackStore) getCached(ctx context.Context, ownerID uuid.UUID, version int64) ([]models.FlaggedPattern, bool) {
	data, err := fs.redis.Get(ctx, feedbackCacheKey(ownerID, version)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			fs.logger.WithError(err).Warn("Failed to read feedback cache")
		}
		return nil, false
	}

	var flags []models.FlaggedPattern
	if err := json.Unmarshal([]byte(data), &flags); err != nil {
		fs.logger.WithError(err).Warn("Failed to decode feedback cache")
		return nil, false
	}
	return flags, true
}

func (fs *FeedbackStore) setCached(ctx context.Context, ownerID uuid.UUID, version int64, flags []models.FlaggedPattern) {
	if flags == nil {
		flags = []models.FlaggedPattern{}
	}

	data, err := json.Marshal(flags)
	if err != nil {
		fs.logger.WithError(err).Warn("Failed to encode feedback cache")
		return
	}
	if err := fs.redis.Set(ctx, feedbackCacheKey(ownerID, version), data, fs.ttl).Err(); err != nil {
		fs.logger.WithError(err).Warn("Failed to write feedback cache")
	}
}

func (fs *FeedbackStore) bumpVersion(ctx context.Context, ownerID uuid.UUID) {
	if fs.redis == nil {
		return
	}

	if err := fs.redis.Incr(ctx, feedbackVersionKey(ownerID)).Err(); err != nil {
		fs.logger.WithError(err).Warn("Failed to bump feedback cache version")
	}
}
