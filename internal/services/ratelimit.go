package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/pkg/models"
)

// RateLimitService is a sliding-window limiter over a Redis sorted set per owner.
type RateLimitService struct {
	limit       int
	window      time.Duration
	logger      *logrus.Logger
	redisClient *redis.Client
	now         func() time.Time
}

// NewRateLimitService returns nil when limiting is disabled or Redis is absent.
func NewRateLimitService(cfg config.RateLimitConfig, logger *logrus.Logger, redisClient *redis.Client) *RateLimitService {
	if redisClient == nil || cfg.Requests <= 0 {
		return nil
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimitService{
		limit:       cfg.Requests,
		window:      window,
		logger:      logger,
		redisClient: redisClient,
		now:         time.Now,
	}
}

func rateLimitKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("rate_limit:owner:%s", ownerID)
}

// Allow records one request and reports whether it fits in the window.
// Redis failures are permissive.
func (s *RateLimitService) Allow(ctx context.Context, ownerID uuid.UUID) (bool, *models.RateLimitInfo) {
	now := s.now()
	info := &models.RateLimitInfo{
		Limit:     s.limit,
		Remaining: s.limit - 1,
		ResetTime: now.Add(s.window).Unix(),
	}

	key := rateLimitKey(ownerID)
	windowStart := now.Add(-s.window)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	pipe := s.redisClient.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString(),
	})
	pipe.Expire(ctx, key, s.window)

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to execute rate limit pipeline, allowing request")
		return true, info
	}

	count := int(countCmd.Val())
	info.Remaining = max(s.limit-count-1, 0)
	return count < s.limit, info
}
