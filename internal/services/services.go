package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/internal/database"
	"github.com/temcen/wardrobe/internal/engine"
	"github.com/temcen/wardrobe/internal/messaging"
	"github.com/temcen/wardrobe/internal/repository"
	"github.com/temcen/wardrobe/internal/validation"
)

type Services struct {
	Auth        *AuthService
	RateLimit   *RateLimitService
	Health      *HealthService
	MessageBus  *messaging.MessageBus
	Metrics     *MetricsCollector
	Feedback    *FeedbackStore
	Catalog     *CatalogService
	Outfits     *OutfitService
	Suggestions *SuggestionService
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database, store repository.Store) (*Services, error) {
	schemas, err := validation.NewDefaultSchemaValidator()
	if err != nil {
		return nil, err
	}

	var metrics *MetricsCollector
	if cfg.Monitoring.Enabled {
		metrics = NewMetricsCollector(prometheus.DefaultRegisterer)
	}

	messageBus := messaging.NewMessageBus(cfg, logger)
	names := engine.NewNameGenerator(nil)

	feedback := NewFeedbackStore(store, db.Redis, messageBus, metrics, cfg.Redis.FeedbackTTL, logger)
	catalog := NewCatalogService(store, schemas, messageBus, logger)
	outfits := NewOutfitService(store, names, messageBus, metrics, logger)
	suggestions := NewSuggestionService(catalog, store, feedback, names, cfg.Engine, metrics, logger)

	return &Services{
		Auth:        NewAuthService(cfg.Auth, logger, db.Redis),
		RateLimit:   NewRateLimitService(cfg.Security.RateLimit, logger, db.Redis),
		Health:      NewHealthService(db, logger),
		MessageBus:  messageBus,
		Metrics:     metrics,
		Feedback:    feedback,
		Catalog:     catalog,
		Outfits:     outfits,
		Suggestions: suggestions,
	}, nil
}
