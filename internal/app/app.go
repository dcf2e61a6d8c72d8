package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/internal/database"
	"github.com/temcen/wardrobe/internal/handlers"
	"github.com/temcen/wardrobe/internal/middleware"
	"github.com/temcen/wardrobe/internal/repository"
	"github.com/temcen/wardrobe/internal/services"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	store    repository.Store
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: NewLogger(cfg.Logging),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	store, err := openStore(context.Background(), cfg, db, app.logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	app.store = store

	svc, err := services.New(cfg, app.logger, db, store)
	if err != nil {
		store.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svc
	app.handlers = handlers.New(app.logger, svc)

	app.setupRouter()

	app.logger.WithFields(logrus.Fields{
		"storage": cfg.Storage.Driver,
		"redis":   db.Redis != nil,
		"kafka":   svc.MessageBus != nil,
	}).Info("Application initialized")

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.services.MessageBus.Close(); err != nil {
		a.logger.WithError(err).Warn("Error closing message bus")
	}

	if err := a.store.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing wardrobe store")
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func openStore(ctx context.Context, cfg *config.Config, db *database.Database, logger *logrus.Logger) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		store := repository.NewPostgresStore(db.PG, logger)
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate postgres schema: %w", err)
		}
		return store, nil
	case "sqlite":
		store, err := repository.NewSQLiteStore(cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config.Security.CORS))

	router.GET("/health", a.handlers.Health.Check)

	if a.config.Monitoring.Enabled {
		path := a.config.Monitoring.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(a.services.Auth, a.logger))
	if a.services.RateLimit != nil {
		api.Use(middleware.RateLimit(a.services.RateLimit, a.logger))
	}
	a.handlers.RegisterRoutes(api)

	a.router = router
}
