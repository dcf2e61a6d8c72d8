package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/temcen/wardrobe/internal/app"
	"github.com/temcen/wardrobe/internal/config"
	"github.com/temcen/wardrobe/internal/engine"
	"github.com/temcen/wardrobe/internal/repository"
	"github.com/temcen/wardrobe/internal/services"
	"github.com/temcen/wardrobe/internal/validation"
)

// localOwner is the owner id used when the CLI manages a single-user wardrobe.
var localOwner = uuid.NewSHA1(uuid.NameSpaceURL, []byte("wardrobe://local"))

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "wardrobe",
		Short:         "Outfit suggestions from your own closet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("db", defaultDBPath(), "path to the local wardrobe database")
	root.PersistentFlags().String("owner", localOwner.String(), "wardrobe owner id")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	_ = v.BindPFlag("storage.sqlite_path", root.PersistentFlags().Lookup("db"))
	_ = v.BindPFlag("owner", root.PersistentFlags().Lookup("owner"))
	_ = v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))
	v.SetEnvPrefix("WARDROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	root.AddCommand(suggestCmd(v))
	root.AddCommand(flagCmd(v))
	root.AddCommand(repeatCmd(v))
	root.AddCommand(nameCmd(v))
	root.AddCommand(importCmd(v))

	return root
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wardrobe.db"
	}
	return filepath.Join(home, ".local", "share", "wardrobe", "wardrobe.db")
}

// wardrobe is the service graph the CLI runs against: the local store with
// no cache, broker or metrics.
type wardrobe struct {
	owner       uuid.UUID
	store       repository.Store
	feedback    *services.FeedbackStore
	catalog     *services.CatalogService
	suggestions *services.SuggestionService
}

func openWardrobe(v *viper.Viper) (*wardrobe, error) {
	owner, err := uuid.Parse(v.GetString("owner"))
	if err != nil {
		return nil, fmt.Errorf("invalid --owner: %w", err)
	}

	logger := app.NewLogger(config.LoggingConfig{Level: v.GetString("logging.level")})
	logger.SetOutput(os.Stderr)

	store, err := repository.NewSQLiteStore(v.GetString("storage.sqlite_path"), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	schemas, err := validation.NewDefaultSchemaValidator()
	if err != nil {
		store.Close()
		return nil, err
	}

	return newWardrobe(owner, store, schemas, logger), nil
}

func newWardrobe(owner uuid.UUID, store repository.Store, schemas *validation.SchemaValidator, logger *logrus.Logger) *wardrobe {
	names := engine.NewNameGenerator(nil)
	feedback := services.NewFeedbackStore(store, nil, nil, nil, 0, logger)
	catalog := services.NewCatalogService(store, schemas, nil, logger)

	return &wardrobe{
		owner:       owner,
		store:       store,
		feedback:    feedback,
		catalog:     catalog,
		suggestions: services.NewSuggestionService(catalog, store, feedback, names, config.DefaultEngineConfig(), nil, logger),
	}
}

func (w *wardrobe) Close() error {
	return w.store.Close()
}
