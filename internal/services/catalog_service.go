package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/internal/messaging"
	"github.com/temcen/wardrobe/internal/repository"
	"github.com/temcen/wardrobe/internal/validation"
	"github.com/temcen/wardrobe/pkg/models"
)

// ImportError carries the schema violations of a rejected import document.
type ImportError struct {
	Result *validation.ValidationResult
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("invalid import document: %v", e.Result.Err())
}

func (e *ImportError) Unwrap() error { return models.ErrInvalidItem }

type importDocument struct {
	SchemaVersion models.SchemaVersion `json:"schema_version"`
	ExportedAt    *time.Time           `json:"exported_at,omitempty"`
	Items         []importItem         `json:"items"`
}

type importItem struct {
	ID             string            `json:"id"`
	Category       string            `json:"category"`
	SubCategory    string            `json:"sub_category"`
	Color          string            `json:"color"`
	ColorName      string            `json:"color_name"`
	SecondaryColor string            `json:"secondary_color"`
	FabricType     models.Fabric     `json:"fabric_type"`
	IsOpen         bool              `json:"is_open"`
	Archived       bool              `json:"archived"`
	WearCount      int               `json:"wear_count"`
	Favorite       bool              `json:"favorite"`
	Seasons        []models.Season   `json:"seasons"`
	Occasions      []models.Occasion `json:"occasions"`
	PurchasePrice  *float64          `json:"purchase_price"`
}

// CatalogService manages clothing items.
type CatalogService struct {
	store     repository.Store
	schemas   *validation.SchemaValidator
	validate  *validator.Validate
	publisher messaging.Publisher
	logger    *logrus.Logger
}

func NewCatalogService(store repository.Store, schemas *validation.SchemaValidator, publisher messaging.Publisher, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		store:     store,
		schemas:   schemas,
		validate:  validator.New(),
		publisher: publisher,
		logger:    logger,
	}
}

func (s *CatalogService) List(ctx context.Context, ownerID uuid.UUID, includeArchived bool) ([]models.ClothingItem, error) {
	items, err := s.store.ListItems(ctx, ownerID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// ListActiveItems makes CatalogService usable as the suggestion catalog.
func (s *CatalogService) ListActiveItems(ctx context.Context, ownerID uuid.UUID) ([]models.ClothingItem, error) {
	return s.List(ctx, ownerID, false)
}

// Upsert validates and stores an item under ownerID.
func (s *CatalogService) Upsert(ctx context.Context, ownerID uuid.UUID, item *models.ClothingItem) error {
	item.OwnerID = ownerID
	item.ID = strings.TrimSpace(item.ID)

	if err := s.check(item); err != nil {
		return err
	}
	if err := s.store.UpsertItem(ctx, item); err != nil {
		return fmt.Errorf("failed to store item: %w", err)
	}
	return nil
}

func (s *CatalogService) Archive(ctx context.Context, ownerID uuid.UUID, id string) error {
	return s.store.ArchiveItem(ctx, ownerID, id)
}

// Import loads a wardrobe export document. Schema violations reject the whole
// document; items that fail per-item rules are skipped and reported.
func (s *CatalogService) Import(ctx context.Context, ownerID uuid.UUID, data []byte) (*models.ImportReport, error) {
	if result := s.schemas.ValidateImportDocument(data); !result.Valid {
		return nil, &ImportError{Result: result}
	}

	var doc importDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode import document: %w", err)
	}

	report := &models.ImportReport{SchemaVersion: doc.SchemaVersion}
	for i, raw := range doc.Items {
		item, err := s.fromImport(ownerID, doc.SchemaVersion, raw)
		if err == nil {
			err = s.check(item)
		}
		if err != nil {
			report.Rejected = append(report.Rejected, models.ImportRejection{Index: i, ID: raw.ID, Reason: err.Error()})
			continue
		}

		if err := s.store.UpsertItem(ctx, item); err != nil {
			return report, fmt.Errorf("failed to store item %s: %w", item.ID, err)
		}
		report.Imported++
	}

	s.logger.WithFields(logrus.Fields{
		"owner_id":       ownerID,
		"schema_version": doc.SchemaVersion,
		"imported":       report.Imported,
		"rejected":       len(report.Rejected),
	}).Info("Wardrobe import finished")

	if s.publisher != nil && report.Imported > 0 {
		event := messaging.OutfitEvent{
			Type:    messaging.EventItemsImported,
			OwnerID: ownerID,
			Payload: map[string]any{"imported": report.Imported, "rejected": len(report.Rejected)},
		}
		if err := s.publisher.PublishOutfitEvent(ctx, event); err != nil {
			s.logger.WithError(err).Warn("Failed to publish import event")
		}
	}
	return report, nil
}

func (s *CatalogService) fromImport(ownerID uuid.UUID, version models.SchemaVersion, raw importItem) (*models.ClothingItem, error) {
	category, err := models.ParseCategory(version, raw.Category)
	if err != nil {
		return nil, err
	}
	return &models.ClothingItem{
		ID:             strings.TrimSpace(raw.ID),
		OwnerID:        ownerID,
		Category:       category,
		SubCategory:    raw.SubCategory,
		Color:          raw.Color,
		ColorName:      raw.ColorName,
		SecondaryColor: raw.SecondaryColor,
		FabricType:     raw.FabricType,
		IsOpen:         raw.IsOpen,
		Archived:       raw.Archived,
		WearCount:      raw.WearCount,
		Favorite:       raw.Favorite,
		Seasons:        raw.Seasons,
		Occasions:      raw.Occasions,
		PurchasePrice:  raw.PurchasePrice,
	}, nil
}

func (s *CatalogService) check(item *models.ClothingItem) error {
	if err := s.validate.Struct(item); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidItem, err)
	}
	return item.CheckInvariants()
}
