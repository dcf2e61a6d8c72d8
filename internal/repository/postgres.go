package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/temcen/wardrobe/pkg/models"
)

// DatabaseQuerier is the subset of pgxpool.Pool the store needs. pgxmock pools satisfy it.
type DatabaseQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresSchema creates the wardrobe tables. It is idempotent.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS clothing_items (
	owner_id        UUID NOT NULL,
	id              TEXT NOT NULL,
	category        TEXT NOT NULL,
	sub_category    TEXT NOT NULL DEFAULT '',
	color           TEXT NOT NULL,
	color_name      TEXT NOT NULL DEFAULT '',
	secondary_color TEXT NOT NULL DEFAULT '',
	fabric_type     TEXT NOT NULL,
	is_open         BOOLEAN NOT NULL DEFAULT FALSE,
	archived        BOOLEAN NOT NULL DEFAULT FALSE,
	wear_count      INTEGER NOT NULL DEFAULT 0,
	favorite        BOOLEAN NOT NULL DEFAULT FALSE,
	seasons         TEXT[] NOT NULL DEFAULT '{}',
	occasions       TEXT[] NOT NULL DEFAULT '{}',
	purchase_price  DOUBLE PRECISION,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (owner_id, id)
);

CREATE TABLE IF NOT EXISTS outfits (
	id          UUID PRIMARY KEY,
	owner_id    UUID NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	item_ids    TEXT[] NOT NULL,
	occasions   TEXT[] NOT NULL DEFAULT '{}',
	seasons     TEXT[] NOT NULL DEFAULT '{}',
	rating      SMALLINT NOT NULL DEFAULT 0,
	worn_dates  TIMESTAMPTZ[] NOT NULL DEFAULT '{}',
	suggested   BOOLEAN NOT NULL DEFAULT FALSE,
	name_locked BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_outfits_owner ON outfits (owner_id, created_at DESC);

CREATE TABLE IF NOT EXISTS flagged_patterns (
	owner_id   UUID NOT NULL,
	pattern    TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	flagged_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (owner_id, pattern)
);
`

const itemColumns = `id, owner_id, category, sub_category, color, color_name, secondary_color,
	fabric_type, is_open, archived, wear_count, favorite, seasons, occasions, purchase_price, created_at`

const outfitColumns = `id, owner_id, name, item_ids, occasions, seasons, rating, worn_dates,
	suggested, name_locked, created_at`

type PostgresStore struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewPostgresStore(db DatabaseQuerier, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// Migrate applies PostgresSchema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.logger.Info("PostgreSQL schema applied")
	return nil
}

func (s *PostgresStore) ListItems(ctx context.Context, ownerID uuid.UUID, includeArchived bool) ([]models.ClothingItem, error) {
	query := `SELECT ` + itemColumns + ` FROM clothing_items WHERE owner_id = $1`
	if !includeArchived {
		query += ` AND archived = FALSE`
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.ClothingItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetItem(ctx context.Context, ownerID uuid.UUID, id string) (*models.ClothingItem, error) {
	row := s.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM clothing_items WHERE owner_id = $1 AND id = $2`, ownerID, id)
	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) UpsertItem(ctx context.Context, item *models.ClothingItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO clothing_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (owner_id, id) DO UPDATE SET
			category = EXCLUDED.category,
			sub_category = EXCLUDED.sub_category,
			color = EXCLUDED.color,
			color_name = EXCLUDED.color_name,
			secondary_color = EXCLUDED.secondary_color,
			fabric_type = EXCLUDED.fabric_type,
			is_open = EXCLUDED.is_open,
			archived = EXCLUDED.archived,
			wear_count = EXCLUDED.wear_count,
			favorite = EXCLUDED.favorite,
			seasons = EXCLUDED.seasons,
			occasions = EXCLUDED.occasions,
			purchase_price = EXCLUDED.purchase_price`,
		item.ID, item.OwnerID, string(item.Category), item.SubCategory, item.Color, item.ColorName,
		item.SecondaryColor, string(item.FabricType), item.IsOpen, item.Archived, item.WearCount,
		item.Favorite, seasonsToStrings(item.Seasons), occasionsToStrings(item.Occasions),
		item.PurchasePrice, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

func (s *PostgresStore) ArchiveItem(ctx context.Context, ownerID uuid.UUID, id string) error {
	tag, err := s.db.Exec(ctx, `UPDATE clothing_items SET archived = TRUE WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to archive item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListOutfits(ctx context.Context, ownerID uuid.UUID) ([]models.Outfit, error) {
	rows, err := s.db.Query(ctx, `SELECT `+outfitColumns+` FROM outfits WHERE owner_id = $1 ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outfits: %w", err)
	}
	defer rows.Close()

	var outfits []models.Outfit
	for rows.Next() {
		outfit, err := scanOutfit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outfit: %w", err)
		}
		outfits = append(outfits, *outfit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outfits: %w", err)
	}
	return outfits, nil
}

func (s *PostgresStore) GetOutfit(ctx context.Context, ownerID, id uuid.UUID) (*models.Outfit, error) {
	row := s.db.QueryRow(ctx, `SELECT `+outfitColumns+` FROM outfits WHERE owner_id = $1 AND id = $2`, ownerID, id)
	outfit, err := scanOutfit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("outfit %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outfit: %w", err)
	}
	return outfit, nil
}

// SaveOutfit inserts the outfit or overwrites the mutable fields of an existing one.
func (s *PostgresStore) SaveOutfit(ctx context.Context, outfit *models.Outfit) error {
	if outfit.ID == uuid.Nil {
		outfit.ID = uuid.New()
	}
	if outfit.CreatedAt.IsZero() {
		outfit.CreatedAt = time.Now().UTC()
	}
	wornDates := outfit.WornDates
	if wornDates == nil {
		wornDates = []time.Time{}
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO outfits (`+outfitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			item_ids = EXCLUDED.item_ids,
			occasions = EXCLUDED.occasions,
			seasons = EXCLUDED.seasons,
			rating = EXCLUDED.rating,
			worn_dates = EXCLUDED.worn_dates,
			name_locked = EXCLUDED.name_locked`,
		outfit.ID, outfit.OwnerID, outfit.Name, outfit.ItemIDs, occasionsToStrings(outfit.Occasions),
		seasonsToStrings(outfit.Seasons), outfit.Rating, wornDates, outfit.Suggested,
		outfit.NameLocked, outfit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save outfit: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendWornDate(ctx context.Context, ownerID, id uuid.UUID, worn time.Time) (*models.Outfit, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	outfit, err := s.appendWornDate(ctx, tx, ownerID, id, worn)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.WithError(rbErr).Warn("Failed to roll back worn date")
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit worn date: %w", err)
	}
	return outfit, nil
}

func (s *PostgresStore) appendWornDate(ctx context.Context, tx pgx.Tx, ownerID, id uuid.UUID, worn time.Time) (*models.Outfit, error) {
	row := tx.QueryRow(ctx, `
		UPDATE outfits SET worn_dates = array_append(worn_dates, $3)
		WHERE owner_id = $1 AND id = $2
		RETURNING `+outfitColumns, ownerID, id, worn)
	outfit, err := outfitOrNotFound(row, id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE clothing_items SET wear_count = wear_count + 1 WHERE owner_id = $1 AND id = ANY($2)`,
		ownerID, outfit.ItemIDs); err != nil {
		return nil, fmt.Errorf("failed to increment wear count: %w", err)
	}
	return outfit, nil
}

func (s *PostgresStore) SetOutfitRating(ctx context.Context, ownerID, id uuid.UUID, rating int) (*models.Outfit, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE outfits SET rating = $3 WHERE owner_id = $1 AND id = $2 RETURNING `+outfitColumns,
		ownerID, id, rating)
	return outfitOrNotFound(row, id)
}

func (s *PostgresStore) RenameOutfit(ctx context.Context, ownerID, id uuid.UUID, name string) (*models.Outfit, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE outfits SET name = $3, name_locked = TRUE WHERE owner_id = $1 AND id = $2 RETURNING `+outfitColumns,
		ownerID, id, name)
	return outfitOrNotFound(row, id)
}

func outfitOrNotFound(row pgx.Row, id uuid.UUID) (*models.Outfit, error) {
	outfit, err := scanOutfit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("outfit %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update outfit: %w", err)
	}
	return outfit, nil
}

func (s *PostgresStore) DeleteOutfit(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM outfits WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete outfit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("outfit %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) LoadFlaggedPatterns(ctx context.Context, ownerID uuid.UUID) ([]models.FlaggedPattern, error) {
	rows, err := s.db.Query(ctx, `SELECT pattern, reason, flagged_at FROM flagged_patterns WHERE owner_id = $1 ORDER BY pattern`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flagged patterns: %w", err)
	}
	defer rows.Close()

	var flags []models.FlaggedPattern
	for rows.Next() {
		var f models.FlaggedPattern
		if err := rows.Scan(&f.Pattern, &f.Reason, &f.FlaggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan flagged pattern: %w", err)
		}
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flagged patterns: %w", err)
	}
	return flags, nil
}

// SaveFlaggedPattern is an idempotent upsert keyed by (owner, pattern); the latest reason wins.
func (s *PostgresStore) SaveFlaggedPattern(ctx context.Context, ownerID uuid.UUID, flag models.FlaggedPattern) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO flagged_patterns (owner_id, pattern, reason, flagged_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, pattern) DO UPDATE SET reason = EXCLUDED.reason, flagged_at = EXCLUDED.flagged_at`,
		ownerID, flag.Pattern, flag.Reason, flag.FlaggedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save flagged pattern: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is owned by internal/database.
func (s *PostgresStore) Close() error {
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*models.ClothingItem, error) {
	var (
		item               models.ClothingItem
		category, fabric   string
		seasons, occasions []string
	)
	err := row.Scan(
		&item.ID, &item.OwnerID, &category, &item.SubCategory, &item.Color, &item.ColorName,
		&item.SecondaryColor, &fabric, &item.IsOpen, &item.Archived, &item.WearCount, &item.Favorite,
		&seasons, &occasions, &item.PurchasePrice, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Category = models.Category(category)
	item.FabricType = models.Fabric(fabric)
	item.Seasons = stringsToSeasons(seasons)
	item.Occasions = stringsToOccasions(occasions)
	return &item, nil
}

func scanOutfit(row scanner) (*models.Outfit, error) {
	var (
		outfit             models.Outfit
		occasions, seasons []string
	)
	err := row.Scan(
		&outfit.ID, &outfit.OwnerID, &outfit.Name, &outfit.ItemIDs, &occasions, &seasons,
		&outfit.Rating, &outfit.WornDates, &outfit.Suggested, &outfit.NameLocked, &outfit.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	outfit.Occasions = stringsToOccasions(occasions)
	outfit.Seasons = stringsToSeasons(seasons)
	return &outfit, nil
}
