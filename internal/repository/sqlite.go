package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/temcen/wardrobe/pkg/models"
)

// SQLiteSchema mirrors PostgresSchema for the local single-user store.
// List columns hold JSON arrays; timestamps are unix milliseconds.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS clothing_items (
	owner_id        TEXT NOT NULL,
	id              TEXT NOT NULL,
	category        TEXT NOT NULL,
	sub_category    TEXT NOT NULL DEFAULT '',
	color           TEXT NOT NULL,
	color_name      TEXT NOT NULL DEFAULT '',
	secondary_color TEXT NOT NULL DEFAULT '',
	fabric_type     TEXT NOT NULL,
	is_open         INTEGER NOT NULL DEFAULT 0,
	archived        INTEGER NOT NULL DEFAULT 0,
	wear_count      INTEGER NOT NULL DEFAULT 0,
	favorite        INTEGER NOT NULL DEFAULT 0,
	seasons         TEXT NOT NULL DEFAULT '[]',
	occasions       TEXT NOT NULL DEFAULT '[]',
	purchase_price  REAL,
	created_ms      INTEGER NOT NULL,
	PRIMARY KEY (owner_id, id)
);

CREATE TABLE IF NOT EXISTS outfits (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	item_ids    TEXT NOT NULL,
	occasions   TEXT NOT NULL DEFAULT '[]',
	seasons     TEXT NOT NULL DEFAULT '[]',
	rating      INTEGER NOT NULL DEFAULT 0,
	worn_dates  TEXT NOT NULL DEFAULT '[]',
	suggested   INTEGER NOT NULL DEFAULT 0,
	name_locked INTEGER NOT NULL DEFAULT 0,
	created_ms  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outfits_owner ON outfits (owner_id, created_ms DESC);

CREATE TABLE IF NOT EXISTS flagged_patterns (
	owner_id   TEXT NOT NULL,
	pattern    TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	flagged_ms INTEGER NOT NULL,
	PRIMARY KEY (owner_id, pattern)
);
`

const sqliteItemColumns = `id, owner_id, category, sub_category, color, color_name, secondary_color,
	fabric_type, is_open, archived, wear_count, favorite, seasons, occasions, purchase_price, created_ms`

const sqliteOutfitColumns = `id, owner_id, name, item_ids, occasions, seasons, rating, worn_dates,
	suggested, name_locked, created_ms`

// SQLiteStore is the local wardrobe store used by the CLI.
type SQLiteStore struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewSQLiteStore opens (and migrates) the database at path. ":memory:" opens a private in-memory database.
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// single writer; also keeps an in-memory database alive on one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, SQLiteSchema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	s.logger.Debug("SQLite schema applied")
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListItems(ctx context.Context, ownerID uuid.UUID, includeArchived bool) ([]models.ClothingItem, error) {
	query := `SELECT ` + sqliteItemColumns + ` FROM clothing_items WHERE owner_id = ?`
	if !includeArchived {
		query += ` AND archived = 0`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.ClothingItem
	for rows.Next() {
		item, err := scanSQLiteItem(rows)
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

func (s *SQLiteStore) GetItem(ctx context.Context, ownerID uuid.UUID, id string) (*models.ClothingItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteItemColumns+` FROM clothing_items WHERE owner_id = ? AND id = ?`, ownerID.String(), id)
	item, err := scanSQLiteItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *SQLiteStore) UpsertItem(ctx context.Context, item *models.ClothingItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	seasons, err := json.Marshal(seasonsToStrings(item.Seasons))
	if err != nil {
		return fmt.Errorf("failed to encode seasons: %w", err)
	}
	occasions, err := json.Marshal(occasionsToStrings(item.Occasions))
	if err != nil {
		return fmt.Errorf("failed to encode occasions: %w", err)
	}
	var price sql.NullFloat64
	if item.PurchasePrice != nil {
		price = sql.NullFloat64{Float64: *item.PurchasePrice, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO clothing_items (`+sqliteItemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, id) DO UPDATE SET
			category = excluded.category,
			sub_category = excluded.sub_category,
			color = excluded.color,
			color_name = excluded.color_name,
			secondary_color = excluded.secondary_color,
			fabric_type = excluded.fabric_type,
			is_open = excluded.is_open,
			archived = excluded.archived,
			wear_count = excluded.wear_count,
			favorite = excluded.favorite,
			seasons = excluded.seasons,
			occasions = excluded.occasions,
			purchase_price = excluded.purchase_price`,
		item.ID, item.OwnerID.String(), string(item.Category), item.SubCategory, item.Color, item.ColorName,
		item.SecondaryColor, string(item.FabricType), item.IsOpen, item.Archived, item.WearCount,
		item.Favorite, string(seasons), string(occasions), price, item.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ArchiveItem(ctx context.Context, ownerID uuid.UUID, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE clothing_items SET archived = 1 WHERE owner_id = ? AND id = ?`, ownerID.String(), id)
	if err != nil {
		return fmt.Errorf("failed to archive item: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("item %s", id))
}

// sqliteConn is satisfied by both *sql.DB and *sql.Tx.
type sqliteConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func incrementWearCount(ctx context.Context, conn sqliteConn, ownerID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID.String())
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := conn.ExecContext(ctx,
		`UPDATE clothing_items SET wear_count = wear_count + 1 WHERE owner_id = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to increment wear count: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListOutfits(ctx context.Context, ownerID uuid.UUID) ([]models.Outfit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteOutfitColumns+` FROM outfits WHERE owner_id = ? ORDER BY created_ms DESC, id`, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query outfits: %w", err)
	}
	defer rows.Close()

	var outfits []models.Outfit
	for rows.Next() {
		outfit, err := scanSQLiteOutfit(rows)
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

func (s *SQLiteStore) GetOutfit(ctx context.Context, ownerID, id uuid.UUID) (*models.Outfit, error) {
	return getSQLiteOutfit(ctx, s.db, ownerID, id)
}

func getSQLiteOutfit(ctx context.Context, conn sqliteConn, ownerID, id uuid.UUID) (*models.Outfit, error) {
	row := conn.QueryRowContext(ctx,
		`SELECT `+sqliteOutfitColumns+` FROM outfits WHERE owner_id = ? AND id = ?`, ownerID.String(), id.String())
	outfit, err := scanSQLiteOutfit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("outfit %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outfit: %w", err)
	}
	return outfit, nil
}

func (s *SQLiteStore) SaveOutfit(ctx context.Context, outfit *models.Outfit) error {
	if outfit.ID == uuid.Nil {
		outfit.ID = uuid.New()
	}
	if outfit.CreatedAt.IsZero() {
		outfit.CreatedAt = time.Now().UTC()
	}

	encoded := make([][]byte, 0, 4)
	for _, v := range []any{
		outfit.ItemIDs,
		occasionsToStrings(outfit.Occasions),
		seasonsToStrings(outfit.Seasons),
		nonNilTimes(outfit.WornDates),
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode outfit: %w", err)
		}
		encoded = append(encoded, b)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outfits (`+sqliteOutfitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			item_ids = excluded.item_ids,
			occasions = excluded.occasions,
			seasons = excluded.seasons,
			rating = excluded.rating,
			worn_dates = excluded.worn_dates,
			name_locked = excluded.name_locked`,
		outfit.ID.String(), outfit.OwnerID.String(), outfit.Name, string(encoded[0]), string(encoded[1]),
		string(encoded[2]), outfit.Rating, string(encoded[3]), outfit.Suggested, outfit.NameLocked,
		outfit.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save outfit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendWornDate(ctx context.Context, ownerID, id uuid.UUID, worn time.Time) (*models.Outfit, error) {
	var outfit *models.Outfit
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		updated, err := s.updateOutfit(ctx, tx, ownerID, id,
			`worn_dates = json_insert(worn_dates, '$[#]', ?)`, worn.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
		outfit = updated
		return incrementWearCount(ctx, tx, ownerID, updated.ItemIDs)
	})
	if err != nil {
		return nil, err
	}
	return outfit, nil
}

func (s *SQLiteStore) SetOutfitRating(ctx context.Context, ownerID, id uuid.UUID, rating int) (*models.Outfit, error) {
	return s.updateOutfit(ctx, s.db, ownerID, id, `rating = ?`, rating)
}

func (s *SQLiteStore) RenameOutfit(ctx context.Context, ownerID, id uuid.UUID, name string) (*models.Outfit, error) {
	return s.updateOutfit(ctx, s.db, ownerID, id, `name = ?, name_locked = 1`, name)
}

// updateOutfit applies a single SET clause to one outfit and reads it back on the same connection.
func (s *SQLiteStore) updateOutfit(ctx context.Context, conn sqliteConn, ownerID, id uuid.UUID, set string, value any) (*models.Outfit, error) {
	res, err := conn.ExecContext(ctx,
		`UPDATE outfits SET `+set+` WHERE owner_id = ? AND id = ?`, value, ownerID.String(), id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to update outfit: %w", err)
	}
	if err := requireAffected(res, fmt.Sprintf("outfit %s", id)); err != nil {
		return nil, err
	}
	return getSQLiteOutfit(ctx, conn, ownerID, id)
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.WithError(rbErr).Warn("Failed to roll back transaction")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteOutfit(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM outfits WHERE owner_id = ? AND id = ?`, ownerID.String(), id.String())
	if err != nil {
		return fmt.Errorf("failed to delete outfit: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("outfit %s", id))
}

func (s *SQLiteStore) LoadFlaggedPatterns(ctx context.Context, ownerID uuid.UUID) ([]models.FlaggedPattern, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pattern, reason, flagged_ms FROM flagged_patterns WHERE owner_id = ? ORDER BY pattern`, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query flagged patterns: %w", err)
	}
	defer rows.Close()

	var flags []models.FlaggedPattern
	for rows.Next() {
		var (
			f  models.FlaggedPattern
			ms int64
		)
		if err := rows.Scan(&f.Pattern, &f.Reason, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan flagged pattern: %w", err)
		}
		f.FlaggedAt = time.UnixMilli(ms).UTC()
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flagged patterns: %w", err)
	}
	return flags, nil
}

func (s *SQLiteStore) SaveFlaggedPattern(ctx context.Context, ownerID uuid.UUID, flag models.FlaggedPattern) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flagged_patterns (owner_id, pattern, reason, flagged_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner_id, pattern) DO UPDATE SET reason = excluded.reason, flagged_ms = excluded.flagged_ms`,
		ownerID.String(), flag.Pattern, flag.Reason, flag.FlaggedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save flagged pattern: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}

func nonNilTimes(in []time.Time) []time.Time {
	if in == nil {
		return []time.Time{}
	}
	return in
}

func scanSQLiteItem(row scanner) (*models.ClothingItem, error) {
	var (
		item                    models.ClothingItem
		owner, category, fabric string
		seasons, occasions      string
		price                   sql.NullFloat64
		createdMs               int64
	)
	err := row.Scan(
		&item.ID, &owner, &category, &item.SubCategory, &item.Color, &item.ColorName,
		&item.SecondaryColor, &fabric, &item.IsOpen, &item.Archived, &item.WearCount, &item.Favorite,
		&seasons, &occasions, &price, &createdMs,
	)
	if err != nil {
		return nil, err
	}

	if item.OwnerID, err = uuid.Parse(owner); err != nil {
		return nil, fmt.Errorf("invalid owner id %q: %w", owner, err)
	}
	var rawSeasons, rawOccasions []string
	if err := json.Unmarshal([]byte(seasons), &rawSeasons); err != nil {
		return nil, fmt.Errorf("invalid seasons column: %w", err)
	}
	if err := json.Unmarshal([]byte(occasions), &rawOccasions); err != nil {
		return nil, fmt.Errorf("invalid occasions column: %w", err)
	}

	item.Category = models.Category(category)
	item.FabricType = models.Fabric(fabric)
	item.Seasons = stringsToSeasons(rawSeasons)
	item.Occasions = stringsToOccasions(rawOccasions)
	if price.Valid {
		p := price.Float64
		item.PurchasePrice = &p
	}
	item.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &item, nil
}

func scanSQLiteOutfit(row scanner) (*models.Outfit, error) {
	var (
		outfit                                 models.Outfit
		id, owner                              string
		itemIDs, occasions, seasons, wornDates string
		createdMs                              int64
	)
	err := row.Scan(
		&id, &owner, &outfit.Name, &itemIDs, &occasions, &seasons, &outfit.Rating, &wornDates,
		&outfit.Suggested, &outfit.NameLocked, &createdMs,
	)
	if err != nil {
		return nil, err
	}

	if outfit.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid outfit id %q: %w", id, err)
	}
	if outfit.OwnerID, err = uuid.Parse(owner); err != nil {
		return nil, fmt.Errorf("invalid owner id %q: %w", owner, err)
	}

	var rawOccasions, rawSeasons []string
	for _, col := range []struct {
		raw  string
		dest any
	}{
		{itemIDs, &outfit.ItemIDs},
		{occasions, &rawOccasions},
		{seasons, &rawSeasons},
		{wornDates, &outfit.WornDates},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dest); err != nil {
			return nil, fmt.Errorf("invalid outfit column: %w", err)
		}
	}
	if len(outfit.WornDates) == 0 {
		outfit.WornDates = nil
	}
	outfit.Occasions = stringsToOccasions(rawOccasions)
	outfit.Seasons = stringsToSeasons(rawSeasons)
	outfit.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &outfit, nil
}
