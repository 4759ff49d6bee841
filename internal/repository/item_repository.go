package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jewelry-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const itemColumns = `id, article, name, description, material, price, discount, count,
	is_published, publish_at, created_at, updated_at, deleted_at`

// itemRepository implements the ItemRepository interface using PostgreSQL.
type itemRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewItemRepository creates a new PostgreSQL-backed item repository.
func NewItemRepository(pool *pgxpool.Pool, logger zerolog.Logger) ItemRepository {
	return &itemRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "item").Logger(),
	}
}

func scanItem(row pgx.Row, i *model.Item) error {
	return row.Scan(
		&i.ID, &i.Article, &i.Name, &i.Description, &i.Material, &i.Price, &i.Discount, &i.Count,
		&i.IsPublished, &i.PublishAt, &i.CreatedAt, &i.UpdatedAt, &i.DeletedAt,
	)
}

// BeginTx starts a new database transaction.
func (r *itemRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *itemRepository) collect(rows pgx.Rows) ([]model.Item, error) {
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var i model.Item
		if err := scanItem(rows, &i); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan item row")
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, i)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating item rows")
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// List retrieves items with pagination support.
func (r *itemRepository) List(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	query := `SELECT ` + itemColumns + `
		FROM items
		WHERE deleted_at IS NULL AND ($1 = FALSE OR is_published = TRUE)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, filter.PublishedOnly, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query items")
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	return r.collect(rows)
}

// GetByID retrieves a single live item by its ID.
func (r *itemRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 AND deleted_at IS NULL`

	var i model.Item
	if err := scanItem(r.pool.QueryRow(ctx, query, id), &i); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("item_id", id.String()).Msg("item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("item_id", id.String()).Msg("failed to query item")
		return nil, fmt.Errorf("failed to query item: %w", err)
	}

	return &i, nil
}

// GetByIDs retrieves multiple live items by their IDs.
func (r *itemRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Item, error) {
	if len(ids) == 0 {
		return []model.Item{}, nil
	}

	query := `SELECT ` + itemColumns + `
		FROM items
		WHERE id = ANY($1) AND deleted_at IS NULL
		ORDER BY name`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query items by IDs")
		return nil, fmt.Errorf("failed to query items by IDs: %w", err)
	}

	return r.collect(rows)
}

// ValidateItemsExist checks that every ID refers to a live item.
func (r *itemRepository) ValidateItemsExist(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	query := `SELECT COUNT(DISTINCT id) FROM items WHERE id = ANY($1) AND deleted_at IS NULL`

	var count int
	if err := r.pool.QueryRow(ctx, query, ids).Scan(&count); err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to validate items exist")
		return fmt.Errorf("failed to validate items exist: %w", err)
	}

	if count != len(unique) {
		r.logger.Warn().
			Int("expected", len(unique)).
			Int("found", count).
			Msg("not all item IDs exist")
		return model.ErrItemNotFound
	}

	return nil
}

// Create inserts a new item.
func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	query := `
		INSERT INTO items (id, article, name, description, material, price, discount, count,
			is_published, publish_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.Article, item.Name, item.Description, item.Material, item.Price, item.Discount,
		item.Count, item.IsPublished, item.PublishAt, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error().Err(err).Str("article", item.Article).Msg("failed to create item")
		return fmt.Errorf("failed to create item: %w", err)
	}

	r.logger.Debug().Str("item_id", item.ID.String()).Msg("item created successfully")

	return nil
}

// Update overwrites the editable fields of an item.
func (r *itemRepository) Update(ctx context.Context, item *model.Item) (bool, error) {
	query := `
		UPDATE items
		SET article = $2, name = $3, description = $4, material = $5, price = $6,
			discount = $7, count = $8, is_published = $9, updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query,
		item.ID, item.Article, item.Name, item.Description, item.Material, item.Price,
		item.Discount, item.Count, item.IsPublished, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrDuplicate
		}
		r.logger.Error().Err(err).Str("item_id", item.ID.String()).Msg("failed to update item")
		return false, fmt.Errorf("failed to update item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SoftDelete marks an item as deleted.
func (r *itemRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE items SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", id.String()).Msg("failed to delete item")
		return false, fmt.Errorf("failed to delete item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SchedulePublication hides the item until publishAt.
func (r *itemRepository) SchedulePublication(ctx context.Context, id uuid.UUID, publishAt time.Time) (bool, error) {
	query := `
		UPDATE items
		SET is_published = FALSE, publish_at = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, id, publishAt)
	if err != nil {
		r.logger.Error().Err(err).Str("item_id", id.String()).Msg("failed to schedule publication")
		return false, fmt.Errorf("failed to schedule publication: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListDueForPublication returns hidden items whose publication time has passed.
func (r *itemRepository) ListDueForPublication(ctx context.Context, now time.Time, limit int) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM items
		WHERE is_published = FALSE AND deleted_at IS NULL
			AND publish_at IS NOT NULL AND publish_at <= $1
		ORDER BY publish_at
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query items due for publication")
		return nil, fmt.Errorf("failed to query items due for publication: %w", err)
	}

	return r.collect(rows)
}

// MarkPublished makes the given items visible.
func (r *itemRepository) MarkPublished(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE items
		SET is_published = TRUE, publish_at = NULL, updated_at = NOW()
		WHERE id = ANY($1)`

	if _, err := tx.Exec(ctx, query, ids); err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to publish items")
		return fmt.Errorf("failed to publish items: %w", err)
	}

	return nil
}

// LockByIDs selects live items for update within the transaction.
func (r *itemRepository) LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Item, error) {
	if len(ids) == 0 {
		return []model.Item{}, nil
	}

	query := `SELECT ` + itemColumns + `
		FROM items
		WHERE id = ANY($1) AND deleted_at IS NULL
		ORDER BY id
		FOR UPDATE`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock items")
		return nil, fmt.Errorf("failed to lock items: %w", err)
	}

	return r.collect(rows)
}

// AdjustStock adds delta to each item's count within the transaction.
// The count check constraint rejects a negative result.
func (r *itemRepository) AdjustStock(ctx context.Context, tx pgx.Tx, deltas map[uuid.UUID]int) error {
	if len(deltas) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for id, delta := range deltas {
		batch.Queue(`UPDATE items SET count = count + $2, updated_at = NOW() WHERE id = $1`, id, delta)
	}

	if err := execBatch(ctx, tx, batch); err != nil {
		r.logger.Error().Err(err).Int("count", len(deltas)).Msg("failed to adjust stock")
		return fmt.Errorf("failed to adjust stock: %w", err)
	}

	return nil
}
