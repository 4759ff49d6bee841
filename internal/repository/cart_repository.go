package repository

import (
	"context"
	"errors"
	"fmt"

	"jewelry-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func (r *cartRepository) list(ctx context.Context, q DBTX, userID uuid.UUID, lock bool) ([]model.CartItem, error) {
	query := `
		SELECT c.id, c.item_id, c.count, c.user_id, c.created_at,
			i.id, i.article, i.name, i.description, i.material, i.price, i.discount, i.count,
			i.is_published, i.publish_at, i.created_at, i.updated_at, i.deleted_at
		FROM cart_items c
		JOIN items i ON i.id = c.item_id
		WHERE c.user_id = $1
		ORDER BY c.created_at, c.id`
	if lock {
		query += ` FOR UPDATE OF c`
	}

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var c model.CartItem
		var i model.Item
		err := rows.Scan(&c.ID, &c.ItemID, &c.Count, &c.UserID, &c.CreatedAt,
			&i.ID, &i.Article, &i.Name, &i.Description, &i.Material, &i.Price, &i.Discount, &i.Count,
			&i.IsPublished, &i.PublishAt, &i.CreatedAt, &i.UpdatedAt, &i.DeletedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		c.Item = &i
		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart: %w", err)
	}

	return items, nil
}

// ListByUser retrieves the user's cart with item details.
func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	return r.list(ctx, r.pool, userID, false)
}

// ListByUserTx locks and retrieves the user's cart within the transaction.
func (r *cartRepository) ListByUserTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartItem, error) {
	return r.list(ctx, tx, userID, true)
}

// Add inserts a row or increases the count of the user's existing row for the same item.
func (r *cartRepository) Add(ctx context.Context, item *model.CartItem) (*model.CartItem, error) {
	update := `
		UPDATE cart_items SET count = count + $3
		WHERE user_id = $1 AND item_id = $2
		RETURNING id, item_id, count, user_id, created_at`

	var out model.CartItem
	err := r.pool.QueryRow(ctx, update, item.UserID, item.ItemID, item.Count).
		Scan(&out.ID, &out.ItemID, &out.Count, &out.UserID, &out.CreatedAt)
	if err == nil {
		return &out, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error().Err(err).Str("item_id", item.ItemID.String()).Msg("failed to increment cart row")
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	insert := `
		INSERT INTO cart_items (id, item_id, count, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.pool.Exec(ctx, insert, item.ID, item.ItemID, item.Count, item.UserID, item.CreatedAt); err != nil {
		r.logger.Error().Err(err).Str("item_id", item.ItemID.String()).Msg("failed to insert cart row")
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	return item, nil
}

// UpdateCount sets the count of one of the user's rows.
func (r *cartRepository) UpdateCount(ctx context.Context, id, userID uuid.UUID, count int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE cart_items SET count = $3 WHERE id = $1 AND user_id = $2`, id, userID, count)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", id.String()).Msg("failed to update cart row")
		return false, fmt.Errorf("failed to update cart item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes one of the user's rows.
func (r *cartRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", id.String()).Msg("failed to delete cart row")
		return false, fmt.Errorf("failed to delete cart item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// CreateItems inserts cart rows within the transaction.
func (r *cartRepository) CreateItems(ctx context.Context, tx pgx.Tx, items []model.CartItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range items {
		batch.Queue(`
			INSERT INTO cart_items (id, item_id, count, user_id, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.ItemID, c.Count, c.UserID, c.CreatedAt)
	}

	if err := execBatch(ctx, tx, batch); err != nil {
		r.logger.Error().Err(err).Int("count", len(items)).Msg("failed to create cart rows")
		return fmt.Errorf("failed to create cart items: %w", err)
	}

	return nil
}

// UpdateCounts rewrites the counts of existing rows within the transaction.
func (r *cartRepository) UpdateCounts(ctx context.Context, tx pgx.Tx, items []model.CartItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range items {
		batch.Queue(`UPDATE cart_items SET count = $2 WHERE id = $1`, c.ID, c.Count)
	}

	if err := execBatch(ctx, tx, batch); err != nil {
		r.logger.Error().Err(err).Int("count", len(items)).Msg("failed to update cart rows")
		return fmt.Errorf("failed to update cart items: %w", err)
	}

	return nil
}

// DeleteItems removes rows within the transaction.
func (r *cartRepository) DeleteItems(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, ids); err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to delete cart rows")
		return fmt.Errorf("failed to delete cart items: %w", err)
	}

	return nil
}
