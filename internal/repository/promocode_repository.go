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

const promoColumns = `id, name, description, discount, discount_percent, free_delivery,
	date_start, date_end, is_active, item_ids, created_at, deleted_at`

// promoCodeRepository implements the PromoCodeRepository interface using PostgreSQL.
type promoCodeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPromoCodeRepository creates a new PostgreSQL-backed promo code repository.
func NewPromoCodeRepository(pool *pgxpool.Pool, logger zerolog.Logger) PromoCodeRepository {
	return &promoCodeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "promocode").Logger(),
	}
}

func scanPromoCode(row pgx.Row, p *model.PromoCode) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Discount, &p.DiscountPercent, &p.FreeDelivery,
		&p.DateStart, &p.DateEnd, &p.IsActive, &p.ItemIDs, &p.CreatedAt, &p.DeletedAt,
	)
}

// getPromoCode loads one promo code matching where. Orders keep pointing at
// deleted promo codes, so includeDeleted lets them still resolve.
func getPromoCode(ctx context.Context, q DBTX, where string, arg any, includeDeleted bool) (*model.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE ` + where
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	var p model.PromoCode
	if err := scanPromoCode(q.QueryRow(ctx, query, arg), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &p, nil
}

// BeginTx starts a new database transaction.
func (r *promoCodeRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// List retrieves live promo codes with pagination.
func (r *promoCodeRepository) List(ctx context.Context, limit, offset int) ([]model.PromoCode, error) {
	limit, offset = clampPage(limit, offset)

	query := `SELECT ` + promoColumns + `
		FROM promo_codes
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query promo codes")
		return nil, fmt.Errorf("failed to query promo codes: %w", err)
	}
	defer rows.Close()

	promos := []model.PromoCode{}
	for rows.Next() {
		var p model.PromoCode
		if err := scanPromoCode(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan promo code row")
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		promos = append(promos, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating promo code rows")
		return nil, fmt.Errorf("error iterating promo codes: %w", err)
	}

	return promos, nil
}

// GetByID retrieves a live promo code by ID.
func (r *promoCodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error) {
	p, err := getPromoCode(ctx, r.pool, `id = $1`, id, false)
	if err != nil {
		r.logger.Error().Err(err).Str("promo_id", id.String()).Msg("failed to query promo code")
		return nil, fmt.Errorf("failed to query promo code: %w", err)
	}
	return p, nil
}

// GetByName retrieves a live promo code by its exact, case-sensitive name.
func (r *promoCodeRepository) GetByName(ctx context.Context, name string) (*model.PromoCode, error) {
	p, err := getPromoCode(ctx, r.pool, `name = $1`, name, false)
	if err != nil {
		r.logger.Error().Err(err).Str("promo_name", name).Msg("failed to query promo code")
		return nil, fmt.Errorf("failed to query promo code: %w", err)
	}
	if p == nil {
		r.logger.Debug().Str("promo_name", name).Msg("promo code not found")
	}
	return p, nil
}

// Create inserts a promo code. Returns ErrDuplicate if the name is taken.
func (r *promoCodeRepository) Create(ctx context.Context, p *model.PromoCode) error {
	query := `
		INSERT INTO promo_codes (id, name, description, discount, discount_percent, free_delivery,
			date_start, date_end, is_active, item_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Discount, p.DiscountPercent, p.FreeDelivery,
		p.DateStart, p.DateEnd, p.IsActive, itemIDs(p.ItemIDs), p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error().Err(err).Str("promo_name", p.Name).Msg("failed to create promo code")
		return fmt.Errorf("failed to create promo code: %w", err)
	}

	return nil
}

// Update overwrites a live promo code.
func (r *promoCodeRepository) Update(ctx context.Context, p *model.PromoCode) (bool, error) {
	query := `
		UPDATE promo_codes
		SET name = $2, description = $3, discount = $4, discount_percent = $5, free_delivery = $6,
			date_start = $7, date_end = $8, is_active = $9, item_ids = $10
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Discount, p.DiscountPercent, p.FreeDelivery,
		p.DateStart, p.DateEnd, p.IsActive, itemIDs(p.ItemIDs),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrDuplicate
		}
		r.logger.Error().Err(err).Str("promo_id", p.ID.String()).Msg("failed to update promo code")
		return false, fmt.Errorf("failed to update promo code: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SoftDelete marks a promo code as deleted.
func (r *promoCodeRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE promo_codes SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("promo_id", id.String()).Msg("failed to delete promo code")
		return false, fmt.Errorf("failed to delete promo code: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Upsert inserts or replaces live promo codes by name within the transaction.
func (r *promoCodeRepository) Upsert(ctx context.Context, tx pgx.Tx, promos []model.PromoCode) error {
	if len(promos) == 0 {
		return nil
	}

	query := `
		INSERT INTO promo_codes (id, name, description, discount, discount_percent, free_delivery,
			date_start, date_end, is_active, item_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (name) WHERE deleted_at IS NULL DO UPDATE
		SET description = EXCLUDED.description,
			discount = EXCLUDED.discount,
			discount_percent = EXCLUDED.discount_percent,
			free_delivery = EXCLUDED.free_delivery,
			date_start = EXCLUDED.date_start,
			date_end = EXCLUDED.date_end,
			is_active = EXCLUDED.is_active,
			item_ids = EXCLUDED.item_ids`

	batch := &pgx.Batch{}
	for _, p := range promos {
		batch.Queue(query,
			p.ID, p.Name, p.Description, p.Discount, p.DiscountPercent, p.FreeDelivery,
			p.DateStart, p.DateEnd, p.IsActive, itemIDs(p.ItemIDs), p.CreatedAt)
	}

	if err := execBatch(ctx, tx, batch); err != nil {
		r.logger.Error().Err(err).Int("count", len(promos)).Msg("failed to upsert promo codes")
		return fmt.Errorf("failed to upsert promo codes: %w", err)
	}

	r.logger.Info().Int("count", len(promos)).Msg("promo codes upserted")

	return nil
}

// itemIDs keeps a nil restriction list from being sent as NULL.
func itemIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
