package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jewelry-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, user_id, status, delivery_price, is_payment, comment, promo_code_id,
	promo_terms, created_at, updated_at, deleted_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// scanOrder reads an order row. The promo code is the copy frozen at
// checkout, so later edits of the promo do not reprice the order.
func scanOrder(row pgx.Row, o *model.Order) error {
	var terms []byte
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.DeliveryPrice, &o.IsPayment, &o.Comment, &o.PromoCodeID,
		&terms, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt,
	)
	if err != nil {
		return err
	}
	if len(terms) > 0 {
		var promo model.PromoCode
		if err := json.Unmarshal(terms, &promo); err != nil {
			return fmt.Errorf("failed to decode promo terms: %w", err)
		}
		o.PromoCode = &promo
	}
	return nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, status, delivery_price, is_payment, comment, promo_code_id,
			promo_terms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var terms []byte
	if order.PromoCode != nil {
		data, err := json.Marshal(order.PromoCode)
		if err != nil {
			return fmt.Errorf("failed to encode promo terms: %w", err)
		}
		terms = data
	}

	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.Status, order.DeliveryPrice, order.IsPayment, order.Comment,
		order.PromoCodeID, terms, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreatePositions inserts order positions within the provided transaction.
func (r *orderRepository) CreatePositions(ctx context.Context, tx pgx.Tx, positions []model.OrderPosition) error {
	if len(positions) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_positions (id, order_id, item_id, name, price, discount, discount_price, count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	batch := &pgx.Batch{}
	for _, p := range positions {
		batch.Queue(query, p.ID, p.OrderID, p.ItemID, p.Name, p.Price, p.Discount, p.DiscountPrice, p.Count)
	}

	if err := execBatch(ctx, tx, batch); err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", positions[0].OrderID.String()).
			Msg("failed to create order positions")
		return fmt.Errorf("failed to create order position: %w", err)
	}

	r.logger.Debug().
		Int("count", len(positions)).
		Msg("order positions created successfully")

	return nil
}

// CreateDelivery inserts the delivery record within the provided transaction.
func (r *orderRepository) CreateDelivery(ctx context.Context, tx pgx.Tx, d *model.Delivery) error {
	query := `
		INSERT INTO deliveries (id, order_id, type, address, phone, price)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := tx.Exec(ctx, query, d.ID, d.OrderID, d.Type, d.Address, d.Phone, d.Price); err != nil {
		r.logger.Error().Err(err).Str("order_id", d.OrderID.String()).Msg("failed to create delivery")
		return fmt.Errorf("failed to create delivery: %w", err)
	}

	return nil
}

// GetByID retrieves a live order with positions, delivery, promo code and transactions.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND deleted_at IS NULL`

	var order model.Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	positions, err := r.positions(ctx, r.pool, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	order.Positions = positions[id]

	if order.Delivery, err = r.delivery(ctx, id); err != nil {
		return nil, err
	}

	if order.PromoCode == nil && order.PromoCodeID != nil {
		promo, err := getPromoCode(ctx, r.pool, `id = $1`, *order.PromoCodeID, true)
		if err != nil {
			r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order promo code")
			return nil, fmt.Errorf("failed to query order promo code: %w", err)
		}
		order.PromoCode = promo
	}

	txns, err := listTransactions(ctx, r.pool, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order transactions")
		return nil, fmt.Errorf("failed to query order transactions: %w", err)
	}
	order.Transactions = txns

	return &order, nil
}

// GetForUpdate locks the order row and loads its positions and promo code.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`

	var order model.Order
	if err := scanOrder(tx.QueryRow(ctx, query, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	positions, err := r.positions(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	order.Positions = positions[id]

	if order.PromoCode == nil && order.PromoCodeID != nil {
		promo, err := getPromoCode(ctx, tx, `id = $1`, *order.PromoCodeID, true)
		if err != nil {
			return nil, fmt.Errorf("failed to query order promo code: %w", err)
		}
		order.PromoCode = promo
	}

	return &order, nil
}

// List retrieves live orders with their positions, newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE deleted_at IS NULL
			AND ($1::uuid IS NULL OR user_id = $1)
			AND ($2::text IS NULL OR status = $2)
			AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC, id
		LIMIT $4 OFFSET $5`

	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.Status, filter.CreatedBefore, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uuid.UUID, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	positions, err := r.positions(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Positions = positions[orders[i].ID]
	}

	return orders, nil
}

// UpdateStatus sets the status of an order within the transaction.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	if _, err := tx.Exec(ctx, query, id, status); err != nil {
		r.logger.Error().Err(err).
			Str("order_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}

// MarkPaid records a confirmed payment and moves the order to NEW.
func (r *orderRepository) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE orders SET status = $2, is_payment = TRUE, updated_at = NOW() WHERE id = $1`

	if _, err := tx.Exec(ctx, query, id, model.StatusNew); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order paid")
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	return nil
}

// SoftDelete marks an order as deleted.
func (r *orderRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE orders SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return false, fmt.Errorf("failed to delete order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SetReview stores a customer grade for an order position.
func (r *orderRepository) SetReview(ctx context.Context, orderID, positionID uuid.UUID, grade int, review *string) (bool, error) {
	query := `UPDATE order_positions SET grade = $3, review = $4 WHERE id = $2 AND order_id = $1`

	tag, err := r.pool.Exec(ctx, query, orderID, positionID, grade, review)
	if err != nil {
		r.logger.Error().Err(err).Str("position_id", positionID.String()).Msg("failed to save review")
		return false, fmt.Errorf("failed to save review: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// positions loads the positions of the given orders keyed by order ID.
func (r *orderRepository) positions(ctx context.Context, q DBTX, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderPosition, error) {
	query := `
		SELECT id, order_id, item_id, name, price, discount, discount_price, count, grade, review
		FROM order_positions
		WHERE order_id = ANY($1)
		ORDER BY order_id, name, id`

	rows, err := q.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order positions")
		return nil, fmt.Errorf("failed to query order positions: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]model.OrderPosition, len(orderIDs))
	for rows.Next() {
		var p model.OrderPosition
		err := rows.Scan(&p.ID, &p.OrderID, &p.ItemID, &p.Name, &p.Price, &p.Discount,
			&p.DiscountPrice, &p.Count, &p.Grade, &p.Review)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order position row")
			return nil, fmt.Errorf("failed to scan order position: %w", err)
		}
		result[p.OrderID] = append(result[p.OrderID], p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order position rows")
		return nil, fmt.Errorf("error iterating order positions: %w", err)
	}

	return result, nil
}

func (r *orderRepository) delivery(ctx context.Context, orderID uuid.UUID) (*model.Delivery, error) {
	query := `SELECT id, order_id, type, address, phone, price FROM deliveries WHERE order_id = $1`

	var d model.Delivery
	err := r.pool.QueryRow(ctx, query, orderID).Scan(&d.ID, &d.OrderID, &d.Type, &d.Address, &d.Phone, &d.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query delivery")
		return nil, fmt.Errorf("failed to query delivery: %w", err)
	}

	return &d, nil
}
