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

const transactionColumns = `id, order_id, external_id, idempotency_key, amount, status, reason,
	confirmation_url, created_at, updated_at`

// transactionRepository implements the TransactionRepository interface using PostgreSQL.
type transactionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewTransactionRepository creates a new PostgreSQL-backed acquiring transaction repository.
func NewTransactionRepository(pool *pgxpool.Pool, logger zerolog.Logger) TransactionRepository {
	return &transactionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "transaction").Logger(),
	}
}

func scanTransaction(row pgx.Row, t *model.AcquiringTransaction) error {
	return row.Scan(
		&t.ID, &t.OrderID, &t.ExternalID, &t.IdempotencyKey, &t.Amount, &t.Status, &t.Reason,
		&t.ConfirmationURL, &t.CreatedAt, &t.UpdatedAt,
	)
}

func getTransaction(ctx context.Context, q DBTX, query string, arg any) (*model.AcquiringTransaction, error) {
	var t model.AcquiringTransaction
	if err := scanTransaction(q.QueryRow(ctx, query, arg), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// listTransactions loads the payment attempts of an order, oldest first.
func listTransactions(ctx context.Context, q DBTX, orderID uuid.UUID) ([]model.AcquiringTransaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM acquiring_transactions
		WHERE order_id = $1
		ORDER BY created_at, id`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []model.AcquiringTransaction{}
	for rows.Next() {
		var t model.AcquiringTransaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}

	return txns, rows.Err()
}

// Create inserts a transaction. Returns ErrDuplicate on idempotency key collision.
func (r *transactionRepository) Create(ctx context.Context, t *model.AcquiringTransaction) error {
	query := `
		INSERT INTO acquiring_transactions (id, order_id, idempotency_key, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query, t.ID, t.OrderID, t.IdempotencyKey, t.Amount, t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Debug().Str("idempotency_key", t.IdempotencyKey).Msg("transaction already exists")
			return ErrDuplicate
		}
		r.logger.Error().Err(err).Str("order_id", t.OrderID.String()).Msg("failed to create transaction")
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByIdempotencyKey retrieves a transaction by its idempotency key.
func (r *transactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.AcquiringTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM acquiring_transactions WHERE idempotency_key = $1`

	t, err := getTransaction(ctx, r.pool, query, key)
	if err != nil {
		r.logger.Error().Err(err).Str("idempotency_key", key).Msg("failed to query transaction")
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return t, nil
}

// GetByExternalIDForUpdate locks a transaction by gateway payment id.
func (r *transactionRepository) GetByExternalIDForUpdate(ctx context.Context, tx pgx.Tx, externalID string) (*model.AcquiringTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM acquiring_transactions WHERE external_id = $1 FOR UPDATE`

	t, err := getTransaction(ctx, tx, query, externalID)
	if err != nil {
		r.logger.Error().Err(err).Str("external_id", externalID).Msg("failed to lock transaction")
		return nil, fmt.Errorf("failed to lock transaction: %w", err)
	}
	return t, nil
}

// ListByOrder retrieves all payment attempts of an order.
func (r *transactionRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.AcquiringTransaction, error) {
	txns, err := listTransactions(ctx, r.pool, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query transactions")
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return txns, nil
}

// AttachPayment stores the gateway payment id and confirmation URL.
func (r *transactionRepository) AttachPayment(ctx context.Context, id uuid.UUID, externalID, confirmationURL string) error {
	query := `
		UPDATE acquiring_transactions
		SET external_id = $2, confirmation_url = $3, updated_at = NOW()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, externalID, confirmationURL); err != nil {
		r.logger.Error().Err(err).Str("transaction_id", id.String()).Msg("failed to attach payment")
		return fmt.Errorf("failed to attach payment: %w", err)
	}

	return nil
}

// UpdateStatus changes the status and reason of a transaction.
func (r *transactionRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.TransactionStatus, reason *string) error {
	query := `UPDATE acquiring_transactions SET status = $2, reason = $3, updated_at = NOW() WHERE id = $1`

	if _, err := tx.Exec(ctx, query, id, status, reason); err != nil {
		r.logger.Error().Err(err).
			Str("transaction_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update transaction status")
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	return nil
}

// Reject marks a transaction rejected outside of a transaction.
func (r *transactionRepository) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	query := `UPDATE acquiring_transactions SET status = $2, reason = $3, updated_at = NOW() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, model.TransactionRejected, reason); err != nil {
		r.logger.Error().Err(err).Str("transaction_id", id.String()).Msg("failed to reject transaction")
		return fmt.Errorf("failed to reject transaction: %w", err)
	}

	return nil
}
