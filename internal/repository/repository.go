package repository

import (
	"context"
	"time"

	"jewelry-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Reads that find nothing return nil without an error; callers decide
// whether absence is a failure.

// ItemRepository defines the interface for catalogue item data access.
type ItemRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// List retrieves items with pagination support.
	List(ctx context.Context, filter model.ItemFilter) ([]model.Item, error)

	// GetByID retrieves a single item by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Item, error)

	// GetByIDs retrieves multiple items by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Item, error)

	// ValidateItemsExist returns ErrItemNotFound unless every ID exists.
	ValidateItemsExist(ctx context.Context, ids []uuid.UUID) error

	// Create inserts a new item.
	Create(ctx context.Context, item *model.Item) error

	// Update overwrites the editable fields of an item.
	Update(ctx context.Context, item *model.Item) (bool, error)

	// SoftDelete marks an item as deleted.
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)

	// SchedulePublication hides the item until publishAt.
	SchedulePublication(ctx context.Context, id uuid.UUID, publishAt time.Time) (bool, error)

	// ListDueForPublication returns hidden items whose publication time has passed.
	ListDueForPublication(ctx context.Context, now time.Time, limit int) ([]model.Item, error)

	// MarkPublished makes the given items visible.
	MarkPublished(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error

	// LockByIDs selects items for update within the transaction.
	LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Item, error)

	// AdjustStock adds delta to each item's count within the transaction.
	AdjustStock(ctx context.Context, tx pgx.Tx, deltas map[uuid.UUID]int) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreatePositions inserts order positions within the provided transaction.
	CreatePositions(ctx context.Context, tx pgx.Tx, positions []model.OrderPosition) error

	// CreateDelivery inserts the delivery record within the provided transaction.
	CreateDelivery(ctx context.Context, tx pgx.Tx, delivery *model.Delivery) error

	// GetByID retrieves an order with positions, delivery, promo code and transactions.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetForUpdate locks the order row and loads its positions.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// List retrieves orders with their positions.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// UpdateStatus sets the status of an order within the transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error

	// MarkPaid records a confirmed payment and moves the order to NEW.
	MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// SoftDelete marks an order as deleted.
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)

	// SetReview stores a customer grade for an order position.
	SetReview(ctx context.Context, orderID, positionID uuid.UUID, grade int, review *string) (bool, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// ListByUser retrieves the user's cart with item details.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// ListByUserTx locks and retrieves the user's cart within the transaction.
	ListByUserTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartItem, error)

	// Add inserts a row or increases the count of an existing row for the same item.
	Add(ctx context.Context, item *model.CartItem) (*model.CartItem, error)

	// UpdateCount sets the count of one of the user's rows.
	UpdateCount(ctx context.Context, id, userID uuid.UUID, count int) (bool, error)

	// Delete removes one of the user's rows.
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)

	// CreateItems inserts cart rows within the transaction.
	CreateItems(ctx context.Context, tx pgx.Tx, items []model.CartItem) error

	// UpdateCounts rewrites the counts of existing rows within the transaction.
	UpdateCounts(ctx context.Context, tx pgx.Tx, items []model.CartItem) error

	// DeleteItems removes rows within the transaction.
	DeleteItems(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error
}

// PromoCodeRepository defines the interface for promo code data access.
type PromoCodeRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// List retrieves promo codes with pagination.
	List(ctx context.Context, limit, offset int) ([]model.PromoCode, error)

	// GetByID retrieves a promo code by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error)

	// GetByName retrieves a live promo code by its exact, case-sensitive name.
	GetByName(ctx context.Context, name string) (*model.PromoCode, error)

	// Create inserts a promo code. Returns ErrDuplicate if the name is taken.
	Create(ctx context.Context, promo *model.PromoCode) error

	// Update overwrites a promo code.
	Update(ctx context.Context, promo *model.PromoCode) (bool, error)

	// SoftDelete marks a promo code as deleted.
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)

	// Upsert inserts or replaces promo codes by name within the transaction.
	Upsert(ctx context.Context, tx pgx.Tx, promos []model.PromoCode) error
}

// TransactionRepository defines the interface for acquiring transaction data access.
type TransactionRepository interface {
	// Create inserts a transaction. Returns ErrDuplicate on idempotency key collision.
	Create(ctx context.Context, txn *model.AcquiringTransaction) error

	// GetByIdempotencyKey retrieves a transaction by its idempotency key.
	GetByIdempotencyKey(ctx context.Context, key string) (*model.AcquiringTransaction, error)

	// GetByExternalIDForUpdate locks a transaction by gateway payment id.
	GetByExternalIDForUpdate(ctx context.Context, tx pgx.Tx, externalID string) (*model.AcquiringTransaction, error)

	// ListByOrder retrieves all payment attempts of an order.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.AcquiringTransaction, error)

	// AttachPayment stores the gateway payment id and confirmation URL.
	AttachPayment(ctx context.Context, id uuid.UUID, externalID, confirmationURL string) error

	// UpdateStatus changes the status and reason of a transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.TransactionStatus, reason *string) error

	// Reject marks a transaction rejected outside of a transaction.
	Reject(ctx context.Context, id uuid.UUID, reason string) error
}

// AdStatsRepository defines the interface for ad statistics storage.
type AdStatsRepository interface {
	// SaveReport upserts campaigns and their daily statistics atomically.
	SaveReport(ctx context.Context, campaigns []model.AdCampaign, stats []model.AdStatistic) error
}
