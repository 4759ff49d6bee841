package service

import (
	"context"
	"time"

	"jewelry-store/internal/acquiring"
	"jewelry-store/internal/model"
	"jewelry-store/internal/promocode"

	"github.com/google/uuid"
)

// ItemService defines operations for catalogue management.
type ItemService interface {
	// List retrieves items with pagination. Unpublished items are only
	// listed when filter.PublishedOnly is false.
	List(ctx context.Context, filter model.ItemFilter) ([]model.Item, error)

	// GetByID retrieves an item. Hidden items are reported as not found
	// when publishedOnly is set.
	GetByID(ctx context.Context, id uuid.UUID, publishedOnly bool) (*model.Item, error)

	// Create adds an item to the catalogue.
	Create(ctx context.Context, req *model.ItemRequest) (*model.Item, error)

	// Update overwrites an item's editable fields.
	Update(ctx context.Context, id uuid.UUID, req *model.ItemRequest) (*model.Item, error)

	// Delete soft-deletes an item.
	Delete(ctx context.Context, id uuid.UUID) error

	// SchedulePublication hides an item until the given time.
	SchedulePublication(ctx context.Context, id uuid.UUID, req *model.PublicationRequest) (*model.Item, error)
}

// CartService defines operations on a user's cart.
type CartService interface {
	// List returns the user's cart with item details.
	List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// Add puts an item in the cart, increasing the count of an existing row.
	Add(ctx context.Context, userID uuid.UUID, req *model.CartItemRequest) (*model.CartItem, error)

	// UpdateCount sets the count of a cart row.
	UpdateCount(ctx context.Context, userID, id uuid.UUID, count int) error

	// Remove deletes a cart row.
	Remove(ctx context.Context, userID, id uuid.UUID) error

	// Merge folds the pre-login local cart into the stored cart and returns the result.
	Merge(ctx context.Context, userID uuid.UUID, req *model.CartMergeRequest) ([]model.CartItem, error)
}

// PromoCodeService defines operations for promo code management.
type PromoCodeService interface {
	// List retrieves promo codes with pagination.
	List(ctx context.Context, limit, offset int) ([]model.PromoCode, error)

	// GetByID retrieves a promo code.
	GetByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error)

	// Create adds a promo code.
	Create(ctx context.Context, req *model.PromoCodeRequest) (*model.PromoCode, error)

	// Update overwrites a promo code.
	Update(ctx context.Context, id uuid.UUID, req *model.PromoCodeRequest) (*model.PromoCode, error)

	// Delete soft-deletes a promo code.
	Delete(ctx context.Context, id uuid.UUID) error

	// Check validates a code and, for a known user, prices their cart with it.
	Check(ctx context.Context, name string, userID *uuid.UUID) (*model.PromoCheckResponse, error)

	// Import loads promo definitions from files and upserts them.
	Import(ctx context.Context, paths ...string) (promocode.ImportResult, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// Create turns the caller's cart into an order and starts its payment.
	Create(ctx context.Context, actor model.Actor, req *model.OrderRequest) (*model.OrderResponse, error)

	// Get retrieves an order visible to the actor.
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error)

	// List retrieves the actor's orders, or all orders for an admin.
	List(ctx context.Context, actor model.Actor, filter model.OrderFilter) ([]model.OrderResponse, error)

	// Transitions reports the manual status moves available for an order.
	Transitions(ctx context.Context, id uuid.UUID) (*model.Transitions, error)

	// UpdateStatus moves an order one step back or forward.
	UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, target model.OrderStatus) (*model.OrderResponse, error)

	// Cancel cancels an order, returning its positions to the owner's cart.
	Cancel(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error)

	// AutoCancel cancels an order whose payment window expired, if it is still unpaid.
	AutoCancel(ctx context.Context, id uuid.UUID) error

	// CancelStaleUnpaid auto-cancels unpaid orders created before now - age.
	CancelStaleUnpaid(ctx context.Context, age time.Duration) (int, error)

	// Delete soft-deletes an order.
	Delete(ctx context.Context, id uuid.UUID) error

	// Review grades a position of a completed order.
	Review(ctx context.Context, actor model.Actor, orderID, positionID uuid.UUID, req *model.ReviewRequest) error
}

// AcquiringService defines payment operations.
type AcquiringService interface {
	// StartPayment registers a payment attempt for an unpaid order.
	StartPayment(ctx context.Context, order *model.Order) (*model.PaymentResponse, error)

	// Pay starts or resumes payment of the actor's order.
	Pay(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.PaymentResponse, error)

	// HandleWebhook applies a gateway notification.
	HandleWebhook(ctx context.Context, n *acquiring.Notification) error
}

// PublicationService publishes items whose scheduled time has come.
type PublicationService interface {
	// PublishDue publishes due items and announces them. Returns how many were published.
	PublishDue(ctx context.Context) (int, error)
}

// AdStatsService ingests ad-platform statistics.
type AdStatsService interface {
	// Ingest stores campaigns and daily statistics for [from, to].
	Ingest(ctx context.Context, from, to time.Time) (AdStatsResult, error)
}

// AdStatsResult summarizes an ingestion run.
type AdStatsResult struct {
	Campaigns  int
	Statistics int
}
