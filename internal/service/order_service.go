package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jewelry-store/internal/cart"
	"jewelry-store/internal/config"
	"jewelry-store/internal/lifecycle"
	"jewelry-store/internal/metrics"
	"jewelry-store/internal/model"
	"jewelry-store/internal/notify"
	"jewelry-store/internal/paymentwatch"
	"jewelry-store/internal/pricing"
	"jewelry-store/internal/promocode"
	"jewelry-store/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Reason recorded when an order is canceled because its payment window closed.
const reasonPaymentTimeout = "payment timeout"

// OrderDeps groups the collaborators of the order service.
type OrderDeps struct {
	Orders    repository.OrderRepository
	Items     repository.ItemRepository
	Carts     repository.CartRepository
	Validator promocode.Validator
	Acquiring AcquiringService
	Tracker   paymentwatch.Tracker
	Notifier  notify.Notifier
	Metrics   *metrics.Metrics
}

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	itemRepo  repository.ItemRepository
	cartRepo  repository.CartRepository
	validator promocode.Validator
	acquiring AcquiringService
	tracker   paymentwatch.Tracker
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	shop      config.ShopConfig
	logger    zerolog.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(deps OrderDeps, shop config.ShopConfig, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: deps.Orders,
		itemRepo:  deps.Items,
		cartRepo:  deps.Carts,
		validator: deps.Validator,
		acquiring: deps.Acquiring,
		tracker:   deps.Tracker,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		shop:      shop,
		logger:    logger.With().Str("service", "order").Logger(),
		now:       time.Now,
	}
}

func (s *orderService) pricingOptions() pricing.Options {
	return pricing.Options{FreeDeliveryThreshold: s.shop.FreeDeliveryThreshold}
}

func (s *orderService) deliveryPrice(t model.DeliveryType) decimal.Decimal {
	switch t {
	case model.DeliveryCourier:
		return s.shop.CourierPrice
	case model.DeliveryPost:
		return s.shop.PostPrice
	default:
		return s.shop.PickupPrice
	}
}

// Create turns the caller's cart into an order. Stock, positions, delivery
// and cart cleanup are written in one transaction; payment starts after commit.
func (s *orderService) Create(ctx context.Context, actor model.Actor, req *model.OrderRequest) (resp *model.OrderResponse, err error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()

	var promo *model.PromoCode
	if req.PromoCode != nil && *req.PromoCode != "" {
		promo, err = s.validator.Validate(ctx, *req.PromoCode, now)
		if err != nil {
			s.logger.Warn().
				Str("promo_code", *req.PromoCode).
				Err(err).
				Msg("invalid promo code")
			return nil, err
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	rows, err := s.cartRepo.ListByUserTx(ctx, tx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	rows = selectCartRows(rows, req.CartItemIDs)
	if len(rows) == 0 {
		err = model.ErrEmptyCart
		return nil, err
	}

	wanted := make(map[uuid.UUID]int, len(rows))
	itemIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if _, ok := wanted[row.ItemID]; !ok {
			itemIDs = append(itemIDs, row.ItemID)
		}
		wanted[row.ItemID] += row.Count
	}

	items, err := s.itemRepo.LockByIDs(ctx, tx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock items: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	order := &model.Order{
		ID:        uuid.New(),
		UserID:    actor.UserID,
		Status:    model.StatusNotPaid,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	positions := make([]model.OrderPosition, 0, len(itemIDs))
	stock := make(map[uuid.UUID]int, len(itemIDs))
	for _, id := range itemIDs {
		item, ok := byID[id]
		if !ok || !item.IsPublished {
			err = model.ErrItemNotFound.With(map[string]string{"itemId": id.String()})
			return nil, err
		}
		if item.Count < wanted[id] {
			s.logger.Warn().
				Str("item_id", id.String()).
				Int("requested", wanted[id]).
				Int("available", item.Count).
				Msg("insufficient stock")
			err = model.ErrOutOfStock.With(map[string]string{"article": item.Article, "available": fmt.Sprint(item.Count)})
			return nil, err
		}
		positions = append(positions, snapshotPosition(order.ID, item, wanted[id]))
		stock[id] = -wanted[id]
	}

	if promo != nil {
		if err = promocode.CheckApplicable(promo, itemIDs); err != nil {
			return nil, err
		}
		order.PromoCodeID = &promo.ID
		order.PromoCode = promo
	}

	breakdown := pricing.Calculate(positions, s.deliveryPrice(req.DeliveryType), promo, s.pricingOptions())
	if _, err = pricing.BuildReceipt(breakdown); err != nil {
		return nil, err
	}
	order.DeliveryPrice = breakdown.Summary.DeliveryPrice
	order.Positions = positions
	order.Delivery = &model.Delivery{
		ID:      uuid.New(),
		OrderID: order.ID,
		Type:    req.DeliveryType,
		Address: strings.TrimSpace(req.Address),
		Phone:   strings.TrimSpace(req.Phone),
		Price:   breakdown.Summary.DeliveryPrice,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if err = s.orderRepo.CreatePositions(ctx, tx, positions); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("position_count", len(positions)).
			Msg("failed to create order positions")
		return nil, fmt.Errorf("failed to create order positions: %w", err)
	}
	if err = s.orderRepo.CreateDelivery(ctx, tx, order.Delivery); err != nil {
		return nil, fmt.Errorf("failed to create delivery: %w", err)
	}

	rowIDs := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		rowIDs[i] = row.ID
	}
	if err = s.cartRepo.DeleteItems(ctx, tx, rowIDs); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	if err = s.itemRepo.AdjustStock(ctx, tx, stock); err != nil {
		return nil, fmt.Errorf("failed to reserve stock: %w", err)
	}

	// A fully discounted order has nothing to charge.
	zeroTotal := !breakdown.Summary.Total.IsPositive()
	if zeroTotal {
		if err = s.orderRepo.MarkPaid(ctx, tx, order.ID); err != nil {
			return nil, fmt.Errorf("failed to mark order paid: %w", err)
		}
		order.Status = model.StatusNew
		order.IsPayment = true
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("position_count", len(positions)).
		Str("total", breakdown.Summary.Total.StringFixed(2)).
		Msg("order created successfully")
	s.metrics.OrderEvent("created")

	resp = &model.OrderResponse{Order: *order, Summary: breakdown.Summary}

	if !zeroTotal {
		if watchErr := s.tracker.Watch(ctx, order.ID, s.shop.PaymentTimeout); watchErr != nil {
			s.logger.Error().Err(watchErr).Str("order_id", order.ID.String()).Msg("failed to start payment timer")
		}

		payment, payErr := s.acquiring.StartPayment(ctx, order)
		if payErr != nil {
			s.logger.Error().Err(payErr).Str("order_id", order.ID.String()).Msg("failed to start payment")
		} else {
			resp.ConfirmationURL = payment.ConfirmationURL
		}
	}

	s.notify(ctx, notify.Event{
		Type:    notify.EventOrderCreated,
		OrderID: order.ID,
		Status:  string(order.Status),
		Total:   breakdown.Summary.Total,
	})

	return resp, nil
}

// Get retrieves an order visible to the actor.
func (s *orderService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.response(order), nil
}

// List retrieves the actor's orders, or all orders for an admin.
func (s *orderService) List(ctx context.Context, actor model.Actor, filter model.OrderFilter) ([]model.OrderResponse, error) {
	if !actor.IsAdmin {
		owner := actor.UserID
		filter.UserID = &owner
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Unknown order status")
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	out := make([]model.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, *s.response(&orders[i]))
	}
	return out, nil
}

// Transitions reports the manual status moves available for an order.
func (s *orderService) Transitions(ctx context.Context, id uuid.UUID) (*model.Transitions, error) {
	order, err := s.load(ctx, model.SystemActor, id)
	if err != nil {
		return nil, err
	}
	t := lifecycle.TransitionsOf(order.Status)
	return &t, nil
}

// UpdateStatus moves an order one step back or forward. Canceling goes
// through Cancel so the cart and stock are restored.
func (s *orderService) UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, target model.OrderStatus) (resp *model.OrderResponse, err error) {
	if !actor.IsAdmin {
		return nil, model.ErrForbidden
	}
	if !target.Valid() {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Unknown order status")
	}
	if target == model.StatusCanceled {
		return s.Cancel(ctx, actor, id)
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if err = lifecycle.ValidateTransition(order.Status, target); err != nil {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(order.Status)).
			Str("to", string(target)).
			Msg("status transition rejected")
		return nil, err
	}

	if err = s.orderRepo.UpdateStatus(ctx, tx, id, target); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(order.Status)).
		Str("to", string(target)).
		Msg("order status updated")
	s.metrics.OrderEvent("status_" + string(target))

	updated, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	s.notifyOrder(ctx, updated, notify.EventStatusChanged, "")
	return s.response(updated), nil
}

// Cancel cancels an order and returns its positions to the owner's cart.
func (s *orderService) Cancel(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error) {
	canceled, err := s.cancel(ctx, id, func(order *model.Order) (bool, error) {
		if !actor.IsAdmin && order.UserID != actor.UserID {
			return false, model.ErrOrderNotFound
		}
		if err := lifecycle.CanCancel(order, actor); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if canceled == nil {
		return nil, model.ErrOrderNotFound
	}

	reason := ""
	if actor.IsAdmin && actor.UserID != canceled.UserID {
		reason = "canceled by shop"
	}
	s.notifyOrder(ctx, canceled, notify.EventOrderCanceled, reason)
	return s.response(canceled), nil
}

// AutoCancel cancels an order whose payment window expired. Orders that were
// paid, canceled or deleted in the meantime are left alone.
func (s *orderService) AutoCancel(ctx context.Context, id uuid.UUID) error {
	_, err := s.autoCancel(ctx, id)
	return err
}

func (s *orderService) autoCancel(ctx context.Context, id uuid.UUID) (bool, error) {
	canceled, err := s.cancel(ctx, id, func(order *model.Order) (bool, error) {
		return order.Status == model.StatusNotPaid && !order.IsPayment, nil
	})
	if err != nil {
		return false, err
	}
	if canceled == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("payment timer expired for settled order")
		return false, nil
	}

	s.logger.Info().Str("order_id", id.String()).Msg("unpaid order canceled")
	s.metrics.OrderEvent("auto_canceled")
	s.notifyOrder(ctx, canceled, notify.EventOrderCanceled, reasonPaymentTimeout)
	return true, nil
}

// CancelStaleUnpaid auto-cancels unpaid orders older than age. It covers
// expiry events missed while no listener was running.
func (s *orderService) CancelStaleUnpaid(ctx context.Context, age time.Duration) (int, error) {
	status := model.StatusNotPaid
	before := s.now().Add(-age)

	orders, err := s.orderRepo.List(ctx, model.OrderFilter{
		Status:        &status,
		CreatedBefore: &before,
		Limit:         100,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list unpaid orders: %w", err)
	}

	canceled := 0
	for _, o := range orders {
		if err := ctx.Err(); err != nil {
			return canceled, err
		}
		ok, err := s.autoCancel(ctx, o.ID)
		if err != nil {
			s.logger.Error().Err(err).Str("order_id", o.ID.String()).Msg("failed to cancel stale order")
			continue
		}
		if ok {
			canceled++
		}
	}

	if canceled > 0 {
		s.logger.Info().Int("count", canceled).Msg("stale unpaid orders canceled")
	}
	return canceled, nil
}

// cancel locks the order, asks allow whether to proceed, then cancels it,
// restores the owner's cart and releases stock in one transaction. It
// returns nil when the order is missing or allow declined.
func (s *orderService) cancel(ctx context.Context, id uuid.UUID, allow func(*model.Order) (bool, error)) (canceled *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, nil
	}

	ok, err := allow(order)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", id.String()).Str("status", string(order.Status)).Msg("cancel rejected")
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	if err := s.orderRepo.UpdateStatus(ctx, tx, id, model.StatusCanceled); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	if err := s.restoreCart(ctx, tx, order); err != nil {
		return nil, err
	}

	release := make(map[uuid.UUID]int, len(order.Positions))
	for _, p := range order.Positions {
		release[p.ItemID] += p.Count
	}
	if err := s.itemRepo.AdjustStock(ctx, tx, release); err != nil {
		return nil, fmt.Errorf("failed to release stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	committed = true

	if err := s.tracker.Clear(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("failed to clear payment timer")
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("previous_status", string(order.Status)).
		Msg("order canceled")
	s.metrics.OrderEvent("canceled")

	order.Status = model.StatusCanceled
	return order, nil
}

func (s *orderService) restoreCart(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	current, err := s.cartRepo.ListByUserTx(ctx, tx, order.UserID)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	plan := cart.RestoreFromPositions(order.UserID, order.Positions, current, s.now().UTC())
	if err := s.cartRepo.CreateItems(ctx, tx, plan.Create); err != nil {
		return fmt.Errorf("failed to restore cart: %w", err)
	}
	if err := s.cartRepo.UpdateCounts(ctx, tx, plan.Update); err != nil {
		return fmt.Errorf("failed to restore cart: %w", err)
	}
	return nil
}

// Delete soft-deletes an order.
func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.orderRepo.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if !ok {
		return model.ErrOrderNotFound
	}

	if err := s.tracker.Clear(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("failed to clear payment timer")
	}
	s.logger.Info().Str("order_id", id.String()).Msg("order deleted")
	return nil
}

// Review grades a position of the actor's completed order.
func (s *orderService) Review(ctx context.Context, actor model.Actor, orderID, positionID uuid.UUID, req *model.ReviewRequest) error {
	if req == nil || req.Grade < 1 || req.Grade > 5 {
		return model.ErrInvalidGrade
	}

	order, err := s.load(ctx, actor, orderID)
	if err != nil {
		return err
	}
	if order.UserID != actor.UserID {
		return model.ErrForbidden
	}
	if order.Status != model.StatusCompleted {
		return model.ErrReviewNotAllowed
	}

	ok, err := s.orderRepo.SetReview(ctx, orderID, positionID, req.Grade, req.Review)
	if err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	if !ok {
		return model.ErrNotFound
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("position_id", positionID.String()).
		Int("grade", req.Grade).
		Msg("position reviewed")
	return nil
}

// load fetches an order and hides other users' orders from non-admins.
func (s *orderService) load(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || (!actor.IsAdmin && order.UserID != actor.UserID) {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) response(order *model.Order) *model.OrderResponse {
	resp := &model.OrderResponse{
		Order:   *order,
		Summary: pricing.Summarize(order, s.pricingOptions()),
	}
	if order.Status == model.StatusNotPaid {
		for i := len(order.Transactions) - 1; i >= 0; i-- {
			t := order.Transactions[i]
			if t.Status == model.TransactionCreate && t.ConfirmationURL != nil {
				resp.ConfirmationURL = *t.ConfirmationURL
				break
			}
		}
	}
	return resp
}

func (s *orderService) notifyOrder(ctx context.Context, order *model.Order, event, reason string) {
	e := notify.Event{
		Type:    event,
		OrderID: order.ID,
		Status:  string(order.Status),
		Total:   pricing.Summarize(order, s.pricingOptions()).Total,
		Reason:  reason,
	}
	if order.Delivery != nil {
		e.Phone = order.Delivery.Phone
	} else if full, err := s.orderRepo.GetByID(ctx, order.ID); err == nil && full != nil && full.Delivery != nil {
		e.Phone = full.Delivery.Phone
	}
	s.notify(ctx, e)
}

// notify queues notifications; failures never fail the operation.
func (s *orderService) notify(ctx context.Context, e notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, e); err != nil {
		s.logger.Error().Err(err).Str("order_id", e.OrderID.String()).Str("event", e.Type).Msg("failed to queue notification")
	}
}

// selectCartRows keeps the requested rows, or all rows when none are requested.
func selectCartRows(rows []model.CartItem, ids []uuid.UUID) []model.CartItem {
	if len(ids) == 0 {
		return rows
	}
	keep := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	selected := make([]model.CartItem, 0, len(ids))
	for _, row := range rows {
		if _, ok := keep[row.ID]; ok {
			selected = append(selected, row)
		}
	}
	return selected
}

// validateOrderRequest validates the order request.
func validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "Request body is required")
	}

	switch req.DeliveryType {
	case model.DeliveryCourier, model.DeliveryPost:
		if strings.TrimSpace(req.Address) == "" {
			return model.NewDomainError(model.ErrCodeMissingField, "Delivery address is required")
		}
	case model.DeliveryPickup:
	default:
		return model.NewDomainError(model.ErrCodeValidation, "Unknown delivery type")
	}

	if strings.TrimSpace(req.Phone) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Phone is required")
	}

	return nil
}
