package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jewelry-store/internal/acquiring"
	"jewelry-store/internal/config"
	"jewelry-store/internal/metrics"
	"jewelry-store/internal/model"
	"jewelry-store/internal/notify"
	"jewelry-store/internal/paymentwatch"
	"jewelry-store/internal/pricing"
	"jewelry-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AcquiringDeps groups the collaborators of the acquiring service.
type AcquiringDeps struct {
	Orders       repository.OrderRepository
	Transactions repository.TransactionRepository
	Gateway      acquiring.Gateway
	Tracker      paymentwatch.Tracker
	Notifier     notify.Notifier
	Metrics      *metrics.Metrics
}

// acquiringService implements AcquiringService.
type acquiringService struct {
	orderRepo repository.OrderRepository
	txnRepo   repository.TransactionRepository
	gateway   acquiring.Gateway
	tracker   paymentwatch.Tracker
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	shop      config.ShopConfig
	returnURL string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAcquiringService creates a new acquiring service.
func NewAcquiringService(deps AcquiringDeps, shop config.ShopConfig, returnURL string, logger zerolog.Logger) AcquiringService {
	return &acquiringService{
		orderRepo: deps.Orders,
		txnRepo:   deps.Transactions,
		gateway:   deps.Gateway,
		tracker:   deps.Tracker,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		shop:      shop,
		returnURL: returnURL,
		logger:    logger.With().Str("service", "acquiring").Logger(),
		now:       time.Now,
	}
}

// idempotencyKey identifies one payment attempt of an order.
func idempotencyKey(orderID uuid.UUID, attempt int) string {
	return fmt.Sprintf("%s:%d", orderID, attempt)
}

// Pay starts or resumes payment of the actor's order.
func (s *acquiringService) Pay(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.PaymentResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || (!actor.IsAdmin && order.UserID != actor.UserID) {
		return nil, model.ErrOrderNotFound
	}
	return s.StartPayment(ctx, order)
}

// StartPayment registers a payment attempt for an unpaid order. A pending
// attempt is reused; a new attempt gets the next idempotency key.
func (s *acquiringService) StartPayment(ctx context.Context, order *model.Order) (*model.PaymentResponse, error) {
	if order.Status != model.StatusNotPaid || order.IsPayment {
		return nil, model.ErrOrderNotPayable
	}

	breakdown := pricing.Calculate(order.Positions, order.DeliveryPrice, order.PromoCode,
		pricing.Options{FreeDeliveryThreshold: s.shop.FreeDeliveryThreshold})
	receipt, err := pricing.BuildReceipt(breakdown)
	if err != nil {
		return nil, err
	}
	if receipt.Total <= 0 {
		return nil, model.ErrOrderNotPayable
	}

	attempts, err := s.txnRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment attempts: %w", err)
	}

	var txn *model.AcquiringTransaction
	if n := len(attempts); n > 0 && attempts[n-1].Status == model.TransactionCreate {
		txn = &attempts[n-1]
	} else {
		now := s.now().UTC()
		txn = &model.AcquiringTransaction{
			ID:             uuid.New(),
			OrderID:        order.ID,
			IdempotencyKey: idempotencyKey(order.ID, n+1),
			Amount:         receipt.Total,
			Status:         model.TransactionCreate,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.txnRepo.Create(ctx, txn); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				return nil, fmt.Errorf("failed to create payment attempt: %w", err)
			}
			existing, getErr := s.txnRepo.GetByIdempotencyKey(ctx, txn.IdempotencyKey)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load payment attempt: %w", getErr)
			}
			if existing == nil || existing.Status != model.TransactionCreate {
				return nil, model.ErrOrderNotPayable
			}
			txn = existing
		}
	}

	if txn.ConfirmationURL != nil && *txn.ConfirmationURL != "" {
		s.logger.Debug().Str("order_id", order.ID.String()).Str("transaction_id", txn.ID.String()).Msg("reusing pending payment")
		return &model.PaymentResponse{TransactionID: txn.ID, ConfirmationURL: *txn.ConfirmationURL, Amount: txn.Amount}, nil
	}

	phone := ""
	if order.Delivery != nil {
		phone = order.Delivery.Phone
	}
	req := acquiring.NewPaymentRequest(order.ID, receipt, phone, s.returnURL)

	payment, err := s.gateway.CreatePayment(ctx, req, txn.IdempotencyKey)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("idempotency_key", txn.IdempotencyKey).
			Msg("gateway rejected payment")
		if rejErr := s.txnRepo.Reject(ctx, txn.ID, err.Error()); rejErr != nil {
			s.logger.Error().Err(rejErr).Str("transaction_id", txn.ID.String()).Msg("failed to reject transaction")
		}
		s.metrics.PaymentResult("error")
		return nil, model.ErrPaymentFailed
	}

	url := payment.ConfirmationURL()
	if err := s.txnRepo.AttachPayment(ctx, txn.ID, payment.ID, url); err != nil {
		return nil, fmt.Errorf("failed to store payment: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_id", payment.ID).
		Int64("amount", txn.Amount).
		Msg("payment started")
	s.metrics.PaymentResult("created")

	return &model.PaymentResponse{TransactionID: txn.ID, ConfirmationURL: url, Amount: txn.Amount}, nil
}

// HandleWebhook applies a gateway notification. Notifications for unknown
// or already settled payments change nothing.
func (s *acquiringService) HandleWebhook(ctx context.Context, n *acquiring.Notification) (err error) {
	if n == nil || n.Object.ID == "" {
		return nil
	}
	if n.Event != acquiring.EventPaymentSucceeded && n.Event != acquiring.EventPaymentCanceled {
		s.logger.Debug().Str("event", n.Event).Msg("ignoring gateway event")
		return nil
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to handle webhook: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	txn, err := s.txnRepo.GetByExternalIDForUpdate(ctx, tx, n.Object.ID)
	if err != nil {
		return fmt.Errorf("failed to load transaction: %w", err)
	}
	if txn == nil {
		s.logger.Warn().Str("payment_id", n.Object.ID).Str("event", n.Event).Msg("webhook for unknown payment")
		return nil
	}
	if txn.Status.Final() {
		s.logger.Debug().Str("payment_id", n.Object.ID).Str("status", string(txn.Status)).Msg("webhook for settled payment")
		return nil
	}

	var event notify.Event
	switch n.Event {
	case acquiring.EventPaymentSucceeded:
		if err := s.txnRepo.UpdateStatus(ctx, tx, txn.ID, model.TransactionPaid, nil); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		order, err := s.orderRepo.GetForUpdate(ctx, tx, txn.OrderID)
		if err != nil {
			return fmt.Errorf("failed to load order: %w", err)
		}
		if order != nil && order.Status == model.StatusNotPaid {
			if err := s.orderRepo.MarkPaid(ctx, tx, order.ID); err != nil {
				return fmt.Errorf("failed to mark order paid: %w", err)
			}
			event = notify.Event{Type: notify.EventOrderPaid, OrderID: order.ID}
		} else {
			s.logger.Warn().
				Str("order_id", txn.OrderID.String()).
				Str("payment_id", n.Object.ID).
				Msg("payment succeeded for an order that is no longer awaiting payment")
		}
		s.metrics.PaymentResult("succeeded")

	case acquiring.EventPaymentCanceled:
		reason := "canceled"
		if d := n.Object.CancellationDetails; d != nil && d.Reason != "" {
			reason = d.Reason
		}
		if err := s.txnRepo.UpdateStatus(ctx, tx, txn.ID, model.TransactionRejected, &reason); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		event = notify.Event{Type: notify.EventPaymentFailed, OrderID: txn.OrderID, Reason: reason}
		s.metrics.PaymentResult("canceled")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to handle webhook: %w", err)
	}
	committed = true

	s.logger.Info().
		Str("payment_id", n.Object.ID).
		Str("order_id", txn.OrderID.String()).
		Str("event", n.Event).
		Msg("webhook applied")

	if event.Type == notify.EventOrderPaid {
		s.metrics.OrderEvent("paid")
		if err := s.tracker.Clear(ctx, txn.OrderID); err != nil {
			s.logger.Warn().Err(err).Str("order_id", txn.OrderID.String()).Msg("failed to clear payment timer")
		}
	}
	if event.Type != "" {
		s.notify(ctx, event)
	}

	return nil
}

func (s *acquiringService) notify(ctx context.Context, e notify.Event) {
	if s.notifier == nil {
		return
	}
	order, err := s.orderRepo.GetByID(ctx, e.OrderID)
	if err == nil && order != nil {
		e.Status = string(order.Status)
		e.Total = pricing.Summarize(order, pricing.Options{FreeDeliveryThreshold: s.shop.FreeDeliveryThreshold}).Total
		if order.Delivery != nil {
			e.Phone = order.Delivery.Phone
		}
	}
	if err := s.notifier.Notify(ctx, e); err != nil {
		s.logger.Error().Err(err).Str("order_id", e.OrderID.String()).Str("event", e.Type).Msg("failed to queue notification")
	}
}
