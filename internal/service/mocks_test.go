package service

import (
	"context"
	"time"

	"jewelry-store/internal/acquiring"
	"jewelry-store/internal/model"
	"jewelry-store/internal/notify"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	return m.Called(ctx, tx, order).Error(0)
}

func (m *MockOrderRepository) CreatePositions(ctx context.Context, tx pgx.Tx, positions []model.OrderPosition) error {
	return m.Called(ctx, tx, positions).Error(0)
}

func (m *MockOrderRepository) CreateDelivery(ctx context.Context, tx pgx.Tx, delivery *model.Delivery) error {
	return m.Called(ctx, tx, delivery).Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	return m.Called(ctx, tx, id, status).Error(0)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	return m.Called(ctx, tx, id).Error(0)
}

func (m *MockOrderRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) SetReview(ctx context.Context, orderID, positionID uuid.UUID, grade int, review *string) (bool, error) {
	args := m.Called(ctx, orderID, positionID, grade, review)
	return args.Bool(0), args.Error(1)
}

// MockItemRepository is a mock implementation of ItemRepository.
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemRepository) ValidateItemsExist(ctx context.Context, ids []uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockItemRepository) Create(ctx context.Context, item *model.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) Update(ctx context.Context, item *model.Item) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRepository) SchedulePublication(ctx context.Context, id uuid.UUID, publishAt time.Time) (bool, error) {
	args := m.Called(ctx, id, publishAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRepository) ListDueForPublication(ctx context.Context, now time.Time, limit int) ([]model.Item, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemRepository) MarkPublished(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	return m.Called(ctx, tx, ids).Error(0)
}

func (m *MockItemRepository) LockByIDs(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Item, error) {
	args := m.Called(ctx, tx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemRepository) AdjustStock(ctx context.Context, tx pgx.Tx, deltas map[uuid.UUID]int) error {
	return m.Called(ctx, tx, deltas).Error(0)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartRepository) ListByUserTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartItem, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartRepository) Add(ctx context.Context, item *model.CartItem) (*model.CartItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartItem), args.Error(1)
}

func (m *MockCartRepository) UpdateCount(ctx context.Context, id, userID uuid.UUID, count int) (bool, error) {
	args := m.Called(ctx, id, userID, count)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) CreateItems(ctx context.Context, tx pgx.Tx, items []model.CartItem) error {
	return m.Called(ctx, tx, items).Error(0)
}

func (m *MockCartRepository) UpdateCounts(ctx context.Context, tx pgx.Tx, items []model.CartItem) error {
	return m.Called(ctx, tx, items).Error(0)
}

func (m *MockCartRepository) DeleteItems(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	return m.Called(ctx, tx, ids).Error(0)
}

// MockPromoCodeRepository is a mock implementation of PromoCodeRepository.
type MockPromoCodeRepository struct {
	mock.Mock
}

func (m *MockPromoCodeRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPromoCodeRepository) List(ctx context.Context, limit, offset int) ([]model.PromoCode, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromoCode), args.Error(1)
}

func (m *MockPromoCodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

func (m *MockPromoCodeRepository) GetByName(ctx context.Context, name string) (*model.PromoCode, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

func (m *MockPromoCodeRepository) Create(ctx context.Context, promo *model.PromoCode) error {
	return m.Called(ctx, promo).Error(0)
}

func (m *MockPromoCodeRepository) Update(ctx context.Context, promo *model.PromoCode) (bool, error) {
	args := m.Called(ctx, promo)
	return args.Bool(0), args.Error(1)
}

func (m *MockPromoCodeRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPromoCodeRepository) Upsert(ctx context.Context, tx pgx.Tx, promos []model.PromoCode) error {
	return m.Called(ctx, tx, promos).Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *model.AcquiringTransaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.AcquiringTransaction, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AcquiringTransaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByExternalIDForUpdate(ctx context.Context, tx pgx.Tx, externalID string) (*model.AcquiringTransaction, error) {
	args := m.Called(ctx, tx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AcquiringTransaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.AcquiringTransaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AcquiringTransaction), args.Error(1)
}

func (m *MockTransactionRepository) AttachPayment(ctx context.Context, id uuid.UUID, externalID, confirmationURL string) error {
	return m.Called(ctx, id, externalID, confirmationURL).Error(0)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.TransactionStatus, reason *string) error {
	return m.Called(ctx, tx, id, status, reason).Error(0)
}

func (m *MockTransactionRepository) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

// MockAdStatsRepository is a mock implementation of AdStatsRepository.
type MockAdStatsRepository struct {
	mock.Mock
}

func (m *MockAdStatsRepository) SaveReport(ctx context.Context, campaigns []model.AdCampaign, stats []model.AdStatistic) error {
	return m.Called(ctx, campaigns, stats).Error(0)
}

// MockPromoValidator is a mock implementation of promocode.Validator.
type MockPromoValidator struct {
	mock.Mock
}

func (m *MockPromoValidator) Validate(ctx context.Context, name string, now time.Time) (*model.PromoCode, error) {
	args := m.Called(ctx, name, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

// MockAcquiringService is a mock implementation of AcquiringService.
type MockAcquiringService struct {
	mock.Mock
}

func (m *MockAcquiringService) StartPayment(ctx context.Context, order *model.Order) (*model.PaymentResponse, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentResponse), args.Error(1)
}

func (m *MockAcquiringService) Pay(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.PaymentResponse, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentResponse), args.Error(1)
}

func (m *MockAcquiringService) HandleWebhook(ctx context.Context, n *acquiring.Notification) error {
	return m.Called(ctx, n).Error(0)
}

// MockGateway is a mock implementation of acquiring.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePayment(ctx context.Context, req acquiring.PaymentRequest, idempotencyKey string) (*acquiring.Payment, error) {
	args := m.Called(ctx, req, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*acquiring.Payment), args.Error(1)
}

// MockTracker is a mock implementation of paymentwatch.Tracker.
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Watch(ctx context.Context, orderID uuid.UUID, ttl time.Duration) error {
	return m.Called(ctx, orderID, ttl).Error(0)
}

func (m *MockTracker) Clear(ctx context.Context, orderID uuid.UUID) error {
	return m.Called(ctx, orderID).Error(0)
}

// MockNotifier is a mock implementation of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event notify.Event) error {
	return m.Called(ctx, event).Error(0)
}

// MockAdSource is a mock implementation of adstats.Source.
type MockAdSource struct {
	mock.Mock
}

func (m *MockAdSource) Campaigns(ctx context.Context) ([]model.AdCampaign, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AdCampaign), args.Error(1)
}

func (m *MockAdSource) Report(ctx context.Context, from, to time.Time) ([]model.AdStatistic, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AdStatistic), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
