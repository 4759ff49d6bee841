package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"jewelry-store/internal/acquiring"
	"jewelry-store/internal/auth"
	"jewelry-store/internal/i18n"
	"jewelry-store/internal/model"
	"jewelry-store/internal/promocode"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) response(args mock.Arguments) (*model.OrderResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) Create(ctx context.Context, actor model.Actor, req *model.OrderRequest) (*model.OrderResponse, error) {
	return m.response(m.Called(ctx, actor, req))
}

func (m *MockOrderService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error) {
	return m.response(m.Called(ctx, actor, id))
}

func (m *MockOrderService) List(ctx context.Context, actor model.Actor, filter model.OrderFilter) ([]model.OrderResponse, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) Transitions(ctx context.Context, id uuid.UUID) (*model.Transitions, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transitions), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, actor model.Actor, id uuid.UUID, target model.OrderStatus) (*model.OrderResponse, error) {
	return m.response(m.Called(ctx, actor, id, target))
}

func (m *MockOrderService) Cancel(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.OrderResponse, error) {
	return m.response(m.Called(ctx, actor, id))
}

func (m *MockOrderService) AutoCancel(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderService) CancelStaleUnpaid(ctx context.Context, age time.Duration) (int, error) {
	args := m.Called(ctx, age)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderService) Review(ctx context.Context, actor model.Actor, orderID, positionID uuid.UUID, req *model.ReviewRequest) error {
	return m.Called(ctx, actor, orderID, positionID, req).Error(0)
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

// MockItemService is a mock implementation of ItemService.
type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) item(args mock.Arguments) (*model.Item, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemService) List(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemService) GetByID(ctx context.Context, id uuid.UUID, publishedOnly bool) (*model.Item, error) {
	return m.item(m.Called(ctx, id, publishedOnly))
}

func (m *MockItemService) Create(ctx context.Context, req *model.ItemRequest) (*model.Item, error) {
	return m.item(m.Called(ctx, req))
}

func (m *MockItemService) Update(ctx context.Context, id uuid.UUID, req *model.ItemRequest) (*model.Item, error) {
	return m.item(m.Called(ctx, id, req))
}

func (m *MockItemService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemService) SchedulePublication(ctx context.Context, id uuid.UUID, req *model.PublicationRequest) (*model.Item, error) {
	return m.item(m.Called(ctx, id, req))
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, userID uuid.UUID, req *model.CartItemRequest) (*model.CartItem, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartItem), args.Error(1)
}

func (m *MockCartService) UpdateCount(ctx context.Context, userID, id uuid.UUID, count int) error {
	return m.Called(ctx, userID, id, count).Error(0)
}

func (m *MockCartService) Remove(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockCartService) Merge(ctx context.Context, userID uuid.UUID, req *model.CartMergeRequest) ([]model.CartItem, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

// MockPromoCodeService is a mock implementation of PromoCodeService.
type MockPromoCodeService struct {
	mock.Mock
}

func (m *MockPromoCodeService) promo(args mock.Arguments) (*model.PromoCode, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

func (m *MockPromoCodeService) List(ctx context.Context, limit, offset int) ([]model.PromoCode, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromoCode), args.Error(1)
}

func (m *MockPromoCodeService) GetByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error) {
	return m.promo(m.Called(ctx, id))
}

func (m *MockPromoCodeService) Create(ctx context.Context, req *model.PromoCodeRequest) (*model.PromoCode, error) {
	return m.promo(m.Called(ctx, req))
}

func (m *MockPromoCodeService) Update(ctx context.Context, id uuid.UUID, req *model.PromoCodeRequest) (*model.PromoCode, error) {
	return m.promo(m.Called(ctx, id, req))
}

func (m *MockPromoCodeService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPromoCodeService) Check(ctx context.Context, name string, userID *uuid.UUID) (*model.PromoCheckResponse, error) {
	args := m.Called(ctx, name, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCheckResponse), args.Error(1)
}

func (m *MockPromoCodeService) Import(ctx context.Context, paths ...string) (promocode.ImportResult, error) {
	args := m.Called(ctx, paths)
	return args.Get(0).(promocode.ImportResult), args.Error(1)
}

func testErrorWriter(t *testing.T) *ErrorWriter {
	t.Helper()
	catalog, err := i18n.Load()
	require.NoError(t, err)
	return NewErrorWriter(catalog, zerolog.Nop())
}

// withRoute attaches chi URL params and an optional actor to the request.
func withRoute(r *http.Request, actor *model.Actor, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if actor != nil {
		ctx = auth.WithActor(ctx, *actor)
	}
	return r.WithContext(ctx)
}
