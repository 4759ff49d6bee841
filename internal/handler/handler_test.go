package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"jewelry-store/internal/auth"
	"jewelry-store/internal/model"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWriter_Localization(t *testing.T) {
	tests := []struct {
		name           string
		acceptLanguage string
		err            error
		expectedStatus int
		expectedCode   string
		expectedText   string
	}{
		{
			name:           "Russian by default",
			err:            model.ErrEmptyCart,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeEmptyCart,
			expectedText:   "Корзина пуста",
		},
		{
			name:           "English when requested",
			acceptLanguage: "en-US,en;q=0.9",
			err:            model.ErrEmptyCart,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeEmptyCart,
			expectedText:   "Cart is empty",
		},
		{
			name:           "Unsupported language falls back",
			acceptLanguage: "de",
			err:            model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeOrderNotFound,
			expectedText:   "Заказ не найден",
		},
		{
			name:           "Params are substituted",
			acceptLanguage: "en",
			err:            model.ErrPromoExpired.With(map[string]string{"dateEnd": "2024-01-31"}),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodePromoExpired,
			expectedText:   "Promo code expired on 2024-01-31",
		},
		{
			name:           "Wrapped domain error",
			acceptLanguage: "en",
			err:            fmt.Errorf("create order: %w", model.ErrOutOfStock),
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeOutOfStock,
			expectedText:   "Item is out of stock",
		},
		{
			name:           "Missing token",
			acceptLanguage: "en",
			err:            auth.ErrNoActor,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   model.ErrCodeUnauthorised,
		},
		{
			name:           "Unexpected error",
			acceptLanguage: "en",
			err:            errors.New("connection reset"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	writer := testErrorWriter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tt.acceptLanguage)
			}
			w := httptest.NewRecorder()

			writer.Write(w, req, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp model.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.expectedCode, resp.Error)
			if tt.expectedText != "" {
				assert.Equal(t, tt.expectedText, resp.Message)
			}
			assert.NotContains(t, resp.Message, "connection reset")
		})
	}
}

func TestErrorWriter_Details(t *testing.T) {
	writer := NewErrorWriter(nil, zerolog.Nop())

	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-42")
	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	writer.Write(w, req, model.NewDomainError(model.ErrCodeMissingField, "phone is required").
		With(map[string]string{"field": "phone"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, model.ErrCodeMissingField, resp.Error)
	assert.Equal(t, "phone is required", resp.Message)
	assert.Equal(t, "phone", resp.Details["field"])
	assert.Equal(t, "phone is required", resp.Details["reason"])
	assert.Equal(t, "req-42", resp.CorrelationID)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{model.ErrCodeValidation, http.StatusBadRequest},
		{model.ErrCodePromoNotApplicable, http.StatusBadRequest},
		{model.ErrCodeTooManyReceiptItems, http.StatusBadRequest},
		{model.ErrCodeItemNotFound, http.StatusNotFound},
		{model.ErrCodePromoNotFound, http.StatusNotFound},
		{model.ErrCodeOutOfStock, http.StatusConflict},
		{model.ErrCodePromoExists, http.StatusConflict},
		{model.ErrCodeForbidden, http.StatusForbidden},
		{model.ErrCodeRateLimited, http.StatusTooManyRequests},
		{model.ErrCodePaymentFailed, http.StatusBadGateway},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.code))
		})
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedLimit  int
		expectedOffset int
		expectError    bool
	}{
		{name: "Defaults", query: "", expectedLimit: defaultLimit},
		{name: "Explicit", query: "?limit=5&offset=10", expectedLimit: 5, expectedOffset: 10},
		{name: "Limit capped", query: "?limit=1000", expectedLimit: maxLimit},
		{name: "Zero limit", query: "?limit=0", expectError: true},
		{name: "Negative offset", query: "?offset=-1", expectError: true},
		{name: "Not a number", query: "?limit=abc", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/items"+tt.query, nil)
			limit, offset, err := pagination(req)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedLimit, limit)
			assert.Equal(t, tt.expectedOffset, offset)
		})
	}
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name           string
		db             Pinger
		expectedStatus int
		expectedBody   string
	}{
		{name: "No database", db: nil, expectedStatus: http.StatusOK, expectedBody: "healthy"},
		{name: "Database up", db: stubPinger{}, expectedStatus: http.StatusOK, expectedBody: "healthy"},
		{name: "Database down", db: stubPinger{err: errors.New("refused")}, expectedStatus: http.StatusServiceUnavailable, expectedBody: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			Health(tt.db)(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp healthResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.expectedBody, resp.Status)
		})
	}
}
