package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jewelry-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPromoCodeHandler_Check(t *testing.T) {
	customer := model.Actor{UserID: uuid.New()}
	percent := 20
	promo := model.PromoCode{
		ID:              uuid.New(),
		Name:            "SPRING20",
		DiscountPercent: &percent,
		IsActive:        true,
		DateStart:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name           string
		actor          *model.Actor
		mockReturn     *model.PromoCheckResponse
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:  "Signed in caller gets a priced cart",
			actor: &customer,
			mockReturn: &model.PromoCheckResponse{
				PromoCode: promo,
				Summary:   model.OrderSummary{Total: decimal.NewFromInt(1800), DiscountPercent: 20},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Anonymous caller",
			mockReturn:     &model.PromoCheckResponse{PromoCode: promo},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Expired",
			mockError:      model.ErrPromoExpired.With(map[string]string{"dateEnd": "2025-03-31"}),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodePromoExpired,
		},
		{
			name:           "Unknown",
			mockError:      model.ErrPromoNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodePromoNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPromoCodeService)
			handler := NewPromoCodeHandler(mockService, testErrorWriter(t), zerolog.Nop())

			var userID *uuid.UUID
			if tt.actor != nil {
				userID = &tt.actor.UserID
			}
			mockService.On("Check", mock.Anything, "SPRING20", userID).Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, "/api/promocodes/SPRING20/check", nil)
			req = withRoute(req, tt.actor, map[string]string{"name": "SPRING20"})
			w := httptest.NewRecorder()
			handler.Check(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				var resp model.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.expectedCode, resp.Error)
			} else {
				var resp model.PromoCheckResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "SPRING20", resp.PromoCode.Name)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestPromoCodeHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{name: "Success", expectedStatus: http.StatusCreated},
		{name: "Name taken", mockError: model.ErrPromoExists, expectedStatus: http.StatusConflict},
		{name: "Two discount kinds", mockError: model.ErrPromoInvalid, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPromoCodeService)
			handler := NewPromoCodeHandler(mockService, testErrorWriter(t), zerolog.Nop())

			var ret *model.PromoCode
			if tt.mockError == nil {
				ret = &model.PromoCode{ID: uuid.New(), Name: "WELCOME", FreeDelivery: true}
			}
			mockService.On("Create", mock.Anything, mock.MatchedBy(func(req *model.PromoCodeRequest) bool {
				return req.Name == "WELCOME"
			})).Return(ret, tt.mockError)

			body := bytes.NewBufferString(`{"name":"WELCOME","freeDelivery":true,"isActive":true,"dateStart":"2025-01-01T00:00:00Z"}`)
			w := httptest.NewRecorder()
			handler.Create(w, httptest.NewRequest(http.MethodPost, "/api/admin/promocodes", body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestPromoCodeHandler_AdminCRUD(t *testing.T) {
	promo := &model.PromoCode{ID: uuid.New(), Name: "WELCOME", FreeDelivery: true}
	params := map[string]string{"id": promo.ID.String()}

	mockService := new(MockPromoCodeService)
	handler := NewPromoCodeHandler(mockService, testErrorWriter(t), zerolog.Nop())
	mockService.On("List", mock.Anything, 50, 0).Return([]model.PromoCode{*promo}, nil)
	mockService.On("GetByID", mock.Anything, promo.ID).Return(promo, nil)
	mockService.On("Update", mock.Anything, promo.ID, mock.AnythingOfType("*model.PromoCodeRequest")).
		Return(nil, model.ErrPromoNotFound)
	mockService.On("Delete", mock.Anything, promo.ID).Return(nil)

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/api/admin/promocodes?limit=50", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.Get(w, withRoute(httptest.NewRequest(http.MethodGet, "/", nil), nil, params))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	body := bytes.NewBufferString(`{"name":"WELCOME","freeDelivery":true}`)
	handler.Update(w, withRoute(httptest.NewRequest(http.MethodPut, "/", body), nil, params))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	handler.Delete(w, withRoute(httptest.NewRequest(http.MethodDelete, "/", nil), nil, params))
	assert.Equal(t, http.StatusNoContent, w.Code)

	mockService.AssertExpectations(t)
}
