package handler

import (
	"net/http"

	"jewelry-store/internal/auth"
	"jewelry-store/internal/model"
	"jewelry-store/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service   service.OrderService
	acquiring service.AcquiringService
	errors    *ErrorWriter
	logger    zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, acquiring service.AcquiringService, errors *ErrorWriter, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service:   service,
		acquiring: acquiring,
		errors:    errors,
		logger:    logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	var req model.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	order, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders requests. Admins see every order.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	limit, offset, err := pagination(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	filter := model.OrderFilter{Limit: limit, Offset: offset}
	if s := r.URL.Query().Get("status"); s != "" {
		status := model.OrderStatus(s)
		filter.Status = &status
	}

	orders, err := h.service.List(r.Context(), actor, filter)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// Get handles GET /api/orders/{id} requests.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	order, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	order, err := h.service.Cancel(r.Context(), actor, id)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Pay handles POST /api/orders/{id}/pay requests.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	payment, err := h.acquiring.Pay(r.Context(), actor, id)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// Review handles POST /api/orders/{id}/positions/{positionId}/review requests.
func (h *OrderHandler) Review(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	positionID, err := uuidParam(r, "positionId")
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	var req model.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	if err := h.service.Review(r.Context(), actor, id, positionID, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Transitions handles GET /api/admin/orders/{id}/transitions requests.
func (h *OrderHandler) Transitions(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	t, err := h.service.Transitions(r.Context(), id)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// UpdateStatus handles PUT /api/admin/orders/{id}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var req model.StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/admin/orders/{id} requests.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) actorAndID(w http.ResponseWriter, r *http.Request) (model.Actor, uuid.UUID, bool) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.errors.Write(w, r, err)
		return model.Actor{}, uuid.Nil, false
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		h.errors.Write(w, r, err)
		return model.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}
