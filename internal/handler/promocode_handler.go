package handler

import (
	"net/http"

	"jewelry-store/internal/auth"
	"jewelry-store/internal/model"
	"jewelry-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PromoCodeHandler handles promo code HTTP requests.
type PromoCodeHandler struct {
	service service.PromoCodeService
	errors  *ErrorWriter
	logger  zerolog.Logger
}

// NewPromoCodeHandler creates a new promo code handler.
func NewPromoCodeHandler(service service.PromoCodeService, errors *ErrorWriter, logger zerolog.Logger) *PromoCodeHandler {
	return &PromoCodeHandler{
		service: service,
		errors:  errors,
		logger:  logger.With().Str("handler", "promocode").Logger(),
	}
}

// Check handles GET /api/promocodes/{name}/check requests. Signed-in
// callers also get their cart priced with the code.
func (h *PromoCodeHandler) Check(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		h.errors.Write(w, r, model.ErrPromoNotFound)
		return
	}

	var userID *uuid.UUID
	if actor, err := auth.ActorFrom(r.Context()); err == nil {
		userID = &actor.UserID
	}

	resp, err := h.service.Check(r.Context(), name, userID)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// List handles GET /api/admin/promocodes requests.
func (h *PromoCodeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	promos, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, promos)
}

// Get handles GET /api/admin/promocodes/{id} requests.
func (h *PromoCodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	promo, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, promo)
}

// Create handles POST /api/admin/promocodes requests.
func (h *PromoCodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.PromoCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	promo, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, promo)
}

// Update handles PUT /api/admin/promocodes/{id} requests.
func (h *PromoCodeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	var req model.PromoCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	promo, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, promo)
}

// Delete handles DELETE /api/admin/promocodes/{id} requests.
func (h *PromoCodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
