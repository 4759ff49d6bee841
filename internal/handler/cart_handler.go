package handler

import (
	"net/http"

	"jewelry-store/internal/auth"
	"jewelry-store/internal/model"
	"jewelry-store/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests for the authenticated user.
type CartHandler struct {
	service service.CartService
	errors  *ErrorWriter
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, errors *ErrorWriter, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		errors:  errors,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

type countRequest struct {
	Count int `json:"count"`
}

// List handles GET /api/cart requests.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	items, err := h.service.List(r.Context(), actor.UserID)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Add handles POST /api/cart requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	var req model.CartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	row, err := h.service.Add(r.Context(), actor.UserID, &req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, row)
}

// UpdateCount handles PATCH /api/cart/{id} requests.
func (h *CartHandler) UpdateCount(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	var req countRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	if err := h.service.UpdateCount(r.Context(), actor.UserID, id, req.Count); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /api/cart/{id} requests.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	id, err := uuidParam(r, "id")
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	if err := h.service.Remove(r.Context(), actor.UserID, id); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Merge handles POST /api/cart/merge requests sent right after login.
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	var req model.CartMergeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	items, err := h.service.Merge(r.Context(), actor.UserID, &req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}
