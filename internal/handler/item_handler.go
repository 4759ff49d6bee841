package handler

import (
	"net/http"

	"jewelry-store/internal/model"
	"jewelry-store/internal/service"

	"github.com/rs/zerolog"
)

// ItemHandler handles catalogue HTTP requests.
type ItemHandler struct {
	service service.ItemService
	errors  *ErrorWriter
	logger  zerolog.Logger
}

// NewItemHandler creates a new item handler.
func NewItemHandler(service service.ItemService, errors *ErrorWriter, logger zerolog.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		errors:  errors,
		logger:  logger.With().Str("handler", "item").Logger(),
	}
}

// List handles GET /api/items requests with pagination. Only published
// items are listed.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// AdminList handles GET /api/admin/items requests, hidden items included.
func (h *ItemHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *ItemHandler) list(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	limit, offset, err := pagination(r)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	items, err := h.service.List(r.Context(), model.ItemFilter{
		PublishedOnly: publishedOnly,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id} requests.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	item, err := h.service.GetByID(r.Context(), id, true)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Create handles POST /api/admin/items requests.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	item, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/admin/items/{id} requests.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	var req model.ItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	item, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/admin/items/{id} requests.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// SchedulePublication handles POST /api/admin/items/{id}/publication requests.
func (h *ItemHandler) SchedulePublication(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	var req model.PublicationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	item, err := h.service.SchedulePublication(r.Context(), id, &req)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	h.logger.Info().Str("item_id", id.String()).Time("publish_at", req.PublishAt).Msg("publication scheduled")
	writeJSON(w, http.StatusOK, item)
}
