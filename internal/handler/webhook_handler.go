package handler

import (
	"net/http"

	"jewelry-store/internal/acquiring"
	"jewelry-store/internal/service"

	"github.com/rs/zerolog"
)

// WebhookHandler receives payment gateway notifications.
type WebhookHandler struct {
	service service.AcquiringService
	errors  *ErrorWriter
	logger  zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service service.AcquiringService, errors *ErrorWriter, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		errors:  errors,
		logger:  logger.With().Str("handler", "webhook").Logger(),
	}
}

// Handle handles POST /api/acquiring/webhook requests. A non-2xx answer
// makes the gateway redeliver the notification.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var n acquiring.Notification
	if err := decodeJSON(r, &n); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	h.logger.Debug().
		Str("event", n.Event).
		Str("payment_id", n.Object.ID).
		Str("status", n.Object.Status).
		Msg("gateway notification received")

	if err := h.service.HandleWebhook(r.Context(), &n); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
