// Package handler exposes the shop's services over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"jewelry-store/internal/auth"
	"jewelry-store/internal/i18n"
	"jewelry-store/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// ErrorWriter renders errors as the localized JSON error envelope.
type ErrorWriter struct {
	catalog *i18n.Catalog
	logger  zerolog.Logger
}

// NewErrorWriter creates an error writer. catalog may be nil, in which case
// the built-in English messages are used.
func NewErrorWriter(catalog *i18n.Catalog, logger zerolog.Logger) *ErrorWriter {
	return &ErrorWriter{
		catalog: catalog,
		logger:  logger.With().Str("component", "http-errors").Logger(),
	}
}

// Write maps err to a status code and writes the envelope. Errors that are
// not domain errors are logged and reported as internal errors.
func (e *ErrorWriter) Write(w http.ResponseWriter, r *http.Request, err error) {
	requestID := chimw.GetReqID(r.Context())

	de, ok := model.AsDomainError(err)
	if !ok {
		switch {
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrNoActor):
			de = model.NewDomainError(model.ErrCodeUnauthorised, "Authentication required")
		default:
			e.logger.Error().
				Err(err).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", requestID).
				Msg("handler error")
			de = model.NewDomainError(model.ErrCodeInternalError, "Internal server error")
		}
	}

	status := statusFor(de.Code)
	if status < http.StatusInternalServerError {
		e.logger.Debug().
			Str("code", de.Code).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("request_id", requestID).
			Msg("request rejected")
	}

	resp := model.ErrorResponse{
		Error:         de.Code,
		Message:       de.Message,
		CorrelationID: requestID,
	}
	if e.catalog != nil {
		lang := e.catalog.Negotiate(r.Header.Get("Accept-Language"))
		if text, ok := e.catalog.Message(lang, de.Code, de.Params); ok {
			resp.Message = text
		}
	}

	if len(de.Params) > 0 || genericCode(de.Code) {
		resp.Details = make(map[string]any, len(de.Params)+1)
		for k, v := range de.Params {
			resp.Details[k] = v
		}
		if genericCode(de.Code) {
			resp.Details["reason"] = de.Message
		}
	}

	writeJSON(w, status, resp)
}

// genericCode reports codes shared by many failures; their own message is
// kept in the details.
func genericCode(code string) bool {
	switch code {
	case model.ErrCodeMissingField, model.ErrCodeValidation, model.ErrCodeInvalidJSON:
		return true
	}
	return false
}

// statusFor maps an error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case model.ErrCodeInvalidJSON,
		model.ErrCodeMissingField,
		model.ErrCodeValidation,
		model.ErrCodeInvalidQuantity,
		model.ErrCodeEmptyCart,
		model.ErrCodePromoExpired,
		model.ErrCodePromoNotStarted,
		model.ErrCodePromoInactive,
		model.ErrCodePromoNotApplicable,
		model.ErrCodePromoInvalid,
		model.ErrCodeTooManyReceiptItems,
		model.ErrCodeInvalidGrade:
		return http.StatusBadRequest
	case model.ErrCodeNotFound,
		model.ErrCodeItemNotFound,
		model.ErrCodeOrderNotFound,
		model.ErrCodePromoNotFound:
		return http.StatusNotFound
	case model.ErrCodeOutOfStock,
		model.ErrCodeStatusTransition,
		model.ErrCodeCancelForbidden,
		model.ErrCodeOrderNotPayable,
		model.ErrCodePromoExists,
		model.ErrCodeReviewNotAllowed:
		return http.StatusConflict
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case model.ErrCodePaymentFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var errInvalidBody = model.NewDomainError(model.ErrCodeInvalidJSON, "Invalid request body")

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errInvalidBody
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody.With(map[string]string{"cause": err.Error()})
	}
	return nil
}

// uuidParam parses a UUID path parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, model.NewDomainError(model.ErrCodeValidation, "Invalid identifier").
			With(map[string]string{"param": name})
	}
	return id, nil
}

// pagination reads limit and offset query parameters.
func pagination(r *http.Request) (limit, offset int, err error) {
	limit = defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit <= 0 {
			return 0, 0, model.NewDomainError(model.ErrCodeValidation, "Invalid limit parameter")
		}
		if limit > maxLimit {
			limit = maxLimit
		}
	}

	if s := r.URL.Query().Get("offset"); s != "" {
		offset, err = strconv.Atoi(s)
		if err != nil || offset < 0 {
			return 0, 0, model.NewDomainError(model.ErrCodeValidation, "Invalid offset parameter")
		}
	}

	return limit, offset, nil
}
