package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string         `json:"error"`
	Message       string         `json:"message"`
	Details       map[string]any `json:"details,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeValidation          = "VALIDATION_FAILED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeItemNotFound        = "ITEM_NOT_FOUND"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeOutOfStock          = "OUT_OF_STOCK"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodePromoNotFound       = "PROMO_NOT_FOUND"
	ErrCodePromoExpired        = "PROMO_EXPIRED"
	ErrCodePromoNotStarted     = "PROMO_NOT_STARTED"
	ErrCodePromoInactive       = "PROMO_INACTIVE"
	ErrCodePromoNotApplicable  = "PROMO_NOT_APPLICABLE"
	ErrCodePromoInvalid        = "PROMO_INVALID"
	ErrCodePromoExists         = "PROMO_EXISTS"
	ErrCodeStatusTransition    = "STATUS_TRANSITION_NOT_ALLOWED"
	ErrCodeCancelForbidden     = "CANCEL_FORBIDDEN"
	ErrCodeOrderNotPayable     = "ORDER_NOT_PAYABLE"
	ErrCodeTooManyReceiptItems = "TOO_MANY_RECEIPT_ITEMS"
	ErrCodePaymentFailed       = "PAYMENT_FAILED"
	ErrCodeReviewNotAllowed    = "REVIEW_NOT_ALLOWED"
	ErrCodeInvalidGrade        = "INVALID_GRADE"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure that reaches the client.
// Params are substituted into the localized message and echoed as details.
type DomainError struct {
	Code    string
	Message string
	Params  map[string]string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so parameterised copies still match
// their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// With returns a copy of the error carrying the given params.
func (e *DomainError) With(params map[string]string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Params:  params,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// AsDomainError unwraps err into a DomainError if it is one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrItemNotFound        = NewDomainError(ErrCodeItemNotFound, "One or more items not found")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrOutOfStock          = NewDomainError(ErrCodeOutOfStock, "Item is out of stock")
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrPromoNotFound       = NewDomainError(ErrCodePromoNotFound, "Promo code not found")
	ErrPromoExpired        = NewDomainError(ErrCodePromoExpired, "Promo code has expired")
	ErrPromoNotStarted     = NewDomainError(ErrCodePromoNotStarted, "Promo code is not active yet")
	ErrPromoInactive       = NewDomainError(ErrCodePromoInactive, "Promo code is disabled")
	ErrPromoNotApplicable  = NewDomainError(ErrCodePromoNotApplicable, "Promo code does not apply to items in the order")
	ErrPromoInvalid        = NewDomainError(ErrCodePromoInvalid, "Promo code must set exactly one of discount, discount percent or free delivery")
	ErrPromoExists         = NewDomainError(ErrCodePromoExists, "Promo code with this name already exists")
	ErrStatusTransition    = NewDomainError(ErrCodeStatusTransition, "Order status transition is not allowed")
	ErrCancelForbidden     = NewDomainError(ErrCodeCancelForbidden, "Order cannot be canceled")
	ErrOrderNotPayable     = NewDomainError(ErrCodeOrderNotPayable, "Order cannot be paid")
	ErrTooManyReceiptItems = NewDomainError(ErrCodeTooManyReceiptItems, "Too many different items in one order")
	ErrPaymentFailed       = NewDomainError(ErrCodePaymentFailed, "Payment could not be created")
	ErrReviewNotAllowed    = NewDomainError(ErrCodeReviewNotAllowed, "Only completed orders can be reviewed")
	ErrInvalidGrade        = NewDomainError(ErrCodeInvalidGrade, "Grade must be between 1 and 5")
	ErrForbidden           = NewDomainError(ErrCodeForbidden, "Access denied")
)
