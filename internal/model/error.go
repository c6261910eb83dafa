package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes surfaced to callers.
const (
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeMissingField           = "MISSING_FIELD"
	ErrCodeInvalidQuantity        = "INVALID_QUANTITY"
	ErrCodeProductNotFound        = "PRODUCT_NOT_FOUND"
	ErrCodeProductOutOfStock      = "PRODUCT_OUT_OF_STOCK"
	ErrCodeInsufficientStock      = "PRODUCT_INSUFFICIENT_STOCK"
	ErrCodeEmptyCart              = "ORDER_EMPTY_CART"
	ErrCodeOrderNotFound          = "ORDER_NOT_FOUND"
	ErrCodeUnknownStatus          = "UNKNOWN_STATUS"
	ErrCodeInvalidTransition      = "INVALID_TRANSITION"
	ErrCodeOrderCannotCancel      = "ORDER_CANNOT_CANCEL"
	ErrCodeOrderCannotReturn      = "ORDER_CANNOT_RETURN"
	ErrCodeOrderCannotRefund      = "ORDER_CANNOT_REFUND"
	ErrCodeVoucherNotFound        = "VOUCHER_NOT_FOUND"
	ErrCodeVoucherInactive        = "VOUCHER_INACTIVE"
	ErrCodeVoucherExpired         = "VOUCHER_EXPIRED"
	ErrCodeVoucherMinOrder        = "VOUCHER_MIN_ORDER_NOT_MET"
	ErrCodeVoucherScopeMismatch   = "VOUCHER_SCOPE_MISMATCH"
	ErrCodeVoucherLimitReached    = "VOUCHER_LIMIT_REACHED"
	ErrCodeVoucherAlreadyUsed     = "VOUCHER_ALREADY_USED"
	ErrCodeWalletNotFound         = "WALLET_NOT_FOUND"
	ErrCodeInsufficientBalance    = "PAYMENT_INSUFFICIENT_BALANCE"
	ErrCodePaymentNotFound        = "PAYMENT_NOT_FOUND"
	ErrCodeTransactionNotFound    = "TRANSACTION_NOT_FOUND"
	ErrCodeTransientContention    = "TRANSIENT_CONTENTION"
	ErrCodeUnauthorised           = "UNAUTHORIZED"
	ErrCodeInternalError          = "INTERNAL_ERROR"
	ErrCodeInvalidPaymentMethod   = "INVALID_PAYMENT_METHOD"
	ErrCodeInventoryAlreadyExists = "INVENTORY_ALREADY_EXISTS"
)

// DomainError is a tagged business-rule violation. The Code identifies
// the rule; the Message is safe to surface to callers.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ErrorCode extracts the domain error code from err, or INTERNAL_ERROR
// when err is not a DomainError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternalError
}

// IsDomainError reports whether err carries the given domain error code.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// Common domain errors
var (
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "No inventory record exists for this product")
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrVoucherNotFound     = NewDomainError(ErrCodeVoucherNotFound, "Voucher not found")
	ErrWalletNotFound      = NewDomainError(ErrCodeWalletNotFound, "Wallet not found")
	ErrTransactionNotFound = NewDomainError(ErrCodeTransactionNotFound, "Wallet transaction not found")
	ErrInsufficientBalance = NewDomainError(ErrCodeInsufficientBalance, "Wallet balance is insufficient for this payment")
	ErrTransientContention = NewDomainError(ErrCodeTransientContention, "Storage contention persisted after retries, please retry the request")
)
