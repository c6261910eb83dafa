package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"greenmarket/internal/middleware"
	"greenmarket/internal/model"

	"github.com/rs/zerolog"
)

// statusForCode maps domain error codes to HTTP statuses. Codes not
// listed fall through to 500.
var statusForCode = map[string]int{
	model.ErrCodeInvalidJSON:          http.StatusBadRequest,
	model.ErrCodeMissingField:         http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:      http.StatusBadRequest,
	model.ErrCodeEmptyCart:            http.StatusBadRequest,
	model.ErrCodeUnknownStatus:        http.StatusBadRequest,
	model.ErrCodeInvalidPaymentMethod: http.StatusBadRequest,

	model.ErrCodeProductNotFound:     http.StatusNotFound,
	model.ErrCodeOrderNotFound:       http.StatusNotFound,
	model.ErrCodeVoucherNotFound:     http.StatusNotFound,
	model.ErrCodeWalletNotFound:      http.StatusNotFound,
	model.ErrCodePaymentNotFound:     http.StatusNotFound,
	model.ErrCodeTransactionNotFound: http.StatusNotFound,

	model.ErrCodeInsufficientStock:      http.StatusConflict,
	model.ErrCodeProductOutOfStock:      http.StatusConflict,
	model.ErrCodeInvalidTransition:      http.StatusConflict,
	model.ErrCodeVoucherLimitReached:    http.StatusConflict,
	model.ErrCodeVoucherAlreadyUsed:     http.StatusConflict,
	model.ErrCodeInventoryAlreadyExists: http.StatusConflict,

	model.ErrCodeVoucherInactive:      http.StatusUnprocessableEntity,
	model.ErrCodeVoucherExpired:       http.StatusUnprocessableEntity,
	model.ErrCodeVoucherMinOrder:      http.StatusUnprocessableEntity,
	model.ErrCodeVoucherScopeMismatch: http.StatusUnprocessableEntity,

	model.ErrCodeInsufficientBalance: http.StatusPaymentRequired,
	model.ErrCodeUnauthorised:        http.StatusUnauthorized,
	model.ErrCodeTransientContention: http.StatusServiceUnavailable,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError converts a service error to its HTTP shape. Domain
// errors surface their code and message; anything else becomes an opaque
// 500 carrying only the correlation ID.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	correlationID := middleware.RequestIDFrom(r.Context())

	var de *model.DomainError
	if errors.As(err, &de) {
		status, ok := statusForCode[de.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, model.ErrorResponse{
			Error:         de.Code,
			Message:       de.Message,
			CorrelationID: correlationID,
		})
		return
	}

	logger.Error().Err(err).Str("request_id", correlationID).Msg("unhandled service error")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:         model.ErrCodeInternalError,
		Message:       "internal server error",
		CorrelationID: correlationID,
	})
}

// writeBadRequest writes a 400 with the given code and message.
func writeBadRequest(w http.ResponseWriter, r *http.Request, code, message string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.RequestIDFrom(r.Context()),
	})
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "invalid JSON request body")
	}
	return nil
}
