package handler

import (
	"net/http"

	"greenmarket/internal/model"
	"greenmarket/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout and gateway callback requests.
type CheckoutHandler struct {
	checkout service.CheckoutService
	logger   zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(checkout service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		logger:   logger.With().Str("handler", "checkout").Logger(),
	}
}

// Checkout handles POST /api/v1/checkout.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if req.UserID == "" {
		writeBadRequest(w, r, model.ErrCodeMissingField, "userId is required")
		return
	}
	if req.PaymentMethod == "" {
		writeBadRequest(w, r, model.ErrCodeMissingField, "paymentMethod is required")
		return
	}

	result, err := h.checkout.Checkout(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type gatewayCallbackRequest struct {
	GatewayRef string `json:"gatewayRef"`
}

// GatewayCallback handles POST /api/v1/payments/callback.
func (h *CheckoutHandler) GatewayCallback(w http.ResponseWriter, r *http.Request) {
	var req gatewayCallbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if req.GatewayRef == "" {
		writeBadRequest(w, r, model.ErrCodeMissingField, "gatewayRef is required")
		return
	}

	payment, err := h.checkout.ConfirmGatewayCallback(r.Context(), req.GatewayRef)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}
