package handler

import (
	"net/http"

	"greenmarket/internal/model"
	"greenmarket/internal/service"

	"github.com/rs/zerolog"
)

// VoucherHandler handles voucher management requests.
type VoucherHandler struct {
	vouchers service.VoucherService
	cart     service.CartProvider
	logger   zerolog.Logger
}

// NewVoucherHandler creates a new voucher handler.
func NewVoucherHandler(vouchers service.VoucherService, cart service.CartProvider, logger zerolog.Logger) *VoucherHandler {
	return &VoucherHandler{
		vouchers: vouchers,
		cart:     cart,
		logger:   logger.With().Str("handler", "voucher").Logger(),
	}
}

// Create handles POST /api/v1/vouchers.
func (h *VoucherHandler) Create(w http.ResponseWriter, r *http.Request) {
	var v model.Voucher
	if err := decodeJSON(r, &v); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if err := h.vouchers.Create(r.Context(), &v); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// Get handles GET /api/v1/vouchers/{code}.
func (h *VoucherHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.vouchers.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type validateVoucherRequest struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

// Validate handles POST /api/v1/vouchers/validate against the user's
// current cart.
func (h *VoucherHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateVoucherRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if req.UserID == "" || req.Code == "" {
		writeBadRequest(w, r, model.ErrCodeMissingField, "userId and code are required")
		return
	}

	cart, err := h.cart.GetCart(r.Context(), req.UserID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	_, validation, err := h.vouchers.Validate(r.Context(), req.UserID, req.Code, cart)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, validation)
}

type grantVoucherRequest struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

// Grant handles POST /api/v1/vouchers/grant.
func (h *VoucherHandler) Grant(w http.ResponseWriter, r *http.Request) {
	var req grantVoucherRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if req.UserID == "" || req.Code == "" {
		writeBadRequest(w, r, model.ErrCodeMissingField, "userId and code are required")
		return
	}

	uv, err := h.vouchers.GrantToUser(r.Context(), req.UserID, req.Code)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, uv)
}

// ListForUser handles GET /api/v1/users/{userId}/vouchers.
func (h *VoucherHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	out, err := h.vouchers.ListUserVouchers(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
