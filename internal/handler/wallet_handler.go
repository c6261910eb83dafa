package handler

import (
	"net/http"
	"strconv"

	"greenmarket/internal/model"
	"greenmarket/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletHandler handles wallet requests.
type WalletHandler struct {
	wallets service.WalletService
	logger  zerolog.Logger
}

// NewWalletHandler creates a new wallet handler.
func NewWalletHandler(wallets service.WalletService, logger zerolog.Logger) *WalletHandler {
	return &WalletHandler{
		wallets: wallets,
		logger:  logger.With().Str("handler", "wallet").Logger(),
	}
}

// Get handles GET /api/v1/wallets/{userId}.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.wallets.GetWallet(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

type depositRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

// Deposit handles POST /api/v1/wallets/{userId}/deposit.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if req.Method == "" {
		req.Method = model.PaymentMethodWallet
	}

	tx, err := h.wallets.Deposit(r.Context(), r.PathValue("userId"), req.Amount, req.Method)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// CompleteDeposit handles POST /api/v1/wallets/deposits/{transactionId}/complete.
func (h *WalletHandler) CompleteDeposit(w http.ResponseWriter, r *http.Request) {
	txID, err := uuid.Parse(r.PathValue("transactionId"))
	if err != nil {
		writeBadRequest(w, r, model.ErrCodeMissingField, "transactionId must be a UUID")
		return
	}

	tx, err := h.wallets.CompleteDeposit(r.Context(), txID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

type withdrawRequest struct {
	Amount float64 `json:"amount"`
}

// Withdraw handles POST /api/v1/wallets/{userId}/withdraw.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	tx, err := h.wallets.Withdraw(r.Context(), r.PathValue("userId"), req.Amount)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// History handles GET /api/v1/wallets/{userId}/transactions.
func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.wallets.History(r.Context(), r.PathValue("userId"), limit)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
