package handler

import (
	"net/http"
	"strconv"

	"greenmarket/internal/model"
	"greenmarket/internal/service"

	"github.com/rs/zerolog"
)

// InventoryHandler handles stock management requests.
type InventoryHandler struct {
	inventory service.InventoryService
	logger    zerolog.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventory service.InventoryService, logger zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
		logger:    logger.With().Str("handler", "inventory").Logger(),
	}
}

type createInventoryRequest struct {
	ProductID         string `json:"productId"`
	SellerID          string `json:"sellerId"`
	InitialStock      int    `json:"initialStock"`
	LowStockThreshold int    `json:"lowStockThreshold"`
}

// Create handles POST /api/v1/inventories.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInventoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	inv, err := h.inventory.CreateInventory(r.Context(), req.ProductID, req.SellerID, req.InitialStock, req.LowStockThreshold)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// Get handles GET /api/v1/inventories/{productId}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.inventory.GetByProductID(r.Context(), r.PathValue("productId"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// List handles GET /api/v1/inventories?sellerId=... and
// GET /api/v1/inventories?lowStock=true.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("lowStock") == "true" {
		out, err := h.inventory.ListLowStock(r.Context())
		if err != nil {
			writeServiceError(w, r, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	sellerID := r.URL.Query().Get("sellerId")
	if sellerID == "" {
		writeBadRequest(w, r, model.ErrCodeMissingField, "sellerId query parameter is required")
		return
	}
	out, err := h.inventory.ListBySeller(r.Context(), sellerID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type stockMovementRequest struct {
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
	Notes    string `json:"notes"`
	Actor    string `json:"actor"`
}

// StockIn handles POST /api/v1/inventories/{productId}/stock-in.
func (h *InventoryHandler) StockIn(w http.ResponseWriter, r *http.Request) {
	var req stockMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	inv, err := h.inventory.StockIn(r.Context(), r.PathValue("productId"), req.Quantity, req.Reason, req.Notes, actorOrSystem(req.Actor))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// StockOut handles POST /api/v1/inventories/{productId}/stock-out.
func (h *InventoryHandler) StockOut(w http.ResponseWriter, r *http.Request) {
	var req stockMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	inv, err := h.inventory.StockOut(r.Context(), r.PathValue("productId"), req.Quantity, nil, req.Reason, actorOrSystem(req.Actor))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

type adjustStockRequest struct {
	NewQuantity int    `json:"newQuantity"`
	Reason      string `json:"reason"`
	Notes       string `json:"notes"`
	Actor       string `json:"actor"`
}

// Adjust handles POST /api/v1/inventories/{productId}/adjust.
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	inv, err := h.inventory.AdjustStock(r.Context(), r.PathValue("productId"), req.NewQuantity, req.Reason, req.Notes, actorOrSystem(req.Actor))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// History handles GET /api/v1/inventories/{productId}/transactions.
func (h *InventoryHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.inventory.History(r.Context(), r.PathValue("productId"), limit)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return "system"
	}
	return actor
}
