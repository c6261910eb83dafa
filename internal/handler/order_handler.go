package handler

import (
	"net/http"

	"greenmarket/internal/model"
	"greenmarket/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order lifecycle requests.
type OrderHandler struct {
	orders service.OrderService
	cache  service.StatusCache
	logger zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, cache service.StatusCache, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		cache:  cache,
		logger: logger.With().Str("handler", "order").Logger(),
	}
}

func orderID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	return id, err == nil
}

// GetByID handles GET /api/v1/orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(r)
	if !ok {
		writeBadRequest(w, r, model.ErrCodeMissingField, "order id must be a UUID")
		return
	}

	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// GetStatus handles GET /api/v1/orders/{id}/status, serving from the
// cache when possible.
func (h *OrderHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(r)
	if !ok {
		writeBadRequest(w, r, model.ErrCodeMissingField, "order id must be a UUID")
		return
	}

	if status, hit := h.cache.GetStatus(r.Context(), id); hit {
		writeJSON(w, http.StatusOK, map[string]string{"orderId": id.String(), "status": status})
		return
	}

	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	h.cache.SetStatus(r.Context(), id, order.Status)
	writeJSON(w, http.StatusOK, map[string]string{"orderId": id.String(), "status": order.Status})
}

// ListByUser handles GET /api/v1/orders?userId=...
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeBadRequest(w, r, model.ErrCodeMissingField, "userId query parameter is required")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// Transition handles PUT /api/v1/orders/{id}/status.
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(r)
	if !ok {
		writeBadRequest(w, r, model.ErrCodeMissingField, "order id must be a UUID")
		return
	}

	var req model.TransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if req.Status == "" {
		writeBadRequest(w, r, model.ErrCodeMissingField, "status is required")
		return
	}

	order, err := h.orders.TransitionOrder(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
