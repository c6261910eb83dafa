package router

import (
	"net/http"

	"greenmarket/internal/handler"
	"greenmarket/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
func New(
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	inventoryHandler *handler.InventoryHandler,
	voucherHandler *handler.VoucherHandler,
	walletHandler *handler.WalletHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("POST /api/v1/checkout", checkoutHandler.Checkout)
	mux.HandleFunc("POST /api/v1/payments/callback", checkoutHandler.GatewayCallback)

	mux.HandleFunc("GET /api/v1/orders", orderHandler.ListByUser)
	mux.HandleFunc("GET /api/v1/orders/{id}", orderHandler.GetByID)
	mux.HandleFunc("GET /api/v1/orders/{id}/status", orderHandler.GetStatus)
	mux.HandleFunc("PUT /api/v1/orders/{id}/status", orderHandler.Transition)

	mux.HandleFunc("POST /api/v1/inventories", inventoryHandler.Create)
	mux.HandleFunc("GET /api/v1/inventories", inventoryHandler.List)
	mux.HandleFunc("GET /api/v1/inventories/{productId}", inventoryHandler.Get)
	mux.HandleFunc("POST /api/v1/inventories/{productId}/stock-in", inventoryHandler.StockIn)
	mux.HandleFunc("POST /api/v1/inventories/{productId}/stock-out", inventoryHandler.StockOut)
	mux.HandleFunc("POST /api/v1/inventories/{productId}/adjust", inventoryHandler.Adjust)
	mux.HandleFunc("GET /api/v1/inventories/{productId}/transactions", inventoryHandler.History)

	mux.HandleFunc("POST /api/v1/vouchers", voucherHandler.Create)
	mux.HandleFunc("POST /api/v1/vouchers/validate", voucherHandler.Validate)
	mux.HandleFunc("POST /api/v1/vouchers/grant", voucherHandler.Grant)
	mux.HandleFunc("GET /api/v1/vouchers/{code}", voucherHandler.Get)
	mux.HandleFunc("GET /api/v1/users/{userId}/vouchers", voucherHandler.ListForUser)

	mux.HandleFunc("GET /api/v1/wallets/{userId}", walletHandler.Get)
	mux.HandleFunc("POST /api/v1/wallets/{userId}/deposit", walletHandler.Deposit)
	mux.HandleFunc("POST /api/v1/wallets/{userId}/withdraw", walletHandler.Withdraw)
	mux.HandleFunc("GET /api/v1/wallets/{userId}/transactions", walletHandler.History)
	mux.HandleFunc("POST /api/v1/wallets/deposits/{transactionId}/complete", walletHandler.CompleteDeposit)

	// Middleware order (outermost first): Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)

	return h
}
