package service

import (
	"context"

	"greenmarket/internal/model"

	"github.com/google/uuid"
)

// InventoryService manages per-product stock and its movement ledger.
type InventoryService interface {
	// CreateInventory creates the stock record for a product.
	CreateInventory(ctx context.Context, productID, sellerID string, initialStock, lowStockThreshold int) (*model.Inventory, error)

	// GetByProductID retrieves a product's stock record.
	GetByProductID(ctx context.Context, productID string) (*model.Inventory, error)

	// ListBySeller retrieves all stock records owned by a seller.
	ListBySeller(ctx context.Context, sellerID string) ([]model.Inventory, error)

	// ListLowStock retrieves stock records with a raised low-stock alert.
	ListLowStock(ctx context.Context) ([]model.Inventory, error)

	// StockIn adds quantity to total stock.
	StockIn(ctx context.Context, productID string, qty int, reason, notes, actor string) (*model.Inventory, error)

	// StockOut removes quantity from total stock, consuming any matching
	// reservation and counting it as sold.
	StockOut(ctx context.Context, productID string, qty int, orderID *uuid.UUID, reason, actor string) (*model.Inventory, error)

	// ReserveStock places a hold on available stock.
	ReserveStock(ctx context.Context, productID string, qty int, orderID *uuid.UUID) (*model.Inventory, error)

	// ReleaseReserved returns reserved stock to the available pool.
	ReleaseReserved(ctx context.Context, productID string, qty int, orderID *uuid.UUID, reason string) (*model.Inventory, error)

	// ReleaseReservedByOrder releases every hold still outstanding for an
	// order, derived from the movement ledger. Safe to call repeatedly.
	ReleaseReservedByOrder(ctx context.Context, orderID uuid.UUID, reason string) error

	// AdjustStock sets total stock to an absolute value.
	AdjustStock(ctx context.Context, productID string, newQuantity int, reason, notes, actor string) (*model.Inventory, error)

	// History retrieves recent ledger rows for a product.
	History(ctx context.Context, productID string, limit int) ([]model.InventoryTransaction, error)
}

// VoucherService manages discount vouchers and their redemption.
type VoucherService interface {
	// Create registers a new voucher.
	Create(ctx context.Context, v *model.Voucher) error

	// GetByCode retrieves a voucher by code.
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)

	// Validate runs the eligibility checks for a user redeeming a code
	// against a cart. An ineligible voucher is not an error: the
	// validation carries the coded reason.
	Validate(ctx context.Context, userID, code string, cart *model.Cart) (*model.Voucher, *model.VoucherValidation, error)

	// CalculateDiscount computes the discount a voucher grants on an
	// amount, rounded to whole currency units.
	CalculateDiscount(v *model.Voucher, amount float64) float64

	// Use redeems a voucher for a checkout, atomically consuming one use.
	Use(ctx context.Context, v *model.Voucher, userID string, checkoutID uuid.UUID, orderAmount, discountAmount float64) error

	// Refund reverts the redemption tied to a checkout. Idempotent.
	Refund(ctx context.Context, checkoutID uuid.UUID) error

	// GrantToUser hands a voucher to a user's collection.
	GrantToUser(ctx context.Context, userID, code string) (*model.UserVoucher, error)

	// ListUserVouchers retrieves a user's voucher collection.
	ListUserVouchers(ctx context.Context, userID string) ([]model.UserVoucher, error)
}

// WalletService manages user balances and their ledger.
type WalletService interface {
	// GetWallet retrieves the user's wallet, creating it on first use.
	GetWallet(ctx context.Context, userID string) (*model.Wallet, error)

	// Deposit adds funds. Wallet-method deposits credit immediately;
	// online deposits create a pending transaction completed later.
	Deposit(ctx context.Context, userID string, amount float64, method string) (*model.WalletTransaction, error)

	// CompleteDeposit credits a pending deposit. Completing twice is a
	// no-op returning the stored transaction.
	CompleteDeposit(ctx context.Context, transactionID uuid.UUID) (*model.WalletTransaction, error)

	// Withdraw removes funds, guarded by the balance.
	Withdraw(ctx context.Context, userID string, amount float64) (*model.WalletTransaction, error)

	// PayWithWallet debits a payment, guarded by the balance.
	PayWithWallet(ctx context.Context, userID string, amount float64, orderRef string) (*model.WalletTransaction, error)

	// RefundToWallet credits a refund back to the user.
	RefundToWallet(ctx context.Context, userID string, amount float64, orderRef string) (*model.WalletTransaction, error)

	// History retrieves the user's ledger, newest first.
	History(ctx context.Context, userID string, limit int) ([]model.WalletTransaction, error)
}

// OrderService manages orders after checkout created them.
type OrderService interface {
	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// TransitionOrder moves an order to a new status after validating the
	// transition against the lifecycle graph.
	TransitionOrder(ctx context.Context, id uuid.UUID, req model.TransitionRequest) (*model.Order, error)

	// CancelOrder cancels an order, releasing its reservations, refunding
	// its voucher redemption and refunding wallet payments.
	CancelOrder(ctx context.Context, id uuid.UUID, reason, actor string) (*model.Order, error)

	// ReturnOrder marks a delivered or shipping order returned.
	ReturnOrder(ctx context.Context, id uuid.UUID, reason string) (*model.Order, error)

	// RefundOrder refunds a delivered or returned order to the wallet.
	RefundOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

// CheckoutService orchestrates the multi-step checkout saga.
type CheckoutService interface {
	// Checkout converts the user's cart into one pending order per seller
	// and runs the payment step for the chosen method.
	Checkout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResult, error)

	// ConfirmGatewayCallback settles an online payment after the gateway
	// calls back. Duplicate callbacks are deduplicated.
	ConfirmGatewayCallback(ctx context.Context, gatewayRef string) (*model.Payment, error)
}

// CartProvider supplies the basket checkout consumes. Implemented by the
// cart repository.
type CartProvider interface {
	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

// PaymentGatewayClient is the opaque external payment provider.
type PaymentGatewayClient interface {
	// CreatePayment registers a payment intent and returns the gateway
	// reference and the URL the buyer pays at.
	CreatePayment(ctx context.Context, orderID uuid.UUID, userID string, amount float64) (gatewayRef, payURL string, err error)

	// VerifyCallback reports whether the gateway confirms the referenced
	// payment as settled.
	VerifyCallback(ctx context.Context, gatewayRef string) (bool, error)
}

// StatusCache caches order statuses for cheap reads. Implementations
// must be safe to skip on failure; callers treat it as advisory.
type StatusCache interface {
	SetStatus(ctx context.Context, orderID uuid.UUID, status string)
	GetStatus(ctx context.Context, orderID uuid.UUID) (string, bool)
}

// CallbackDeduper remembers processed gateway references.
type CallbackDeduper interface {
	// Claim returns true when this call is the first to process ref.
	Claim(ctx context.Context, ref string) bool
}
