package repository

import (
	"context"

	"greenmarket/internal/model"

	"github.com/google/uuid"
)

// InventoryRepository defines storage for the per-product stock ledger.
// Every mutation updates the counters and appends the matching
// InventoryTransaction row in a single atomic statement.
type InventoryRepository interface {
	// Create inserts a new inventory row for a product.
	Create(ctx context.Context, inv *model.Inventory) error

	// GetByProductID retrieves an inventory row, or nil when absent.
	GetByProductID(ctx context.Context, productID string) (*model.Inventory, error)

	// ListBySeller retrieves all inventory rows owned by a seller.
	ListBySeller(ctx context.Context, sellerID string) ([]model.Inventory, error)

	// ListLowStock retrieves rows whose low-stock alert is raised.
	ListLowStock(ctx context.Context) ([]model.Inventory, error)

	// StockIn increases total stock.
	StockIn(ctx context.Context, productID string, qty int, reason, notes, actor string) (*model.Inventory, error)

	// StockOut decreases total stock, consuming any matching reservation.
	StockOut(ctx context.Context, productID string, qty int, orderID *uuid.UUID, reason, actor string) (*model.Inventory, error)

	// Reserve places a hold on available stock. Fails with
	// PRODUCT_INSUFFICIENT_STOCK when available < qty; the check and the
	// increment are one conditional update.
	Reserve(ctx context.Context, productID string, qty int, orderID *uuid.UUID) (*model.Inventory, error)

	// Release returns up to qty of reserved stock to the available pool.
	Release(ctx context.Context, productID string, qty int, orderID *uuid.UUID, reason string) (*model.Inventory, error)

	// Adjust sets total stock to an absolute value, logging the delta.
	Adjust(ctx context.Context, productID string, newQuantity int, reason, notes, actor string) (*model.Inventory, error)

	// OutstandingReservations sums unreleased reserve quantities per
	// product for an order, derived from the transaction log.
	OutstandingReservations(ctx context.Context, orderID uuid.UUID) (map[string]int, error)

	// ListTransactions retrieves the most recent ledger rows for a product.
	ListTransactions(ctx context.Context, productID string, limit int) ([]model.InventoryTransaction, error)
}

// VoucherRepository defines storage for vouchers, grants and the
// redemption ledger.
type VoucherRepository interface {
	// Create inserts a new voucher.
	Create(ctx context.Context, v *model.Voucher) error

	// GetByCode retrieves a voucher by code, or nil when absent.
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)

	// GetByID retrieves a voucher by ID, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error)

	// Use atomically increments used_count (guarded by usage_limit) and
	// writes the VoucherUsage row in the same statement.
	Use(ctx context.Context, voucherID uuid.UUID, userID string, orderID uuid.UUID, orderAmount, discountAmount float64) (*model.VoucherUsage, error)

	// RefundUsage marks the usage row for orderID refunded and decrements
	// used_count. Idempotent: refunding an already-refunded or absent
	// usage is a no-op.
	RefundUsage(ctx context.Context, orderID uuid.UUID) error

	// GetUsage retrieves the redemption record for (userID, orderID), or
	// nil when the voucher was never redeemed for that order.
	GetUsage(ctx context.Context, userID string, orderID uuid.UUID) (*model.VoucherUsage, error)

	// CountUsageByUser counts non-refunded redemptions of a voucher by a user.
	CountUsageByUser(ctx context.Context, userID string, voucherID uuid.UUID) (int, error)

	// GetUserVoucher retrieves a user's grant of a voucher code, or nil.
	GetUserVoucher(ctx context.Context, userID, code string) (*model.UserVoucher, error)

	// MarkUserVoucherUsed flags a grant consumed by an order.
	MarkUserVoucherUsed(ctx context.Context, userID, code string, orderID uuid.UUID) error

	// GrantToUser inserts a grant record; duplicate grants are no-ops.
	GrantToUser(ctx context.Context, uv *model.UserVoucher) error

	// ListUserVouchers retrieves all grants for a user.
	ListUserVouchers(ctx context.Context, userID string) ([]model.UserVoucher, error)
}

// OrderRepository defines storage for orders and their items.
type OrderRepository interface {
	// CreateMany inserts a batch of orders with their items in one
	// database transaction; either all orders persist or none do.
	CreateMany(ctx context.Context, orders []model.Order) error

	// GetByID retrieves an order with its items, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// UpdateStatus persists a status change along with any cancellation
	// or return metadata, returning the updated order.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, reason, actor *string) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// ListByCheckoutID retrieves all orders created by one checkout.
	ListByCheckoutID(ctx context.Context, checkoutID uuid.UUID) ([]model.Order, error)
}

// WalletRepository defines storage for wallets and their ledger.
type WalletRepository interface {
	// GetOrCreate retrieves the user's wallet, creating an empty one on
	// first use.
	GetOrCreate(ctx context.Context, userID string) (*model.Wallet, error)

	// GetByUserID retrieves a wallet, or nil when absent.
	GetByUserID(ctx context.Context, userID string) (*model.Wallet, error)

	// Credit adds amount to the balance and appends a completed
	// transaction row.
	Credit(ctx context.Context, userID string, amount float64, txType, description string, refID, refType *string) (*model.WalletTransaction, error)

	// Debit subtracts amount, guarded by balance >= amount in the same
	// conditional update, and appends a completed transaction row. Fails
	// with PAYMENT_INSUFFICIENT_BALANCE.
	Debit(ctx context.Context, userID string, amount float64, txType, description string, refID, refType *string) (*model.WalletTransaction, error)

	// CreatePendingDeposit appends a pending deposit row without touching
	// the balance.
	CreatePendingDeposit(ctx context.Context, userID string, amount float64, description string) (*model.WalletTransaction, error)

	// CompleteDeposit credits a pending deposit. Completing a transaction
	// that is not pending is a no-op returning the stored row.
	CompleteDeposit(ctx context.Context, transactionID uuid.UUID) (*model.WalletTransaction, error)

	// ListTransactions retrieves a user's ledger, newest first.
	ListTransactions(ctx context.Context, userID string, limit int) ([]model.WalletTransaction, error)
}

// CartRepository defines storage for user carts.
type CartRepository interface {
	// GetCart retrieves the user's cart with its items; an absent cart is
	// returned as an empty cart.
	GetCart(ctx context.Context, userID string) (*model.Cart, error)

	// ClearCart removes the cart and its items.
	ClearCart(ctx context.Context, userID string) error
}

// PaymentRepository defines storage for gateway payments.
type PaymentRepository interface {
	// Create inserts a pending payment row.
	Create(ctx context.Context, p *model.Payment) error

	// GetByGatewayRef retrieves a payment by gateway reference, or nil.
	GetByGatewayRef(ctx context.Context, gatewayRef string) (*model.Payment, error)

	// Settle moves a pending payment to completed or failed; settling a
	// non-pending payment is a no-op returning the stored row.
	Settle(ctx context.Context, gatewayRef, status string) (*model.Payment, error)
}
