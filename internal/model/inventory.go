package model

import (
	"time"

	"github.com/google/uuid"
)

// Inventory transaction types. Quantity on the transaction row is signed:
// stock_in and reserve are positive, stock_out and release negative,
// adjust carries the delta between old and new total stock.
const (
	InventoryTxStockIn  = "stock_in"
	InventoryTxStockOut = "stock_out"
	InventoryTxReserve  = "reserve"
	InventoryTxRelease  = "release"
	InventoryTxAdjust   = "adjust"
)

// Inventory statuses derived from the counters.
const (
	InventoryStatusInStock    = "in_stock"
	InventoryStatusLowStock   = "low_stock"
	InventoryStatusOutOfStock = "out_of_stock"
)

// Inventory owns the per-product stock counters. The counters are a
// materialized projection of the transaction log: total_stock equals the
// running sum of stock_in/stock_out/adjust rows, reserved_stock the sum
// of reserve/release rows. Available stock is always derived, never
// stored: available = totalStock - reservedStock.
type Inventory struct {
	ID                uuid.UUID `json:"id" db:"id"`
	ProductID         string    `json:"productId" db:"product_id"`
	SellerID          string    `json:"sellerId" db:"seller_id"`
	TotalStock        int       `json:"totalStock" db:"total_stock"`
	ReservedStock     int       `json:"reservedStock" db:"reserved_stock"`
	SoldStock         int       `json:"soldStock" db:"sold_stock"`
	LowStockThreshold int       `json:"lowStockThreshold" db:"low_stock_threshold"`
	LowStockAlert     bool      `json:"lowStockAlert" db:"low_stock_alert"`
	Status            string    `json:"status" db:"status"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// Available returns the stock a new reservation may consume.
func (i *Inventory) Available() int {
	return i.TotalStock - i.ReservedStock
}

// InventoryTransaction is an immutable audit record appended alongside
// every counter mutation. Rows are never updated or deleted.
type InventoryTransaction struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	InventoryID  uuid.UUID  `json:"inventoryId" db:"inventory_id"`
	ProductID    string     `json:"productId" db:"product_id"`
	Type         string     `json:"type" db:"type"`
	Quantity     int        `json:"quantity" db:"quantity"`
	BalanceAfter int        `json:"balanceAfter" db:"balance_after"`
	Reason       string     `json:"reason" db:"reason"`
	Notes        string     `json:"notes,omitempty" db:"notes"`
	OrderID      *uuid.UUID `json:"orderId,omitempty" db:"order_id"`
	CreatedBy    string     `json:"createdBy" db:"created_by"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}
