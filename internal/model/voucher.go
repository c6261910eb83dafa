package model

import (
	"time"

	"github.com/google/uuid"
)

// Voucher discount types.
const (
	DiscountTypePercent = "percent"
	DiscountTypeFixed   = "fixed"
)

// Voucher statuses.
const (
	VoucherStatusActive   = "active"
	VoucherStatusInactive = "inactive"
	VoucherStatusExpired  = "expired"
)

// UnlimitedUsage marks a voucher with no redemption cap.
const UnlimitedUsage = -1

// Voucher is a discount definition. A nil ShopID makes the voucher
// platform-wide; a set ShopID restricts it to orders from that shop.
// Empty allow-lists mean no restriction.
type Voucher struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	Code              string     `json:"code" db:"code"`
	Name              string     `json:"name" db:"name"`
	DiscountType      string     `json:"discountType" db:"discount_type"`
	DiscountValue     float64    `json:"discountValue" db:"discount_value"`
	MaxDiscountAmount *float64   `json:"maxDiscountAmount,omitempty" db:"max_discount_amount"`
	MinOrderAmount    float64    `json:"minOrderAmount" db:"min_order_amount"`
	ShopID            *string    `json:"shopId,omitempty" db:"shop_id"`
	UserIDs           []string   `json:"userIds,omitempty" db:"user_ids"`
	ProductIDs        []string   `json:"productIds,omitempty" db:"product_ids"`
	CategoryIDs       []string   `json:"categoryIds,omitempty" db:"category_ids"`
	UsageLimit        int        `json:"usageLimit" db:"usage_limit"`
	UsedCount         int        `json:"usedCount" db:"used_count"`
	PerUserLimit      int        `json:"perUserLimit" db:"per_user_limit"`
	StartDate         time.Time  `json:"startDate" db:"start_date"`
	EndDate           time.Time  `json:"endDate" db:"end_date"`
	Status            string     `json:"status" db:"status"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsPlatformWide reports whether the voucher applies across all shops.
func (v *Voucher) IsPlatformWide() bool {
	return v.ShopID == nil
}

// UserVoucher is a grant of a voucher to a specific user.
type UserVoucher struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      string     `json:"userId" db:"user_id"`
	VoucherID   uuid.UUID  `json:"voucherId" db:"voucher_id"`
	VoucherCode string     `json:"voucherCode" db:"voucher_code"`
	IsUsed      bool       `json:"isUsed" db:"is_used"`
	UsedAt      *time.Time `json:"usedAt,omitempty" db:"used_at"`
	OrderID     *uuid.UUID `json:"orderId,omitempty" db:"order_id"`
	ReceivedAt  time.Time  `json:"receivedAt" db:"received_at"`
	ExpiresAt   time.Time  `json:"expiresAt" db:"expires_at"`
}

// Voucher usage statuses.
const (
	VoucherUsageStatusUsed     = "used"
	VoucherUsageStatusRefunded = "refunded"
)

// VoucherUsage is the immutable redemption ledger. The existence of a
// row for (userId, orderId) is the idempotence guard against double
// redemption on retried checkouts.
type VoucherUsage struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         string     `json:"userId" db:"user_id"`
	VoucherID      uuid.UUID  `json:"voucherId" db:"voucher_id"`
	VoucherCode    string     `json:"voucherCode" db:"voucher_code"`
	OrderID        uuid.UUID  `json:"orderId" db:"order_id"`
	OrderAmount    float64    `json:"orderAmount" db:"order_amount"`
	DiscountAmount float64    `json:"discountAmount" db:"discount_amount"`
	Status         string     `json:"status" db:"status"`
	RefundedAt     *time.Time `json:"refundedAt,omitempty" db:"refunded_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}

// VoucherValidation is the outcome of an eligibility check. Reason holds
// a human-readable explanation for UI surfacing when ineligible; Code is
// the machine-readable sub-reason.
type VoucherValidation struct {
	Eligible bool   `json:"eligible"`
	Code     string `json:"code,omitempty"`
	Reason   string `json:"reason,omitempty"`
}
