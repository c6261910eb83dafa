package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodWallet = "wallet"
	PaymentMethodOnline = "online"
)

// Shipping methods and their flat fees.
const (
	ShippingMethodStandard = "standard"
	ShippingMethodExpress  = "express"

	ShippingFeeStandard = 30000.0
	ShippingFeeExpress  = 60000.0
)

// Order represents a single-seller order produced by checkout. A cart
// spanning several sellers yields one Order per seller, all sharing a
// checkout ID.
type Order struct {
	ID                 uuid.UUID   `json:"id" db:"id"`
	CheckoutID         uuid.UUID   `json:"checkoutId" db:"checkout_id"`
	UserID             string      `json:"userId" db:"user_id"`
	SellerID           string      `json:"sellerId" db:"seller_id"`
	Items              []OrderItem `json:"items" db:"-"`
	Subtotal           float64     `json:"subtotal" db:"subtotal"`
	Discount           float64     `json:"discount" db:"discount"`
	ShippingFee        float64     `json:"shippingFee" db:"shipping_fee"`
	Total              float64     `json:"total" db:"total"`
	Status             string      `json:"status" db:"status"`
	PaymentMethod      string      `json:"paymentMethod" db:"payment_method"`
	ShippingMethod     string      `json:"shippingMethod" db:"shipping_method"`
	ShippingAddress    string      `json:"shippingAddress,omitempty" db:"shipping_address"`
	VoucherCode        *string     `json:"voucherCode,omitempty" db:"voucher_code"`
	CancellationReason *string     `json:"cancellationReason,omitempty" db:"cancellation_reason"`
	CancelledBy        *string     `json:"cancelledBy,omitempty" db:"cancelled_by"`
	ReturnReason       *string     `json:"returnReason,omitempty" db:"return_reason"`
	CreatedAt          time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID        uuid.UUID  `json:"-" db:"id"`
	OrderID   uuid.UUID  `json:"-" db:"order_id"`
	ProductID string     `json:"productId" db:"product_id"`
	Quantity  int        `json:"quantity" db:"quantity"`
	UnitPrice float64    `json:"unitPrice" db:"unit_price"`
	Reviewed  bool       `json:"reviewed" db:"reviewed"`
	ReviewID  *uuid.UUID `json:"reviewId,omitempty" db:"review_id"`
}

// ShippingAddress is the structured destination supplied at checkout.
type ShippingAddress struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	Ward     string `json:"ward,omitempty"`
	District string `json:"district,omitempty"`
	City     string `json:"city,omitempty"`
}

// String flattens the address into a single display line.
func (a ShippingAddress) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.FullName, a.Address, a.Ward, a.District, a.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// CheckoutRequest represents the request payload for a checkout.
type CheckoutRequest struct {
	UserID          string          `json:"userId"`
	PaymentMethod   string          `json:"paymentMethod"`
	ShippingMethod  string          `json:"shippingMethod"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	VoucherCode     *string         `json:"voucherCode,omitempty"`
}

// CheckoutResult is the response payload for a successful checkout.
// Payments is populated only for online payment methods and carries the
// pending gateway handoff per order.
type CheckoutResult struct {
	CheckoutID uuid.UUID `json:"checkoutId"`
	Orders     []Order   `json:"orders"`
	Payments   []Payment `json:"payments,omitempty"`
}

// TransitionRequest represents a request to move an order to a new status.
type TransitionRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"`
	Actor  *string `json:"actor,omitempty"`
}

// ShippingFeeFor returns the flat shipping fee for a shipping method.
func ShippingFeeFor(method string) float64 {
	if method == ShippingMethodExpress {
		return ShippingFeeExpress
	}
	return ShippingFeeStandard
}
