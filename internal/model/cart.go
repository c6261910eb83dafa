package model

import "time"

// Cart is the user's current basket, assembled by the cart collaborator.
// Items carry a price and seller snapshot so checkout does not re-query
// the catalogue.
type Cart struct {
	UserID      string     `json:"userId" db:"user_id"`
	Items       []CartItem `json:"items" db:"-"`
	VoucherCode *string    `json:"voucherCode,omitempty" db:"voucher_code"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// CartItem is one product line in the cart.
type CartItem struct {
	ProductID  string  `json:"productId" db:"product_id"`
	SellerID   string  `json:"sellerId" db:"seller_id"`
	CategoryID string  `json:"categoryId" db:"category_id"`
	Quantity   int     `json:"quantity" db:"quantity"`
	UnitPrice  float64 `json:"unitPrice" db:"unit_price"`
}

// Subtotal returns the combined value of all cart items.
func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, item := range c.Items {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	return sum
}
