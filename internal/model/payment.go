package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment is a pending or settled gateway charge for one order. Created
// in pending state at checkout for online payment methods and settled by
// the gateway callback.
type Payment struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	OrderID    uuid.UUID  `json:"orderId" db:"order_id"`
	UserID     string     `json:"userId" db:"user_id"`
	Amount     float64    `json:"amount" db:"amount"`
	Method     string     `json:"method" db:"method"`
	Status     string     `json:"status" db:"status"`
	GatewayRef string     `json:"gatewayRef,omitempty" db:"gateway_ref"`
	PayURL     string     `json:"payUrl,omitempty" db:"pay_url"`
	PaidAt     *time.Time `json:"paidAt,omitempty" db:"paid_at"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}
