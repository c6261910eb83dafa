package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published to the order lifecycle topic.
const (
	EventCheckoutCompleted = "CheckoutCompleted"
	EventOrderStatusMoved  = "OrderStatusMoved"
	EventOrderCancelled    = "OrderCancelled"
	EventOrderRefunded     = "OrderRefunded"
	EventPaymentSettled    = "PaymentSettled"
)

// Envelope wraps every published event with routing metadata. Payload
// holds the event-specific body.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload in a versioned envelope. Marshal failures
// are returned so callers can decide whether publishing is best-effort.
func NewEnvelope(eventType, correlationID string, payload any) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "checkout-api",
		CorrelationID: correlationID,
		Payload:       body,
	}, nil
}

// CheckoutCompletedPayload announces the orders produced by a checkout.
type CheckoutCompletedPayload struct {
	CheckoutID    string   `json:"checkout_id"`
	UserID        string   `json:"user_id"`
	OrderIDs      []string `json:"order_ids"`
	PaymentMethod string   `json:"payment_method"`
	Total         float64  `json:"total"`
}

// OrderStatusMovedPayload announces a lifecycle transition.
type OrderStatusMovedPayload struct {
	OrderID    string `json:"order_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Actor      string `json:"actor,omitempty"`
}

// OrderCancelledPayload announces a cancellation with its side effects.
type OrderCancelledPayload struct {
	OrderID       string  `json:"order_id"`
	Reason        string  `json:"reason,omitempty"`
	CancelledBy   string  `json:"cancelled_by,omitempty"`
	RefundedTotal float64 `json:"refunded_total,omitempty"`
}

// OrderRefundedPayload announces a completed refund.
type OrderRefundedPayload struct {
	OrderID string  `json:"order_id"`
	UserID  string  `json:"user_id"`
	Amount  float64 `json:"amount"`
}

// PaymentSettledPayload announces the outcome of a gateway payment.
type PaymentSettledPayload struct {
	GatewayRef string  `json:"gateway_ref"`
	OrderID    string  `json:"order_id"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount"`
}
