// Package gateway talks to the external payment provider. Only the mock
// provider is wired in; the real protocol is handled upstream of this
// service.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MockClient simulates the payment gateway. Payment intents are held in
// memory and every callback for a known reference verifies as settled,
// which is enough for local runs and tests.
type MockClient struct {
	baseURL string
	logger  zerolog.Logger

	mu      sync.Mutex
	intents map[string]float64
}

// NewMockClient creates a mock gateway issuing pay URLs under baseURL.
func NewMockClient(baseURL string, logger zerolog.Logger) *MockClient {
	return &MockClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "mock_gateway").Logger(),
		intents: make(map[string]float64),
	}
}

// CreatePayment registers a payment intent and returns its reference and
// pay URL.
func (c *MockClient) CreatePayment(ctx context.Context, orderID uuid.UUID, userID string, amount float64) (string, string, error) {
	ref := "GW-" + strings.ToUpper(uuid.NewString()[:12])

	c.mu.Lock()
	c.intents[ref] = amount
	c.mu.Unlock()

	c.logger.Debug().
		Str("gateway_ref", ref).
		Str("order_id", orderID.String()).
		Float64("amount", amount).
		Msg("payment intent created")
	return ref, fmt.Sprintf("%s/pay/%s", c.baseURL, ref), nil
}

// VerifyCallback confirms any reference this client issued.
func (c *MockClient) VerifyCallback(ctx context.Context, gatewayRef string) (bool, error) {
	c.mu.Lock()
	_, ok := c.intents[gatewayRef]
	c.mu.Unlock()
	return ok, nil
}
