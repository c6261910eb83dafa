package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"greenmarket/internal/events"
	"greenmarket/internal/model"
	"greenmarket/internal/orderstatus"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type checkoutService struct {
	cart      CartProvider
	inventory InventoryService
	vouchers  VoucherService
	wallets   WalletService
	orders    repository.OrderRepository
	payments  repository.PaymentRepository
	orderSvc  OrderService
	gateway   PaymentGatewayClient
	dedup     CallbackDeduper
	cache     StatusCache
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewCheckoutService creates the checkout orchestrator.
func NewCheckoutService(
	cart CartProvider,
	inventory InventoryService,
	vouchers VoucherService,
	wallets WalletService,
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	orderSvc OrderService,
	gateway PaymentGatewayClient,
	dedup CallbackDeduper,
	cache StatusCache,
	publisher events.Publisher,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		cart:      cart,
		inventory: inventory,
		vouchers:  vouchers,
		wallets:   wallets,
		orders:    orders,
		payments:  payments,
		orderSvc:  orderSvc,
		gateway:   gateway,
		dedup:     dedup,
		cache:     cache,
		publisher: publisher,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// compensation is one step of the saga's undo stack.
type compensation struct {
	name string
	fn   func(ctx context.Context) error
}

// compensate runs the stack in reverse order. It runs detached from the
// caller's cancellation: once checkout decides to roll back, every undo
// step must execute even if the client hung up.
func (s *checkoutService) compensate(ctx context.Context, comps []compensation) {
	ctx = context.WithoutCancel(ctx)
	for i := len(comps) - 1; i >= 0; i-- {
		if err := comps[i].fn(ctx); err != nil {
			s.logger.Error().Err(err).Str("step", comps[i].name).Msg("compensation step failed")
		}
	}
}

// Checkout runs the saga: reserve stock, redeem the voucher, create one
// pending order per seller, clear the cart, resolve payment. Every side
// effect pushes its undo onto a stack that unwinds on the first failure.
func (s *checkoutService) Checkout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResult, error) {
	switch req.PaymentMethod {
	case model.PaymentMethodCOD, model.PaymentMethodWallet, model.PaymentMethodOnline:
	default:
		return nil, model.NewDomainError(model.ErrCodeInvalidPaymentMethod,
			fmt.Sprintf("Unsupported payment method: %s", req.PaymentMethod))
	}
	if req.ShippingMethod == "" {
		req.ShippingMethod = model.ShippingMethodStandard
	}

	cart, err := s.cart.GetCart(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, model.ErrEmptyCart
	}

	checkoutID := uuid.New()
	logger := s.logger.With().Str("checkout_id", checkoutID.String()).Str("user_id", req.UserID).Logger()

	sellers, partitions := partitionBySeller(cart.Items)
	orderIDs := make(map[string]uuid.UUID, len(sellers))
	for _, seller := range sellers {
		orderIDs[seller] = uuid.New()
	}

	var comps []compensation

	// Step 1: hold stock for every line item. First failure unwinds the
	// holds taken so far.
	for _, seller := range sellers {
		orderID := orderIDs[seller]
		for _, item := range partitions[seller] {
			item := item
			if _, err := s.inventory.ReserveStock(ctx, item.ProductID, item.Quantity, &orderID); err != nil {
				logger.Warn().Err(err).Str("product_id", item.ProductID).Msg("reservation failed, rolling back")
				s.compensate(ctx, comps)
				return nil, err
			}
			comps = append(comps, compensation{
				name: "release " + item.ProductID,
				fn: func(ctx context.Context) error {
					_, err := s.inventory.ReleaseReserved(ctx, item.ProductID, item.Quantity, &orderID, "checkout rolled back")
					return err
				},
			})
		}
	}

	// Step 2: voucher validation and redemption, once per checkout.
	var voucher *model.Voucher
	var totalDiscount float64
	if req.VoucherCode != nil && *req.VoucherCode != "" {
		v, validation, err := s.vouchers.Validate(ctx, req.UserID, *req.VoucherCode, cart)
		if err != nil {
			s.compensate(ctx, comps)
			return nil, err
		}
		if !validation.Eligible {
			s.compensate(ctx, comps)
			return nil, model.NewDomainError(validation.Code, validation.Reason)
		}
		voucher = v

		applicable := ApplicableAmount(v, cart)
		totalDiscount = s.vouchers.CalculateDiscount(v, applicable)
		if err := s.vouchers.Use(ctx, v, req.UserID, checkoutID, applicable, totalDiscount); err != nil {
			s.compensate(ctx, comps)
			return nil, err
		}
		comps = append(comps, compensation{
			name: "refund voucher",
			fn:   func(ctx context.Context) error { return s.vouchers.Refund(ctx, checkoutID) },
		})
	}

	// Step 3: one pending order per seller.
	orders := s.buildOrders(req, checkoutID, sellers, partitions, orderIDs, voucher, totalDiscount)
	if err := s.orders.CreateMany(ctx, orders); err != nil {
		s.compensate(ctx, comps)
		return nil, err
	}
	comps = append(comps, compensation{
		name: "cancel orders",
		fn: func(ctx context.Context) error {
			reason := "checkout failed"
			actor := "system"
			for _, o := range orders {
				if _, err := s.orders.UpdateStatus(ctx, o.ID, orderstatus.Cancelled, &reason, &actor); err != nil {
					return err
				}
			}
			return nil
		},
	})

	// Step 4: the cart is consumed only once all orders are durable.
	if err := s.cart.ClearCart(ctx, req.UserID); err != nil {
		logger.Error().Err(err).Msg("failed to clear cart after checkout")
	}

	// Step 5: payment.
	result := &model.CheckoutResult{CheckoutID: checkoutID, Orders: orders}
	switch req.PaymentMethod {
	case model.PaymentMethodWallet:
		var grandTotal float64
		for _, o := range orders {
			grandTotal += o.Total
		}
		if _, err := s.wallets.PayWithWallet(ctx, req.UserID, grandTotal, checkoutID.String()); err != nil {
			logger.Warn().Err(err).Float64("total", grandTotal).Msg("wallet payment failed, rolling back")
			s.compensate(ctx, comps)
			return nil, err
		}

	case model.PaymentMethodOnline:
		for _, o := range orders {
			ref, payURL, err := s.gateway.CreatePayment(ctx, o.ID, req.UserID, o.Total)
			if err != nil {
				s.compensate(ctx, comps)
				return nil, fmt.Errorf("failed to create gateway payment: %w", err)
			}
			payment := model.Payment{
				ID:         uuid.New(),
				OrderID:    o.ID,
				UserID:     req.UserID,
				Amount:     o.Total,
				Method:     model.PaymentMethodOnline,
				Status:     model.PaymentStatusPending,
				GatewayRef: ref,
				PayURL:     payURL,
			}
			if err := s.payments.Create(ctx, &payment); err != nil {
				s.compensate(ctx, comps)
				return nil, err
			}
			comps = append(comps, compensation{
				name: "fail payment " + ref,
				fn: func(ctx context.Context) error {
					_, err := s.payments.Settle(ctx, ref, model.PaymentStatusFailed)
					return err
				},
			})
			result.Payments = append(result.Payments, payment)
		}
	}

	orderIDStrings := make([]string, len(orders))
	var grandTotal float64
	for i, o := range orders {
		orderIDStrings[i] = o.ID.String()
		grandTotal += o.Total
		s.cache.SetStatus(ctx, o.ID, o.Status)
	}
	s.publisher.Publish(events.EventCheckoutCompleted, checkoutID.String(), events.CheckoutCompletedPayload{
		CheckoutID:    checkoutID.String(),
		UserID:        req.UserID,
		OrderIDs:      orderIDStrings,
		PaymentMethod: req.PaymentMethod,
		Total:         grandTotal,
	})

	logger.Info().
		Int("orders", len(orders)).
		Float64("total", grandTotal).
		Str("payment_method", req.PaymentMethod).
		Msg("checkout completed")
	return result, nil
}

// buildOrders materialises one pending order per seller with the voucher
// discount distributed by scope.
func (s *checkoutService) buildOrders(
	req model.CheckoutRequest,
	checkoutID uuid.UUID,
	sellers []string,
	partitions map[string][]model.CartItem,
	orderIDs map[string]uuid.UUID,
	voucher *model.Voucher,
	totalDiscount float64,
) []model.Order {
	subtotals := make([]float64, len(sellers))
	for i, seller := range sellers {
		for _, item := range partitions[seller] {
			subtotals[i] += item.UnitPrice * float64(item.Quantity)
		}
	}
	discounts := distributeDiscount(sellers, subtotals, voucher, totalDiscount)

	shippingFee := model.ShippingFeeFor(req.ShippingMethod)
	address := req.ShippingAddress.String()

	orders := make([]model.Order, 0, len(sellers))
	for i, seller := range sellers {
		orderID := orderIDs[seller]
		items := make([]model.OrderItem, 0, len(partitions[seller]))
		for _, ci := range partitions[seller] {
			items = append(items, model.OrderItem{
				ID:        uuid.New(),
				OrderID:   orderID,
				ProductID: ci.ProductID,
				Quantity:  ci.Quantity,
				UnitPrice: ci.UnitPrice,
			})
		}

		order := model.Order{
			ID:              orderID,
			CheckoutID:      checkoutID,
			UserID:          req.UserID,
			SellerID:        seller,
			Items:           items,
			Subtotal:        subtotals[i],
			Discount:        discounts[i],
			ShippingFee:     shippingFee,
			Total:           subtotals[i] - discounts[i] + shippingFee,
			Status:          orderstatus.Pending,
			PaymentMethod:   req.PaymentMethod,
			ShippingMethod:  req.ShippingMethod,
			ShippingAddress: address,
		}
		if voucher != nil && (voucher.IsPlatformWide() || *voucher.ShopID == seller) {
			code := voucher.Code
			order.VoucherCode = &code
		}
		orders = append(orders, order)
	}
	return orders
}

// distributeDiscount assigns the voucher discount to seller orders. A
// shop voucher lands whole on the matching seller. A platform voucher is
// pro-rated by subtotal share using largest-remainder rounding so the
// parts always sum to the exact total.
func distributeDiscount(sellers []string, subtotals []float64, voucher *model.Voucher, total float64) []float64 {
	discounts := make([]float64, len(sellers))
	if voucher == nil || total <= 0 {
		return discounts
	}

	if !voucher.IsPlatformWide() {
		for i, seller := range sellers {
			if seller == *voucher.ShopID {
				discounts[i] = total
			}
		}
		return discounts
	}

	var combined float64
	for _, sub := range subtotals {
		combined += sub
	}
	if combined <= 0 {
		return discounts
	}

	type share struct {
		idx       int
		remainder float64
	}
	var assigned float64
	shares := make([]share, len(sellers))
	for i, sub := range subtotals {
		exact := total * sub / combined
		discounts[i] = math.Floor(exact)
		assigned += discounts[i]
		shares[i] = share{idx: i, remainder: exact - discounts[i]}
	}

	sort.Slice(shares, func(a, b int) bool { return shares[a].remainder > shares[b].remainder })
	for i := 0; assigned < total && i < len(shares); i++ {
		discounts[shares[i].idx]++
		assigned++
	}
	return discounts
}

// partitionBySeller groups cart items per seller with a deterministic
// seller order, so reservation and compensation always walk the same
// sequence.
func partitionBySeller(items []model.CartItem) ([]string, map[string][]model.CartItem) {
	partitions := make(map[string][]model.CartItem)
	for _, item := range items {
		partitions[item.SellerID] = append(partitions[item.SellerID], item)
	}
	sellers := make([]string, 0, len(partitions))
	for seller := range partitions {
		sellers = append(sellers, seller)
	}
	sort.Strings(sellers)
	return sellers, partitions
}

// ConfirmGatewayCallback settles an online payment when the gateway
// calls back. Duplicate callbacks are claimed once via the deduper; the
// payment row's own pending guard backs it up. A failed or unverified
// callback cancels the order and unwinds its checkout side effects.
func (s *checkoutService) ConfirmGatewayCallback(ctx context.Context, gatewayRef string) (*model.Payment, error) {
	payment, err := s.payments.GetByGatewayRef(ctx, gatewayRef)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, model.NewDomainError(model.ErrCodePaymentNotFound, "Payment not found for gateway reference")
	}

	if !s.dedup.Claim(ctx, gatewayRef) {
		s.logger.Info().Str("gateway_ref", gatewayRef).Msg("duplicate gateway callback ignored")
		return payment, nil
	}

	verified, err := s.gateway.VerifyCallback(ctx, gatewayRef)
	if err != nil {
		return nil, fmt.Errorf("failed to verify gateway callback: %w", err)
	}

	// Settlement must finish even if the gateway's request times out.
	ctx = context.WithoutCancel(ctx)

	if !verified {
		settled, err := s.payments.Settle(ctx, gatewayRef, model.PaymentStatusFailed)
		if err != nil {
			return nil, err
		}
		if _, err := s.orderSvc.CancelOrder(ctx, payment.OrderID, "payment failed", "system"); err != nil {
			s.logger.Error().Err(err).Str("order_id", payment.OrderID.String()).Msg("failed to cancel order after failed payment")
		}
		s.publisher.Publish(events.EventPaymentSettled, payment.OrderID.String(), events.PaymentSettledPayload{
			GatewayRef: gatewayRef,
			OrderID:    payment.OrderID.String(),
			Status:     model.PaymentStatusFailed,
			Amount:     payment.Amount,
		})
		return settled, nil
	}

	settled, err := s.payments.Settle(ctx, gatewayRef, model.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	if settled.Status == model.PaymentStatusCompleted {
		if _, err := s.orderSvc.TransitionOrder(ctx, payment.OrderID, model.TransitionRequest{Status: orderstatus.Processing}); err != nil {
			s.logger.Error().Err(err).Str("order_id", payment.OrderID.String()).Msg("failed to move order to processing after payment")
		}
	}
	s.publisher.Publish(events.EventPaymentSettled, payment.OrderID.String(), events.PaymentSettledPayload{
		GatewayRef: gatewayRef,
		OrderID:    payment.OrderID.String(),
		Status:     settled.Status,
		Amount:     settled.Amount,
	})

	s.logger.Info().
		Str("gateway_ref", gatewayRef).
		Str("order_id", payment.OrderID.String()).
		Str("status", settled.Status).
		Msg("gateway callback settled")
	return settled, nil
}
