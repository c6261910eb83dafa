package service

import (
	"context"
	"fmt"

	"greenmarket/internal/events"
	"greenmarket/internal/model"
	"greenmarket/internal/orderstatus"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type orderService struct {
	orders    repository.OrderRepository
	inventory InventoryService
	vouchers  VoucherService
	wallets   WalletService
	publisher events.Publisher
	cache     StatusCache
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	inventory InventoryService,
	vouchers VoucherService,
	wallets WalletService,
	publisher events.Publisher,
	cache StatusCache,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orders:    orders,
		inventory: inventory,
		vouchers:  vouchers,
		wallets:   wallets,
		publisher: publisher,
		cache:     cache,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// TransitionOrder moves an order along the lifecycle graph. Cancel,
// return and refund targets run their dedicated flows so their side
// effects always fire; moving into shipping converts the reservation
// into a sale.
func (s *orderService) TransitionOrder(ctx context.Context, id uuid.UUID, req model.TransitionRequest) (*model.Order, error) {
	target := orderstatus.Normalize(req.Status)

	switch target {
	case orderstatus.Cancelled:
		return s.CancelOrder(ctx, id, deref(req.Reason), deref(req.Actor))
	case orderstatus.Returned:
		return s.ReturnOrder(ctx, id, deref(req.Reason))
	case orderstatus.Refunded:
		return s.RefundOrder(ctx, id)
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := orderstatus.ValidateTransition(order.Status, target); err != nil {
		return nil, err
	}
	if order.Status == target {
		return order, nil
	}

	if target == orderstatus.Shipping {
		for _, item := range order.Items {
			if _, err := s.inventory.StockOut(ctx, item.ProductID, item.Quantity, &order.ID, "order shipped", "system"); err != nil {
				return nil, fmt.Errorf("failed to commit stock for %s: %w", item.ProductID, err)
			}
		}
	}

	updated, err := s.orders.UpdateStatus(ctx, id, target, nil, nil)
	if err != nil {
		return nil, err
	}
	s.afterStatusChange(ctx, order.Status, updated, deref(req.Actor))
	return updated, nil
}

// CancelOrder cancels an order and unwinds its checkout side effects:
// outstanding reservations are released, a wallet payment is credited
// back, and the voucher redemption is refunded once no sibling order
// still holds it.
func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID, reason, actor string) (*model.Order, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := orderstatus.ValidateTransition(order.Status, orderstatus.Cancelled); err != nil {
		return nil, err
	}
	if order.Status == orderstatus.Cancelled {
		return order, nil
	}

	var reasonPtr, actorPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	if actor != "" {
		actorPtr = &actor
	}
	updated, err := s.orders.UpdateStatus(ctx, id, orderstatus.Cancelled, reasonPtr, actorPtr)
	if err != nil {
		return nil, err
	}

	if err := s.inventory.ReleaseReservedByOrder(ctx, id, "order cancelled"); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to release reservations on cancel")
	}

	if order.PaymentMethod == model.PaymentMethodWallet && order.Total > 0 {
		if _, err := s.wallets.RefundToWallet(ctx, order.UserID, order.Total, order.ID.String()); err != nil {
			s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to refund wallet payment on cancel")
		}
	}

	if order.VoucherCode != nil {
		if err := s.refundVoucherIfLastHolder(ctx, updated); err != nil {
			s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to refund voucher on cancel")
		}
	}

	s.publisher.Publish(events.EventOrderCancelled, id.String(), events.OrderCancelledPayload{
		OrderID:     id.String(),
		Reason:      reason,
		CancelledBy: actor,
	})
	s.cache.SetStatus(ctx, id, orderstatus.Cancelled)

	s.logger.Info().
		Str("order_id", id.String()).
		Str("reason", reason).
		Str("actor", actor).
		Msg("order cancelled")
	return updated, nil
}

// refundVoucherIfLastHolder refunds the checkout's voucher redemption
// once every sibling order carrying the code is cancelled. A shop
// voucher lives on one order and refunds immediately; a platform voucher
// pro-rated across sellers refunds when its last order dies.
func (s *orderService) refundVoucherIfLastHolder(ctx context.Context, order *model.Order) error {
	siblings, err := s.orders.ListByCheckoutID(ctx, order.CheckoutID)
	if err != nil {
		return err
	}
	for _, o := range siblings {
		if o.VoucherCode == nil || *o.VoucherCode != *order.VoucherCode {
			continue
		}
		if o.Status != orderstatus.Cancelled {
			return nil
		}
	}
	return s.vouchers.Refund(ctx, order.CheckoutID)
}

func (s *orderService) ReturnOrder(ctx context.Context, id uuid.UUID, reason string) (*model.Order, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := orderstatus.ValidateTransition(order.Status, orderstatus.Returned); err != nil {
		return nil, err
	}
	if order.Status == orderstatus.Returned {
		return order, nil
	}

	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	updated, err := s.orders.UpdateStatus(ctx, id, orderstatus.Returned, reasonPtr, nil)
	if err != nil {
		return nil, err
	}
	s.afterStatusChange(ctx, order.Status, updated, "")
	return updated, nil
}

// RefundOrder moves a delivered or returned order to refunded and
// credits the order total back to the buyer's wallet as store credit.
func (s *orderService) RefundOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := orderstatus.ValidateTransition(order.Status, orderstatus.Refunded); err != nil {
		return nil, err
	}
	if order.Status == orderstatus.Refunded {
		return order, nil
	}

	updated, err := s.orders.UpdateStatus(ctx, id, orderstatus.Refunded, nil, nil)
	if err != nil {
		return nil, err
	}

	if order.Total > 0 {
		if _, err := s.wallets.RefundToWallet(ctx, order.UserID, order.Total, order.ID.String()); err != nil {
			s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to credit refund")
		}
	}

	s.publisher.Publish(events.EventOrderRefunded, id.String(), events.OrderRefundedPayload{
		OrderID: id.String(),
		UserID:  order.UserID,
		Amount:  order.Total,
	})
	s.cache.SetStatus(ctx, id, orderstatus.Refunded)

	s.logger.Info().
		Str("order_id", id.String()).
		Float64("amount", order.Total).
		Msg("order refunded")
	return updated, nil
}

func (s *orderService) afterStatusChange(ctx context.Context, from string, order *model.Order, actor string) {
	s.publisher.Publish(events.EventOrderStatusMoved, order.ID.String(), events.OrderStatusMovedPayload{
		OrderID:    order.ID.String(),
		FromStatus: from,
		ToStatus:   order.Status,
		Actor:      actor,
	})
	s.cache.SetStatus(ctx, order.ID, order.Status)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("from", from).
		Str("to", order.Status).
		Msg("order status moved")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
