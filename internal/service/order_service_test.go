package service

import (
	"context"
	"testing"

	"greenmarket/internal/events"
	"greenmarket/internal/model"
	"greenmarket/internal/orderstatus"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderServiceForTest(orders *MockOrderRepository, inventory *MockInventoryService, vouchers *MockVoucherService, wallets *MockWalletService) OrderService {
	return NewOrderService(orders, inventory, vouchers, wallets, events.NewNopPublisher(), NewNopStatusCache(), zerolog.Nop())
}

func pendingOrder() *model.Order {
	id := uuid.New()
	return &model.Order{
		ID:            id,
		CheckoutID:    uuid.New(),
		UserID:        "user-1",
		SellerID:      "seller-a",
		Status:        orderstatus.Pending,
		PaymentMethod: model.PaymentMethodCOD,
		Subtotal:      20000,
		ShippingFee:   30000,
		Total:         50000,
		Items: []model.OrderItem{
			{OrderID: id, ProductID: "prod-1", Quantity: 2, UnitPrice: 10000},
		},
	}
}

func TestTransitionOrderRejectsInvalidEdge(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder()

	orders := new(MockOrderRepository)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	svc := newOrderServiceForTest(orders, new(MockInventoryService), new(MockVoucherService), new(MockWalletService))

	_, err := svc.TransitionOrder(ctx, order.ID, model.TransitionRequest{Status: orderstatus.Shipping})
	require.Error(t, err)
	assert.Equal(t, model.ErrCodeInvalidTransition, model.ErrorCode(err))
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionOrderSameStatusIsNoOp(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder()

	orders := new(MockOrderRepository)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	svc := newOrderServiceForTest(orders, new(MockInventoryService), new(MockVoucherService), new(MockWalletService))

	got, err := svc.TransitionOrder(ctx, order.ID, model.TransitionRequest{Status: "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, order, got)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionOrderIntoShippingCommitsStock(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder()
	order.Status = orderstatus.Packed

	shipped := *order
	shipped.Status = orderstatus.Shipping

	orders := new(MockOrderRepository)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("UpdateStatus", ctx, order.ID, orderstatus.Shipping, (*string)(nil), (*string)(nil)).Return(&shipped, nil)

	inventory := new(MockInventoryService)
	inventory.On("StockOut", ctx, "prod-1", 2, &order.ID, "order shipped", "system").
		Return(&model.Inventory{ProductID: "prod-1"}, nil)

	svc := newOrderServiceForTest(orders, inventory, new(MockVoucherService), new(MockWalletService))

	got, err := svc.TransitionOrder(ctx, order.ID, model.TransitionRequest{Status: orderstatus.Shipping})
	require.NoError(t, err)
	assert.Equal(t, orderstatus.Shipping, got.Status)
	inventory.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestCancelOrderReleasesStockAndRefundsWallet(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder()
	order.PaymentMethod = model.PaymentMethodWallet

	cancelled := *order
	cancelled.Status = orderstatus.Cancelled

	orders := new(MockOrderRepository)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("UpdateStatus", ctx, order.ID, orderstatus.Cancelled, mock.AnythingOfType("*string"), mock.AnythingOfType("*string")).
		Return(&cancelled, nil)

	inventory := new(MockInventoryService)
	inventory.On("ReleaseReservedByOrder", ctx, order.ID, "order cancelled").Return(nil)

	wallets := new(MockWalletService)
	wallets.On("RefundToWallet", ctx, order.UserID, order.Total, order.ID.String()).
		Return(&model.WalletTransaction{ID: uuid.New()}, nil)

	svc := newOrderServiceForTest(orders, inventory, new(MockVoucherService), wallets)

	got, err := svc.CancelOrder(ctx, order.ID, "changed my mind", "user")
	require.NoError(t, err)
	assert.Equal(t, orderstatus.Cancelled, got.Status)
	inventory.AssertExpectations(t)
	wallets.AssertExpectations(t)
}

func TestCancelOrderCODDoesNotRefundWallet(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder()

	cancelled := *order
	cancelled.Status = orderstatus.Cancelled

	orders := new(MockOrderRepository)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("UpdateStatus", ctx, order.ID, orderstatus.Cancelled, mock.AnythingOfType("*string"), mock.AnythingOfType("*string")).
		Return(&cancelled, nil)

	inventory := new(MockInventoryService)
	inventory.On("ReleaseReservedByOrder", ctx, order.ID, "order cancelled").Return(nil)

	wallets := new(MockWalletService)
	svc := newOrderServiceForTest(orders, inventory, new(MockVoucherService), wallets)

	_, err := svc.CancelOrder(ctx, order.ID, "", "")
	require.NoError(t, err)
	wallets.AssertNotCalled(t, "RefundToWallet", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelOrderRejectsDelivered(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder()
	order.Status = orderstatus.Delivered

	orders := new(MockOrderRepository)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	svc := newOrderServiceForTest(orders, new(MockInventoryService), new(MockVoucherService), new(MockWalletService))

	_, err := svc.CancelOrder(ctx, order.ID, "too late", "user")
	require.Error(t, err)
	assert.Equal(t, model.ErrCodeInvalidTransition, model.ErrorCode(err))
}

func TestCancelOrderRefundsVoucherOnlyWhenLastHolderDies(t *testing.T) {
	ctx := context.Background()
	code := "SALE10"

	t.Run("sibling still active keeps redemption", func(t *testing.T) {
		order := pendingOrder()
		order.VoucherCode = &code

		cancelled := *order
		cancelled.Status = orderstatus.Cancelled

		sibling := pendingOrder()
		sibling.CheckoutID = order.CheckoutID
		sibling.VoucherCode = &code
		sibling.Status = orderstatus.Processing

		orders := new(MockOrderRepository)
		orders.On("GetByID", ctx, order.ID).Return(order, nil)
		orders.On("UpdateStatus", ctx, order.ID, orderstatus.Cancelled, mock.AnythingOfType("*string"), mock.AnythingOfType("*string")).
			Return(&cancelled, nil)
		orders.On("ListByCheckoutID", ctx, order.CheckoutID).Return([]model.Order{cancelled, *sibling}, nil)

		inventory := new(MockInventoryService)
		inventory.On("ReleaseReservedByOrder", ctx, order.ID, "order cancelled").Return(nil)

		vouchers := new(MockVoucherService)
		svc := newOrderServiceForTest(orders, inventory, vouchers, new(MockWalletService))

		_, err := svc.CancelOrder(ctx, order.ID, "", "")
		require.NoError(t, err)
		vouchers.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
	})

	t.Run("last cancelled order refunds redemption", func(t *testing.T) {
		order := pendingOrder()
		order.VoucherCode = &code

		cancelled := *order
		cancelled.Status = orderstatus.Cancelled

		sibling := pendingOrder()
		sibling.CheckoutID = order.CheckoutID
		sibling.VoucherCode = &code
		sibling.Status = orderstatus.Cancelled

		orders := new(MockOrderRepository)
		orders.On("GetByID", ctx, order.ID).Return(order, nil)
		orders.On("UpdateStatus", ctx, order.ID, orderstatus.Cancelled, mock.AnythingOfType("*string"), mock.AnythingOfType("*string")).
			Return(&cancelled, nil)
		orders.On("ListByCheckoutID", ctx, order.CheckoutID).Return([]model.Order{cancelled, *sibling}, nil)

		inventory := new(MockInventoryService)
		inventory.On("ReleaseReservedByOrder", ctx, order.ID, "order cancelled").Return(nil)

		vouchers := new(MockVoucherService)
		vouchers.On("Refund", ctx, order.CheckoutID).Return(nil)
		svc := newOrderServiceForTest(orders, inventory, vouchers, new(MockWalletService))

		_, err := svc.CancelOrder(ctx, order.ID, "", "")
		require.NoError(t, err)
		vouchers.AssertExpectations(t)
	})
}

func TestRefundOrderCreditsWallet(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder()
	order.Status = orderstatus.Delivered

	refunded := *order
	refunded.Status = orderstatus.Refunded

	orders := new(MockOrderRepository)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("UpdateStatus", ctx, order.ID, orderstatus.Refunded, (*string)(nil), (*string)(nil)).Return(&refunded, nil)

	wallets := new(MockWalletService)
	wallets.On("RefundToWallet", ctx, order.UserID, order.Total, order.ID.String()).
		Return(&model.WalletTransaction{ID: uuid.New()}, nil)

	svc := newOrderServiceForTest(orders, new(MockInventoryService), new(MockVoucherService), wallets)

	got, err := svc.RefundOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, orderstatus.Refunded, got.Status)
	wallets.AssertExpectations(t)
}

func TestReturnOrderRequiresShippingOrDelivered(t *testing.T) {
	ctx := context.Background()
	order := pendingOrder()

	orders := new(MockOrderRepository)
	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	svc := newOrderServiceForTest(orders, new(MockInventoryService), new(MockVoucherService), new(MockWalletService))

	_, err := svc.ReturnOrder(ctx, order.ID, "damaged")
	require.Error(t, err)
	assert.Equal(t, model.ErrCodeInvalidTransition, model.ErrorCode(err))
}

func TestGetByIDNotFound(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	orders := new(MockOrderRepository)
	orders.On("GetByID", ctx, id).Return(nil, nil)
	svc := newOrderServiceForTest(orders, new(MockInventoryService), new(MockVoucherService), new(MockWalletService))

	_, err := svc.GetByID(ctx, id)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}
