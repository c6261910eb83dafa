package integration

import (
	"context"
	"sync"
	"testing"

	"greenmarket/internal/events"
	"greenmarket/internal/gateway"
	"greenmarket/internal/model"
	"greenmarket/internal/orderstatus"
	"greenmarket/internal/repository"
	"greenmarket/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkoutStack wires the full service graph against a real database,
// with no-op cache, dedup and publisher collaborators.
type checkoutStack struct {
	inventory repository.InventoryRepository
	wallets   repository.WalletRepository
	vouchers  repository.VoucherRepository
	orders    repository.OrderRepository
	payments  repository.PaymentRepository

	inventorySvc service.InventoryService
	voucherSvc   service.VoucherService
	walletSvc    service.WalletService
	orderSvc     service.OrderService
	checkoutSvc  service.CheckoutService
}

func newCheckoutStack(pool *pgxpool.Pool) *checkoutStack {
	logger := zerolog.Nop()

	s := &checkoutStack{
		inventory: repository.NewInventoryRepository(pool, logger),
		wallets:   repository.NewWalletRepository(pool, logger),
		vouchers:  repository.NewVoucherRepository(pool, logger),
		orders:    repository.NewOrderRepository(pool, logger),
		payments:  repository.NewPaymentRepository(pool, logger),
	}
	cartRepo := repository.NewCartRepository(pool, logger)

	s.inventorySvc = service.NewInventoryService(s.inventory, logger)
	s.voucherSvc = service.NewVoucherService(s.vouchers, logger)
	s.walletSvc = service.NewWalletService(s.wallets, logger)

	cache := service.NewNopStatusCache()
	publisher := events.NewNopPublisher()
	s.orderSvc = service.NewOrderService(s.orders, s.inventorySvc, s.voucherSvc, s.walletSvc, publisher, cache, logger)
	s.checkoutSvc = service.NewCheckoutService(
		cartRepo, s.inventorySvc, s.voucherSvc, s.walletSvc,
		s.orders, s.payments, s.orderSvc,
		gateway.NewMockClient("https://pay.test.local", logger),
		service.NewNopDeduper(), cache, publisher,
		logger,
	)
	return s
}

func multiSellerCart() []model.CartItem {
	return []model.CartItem{
		{ProductID: "prod-a1", SellerID: "seller-a", CategoryID: "veg", Quantity: 2, UnitPrice: 10000},
		{ProductID: "prod-b1", SellerID: "seller-b", CategoryID: "fruit", Quantity: 1, UnitPrice: 10000},
	}
}

func TestCheckoutEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	ctx := context.Background()

	t.Run("wallet checkout reserves stock, splits orders and debits", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)
		stack := newCheckoutStack(db.Pool)

		seedInventory(t, stack.inventory, "prod-a1", "seller-a", 20)
		seedInventory(t, stack.inventory, "prod-b1", "seller-b", 20)
		SeedCart(t, db.Pool, "buyer-1", multiSellerCart())
		_, err := stack.wallets.Credit(ctx, "buyer-1", 200000, model.WalletTxDeposit, "seed", nil, nil)
		require.NoError(t, err)

		result, err := stack.checkoutSvc.Checkout(ctx, model.CheckoutRequest{
			UserID:        "buyer-1",
			PaymentMethod: model.PaymentMethodWallet,
		})
		require.NoError(t, err)
		require.Len(t, result.Orders, 2)

		// 20000 + 10000 subtotal plus standard shipping on both orders.
		wallet, err := stack.wallets.GetByUserID(ctx, "buyer-1")
		require.NoError(t, err)
		assert.Equal(t, 110000.0, wallet.Balance)

		for _, o := range result.Orders {
			stored, err := stack.orders.GetByID(ctx, o.ID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, orderstatus.Pending, stored.Status)
		}

		invA, err := stack.inventory.GetByProductID(ctx, "prod-a1")
		require.NoError(t, err)
		assert.Equal(t, 2, invA.ReservedStock)

		cart, err := repository.NewCartRepository(db.Pool, zerolog.Nop()).GetCart(ctx, "buyer-1")
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})

	t.Run("insufficient wallet balance rolls everything back", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)
		stack := newCheckoutStack(db.Pool)

		seedInventory(t, stack.inventory, "prod-a1", "seller-a", 20)
		seedInventory(t, stack.inventory, "prod-b1", "seller-b", 20)
		SeedCart(t, db.Pool, "buyer-2", multiSellerCart())
		_, err := stack.wallets.Credit(ctx, "buyer-2", 1000, model.WalletTxDeposit, "seed", nil, nil)
		require.NoError(t, err)

		_, err = stack.checkoutSvc.Checkout(ctx, model.CheckoutRequest{
			UserID:        "buyer-2",
			PaymentMethod: model.PaymentMethodWallet,
		})
		require.Error(t, err)
		assert.Equal(t, model.ErrCodeInsufficientBalance, model.ErrorCode(err))

		// Reservations were released and the orders cancelled.
		invA, err := stack.inventory.GetByProductID(ctx, "prod-a1")
		require.NoError(t, err)
		assert.Equal(t, 0, invA.ReservedStock)

		orders, err := stack.orders.ListByUser(ctx, "buyer-2")
		require.NoError(t, err)
		for _, o := range orders {
			assert.Equal(t, orderstatus.Cancelled, o.Status)
		}

		wallet, err := stack.wallets.GetByUserID(ctx, "buyer-2")
		require.NoError(t, err)
		assert.Equal(t, 1000.0, wallet.Balance)
	})

	t.Run("two buyers race for the last units", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)
		stack := newCheckoutStack(db.Pool)

		seedInventory(t, stack.inventory, "prod-scarce", "seller-a", 2)
		item := []model.CartItem{{ProductID: "prod-scarce", SellerID: "seller-a", Quantity: 2, UnitPrice: 10000}}
		SeedCart(t, db.Pool, "racer-1", item)
		SeedCart(t, db.Pool, "racer-2", item)

		var wg sync.WaitGroup
		results := make(chan error, 2)
		for _, user := range []string{"racer-1", "racer-2"} {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				_, err := stack.checkoutSvc.Checkout(ctx, model.CheckoutRequest{
					UserID:        userID,
					PaymentMethod: model.PaymentMethodCOD,
				})
				results <- err
			}(user)
		}
		wg.Wait()
		close(results)

		var succeeded, failed int
		for err := range results {
			if err == nil {
				succeeded++
				continue
			}
			failed++
			assert.Equal(t, model.ErrCodeInsufficientStock, model.ErrorCode(err))
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, failed)

		inv, err := stack.inventory.GetByProductID(ctx, "prod-scarce")
		require.NoError(t, err)
		assert.Equal(t, 2, inv.ReservedStock)
	})

	t.Run("online checkout settles through the gateway callback", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)
		stack := newCheckoutStack(db.Pool)

		seedInventory(t, stack.inventory, "prod-a1", "seller-a", 20)
		SeedCart(t, db.Pool, "buyer-3", []model.CartItem{
			{ProductID: "prod-a1", SellerID: "seller-a", Quantity: 1, UnitPrice: 10000},
		})

		result, err := stack.checkoutSvc.Checkout(ctx, model.CheckoutRequest{
			UserID:        "buyer-3",
			PaymentMethod: model.PaymentMethodOnline,
		})
		require.NoError(t, err)
		require.Len(t, result.Payments, 1)

		payment := result.Payments[0]
		assert.Equal(t, model.PaymentStatusPending, payment.Status)
		require.NotEmpty(t, payment.GatewayRef)

		settled, err := stack.checkoutSvc.ConfirmGatewayCallback(ctx, payment.GatewayRef)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusCompleted, settled.Status)

		order, err := stack.orders.GetByID(ctx, payment.OrderID)
		require.NoError(t, err)
		assert.Equal(t, orderstatus.Processing, order.Status)
	})

	t.Run("shop voucher discounts only its seller's order", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)
		stack := newCheckoutStack(db.Pool)

		seedInventory(t, stack.inventory, "prod-a1", "seller-a", 20)
		seedInventory(t, stack.inventory, "prod-b1", "seller-b", 20)
		SeedCart(t, db.Pool, "buyer-4", multiSellerCart())

		shop := "seller-a"
		require.NoError(t, stack.voucherSvc.Create(ctx, &model.Voucher{
			Code:          "SHOPDEAL",
			DiscountType:  model.DiscountTypeFixed,
			DiscountValue: 5000,
			ShopID:        &shop,
			StartDate:     yesterday(),
			EndDate:       tomorrow(),
		}))

		code := "SHOPDEAL"
		result, err := stack.checkoutSvc.Checkout(ctx, model.CheckoutRequest{
			UserID:        "buyer-4",
			PaymentMethod: model.PaymentMethodCOD,
			VoucherCode:   &code,
		})
		require.NoError(t, err)
		require.Len(t, result.Orders, 2)

		for _, o := range result.Orders {
			if o.SellerID == "seller-a" {
				assert.Equal(t, 5000.0, o.Discount)
				require.NotNil(t, o.VoucherCode)
			} else {
				assert.Equal(t, 0.0, o.Discount)
				assert.Nil(t, o.VoucherCode)
			}
		}

		stored, err := stack.vouchers.GetByCode(ctx, "SHOPDEAL")
		require.NoError(t, err)
		assert.Equal(t, 1, stored.UsedCount)
	})

	t.Run("cancelling the last voucher order refunds the redemption", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)
		stack := newCheckoutStack(db.Pool)

		seedInventory(t, stack.inventory, "prod-a1", "seller-a", 20)
		SeedCart(t, db.Pool, "buyer-5", []model.CartItem{
			{ProductID: "prod-a1", SellerID: "seller-a", Quantity: 2, UnitPrice: 50000},
		})

		require.NoError(t, stack.voucherSvc.Create(ctx, &model.Voucher{
			Code:          "COMEBACK",
			DiscountType:  model.DiscountTypePercent,
			DiscountValue: 10,
			StartDate:     yesterday(),
			EndDate:       tomorrow(),
		}))

		code := "COMEBACK"
		result, err := stack.checkoutSvc.Checkout(ctx, model.CheckoutRequest{
			UserID:        "buyer-5",
			PaymentMethod: model.PaymentMethodCOD,
			VoucherCode:   &code,
		})
		require.NoError(t, err)
		require.Len(t, result.Orders, 1)

		_, err = stack.orderSvc.CancelOrder(ctx, result.Orders[0].ID, "changed my mind", "user")
		require.NoError(t, err)

		stored, err := stack.vouchers.GetByCode(ctx, "COMEBACK")
		require.NoError(t, err)
		assert.Equal(t, 0, stored.UsedCount)

		// Reservations are released too.
		inv, err := stack.inventory.GetByProductID(ctx, "prod-a1")
		require.NoError(t, err)
		assert.Equal(t, 0, inv.ReservedStock)
	})
}
