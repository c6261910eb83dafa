package service

import (
	"context"

	"greenmarket/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockInventoryRepository is a mock implementation of repository.InventoryRepository.
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Create(ctx context.Context, inv *model.Inventory) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInventoryRepository) GetByProductID(ctx context.Context, productID string) (*model.Inventory, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) ListBySeller(ctx context.Context, sellerID string) ([]model.Inventory, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) ListLowStock(ctx context.Context) ([]model.Inventory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) StockIn(ctx context.Context, productID string, qty int, reason, notes, actor string) (*model.Inventory, error) {
	args := m.Called(ctx, productID, qty, reason, notes, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) StockOut(ctx context.Context, productID string, qty int, orderID *uuid.UUID, reason, actor string) (*model.Inventory, error) {
	args := m.Called(ctx, productID, qty, orderID, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) Reserve(ctx context.Context, productID string, qty int, orderID *uuid.UUID) (*model.Inventory, error) {
	args := m.Called(ctx, productID, qty, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) Release(ctx context.Context, productID string, qty int, orderID *uuid.UUID, reason string) (*model.Inventory, error) {
	args := m.Called(ctx, productID, qty, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) Adjust(ctx context.Context, productID string, newQuantity int, reason, notes, actor string) (*model.Inventory, error) {
	args := m.Called(ctx, productID, newQuantity, reason, notes, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryRepository) OutstandingReservations(ctx context.Context, orderID uuid.UUID) (map[string]int, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockInventoryRepository) ListTransactions(ctx context.Context, productID string, limit int) ([]model.InventoryTransaction, error) {
	args := m.Called(ctx, productID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.InventoryTransaction), args.Error(1)
}

// MockVoucherRepository is a mock implementation of repository.VoucherRepository.
type MockVoucherRepository struct {
	mock.Mock
}

func (m *MockVoucherRepository) Create(ctx context.Context, v *model.Voucher) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVoucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) Use(ctx context.Context, voucherID uuid.UUID, userID string, orderID uuid.UUID, orderAmount, discountAmount float64) (*model.VoucherUsage, error) {
	args := m.Called(ctx, voucherID, userID, orderID, orderAmount, discountAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VoucherUsage), args.Error(1)
}

func (m *MockVoucherRepository) RefundUsage(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockVoucherRepository) GetUsage(ctx context.Context, userID string, orderID uuid.UUID) (*model.VoucherUsage, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VoucherUsage), args.Error(1)
}

func (m *MockVoucherRepository) CountUsageByUser(ctx context.Context, userID string, voucherID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID, voucherID)
	return args.Int(0), args.Error(1)
}

func (m *MockVoucherRepository) GetUserVoucher(ctx context.Context, userID, code string) (*model.UserVoucher, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserVoucher), args.Error(1)
}

func (m *MockVoucherRepository) MarkUserVoucherUsed(ctx context.Context, userID, code string, orderID uuid.UUID) error {
	args := m.Called(ctx, userID, code, orderID)
	return args.Error(0)
}

func (m *MockVoucherRepository) GrantToUser(ctx context.Context, uv *model.UserVoucher) error {
	args := m.Called(ctx, uv)
	return args.Error(0)
}

func (m *MockVoucherRepository) ListUserVouchers(ctx context.Context, userID string) ([]model.UserVoucher, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserVoucher), args.Error(1)
}

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateMany(ctx context.Context, orders []model.Order) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, reason, actor *string) (*model.Order, error) {
	args := m.Called(ctx, id, status, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCheckoutID(ctx context.Context, checkoutID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, checkoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetOrCreate(ctx context.Context, userID string) (*model.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID string) (*model.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, userID string, amount float64, txType, description string, refID, refType *string) (*model.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, txType, description, refID, refType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *MockWalletRepository) Debit(ctx context.Context, userID string, amount float64, txType, description string, refID, refType *string) (*model.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, txType, description, refID, refType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *MockWalletRepository) CreatePendingDeposit(ctx context.Context, userID string, amount float64, description string) (*model.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *MockWalletRepository) CompleteDeposit(ctx context.Context, transactionID uuid.UUID) (*model.WalletTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *MockWalletRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]model.WalletTransaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WalletTransaction), args.Error(1)
}

// MockPaymentRepository is a mock implementation of repository.PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByGatewayRef(ctx context.Context, gatewayRef string) (*model.Payment, error) {
	args := m.Called(ctx, gatewayRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Settle(ctx context.Context, gatewayRef, status string) (*model.Payment, error) {
	args := m.Called(ctx, gatewayRef, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

// MockCartProvider is a mock implementation of CartProvider.
type MockCartProvider struct {
	mock.Mock
}

func (m *MockCartProvider) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartProvider) ClearCart(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockGatewayClient is a mock implementation of PaymentGatewayClient.
type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) CreatePayment(ctx context.Context, orderID uuid.UUID, userID string, amount float64) (string, string, error) {
	args := m.Called(ctx, orderID, userID, amount)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockGatewayClient) VerifyCallback(ctx context.Context, gatewayRef string) (bool, error) {
	args := m.Called(ctx, gatewayRef)
	return args.Bool(0), args.Error(1)
}

// MockInventoryService is a mock implementation of InventoryService.
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) CreateInventory(ctx context.Context, productID, sellerID string, initialStock, lowStockThreshold int) (*model.Inventory, error) {
	args := m.Called(ctx, productID, sellerID, initialStock, lowStockThreshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryService) GetByProductID(ctx context.Context, productID string) (*model.Inventory, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryService) ListBySeller(ctx context.Context, sellerID string) ([]model.Inventory, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Inventory), args.Error(1)
}

func (m *MockInventoryService) ListLowStock(ctx context.Context) ([]model.Inventory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Inventory), args.Error(1)
}

func (m *MockInventoryService) StockIn(ctx context.Context, productID string, qty int, reason, notes, actor string) (*model.Inventory, error) {
	args := m.Called(ctx, productID, qty, reason, notes, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryService) StockOut(ctx context.Context, productID string, qty int, orderID *uuid.UUID, reason, actor string) (*model.Inventory, error) {
	args := m.Called(ctx, productID, qty, orderID, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryService) ReserveStock(ctx context.Context, productID string, qty int, orderID *uuid.UUID) (*model.Inventory, error) {
	args := m.Called(ctx, productID, qty, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryService) ReleaseReserved(ctx context.Context, productID string, qty int, orderID *uuid.UUID, reason string) (*model.Inventory, error) {
	args := m.Called(ctx, productID, qty, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryService) ReleaseReservedByOrder(ctx context.Context, orderID uuid.UUID, reason string) error {
	args := m.Called(ctx, orderID, reason)
	return args.Error(0)
}

func (m *MockInventoryService) AdjustStock(ctx context.Context, productID string, newQuantity int, reason, notes, actor string) (*model.Inventory, error) {
	args := m.Called(ctx, productID, newQuantity, reason, notes, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Inventory), args.Error(1)
}

func (m *MockInventoryService) History(ctx context.Context, productID string, limit int) ([]model.InventoryTransaction, error) {
	args := m.Called(ctx, productID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.InventoryTransaction), args.Error(1)
}

// MockVoucherService is a mock implementation of VoucherService.
type MockVoucherService struct {
	mock.Mock
}

func (m *MockVoucherService) Create(ctx context.Context, v *model.Voucher) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVoucherService) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Voucher), args.Error(1)
}

func (m *MockVoucherService) Validate(ctx context.Context, userID, code string, cart *model.Cart) (*model.Voucher, *model.VoucherValidation, error) {
	args := m.Called(ctx, userID, code, cart)
	var v *model.Voucher
	if args.Get(0) != nil {
		v = args.Get(0).(*model.Voucher)
	}
	var validation *model.VoucherValidation
	if args.Get(1) != nil {
		validation = args.Get(1).(*model.VoucherValidation)
	}
	return v, validation, args.Error(2)
}

func (m *MockVoucherService) CalculateDiscount(v *model.Voucher, amount float64) float64 {
	args := m.Called(v, amount)
	return args.Get(0).(float64)
}

func (m *MockVoucherService) Use(ctx context.Context, v *model.Voucher, userID string, checkoutID uuid.UUID, orderAmount, discountAmount float64) error {
	args := m.Called(ctx, v, userID, checkoutID, orderAmount, discountAmount)
	return args.Error(0)
}

func (m *MockVoucherService) Refund(ctx context.Context, checkoutID uuid.UUID) error {
	args := m.Called(ctx, checkoutID)
	return args.Error(0)
}

func (m *MockVoucherService) GrantToUser(ctx context.Context, userID, code string) (*model.UserVoucher, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserVoucher), args.Error(1)
}

func (m *MockVoucherService) ListUserVouchers(ctx context.Context, userID string) ([]model.UserVoucher, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserVoucher), args.Error(1)
}

// MockWalletService is a mock implementation of WalletService.
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetWallet(ctx context.Context, userID string) (*model.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletService) Deposit(ctx context.Context, userID string, amount float64, method string) (*model.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *MockWalletService) CompleteDeposit(ctx context.Context, transactionID uuid.UUID) (*model.WalletTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *MockWalletService) Withdraw(ctx context.Context, userID string, amount float64) (*model.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *MockWalletService) PayWithWallet(ctx context.Context, userID string, amount float64, orderRef string) (*model.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, orderRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *MockWalletService) RefundToWallet(ctx context.Context, userID string, amount float64, orderRef string) (*model.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, orderRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *MockWalletService) History(ctx context.Context, userID string, limit int) ([]model.WalletTransaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WalletTransaction), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) TransitionOrder(ctx context.Context, id uuid.UUID, req model.TransitionRequest) (*model.Order, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, id uuid.UUID, reason, actor string) (*model.Order, error) {
	args := m.Called(ctx, id, reason, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ReturnOrder(ctx context.Context, id uuid.UUID, reason string) (*model.Order, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) RefundOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}
