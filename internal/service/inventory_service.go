package service

import (
	"context"
	"fmt"

	"greenmarket/internal/model"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type inventoryService struct {
	repo   repository.InventoryRepository
	logger zerolog.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(repo repository.InventoryRepository, logger zerolog.Logger) InventoryService {
	return &inventoryService{
		repo:   repo,
		logger: logger.With().Str("service", "inventory").Logger(),
	}
}

func (s *inventoryService) CreateInventory(ctx context.Context, productID, sellerID string, initialStock, lowStockThreshold int) (*model.Inventory, error) {
	if productID == "" || sellerID == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "productId and sellerId are required")
	}
	if initialStock < 0 {
		return nil, model.ErrInvalidQuantity
	}
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}

	existing, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.NewDomainError(model.ErrCodeInventoryAlreadyExists,
			fmt.Sprintf("Inventory already exists for product %s", productID))
	}

	inv := &model.Inventory{
		ID:                uuid.New(),
		ProductID:         productID,
		SellerID:          sellerID,
		TotalStock:        initialStock,
		LowStockThreshold: lowStockThreshold,
		LowStockAlert:     initialStock <= lowStockThreshold,
		Status:            inventoryStatusFor(initialStock, 0, lowStockThreshold),
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", productID).
		Str("seller_id", sellerID).
		Int("initial_stock", initialStock).
		Msg("inventory created")
	return inv, nil
}

func inventoryStatusFor(total, reserved, threshold int) string {
	switch {
	case total-reserved <= 0:
		return model.InventoryStatusOutOfStock
	case total <= threshold:
		return model.InventoryStatusLowStock
	default:
		return model.InventoryStatusInStock
	}
}

func (s *inventoryService) GetByProductID(ctx context.Context, productID string) (*model.Inventory, error) {
	inv, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, model.ErrProductNotFound
	}
	return inv, nil
}

func (s *inventoryService) ListBySeller(ctx context.Context, sellerID string) ([]model.Inventory, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

func (s *inventoryService) ListLowStock(ctx context.Context) ([]model.Inventory, error) {
	return s.repo.ListLowStock(ctx)
}

func (s *inventoryService) StockIn(ctx context.Context, productID string, qty int, reason, notes, actor string) (*model.Inventory, error) {
	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}
	return s.repo.StockIn(ctx, productID, qty, reason, notes, actor)
}

func (s *inventoryService) StockOut(ctx context.Context, productID string, qty int, orderID *uuid.UUID, reason, actor string) (*model.Inventory, error) {
	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}
	return s.repo.StockOut(ctx, productID, qty, orderID, reason, actor)
}

func (s *inventoryService) ReserveStock(ctx context.Context, productID string, qty int, orderID *uuid.UUID) (*model.Inventory, error) {
	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}
	return s.repo.Reserve(ctx, productID, qty, orderID)
}

func (s *inventoryService) ReleaseReserved(ctx context.Context, productID string, qty int, orderID *uuid.UUID, reason string) (*model.Inventory, error) {
	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}
	return s.repo.Release(ctx, productID, qty, orderID, reason)
}

// ReleaseReservedByOrder releases whatever the movement ledger says is
// still held for the order. Running it twice releases nothing the second
// time because the first run's release rows zero the outstanding sums.
func (s *inventoryService) ReleaseReservedByOrder(ctx context.Context, orderID uuid.UUID, reason string) error {
	outstanding, err := s.repo.OutstandingReservations(ctx, orderID)
	if err != nil {
		return err
	}
	for productID, qty := range outstanding {
		if _, err := s.repo.Release(ctx, productID, qty, &orderID, reason); err != nil {
			return fmt.Errorf("failed to release %d of %s: %w", qty, productID, err)
		}
	}
	if len(outstanding) > 0 {
		s.logger.Info().
			Str("order_id", orderID.String()).
			Int("products", len(outstanding)).
			Msg("outstanding reservations released")
	}
	return nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, productID string, newQuantity int, reason, notes, actor string) (*model.Inventory, error) {
	if newQuantity < 0 {
		return nil, model.ErrInvalidQuantity
	}
	return s.repo.Adjust(ctx, productID, newQuantity, reason, notes, actor)
}

func (s *inventoryService) History(ctx context.Context, productID string, limit int) ([]model.InventoryTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListTransactions(ctx, productID, limit)
}
