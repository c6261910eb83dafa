package service

import (
	"context"
	"testing"

	"greenmarket/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateInventory(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with derived status", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		repo.On("GetByProductID", ctx, "prod-1").Return(nil, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Inventory")).Return(nil)
		svc := NewInventoryService(repo, zerolog.Nop())

		inv, err := svc.CreateInventory(ctx, "prod-1", "seller-a", 100, 10)
		require.NoError(t, err)
		assert.Equal(t, model.InventoryStatusInStock, inv.Status)
		assert.False(t, inv.LowStockAlert)
		assert.Equal(t, 100, inv.TotalStock)
	})

	t.Run("low initial stock raises alert", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		repo.On("GetByProductID", ctx, "prod-1").Return(nil, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Inventory")).Return(nil)
		svc := NewInventoryService(repo, zerolog.Nop())

		inv, err := svc.CreateInventory(ctx, "prod-1", "seller-a", 5, 10)
		require.NoError(t, err)
		assert.Equal(t, model.InventoryStatusLowStock, inv.Status)
		assert.True(t, inv.LowStockAlert)
	})

	t.Run("zero stock starts out of stock", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		repo.On("GetByProductID", ctx, "prod-1").Return(nil, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Inventory")).Return(nil)
		svc := NewInventoryService(repo, zerolog.Nop())

		inv, err := svc.CreateInventory(ctx, "prod-1", "seller-a", 0, 10)
		require.NoError(t, err)
		assert.Equal(t, model.InventoryStatusOutOfStock, inv.Status)
	})

	t.Run("duplicate product rejected", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		repo.On("GetByProductID", ctx, "prod-1").Return(&model.Inventory{ProductID: "prod-1"}, nil)
		svc := NewInventoryService(repo, zerolog.Nop())

		_, err := svc.CreateInventory(ctx, "prod-1", "seller-a", 100, 10)
		require.Error(t, err)
		assert.Equal(t, model.ErrCodeInventoryAlreadyExists, model.ErrorCode(err))
	})

	t.Run("missing identifiers rejected", func(t *testing.T) {
		svc := NewInventoryService(new(MockInventoryRepository), zerolog.Nop())

		_, err := svc.CreateInventory(ctx, "", "seller-a", 100, 10)
		assert.Equal(t, model.ErrCodeMissingField, model.ErrorCode(err))
	})

	t.Run("negative stock rejected", func(t *testing.T) {
		svc := NewInventoryService(new(MockInventoryRepository), zerolog.Nop())

		_, err := svc.CreateInventory(ctx, "prod-1", "seller-a", -1, 10)
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	})
}

func TestStockOperationsRejectNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	svc := NewInventoryService(new(MockInventoryRepository), zerolog.Nop())

	_, err := svc.StockIn(ctx, "prod-1", 0, "restock", "", "seller")
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)

	_, err = svc.StockOut(ctx, "prod-1", -3, nil, "sold", "seller")
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)

	_, err = svc.ReserveStock(ctx, "prod-1", 0, nil)
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)

	_, err = svc.ReleaseReserved(ctx, "prod-1", 0, nil, "rollback")
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)

	_, err = svc.AdjustStock(ctx, "prod-1", -1, "audit", "", "seller")
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
}

func TestGetByProductIDNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockInventoryRepository)
	repo.On("GetByProductID", ctx, "ghost").Return(nil, nil)
	svc := NewInventoryService(repo, zerolog.Nop())

	_, err := svc.GetByProductID(ctx, "ghost")
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestReleaseReservedByOrder(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("releases each outstanding hold", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		repo.On("OutstandingReservations", ctx, orderID).
			Return(map[string]int{"prod-1": 2, "prod-2": 1}, nil)
		repo.On("Release", ctx, "prod-1", 2, &orderID, "order cancelled").Return(&model.Inventory{}, nil)
		repo.On("Release", ctx, "prod-2", 1, &orderID, "order cancelled").Return(&model.Inventory{}, nil)
		svc := NewInventoryService(repo, zerolog.Nop())

		require.NoError(t, svc.ReleaseReservedByOrder(ctx, orderID, "order cancelled"))
		repo.AssertExpectations(t)
	})

	t.Run("nothing outstanding is a no-op", func(t *testing.T) {
		repo := new(MockInventoryRepository)
		repo.On("OutstandingReservations", ctx, orderID).Return(map[string]int{}, nil)
		svc := NewInventoryService(repo, zerolog.Nop())

		require.NoError(t, svc.ReleaseReservedByOrder(ctx, orderID, "order cancelled"))
		repo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHistoryClampsInventoryLimit(t *testing.T) {
	ctx := context.Background()
	repo := new(MockInventoryRepository)
	repo.On("ListTransactions", ctx, "prod-1", 50).Return([]model.InventoryTransaction{}, nil)
	svc := NewInventoryService(repo, zerolog.Nop())

	_, err := svc.History(ctx, "prod-1", -1)
	require.NoError(t, err)
	_, err = svc.History(ctx, "prod-1", 500)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
