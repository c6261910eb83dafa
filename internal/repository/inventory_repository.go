package repository

import (
	"context"
	"errors"
	"fmt"

	"greenmarket/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// inventoryRepository implements InventoryRepository using PostgreSQL.
// Guarded counter mutations and their ledger appends run as one
// data-modifying CTE statement, so the "decrement if available" check
// can never be split from the write. Clamped mutations (release,
// adjust) lock the row first and compute the clamp from the locked
// state, so the logged quantity always equals the counter movement.
type inventoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewInventoryRepository creates a new PostgreSQL-backed inventory repository.
func NewInventoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) InventoryRepository {
	return &inventoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "inventory").Logger(),
	}
}

const inventoryColumns = `id, product_id, seller_id, total_stock, reserved_stock, sold_stock,
	low_stock_threshold, low_stock_alert, status, created_at, updated_at`

func scanInventory(row pgx.Row) (*model.Inventory, error) {
	var inv model.Inventory
	err := row.Scan(
		&inv.ID,
		&inv.ProductID,
		&inv.SellerID,
		&inv.TotalStock,
		&inv.ReservedStock,
		&inv.SoldStock,
		&inv.LowStockThreshold,
		&inv.LowStockAlert,
		&inv.Status,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts a new inventory row for a product.
func (r *inventoryRepository) Create(ctx context.Context, inv *model.Inventory) error {
	query := `
		INSERT INTO inventories (id, product_id, seller_id, total_stock, reserved_stock, sold_stock,
			low_stock_threshold, low_stock_alert, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, 0, $5, $4 <= $5, $6, now(), now())
	`

	_, err := r.pool.Exec(ctx, query,
		inv.ID, inv.ProductID, inv.SellerID, inv.TotalStock, inv.LowStockThreshold, inv.Status)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", inv.ProductID).Msg("failed to create inventory")
		return fmt.Errorf("failed to create inventory: %w", err)
	}

	r.logger.Debug().Str("product_id", inv.ProductID).Msg("inventory created")
	return nil
}

// GetByProductID retrieves an inventory row, or nil when absent.
func (r *inventoryRepository) GetByProductID(ctx context.Context, productID string) (*model.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventories WHERE product_id = $1`

	inv, err := scanInventory(r.pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to query inventory")
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	return inv, nil
}

// ListBySeller retrieves all inventory rows owned by a seller.
func (r *inventoryRepository) ListBySeller(ctx context.Context, sellerID string) ([]model.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventories WHERE seller_id = $1 ORDER BY product_id`
	return r.queryInventories(ctx, query, sellerID)
}

// ListLowStock retrieves rows whose low-stock alert is raised.
func (r *inventoryRepository) ListLowStock(ctx context.Context) ([]model.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventories WHERE low_stock_alert ORDER BY product_id`
	return r.queryInventories(ctx, query)
}

func (r *inventoryRepository) queryInventories(ctx context.Context, query string, args ...any) ([]model.Inventory, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query inventories")
		return nil, fmt.Errorf("failed to query inventories: %w", err)
	}
	defer rows.Close()

	var out []model.Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		out = append(out, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventories: %w", err)
	}
	return out, nil
}

// StockIn increases total stock and appends a stock_in ledger row.
func (r *inventoryRepository) StockIn(ctx context.Context, productID string, qty int, reason, notes, actor string) (*model.Inventory, error) {
	query := `
		WITH updated AS (
			UPDATE inventories
			SET total_stock = total_stock + $2,
			    low_stock_alert = (total_stock + $2) <= low_stock_threshold,
			    status = CASE WHEN (total_stock + $2) - reserved_stock <= 0 THEN 'out_of_stock'
			                  WHEN (total_stock + $2) <= low_stock_threshold THEN 'low_stock'
			                  ELSE 'in_stock' END,
			    updated_at = now()
			WHERE product_id = $1
			RETURNING *
		), logged AS (
			INSERT INTO inventory_transactions
				(id, inventory_id, product_id, type, quantity, balance_after, reason, notes, order_id, created_by, created_at)
			SELECT gen_random_uuid(), id, product_id, 'stock_in', $2, total_stock, $3, $4, NULL, $5, now()
			FROM updated
		)
		SELECT ` + inventoryColumns + ` FROM updated
	`

	var inv *model.Inventory
	err := withWriteRetry(ctx, r.logger, "stock_in", func(ctx context.Context) error {
		var err error
		inv, err = scanInventory(r.pool.QueryRow(ctx, query, productID, qty, reason, notes, actor))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to stock in")
		return nil, fmt.Errorf("failed to stock in: %w", err)
	}
	return inv, nil
}

// StockOut decreases total stock, consuming any matching reservation and
// counting the quantity as sold. The total_stock >= qty guard is part of
// the update predicate.
func (r *inventoryRepository) StockOut(ctx context.Context, productID string, qty int, orderID *uuid.UUID, reason, actor string) (*model.Inventory, error) {
	query := `
		WITH updated AS (
			UPDATE inventories
			SET total_stock = total_stock - $2,
			    reserved_stock = reserved_stock - LEAST(reserved_stock, $2),
			    sold_stock = sold_stock + $2,
			    low_stock_alert = (total_stock - $2) <= low_stock_threshold,
			    status = CASE WHEN (total_stock - $2) - (reserved_stock - LEAST(reserved_stock, $2)) <= 0 THEN 'out_of_stock'
			                  WHEN (total_stock - $2) <= low_stock_threshold THEN 'low_stock'
			                  ELSE 'in_stock' END,
			    updated_at = now()
			WHERE product_id = $1 AND total_stock >= $2
			RETURNING *
		), logged AS (
			INSERT INTO inventory_transactions
				(id, inventory_id, product_id, type, quantity, balance_after, reason, notes, order_id, created_by, created_at)
			SELECT gen_random_uuid(), id, product_id, 'stock_out', -$2, total_stock, $3, '', $4, $5, now()
			FROM updated
		)
		SELECT ` + inventoryColumns + ` FROM updated
	`

	var inv *model.Inventory
	err := withWriteRetry(ctx, r.logger, "stock_out", func(ctx context.Context) error {
		var err error
		inv, err = scanInventory(r.pool.QueryRow(ctx, query, productID, qty, reason, orderID, actor))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missingOrShort(ctx, productID, model.ErrCodeProductOutOfStock,
				fmt.Sprintf("Not enough stock to remove %d of product %s", qty, productID))
		}
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to stock out")
		return nil, fmt.Errorf("failed to stock out: %w", err)
	}
	return inv, nil
}

// Reserve places a hold on available stock. "Decrement available if
// available >= qty, else fail" runs as one conditional update; the
// ledger row records the reserved balance after the hold.
func (r *inventoryRepository) Reserve(ctx context.Context, productID string, qty int, orderID *uuid.UUID) (*model.Inventory, error) {
	query := `
		WITH updated AS (
			UPDATE inventories
			SET reserved_stock = reserved_stock + $2,
			    low_stock_alert = total_stock <= low_stock_threshold,
			    status = CASE WHEN total_stock - (reserved_stock + $2) <= 0 THEN 'out_of_stock'
			                  WHEN total_stock <= low_stock_threshold THEN 'low_stock'
			                  ELSE 'in_stock' END,
			    updated_at = now()
			WHERE product_id = $1 AND total_stock - reserved_stock >= $2
			RETURNING *
		), logged AS (
			INSERT INTO inventory_transactions
				(id, inventory_id, product_id, type, quantity, balance_after, reason, notes, order_id, created_by, created_at)
			SELECT gen_random_uuid(), id, product_id, 'reserve', $2, reserved_stock, 'checkout reservation', '', $3, 'system', now()
			FROM updated
		)
		SELECT ` + inventoryColumns + ` FROM updated
	`

	var inv *model.Inventory
	err := withWriteRetry(ctx, r.logger, "reserve", func(ctx context.Context) error {
		var err error
		inv, err = scanInventory(r.pool.QueryRow(ctx, query, productID, qty, orderID))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missingOrShort(ctx, productID, model.ErrCodeInsufficientStock,
				fmt.Sprintf("Insufficient available stock for product %s", productID))
		}
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to reserve stock")
		return nil, fmt.Errorf("failed to reserve stock: %w", err)
	}

	r.logger.Debug().
		Str("product_id", productID).
		Int("quantity", qty).
		Int("reserved", inv.ReservedStock).
		Msg("stock reserved")
	return inv, nil
}

// Release returns up to qty of reserved stock to the available pool.
// The row is locked before the clamp is computed, so two concurrent
// releases cannot both log the full amount against one reservation; the
// ledger row records exactly what moved, and a fully drained
// reservation releases nothing and logs nothing.
func (r *inventoryRepository) Release(ctx context.Context, productID string, qty int, orderID *uuid.UUID, reason string) (*model.Inventory, error) {
	var inv *model.Inventory
	err := withWriteRetry(ctx, r.logger, "release", func(ctx context.Context) error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		var reserved int
		err = tx.QueryRow(ctx,
			`SELECT reserved_stock FROM inventories WHERE product_id = $1 FOR UPDATE`,
			productID).Scan(&reserved)
		if err != nil {
			return err
		}

		toRelease := qty
		if toRelease > reserved {
			toRelease = reserved
		}

		inv, err = scanInventory(tx.QueryRow(ctx, `
			UPDATE inventories
			SET reserved_stock = reserved_stock - $2,
			    low_stock_alert = total_stock <= low_stock_threshold,
			    status = CASE WHEN total_stock - (reserved_stock - $2) <= 0 THEN 'out_of_stock'
			                  WHEN total_stock <= low_stock_threshold THEN 'low_stock'
			                  ELSE 'in_stock' END,
			    updated_at = now()
			WHERE product_id = $1
			RETURNING `+inventoryColumns, productID, toRelease))
		if err != nil {
			return fmt.Errorf("failed to release reserved stock: %w", err)
		}

		if toRelease > 0 {
			_, err = tx.Exec(ctx, `
				INSERT INTO inventory_transactions
					(id, inventory_id, product_id, type, quantity, balance_after, reason, notes, order_id, created_by, created_at)
				VALUES (gen_random_uuid(), $1, $2, 'release', $3, $4, $5, '', $6, 'system', now())
			`, inv.ID, productID, -toRelease, inv.ReservedStock, reason, orderID)
			if err != nil {
				return fmt.Errorf("failed to log stock release: %w", err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit stock release: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to release reserved stock")
		return nil, fmt.Errorf("failed to release reserved stock: %w", err)
	}
	return inv, nil
}

// Adjust sets total stock to an absolute value. The row is locked
// before the old total is read, so the ledger delta is computed against
// the state the update actually replaced; the reservation is clamped to
// the new total so reserved_stock <= total_stock holds.
func (r *inventoryRepository) Adjust(ctx context.Context, productID string, newQuantity int, reason, notes, actor string) (*model.Inventory, error) {
	var inv *model.Inventory
	err := withWriteRetry(ctx, r.logger, "adjust", func(ctx context.Context) error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		var oldTotal int
		err = tx.QueryRow(ctx,
			`SELECT total_stock FROM inventories WHERE product_id = $1 FOR UPDATE`,
			productID).Scan(&oldTotal)
		if err != nil {
			return err
		}

		inv, err = scanInventory(tx.QueryRow(ctx, `
			UPDATE inventories
			SET total_stock = $2,
			    reserved_stock = LEAST(reserved_stock, $2),
			    low_stock_alert = $2 <= low_stock_threshold,
			    status = CASE WHEN $2 - LEAST(reserved_stock, $2) <= 0 THEN 'out_of_stock'
			                  WHEN $2 <= low_stock_threshold THEN 'low_stock'
			                  ELSE 'in_stock' END,
			    updated_at = now()
			WHERE product_id = $1
			RETURNING `+inventoryColumns, productID, newQuantity))
		if err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO inventory_transactions
				(id, inventory_id, product_id, type, quantity, balance_after, reason, notes, order_id, created_by, created_at)
			VALUES (gen_random_uuid(), $1, $2, 'adjust', $3, $4, $5, $6, NULL, $7, now())
		`, inv.ID, productID, newQuantity-oldTotal, inv.TotalStock, reason, notes, actor)
		if err != nil {
			return fmt.Errorf("failed to log stock adjustment: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit stock adjustment: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to adjust stock")
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	return inv, nil
}

// OutstandingReservations sums unreleased reserve quantities per product
// for an order. Reserve rows are positive and release rows negative, so
// the per-product sum is the hold still outstanding.
func (r *inventoryRepository) OutstandingReservations(ctx context.Context, orderID uuid.UUID) (map[string]int, error) {
	query := `
		SELECT product_id, SUM(quantity)::int
		FROM inventory_transactions
		WHERE order_id = $1 AND type IN ('reserve', 'release')
		GROUP BY product_id
		HAVING SUM(quantity) > 0
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query outstanding reservations")
		return nil, fmt.Errorf("failed to query outstanding reservations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var productID string
		var qty int
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan reservation row: %w", err)
		}
		out[productID] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}
	return out, nil
}

// ListTransactions retrieves the most recent ledger rows for a product.
func (r *inventoryRepository) ListTransactions(ctx context.Context, productID string, limit int) ([]model.InventoryTransaction, error) {
	query := `
		SELECT id, inventory_id, product_id, type, quantity, balance_after, reason, notes, order_id, created_by, created_at
		FROM inventory_transactions
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, productID, limit)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to query inventory transactions")
		return nil, fmt.Errorf("failed to query inventory transactions: %w", err)
	}
	defer rows.Close()

	var out []model.InventoryTransaction
	for rows.Next() {
		var tx model.InventoryTransaction
		err := rows.Scan(&tx.ID, &tx.InventoryID, &tx.ProductID, &tx.Type, &tx.Quantity,
			&tx.BalanceAfter, &tx.Reason, &tx.Notes, &tx.OrderID, &tx.CreatedBy, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory transactions: %w", err)
	}
	return out, nil
}

// missingOrShort distinguishes a missing inventory row from a failed
// stock condition after a conditional update matched nothing.
func (r *inventoryRepository) missingOrShort(ctx context.Context, productID, shortCode, shortMessage string) error {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inventories WHERE product_id = $1)`, productID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check inventory existence: %w", err)
	}
	if !exists {
		return model.ErrProductNotFound
	}
	return model.NewDomainError(shortCode, shortMessage)
}
