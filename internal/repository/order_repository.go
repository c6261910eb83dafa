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

// orderRepository implements OrderRepository using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, checkout_id, user_id, seller_id, subtotal, discount, shipping_fee, total,
	status, payment_method, shipping_method, shipping_address, voucher_code,
	cancellation_reason, cancelled_by, return_reason, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.CheckoutID,
		&o.UserID,
		&o.SellerID,
		&o.Subtotal,
		&o.Discount,
		&o.ShippingFee,
		&o.Total,
		&o.Status,
		&o.PaymentMethod,
		&o.ShippingMethod,
		&o.ShippingAddress,
		&o.VoucherCode,
		&o.CancellationReason,
		&o.CancelledBy,
		&o.ReturnReason,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateMany inserts a batch of orders with their items in one database
// transaction. A multi-seller checkout either persists every per-seller
// order or none of them.
func (r *orderRepository) CreateMany(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i := range orders {
		o := &orders[i]
		batch.Queue(`
			INSERT INTO orders (id, checkout_id, user_id, seller_id, subtotal, discount, shipping_fee, total,
				status, payment_method, shipping_method, shipping_address, voucher_code, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		`, o.ID, o.CheckoutID, o.UserID, o.SellerID, o.Subtotal, o.Discount, o.ShippingFee, o.Total,
			o.Status, o.PaymentMethod, o.ShippingMethod, o.ShippingAddress, o.VoucherCode)

		for j := range o.Items {
			it := &o.Items[j]
			batch.Queue(`
				INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, reviewed)
				VALUES ($1, $2, $3, $4, $5, FALSE)
			`, it.ID, o.ID, it.ProductID, it.Quantity, it.UnitPrice)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		r.logger.Error().Err(err).Int("orders", len(orders)).Msg("failed to insert orders")
		return fmt.Errorf("failed to insert orders: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit orders: %w", err)
	}

	r.logger.Debug().
		Int("orders", len(orders)).
		Str("checkout_id", orders[0].CheckoutID.String()).
		Msg("orders created")
	return nil
}

// GetByID retrieves an order with its items, or nil when absent.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.loadItems(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// UpdateStatus persists a status change along with any cancellation or
// return metadata, returning the updated order.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, reason, actor *string) (*model.Order, error) {
	query := `
		UPDATE orders
		SET status = $2,
		    cancellation_reason = CASE WHEN $2 = 'cancelled' THEN COALESCE($3, cancellation_reason) ELSE cancellation_reason END,
		    cancelled_by = CASE WHEN $2 = 'cancelled' THEN COALESCE($4, cancelled_by) ELSE cancelled_by END,
		    return_reason = CASE WHEN $2 = 'returned' THEN COALESCE($3, return_reason) ELSE return_reason END,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + orderColumns

	var o *model.Order
	err := withWriteRetry(ctx, r.logger, "order_update_status", func(ctx context.Context) error {
		var err error
		o, err = scanOrder(r.pool.QueryRow(ctx, query, id, status, reason, actor))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	items, err := r.loadItems(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, userID)
}

// ListByCheckoutID retrieves all orders created by one checkout.
func (r *orderRepository) ListByCheckoutID(ctx context.Context, checkoutID uuid.UUID) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE checkout_id = $1 ORDER BY created_at`
	return r.queryOrders(ctx, query, checkoutID)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, arg any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	var ids []uuid.UUID
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, reviewed, review_id
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY product_id
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var it model.OrderItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Reviewed, &it.ReviewID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return out, nil
}
