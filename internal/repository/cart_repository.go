package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greenmarket/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements CartRepository using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// GetCart retrieves the user's cart with its items. A user with no cart
// row gets an empty cart, not an error.
func (r *cartRepository) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	cart := &model.Cart{UserID: userID, UpdatedAt: time.Now()}

	err := r.pool.QueryRow(ctx,
		`SELECT voucher_code, updated_at FROM carts WHERE user_id = $1`, userID).
		Scan(&cart.VoucherCode, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cart, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT product_id, seller_id, category_id, quantity, unit_price
		FROM cart_items
		WHERE user_id = $1
		ORDER BY product_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ProductID, &it.SellerID, &it.CategoryID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}
	return cart, nil
}

// ClearCart removes the cart and its items.
func (r *cartRepository) ClearCart(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
