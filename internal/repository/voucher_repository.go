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

// voucherRepository implements VoucherRepository using PostgreSQL.
type voucherRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewVoucherRepository creates a new PostgreSQL-backed voucher repository.
func NewVoucherRepository(pool *pgxpool.Pool, logger zerolog.Logger) VoucherRepository {
	return &voucherRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "voucher").Logger(),
	}
}

const voucherColumns = `id, code, name, discount_type, discount_value, max_discount_amount,
	min_order_amount, shop_id, user_ids, product_ids, category_ids,
	usage_limit, used_count, per_user_limit, start_date, end_date, status, created_at, updated_at`

func scanVoucher(row pgx.Row) (*model.Voucher, error) {
	var v model.Voucher
	err := row.Scan(
		&v.ID,
		&v.Code,
		&v.Name,
		&v.DiscountType,
		&v.DiscountValue,
		&v.MaxDiscountAmount,
		&v.MinOrderAmount,
		&v.ShopID,
		&v.UserIDs,
		&v.ProductIDs,
		&v.CategoryIDs,
		&v.UsageLimit,
		&v.UsedCount,
		&v.PerUserLimit,
		&v.StartDate,
		&v.EndDate,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new voucher.
func (r *voucherRepository) Create(ctx context.Context, v *model.Voucher) error {
	query := `
		INSERT INTO vouchers (id, code, name, discount_type, discount_value, max_discount_amount,
			min_order_amount, shop_id, user_ids, product_ids, category_ids,
			usage_limit, used_count, per_user_limit, start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, $13, $14, $15, $16, now(), now())
	`

	_, err := r.pool.Exec(ctx, query,
		v.ID, v.Code, v.Name, v.DiscountType, v.DiscountValue, v.MaxDiscountAmount,
		v.MinOrderAmount, v.ShopID, v.UserIDs, v.ProductIDs, v.CategoryIDs,
		v.UsageLimit, v.PerUserLimit, v.StartDate, v.EndDate, v.Status)
	if err != nil {
		r.logger.Error().Err(err).Str("code", v.Code).Msg("failed to create voucher")
		return fmt.Errorf("failed to create voucher: %w", err)
	}
	return nil
}

// GetByCode retrieves a voucher by code, or nil when absent.
func (r *voucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE code = $1`
	return r.getVoucher(ctx, query, code)
}

// GetByID retrieves a voucher by ID, or nil when absent.
func (r *voucherRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = $1`
	return r.getVoucher(ctx, query, id)
}

func (r *voucherRepository) getVoucher(ctx context.Context, query string, arg any) (*model.Voucher, error) {
	v, err := scanVoucher(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query voucher")
		return nil, fmt.Errorf("failed to query voucher: %w", err)
	}
	return v, nil
}

// Use increments used_count and writes the usage row in one statement.
// The usage_limit guard is part of the update predicate, so concurrent
// redemptions can never push used_count past the cap.
func (r *voucherRepository) Use(ctx context.Context, voucherID uuid.UUID, userID string, orderID uuid.UUID, orderAmount, discountAmount float64) (*model.VoucherUsage, error) {
	query := `
		WITH consumed AS (
			UPDATE vouchers
			SET used_count = used_count + 1, updated_at = now()
			WHERE id = $1 AND (usage_limit = -1 OR used_count < usage_limit)
			RETURNING id, code
		)
		INSERT INTO voucher_usages
			(id, user_id, voucher_id, voucher_code, order_id, order_amount, discount_amount, status, created_at)
		SELECT gen_random_uuid(), $2, id, code, $3, $4, $5, 'used', now()
		FROM consumed
		RETURNING id, user_id, voucher_id, voucher_code, order_id, order_amount, discount_amount, status, refunded_at, created_at
	`

	var usage model.VoucherUsage
	err := withWriteRetry(ctx, r.logger, "voucher_use", func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, query, voucherID, userID, orderID, orderAmount, discountAmount).Scan(
			&usage.ID, &usage.UserID, &usage.VoucherID, &usage.VoucherCode, &usage.OrderID,
			&usage.OrderAmount, &usage.DiscountAmount, &usage.Status, &usage.RefundedAt, &usage.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if probeErr := r.pool.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM vouchers WHERE id = $1)`, voucherID).Scan(&exists); probeErr != nil {
				return nil, fmt.Errorf("failed to check voucher existence: %w", probeErr)
			}
			if !exists {
				return nil, model.ErrVoucherNotFound
			}
			return nil, model.NewDomainError(model.ErrCodeVoucherLimitReached, "Voucher usage limit has been reached")
		}
		r.logger.Error().Err(err).Str("voucher_id", voucherID.String()).Msg("failed to use voucher")
		return nil, fmt.Errorf("failed to use voucher: %w", err)
	}

	r.logger.Debug().
		Str("voucher_code", usage.VoucherCode).
		Str("user_id", userID).
		Str("order_id", orderID.String()).
		Msg("voucher redeemed")
	return &usage, nil
}

// RefundUsage reverts the redemption tied to orderID. Only a usage row
// still in status used is refunded; absent or already-refunded rows make
// the call a no-op, so compensation can run more than once.
func (r *voucherRepository) RefundUsage(ctx context.Context, orderID uuid.UUID) error {
	return withWriteRetry(ctx, r.logger, "voucher_refund", func(ctx context.Context) error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		var voucherID uuid.UUID
		var userID string
		err = tx.QueryRow(ctx, `
			UPDATE voucher_usages
			SET status = 'refunded', refunded_at = now()
			WHERE order_id = $1 AND status = 'used'
			RETURNING voucher_id, user_id
		`, orderID).Scan(&voucherID, &userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to refund voucher usage: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE vouchers
			SET used_count = GREATEST(used_count - 1, 0), updated_at = now()
			WHERE id = $1
		`, voucherID)
		if err != nil {
			return fmt.Errorf("failed to decrement voucher usage count: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE user_vouchers
			SET is_used = FALSE, used_at = NULL, order_id = NULL
			WHERE user_id = $1 AND voucher_id = $2 AND order_id = $3
		`, userID, voucherID, orderID)
		if err != nil {
			return fmt.Errorf("failed to reset user voucher: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit voucher refund: %w", err)
		}

		r.logger.Debug().Str("order_id", orderID.String()).Msg("voucher usage refunded")
		return nil
	})
}

// GetUsage retrieves the redemption record for (userID, orderID), or nil.
func (r *voucherRepository) GetUsage(ctx context.Context, userID string, orderID uuid.UUID) (*model.VoucherUsage, error) {
	query := `
		SELECT id, user_id, voucher_id, voucher_code, order_id, order_amount, discount_amount, status, refunded_at, created_at
		FROM voucher_usages
		WHERE user_id = $1 AND order_id = $2
	`

	var usage model.VoucherUsage
	err := r.pool.QueryRow(ctx, query, userID, orderID).Scan(
		&usage.ID, &usage.UserID, &usage.VoucherID, &usage.VoucherCode, &usage.OrderID,
		&usage.OrderAmount, &usage.DiscountAmount, &usage.Status, &usage.RefundedAt, &usage.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query voucher usage: %w", err)
	}
	return &usage, nil
}

// CountUsageByUser counts non-refunded redemptions of a voucher by a user.
func (r *voucherRepository) CountUsageByUser(ctx context.Context, userID string, voucherID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM voucher_usages
		WHERE user_id = $1 AND voucher_id = $2 AND status = 'used'
	`, userID, voucherID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count voucher usage: %w", err)
	}
	return count, nil
}

// GetUserVoucher retrieves a user's grant of a voucher code, or nil.
func (r *voucherRepository) GetUserVoucher(ctx context.Context, userID, code string) (*model.UserVoucher, error) {
	query := `
		SELECT id, user_id, voucher_id, voucher_code, is_used, used_at, order_id, received_at, expires_at
		FROM user_vouchers
		WHERE user_id = $1 AND voucher_code = $2
	`

	var uv model.UserVoucher
	err := r.pool.QueryRow(ctx, query, userID, code).Scan(
		&uv.ID, &uv.UserID, &uv.VoucherID, &uv.VoucherCode, &uv.IsUsed, &uv.UsedAt,
		&uv.OrderID, &uv.ReceivedAt, &uv.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user voucher: %w", err)
	}
	return &uv, nil
}

// MarkUserVoucherUsed flags a grant consumed by an order.
func (r *voucherRepository) MarkUserVoucherUsed(ctx context.Context, userID, code string, orderID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE user_vouchers
		SET is_used = TRUE, used_at = now(), order_id = $3
		WHERE user_id = $1 AND voucher_code = $2
	`, userID, code, orderID)
	if err != nil {
		return fmt.Errorf("failed to mark user voucher used: %w", err)
	}
	return nil
}

// GrantToUser inserts a grant record; granting the same voucher twice to
// a user is a no-op.
func (r *voucherRepository) GrantToUser(ctx context.Context, uv *model.UserVoucher) error {
	query := `
		INSERT INTO user_vouchers (id, user_id, voucher_id, voucher_code, is_used, received_at, expires_at)
		VALUES ($1, $2, $3, $4, FALSE, now(), $5)
		ON CONFLICT (user_id, voucher_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, uv.ID, uv.UserID, uv.VoucherID, uv.VoucherCode, uv.ExpiresAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", uv.UserID).Str("code", uv.VoucherCode).Msg("failed to grant voucher")
		return fmt.Errorf("failed to grant voucher: %w", err)
	}
	return nil
}

// ListUserVouchers retrieves all grants for a user.
func (r *voucherRepository) ListUserVouchers(ctx context.Context, userID string) ([]model.UserVoucher, error) {
	query := `
		SELECT id, user_id, voucher_id, voucher_code, is_used, used_at, order_id, received_at, expires_at
		FROM user_vouchers
		WHERE user_id = $1
		ORDER BY received_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user vouchers: %w", err)
	}
	defer rows.Close()

	var out []model.UserVoucher
	for rows.Next() {
		var uv model.UserVoucher
		err := rows.Scan(&uv.ID, &uv.UserID, &uv.VoucherID, &uv.VoucherCode, &uv.IsUsed,
			&uv.UsedAt, &uv.OrderID, &uv.ReceivedAt, &uv.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user voucher: %w", err)
		}
		out = append(out, uv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user vouchers: %w", err)
	}
	return out, nil
}
