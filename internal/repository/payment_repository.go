package repository

import (
	"context"
	"errors"
	"fmt"

	"greenmarket/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// paymentRepository implements PaymentRepository using PostgreSQL.
type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

const paymentColumns = `id, order_id, user_id, amount, method, status, gateway_ref, pay_url, paid_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.UserID,
		&p.Amount,
		&p.Method,
		&p.Status,
		&p.GatewayRef,
		&p.PayURL,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a pending payment row.
func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, user_id, amount, method, status, gateway_ref, pay_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.OrderID, p.UserID, p.Amount, p.Method, p.Status, p.GatewayRef, p.PayURL)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", p.OrderID.String()).Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByGatewayRef retrieves a payment by gateway reference, or nil.
func (r *paymentRepository) GetByGatewayRef(ctx context.Context, gatewayRef string) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE gateway_ref = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, gatewayRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}
	return p, nil
}

// Settle moves a pending payment to its final status. Settling a payment
// that already left pending returns the stored row untouched, so gateway
// callback replays are harmless.
func (r *paymentRepository) Settle(ctx context.Context, gatewayRef, status string) (*model.Payment, error) {
	query := `
		UPDATE payments
		SET status = $2,
		    paid_at = CASE WHEN $2 = 'completed' THEN now() ELSE paid_at END,
		    updated_at = now()
		WHERE gateway_ref = $1 AND status = 'pending'
		RETURNING ` + paymentColumns

	var p *model.Payment
	err := withWriteRetry(ctx, r.logger, "payment_settle", func(ctx context.Context) error {
		var err error
		p, err = scanPayment(r.pool.QueryRow(ctx, query, gatewayRef, status))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			stored, getErr := r.GetByGatewayRef(ctx, gatewayRef)
			if getErr != nil {
				return nil, getErr
			}
			if stored == nil {
				return nil, model.NewDomainError(model.ErrCodePaymentNotFound, "Payment not found for gateway reference")
			}
			return stored, nil
		}
		r.logger.Error().Err(err).Str("gateway_ref", gatewayRef).Msg("failed to settle payment")
		return nil, fmt.Errorf("failed to settle payment: %w", err)
	}
	return p, nil
}
