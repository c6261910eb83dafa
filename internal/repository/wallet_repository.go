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

// walletRepository implements WalletRepository using PostgreSQL.
type walletRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWalletRepository creates a new PostgreSQL-backed wallet repository.
func NewWalletRepository(pool *pgxpool.Pool, logger zerolog.Logger) WalletRepository {
	return &walletRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "wallet").Logger(),
	}
}

const walletTxColumns = `id, wallet_id, user_id, type, amount, balance_after,
	reference_id, reference_type, status, description, created_at, updated_at`

func scanWalletTx(row pgx.Row) (*model.WalletTransaction, error) {
	var tx model.WalletTransaction
	err := row.Scan(
		&tx.ID,
		&tx.WalletID,
		&tx.UserID,
		&tx.Type,
		&tx.Amount,
		&tx.BalanceAfter,
		&tx.ReferenceID,
		&tx.ReferenceType,
		&tx.Status,
		&tx.Description,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetOrCreate retrieves the user's wallet, creating an empty one on
// first use.
func (r *walletRepository) GetOrCreate(ctx context.Context, userID string) (*model.Wallet, error) {
	query := `
		INSERT INTO wallets (id, user_id, balance, status, created_at, updated_at)
		VALUES ($1, $2, 0, 'active', now(), now())
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, balance, status, created_at, updated_at
	`

	var w model.Wallet
	err := r.pool.QueryRow(ctx, query, uuid.New(), userID).Scan(
		&w.ID, &w.UserID, &w.Balance, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to get or create wallet")
		return nil, fmt.Errorf("failed to get or create wallet: %w", err)
	}
	return &w, nil
}

// GetByUserID retrieves a wallet, or nil when absent.
func (r *walletRepository) GetByUserID(ctx context.Context, userID string) (*model.Wallet, error) {
	query := `SELECT id, user_id, balance, status, created_at, updated_at FROM wallets WHERE user_id = $1`

	var w model.Wallet
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&w.ID, &w.UserID, &w.Balance, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query wallet: %w", err)
	}
	return &w, nil
}

// Credit adds amount to the balance and appends a completed transaction
// row in the same statement. The wallet is created on first credit so
// refunds never fail on a missing wallet.
func (r *walletRepository) Credit(ctx context.Context, userID string, amount float64, txType, description string, refID, refType *string) (*model.WalletTransaction, error) {
	query := `
		WITH upserted AS (
			INSERT INTO wallets (id, user_id, balance, status, created_at, updated_at)
			VALUES (gen_random_uuid(), $1, $2, 'active', now(), now())
			ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + $2, updated_at = now()
			RETURNING id, user_id, balance
		)
		INSERT INTO wallet_transactions
			(id, wallet_id, user_id, type, amount, balance_after, reference_id, reference_type, status, description, created_at, updated_at)
		SELECT gen_random_uuid(), id, user_id, $3, $2, balance, $4, $5, 'completed', $6, now(), now()
		FROM upserted
		RETURNING ` + walletTxColumns

	var tx *model.WalletTransaction
	err := withWriteRetry(ctx, r.logger, "wallet_credit", func(ctx context.Context) error {
		var err error
		tx, err = scanWalletTx(r.pool.QueryRow(ctx, query, userID, amount, txType, refID, refType, description))
		return err
	})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to credit wallet")
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID).
		Float64("amount", amount).
		Str("type", txType).
		Msg("wallet credited")
	return tx, nil
}

// Debit subtracts amount and appends a completed transaction row. The
// balance >= amount guard is part of the update predicate; the ledger
// row carries the amount negated.
func (r *walletRepository) Debit(ctx context.Context, userID string, amount float64, txType, description string, refID, refType *string) (*model.WalletTransaction, error) {
	query := `
		WITH updated AS (
			UPDATE wallets
			SET balance = balance - $2, updated_at = now()
			WHERE user_id = $1 AND balance >= $2
			RETURNING id, user_id, balance
		)
		INSERT INTO wallet_transactions
			(id, wallet_id, user_id, type, amount, balance_after, reference_id, reference_type, status, description, created_at, updated_at)
		SELECT gen_random_uuid(), id, user_id, $3, -$2, balance, $4, $5, 'completed', $6, now(), now()
		FROM updated
		RETURNING ` + walletTxColumns

	var tx *model.WalletTransaction
	err := withWriteRetry(ctx, r.logger, "wallet_debit", func(ctx context.Context) error {
		var err error
		tx, err = scanWalletTx(r.pool.QueryRow(ctx, query, userID, amount, txType, refID, refType, description))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if probeErr := r.pool.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM wallets WHERE user_id = $1)`, userID).Scan(&exists); probeErr != nil {
				return nil, fmt.Errorf("failed to check wallet existence: %w", probeErr)
			}
			if !exists {
				return nil, model.ErrWalletNotFound
			}
			return nil, model.ErrInsufficientBalance
		}
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to debit wallet")
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID).
		Float64("amount", amount).
		Str("type", txType).
		Msg("wallet debited")
	return tx, nil
}

// CreatePendingDeposit appends a pending deposit row without touching
// the balance. The balance is credited only when the deposit completes.
func (r *walletRepository) CreatePendingDeposit(ctx context.Context, userID string, amount float64, description string) (*model.WalletTransaction, error) {
	wallet, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO wallet_transactions
			(id, wallet_id, user_id, type, amount, balance_after, status, description, created_at, updated_at)
		VALUES ($1, $2, $3, 'deposit', $4, 0, 'pending', $5, now(), now())
		RETURNING ` + walletTxColumns

	tx, err := scanWalletTx(r.pool.QueryRow(ctx, query, uuid.New(), wallet.ID, userID, amount, description))
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create pending deposit")
		return nil, fmt.Errorf("failed to create pending deposit: %w", err)
	}
	return tx, nil
}

// CompleteDeposit credits a pending deposit. The pending -> completed
// flip is the idempotence guard: a transaction already completed (or
// failed) is returned unchanged without crediting again.
func (r *walletRepository) CompleteDeposit(ctx context.Context, transactionID uuid.UUID) (*model.WalletTransaction, error) {
	var out *model.WalletTransaction
	err := withWriteRetry(ctx, r.logger, "wallet_complete_deposit", func(ctx context.Context) error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		var walletID uuid.UUID
		var amount float64
		err = tx.QueryRow(ctx, `
			UPDATE wallet_transactions
			SET status = 'completed', updated_at = now()
			WHERE id = $1 AND status = 'pending'
			RETURNING wallet_id, amount
		`, transactionID).Scan(&walletID, &amount)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				stored, selErr := scanWalletTx(tx.QueryRow(ctx,
					`SELECT `+walletTxColumns+` FROM wallet_transactions WHERE id = $1`, transactionID))
				if selErr != nil {
					if errors.Is(selErr, pgx.ErrNoRows) {
						return model.ErrTransactionNotFound
					}
					return fmt.Errorf("failed to query wallet transaction: %w", selErr)
				}
				out = stored
				return tx.Commit(ctx)
			}
			return fmt.Errorf("failed to complete deposit: %w", err)
		}

		var balance float64
		err = tx.QueryRow(ctx, `
			UPDATE wallets SET balance = balance + $2, updated_at = now()
			WHERE id = $1
			RETURNING balance
		`, walletID, amount).Scan(&balance)
		if err != nil {
			return fmt.Errorf("failed to credit deposit: %w", err)
		}

		out, err = scanWalletTx(tx.QueryRow(ctx, `
			UPDATE wallet_transactions SET balance_after = $2, updated_at = now()
			WHERE id = $1
			RETURNING `+walletTxColumns, transactionID, balance))
		if err != nil {
			return fmt.Errorf("failed to finalize deposit: %w", err)
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug().Str("transaction_id", transactionID.String()).Msg("deposit completed")
	return out, nil
}

// ListTransactions retrieves a user's ledger, newest first.
func (r *walletRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]model.WalletTransaction, error) {
	query := `
		SELECT ` + walletTxColumns + `
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet transactions: %w", err)
	}
	defer rows.Close()

	var out []model.WalletTransaction
	for rows.Next() {
		tx, err := scanWalletTx(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		out = append(out, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet transactions: %w", err)
	}
	return out, nil
}
