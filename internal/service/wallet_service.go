package service

import (
	"context"

	"greenmarket/internal/model"
	"greenmarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type walletService struct {
	repo   repository.WalletRepository
	logger zerolog.Logger
}

// NewWalletService creates a new wallet service.
func NewWalletService(repo repository.WalletRepository, logger zerolog.Logger) WalletService {
	return &walletService{
		repo:   repo,
		logger: logger.With().Str("service", "wallet").Logger(),
	}
}

func (s *walletService) GetWallet(ctx context.Context, userID string) (*model.Wallet, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

// Deposit adds funds. A wallet-method deposit credits immediately; an
// online deposit creates a pending transaction that CompleteDeposit
// credits once the gateway confirms.
func (s *walletService) Deposit(ctx context.Context, userID string, amount float64, method string) (*model.WalletTransaction, error) {
	if amount <= 0 {
		return nil, model.NewDomainError(model.ErrCodeInvalidQuantity, "Deposit amount must be greater than zero")
	}

	if method == model.PaymentMethodOnline {
		return s.repo.CreatePendingDeposit(ctx, userID, amount, "Online deposit awaiting gateway confirmation")
	}
	return s.repo.Credit(ctx, userID, amount, model.WalletTxDeposit, "Wallet deposit", nil, nil)
}

func (s *walletService) CompleteDeposit(ctx context.Context, transactionID uuid.UUID) (*model.WalletTransaction, error) {
	tx, err := s.repo.CompleteDeposit(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("transaction_id", transactionID.String()).
		Str("user_id", tx.UserID).
		Str("status", tx.Status).
		Msg("deposit completion processed")
	return tx, nil
}

func (s *walletService) Withdraw(ctx context.Context, userID string, amount float64) (*model.WalletTransaction, error) {
	if amount <= 0 {
		return nil, model.NewDomainError(model.ErrCodeInvalidQuantity, "Withdrawal amount must be greater than zero")
	}
	return s.repo.Debit(ctx, userID, amount, model.WalletTxWithdraw, "Wallet withdrawal", nil, nil)
}

func (s *walletService) PayWithWallet(ctx context.Context, userID string, amount float64, orderRef string) (*model.WalletTransaction, error) {
	if amount <= 0 {
		return nil, model.NewDomainError(model.ErrCodeInvalidQuantity, "Payment amount must be greater than zero")
	}

	refType := "order"
	tx, err := s.repo.Debit(ctx, userID, amount, model.WalletTxPayment, "Order payment", &orderRef, &refType)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("order_ref", orderRef).
		Float64("amount", amount).
		Msg("order paid from wallet")
	return tx, nil
}

func (s *walletService) RefundToWallet(ctx context.Context, userID string, amount float64, orderRef string) (*model.WalletTransaction, error) {
	if amount <= 0 {
		return nil, model.NewDomainError(model.ErrCodeInvalidQuantity, "Refund amount must be greater than zero")
	}

	refType := "order"
	tx, err := s.repo.Credit(ctx, userID, amount, model.WalletTxRefund, "Order refund", &orderRef, &refType)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("order_ref", orderRef).
		Float64("amount", amount).
		Msg("order refunded to wallet")
	return tx, nil
}

func (s *walletService) History(ctx context.Context, userID string, limit int) ([]model.WalletTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListTransactions(ctx, userID, limit)
}
