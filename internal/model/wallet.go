package model

import (
	"time"

	"github.com/google/uuid"
)

// Wallet transaction types.
const (
	WalletTxDeposit  = "deposit"
	WalletTxWithdraw = "withdraw"
	WalletTxPayment  = "payment"
	WalletTxRefund   = "refund"
)

// Wallet transaction statuses.
const (
	WalletTxPending   = "pending"
	WalletTxCompleted = "completed"
	WalletTxFailed    = "failed"
)

// Wallet statuses.
const (
	WalletStatusActive = "active"
	WalletStatusFrozen = "frozen"
)

// Wallet holds a user's balance. One row per user; the balance is only
// mutated through ledger operations that also append a WalletTransaction.
type Wallet struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Balance   float64   `json:"balance" db:"balance"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// WalletTransaction is an immutable ledger entry. Pending deposits are
// credited only by completion; completing twice is a no-op.
type WalletTransaction struct {
	ID            uuid.UUID `json:"id" db:"id"`
	WalletID      uuid.UUID `json:"walletId" db:"wallet_id"`
	UserID        string    `json:"userId" db:"user_id"`
	Type          string    `json:"type" db:"type"`
	Amount        float64   `json:"amount" db:"amount"`
	BalanceAfter  float64   `json:"balanceAfter" db:"balance_after"`
	ReferenceID   *string   `json:"referenceId,omitempty" db:"reference_id"`
	ReferenceType *string   `json:"referenceType,omitempty" db:"reference_type"`
	Status        string    `json:"status" db:"status"`
	Description   string    `json:"description" db:"description"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}
