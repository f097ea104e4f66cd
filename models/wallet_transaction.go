package models

import "time"

// Wallet transaction types. Challenge settlement is made idempotent by
// the unique (related_id, user_id, type) index: replays find the existing
// row instead of applying a second mutation.
const (
	TxTypeStakeHold    = "stake-hold"
	TxTypeRefund       = "refund"
	TxTypePayout       = "payout"
	TxTypeFee          = "fee"
	TxTypeDeposit      = "deposit"
	TxTypeWithdrawHold = "withdraw-hold"
)

// WalletTransaction is an append-only ledger entry. Amount is signed:
// negative for debits, positive for credits. BalanceAfter is the user's
// balance as committed by the same transaction that wrote the entry.
type WalletTransaction struct {
	ID     string `json:"id" gorm:"primaryKey;type:uuid"`
	UserID string `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_ledger_ref"`

	Amount int64  `json:"amount" gorm:"not null"`
	Type   string `json:"type" gorm:"type:varchar(16);not null;uniqueIndex:idx_ledger_ref"`

	// RelatedID points at the challenge, deposit, or withdrawal that
	// caused the movement.
	RelatedID string `json:"related_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_ledger_ref"`

	BalanceAfter int64  `json:"balance_after" gorm:"not null"`
	Note         string `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
