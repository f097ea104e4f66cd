package models

import "time"

// Review statuses shared by deposits and withdrawals.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
	PaymentStatusPaid     = "paid"
)

// DepositRequest is a manual bKash top-up: the user sends money to the
// platform number and submits the transaction ID; an admin verifies it
// and the approval credits the wallet.
type DepositRequest struct {
	ID     string `json:"id" gorm:"primaryKey;type:uuid"`
	UserID string `json:"user_id" gorm:"type:uuid;not null;index"`

	Amount     int64  `json:"amount" gorm:"not null"`
	BkashTrxID string `json:"bkash_trx_id" gorm:"type:varchar(64);not null;uniqueIndex"`

	Status     string     `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	ReviewedBy string     `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	Note       string     `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// WithdrawalRequest debits the wallet when filed (withdraw-hold) so the
// money cannot be staked while the payout is in flight. A user may hold
// at most one pending withdrawal. Rejection refunds the hold; approval
// marks it paid with the bKash payment reference.
type WithdrawalRequest struct {
	ID     string `json:"id" gorm:"primaryKey;type:uuid"`
	UserID string `json:"user_id" gorm:"type:uuid;not null;index"`

	Amount      int64  `json:"amount" gorm:"not null"`
	BkashNumber string `json:"bkash_number" gorm:"type:varchar(20);not null"`

	Status     string     `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	PaymentRef string     `json:"payment_ref,omitempty" gorm:"type:varchar(64)"`
	ReviewedBy string     `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	Note       string     `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
