package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Talha3818/gaming-site-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentsService handles the manual bKash money-in/money-out flows.
// Deposits credit on admin approval; withdrawals hold the money the
// moment they are filed so it cannot be staked while in flight.
type PaymentsService struct {
	DB       *gorm.DB
	Ledger   *WalletLedger
	Settings *SettingsService
}

func NewPaymentsService(db *gorm.DB, ledger *WalletLedger, settings *SettingsService) *PaymentsService {
	return &PaymentsService{DB: db, Ledger: ledger, Settings: settings}
}

// RequestDeposit files a deposit claim with the user's bKash
// transaction ID. No money moves until an admin approves.
func (p *PaymentsService) RequestDeposit(ctx context.Context, userID string, amount int64, bkashTrxID string) (*models.DepositRequest, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be positive", ErrValidation)
	}
	if bkashTrxID == "" {
		return nil, fmt.Errorf("%w: bKash transaction ID required", ErrValidation)
	}
	dep := &models.DepositRequest{
		ID:         uuid.NewString(),
		UserID:     userID,
		Amount:     amount,
		BkashTrxID: bkashTrxID,
		Status:     models.PaymentStatusPending,
	}
	if err := p.DB.WithContext(ctx).Create(dep).Error; err != nil {
		return nil, err
	}
	return dep, nil
}

// ReviewDeposit approves or rejects a pending deposit. Approval credits
// the wallet, idempotent per deposit.
func (p *PaymentsService) ReviewDeposit(ctx context.Context, depositID, adminID string, approve bool, note string) (*models.DepositRequest, error) {
	var dep models.DepositRequest
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&dep, "id = ?", depositID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("deposit %s: %w", depositID, ErrNotFound)
			}
			return err
		}
		if dep.Status != models.PaymentStatusPending {
			return ErrInvalidState
		}

		status := models.PaymentStatusRejected
		if approve {
			status = models.PaymentStatusApproved
			if _, err := p.Ledger.CreditTx(tx, dep.UserID, dep.Amount,
				models.TxTypeDeposit, dep.ID, "bKash deposit "+dep.BkashTrxID); err != nil {
				return err
			}
		}
		now := time.Now()
		return tx.Model(&dep).Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": adminID,
			"reviewed_at": &now,
			"note":        note,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[PAYMENTS] deposit %s reviewed by %s: %s", dep.ID, adminID, dep.Status)
	return &dep, nil
}

// RequestWithdrawal files a withdrawal and debits the amount as a hold
// in the same transaction. At most one pending withdrawal per user.
func (p *PaymentsService) RequestWithdrawal(ctx context.Context, userID string, amount int64, bkashNumber string) (*models.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", ErrValidation)
	}
	if bkashNumber == "" {
		return nil, fmt.Errorf("%w: bKash number required", ErrValidation)
	}

	wd := &models.WithdrawalRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		BkashNumber: bkashNumber,
		Status:      models.PaymentStatusPending,
	}
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Debit first: the conditional UPDATE locks the user row, so
		// concurrent filings for one user serialize here and the pending
		// count sees whatever the earlier filing committed.
		if _, err := p.Ledger.DebitTx(tx, userID, amount,
			models.TxTypeWithdrawHold, wd.ID, "withdrawal hold"); err != nil {
			return err
		}
		var pending int64
		if err := tx.Model(&models.WithdrawalRequest{}).
			Where("user_id = ? AND status = ?", userID, models.PaymentStatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrPendingWithdrawal
		}
		return tx.Create(wd).Error
	})
	if err != nil {
		return nil, err
	}
	return wd, nil
}

// ReviewWithdrawal marks a pending withdrawal paid (with the bKash
// payment reference) or rejects it, refunding the hold.
func (p *PaymentsService) ReviewWithdrawal(ctx context.Context, withdrawalID, adminID string, approve bool, paymentRef, note string) (*models.WithdrawalRequest, error) {
	var wd models.WithdrawalRequest
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&wd, "id = ?", withdrawalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("withdrawal %s: %w", withdrawalID, ErrNotFound)
			}
			return err
		}
		if wd.Status != models.PaymentStatusPending {
			return ErrInvalidState
		}

		status := models.PaymentStatusRejected
		if approve {
			if paymentRef == "" {
				return fmt.Errorf("%w: payment reference required on approval", ErrValidation)
			}
			status = models.PaymentStatusPaid
		} else {
			if _, err := p.Ledger.CreditTx(tx, wd.UserID, wd.Amount,
				models.TxTypeRefund, wd.ID, "withdrawal rejected"); err != nil {
				return err
			}
		}
		now := time.Now()
		return tx.Model(&wd).Updates(map[string]interface{}{
			"status":      status,
			"payment_ref": paymentRef,
			"reviewed_by": adminID,
			"reviewed_at": &now,
			"note":        note,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[PAYMENTS] withdrawal %s reviewed by %s: %s", wd.ID, adminID, wd.Status)
	return &wd, nil
}

// ListPendingDeposits returns deposits awaiting review, oldest first.
func (p *PaymentsService) ListPendingDeposits(ctx context.Context) ([]models.DepositRequest, error) {
	var deps []models.DepositRequest
	err := p.DB.WithContext(ctx).
		Where("status = ?", models.PaymentStatusPending).
		Order("created_at ASC").
		Find(&deps).Error
	return deps, err
}

// ListPendingWithdrawals returns withdrawals awaiting review, oldest
// first.
func (p *PaymentsService) ListPendingWithdrawals(ctx context.Context) ([]models.WithdrawalRequest, error) {
	var wds []models.WithdrawalRequest
	err := p.DB.WithContext(ctx).
		Where("status = ?", models.PaymentStatusPending).
		Order("created_at ASC").
		Find(&wds).Error
	return wds, err
}
