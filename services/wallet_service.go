package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Talha3818/gaming-site-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletLedger is the single source of truth for money movement. Every
// mutation is a conditional atomic update plus an append-only
// WalletTransaction row, committed together. The unique
// (related_id, user_id, type) index makes each movement apply at most
// once — a replay returns the original entry.
type WalletLedger struct {
	DB *gorm.DB
}

func NewWalletLedger(db *gorm.DB) *WalletLedger {
	return &WalletLedger{DB: db}
}

// EnsureUser upserts the user row for a gateway identity. Balances start
// at zero; the row is never overwritten once it exists except for the
// display name. The insert is ON CONFLICT DO NOTHING so two concurrent
// first requests for one identity both succeed with a single row.
func (l *WalletLedger) EnsureUser(ctx context.Context, userID, name string) (*models.User, error) {
	row := models.User{ID: userID, Name: name}
	if err := l.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error; err != nil {
		return nil, err
	}

	var u models.User
	if err := l.DB.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	if name != "" && name != u.Name {
		if err := l.DB.WithContext(ctx).Model(&u).Update("name", name).Error; err != nil {
			return nil, err
		}
		u.Name = name
	}
	return &u, nil
}

// DebitTx debits amount from user inside the caller's transaction.
// The balance check and decrement are one conditional UPDATE
// (balance >= amount ⇒ balance -= amount), never a read followed by a
// write, so concurrent debits for one user are serialized by the row
// lock the UPDATE takes.
func (l *WalletLedger) DebitTx(tx *gorm.DB, userID string, amount int64, txType, relatedID, note string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: debit amount must be positive", ErrValidation)
	}
	if existing, err := l.findExisting(tx, userID, txType, relatedID); err != nil || existing != nil {
		return existing, err
	}

	res := tx.Model(&models.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var u models.User
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
			}
			return nil, err
		}
		return nil, ErrInsufficientBalance
	}

	return l.appendEntry(tx, userID, -amount, txType, relatedID, note)
}

// CreditTx credits amount to user inside the caller's transaction,
// idempotent per (related, user, type).
func (l *WalletLedger) CreditTx(tx *gorm.DB, userID string, amount int64, txType, relatedID, note string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit amount must be positive", ErrValidation)
	}
	if existing, err := l.findExisting(tx, userID, txType, relatedID); err != nil || existing != nil {
		return existing, err
	}

	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	return l.appendEntry(tx, userID, amount, txType, relatedID, note)
}

// Debit runs DebitTx in its own transaction.
func (l *WalletLedger) Debit(ctx context.Context, userID string, amount int64, txType, relatedID, note string) (*models.WalletTransaction, error) {
	var entry *models.WalletTransaction
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = l.DebitTx(tx, userID, amount, txType, relatedID, note)
		return err
	})
	return entry, err
}

// Credit runs CreditTx in its own transaction.
func (l *WalletLedger) Credit(ctx context.Context, userID string, amount int64, txType, relatedID, note string) (*models.WalletTransaction, error) {
	var entry *models.WalletTransaction
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = l.CreditTx(tx, userID, amount, txType, relatedID, note)
		return err
	})
	return entry, err
}

// Balance returns the current balance for a user.
func (l *WalletLedger) Balance(ctx context.Context, userID string) (int64, error) {
	var u models.User
	if err := l.DB.WithContext(ctx).Select("balance").First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return 0, err
	}
	return u.Balance, nil
}

// History returns the newest ledger entries for a user.
func (l *WalletLedger) History(ctx context.Context, userID string, limit int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []models.WalletTransaction
	err := l.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// PayoutsFor returns the payout entries recorded for a challenge, used
// to replay an already-settled resolution.
func (l *WalletLedger) PayoutsFor(tx *gorm.DB, challengeID string) ([]models.WalletTransaction, error) {
	var entries []models.WalletTransaction
	err := tx.Where("related_id = ? AND type = ?", challengeID, models.TxTypePayout).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (l *WalletLedger) findExisting(tx *gorm.DB, userID, txType, relatedID string) (*models.WalletTransaction, error) {
	var existing models.WalletTransaction
	err := tx.Where("related_id = ? AND user_id = ? AND type = ?", relatedID, userID, txType).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func (l *WalletLedger) appendEntry(tx *gorm.DB, userID string, amount int64, txType, relatedID, note string) (*models.WalletTransaction, error) {
	// Re-read inside the same transaction so balance_after matches what
	// this commit will publish.
	var u models.User
	if err := tx.Select("balance").First(&u, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	entry := models.WalletTransaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Amount:       amount,
		Type:         txType,
		RelatedID:    relatedID,
		BalanceAfter: u.Balance,
		Note:         note,
		CreatedAt:    time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
