package services

import (
	"context"
	"sync"
	"testing"

	"github.com/Talha3818/gaming-site-sub000/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentDebits(t *testing.T) {
	requireDB(t)
	ledger := NewWalletLedger(testDB)
	u := seedUser(t, 50000)

	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Debit(context.Background(), u.ID, 10000,
				models.TxTypeStakeHold, uuid.NewString(), "stake held on join")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	success, insufficient := 0, 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		require.ErrorIs(t, err, ErrInsufficientBalance)
		insufficient++
	}
	require.Equal(t, 5, success)
	require.Equal(t, 5, insufficient)
	require.Equal(t, int64(0), balanceOf(t, u.ID))
}

func TestEnsureUserConcurrentBootstrap(t *testing.T) {
	requireDB(t)
	ledger := NewWalletLedger(testDB)
	id := uuid.NewString()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.EnsureUser(context.Background(), id, "racer")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, testDB.Model(&models.User{}).Where("id = ?", id).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestLedgerIdempotentReplay(t *testing.T) {
	requireDB(t)
	ledger := NewWalletLedger(testDB)
	u := seedUser(t, 10000)
	related := uuid.NewString()

	first, err := ledger.Credit(context.Background(), u.ID, 5000,
		models.TxTypeRefund, related, "refund")
	require.NoError(t, err)

	// Same (related, user, type) returns the original entry, money moves
	// once.
	replay, err := ledger.Credit(context.Background(), u.ID, 5000,
		models.TxTypeRefund, related, "refund")
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID)
	assert.Equal(t, int64(15000), balanceOf(t, u.ID))

	// A different type against the same reference is a distinct movement.
	_, err = ledger.Debit(context.Background(), u.ID, 5000,
		models.TxTypeStakeHold, related, "stake")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), balanceOf(t, u.ID))
}

func TestDebitInsufficientBalance(t *testing.T) {
	requireDB(t)
	ledger := NewWalletLedger(testDB)
	u := seedUser(t, 1000)

	_, err := ledger.Debit(context.Background(), u.ID, 2000,
		models.TxTypeStakeHold, uuid.NewString(), "stake")
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(1000), balanceOf(t, u.ID))
}

func TestDebitUnknownUser(t *testing.T) {
	requireDB(t)
	ledger := NewWalletLedger(testDB)

	_, err := ledger.Debit(context.Background(), uuid.NewString(), 1000,
		models.TxTypeStakeHold, uuid.NewString(), "stake")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLedgerRecordsBalanceAfter(t *testing.T) {
	requireDB(t)
	ledger := NewWalletLedger(testDB)
	u := seedUser(t, 20000)

	entry, err := ledger.Debit(context.Background(), u.ID, 6000,
		models.TxTypeWithdrawHold, uuid.NewString(), "withdrawal hold")
	require.NoError(t, err)
	assert.Equal(t, int64(-6000), entry.Amount)
	assert.Equal(t, int64(14000), entry.BalanceAfter)

	history, err := ledger.History(context.Background(), u.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entry.ID, history[0].ID)
}
