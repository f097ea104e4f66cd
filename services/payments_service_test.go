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

func TestDepositCreditsOnApproval(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	u := seedUser(t, 0)
	admin := uuid.NewString()

	dep, err := s.Payments.RequestDeposit(ctx, u.ID, 20000, "TRX"+uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, dep.Status)
	assert.Equal(t, int64(0), balanceOf(t, u.ID))

	dep, err = s.Payments.ReviewDeposit(ctx, dep.ID, admin, true, "verified in bKash portal")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, dep.Status)
	assert.Equal(t, int64(20000), balanceOf(t, u.ID))

	// Review is terminal.
	_, err = s.Payments.ReviewDeposit(ctx, dep.ID, admin, true, "")
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, int64(20000), balanceOf(t, u.ID))
}

func TestDepositRejectionMovesNoMoney(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	u := seedUser(t, 0)

	dep, err := s.Payments.RequestDeposit(ctx, u.ID, 5000, "TRX"+uuid.NewString())
	require.NoError(t, err)

	dep, err = s.Payments.ReviewDeposit(ctx, dep.ID, uuid.NewString(), false, "no matching transaction")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRejected, dep.Status)
	assert.Equal(t, int64(0), balanceOf(t, u.ID))
}

func TestWithdrawalHoldAndReview(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	u := seedUser(t, 30000)
	admin := uuid.NewString()

	wd, err := s.Payments.RequestWithdrawal(ctx, u.ID, 10000, "01700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(20000), balanceOf(t, u.ID))

	// One pending withdrawal per user.
	_, err = s.Payments.RequestWithdrawal(ctx, u.ID, 5000, "01700000000")
	require.ErrorIs(t, err, ErrPendingWithdrawal)

	// Approval needs the bKash payment reference.
	_, err = s.Payments.ReviewWithdrawal(ctx, wd.ID, admin, true, "", "")
	require.ErrorIs(t, err, ErrValidation)

	wd, err = s.Payments.ReviewWithdrawal(ctx, wd.ID, admin, true, "BK-REF-1", "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, wd.Status)
	assert.Equal(t, int64(20000), balanceOf(t, u.ID))

	// The hold is released; a new withdrawal may be filed.
	_, err = s.Payments.RequestWithdrawal(ctx, u.ID, 5000, "01700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), balanceOf(t, u.ID))
}

func TestWithdrawalRejectionRefundsHold(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	u := seedUser(t, 30000)

	wd, err := s.Payments.RequestWithdrawal(ctx, u.ID, 10000, "01700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(20000), balanceOf(t, u.ID))

	wd, err = s.Payments.ReviewWithdrawal(ctx, wd.ID, uuid.NewString(), false, "", "number mismatch")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRejected, wd.Status)
	assert.Equal(t, int64(30000), balanceOf(t, u.ID))
}

func TestConcurrentWithdrawalFilings(t *testing.T) {
	s := newTestStack(t)
	u := seedUser(t, 30000)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Payments.RequestWithdrawal(context.Background(), u.ID, 10000, "01700000000")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		require.ErrorIs(t, err, ErrPendingWithdrawal)
	}
	require.Equal(t, 1, success)

	// Exactly one hold was taken and exactly one request is pending.
	assert.Equal(t, int64(20000), balanceOf(t, u.ID))
	var pending int64
	require.NoError(t, testDB.Model(&models.WithdrawalRequest{}).
		Where("user_id = ? AND status = ?", u.ID, models.PaymentStatusPending).
		Count(&pending).Error)
	assert.Equal(t, int64(1), pending)
}

func TestWithdrawalRequiresFunds(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	u := seedUser(t, 1000)

	_, err := s.Payments.RequestWithdrawal(ctx, u.ID, 5000, "01700000000")
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(1000), balanceOf(t, u.ID))
}
