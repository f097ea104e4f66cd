package services

import (
	"context"
	"testing"
	"time"

	"github.com/Talha3818/gaming-site-sub000/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inProgressChallenge builds a started 2-player challenge and returns it
// with its challenger and opponent.
func inProgressChallenge(t *testing.T, s *testStack, bet int64) (*models.Challenge, *models.User, *models.User) {
	t.Helper()
	ctx := context.Background()
	game := seedGame(t)
	challenger := seedUser(t, 100000)
	opponent := seedUser(t, 100000)

	ch := createPending(t, s, challenger.ID, game.ID, bet, 2)
	ch, err := s.Challenges.AcceptChallenge(ctx, ch.ID, opponent.ID)
	require.NoError(t, err)
	ch, err = s.Admin.StartMatch(ctx, ch.ID, uuid.NewString(), "ROOM-1")
	require.NoError(t, err)
	return ch, challenger, opponent
}

func TestResolveReplayIsIdempotent(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	ch, _, opponent := inProgressChallenge(t, s, 10000)
	admin := uuid.NewString()

	_, first, err := s.Admin.ResolveDispute(ctx, ch.ID, admin, SingleWinner(opponent.ID), "")
	require.NoError(t, err)
	require.Len(t, first, 1)
	after := balanceOf(t, opponent.ID)

	// Replay with the same winner returns the recorded payouts without
	// paying again.
	_, replay, err := s.Admin.ResolveDispute(ctx, ch.ID, admin, SingleWinner(opponent.ID), "")
	require.NoError(t, err)
	require.Len(t, replay, 1)
	assert.Equal(t, first[0].ID, replay[0].ID)
	assert.Equal(t, after, balanceOf(t, opponent.ID))

	// A different winner set on a settled challenge is refused.
	_, _, err = s.Admin.ResolveDispute(ctx, ch.ID, admin, SingleWinner(ch.ChallengerID), "")
	require.ErrorIs(t, err, ErrAlreadySettled)
}

func TestResolveValidatesWinners(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	ch, challenger, opponent := inProgressChallenge(t, s, 10000)
	admin := uuid.NewString()

	_, _, err := s.Admin.ResolveDispute(ctx, ch.ID, admin, SingleWinner(uuid.NewString()), "")
	require.ErrorIs(t, err, ErrInvalidWinner)

	// Head-to-head pays a single winner.
	_, _, err = s.Admin.ResolveDispute(ctx, ch.ID, admin, MultiWinner([]string{challenger.ID, opponent.ID}), "")
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = s.Admin.ResolveDispute(ctx, ch.ID, admin, MultiWinner(nil), "")
	require.ErrorIs(t, err, ErrValidation)

	// Nothing above moved money.
	assert.Equal(t, int64(90000), balanceOf(t, challenger.ID))
	assert.Equal(t, int64(90000), balanceOf(t, opponent.ID))
}

func TestResolveRequiresInProgress(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	game := seedGame(t)
	challenger := seedUser(t, 50000)
	ch := createPending(t, s, challenger.ID, game.ID, 10000, 2)

	_, _, err := s.Admin.ResolveDispute(ctx, ch.ID, uuid.NewString(), SingleWinner(challenger.ID), "")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestAdminAuthoredChallengeHoldsNoStakes(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	game := seedGame(t)
	admin := seedUser(t, 0)
	player := seedUser(t, 0)

	ch, err := s.Challenges.CreateChallenge(ctx, CreateChallengeInput{
		CreatorID:          admin.ID,
		GameID:             game.ID,
		BetAmount:          10000,
		ScheduledMatchTime: time.Now().Add(2 * time.Hour),
		PlayerCount:        2,
		IsAdminAuthored:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), balanceOf(t, admin.ID))

	ch, err = s.Challenges.AcceptChallenge(ctx, ch.ID, player.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balanceOf(t, player.ID))

	_, err = s.Admin.StartMatch(ctx, ch.ID, uuid.NewString(), "PROMO-1")
	require.NoError(t, err)

	// The payout is platform spend; no fee entry is written.
	platformBefore := balanceOf(t, models.PlatformUserID)
	_, payouts, err := s.Admin.ResolveDispute(ctx, ch.ID, uuid.NewString(), SingleWinner(player.ID), "promo match")
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, int64(15000), balanceOf(t, player.ID))
	assert.Equal(t, platformBefore, balanceOf(t, models.PlatformUserID))

	var holds int64
	require.NoError(t, testDB.Model(&models.WalletTransaction{}).
		Where("related_id = ? AND type = ?", ch.ID, models.TxTypeStakeHold).
		Count(&holds).Error)
	assert.Equal(t, int64(0), holds)
}

func TestAdminCancelRefundsInProgress(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	ch, challenger, opponent := inProgressChallenge(t, s, 10000)

	ch, err := s.Admin.CancelChallenge(ctx, ch.ID, uuid.NewString(), "no-show")
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeStatusCancelled, ch.Status)
	assert.Equal(t, "no-show", ch.CancelReason)
	assert.Equal(t, int64(100000), balanceOf(t, challenger.ID))
	assert.Equal(t, int64(100000), balanceOf(t, opponent.ID))

	_, err = s.Admin.CancelChallenge(ctx, ch.ID, uuid.NewString(), "again")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestStartMatchRequiresAcceptedRoster(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	game := seedGame(t)
	challenger := seedUser(t, 50000)
	ch := createPending(t, s, challenger.ID, game.ID, 10000, 2)

	_, err := s.Admin.StartMatch(ctx, ch.ID, uuid.NewString(), "ROOM-1")
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = s.Admin.StartMatch(ctx, ch.ID, uuid.NewString(), "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestRoomCodeProvideAndUpdate(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	game := seedGame(t)
	challenger := seedUser(t, 50000)
	opponent := seedUser(t, 50000)
	admin := uuid.NewString()

	ch := createPending(t, s, challenger.ID, game.ID, 10000, 2)

	// No roster yet, nobody to hand a code to.
	_, err := s.Admin.ProvideRoomCode(ctx, ch.ID, admin, "EARLY")
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = s.Admin.UpdateRoomCode(ctx, ch.ID, admin, "EARLY")
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = s.Challenges.AcceptChallenge(ctx, ch.ID, opponent.ID)
	require.NoError(t, err)

	ch, err = s.Admin.ProvideRoomCode(ctx, ch.ID, admin, "CODE-1")
	require.NoError(t, err)
	assert.Equal(t, "CODE-1", ch.AdminRoomCode)
	assert.Equal(t, admin, ch.RoomCodeProvidedBy)

	_, err = s.Admin.ProvideRoomCode(ctx, ch.ID, admin, "CODE-2")
	require.ErrorIs(t, err, ErrInvalidState)

	ch, err = s.Admin.UpdateRoomCode(ctx, ch.ID, admin, "CODE-2")
	require.NoError(t, err)
	assert.Equal(t, "CODE-2", ch.AdminRoomCode)
}
