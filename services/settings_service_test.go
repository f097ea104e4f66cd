package services

import (
	"context"
	"testing"

	"github.com/Talha3818/gaming-site-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Seed and the first writes of each flow insert rows whose audit fields
// (updated_by, reviewed_by, room_code_provided_by) are still unset; they
// must persist as-is against a real schema.
func TestSeedAndFirstWritesPersist(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	current, err := s.Settings.Current(ctx)
	require.NoError(t, err)
	assert.NotZero(t, current.ID)
	assert.Empty(t, current.UpdatedBy)
	assert.Len(t, current.Tiers, 4)

	var platform models.User
	require.NoError(t, testDB.First(&platform, "id = ?", models.PlatformUserID).Error)

	u := seedUser(t, 50000)
	game := seedGame(t)
	ch := createPending(t, s, u.ID, game.ID, 10000, 2)
	assert.Empty(t, ch.RoomCodeProvidedBy)
	assert.Empty(t, ch.ResolvedBy)

	dep, err := s.Payments.RequestDeposit(ctx, u.ID, 5000, "TRX-seed-"+u.ID)
	require.NoError(t, err)
	assert.Empty(t, dep.ReviewedBy)
}

func TestSettingsUpdateCreatesNewVersion(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	current, err := s.Settings.Current(ctx)
	require.NoError(t, err)

	next := *current
	next.Tiers = nil
	next.MinBet = 2000
	updated, err := s.Settings.Update(ctx, "admin-1", next)
	require.NoError(t, err)
	assert.Greater(t, updated.ID, current.ID)
	assert.Equal(t, "admin-1", updated.UpdatedBy)

	// Omitted tier rows carry forward from the previous version.
	reloaded, err := s.Settings.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated.ID, reloaded.ID)
	assert.Equal(t, int64(2000), reloaded.MinBet)
	assert.Len(t, reloaded.Tiers, len(current.Tiers))

	bad := *current
	bad.Tiers = nil
	bad.MaxBet = bad.MinBet - 1
	_, err = s.Settings.Update(ctx, "admin-1", bad)
	require.ErrorIs(t, err, ErrValidation)
}

func TestChallengeKeepsPricingOfItsVersion(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()
	game := seedGame(t)
	challenger := seedUser(t, 100000)
	opponent := seedUser(t, 100000)

	ch := createPending(t, s, challenger.ID, game.ID, 10000, 2)

	// Reprice the 2-player tier after the challenge was created.
	current, err := s.Settings.Current(ctx)
	require.NoError(t, err)
	next := *current
	next.Tiers = nil
	for _, tier := range current.Tiers {
		tier.ID = 0
		tier.SettingsID = 0
		if tier.PlayerCount == 2 {
			tier.FeeMultiplier = "2"
			tier.PayoutMultiplier = "2"
		}
		next.Tiers = append(next.Tiers, tier)
	}
	_, err = s.Settings.Update(ctx, "admin-1", next)
	require.NoError(t, err)
	t.Cleanup(func() {
		restore := *current
		restore.Tiers = nil
		for _, tier := range current.Tiers {
			tier.ID = 0
			tier.SettingsID = 0
			restore.Tiers = append(restore.Tiers, tier)
		}
		_, err := s.Settings.Update(context.Background(), "admin-1", restore)
		require.NoError(t, err)
	})

	// Fill and settle: the pinned version still prices at 1.5×.
	ch, err = s.Challenges.AcceptChallenge(ctx, ch.ID, opponent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), ch.TotalPot)

	_, err = s.Admin.StartMatch(ctx, ch.ID, "admin-1", "ROOM-7")
	require.NoError(t, err)
	_, payouts, err := s.Admin.ResolveDispute(ctx, ch.ID, "admin-1", SingleWinner(opponent.ID), "")
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, int64(15000), payouts[0].Amount)

	// A challenge created now prices under the new version.
	ch2 := createPending(t, s, seedUser(t, 100000).ID, game.ID, 10000, 2)
	assert.Equal(t, int64(20000), ch2.MatchFee)
}
