package services

import (
	"fmt"

	"github.com/Talha3818/gaming-site-sub000/models"

	"github.com/shopspring/decimal"
)

// PotQuote is the derived money for a challenge at a given fill level.
// All figures are minor currency units.
type PotQuote struct {
	// MatchFee is the advertised fee figure for the tier.
	MatchFee int64
	// TotalPot is what the challenge collects in stakes terms: the fee
	// figure for fixed tiers, bet × staked players for pot-share tiers.
	TotalPot int64
	// WinnerPool is the total paid to the declared winner(s).
	WinnerPool int64
	// MultiWinner allows the pool to split across several winners.
	MultiWinner bool
}

// Pot derives stake, fee, and payout figures from the tier policy. It is
// a pure function of its inputs — construct one from the current
// settings at the start of each operation.
type Pot struct {
	tiers map[int]models.TierPolicy
}

func NewPot(tiers []models.TierPolicy) *Pot {
	m := make(map[int]models.TierPolicy, len(tiers))
	for _, t := range tiers {
		m[t.PlayerCount] = t
	}
	return &Pot{tiers: m}
}

// Quote computes the pot for betAmount at playerCount with filledCount
// staked players. filledCount equals playerCount once the roster fills;
// creation quotes pass the full count to advertise the fill figures.
func (p *Pot) Quote(betAmount int64, playerCount, filledCount int) (PotQuote, error) {
	tier, ok := p.tiers[playerCount]
	if !ok {
		return PotQuote{}, fmt.Errorf("%w: unsupported player count %d", ErrValidation, playerCount)
	}

	bet := decimal.NewFromInt(betAmount)

	feeMult, err := decimal.NewFromString(tier.FeeMultiplier)
	if err != nil {
		return PotQuote{}, fmt.Errorf("tier %d fee multiplier %q: %w", playerCount, tier.FeeMultiplier, err)
	}
	fee := feeMult.Mul(bet).IntPart()

	q := PotQuote{MatchFee: fee, MultiWinner: tier.MultiWinner}

	if tier.PayoutPotShare != "" {
		share, err := decimal.NewFromString(tier.PayoutPotShare)
		if err != nil {
			return PotQuote{}, fmt.Errorf("tier %d pot share %q: %w", playerCount, tier.PayoutPotShare, err)
		}
		collected := bet.Mul(decimal.NewFromInt(int64(filledCount)))
		q.TotalPot = collected.IntPart()
		q.WinnerPool = share.Mul(collected).IntPart()
		return q, nil
	}

	payoutMult, err := decimal.NewFromString(tier.PayoutMultiplier)
	if err != nil {
		return PotQuote{}, fmt.Errorf("tier %d payout multiplier %q: %w", playerCount, tier.PayoutMultiplier, err)
	}
	q.TotalPot = fee
	q.WinnerPool = payoutMult.Mul(bet).IntPart()
	return q, nil
}

// SplitPool divides the winner pool evenly across n winners. Integer
// remainder goes to the first declared winner so the amounts always sum
// back to the pool.
func SplitPool(pool int64, n int) []int64 {
	shares := make([]int64, n)
	if n == 0 {
		return shares
	}
	each := pool / int64(n)
	for i := range shares {
		shares[i] = each
	}
	shares[0] += pool - each*int64(n)
	return shares
}
