package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Talha3818/gaming-site-sub000/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminService carries the admin-mediated transitions: room codes, match
// start, dispute settlement, and override cancellation. Authorization
// (who is an admin) is the gateway's concern; handlers only route admin
// identities here.
type AdminService struct {
	DB         *gorm.DB
	Ledger     *WalletLedger
	Settings   *SettingsService
	Challenges *ChallengeService
}

func NewAdminService(db *gorm.DB, ledger *WalletLedger, settings *SettingsService, challenges *ChallengeService) *AdminService {
	return &AdminService{DB: db, Ledger: ledger, Settings: settings, Challenges: challenges}
}

// WinnerSelection is a tagged variant: exactly one of Single or Multi is
// set. Multi is only legal on multi-winner tiers (4-player).
type WinnerSelection struct {
	Single string
	Multi  []string
}

func SingleWinner(id string) WinnerSelection { return WinnerSelection{Single: id} }
func MultiWinner(ids []string) WinnerSelection { return WinnerSelection{Multi: ids} }

func (w WinnerSelection) ids() []string {
	if w.Single != "" {
		return []string{w.Single}
	}
	return w.Multi
}

// StartMatch moves an accepted challenge to in-progress and records the
// room code the admin sourced from the game.
func (a *AdminService) StartMatch(ctx context.Context, challengeID, adminID, roomCode string) (*models.Challenge, error) {
	if roomCode == "" {
		return nil, fmt.Errorf("%w: room code required", ErrValidation)
	}
	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ch, roster, err := a.lockChallenge(tx, challengeID)
		if err != nil {
			return err
		}
		if ch.Status != models.ChallengeStatusAccepted {
			return ErrInvalidState
		}
		if len(roster) == 0 {
			return fmt.Errorf("%w: roster is empty", ErrInvalidState)
		}
		now := time.Now()
		return tx.Model(ch).Updates(map[string]interface{}{
			"status":                models.ChallengeStatusInProgress,
			"admin_room_code":       roomCode,
			"room_code_provided_by": adminID,
			"room_code_provided_at": &now,
			"started_at":            &now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return a.reload(ctx, challengeID)
}

// ProvideRoomCode sets the room code ahead of the match. Requires a
// non-empty roster and no existing code — replacing a code goes through
// UpdateRoomCode.
func (a *AdminService) ProvideRoomCode(ctx context.Context, challengeID, adminID, roomCode string) (*models.Challenge, error) {
	return a.setRoomCode(ctx, challengeID, adminID, roomCode, false)
}

// UpdateRoomCode replaces an existing room code.
func (a *AdminService) UpdateRoomCode(ctx context.Context, challengeID, adminID, roomCode string) (*models.Challenge, error) {
	return a.setRoomCode(ctx, challengeID, adminID, roomCode, true)
}

func (a *AdminService) setRoomCode(ctx context.Context, challengeID, adminID, roomCode string, replace bool) (*models.Challenge, error) {
	if roomCode == "" {
		return nil, fmt.Errorf("%w: room code required", ErrValidation)
	}
	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ch, roster, err := a.lockChallenge(tx, challengeID)
		if err != nil {
			return err
		}
		if ch.IsTerminal() {
			return ErrInvalidState
		}
		if len(roster) == 0 {
			return fmt.Errorf("%w: roster is empty", ErrInvalidState)
		}
		if !replace && ch.AdminRoomCode != "" {
			return fmt.Errorf("%w: room code already set", ErrInvalidState)
		}
		if replace && ch.AdminRoomCode == "" {
			return fmt.Errorf("%w: no room code to update", ErrInvalidState)
		}
		now := time.Now()
		return tx.Model(ch).Updates(map[string]interface{}{
			"admin_room_code":       roomCode,
			"room_code_provided_by": adminID,
			"room_code_provided_at": &now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return a.reload(ctx, challengeID)
}

// ResolveDispute settles an in-progress challenge: validates the winner
// selection against the roster, pays the pot through the ledger, bumps
// win/loss counters, credits the platform with whatever it retained, and
// completes the challenge — all in one transaction. A replayed call on a
// completed challenge returns the recorded payouts instead of paying
// again; a replay with a different winner set fails with
// ErrAlreadySettled.
func (a *AdminService) ResolveDispute(ctx context.Context, challengeID, adminID string, winners WinnerSelection, notes string) (*models.Challenge, []models.WalletTransaction, error) {
	var payouts []models.WalletTransaction

	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ch, roster, err := a.lockChallenge(tx, challengeID)
		if err != nil {
			return err
		}

		if ch.Status == models.ChallengeStatusCompleted {
			if !sameWinners(ch.WinnerIDs, winners.ids()) {
				return ErrAlreadySettled
			}
			payouts, err = a.Ledger.PayoutsFor(tx, ch.ID)
			return err
		}
		if ch.Status != models.ChallengeStatusInProgress {
			return ErrInvalidState
		}

		winnerIDs := winners.ids()
		if len(winnerIDs) == 0 {
			return fmt.Errorf("%w: winner selection is empty", ErrValidation)
		}

		settings, err := a.settingsAt(tx, ch.SettingsVersion)
		if err != nil {
			return err
		}
		quote, err := NewPot(settings.Tiers).Quote(ch.BetAmount, ch.PlayerCount, ch.FilledCount(len(roster)))
		if err != nil {
			return err
		}
		if len(winnerIDs) > 1 && !quote.MultiWinner {
			return fmt.Errorf("%w: this tier pays a single winner", ErrValidation)
		}

		seen := make(map[string]bool, len(winnerIDs))
		for _, id := range winnerIDs {
			if seen[id] {
				return fmt.Errorf("%w: duplicate winner %s", ErrValidation, id)
			}
			seen[id] = true
			if !ch.IsPlayer(id, roster) {
				return ErrInvalidWinner
			}
		}

		shares := SplitPool(quote.WinnerPool, len(winnerIDs))
		for i, id := range winnerIDs {
			entry, err := a.Ledger.CreditTx(tx, id, shares[i], models.TxTypePayout, ch.ID, "challenge payout")
			if err != nil {
				return err
			}
			payouts = append(payouts, *entry)
		}

		// Counters: winners win, every other staked player loses.
		if err := tx.Model(&models.User{}).Where("id IN ?", winnerIDs).
			Update("wins", gorm.Expr("wins + 1")).Error; err != nil {
			return err
		}
		var losers []string
		if !seen[ch.ChallengerID] {
			losers = append(losers, ch.ChallengerID)
		}
		for _, p := range roster {
			if !seen[p.UserID] {
				losers = append(losers, p.UserID)
			}
		}
		if len(losers) > 0 {
			if err := tx.Model(&models.User{}).Where("id IN ?", losers).
				Update("losses", gorm.Expr("losses + 1")).Error; err != nil {
				return err
			}
		}

		// Conservation: whatever was collected and not paid out stays
		// with the platform, recorded as a fee entry. Admin-authored
		// challenges collect nothing, so the payout is platform spend
		// and no fee entry is written.
		retained := stakesCollected(ch, len(roster)) - quote.WinnerPool
		if retained > 0 {
			if _, err := a.Ledger.CreditTx(tx, models.PlatformUserID, retained,
				models.TxTypeFee, ch.ID, "platform fee retained"); err != nil {
				return err
			}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":           models.ChallengeStatusCompleted,
			"winner_ids":       strings.Join(winnerIDs, ","),
			"resolution_notes": notes,
			"resolved_by":      adminID,
			"resolved_at":      &now,
		}
		if url := proofFor(ch, roster, winnerIDs[0]); url != "" {
			updates["winner_screenshot_url"] = url
		}
		if err := tx.Model(ch).Updates(updates).Error; err != nil {
			return err
		}
		logChallenge("DISPUTE", ch, fmt.Sprintf("settled by %s, %d winner(s), pool %d", adminID, len(winnerIDs), quote.WinnerPool))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	ch, err := a.reload(ctx, challengeID)
	if err != nil {
		return nil, nil, err
	}
	return ch, payouts, nil
}

// CancelChallenge is the admin override: legal from any non-terminal
// state, refunds every held stake.
func (a *AdminService) CancelChallenge(ctx context.Context, challengeID, adminID, reason string) (*models.Challenge, error) {
	if reason == "" {
		reason = "cancelled by admin"
	}
	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ch, _, err := a.lockChallenge(tx, challengeID)
		if err != nil {
			return err
		}
		if ch.IsTerminal() {
			return ErrInvalidState
		}
		return a.Challenges.cancelLocked(tx, ch, reason)
	})
	if err != nil {
		return nil, err
	}
	return a.reload(ctx, challengeID)
}

func (a *AdminService) lockChallenge(tx *gorm.DB, challengeID string) (*models.Challenge, []models.ChallengeParticipant, error) {
	var ch models.Challenge
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ch, "id = ?", challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
		}
		return nil, nil, err
	}
	var roster []models.ChallengeParticipant
	if err := tx.Where("challenge_id = ?", ch.ID).Order("joined_at ASC").Find(&roster).Error; err != nil {
		return nil, nil, err
	}
	return &ch, roster, nil
}

func (a *AdminService) settingsAt(tx *gorm.DB, version uint) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	if err := tx.Preload("Tiers").First(&settings, "id = ?", version).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("settings version %d: %w", version, ErrNotFound)
		}
		return nil, err
	}
	return &settings, nil
}

func (a *AdminService) reload(ctx context.Context, challengeID string) (*models.Challenge, error) {
	var ch models.Challenge
	err := a.DB.WithContext(ctx).
		Preload("Game").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		First(&ch, "id = ?", challengeID).Error
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// proofFor returns the screenshot the winning player submitted, if any.
func proofFor(ch *models.Challenge, roster []models.ChallengeParticipant, winnerID string) string {
	if winnerID == ch.ChallengerID {
		return ch.ChallengerProofURL
	}
	for _, p := range roster {
		if p.UserID == winnerID {
			return p.ProofScreenshotURL
		}
	}
	return ""
}

func sameWinners(stored string, ids []string) bool {
	prev := strings.Split(stored, ",")
	if len(prev) != len(ids) {
		return false
	}
	a := append([]string(nil), prev...)
	b := append([]string(nil), ids...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
