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

// ChallengeService owns the challenge state machine and the roster. All
// money movement is delegated to the wallet ledger, inside the same
// database transaction as the status change, so a failed commit leaves
// no partial debit and no partial roster.
type ChallengeService struct {
	DB       *gorm.DB
	Ledger   *WalletLedger
	Settings *SettingsService
}

func NewChallengeService(db *gorm.DB, ledger *WalletLedger, settings *SettingsService) *ChallengeService {
	return &ChallengeService{DB: db, Ledger: ledger, Settings: settings}
}

type CreateChallengeInput struct {
	CreatorID          string
	GameID             string
	BetAmount          int64
	ScheduledMatchTime time.Time
	MatchDurationMins  int
	PlayerCount        int
	IsAdminAuthored    bool
}

// CreateChallenge validates the input against current settings, holds
// the challenger's stake, and persists the challenge in pending.
// Admin-authored challenges hold no stake at all — they are
// platform-funded promotional matches.
func (s *ChallengeService) CreateChallenge(ctx context.Context, in CreateChallengeInput) (*models.Challenge, error) {
	settings, err := s.Settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	supported := false
	for _, pc := range models.PlayerCounts {
		if in.PlayerCount == pc {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("%w: player count must be one of %v", ErrValidation, models.PlayerCounts)
	}

	var game models.Game
	if err := s.DB.WithContext(ctx).First(&game, "id = ? AND is_active = true", in.GameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %s: %w", in.GameID, ErrNotFound)
		}
		return nil, err
	}

	minBet, maxBet := settings.MinBet, settings.MaxBet
	if game.MinBet > 0 {
		minBet = game.MinBet
	}
	if game.MaxBet > 0 {
		maxBet = game.MaxBet
	}
	if in.BetAmount < minBet || in.BetAmount > maxBet {
		return nil, fmt.Errorf("%w: bet amount must be between %d and %d", ErrValidation, minBet, maxBet)
	}

	now := time.Now()
	minStart := now.Add(time.Duration(settings.MinLeadMinutes) * time.Minute)
	maxStart := now.Add(time.Duration(settings.MaxLeadDays) * 24 * time.Hour)
	if in.ScheduledMatchTime.Before(minStart) {
		return nil, fmt.Errorf("%w: match must be scheduled at least %d minutes ahead", ErrValidation, settings.MinLeadMinutes)
	}
	if in.ScheduledMatchTime.After(maxStart) {
		return nil, fmt.Errorf("%w: match must be scheduled within %d days", ErrValidation, settings.MaxLeadDays)
	}

	// Collision rejection: the challenger cannot hold two live matches
	// scheduled within the separation window of each other.
	sep := time.Duration(settings.SeparationMinutes) * time.Minute
	var clashing int64
	err = s.DB.WithContext(ctx).Model(&models.Challenge{}).
		Where("challenger_id = ? AND status IN ?", in.CreatorID,
			[]string{models.ChallengeStatusPending, models.ChallengeStatusAccepted, models.ChallengeStatusInProgress}).
		Where("scheduled_match_time > ? AND scheduled_match_time < ?",
			in.ScheduledMatchTime.Add(-sep), in.ScheduledMatchTime.Add(sep)).
		Count(&clashing).Error
	if err != nil {
		return nil, err
	}
	if clashing > 0 {
		return nil, ErrSchedulingConflict
	}

	duration := in.MatchDurationMins
	if in.PlayerCount == 50 {
		duration = 0 // finalized at roster fill
	} else if duration <= 0 {
		duration = game.DefaultDurationMins
	}

	pot := NewPot(settings.Tiers)
	quote, err := pot.Quote(in.BetAmount, in.PlayerCount, in.PlayerCount)
	if err != nil {
		return nil, err
	}

	ch := &models.Challenge{
		ID:                 uuid.NewString(),
		GameID:             in.GameID,
		ChallengerID:       in.CreatorID,
		BetAmount:          in.BetAmount,
		PlayerCount:        in.PlayerCount,
		MaxParticipants:    in.PlayerCount - 1,
		Status:             models.ChallengeStatusPending,
		ScheduledMatchTime: in.ScheduledMatchTime,
		MatchDurationMins:  duration,
		ExpiresAt:          in.ScheduledMatchTime,
		MatchFee:           quote.MatchFee,
		TotalPot:           quote.TotalPot,
		SettingsVersion:    settings.ID,
		IsAdminAuthored:    in.IsAdminAuthored,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ch).Error; err != nil {
			return err
		}
		if !ch.IsAdminAuthored {
			if _, err := s.Ledger.DebitTx(tx, in.CreatorID, in.BetAmount,
				models.TxTypeStakeHold, ch.ID, "stake held at challenge creation"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logChallenge("CHALLENGE", ch, fmt.Sprintf("created by %s, bet %d, %d players", in.CreatorID, in.BetAmount, in.PlayerCount))

	return s.GetChallenge(ctx, ch.ID)
}

// AcceptChallenge joins a user to a pending challenge. Capacity check,
// duplicate check, stake debit, roster append, and the fill transition
// all commit as one transaction against a row-locked challenge, so two
// concurrent accepts are linearized and exactly one can fill the last
// slot.
func (s *ChallengeService) AcceptChallenge(ctx context.Context, challengeID, userID string) (*models.Challenge, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ch models.Challenge
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ch, "id = ?", challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
			}
			return err
		}

		if ch.Status != models.ChallengeStatusPending {
			return ErrInvalidState
		}
		now := time.Now()
		if ch.IsExpired(now) {
			return ErrExpired
		}
		if userID == ch.ChallengerID {
			return ErrAlreadyJoined
		}

		var roster []models.ChallengeParticipant
		if err := tx.Where("challenge_id = ?", ch.ID).Order("joined_at ASC").Find(&roster).Error; err != nil {
			return err
		}
		for _, p := range roster {
			if p.UserID == userID {
				return ErrAlreadyJoined
			}
		}
		if ch.RosterFull(len(roster)) {
			return ErrFull
		}

		// Stakes are skipped entirely on admin-authored challenges.
		if !ch.IsAdminAuthored {
			if _, err := s.Ledger.DebitTx(tx, userID, ch.BetAmount,
				models.TxTypeStakeHold, ch.ID, "stake held on join"); err != nil {
				return err
			}
		}

		participant := models.ChallengeParticipant{
			ID:          uuid.NewString(),
			ChallengeID: ch.ID,
			UserID:      userID,
			JoinedAt:    now,
		}
		if err := tx.Create(&participant).Error; err != nil {
			return err
		}

		if !ch.RosterFull(len(roster) + 1) {
			return nil
		}

		// Final join: transition to accepted and finalize the derived
		// money and, for 50-player, the match duration.
		settings, tiers, err := s.settingsAt(tx, ch.SettingsVersion)
		if err != nil {
			return err
		}
		filled := ch.FilledCount(len(roster) + 1)
		quote, err := NewPot(tiers).Quote(ch.BetAmount, ch.PlayerCount, filled)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":      models.ChallengeStatusAccepted,
			"match_fee":   quote.MatchFee,
			"total_pot":   quote.TotalPot,
			"accepted_at": &now,
		}
		if ch.PlayerCount == 50 {
			durSec := settings.BaseDuration50Mins*60 + settings.PerSeatDuration50Sec*filled
			updates["match_duration_mins"] = durSec / 60
		}
		if err := tx.Model(&ch).Updates(updates).Error; err != nil {
			return err
		}
		logChallenge("CHALLENGE", &ch, fmt.Sprintf("roster filled with %d players", filled))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetChallenge(ctx, challengeID)
}

// ExtendChallenge pushes the join window out by hours. Challenger only,
// pending only, pre-expiry only, and the lifetime extension is capped by
// settings.
func (s *ChallengeService) ExtendChallenge(ctx context.Context, challengeID, challengerID string, hours int) (*models.Challenge, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("%w: extension hours must be positive", ErrValidation)
	}
	settings, err := s.Settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ch models.Challenge
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ch, "id = ?", challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
			}
			return err
		}
		if ch.ChallengerID != challengerID {
			return ErrUnauthorized
		}
		if ch.Status != models.ChallengeStatusPending {
			return ErrInvalidState
		}
		if ch.IsExpired(time.Now()) {
			return ErrExpired
		}
		if ch.ExtendedHours+hours > settings.MaxExtensionHours {
			return fmt.Errorf("%w: extensions capped at %d hours", ErrValidation, settings.MaxExtensionHours)
		}
		return tx.Model(&ch).Updates(map[string]interface{}{
			"expires_at":     ch.ExpiresAt.Add(time.Duration(hours) * time.Hour),
			"extended_hours": ch.ExtendedHours + hours,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetChallenge(ctx, challengeID)
}

// CancelChallenge is the challenger backing out. Pending only; refunds
// every held stake and terminates the challenge. A concurrent accept
// that wins the row lock first flips the status and this cancel fails
// with ErrInvalidState instead of double-refunding.
func (s *ChallengeService) CancelChallenge(ctx context.Context, challengeID, challengerID string) (*models.Challenge, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ch models.Challenge
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ch, "id = ?", challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
			}
			return err
		}
		if ch.ChallengerID != challengerID {
			return ErrUnauthorized
		}
		if ch.Status != models.ChallengeStatusPending {
			return ErrInvalidState
		}
		return s.cancelLocked(tx, &ch, "cancelled by challenger")
	})
	if err != nil {
		return nil, err
	}
	return s.GetChallenge(ctx, challengeID)
}

// cancelLocked refunds all held stakes and marks the challenge
// cancelled. Caller must hold the row lock. Refunds are idempotent per
// (challenge, user, refund), so a replayed cancel cannot pay twice.
func (s *ChallengeService) cancelLocked(tx *gorm.DB, ch *models.Challenge, reason string) error {
	if !ch.IsAdminAuthored {
		if _, err := s.Ledger.CreditTx(tx, ch.ChallengerID, ch.BetAmount,
			models.TxTypeRefund, ch.ID, reason); err != nil {
			return err
		}
		var roster []models.ChallengeParticipant
		if err := tx.Where("challenge_id = ?", ch.ID).Find(&roster).Error; err != nil {
			return err
		}
		for _, p := range roster {
			if _, err := s.Ledger.CreditTx(tx, p.UserID, ch.BetAmount,
				models.TxTypeRefund, ch.ID, reason); err != nil {
				return err
			}
		}
	}
	if err := tx.Model(ch).Updates(map[string]interface{}{
		"status":        models.ChallengeStatusCancelled,
		"cancel_reason": reason,
	}).Error; err != nil {
		return err
	}
	logChallenge("CHALLENGE", ch, "cancelled: "+reason)
	return nil
}

// SubmitProof attaches a result screenshot to the caller's slot. Status
// never changes here — only the dispute resolver completes a challenge.
func (s *ChallengeService) SubmitProof(ctx context.Context, challengeID, userID, screenshotURL string) (*models.Challenge, error) {
	if screenshotURL == "" {
		return nil, fmt.Errorf("%w: screenshot reference required", ErrValidation)
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ch models.Challenge
		if err := tx.First(&ch, "id = ?", challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
			}
			return err
		}
		if ch.Status != models.ChallengeStatusInProgress && ch.Status != models.ChallengeStatusAccepted {
			return ErrInvalidState
		}
		if userID == ch.ChallengerID {
			return tx.Model(&ch).Update("challenger_proof_url", screenshotURL).Error
		}
		res := tx.Model(&models.ChallengeParticipant{}).
			Where("challenge_id = ? AND user_id = ?", challengeID, userID).
			Update("proof_screenshot_url", screenshotURL)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUnauthorized
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetChallenge(ctx, challengeID)
}

// GetChallenge loads a challenge with its game and ordered roster.
func (s *ChallengeService) GetChallenge(ctx context.Context, challengeID string) (*models.Challenge, error) {
	var ch models.Challenge
	err := s.DB.WithContext(ctx).
		Preload("Game").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		First(&ch, "id = ?", challengeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
		}
		return nil, err
	}
	return &ch, nil
}

type ChallengeFilter struct {
	GameID  string
	Status  string
	Page    int
	PerPage int
}

// ListChallenges returns a filtered page, newest first.
func (s *ChallengeService) ListChallenges(ctx context.Context, f ChallengeFilter) ([]models.Challenge, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PerPage <= 0 || f.PerPage > 100 {
		f.PerPage = 20
	}

	q := s.DB.WithContext(ctx).Model(&models.Challenge{})
	if f.GameID != "" {
		q = q.Where("game_id = ?", f.GameID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var challenges []models.Challenge
	err := q.Preload("Game").
		Preload("Participants").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.PerPage).
		Limit(f.PerPage).
		Find(&challenges).Error
	return challenges, total, err
}

// ListMyChallenges returns challenges the user created or joined.
func (s *ChallengeService) ListMyChallenges(ctx context.Context, userID string) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := s.DB.WithContext(ctx).
		Preload("Game").
		Preload("Participants").
		Where("challenger_id = ? OR id IN (?)", userID,
			s.DB.Model(&models.ChallengeParticipant{}).Select("challenge_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&challenges).Error
	return challenges, err
}

// settingsAt loads the settings version a challenge was priced under.
func (s *ChallengeService) settingsAt(tx *gorm.DB, version uint) (*models.PlatformSettings, []models.TierPolicy, error) {
	var settings models.PlatformSettings
	if err := tx.Preload("Tiers").First(&settings, "id = ?", version).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("settings version %d: %w", version, ErrNotFound)
		}
		return nil, nil, err
	}
	return &settings, settings.Tiers, nil
}

// stakesCollected is the total debited for a challenge's stakes.
func stakesCollected(ch *models.Challenge, rosterLen int) int64 {
	if ch.IsAdminAuthored {
		return 0
	}
	return ch.BetAmount * int64(ch.FilledCount(rosterLen))
}

func logChallenge(tag string, ch *models.Challenge, msg string) {
	log.Printf("[%s] challenge=%s status=%s %s", tag, ch.ID, ch.Status, msg)
}
